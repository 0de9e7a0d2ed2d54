package paths

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/sharkymark/nuon-mcp/internal/errors"
)

func testRoot(t *testing.T) string {
	t.Helper()

	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "img"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "README.md"), []byte("hello\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	// TempDir may itself sit behind a symlink (macOS /var -> /private/var)
	canon, err := filepath.EvalSymlinks(root)
	if err != nil {
		t.Fatal(err)
	}
	return canon
}

func TestResolveInside(t *testing.T) {
	root := testRoot(t)

	got, err := Resolve(root, "README.md")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	want := filepath.Join(root, "README.md")
	if got != want {
		t.Errorf("Resolve = %q, want %q", got, want)
	}
}

func TestResolveDotSegmentsInside(t *testing.T) {
	root := testRoot(t)

	got, err := Resolve(root, "img/../README.md")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if got != filepath.Join(root, "README.md") {
		t.Errorf("Resolve = %q", got)
	}
}

func TestResolveEscapeRejected(t *testing.T) {
	root := testRoot(t)

	for _, rel := range []string{
		"..",
		"../",
		"../../etc/passwd",
		"img/../../outside",
		"img/../../../etc/shadow",
	} {
		_, err := Resolve(root, rel)
		if err == nil {
			t.Errorf("Resolve(%q) should fail", rel)
			continue
		}
		if !errors.HasCode(err, errors.OutOfBounds) {
			t.Errorf("Resolve(%q) error code = %q, want OUT_OF_BOUNDS", rel, errors.CodeOf(err))
		}
	}
}

func TestResolveAbsoluteRejected(t *testing.T) {
	root := testRoot(t)

	_, err := Resolve(root, "/etc/passwd")
	if !errors.HasCode(err, errors.OutOfBounds) {
		t.Errorf("absolute path should be OUT_OF_BOUNDS, got %v", err)
	}
}

func TestResolveNonexistentInsideAllowed(t *testing.T) {
	root := testRoot(t)

	got, err := Resolve(root, "img/missing.txt")
	if err != nil {
		t.Fatalf("Resolve of missing target inside root should succeed: %v", err)
	}
	if got != filepath.Join(root, "img", "missing.txt") {
		t.Errorf("Resolve = %q", got)
	}
}

func TestResolveSymlinkEscapeRejected(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlink test not supported on windows")
	}

	root := testRoot(t)
	outside := t.TempDir()
	if err := os.Symlink(outside, filepath.Join(root, "escape")); err != nil {
		t.Skipf("cannot create symlink: %v", err)
	}

	_, err := Resolve(root, "escape")
	if !errors.HasCode(err, errors.OutOfBounds) {
		t.Errorf("symlink escape should be OUT_OF_BOUNDS, got %v", err)
	}
}
