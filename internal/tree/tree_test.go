package tree

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func buildFixture(t *testing.T) string {
	t.Helper()

	root := t.TempDir()
	dirs := []string{"img", "src", "src/util"}
	files := []string{"README.md", "img/logo.png", "src/main.go", "src/util/helper.go"}

	for _, d := range dirs {
		if err := os.MkdirAll(filepath.Join(root, d), 0o755); err != nil {
			t.Fatal(err)
		}
	}
	for _, f := range files {
		if err := os.WriteFile(filepath.Join(root, f), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return root
}

func TestRenderDepthZeroEmpty(t *testing.T) {
	root := buildFixture(t)
	if got := Render(root, 0); got != "" {
		t.Errorf("depth 0 should be empty, got %q", got)
	}
}

func TestRenderDirectoriesFirst(t *testing.T) {
	root := buildFixture(t)

	got := Render(root, 1)
	want := strings.Join([]string{
		"├── img/",
		"├── src/",
		"└── README.md",
	}, "\n")
	if got != want {
		t.Errorf("Render depth 1 =\n%s\nwant\n%s", got, want)
	}
}

func TestRenderDepthBound(t *testing.T) {
	root := buildFixture(t)

	depth1 := Render(root, 1)
	depth2 := Render(root, 2)
	depth3 := Render(root, 3)

	if strings.Contains(depth1, "main.go") {
		t.Error("depth 1 should not descend into src/")
	}
	if !strings.Contains(depth2, "main.go") {
		t.Error("depth 2 should include src/main.go")
	}
	if strings.Contains(depth2, "helper.go") {
		t.Error("depth 2 should not descend into src/util/")
	}
	if !strings.Contains(depth3, "helper.go") {
		t.Error("depth 3 should include src/util/helper.go")
	}

	// Increasing depth only adds lines; the shallow prefix is preserved.
	for _, line := range strings.Split(depth1, "\n") {
		if !strings.Contains(depth2, line) {
			t.Errorf("depth 2 lost depth-1 line %q", line)
		}
	}
	if len(strings.Split(depth2, "\n")) < len(strings.Split(depth1, "\n")) {
		t.Error("deeper render must not have fewer lines")
	}
}

func TestRenderConnectors(t *testing.T) {
	root := buildFixture(t)

	got := Render(root, 3)
	lines := strings.Split(got, "\n")

	// src/ is not the last top-level entry, so its children carry the
	// vertical continuation prefix.
	found := false
	for _, line := range lines {
		if line == "│   └── main.go" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected continuation-prefixed entry for src/main.go, got:\n%s", got)
	}

	if lines[len(lines)-1] != "└── README.md" {
		t.Errorf("last sibling should use terminal connector, got %q", lines[len(lines)-1])
	}
}

func TestRenderFlat(t *testing.T) {
	got := RenderFlat([]string{"Account/", "Contact/", "Lead/"})
	want := strings.Join([]string{
		"├── Account/",
		"├── Contact/",
		"└── Lead/",
	}, "\n")
	if got != want {
		t.Errorf("RenderFlat = %q, want %q", got, want)
	}
}

func TestRenderFlatSingle(t *testing.T) {
	if got := RenderFlat([]string{"Account/"}); got != "└── Account/" {
		t.Errorf("RenderFlat single = %q", got)
	}
}

func TestRenderEmptyDir(t *testing.T) {
	if got := Render(t.TempDir(), 3); got != "" {
		t.Errorf("empty dir should render empty, got %q", got)
	}
}
