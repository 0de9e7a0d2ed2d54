// Package paths enforces the filesystem security boundary: every path a
// source hands back to a caller must resolve inside that source's root.
package paths

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/sharkymark/nuon-mcp/internal/errors"
)

// CanonicalizeRoot expands a leading ~, makes the path absolute, and resolves
// symlinks. The path must exist.
func CanonicalizeRoot(path string) (string, error) {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		path = filepath.Join(home, strings.TrimPrefix(path, "~"))
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}

	return filepath.EvalSymlinks(abs)
}

// Resolve joins rel against the canonical root and returns the canonical
// absolute result. Fails with OutOfBounds when the resolution is not the root
// itself or a descendant of it. Canonicalization (`..`, `.`, symlinks)
// happens before the containment check; a containment check on the raw join
// would be unsound.
func Resolve(root, rel string) (string, error) {
	if filepath.IsAbs(rel) {
		return "", errors.Newf(errors.OutOfBounds, "path %s is outside repository bounds", rel)
	}

	rootCanon, err := filepath.EvalSymlinks(root)
	if err != nil {
		return "", err
	}

	// Join cleans `.` and `..` segments lexically; symlinks are resolved
	// below for the part of the path that exists.
	joined := filepath.Join(rootCanon, rel)

	resolved, err := filepath.EvalSymlinks(joined)
	if err != nil {
		if !os.IsNotExist(err) {
			return "", err
		}
		// Target doesn't exist yet; the cleaned join is the best canonical
		// form available. Containment still holds or fails on it.
		resolved = joined
	}

	within, err := filepath.Rel(rootCanon, resolved)
	if err != nil {
		return "", errors.Newf(errors.OutOfBounds, "path %s is outside repository bounds", rel)
	}
	if within == ".." || strings.HasPrefix(within, ".."+string(filepath.Separator)) {
		return "", errors.Newf(errors.OutOfBounds, "path %s is outside repository bounds", rel)
	}

	return resolved, nil
}
