package source

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/sharkymark/nuon-mcp/internal/errors"
	"github.com/sharkymark/nuon-mcp/internal/paths"
	"github.com/sharkymark/nuon-mcp/internal/ripgrep"
	"github.com/sharkymark/nuon-mcp/internal/tree"
)

// FilesystemSource exposes a local directory tree. Every path it ever opens
// or returns is a descendant of its canonical root.
type FilesystemSource struct {
	label       string
	description string
	root        string
	fileCount   int
	engine      *ripgrep.Engine
	logger      *slog.Logger
}

// NewFilesystemSource canonicalizes path and scans it once to count files.
// The count is a startup snapshot; it goes stale if the tree changes later,
// which is accepted.
func NewFilesystemSource(label, rootPath, description string, logger *slog.Logger) (*FilesystemSource, error) {
	root, err := paths.CanonicalizeRoot(rootPath)
	if err != nil {
		return nil, fmt.Errorf("path does not exist: %s", rootPath)
	}

	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("path does not exist: %s", root)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("not a directory: %s", root)
	}

	count := 0
	_ = filepath.WalkDir(root, func(_ string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.Type().IsRegular() {
			count++
		}
		return nil
	})

	return &FilesystemSource{
		label:       label,
		description: description,
		root:        root,
		fileCount:   count,
		engine:      ripgrep.New(logger),
		logger:      logger,
	}, nil
}

// Label returns the registry key.
func (s *FilesystemSource) Label() string { return s.label }

// Root returns the canonical root directory.
func (s *FilesystemSource) Root() string { return s.root }

// Search runs ripgrep over the source root.
func (s *FilesystemSource) Search(ctx context.Context, query string, caseSensitive bool) (string, error) {
	return s.engine.Search(ctx, s.root, query, caseSensitive)
}

// ReadFile reads a file inside the root and returns it as a labeled fenced
// block.
func (s *FilesystemSource) ReadFile(ctx context.Context, relPath string) (string, error) {
	full, err := paths.Resolve(s.root, relPath)
	if err != nil {
		return "", err
	}

	info, err := os.Stat(full)
	if err != nil {
		if os.IsNotExist(err) {
			return "", errors.Newf(errors.NotFound, "file not found: %s", relPath)
		}
		return "", err
	}
	if info.IsDir() {
		return "", errors.Newf(errors.NotAFile, "not a file: %s", relPath)
	}

	content, err := os.ReadFile(full)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(content) {
		return "", errors.Newf(errors.Unreadable, "cannot read binary file: %s", relPath)
	}

	return fmt.Sprintf("# %s:%s\n\n```\n%s\n```", s.label, relPath, string(content)), nil
}

// ListFiles lists files matching a glob pattern as sorted root-relative
// paths. A pattern containing ** matches its final segment at any depth;
// otherwise the pattern is matched against the relative path as a whole.
func (s *FilesystemSource) ListFiles(ctx context.Context, pattern string) ([]string, error) {
	if pattern == "" {
		pattern = "*"
	}

	recursive := strings.Contains(pattern, "**")
	basePattern := pattern
	if recursive {
		parts := strings.Split(pattern, "/")
		basePattern = parts[len(parts)-1]
	}

	var files []string
	err := filepath.WalkDir(s.root, func(p string, d fs.DirEntry, err error) error {
		if err != nil || !d.Type().IsRegular() {
			return nil
		}

		rel, relErr := filepath.Rel(s.root, p)
		if relErr != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)

		var matched bool
		if recursive {
			matched, _ = path.Match(basePattern, path.Base(rel))
		} else {
			matched, _ = path.Match(pattern, rel)
		}
		if matched {
			files = append(files, rel)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(files)
	return files, nil
}

// Metadata reports the root path and the startup file count.
func (s *FilesystemSource) Metadata() Metadata {
	return Metadata{
		Label:       s.label,
		Kind:        KindFilesystem,
		Description: s.description,
		Path:        s.root,
		FileCount:   s.fileCount,
	}
}

// Tree renders the directory hierarchy from subpath (root when empty).
func (s *FilesystemSource) Tree(ctx context.Context, subpath string, maxDepth int) (string, error) {
	start := s.root
	if subpath != "" {
		resolved, err := paths.Resolve(s.root, subpath)
		if err != nil {
			return "", err
		}
		start = resolved
	}

	if _, err := os.Stat(start); err != nil {
		return "", errors.Newf(errors.NotFound, "path not found: %s", subpath)
	}

	return tree.Render(start, maxDepth), nil
}
