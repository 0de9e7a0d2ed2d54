// Package tree renders depth-bounded, deterministically ordered directory
// trees using the usual connector glyphs.
package tree

import (
	"os"
	"sort"
	"strings"
)

const (
	connectorMid  = "├── "
	connectorLast = "└── "
	continuation  = "│   "
	indent        = "    "
)

// Render builds a visual tree of the directory at start, descending at most
// maxDepth levels. Depth 0 yields an empty string. A directory that cannot be
// read contributes a placeholder line instead of failing the whole render.
func Render(start string, maxDepth int) string {
	return renderDir(start, maxDepth, 0, "")
}

func renderDir(dir string, maxDepth, depth int, prefix string) string {
	if depth >= maxDepth {
		return ""
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return prefix + "[Permission Denied]"
	}

	// Directories before files, then lexicographic by name.
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].IsDir() != entries[j].IsDir() {
			return entries[i].IsDir()
		}
		return entries[i].Name() < entries[j].Name()
	})

	var lines []string
	for i, entry := range entries {
		last := i == len(entries)-1
		connector := connectorMid
		childPrefix := prefix + continuation
		if last {
			connector = connectorLast
			childPrefix = prefix + indent
		}

		if entry.IsDir() {
			lines = append(lines, prefix+connector+entry.Name()+"/")
			if sub := renderDir(dir+string(os.PathSeparator)+entry.Name(), maxDepth, depth+1, childPrefix); sub != "" {
				lines = append(lines, sub)
			}
		} else {
			lines = append(lines, prefix+connector+entry.Name())
		}
	}

	return strings.Join(lines, "\n")
}

// RenderFlat renders a one-level listing of a fixed namespace, for sources
// whose records live under flat pseudo-directories rather than a filesystem.
func RenderFlat(labels []string) string {
	var lines []string
	for i, label := range labels {
		connector := connectorMid
		if i == len(labels)-1 {
			connector = connectorLast
		}
		lines = append(lines, connector+label)
	}
	return strings.Join(lines, "\n")
}
