package mcp

import (
	"context"
	"fmt"
	"strings"
)

const defaultTreeDepth = 3

// stringParam extracts a required string argument.
func stringParam(params map[string]interface{}, key string) (string, error) {
	value, ok := params[key].(string)
	if !ok || value == "" {
		return "", fmt.Errorf("missing or invalid '%s' parameter", key)
	}
	return value, nil
}

// toolListSources implements the list_sources tool
func (s *Server) toolListSources(ctx context.Context, params map[string]interface{}) (string, error) {
	var b strings.Builder
	b.WriteString("# Available Repository Sources\n\n")

	for _, meta := range s.registry.Metadata() {
		fmt.Fprintf(&b, "## %s\n", meta.Label)
		fmt.Fprintf(&b, "- **Type**: %s\n", meta.Kind)
		if meta.Path != "" {
			fmt.Fprintf(&b, "- **Path**: %s\n", meta.Path)
		}
		fmt.Fprintf(&b, "- **Description**: %s\n", meta.Description)
		if len(meta.Objects) > 0 {
			fmt.Fprintf(&b, "- **Objects**: %s\n", strings.Join(meta.Objects, ", "))
		}
		fmt.Fprintf(&b, "- **Files**: %d\n\n", meta.FileCount)
	}

	return b.String(), nil
}

// toolSearchAll implements the search_all tool. Per-source failures are
// annotated in the combined output; they never hide another source's hits.
func (s *Server) toolSearchAll(ctx context.Context, params map[string]interface{}) (string, error) {
	query, err := stringParam(params, "query")
	if err != nil {
		return "", err
	}
	caseSensitive, _ := params["case_sensitive"].(bool)

	var sections []string
	for _, outcome := range s.registry.SearchAll(ctx, query, caseSensitive) {
		switch {
		case outcome.Err != nil:
			sections = append(sections, fmt.Sprintf("## Results from %s:\nError: %s", outcome.Label, outcome.Err.Error()))
		case outcome.Text != "":
			sections = append(sections, fmt.Sprintf("## Results from %s:\n%s", outcome.Label, outcome.Text))
		}
	}

	if len(sections) == 0 {
		return fmt.Sprintf("No matches found for '%s' across all repositories", query), nil
	}
	return strings.Join(sections, "\n\n"), nil
}

// toolSearchRepo implements the search_repo tool
func (s *Server) toolSearchRepo(ctx context.Context, params map[string]interface{}) (string, error) {
	label, err := stringParam(params, "label")
	if err != nil {
		return "", err
	}
	query, err := stringParam(params, "query")
	if err != nil {
		return "", err
	}
	caseSensitive, _ := params["case_sensitive"].(bool)

	src, err := s.registry.Get(label)
	if err != nil {
		return "", err
	}

	result, err := src.Search(ctx, query, caseSensitive)
	if err != nil {
		return "", err
	}

	if result == "" {
		return fmt.Sprintf("No matches found for '%s' in %s", query, label), nil
	}
	return fmt.Sprintf("# Results from %s:\n%s", label, result), nil
}

// toolReadFile implements the read_file tool
func (s *Server) toolReadFile(ctx context.Context, params map[string]interface{}) (string, error) {
	label, err := stringParam(params, "label")
	if err != nil {
		return "", err
	}
	path, err := stringParam(params, "path")
	if err != nil {
		return "", err
	}

	src, err := s.registry.Get(label)
	if err != nil {
		return "", err
	}

	return src.ReadFile(ctx, path)
}

// toolListFiles implements the list_files tool
func (s *Server) toolListFiles(ctx context.Context, params map[string]interface{}) (string, error) {
	label, err := stringParam(params, "label")
	if err != nil {
		return "", err
	}
	pattern, _ := params["pattern"].(string)
	if pattern == "" {
		pattern = "*"
	}

	src, err := s.registry.Get(label)
	if err != nil {
		return "", err
	}

	files, err := src.ListFiles(ctx, pattern)
	if err != nil {
		return "", err
	}

	if len(files) == 0 {
		return fmt.Sprintf("No files found matching '%s' in %s", pattern, label), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# Files in %s matching '%s':\n\n", label, pattern)
	for i, f := range files {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "- %s", f)
	}
	return b.String(), nil
}

// toolGetDirectoryTree implements the get_directory_tree tool
func (s *Server) toolGetDirectoryTree(ctx context.Context, params map[string]interface{}) (string, error) {
	label, err := stringParam(params, "label")
	if err != nil {
		return "", err
	}
	subpath, _ := params["path"].(string)

	maxDepth := defaultTreeDepth
	if d, ok := params["max_depth"].(float64); ok {
		maxDepth = int(d)
	}

	src, err := s.registry.Get(label)
	if err != nil {
		return "", err
	}

	rendered, err := src.Tree(ctx, subpath, maxDepth)
	if err != nil {
		return "", err
	}

	header := fmt.Sprintf("# Directory tree for %s", label)
	if subpath != "" {
		header += fmt.Sprintf(" (starting from %s)", subpath)
	}
	return fmt.Sprintf("%s:\n\n```\n%s\n```", header, rendered), nil
}
