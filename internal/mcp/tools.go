package mcp

import "context"

// Tool represents a tool exposed via MCP
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// ToolHandler is a function that handles a tool call and returns the
// response text.
type ToolHandler func(ctx context.Context, params map[string]interface{}) (string, error)

// GetToolDefinitions returns all tool definitions
func (s *Server) GetToolDefinitions() []Tool {
	return []Tool{
		{
			Name:        "list_sources",
			Description: "List all configured repository sources with their labels and descriptions",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
				"required":   []string{},
			},
		},
		{
			Name:        "search_all",
			Description: "Search for text across all configured repositories using ripgrep",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"query": map[string]interface{}{
						"type":        "string",
						"description": "Text to search for (supports regex)",
					},
					"case_sensitive": map[string]interface{}{
						"type":        "boolean",
						"description": "Whether search should be case sensitive (default: false)",
					},
				},
				"required": []string{"query"},
			},
		},
		{
			Name:        "search_repo",
			Description: "Search for text in a specific repository",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"label": map[string]interface{}{
						"type":        "string",
						"description": "Repository label (use list_sources to see available labels)",
					},
					"query": map[string]interface{}{
						"type":        "string",
						"description": "Text to search for (supports regex)",
					},
					"case_sensitive": map[string]interface{}{
						"type":        "boolean",
						"description": "Whether search should be case sensitive (default: false)",
					},
				},
				"required": []string{"label", "query"},
			},
		},
		{
			Name:        "read_file",
			Description: "Read the contents of a specific file from a repository",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"label": map[string]interface{}{
						"type":        "string",
						"description": "Repository label",
					},
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Relative path to the file within the repository",
					},
				},
				"required": []string{"label", "path"},
			},
		},
		{
			Name:        "list_files",
			Description: "List files in a repository matching a glob pattern",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"label": map[string]interface{}{
						"type":        "string",
						"description": "Repository label",
					},
					"pattern": map[string]interface{}{
						"type":        "string",
						"description": "Glob pattern (e.g., '*.py', '**/*.md', default: '*')",
					},
				},
				"required": []string{"label"},
			},
		},
		{
			Name:        "get_directory_tree",
			Description: "Get the directory structure of a repository",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"label": map[string]interface{}{
						"type":        "string",
						"description": "Repository label",
					},
					"max_depth": map[string]interface{}{
						"type":        "integer",
						"description": "Maximum depth to traverse (default: 3)",
					},
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Subdirectory to start from (default: root)",
					},
				},
				"required": []string{"label"},
			},
		},
	}
}

// registerTools wires tool names to their handlers.
func (s *Server) registerTools() {
	s.tools["list_sources"] = s.toolListSources
	s.tools["search_all"] = s.toolSearchAll
	s.tools["search_repo"] = s.toolSearchRepo
	s.tools["read_file"] = s.toolReadFile
	s.tools["list_files"] = s.toolListFiles
	s.tools["get_directory_tree"] = s.toolGetDirectoryTree
}
