package main

import (
	"os"

	"github.com/sharkymark/nuon-mcp/internal/config"
	"github.com/sharkymark/nuon-mcp/internal/logging"
	"github.com/sharkymark/nuon-mcp/internal/mcp"
	"github.com/sharkymark/nuon-mcp/internal/source"
	"github.com/sharkymark/nuon-mcp/internal/version"

	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP stdio server",
	Long: `Start the Model Context Protocol (MCP) server.

The server communicates over stdio using JSON-RPC 2.0 and exposes the
configured sources through the following tools:
  - list_sources: List all configured repository sources
  - search_all: Search across every source at once
  - search_repo: Search a single source
  - read_file: Read a file (or CRM record) from a source
  - list_files: List files in a source matching a glob pattern
  - get_directory_tree: Render a directory tree for a source

Salesforce credentials are read from the SF_CLIENT_ID, SF_CLIENT_SECRET
and SF_LOGIN_URL environment variables, never from the config file.

This command is typically invoked by MCP clients and not directly by users.`,
	RunE: runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFlag)
	if err != nil {
		return err
	}

	// Logs go to stderr since stdout carries the MCP protocol.
	logger := logging.New(logging.Config{
		Format: logging.Format(cfg.Logging.Format),
		Level:  cfg.Logging.Level,
		Output: os.Stderr,
	})

	registry, err := source.Build(cfg, logger)
	if err != nil {
		return err
	}
	defer registry.Close()

	server := mcp.NewServer(version.Version, registry, logger)

	if err := server.Start(); err != nil {
		logger.Error("MCP server error",
			"error", err.Error(),
		)
		return err
	}

	return nil
}
