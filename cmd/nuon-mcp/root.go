package main

import (
	"github.com/sharkymark/nuon-mcp/internal/version"

	"github.com/spf13/cobra"
)

var (
	// configFlag is the CLI --config flag value
	configFlag string
)

var rootCmd = &cobra.Command{
	Use:   "nuon-mcp",
	Short: "nuon-mcp - multi-repository MCP server",
	Long: `nuon-mcp exposes a set of heterogeneous sources (local filesystem
repositories and Salesforce orgs) to MCP clients over a single stdio
server, with unified search, read, and listing tools.`,
	Version: version.Version,
}

func init() {
	rootCmd.SetVersionTemplate("nuon-mcp version {{.Version}}\n")
	rootCmd.PersistentFlags().StringVar(&configFlag, "config", "config.yaml",
		"Path to the repository configuration file")
}
