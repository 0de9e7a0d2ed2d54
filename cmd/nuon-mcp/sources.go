package main

import (
	"fmt"
	"os"

	"github.com/sharkymark/nuon-mcp/internal/config"

	"github.com/spf13/cobra"
)

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "List the configured sources",
	Long: `Print the sources defined in the configuration file without
starting the server. Useful for checking a config before wiring it
into an MCP client.`,
	RunE: runSources,
}

var (
	sourcesExample bool
)

func init() {
	rootCmd.AddCommand(sourcesCmd)
	sourcesCmd.Flags().BoolVar(&sourcesExample, "example", false,
		"Print an example configuration file and exit")
}

func runSources(cmd *cobra.Command, args []string) error {
	if sourcesExample {
		return config.WriteExample(os.Stdout)
	}

	cfg, err := config.Load(configFlag)
	if err != nil {
		return err
	}

	for _, repo := range cfg.Repositories {
		fmt.Printf("%s (%s)\n", repo.Label, repo.EffectiveKind())
		if repo.Path != "" {
			fmt.Printf("  path: %s\n", repo.Path)
		}
		if len(repo.Objects) > 0 {
			fmt.Printf("  objects: %v\n", repo.Objects)
		}
		if repo.Description != "" {
			fmt.Printf("  description: %s\n", repo.Description)
		}
	}

	return nil
}
