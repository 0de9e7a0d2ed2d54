package main

import (
	"os"

	"github.com/sharkymark/nuon-mcp/internal/logging"
)

func main() {
	logger := logging.New(logging.Config{
		Format: "text",
		Level:  "info",
	})

	if err := rootCmd.Execute(); err != nil {
		logger.Error("Command execution failed",
			"error", err.Error(),
		)
		os.Exit(1)
	}
}
