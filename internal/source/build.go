package source

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/sharkymark/nuon-mcp/internal/config"
)

// CredentialsFromEnv reads the Salesforce client-credentials grant inputs
// from the process environment.
func CredentialsFromEnv() Credentials {
	return Credentials{
		ClientID:     os.Getenv("SF_CLIENT_ID"),
		ClientSecret: os.Getenv("SF_CLIENT_SECRET"),
		LoginURL:     os.Getenv("SF_LOGIN_URL"),
	}
}

// Build constructs the registry from the configured source descriptors.
// A filesystem entry whose path is missing or not a directory is skipped
// with a warning so one bad entry doesn't take the server down; a remote
// entry with missing credentials is a hard error since nothing it serves
// can ever succeed. Zero valid sources is fatal to the caller.
func Build(cfg *config.Config, logger *slog.Logger) (*Registry, error) {
	registry := NewRegistry(logger)

	for _, repo := range cfg.Repositories {
		var (
			src Source
			err error
		)

		switch repo.EffectiveKind() {
		case "filesystem":
			src, err = NewFilesystemSource(repo.Label, repo.Path, repo.Description, logger)
			if err != nil {
				logger.Warn("Skipping filesystem source",
					"label", repo.Label,
					"error", err.Error(),
				)
				continue
			}
		case "salesforce":
			src, err = NewSalesforceSource(repo.Label, repo.Description, repo.Objects, CredentialsFromEnv(), logger)
			if err != nil {
				return nil, err
			}
		default:
			return nil, fmt.Errorf("repository %s: unknown kind %q", repo.Label, repo.Kind)
		}

		if err := registry.Add(src); err != nil {
			return nil, err
		}

		meta := src.Metadata()
		logger.Info("Loaded source",
			"label", meta.Label,
			"kind", string(meta.Kind),
			"fileCount", meta.FileCount,
		)
	}

	if registry.Len() == 0 {
		return nil, fmt.Errorf("no valid repositories loaded")
	}

	return registry, nil
}
