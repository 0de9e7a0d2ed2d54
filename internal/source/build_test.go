package source

import (
	"strings"
	"testing"

	"github.com/sharkymark/nuon-mcp/internal/config"
	"github.com/sharkymark/nuon-mcp/internal/logging"
)

func TestBuildSkipsBadFilesystemEntries(t *testing.T) {
	cfg := &config.Config{
		Repositories: []config.SourceConfig{
			{Label: "good", Path: t.TempDir()},
			{Label: "gone", Path: "/no/such/dir/anywhere"},
		},
	}

	registry, err := Build(cfg, logging.NewDiscard())
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if registry.Len() != 1 {
		t.Errorf("got %d sources, want 1 (bad entry skipped)", registry.Len())
	}
	if _, err := registry.Get("good"); err != nil {
		t.Errorf("surviving source missing: %v", err)
	}
}

func TestBuildFailsWithZeroSources(t *testing.T) {
	cfg := &config.Config{
		Repositories: []config.SourceConfig{
			{Label: "gone", Path: "/no/such/dir/anywhere"},
		},
	}

	_, err := Build(cfg, logging.NewDiscard())
	if err == nil || !strings.Contains(err.Error(), "no valid repositories") {
		t.Errorf("err = %v, want no-valid-repositories error", err)
	}
}

func TestBuildSalesforceMissingCredentialsIsFatal(t *testing.T) {
	t.Setenv("SF_CLIENT_ID", "")
	t.Setenv("SF_CLIENT_SECRET", "")
	t.Setenv("SF_LOGIN_URL", "")

	cfg := &config.Config{
		Repositories: []config.SourceConfig{
			{Label: "docs", Path: t.TempDir()},
			{Label: "crm", Kind: "salesforce"},
		},
	}

	_, err := Build(cfg, logging.NewDiscard())
	if err == nil || !strings.Contains(err.Error(), "SF_CLIENT_ID") {
		t.Errorf("err = %v, want missing-credentials error", err)
	}
}

func TestCredentialsFromEnv(t *testing.T) {
	t.Setenv("SF_CLIENT_ID", "id")
	t.Setenv("SF_CLIENT_SECRET", "secret")
	t.Setenv("SF_LOGIN_URL", "https://login.example.com")

	creds := CredentialsFromEnv()
	if creds.ClientID != "id" || creds.ClientSecret != "secret" || creds.LoginURL != "https://login.example.com" {
		t.Errorf("creds = %+v", creds)
	}
}
