// Package config loads the source descriptor list from config.yaml.
// Credentials never live in the file; remote sources read them from the
// process environment at registry build time.
package config

import (
	"fmt"
	"io"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// SourceConfig describes one source to register at startup.
type SourceConfig struct {
	Label       string   `mapstructure:"label" yaml:"label"`
	Kind        string   `mapstructure:"kind" yaml:"kind,omitempty"`
	Path        string   `mapstructure:"path" yaml:"path,omitempty"`
	Description string   `mapstructure:"description" yaml:"description,omitempty"`
	Objects     []string `mapstructure:"objects" yaml:"objects,omitempty"`
}

// EffectiveKind resolves the source kind, defaulting from the presence of a
// path field when the config omits it.
func (s SourceConfig) EffectiveKind() string {
	if s.Kind != "" {
		return s.Kind
	}
	if s.Path != "" {
		return "filesystem"
	}
	return "salesforce"
}

// LoggingConfig controls the stderr logger.
type LoggingConfig struct {
	Format string `mapstructure:"format" yaml:"format,omitempty"`
	Level  string `mapstructure:"level" yaml:"level,omitempty"`
}

// Config is the complete server configuration.
type Config struct {
	Repositories []SourceConfig `mapstructure:"repositories" yaml:"repositories"`
	Logging      LoggingConfig  `mapstructure:"logging" yaml:"logging,omitempty"`
}

// Load reads and validates the configuration file at path.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.level", "info")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks the descriptor list for structural problems.
func (c *Config) Validate() error {
	if len(c.Repositories) == 0 {
		return fmt.Errorf("invalid configuration: 'repositories' key not found or empty")
	}

	seen := make(map[string]bool)
	for i, repo := range c.Repositories {
		if repo.Label == "" {
			return fmt.Errorf("repository %d: missing label", i)
		}
		if seen[repo.Label] {
			return fmt.Errorf("duplicate repository label: %s", repo.Label)
		}
		seen[repo.Label] = true

		switch repo.EffectiveKind() {
		case "filesystem":
			if repo.Path == "" {
				return fmt.Errorf("repository %s: filesystem source requires a path", repo.Label)
			}
		case "salesforce":
			// Object allowlist is optional; credentials come from env.
		default:
			return fmt.Errorf("repository %s: unknown kind %q", repo.Label, repo.Kind)
		}
	}

	return nil
}

// WriteExample writes a commented starter config.yaml.
func WriteExample(w io.Writer) error {
	example := Config{
		Repositories: []SourceConfig{
			{
				Label:       "docs",
				Path:        "~/repos/docs",
				Description: "Project documentation",
			},
			{
				Label:       "crm",
				Kind:        "salesforce",
				Description: "Production Salesforce org",
				Objects:     []string{"Account", "Contact", "Opportunity"},
			},
		},
		Logging: LoggingConfig{Format: "json", Level: "info"},
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	defer func() { _ = enc.Close() }()
	return enc.Encode(&example)
}
