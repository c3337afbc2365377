package config

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

// Config represents the server configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Logging LoggingConfig `yaml:"logging"`
	GitHub  GitHubConfig  `yaml:"github"`
	Events  EventsConfig  `yaml:"events"`
	Sync    SyncConfig    `yaml:"sync"`
	Audit   AuditConfig   `yaml:"audit"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	Service string `yaml:"service"`
}

// GitHubConfig holds GitHub API credentials and endpoints.
type GitHubConfig struct {
	Token         string `yaml:"token"`
	WebhookSecret string `yaml:"webhook_secret"`
	APIURL        string `yaml:"api_url"` // empty means api.github.com
}

// EventsConfig controls which webhook events are handled.
type EventsConfig struct {
	Push         bool `yaml:"push"`
	Fork         bool `yaml:"fork"`
	PullRequest  bool `yaml:"pull_request"`
	Installation bool `yaml:"installation"`
}

// SyncConfig holds sync pipeline settings.
type SyncConfig struct {
	ConfigPath   string `yaml:"config_path"`
	BranchPrefix string `yaml:"branch_prefix"`
	WelcomeIssue bool   `yaml:"welcome_issue"`
	MaxParallel  int    `yaml:"max_parallel"`
}

// AuditConfig holds audit trail settings. An empty Dir disables the trail.
type AuditConfig struct {
	Dir           string `yaml:"dir"`
	RetentionDays int    `yaml:"retention_days"`
}

// envVarPattern matches ${VAR_NAME} patterns.
var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Logging: LoggingConfig{
			Level:   "info",
			Service: "driftsync",
		},
		Events: EventsConfig{
			Push:         true,
			Fork:         true,
			PullRequest:  true,
			Installation: true,
		},
		Sync: SyncConfig{
			ConfigPath:   ".github/sync.yml",
			BranchPrefix: "sync/upstream",
			WelcomeIssue: true,
			MaxParallel:  4,
		},
		Audit: AuditConfig{
			RetentionDays: 30,
		},
	}
}

// Load reads and parses the config file at the given path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	// Substitute environment variables
	data = envVarPattern.ReplaceAllFunc(data, func(match []byte) []byte {
		varName := envVarPattern.FindSubmatch(match)[1]
		return []byte(os.Getenv(string(varName)))
	})

	// Start with defaults
	cfg := DefaultConfig()

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks settings that have no sensible fallback.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	if c.Sync.MaxParallel < 1 {
		return fmt.Errorf("sync.max_parallel must be at least 1, got %d", c.Sync.MaxParallel)
	}
	if c.Audit.RetentionDays < 0 {
		return fmt.Errorf("audit.retention_days must not be negative, got %d", c.Audit.RetentionDays)
	}
	return nil
}
