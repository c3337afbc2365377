package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "driftsync.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}
	return path
}

func TestLoadConfig_ValidFile(t *testing.T) {
	configPath := writeConfig(t, `
server:
  host: "127.0.0.1"
  port: 9090

github:
  token: "ghp_test"
  webhook_secret: "hush"

sync:
  config_path: ".sync.yml"
  branch_prefix: "fork-sync"
`)

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Host != "127.0.0.1" {
		t.Errorf("Server.Host = %q, want %q", cfg.Server.Host, "127.0.0.1")
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want %d", cfg.Server.Port, 9090)
	}
	if cfg.GitHub.Token != "ghp_test" {
		t.Errorf("GitHub.Token = %q, want %q", cfg.GitHub.Token, "ghp_test")
	}
	if cfg.Sync.ConfigPath != ".sync.yml" {
		t.Errorf("Sync.ConfigPath = %q, want %q", cfg.Sync.ConfigPath, ".sync.yml")
	}
	if cfg.Sync.BranchPrefix != "fork-sync" {
		t.Errorf("Sync.BranchPrefix = %q, want %q", cfg.Sync.BranchPrefix, "fork-sync")
	}
}

func TestLoadConfig_DefaultsPreserved(t *testing.T) {
	configPath := writeConfig(t, `
github:
  token: "ghp_test"
`)

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want default 8080", cfg.Server.Port)
	}
	if !cfg.Events.Push || !cfg.Events.Fork || !cfg.Events.PullRequest || !cfg.Events.Installation {
		t.Errorf("Events = %+v, want all enabled by default", cfg.Events)
	}
	if cfg.Sync.ConfigPath != ".github/sync.yml" {
		t.Errorf("Sync.ConfigPath = %q, want default", cfg.Sync.ConfigPath)
	}
	if cfg.Sync.MaxParallel != 4 {
		t.Errorf("Sync.MaxParallel = %d, want default 4", cfg.Sync.MaxParallel)
	}
	if !cfg.Sync.WelcomeIssue {
		t.Errorf("Sync.WelcomeIssue = false, want default true")
	}
	if cfg.Audit.RetentionDays != 30 {
		t.Errorf("Audit.RetentionDays = %d, want default 30", cfg.Audit.RetentionDays)
	}
}

func TestLoadConfig_EnvSubstitution(t *testing.T) {
	t.Setenv("DRIFTSYNC_TEST_TOKEN", "secret-token")
	t.Setenv("DRIFTSYNC_TEST_SECRET", "secret-hook")

	configPath := writeConfig(t, `
github:
  token: "${DRIFTSYNC_TEST_TOKEN}"
  webhook_secret: "${DRIFTSYNC_TEST_SECRET}"
`)

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.GitHub.Token != "secret-token" {
		t.Errorf("GitHub.Token = %q, want substituted value", cfg.GitHub.Token)
	}
	if cfg.GitHub.WebhookSecret != "secret-hook" {
		t.Errorf("GitHub.WebhookSecret = %q, want substituted value", cfg.GitHub.WebhookSecret)
	}
}

func TestLoadConfig_DisableEvents(t *testing.T) {
	configPath := writeConfig(t, `
events:
  push: false
  fork: false
`)

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Events.Push {
		t.Errorf("Events.Push = true, want disabled")
	}
	if cfg.Events.Fork {
		t.Errorf("Events.Fork = true, want disabled")
	}
	if !cfg.Events.PullRequest {
		t.Errorf("Events.PullRequest = false, want still enabled")
	}
}

func TestLoadConfig_FileNotFound(t *testing.T) {
	_, err := Load("/nonexistent/driftsync.yaml")
	if err == nil {
		t.Error("Load() expected error for nonexistent file, got nil")
	}
}

func TestLoadConfig_InvalidSettings(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"port out of range", "server:\n  port: 70000\n"},
		{"zero max_parallel", "sync:\n  max_parallel: 0\n"},
		{"negative retention", "audit:\n  retention_days: -1\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			configPath := writeConfig(t, tt.content)
			if _, err := Load(configPath); err == nil {
				t.Errorf("Load() error = nil, want validation error")
			}
		})
	}
}
