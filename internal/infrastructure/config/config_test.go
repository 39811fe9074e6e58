package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return configPath
}

func TestLoad_ValidConfig(t *testing.T) {
	content := `
assist:
  default_mode: "supervisor"
  fail_closed: true
  history_limit: 500
platform:
  base_url: "http://homeassistant.local:8123"
  token: "test-platform-token"
  timeout: 15
llm:
  provider: "openai"
  model: "gpt-4o"
  api_key: "test-llm-key"
  timeout: 90
database:
  path: "/tmp/assist.db"
  wal_mode: true
  busy_timeout: 5
api:
  host: "0.0.0.0"
  port: 8090
security:
  jwt:
    secret: "test-secret-key-at-least-32-chars!"
`
	cfg, err := Load(writeConfig(t, content))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Assist.DefaultMode != "supervisor" {
		t.Errorf("Assist.DefaultMode = %q, want %q", cfg.Assist.DefaultMode, "supervisor")
	}

	if !cfg.Assist.FailClosed {
		t.Error("Assist.FailClosed = false, want true")
	}

	if cfg.Platform.BaseURL != "http://homeassistant.local:8123" {
		t.Errorf("Platform.BaseURL = %q, want %q", cfg.Platform.BaseURL, "http://homeassistant.local:8123")
	}

	if cfg.LLM.Model != "gpt-4o" {
		t.Errorf("LLM.Model = %q, want %q", cfg.LLM.Model, "gpt-4o")
	}

	if cfg.Database.Path != "/tmp/assist.db" {
		t.Errorf("Database.Path = %q, want %q", cfg.Database.Path, "/tmp/assist.db")
	}
}

func TestLoad_Defaults(t *testing.T) {
	// Minimal file: everything not set should fall back to defaults.
	content := `
platform:
  token: "tok"
`
	cfg, err := Load(writeConfig(t, content))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Assist.DefaultMode != "assistant" {
		t.Errorf("Assist.DefaultMode = %q, want default %q", cfg.Assist.DefaultMode, "assistant")
	}

	if cfg.Assist.FailClosed {
		t.Error("Assist.FailClosed = true, want default false")
	}

	if cfg.API.Port != 8090 {
		t.Errorf("API.Port = %d, want default 8090", cfg.API.Port)
	}

	if cfg.LLM.Timeout != 60 {
		t.Errorf("LLM.Timeout = %d, want default 60", cfg.LLM.Timeout)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	content := `
platform:
  base_url: "http://file-value:8123"
  token: "file-token"
`
	t.Setenv("GLASSIST_PLATFORM_URL", "http://env-value:8123")
	t.Setenv("GLASSIST_LLM_API_KEY", "env-llm-key")

	cfg, err := Load(writeConfig(t, content))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Platform.BaseURL != "http://env-value:8123" {
		t.Errorf("Platform.BaseURL = %q, want env override %q", cfg.Platform.BaseURL, "http://env-value:8123")
	}

	if cfg.LLM.APIKey != "env-llm-key" {
		t.Errorf("LLM.APIKey = %q, want env override %q", cfg.LLM.APIKey, "env-llm-key")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("Load() expected error for missing file, got nil")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "invalid: [yaml: content"))
	if err == nil {
		t.Error("Load() expected error for invalid YAML, got nil")
	}
}

func TestLoad_ValidationFailure(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name: "unknown default mode",
			content: `
assist:
  default_mode: "chaos"
`,
		},
		{
			name: "negative history limit",
			content: `
assist:
  history_limit: -1
`,
		},
		{
			name: "port out of range",
			content: `
api:
  port: 99999
`,
		},
		{
			name: "mqtt enabled without topics",
			content: `
mqtt:
  enabled: true
`,
		},
		{
			name: "influxdb enabled without url",
			content: `
influxdb:
  enabled: true
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, tt.content)); err == nil {
				t.Error("Load() expected validation error, got nil")
			}
		})
	}
}
