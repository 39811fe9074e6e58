package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// TestRun_InvalidConfig verifies run fails with invalid config path.
func TestRun_InvalidConfig(t *testing.T) {
	t.Setenv("GLASSIST_CONFIG", "/nonexistent/path/config.yaml")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := run(ctx)
	if err == nil {
		t.Fatal("run() should fail with invalid config path")
	}
}

// TestRun_MissingDatabasePath verifies run fails when database path is empty.
func TestRun_MissingDatabasePath(t *testing.T) {
	configPath := writeTestConfig(t, `
assist:
  default_mode: assistant

platform:
  base_url: "http://127.0.0.1:8123"
  token: "test-token"
  timeout: 10

llm:
  model: "gpt-4o-mini"
  api_key: "test-key"
  timeout: 30

database:
  path: ""
  wal_mode: true
  busy_timeout: 5

api:
  host: "127.0.0.1"
  port: 8090
  timeouts:
    read: 30
    write: 60
    idle: 120

mqtt:
  enabled: false

influxdb:
  enabled: false

logging:
  level: info
  format: text
  output: stdout

security:
  jwt:
    secret: "test-secret-for-development-only"
`)
	t.Setenv("GLASSIST_CONFIG", configPath)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := run(ctx); err == nil {
		t.Fatal("run() should fail with empty database path")
	}
}

// TestRun_MissingModelKey verifies run fails before serving when the model
// client is unconfigured.
func TestRun_MissingModelKey(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := writeTestConfig(t, `
assist:
  default_mode: assistant

platform:
  base_url: "http://127.0.0.1:8123"
  token: "test-token"
  timeout: 10

llm:
  model: "gpt-4o-mini"
  api_key: ""
  timeout: 30

database:
  path: "`+filepath.Join(tmpDir, "test.db")+`"
  wal_mode: true
  busy_timeout: 5

api:
  host: "127.0.0.1"
  port: 8091
  timeouts:
    read: 30
    write: 60
    idle: 120

mqtt:
  enabled: false

influxdb:
  enabled: false

logging:
  level: info
  format: text
  output: stdout

security:
  jwt:
    secret: "test-secret-for-development-only"
`)
	t.Setenv("GLASSIST_CONFIG", configPath)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := run(ctx); err == nil {
		t.Fatal("run() should fail when the model API key is missing")
	}
}

// TestGetConfigPath_Default verifies default config path.
func TestGetConfigPath_Default(t *testing.T) {
	t.Setenv("GLASSIST_CONFIG", "")
	os.Unsetenv("GLASSIST_CONFIG")

	if path := getConfigPath(); path != defaultConfigPath {
		t.Errorf("getConfigPath() = %q, want %q", path, defaultConfigPath)
	}
}

// TestGetConfigPath_EnvOverride verifies environment variable override.
func TestGetConfigPath_EnvOverride(t *testing.T) {
	expected := "/custom/path/config.yaml"
	t.Setenv("GLASSIST_CONFIG", expected)

	if path := getConfigPath(); path != expected {
		t.Errorf("getConfigPath() = %q, want %q", path, expected)
	}
}

// TestRun_CancelledBeforeShutdown starts the full service with MQTT and
// InfluxDB disabled, then cancels the context. A clean shutdown returns nil.
func TestRun_CancelledBeforeShutdown(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := writeTestConfig(t, `
assist:
  default_mode: assistant

platform:
  base_url: "http://127.0.0.1:8123"
  token: "test-token"
  timeout: 10

llm:
  model: "gpt-4o-mini"
  api_key: "test-key"
  timeout: 30

database:
  path: "`+filepath.Join(tmpDir, "test.db")+`"
  wal_mode: true
  busy_timeout: 5

api:
  host: "127.0.0.1"
  port: 18092
  timeouts:
    read: 30
    write: 60
    idle: 120

mqtt:
  enabled: false

influxdb:
  enabled: false

logging:
  level: info
  format: text
  output: stdout

security:
  jwt:
    secret: "test-secret-for-development-only"
`)
	t.Setenv("GLASSIST_CONFIG", configPath)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := run(ctx); err != nil {
		t.Fatalf("run() returned error on clean shutdown: %v", err)
	}
}

// writeTestConfig writes config content to a temp file and returns its path.
func writeTestConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test-config.yaml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return path
}
