package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for Gray Logic Assist.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	Assist    AssistConfig    `yaml:"assist"`
	Platform  PlatformConfig  `yaml:"platform"`
	LLM       LLMConfig       `yaml:"llm"`
	Database  DatabaseConfig  `yaml:"database"`
	API       APIConfig       `yaml:"api"`
	WebSocket WebSocketConfig `yaml:"websocket"`
	MQTT      MQTTConfig      `yaml:"mqtt"`
	InfluxDB  InfluxDBConfig  `yaml:"influxdb"`
	Logging   LoggingConfig   `yaml:"logging"`
	Security  SecurityConfig  `yaml:"security"`
}

// AssistConfig contains decision-pipeline policy settings.
type AssistConfig struct {
	// DefaultMode is the mode used when a request does not name one.
	// One of: assistant, supervisor, autonomic.
	DefaultMode string `yaml:"default_mode"`

	// FailClosed rejects actions whose entity/service existence cannot be
	// verified because the platform query failed. The default (false)
	// preserves the lenient fail-open policy: unverifiable actions proceed.
	FailClosed bool `yaml:"fail_closed"`

	// HistoryLimit caps the number of interaction rows retained in SQLite.
	// 0 disables pruning.
	HistoryLimit int `yaml:"history_limit"`
}

// PlatformConfig contains automation-platform API connection settings.
type PlatformConfig struct {
	// BaseURL is the platform REST API root (e.g. "http://homeassistant.local:8123").
	BaseURL string `yaml:"base_url"`

	// Token is the long-lived bearer token for API access.
	Token string `yaml:"token"`

	// Timeout is the per-request timeout in seconds.
	Timeout int `yaml:"timeout"`
}

// LLMConfig contains language-model provider settings.
type LLMConfig struct {
	// Provider selects the backend: "openai" or any OpenAI-compatible API.
	Provider string `yaml:"provider"`
	Model    string `yaml:"model"`
	APIKey   string `yaml:"api_key"`

	// BaseURL overrides the provider endpoint (OpenRouter, local inference).
	BaseURL string `yaml:"base_url,omitempty"`

	// Timeout is the completion timeout in seconds.
	Timeout int `yaml:"timeout"`
}

// DatabaseConfig contains SQLite database settings.
type DatabaseConfig struct {
	Path        string `yaml:"path"`
	WALMode     bool   `yaml:"wal_mode"`
	BusyTimeout int    `yaml:"busy_timeout"`
}

// APIConfig contains HTTP API server settings.
type APIConfig struct {
	Host     string           `yaml:"host"`
	Port     int              `yaml:"port"`
	Timeouts APITimeoutConfig `yaml:"timeouts"`
	CORS     CORSConfig       `yaml:"cors"`
}

// APITimeoutConfig contains HTTP timeout settings (seconds).
type APITimeoutConfig struct {
	Read  int `yaml:"read"`
	Write int `yaml:"write"`
	Idle  int `yaml:"idle"`
}

// CORSConfig contains Cross-Origin Resource Sharing settings.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
	AllowedMethods []string `yaml:"allowed_methods"`
	AllowedHeaders []string `yaml:"allowed_headers"`
}

// WebSocketConfig contains WebSocket event-hub settings.
type WebSocketConfig struct {
	Path           string `yaml:"path"`
	MaxMessageSize int    `yaml:"max_message_size"`
	PingInterval   int    `yaml:"ping_interval"`
	PongTimeout    int    `yaml:"pong_timeout"`
}

// MQTTConfig contains MQTT broker settings for the autonomic trigger.
type MQTTConfig struct {
	Enabled   bool                `yaml:"enabled"`
	Broker    MQTTBrokerConfig    `yaml:"broker"`
	Auth      MQTTAuthConfig      `yaml:"auth"`
	QoS       int                 `yaml:"qos"`
	Reconnect MQTTReconnectConfig `yaml:"reconnect"`

	// StateTopics are the platform state-change topics the autonomic
	// trigger subscribes to (e.g. "homeassistant/statestream/#").
	StateTopics []string `yaml:"state_topics"`

	// DebounceSeconds is the quiet period after a state burst before the
	// autonomic trigger asks the engine for a decision.
	DebounceSeconds int `yaml:"debounce_seconds"`
}

// MQTTBrokerConfig contains MQTT broker connection details.
type MQTTBrokerConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	TLS      bool   `yaml:"tls"`
	ClientID string `yaml:"client_id"`
}

// MQTTAuthConfig contains MQTT authentication credentials.
type MQTTAuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// MQTTReconnectConfig contains MQTT reconnection settings (seconds).
type MQTTReconnectConfig struct {
	InitialDelay int `yaml:"initial_delay"`
	MaxDelay     int `yaml:"max_delay"`
}

// InfluxDBConfig contains InfluxDB metrics settings.
type InfluxDBConfig struct {
	Enabled       bool   `yaml:"enabled"`
	URL           string `yaml:"url"`
	Token         string `yaml:"token"`
	Org           string `yaml:"org"`
	Bucket        string `yaml:"bucket"`
	BatchSize     int    `yaml:"batch_size"`
	FlushInterval int    `yaml:"flush_interval"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// SecurityConfig contains security settings.
type SecurityConfig struct {
	JWT  JWTConfig  `yaml:"jwt"`
	Auth AuthConfig `yaml:"auth"`
}

// AuthConfig contains the admin login credentials for the HTTP API.
type AuthConfig struct {
	Username string `yaml:"username"`

	// PasswordHash is the Argon2id PHC hash of the admin password.
	// When empty, login is disabled and every protected route returns 401.
	PasswordHash string `yaml:"password_hash"`
}

// JWTConfig contains JWT token settings.
type JWTConfig struct {
	Secret string `yaml:"secret"`

	// AccessTokenTTL is the token lifetime in minutes.
	AccessTokenTTL int `yaml:"access_token_ttl"`
}

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern: GLASSIST_SECTION_KEY
// For example: GLASSIST_PLATFORM_TOKEN, GLASSIST_LLM_API_KEY
//
// Parameters:
//   - path: Path to the YAML configuration file
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: If file cannot be read, parsed, or validation fails
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// defaultConfig returns a Config with sensible defaults.
func defaultConfig() *Config {
	return &Config{
		Assist: AssistConfig{
			DefaultMode:  "assistant",
			FailClosed:   false,
			HistoryLimit: 1000,
		},
		Platform: PlatformConfig{
			BaseURL: "http://localhost:8123",
			Timeout: 10,
		},
		LLM: LLMConfig{
			Provider: "openai",
			Model:    "gpt-4o-mini",
			Timeout:  60,
		},
		Database: DatabaseConfig{
			Path:        "./data/assist.db",
			WALMode:     true,
			BusyTimeout: 5,
		},
		API: APIConfig{
			Host: "0.0.0.0",
			Port: 8090,
			Timeouts: APITimeoutConfig{
				Read:  30,
				Write: 120, // model completions can be slow
				Idle:  60,
			},
		},
		WebSocket: WebSocketConfig{
			Path:           "/ws",
			MaxMessageSize: 8192,
			PingInterval:   30,
			PongTimeout:    10,
		},
		MQTT: MQTTConfig{
			Broker: MQTTBrokerConfig{
				Host:     "localhost",
				Port:     1883,
				ClientID: "graylogic-assist",
			},
			QoS: 1,
			Reconnect: MQTTReconnectConfig{
				InitialDelay: 1,
				MaxDelay:     60,
			},
			DebounceSeconds: 30,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
		Security: SecurityConfig{
			JWT: JWTConfig{
				AccessTokenTTL: 15,
			},
			Auth: AuthConfig{
				Username: "admin",
			},
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables follow the pattern: GLASSIST_SECTION_KEY
func applyEnvOverrides(cfg *Config) {
	// Platform
	if v := os.Getenv("GLASSIST_PLATFORM_URL"); v != "" {
		cfg.Platform.BaseURL = v
	}
	if v := os.Getenv("GLASSIST_PLATFORM_TOKEN"); v != "" {
		cfg.Platform.Token = v
	}

	// LLM
	if v := os.Getenv("GLASSIST_LLM_API_KEY"); v != "" {
		cfg.LLM.APIKey = v
	}
	if v := os.Getenv("GLASSIST_LLM_MODEL"); v != "" {
		cfg.LLM.Model = v
	}

	// Database
	if v := os.Getenv("GLASSIST_DATABASE_PATH"); v != "" {
		cfg.Database.Path = v
	}

	// API
	if v := os.Getenv("GLASSIST_API_HOST"); v != "" {
		cfg.API.Host = v
	}
	if v := os.Getenv("GLASSIST_API_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.API.Port = port
		}
	}

	// MQTT
	if v := os.Getenv("GLASSIST_MQTT_HOST"); v != "" {
		cfg.MQTT.Broker.Host = v
	}
	if v := os.Getenv("GLASSIST_MQTT_USERNAME"); v != "" {
		cfg.MQTT.Auth.Username = v
	}
	if v := os.Getenv("GLASSIST_MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Auth.Password = v
	}

	// InfluxDB
	if v := os.Getenv("GLASSIST_INFLUXDB_TOKEN"); v != "" {
		cfg.InfluxDB.Token = v
	}

	// Security - JWT secret (IMPORTANT: always override in production)
	if v := os.Getenv("GLASSIST_JWT_SECRET"); v != "" {
		cfg.Security.JWT.Secret = v
	}
	if v := os.Getenv("GLASSIST_AUTH_PASSWORD_HASH"); v != "" {
		cfg.Security.Auth.PasswordHash = v
	}
}

// validModes are the decision modes accepted in assist.default_mode.
var validModes = map[string]struct{}{
	"assistant":  {},
	"supervisor": {},
	"autonomic":  {},
}

// Validate checks the configuration for errors and security issues.
//
// Returns:
//   - error: Description of validation failure, or nil if valid
func (c *Config) Validate() error {
	var errs []string

	// Assist validation
	if _, ok := validModes[c.Assist.DefaultMode]; !ok {
		errs = append(errs, fmt.Sprintf("assist.default_mode %q is not a recognised mode", c.Assist.DefaultMode))
	}
	if c.Assist.HistoryLimit < 0 {
		errs = append(errs, "assist.history_limit cannot be negative")
	}

	// Platform validation
	if c.Platform.BaseURL == "" {
		errs = append(errs, "platform.base_url is required")
	}
	if c.Platform.Timeout <= 0 {
		errs = append(errs, "platform.timeout must be positive")
	}

	// LLM validation
	if c.LLM.Model == "" {
		errs = append(errs, "llm.model is required")
	}
	if c.LLM.Timeout <= 0 {
		errs = append(errs, "llm.timeout must be positive")
	}

	// Database validation
	if c.Database.Path == "" {
		errs = append(errs, "database.path is required")
	}

	// API validation
	if c.API.Port <= 0 || c.API.Port > 65535 {
		errs = append(errs, fmt.Sprintf("api.port %d is out of range", c.API.Port))
	}

	// MQTT validation (only when enabled)
	if c.MQTT.Enabled {
		if c.MQTT.Broker.Host == "" {
			errs = append(errs, "mqtt.broker.host is required when MQTT is enabled")
		}
		if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
			errs = append(errs, fmt.Sprintf("mqtt.qos %d is out of range (0-2)", c.MQTT.QoS))
		}
		if len(c.MQTT.StateTopics) == 0 {
			errs = append(errs, "mqtt.state_topics is required when MQTT is enabled")
		}
	}

	// InfluxDB validation (only when enabled)
	if c.InfluxDB.Enabled {
		if c.InfluxDB.URL == "" {
			errs = append(errs, "influxdb.url is required when InfluxDB is enabled")
		}
		if c.InfluxDB.Org == "" || c.InfluxDB.Bucket == "" {
			errs = append(errs, "influxdb.org and influxdb.bucket are required when InfluxDB is enabled")
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
