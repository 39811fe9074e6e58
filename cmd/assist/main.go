// Gray Logic Assist - LLM-driven assistant core for building automation.
//
// This is the main entry point for the Gray Logic Assist service. Assist
// turns natural-language requests (and observed platform state changes)
// into validated, executed platform service calls:
//   - Decision pipeline: context snapshot -> prompt -> model -> typed decision
//   - Execution pipeline: per-action validation -> service call -> summary
//   - Offline-first posture: degraded answers beat silent failures
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/nerrad567/gray-logic-assist/migrations"

	"github.com/nerrad567/gray-logic-assist/internal/api"
	"github.com/nerrad567/gray-logic-assist/internal/assist"
	"github.com/nerrad567/gray-logic-assist/internal/history"
	"github.com/nerrad567/gray-logic-assist/internal/infrastructure/config"
	"github.com/nerrad567/gray-logic-assist/internal/infrastructure/database"
	"github.com/nerrad567/gray-logic-assist/internal/infrastructure/influxdb"
	"github.com/nerrad567/gray-logic-assist/internal/infrastructure/logging"
	"github.com/nerrad567/gray-logic-assist/internal/infrastructure/mqtt"
	"github.com/nerrad567/gray-logic-assist/internal/llm"
	"github.com/nerrad567/gray-logic-assist/internal/platform"
	"github.com/nerrad567/gray-logic-assist/internal/trigger"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

func main() {
	// Create a context that cancels on interrupt signals (Ctrl+C, SIGTERM)
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
// Returning an error allows main to handle exit codes consistently.
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting Gray Logic Assist",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	// Load configuration
	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	// Reinitialise logger with config settings
	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	// Open database
	db, err := database.Open(database.Config{
		Path:        cfg.Database.Path,
		WALMode:     cfg.Database.WALMode,
		BusyTimeout: cfg.Database.BusyTimeout,
	})
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		log.Info("closing database")
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}()
	log.Info("database connected", "path", cfg.Database.Path)

	// Run migrations
	if migrateErr := db.Migrate(ctx); migrateErr != nil {
		return fmt.Errorf("running migrations: %w", migrateErr)
	}
	log.Info("database migrations complete")

	// Interaction history repository
	historyRepo := history.NewSQLiteRepository(db.DB)

	// Platform client (Home Assistant REST API)
	platformClient := platform.New(platform.Config{
		BaseURL: cfg.Platform.BaseURL,
		Token:   cfg.Platform.Token,
		Timeout: cfg.Platform.Timeout,
	})
	log.Info("platform client created", "base_url", cfg.Platform.BaseURL)

	// Model client
	modelClient, err := llm.New(llm.Config{
		Model:   cfg.LLM.Model,
		APIKey:  cfg.LLM.APIKey,
		BaseURL: cfg.LLM.BaseURL,
		Timeout: cfg.LLM.Timeout,
	})
	if err != nil {
		return fmt.Errorf("creating model client: %w", err)
	}
	log.Info("model client created", "model", cfg.LLM.Model)

	// Decision and execution pipelines
	engine := assist.NewEngine(platformClient, modelClient, log)
	validator := assist.NewValidator(platformClient, cfg.Assist.FailClosed, log)
	executor := assist.NewExecutor(validator, platformClient, log)

	// Connect to InfluxDB (optional)
	var influxClient *influxdb.Client
	if cfg.InfluxDB.Enabled {
		influxClient, err = influxdb.Connect(cfg.InfluxDB)
		if err != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", err)
		}
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		log.Info("InfluxDB connected",
			"url", cfg.InfluxDB.URL,
			"org", cfg.InfluxDB.Org,
			"bucket", cfg.InfluxDB.Bucket,
		)

		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
	} else {
		log.Info("InfluxDB disabled")
	}

	// HTTP API server
	apiDeps := api.Deps{
		Config:   cfg.API,
		WS:       cfg.WebSocket,
		Security: cfg.Security,
		Assist:   cfg.Assist,
		Logger:   log,
		Engine:   engine,
		Executor: executor,
		History:  historyRepo,
		Platform: platformClient,
		Database: db,
		Version:  version,
	}
	if influxClient != nil {
		apiDeps.Metrics = influxClient
	}

	server, err := api.New(apiDeps)
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}
	if startErr := server.Start(ctx); startErr != nil {
		return fmt.Errorf("starting API server: %w", startErr)
	}
	defer func() {
		log.Info("stopping API server")
		if closeErr := server.Close(); closeErr != nil {
			log.Error("error stopping API server", "error", closeErr)
		}
	}()
	log.Info("API server started",
		"host", cfg.API.Host,
		"port", cfg.API.Port,
	)

	// Connect to MQTT broker and start the autonomic trigger (optional)
	var mqttClient *mqtt.Client
	if cfg.MQTT.Enabled {
		mqttClient, err = mqtt.Connect(cfg.MQTT)
		if err != nil {
			return fmt.Errorf("connecting to MQTT: %w", err)
		}
		defer func() {
			log.Info("disconnecting from MQTT")
			if closeErr := mqttClient.Close(); closeErr != nil {
				log.Error("error closing MQTT", "error", closeErr)
			}
		}()
		log.Info("MQTT connected",
			"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
			"client_id", cfg.MQTT.Broker.ClientID,
		)

		mqttClient.SetLogger(log)
		mqttClient.SetOnConnect(func() {
			log.Info("MQTT reconnected")
		})
		mqttClient.SetOnDisconnect(func(err error) {
			log.Warn("MQTT disconnected", "error", err)
		})

		if len(cfg.MQTT.StateTopics) > 0 {
			watcher := trigger.NewWatcher(trigger.Config{
				Topics:   cfg.MQTT.StateTopics,
				QoS:      byte(cfg.MQTT.QoS), //nolint:gosec // QoS is validated to 0-2 by config
				Debounce: time.Duration(cfg.MQTT.DebounceSeconds) * time.Second,
			}, mqttClient, engine, executor, historyRepo, log)

			if startErr := watcher.Start(ctx); startErr != nil {
				return fmt.Errorf("starting trigger watcher: %w", startErr)
			}
			defer func() {
				log.Info("stopping trigger watcher")
				if stopErr := watcher.Stop(); stopErr != nil {
					log.Error("error stopping trigger watcher", "error", stopErr)
				}
			}()
			log.Info("trigger watcher started",
				"topics", len(cfg.MQTT.StateTopics),
				"debounce_seconds", cfg.MQTT.DebounceSeconds,
			)
		} else {
			log.Info("trigger watcher disabled, no state topics configured")
		}
	} else {
		log.Info("MQTT disabled")
	}

	// Verify infrastructure connections are healthy. The platform and
	// model endpoints are deliberately excluded: Assist starts degraded
	// when they are down and recovers per-request.
	if err := healthCheck(ctx, db, mqttClient, influxClient); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	log.Info("all health checks passed")

	log.Info("initialisation complete, waiting for shutdown signal")

	// Wait for shutdown signal
	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")

	// Deferred Close() calls will run in reverse order:
	// 1. Trigger watcher (if enabled)
	// 2. MQTT (if enabled)
	// 3. API server
	// 4. InfluxDB (if enabled)
	// 5. Database

	log.Info("Gray Logic Assist stopped")
	return nil
}

// getConfigPath returns the configuration file path.
// Uses GLASSIST_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("GLASSIST_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// healthCheck verifies infrastructure connections are healthy.
// mqttClient and influxClient may be nil when those subsystems are disabled.
func healthCheck(ctx context.Context, db *database.DB, mqttClient *mqtt.Client, influxClient *influxdb.Client) error {
	if err := db.HealthCheck(ctx); err != nil {
		return fmt.Errorf("database: %w", err)
	}

	if mqttClient != nil {
		if err := mqttClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("mqtt: %w", err)
		}
	}

	if influxClient != nil {
		if err := influxClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("influxdb: %w", err)
		}
	}

	return nil
}
