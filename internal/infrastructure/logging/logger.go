package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/nerrad567/gray-logic-assist/internal/infrastructure/config"
)

// Logger is the structured logger used throughout Gray Logic Assist.
//
// It embeds slog.Logger, so the usual Debug/Info/Warn/Error methods are
// available directly. Every record carries the service name and build
// version, which keeps assist log lines distinguishable when several
// Gray Logic services share one log pipeline.
//
// Thread Safety:
//   - All methods are safe for concurrent use from multiple goroutines.
type Logger struct {
	*slog.Logger
}

// New creates a Logger from the logging section of config.yaml.
//
// Format selects JSON (the default, for log collectors) or text (for a
// terminal during development). Output selects stdout or stderr. Level
// filters records below the configured threshold.
func New(cfg config.LoggingConfig, version string) *Logger {
	return build(cfg, version, writerFor(cfg.Output))
}

// Default returns the logger used before configuration is loaded.
//
// JSON to stdout at info level, version "dev". Replace it with New()
// as soon as config is available; startup failures before that point
// still get structured output.
func Default() *Logger {
	return New(config.LoggingConfig{
		Level:  "info",
		Format: "json",
		Output: "stdout",
	}, "dev")
}

// With returns a new Logger carrying additional default attributes.
//
// Used to tag a subsystem once instead of on every call:
//
//	wlog := logger.With("component", "trigger")
//	wlog.Info("watcher started") // includes component=trigger
func (l *Logger) With(args ...any) *Logger {
	return &Logger{
		Logger: l.Logger.With(args...),
	}
}

// build assembles the handler chain. Split from New so tests can
// capture output in a buffer.
func build(cfg config.LoggingConfig, version string, w io.Writer) *Logger {
	opts := &slog.HandlerOptions{
		Level: parseLevel(cfg.Level),
	}

	var handler slog.Handler
	if strings.EqualFold(cfg.Format, "text") {
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}

	handler = handler.WithAttrs([]slog.Attr{
		slog.String("service", "graylogic-assist"),
		slog.String("version", version),
	})

	return &Logger{Logger: slog.New(handler)}
}

// writerFor maps the configured output name to a writer.
// Anything other than "stderr" goes to stdout.
func writerFor(output string) io.Writer {
	if strings.EqualFold(output, "stderr") {
		return os.Stderr
	}
	return os.Stdout
}

// parseLevel converts a config level string to slog.Level.
// Unrecognised values fall back to info rather than failing startup.
func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
