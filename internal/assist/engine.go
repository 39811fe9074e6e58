package assist

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Logger is the minimal logging interface the pipeline needs.
// Compatible with logging.Logger and slog.Logger.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// ContextProvider exposes the platform state the pipeline reads: current
// entities for snapshots and existence checks, and the services each
// domain offers. Implemented by the platform client.
type ContextProvider interface {
	// GetEntities returns every entity currently known to the platform.
	GetEntities(ctx context.Context) ([]Entity, error)

	// GetServices returns the service names exposed per domain.
	GetServices(ctx context.Context) (map[string][]string, error)
}

// ModelClient is the language-model collaborator. Complete sends one prompt
// and returns the raw text response.
type ModelClient interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Engine turns a free-text request into a typed Decision.
//
// Each Decide call is independent: no state is retained between calls, and
// the platform snapshot is re-read every time.
type Engine struct {
	provider ContextProvider
	model    ModelClient
	logger   Logger
}

// NewEngine creates a decision engine. logger may be nil.
func NewEngine(provider ContextProvider, model ModelClient, logger Logger) *Engine {
	if logger == nil {
		logger = noopLogger{}
	}
	return &Engine{
		provider: provider,
		model:    model,
		logger:   logger,
	}
}

// Decide interprets userText under the given mode and returns the model's
// structured decision.
//
// Decision building is fail-fast: any stage error aborts the call. There is
// no partial decision.
//
// Returns:
//   - ErrInvalidInput for empty user text
//   - ErrInvalidMode for an unrecognised mode
//   - ErrContextUnavailable if the platform snapshot cannot be read
//   - ErrModelUnavailable if the language model call fails
//   - ErrInvalidResponse if the model output does not conform
func (e *Engine) Decide(ctx context.Context, userText string, mode Mode) (*Decision, error) {
	if strings.TrimSpace(userText) == "" {
		return nil, fmt.Errorf("%w: user text cannot be empty", ErrInvalidInput)
	}
	if !mode.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidMode, mode)
	}

	snapshot, err := e.snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrContextUnavailable, err)
	}

	prompt, err := BuildPrompt(userText, mode, snapshot)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	raw, err := e.model.Complete(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrModelUnavailable, err)
	}
	e.logger.Debug("model completed",
		"mode", mode,
		"prompt_bytes", len(prompt),
		"response_bytes", len(raw),
		"duration_ms", time.Since(start).Milliseconds(),
	)

	decision, err := ParseDecision(raw)
	if err != nil {
		return nil, err
	}

	e.logger.Info("decision made",
		"mode", mode,
		"actions", len(decision.Actions),
	)
	return decision, nil
}

// snapshot reads a point-in-time view of the platform for the prompt.
func (e *Engine) snapshot(ctx context.Context) (Snapshot, error) {
	entities, err := e.provider.GetEntities(ctx)
	if err != nil {
		return Snapshot{}, fmt.Errorf("fetching entities: %w", err)
	}

	services, err := e.provider.GetServices(ctx)
	if err != nil {
		return Snapshot{}, fmt.Errorf("fetching services: %w", err)
	}

	return Snapshot{
		Entities: entities,
		Services: services,
	}, nil
}
