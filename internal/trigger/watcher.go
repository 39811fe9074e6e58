package trigger

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/nerrad567/gray-logic-assist/internal/assist"
	"github.com/nerrad567/gray-logic-assist/internal/history"
	"github.com/nerrad567/gray-logic-assist/internal/infrastructure/mqtt"
)

const (
	// defaultDebounce is the quiet period after the last state change
	// before the pipeline runs.
	defaultDebounce = 30 * time.Second

	// defaultMaxPending caps the state changes buffered per burst. Older
	// changes are dropped first once the cap is reached.
	defaultMaxPending = 100

	// pipelineTimeout bounds one decide-and-execute cycle. Covers the
	// platform snapshot, the model call, and the action batch.
	pipelineTimeout = 2 * time.Minute

	// maxPayloadBytes limits how much of each state payload is carried
	// into the prompt.
	maxPayloadBytes = 256

	// eventBuffer is the channel depth between MQTT handlers and the run
	// loop. Handlers never block: overflow is dropped with a warning.
	eventBuffer = 64
)

// Broker is the MQTT surface the watcher needs. Implemented by mqtt.Client.
type Broker interface {
	Subscribe(topic string, qos byte, handler mqtt.MessageHandler) error
	Unsubscribe(topic string) error
	Publish(topic string, payload []byte, qos byte, retained bool) error
}

// Decider turns observed state changes into a typed decision.
// Implemented by assist.Engine.
type Decider interface {
	Decide(ctx context.Context, userText string, mode assist.Mode) (*assist.Decision, error)
}

// Runner executes a decision's action batch. Implemented by assist.Executor.
type Runner interface {
	ExecuteAll(ctx context.Context, actions []assist.Action) (*assist.ExecutionSummary, error)
}

// Recorder persists completed autonomic turns. Implemented by
// history.SQLiteRepository. May be nil; recording is best-effort.
type Recorder interface {
	Create(ctx context.Context, interaction *history.Interaction) error
}

// Logger is the minimal logging interface the watcher needs.
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

// Config holds watcher settings.
type Config struct {
	// Topics are the platform state-change topics to subscribe to.
	// Wildcards are allowed (e.g. "homeassistant/statestream/#").
	Topics []string

	// QoS for state subscriptions and event publishes.
	QoS byte

	// Debounce is the quiet period after the last observed change before
	// the pipeline runs. Zero means defaultDebounce.
	Debounce time.Duration

	// MaxPending caps the buffered changes per burst. Zero means
	// defaultMaxPending.
	MaxPending int
}

// stateChange is one observed platform state message.
type stateChange struct {
	Topic   string
	Payload string
	At      time.Time
}

// Watcher subscribes to platform state topics and runs the autonomic
// pipeline after each debounced burst of changes.
type Watcher struct {
	cfg      Config
	broker   Broker
	engine   Decider
	executor Runner
	recorder Recorder
	logger   Logger

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}

	events chan stateChange
}

// NewWatcher creates an autonomic watcher. recorder and logger may be nil.
func NewWatcher(cfg Config, broker Broker, engine Decider, executor Runner, recorder Recorder, logger Logger) *Watcher {
	if cfg.Debounce <= 0 {
		cfg.Debounce = defaultDebounce
	}
	if cfg.MaxPending <= 0 {
		cfg.MaxPending = defaultMaxPending
	}
	if logger == nil {
		logger = noopLogger{}
	}
	return &Watcher{
		cfg:      cfg,
		broker:   broker,
		engine:   engine,
		executor: executor,
		recorder: recorder,
		logger:   logger,
	}
}

// Start subscribes to the configured state topics and begins watching.
//
// Returns ErrNoTopics if no topics are configured, ErrAlreadyRunning if the
// watcher is already started, or a subscription error (in which case any
// topics already subscribed are unsubscribed again).
func (w *Watcher) Start(ctx context.Context) error {
	if len(w.cfg.Topics) == 0 {
		return ErrNoTopics
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		return ErrAlreadyRunning
	}

	w.events = make(chan stateChange, eventBuffer)

	subscribed := make([]string, 0, len(w.cfg.Topics))
	for _, topic := range w.cfg.Topics {
		if err := w.broker.Subscribe(topic, w.cfg.QoS, w.onMessage); err != nil {
			for _, t := range subscribed {
				_ = w.broker.Unsubscribe(t) //nolint:errcheck // Rollback is best-effort
			}
			return fmt.Errorf("subscribing to %q: %w", topic, err)
		}
		subscribed = append(subscribed, topic)
	}

	runCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	w.done = make(chan struct{})
	w.running = true

	go w.run(runCtx)

	w.logger.Info("autonomic watcher started",
		"topics", len(w.cfg.Topics),
		"debounce", w.cfg.Debounce.String(),
	)
	return nil
}

// Stop unsubscribes from the state topics and stops the run loop. Blocks
// until an in-flight pipeline cycle observes cancellation and returns.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return ErrNotRunning
	}
	w.running = false
	cancel := w.cancel
	done := w.done
	w.mu.Unlock()

	for _, topic := range w.cfg.Topics {
		if err := w.broker.Unsubscribe(topic); err != nil {
			w.logger.Warn("unsubscribe failed", "topic", topic, "error", err)
		}
	}

	cancel()
	<-done

	w.logger.Info("autonomic watcher stopped")
	return nil
}

// onMessage is the MQTT handler for every state topic. It never blocks the
// MQTT client: when the buffer is full the change is dropped.
func (w *Watcher) onMessage(topic string, payload []byte) error {
	change := stateChange{
		Topic:   topic,
		Payload: truncate(string(payload), maxPayloadBytes),
		At:      time.Now().UTC(),
	}

	select {
	case w.events <- change:
	default:
		w.logger.Warn("state change dropped, buffer full", "topic", topic)
	}
	return nil
}

// run collects state changes and fires the pipeline after each quiet period.
func (w *Watcher) run(ctx context.Context) {
	defer close(w.done)

	timer := time.NewTimer(w.cfg.Debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	var pending []stateChange

	for {
		select {
		case <-ctx.Done():
			return

		case change := <-w.events:
			pending = append(pending, change)
			if len(pending) > w.cfg.MaxPending {
				pending = pending[len(pending)-w.cfg.MaxPending:]
			}
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(w.cfg.Debounce)

		case <-timer.C:
			if len(pending) == 0 {
				continue
			}
			batch := pending
			pending = nil
			w.process(ctx, batch)
		}
	}
}

// process runs one decide-and-execute cycle over a batch of state changes.
// Errors are logged, never propagated: the watcher keeps running.
func (w *Watcher) process(ctx context.Context, batch []stateChange) {
	ctx, cancel := context.WithTimeout(ctx, pipelineTimeout)
	defer cancel()

	start := time.Now()
	text := describeChanges(batch)

	w.logger.Debug("autonomic cycle started", "changes", len(batch))

	decision, err := w.engine.Decide(ctx, text, assist.ModeAutonomic)
	if err != nil {
		w.logger.Error("autonomic decision failed", "error", err, "changes", len(batch))
		return
	}

	w.publishEvent(mqtt.Topics{}.AssistDecision(), map[string]any{
		"mode":    string(assist.ModeAutonomic),
		"message": decision.Message,
		"actions": len(decision.Actions),
	})

	interaction := &history.Interaction{
		Mode:        string(assist.ModeAutonomic),
		RequestText: text,
		Message:     decision.Message,
		Actions:     decision.Actions,
	}

	if len(decision.Actions) == 0 {
		w.logger.Info("autonomic decision proposed no actions", "changes", len(batch))
		interaction.DurationMS = time.Since(start).Milliseconds()
		w.record(ctx, interaction)
		return
	}

	summary, err := w.executor.ExecuteAll(ctx, decision.Actions)
	if err != nil {
		w.logger.Error("autonomic execution failed", "error", err, "actions", len(decision.Actions))
		interaction.DurationMS = time.Since(start).Milliseconds()
		w.record(ctx, interaction)
		return
	}

	w.publishEvent(mqtt.Topics{}.AssistExecution(), map[string]any{
		"mode":         string(assist.ModeAutonomic),
		"total":        summary.Total,
		"successful":   summary.Successful,
		"failed":       summary.Failed,
		"success_rate": summary.SuccessRate,
	})

	interaction.Results = summary.Results
	interaction.Total = summary.Total
	interaction.Successful = summary.Successful
	interaction.Failed = summary.Failed
	interaction.SuccessRate = summary.SuccessRate
	interaction.DurationMS = time.Since(start).Milliseconds()
	w.record(ctx, interaction)

	w.logger.Info("autonomic cycle complete",
		"changes", len(batch),
		"total", summary.Total,
		"successful", summary.Successful,
		"failed", summary.Failed,
		"duration_ms", interaction.DurationMS,
	)
}

// publishEvent marshals and publishes one event payload. Failures are
// logged; events are advisory.
func (w *Watcher) publishEvent(topic string, payload map[string]any) {
	data, err := json.Marshal(payload)
	if err != nil {
		w.logger.Error("marshalling event payload", "topic", topic, "error", err)
		return
	}
	if err := w.broker.Publish(topic, data, w.cfg.QoS, false); err != nil {
		w.logger.Warn("publishing event failed", "topic", topic, "error", err)
	}
}

// record persists the interaction when a recorder is configured.
func (w *Watcher) record(ctx context.Context, interaction *history.Interaction) {
	if w.recorder == nil {
		return
	}
	if err := w.recorder.Create(ctx, interaction); err != nil {
		w.logger.Error("recording interaction failed", "error", err)
	}
}

// describeChanges renders a state-change batch as free text for the engine.
func describeChanges(batch []stateChange) string {
	var b strings.Builder
	fmt.Fprintf(&b, "The following %d platform state changes were observed:\n", len(batch))
	for _, change := range batch {
		fmt.Fprintf(&b, "- %s: %s (at %s)\n",
			change.Topic, change.Payload, change.At.Format(time.RFC3339))
	}
	b.WriteString("Review the current platform state and take any appropriate actions.")
	return b.String()
}

// truncate shortens s to at most n bytes, marking the cut.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
