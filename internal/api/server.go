package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/nerrad567/gray-logic-assist/internal/assist"
	"github.com/nerrad567/gray-logic-assist/internal/history"
	"github.com/nerrad567/gray-logic-assist/internal/infrastructure/config"
	"github.com/nerrad567/gray-logic-assist/internal/infrastructure/logging"
)

// gracefulShutdownTimeout is the maximum time to wait for in-flight requests
// to complete during shutdown.
const gracefulShutdownTimeout = 10 * time.Second

// Decider turns a free-text request into a typed decision.
// Implemented by assist.Engine.
type Decider interface {
	Decide(ctx context.Context, userText string, mode assist.Mode) (*assist.Decision, error)
}

// Runner executes a decision's action batch. Implemented by assist.Executor.
type Runner interface {
	ExecuteAll(ctx context.Context, actions []assist.Action) (*assist.ExecutionSummary, error)
}

// HealthChecker reports whether a dependency is reachable.
// Implemented by the platform client and the database.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// MetricsWriter records decision and execution metrics.
// Implemented by influxdb.Client. May be nil; metrics are best-effort.
type MetricsWriter interface {
	WriteDecisionMetric(mode string, actionCount int, durationMS int64)
	WriteExecutionMetric(mode string, total, successful, failed int, successRate float64, durationMS int64)
}

// Deps holds the dependencies required by the API server.
type Deps struct {
	Config   config.APIConfig
	WS       config.WebSocketConfig
	Security config.SecurityConfig
	Assist   config.AssistConfig
	Logger   *logging.Logger
	Engine   Decider
	Executor Runner
	History  history.Repository
	Platform HealthChecker // optional: included in GET /health
	Database HealthChecker // optional: included in GET /health
	Metrics  MetricsWriter // optional: decision/execution metrics
	Version  string
}

// Server is the HTTP API server for Gray Logic Assist.
//
// It manages the HTTP listener, routes, middleware, and WebSocket hub.
// The server is created with New() and started with Start().
type Server struct {
	cfg       config.APIConfig
	wsCfg     config.WebSocketConfig
	secCfg    config.SecurityConfig
	assistCfg config.AssistConfig
	logger    *logging.Logger
	engine    Decider
	executor  Runner
	history   history.Repository
	platform  HealthChecker
	database  HealthChecker
	metrics   MetricsWriter
	version   string
	startTime time.Time

	server  *http.Server
	hub     *Hub
	tickets *ticketStore
	cancel  context.CancelFunc // cancels background goroutines on Close()
}

// New creates a new API server with the given dependencies.
//
// The server is not started until Start() is called.
func New(deps Deps) (*Server, error) {
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if deps.Engine == nil {
		return nil, fmt.Errorf("decision engine is required")
	}
	if deps.Executor == nil {
		return nil, fmt.Errorf("executor is required")
	}
	if deps.History == nil {
		return nil, fmt.Errorf("history repository is required")
	}

	return &Server{
		hub:       NewHub(deps.WS, deps.Logger),
		cfg:       deps.Config,
		wsCfg:     deps.WS,
		secCfg:    deps.Security,
		assistCfg: deps.Assist,
		logger:    deps.Logger,
		engine:    deps.Engine,
		executor:  deps.Executor,
		history:   deps.History,
		platform:  deps.Platform,
		database:  deps.Database,
		metrics:   deps.Metrics,
		version:   deps.Version,
		tickets:   newTicketStore(),
	}, nil
}

// Hub returns the server's WebSocket hub. The trigger uses it to broadcast
// autonomic events to connected clients.
func (s *Server) Hub() *Hub {
	return s.hub
}

// Start begins listening for HTTP connections.
//
// It builds the router, starts the WebSocket hub and ticket cleanup, and
// launches the HTTP listener in a background goroutine. The server is
// stopped with Close().
func (s *Server) Start(ctx context.Context) error {
	var srvCtx context.Context
	srvCtx, s.cancel = context.WithCancel(ctx)

	s.startTime = time.Now()
	go s.hub.Run(srvCtx)
	go s.tickets.cleanLoop(srvCtx)

	router := s.buildRouter()

	s.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port),
		Handler:           router,
		ReadTimeout:       time.Duration(s.cfg.Timeouts.Read) * time.Second,
		ReadHeaderTimeout: time.Duration(s.cfg.Timeouts.Read) * time.Second,
		WriteTimeout:      time.Duration(s.cfg.Timeouts.Write) * time.Second,
		IdleTimeout:       time.Duration(s.cfg.Timeouts.Idle) * time.Second,
	}

	go func() {
		s.logger.Info("API server starting", "address", s.server.Addr)
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("API server error", "error", err)
		}
	}()

	return nil
}

// Close gracefully shuts down the API server.
//
// It waits up to gracefulShutdownTimeout for in-flight requests to
// complete, then forcefully closes remaining connections.
func (s *Server) Close() error {
	if s.server == nil {
		return nil
	}

	if s.cancel != nil {
		s.cancel()
	}

	ctx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer cancel()

	s.logger.Info("API server shutting down")
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down API server: %w", err)
	}
	return nil
}

// HealthCheck verifies the API server is running.
func (s *Server) HealthCheck(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("api health check: %w", ctx.Err())
	default:
	}

	if s.server == nil {
		return fmt.Errorf("api server not started")
	}
	return nil
}
