package influxdb

import (
	"context"
	"fmt"
	"sync"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"

	"github.com/nerrad567/gray-logic-assist/internal/infrastructure/config"
)

const (
	connectTimeout = 10 * time.Second
	pingTimeout    = 5 * time.Second

	// Fallbacks when the config omits batching parameters.
	defaultBatchSize      = 100
	defaultFlushIntervalS = 10
	millisecondsPerSecond = 1000
)

// Client is the metrics sink for the assist pipelines.
//
// Every decision and execution batch produces one point (latency, action
// counts, success rate, tagged by mode), written through the v2 client's
// non-blocking batched API. Metrics are strictly best-effort: a down
// InfluxDB never delays or fails a decision, writes are simply dropped
// and reported through the error callback.
//
// Thread Safety:
//   - All methods are safe for concurrent use from multiple goroutines.
type Client struct {
	influx influxdb2.Client
	writes api.WriteAPI
	cfg    config.InfluxDBConfig

	open bool
	mu   sync.RWMutex

	// onError receives async write failures (set via SetOnError).
	onError func(err error)
}

// Connect creates the metrics client and verifies the server responds.
//
// Batch size and flush interval come from config, with sane fallbacks
// when unset. Returns ErrDisabled when the influxdb section is off, or
// ErrConnectionFailed when the ping fails; callers treat either as
// "run without metrics".
func Connect(cfg config.InfluxDBConfig) (*Client, error) {
	if !cfg.Enabled {
		return nil, ErrDisabled
	}

	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	flushInterval := cfg.FlushInterval
	if flushInterval <= 0 {
		flushInterval = defaultFlushIntervalS
	}

	// #nosec G115 -- both values forced positive above
	influx := influxdb2.NewClientWithOptions(
		cfg.URL,
		cfg.Token,
		influxdb2.DefaultOptions().
			SetBatchSize(uint(batchSize)).
			SetFlushInterval(uint(flushInterval)*millisecondsPerSecond),
	)

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	healthy, err := influx.Ping(ctx)
	if err != nil {
		influx.Close()
		return nil, fmt.Errorf("%w: ping failed: %w", ErrConnectionFailed, err)
	}
	if !healthy {
		influx.Close()
		return nil, fmt.Errorf("%w: server not healthy", ErrConnectionFailed)
	}

	c := &Client{
		influx: influx,
		writes: influx.WriteAPI(cfg.Org, cfg.Bucket),
		cfg:    cfg,
		open:   true,
	}

	go c.drainWriteErrors(c.writes.Errors())

	return c, nil
}

// drainWriteErrors forwards async write failures to the callback. The
// channel closes when the client closes, ending the goroutine.
func (c *Client) drainWriteErrors(errs <-chan error) {
	for err := range errs {
		c.mu.RLock()
		callback := c.onError
		c.mu.RUnlock()

		if callback != nil {
			callback(err)
		}
	}
}

// Close flushes pending points and shuts the client down.
func (c *Client) Close() error {
	if c.influx == nil {
		return nil
	}

	c.mu.Lock()
	c.open = false
	c.mu.Unlock()

	c.writes.Flush()
	c.influx.Close()

	return nil
}

// HealthCheck pings the server.
func (c *Client) HealthCheck(ctx context.Context) error {
	if !c.IsConnected() {
		return ErrNotConnected
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	healthy, err := c.influx.Ping(pingCtx)
	if err != nil {
		return fmt.Errorf("influxdb health check failed: %w", err)
	}
	if !healthy {
		return fmt.Errorf("influxdb health check failed: server not healthy")
	}

	return nil
}

// IsConnected reports whether the client is open. Writes check this
// before enqueueing so points are not buffered against a closed client.
func (c *Client) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.open
}

// SetOnError registers a callback for async write failures. Writes are
// non-blocking, so this is the only place failures surface.
func (c *Client) SetOnError(callback func(err error)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onError = callback
}

// Flush blocks until buffered points are written. Used by tests and
// before shutdown; a no-op on a closed client.
func (c *Client) Flush() {
	if c.writes == nil {
		return
	}
	if !c.IsConnected() {
		return
	}
	c.writes.Flush()
}
