package mqtt

import (
	"context"
	"fmt"
	"sync"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/nerrad567/gray-logic-assist/internal/infrastructure/config"
)

// Client is the broker connection shared by the autonomic trigger and the
// event publishers.
//
// Assist uses MQTT in two directions: it consumes platform statestream
// topics to drive autonomic decisions, and it publishes decision and
// execution events under graylogic/assist for other services to observe.
// The client reconnects with backoff and replays active subscriptions
// after every reconnect, so a broker restart does not silently stop the
// trigger.
//
// Thread Safety:
//   - All methods are safe for concurrent use from multiple goroutines.
type Client struct {
	paho pahomqtt.Client
	cfg  config.MQTTConfig

	// routes holds active subscriptions, keyed by topic filter, and is
	// replayed on reconnect.
	routes  map[string]route
	routeMu sync.RWMutex

	up   bool
	upMu sync.RWMutex

	onConnect    func()
	onDisconnect func(err error)
	callbackMu   sync.RWMutex

	logger   Logger
	loggerMu sync.RWMutex
}

// Logger receives handler errors and recovered panics.
// Satisfied by logging.Logger.
type Logger interface {
	Error(msg string, args ...any)
	Warn(msg string, args ...any)
}

// route is one tracked subscription.
type route struct {
	qos     byte
	handler MessageHandler
}

// MessageHandler is the callback signature for received messages.
//
// Paho invokes handlers on its own goroutines; a handler that blocks
// stalls delivery for its subscription, so hand work off quickly (the
// trigger does a non-blocking channel send). The topic argument is the
// concrete topic, with any wildcards in the filter already expanded.
// A returned error is logged and the message is still acknowledged.
type MessageHandler func(topic string, payload []byte) error

// Connect dials the broker and returns a ready client.
//
// The connection carries a Last Will on graylogic/system/status so peers
// can tell an assist crash from a graceful shutdown, auto-reconnects with
// exponential backoff between the configured delays, and announces
// "online" on every (re)connect.
//
// Returns ErrConnectionFailed if the broker cannot be reached within the
// connect timeout.
func Connect(cfg config.MQTTConfig) (*Client, error) {
	c := &Client{
		cfg:    cfg,
		routes: make(map[string]route),
	}

	opts := connectionOptions(cfg)
	opts.SetWill(Topics{}.SystemStatus(), statusPayload(cfg.Broker.ClientID, "offline", "unexpected_disconnect"), 1, true)
	opts.SetOnConnectHandler(func(_ pahomqtt.Client) { c.brokerUp() })
	opts.SetConnectionLostHandler(func(_ pahomqtt.Client, err error) { c.brokerDown(err) })

	c.paho = pahomqtt.NewClient(opts)

	token := c.paho.Connect()
	if !token.WaitTimeout(connectTimeout) {
		return nil, fmt.Errorf("%w: timeout after %v", ErrConnectionFailed, connectTimeout)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}

	// The OnConnect handler runs asynchronously; mark the connection up
	// here so IsConnected() is true as soon as Connect returns.
	c.setUp(true)

	return c, nil
}

// Close announces a graceful shutdown and disconnects.
//
// The "offline" status published here is distinct from the Last Will
// payload, so subscribers can tell the difference. Safe to call on a
// client that never connected.
func (c *Client) Close() error {
	if c.paho == nil {
		return nil
	}

	if c.IsConnected() {
		token := c.paho.Publish(Topics{}.SystemStatus(), byte(c.cfg.QoS), true,
			statusPayload(c.cfg.Broker.ClientID, "offline", "graceful_shutdown"))
		token.WaitTimeout(opTimeout)
	}

	c.paho.Disconnect(disconnectQuiesceMS)
	c.setUp(false)

	return nil
}

// HealthCheck reports whether the broker connection is alive.
func (c *Client) HealthCheck(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("mqtt health check: %w", err)
	}
	if !c.IsConnected() {
		return ErrNotConnected
	}
	return nil
}

// IsConnected returns the last known connection state.
func (c *Client) IsConnected() bool {
	c.upMu.RLock()
	defer c.upMu.RUnlock()
	return c.up && c.paho.IsConnected()
}

// SetOnConnect registers a callback invoked on initial connect and on
// every reconnect, after subscriptions have been replayed.
func (c *Client) SetOnConnect(callback func()) {
	c.callbackMu.Lock()
	c.onConnect = callback
	c.callbackMu.Unlock()
}

// SetOnDisconnect registers a callback invoked when the connection drops.
func (c *Client) SetOnDisconnect(callback func(err error)) {
	c.callbackMu.Lock()
	c.onDisconnect = callback
	c.callbackMu.Unlock()
}

// SetLogger wires a logger for handler errors and recovered panics.
// Without one those are dropped.
func (c *Client) SetLogger(logger Logger) {
	c.loggerMu.Lock()
	c.logger = logger
	c.loggerMu.Unlock()
}

func (c *Client) setUp(up bool) {
	c.upMu.Lock()
	c.up = up
	c.upMu.Unlock()
}

// brokerUp runs on every (re)connect: replay subscriptions, announce
// online status, then notify the registered callback.
func (c *Client) brokerUp() {
	c.setUp(true)

	c.routeMu.RLock()
	for topic, r := range c.routes {
		c.paho.Subscribe(topic, r.qos, c.dispatch(r.handler))
	}
	c.routeMu.RUnlock()

	c.paho.Publish(Topics{}.SystemStatus(), byte(c.cfg.QoS), true,
		statusPayload(c.cfg.Broker.ClientID, "online", ""))

	c.callbackMu.RLock()
	callback := c.onConnect
	c.callbackMu.RUnlock()
	if callback != nil {
		callback()
	}
}

func (c *Client) brokerDown(err error) {
	c.setUp(false)

	c.callbackMu.RLock()
	callback := c.onDisconnect
	c.callbackMu.RUnlock()
	if callback != nil {
		callback(err)
	}
}

func (c *Client) getLogger() Logger {
	c.loggerMu.RLock()
	defer c.loggerMu.RUnlock()
	return c.logger
}

// dispatch adapts a MessageHandler to paho's callback shape, adding
// panic recovery so one bad statestream payload cannot kill the process.
func (c *Client) dispatch(handler MessageHandler) pahomqtt.MessageHandler {
	return func(_ pahomqtt.Client, msg pahomqtt.Message) {
		defer func() {
			if r := recover(); r != nil {
				if logger := c.getLogger(); logger != nil {
					logger.Error("mqtt handler panic recovered",
						"topic", msg.Topic(),
						"panic", r,
					)
				}
			}
		}()

		if err := handler(msg.Topic(), msg.Payload()); err != nil {
			if logger := c.getLogger(); logger != nil {
				logger.Warn("mqtt handler returned error",
					"topic", msg.Topic(),
					"error", err,
				)
			}
		}
	}
}
