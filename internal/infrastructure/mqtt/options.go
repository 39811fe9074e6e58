package mqtt

import (
	"crypto/tls"
	"encoding/json"
	"fmt"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/nerrad567/gray-logic-assist/internal/infrastructure/config"
)

const (
	// connectTimeout bounds the initial broker dial.
	connectTimeout = 10 * time.Second

	// opTimeout bounds publish/subscribe/unsubscribe acknowledgements.
	opTimeout = 5 * time.Second

	// disconnectQuiesceMS is the grace period paho gives in-flight
	// operations on Disconnect, in milliseconds.
	disconnectQuiesceMS = 1000

	// keepAlive is the PING interval for dead-connection detection.
	keepAlive = 60 * time.Second

	// maxQoS is the highest valid MQTT QoS level.
	maxQoS = 2
)

// connectionOptions translates the mqtt section of config.yaml into paho
// client options: broker URL (ssl:// when TLS is on), client identity,
// optional credentials, and reconnect backoff between the configured
// initial and maximum delays. Sessions are always clean; the trigger
// replays its own subscriptions, so broker-side session state would
// only mask bugs in that path.
func connectionOptions(cfg config.MQTTConfig) *pahomqtt.ClientOptions {
	opts := pahomqtt.NewClientOptions()

	scheme := "tcp"
	if cfg.Broker.TLS {
		scheme = "ssl"
		opts.SetTLSConfig(&tls.Config{MinVersion: tls.VersionTLS12})
	}
	opts.AddBroker(fmt.Sprintf("%s://%s:%d", scheme, cfg.Broker.Host, cfg.Broker.Port))
	opts.SetClientID(cfg.Broker.ClientID)

	if cfg.Auth.Username != "" {
		opts.SetUsername(cfg.Auth.Username)
		opts.SetPassword(cfg.Auth.Password)
	}

	opts.SetCleanSession(true)
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(time.Duration(cfg.Reconnect.InitialDelay) * time.Second)
	opts.SetMaxReconnectInterval(time.Duration(cfg.Reconnect.MaxDelay) * time.Second)
	opts.SetConnectTimeout(connectTimeout)
	opts.SetKeepAlive(keepAlive)

	return opts
}

// statusPayload builds the JSON body published (and willed) on
// graylogic/system/status. Reason is omitted when empty, so "online"
// announcements stay minimal while the two offline variants
// (unexpected_disconnect from the Last Will, graceful_shutdown from
// Close) remain distinguishable.
func statusPayload(clientID, status, reason string) string {
	body := struct {
		Status    string `json:"status"`
		ClientID  string `json:"client_id"`
		Reason    string `json:"reason,omitempty"`
		Timestamp string `json:"timestamp"`
	}{
		Status:    status,
		ClientID:  clientID,
		Reason:    reason,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}

	data, err := json.Marshal(body)
	if err != nil {
		// Marshalling a flat string struct cannot fail at runtime.
		return `{"status":"` + status + `"}`
	}
	return string(data)
}
