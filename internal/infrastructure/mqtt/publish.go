package mqtt

import (
	"fmt"
)

// maxPayloadSize rejects oversized publishes before they reach the
// broker. Assist event bodies are a few KB; anything near this limit
// indicates a snapshot leaked into an event payload.
const maxPayloadSize = 1 << 20 // 1MB

// Publish sends one message and waits for the broker acknowledgement.
//
// Assist publishes with retained=false: decision and execution events
// describe moments, not state, and a late subscriber replaying a stale
// execution event could be misread as a live one. Retained publishes are
// reserved for the status topic (see PublishRetained).
//
// Returns ErrInvalidTopic, ErrInvalidQoS, ErrNotConnected, or a wrapped
// ErrPublishFailed on timeout, rejection, or oversized payload.
func (c *Client) Publish(topic string, payload []byte, qos byte, retained bool) error {
	if err := checkTopicQoS(topic, qos); err != nil {
		return err
	}
	if len(payload) > maxPayloadSize {
		return fmt.Errorf("%w: payload size %d exceeds maximum %d bytes", ErrPublishFailed, len(payload), maxPayloadSize)
	}
	if !c.IsConnected() {
		return ErrNotConnected
	}

	token := c.paho.Publish(topic, qos, retained, payload)
	if !token.WaitTimeout(opTimeout) {
		return fmt.Errorf("%w: timeout after %v", ErrPublishFailed, opTimeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("%w: %w", ErrPublishFailed, err)
	}

	return nil
}

// PublishString publishes a string payload. Equivalent to Publish with
// []byte(payload).
func (c *Client) PublishString(topic string, payload string, qos byte, retained bool) error {
	return c.Publish(topic, []byte(payload), qos, retained)
}

// PublishRetained publishes a retained message at the configured default
// QoS. Used for status-style topics where a new subscriber should
// immediately see the current value.
func (c *Client) PublishRetained(topic string, payload []byte) error {
	return c.Publish(topic, payload, byte(c.cfg.QoS), true)
}

// checkTopicQoS validates the arguments shared by publish and subscribe.
func checkTopicQoS(topic string, qos byte) error {
	if topic == "" {
		return ErrInvalidTopic
	}
	if qos > maxQoS {
		return ErrInvalidQoS
	}
	return nil
}
