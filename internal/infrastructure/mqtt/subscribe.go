package mqtt

import (
	"fmt"
)

// Subscribe registers a handler for a topic filter.
//
// Filters may use MQTT wildcards; the trigger typically subscribes to
// statestream hierarchies like "homeassistant/statestream/#" or
// per-domain filters like "homeassistant/statestream/light/+/state".
// The subscription is tracked and replayed after every reconnect, so a
// broker restart does not require re-wiring the trigger.
//
// Returns ErrInvalidTopic, ErrInvalidQoS, ErrNotConnected, or a wrapped
// ErrSubscribeFailed (including a nil handler). A failed subscribe is
// removed from tracking so it is not replayed on reconnect.
func (c *Client) Subscribe(topic string, qos byte, handler MessageHandler) error {
	if err := checkTopicQoS(topic, qos); err != nil {
		return err
	}
	if handler == nil {
		return fmt.Errorf("%w: handler cannot be nil", ErrSubscribeFailed)
	}
	if !c.IsConnected() {
		return ErrNotConnected
	}

	c.trackRoute(topic, qos, handler)

	token := c.paho.Subscribe(topic, qos, c.dispatch(handler))
	if !token.WaitTimeout(opTimeout) {
		c.dropRoute(topic)
		return fmt.Errorf("%w: timeout after %v", ErrSubscribeFailed, opTimeout)
	}
	if err := token.Error(); err != nil {
		c.dropRoute(topic)
		return fmt.Errorf("%w: %w", ErrSubscribeFailed, err)
	}

	return nil
}

// Unsubscribe removes a subscription by its exact topic filter.
//
// Messages already in flight may still reach the handler; new ones will
// not, and the filter is no longer replayed on reconnect.
func (c *Client) Unsubscribe(topic string) error {
	if topic == "" {
		return ErrInvalidTopic
	}
	if !c.IsConnected() {
		return ErrNotConnected
	}

	c.dropRoute(topic)

	token := c.paho.Unsubscribe(topic)
	if !token.WaitTimeout(opTimeout) {
		return fmt.Errorf("%w: timeout after %v", ErrUnsubscribeFailed, opTimeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("%w: %w", ErrUnsubscribeFailed, err)
	}

	return nil
}

// SubscriptionCount returns the number of tracked subscriptions.
func (c *Client) SubscriptionCount() int {
	c.routeMu.RLock()
	defer c.routeMu.RUnlock()
	return len(c.routes)
}

// HasSubscription reports whether the exact topic filter is tracked.
// No wildcard matching is performed on the argument.
func (c *Client) HasSubscription(topic string) bool {
	c.routeMu.RLock()
	defer c.routeMu.RUnlock()
	_, exists := c.routes[topic]
	return exists
}

func (c *Client) trackRoute(topic string, qos byte, handler MessageHandler) {
	c.routeMu.Lock()
	c.routes[topic] = route{qos: qos, handler: handler}
	c.routeMu.Unlock()
}

func (c *Client) dropRoute(topic string) {
	c.routeMu.Lock()
	delete(c.routes, topic)
	c.routeMu.Unlock()
}
