package api

import (
	"encoding/json"
	"testing"

	"github.com/nerrad567/gray-logic-assist/internal/infrastructure/config"
	"github.com/nerrad567/gray-logic-assist/internal/infrastructure/logging"
)

func newTestHub() *Hub {
	return NewHub(config.WebSocketConfig{}, logging.Default())
}

// attachClient registers a client without a network connection; the
// paths under test never touch conn.
func attachClient(h *Hub, subject string) *wsClient {
	client := &wsClient{
		hub:      h,
		send:     make(chan []byte, 16),
		channels: make(map[string]struct{}),
		subject:  subject,
	}
	h.register(client)
	return client
}

func subscribeTo(t *testing.T, client *wsClient, channels ...string) {
	t.Helper()

	client.changeSubscriptions(wsMessage{
		ID:      "sub-1",
		Type:    wsTypeSubscribe,
		Payload: map[string]any{"channels": channels},
	}, true)

	// Drain the acknowledgement so event assertions see a clean buffer.
	select {
	case frame := <-client.send:
		var msg wsMessage
		if err := json.Unmarshal(frame, &msg); err != nil {
			t.Fatalf("acknowledgement is not JSON: %v", err)
		}
		if msg.Type == wsTypeError {
			t.Fatalf("subscribe rejected: %v", msg.Payload)
		}
	default:
		t.Fatal("expected a subscribe acknowledgement")
	}
}

func TestBroadcast_RoutesByChannel(t *testing.T) {
	hub := newTestHub()

	dashboard := attachClient(hub, "admin")
	subscribeTo(t, dashboard, EventDecision)

	bystander := attachClient(hub, "admin")
	subscribeTo(t, bystander, EventExecution)

	hub.Broadcast(EventDecision, map[string]any{"message": "Turning on the kitchen light."})

	select {
	case frame := <-dashboard.send:
		var msg wsMessage
		if err := json.Unmarshal(frame, &msg); err != nil {
			t.Fatalf("event frame is not JSON: %v", err)
		}
		if msg.Type != wsTypeEvent {
			t.Errorf("frame type = %q, want %q", msg.Type, wsTypeEvent)
		}
		if msg.EventType != EventDecision {
			t.Errorf("event_type = %q, want %q", msg.EventType, EventDecision)
		}
	default:
		t.Fatal("subscribed client did not receive the decision event")
	}

	select {
	case <-bystander.send:
		t.Error("client subscribed to executions received a decision event")
	default:
	}
}

func TestChangeSubscriptions_RejectsUnknownChannel(t *testing.T) {
	hub := newTestHub()
	client := attachClient(hub, "admin")

	client.changeSubscriptions(wsMessage{
		ID:      "sub-bad",
		Type:    wsTypeSubscribe,
		Payload: map[string]any{"channels": []string{"device.state"}},
	}, true)

	select {
	case frame := <-client.send:
		var msg wsMessage
		if err := json.Unmarshal(frame, &msg); err != nil {
			t.Fatalf("response is not JSON: %v", err)
		}
		if msg.Type != wsTypeError {
			t.Errorf("frame type = %q, want %q", msg.Type, wsTypeError)
		}
	default:
		t.Fatal("expected an error response for the unknown channel")
	}

	if client.subscribed("device.state") {
		t.Error("unknown channel was stored as a subscription")
	}
}

func TestUnsubscribe_StopsDelivery(t *testing.T) {
	hub := newTestHub()
	client := attachClient(hub, "admin")
	subscribeTo(t, client, EventExecution)

	client.changeSubscriptions(wsMessage{
		ID:      "unsub-1",
		Type:    wsTypeUnsubscribe,
		Payload: map[string]any{"channels": []string{EventExecution}},
	}, false)
	<-client.send // unsubscribe acknowledgement

	hub.Broadcast(EventExecution, map[string]any{"total": 1})

	select {
	case <-client.send:
		t.Error("unsubscribed client received an execution event")
	default:
	}
}

func TestUnregister_ClosesSendOnce(t *testing.T) {
	hub := newTestHub()
	client := attachClient(hub, "admin")

	if hub.ClientCount() != 1 {
		t.Fatalf("ClientCount() = %d, want 1", hub.ClientCount())
	}

	hub.unregister(client)
	hub.unregister(client) // second call must not panic on a closed channel

	if hub.ClientCount() != 0 {
		t.Errorf("ClientCount() = %d, want 0", hub.ClientCount())
	}

	// Broadcast to a departed client must not panic either.
	hub.Broadcast(EventDecision, nil)
}
