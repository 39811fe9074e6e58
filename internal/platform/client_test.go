package platform_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/nerrad567/gray-logic-assist/internal/platform"
)

// newTestServer stands up a fake platform API with a small fixed state.
func newTestServer(t *testing.T, token string) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()

	authorized := func(w http.ResponseWriter, r *http.Request) bool {
		if r.Header.Get("Authorization") != "Bearer "+token {
			w.WriteHeader(http.StatusUnauthorized)
			return false
		}
		return true
	}

	mux.HandleFunc("/api/states", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		if !authorized(w, r) {
			return
		}
		json.NewEncoder(w).Encode([]map[string]any{ //nolint:errcheck // test server
			{
				"entity_id": "light.kitchen",
				"state":     "off",
				"attributes": map[string]any{
					"friendly_name": "Kitchen Light",
					"brightness":    0,
				},
			},
			{
				"entity_id":  "sensor.kitchen_lux",
				"state":      "120",
				"attributes": map[string]any{"unit_of_measurement": "lx"},
			},
		})
	})

	mux.HandleFunc("/api/services", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		if !authorized(w, r) {
			return
		}
		json.NewEncoder(w).Encode([]map[string]any{ //nolint:errcheck // test server
			{
				"domain": "light",
				"services": map[string]any{
					"turn_on":  map[string]any{},
					"turn_off": map[string]any{},
				},
			},
		})
	})

	mux.HandleFunc("/api/services/light/turn_on", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		if !authorized(w, r) {
			return
		}
		var payload map[string]any
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if payload["entity_id"] != "light.kitchen" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		json.NewEncoder(w).Encode([]map[string]any{ //nolint:errcheck // test server
			{"entity_id": "light.kitchen", "state": "on", "attributes": map[string]any{}},
		})
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestClient(t *testing.T, srv *httptest.Server, token string) *platform.Client {
	t.Helper()
	return platform.New(platform.Config{
		BaseURL: srv.URL,
		Token:   token,
		Timeout: 5,
	})
}

func TestGetEntities(t *testing.T) {
	srv := newTestServer(t, "tok")
	client := newTestClient(t, srv, "tok")

	entities, err := client.GetEntities(context.Background())
	if err != nil {
		t.Fatalf("GetEntities() error = %v", err)
	}

	if len(entities) != 2 {
		t.Fatalf("expected 2 entities, got %d", len(entities))
	}

	kitchen := entities[0]
	if kitchen.ID != "light.kitchen" {
		t.Errorf("ID = %q, want %q", kitchen.ID, "light.kitchen")
	}
	if kitchen.State != "off" {
		t.Errorf("State = %q, want %q", kitchen.State, "off")
	}
	if kitchen.Name != "Kitchen Light" {
		t.Errorf("Name = %q, want %q", kitchen.Name, "Kitchen Light")
	}

	// Entity without friendly_name keeps empty Name
	if entities[1].Name != "" {
		t.Errorf("Name = %q, want empty", entities[1].Name)
	}
}

func TestGetServices(t *testing.T) {
	srv := newTestServer(t, "tok")
	client := newTestClient(t, srv, "tok")

	services, err := client.GetServices(context.Background())
	if err != nil {
		t.Fatalf("GetServices() error = %v", err)
	}

	names, ok := services["light"]
	if !ok {
		t.Fatal("expected light domain in services")
	}
	if len(names) != 2 {
		t.Errorf("expected 2 light services, got %d", len(names))
	}
}

func TestCallService(t *testing.T) {
	srv := newTestServer(t, "tok")
	client := newTestClient(t, srv, "tok")

	resp, err := client.CallService(context.Background(), "light", "turn_on", "light.kitchen",
		map[string]any{"brightness": 200})
	if err != nil {
		t.Fatalf("CallService() error = %v", err)
	}

	if resp["changed_states"] != 1 {
		t.Errorf("changed_states = %v, want 1", resp["changed_states"])
	}
}

func TestUnauthorized(t *testing.T) {
	srv := newTestServer(t, "tok")
	client := newTestClient(t, srv, "wrong-token")

	_, err := client.GetEntities(context.Background())
	if !errors.Is(err, platform.ErrUnauthorized) {
		t.Errorf("GetEntities() error = %v, want ErrUnauthorized", err)
	}
}

func TestUnavailable(t *testing.T) {
	// Port picked from the reserved test range, nothing listens there.
	client := platform.New(platform.Config{
		BaseURL: "http://127.0.0.1:1",
		Token:   "tok",
		Timeout: 1,
	})

	_, err := client.GetEntities(context.Background())
	if !errors.Is(err, platform.ErrUnavailable) {
		t.Errorf("GetEntities() error = %v, want ErrUnavailable", err)
	}
}

func TestRequestFailed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)

	client := newTestClient(t, srv, "tok")

	_, err := client.GetServices(context.Background())
	if !errors.Is(err, platform.ErrRequestFailed) {
		t.Errorf("GetServices() error = %v, want ErrRequestFailed", err)
	}
}
