package api

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/nerrad567/gray-logic-assist/internal/auth"
	"github.com/nerrad567/gray-logic-assist/internal/history"
	"github.com/nerrad567/gray-logic-assist/internal/infrastructure/config"
	"github.com/nerrad567/gray-logic-assist/internal/infrastructure/logging"
)

func TestNew_MissingDependencies(t *testing.T) {
	logger := logging.Default()
	hist := &fakeHistory{}
	decider := &fakeDecider{decision: sampleDecision()}
	runner := &fakeRunner{summary: sampleSummary()}

	tests := []struct {
		name string
		deps Deps
	}{
		{"missing logger", Deps{Engine: decider, Executor: runner, History: hist}},
		{"missing engine", Deps{Logger: logger, Executor: runner, History: hist}},
		{"missing executor", Deps{Logger: logger, Engine: decider, History: hist}},
		{"missing history", Deps{Logger: logger, Engine: decider, Executor: runner}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.deps); err == nil {
				t.Error("New() expected error")
			}
		})
	}
}

func TestHandleHealth(t *testing.T) {
	_, router := newTestServer(t, testDeps{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("status field = %v, want ok", body["status"])
	}
	if body["version"] != "test" {
		t.Errorf("version field = %v, want test", body["version"])
	}
}

// failingChecker always reports unhealthy.
type failingChecker struct{}

func (failingChecker) HealthCheck(context.Context) error {
	return errors.New("connection refused")
}

func TestHandleHealth_Degraded(t *testing.T) {
	srv, _ := newTestServer(t, testDeps{})
	srv.platform = failingChecker{}
	router := srv.buildRouter()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}

	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if body["status"] != "degraded" {
		t.Errorf("status field = %v, want degraded", body["status"])
	}
}

func TestHandleMetrics(t *testing.T) {
	_, router := newTestServer(t, testDeps{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/metrics", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var metrics SystemMetrics
	if err := json.Unmarshal(rec.Body.Bytes(), &metrics); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if metrics.Runtime.Goroutines <= 0 {
		t.Errorf("goroutines = %d, want > 0", metrics.Runtime.Goroutines)
	}
	if metrics.Version != "test" {
		t.Errorf("version = %q, want test", metrics.Version)
	}
}

// statsChecker is a database fake exposing pool statistics.
type statsChecker struct{}

func (statsChecker) HealthCheck(context.Context) error { return nil }

func (statsChecker) Stats() sql.DBStats {
	return sql.DBStats{OpenConnections: 1, InUse: 1}
}

func TestHandleMetrics_DatabaseStats(t *testing.T) {
	srv, _ := newTestServer(t, testDeps{})
	srv.database = statsChecker{}
	router := srv.buildRouter()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/metrics", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var metrics SystemMetrics
	if err := json.Unmarshal(rec.Body.Bytes(), &metrics); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if metrics.Database == nil {
		t.Fatal("database stats missing from response")
	}
	if metrics.Database.OpenConnections != 1 || metrics.Database.InUse != 1 {
		t.Errorf("database stats = %+v", metrics.Database)
	}
}

func TestHandleMetrics_NoDatabase(t *testing.T) {
	_, router := newTestServer(t, testDeps{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/metrics", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var metrics SystemMetrics
	if err := json.Unmarshal(rec.Body.Bytes(), &metrics); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if metrics.Database != nil {
		t.Errorf("database stats = %+v, want omitted without a database", metrics.Database)
	}
}

func TestHandleLogin(t *testing.T) {
	hash, err := auth.HashPassword("hunter2")
	if err != nil {
		t.Fatalf("hashing password: %v", err)
	}

	srv, _ := newTestServer(t, testDeps{})
	srv.secCfg.Auth = config.AuthConfig{Username: "admin", PasswordHash: hash}
	router := srv.buildRouter()

	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{"valid credentials", `{"username":"admin","password":"hunter2"}`, http.StatusOK},
		{"wrong password", `{"username":"admin","password":"wrong"}`, http.StatusUnauthorized},
		{"wrong username", `{"username":"root","password":"hunter2"}`, http.StatusUnauthorized},
		{"malformed body", `{not json`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d, body %s", rec.Code, tt.wantStatus, rec.Body.String())
			}

			if tt.wantStatus == http.StatusOK {
				var resp loginResponse
				if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
					t.Fatalf("decoding response: %v", err)
				}
				if resp.AccessToken == "" || resp.TokenType != "Bearer" {
					t.Errorf("unexpected login response: %+v", resp)
				}

				// The issued token passes the auth middleware.
				claims, err := auth.ParseToken(resp.AccessToken, srv.secCfg.JWT.Secret)
				if err != nil {
					t.Fatalf("issued token invalid: %v", err)
				}
				if claims.Subject != "admin" {
					t.Errorf("token subject = %q, want admin", claims.Subject)
				}
			}
		})
	}
}

func TestHandleLogin_NotConfigured(t *testing.T) {
	_, router := newTestServer(t, testDeps{}) // no password hash configured

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login",
		strings.NewReader(`{"username":"admin","password":"anything"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401 when login is not configured", rec.Code)
	}
}

func TestHandleListInteractions(t *testing.T) {
	hist := &fakeHistory{}
	hist.interactions = append(hist.interactions, &history.Interaction{
		ID: "ixn-00000001", Mode: "assistant", RequestText: "lights on",
	})
	srv, router := newTestServer(t, testDeps{history: hist})

	req := authedRequest(t, srv, http.MethodGet, "/api/v1/interactions", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var result history.ListResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if result.Total != 1 || len(result.Interactions) != 1 {
		t.Errorf("result = %+v, want one interaction", result)
	}
}

func TestHandleListInteractions_BadPagination(t *testing.T) {
	srv, router := newTestServer(t, testDeps{})

	for _, path := range []string{
		"/api/v1/interactions?limit=abc",
		"/api/v1/interactions?offset=-1",
	} {
		req := authedRequest(t, srv, http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("GET %s status = %d, want 400", path, rec.Code)
		}
	}
}

func TestHandleGetInteraction(t *testing.T) {
	hist := &fakeHistory{}
	hist.interactions = append(hist.interactions, &history.Interaction{
		ID: "ixn-abcd1234", Mode: "assistant", RequestText: "lights on",
	})
	srv, router := newTestServer(t, testDeps{history: hist})

	req := authedRequest(t, srv, http.MethodGet, "/api/v1/interactions/ixn-abcd1234", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var ixn history.Interaction
	if err := json.Unmarshal(rec.Body.Bytes(), &ixn); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if ixn.ID != "ixn-abcd1234" {
		t.Errorf("id = %q, want ixn-abcd1234", ixn.ID)
	}
}

func TestHandleGetInteraction_NotFound(t *testing.T) {
	srv, router := newTestServer(t, testDeps{})

	req := authedRequest(t, srv, http.MethodGet, "/api/v1/interactions/ixn-missing", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestRequestIDHeader(t *testing.T) {
	_, router := newTestServer(t, testDeps{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("X-Request-ID header should be set")
	}

	// An inbound request ID is echoed back.
	req = httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	req.Header.Set("X-Request-ID", "client-supplied-id")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if got := rec.Header().Get("X-Request-ID"); got != "client-supplied-id" {
		t.Errorf("X-Request-ID = %q, want client-supplied-id", got)
	}
}

func TestCORSPreflight(t *testing.T) {
	_, router := newTestServer(t, testDeps{})

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/assist", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Errorf("preflight status = %d, want 204", rec.Code)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "http://localhost:3000" {
		t.Errorf("Allow-Origin = %q", rec.Header().Get("Access-Control-Allow-Origin"))
	}
}

func TestTicketStore(t *testing.T) {
	store := newTicketStore()

	ticket := store.issue("admin")
	if ticket == "" {
		t.Fatal("issue() returned empty ticket")
	}

	entry, ok := store.consume(ticket)
	if !ok {
		t.Fatal("consume() = false for fresh ticket")
	}
	if entry.subject != "admin" {
		t.Errorf("subject = %q, want admin", entry.subject)
	}

	// Tickets are single-use.
	if _, ok := store.consume(ticket); ok {
		t.Error("consume() = true for already-consumed ticket")
	}

	if _, ok := store.consume("unknown"); ok {
		t.Error("consume() = true for unknown ticket")
	}
}
