package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/nerrad567/gray-logic-assist/internal/assist"
)

// Default timeouts for platform operations.
const (
	defaultRequestTimeout = 10 * time.Second

	// maxResponseSize caps response bodies. Large installations can
	// return a few MB of entity state.
	maxResponseSize = 10 << 20 // 10 MB
)

// Config contains platform API connection settings.
type Config struct {
	// BaseURL is the platform REST API root (e.g. "http://homeassistant.local:8123").
	BaseURL string

	// Token is the long-lived bearer token for API access.
	Token string

	// Timeout is the per-request timeout in seconds. 0 uses the default.
	Timeout int
}

// Client talks to the home-automation platform's REST API.
//
// It implements assist.ContextProvider (entity and service snapshots)
// and assist.ServiceCaller (action dispatch).
//
// Thread Safety: All methods are safe for concurrent use.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// New creates a platform API client.
//
// Parameters:
//   - cfg: Connection settings from config.yaml
//
// Returns:
//   - *Client: Client ready for use (no connection is made until first call)
func New(cfg Config) *Client {
	timeout := defaultRequestTimeout
	if cfg.Timeout > 0 {
		timeout = time.Duration(cfg.Timeout) * time.Second
	}

	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		token:   cfg.Token,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// stateWire is the platform's entity state representation.
type stateWire struct {
	EntityID   string         `json:"entity_id"`
	State      string         `json:"state"`
	Attributes map[string]any `json:"attributes"`
}

// serviceDomainWire is one element of the platform's service catalogue.
type serviceDomainWire struct {
	Domain   string                    `json:"domain"`
	Services map[string]map[string]any `json:"services"`
}

// GetEntities returns the current state of every entity on the platform.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//
// Returns:
//   - []assist.Entity: All entities with state and attributes
//   - error: ErrUnavailable, ErrUnauthorized, or ErrRequestFailed
func (c *Client) GetEntities(ctx context.Context) ([]assist.Entity, error) {
	body, err := c.get(ctx, "/api/states")
	if err != nil {
		return nil, err
	}

	var states []stateWire
	if err := json.Unmarshal(body, &states); err != nil {
		return nil, fmt.Errorf("%w: decoding states: %w", ErrRequestFailed, err)
	}

	entities := make([]assist.Entity, 0, len(states))
	for _, s := range states {
		e := assist.Entity{
			ID:         s.EntityID,
			State:      s.State,
			Attributes: s.Attributes,
		}
		if name, ok := s.Attributes["friendly_name"].(string); ok {
			e.Name = name
		}
		entities = append(entities, e)
	}

	return entities, nil
}

// GetServices returns the platform's service catalogue as a map of
// domain to service names.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//
// Returns:
//   - map[string][]string: Service names keyed by domain (e.g. "light" -> ["turn_on", "turn_off"])
//   - error: ErrUnavailable, ErrUnauthorized, or ErrRequestFailed
func (c *Client) GetServices(ctx context.Context) (map[string][]string, error) {
	body, err := c.get(ctx, "/api/services")
	if err != nil {
		return nil, err
	}

	var domains []serviceDomainWire
	if err := json.Unmarshal(body, &domains); err != nil {
		return nil, fmt.Errorf("%w: decoding services: %w", ErrRequestFailed, err)
	}

	services := make(map[string][]string, len(domains))
	for _, d := range domains {
		names := make([]string, 0, len(d.Services))
		for name := range d.Services {
			names = append(names, name)
		}
		services[d.Domain] = names
	}

	return services, nil
}

// CallService invokes a platform service against a single entity.
//
// The entity ID is included in the request body alongside any extra
// parameters, which is how the platform targets service calls.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//   - domain: Service domain (e.g. "light")
//   - service: Service name (e.g. "turn_on")
//   - entityID: Target entity (e.g. "light.kitchen")
//   - params: Extra service data (brightness, temperature, ...)
//
// Returns:
//   - map[string]any: Platform response payload (changed states)
//   - error: ErrUnavailable, ErrUnauthorized, or ErrRequestFailed
func (c *Client) CallService(ctx context.Context, domain, service, entityID string, params map[string]any) (map[string]any, error) {
	payload := make(map[string]any, len(params)+1)
	for k, v := range params {
		payload[k] = v
	}
	payload["entity_id"] = entityID

	reqBody, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: encoding service data: %w", ErrRequestFailed, err)
	}

	path := "/api/services/" + url.PathEscape(domain) + "/" + url.PathEscape(service)
	body, err := c.post(ctx, path, reqBody)
	if err != nil {
		return nil, err
	}

	// The platform returns a JSON array of changed states. Wrap it so
	// callers get a uniform map payload.
	var changed []stateWire
	if err := json.Unmarshal(body, &changed); err != nil {
		return map[string]any{"raw": string(body)}, nil
	}

	return map[string]any{"changed_states": len(changed)}, nil
}

// HealthCheck verifies the platform API is reachable and the token is valid.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//
// Returns:
//   - error: nil if healthy, error describing the issue otherwise
func (c *Client) HealthCheck(ctx context.Context) error {
	_, err := c.get(ctx, "/api/")
	return err
}

// get performs an authenticated GET request and returns the response body.
func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	return c.do(ctx, http.MethodGet, path, nil)
}

// post performs an authenticated POST request and returns the response body.
func (c *Client) post(ctx context.Context, path string, body []byte) ([]byte, error) {
	return c.do(ctx, http.MethodPost, path, body)
}

// do executes a request with bearer-token auth and common error mapping.
func (c *Client) do(ctx context.Context, method, path string, body []byte) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("%w: creating request: %w", ErrRequestFailed, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("%w: reading response: %w", ErrRequestFailed, err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, fmt.Errorf("%w: HTTP %d", ErrUnauthorized, resp.StatusCode)
	case resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices:
		return nil, fmt.Errorf("%w: %s %s: HTTP %d", ErrRequestFailed, method, path, resp.StatusCode)
	}

	return respBody, nil
}
