// Package platform provides the REST client for the home-automation platform.
//
//	┌──────────────┐   GET /api/states      ┌────────────────────┐
//	│              │───────────────────────▶│                    │
//	│   Client     │   GET /api/services    │  Automation        │
//	│              │───────────────────────▶│  Platform API      │
//	│              │   POST /api/services/  │                    │
//	│              │        {domain}/{svc}  │                    │
//	└──────────────┘───────────────────────▶└────────────────────┘
//
// The client satisfies both halves of the decision loop: it supplies the
// entity/service snapshot the engine embeds in prompts, and it carries
// out the service calls the executor dispatches.
//
// # Key Types
//
//   - Client: HTTP client with bearer-token auth and per-request timeouts
//   - Config: connection settings (base URL, token, timeout)
//
// # Thread Safety
//
// All methods are safe for concurrent use from multiple goroutines.
// The underlying http.Client handles connection pooling.
//
// # Usage
//
//	client := platform.New(platform.Config{
//	    BaseURL: "http://homeassistant.local:8123",
//	    Token:   token,
//	    Timeout: 10,
//	})
//	entities, err := client.GetEntities(ctx)
package platform
