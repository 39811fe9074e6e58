// Package api provides the HTTP REST API and WebSocket server for
// Gray Logic Assist.
//
// It exposes the decision and execution pipelines, the interaction
// history, and real-time event broadcast to user interfaces.
//
// # Architecture
//
//	Client ----> chi router ----> handlers ----> Engine / Executor
//	   |                                              |
//	   +------ WebSocket hub <---- assist.* events <--+
//
// The server follows the same lifecycle pattern as the other
// infrastructure components:
//
//	server, err := api.New(deps)
//	server.Start(ctx)
//	defer server.Close()
//
// # Routes
//
//	POST /api/v1/auth/login          issue a JWT (username + password)
//	GET  /api/v1/health              liveness plus dependency checks
//	GET  /api/v1/metrics             runtime and hub statistics
//	POST /api/v1/assist              decide and execute in one call
//	POST /api/v1/assist/decide       decision only
//	POST /api/v1/assist/execute      execute a prepared action batch
//	GET  /api/v1/interactions        paged interaction history
//	GET  /api/v1/interactions/{id}   one recorded interaction
//	GET  /api/v1/ws                  WebSocket upgrade (ticket auth)
//
// Thread Safety: all methods are safe for concurrent use from multiple
// goroutines.
package api
