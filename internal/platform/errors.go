package platform

import "errors"

// Sentinel errors for platform API operations.
//
// These errors can be checked using errors.Is() for specific handling:
//
//	if errors.Is(err, platform.ErrUnauthorized) {
//	    // Token rejected, re-check configuration
//	}
var (
	// ErrUnavailable indicates the platform API could not be reached.
	ErrUnavailable = errors.New("platform: unavailable")

	// ErrUnauthorized indicates the bearer token was rejected.
	ErrUnauthorized = errors.New("platform: unauthorized")

	// ErrRequestFailed indicates the platform returned a non-success status.
	ErrRequestFailed = errors.New("platform: request failed")
)
