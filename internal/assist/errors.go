package assist

import "errors"

// Domain errors for the assist package.
//
// These errors can be checked using errors.Is() for error handling:
//
//	if errors.Is(err, assist.ErrInvalidResponse) {
//	    // handle malformed model output
//	}
var (
	// ErrInvalidInput is returned for empty user text or an empty action batch.
	ErrInvalidInput = errors.New("assist: invalid input")

	// ErrInvalidMode is returned when the requested mode is not recognised.
	// Unknown modes are a configuration error, never silently defaulted.
	ErrInvalidMode = errors.New("assist: invalid mode")

	// ErrContextUnavailable is returned when the platform context snapshot
	// cannot be fetched at decision time.
	ErrContextUnavailable = errors.New("assist: platform context unavailable")

	// ErrModelUnavailable is returned when the language model call fails.
	// Retries, if any, belong to the model client, not this pipeline.
	ErrModelUnavailable = errors.New("assist: model unavailable")

	// ErrInvalidResponse is returned when the model output cannot be parsed
	// into a Decision: not JSON, missing the message field, or containing a
	// malformed action entry.
	ErrInvalidResponse = errors.New("assist: invalid decision response")

	// ErrExecutionFailed wraps unexpected internal failures at the batch
	// boundary, distinct from per-action failures recorded in results.
	ErrExecutionFailed = errors.New("assist: execution failed")
)
