package assist

import (
	"context"
	"fmt"
	"strings"
)

// ValidationResult reports whether an action may be executed, with the
// rejection reason when it may not.
type ValidationResult struct {
	Valid  bool
	Reason string
}

// reject builds a failed ValidationResult with a formatted reason.
func reject(format string, args ...any) ValidationResult {
	return ValidationResult{Reason: fmt.Sprintf(format, args...)}
}

// Validator checks actions for structural validity and referential
// existence before execution.
//
// Existence is checked against live platform state at validation time, not
// cached from decision time - state may have changed in between.
type Validator struct {
	provider ContextProvider

	// failClosed rejects actions whose existence cannot be confirmed due
	// to a platform error. The default (false) is fail-open: an
	// unverifiable action proceeds to execution, matching the platform's
	// lenient policy. Set assist.fail_closed in config to tighten this.
	failClosed bool

	logger Logger
}

// NewValidator creates an action validator. logger may be nil.
func NewValidator(provider ContextProvider, failClosed bool, logger Logger) *Validator {
	if logger == nil {
		logger = noopLogger{}
	}
	return &Validator{
		provider:   provider,
		failClosed: failClosed,
		logger:     logger,
	}
}

// Validate checks one action, short-circuiting on the first failure:
//
//  1. entity has the "<domain>.<id>" form with two non-empty parts
//  2. action name is non-empty
//  3. the entity exists among the platform's current entities
//  4. the platform exposes at least one service
//
// Steps 3 and 4 query the ContextProvider. A provider error there means the
// check cannot be confirmed either way; the fail-open/fail-closed switch
// decides whether the action proceeds or is rejected.
func (v *Validator) Validate(ctx context.Context, action Action) ValidationResult {
	if strings.TrimSpace(action.Entity) == "" {
		return reject("entity cannot be empty")
	}
	if _, _, ok := action.SplitEntity(); !ok {
		return reject("malformed entity format %q: want \"<domain>.<id>\"", action.Entity)
	}
	if strings.TrimSpace(action.Action) == "" {
		return reject("action name cannot be empty")
	}

	if result, done := v.checkEntityExists(ctx, action.Entity); done {
		return result
	}
	if result, done := v.checkServicesAvailable(ctx); done {
		return result
	}

	return ValidationResult{Valid: true}
}

// checkEntityExists verifies the entity is currently known to the platform.
// done is true when validation should stop with the returned result.
func (v *Validator) checkEntityExists(ctx context.Context, entityID string) (ValidationResult, bool) {
	entities, err := v.provider.GetEntities(ctx)
	if err != nil {
		if v.failClosed {
			return reject("cannot verify entity %q exists: %v", entityID, err), true
		}
		v.logger.Warn("entity existence unverifiable, proceeding (fail-open)",
			"entity", entityID,
			"error", err,
		)
		return ValidationResult{}, false
	}

	for _, e := range entities {
		if e.ID == entityID {
			return ValidationResult{}, false
		}
	}
	return reject("entity %q does not exist", entityID), true
}

// checkServicesAvailable verifies the platform exposes at least one service.
// This is a coarse availability check; matching the specific service to the
// specific domain is left to the platform itself.
func (v *Validator) checkServicesAvailable(ctx context.Context) (ValidationResult, bool) {
	services, err := v.provider.GetServices(ctx)
	if err != nil {
		if v.failClosed {
			return reject("cannot verify service availability: %v", err), true
		}
		v.logger.Warn("service availability unverifiable, proceeding (fail-open)", "error", err)
		return ValidationResult{}, false
	}

	if len(services) == 0 {
		return reject("platform exposes no services"), true
	}
	return ValidationResult{}, false
}
