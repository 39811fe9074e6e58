package assist

import (
	"context"
	"fmt"
)

// ServiceCaller is the platform's mutation entry point: one service call
// per action. Implemented by the platform client.
type ServiceCaller interface {
	CallService(ctx context.Context, domain, service, entityID string, params map[string]any) (map[string]any, error)
}

// Executor runs validated actions against the platform, one service call
// per action, in input order.
//
// Fault isolation is the central design decision here: a failing action is
// recorded and the batch continues. Later actions may depend on effects of
// earlier ones (activate a scene, then adjust a light in it), so execution
// is strictly sequential.
type Executor struct {
	validator *Validator
	caller    ServiceCaller
	logger    Logger
}

// NewExecutor creates an action executor. logger may be nil.
func NewExecutor(validator *Validator, caller ServiceCaller, logger Logger) *Executor {
	if logger == nil {
		logger = noopLogger{}
	}
	return &Executor{
		validator: validator,
		caller:    caller,
		logger:    logger,
	}
}

// ExecuteAll runs every action in input order and aggregates the outcomes.
//
// An empty batch is a caller error (ErrInvalidInput), never an
// empty-success summary. Individual action failures - validation
// rejections and platform call errors alike - are captured in the results
// and never abort the batch. Result order equals input order.
//
// Unexpected internal failures are wrapped into ErrExecutionFailed at the
// batch boundary.
func (e *Executor) ExecuteAll(ctx context.Context, actions []Action) (summary *ExecutionSummary, err error) {
	if len(actions) == 0 {
		return nil, fmt.Errorf("%w: action batch cannot be empty", ErrInvalidInput)
	}

	defer func() {
		if r := recover(); r != nil {
			summary = nil
			err = fmt.Errorf("%w: %v", ErrExecutionFailed, r)
		}
	}()

	results := make([]ActionResult, 0, len(actions))
	successful := 0

	for i, action := range actions {
		e.logger.Debug("executing action",
			"index", i,
			"total", len(actions),
			"entity", action.Entity,
			"action", action.Action,
		)

		result := e.ExecuteOne(ctx, action)
		results = append(results, result)

		if result.Success {
			successful++
		} else {
			e.logger.Warn("action failed",
				"index", i,
				"entity", action.Entity,
				"action", action.Action,
				"error", result.ErrorMessage,
			)
		}
	}

	failed := len(results) - successful
	summary = &ExecutionSummary{
		Message:     fmt.Sprintf("Executed %d actions: %d successful, %d failed", len(results), successful, failed),
		Results:     results,
		Total:       len(results),
		Successful:  successful,
		Failed:      failed,
		SuccessRate: successRate(successful, len(results)),
	}

	e.logger.Info("action batch complete",
		"total", summary.Total,
		"successful", summary.Successful,
		"failed", summary.Failed,
		"success_rate", summary.SuccessRate,
	)
	return summary, nil
}

// ExecuteOne validates and executes a single action, capturing any failure
// in the returned ActionResult rather than an error.
//
// A validation rejection produces a failed result without touching the
// platform. A platform call error produces a failed result carrying the
// cause. Neither outcome affects other actions in the batch.
func (e *Executor) ExecuteOne(ctx context.Context, action Action) ActionResult {
	if v := e.validator.Validate(ctx, action); !v.Valid {
		return ActionResult{
			Entity:       action.Entity,
			Action:       action.Action,
			ErrorMessage: "validation failed: " + v.Reason,
		}
	}

	// Validation guarantees the entity splits cleanly.
	domain, _, _ := action.SplitEntity()

	response, err := e.caller.CallService(ctx, domain, action.Action, action.Entity, action.Parameters)
	if err != nil {
		return ActionResult{
			Entity:       action.Entity,
			Action:       action.Action,
			ErrorMessage: err.Error(),
		}
	}

	return ActionResult{
		Success:      true,
		Entity:       action.Entity,
		Action:       action.Action,
		ResponseData: response,
	}
}

// successRate returns successful/total as a percentage, 0 when total is 0.
func successRate(successful, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(successful) / float64(total) * 100
}
