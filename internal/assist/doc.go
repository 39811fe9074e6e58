// Package assist provides the natural-language decision and execution
// pipeline for Gray Logic Assist.
//
// A user request flows through two stages. The decision stage gathers a
// snapshot of the automation platform, renders a prompt, asks the language
// model for a structured response, and parses it into a typed Decision.
// The execution stage validates each proposed action against live platform
// state and issues one service call per action, isolating failures so that
// one broken action never prevents the rest of the batch from running.
//
// Architecture:
//
//	┌──────────────────────────────────────────────────────────┐
//	│                  Engine (engine.go)                       │
//	│  user text + mode                                         │
//	│    1. Validate input and mode                             │
//	│    2. Snapshot entities/services (ContextProvider)        │
//	│    3. Render prompt (prompt.go)                           │
//	│    4. Complete via language model (ModelClient)           │
//	│    5. Parse + schema-check response (parser.go)           │
//	│         │                                                 │
//	│         ▼ Decision{message, ordered actions}              │
//	│  ┌────────────────────────────────────────────────┐      │
//	│  │  Executor (executor.go)                         │      │
//	│  │  per action, in order:                          │      │
//	│  │    validate (validation.go) → CallService       │      │
//	│  │    failures recorded, batch continues           │      │
//	│  └────────────────────────────────────────────────┘      │
//	│         │                                                 │
//	│         ▼ ExecutionSummary{results, counts, rate}         │
//	└──────────────────────────────────────────────────────────┘
//
// # Key Types
//
//   - Action: one directive against a platform entity ("light.kitchen")
//   - Decision: the model's reply message plus zero or more ordered actions
//   - ActionResult: per-action outcome, preserving input order
//   - ExecutionSummary: aggregate counts and success rate over a batch
//
// # Failure Policy
//
// Decision building is fail-fast: any stage error aborts the whole call
// with a sentinel error (ErrContextUnavailable, ErrModelUnavailable,
// ErrInvalidResponse). Execution is fail-isolated: per-action errors are
// captured in the ActionResult and never abort the batch. Only a
// structurally invalid batch (empty input) returns an error from
// ExecuteAll.
//
// # Thread Safety
//
// Engine, Validator, and Executor hold no mutable state between calls and
// are safe for concurrent use from multiple goroutines.
//
// # Usage
//
//	engine := assist.NewEngine(platform, model, log)
//	executor := assist.NewExecutor(assist.NewValidator(platform, false), platform, log)
//
//	decision, err := engine.Decide(ctx, "turn on the kitchen light", assist.ModeAssistant)
//	if err != nil {
//	    return err
//	}
//	summary, err := executor.ExecuteAll(ctx, decision.Actions)
package assist
