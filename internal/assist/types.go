package assist

import "strings"

// entitySeparator splits a platform entity ID into domain and object parts.
const entitySeparator = "."

// Mode is the operating policy for the decision engine. It controls how
// aggressively the language model is allowed to act without confirmation.
type Mode string

const (
	// ModeAssistant does exactly what the user asks.
	ModeAssistant Mode = "assistant"

	// ModeSupervisor checks the request against ambient state (sensors,
	// presence, light levels) and may refuse actions that make no sense.
	ModeSupervisor Mode = "supervisor"

	// ModeAutonomic acts without a user request, deciding from ambient
	// conditions alone. Used by the trigger subsystem, not the API.
	ModeAutonomic Mode = "autonomic"
)

// AllModes returns every recognised mode.
func AllModes() []Mode {
	return []Mode{ModeAssistant, ModeSupervisor, ModeAutonomic}
}

// Valid reports whether m is a recognised mode.
func (m Mode) Valid() bool {
	switch m {
	case ModeAssistant, ModeSupervisor, ModeAutonomic:
		return true
	}
	return false
}

// Action is a single directive against the automation platform: invoke the
// named service on one entity, with optional parameters.
//
// Actions are immutable once produced by the decision engine. The Entity
// must be a platform-qualified identifier of the form "<domain>.<id>".
type Action struct {
	Entity     string         `json:"entity"`
	Action     string         `json:"action"`
	Parameters map[string]any `json:"parameters,omitempty"`
}

// SplitEntity splits the entity ID into its domain and object parts.
// ok is false unless the ID contains exactly one separator producing two
// non-empty parts.
func (a Action) SplitEntity() (domain, id string, ok bool) {
	domain, id, found := strings.Cut(a.Entity, entitySeparator)
	if !found || domain == "" || id == "" || strings.Contains(id, entitySeparator) {
		return "", "", false
	}
	return domain, id, true
}

// Decision is the language model's structured output for one user turn:
// a human-readable reply plus the ordered list of actions to execute.
// Action order is the intended execution order and is preserved end to end.
type Decision struct {
	Message string   `json:"message"`
	Actions []Action `json:"actions"`
}

// ActionResult is the outcome of executing one Action. Exactly one of
// ErrorMessage (failure) or ResponseData (success) is populated.
type ActionResult struct {
	Success      bool   `json:"success"`
	Entity       string `json:"entity"`
	Action       string `json:"action"`
	ErrorMessage string `json:"error_message,omitempty"`
	ResponseData any    `json:"response_data,omitempty"`
}

// ExecutionSummary aggregates the results of one action batch.
//
// Invariant: Total == len(Results) == Successful + Failed, and Results
// order equals the input action order.
type ExecutionSummary struct {
	Message    string         `json:"message"`
	Results    []ActionResult `json:"results"`
	Total      int            `json:"total"`
	Successful int            `json:"successful"`
	Failed     int            `json:"failed"`

	// SuccessRate is Successful/Total as a percentage, 0 when Total is 0.
	SuccessRate float64 `json:"success_rate"`
}

// Entity is the minimal view of a platform entity the pipeline needs:
// identity, current state, and the attributes the model may reason over.
type Entity struct {
	ID         string         `json:"entity_id"`
	State      string         `json:"state"`
	Name       string         `json:"name,omitempty"`
	Attributes map[string]any `json:"attributes,omitempty"`
}

// Snapshot is a point-in-time view of the platform used to ground the
// prompt: all entities plus the services each domain exposes.
type Snapshot struct {
	Entities []Entity            `json:"entities"`
	Services map[string][]string `json:"services"`
}
