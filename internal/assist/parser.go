package assist

import (
	"encoding/json"
	"fmt"
	"strings"
)

// decisionWire mirrors the expected model output. Message is a pointer so a
// missing field can be distinguished from an empty string; unknown fields
// are ignored.
type decisionWire struct {
	Message *string  `json:"message"`
	Actions []Action `json:"actions"`
}

// ParseDecision parses raw model output into a typed Decision.
//
// The raw text must encode a JSON object with a "message" string. The
// "actions" list is optional: absent or empty means "nothing to execute",
// which is a valid decision, not an error. Every listed action must carry a
// well-formed entity ("<domain>.<id>") and a non-empty action name; a
// single malformed entry fails the whole response, because a model that
// produced one broken action cannot be trusted on the rest.
//
// Markdown code fences around the JSON are tolerated - some models wrap
// their output despite instructions.
//
// Returns ErrInvalidResponse for anything that does not conform.
func ParseDecision(raw string) (*Decision, error) {
	cleaned := stripCodeFences(raw)
	if cleaned == "" {
		return nil, fmt.Errorf("%w: empty response", ErrInvalidResponse)
	}

	var wire decisionWire
	if err := json.Unmarshal([]byte(cleaned), &wire); err != nil {
		return nil, fmt.Errorf("%w: not valid JSON: %v", ErrInvalidResponse, err)
	}

	if wire.Message == nil {
		return nil, fmt.Errorf("%w: missing 'message' field", ErrInvalidResponse)
	}

	for i, action := range wire.Actions {
		if _, _, ok := action.SplitEntity(); !ok {
			return nil, fmt.Errorf("%w: action[%d] has malformed entity %q", ErrInvalidResponse, i, action.Entity)
		}
		if strings.TrimSpace(action.Action) == "" {
			return nil, fmt.Errorf("%w: action[%d] has empty action name", ErrInvalidResponse, i)
		}
	}

	actions := wire.Actions
	if actions == nil {
		actions = []Action{}
	}

	return &Decision{
		Message: *wire.Message,
		Actions: actions,
	}, nil
}

// stripCodeFences removes a leading ```json (or bare ```) fence and a
// trailing ``` fence, returning the trimmed inner text.
func stripCodeFences(raw string) string {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "```json") {
		s = strings.TrimPrefix(s, "```json")
	} else {
		s = strings.TrimPrefix(s, "```")
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
