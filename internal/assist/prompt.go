package assist

import (
	"encoding/json"
	"fmt"
	"strings"
)

// promptHeader is the fixed instruction block sent ahead of every request.
// The model must answer with a single JSON object; free text is rejected by
// the parser.
const promptHeader = `You are the intelligence behind a smart-home automation platform.
You always respond with a single valid JSON object and nothing else - no
explanations, no markdown, no text outside the JSON.

The object must contain exactly two keys:

- "message": a short, human-readable reply for the user.
- "actions": an array of actions to execute on the platform. Each action is
  an object with "entity" (format "<domain>.<id>"), "action" (the service to
  invoke), and optional "parameters" (an object of service parameters).

Return an empty "actions" array when nothing should be executed.`

// modePolicies describes each operating mode to the model. The active mode
// is marked in the rendered prompt.
var modePolicies = map[Mode]string{
	ModeAssistant:  "Do exactly what the user asks. Do not second-guess the request.",
	ModeSupervisor: "Check the request against the ambient state (light levels, sensors, presence). Approve it, or refuse with an explanatory message and no actions if it makes no sense.",
	ModeAutonomic:  "There is no direct user request. Decide independently which actions the ambient conditions call for, or return no actions.",
}

// BuildPrompt renders the full instruction text for one decision: the fixed
// header, the active mode policy, the user request, and a JSON embedding of
// the platform snapshot.
//
// The snapshot is supplied by the caller, not fetched here; BuildPrompt has
// no side effects.
//
// Returns ErrInvalidInput if userText is empty or whitespace-only, and
// ErrInvalidMode for an unrecognised mode.
func BuildPrompt(userText string, mode Mode, snapshot Snapshot) (string, error) {
	if strings.TrimSpace(userText) == "" {
		return "", fmt.Errorf("%w: user text cannot be empty", ErrInvalidInput)
	}
	if !mode.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidMode, mode)
	}

	snap, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding platform snapshot: %w", err)
	}

	var b strings.Builder
	b.WriteString(promptHeader)
	b.WriteString("\n\nOperating mode: ")
	b.WriteString(string(mode))
	b.WriteString("\n")
	b.WriteString(modePolicies[mode])
	b.WriteString("\n\n------------\n\n# User request\n\n")
	b.WriteString(strings.TrimSpace(userText))
	b.WriteString("\n\n------------\n\n# Platform state\n\n")
	b.Write(snap)
	b.WriteString("\n")

	return b.String(), nil
}
