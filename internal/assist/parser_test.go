package assist

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"
)

func TestParseDecision(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    *Decision
		wantErr error
	}{
		{
			name: "message and actions",
			raw:  `{"message":"Encendiendo la luz","actions":[{"entity":"light.kitchen","action":"turn_on"}]}`,
			want: &Decision{
				Message: "Encendiendo la luz",
				Actions: []Action{{Entity: "light.kitchen", Action: "turn_on"}},
			},
		},
		{
			name: "action with parameters",
			raw:  `{"message":"ok","actions":[{"entity":"light.hall","action":"turn_on","parameters":{"brightness":128}}]}`,
			want: &Decision{
				Message: "ok",
				Actions: []Action{{
					Entity:     "light.hall",
					Action:     "turn_on",
					Parameters: map[string]any{"brightness": float64(128)},
				}},
			},
		},
		{
			name: "absent actions list is a valid no-op decision",
			raw:  `{"message":"nothing to do"}`,
			want: &Decision{Message: "nothing to do", Actions: []Action{}},
		},
		{
			name: "empty actions list is valid",
			raw:  `{"message":"nothing to do","actions":[]}`,
			want: &Decision{Message: "nothing to do", Actions: []Action{}},
		},
		{
			name: "empty message string is valid",
			raw:  `{"message":"","actions":[]}`,
			want: &Decision{Message: "", Actions: []Action{}},
		},
		{
			name: "unknown top-level fields ignored",
			raw:  `{"message":"ok","actions":[],"confidence":0.93,"reasoning":"it is dark"}`,
			want: &Decision{Message: "ok", Actions: []Action{}},
		},
		{
			name: "json fence stripped",
			raw:  "```json\n{\"message\":\"ok\",\"actions\":[]}\n```",
			want: &Decision{Message: "ok", Actions: []Action{}},
		},
		{
			name: "bare fence stripped",
			raw:  "```\n{\"message\":\"ok\"}\n```",
			want: &Decision{Message: "ok", Actions: []Action{}},
		},
		{
			name:    "empty response",
			raw:     "   ",
			wantErr: ErrInvalidResponse,
		},
		{
			name:    "free text instead of JSON",
			raw:     "I turned on the light for you!",
			wantErr: ErrInvalidResponse,
		},
		{
			name:    "missing message field",
			raw:     `{"actions":[{"entity":"light.kitchen","action":"turn_on"}]}`,
			wantErr: ErrInvalidResponse,
		},
		{
			name:    "action missing entity fails whole response",
			raw:     `{"message":"ok","actions":[{"action":"turn_on"}]}`,
			wantErr: ErrInvalidResponse,
		},
		{
			name:    "action missing action name fails whole response",
			raw:     `{"message":"ok","actions":[{"entity":"light.kitchen"}]}`,
			wantErr: ErrInvalidResponse,
		},
		{
			name:    "entity without separator",
			raw:     `{"message":"ok","actions":[{"entity":"bad_no_dot","action":"turn_on"}]}`,
			wantErr: ErrInvalidResponse,
		},
		{
			name:    "entity with two separators",
			raw:     `{"message":"ok","actions":[{"entity":"light.kitchen.main","action":"turn_on"}]}`,
			wantErr: ErrInvalidResponse,
		},
		{
			name:    "one bad action poisons the batch",
			raw:     `{"message":"ok","actions":[{"entity":"light.kitchen","action":"turn_on"},{"entity":"","action":"turn_off"}]}`,
			wantErr: ErrInvalidResponse,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDecision(tt.raw)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("ParseDecision() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseDecision() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseDecision() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

// A decision serialised to its wire form and parsed back must be equal:
// message and action order are preserved.
func TestDecisionRoundTrip(t *testing.T) {
	original := Decision{
		Message: "Dimming the living room",
		Actions: []Action{
			{Entity: "scene.movie_night", Action: "turn_on"},
			{Entity: "light.living_main", Action: "turn_on", Parameters: map[string]any{"brightness": float64(40)}},
			{Entity: "cover.living_blinds", Action: "close_cover"},
		},
	}

	data, err := json.Marshal(original)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	parsed, err := ParseDecision(string(data))
	if err != nil {
		t.Fatalf("ParseDecision() error = %v", err)
	}
	if !reflect.DeepEqual(*parsed, original) {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", *parsed, original)
	}
}
