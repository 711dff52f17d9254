package domain

// Turn event types. The list per turn is append-only and never mutated after
// the turn completes.
const (
	EventMessage         = "message"
	EventHandoff         = "handoff"
	EventToolCall        = "tool_call"
	EventToolOutput      = "tool_output"
	EventContextUpdate   = "context_update"
	EventGuardrailFailed = "guardrail_failed"
)

// TurnEvent is one structured entry in a turn's event log.
type TurnEvent struct {
	ID        string         `json:"id"`
	Type      string         `json:"type"`
	Agent     string         `json:"agent"`
	Content   string         `json:"content"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	Timestamp float64        `json:"timestamp,omitempty"`
}

// GuardrailCheck is the per-guardrail outcome reported in a chat response.
// Checks that were never evaluated (because an earlier check tripped first)
// are reported as passed with empty reasoning rather than "not run".
type GuardrailCheck struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Input     string  `json:"input"`
	Reasoning string  `json:"reasoning"`
	Passed    bool    `json:"passed"`
	Timestamp float64 `json:"timestamp"`
}
