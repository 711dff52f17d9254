package runtime

import (
	"errors"
	"testing"

	"github.com/fiine-pro/support-chat/internal/agent"
	"github.com/fiine-pro/support-chat/internal/domain"
)

func TestParseArgs(t *testing.T) {
	parsed := parseArgs(`{"question": "Fiine là gì?"}`)
	m, ok := parsed.(map[string]any)
	if !ok {
		t.Fatalf("Expected map, got %T", parsed)
	}
	if m["question"] != "Fiine là gì?" {
		t.Errorf("Unexpected args: %v", m)
	}

	// Malformed arguments degrade to the raw string instead of failing.
	raw := parseArgs(`{"broken`)
	if raw != `{"broken` {
		t.Errorf("Expected raw fallback, got %v", raw)
	}
}

func TestHandoffToolName(t *testing.T) {
	got := handoffToolName(agent.CompanyPriceAgentName)
	if got != "transfer_to_company_price_agent" {
		t.Errorf("Unexpected tool name %q", got)
	}
}

func TestStripFences(t *testing.T) {
	tests := []struct{ in, want string }{
		{`{"flagged": true}`, `{"flagged": true}`},
		{"```json\n{\"flagged\": false}\n```", `{"flagged": false}`},
		{"```\n{}\n```", "{}"},
		{"  {} ", "{}"},
	}
	for _, tt := range tests {
		if got := stripFences(tt.in); got != tt.want {
			t.Errorf("stripFences(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestLatestUserMessage(t *testing.T) {
	items := []domain.Item{
		domain.UserMessage{Content: "first"},
		domain.AssistantMessage{Agent: "Triage Agent", Content: "reply"},
		domain.UserMessage{Content: "second"},
		domain.ToolOutput{Agent: "Triage Agent", Tool: "file_search"},
	}
	if got := latestUserMessage(items); got != "second" {
		t.Errorf("Expected %q, got %q", "second", got)
	}
	if got := latestUserMessage(nil); got != "" {
		t.Errorf("Expected empty message for empty items, got %q", got)
	}
}

func TestBuildInputReplaysMessagesOnly(t *testing.T) {
	items := []domain.Item{
		domain.UserMessage{Content: "hi"},
		domain.HandoffRecord{SourceAgent: "a", TargetAgent: "b"},
		domain.ToolCall{Agent: "b", Tool: "file_search"},
		domain.ToolOutput{Agent: "b", Tool: "file_search"},
		domain.AssistantMessage{Agent: "b", Content: "hello"},
	}
	input := buildInput(items)
	if len(input) != 2 {
		t.Errorf("Expected 2 replayed messages, got %d", len(input))
	}
}

func TestTripwireErrorDetection(t *testing.T) {
	var err error = &TripwireError{Check: GuardrailResult{
		Guardrail: agent.JailbreakGuardrail,
		Reasoning: "prompt extraction attempt",
	}}

	var tripwire *TripwireError
	if !errors.As(err, &tripwire) {
		t.Fatal("errors.As failed to detect TripwireError")
	}
	if tripwire.Check.Guardrail.Name != agent.JailbreakGuardrailName {
		t.Errorf("Unexpected guardrail %q", tripwire.Check.Guardrail.Name)
	}
	if tripwire.Check.Passed {
		t.Error("Tripped check must not be marked passed")
	}
}
