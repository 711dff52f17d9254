// Package runtime executes agents against the hosted model runtime and
// evaluates input guardrails. The orchestrator only sees the Runner interface
// and the item sequence it returns.
package runtime

import (
	"context"
	"fmt"

	"github.com/fiine-pro/support-chat/internal/agent"
	"github.com/fiine-pro/support-chat/internal/domain"
)

// GuardrailResult is the outcome of evaluating one guardrail against the
// latest user input.
type GuardrailResult struct {
	Guardrail agent.Guardrail
	Passed    bool
	Reasoning string
}

// TripwireError signals that an input guardrail vetoed the turn before the
// primary agent ran. It is expected control flow, not a fault: callers detect
// it with errors.As and return the refusal path.
type TripwireError struct {
	Check GuardrailResult
}

func (e *TripwireError) Error() string {
	return fmt.Sprintf("guardrail tripwire: %s", e.Check.Guardrail.Name)
}

// Result is the outcome of one agent execution.
type Result struct {
	// NewItems are the items produced by this execution, in order.
	NewItems []domain.Item
	// InputList is the full replay sequence for the next turn: the prior
	// items plus everything produced, in original order.
	InputList []domain.Item
}

// Runner executes one combined guardrail-evaluation + agent run. The context
// record is mutated in place when agent execution updates customer fields.
type Runner interface {
	Run(ctx context.Context, def *agent.Definition, items []domain.Item, chatCtx *domain.ChatContext) (*Result, error)
}
