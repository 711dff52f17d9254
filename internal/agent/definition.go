// Package agent holds the static agent catalog: definitions, guardrails, and
// the deterministic intent splitter used for compound queries.
package agent

// Guardrail is an input-classification check that can veto a turn before the
// primary agent runs. Instructions are opaque prompt text for the classifier;
// the evaluation semantics live in the runtime.
type Guardrail struct {
	Name         string
	Instructions string
}

// Definition describes one agent. Definitions are immutable after startup and
// form a directed graph via Handoffs (cycles back to triage are expected).
type Definition struct {
	Name           string
	Description    string
	Model          string
	Instructions   string
	VectorStoreIDs []string
	Guardrails     []Guardrail
	Handoffs       []string
}

// ToolNames lists the tools exposed in the agent-topology response. Knowledge
// agents carry a file_search binding; handoff and context tools are runtime
// plumbing and not listed.
func (d *Definition) ToolNames() []string {
	if len(d.VectorStoreIDs) == 0 {
		return []string{}
	}
	return []string{"file_search"}
}

// GuardrailNames lists the names of the agent's input guardrails in order.
func (d *Definition) GuardrailNames() []string {
	names := make([]string, len(d.Guardrails))
	for i, g := range d.Guardrails {
		names[i] = g.Name
	}
	return names
}
