// Package domain contains core domain types for the support chat backend.
package domain

// ChatContext carries the mutable customer fields attached to a conversation.
// Only agent execution mutates it; the orchestrator diffs snapshots to detect
// changes.
type ChatContext struct {
	CustomerName  string `json:"customer_name,omitempty"`
	CustomerEmail string `json:"customer_email,omitempty"`
	Topic         string `json:"topic,omitempty"`
}

// NewContext returns the default context for a fresh conversation.
func NewContext() ChatContext {
	return ChatContext{}
}

// Diff returns the fields whose values differ from old, keyed by their wire
// names. Unchanged fields never appear in the result.
func (c ChatContext) Diff(old ChatContext) map[string]any {
	changes := make(map[string]any)
	if c.CustomerName != old.CustomerName {
		changes["customer_name"] = c.CustomerName
	}
	if c.CustomerEmail != old.CustomerEmail {
		changes["customer_email"] = c.CustomerEmail
	}
	if c.Topic != old.Topic {
		changes["topic"] = c.Topic
	}
	return changes
}

// Session is the per-conversation state replayed into every turn.
// It lives in the in-memory session store only; durable history is the
// store.Repository's concern.
type Session struct {
	ConversationID string
	InputItems     []Item
	Context        ChatContext
	CurrentAgent   string
}
