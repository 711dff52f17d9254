package domain

// Item is one element of a conversation's replayed input sequence: user and
// assistant messages plus the artifacts agent execution produces (handoffs,
// tool calls, tool outputs). The set of implementations is closed; consumers
// switch over the concrete types exhaustively.
type Item interface {
	item()
}

// UserMessage is a message sent by the customer.
type UserMessage struct {
	Content string `json:"content"`
}

// AssistantMessage is a message authored by an agent.
type AssistantMessage struct {
	Agent   string `json:"agent"`
	Content string `json:"content"`
}

// HandoffRecord marks a transfer of the active agent within a turn.
type HandoffRecord struct {
	SourceAgent string `json:"source_agent"`
	TargetAgent string `json:"target_agent"`
}

// ToolCall records a tool invocation by an agent. Args holds the parsed
// arguments, or the raw unparsed string when parsing failed.
type ToolCall struct {
	Agent string `json:"agent"`
	Tool  string `json:"tool"`
	Args  any    `json:"args,omitempty"`
}

// ToolOutput records the raw result of a tool invocation.
type ToolOutput struct {
	Agent  string `json:"agent"`
	Tool   string `json:"tool"`
	Output any    `json:"output,omitempty"`
}

func (UserMessage) item()      {}
func (AssistantMessage) item() {}
func (HandoffRecord) item()    {}
func (ToolCall) item()         {}
func (ToolOutput) item()       {}
