package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/fiine-pro/support-chat/internal/agent"
	"github.com/fiine-pro/support-chat/internal/domain"
	"github.com/fiine-pro/support-chat/internal/runtime"
)

// Refusal is the fixed reply returned when an input guardrail vetoes a turn.
const Refusal = "Xin lỗi, tôi chỉ có thể hỗ trợ các chủ đề liên quan đến công ty và dịch vụ."

// supportKeywords flag replies that should prompt the frontend to render the
// technical-error report form.
var supportKeywords = []string{"support", "hỗ trợ"}

// TurnRequest is one inbound chat turn.
type TurnRequest struct {
	ConversationID string `json:"conversation_id,omitempty"`
	Message        string `json:"message"`
	UserID         string `json:"user_id,omitempty"`
}

// AgentMessage is one outgoing message. Content and Reply carry the same text
// for frontend compatibility.
type AgentMessage struct {
	Content string `json:"content"`
	Reply   string `json:"reply"`
	Agent   string `json:"agent"`
}

// AgentSummary describes one registry entry in the static topology listing.
type AgentSummary struct {
	Name            string   `json:"name"`
	Description     string   `json:"description"`
	Handoffs        []string `json:"handoffs"`
	Tools           []string `json:"tools"`
	InputGuardrails []string `json:"input_guardrails"`
}

// TurnResponse is the uniform response of one conversational turn.
type TurnResponse struct {
	ConversationID string                  `json:"conversation_id"`
	CurrentAgent   string                  `json:"current_agent"`
	Messages       []AgentMessage          `json:"messages"`
	Events         []domain.TurnEvent      `json:"events"`
	Context        domain.ChatContext      `json:"context"`
	Agents         []AgentSummary          `json:"agents"`
	Guardrails     []domain.GuardrailCheck `json:"guardrails"`
	Reply          string                  `json:"reply"`
	Metadata       map[string]any          `json:"metadata"`
}

// HistoryWriter persists finalized turns. Writes are best-effort relative to
// the turn response: failures are logged and swallowed, never surfaced to the
// caller.
type HistoryWriter interface {
	SaveChat(ctx context.Context, record *domain.ChatRecord) error
}

// Orchestrator executes exactly one conversational turn per call: session
// resolution, guardrail gate, agent execution, result classification, state
// update, history persistence, response assembly.
type Orchestrator struct {
	registry *agent.Registry
	runner   runtime.Runner
	sessions SessionStore
	history  HistoryWriter
	logger   *slog.Logger
}

// New creates a turn orchestrator.
func New(registry *agent.Registry, runner runtime.Runner, sessions SessionStore, history HistoryWriter, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		registry: registry,
		runner:   runner,
		sessions: sessions,
		history:  history,
		logger:   logger,
	}
}

// HandleTurn runs one turn. The only error it returns is an agent-execution
// failure; guardrail tripwires are handled internally via the refusal path.
func (o *Orchestrator) HandleTurn(ctx context.Context, req TurnRequest) (*TurnResponse, error) {
	conversationID := req.ConversationID
	session, exists := (*domain.Session)(nil), false
	if conversationID != "" {
		session, exists = o.sessions.Get(conversationID)
	}
	if !exists {
		conversationID = newConversationID()
	}

	unlock := o.sessions.Lock(conversationID)
	defer unlock()

	if !exists {
		session = &domain.Session{
			ConversationID: conversationID,
			Context:        domain.NewContext(),
			CurrentAgent:   o.registry.Default().Name,
		}
		// Clients may open a conversation before the user types anything.
		if strings.TrimSpace(req.Message) == "" {
			o.sessions.Save(conversationID, session)
			return &TurnResponse{
				ConversationID: conversationID,
				CurrentAgent:   session.CurrentAgent,
				Messages:       []AgentMessage{},
				Events:         []domain.TurnEvent{},
				Context:        session.Context,
				Agents:         o.agentList(),
				Guardrails:     []domain.GuardrailCheck{},
				Reply:          "",
				Metadata:       map[string]any{},
			}, nil
		}
	}

	current := o.registry.Resolve(session.CurrentAgent)
	session.InputItems = append(session.InputItems, domain.UserMessage{Content: req.Message})
	oldContext := session.Context

	result, err := o.runner.Run(ctx, current, session.InputItems, &session.Context)

	var tripwire *runtime.TripwireError
	if errors.As(err, &tripwire) {
		return o.refuse(ctx, conversationID, session, current, req, tripwire), nil
	}
	if err != nil {
		return nil, fmt.Errorf("turn execution: %w", err)
	}

	var messages []AgentMessage
	var events []domain.TurnEvent
	currentName := current.Name

	for _, item := range result.NewItems {
		switch v := item.(type) {
		case domain.AssistantMessage:
			messages = append(messages, AgentMessage{Content: v.Content, Reply: v.Content, Agent: v.Agent})
			events = append(events, newEvent(domain.EventMessage, v.Agent, v.Content, nil))
		case domain.HandoffRecord:
			events = append(events, newEvent(domain.EventHandoff, v.SourceAgent,
				fmt.Sprintf("%s -> %s", v.SourceAgent, v.TargetAgent),
				map[string]any{"source_agent": v.SourceAgent, "target_agent": v.TargetAgent}))
			currentName = v.TargetAgent
		case domain.ToolCall:
			events = append(events, newEvent(domain.EventToolCall, v.Agent, v.Tool,
				map[string]any{"tool_args": v.Args}))
		case domain.ToolOutput:
			events = append(events, newEvent(domain.EventToolOutput, v.Agent, fmt.Sprint(v.Output),
				map[string]any{"tool_result": v.Output}))
		case domain.UserMessage:
			// produced sequences never contain user messages
		}
	}

	if changes := session.Context.Diff(oldContext); len(changes) > 0 {
		events = append(events, newEvent(domain.EventContextUpdate, currentName, "",
			map[string]any{"changes": changes}))
	}

	session.InputItems = result.InputList
	session.CurrentAgent = currentName
	o.sessions.Save(conversationID, session)

	finalAgent := o.registry.Resolve(currentName)
	guardrails := make([]domain.GuardrailCheck, 0, len(finalAgent.Guardrails))
	for _, g := range finalAgent.Guardrails {
		guardrails = append(guardrails, domain.GuardrailCheck{
			ID:        uuid.NewString(),
			Name:      g.Name,
			Input:     req.Message,
			Reasoning: "",
			Passed:    true,
			Timestamp: nowMillis(),
		})
	}

	var mainReply string
	if len(messages) > 0 {
		mainReply = messages[len(messages)-1].Content
	}

	if req.UserID != "" && mainReply != "" {
		answerAgent := messages[len(messages)-1].Agent
		o.persistTurn(ctx, &domain.ChatRecord{
			ConversationID: conversationID,
			UserID:         req.UserID,
			Question:       req.Message,
			Answer:         mainReply,
			Agent:          answerAgent,
			Timestamp:      time.Now().UTC(),
			Context:        session.Context,
			Events:         events,
		})
	} else if req.UserID == "" {
		o.logger.Debug("no user_id supplied, skipping history persistence", "conversation_id", conversationID)
	}

	metadata := map[string]any{}
	if RequiresSupportForm(messageTexts(messages)...) {
		metadata["requires_support_form"] = true
	}

	if messages == nil {
		messages = []AgentMessage{}
	}
	if events == nil {
		events = []domain.TurnEvent{}
	}

	return &TurnResponse{
		ConversationID: conversationID,
		CurrentAgent:   currentName,
		Messages:       messages,
		Events:         events,
		Context:        session.Context,
		Agents:         o.agentList(),
		Guardrails:     guardrails,
		Reply:          mainReply,
		Metadata:       metadata,
	}, nil
}

// refuse handles the guardrail-tripwire path: record the refusal, report the
// failing check alongside its optimistically passed siblings, and persist a
// guardrail_failed history record.
func (o *Orchestrator) refuse(ctx context.Context, conversationID string, session *domain.Session, current *agent.Definition, req TurnRequest, tripwire *runtime.TripwireError) *TurnResponse {
	failedName := tripwire.Check.Guardrail.Name
	ts := nowMillis()

	checks := make([]domain.GuardrailCheck, 0, len(current.Guardrails))
	for _, g := range current.Guardrails {
		check := domain.GuardrailCheck{
			ID:        uuid.NewString(),
			Name:      g.Name,
			Input:     req.Message,
			Passed:    g.Name != failedName,
			Timestamp: ts,
		}
		if g.Name == failedName {
			check.Reasoning = tripwire.Check.Reasoning
		}
		checks = append(checks, check)
	}

	session.InputItems = append(session.InputItems, domain.AssistantMessage{Agent: current.Name, Content: Refusal})
	o.sessions.Save(conversationID, session)

	if req.UserID != "" {
		o.persistTurn(ctx, &domain.ChatRecord{
			ConversationID: conversationID,
			UserID:         req.UserID,
			Question:       req.Message,
			Answer:         Refusal,
			Agent:          current.Name,
			Timestamp:      time.Now().UTC(),
			Context:        session.Context,
			Events: []domain.TurnEvent{
				newEvent(domain.EventGuardrailFailed, current.Name, "", map[string]any{"guardrail": failedName}),
			},
		})
	}

	return &TurnResponse{
		ConversationID: conversationID,
		CurrentAgent:   current.Name,
		Messages:       []AgentMessage{{Content: Refusal, Reply: Refusal, Agent: current.Name}},
		Events:         []domain.TurnEvent{},
		Context:        session.Context,
		Agents:         o.agentList(),
		Guardrails:     checks,
		Reply:          Refusal,
		Metadata:       map[string]any{},
	}
}

// persistTurn writes a history record, logging and swallowing failures so the
// turn response never depends on the durable store.
func (o *Orchestrator) persistTurn(ctx context.Context, record *domain.ChatRecord) {
	if o.history == nil {
		return
	}
	if err := o.history.SaveChat(ctx, record); err != nil {
		o.logger.Error("failed to save chat history",
			"conversation_id", record.ConversationID,
			"user_id", record.UserID,
			"error", err)
	}
}

func (o *Orchestrator) agentList() []AgentSummary {
	defs := o.registry.List()
	list := make([]AgentSummary, 0, len(defs))
	for _, d := range defs {
		list = append(list, AgentSummary{
			Name:            d.Name,
			Description:     d.Description,
			Handoffs:        append([]string{}, d.Handoffs...),
			Tools:           d.ToolNames(),
			InputGuardrails: d.GuardrailNames(),
		})
	}
	return list
}

// RequiresSupportForm reports whether any reply text mentions support,
// prompting the frontend to offer the error-report form.
func RequiresSupportForm(texts ...string) bool {
	for _, text := range texts {
		lower := strings.ToLower(text)
		for _, kw := range supportKeywords {
			if strings.Contains(lower, kw) {
				return true
			}
		}
	}
	return false
}

func messageTexts(messages []AgentMessage) []string {
	texts := make([]string, len(messages))
	for i, m := range messages {
		texts[i] = m.Content
	}
	return texts
}

func newEvent(eventType, agentName, content string, metadata map[string]any) domain.TurnEvent {
	return domain.TurnEvent{
		ID:        uuid.NewString(),
		Type:      eventType,
		Agent:     agentName,
		Content:   content,
		Metadata:  metadata,
		Timestamp: nowMillis(),
	}
}

func newConversationID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

func nowMillis() float64 {
	return float64(time.Now().UnixMilli())
}
