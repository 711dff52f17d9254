package runtime

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/responses"
	"github.com/openai/openai-go/shared"

	"github.com/fiine-pro/support-chat/internal/agent"
	"github.com/fiine-pro/support-chat/internal/domain"
)

// updateContextTool lets agents record customer fields into the conversation
// context. Applied in place by the runner, surfaced to the orchestrator as a
// context diff.
const updateContextTool = "update_customer_context"

// compoundFallback is returned when a compound query matches no known intent.
const compoundFallback = "Xin lỗi, tôi không thể xác định được yêu cầu của bạn. Bạn vui lòng nói rõ hơn nhé."

// defaultMaxTurns caps the execute → tool-result → execute loop of a single
// conversational turn.
const defaultMaxTurns = 8

// guardrailMaxTokens bounds guardrail classifier responses; verdicts are a
// two-field JSON object.
const guardrailMaxTokens = 500

type guardrailVerdict struct {
	Reasoning string `json:"reasoning"`
	Flagged   bool   `json:"flagged"`
}

// Config holds OpenAI runner configuration.
type Config struct {
	APIKey   string
	BaseURL  string
	Model    string
	MaxTurns int
}

// OpenAIRunner executes agents against the OpenAI Responses API: guardrail
// classifier calls first, then the primary agent with file_search, handoff,
// and context tools.
type OpenAIRunner struct {
	client   *openai.Client
	registry *agent.Registry
	cfg      Config
	logger   *slog.Logger
}

var _ Runner = (*OpenAIRunner)(nil)

// NewOpenAIRunner creates a runner backed by the hosted OpenAI API.
func NewOpenAIRunner(cfg Config, registry *agent.Registry, logger *slog.Logger) *OpenAIRunner {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Model == "" {
		cfg.Model = agent.DefaultModel
	}
	if cfg.MaxTurns <= 0 {
		cfg.MaxTurns = defaultMaxTurns
	}

	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	client := openai.NewClient(opts...)

	return &OpenAIRunner{
		client:   &client,
		registry: registry,
		cfg:      cfg,
		logger:   logger,
	}
}

// Run evaluates the agent's guardrails against the latest user message and,
// if all pass, executes the agent over the replayed item sequence. A failing
// guardrail returns a *TripwireError before the primary agent runs.
func (r *OpenAIRunner) Run(ctx context.Context, def *agent.Definition, items []domain.Item, chatCtx *domain.ChatContext) (*Result, error) {
	input := latestUserMessage(items)

	for _, g := range def.Guardrails {
		verdict, err := r.evalGuardrail(ctx, g, input)
		if err != nil {
			return nil, fmt.Errorf("guardrail %s: %w", g.Name, err)
		}
		if verdict.Flagged {
			return nil, &TripwireError{Check: GuardrailResult{
				Guardrail: g,
				Passed:    false,
				Reasoning: verdict.Reasoning,
			}}
		}
	}

	if def.Name == r.registry.Default().Name && agent.CompoundQuery(input) {
		return r.runCompound(ctx, def, items, input)
	}

	return r.runLoop(ctx, def, items, chatCtx)
}

func (r *OpenAIRunner) runLoop(ctx context.Context, def *agent.Definition, items []domain.Item, chatCtx *domain.ChatContext) (*Result, error) {
	current := def
	input := buildInput(items)
	var newItems []domain.Item

	for turn := 0; turn < r.cfg.MaxTurns; turn++ {
		tools, handoffTargets := r.buildTools(current)
		params := responses.ResponseNewParams{
			Model:        shared.ResponsesModel(r.modelFor(current)),
			Instructions: openai.String(current.Instructions),
			Input:        responses.ResponseNewParamsInputUnion{OfInputItemList: input},
			Tools:        tools,
		}

		resp, err := r.client.Responses.New(ctx, params)
		if err != nil {
			return nil, fmt.Errorf("agent execution (%s): %w", current.Name, err)
		}

		again := false
		for _, out := range resp.Output {
			switch out.Type {
			case "message":
				text := outputText(out)
				if text == "" {
					continue
				}
				newItems = append(newItems, domain.AssistantMessage{Agent: current.Name, Content: text})
				input = append(input, responses.ResponseInputItemParamOfMessage(text, responses.EasyInputMessageRoleAssistant))

			case "function_call":
				if target, ok := handoffTargets[out.Name]; ok {
					newItems = append(newItems, domain.HandoffRecord{SourceAgent: current.Name, TargetAgent: target})
					current = r.registry.Resolve(target)
					again = true
					continue
				}
				newItems = append(newItems, domain.ToolCall{Agent: current.Name, Tool: out.Name, Args: parseArgs(out.Arguments)})
				output := r.invokeTool(out.Name, out.Arguments, chatCtx)
				newItems = append(newItems, domain.ToolOutput{Agent: current.Name, Tool: out.Name, Output: output})
				input = append(input,
					responses.ResponseInputItemUnionParam{OfFunctionCall: &responses.ResponseFunctionToolCallParam{
						CallID:    out.CallID,
						Name:      out.Name,
						Arguments: out.Arguments,
					}},
					responses.ResponseInputItemParamOfFunctionCallOutput(out.CallID, output),
				)
				again = true

			case "file_search_call":
				newItems = append(newItems, domain.ToolCall{Agent: current.Name, Tool: "file_search", Args: out.Queries})
				newItems = append(newItems, domain.ToolOutput{Agent: current.Name, Tool: "file_search", Output: out.Status})
			}
		}

		if !again {
			break
		}
	}

	return &Result{
		NewItems:  newItems,
		InputList: append(items, newItems...),
	}, nil
}

// runCompound answers a multi-intent query by running each matched knowledge
// agent on its sub-query and merging the replies into a single message from
// the entry agent.
func (r *OpenAIRunner) runCompound(ctx context.Context, def *agent.Definition, items []domain.Item, query string) (*Result, error) {
	var parts []string
	for _, sub := range agent.SplitIntents(query) {
		target, ok := r.registry.Get(sub.Intent.AgentName())
		if !ok {
			continue
		}
		text, err := r.runSingle(ctx, target, sub.Query)
		if err != nil {
			r.logger.Warn("compound sub-query failed", "intent", string(sub.Intent), "error", err)
			parts = append(parts, fmt.Sprintf("[Lỗi khi gọi %s]: %v", sub.Intent, err))
			continue
		}
		if text != "" {
			parts = append(parts, text)
		}
	}

	reply := strings.Join(parts, "\n\n")
	if reply == "" {
		reply = compoundFallback
	}

	msg := domain.AssistantMessage{Agent: def.Name, Content: reply}
	return &Result{
		NewItems:  []domain.Item{msg},
		InputList: append(items, msg),
	}, nil
}

// runSingle executes one agent on one standalone question, knowledge tools
// only — no handoffs, no context updates.
func (r *OpenAIRunner) runSingle(ctx context.Context, def *agent.Definition, query string) (string, error) {
	params := responses.ResponseNewParams{
		Model:        shared.ResponsesModel(r.modelFor(def)),
		Instructions: openai.String(def.Instructions),
		Input:        responses.ResponseNewParamsInputUnion{OfString: openai.String(query)},
	}
	if len(def.VectorStoreIDs) > 0 {
		params.Tools = []responses.ToolUnionParam{fileSearchTool(def.VectorStoreIDs)}
	}

	resp, err := r.client.Responses.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("agent execution (%s): %w", def.Name, err)
	}
	return resp.OutputText(), nil
}

func (r *OpenAIRunner) evalGuardrail(ctx context.Context, g agent.Guardrail, input string) (guardrailVerdict, error) {
	params := responses.ResponseNewParams{
		Model:           shared.ResponsesModel(agent.DefaultModel),
		Instructions:    openai.String(g.Instructions),
		Input:           responses.ResponseNewParamsInputUnion{OfString: openai.String(input)},
		MaxOutputTokens: openai.Int(guardrailMaxTokens),
	}

	resp, err := r.client.Responses.New(ctx, params)
	if err != nil {
		return guardrailVerdict{}, err
	}

	var verdict guardrailVerdict
	if err := json.Unmarshal([]byte(stripFences(resp.OutputText())), &verdict); err != nil {
		// An unparseable verdict never vetoes the turn.
		r.logger.Warn("unparseable guardrail verdict", "guardrail", g.Name, "error", err)
		return guardrailVerdict{}, nil
	}
	return verdict, nil
}

func (r *OpenAIRunner) buildTools(def *agent.Definition) ([]responses.ToolUnionParam, map[string]string) {
	var tools []responses.ToolUnionParam
	if len(def.VectorStoreIDs) > 0 {
		tools = append(tools, fileSearchTool(def.VectorStoreIDs))
	}

	targets := make(map[string]string, len(def.Handoffs))
	for _, h := range def.Handoffs {
		name := handoffToolName(h)
		targets[name] = h
		tools = append(tools, functionTool(name, "Chuyển cuộc hội thoại cho "+h, map[string]any{
			"type":       "object",
			"properties": map[string]any{},
		}))
	}

	tools = append(tools, functionTool(updateContextTool, "Ghi nhận thông tin khách hàng vào hồ sơ hội thoại", map[string]any{
		"type": "object",
		"properties": map[string]any{
			"customer_name":  map[string]any{"type": "string", "description": "Họ tên khách hàng"},
			"customer_email": map[string]any{"type": "string", "description": "Email khách hàng"},
			"topic":          map[string]any{"type": "string", "description": "Chủ đề khách hàng đang hỏi"},
		},
	}))

	return tools, targets
}

// invokeTool executes a locally handled function tool and returns the string
// result fed back to the model.
func (r *OpenAIRunner) invokeTool(name, rawArgs string, chatCtx *domain.ChatContext) string {
	if name != updateContextTool {
		return "tool không được hỗ trợ: " + name
	}

	var args struct {
		CustomerName  string `json:"customer_name"`
		CustomerEmail string `json:"customer_email"`
		Topic         string `json:"topic"`
	}
	if err := json.Unmarshal([]byte(rawArgs), &args); err != nil {
		r.logger.Warn("unparseable context update arguments", "error", err)
		return "không đọc được thông tin khách hàng"
	}

	if args.CustomerName != "" {
		chatCtx.CustomerName = args.CustomerName
	}
	if args.CustomerEmail != "" {
		chatCtx.CustomerEmail = args.CustomerEmail
	}
	if args.Topic != "" {
		chatCtx.Topic = args.Topic
	}
	return "đã cập nhật thông tin khách hàng"
}

func (r *OpenAIRunner) modelFor(def *agent.Definition) string {
	if def.Model != "" {
		return def.Model
	}
	return r.cfg.Model
}

func fileSearchTool(vectorStoreIDs []string) responses.ToolUnionParam {
	return responses.ToolUnionParam{OfFileSearch: &responses.FileSearchToolParam{
		VectorStoreIDs: vectorStoreIDs,
		MaxNumResults:  openai.Int(3),
	}}
}

func functionTool(name, description string, parameters map[string]any) responses.ToolUnionParam {
	tool := responses.ToolParamOfFunction(name, parameters, false)
	fn := tool.OfFunction
	fn.Description = openai.String(description)
	tool.OfFunction = fn
	return tool
}

// outputText collects the text parts of one message output item.
func outputText(out responses.ResponseOutputItemUnion) string {
	var b strings.Builder
	for _, part := range out.Content {
		if part.Type == "output_text" {
			b.WriteString(part.Text)
		}
	}
	return b.String()
}

// buildInput replays the conversation's message items. Handoff and tool items
// are bookkeeping for the event log; the model only needs the dialogue.
func buildInput(items []domain.Item) responses.ResponseInputParam {
	input := make(responses.ResponseInputParam, 0, len(items))
	for _, it := range items {
		switch v := it.(type) {
		case domain.UserMessage:
			input = append(input, responses.ResponseInputItemParamOfMessage(v.Content, responses.EasyInputMessageRoleUser))
		case domain.AssistantMessage:
			input = append(input, responses.ResponseInputItemParamOfMessage(v.Content, responses.EasyInputMessageRoleAssistant))
		case domain.HandoffRecord, domain.ToolCall, domain.ToolOutput:
			// not replayed
		}
	}
	return input
}

func latestUserMessage(items []domain.Item) string {
	for i := len(items) - 1; i >= 0; i-- {
		if m, ok := items[i].(domain.UserMessage); ok {
			return m.Content
		}
	}
	return ""
}

// parseArgs decodes tool-call arguments, degrading to the raw string when the
// payload is not valid JSON.
func parseArgs(raw string) any {
	var parsed map[string]any
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return raw
	}
	return parsed
}

func handoffToolName(agentName string) string {
	return "transfer_to_" + strings.ReplaceAll(strings.ToLower(agentName), " ", "_")
}

func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	if i := strings.LastIndex(s, "```"); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}
