// Package oracle adapts chat models to the classify and respond capabilities the
// dispatcher and specialists depend on.
package oracle

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	"github.com/rs/zerolog/log"
	contractx "github.com/tanpawarit/Chative-Vehicle-Advisor/agent/contract"
	statex "github.com/tanpawarit/Chative-Vehicle-Advisor/agent/state"
)

const DefaultMaxToolRounds = 4

const toolLimitNotice = "tool call limit reached for this turn; answer with the information gathered so far"

var _ contractx.Oracle = (*Graph)(nil)

type classifierLLMOutput struct {
	Agent  string `json:"agent"`
	Reason string `json:"reason"`
}

type Option func(*Graph)

// WithMaxToolRounds bounds how many times a specialist model may request tools in one turn.
func WithMaxToolRounds(n int) Option {
	return func(g *Graph) {
		if n > 0 {
			g.maxToolRounds = n
		}
	}
}

// Graph is the eino-backed oracle. Classification runs a prompt -> model -> JSON graph;
// responses run a tool-bound model graph in a loop until it answers in plain text.
type Graph struct {
	classifyRunner  compose.Runnable[map[string]any, classifierLLMOutput]
	specialistModel einomodel.ToolCallingChatModel
	finalRunner     compose.Runnable[[]*schema.Message, *schema.Message]
	maxToolRounds   int

	mu      sync.Mutex
	runners map[contractx.SpecialistID]compose.Runnable[[]*schema.Message, *schema.Message]
}

func NewGraph(
	ctx context.Context,
	classifierModel einomodel.BaseChatModel,
	specialistModel einomodel.ToolCallingChatModel,
	classifierPrompt string,
	opts ...Option,
) (*Graph, error) {
	if strings.TrimSpace(classifierPrompt) == "" {
		return nil, fmt.Errorf("%w: classifier prompt", contractx.ErrPromptMissing)
	}
	if classifierModel == nil || specialistModel == nil {
		return nil, fmt.Errorf("%w: classifier and specialist models are required", contractx.ErrValidation)
	}

	classifyRunner, err := compileClassifyGraph(ctx, classifierModel, classifierPrompt)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", contractx.ErrModelInvoke, err)
	}
	finalRunner, err := compileRespondGraph(ctx, specialistModel, "oracle.respond.final")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", contractx.ErrModelInvoke, err)
	}

	g := &Graph{
		classifyRunner:  classifyRunner,
		specialistModel: specialistModel,
		finalRunner:     finalRunner,
		maxToolRounds:   DefaultMaxToolRounds,
		runners:         make(map[contractx.SpecialistID]compose.Runnable[[]*schema.Message, *schema.Message]),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

func (g *Graph) Classify(ctx context.Context, req contractx.ClassifyRequest) (contractx.Classification, error) {
	input, err := classifyInput(req)
	if err != nil {
		return contractx.Classification{}, err
	}

	out, err := g.classifyRunner.Invoke(ctx, map[string]any{
		"input": input,
	})
	if err != nil {
		return contractx.Classification{}, fmt.Errorf("%w: classify invoke: %v", contractx.ErrModelInvoke, err)
	}

	return contractx.Classification{
		Agent:  strings.TrimSpace(out.Agent),
		Reason: strings.TrimSpace(out.Reason),
	}, nil
}

// Respond answers as a specialist. Each tool call the model makes is executed through
// tools and its result is fed back as a tool message.
func (g *Graph) Respond(ctx context.Context, req contractx.RespondRequest, tools contractx.ToolInvoker) (string, error) {
	if strings.TrimSpace(req.SystemPrompt) == "" {
		return "", fmt.Errorf("%w: specialist=%s", contractx.ErrPromptMissing, req.Specialist)
	}
	if tools == nil {
		return "", fmt.Errorf("%w: tool invoker is required", contractx.ErrValidation)
	}

	runner, err := g.respondRunner(ctx, req.Specialist, tools.Tools())
	if err != nil {
		return "", err
	}

	system := req.SystemPrompt
	if ctxText := strings.TrimSpace(req.Context); ctxText != "" {
		system += "\n\nConversation context:\n" + ctxText
	}
	messages := []*schema.Message{
		schema.SystemMessage(system),
		schema.UserMessage(req.UserMessage),
	}

	for round := 0; ; round++ {
		msg, err := runner.Invoke(ctx, messages)
		if err != nil {
			return "", fmt.Errorf("%w: respond invoke: %v", contractx.ErrModelInvoke, err)
		}
		if msg == nil {
			return "", fmt.Errorf("%w: empty specialist response", contractx.ErrSchemaViolation)
		}
		if len(msg.ToolCalls) == 0 {
			return replyContent(req.Specialist, msg, round)
		}

		messages = append(messages, msg)
		if round >= g.maxToolRounds {
			log.Warn().
				Str("specialist", req.Specialist.String()).
				Int("rounds", round).
				Int("pending_calls", len(msg.ToolCalls)).
				Msg("tool round limit reached")
			return g.finalReply(ctx, req.Specialist, messages, msg.ToolCalls, round)
		}

		for _, call := range msg.ToolCalls {
			result := invokeCall(ctx, tools, call)
			messages = append(messages, schema.ToolMessage(encodeToolResult(result), call.ID))
		}
	}
}

// finalReply answers the pending calls with a limit notice and asks the model,
// without tools, to reply from what it has gathered.
func (g *Graph) finalReply(
	ctx context.Context,
	id contractx.SpecialistID,
	messages []*schema.Message,
	pending []schema.ToolCall,
	round int,
) (string, error) {
	for _, call := range pending {
		notice := contractx.ToolResult{Tool: strings.TrimSpace(call.Function.Name), Error: toolLimitNotice}
		messages = append(messages, schema.ToolMessage(encodeToolResult(notice), call.ID))
	}

	msg, err := g.finalRunner.Invoke(ctx, messages)
	if err != nil {
		return "", fmt.Errorf("%w: final respond invoke: %v", contractx.ErrModelInvoke, err)
	}
	return replyContent(id, msg, round)
}

func replyContent(id contractx.SpecialistID, msg *schema.Message, round int) (string, error) {
	if msg == nil {
		return "", fmt.Errorf("%w: empty specialist response", contractx.ErrSchemaViolation)
	}
	content := strings.TrimSpace(msg.Content)
	if content == "" {
		return "", fmt.Errorf("%w: specialist=%s produced no reply after %d tool rounds", contractx.ErrSchemaViolation, id, round)
	}
	return content, nil
}

func (g *Graph) respondRunner(
	ctx context.Context,
	id contractx.SpecialistID,
	infos []*schema.ToolInfo,
) (compose.Runnable[[]*schema.Message, *schema.Message], error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if r, ok := g.runners[id]; ok {
		return r, nil
	}

	var chatModel einomodel.BaseChatModel = g.specialistModel
	if len(infos) > 0 {
		bound, err := g.specialistModel.WithTools(infos)
		if err != nil {
			return nil, fmt.Errorf("%w: bind tools for specialist=%s: %v", contractx.ErrModelInvoke, id, err)
		}
		chatModel = bound
	}

	r, err := compileRespondGraph(ctx, chatModel, "oracle.respond."+id.String())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", contractx.ErrModelInvoke, err)
	}
	g.runners[id] = r
	return r, nil
}

func invokeCall(ctx context.Context, tools contractx.ToolInvoker, call schema.ToolCall) contractx.ToolResult {
	name := strings.TrimSpace(call.Function.Name)
	args := map[string]any{}
	if raw := strings.TrimSpace(call.Function.Arguments); raw != "" {
		if err := json.Unmarshal([]byte(raw), &args); err != nil {
			return contractx.ToolResult{
				Tool:  name,
				Error: fmt.Sprintf("%s: invalid tool args: %v", contractx.ErrSchemaViolation, err),
			}
		}
	}
	return tools.Invoke(ctx, contractx.ToolRequest{Tool: name, Args: args})
}

func encodeToolResult(res contractx.ToolResult) string {
	raw, err := json.Marshal(res)
	if err != nil {
		return fmt.Sprintf(`{"tool":%q,"error":%q}`, res.Tool, err.Error())
	}
	return string(raw)
}

type windowEntry struct {
	Role       statex.Role      `json:"role"`
	Specialist string           `json:"specialist,omitempty"`
	Kind       statex.EntryKind `json:"kind"`
	Text       string           `json:"text"`
}

func classifyInput(req contractx.ClassifyRequest) (string, error) {
	window := make([]windowEntry, 0, len(req.Window))
	for _, e := range req.Window {
		window = append(window, windowEntry{Role: e.Role, Specialist: e.Specialist, Kind: e.Kind, Text: e.Text})
	}
	raw, err := json.Marshal(map[string]any{
		"user_message": req.UserMessage,
		"window":       window,
	})
	if err != nil {
		return "", fmt.Errorf("%w: marshal classify payload: %v", contractx.ErrValidation, err)
	}
	return string(raw), nil
}
