package oracle

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	contractx "github.com/tanpawarit/Chative-Vehicle-Advisor/agent/contract"
	statex "github.com/tanpawarit/Chative-Vehicle-Advisor/agent/state"
)

type fakeToolCallingModel struct {
	mu        sync.Mutex
	responses []*schema.Message
	err       error
	idx       int
	inputs    [][]*schema.Message
	bound     []*schema.ToolInfo
}

func (f *fakeToolCallingModel) Generate(ctx context.Context, input []*schema.Message, opts ...einomodel.Option) (*schema.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inputs = append(f.inputs, append([]*schema.Message(nil), input...))
	if f.err != nil {
		return nil, f.err
	}
	if f.idx >= len(f.responses) {
		return nil, errors.New("no fake response left")
	}
	msg := f.responses[f.idx]
	f.idx++
	return msg, nil
}

func (f *fakeToolCallingModel) Stream(ctx context.Context, input []*schema.Message, opts ...einomodel.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("stream not implemented in fake model")
}

func (f *fakeToolCallingModel) WithTools(tools []*schema.ToolInfo) (einomodel.ToolCallingChatModel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bound = tools
	return f, nil
}

type fakeInvoker struct {
	infos []*schema.ToolInfo
	calls []contractx.ToolRequest
}

func (f *fakeInvoker) Tools() []*schema.ToolInfo { return f.infos }

func (f *fakeInvoker) Invoke(ctx context.Context, req contractx.ToolRequest) contractx.ToolResult {
	f.calls = append(f.calls, req)
	return contractx.ToolResult{Tool: req.Tool, Result: map[string]any{"count": 1}}
}

func toolCall(id, name, args string) schema.ToolCall {
	return schema.ToolCall{ID: id, Function: schema.FunctionCall{Name: name, Arguments: args}}
}

func newTestGraph(t *testing.T, classifier, specialist *fakeToolCallingModel, opts ...Option) *Graph {
	t.Helper()
	g, err := NewGraph(context.Background(), classifier, specialist, "classify prompt", opts...)
	if err != nil {
		t.Fatalf("NewGraph() error = %v", err)
	}
	return g
}

func TestNewGraphRequiresPrompt(t *testing.T) {
	t.Parallel()

	_, err := NewGraph(context.Background(), &fakeToolCallingModel{}, &fakeToolCallingModel{}, "  ")
	if !errors.Is(err, contractx.ErrPromptMissing) {
		t.Fatalf("expected ErrPromptMissing, got %v", err)
	}
}

func TestClassifySuccess(t *testing.T) {
	t.Parallel()

	classifier := &fakeToolCallingModel{responses: []*schema.Message{
		{Role: schema.Assistant, Content: `{"agent":" financial ","reason":"asks about monthly payments"}`},
	}}
	g := newTestGraph(t, classifier, &fakeToolCallingModel{})

	out, err := g.Classify(context.Background(), contractx.ClassifyRequest{
		UserMessage: "what would I pay per month?",
		Window:      []statex.Entry{{Role: statex.RoleUser, Kind: statex.KindMessage, Text: "show me SUVs"}},
	})
	if err != nil {
		t.Fatalf("Classify() error = %v", err)
	}
	if out.Agent != "financial" {
		t.Fatalf("unexpected agent: %q", out.Agent)
	}
	if out.Reason != "asks about monthly payments" {
		t.Fatalf("unexpected reason: %q", out.Reason)
	}

	sent := classifier.inputs[0]
	if len(sent) != 2 || sent[0].Content != "classify prompt" {
		t.Fatalf("unexpected prompt messages: %#v", sent)
	}
	if !strings.Contains(sent[1].Content, "show me SUVs") || !strings.Contains(sent[1].Content, "per month") {
		t.Fatalf("user payload missing window or message: %s", sent[1].Content)
	}
}

func TestClassifyModelFailure(t *testing.T) {
	t.Parallel()

	g := newTestGraph(t, &fakeToolCallingModel{err: errors.New("timeout")}, &fakeToolCallingModel{})
	_, err := g.Classify(context.Background(), contractx.ClassifyRequest{UserMessage: "hi"})
	if !errors.Is(err, contractx.ErrModelInvoke) {
		t.Fatalf("expected ErrModelInvoke, got %v", err)
	}
}

func TestRespondRunsToolLoop(t *testing.T) {
	t.Parallel()

	specialist := &fakeToolCallingModel{responses: []*schema.Message{
		{Role: schema.Assistant, ToolCalls: []schema.ToolCall{
			toolCall("call-1", "search_inventory", `{"fuel_type":"Electric"}`),
			toolCall("call-2", "estimate_ev_range", `not json`),
		}},
		{Role: schema.Assistant, Content: "The Model 3 covers 272 miles."},
	}}
	g := newTestGraph(t, &fakeToolCallingModel{}, specialist)
	invoker := &fakeInvoker{infos: []*schema.ToolInfo{{Name: "search_inventory"}, {Name: "estimate_ev_range"}}}

	reply, err := g.Respond(context.Background(), contractx.RespondRequest{
		Specialist:   contractx.SpecialistEV,
		SystemPrompt: "ev prompt",
		Context:      "recommended: tesla-model3-2024",
		UserMessage:  "how far can an EV go?",
	}, invoker)
	if err != nil {
		t.Fatalf("Respond() error = %v", err)
	}
	if reply != "The Model 3 covers 272 miles." {
		t.Fatalf("unexpected reply: %q", reply)
	}
	if len(specialist.bound) != 2 {
		t.Fatalf("expected tools bound to model, got %d", len(specialist.bound))
	}
	if len(invoker.calls) != 1 || invoker.calls[0].Args["fuel_type"] != "Electric" {
		t.Fatalf("unexpected invoked calls: %#v", invoker.calls)
	}

	second := specialist.inputs[1]
	if len(second) != 5 {
		t.Fatalf("expected system, user, assistant and two tool messages, got %d", len(second))
	}
	if !strings.Contains(second[0].Content, "recommended: tesla-model3-2024") {
		t.Fatalf("context missing from system message: %s", second[0].Content)
	}
	if second[3].Role != schema.Tool || second[3].ToolCallID != "call-1" {
		t.Fatalf("unexpected tool message: %#v", second[3])
	}
	if !strings.Contains(second[4].Content, "invalid tool args") {
		t.Fatalf("bad arguments should be reported to the model: %s", second[4].Content)
	}
}

func TestRespondStopsAtToolRoundLimit(t *testing.T) {
	t.Parallel()

	loop := &schema.Message{Role: schema.Assistant, ToolCalls: []schema.ToolCall{
		toolCall("c", "search_inventory", `{}`),
	}}
	specialist := &fakeToolCallingModel{responses: []*schema.Message{
		loop, loop, loop,
		{Role: schema.Assistant, Content: "Here is what I found so far."},
	}}
	g := newTestGraph(t, &fakeToolCallingModel{}, specialist, WithMaxToolRounds(2))
	invoker := &fakeInvoker{infos: []*schema.ToolInfo{{Name: "search_inventory"}}}

	reply, err := g.Respond(context.Background(), contractx.RespondRequest{
		Specialist:   contractx.SpecialistTechnical,
		SystemPrompt: "tech prompt",
		UserMessage:  "find me a car",
	}, invoker)
	if err != nil {
		t.Fatalf("Respond() error = %v", err)
	}
	if reply != "Here is what I found so far." {
		t.Fatalf("unexpected reply: %q", reply)
	}
	if len(invoker.calls) != 2 {
		t.Fatalf("expected 2 tool rounds, got %d", len(invoker.calls))
	}
	if len(specialist.inputs) != 4 {
		t.Fatalf("expected a final tool-free model call, got %d calls", len(specialist.inputs))
	}

	last := specialist.inputs[3]
	notice := last[len(last)-1]
	if notice.Role != schema.Tool || notice.ToolCallID != "c" {
		t.Fatalf("pending call should be answered before the final call: %#v", notice)
	}
	if !strings.Contains(notice.Content, "limit reached") {
		t.Fatalf("pending call should carry the limit notice: %s", notice.Content)
	}
}

func TestRespondRoundLimitStillNeedsText(t *testing.T) {
	t.Parallel()

	loop := &schema.Message{Role: schema.Assistant, ToolCalls: []schema.ToolCall{
		toolCall("c", "search_inventory", `{}`),
	}}
	specialist := &fakeToolCallingModel{responses: []*schema.Message{loop, loop, {Role: schema.Assistant}}}
	g := newTestGraph(t, &fakeToolCallingModel{}, specialist, WithMaxToolRounds(1))
	invoker := &fakeInvoker{infos: []*schema.ToolInfo{{Name: "search_inventory"}}}

	_, err := g.Respond(context.Background(), contractx.RespondRequest{
		Specialist:   contractx.SpecialistTechnical,
		SystemPrompt: "tech prompt",
		UserMessage:  "find me a car",
	}, invoker)
	if !errors.Is(err, contractx.ErrSchemaViolation) {
		t.Fatalf("expected ErrSchemaViolation, got %v", err)
	}
	if len(invoker.calls) != 1 {
		t.Fatalf("expected 1 tool round, got %d", len(invoker.calls))
	}
}

func TestClassifyAcceptsFencedJSON(t *testing.T) {
	t.Parallel()

	classifier := &fakeToolCallingModel{responses: []*schema.Message{
		{Role: schema.Assistant, Content: "Sure.\n```json\n{\"agent\":\"ev\",\"reason\":\"charging question\"}\n```"},
	}}
	g := newTestGraph(t, classifier, &fakeToolCallingModel{})

	out, err := g.Classify(context.Background(), contractx.ClassifyRequest{UserMessage: "how long to charge?"})
	if err != nil {
		t.Fatalf("Classify() error = %v", err)
	}
	if out.Agent != "ev" || out.Reason != "charging question" {
		t.Fatalf("unexpected classification: %#v", out)
	}
}

func TestClassifyRejectsProseWithoutJSON(t *testing.T) {
	t.Parallel()

	classifier := &fakeToolCallingModel{responses: []*schema.Message{
		{Role: schema.Assistant, Content: "financial"},
	}}
	g := newTestGraph(t, classifier, &fakeToolCallingModel{})

	if _, err := g.Classify(context.Background(), contractx.ClassifyRequest{UserMessage: "payments?"}); err == nil {
		t.Fatal("expected error for a reply without a json object")
	}
}

func TestRespondEmptyReplyIsSchemaViolation(t *testing.T) {
	t.Parallel()

	specialist := &fakeToolCallingModel{responses: []*schema.Message{{Role: schema.Assistant, Content: "  "}}}
	g := newTestGraph(t, &fakeToolCallingModel{}, specialist)

	_, err := g.Respond(context.Background(), contractx.RespondRequest{
		Specialist:   contractx.SpecialistFinancial,
		SystemPrompt: "fin prompt",
		UserMessage:  "loan?",
	}, &fakeInvoker{})
	if !errors.Is(err, contractx.ErrSchemaViolation) {
		t.Fatalf("expected ErrSchemaViolation, got %v", err)
	}
}

func TestComposeMixesBackends(t *testing.T) {
	t.Parallel()

	classifier := &fakeToolCallingModel{responses: []*schema.Message{{Content: `{"agent":"ev","reason":"range"}`}}}
	specialist := &fakeToolCallingModel{responses: []*schema.Message{{Content: "hello"}}}
	g := newTestGraph(t, classifier, specialist)

	o := Compose(g, g)
	out, err := o.Classify(context.Background(), contractx.ClassifyRequest{UserMessage: "range?"})
	if err != nil || out.Agent != "ev" {
		t.Fatalf("unexpected classify result: %+v, %v", out, err)
	}
	reply, err := o.Respond(context.Background(), contractx.RespondRequest{SystemPrompt: "p", UserMessage: "hi"}, &fakeInvoker{})
	if err != nil || reply != "hello" {
		t.Fatalf("unexpected respond result: %q, %v", reply, err)
	}
}
