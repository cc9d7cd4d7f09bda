package specialist

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	catalogx "github.com/tanpawarit/Chative-Vehicle-Advisor/agent/catalog"
	calcx "github.com/tanpawarit/Chative-Vehicle-Advisor/agent/calc"
	contractx "github.com/tanpawarit/Chative-Vehicle-Advisor/agent/contract"
	promptx "github.com/tanpawarit/Chative-Vehicle-Advisor/agent/prompt"
	statex "github.com/tanpawarit/Chative-Vehicle-Advisor/agent/state"
	toolx "github.com/tanpawarit/Chative-Vehicle-Advisor/agent/tool"
)

var testNow = time.Date(2025, 4, 1, 10, 0, 0, 0, time.UTC)

type toolStep struct {
	name string
	args map[string]any
}

type fakeResponder struct {
	steps   []toolStep
	reply   string
	err     error
	reqs    []contractx.RespondRequest
	results []contractx.ToolResult
	offered []string
}

func (f *fakeResponder) Respond(ctx context.Context, req contractx.RespondRequest, tools contractx.ToolInvoker) (string, error) {
	f.reqs = append(f.reqs, req)
	f.offered = f.offered[:0]
	for _, info := range tools.Tools() {
		f.offered = append(f.offered, info.Name)
	}
	for _, step := range f.steps {
		f.results = append(f.results, tools.Invoke(ctx, contractx.ToolRequest{Tool: step.name, Args: step.args}))
	}
	return f.reply, f.err
}

func newTestRegistry(t *testing.T, responder contractx.Responder, opts ...Option) *Registry {
	t.Helper()
	tools, err := toolx.NewRegistry(toolx.Env{
		Catalog: catalogx.MustDefault(),
		Stock:   calcx.FixedStock{},
		Now:     func() time.Time { return testNow },
	})
	require.NoError(t, err)

	opts = append([]Option{WithClock(func() time.Time { return testNow })}, opts...)
	reg, err := NewRegistry(context.Background(), promptx.LoadPromptSet(), responder, tools, opts...)
	require.NoError(t, err)
	return reg
}

func sessionWith(texts ...string) *statex.Session {
	sess := statex.NewSession("s1", testNow)
	for _, text := range texts {
		sess.AppendUser(text, testNow)
	}
	return sess
}

func TestRegistryTableIsTotal(t *testing.T) {
	t.Parallel()

	reg := newTestRegistry(t, &fakeResponder{reply: "ok"})
	for _, id := range contractx.Specialists() {
		p, ok := reg.Profile(id)
		require.True(t, ok, id.String())
		assert.NotEmpty(t, p.Prompt, id.String())
		assert.Equal(t, toolx.SetFor(id), p.Tools, id.String())
		assert.NotNil(t, reg.Specialist(id), id.String())
	}

	profiler, _ := reg.Profile(contractx.SpecialistProfiler)
	assert.Equal(t, 4, profiler.Window)
	technical, _ := reg.Profile(contractx.SpecialistTechnical)
	assert.Equal(t, 30, technical.Window)
}

func TestWithWindowSizeOverrides(t *testing.T) {
	t.Parallel()

	reg := newTestRegistry(t, &fakeResponder{reply: "ok"}, WithWindowSize(contractx.SpecialistEV, 6))
	ev, _ := reg.Profile(contractx.SpecialistEV)
	assert.Equal(t, 6, ev.Window)
}

func TestNewRegistryRequiresPrompts(t *testing.T) {
	t.Parallel()

	tools, err := toolx.NewRegistry(toolx.Env{Catalog: catalogx.MustDefault()})
	require.NoError(t, err)
	_, err = NewRegistry(context.Background(), promptx.PromptSet{}, &fakeResponder{}, tools)
	assert.True(t, errors.Is(err, contractx.ErrPromptMissing), "got %v", err)
}

func TestRunRecordsToolsAndReply(t *testing.T) {
	t.Parallel()

	responder := &fakeResponder{
		steps: []toolStep{
			{name: toolx.ToolSearchInventory, args: map[string]any{"category": "SUV", "max_price": 35000}},
			{name: toolx.ToolVehicleDetails, args: map[string]any{"vehicle_id": "no-such-car"}},
		},
		reply: "The CR-V and Wrangler fit your budget.",
	}
	reg := newTestRegistry(t, responder)

	resp, err := reg.Specialist(contractx.SpecialistTechnical).Run(context.Background(), contractx.SpecialistRequest{
		Session:  sessionWith("SUVs under 35k?"),
		Decision: contractx.Decision{Specialist: contractx.SpecialistTechnical, Reason: "specs"},
	})
	require.NoError(t, err)
	assert.Equal(t, "The CR-V and Wrangler fit your budget.", resp.Reply)
	assert.Equal(t, toolx.SetFor(contractx.SpecialistTechnical), responder.offered)

	entries := resp.Session.FullHistory()
	require.Len(t, entries, 4)
	assert.Equal(t, statex.KindToolCall, entries[1].Kind)
	assert.False(t, entries[1].Tool.Failed)
	assert.Contains(t, entries[1].Tool.ParamsSummary, `"category":"SUV"`)
	assert.Equal(t, statex.KindToolCall, entries[2].Kind)
	assert.True(t, entries[2].Tool.Failed)
	assert.True(t, strings.HasPrefix(entries[2].Tool.ResultSummary, "error: "))
	assert.Equal(t, statex.RoleSpecialist, entries[3].Role)
	assert.Equal(t, "technical", entries[3].Specialist)

	assert.NotEmpty(t, resp.Session.Recommended)
	assert.True(t, toolx.IsNotFound(responder.results[1]))
}

func TestRunRejectsToolsOutsideSet(t *testing.T) {
	t.Parallel()

	responder := &fakeResponder{
		steps: []toolStep{{name: toolx.ToolScheduleTestDrive, args: map[string]any{"dealer_id": "dealer-001"}}},
		reply: "I can only help with payments here.",
	}
	reg := newTestRegistry(t, responder)

	resp, err := reg.Specialist(contractx.SpecialistFinancial).Run(context.Background(), contractx.SpecialistRequest{
		Session: sessionWith("book a test drive"),
	})
	require.NoError(t, err)
	require.Len(t, responder.results, 1)
	assert.Contains(t, responder.results[0].Error, contractx.ErrUnknownTool.Error())
	assert.Nil(t, responder.results[0].Result)

	entries := resp.Session.FullHistory()
	require.Len(t, entries, 3)
	assert.True(t, entries[1].Tool.Failed)
}

func TestRunAnalyzeNeedsReplacesProfile(t *testing.T) {
	t.Parallel()

	responder := &fakeResponder{
		steps: []toolStep{{name: toolx.ToolAnalyzeNeeds, args: map[string]any{
			"family_size": 5, "primary_usage": "school runs", "budget_max": 45000,
		}}},
		reply: "A minivan or three-row SUV suits you.",
	}
	reg := newTestRegistry(t, responder)
	sess := sessionWith("we have three kids")
	sess.SetProfile(calcx.CustomerProfile{FamilySize: 2})

	resp, err := reg.Specialist(contractx.SpecialistProfiler).Run(context.Background(), contractx.SpecialistRequest{Session: sess})
	require.NoError(t, err)
	require.NotNil(t, resp.Session.Profile)
	assert.Equal(t, 5, resp.Session.Profile.FamilySize)
	assert.Equal(t, []string{"Minivan", "SUV"}, resp.Session.Profile.PreferredCategories)
}

func TestRunProfilerSeesShortWindow(t *testing.T) {
	t.Parallel()

	responder := &fakeResponder{reply: "Tell me about your commute."}
	reg := newTestRegistry(t, responder)

	sess := sessionWith("one", "two", "three", "four", "five", "six")
	_, err := reg.Specialist(contractx.SpecialistProfiler).Run(context.Background(), contractx.SpecialistRequest{Session: sess})
	require.NoError(t, err)

	ctxText := responder.reqs[0].Context
	assert.NotContains(t, ctxText, "user: two")
	assert.Contains(t, ctxText, "user: three")
	assert.Contains(t, ctxText, "user: six")
	assert.Equal(t, "six", responder.reqs[0].UserMessage)
}

func TestRunResponderErrorPropagates(t *testing.T) {
	t.Parallel()

	responder := &fakeResponder{err: contractx.ErrModelInvoke}
	reg := newTestRegistry(t, responder)

	_, err := reg.Specialist(contractx.SpecialistEV).Run(context.Background(), contractx.SpecialistRequest{Session: sessionWith("range?")})
	assert.True(t, errors.Is(err, contractx.ErrModelInvoke), "got %v", err)
}

func TestRunRequiresUtterance(t *testing.T) {
	t.Parallel()

	reg := newTestRegistry(t, &fakeResponder{reply: "ok"})
	_, err := reg.Specialist(contractx.SpecialistEV).Run(context.Background(), contractx.SpecialistRequest{Session: statex.NewSession("s1", testNow)})
	assert.True(t, errors.Is(err, contractx.ErrValidation), "got %v", err)

	_, err = reg.Specialist(contractx.SpecialistEV).Run(context.Background(), contractx.SpecialistRequest{})
	assert.True(t, errors.Is(err, contractx.ErrValidation), "got %v", err)
}

func TestRunEmptyReplyIsSchemaViolation(t *testing.T) {
	t.Parallel()

	reg := newTestRegistry(t, &fakeResponder{reply: "  "})
	_, err := reg.Specialist(contractx.SpecialistNegotiation).Run(context.Background(), contractx.SpecialistRequest{Session: sessionWith("best price?")})
	assert.True(t, errors.Is(err, contractx.ErrSchemaViolation), "got %v", err)
}
