package specialist

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino/compose"
	contractx "github.com/tanpawarit/Chative-Vehicle-Advisor/agent/contract"
	statex "github.com/tanpawarit/Chative-Vehicle-Advisor/agent/state"
	toolx "github.com/tanpawarit/Chative-Vehicle-Advisor/agent/tool"
)

type specialistImpl struct {
	profile       Profile
	responder     contractx.Responder
	tools         *toolx.Registry
	allowedTools  map[string]struct{}
	now           func() time.Time
	runtimeRunner compose.Runnable[contractx.SpecialistRequest, contractx.SpecialistResponse]
}

var _ contractx.Specialist = (*specialistImpl)(nil)

type specialistGraphState struct {
	Session   *statex.Session
	Utterance string
	Context   string
	Reply     string
}

func newSpecialist(
	ctx context.Context,
	profile Profile,
	responder contractx.Responder,
	tools *toolx.Registry,
	now func() time.Time,
) (*specialistImpl, error) {
	allowed := make(map[string]struct{}, len(profile.Tools))
	for _, name := range profile.Tools {
		allowed[name] = struct{}{}
	}

	impl := &specialistImpl{
		profile:      profile,
		responder:    responder,
		tools:        tools,
		allowedTools: allowed,
		now:          now,
	}

	runner, err := compileSpecialistRuntimeGraph(ctx, profile.ID, impl.prepare, impl.respond, impl.record)
	if err != nil {
		return nil, fmt.Errorf("%w: compile specialist runtime graph: %v", contractx.ErrModelInvoke, err)
	}
	impl.runtimeRunner = runner
	return impl, nil
}

// Run answers the latest user utterance. The returned session carries the tool-call
// audit entries and the reply.
func (s *specialistImpl) Run(ctx context.Context, req contractx.SpecialistRequest) (contractx.SpecialistResponse, error) {
	return s.runtimeRunner.Invoke(ctx, req)
}

func (s *specialistImpl) prepare(_ context.Context, req contractx.SpecialistRequest) (*specialistGraphState, error) {
	if req.Session == nil {
		return nil, fmt.Errorf("%w: session is required", contractx.ErrValidation)
	}
	utterance, ok := req.Session.LatestUserUtterance()
	if !ok || strings.TrimSpace(utterance.Text) == "" {
		return nil, fmt.Errorf("%w: no user utterance to answer", contractx.ErrValidation)
	}
	return &specialistGraphState{
		Session:   req.Session,
		Utterance: utterance.Text,
		Context:   AssembleContext(req.Session, s.profile.Window),
	}, nil
}

func (s *specialistImpl) respond(ctx context.Context, in *specialistGraphState) (*specialistGraphState, error) {
	invoker := &turnInvoker{
		specialist: s.profile.ID,
		allowed:    s.allowedTools,
		infos:      s.tools.Infos(s.profile.Tools...),
		tools:      s.tools,
		sess:       in.Session,
		now:        s.now,
	}

	reply, err := s.responder.Respond(ctx, contractx.RespondRequest{
		Specialist:   s.profile.ID,
		SystemPrompt: s.profile.Prompt,
		Context:      in.Context,
		UserMessage:  in.Utterance,
	}, invoker)
	if err != nil {
		return nil, fmt.Errorf("specialist=%s: %w", s.profile.ID, err)
	}
	reply = strings.TrimSpace(reply)
	if reply == "" {
		return nil, fmt.Errorf("%w: specialist=%s reply is empty", contractx.ErrSchemaViolation, s.profile.ID)
	}
	in.Reply = reply
	return in, nil
}

func (s *specialistImpl) record(_ context.Context, in *specialistGraphState) (contractx.SpecialistResponse, error) {
	in.Session.AppendSpecialist(s.profile.ID.String(), in.Reply, s.now())
	return contractx.SpecialistResponse{Reply: in.Reply, Session: in.Session}, nil
}
