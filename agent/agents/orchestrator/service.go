package orchestrator

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/cloudwego/eino/compose"
	"github.com/rs/zerolog/log"
	contractx "github.com/tanpawarit/Chative-Vehicle-Advisor/agent/contract"
	nodex "github.com/tanpawarit/Chative-Vehicle-Advisor/agent/nodes/orchestrator"
	statex "github.com/tanpawarit/Chative-Vehicle-Advisor/agent/state"
)

var (
	ErrInvalidMessage = nodex.ErrInvalidMessage
	ErrInvalidSession = nodex.ErrInvalidSession
)

// Turn is the outcome of one user message.
type Turn struct {
	Reply    string
	Decision contractx.Decision
}

type Orchestrator struct {
	store      statex.Store
	dispatcher contractx.Dispatcher
	models     contractx.Registry

	graphRunner compose.Runnable[nodex.GraphInput, nodex.GraphOutput]

	// turns are strictly sequential per session; distinct sessions run concurrently.
	mu    sync.Mutex
	locks map[string]*sessionLock

	now func() time.Time
}

type sessionLock struct {
	mu   sync.Mutex
	refs int
}

type Option func(*Orchestrator)

func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) {
		if now != nil {
			o.now = now
		}
	}
}

func New(
	store statex.Store,
	dispatcher contractx.Dispatcher,
	models contractx.Registry,
	opts ...Option,
) (*Orchestrator, error) {
	if store == nil {
		return nil, errors.New("state store is required")
	}
	if dispatcher == nil {
		return nil, errors.New("dispatcher is required")
	}
	if models == nil {
		return nil, errors.New("specialist registry is required")
	}

	o := &Orchestrator{
		store:      store,
		dispatcher: dispatcher,
		models:     models,
		locks:      make(map[string]*sessionLock),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}

	graphRunner, err := o.compileHandleMessageGraph(context.Background())
	if err != nil {
		return nil, err
	}
	o.graphRunner = graphRunner

	return o, nil
}

func (o *Orchestrator) HandleMessage(ctx context.Context, sessionID string, text string) (string, error) {
	turn, err := o.HandleTurn(ctx, sessionID, text)
	if err != nil {
		return "", err
	}
	return turn.Reply, nil
}

// HandleTurn runs one turn and also reports which specialist answered and why.
func (o *Orchestrator) HandleTurn(ctx context.Context, sessionID string, text string) (Turn, error) {
	key := strings.TrimSpace(sessionID)
	if key != "" {
		unlock := o.lock(key)
		defer unlock()
	}

	out, err := o.graphRunner.Invoke(ctx, nodex.GraphInput{
		SessionID: sessionID,
		Text:      text,
	})
	if err != nil {
		log.Error().Err(err).Str("session_id", key).Msg("turn failed")
		return Turn{}, err
	}

	log.Info().
		Str("session_id", key).
		Str("specialist", out.Decision.Specialist.String()).
		Str("reason", out.Decision.Reason).
		Bool("defaulted", out.Decision.Defaulted).
		Msg("turn complete")
	return Turn{Reply: out.Reply, Decision: out.Decision}, nil
}

// EndConversation discards the session. It waits for an in-flight turn on the same session.
func (o *Orchestrator) EndConversation(ctx context.Context, sessionID string) error {
	key := strings.TrimSpace(sessionID)
	if key == "" {
		return ErrInvalidSession
	}
	unlock := o.lock(key)
	defer unlock()

	if err := o.store.Delete(ctx, key); err != nil && !errors.Is(err, statex.ErrStateNotFound) {
		return err
	}
	log.Info().Str("session_id", key).Msg("conversation ended")
	return nil
}

// History returns a copy of the session log, oldest first.
func (o *Orchestrator) History(ctx context.Context, sessionID string) ([]statex.Entry, error) {
	sess, err := o.store.Load(ctx, strings.TrimSpace(sessionID))
	if err != nil {
		return nil, err
	}
	return sess.FullHistory(), nil
}

func (o *Orchestrator) lock(sessionID string) func() {
	o.mu.Lock()
	l, ok := o.locks[sessionID]
	if !ok {
		l = &sessionLock{}
		o.locks[sessionID] = l
	}
	l.refs++
	o.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		o.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(o.locks, sessionID)
		}
		o.mu.Unlock()
	}
}
