// Package dispatcher decides which specialist handles a turn. It never fails: every
// problem with the oracle resolves to the technical specialist with a reason.
package dispatcher

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	contractx "github.com/tanpawarit/Chative-Vehicle-Advisor/agent/contract"
	statex "github.com/tanpawarit/Chative-Vehicle-Advisor/agent/state"
)

const (
	DefaultTimeout = 30 * time.Second
	DefaultWindow  = 10
)

var _ contractx.Dispatcher = (*Dispatcher)(nil)

type Option func(*Dispatcher)

func WithTimeout(d time.Duration) Option {
	return func(disp *Dispatcher) {
		if d > 0 {
			disp.timeout = d
		}
	}
}

// WithWindow sets how many trailing session entries are sent along with the utterance.
func WithWindow(n int) Option {
	return func(disp *Dispatcher) {
		if n >= 0 {
			disp.window = n
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(disp *Dispatcher) {
		if now != nil {
			disp.now = now
		}
	}
}

type Dispatcher struct {
	classifier contractx.Classifier
	timeout    time.Duration
	window     int
	now        func() time.Time
}

func New(classifier contractx.Classifier, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		classifier: classifier,
		timeout:    DefaultTimeout,
		window:     DefaultWindow,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Dispatch classifies the latest user utterance and records the decision as a routing
// entry on the session before returning it.
func (d *Dispatcher) Dispatch(ctx context.Context, sess *statex.Session) (contractx.Decision, *statex.Session) {
	decision := d.decide(ctx, sess)

	logger := log.With().Str("specialist", decision.Specialist.String()).Str("reason", decision.Reason).Logger()
	if sess != nil {
		logger = logger.With().Str("session_id", sess.ID).Logger()
	}
	if decision.Defaulted {
		logger.Warn().Str("label", decision.Label).Msg("dispatch fell back to default specialist")
	} else {
		logger.Debug().Msg("dispatch decided")
	}

	if sess != nil {
		sess.AppendRouting(decision.Specialist.String(), routingText(decision), d.now())
	}
	return decision, sess
}

func (d *Dispatcher) decide(ctx context.Context, sess *statex.Session) contractx.Decision {
	utterance, ok := sess.LatestUserUtterance()
	if !ok || strings.TrimSpace(utterance.Text) == "" {
		return fallback(contractx.ReasonNoQuery, "")
	}
	if d.classifier == nil {
		return fallback(contractx.ReasonOracleFailed, "")
	}

	callCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	out, err := d.classifier.Classify(callCtx, contractx.ClassifyRequest{
		UserMessage: utterance.Text,
		Window:      sess.Window(d.window),
	})
	if err != nil {
		log.Warn().Err(err).Msg("classification failed")
		return fallback(contractx.ReasonOracleFailed, "")
	}

	id, ok := contractx.ParseSpecialist(out.Agent)
	if !ok {
		return fallback(contractx.ReasonUnrecognized, out.Agent)
	}

	reason := strings.TrimSpace(out.Reason)
	if reason == "" {
		reason = "classified as " + id.String()
	}
	return contractx.Decision{Specialist: id, Reason: reason, Label: out.Agent}
}

func fallback(reason, label string) contractx.Decision {
	return contractx.Decision{
		Specialist: contractx.SpecialistTechnical,
		Reason:     reason,
		Label:      label,
		Defaulted:  true,
	}
}

func routingText(d contractx.Decision) string {
	return "routed to " + d.Specialist.String() + ": " + d.Reason
}
