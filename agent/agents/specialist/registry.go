package specialist

import (
	"context"
	"fmt"
	"time"

	contractx "github.com/tanpawarit/Chative-Vehicle-Advisor/agent/contract"
	promptx "github.com/tanpawarit/Chative-Vehicle-Advisor/agent/prompt"
	toolx "github.com/tanpawarit/Chative-Vehicle-Advisor/agent/tool"
)

// Profile is one row of the specialist table.
type Profile struct {
	ID     contractx.SpecialistID
	Prompt string
	Tools  []string
	Window int
}

// defaultWindows is how many trailing session entries each specialist sees.
var defaultWindows = map[contractx.SpecialistID]int{
	contractx.SpecialistTechnical:    30,
	contractx.SpecialistFinancial:    30,
	contractx.SpecialistProfiler:     4,
	contractx.SpecialistAvailability: 30,
	contractx.SpecialistNegotiation:  30,
	contractx.SpecialistEV:           30,
}

type Option func(*registryConfig)

type registryConfig struct {
	windows map[contractx.SpecialistID]int
	now     func() time.Time
}

func WithWindowSize(id contractx.SpecialistID, n int) Option {
	return func(c *registryConfig) {
		if id.Valid() && n > 0 {
			c.windows[id] = n
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(c *registryConfig) {
		if now != nil {
			c.now = now
		}
	}
}

// Registry is the fixed table of specialists, built once at startup.
type Registry struct {
	profiles    map[contractx.SpecialistID]Profile
	specialists map[contractx.SpecialistID]*specialistImpl
}

var _ contractx.Registry = (*Registry)(nil)

// Specialist returns the handler for id; unknown ids get the technical specialist.
func (r *Registry) Specialist(id contractx.SpecialistID) contractx.Specialist {
	if s, ok := r.specialists[id]; ok {
		return s
	}
	return r.specialists[contractx.SpecialistTechnical]
}

// Profile exposes the table row for id.
func (r *Registry) Profile(id contractx.SpecialistID) (Profile, bool) {
	p, ok := r.profiles[id]
	if ok {
		p.Tools = append([]string(nil), p.Tools...)
	}
	return p, ok
}

func NewRegistry(
	ctx context.Context,
	prompts promptx.PromptSet,
	responder contractx.Responder,
	tools *toolx.Registry,
	opts ...Option,
) (*Registry, error) {
	if responder == nil {
		return nil, fmt.Errorf("%w: responder is required", contractx.ErrValidation)
	}
	if tools == nil {
		return nil, fmt.Errorf("%w: tool registry is required", contractx.ErrValidation)
	}

	cfg := &registryConfig{
		windows: make(map[contractx.SpecialistID]int, len(defaultWindows)),
		now:     time.Now,
	}
	for id, n := range defaultWindows {
		cfg.windows[id] = n
	}
	for _, opt := range opts {
		opt(cfg)
	}

	r := &Registry{
		profiles:    make(map[contractx.SpecialistID]Profile),
		specialists: make(map[contractx.SpecialistID]*specialistImpl),
	}
	for _, id := range contractx.Specialists() {
		text, err := prompts.Specialist(id)
		if err != nil {
			return nil, err
		}
		names := toolx.SetFor(id)
		for _, name := range names {
			if !tools.Has(name) {
				return nil, fmt.Errorf("%w: specialist=%s references %s", contractx.ErrUnknownTool, id, name)
			}
		}
		profile := Profile{ID: id, Prompt: text, Tools: names, Window: cfg.windows[id]}

		s, err := newSpecialist(ctx, profile, responder, tools, cfg.now)
		if err != nil {
			return nil, err
		}
		r.profiles[id] = profile
		r.specialists[id] = s
	}
	return r, nil
}
