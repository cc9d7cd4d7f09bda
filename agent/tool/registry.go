package tool

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/cloudwego/eino/schema"
	"github.com/google/uuid"
	calcx "github.com/tanpawarit/Chative-Vehicle-Advisor/agent/calc"
	contractx "github.com/tanpawarit/Chative-Vehicle-Advisor/agent/contract"
	statex "github.com/tanpawarit/Chative-Vehicle-Advisor/agent/state"
)

// Env carries the read-only collaborators calculators run against.
type Env struct {
	Catalog calcx.Reference
	Stock   calcx.StockSource
	Now     func() time.Time
	NewID   func() string
}

type runFunc func(ctx context.Context, env Env, args map[string]any) (any, error)

// Tool pairs a schema the oracle sees with the typed function behind it.
type Tool struct {
	Info   *schema.ToolInfo
	run    runFunc
	effect func(sess *statex.Session, result any)
}

// Registry is the fixed name -> tool table, built once at startup.
type Registry struct {
	env   Env
	tools map[string]Tool
}

func NewRegistry(env Env) (*Registry, error) {
	if env.Catalog == nil {
		return nil, fmt.Errorf("%w: catalog is required", contractx.ErrValidation)
	}
	if env.Stock == nil {
		env.Stock = calcx.NewRandomStock(1, 0.7)
	}
	if env.Now == nil {
		env.Now = time.Now
	}
	if env.NewID == nil {
		env.NewID = uuid.NewString
	}

	r := &Registry{env: env, tools: make(map[string]Tool, 16)}
	for _, t := range builtinTools(env.Catalog.Tiers()) {
		r.tools[t.Info.Name] = t
	}
	return r, nil
}

func (r *Registry) Has(name string) bool {
	_, ok := r.tools[name]
	return ok
}

func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Infos returns the schemas for the given names, skipping unknown ones.
func (r *Registry) Infos(names ...string) []*schema.ToolInfo {
	out := make([]*schema.ToolInfo, 0, len(names))
	for _, name := range names {
		if t, ok := r.tools[name]; ok {
			out = append(out, t.Info)
		}
	}
	return out
}

// Execute runs one tool. Failures are reported in ToolResult.Error and never abort
// the caller's turn. A non-nil session receives the tool's effect on success.
func (r *Registry) Execute(ctx context.Context, sess *statex.Session, req contractx.ToolRequest) contractx.ToolResult {
	name := strings.TrimSpace(req.Tool)
	t, ok := r.tools[name]
	if !ok {
		return contractx.ToolResult{
			Tool:  name,
			Error: fmt.Sprintf("%s: %s", contractx.ErrUnknownTool, name),
		}
	}

	args := req.Args
	if args == nil {
		args = map[string]any{}
	}
	result, err := t.run(ctx, r.env, args)
	if err != nil {
		return contractx.ToolResult{Tool: name, Error: err.Error()}
	}
	if sess != nil && t.effect != nil {
		t.effect(sess, result)
	}
	return contractx.ToolResult{Tool: name, Result: result}
}

func define[P any](info *schema.ToolInfo, run func(ctx context.Context, env Env, p P) (any, error)) Tool {
	return Tool{
		Info: info,
		run: func(ctx context.Context, env Env, args map[string]any) (any, error) {
			var p P
			if err := decodeArgs(args, &p); err != nil {
				return nil, fmt.Errorf("%w: invalid arguments for %s: %v", contractx.ErrValidation, info.Name, err)
			}
			return run(ctx, env, p)
		},
	}
}

func decodeArgs(args map[string]any, into any) error {
	raw, err := json.Marshal(args)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, into)
}

func notFound(kind, id string) error {
	return fmt.Errorf("%w: no data for %s %q", contractx.ErrNotFound, kind, id)
}

// IsNotFound reports whether a tool error string came from an absent record.
func IsNotFound(result contractx.ToolResult) bool {
	return strings.HasPrefix(result.Error, contractx.ErrNotFound.Error())
}

var errNoVehicles = errors.New("vehicle_ids must not be empty")
