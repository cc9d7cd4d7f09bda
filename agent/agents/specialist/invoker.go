package specialist

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/cloudwego/eino/schema"
	"github.com/rs/zerolog/log"
	contractx "github.com/tanpawarit/Chative-Vehicle-Advisor/agent/contract"
	statex "github.com/tanpawarit/Chative-Vehicle-Advisor/agent/state"
	toolx "github.com/tanpawarit/Chative-Vehicle-Advisor/agent/tool"
)

// summaryLimit caps params and result summaries stored in tool-call audit entries.
const summaryLimit = 240

// turnInvoker executes tools for one specialist turn and records every call on the session.
type turnInvoker struct {
	specialist contractx.SpecialistID
	allowed    map[string]struct{}
	infos      []*schema.ToolInfo
	tools      *toolx.Registry
	sess       *statex.Session
	now        func() time.Time
}

var _ contractx.ToolInvoker = (*turnInvoker)(nil)

func (t *turnInvoker) Tools() []*schema.ToolInfo {
	return t.infos
}

func (t *turnInvoker) Invoke(ctx context.Context, req contractx.ToolRequest) contractx.ToolResult {
	var out contractx.ToolResult
	if _, ok := t.allowed[req.Tool]; !ok {
		out = contractx.ToolResult{
			Tool:  req.Tool,
			Error: fmt.Sprintf("%s: %s is not available to the %s specialist", contractx.ErrUnknownTool, req.Tool, t.specialist),
		}
	} else {
		out = t.tools.Execute(ctx, t.sess, req)
	}

	entry := statex.ToolCallLog{
		Specialist:    t.specialist.String(),
		ToolName:      req.Tool,
		ParamsSummary: summarize(req.Args),
		Failed:        out.Error != "",
	}
	if entry.Failed {
		entry.ResultSummary = "error: " + truncate(out.Error)
		log.Warn().
			Str("session_id", t.sess.ID).
			Str("specialist", t.specialist.String()).
			Str("tool", req.Tool).
			Str("reason", out.Error).
			Msg("tool call failed")
	} else {
		entry.ResultSummary = summarize(out.Result)
	}
	t.sess.AppendToolCall(entry, t.now())
	return out
}

func summarize(v any) string {
	if v == nil {
		return ""
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return truncate(fmt.Sprint(v))
	}
	return truncate(string(raw))
}

func truncate(s string) string {
	if utf8.RuneCountInString(s) <= summaryLimit {
		return s
	}
	runes := []rune(s)
	return string(runes[:summaryLimit]) + "..."
}
