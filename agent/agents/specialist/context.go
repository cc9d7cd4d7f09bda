package specialist

import (
	"encoding/json"
	"fmt"
	"strings"

	statex "github.com/tanpawarit/Chative-Vehicle-Advisor/agent/state"
)

// AssembleContext renders what a specialist is told about the conversation: the
// customer profile, the recent window, recommended vehicles and derived hints.
func AssembleContext(sess *statex.Session, window int) string {
	if sess == nil {
		return ""
	}

	var b strings.Builder
	if sess.Profile != nil {
		if raw, err := json.Marshal(sess.Profile); err == nil {
			b.WriteString("Customer profile: ")
			b.Write(raw)
			b.WriteString("\n")
		}
	}

	if len(sess.Recommended) > 0 {
		b.WriteString("Recommended vehicles: ")
		b.WriteString(strings.Join(sess.Recommended, ", "))
		b.WriteString("\n")
	}

	if mentions := sess.RecentVehicleMentions(); len(mentions) > 0 {
		b.WriteString("Recent inventory searches:\n")
		for _, m := range mentions {
			fmt.Fprintf(&b, "- %s(%s) -> %s\n", m.ToolName, m.ParamsSummary, m.ResultSummary)
		}
	}

	if sess.RecentFinancingDiscussion() {
		b.WriteString("Note: financing was discussed recently.\n")
	}

	entries := sess.Window(window)
	if len(entries) > 0 {
		b.WriteString("Recent conversation:\n")
		for _, e := range entries {
			b.WriteString(formatEntry(e))
			b.WriteString("\n")
		}
	}

	return strings.TrimRight(b.String(), "\n")
}

func formatEntry(e statex.Entry) string {
	switch e.Kind {
	case statex.KindToolCall:
		return fmt.Sprintf("[tool %s] %s", e.Specialist, e.Text)
	case statex.KindRouting:
		return "[routing] " + e.Text
	}
	if e.Role == statex.RoleSpecialist && e.Specialist != "" {
		return fmt.Sprintf("%s (%s): %s", e.Role, e.Specialist, e.Text)
	}
	return fmt.Sprintf("%s: %s", e.Role, e.Text)
}
