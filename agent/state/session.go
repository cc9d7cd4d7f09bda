package state

import (
	"regexp"
	"time"

	calcx "github.com/tanpawarit/Chative-Vehicle-Advisor/agent/calc"
)

// MaxEntries caps the conversation log; the oldest entry is evicted first.
const MaxEntries = 30

// financingWindow is how many trailing entries RecentFinancingDiscussion scans.
const financingWindow = 5

// SearchToolName tags tool entries that count as vehicle mentions.
const SearchToolName = "search_inventory"

var financingPattern = regexp.MustCompile(`(?i)lease|finance|loan|payment`)

type Role string

const (
	RoleUser       Role = "user"
	RoleSpecialist Role = "specialist"
	RoleSystem     Role = "system"
)

type EntryKind string

const (
	KindMessage  EntryKind = "message"
	KindToolCall EntryKind = "tool_call"
	KindRouting  EntryKind = "routing"
)

// ToolCallLog is the audit record of one calculator invocation.
type ToolCallLog struct {
	Specialist    string `json:"specialist"`
	ToolName      string `json:"tool_name"`
	ParamsSummary string `json:"params_summary"`
	ResultSummary string `json:"result_summary"`
	Failed        bool   `json:"failed,omitempty"`
}

type Entry struct {
	Seq        int64        `json:"seq"`
	Role       Role         `json:"role"`
	Specialist string       `json:"specialist,omitempty"`
	Kind       EntryKind    `json:"kind"`
	Text       string       `json:"text"`
	At         time.Time    `json:"at"`
	Tool       *ToolCallLog `json:"tool,omitempty"`
}

func (e Entry) clone() Entry {
	if e.Tool != nil {
		t := *e.Tool
		e.Tool = &t
	}
	return e
}

// Session is the bounded log of one conversation plus what specialists derived from it.
// A Session is owned by exactly one in-flight turn; it is passed into each step and
// handed back, never shared between conversations.
type Session struct {
	ID          string                 `json:"id"`
	Entries     []Entry                `json:"entries"`
	Profile     *calcx.CustomerProfile `json:"profile,omitempty"`
	Recommended []string               `json:"recommended,omitempty"`
	NextSeq     int64                  `json:"next_seq"`
	CreatedAt   time.Time              `json:"created_at"`
	UpdatedAt   time.Time              `json:"updated_at"`
}

func NewSession(id string, now time.Time) *Session {
	return &Session{
		ID:        id,
		Entries:   make([]Entry, 0, MaxEntries),
		NextSeq:   1,
		CreatedAt: now.UTC(),
		UpdatedAt: now.UTC(),
	}
}

func (s *Session) Touch(now time.Time) {
	s.UpdatedAt = now.UTC()
}

// Append stamps the entry with the next sequence number and evicts from the front
// once the log exceeds MaxEntries.
func (s *Session) Append(e Entry) Entry {
	if s.NextSeq <= 0 {
		s.NextSeq = 1
	}
	e.Seq = s.NextSeq
	s.NextSeq++
	if e.At.IsZero() {
		e.At = time.Now().UTC()
	}
	if e.Kind == "" {
		e.Kind = KindMessage
	}

	s.Entries = append(s.Entries, e.clone())
	if over := len(s.Entries) - MaxEntries; over > 0 {
		s.Entries = append(s.Entries[:0:0], s.Entries[over:]...)
	}
	s.Touch(e.At)
	return e
}

func (s *Session) AppendUser(text string, now time.Time) Entry {
	return s.Append(Entry{Role: RoleUser, Kind: KindMessage, Text: text, At: now})
}

func (s *Session) AppendSpecialist(specialist, text string, now time.Time) Entry {
	return s.Append(Entry{Role: RoleSpecialist, Specialist: specialist, Kind: KindMessage, Text: text, At: now})
}

func (s *Session) AppendRouting(specialist, text string, now time.Time) Entry {
	return s.Append(Entry{Role: RoleSystem, Specialist: specialist, Kind: KindRouting, Text: text, At: now})
}

func (s *Session) AppendToolCall(log ToolCallLog, now time.Time) Entry {
	text := log.ToolName + "(" + log.ParamsSummary + ") -> " + log.ResultSummary
	return s.Append(Entry{Role: RoleSpecialist, Specialist: log.Specialist, Kind: KindToolCall, Text: text, At: now, Tool: &log})
}

// Window returns the last n entries, clipped to what exists.
func (s *Session) Window(n int) []Entry {
	if s == nil || n <= 0 {
		return nil
	}
	if n > len(s.Entries) {
		n = len(s.Entries)
	}
	return cloneEntries(s.Entries[len(s.Entries)-n:])
}

func (s *Session) FullHistory() []Entry {
	if s == nil {
		return nil
	}
	return cloneEntries(s.Entries)
}

func (s *Session) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Entries)
}

// LatestUserUtterance is the most recent user message still in the log.
func (s *Session) LatestUserUtterance() (Entry, bool) {
	if s == nil {
		return Entry{}, false
	}
	for i := len(s.Entries) - 1; i >= 0; i-- {
		if e := s.Entries[i]; e.Role == RoleUser && e.Kind == KindMessage {
			return e.clone(), true
		}
	}
	return Entry{}, false
}

// RecentVehicleMentions returns the audit records of inventory searches still in the log, oldest first.
func (s *Session) RecentVehicleMentions() []ToolCallLog {
	if s == nil {
		return nil
	}
	var out []ToolCallLog
	for _, e := range s.Entries {
		if e.Kind == KindToolCall && e.Tool != nil && e.Tool.ToolName == SearchToolName && !e.Tool.Failed {
			out = append(out, *e.Tool)
		}
	}
	return out
}

// RecentFinancingDiscussion reports whether any of the last five entries mentions financing.
func (s *Session) RecentFinancingDiscussion() bool {
	for _, e := range s.Window(financingWindow) {
		if financingPattern.MatchString(e.Text) {
			return true
		}
	}
	return false
}

// LastSpecialistReply is the most recent specialist message, skipping tool and routing entries.
func (s *Session) LastSpecialistReply() (Entry, bool) {
	if s == nil {
		return Entry{}, false
	}
	for i := len(s.Entries) - 1; i >= 0; i-- {
		if e := s.Entries[i]; e.Role == RoleSpecialist && e.Kind == KindMessage {
			return e.clone(), true
		}
	}
	return Entry{}, false
}

// SetProfile replaces the stored profile wholesale.
func (s *Session) SetProfile(p calcx.CustomerProfile) {
	cp := p.Clone()
	s.Profile = &cp
}

func (s *Session) SetRecommended(ids []string) {
	s.Recommended = append([]string(nil), ids...)
}

func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	out := *s
	out.Entries = cloneEntries(s.Entries)
	if s.Profile != nil {
		p := s.Profile.Clone()
		out.Profile = &p
	}
	out.Recommended = append([]string(nil), s.Recommended...)
	return &out
}

func cloneEntries(in []Entry) []Entry {
	out := make([]Entry, len(in))
	for i, e := range in {
		out[i] = e.clone()
	}
	return out
}
