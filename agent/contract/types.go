package contract

import (
	"strings"

	statex "github.com/tanpawarit/Chative-Vehicle-Advisor/agent/state"
)

// SpecialistID is the closed set of handlers a turn can be routed to.
type SpecialistID uint8

const (
	SpecialistTechnical SpecialistID = iota
	SpecialistFinancial
	SpecialistProfiler
	SpecialistAvailability
	SpecialistNegotiation
	SpecialistEV

	specialistCount
)

var specialistLabels = [specialistCount]string{
	SpecialistTechnical:    "technical",
	SpecialistFinancial:    "financial",
	SpecialistProfiler:     "profiler",
	SpecialistAvailability: "availability",
	SpecialistNegotiation:  "negotiation",
	SpecialistEV:           "ev",
}

func (s SpecialistID) String() string {
	if !s.Valid() {
		return "unknown"
	}
	return specialistLabels[s]
}

func (s SpecialistID) Valid() bool {
	return s < specialistCount
}

func (s SpecialistID) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Specialists lists every identifier in declaration order.
func Specialists() []SpecialistID {
	out := make([]SpecialistID, 0, specialistCount)
	for id := SpecialistID(0); id < specialistCount; id++ {
		out = append(out, id)
	}
	return out
}

// ParseSpecialist maps an oracle label onto the enumeration. Matching is exact after
// trimming and lower-casing; anything else is reported as unrecognized.
func ParseSpecialist(label string) (SpecialistID, bool) {
	normalized := strings.ToLower(strings.TrimSpace(label))
	if normalized == "" {
		return SpecialistTechnical, false
	}
	for id, name := range specialistLabels {
		if name == normalized {
			return SpecialistID(id), true
		}
	}
	return SpecialistTechnical, false
}

const (
	ReasonNoQuery      = "no query"
	ReasonUnrecognized = "unrecognized classification"
	ReasonOracleFailed = "classification error"
)

type ClassifyRequest struct {
	UserMessage string         `json:"user_message"`
	Window      []statex.Entry `json:"window"`
}

// Classification is the raw label pair returned by the oracle.
type Classification struct {
	Agent  string `json:"agent"`
	Reason string `json:"reason"`
}

type Decision struct {
	Specialist SpecialistID `json:"specialist"`
	Reason     string       `json:"reason"`
	Label      string       `json:"label,omitempty"`
	Defaulted  bool         `json:"defaulted"`
}

type RespondRequest struct {
	Specialist   SpecialistID `json:"specialist"`
	SystemPrompt string       `json:"-"`
	Context      string       `json:"context"`
	UserMessage  string       `json:"user_message"`
}

type SpecialistRequest struct {
	Session  *statex.Session `json:"-"`
	Decision Decision        `json:"decision"`
}

type SpecialistResponse struct {
	Reply   string          `json:"reply"`
	Session *statex.Session `json:"-"`
}

type ToolRequest struct {
	Tool string         `json:"tool"`
	Args map[string]any `json:"args,omitempty"`
}

type ToolResult struct {
	Tool   string `json:"tool"`
	Result any    `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`
}
