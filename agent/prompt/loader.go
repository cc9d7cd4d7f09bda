package prompt

import (
	_ "embed"
	"fmt"
	"strings"

	contractx "github.com/tanpawarit/Chative-Vehicle-Advisor/agent/contract"
)

var (
	//go:embed template/classifier.txt
	classifierRaw string

	//go:embed template/technical.txt
	technicalRaw string

	//go:embed template/financial.txt
	financialRaw string

	//go:embed template/profiler.txt
	profilerRaw string

	//go:embed template/availability.txt
	availabilityRaw string

	//go:embed template/negotiation.txt
	negotiationRaw string

	//go:embed template/ev.txt
	evRaw string
)

// PromptSet holds loaded prompt content.
type PromptSet struct {
	Classifier  string
	Specialists map[contractx.SpecialistID]string
}

// LoadPromptSet returns a PromptSet with trimmed prompt strings.
func LoadPromptSet() PromptSet {
	return PromptSet{
		Classifier: strings.TrimSpace(classifierRaw),
		Specialists: map[contractx.SpecialistID]string{
			contractx.SpecialistTechnical:    strings.TrimSpace(technicalRaw),
			contractx.SpecialistFinancial:    strings.TrimSpace(financialRaw),
			contractx.SpecialistProfiler:     strings.TrimSpace(profilerRaw),
			contractx.SpecialistAvailability: strings.TrimSpace(availabilityRaw),
			contractx.SpecialistNegotiation:  strings.TrimSpace(negotiationRaw),
			contractx.SpecialistEV:           strings.TrimSpace(evRaw),
		},
	}
}

// Specialist returns the system prompt for id or ErrPromptMissing.
func (p PromptSet) Specialist(id contractx.SpecialistID) (string, error) {
	text := strings.TrimSpace(p.Specialists[id])
	if text == "" {
		return "", fmt.Errorf("%w: specialist=%s", contractx.ErrPromptMissing, id)
	}
	return text, nil
}
