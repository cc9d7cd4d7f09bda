// Package calc contains the deterministic business calculators the specialists call.
//
// Every calculator is a pure function of its inputs and a read-only Reference. An
// unknown vehicle (or, for EV calculators, a non-electric one) yields an absent result:
// a nil pointer with a nil error. Inputs that would otherwise divide by zero or produce
// nonsense are rejected with ErrInvalidInput before any arithmetic runs.
package calc

import (
	"errors"
	"fmt"
	"math"

	catalogx "github.com/tanpawarit/Chative-Vehicle-Advisor/agent/catalog"
)

var ErrInvalidInput = errors.New("invalid calculator input")

// Reference is the read-only catalog view the calculators need.
type Reference interface {
	FindByID(id string) (catalogx.VehicleRecord, bool)
	FindByMakeModel(vehicleMake, model string) (catalogx.VehicleRecord, bool)
	All() []catalogx.VehicleRecord
	Dealers() []catalogx.Dealer
	FindDealer(id string) (catalogx.Dealer, bool)
	Rate(tier string) float64
	Tiers() []string
}

var _ Reference = (*catalogx.Catalog)(nil)

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
