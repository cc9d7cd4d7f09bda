package calc

import "strings"

type NegotiationInput struct {
	VehicleID      string `json:"vehicle_id"`
	InventoryLevel string `json:"inventory_level"`
	EndOfMonth     bool   `json:"end_of_month"`
	EndOfYear      bool   `json:"end_of_year"`
}

type NegotiationStrategy struct {
	VehicleID      string   `json:"vehicle_id"`
	MSRP           float64  `json:"msrp"`
	TargetPrice    float64  `json:"target_price"`
	WalkAwayPrice  float64  `json:"walk_away_price"`
	LeveragePoints []string `json:"leverage_points,omitempty"`
	Tactics        []string `json:"tactics"`
}

var negotiationTactics = []string{
	"Negotiate the out-the-door price, not the monthly payment",
	"Arrange outside financing before visiting the dealer",
	"Discuss the trade-in only after the purchase price is agreed",
}

// Negotiation derives target and walk-away prices as fractions of MSRP. Calendar
// pressure (end of month or year) takes precedence over low inventory.
func Negotiation(ref Reference, in NegotiationInput) (*NegotiationStrategy, error) {
	vehicle, ok := ref.FindByID(in.VehicleID)
	if !ok {
		return nil, nil
	}

	level := strings.ToLower(strings.TrimSpace(in.InventoryLevel))
	target, walk := 0.93, 0.97
	if level == "low" {
		target, walk = 0.96, 0.98
	}
	if in.EndOfMonth || in.EndOfYear {
		target, walk = 0.91, 0.95
	}

	var leverage []string
	if in.EndOfMonth {
		leverage = append(leverage, "Dealers are pushing to hit monthly sales quotas")
	}
	if in.EndOfYear {
		leverage = append(leverage, "Year-end clearance of outgoing model-year stock")
	}
	if level == "high" {
		leverage = append(leverage, "High inventory means the dealer needs to move units")
	}

	return &NegotiationStrategy{
		VehicleID:      vehicle.ID,
		MSRP:           vehicle.Price,
		TargetPrice:    round2(vehicle.Price * target),
		WalkAwayPrice:  round2(vehicle.Price * walk),
		LeveragePoints: leverage,
		Tactics:        append([]string(nil), negotiationTactics...),
	}, nil
}
