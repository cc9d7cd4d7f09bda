package calc

import "strings"

const insuranceBaseMonthly = 100.0

type InsuranceInput struct {
	VehicleID     string `json:"vehicle_id"`
	DriverAge     int    `json:"driver_age"`
	Accidents     int    `json:"accidents"`
	Tickets       int    `json:"tickets"`
	YearsLicensed int    `json:"years_licensed"`
	CreditTier    string `json:"credit_tier"`
}

type InsuranceCost struct {
	VehicleID string   `json:"vehicle_id"`
	Monthly   float64  `json:"monthly"`
	Annual    float64  `json:"annual"`
	Factors   []string `json:"factors,omitempty"`
	Discounts []string `json:"discounts,omitempty"`
}

// Insurance applies vehicle, driver-risk and discount multipliers to a fixed base, in that order.
func Insurance(ref Reference, in InsuranceInput) (*InsuranceCost, error) {
	if in.DriverAge < 16 {
		return nil, invalid("driver_age must be >= 16, got %d", in.DriverAge)
	}
	if in.Accidents < 0 || in.Tickets < 0 || in.YearsLicensed < 0 {
		return nil, invalid("accidents, tickets and years_licensed must be >= 0")
	}

	vehicle, ok := ref.FindByID(in.VehicleID)
	if !ok {
		return nil, nil
	}

	base := insuranceBaseMonthly
	var factors, discounts []string
	apply := func(cond bool, mult float64, label string, into *[]string) {
		if !cond {
			return
		}
		base *= mult
		*into = append(*into, label)
	}

	category := strings.ToLower(vehicle.Category)
	apply(strings.Contains(category, "sports"), 1.5, "sports vehicle", &factors)
	apply(strings.Contains(category, "luxury"), 1.3, "luxury vehicle", &factors)
	apply(vehicle.Price > 50000, 1.2, "high vehicle value", &factors)

	apply(in.DriverAge < 25, 1.8, "driver under 25", &factors)
	apply(in.Accidents > 0, 1.3, "prior accidents", &factors)
	apply(in.Tickets > 2, 1.2, "more than two tickets", &factors)

	apply(in.YearsLicensed > 10, 0.9, "experienced driver", &discounts)
	apply(strings.EqualFold(strings.TrimSpace(in.CreditTier), "excellent"), 0.95, "excellent credit", &discounts)

	return &InsuranceCost{
		VehicleID: vehicle.ID,
		Monthly:   round2(base),
		Annual:    round2(base * 12),
		Factors:   factors,
		Discounts: discounts,
	}, nil
}
