package calc

import "math"

type FinancingInput struct {
	VehicleID   string  `json:"vehicle_id"`
	DownPayment float64 `json:"down_payment"`
	TermMonths  int     `json:"term_months"`
	CreditTier  string  `json:"credit_tier"`
}

type FinancingOption struct {
	VehicleID      string  `json:"vehicle_id"`
	VehicleName    string  `json:"vehicle_name"`
	Price          float64 `json:"price"`
	DownPayment    float64 `json:"down_payment"`
	Principal      float64 `json:"principal"`
	TermMonths     int     `json:"term_months"`
	APR            float64 `json:"apr"`
	MonthlyPayment float64 `json:"monthly_payment"`
	TotalCost      float64 `json:"total_cost"`
	TotalInterest  float64 `json:"total_interest"`
}

// Financing amortizes price minus down payment over the term at the tier's APR.
func Financing(ref Reference, in FinancingInput) (*FinancingOption, error) {
	if in.TermMonths <= 0 {
		return nil, invalid("term_months must be > 0, got %d", in.TermMonths)
	}
	if in.DownPayment < 0 {
		return nil, invalid("down_payment must be >= 0")
	}

	vehicle, ok := ref.FindByID(in.VehicleID)
	if !ok {
		return nil, nil
	}
	if in.DownPayment >= vehicle.Price {
		return nil, invalid("down_payment %.2f covers the full price %.2f", in.DownPayment, vehicle.Price)
	}

	rate := ref.Rate(in.CreditTier)
	principal := vehicle.Price - in.DownPayment
	monthly := MonthlyPayment(principal, rate, in.TermMonths)
	total := monthly*float64(in.TermMonths) + in.DownPayment

	return &FinancingOption{
		VehicleID:      vehicle.ID,
		VehicleName:    vehicle.DisplayName(),
		Price:          vehicle.Price,
		DownPayment:    in.DownPayment,
		Principal:      round2(principal),
		TermMonths:     in.TermMonths,
		APR:            rate,
		MonthlyPayment: round2(monthly),
		TotalCost:      round2(total),
		TotalInterest:  round2(total - vehicle.Price),
	}, nil
}

// MonthlyPayment is the standard amortization formula. Callers guarantee n > 0.
func MonthlyPayment(principal, aprPercent float64, n int) float64 {
	m := aprPercent / 100 / 12
	if m == 0 {
		return principal / float64(n)
	}
	growth := math.Pow(1+m, float64(n))
	return principal * m * growth / (growth - 1)
}
