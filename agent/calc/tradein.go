package calc

import (
	"math"
	"strings"
)

const tradeInBaseValue = 15000.0

var conditionMultipliers = map[string]float64{
	"excellent": 1.1,
	"good":      1.0,
	"fair":      0.85,
	"poor":      0.7,
}

type TradeInInput struct {
	Make        string `json:"make"`
	Model       string `json:"model"`
	Year        int    `json:"year"`
	Mileage     int    `json:"mileage"`
	Condition   string `json:"condition"`
	CurrentYear int    `json:"-"`
}

type TradeInValue struct {
	Vehicle      string  `json:"vehicle"`
	Age          int     `json:"age"`
	DealerValue  float64 `json:"dealer_value"`
	PrivateValue float64 `json:"private_value"`
	FairValue    float64 `json:"fair_value"`
	MarketDemand string  `json:"market_demand"`
}

// TradeIn depreciates a flat base 15% per year, then applies mileage and condition.
// An unrecognized condition is valued as "good".
func TradeIn(in TradeInInput) (TradeInValue, error) {
	age := in.CurrentYear - in.Year
	if in.Year <= 0 {
		return TradeInValue{}, invalid("year must be > 0")
	}
	if age < 0 {
		return TradeInValue{}, invalid("year %d is after current year %d", in.Year, in.CurrentYear)
	}
	if in.Mileage < 0 {
		return TradeInValue{}, invalid("mileage must be >= 0")
	}

	base := tradeInBaseValue * math.Pow(0.85, float64(age))
	switch {
	case in.Mileage > 100000:
		base *= 0.7
	case in.Mileage > 60000:
		base *= 0.85
	}
	if mult, ok := conditionMultipliers[strings.ToLower(strings.TrimSpace(in.Condition))]; ok {
		base *= mult
	}

	demand := "Low"
	switch {
	case age < 3:
		demand = "High"
	case age < 6:
		demand = "Medium"
	}

	return TradeInValue{
		Vehicle:      strings.TrimSpace(strings.Join([]string{in.Make, in.Model}, " ")),
		Age:          age,
		DealerValue:  round2(base * 0.9),
		PrivateValue: round2(base * 1.1),
		FairValue:    round2(base),
		MarketDemand: demand,
	}, nil
}
