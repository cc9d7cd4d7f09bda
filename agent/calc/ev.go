package calc

import (
	"math"
	"strings"
)

var weatherMultipliers = map[string]float64{
	"cold": 0.7,
	"hot":  0.85,
	"rain": 0.9,
}

const (
	highwayTripMiles      = 100
	highwayMultiplier     = 0.9
	dcFastChargeCeilingPc = 80
)

type RangeInput struct {
	VehicleID    string  `json:"vehicle_id"`
	Condition    string  `json:"condition"`
	TripDistance float64 `json:"trip_distance"`
}

type RangeEstimate struct {
	VehicleID     string  `json:"vehicle_id"`
	BaseRange     float64 `json:"base_range"`
	AdjustedRange float64 `json:"adjusted_range"`
	Reduction     float64 `json:"reduction"`
	TripDistance  float64 `json:"trip_distance"`
	CanComplete   bool    `json:"can_complete"`
}

// Range adjusts rated range for weather and, on trips over 100 miles, highway speed.
// Non-electric vehicles have no range estimate.
func Range(ref Reference, in RangeInput) (*RangeEstimate, error) {
	if in.TripDistance < 0 {
		return nil, invalid("trip_distance must be >= 0")
	}

	vehicle, ok := ref.FindByID(in.VehicleID)
	if !ok || !vehicle.IsElectric() {
		return nil, nil
	}

	base := float64(*vehicle.Range)
	adjusted := base
	if mult, ok := weatherMultipliers[strings.ToLower(strings.TrimSpace(in.Condition))]; ok {
		adjusted *= mult
	}
	if in.TripDistance > highwayTripMiles {
		adjusted *= highwayMultiplier
	}
	adjusted = round1(adjusted)

	return &RangeEstimate{
		VehicleID:     vehicle.ID,
		BaseRange:     base,
		AdjustedRange: adjusted,
		Reduction:     round1(base - adjusted),
		TripDistance:  in.TripDistance,
		CanComplete:   adjusted >= in.TripDistance,
	}, nil
}

var chargerKW = map[string]float64{
	"level1": 1.4,
	"level2": 7.2,
	"dcfast": 150,
}

type ChargingInput struct {
	VehicleID      string  `json:"vehicle_id"`
	CurrentPercent float64 `json:"current_percent"`
	TargetPercent  float64 `json:"target_percent"`
	ChargerType    string  `json:"charger_type"`
}

type ChargingEstimate struct {
	VehicleID     string  `json:"vehicle_id"`
	ChargerType   string  `json:"charger_type"`
	EnergyKWh     float64 `json:"energy_kwh"`
	Hours         float64 `json:"hours"`
	Minutes       int     `json:"minutes"`
	TargetPercent float64 `json:"target_percent"`
}

// Charging estimates time to move between two states of charge. DC fast charging
// tapers, so its target is capped at 80%.
func Charging(ref Reference, in ChargingInput) (*ChargingEstimate, error) {
	charger := strings.ToLower(strings.TrimSpace(in.ChargerType))
	power, ok := chargerKW[charger]
	if !ok {
		return nil, invalid("unknown charger_type %q", in.ChargerType)
	}
	if in.CurrentPercent < 0 || in.TargetPercent > 100 || in.CurrentPercent >= in.TargetPercent {
		return nil, invalid("need 0 <= current_percent < target_percent <= 100")
	}

	vehicle, ok := ref.FindByID(in.VehicleID)
	if !ok || !vehicle.IsElectric() || vehicle.BatteryKWh <= 0 {
		return nil, nil
	}

	target := in.TargetPercent
	if charger == "dcfast" && target > dcFastChargeCeilingPc {
		target = dcFastChargeCeilingPc
	}
	if target <= in.CurrentPercent {
		return nil, invalid("battery already at or above the %s ceiling", charger)
	}

	energy := vehicle.BatteryKWh * (target - in.CurrentPercent) / 100
	hours := energy / power

	return &ChargingEstimate{
		VehicleID:     vehicle.ID,
		ChargerType:   charger,
		EnergyKWh:     round1(energy),
		Hours:         round2(hours),
		Minutes:       int(math.Ceil(hours * 60)),
		TargetPercent: target,
	}, nil
}
