package calc

const (
	GasPricePerGallon    = 3.50
	maintenancePerYear   = 1200.0
	insurancePerYear     = 1800.0
	depreciationFraction = 0.5
)

type TCOInput struct {
	VehicleID    string `json:"vehicle_id"`
	Years        int    `json:"years"`
	MilesPerYear int    `json:"miles_per_year"`
}

type TotalCostOfOwnership struct {
	VehicleID     string  `json:"vehicle_id"`
	Years         int     `json:"years"`
	PurchasePrice float64 `json:"purchase_price"`
	FuelCost      float64 `json:"fuel_cost"`
	Maintenance   float64 `json:"maintenance"`
	Insurance     float64 `json:"insurance"`
	Depreciation  float64 `json:"depreciation"`
	Total         float64 `json:"total"`
	CostPerMile   float64 `json:"cost_per_mile"`
}

// TotalCost sums price, fuel, maintenance and insurance. Depreciation is reported
// alongside but not added to the total. Vehicles with no rated mpg (electric) are
// rejected rather than producing an infinite fuel cost.
func TotalCost(ref Reference, in TCOInput) (*TotalCostOfOwnership, error) {
	if in.Years <= 0 {
		return nil, invalid("years must be > 0, got %d", in.Years)
	}
	if in.MilesPerYear <= 0 {
		return nil, invalid("miles_per_year must be > 0, got %d", in.MilesPerYear)
	}

	vehicle, ok := ref.FindByID(in.VehicleID)
	if !ok {
		return nil, nil
	}

	avgMPG := float64(vehicle.MPGCity+vehicle.MPGHighway) / 2
	if avgMPG <= 0 {
		return nil, invalid("vehicle %s has no rated mpg", vehicle.ID)
	}

	miles := float64(in.MilesPerYear * in.Years)
	fuel := miles / avgMPG * GasPricePerGallon
	maintenance := float64(in.Years) * maintenancePerYear
	insurance := float64(in.Years) * insurancePerYear
	total := vehicle.Price + fuel + maintenance + insurance

	return &TotalCostOfOwnership{
		VehicleID:     vehicle.ID,
		Years:         in.Years,
		PurchasePrice: vehicle.Price,
		FuelCost:      round2(fuel),
		Maintenance:   round2(maintenance),
		Insurance:     round2(insurance),
		Depreciation:  round2(vehicle.Price * depreciationFraction),
		Total:         round2(total),
		CostPerMile:   round2(total / miles),
	}, nil
}
