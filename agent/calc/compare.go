package calc

import catalogx "github.com/tanpawarit/Chative-Vehicle-Advisor/agent/catalog"

type VehicleComparison struct {
	Vehicles     []catalogx.VehicleRecord `json:"vehicles"`
	Missing      []string                 `json:"missing,omitempty"`
	Cheapest     string                   `json:"cheapest,omitempty"`
	BestMPG      string                   `json:"best_mpg,omitempty"`
	MostPowerful string                   `json:"most_powerful,omitempty"`
	LongestRange string                   `json:"longest_range,omitempty"`
}

// Compare lines vehicles up side by side. Ties keep the first id given.
func Compare(ref Reference, ids []string) VehicleComparison {
	var out VehicleComparison
	var cheapest, bestMPG, power, rng *catalogx.VehicleRecord

	for _, id := range ids {
		v, ok := ref.FindByID(id)
		if !ok {
			out.Missing = append(out.Missing, id)
			continue
		}
		out.Vehicles = append(out.Vehicles, v)
	}

	for i := range out.Vehicles {
		v := &out.Vehicles[i]
		if cheapest == nil || v.Price < cheapest.Price {
			cheapest = v
		}
		if v.CombinedMPG() > 0 && (bestMPG == nil || v.CombinedMPG() > bestMPG.CombinedMPG()) {
			bestMPG = v
		}
		if power == nil || v.Horsepower > power.Horsepower {
			power = v
		}
		if v.IsElectric() && (rng == nil || *v.Range > *rng.Range) {
			rng = v
		}
	}

	if cheapest != nil {
		out.Cheapest = cheapest.ID
	}
	if bestMPG != nil {
		out.BestMPG = bestMPG.ID
	}
	if power != nil {
		out.MostPowerful = power.ID
	}
	if rng != nil {
		out.LongestRange = rng.ID
	}
	return out
}
