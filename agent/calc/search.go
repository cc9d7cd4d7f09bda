package calc

import (
	"sort"
	"strings"

	catalogx "github.com/tanpawarit/Chative-Vehicle-Advisor/agent/catalog"
)

// SearchCriteria is a conjunction of optional filters; zero values are unset.
type SearchCriteria struct {
	Category string   `json:"category,omitempty"`
	MinPrice float64  `json:"min_price,omitempty"`
	MaxPrice float64  `json:"max_price,omitempty"`
	MinMPG   int      `json:"min_mpg,omitempty"`
	FuelType string   `json:"fuel_type,omitempty"`
	Features []string `json:"features,omitempty"`
}

type vehicleFilter func(catalogx.VehicleRecord) bool

func (c SearchCriteria) filters() []vehicleFilter {
	var out []vehicleFilter

	if category := strings.TrimSpace(c.Category); category != "" {
		needle := strings.ToLower(category)
		out = append(out, func(v catalogx.VehicleRecord) bool {
			return v.Category == category || strings.Contains(strings.ToLower(v.Category), needle)
		})
	}
	if c.MinPrice > 0 {
		out = append(out, func(v catalogx.VehicleRecord) bool { return v.Price >= c.MinPrice })
	}
	if c.MaxPrice > 0 {
		out = append(out, func(v catalogx.VehicleRecord) bool { return v.Price <= c.MaxPrice })
	}
	if c.MinMPG > 0 {
		out = append(out, func(v catalogx.VehicleRecord) bool { return v.CombinedMPG() >= c.MinMPG })
	}
	if fuel := strings.TrimSpace(c.FuelType); fuel != "" {
		out = append(out, func(v catalogx.VehicleRecord) bool { return strings.EqualFold(v.FuelType, fuel) })
	}
	for _, feature := range c.Features {
		needle := strings.ToLower(strings.TrimSpace(feature))
		if needle == "" {
			continue
		}
		out = append(out, func(v catalogx.VehicleRecord) bool { return hasFeature(v, needle) })
	}
	return out
}

func hasFeature(v catalogx.VehicleRecord, needle string) bool {
	for _, group := range [][]string{v.SafetyFeatures, v.InfotainmentFeatures} {
		for _, f := range group {
			if strings.Contains(strings.ToLower(f), needle) {
				return true
			}
		}
	}
	return false
}

// Search returns every catalog vehicle matching all criteria, ordered by price then id.
func Search(ref Reference, c SearchCriteria) []catalogx.VehicleRecord {
	filters := c.filters()
	matches := make([]catalogx.VehicleRecord, 0)

vehicles:
	for _, v := range ref.All() {
		for _, keep := range filters {
			if !keep(v) {
				continue vehicles
			}
		}
		matches = append(matches, v)
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Price != matches[j].Price {
			return matches[i].Price < matches[j].Price
		}
		return matches[i].ID < matches[j].ID
	})
	return matches
}
