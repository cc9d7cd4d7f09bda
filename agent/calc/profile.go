package calc

import (
	"slices"
	"strings"
	"unicode"
)

type NeedsInput struct {
	FamilySize     int      `json:"family_size"`
	PrimaryUsage   string   `json:"primary_usage"`
	Preferences    []string `json:"preferences,omitempty"`
	BudgetMin      float64  `json:"budget_min"`
	BudgetMax      float64  `json:"budget_max"`
	FuelPreference string   `json:"fuel_preference,omitempty"`
}

// CustomerProfile is rebuilt on every need analysis and replaces the previous one.
type CustomerProfile struct {
	FamilySize          int      `json:"family_size"`
	PrimaryUsage        string   `json:"primary_usage"`
	Preferences         []string `json:"preferences,omitempty"`
	BudgetMin           float64  `json:"budget_min"`
	BudgetMax           float64  `json:"budget_max"`
	PreferredCategories []string `json:"preferred_categories,omitempty"`
	NeedsTowing         bool     `json:"needs_towing"`
	NeedsOffRoad        bool     `json:"needs_off_road"`
	FuelPreference      string   `json:"fuel_preference,omitempty"`
}

// AnalyzeNeeds maps stated needs onto catalog categories. Categories keep the order
// in which a rule first asked for them.
func AnalyzeNeeds(in NeedsInput) (CustomerProfile, error) {
	if in.FamilySize < 0 {
		return CustomerProfile{}, invalid("family_size must be >= 0")
	}
	if in.BudgetMin < 0 || in.BudgetMax < 0 {
		return CustomerProfile{}, invalid("budget must be >= 0")
	}
	if in.BudgetMax > 0 && in.BudgetMin > in.BudgetMax {
		return CustomerProfile{}, invalid("budget_min %.0f exceeds budget_max %.0f", in.BudgetMin, in.BudgetMax)
	}

	usage := strings.ToLower(strings.TrimSpace(in.PrimaryUsage))
	prefs := make([]string, 0, len(in.Preferences))
	for _, p := range in.Preferences {
		if p = strings.TrimSpace(p); p != "" {
			prefs = append(prefs, p)
		}
	}
	signals := usage + " " + strings.ToLower(strings.Join(prefs, " "))
	words := strings.FieldsFunc(signals, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '-'
	})

	var categories []string
	add := func(cs ...string) {
		for _, c := range cs {
			if !slices.Contains(categories, c) {
				categories = append(categories, c)
			}
		}
	}

	needsTowing := slices.ContainsFunc(words, func(w string) bool { return strings.HasPrefix(w, "tow") })
	needsOffRoad := strings.Contains(signals, "off-road") || strings.Contains(signals, "offroad") || strings.Contains(signals, "off road")

	if in.FamilySize >= 5 {
		add("Minivan", "SUV")
	}
	if needsTowing {
		add("Truck", "SUV")
	}
	if needsOffRoad {
		add("SUV", "Truck")
	}
	if strings.Contains(signals, "commut") || strings.Contains(signals, "city") {
		add("Sedan")
	}
	if strings.Contains(signals, "performance") || strings.Contains(signals, "sport") {
		add("Sports")
	}
	if strings.Contains(signals, "luxury") {
		add("Luxury")
	}

	fuel := strings.TrimSpace(in.FuelPreference)
	switch {
	case fuel != "":
	case strings.Contains(signals, "electric") || slices.Contains(words, "ev"):
		fuel = "Electric"
	case strings.Contains(signals, "efficien") || strings.Contains(signals, "hybrid"):
		fuel = "Hybrid"
	}
	if strings.EqualFold(fuel, "electric") {
		add("Electric")
	}
	if len(categories) == 0 {
		add("Sedan", "SUV")
	}

	return CustomerProfile{
		FamilySize:          in.FamilySize,
		PrimaryUsage:        strings.TrimSpace(in.PrimaryUsage),
		Preferences:         prefs,
		BudgetMin:           in.BudgetMin,
		BudgetMax:           in.BudgetMax,
		PreferredCategories: categories,
		NeedsTowing:         needsTowing,
		NeedsOffRoad:        needsOffRoad,
		FuelPreference:      fuel,
	}, nil
}

// Clone returns a deep copy.
func (p CustomerProfile) Clone() CustomerProfile {
	p.Preferences = append([]string(nil), p.Preferences...)
	p.PreferredCategories = append([]string(nil), p.PreferredCategories...)
	return p
}
