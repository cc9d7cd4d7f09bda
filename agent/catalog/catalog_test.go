package catalog

import (
	"errors"
	"strings"
	"testing"
)

func TestDefaultCatalogLoads(t *testing.T) {
	t.Parallel()

	c, err := Default()
	if err != nil {
		t.Fatalf("Default() error = %v", err)
	}
	if len(c.All()) == 0 {
		t.Fatal("expected vehicles in default catalog")
	}
	if len(c.Dealers()) == 0 {
		t.Fatal("expected dealers in default catalog")
	}

	v, ok := c.FindByID("tesla-model3-2024")
	if !ok {
		t.Fatal("expected tesla-model3-2024 in catalog")
	}
	if !v.IsElectric() {
		t.Fatal("expected Model 3 to be electric")
	}
	if v.Range == nil || *v.Range != 272 {
		t.Fatalf("unexpected range: %v", v.Range)
	}
}

func TestFindByMakeModelCaseInsensitive(t *testing.T) {
	t.Parallel()

	c := MustDefault()
	v, ok := c.FindByMakeModel("honda", "cr-v")
	if !ok {
		t.Fatal("expected honda cr-v")
	}
	if v.ID != "honda-crv-2024" {
		t.Fatalf("unexpected id: %s", v.ID)
	}
	if _, ok := c.FindByMakeModel("Honda", "Civic Type Z"); ok {
		t.Fatal("expected no match for unknown model")
	}
}

func TestRecordsAreCopies(t *testing.T) {
	t.Parallel()

	c := MustDefault()
	v, _ := c.FindByID("ford-mach-e-2024")
	*v.Range = 1
	v.SafetyFeatures[0] = "mutated"

	again, _ := c.FindByID("ford-mach-e-2024")
	if *again.Range != 300 {
		t.Fatalf("catalog range mutated through copy: %d", *again.Range)
	}
	if again.SafetyFeatures[0] == "mutated" {
		t.Fatal("catalog features mutated through copy")
	}
}

func TestRateFallsBackToDefault(t *testing.T) {
	t.Parallel()

	c := MustDefault()
	if got := c.Rate("Excellent"); got != 4.9 {
		t.Fatalf("Rate(excellent) = %v, want 4.9", got)
	}
	if got := c.Rate("platinum"); got != DefaultRate {
		t.Fatalf("Rate(platinum) = %v, want %v", got, DefaultRate)
	}
}

func TestTiersAreSortedRateKeys(t *testing.T) {
	t.Parallel()

	c, err := New([]VehicleRecord{{ID: "a", Make: "Acme", Model: "One", Year: 2024}}, nil,
		map[string]float64{" Good ": 6.9, "EXCELLENT": 4.9})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if got := c.Tiers(); len(got) != 2 || got[0] != "excellent" || got[1] != "good" {
		t.Fatalf("Tiers() = %v, want [excellent good]", got)
	}
}

func TestDecodeRejectsDuplicateIDs(t *testing.T) {
	t.Parallel()

	doc := `
vehicles:
  - {id: a, make: X, model: One, year: 2020, price: 1}
  - {id: a, make: X, model: Two, year: 2021, price: 2}
`
	_, err := Decode(strings.NewReader(doc))
	if !errors.Is(err, ErrDuplicateVehicle) {
		t.Fatalf("Decode() error = %v, want ErrDuplicateVehicle", err)
	}
}

func TestDecodeRejectsEmpty(t *testing.T) {
	t.Parallel()

	_, err := Decode(strings.NewReader("dealers: []\n"))
	if !errors.Is(err, ErrEmptyCatalog) {
		t.Fatalf("Decode() error = %v, want ErrEmptyCatalog", err)
	}
}

func TestCombinedMPGFloors(t *testing.T) {
	t.Parallel()

	v := VehicleRecord{MPGCity: 51, MPGHighway: 44}
	if got := v.CombinedMPG(); got != 47 {
		t.Fatalf("CombinedMPG() = %d, want 47", got)
	}
}
