package tool

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	catalogx "github.com/tanpawarit/Chative-Vehicle-Advisor/agent/catalog"
	calcx "github.com/tanpawarit/Chative-Vehicle-Advisor/agent/calc"
	contractx "github.com/tanpawarit/Chative-Vehicle-Advisor/agent/contract"
	statex "github.com/tanpawarit/Chative-Vehicle-Advisor/agent/state"
)

var fixedNow = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	reg, err := NewRegistry(Env{
		Catalog: catalogx.MustDefault(),
		Stock:   calcx.FixedStock{"dealer-001/toyota-camry-2024": true},
		Now:     func() time.Time { return fixedNow },
		NewID:   func() string { return "appt-1" },
	})
	if err != nil {
		t.Fatalf("new registry: %v", err)
	}
	return reg
}

func TestNewRegistryRequiresCatalog(t *testing.T) {
	t.Parallel()

	_, err := NewRegistry(Env{})
	if !errors.Is(err, contractx.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestRegistryExposesEverySpecialistTool(t *testing.T) {
	t.Parallel()

	reg := newTestRegistry(t)
	if got := len(reg.Names()); got != 15 {
		t.Fatalf("expected 15 tools, got %d", got)
	}
	for _, id := range contractx.Specialists() {
		names := SetFor(id)
		if len(names) == 0 {
			t.Fatalf("%s has no tools", id)
		}
		infos := reg.Infos(names...)
		if len(infos) != len(names) {
			t.Fatalf("%s: expected %d infos, got %d", id, len(names), len(infos))
		}
		for i, info := range infos {
			if info.Name != names[i] {
				t.Fatalf("%s: info %d is %s, want %s", id, i, info.Name, names[i])
			}
			if info.Desc == "" {
				t.Fatalf("%s has no description", info.Name)
			}
		}
	}
}

func TestCreditTierEnumFollowsRateTable(t *testing.T) {
	t.Parallel()

	got := creditTierParam(catalogx.MustDefault().Tiers()).Enum
	want := []string{"excellent", "fair", "good", "poor"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("credit tier enum = %v, want %v", got, want)
	}
}

func TestExecuteUnknownTool(t *testing.T) {
	t.Parallel()

	out := newTestRegistry(t).Execute(context.Background(), nil, contractx.ToolRequest{Tool: "launch_rocket"})
	if out.Tool != "launch_rocket" {
		t.Fatalf("unexpected tool: %s", out.Tool)
	}
	if !strings.Contains(out.Error, "unknown tool") {
		t.Fatalf("unexpected error: %q", out.Error)
	}
}

func TestExecuteSearchRecordsRecommendations(t *testing.T) {
	t.Parallel()

	reg := newTestRegistry(t)
	sess := statex.NewSession("s1", fixedNow)
	out := reg.Execute(context.Background(), sess, contractx.ToolRequest{
		Tool: ToolSearchInventory,
		Args: map[string]any{"fuel_type": "Electric"},
	})
	if out.Error != "" {
		t.Fatalf("unexpected tool error: %s", out.Error)
	}
	res, ok := out.Result.(SearchResult)
	if !ok {
		t.Fatalf("unexpected result type: %T", out.Result)
	}
	if res.Count != 3 {
		t.Fatalf("expected 3 electric vehicles, got %d", res.Count)
	}
	want := []string{"tesla-model3-2024", "hyundai-ioniq5-2024", "ford-mach-e-2024"}
	if strings.Join(sess.Recommended, ",") != strings.Join(want, ",") {
		t.Fatalf("unexpected recommendations: %v", sess.Recommended)
	}
}

func TestExecuteEmptySearchKeepsRecommendations(t *testing.T) {
	t.Parallel()

	reg := newTestRegistry(t)
	sess := statex.NewSession("s1", fixedNow)
	sess.SetRecommended([]string{"toyota-camry-2024"})
	out := reg.Execute(context.Background(), sess, contractx.ToolRequest{
		Tool: ToolSearchInventory,
		Args: map[string]any{"max_price": 1000},
	})
	if out.Error != "" {
		t.Fatalf("unexpected tool error: %s", out.Error)
	}
	if len(sess.Recommended) != 1 || sess.Recommended[0] != "toyota-camry-2024" {
		t.Fatalf("recommendations changed: %v", sess.Recommended)
	}
}

func TestExecuteAnalyzeNeedsReplacesProfile(t *testing.T) {
	t.Parallel()

	reg := newTestRegistry(t)
	sess := statex.NewSession("s1", fixedNow)
	sess.SetProfile(calcx.CustomerProfile{FamilySize: 1, PrimaryUsage: "commuting"})

	out := reg.Execute(context.Background(), sess, contractx.ToolRequest{
		Tool: ToolAnalyzeNeeds,
		Args: map[string]any{"family_size": 6, "primary_usage": "towing a boat"},
	})
	if out.Error != "" {
		t.Fatalf("unexpected tool error: %s", out.Error)
	}
	if sess.Profile == nil || sess.Profile.FamilySize != 6 || !sess.Profile.NeedsTowing {
		t.Fatalf("profile not replaced: %+v", sess.Profile)
	}
}

func TestExecuteMissingVehicleIsNotFound(t *testing.T) {
	t.Parallel()

	reg := newTestRegistry(t)
	for _, name := range []string{ToolFinancing, ToolTotalCost, ToolNegotiation, ToolEVRange, ToolCheckAvailability} {
		out := reg.Execute(context.Background(), nil, contractx.ToolRequest{
			Tool: name,
			Args: map[string]any{"vehicle_id": "no-such-car", "term_months": 60, "years": 5, "miles_per_year": 12000, "trip_distance": 100},
		})
		if !IsNotFound(out) {
			t.Fatalf("%s: expected not found, got result=%v error=%q", name, out.Result, out.Error)
		}
	}
}

func TestExecuteEVToolOnGasVehicleIsNotFound(t *testing.T) {
	t.Parallel()

	out := newTestRegistry(t).Execute(context.Background(), nil, contractx.ToolRequest{
		Tool: ToolCharging,
		Args: map[string]any{"vehicle_id": "toyota-camry-2024", "current_percent": 20, "target_percent": 80, "charger_type": "level2"},
	})
	if !IsNotFound(out) {
		t.Fatalf("expected not found, got %q", out.Error)
	}
}

func TestExecuteInvalidArgumentsAreReported(t *testing.T) {
	t.Parallel()

	out := newTestRegistry(t).Execute(context.Background(), nil, contractx.ToolRequest{
		Tool: ToolFinancing,
		Args: map[string]any{"vehicle_id": "toyota-camry-2024", "term_months": "sixty"},
	})
	if out.Error == "" || !strings.Contains(out.Error, "invalid arguments") {
		t.Fatalf("expected argument error, got %q", out.Error)
	}
	if out.Result != nil {
		t.Fatalf("expected no result, got %v", out.Result)
	}
}

func TestExecuteTradeInUsesClockYear(t *testing.T) {
	t.Parallel()

	out := newTestRegistry(t).Execute(context.Background(), nil, contractx.ToolRequest{
		Tool: ToolTradeIn,
		Args: map[string]any{"make": "Honda", "model": "Civic", "year": 2020, "mileage": 60000, "condition": "good"},
	})
	if out.Error != "" {
		t.Fatalf("unexpected tool error: %s", out.Error)
	}
	got, ok := out.Result.(calcx.TradeInValue)
	if !ok {
		t.Fatalf("unexpected result type: %T", out.Result)
	}
	direct, err := calcx.TradeIn(calcx.TradeInInput{Make: "Honda", Model: "Civic", Year: 2020, Mileage: 60000, Condition: "good", CurrentYear: 2025})
	if err != nil {
		t.Fatalf("direct trade-in: %v", err)
	}
	if got.DealerValue != direct.DealerValue {
		t.Fatalf("expected %.2f, got %.2f", direct.DealerValue, got.DealerValue)
	}
}

func TestExecuteScheduleTestDrive(t *testing.T) {
	t.Parallel()

	out := newTestRegistry(t).Execute(context.Background(), nil, contractx.ToolRequest{
		Tool: ToolScheduleTestDrive,
		Args: map[string]any{
			"dealer_id": "dealer-001", "vehicle_id": "toyota-camry-2024",
			"date": "2025-03-12", "time": "10:30", "customer_name": "Sam",
		},
	})
	if out.Error != "" {
		t.Fatalf("unexpected tool error: %s", out.Error)
	}
	appt, ok := out.Result.(calcx.TestDriveAppointment)
	if !ok {
		t.Fatalf("unexpected result type: %T", out.Result)
	}
	if appt.Confirmation != "appt-1" {
		t.Fatalf("unexpected confirmation: %s", appt.Confirmation)
	}
}
