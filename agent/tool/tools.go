package tool

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/schema"
	catalogx "github.com/tanpawarit/Chative-Vehicle-Advisor/agent/catalog"
	calcx "github.com/tanpawarit/Chative-Vehicle-Advisor/agent/calc"
	contractx "github.com/tanpawarit/Chative-Vehicle-Advisor/agent/contract"
	statex "github.com/tanpawarit/Chative-Vehicle-Advisor/agent/state"
)

const (
	ToolSearchInventory   = statex.SearchToolName
	ToolVehicleDetails    = "get_vehicle_details"
	ToolCompareVehicles   = "compare_vehicles"
	ToolFinancing         = "calculate_financing"
	ToolInsurance         = "calculate_insurance"
	ToolTotalCost         = "calculate_total_cost_of_ownership"
	ToolBudget            = "recommend_budget"
	ToolAnalyzeNeeds      = "analyze_customer_needs"
	ToolCheckAvailability = "check_availability"
	ToolFindDealers       = "find_dealers"
	ToolScheduleTestDrive = "schedule_test_drive"
	ToolTradeIn           = "estimate_trade_in"
	ToolNegotiation       = "negotiation_strategy"
	ToolEVRange           = "estimate_ev_range"
	ToolCharging          = "estimate_charging_time"
)

// SetFor lists the tools a specialist may call, in the order they are offered to the oracle.
func SetFor(id contractx.SpecialistID) []string {
	switch id {
	case contractx.SpecialistTechnical:
		return []string{ToolSearchInventory, ToolVehicleDetails, ToolCompareVehicles}
	case contractx.SpecialistFinancial:
		return []string{ToolFinancing, ToolInsurance, ToolTotalCost, ToolBudget}
	case contractx.SpecialistProfiler:
		return []string{ToolAnalyzeNeeds, ToolBudget, ToolSearchInventory}
	case contractx.SpecialistAvailability:
		return []string{ToolCheckAvailability, ToolFindDealers, ToolScheduleTestDrive}
	case contractx.SpecialistNegotiation:
		return []string{ToolTradeIn, ToolNegotiation, ToolFinancing}
	case contractx.SpecialistEV:
		return []string{ToolEVRange, ToolCharging, ToolSearchInventory}
	default:
		return nil
	}
}

type VehicleSummary struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Category string  `json:"category"`
	FuelType string  `json:"fuel_type"`
	MPG      int     `json:"combined_mpg,omitempty"`
	Range    *int    `json:"range,omitempty"`
}

type SearchResult struct {
	Count    int              `json:"count"`
	Vehicles []VehicleSummary `json:"vehicles"`
}

func summarize(v catalogx.VehicleRecord) VehicleSummary {
	return VehicleSummary{
		ID:       v.ID,
		Name:     v.DisplayName(),
		Price:    v.Price,
		Category: v.Category,
		FuelType: v.FuelType,
		MPG:      v.CombinedMPG(),
		Range:    v.Range,
	}
}

type vehicleRef struct {
	VehicleID string `json:"vehicle_id"`
	Make      string `json:"make"`
	Model     string `json:"model"`
}

type compareParams struct {
	VehicleIDs []string `json:"vehicle_ids"`
}

var vehicleIDParam = &schema.ParameterInfo{Type: schema.String, Desc: "Catalog vehicle id", Required: true}

func creditTierParam(tiers []string) *schema.ParameterInfo {
	return &schema.ParameterInfo{Type: schema.String, Desc: "Credit tier", Enum: tiers}
}

// builtinTools builds the fixed tool table. Credit tier enums are the catalog's rate table keys.
func builtinTools(tiers []string) []Tool {
	return []Tool{
		withEffect(define(&schema.ToolInfo{
			Name: ToolSearchInventory,
			Desc: "Search the vehicle catalog. All given filters must match.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"category":  {Type: schema.String, Desc: "Category or part of it, e.g. SUV, Sedan, Truck"},
				"min_price": {Type: schema.Number, Desc: "Minimum price in USD"},
				"max_price": {Type: schema.Number, Desc: "Maximum price in USD"},
				"min_mpg":   {Type: schema.Integer, Desc: "Minimum combined mpg"},
				"fuel_type": {Type: schema.String, Desc: "Gasoline, Hybrid or Electric"},
				"features": {Type: schema.Array, Desc: "Required safety or infotainment features",
					ElemInfo: &schema.ParameterInfo{Type: schema.String}},
			}),
		}, func(_ context.Context, env Env, p calcx.SearchCriteria) (any, error) {
			matches := calcx.Search(env.Catalog, p)
			out := SearchResult{Count: len(matches), Vehicles: make([]VehicleSummary, 0, len(matches))}
			for _, v := range matches {
				out.Vehicles = append(out.Vehicles, summarize(v))
			}
			return out, nil
		}), func(sess *statex.Session, result any) {
			res, ok := result.(SearchResult)
			if !ok || res.Count == 0 {
				return
			}
			ids := make([]string, 0, len(res.Vehicles))
			for _, v := range res.Vehicles {
				ids = append(ids, v.ID)
			}
			sess.SetRecommended(ids)
		}),

		define(&schema.ToolInfo{
			Name: ToolVehicleDetails,
			Desc: "Full specifications for one vehicle, by id or by make and model.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"vehicle_id": {Type: schema.String, Desc: "Catalog vehicle id"},
				"make":       {Type: schema.String, Desc: "Manufacturer"},
				"model":      {Type: schema.String, Desc: "Model name"},
			}),
		}, func(_ context.Context, env Env, p vehicleRef) (any, error) {
			if id := strings.TrimSpace(p.VehicleID); id != "" {
				if v, ok := env.Catalog.FindByID(id); ok {
					return v, nil
				}
				return nil, notFound("vehicle", id)
			}
			if v, ok := env.Catalog.FindByMakeModel(p.Make, p.Model); ok {
				return v, nil
			}
			return nil, notFound("vehicle", strings.TrimSpace(p.Make+" "+p.Model))
		}),

		define(&schema.ToolInfo{
			Name: ToolCompareVehicles,
			Desc: "Compare vehicles side by side.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"vehicle_ids": {Type: schema.Array, Desc: "Vehicle ids to compare", Required: true,
					ElemInfo: &schema.ParameterInfo{Type: schema.String}},
			}),
		}, func(_ context.Context, env Env, p compareParams) (any, error) {
			if len(p.VehicleIDs) == 0 {
				return nil, fmt.Errorf("%w: %v", contractx.ErrValidation, errNoVehicles)
			}
			return calcx.Compare(env.Catalog, p.VehicleIDs), nil
		}),

		define(&schema.ToolInfo{
			Name: ToolFinancing,
			Desc: "Monthly payment and total cost of a loan for a vehicle.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"vehicle_id":   vehicleIDParam,
				"down_payment": {Type: schema.Number, Desc: "Down payment in USD"},
				"term_months":  {Type: schema.Integer, Desc: "Loan term in months", Required: true},
				"credit_tier":  creditTierParam(tiers),
			}),
		}, func(_ context.Context, env Env, p calcx.FinancingInput) (any, error) {
			out, err := calcx.Financing(env.Catalog, p)
			if err != nil {
				return nil, err
			}
			if out == nil {
				return nil, notFound("vehicle", p.VehicleID)
			}
			return *out, nil
		}),

		define(&schema.ToolInfo{
			Name: ToolInsurance,
			Desc: "Estimate monthly and annual insurance premium.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"vehicle_id":     vehicleIDParam,
				"driver_age":     {Type: schema.Integer, Desc: "Driver age in years", Required: true},
				"accidents":      {Type: schema.Integer, Desc: "At-fault accidents in the last 5 years"},
				"tickets":        {Type: schema.Integer, Desc: "Moving violations in the last 3 years"},
				"years_licensed": {Type: schema.Integer, Desc: "Years holding a license"},
				"credit_tier":    creditTierParam(tiers),
			}),
		}, func(_ context.Context, env Env, p calcx.InsuranceInput) (any, error) {
			out, err := calcx.Insurance(env.Catalog, p)
			if err != nil {
				return nil, err
			}
			if out == nil {
				return nil, notFound("vehicle", p.VehicleID)
			}
			return *out, nil
		}),

		define(&schema.ToolInfo{
			Name: ToolTotalCost,
			Desc: "Total cost of ownership over several years.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"vehicle_id":     vehicleIDParam,
				"years":          {Type: schema.Integer, Desc: "Years of ownership", Required: true},
				"miles_per_year": {Type: schema.Integer, Desc: "Miles driven per year", Required: true},
			}),
		}, func(_ context.Context, env Env, p calcx.TCOInput) (any, error) {
			out, err := calcx.TotalCost(env.Catalog, p)
			if err != nil {
				return nil, err
			}
			if out == nil {
				return nil, notFound("vehicle", p.VehicleID)
			}
			return *out, nil
		}),

		define(&schema.ToolInfo{
			Name: ToolBudget,
			Desc: "Recommend an affordable vehicle price from monthly income and expenses.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"monthly_income":   {Type: schema.Number, Desc: "Net monthly income in USD", Required: true},
				"monthly_expenses": {Type: schema.Number, Desc: "Monthly expenses in USD", Required: true},
			}),
		}, func(_ context.Context, _ Env, p calcx.BudgetInput) (any, error) {
			return calcx.Budget(p)
		}),

		withEffect(define(&schema.ToolInfo{
			Name: ToolAnalyzeNeeds,
			Desc: "Build the customer profile from stated needs. Replaces any previous profile.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"family_size":   {Type: schema.Integer, Desc: "People who ride regularly", Required: true},
				"primary_usage": {Type: schema.String, Desc: "Main use, e.g. commuting, towing, off-road", Required: true},
				"preferences": {Type: schema.Array, Desc: "Stated preferences",
					ElemInfo: &schema.ParameterInfo{Type: schema.String}},
				"budget_min":      {Type: schema.Number, Desc: "Lower budget bound in USD"},
				"budget_max":      {Type: schema.Number, Desc: "Upper budget bound in USD"},
				"fuel_preference": {Type: schema.String, Desc: "Gasoline, Hybrid or Electric"},
			}),
		}, func(_ context.Context, _ Env, p calcx.NeedsInput) (any, error) {
			return calcx.AnalyzeNeeds(p)
		}), func(sess *statex.Session, result any) {
			if profile, ok := result.(calcx.CustomerProfile); ok {
				sess.SetProfile(profile)
			}
		}),

		define(&schema.ToolInfo{
			Name: ToolCheckAvailability,
			Desc: "Check which dealers have a vehicle in stock.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"vehicle_id": vehicleIDParam,
				"zip":        {Type: schema.String, Desc: "Customer zip code"},
			}),
		}, func(_ context.Context, env Env, p calcx.AvailabilityInput) (any, error) {
			out := calcx.CheckAvailability(env.Catalog, env.Stock, p)
			if out == nil {
				return nil, notFound("vehicle", p.VehicleID)
			}
			return *out, nil
		}),

		define(&schema.ToolInfo{
			Name: ToolFindDealers,
			Desc: "Find dealers by zip code, city or make.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"zip":  {Type: schema.String, Desc: "Zip code"},
				"city": {Type: schema.String, Desc: "City"},
				"make": {Type: schema.String, Desc: "Manufacturer the dealer must sell"},
			}),
		}, func(_ context.Context, env Env, p calcx.DealerQuery) (any, error) {
			return calcx.FindDealers(env.Catalog, p), nil
		}),

		define(&schema.ToolInfo{
			Name: ToolScheduleTestDrive,
			Desc: "Book a test drive at a dealer.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"dealer_id":     {Type: schema.String, Desc: "Dealer id", Required: true},
				"vehicle_id":    vehicleIDParam,
				"date":          {Type: schema.String, Desc: "Date as YYYY-MM-DD", Required: true},
				"time":          {Type: schema.String, Desc: "Time as HH:MM, 09:00 to 18:00", Required: true},
				"customer_name": {Type: schema.String, Desc: "Name for the booking"},
			}),
		}, func(_ context.Context, env Env, p calcx.TestDriveInput) (any, error) {
			out, err := calcx.ScheduleTestDrive(env.Catalog, p, env.Now(), env.NewID)
			if err != nil {
				return nil, err
			}
			if out == nil {
				return nil, notFound("dealer or vehicle", p.DealerID+"/"+p.VehicleID)
			}
			return *out, nil
		}),

		define(&schema.ToolInfo{
			Name: ToolTradeIn,
			Desc: "Estimate trade-in, private-sale and fair values of the customer's current vehicle.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"make":      {Type: schema.String, Desc: "Manufacturer"},
				"model":     {Type: schema.String, Desc: "Model"},
				"year":      {Type: schema.Integer, Desc: "Model year", Required: true},
				"mileage":   {Type: schema.Integer, Desc: "Odometer miles", Required: true},
				"condition": {Type: schema.String, Desc: "Condition", Enum: []string{"excellent", "good", "fair", "poor"}},
			}),
		}, func(_ context.Context, env Env, p calcx.TradeInInput) (any, error) {
			p.CurrentYear = env.Now().Year()
			return calcx.TradeIn(p)
		}),

		define(&schema.ToolInfo{
			Name: ToolNegotiation,
			Desc: "Target and walk-away prices plus leverage for negotiating a purchase.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"vehicle_id":      vehicleIDParam,
				"inventory_level": {Type: schema.String, Desc: "Dealer inventory level", Enum: []string{"low", "normal", "high"}},
				"end_of_month":    {Type: schema.Boolean, Desc: "Purchase near the end of a month"},
				"end_of_year":     {Type: schema.Boolean, Desc: "Purchase near the end of the year"},
			}),
		}, func(_ context.Context, env Env, p calcx.NegotiationInput) (any, error) {
			out, err := calcx.Negotiation(env.Catalog, p)
			if err != nil {
				return nil, err
			}
			if out == nil {
				return nil, notFound("vehicle", p.VehicleID)
			}
			return *out, nil
		}),

		define(&schema.ToolInfo{
			Name: ToolEVRange,
			Desc: "Real-world range of an electric vehicle for a trip.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"vehicle_id":    vehicleIDParam,
				"condition":     {Type: schema.String, Desc: "Weather", Enum: []string{"normal", "cold", "hot", "rain"}},
				"trip_distance": {Type: schema.Number, Desc: "Trip length in miles", Required: true},
			}),
		}, func(_ context.Context, env Env, p calcx.RangeInput) (any, error) {
			out, err := calcx.Range(env.Catalog, p)
			if err != nil {
				return nil, err
			}
			if out == nil {
				return nil, notFound("electric vehicle", p.VehicleID)
			}
			return *out, nil
		}),

		define(&schema.ToolInfo{
			Name: ToolCharging,
			Desc: "Time to charge an electric vehicle between two battery levels.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"vehicle_id":      vehicleIDParam,
				"current_percent": {Type: schema.Number, Desc: "Current state of charge, 0-100", Required: true},
				"target_percent":  {Type: schema.Number, Desc: "Desired state of charge, 0-100", Required: true},
				"charger_type":    {Type: schema.String, Desc: "Charger", Enum: []string{"level1", "level2", "dcfast"}, Required: true},
			}),
		}, func(_ context.Context, env Env, p calcx.ChargingInput) (any, error) {
			out, err := calcx.Charging(env.Catalog, p)
			if err != nil {
				return nil, err
			}
			if out == nil {
				return nil, notFound("electric vehicle", p.VehicleID)
			}
			return *out, nil
		}),
	}
}

func withEffect(t Tool, effect func(sess *statex.Session, result any)) Tool {
	t.effect = effect
	return t
}
