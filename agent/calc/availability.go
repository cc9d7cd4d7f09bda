package calc

import (
	"hash/fnv"
	"math/rand"
	"strings"
	"time"

	catalogx "github.com/tanpawarit/Chative-Vehicle-Advisor/agent/catalog"
)

// StockSource decides whether a dealer currently has a vehicle on the lot.
type StockSource interface {
	InStock(dealerID, vehicleID string) bool
}

// RandomStock simulates stock. Each dealer/vehicle pair gets its own draw derived
// from the seed, so answers never change between calls or sessions.
type RandomStock struct {
	seed        int64
	probability float64
}

func NewRandomStock(seed int64, probability float64) *RandomStock {
	if probability < 0 {
		probability = 0
	}
	if probability > 1 {
		probability = 1
	}
	return &RandomStock{seed: seed, probability: probability}
}

func (s *RandomStock) InStock(dealerID, vehicleID string) bool {
	h := fnv.New64a()
	_, _ = h.Write([]byte(dealerID))
	_, _ = h.Write([]byte{0})
	_, _ = h.Write([]byte(vehicleID))
	rng := rand.New(rand.NewSource(s.seed ^ int64(h.Sum64())))
	return rng.Float64() < s.probability
}

// FixedStock answers from an explicit dealer/vehicle set; keys are "dealerID/vehicleID".
type FixedStock map[string]bool

func (s FixedStock) InStock(dealerID, vehicleID string) bool {
	return s[dealerID+"/"+vehicleID]
}

type AvailabilityInput struct {
	VehicleID string `json:"vehicle_id"`
	Zip       string `json:"zip,omitempty"`
}

type DealerStock struct {
	Dealer  catalogx.Dealer `json:"dealer"`
	InStock bool            `json:"in_stock"`
}

type Availability struct {
	VehicleID   string        `json:"vehicle_id"`
	VehicleName string        `json:"vehicle_name"`
	Dealers     []DealerStock `json:"dealers"`
	InStockAny  bool          `json:"in_stock_any"`
}

// CheckAvailability lists dealers carrying the vehicle's make, optionally narrowed by zip prefix.
func CheckAvailability(ref Reference, stock StockSource, in AvailabilityInput) *Availability {
	vehicle, ok := ref.FindByID(in.VehicleID)
	if !ok {
		return nil
	}

	out := &Availability{VehicleID: vehicle.ID, VehicleName: vehicle.DisplayName()}
	for _, d := range FindDealers(ref, DealerQuery{Zip: in.Zip}) {
		if !d.Carries(vehicle.Make) {
			continue
		}
		inStock := stock.InStock(d.ID, vehicle.ID)
		out.Dealers = append(out.Dealers, DealerStock{Dealer: d, InStock: inStock})
		out.InStockAny = out.InStockAny || inStock
	}
	return out
}

type DealerQuery struct {
	Zip  string `json:"zip,omitempty"`
	City string `json:"city,omitempty"`
	Make string `json:"make,omitempty"`
}

// FindDealers matches on zip prefix (first three digits), city and carried make.
func FindDealers(ref Reference, q DealerQuery) []catalogx.Dealer {
	zip := strings.TrimSpace(q.Zip)
	if len(zip) > 3 {
		zip = zip[:3]
	}
	city := strings.TrimSpace(q.City)
	vehicleMake := strings.TrimSpace(q.Make)

	var out []catalogx.Dealer
	for _, d := range ref.Dealers() {
		if zip != "" && !strings.HasPrefix(d.Zip, zip) {
			continue
		}
		if city != "" && !strings.EqualFold(d.City, city) {
			continue
		}
		if vehicleMake != "" && !d.Carries(vehicleMake) {
			continue
		}
		out = append(out, d)
	}
	return out
}

const (
	testDriveDateLayout = "2006-01-02"
	testDriveTimeLayout = "15:04"
	firstTestDriveSlot  = 9 * time.Hour
	lastTestDriveSlot   = 18 * time.Hour
)

type TestDriveInput struct {
	DealerID  string `json:"dealer_id"`
	VehicleID string `json:"vehicle_id"`
	Date      string `json:"date"`
	Time      string `json:"time"`
	Name      string `json:"customer_name"`
}

type TestDriveAppointment struct {
	Confirmation string    `json:"confirmation"`
	DealerID     string    `json:"dealer_id"`
	DealerName   string    `json:"dealer_name"`
	VehicleID    string    `json:"vehicle_id"`
	VehicleName  string    `json:"vehicle_name"`
	At           time.Time `json:"at"`
	Name         string    `json:"customer_name"`
}

// ScheduleTestDrive validates the slot and returns an appointment. now and newID are
// injected so results are reproducible. Unknown dealer or vehicle yields nil.
func ScheduleTestDrive(ref Reference, in TestDriveInput, now time.Time, newID func() string) (*TestDriveAppointment, error) {
	day, err := time.Parse(testDriveDateLayout, strings.TrimSpace(in.Date))
	if err != nil {
		return nil, invalid("date must be YYYY-MM-DD")
	}
	clock, err := time.Parse(testDriveTimeLayout, strings.TrimSpace(in.Time))
	if err != nil {
		return nil, invalid("time must be HH:MM")
	}
	offset := time.Duration(clock.Hour())*time.Hour + time.Duration(clock.Minute())*time.Minute
	if offset < firstTestDriveSlot || offset > lastTestDriveSlot {
		return nil, invalid("test drives run between 09:00 and 18:00")
	}
	at := day.Add(offset)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if day.Before(today) {
		return nil, invalid("date %s is in the past", in.Date)
	}

	dealer, ok := ref.FindDealer(in.DealerID)
	if !ok {
		return nil, nil
	}
	vehicle, ok := ref.FindByID(in.VehicleID)
	if !ok {
		return nil, nil
	}
	if !dealer.Carries(vehicle.Make) {
		return nil, invalid("%s does not sell %s", dealer.Name, vehicle.Make)
	}

	return &TestDriveAppointment{
		Confirmation: newID(),
		DealerID:     dealer.ID,
		DealerName:   dealer.Name,
		VehicleID:    vehicle.ID,
		VehicleName:  vehicle.DisplayName(),
		At:           at,
		Name:         strings.TrimSpace(in.Name),
	}, nil
}
