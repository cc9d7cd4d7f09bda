// Package catalog holds the static reference data the calculators read: vehicles,
// dealers and the financing rate table. A Catalog is loaded once and never written
// afterwards, so it is safe to share between sessions without locking.
package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed data/catalog.yaml
var defaultCatalogRaw []byte

// DefaultRate is the APR applied when a credit tier is not in the rate table.
const DefaultRate = 7.9

type VehicleRecord struct {
	ID                   string   `yaml:"id" json:"id"`
	Make                 string   `yaml:"make" json:"make"`
	Model                string   `yaml:"model" json:"model"`
	Year                 int      `yaml:"year" json:"year"`
	Price                float64  `yaml:"price" json:"price"`
	Category             string   `yaml:"category" json:"category"`
	FuelType             string   `yaml:"fuel_type" json:"fuel_type"`
	MPGCity              int      `yaml:"mpg_city" json:"mpg_city"`
	MPGHighway           int      `yaml:"mpg_highway" json:"mpg_highway"`
	Horsepower           int      `yaml:"horsepower" json:"horsepower"`
	TowingCapacity       int      `yaml:"towing_capacity" json:"towing_capacity"`
	Range                *int     `yaml:"range,omitempty" json:"range,omitempty"`
	BatteryKWh           float64  `yaml:"battery_kwh,omitempty" json:"battery_kwh,omitempty"`
	SafetyFeatures       []string `yaml:"safety_features" json:"safety_features"`
	InfotainmentFeatures []string `yaml:"infotainment_features" json:"infotainment_features"`
}

func (v VehicleRecord) DisplayName() string {
	return fmt.Sprintf("%d %s %s", v.Year, v.Make, v.Model)
}

// CombinedMPG is the floor of the city/highway average.
func (v VehicleRecord) CombinedMPG() int {
	return (v.MPGCity + v.MPGHighway) / 2
}

func (v VehicleRecord) IsElectric() bool {
	return v.Range != nil && strings.EqualFold(v.FuelType, "electric")
}

type Dealer struct {
	ID    string   `yaml:"id" json:"id"`
	Name  string   `yaml:"name" json:"name"`
	City  string   `yaml:"city" json:"city"`
	Zip   string   `yaml:"zip" json:"zip"`
	Phone string   `yaml:"phone" json:"phone"`
	Makes []string `yaml:"makes" json:"makes"`
}

func (d Dealer) Carries(vehicleMake string) bool {
	for _, m := range d.Makes {
		if strings.EqualFold(m, vehicleMake) {
			return true
		}
	}
	return false
}

type document struct {
	Vehicles []VehicleRecord    `yaml:"vehicles"`
	Dealers  []Dealer           `yaml:"dealers"`
	Rates    map[string]float64 `yaml:"rates"`
}

// Catalog is the read-only reference collaborator.
type Catalog struct {
	vehicles []VehicleRecord
	byID     map[string]int
	dealers  []Dealer
	rates    map[string]float64
}

var (
	ErrEmptyCatalog     = errors.New("catalog has no vehicles")
	ErrDuplicateVehicle = errors.New("duplicate vehicle id")
)

func Default() (*Catalog, error) {
	return Decode(strings.NewReader(string(defaultCatalogRaw)))
}

func MustDefault() *Catalog {
	c, err := Default()
	if err != nil {
		panic(err)
	}
	return c
}

func LoadFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()
	return Decode(f)
}

func Decode(r io.Reader) (*Catalog, error) {
	var doc document
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	return New(doc.Vehicles, doc.Dealers, doc.Rates)
}

func New(vehicles []VehicleRecord, dealers []Dealer, rates map[string]float64) (*Catalog, error) {
	if len(vehicles) == 0 {
		return nil, ErrEmptyCatalog
	}

	c := &Catalog{
		vehicles: make([]VehicleRecord, 0, len(vehicles)),
		byID:     make(map[string]int, len(vehicles)),
		dealers:  append([]Dealer(nil), dealers...),
		rates:    make(map[string]float64, len(rates)),
	}
	for _, v := range vehicles {
		id := strings.TrimSpace(v.ID)
		if id == "" {
			return nil, fmt.Errorf("vehicle %s has no id", v.DisplayName())
		}
		if _, dup := c.byID[id]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateVehicle, id)
		}
		v.ID = id
		c.byID[id] = len(c.vehicles)
		c.vehicles = append(c.vehicles, v)
	}
	for tier, rate := range rates {
		c.rates[strings.ToLower(strings.TrimSpace(tier))] = rate
	}
	return c, nil
}

// FindByID returns a copy of the record so callers cannot alias catalog slices.
func (c *Catalog) FindByID(id string) (VehicleRecord, bool) {
	idx, ok := c.byID[strings.TrimSpace(id)]
	if !ok {
		return VehicleRecord{}, false
	}
	return cloneVehicle(c.vehicles[idx]), true
}

func (c *Catalog) FindByMakeModel(vehicleMake, model string) (VehicleRecord, bool) {
	for _, v := range c.vehicles {
		if strings.EqualFold(v.Make, strings.TrimSpace(vehicleMake)) && strings.EqualFold(v.Model, strings.TrimSpace(model)) {
			return cloneVehicle(v), true
		}
	}
	return VehicleRecord{}, false
}

func (c *Catalog) All() []VehicleRecord {
	out := make([]VehicleRecord, 0, len(c.vehicles))
	for _, v := range c.vehicles {
		out = append(out, cloneVehicle(v))
	}
	return out
}

func (c *Catalog) Dealers() []Dealer {
	out := make([]Dealer, 0, len(c.dealers))
	for _, d := range c.dealers {
		d.Makes = append([]string(nil), d.Makes...)
		out = append(out, d)
	}
	return out
}

func (c *Catalog) FindDealer(id string) (Dealer, bool) {
	for _, d := range c.Dealers() {
		if d.ID == strings.TrimSpace(id) {
			return d, true
		}
	}
	return Dealer{}, false
}

// Rate returns the APR percent for a credit tier, falling back to DefaultRate.
func (c *Catalog) Rate(tier string) float64 {
	if rate, ok := c.rates[strings.ToLower(strings.TrimSpace(tier))]; ok {
		return rate
	}
	return DefaultRate
}

func (c *Catalog) Tiers() []string {
	tiers := make([]string, 0, len(c.rates))
	for t := range c.rates {
		tiers = append(tiers, t)
	}
	sort.Strings(tiers)
	return tiers
}

func cloneVehicle(v VehicleRecord) VehicleRecord {
	if v.Range != nil {
		r := *v.Range
		v.Range = &r
	}
	v.SafetyFeatures = append([]string(nil), v.SafetyFeatures...)
	v.InfotainmentFeatures = append([]string(nil), v.InfotainmentFeatures...)
	return v
}
