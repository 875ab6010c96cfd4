// Package equivalence translates a per-visit CO2 figure into everyday
// quantities such as food production, driving distance or appliance use.
package equivalence

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Factors holds the emission references used to derive equivalences.
// All values are grams of CO2e per unit named in the field.
type Factors struct {
	BeefGramsPerKg          float64 `yaml:"beef_grams_per_kg"`
	BurgerGrams             float64 `yaml:"burger_grams"`
	GasolineCarGramsPerKm   float64 `yaml:"gasoline_car_grams_per_km"`
	ElectricCarGramsPerKm   float64 `yaml:"electric_car_grams_per_km"`
	HomeElectricityGramsDay float64 `yaml:"home_electricity_grams_per_day"`
	TVGramsPerHour          float64 `yaml:"tv_grams_per_hour"`
	TreeGramsPerYear        float64 `yaml:"tree_grams_per_year"`
	FlightGrams             float64 `yaml:"flight_grams"`
	FlightKm                float64 `yaml:"flight_km"`
	SmartphoneGrams         float64 `yaml:"smartphone_grams"`
	EVChargeGrams           float64 `yaml:"ev_charge_grams"`
}

// DefaultFactors returns the reference table.
func DefaultFactors() Factors {
	return Factors{
		BeefGramsPerKg:          60,
		BurgerGrams:             2500,
		GasolineCarGramsPerKm:   180,
		ElectricCarGramsPerKm:   120,
		HomeElectricityGramsDay: 30000,
		TVGramsPerHour:          150,
		TreeGramsPerYear:        22000,
		FlightGrams:             220000,
		FlightKm:                344,
		SmartphoneGrams:         85000,
		EVChargeGrams:           15000,
	}
}

// Validate rejects tables with non-positive divisors.
func (f Factors) Validate() error {
	for name, v := range map[string]float64{
		"beef_grams_per_kg":              f.BeefGramsPerKg,
		"burger_grams":                   f.BurgerGrams,
		"gasoline_car_grams_per_km":      f.GasolineCarGramsPerKm,
		"electric_car_grams_per_km":      f.ElectricCarGramsPerKm,
		"home_electricity_grams_per_day": f.HomeElectricityGramsDay,
		"tv_grams_per_hour":              f.TVGramsPerHour,
		"tree_grams_per_year":            f.TreeGramsPerYear,
		"flight_grams":                   f.FlightGrams,
		"smartphone_grams":               f.SmartphoneGrams,
		"ev_charge_grams":                f.EVChargeGrams,
	} {
		if v <= 0 {
			return fmt.Errorf("%w: %s must be positive", ErrInvalidFactors, name)
		}
	}
	return nil
}

type factorsFile struct {
	Equivalences Factors `yaml:"equivalences"`
}

// LoadFactors reads the optional "equivalences" section of a coefficients
// file. A file without that section yields DefaultFactors.
func LoadFactors(path string) (Factors, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Factors{}, fmt.Errorf("failed to read factors file: %w", err)
	}
	file := factorsFile{Equivalences: DefaultFactors()}
	if err := yaml.Unmarshal(data, &file); err != nil {
		return Factors{}, fmt.Errorf("failed to parse factors file: %w", err)
	}
	if err := file.Equivalences.Validate(); err != nil {
		return Factors{}, err
	}
	return file.Equivalences, nil
}

// constError is an immutable error type for sentinel errors.
type constError string

func (e constError) Error() string { return string(e) }

// ErrInvalidFactors indicates a factor table that fails validation.
const ErrInvalidFactors = constError("invalid equivalence factors")
