package carbon

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Step is one threshold of a StepTable: inputs <= Max map to Value.
type Step struct {
	Max   float64 `yaml:"max"`
	Value float64 `yaml:"value"`
}

// StepTable is an ascending step function with a fallback for inputs above
// the last step.
type StepTable struct {
	Steps    []Step  `yaml:"steps"`
	Fallback float64 `yaml:"fallback"`
}

// Lookup returns the value of the first step whose Max is >= x.
func (t StepTable) Lookup(x float64) float64 {
	for _, s := range t.Steps {
		if x <= s.Max {
			return s.Value
		}
	}
	return t.Fallback
}

func (t StepTable) validate(name string) error {
	for i := 1; i < len(t.Steps); i++ {
		if t.Steps[i].Max <= t.Steps[i-1].Max {
			return fmt.Errorf("%w: %s steps must be strictly ascending", ErrInvalidCoefficients, name)
		}
	}
	return nil
}

// GradeBreakpoint assigns Grade to scores >= MinScore.
type GradeBreakpoint struct {
	MinScore int   `yaml:"min_score"`
	Grade    Grade `yaml:"grade"`
}

// Coefficients is the immutable table of constants driving the engine.
// The zero value is not usable; start from DefaultCoefficients.
type Coefficients struct {
	CO2GramsPerByte    float64 `yaml:"co2_grams_per_byte"`
	GreenHostingFactor float64 `yaml:"green_hosting_factor"`
	WebMedianCO2Grams  float64 `yaml:"web_median_co2_grams"`
	WebAverageSizeMB   float64 `yaml:"web_average_size_mb"`
	CarGramsPerKm      float64 `yaml:"car_grams_per_km"`
	TreeGramsPerYear   float64 `yaml:"tree_grams_per_year"`

	// MonthlyVisitors maps page size in MB to the assumed monthly traffic.
	// Lighter pages are assumed to be more popular.
	MonthlyVisitors StepTable `yaml:"monthly_visitors"`

	PerformanceWeight float64   `yaml:"performance_weight"`
	SizeScore         StepTable `yaml:"size_score"`
	CO2Score          StepTable `yaml:"co2_score"`
	GreenHostingBonus float64   `yaml:"green_hosting_bonus"`

	// Grades must be ordered by descending MinScore; scores below the last
	// breakpoint get FallbackGrade.
	Grades        []GradeBreakpoint `yaml:"grades"`
	FallbackGrade Grade             `yaml:"fallback_grade"`
}

// DefaultCoefficients returns the published coefficient table.
func DefaultCoefficients() Coefficients {
	return Coefficients{
		CO2GramsPerByte:    CO2GramsPerByte,
		GreenHostingFactor: GreenHostingFactor,
		WebMedianCO2Grams:  WebMedianCO2Grams,
		WebAverageSizeMB:   WebAverageSizeMB,
		CarGramsPerKm:      CarGramsPerKm,
		TreeGramsPerYear:   TreeGramsPerYear,
		MonthlyVisitors: StepTable{
			Steps: []Step{
				{Max: 1, Value: 25000},
				{Max: 3, Value: 5000},
				{Max: 5, Value: 1000},
			},
			Fallback: 500,
		},
		PerformanceWeight: PerformanceWeight,
		SizeScore: StepTable{
			Steps: []Step{
				{Max: 1, Value: 30},
				{Max: 2, Value: 25},
				{Max: 3, Value: 20},
				{Max: 5, Value: 15},
			},
			Fallback: 10,
		},
		CO2Score: StepTable{
			Steps: []Step{
				{Max: 0.5, Value: 20},
				{Max: 1, Value: 15},
				{Max: 2, Value: 10},
			},
			Fallback: 5,
		},
		GreenHostingBonus: GreenHostingBonus,
		Grades: []GradeBreakpoint{
			{MinScore: 90, Grade: GradeAPlus},
			{MinScore: 80, Grade: GradeA},
			{MinScore: 70, Grade: GradeB},
			{MinScore: 60, Grade: GradeC},
			{MinScore: 50, Grade: GradeD},
		},
		FallbackGrade: GradeF,
	}
}

// Validate reports whether the table can drive the engine.
func (c Coefficients) Validate() error {
	if c.CO2GramsPerByte <= 0 {
		return fmt.Errorf("%w: co2_grams_per_byte must be positive", ErrInvalidCoefficients)
	}
	if c.GreenHostingFactor <= 0 || c.GreenHostingFactor > 1 {
		return fmt.Errorf("%w: green_hosting_factor must be in (0, 1]", ErrInvalidCoefficients)
	}
	if c.WebMedianCO2Grams <= 0 || c.CarGramsPerKm <= 0 || c.TreeGramsPerYear <= 0 {
		return fmt.Errorf("%w: reference values must be positive", ErrInvalidCoefficients)
	}
	for name, t := range map[string]StepTable{
		"monthly_visitors": c.MonthlyVisitors,
		"size_score":       c.SizeScore,
		"co2_score":        c.CO2Score,
	} {
		if err := t.validate(name); err != nil {
			return err
		}
	}
	for i := 1; i < len(c.Grades); i++ {
		if c.Grades[i].MinScore >= c.Grades[i-1].MinScore {
			return fmt.Errorf("%w: grades must be ordered by descending min_score", ErrInvalidCoefficients)
		}
	}
	return nil
}

// LoadCoefficients reads a YAML override file. Keys absent from the file
// keep their default values.
func LoadCoefficients(path string) (Coefficients, error) {
	c := DefaultCoefficients()
	data, err := os.ReadFile(path)
	if err != nil {
		return Coefficients{}, fmt.Errorf("failed to read coefficients file: %w", err)
	}
	if err := yaml.Unmarshal(data, &c); err != nil {
		return Coefficients{}, fmt.Errorf("failed to parse coefficients file: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Coefficients{}, err
	}
	return c, nil
}

// YAML encodes the table in the format accepted by LoadCoefficients.
func (c Coefficients) YAML() ([]byte, error) {
	return yaml.Marshal(c)
}
