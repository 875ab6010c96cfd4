package carbon

import (
	"fmt"
	"math"
)

// medianBand describes ratios up to max (inclusive).
type medianBand struct {
	max      float64
	describe func(ratio float64, c Coefficients) string
}

func lessThanMedian(ratio float64, _ Coefficients) string {
	return fmt.Sprintf("%d%% less polluting than the web median", int(math.Round((1-ratio)*100)))
}

func moreThanMedian(ratio float64, _ Coefficients) string {
	return fmt.Sprintf("%d%% more polluting than the web median", int(math.Round((ratio-1)*100)))
}

// medianBands is evaluated in order; the last band is unbounded.
var medianBands = []medianBand{
	{max: 0.3, describe: lessThanMedian},
	{max: 0.5, describe: func(float64, Coefficients) string {
		return "50% less polluting than the web median"
	}},
	{max: 0.7, describe: lessThanMedian},
	{max: 0.9, describe: lessThanMedian},
	{max: 1.1, describe: func(_ float64, c Coefficients) string {
		return fmt.Sprintf("Close to the web median (%sg CO₂)", formatCoefficient(c.WebMedianCO2Grams))
	}},
	{max: 1.5, describe: moreThanMedian},
	{max: 2, describe: moreThanMedian},
	{max: 3, describe: func(ratio float64, _ Coefficients) string {
		return formatFixed(ratio, 1) + "x more polluting than the web median"
	}},
	{max: math.Inf(1), describe: func(ratio float64, _ Coefficients) string {
		return fmt.Sprintf("%dx more polluting than the web median", int(math.Round(ratio)))
	}},
}

// MedianStatement compares a per-visit figure with the web median.
func (e *Estimator) MedianStatement(co2PerVisit float64) string {
	ratio := co2PerVisit / e.coef.WebMedianCO2Grams
	for _, b := range medianBands {
		if ratio <= b.max {
			return b.describe(ratio, e.coef)
		}
	}
	// NaN ratios fall through every band.
	return medianBands[len(medianBands)-1].describe(ratio, e.coef)
}

// Compare builds the comparison block for a per-visit figure.
//
// EquivalentDistanceKm follows co2 / CarGramsPerKm × 1000 and
// TreesNeededPerYear assumes one visit per day over a year.
func (e *Estimator) Compare(co2PerVisit float64) Comparison {
	return Comparison{
		VsMedianStatement:    e.MedianStatement(co2PerVisit),
		EquivalentDistanceKm: roundTo(co2PerVisit/e.coef.CarGramsPerKm*1000, 3),
		TreesNeededPerYear:   roundTo(co2PerVisit*DaysPerYear/e.coef.TreeGramsPerYear, 3),
	}
}

// formatCoefficient prints a reference value without trailing zeros.
func formatCoefficient(f float64) string {
	return fmt.Sprintf("%g", f)
}
