package carbon

import "math"

// CarbonEstimator produces a carbon estimate for one audited page.
type CarbonEstimator interface {
	// Estimate derives the estimate from the audit, the hosting record and
	// the device strategy. It never fails on well-formed input.
	Estimate(perf PerformanceRecord, hosting HostingRecord, strategy Strategy) CarbonEstimate
}

// Estimator implements CarbonEstimator with a fixed coefficient table.
// It holds no mutable state and is safe for concurrent use.
type Estimator struct {
	coef  Coefficients
	rules []Rule
}

// NewEstimator creates an estimator using DefaultCoefficients.
func NewEstimator() *Estimator {
	return NewEstimatorWithCoefficients(DefaultCoefficients())
}

// NewEstimatorWithCoefficients creates an estimator for an alternate
// coefficient table. The caller is expected to have validated it.
func NewEstimatorWithCoefficients(coef Coefficients) *Estimator {
	return &Estimator{
		coef:  coef,
		rules: DefaultRules(coef),
	}
}

// Coefficients returns the table the estimator was built with.
func (e *Estimator) Coefficients() Coefficients {
	return e.coef
}

// Estimate runs the full pipeline:
//  1. CO2 per visit from transferred bytes (green hosting reduction applied)
//  2. Annual projection from the page-size traffic heuristic
//  3. Environmental score and grade
//  4. Median comparison and suggestions
func (e *Estimator) Estimate(perf PerformanceRecord, hosting HostingRecord, strategy Strategy) CarbonEstimate {
	sizeMB := perf.Resources.SizeMB()
	co2 := e.CO2PerVisit(perf.Resources.TotalBytes, hosting.IsGreen)
	visitors := e.EstimatedMonthlyVisitors(sizeMB)
	breakdown := e.ScoreBreakdown(perf.PerformanceScore, sizeMB, co2, hosting.IsGreen)
	score := clampScore(breakdown.Total())

	return CarbonEstimate{
		CO2PerVisitGrams:         co2,
		AnnualCO2Kg:              e.AnnualCO2Kg(co2, visitors),
		EstimatedMonthlyVisitors: visitors,
		EnvironmentalScore:       score,
		ScoreBreakdown:           breakdown,
		Grade:                    e.Grade(score),
		Comparison:               e.Compare(co2),
		Suggestions:              e.Suggest(perf, hosting, strategy),
	}
}

// CO2PerVisit returns grams of CO2e for one page load, rounded to 3 decimals.
// The green reduction is applied before rounding.
func (e *Estimator) CO2PerVisit(totalBytes int64, green bool) float64 {
	if totalBytes < 0 {
		totalBytes = 0
	}
	co2 := float64(totalBytes) * e.coef.CO2GramsPerByte
	if green {
		co2 *= e.coef.GreenHostingFactor
	}
	return roundTo(co2, 3)
}

// EstimatedMonthlyVisitors returns the assumed monthly traffic for a page of
// the given size. This is a heuristic, not a traffic measurement.
func (e *Estimator) EstimatedMonthlyVisitors(sizeMB float64) int {
	return int(e.coef.MonthlyVisitors.Lookup(sizeMB))
}

// AnnualCO2Kg projects the per-visit figure over a year, rounded to 2 decimals.
// Callers pass the already rounded grams from CO2PerVisit.
func (e *Estimator) AnnualCO2Kg(co2PerVisit float64, monthlyVisitors int) float64 {
	return roundTo(co2PerVisit*float64(monthlyVisitors)*MonthsPerYear/1000, 2)
}

// ScoreBreakdown computes the four additive sub-scores.
func (e *Estimator) ScoreBreakdown(performanceScore int, sizeMB, co2PerVisit float64, green bool) ScoreBreakdown {
	b := ScoreBreakdown{
		Performance: float64(performanceScore) / 100 * e.coef.PerformanceWeight,
		Size:        e.coef.SizeScore.Lookup(sizeMB),
		CO2:         e.coef.CO2Score.Lookup(co2PerVisit),
	}
	if green {
		b.GreenHosting = e.coef.GreenHostingBonus
	}
	return b
}

// Grade maps an environmental score to its letter grade.
func (e *Estimator) Grade(score int) Grade {
	for _, bp := range e.coef.Grades {
		if score >= bp.MinScore {
			return bp.Grade
		}
	}
	return e.coef.FallbackGrade
}

// clampScore bounds the raw score to [0, 100] and rounds it.
func clampScore(raw float64) int {
	return int(math.Round(math.Max(0, math.Min(MaxEnvironmentalScore, raw))))
}
