package carbon

import (
	"fmt"
	"math"
)

const (
	// MinProjectionVisitors and MaxProjectionVisitors bound user-supplied traffic.
	MinProjectionVisitors = 100
	MaxProjectionVisitors = 100000

	// ProjectionCarGramsPerKm is the gasoline car factor used for annual totals.
	ProjectionCarGramsPerKm = 180.0
)

// Projection scales a per-visit figure to a caller-supplied traffic level.
type Projection struct {
	MonthlyVisitors int     `json:"monthlyVisitors"`
	AnnualCO2Kg     float64 `json:"annualCo2Kg"`
	TreesToOffset   float64 `json:"treesToOffset"`
	CarKm           float64 `json:"carKm"`
	Summary         string  `json:"summary"`
}

// ClampVisitors bounds monthly visitors to the supported projection range.
func ClampVisitors(v int) int {
	return min(MaxProjectionVisitors, max(MinProjectionVisitors, v))
}

// VisitorCount converts a decoded number to a monthly visitor count in
// [0, MaxProjectionVisitors], truncating fractions. ok is false for NaN and
// infinities.
func VisitorCount(v float64) (n int, ok bool) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return int(math.Min(math.Max(v, 0), MaxProjectionVisitors)), true
}

// Project computes the annual footprint for monthlyVisitors (clamped).
func (e *Estimator) Project(co2PerVisit float64, monthlyVisitors int) Projection {
	visitors := ClampVisitors(monthlyVisitors)
	annualKg := co2PerVisit * float64(visitors) * MonthsPerYear / 1000
	treeKg := e.coef.TreeGramsPerYear / 1000

	return Projection{
		MonthlyVisitors: visitors,
		AnnualCO2Kg:     roundTo(annualKg, 1),
		TreesToOffset:   roundTo(annualKg/treeKg, 1),
		CarKm:           roundTo(annualKg*1000/ProjectionCarGramsPerKm, 0),
		Summary: fmt.Sprintf("%sg CO₂/visit × %s visitors/month × 12 months = %s kg CO₂/year",
			formatFixed(co2PerVisit, 3), formatThousands(int64(visitors)), formatFixed(annualKg, 1)),
	}
}
