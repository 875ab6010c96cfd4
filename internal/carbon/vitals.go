package carbon

import (
	"fmt"
	"math"
)

// VitalStatus is the assessment of a single Web Vital.
type VitalStatus string

const (
	VitalGood             VitalStatus = "good"
	VitalNeedsImprovement VitalStatus = "needs-improvement"
	VitalPoor             VitalStatus = "poor"
)

// VitalAssessment is one assessed Web Vital.
type VitalAssessment struct {
	Key            string      `json:"key"`
	Name           string      `json:"name"`
	Value          float64     `json:"value"`
	Unit           string      `json:"unit"`
	Status         VitalStatus `json:"status"`
	FormattedValue string      `json:"formattedValue"`
	Good           float64     `json:"good"`
	NeedsWork      float64     `json:"needsWork"`
}

type vitalThreshold struct {
	key, name, unit string
	good, needsWork float64
}

var (
	fcpThreshold = vitalThreshold{"fcp", "First Contentful Paint", "ms", 1800, 3000}
	lcpThreshold = vitalThreshold{"lcp", "Largest Contentful Paint", "ms", 2500, 4000}
	tbtThreshold = vitalThreshold{"tbt", "Total Blocking Time", "ms", 200, 600}
	clsThreshold = vitalThreshold{"cls", "Cumulative Layout Shift", "", 0.1, 0.25}
	siThreshold  = vitalThreshold{"speedIndex", "Speed Index", "ms", 3400, 5800}
	ttiThreshold = vitalThreshold{"interactiveTime", "Time to Interactive", "ms", 3800, 7300}
)

func (t vitalThreshold) assess(v float64) VitalAssessment {
	status := VitalPoor
	switch {
	case v <= t.good:
		status = VitalGood
	case v <= t.needsWork:
		status = VitalNeedsImprovement
	}

	formatted := formatFixed(v, 3)
	if t.unit != "" {
		formatted = fmt.Sprintf("%d %s", int64(math.Round(v)), t.unit)
	}

	return VitalAssessment{
		Key:            t.key,
		Name:           t.name,
		Value:          v,
		Unit:           t.unit,
		Status:         status,
		FormattedValue: formatted,
		Good:           t.good,
		NeedsWork:      t.needsWork,
	}
}

// AssessVitals rates each Web Vital against the Core Web Vitals thresholds.
// Speed Index and Time to Interactive are included only when reported.
func AssessVitals(m Metrics) []VitalAssessment {
	out := []VitalAssessment{
		fcpThreshold.assess(m.FirstContentfulPaintMs),
		lcpThreshold.assess(m.LargestContentfulPaintMs),
		tbtThreshold.assess(m.TotalBlockingTimeMs),
		clsThreshold.assess(m.CumulativeLayoutShift),
	}
	if m.SpeedIndexMs != nil && *m.SpeedIndexMs > 0 {
		out = append(out, siThreshold.assess(*m.SpeedIndexMs))
	}
	if m.TimeToInteractiveMs != nil && *m.TimeToInteractiveMs > 0 {
		out = append(out, ttiThreshold.assess(*m.TimeToInteractiveMs))
	}
	return out
}

// bandScore returns 100, 75, 50 or 25 depending on which limit v stays under.
func bandScore(v float64, limits [3]float64) int {
	switch {
	case v <= limits[0]:
		return 100
	case v <= limits[1]:
		return 75
	case v <= limits[2]:
		return 50
	default:
		return 25
	}
}

// VitalsScore estimates a 0-100 performance score from the Web Vitals alone.
// Paint metrics are only counted when measured.
func VitalsScore(m Metrics) int {
	total, count := 0, 0
	if m.FirstContentfulPaintMs > 0 {
		total += bandScore(m.FirstContentfulPaintMs, [3]float64{1800, 3000, 5000})
		count++
	}
	if m.LargestContentfulPaintMs > 0 {
		total += bandScore(m.LargestContentfulPaintMs, [3]float64{2500, 4000, 6000})
		count++
	}
	if m.TotalBlockingTimeMs >= 0 {
		total += bandScore(m.TotalBlockingTimeMs, [3]float64{200, 600, 1000})
		count++
	}
	if m.CumulativeLayoutShift >= 0 {
		total += bandScore(m.CumulativeLayoutShift, [3]float64{0.1, 0.25, 0.5})
		count++
	}
	if count == 0 {
		return 0
	}
	return int(math.Round(float64(total) / float64(count)))
}
