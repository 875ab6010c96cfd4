package carbon

import (
	"fmt"
	"strings"
)

// Strategy is the device profile used by the performance audit.
type Strategy string

const (
	// StrategyMobile audits the page as a throttled mobile device.
	StrategyMobile Strategy = "mobile"

	// StrategyDesktop audits the page as a desktop browser.
	StrategyDesktop Strategy = "desktop"
)

// ParseStrategy maps user input to a Strategy. Empty input selects mobile.
func ParseStrategy(s string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(StrategyMobile):
		return StrategyMobile, nil
	case string(StrategyDesktop):
		return StrategyDesktop, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidStrategy, s)
	}
}

// Description returns a short label of the device conditions.
func (s Strategy) Description() string {
	if s == StrategyDesktop {
		return "Wired connection, large screen"
	}
	return "4G connection, touch screen"
}

// ResourceCategory groups transferred resources by type.
type ResourceCategory string

// Resource categories reported by the performance adapter.
const (
	CategoryHTML       ResourceCategory = "html"
	CategoryCSS        ResourceCategory = "css"
	CategoryJavaScript ResourceCategory = "javascript"
	CategoryImage      ResourceCategory = "image"
	CategoryFont       ResourceCategory = "font"
	CategoryOther      ResourceCategory = "other"
)

// Categories lists every ResourceCategory in display order.
var Categories = []ResourceCategory{
	CategoryHTML,
	CategoryCSS,
	CategoryJavaScript,
	CategoryImage,
	CategoryFont,
	CategoryOther,
}

// Metrics holds the Web Vitals timings of one audit. Absent values are zero.
type Metrics struct {
	// FirstContentfulPaintMs is the First Contentful Paint in milliseconds.
	FirstContentfulPaintMs float64 `json:"firstContentfulPaintMs"`

	// LargestContentfulPaintMs is the Largest Contentful Paint in milliseconds.
	LargestContentfulPaintMs float64 `json:"largestContentfulPaintMs"`

	// CumulativeLayoutShift is unitless; zero means no shift detected.
	CumulativeLayoutShift float64 `json:"cumulativeLayoutShift"`

	// TotalBlockingTimeMs is the Total Blocking Time in milliseconds.
	TotalBlockingTimeMs float64 `json:"totalBlockingTimeMs"`

	// SpeedIndexMs is nil when the audit did not report it.
	SpeedIndexMs *float64 `json:"speedIndexMs,omitempty"`

	// TimeToInteractiveMs is nil when the audit did not report it.
	TimeToInteractiveMs *float64 `json:"timeToInteractiveMs,omitempty"`
}

// Resources describes what the page transferred.
type Resources struct {
	// TotalBytes is the total transfer size. It may exceed the breakdown sum
	// when only raw request sizes were available.
	TotalBytes int64 `json:"totalBytes"`

	// RequestCount is the number of network requests.
	RequestCount int `json:"requestCount"`

	// BreakdownBytes maps categories to transferred bytes.
	BreakdownBytes map[ResourceCategory]int64 `json:"breakdownBytes"`
}

// CategoryBytes returns the bytes transferred for a category.
func (r Resources) CategoryBytes(c ResourceCategory) int64 {
	return r.BreakdownBytes[c]
}

// SizeMB returns TotalBytes in binary megabytes.
func (r Resources) SizeMB() float64 {
	return float64(r.TotalBytes) / BytesPerMB
}

// PerformanceRecord is the flattened result of a performance audit.
type PerformanceRecord struct {
	// PerformanceScore is the audit performance score, 0-100.
	PerformanceScore int `json:"performanceScore"`

	Metrics   Metrics   `json:"metrics"`
	Resources Resources `json:"resources"`
}

// HostingRecord is the reduced answer of the green hosting registry.
type HostingRecord struct {
	IsGreen         bool   `json:"isGreen"`
	ProviderName    string `json:"providerName,omitempty"`
	ProviderWebsite string `json:"providerWebsite,omitempty"`
	Partner         string `json:"partner,omitempty"`
}

// Grade is the letter grade derived from the environmental score.
type Grade string

// Grades from best to worst.
const (
	GradeAPlus Grade = "A+"
	GradeA     Grade = "A"
	GradeB     Grade = "B"
	GradeC     Grade = "C"
	GradeD     Grade = "D"
	GradeF     Grade = "F"
)

// ScoreBreakdown records the additive parts of the environmental score.
type ScoreBreakdown struct {
	Performance  float64 `json:"performance"`
	Size         float64 `json:"size"`
	CO2          float64 `json:"co2"`
	GreenHosting float64 `json:"greenHosting"`
}

// Total returns the unclamped sum of the sub-scores.
func (b ScoreBreakdown) Total() float64 {
	return b.Performance + b.Size + b.CO2 + b.GreenHosting
}

// Comparison relates a visit's emissions to familiar references.
type Comparison struct {
	// VsMedianStatement compares the visit against the web median.
	VsMedianStatement string `json:"vsMedianStatement"`

	// EquivalentDistanceKm is co2 / CarGramsPerKm × 1000, rounded to 3 decimals.
	EquivalentDistanceKm float64 `json:"equivalentDistanceKm"`

	// TreesNeededPerYear is the number of trees absorbing one daily visit for a year.
	TreesNeededPerYear float64 `json:"treesNeededPerYear"`
}

// CarbonEstimate is the output of the estimation engine.
type CarbonEstimate struct {
	// CO2PerVisitGrams is rounded to 3 decimals.
	CO2PerVisitGrams float64 `json:"co2PerVisitGrams"`

	// AnnualCO2Kg is rounded to 2 decimals.
	AnnualCO2Kg float64 `json:"annualCo2Kg"`

	// EstimatedMonthlyVisitors is the page-size traffic heuristic used for
	// AnnualCO2Kg. It is not a measurement.
	EstimatedMonthlyVisitors int `json:"estimatedMonthlyVisitors"`

	EnvironmentalScore int            `json:"environmentalScore"`
	ScoreBreakdown     ScoreBreakdown `json:"scoreBreakdown"`
	Grade              Grade          `json:"grade"`
	Comparison         Comparison     `json:"comparison"`
	Suggestions        []string       `json:"suggestions"`
}
