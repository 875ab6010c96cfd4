// Package carbon estimates the carbon footprint of a single web page visit
// using the byte-based Sustainable Web Design model.
package carbon

const (
	// BytesPerKB is the binary kilobyte used for resource detail figures.
	BytesPerKB = 1024

	// BytesPerMB is the binary megabyte used for every page-size threshold.
	BytesPerMB = 1024 * 1024

	// CO2GramsPerByte is the emission factor applied to transferred bytes.
	// Source: Website Carbon Calculator (0.081 mg CO2e per byte).
	CO2GramsPerByte = 0.000000081

	// GreenHostingFactor scales emissions for certified green hosting (-5%).
	GreenHostingFactor = 0.95

	// WebMedianCO2Grams is the reference CO2e per visit of the median web page.
	// Source: Website Carbon Calculator 2024 median.
	WebMedianCO2Grams = 0.8

	// WebAverageSizeMB is the average transferred page weight in 2024.
	WebAverageSizeMB = 2.1

	// CarGramsPerKm is the CO2e emitted per kilometre driven, used for
	// the distance comparison.
	CarGramsPerKm = 120.0

	// TreeGramsPerYear is the CO2e a mature tree absorbs per year.
	TreeGramsPerYear = 22000.0

	// DaysPerYear assumes one visit per day when sizing tree absorption.
	DaysPerYear = 365

	// MonthsPerYear is used for annual projections.
	MonthsPerYear = 12

	// PerformanceWeight is the share of the environmental score driven by
	// the audit performance score.
	PerformanceWeight = 40.0

	// GreenHostingBonus is added to the environmental score for green hosts.
	GreenHostingBonus = 10.0

	// MaxEnvironmentalScore caps the environmental score.
	MaxEnvironmentalScore = 100.0

	// MaxSuggestions limits the suggestion list.
	MaxSuggestions = 8
)
