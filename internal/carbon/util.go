package carbon

import (
	"math"
	"strconv"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// printer formats numbers with English thousand separators.
//
//nolint:gochecknoglobals // Global printer is idiomatic for x/text/message usage.
var printer = message.NewPrinter(language.English)

// roundTo rounds f half away from zero to the given number of decimals.
func roundTo(f float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(f*p) / p
}

// formatFixed formats f with exactly the given number of decimals.
func formatFixed(f float64, places int) string {
	return strconv.FormatFloat(roundTo(f, places), 'f', places, 64)
}

// formatThousands formats an integer with thousand separators.
func formatThousands(n int64) string {
	return printer.Sprintf("%d", n)
}
