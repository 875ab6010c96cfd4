package carbon

import (
	"math"
	"sort"
)

// Details reports transferred kilobytes per category, rounded.
type Details struct {
	HTML   int64 `json:"html"`
	CSS    int64 `json:"css"`
	JS     int64 `json:"js"`
	Images int64 `json:"images"`
	Fonts  int64 `json:"fonts"`
	Other  int64 `json:"other"`
}

func toKB(b int64) int64 {
	return int64(math.Round(float64(b) / BytesPerKB))
}

// DetailsOf converts the byte breakdown to rounded kilobytes.
func DetailsOf(r Resources) Details {
	return Details{
		HTML:   toKB(r.CategoryBytes(CategoryHTML)),
		CSS:    toKB(r.CategoryBytes(CategoryCSS)),
		JS:     toKB(r.CategoryBytes(CategoryJavaScript)),
		Images: toKB(r.CategoryBytes(CategoryImage)),
		Fonts:  toKB(r.CategoryBytes(CategoryFont)),
		Other:  toKB(r.CategoryBytes(CategoryOther)),
	}
}

// CompositionEntry is one category's share of the page weight.
type CompositionEntry struct {
	Category   ResourceCategory `json:"category"`
	KB         int64            `json:"kb"`
	Percentage float64          `json:"percentage"`
	Impact     string           `json:"impact"`
	CO2Grams   float64          `json:"co2Grams"`
}

var categoryImpact = map[ResourceCategory]string{
	CategoryImage:      "very high",
	CategoryJavaScript: "high",
	CategoryCSS:        "moderate",
	CategoryHTML:       "low",
	CategoryFont:       "moderate",
	CategoryOther:      "variable",
}

// compositionOrder breaks size ties in Composition.
var compositionOrder = []ResourceCategory{
	CategoryImage,
	CategoryJavaScript,
	CategoryCSS,
	CategoryHTML,
	CategoryFont,
	CategoryOther,
}

// Composition lists the non-empty categories by descending size, equal sizes
// following compositionOrder. Each entry's CO2 share is proportional to its
// weight in the page total.
func Composition(r Resources, co2PerVisit float64) []CompositionEntry {
	d := DetailsOf(r)
	kb := map[ResourceCategory]int64{
		CategoryHTML:       d.HTML,
		CategoryCSS:        d.CSS,
		CategoryJavaScript: d.JS,
		CategoryImage:      d.Images,
		CategoryFont:       d.Fonts,
		CategoryOther:      d.Other,
	}

	var totalKB int64
	for _, v := range kb {
		totalKB += v
	}

	sizeMB := r.SizeMB()
	entries := make([]CompositionEntry, 0, len(compositionOrder))
	for _, c := range compositionOrder {
		v := kb[c]
		if v <= 0 {
			continue
		}
		e := CompositionEntry{
			Category: c,
			KB:       v,
			Impact:   categoryImpact[c],
		}
		if totalKB > 0 {
			e.Percentage = roundTo(float64(v)/float64(totalKB)*100, 1)
		}
		if sizeMB > 0 {
			e.CO2Grams = roundTo(float64(v)/BytesPerKB*(co2PerVisit/sizeMB), 3)
		}
		entries = append(entries, e)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].KB > entries[j].KB
	})
	return entries
}
