package equivalence

import (
	"math"
	"strconv"
)

// MaxItems is the number of equivalences shown for one page.
const MaxItems = 4

// Group classifies an equivalence by the domain it relates to.
type Group string

// Equivalence groups.
const (
	GroupFood      Group = "food"
	GroupTransport Group = "transport"
	GroupHome      Group = "home-energy"
	GroupNature    Group = "nature"
	GroupFlight    Group = "flight"
	GroupTech      Group = "tech"
	GroupEV        Group = "ev"
)

// Item is one rendered equivalence.
type Item struct {
	Key            string  `json:"key"`
	Icon           string  `json:"icon"`
	Group          Group   `json:"group"`
	Value          float64 `json:"value"`
	FormattedValue string  `json:"formattedValue"`
	Label          string  `json:"label"`
}

type candidate struct {
	key       string
	icon      string
	group     Group
	label     string
	quantity  func(co2 float64, f Factors) float64
	threshold float64
	format    func(v float64) string

	// skipIf names a candidate whose presence suppresses this one.
	skipIf string
}

// candidates are listed in display priority.
var candidates = []candidate{
	{
		key: "beef", icon: "🥩", group: GroupFood, label: "of beef produced",
		quantity:  func(co2 float64, f Factors) float64 { return co2 / f.BeefGramsPerKg * 1000 },
		threshold: 0.1,
		format:    formatBeef,
	},
	{
		key: "burger", icon: "🍔", group: GroupFood, label: "of a hamburger",
		quantity:  func(co2 float64, f Factors) float64 { return co2 / f.BurgerGrams },
		threshold: 0.01,
		format:    formatBurger,
	},
	{
		key: "gasoline-car", icon: "🚗", group: GroupTransport, label: "by gasoline car",
		quantity:  func(co2 float64, f Factors) float64 { return co2 / f.GasolineCarGramsPerKm * 1000 },
		threshold: 1,
		format:    formatMeters,
	},
	{
		key: "electric-car", icon: "⚡", group: GroupTransport, label: "by electric car",
		quantity:  func(co2 float64, f Factors) float64 { return co2 / f.ElectricCarGramsPerKm * 1000 },
		threshold: 1,
		format:    formatMeters,
		skipIf:    "gasoline-car",
	},
	{
		key: "home-electricity", icon: "🏠", group: GroupHome, label: "of household electricity",
		quantity:  func(co2 float64, f Factors) float64 { return co2 / f.HomeElectricityGramsDay * 1440 },
		threshold: 1,
		format:    formatMinutes,
	},
	{
		key: "tv", icon: "📺", group: GroupHome, label: "of television",
		quantity:  func(co2 float64, f Factors) float64 { return co2 / f.TVGramsPerHour * 60 },
		threshold: 1,
		format:    formatMinutes,
	},
	{
		key: "tree", icon: "🌳", group: GroupNature, label: "of tree absorption",
		quantity:  func(co2 float64, f Factors) float64 { return co2 / f.TreeGramsPerYear * 365 },
		threshold: 0.1,
		format:    formatTreeDays,
	},
	{
		key: "flight", icon: "✈️", group: GroupFlight, label: "of air travel",
		quantity:  func(co2 float64, f Factors) float64 { return co2 / f.FlightGrams * f.FlightKm },
		threshold: 0.1,
		format:    formatFlightKm,
	},
	{
		key: "smartphone", icon: "📱", group: GroupTech, label: "of a smartphone's manufacturing footprint",
		quantity:  func(co2 float64, f Factors) float64 { return co2 / f.SmartphoneGrams },
		threshold: 0.00001,
		format:    formatSmartphone,
	},
	{
		key: "ev-charge", icon: "🔋", group: GroupEV, label: "of an electric car charge",
		quantity:  func(co2 float64, f Factors) float64 { return co2 / f.EVChargeGrams * 100 },
		threshold: 0.01,
		format:    func(v float64) string { return fixed(v, 2) + "%" },
	},
}

// Renderer selects equivalences using a fixed factor table.
type Renderer struct {
	factors Factors
}

// NewRenderer creates a renderer for the given factors.
func NewRenderer(f Factors) *Renderer {
	return &Renderer{factors: f}
}

// Factors returns the table the renderer was built with.
func (r *Renderer) Factors() Factors {
	return r.factors
}

// Render returns at most MaxItems equivalences for a per-visit CO2 figure,
// in priority order, keeping only those that clear their threshold.
func (r *Renderer) Render(co2PerVisitGrams float64) []Item {
	items := make([]Item, 0, MaxItems)
	included := make(map[string]bool, MaxItems)

	for _, c := range candidates {
		if len(items) == MaxItems {
			break
		}
		if c.skipIf != "" && included[c.skipIf] {
			continue
		}
		v := c.quantity(co2PerVisitGrams, r.factors)
		if !(v >= c.threshold) {
			continue
		}
		included[c.key] = true
		items = append(items, Item{
			Key:            c.key,
			Icon:           c.icon,
			Group:          c.group,
			Value:          v,
			FormattedValue: c.format(v),
			Label:          c.label,
		})
	}
	return items
}

// Render uses DefaultFactors.
func Render(co2PerVisitGrams float64) []Item {
	return NewRenderer(DefaultFactors()).Render(co2PerVisitGrams)
}

func fixed(v float64, places int) string {
	return strconv.FormatFloat(v, 'f', places, 64)
}

func rounded(v float64) string {
	return strconv.FormatInt(int64(math.Round(v)), 10)
}

func formatBeef(g float64) string {
	if g >= 1 {
		return fixed(g, 1) + "g"
	}
	return fixed(g*1000, 0) + "mg"
}

func formatBurger(fraction float64) string {
	if fraction >= 0.1 {
		return fixed(fraction*100, 0) + "%"
	}
	return fixed(fraction*1000, 1) + "‰"
}

func formatMeters(m float64) string {
	if m >= 1000 {
		return fixed(m/1000, 1) + " km"
	}
	return rounded(m) + " m"
}

func formatMinutes(minutes float64) string {
	if minutes >= 60 {
		return fixed(minutes/60, 1) + "h"
	}
	return rounded(minutes) + "min"
}

func formatTreeDays(days float64) string {
	if days >= 1 {
		return fixed(days, 1) + " days"
	}
	return fixed(days*24, 1) + "h"
}

func formatFlightKm(km float64) string {
	if km >= 1 {
		return fixed(km, 1) + " km"
	}
	return fixed(km*1000, 0) + "m"
}

// formatSmartphone takes the fraction of one device's footprint.
func formatSmartphone(fraction float64) string {
	pct := fraction * 100
	if pct >= 0.01 {
		return fixed(pct, 2) + "%"
	}
	return fixed(pct*100, 1) + "‱"
}
