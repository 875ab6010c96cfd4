package carbon

import "fmt"

// SuggestionInput is the data a suggestion rule may inspect.
type SuggestionInput struct {
	Perf     PerformanceRecord
	Hosting  HostingRecord
	Strategy Strategy
}

// SizeMB returns the transferred page size in binary megabytes.
func (in SuggestionInput) SizeMB() float64 {
	return in.Perf.Resources.SizeMB()
}

// CategoryMB returns the bytes of one resource category in binary megabytes.
func (in SuggestionInput) CategoryMB(c ResourceCategory) float64 {
	return float64(in.Perf.Resources.CategoryBytes(c)) / BytesPerMB
}

// Rule is a pure predicate producing at most one suggestion.
type Rule struct {
	// Name identifies the rule in tests and logs.
	Name string

	// Strategy restricts the rule to one device profile; empty applies to all.
	Strategy Strategy

	// Eval returns the message and true when the rule fires.
	Eval func(in SuggestionInput) (string, bool)
}

// when builds a rule with a single fixed message.
func when(name string, strategy Strategy, pred func(SuggestionInput) bool, msg string) Rule {
	return Rule{
		Name:     name,
		Strategy: strategy,
		Eval: func(in SuggestionInput) (string, bool) {
			if pred(in) {
				return msg, true
			}
			return "", false
		},
	}
}

func always(SuggestionInput) bool { return true }

// DefaultRules returns the ordered suggestion rules. Strategy-specific rules
// precede the generic resource rules; truncation keeps the first MaxSuggestions.
func DefaultRules(coef Coefficients) []Rule {
	return []Rule{
		{
			Name: "performance",
			Eval: func(in SuggestionInput) (string, bool) {
				switch score := in.Perf.PerformanceScore; {
				case score < 50:
					return "Critical performance: urgent optimization needed", true
				case score < 75:
					return "Moderate performance: improvements recommended", true
				case score >= 90:
					return "Excellent performance: site is well optimized", true
				}
				return "", false
			},
		},

		when("mobile-size", StrategyMobile,
			func(in SuggestionInput) bool { return in.SizeMB() > 3 },
			"Mobile: drastically reduce page weight (limited 4G connections)"),
		when("mobile-fcp", StrategyMobile,
			func(in SuggestionInput) bool { return in.Perf.Metrics.FirstContentfulPaintMs > 2500 },
			"Mobile: improve first contentful paint (<2.5s)"),
		when("mobile-requests", StrategyMobile,
			func(in SuggestionInput) bool { return in.Perf.Resources.RequestCount > 50 },
			"Mobile: reduce the number of requests (<50 on mobile)"),
		when("mobile-lcp", StrategyMobile,
			func(in SuggestionInput) bool { return in.Perf.Metrics.LargestContentfulPaintMs > 4000 },
			"Mobile: improve LCP for a better mobile experience"),
		when("mobile-above-the-fold", StrategyMobile, always,
			"Mobile: prioritize above-the-fold content"),
		when("mobile-webp", StrategyMobile, always,
			"Mobile: serve responsive WebP images"),

		when("desktop-size", StrategyDesktop,
			func(in SuggestionInput) bool { return in.SizeMB() > 5 },
			"Desktop: optimize resource sizes"),
		when("desktop-fcp", StrategyDesktop,
			func(in SuggestionInput) bool { return in.Perf.Metrics.FirstContentfulPaintMs > 1500 },
			"Desktop: improve first contentful paint"),
		when("desktop-requests", StrategyDesktop,
			func(in SuggestionInput) bool { return in.Perf.Resources.RequestCount > 100 },
			"Desktop: reduce the number of HTTP requests"),
		when("desktop-tbt", StrategyDesktop,
			func(in SuggestionInput) bool { return in.Perf.Metrics.TotalBlockingTimeMs > 300 },
			"Desktop: reduce render-blocking JavaScript"),
		when("desktop-cache", StrategyDesktop, always,
			"Desktop: leverage browser caching"),
		when("desktop-fonts-css", StrategyDesktop, always,
			"Desktop: optimize fonts and CSS"),

		when("page-weight", "",
			func(in SuggestionInput) bool { return in.SizeMB() > 2 },
			"Compress images and use modern formats (WebP, AVIF)"),
		when("javascript-weight", "",
			func(in SuggestionInput) bool { return in.CategoryMB(CategoryJavaScript) > 1 },
			"Reduce and optimize JavaScript (tree-shaking, minification)"),
		when("image-weight", "",
			func(in SuggestionInput) bool { return in.CategoryMB(CategoryImage) > 1.5 },
			"Optimize images: resize, compress, lazy-load"),
		when("css-weight", "",
			func(in SuggestionInput) bool { return in.CategoryMB(CategoryCSS) > 0.3 },
			"Optimize CSS: purge unused styles"),
		when("request-count", "",
			func(in SuggestionInput) bool { return in.Perf.Resources.RequestCount > 75 },
			"Reduce the number of HTTP requests (bundling, sprites)"),
		when("green-hosting", "",
			func(in SuggestionInput) bool { return !in.Hosting.IsGreen },
			"Move to a hosting provider powered by renewable energy"),
		when("heavier-than-average", "",
			func(in SuggestionInput) bool { return in.SizeMB() > coef.WebAverageSizeMB },
			fmt.Sprintf("Your page is heavier than the web average (%sMB)", formatCoefficient(coef.WebAverageSizeMB))),
	}
}

// ApplyRules evaluates rules in order and keeps at most limit messages.
func ApplyRules(rules []Rule, in SuggestionInput, limit int) []string {
	suggestions := make([]string, 0, limit)
	for _, r := range rules {
		if len(suggestions) == limit {
			break
		}
		if r.Strategy != "" && r.Strategy != in.Strategy {
			continue
		}
		if msg, ok := r.Eval(in); ok {
			suggestions = append(suggestions, msg)
		}
	}
	return suggestions
}

// Suggest returns the ordered optimization suggestions for an audit.
func (e *Estimator) Suggest(perf PerformanceRecord, hosting HostingRecord, strategy Strategy) []string {
	return ApplyRules(e.rules, SuggestionInput{
		Perf:     perf,
		Hosting:  hosting,
		Strategy: strategy,
	}, MaxSuggestions)
}
