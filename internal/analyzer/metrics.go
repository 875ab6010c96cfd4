package analyzer

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Provider labels for upstream latency.
const (
	providerPageSpeed = "pagespeed"
	providerGreenWeb  = "greenweb"
	providerProbe     = "probe"
)

// strategyInvalid labels analyses whose strategy did not parse.
const strategyInvalid = "invalid"

// Metrics holds the analyzer's Prometheus collectors.
type Metrics struct {
	analyses *prometheus.CounterVec
	upstream *prometheus.HistogramVec
	co2      prometheus.Histogram
}

// NewMetrics creates the collectors and registers them on reg. A nil reg
// leaves them unregistered, which is what tests usually want.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		analyses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "webcarbon",
			Name:      "analyses_total",
			Help:      "Page analyses by strategy and outcome.",
		}, []string{"strategy", "outcome"}),
		upstream: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "webcarbon",
			Name:      "upstream_duration_seconds",
			Help:      "Latency of calls to external providers.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20, 40, 60},
		}, []string{"provider"}),
		co2: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "webcarbon",
			Name:      "co2_per_visit_grams",
			Help:      "Estimated grams of CO2e per page visit.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 0.8, 1, 2, 4},
		}),
	}
	if reg != nil {
		reg.MustRegister(m.analyses, m.upstream, m.co2)
	}
	return m
}

func (m *Metrics) observeUpstream(provider string, start time.Time) {
	m.upstream.WithLabelValues(provider).Observe(time.Since(start).Seconds())
}

func (m *Metrics) recordOutcome(strategy, outcome string) {
	m.analyses.WithLabelValues(strategy, outcome).Inc()
}
