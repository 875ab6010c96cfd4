// Package analyzer runs one page analysis end to end: URL checks, the
// concurrent provider calls, the carbon estimate and the derived views.
package analyzer

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/Kevdacosta07/CarbWeb/internal/carbon"
	"github.com/Kevdacosta07/CarbWeb/internal/equivalence"
	"github.com/Kevdacosta07/CarbWeb/internal/greenweb"
	"github.com/Kevdacosta07/CarbWeb/internal/logging"
	"github.com/Kevdacosta07/CarbWeb/internal/pagespeed"
	"github.com/Kevdacosta07/CarbWeb/internal/urlcheck"
)

// Prober is the reachability check run before the audit.
type Prober interface {
	CheckExists(ctx context.Context, normalizedURL string) urlcheck.ProbeResult
}

// Request is one analysis request.
type Request struct {
	URL      string
	Strategy string

	// MonthlyVisitors enables the custom traffic projection when positive.
	MonthlyVisitors int
}

// Result is the assembled analysis. The carbon estimate fields are inlined
// next to the echoed url and strategy.
type Result struct {
	URL      string          `json:"url"`
	Strategy carbon.Strategy `json:"strategy"`

	carbon.CarbonEstimate

	StrategyDescription string                    `json:"strategyDescription"`
	URLInfo             urlcheck.URLInfo          `json:"urlInfo"`
	PerformanceScore    int                       `json:"performanceScore"`
	PerformanceMetrics  carbon.Metrics            `json:"performanceMetrics"`
	Resources           carbon.Resources          `json:"resources"`
	TotalSizeMB         float64                   `json:"totalSizeMB"`
	Details             carbon.Details            `json:"details"`
	Hosting             carbon.HostingRecord      `json:"hosting"`
	HostingChecked      bool                      `json:"hostingChecked"`
	Equivalences        []equivalence.Item        `json:"equivalences"`
	Vitals              []carbon.VitalAssessment  `json:"vitals"`
	VitalsScore         int                       `json:"vitalsScore"`
	Composition         []carbon.CompositionEntry `json:"composition"`
	Projection          *carbon.Projection        `json:"projection,omitempty"`
	AnalyzedAt          time.Time                 `json:"analyzedAt"`
}

// Analyzer wires the adapters to the estimation engine. It holds no
// per-request state and is safe for concurrent use.
type Analyzer struct {
	perf      pagespeed.Fetcher
	hosting   greenweb.Checker
	prober    Prober
	skipProbe bool
	estimator *carbon.Estimator
	renderer  *equivalence.Renderer
	metrics   *Metrics
	logger    zerolog.Logger
	now       func() time.Time
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithProber replaces the default reachability prober.
func WithProber(p Prober) Option {
	return func(a *Analyzer) { a.prober = p }
}

// WithoutProbe disables the reachability check.
func WithoutProbe() Option {
	return func(a *Analyzer) { a.skipProbe = true }
}

// WithEstimator replaces the default estimator.
func WithEstimator(e *carbon.Estimator) Option {
	return func(a *Analyzer) { a.estimator = e }
}

// WithRenderer replaces the default equivalence renderer.
func WithRenderer(r *equivalence.Renderer) Option {
	return func(a *Analyzer) { a.renderer = r }
}

// WithMetrics records analyses on m.
func WithMetrics(m *Metrics) Option {
	return func(a *Analyzer) { a.metrics = m }
}

// WithClock overrides time.Now for AnalyzedAt.
func WithClock(now func() time.Time) Option {
	return func(a *Analyzer) { a.now = now }
}

// New creates an Analyzer over the two provider adapters.
func New(perf pagespeed.Fetcher, hosting greenweb.Checker, logger zerolog.Logger, opts ...Option) *Analyzer {
	a := &Analyzer{
		perf:    perf,
		hosting: hosting,
		logger:  logger.With().Str(logging.FieldComponent, "analyzer").Logger(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.prober == nil {
		a.prober = urlcheck.NewProber(logger)
	}
	if a.estimator == nil {
		a.estimator = carbon.NewEstimator()
	}
	if a.renderer == nil {
		a.renderer = equivalence.NewRenderer(equivalence.DefaultFactors())
	}
	if a.metrics == nil {
		a.metrics = NewMetrics(nil)
	}
	return a
}

// Analyze runs the full pipeline for one URL. Failures are returned as
// *Error values whose Kind tells transports how to report them.
func (a *Analyzer) Analyze(ctx context.Context, req Request) (*Result, error) {
	ctx, traceID := logging.EnsureTraceID(ctx)
	log := a.logger.With().Str(logging.FieldTraceID, traceID).Logger()
	start := time.Now()

	res, err := a.analyze(ctx, req, log)

	strategy := strategyLabel(res, req.Strategy)
	if err != nil {
		kind := KindOf(err)
		a.metrics.recordOutcome(strategy, string(kind))
		log.Warn().
			Err(err).
			Str("url", req.URL).
			Str("kind", string(kind)).
			Str(logging.FieldOperation, opOf(err)).
			Int64(logging.FieldDuration, time.Since(start).Milliseconds()).
			Msg("analysis failed")
		return nil, err
	}

	a.metrics.recordOutcome(strategy, "success")
	a.metrics.co2.Observe(res.CO2PerVisitGrams)
	log.Info().
		Str("url", res.URL).
		Str("strategy", string(res.Strategy)).
		Float64("co2_per_visit_g", res.CO2PerVisitGrams).
		Str("grade", string(res.Grade)).
		Bool("green", res.Hosting.IsGreen).
		Int64(logging.FieldDuration, time.Since(start).Milliseconds()).
		Msg("analysis completed")
	return res, nil
}

func (a *Analyzer) analyze(ctx context.Context, req Request, log zerolog.Logger) (*Result, error) {
	if strings.TrimSpace(req.URL) == "" {
		return nil, &Error{Kind: KindInput, Op: "validate", Err: ErrMissingURL}
	}
	strategy, err := carbon.ParseStrategy(req.Strategy)
	if err != nil {
		return nil, &Error{Kind: KindInput, Op: "validate", Err: err}
	}

	pageURL := urlcheck.Normalize(req.URL)
	if !urlcheck.IsValid(pageURL) {
		return nil, &Error{Kind: KindInput, Op: "validate", Err: ErrInvalidURL}
	}
	if urlcheck.IsTestDomain(pageURL) {
		return nil, &Error{Kind: KindInput, Op: "validate", Err: ErrTestDomain}
	}
	info := urlcheck.Classify(pageURL)

	if !a.skipProbe {
		if err := a.probe(ctx, pageURL); err != nil {
			return nil, err
		}
	}

	perf, hosting, err := a.collect(ctx, pageURL, strategy)
	if err != nil {
		return nil, err
	}
	if hosting.Err != nil {
		log.Debug().Err(hosting.Err).Msg("hosting check failed, treated as not green")
	}

	estimate := a.estimator.Estimate(perf, hosting.Record, strategy)
	res := &Result{
		URL:                 pageURL,
		Strategy:            strategy,
		CarbonEstimate:      estimate,
		StrategyDescription: strategy.Description(),
		URLInfo:             info,
		PerformanceScore:    perf.PerformanceScore,
		PerformanceMetrics:  perf.Metrics,
		Resources:           perf.Resources,
		TotalSizeMB:         roundTo2(perf.Resources.SizeMB()),
		Details:             carbon.DetailsOf(perf.Resources),
		Hosting:             hosting.Record,
		HostingChecked:      hosting.Checked,
		Equivalences:        a.renderer.Render(estimate.CO2PerVisitGrams),
		Vitals:              carbon.AssessVitals(perf.Metrics),
		VitalsScore:         carbon.VitalsScore(perf.Metrics),
		Composition:         carbon.Composition(perf.Resources, estimate.CO2PerVisitGrams),
		AnalyzedAt:          a.now().UTC(),
	}
	if req.MonthlyVisitors > 0 {
		p := a.estimator.Project(estimate.CO2PerVisitGrams, req.MonthlyVisitors)
		res.Projection = &p
	}
	return res, nil
}

func (a *Analyzer) probe(ctx context.Context, pageURL string) error {
	start := time.Now()
	pr := a.prober.CheckExists(ctx, pageURL)
	a.metrics.observeUpstream(providerProbe, start)

	switch pr.Outcome {
	case urlcheck.OutcomeReachable:
		return nil
	case urlcheck.OutcomeTimeout:
		return &Error{Kind: KindTimeout, Op: "probe", Err: ErrSiteTooSlow}
	case urlcheck.OutcomeUnresolvable:
		return &Error{Kind: KindInput, Op: "probe", Err: ErrNotFound}
	case urlcheck.OutcomeInvalid:
		return &Error{Kind: KindInput, Op: "probe", Err: ErrInvalidURL}
	default:
		return &Error{Kind: KindInput, Op: "probe", Err: ErrUnreachable}
	}
}

// collect runs the performance audit and the hosting check concurrently.
// Only the audit can fail the analysis.
func (a *Analyzer) collect(ctx context.Context, pageURL string, strategy carbon.Strategy) (carbon.PerformanceRecord, greenweb.HostingResult, error) {
	var (
		perf    carbon.PerformanceRecord
		hosting greenweb.HostingResult
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		start := time.Now()
		defer a.metrics.observeUpstream(providerPageSpeed, start)

		rec, err := a.perf.Fetch(gCtx, pageURL, strategy)
		if err != nil {
			return classifyFetchError(err)
		}
		perf = rec
		return nil
	})
	g.Go(func() error {
		start := time.Now()
		defer a.metrics.observeUpstream(providerGreenWeb, start)

		hosting = a.hosting.Check(gCtx, pageURL)
		return nil
	})

	if err := g.Wait(); err != nil {
		return carbon.PerformanceRecord{}, greenweb.HostingResult{}, err
	}
	return perf, hosting, nil
}

// strategyLabel keeps the metric label within the known strategies so
// request input cannot create new series.
func strategyLabel(res *Result, raw string) string {
	if res != nil {
		return string(res.Strategy)
	}
	if s, err := carbon.ParseStrategy(raw); err == nil {
		return string(s)
	}
	return strategyInvalid
}

func classifyFetchError(err error) error {
	if errors.Is(err, pagespeed.ErrMissingAPIKey) {
		return &Error{Kind: KindConfig, Op: "pagespeed", Err: err}
	}
	return &Error{Kind: KindUpstream, Op: "pagespeed", Err: err}
}

func opOf(err error) string {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Op
	}
	return ""
}

func roundTo2(f float64) float64 {
	return math.Round(f*100) / 100
}
