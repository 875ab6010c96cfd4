package analyzer

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"

	"github.com/Kevdacosta07/CarbWeb/internal/carbon"
	"github.com/Kevdacosta07/CarbWeb/internal/greenweb"
	"github.com/Kevdacosta07/CarbWeb/internal/pagespeed"
	"github.com/Kevdacosta07/CarbWeb/internal/urlcheck"
)

type fakeFetcher struct {
	fetch func(ctx context.Context, url string, s carbon.Strategy) (carbon.PerformanceRecord, error)
	calls int
}

func (f *fakeFetcher) Fetch(ctx context.Context, url string, s carbon.Strategy) (carbon.PerformanceRecord, error) {
	f.calls++
	return f.fetch(ctx, url, s)
}

type fakeChecker func(ctx context.Context, url string) greenweb.HostingResult

func (f fakeChecker) Check(ctx context.Context, url string) greenweb.HostingResult {
	return f(ctx, url)
}

type fakeProber urlcheck.ProbeResult

func (f fakeProber) CheckExists(context.Context, string) urlcheck.ProbeResult {
	return urlcheck.ProbeResult(f)
}

var reachable = fakeProber{Exists: true, Outcome: urlcheck.OutcomeReachable}

func sampleRecord() carbon.PerformanceRecord {
	return carbon.PerformanceRecord{
		PerformanceScore: 80,
		Metrics: carbon.Metrics{
			FirstContentfulPaintMs:   1500,
			LargestContentfulPaintMs: 2400,
			TotalBlockingTimeMs:      100,
			CumulativeLayoutShift:    0.02,
		},
		Resources: carbon.Resources{
			TotalBytes:   2_500_000,
			RequestCount: 45,
			BreakdownBytes: map[carbon.ResourceCategory]int64{
				carbon.CategoryImage:      1_500_000,
				carbon.CategoryJavaScript: 700_000,
				carbon.CategoryHTML:       300_000,
			},
		},
	}
}

func okFetcher() *fakeFetcher {
	return &fakeFetcher{fetch: func(context.Context, string, carbon.Strategy) (carbon.PerformanceRecord, error) {
		return sampleRecord(), nil
	}}
}

func greenChecker(green bool) fakeChecker {
	return func(context.Context, string) greenweb.HostingResult {
		return greenweb.HostingResult{
			Record:  carbon.HostingRecord{IsGreen: green, ProviderName: "GreenHost"},
			Checked: true,
		}
	}
}

func TestAnalyzer_Analyze(t *testing.T) {
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	metrics := NewMetrics(prometheus.NewRegistry())
	fetcher := okFetcher()
	a := New(fetcher, greenChecker(true), zerolog.Nop(),
		WithProber(reachable), WithMetrics(metrics), WithClock(func() time.Time { return fixed }))

	res, err := a.Analyze(context.Background(), Request{URL: "www.site.io"})
	require.NoError(t, err)

	assert.Equal(t, "https://www.site.io/", res.URL)
	assert.Equal(t, carbon.StrategyMobile, res.Strategy)
	assert.Equal(t, "4G connection, touch screen", res.StrategyDescription)
	assert.Equal(t, urlcheck.PageHomepage, res.URLInfo.Type)

	assert.Equal(t, 0.192, res.CO2PerVisitGrams)
	assert.Equal(t, 5000, res.EstimatedMonthlyVisitors)
	assert.Equal(t, 11.52, res.AnnualCO2Kg)
	assert.Equal(t, 82, res.EnvironmentalScore)
	assert.Equal(t, carbon.GradeA, res.Grade)
	assert.LessOrEqual(t, len(res.Suggestions), carbon.MaxSuggestions)

	assert.Equal(t, 80, res.PerformanceScore)
	assert.Equal(t, 2.38, res.TotalSizeMB)
	assert.True(t, res.Hosting.IsGreen)
	assert.True(t, res.HostingChecked)
	require.NotEmpty(t, res.Equivalences)
	assert.Equal(t, "beef", res.Equivalences[0].Key)
	assert.Len(t, res.Vitals, 4)
	assert.Equal(t, carbon.CategoryImage, res.Composition[0].Category)
	assert.Nil(t, res.Projection)
	assert.Equal(t, fixed, res.AnalyzedAt)

	assert.Equal(t, 1, fetcher.calls)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.analyses.WithLabelValues("mobile", "success")))
}

func TestAnalyzer_Analyze_Projection(t *testing.T) {
	a := New(okFetcher(), greenChecker(false), zerolog.Nop(), WithProber(reachable))

	res, err := a.Analyze(context.Background(), Request{URL: "https://site.io", Strategy: "desktop", MonthlyVisitors: 25000})
	require.NoError(t, err)

	assert.Equal(t, carbon.StrategyDesktop, res.Strategy)
	require.NotNil(t, res.Projection)
	assert.Equal(t, 25000, res.Projection.MonthlyVisitors)
	assert.Equal(t, 0.202, res.CO2PerVisitGrams)
}

func TestAnalyzer_Analyze_InputErrors(t *testing.T) {
	tests := []struct {
		name    string
		req     Request
		wantErr error
	}{
		{"missing url", Request{URL: "   "}, ErrMissingURL},
		{"unparseable url", Request{URL: "http://"}, ErrInvalidURL},
		{"test domain", Request{URL: "example.com"}, ErrTestDomain},
		{"localhost", Request{URL: "http://localhost:3000/x"}, ErrTestDomain},
		{"bad strategy", Request{URL: "site.io", Strategy: "tablet"}, carbon.ErrInvalidStrategy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fetcher := okFetcher()
			a := New(fetcher, greenChecker(true), zerolog.Nop(), WithProber(reachable))

			res, err := a.Analyze(context.Background(), tt.req)

			assert.Nil(t, res)
			require.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, KindInput, KindOf(err))
			assert.Equal(t, http.StatusBadRequest, KindOf(err).HTTPStatus())
			assert.Zero(t, fetcher.calls)
		})
	}
}

func TestAnalyzer_Analyze_StrategyLabelIsBounded(t *testing.T) {
	metrics := NewMetrics(prometheus.NewRegistry())
	a := New(okFetcher(), greenChecker(true), zerolog.Nop(), WithProber(reachable), WithMetrics(metrics))

	for i := 0; i < 200; i++ {
		_, err := a.Analyze(context.Background(), Request{URL: "site.io", Strategy: fmt.Sprintf("junk-%d", i)})
		require.ErrorIs(t, err, carbon.ErrInvalidStrategy)
	}
	_, err := a.Analyze(context.Background(), Request{URL: "", Strategy: "Desktop"})
	require.ErrorIs(t, err, ErrMissingURL)

	assert.Equal(t, 2, testutil.CollectAndCount(metrics.analyses))
	assert.Equal(t, 200.0, testutil.ToFloat64(metrics.analyses.WithLabelValues(strategyInvalid, string(KindInput))))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.analyses.WithLabelValues("desktop", string(KindInput))))
}

func TestAnalyzer_Analyze_ProbeOutcomes(t *testing.T) {
	tests := []struct {
		outcome  urlcheck.Outcome
		wantKind Kind
		wantMsg  string
	}{
		{urlcheck.OutcomeTimeout, KindTimeout, "site too slow to respond"},
		{urlcheck.OutcomeUnresolvable, KindInput, "site unreachable or does not exist"},
		{urlcheck.OutcomeUnreachable, KindInput, "site unreachable"},
		{urlcheck.OutcomeInvalid, KindInput, "invalid URL"},
	}

	for _, tt := range tests {
		t.Run(string(tt.outcome), func(t *testing.T) {
			fetcher := okFetcher()
			a := New(fetcher, greenChecker(true), zerolog.Nop(),
				WithProber(fakeProber{Outcome: tt.outcome}))

			_, err := a.Analyze(context.Background(), Request{URL: "site.io"})

			require.Error(t, err)
			assert.Equal(t, tt.wantKind, KindOf(err))
			assert.Equal(t, tt.wantMsg, err.Error())
			assert.Equal(t, http.StatusBadRequest, KindOf(err).HTTPStatus())
			assert.Zero(t, fetcher.calls)
		})
	}
}

type panicProber struct{ t *testing.T }

func (p panicProber) CheckExists(context.Context, string) urlcheck.ProbeResult {
	p.t.Error("probe must not run")
	return urlcheck.ProbeResult{}
}

func TestAnalyzer_Analyze_WithoutProbe(t *testing.T) {
	a := New(okFetcher(), greenChecker(true), zerolog.Nop(), WithProber(panicProber{t}), WithoutProbe())

	_, err := a.Analyze(context.Background(), Request{URL: "site.io"})

	require.NoError(t, err)
}

func TestAnalyzer_Analyze_FetchErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantKind   Kind
		wantStatus int
		wantCode   codes.Code
	}{
		{"missing key", pagespeed.ErrMissingAPIKey, KindConfig, http.StatusInternalServerError, codes.FailedPrecondition},
		{"provider error", &pagespeed.ProviderError{StatusCode: 429, Message: "quota"}, KindUpstream, http.StatusInternalServerError, codes.Unavailable},
		{"transport error", errors.New("connection reset"), KindUpstream, http.StatusInternalServerError, codes.Unavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			metrics := NewMetrics(prometheus.NewRegistry())
			fetcher := &fakeFetcher{fetch: func(context.Context, string, carbon.Strategy) (carbon.PerformanceRecord, error) {
				return carbon.PerformanceRecord{}, tt.err
			}}
			a := New(fetcher, greenChecker(true), zerolog.Nop(), WithProber(reachable), WithMetrics(metrics))

			_, err := a.Analyze(context.Background(), Request{URL: "site.io"})

			require.ErrorIs(t, err, tt.err)
			assert.Equal(t, tt.wantKind, KindOf(err))
			assert.Equal(t, tt.wantStatus, KindOf(err).HTTPStatus())
			assert.Equal(t, tt.wantCode, KindOf(err).GRPCCode())
			assert.Equal(t, 1.0, testutil.ToFloat64(metrics.analyses.WithLabelValues("mobile", string(tt.wantKind))))
		})
	}
}

func TestAnalyzer_Analyze_ProviderErrorIsReachable(t *testing.T) {
	fetcher := &fakeFetcher{fetch: func(context.Context, string, carbon.Strategy) (carbon.PerformanceRecord, error) {
		return carbon.PerformanceRecord{}, &pagespeed.ProviderError{StatusCode: 500, Message: "boom"}
	}}
	a := New(fetcher, greenChecker(true), zerolog.Nop(), WithProber(reachable))

	_, err := a.Analyze(context.Background(), Request{URL: "site.io"})

	var perr *pagespeed.ProviderError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, 500, perr.StatusCode)
}

func TestAnalyzer_Analyze_HostingFailureIsAbsorbed(t *testing.T) {
	failing := fakeChecker(func(context.Context, string) greenweb.HostingResult {
		return greenweb.HostingResult{Err: errors.New("registry down")}
	})
	a := New(okFetcher(), failing, zerolog.Nop(), WithProber(reachable))

	res, err := a.Analyze(context.Background(), Request{URL: "site.io"})
	require.NoError(t, err)

	assert.False(t, res.Hosting.IsGreen)
	assert.False(t, res.HostingChecked)
	assert.Equal(t, 0.202, res.CO2PerVisitGrams)
	assert.Contains(t, res.Suggestions, "Move to a hosting provider powered by renewable energy")
}

func TestAnalyzer_Analyze_AdaptersRunConcurrently(t *testing.T) {
	hostingStarted := make(chan struct{})
	fetcher := &fakeFetcher{fetch: func(ctx context.Context, _ string, _ carbon.Strategy) (carbon.PerformanceRecord, error) {
		select {
		case <-hostingStarted:
			return sampleRecord(), nil
		case <-time.After(2 * time.Second):
			return carbon.PerformanceRecord{}, errors.New("hosting check never started")
		}
	}}
	checker := fakeChecker(func(context.Context, string) greenweb.HostingResult {
		close(hostingStarted)
		return greenweb.HostingResult{Checked: true}
	})
	a := New(fetcher, checker, zerolog.Nop(), WithProber(reachable))

	_, err := a.Analyze(context.Background(), Request{URL: "site.io"})

	require.NoError(t, err)
}

func TestKind_Mappings(t *testing.T) {
	tests := []struct {
		kind       Kind
		wantStatus int
		wantCode   codes.Code
	}{
		{KindInput, http.StatusBadRequest, codes.InvalidArgument},
		{KindTimeout, http.StatusBadRequest, codes.InvalidArgument},
		{KindUpstream, http.StatusInternalServerError, codes.Unavailable},
		{KindConfig, http.StatusInternalServerError, codes.FailedPrecondition},
		{KindInternal, http.StatusInternalServerError, codes.Internal},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.wantStatus, tt.kind.HTTPStatus(), tt.kind)
		assert.Equal(t, tt.wantCode, tt.kind.GRPCCode(), tt.kind)
	}

	assert.Equal(t, KindInternal, KindOf(errors.New("plain")))
}
