package pagespeed

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/Kevdacosta07/CarbWeb/internal/carbon"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *int32) {
	t.Helper()
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	c := NewClient(Config{APIKey: "test-key", BaseURL: srv.URL, QPS: 0}, zerolog.Nop())
	return c, &hits
}

func fixture(t *testing.T) []byte {
	t.Helper()
	data, err := os.ReadFile("testdata/runpagespeed.json")
	require.NoError(t, err)
	return data
}

func TestClient_Fetch(t *testing.T) {
	body := fixture(t)
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/runPagespeed", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "https://www.site.io/", q.Get("url"))
		assert.Equal(t, "test-key", q.Get("key"))
		assert.Equal(t, "performance", q.Get("category"))
		assert.Equal(t, "desktop", q.Get("strategy"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(body)
	})

	got, err := c.Fetch(context.Background(), "https://www.site.io/", carbon.StrategyDesktop)
	require.NoError(t, err)

	assert.Equal(t, 87, got.PerformanceScore)
	assert.Equal(t, 1234.5, got.Metrics.FirstContentfulPaintMs)
	assert.Equal(t, 2890.1, got.Metrics.LargestContentfulPaintMs)
	assert.Equal(t, 0.042, got.Metrics.CumulativeLayoutShift)
	assert.Equal(t, 150.0, got.Metrics.TotalBlockingTimeMs)
	require.NotNil(t, got.Metrics.SpeedIndexMs)
	assert.Equal(t, 3100.0, *got.Metrics.SpeedIndexMs)
	assert.Nil(t, got.Metrics.TimeToInteractiveMs)

	assert.Equal(t, int64(1_900_000), got.Resources.TotalBytes)
	assert.Equal(t, 5, got.Resources.RequestCount)
	assert.Equal(t, map[carbon.ResourceCategory]int64{
		carbon.CategoryHTML:       50_000,
		carbon.CategoryCSS:        150_000,
		carbon.CategoryJavaScript: 600_000,
		carbon.CategoryImage:      1_000_000,
		carbon.CategoryFont:       100_000,
		carbon.CategoryOther:      0,
	}, got.Resources.BreakdownBytes)
}

// The total and third-party rows restate bytes already counted under their
// resource types, so adding them would double the page weight.
func TestClient_Fetch_SkipsSummaryRollups(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"lighthouseResult":{"audits":{
			"resource-summary":{"details":{"items":[
				{"resourceType":"total","transferSize":300000},
				{"resourceType":"script","transferSize":200000},
				{"resourceType":"image","transferSize":100000},
				{"resourceType":"Third-Party","transferSize":150000}]}}}}}`))
	})

	got, err := c.Fetch(context.Background(), "https://site.io/", carbon.StrategyMobile)
	require.NoError(t, err)

	assert.Equal(t, int64(300_000), got.Resources.TotalBytes)
	assert.Equal(t, int64(200_000), got.Resources.CategoryBytes(carbon.CategoryJavaScript))
	assert.Equal(t, int64(100_000), got.Resources.CategoryBytes(carbon.CategoryImage))
	assert.Zero(t, got.Resources.CategoryBytes(carbon.CategoryOther))
}

func TestClient_Fetch_NetworkRequestsFallback(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"lighthouseResult":{"categories":{"performance":{"score":0.5}},"audits":{
			"resource-summary":{"details":{"items":[]}},
			"network-requests":{"details":{"items":[{"transferSize":1000},{"transferSize":2500.4}]}}}}}`))
	})

	got, err := c.Fetch(context.Background(), "https://site.io/", carbon.StrategyMobile)
	require.NoError(t, err)

	assert.Equal(t, 50, got.PerformanceScore)
	assert.Equal(t, int64(3500), got.Resources.TotalBytes)
	assert.Equal(t, 2, got.Resources.RequestCount)
	for _, c := range carbon.Categories {
		assert.Zero(t, got.Resources.CategoryBytes(c), c)
	}
}

func TestClient_Fetch_MissingAuditsDefaultToZero(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"lighthouseResult":{"audits":{}}}`))
	})

	got, err := c.Fetch(context.Background(), "https://site.io/", carbon.StrategyMobile)
	require.NoError(t, err)

	assert.Zero(t, got.PerformanceScore)
	assert.Zero(t, got.Metrics.FirstContentfulPaintMs)
	assert.Nil(t, got.Metrics.SpeedIndexMs)
	assert.Zero(t, got.Resources.TotalBytes)
	assert.Zero(t, got.Resources.RequestCount)
}

func TestClient_Fetch_MissingAPIKey(t *testing.T) {
	c, hits := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	c.apiKey = ""

	_, err := c.Fetch(context.Background(), "https://site.io/", carbon.StrategyMobile)

	require.ErrorIs(t, err, ErrMissingAPIKey)
	assert.Zero(t, atomic.LoadInt32(hits), "no request may be sent without a key")
}

func TestClient_Fetch_ProviderErrors(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantStatus int
		wantMsg    string
	}{
		{
			name:       "quota with provider message",
			status:     http.StatusTooManyRequests,
			body:       `{"error":{"code":429,"message":"Quota exceeded for quota metric"}}`,
			wantStatus: http.StatusTooManyRequests,
			wantMsg:    "Quota exceeded for quota metric",
		},
		{
			name:       "unparseable error body",
			status:     http.StatusBadGateway,
			body:       `<html>bad gateway</html>`,
			wantStatus: http.StatusBadGateway,
			wantMsg:    "service unavailable",
		},
		{
			name:       "malformed success body",
			status:     http.StatusOK,
			body:       `{"lighthouseResult":`,
			wantStatus: http.StatusOK,
			wantMsg:    "malformed response",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			_, err := c.Fetch(context.Background(), "https://site.io/", carbon.StrategyMobile)

			var perr *ProviderError
			require.True(t, errors.As(err, &perr), "got %v", err)
			assert.Equal(t, tt.wantStatus, perr.StatusCode)
			assert.Contains(t, perr.Message, tt.wantMsg)
		})
	}
}

func TestClient_Fetch_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	c := NewClient(Config{APIKey: "k", BaseURL: srv.URL, Timeout: 50 * time.Millisecond}, zerolog.Nop())

	_, err := c.Fetch(context.Background(), "https://site.io/", carbon.StrategyMobile)

	require.Error(t, err)
	var perr *ProviderError
	assert.False(t, errors.As(err, &perr))
}

func TestClient_Fetch_RateLimitRespectsContext(t *testing.T) {
	c, hits := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	})
	c.limiter = rate.NewLimiter(0.001, 1)

	_, err := c.Fetch(context.Background(), "https://site.io/", carbon.StrategyMobile)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = c.Fetch(ctx, "https://site.io/", carbon.StrategyMobile)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limit")
	assert.Equal(t, int32(1), atomic.LoadInt32(hits))
}

func TestCategoryOf(t *testing.T) {
	tests := []struct {
		in   string
		want carbon.ResourceCategory
	}{
		{"document", carbon.CategoryHTML},
		{"Stylesheet", carbon.CategoryCSS},
		{"script", carbon.CategoryJavaScript},
		{"IMAGE", carbon.CategoryImage},
		{"font", carbon.CategoryFont},
		{"media", carbon.CategoryOther},
		{"", carbon.CategoryOther},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CategoryOf(tt.in), tt.in)
	}
}

func TestNewClient_Defaults(t *testing.T) {
	c := NewClient(Config{}, zerolog.Nop())

	assert.Equal(t, DefaultBaseURL, c.baseURL)
	assert.Equal(t, DefaultTimeout, c.httpClient.Timeout)
}
