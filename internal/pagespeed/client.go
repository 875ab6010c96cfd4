// Package pagespeed fetches performance audits from a PageSpeed Insights
// compatible API and flattens them into carbon.PerformanceRecord values.
package pagespeed

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/Kevdacosta07/CarbWeb/internal/carbon"
)

const (
	// DefaultBaseURL is the public PageSpeed Insights v5 endpoint.
	DefaultBaseURL = "https://www.googleapis.com/pagespeedonline/v5"

	// DefaultTimeout bounds one audit; Lighthouse runs are slow.
	DefaultTimeout = 60 * time.Second

	// DefaultQPS keeps the client under the anonymous provider quota.
	DefaultQPS = 1.0

	// maxErrorBody caps how much of an error response is read.
	maxErrorBody = 64 << 10
)

// constError is an immutable error type for sentinel errors.
type constError string

func (e constError) Error() string { return string(e) }

// ErrMissingAPIKey is returned before any network I/O when no key is set.
const ErrMissingAPIKey = constError("pagespeed API key not configured")

// ProviderError reports a non-2xx or unparseable provider response.
type ProviderError struct {
	StatusCode int
	Message    string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("pagespeed provider error (status %d): %s", e.StatusCode, e.Message)
}

// Fetcher is the behavior the analyzer depends on.
type Fetcher interface {
	Fetch(ctx context.Context, pageURL string, strategy carbon.Strategy) (carbon.PerformanceRecord, error)
}

// Config configures a Client.
type Config struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration

	// QPS limits outgoing requests; zero or negative disables limiting.
	QPS float64
}

// Client calls the runPagespeed endpoint.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     zerolog.Logger
}

// NewClient creates a Client. Missing fields in cfg take their defaults.
func NewClient(cfg Config, logger zerolog.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	limiter := rate.NewLimiter(rate.Inf, 0)
	if cfg.QPS > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.QPS), max(1, int(cfg.QPS)))
	}

	return &Client{
		apiKey:     cfg.APIKey,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{Timeout: cfg.Timeout},
		limiter:    limiter,
		logger:     logger.With().Str("component", "pagespeed").Logger(),
	}
}

// Fetch runs one performance audit of pageURL. There is no retry; the
// caller decides whether a failure is fatal.
func (c *Client) Fetch(ctx context.Context, pageURL string, strategy carbon.Strategy) (carbon.PerformanceRecord, error) {
	if c.apiKey == "" {
		return carbon.PerformanceRecord{}, ErrMissingAPIKey
	}

	q := url.Values{}
	q.Set("url", pageURL)
	q.Set("key", c.apiKey)
	q.Set("category", "performance")
	q.Set("strategy", string(strategy))
	endpoint := c.baseURL + "/runPagespeed?" + q.Encode()

	if err := c.limiter.Wait(ctx); err != nil {
		return carbon.PerformanceRecord{}, fmt.Errorf("pagespeed rate limit: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return carbon.PerformanceRecord{}, fmt.Errorf("failed to build pagespeed request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return carbon.PerformanceRecord{}, fmt.Errorf("pagespeed request failed: %w", err)
	}
	defer resp.Body.Close()

	c.logger.Debug().
		Str("url", pageURL).
		Str("strategy", string(strategy)).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("pagespeed response")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return carbon.PerformanceRecord{}, &ProviderError{
			StatusCode: resp.StatusCode,
			Message:    errorMessage(body),
		}
	}

	var payload apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return carbon.PerformanceRecord{}, &ProviderError{
			StatusCode: resp.StatusCode,
			Message:    "malformed response: " + err.Error(),
		}
	}
	return payload.record(), nil
}

// errorMessage extracts error.message from a provider error body.
func errorMessage(body []byte) string {
	var e apiError
	if err := json.Unmarshal(body, &e); err == nil && e.Error.Message != "" {
		return e.Error.Message
	}
	return "service unavailable"
}
