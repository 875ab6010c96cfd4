// Package greenweb asks a Green Web Foundation compatible registry whether a
// host runs on renewable energy.
package greenweb

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/Kevdacosta07/CarbWeb/internal/carbon"
)

const (
	// DefaultBaseURL is the public Green Web Foundation API.
	DefaultBaseURL = "https://api.thegreenwebfoundation.org"

	// DefaultTimeout bounds one registry lookup.
	DefaultTimeout = 10 * time.Second
)

// HostingResult carries the hosting record together with whether the
// registry actually answered. A failed check reads as not green.
type HostingResult struct {
	Record  carbon.HostingRecord
	Checked bool
	Err     error
}

// Checker is the behavior the analyzer depends on.
type Checker interface {
	Check(ctx context.Context, pageURL string) HostingResult
}

// Config configures a Client.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Client queries the greencheck endpoint.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     zerolog.Logger
}

type greencheckResponse struct {
	Green           bool    `json:"green"`
	URL             string  `json:"url"`
	HostedBy        *string `json:"hostedby"`
	HostedByWebsite *string `json:"hostedbywebsite"`
	Partner         *string `json:"partner"`
}

// NewClient creates a Client. Missing fields in cfg take their defaults.
func NewClient(cfg Config, logger zerolog.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger.With().Str("component", "greenweb").Logger(),
	}
}

// Check looks up the host of pageURL. It never fails the caller: every
// error is reported in HostingResult.Err with IsGreen false.
func (c *Client) Check(ctx context.Context, pageURL string) HostingResult {
	record, err := c.lookup(ctx, pageURL)
	if err != nil {
		c.logger.Warn().
			Err(err).
			Str("url", pageURL).
			Msg("green hosting check failed, assuming standard hosting")
		return HostingResult{Err: err}
	}
	return HostingResult{Record: record, Checked: true}
}

func (c *Client) lookup(ctx context.Context, pageURL string) (carbon.HostingRecord, error) {
	u, err := url.Parse(pageURL)
	if err != nil {
		return carbon.HostingRecord{}, fmt.Errorf("invalid url: %w", err)
	}
	host := u.Hostname()
	if host == "" {
		return carbon.HostingRecord{}, fmt.Errorf("invalid url %q: missing host", pageURL)
	}

	endpoint := c.baseURL + "/greencheck/" + url.PathEscape(host)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return carbon.HostingRecord{}, fmt.Errorf("failed to build greencheck request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return carbon.HostingRecord{}, fmt.Errorf("greencheck request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return carbon.HostingRecord{}, fmt.Errorf("greencheck returned status %d", resp.StatusCode)
	}

	var body greencheckResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return carbon.HostingRecord{}, fmt.Errorf("failed to decode greencheck response: %w", err)
	}

	c.logger.Debug().
		Str("host", host).
		Bool("green", body.Green).
		Msg("greencheck response")

	return carbon.HostingRecord{
		IsGreen:         body.Green,
		ProviderName:    deref(body.HostedBy),
		ProviderWebsite: deref(body.HostedByWebsite),
		Partner:         deref(body.Partner),
	}, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
