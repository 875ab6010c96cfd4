package urlcheck

import (
	"context"
	"errors"
	"net"
	"net/http"
	"syscall"
	"time"

	"github.com/rs/zerolog"
)

// DefaultProbeTimeout bounds a single reachability probe.
const DefaultProbeTimeout = 5 * time.Second

// Outcome classifies the result of a probe.
type Outcome string

const (
	OutcomeReachable    Outcome = "reachable"
	OutcomeTimeout      Outcome = "timeout"
	OutcomeUnresolvable Outcome = "unresolvable"
	OutcomeUnreachable  Outcome = "unreachable"
	OutcomeInvalid      Outcome = "invalid"
)

// Messages reported for failed probes.
const (
	MsgTooSlow     = "site too slow to respond"
	MsgNotFound    = "site unreachable or does not exist"
	MsgUnreachable = "site unreachable"
	MsgInvalidURL  = "invalid URL"
)

// ProbeResult is the answer of a single reachability probe.
type ProbeResult struct {
	Exists  bool    `json:"exists"`
	Error   string  `json:"error,omitempty"`
	Outcome Outcome `json:"outcome"`
}

// Prober checks that a site answers before the expensive audit runs.
type Prober struct {
	client  *http.Client
	timeout time.Duration
	logger  zerolog.Logger
}

// ProberOption configures a Prober.
type ProberOption func(*Prober)

// WithProbeTimeout overrides DefaultProbeTimeout.
func WithProbeTimeout(d time.Duration) ProberOption {
	return func(p *Prober) {
		if d > 0 {
			p.timeout = d
		}
	}
}

// WithProbeHTTPClient replaces the HTTP client used for probes.
func WithProbeHTTPClient(c *http.Client) ProberOption {
	return func(p *Prober) {
		p.client = c
	}
}

// NewProber creates a Prober with the default timeout.
func NewProber(logger zerolog.Logger, opts ...ProberOption) *Prober {
	p := &Prober{
		client:  &http.Client{},
		timeout: DefaultProbeTimeout,
		logger:  logger.With().Str("component", "prober").Logger(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// CheckExists sends one HEAD request. Any HTTP response, whatever its status,
// counts as reachable; the body is never read. There is no retry.
func (p *Prober) CheckExists(ctx context.Context, normalizedURL string) ProbeResult {
	if !IsValid(normalizedURL) {
		return ProbeResult{Error: MsgInvalidURL, Outcome: OutcomeInvalid}
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, normalizedURL, nil)
	if err != nil {
		return ProbeResult{Error: MsgInvalidURL, Outcome: OutcomeInvalid}
	}

	start := time.Now()
	resp, err := p.client.Do(req)
	if err != nil {
		res := classifyProbeError(err)
		p.logger.Debug().
			Err(err).
			Str("url", normalizedURL).
			Str("outcome", string(res.Outcome)).
			Dur("elapsed", time.Since(start)).
			Msg("probe failed")
		return res
	}
	_ = resp.Body.Close()

	p.logger.Debug().
		Str("url", normalizedURL).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("probe succeeded")
	return ProbeResult{Exists: true, Outcome: OutcomeReachable}
}

func classifyProbeError(err error) ProbeResult {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return ProbeResult{Error: MsgTooSlow, Outcome: OutcomeTimeout}
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) || errors.Is(err, syscall.ECONNREFUSED) {
		return ProbeResult{Error: MsgNotFound, Outcome: OutcomeUnresolvable}
	}

	return ProbeResult{Error: MsgUnreachable, Outcome: OutcomeUnreachable}
}
