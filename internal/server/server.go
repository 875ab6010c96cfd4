// Package server exposes the analyzer over HTTP.
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// shutdownTimeout bounds graceful shutdown.
const shutdownTimeout = 10 * time.Second

// Config configures the HTTP server.
type Config struct {
	Addr           string
	AllowedOrigins []string
}

// Server serves /api/analyze, /healthz and /metrics.
type Server struct {
	cfg      Config
	analyzer Analyzer
	gatherer prometheus.Gatherer
	logger   zerolog.Logger
}

// New creates a Server. A nil gatherer serves the default registry.
func New(cfg Config, a Analyzer, gatherer prometheus.Gatherer, logger zerolog.Logger) *Server {
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return &Server{
		cfg:      cfg,
		analyzer: a,
		gatherer: gatherer,
		logger:   logger.With().Str("component", "http").Logger(),
	}
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler {
	mw := []Middleware{traceAndLog(s.logger), cors(s.cfg.AllowedOrigins)}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/analyze", Chain(s.handleAnalyze, mw...))
	mux.HandleFunc("/healthz", Chain(s.handleHealth, mw...))
	mux.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	return mux
}

// Serve accepts connections on ln until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	shutdownDone := make(chan struct{})
	go func() {
		defer close(shutdownDone)
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error().Err(err).Msg("shutdown failed")
		}
	}()

	s.logger.Info().Str("addr", ln.Addr().String()).Msg("http server listening")
	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	<-shutdownDone
	return nil
}

// ListenAndServe listens on cfg.Addr and calls Serve.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}
