package main

import (
	"context"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/Kevdacosta07/CarbWeb/internal/rpc"
	"github.com/Kevdacosta07/CarbWeb/internal/server"
)

func newServeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the analyzer over HTTP and gRPC.",
		Long: `Start the HTTP API (/api/analyze, /healthz, /metrics) and, unless
--grpc-addr is empty, the gRPC Analyzer service. Both stop gracefully on
SIGINT or SIGTERM.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.serve(ctx)
		},
	}

	f := cmd.Flags()
	f.String("http-addr", defaultHTTPAddr, "HTTP listen address")
	f.String("grpc-addr", defaultGRPCAddr, "gRPC listen address (empty disables gRPC)")
	f.String("cors-allowed-origins", "", "Comma-separated list of allowed CORS origins")
	for _, name := range []string{"http-addr", "grpc-addr", "cors-allowed-origins"} {
		_ = a.v.BindPFlag(name, f.Lookup(name))
	}
	return cmd
}

func (a *app) serve(ctx context.Context) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	an, err := buildAnalyzer(a.cfg, a.logger, reg)
	if err != nil {
		return err
	}

	httpSrv := server.New(server.Config{
		Addr:           a.cfg.HTTPAddr,
		AllowedOrigins: a.cfg.AllowedOrigins,
	}, an, reg, a.logger)

	var lis net.Listener
	if a.cfg.GRPCAddr != "" {
		if lis, err = net.Listen("tcp", a.cfg.GRPCAddr); err != nil {
			return err
		}
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return httpSrv.ListenAndServe(ctx)
	})

	if lis != nil {
		grpcSrv := rpc.NewServer(rpc.NewService(an, a.logger))
		g.Go(func() error {
			a.logger.Info().Str("addr", lis.Addr().String()).Msg("grpc server listening")
			return grpcSrv.Serve(lis)
		})
		g.Go(func() error {
			<-ctx.Done()
			grpcSrv.GracefulStop()
			return nil
		})
	}

	err = g.Wait()
	a.logger.Info().Msg("server stopped")
	return err
}
