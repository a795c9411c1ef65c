package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/example/sfl-lite/cmd/sfl/internal/ui"
	"github.com/example/sfl-lite/internal/observability"
	"github.com/example/sfl-lite/internal/service"
	grpcTransport "github.com/example/sfl-lite/internal/transport/grpc"
	"github.com/example/sfl-lite/internal/web"
)

func newServeCommand(g *globals) *cobra.Command {
	sf := &storageFlags{}
	var (
		addr        string
		metricsAddr string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Collect coverage from remote test runners over gRPC",
		Long: `Start the sfl.v1.CoverageCollector gRPC service. Instrumented test runners
open a session, report every test with its coverage and finish the session
to receive the rank. Finished and aborted sessions are recorded in the
history database unless --no-store is given.

Collection metrics are served over HTTP at /metrics (add ?format=json for
JSON), next to the read-only history API under /api/sessions when the
history database is enabled. An empty --metrics-addr disables HTTP.

EXAMPLES:
  sfl serve
  sfl serve --addr :7400 --metrics-addr :7401 --no-store`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := g.cfg
			if addr == "" {
				addr = cfg.Server.Address
			}
			if !cmd.Flags().Changed("metrics-addr") {
				metricsAddr = cfg.Server.MetricsAddress
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			metrics := observability.NewMetrics()
			opts := []service.CollectorOption{
				service.WithLogger(g.logger),
				service.WithMetrics(metrics),
			}
			store, err := sf.open(ctx, cfg)
			if err != nil {
				return err
			}
			mux := http.NewServeMux()
			mux.Handle("/metrics", metrics)
			if store != nil {
				defer store.Close()
				opts = append(opts, service.WithStorage(store))
				mux.Handle("/api/", web.NewServer(service.NewHistory(store, nil), g.logger).Handler())
			}
			collector := service.NewCollector(opts...)

			lis, err := net.Listen("tcp", addr)
			if err != nil {
				return fmt.Errorf("failed to listen on %s: %w", addr, err)
			}
			server := grpcTransport.NewServer(collector, grpcTransport.WithLogger(g.logger))

			grp, ctx := errgroup.WithContext(ctx)
			grp.Go(func() error {
				ui.PrintSuccess(fmt.Sprintf("Collector listening on %s", lis.Addr()))
				return server.ServeListener(lis)
			})

			var metricsServer *http.Server
			if metricsAddr != "" {
				metricsServer = &http.Server{Addr: metricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
				grp.Go(func() error {
					ui.PrintSuccess(fmt.Sprintf("Metrics on http://%s/metrics", metricsAddr))
					if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
						return fmt.Errorf("metrics server: %w", err)
					}
					return nil
				})
			}

			grp.Go(func() error {
				<-ctx.Done()
				g.logger.Info("shutting down", "active_sessions", collector.Active())
				server.GracefulStop()
				if metricsServer != nil {
					shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
					defer cancel()
					return metricsServer.Shutdown(shutdownCtx)
				}
				return nil
			})

			return grp.Wait()
		},
	}

	sf.register(cmd, true)
	cmd.Flags().StringVar(&addr, "addr", "", "gRPC listen address (default localhost:7400)")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "HTTP address for metrics and the history API (default localhost:7401)")
	return cmd
}
