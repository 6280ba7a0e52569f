package main

import (
	"context"
	"expvar"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"citycore/internal/adapters/httpapi"
	"citycore/internal/config"
	"citycore/internal/core"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.HTTP.Addr = addr
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, cfg, newLogger(cfg.Log, cmd.ErrOrStderr()), nil)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address, overrides http.addr")
	return cmd
}

// runServe blocks until ctx is done or the server fails. ready, when set,
// receives the bound address once the listener is open.
func runServe(ctx context.Context, cfg config.Config, log *slog.Logger, ready chan<- string) error {
	persister, err := core.OpenPersister(ctx, cfg.Storage)
	if err != nil {
		return fmt.Errorf("open persister: %w", err)
	}
	if closer, ok := persister.(io.Closer); ok {
		defer func() {
			if err := closer.Close(); err != nil {
				log.Warn("close persister", "error", err)
			}
		}()
	}

	recorders := core.MultiMetricsRecorder{core.NewExpvarMetricsRecorder("")}
	var metricsHandler http.Handler
	if cfg.Metrics.Enabled {
		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		rec, err := core.NewPrometheusMetricsRecorder(reg, cfg.Metrics.Namespace)
		if err != nil {
			return err
		}
		recorders = append(recorders, rec)
		metricsHandler = promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
	}

	store := core.NewStore(ctx,
		core.WithPersister(persister),
		core.WithLogger(log),
		core.WithMetricsRecorder(recorders),
	)

	mux := http.NewServeMux()
	mux.Handle("/debug/vars", expvar.Handler())
	mux.Handle("/", httpapi.NewHandler(store, metricsHandler))
	srv := httpapi.NewServer(cfg.HTTP, mux, log)

	ln, err := net.Listen("tcp", cfg.HTTP.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", cfg.HTTP.Addr, err)
	}
	if ready != nil {
		ready <- ln.Addr().String()
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil {
		return err
	}
	if err := store.Flush(shutdownCtx); err != nil {
		log.Error("final snapshot", "error", err)
	}
	return nil
}
