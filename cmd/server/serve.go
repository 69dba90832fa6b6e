package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/hperssn/buildcalc/internal/admin"
	"github.com/hperssn/buildcalc/internal/estimate"
	httpapi "github.com/hperssn/buildcalc/internal/http"
	"github.com/hperssn/buildcalc/internal/logging"
	"github.com/hperssn/buildcalc/internal/metrics"
	"github.com/hperssn/buildcalc/internal/runner"
)

const shutdownTimeout = 10 * time.Second

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP service",
		RunE: func(cmd *cobra.Command, args []string) error {
			reg := prometheus.NewRegistry()
			reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
			recorder := metrics.NewPrometheusRecorder(reg)

			e, err := setup(cmd, recorder)
			if err != nil {
				return err
			}
			defer e.store.Close()
			log := logging.FromContext(cmd.Context())

			if len(e.cfg.AdminIDs) == 0 {
				log.Warn("no operators configured, the admin flow is unreachable")
			}

			manager := runner.NewManager(
				estimate.New(e.store, log, recorder),
				admin.New(e.store, e.cfg.AdminIDs, log, recorder),
				log, recorder,
			)
			srv := &http.Server{
				Addr:              e.cfg.Listen,
				Handler:           httpapi.NewRouter(manager, reg, log),
				ReadHeaderTimeout: 10 * time.Second,
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			errc := make(chan error, 1)
			go func() {
				log.Info("listening", "addr", e.cfg.Listen, "driver", e.cfg.Database.Driver)
				errc <- srv.ListenAndServe()
			}()

			select {
			case err := <-errc:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			case <-ctx.Done():
			}

			log.Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}
}
