package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/jwalitptl/clinic-dashboard/internal/handler/appointment"
	"github.com/jwalitptl/clinic-dashboard/internal/handler/dashboard"
	"github.com/jwalitptl/clinic-dashboard/internal/handler/health"
	"github.com/jwalitptl/clinic-dashboard/internal/handler/live"
	"github.com/jwalitptl/clinic-dashboard/internal/handler/patient"
	"github.com/jwalitptl/clinic-dashboard/internal/middleware"
	"github.com/jwalitptl/clinic-dashboard/internal/router"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the dashboard API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(opts, nil)
			if err != nil {
				return err
			}
			return runServer(a)
		},
	}

	cmd.Flags().Int("port", 0, "Port to listen on")
	_ = opts.v.BindPFlag("server.port", cmd.Flags().Lookup("port"))

	return cmd
}

func newEngine(a *app) *gin.Engine {
	cfg := a.cfg

	cors := middleware.DefaultCORSConfig()
	cors.AllowOrigins = cfg.CORS.AllowedOrigins

	r := router.NewRouter(router.RouterConfig{
		RateLimitEnabled: cfg.RateLimit.Enabled,
		RateLimit:        rate.Limit(cfg.RateLimit.RequestsPerSecond),
		RateBurst:        cfg.RateLimit.Burst,
		RequestTimeout:   cfg.Server.RequestTimeout,
		CORSConfig:       cors,
		MetricsEnabled:   cfg.Metrics.Enabled,
		MetricsPrefix:    cfg.Metrics.Namespace + "_http",
		MetricsPath:      cfg.Metrics.Path,
		Registry:         a.registry,
	},
		health.NewHandler(a.client, a.logger),
		patient.NewHandler(a.patients, cfg.Search.Remote, a.logger),
		live.NewHandler(a.patients, live.Options{
			Debounce:       cfg.Search.Debounce,
			Remote:         cfg.Search.Remote,
			AllowedOrigins: cfg.CORS.AllowedOrigins,
		}, a.metrics, a.logger),
		appointment.NewHandler(a.appointments, appointment.Options{
			Location: a.loc,
			Clock24h: cfg.Dashboard.Clock24h,
		}, a.logger),
		dashboard.NewHandler(a.dashboard, a.logger),
	)
	r.Setup()
	return r.Engine()
}

func runServer(a *app) error {
	gin.SetMode(gin.ReleaseMode)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", a.cfg.Server.Port),
		Handler:      newEngine(a),
		ReadTimeout:  a.cfg.Server.ReadTimeout,
		WriteTimeout: a.cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info().
			Str("addr", srv.Addr).
			Str("fhir_base_url", a.cfg.FHIR.BaseURL).
			Msg("starting dashboard server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("failed to start server: %w", err)
	case <-quit:
	}
	a.logger.Info().Msg("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	a.logger.Info().Msg("server exited properly")
	return nil
}
