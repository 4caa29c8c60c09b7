package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"dev-ticker-server/internal/api"
	"dev-ticker-server/internal/catalog"
	"dev-ticker-server/internal/config"
	"dev-ticker-server/internal/fault"
	"dev-ticker-server/internal/logger"
	"dev-ticker-server/internal/metrics"
	"dev-ticker-server/internal/ops"
	"dev-ticker-server/internal/pricing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"
)

// serve runs the ticker API, and the ops listener when configured, until ctx is cancelled
// or the process receives SIGINT/SIGTERM.
func serve(ctx context.Context, cfg *config.Config) error {
	log, err := logger.New(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		return err
	}
	defer log.Sync()

	// The catalog is loaded once; the server must not start without it
	tokens, err := catalog.Load(cfg.TokensFile)
	if err != nil {
		log.Errorw("Failed to load token catalog", "file", cfg.TokensFile, "error", err)
		return err
	}
	log.Infow("Loaded token catalog", "file", cfg.TokensFile, "count", tokens.Len())

	reg := prometheus.NewRegistry()
	metricsService := metrics.NewMetricsService(reg)
	systemMetrics := metrics.NewSystemMetrics(reg)

	handler := api.NewHandler(tokens, pricing.NewSynthesizer(), metricsService, log)

	var routerOpts []api.RouterOption
	if cfg.Sloppy {
		log.Info("Ticker server will run in a sloppy mode")
		routerOpts = append(routerOpts, api.WithFaultInjector(fault.NewInjector(log, metricsService)))
	}

	gin.SetMode(gin.ReleaseMode)
	servers := []*http.Server{{
		Addr:    cfg.ListenAddr,
		Handler: api.NewRouter(handler, metricsService, log, routerOpts...),
	}}
	if cfg.OpsAddr != "" {
		info := ops.Info{Service: serviceName, Version: version, Sloppy: cfg.Sloppy, Tokens: tokens.Len()}
		servers = append(servers, &http.Server{
			Addr:    cfg.OpsAddr,
			Handler: ops.NewRouter(info, metricsService, reg),
		})
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	systemMetrics.StartCollecting(ctx, cfg.MetricsInterval)

	g, gctx := errgroup.WithContext(ctx)
	for _, srv := range servers {
		g.Go(func() error {
			log.Infow("Starting server", "addr", srv.Addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("server on %s: %w", srv.Addr, err)
			}
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		log.Infow("Shutting down", "grace_period", cfg.ShutdownTimeout.String())

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		for _, srv := range servers {
			if err := srv.Shutdown(shutdownCtx); err != nil {
				log.Warnw("Server did not shut down gracefully", "addr", srv.Addr, "error", err)
			}
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Errorw("Server crashed", "error", err)
		return err
	}
	log.Info("Server stopped")
	return nil
}
