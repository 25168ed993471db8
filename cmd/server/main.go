package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"infinite-experiment/flighttracker/internal/api"
	"infinite-experiment/flighttracker/internal/config"
	"infinite-experiment/flighttracker/internal/jobs"
	"infinite-experiment/flighttracker/internal/logging"
	"infinite-experiment/flighttracker/internal/metrics"
	"infinite-experiment/flighttracker/internal/routes"
	"infinite-experiment/flighttracker/internal/schedule"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Invalid configuration: %v", err)
	}

	if err := logging.Init(cfg.AppEnv, cfg.LogFile); err != nil {
		log.Fatalf("❌ Failed to initialize logger: %v", err)
	}
	defer logging.Close()

	logging.Info("Flight tracker starting up",
		"environment", cfg.AppEnv,
		"schedule_source", cfg.Schedule.Source,
		"cache_backend", cfg.Cache.Backend,
		"refresh_rate_seconds", cfg.Server.RefreshRateSeconds,
		"snapshot_ttl", cfg.OpenSky.SnapshotTTL.String(),
		"opensky_authenticated", cfg.OpenSky.Username != "",
	)

	metricsReg := metrics.NewMetricsRegistry(prometheus.DefaultRegisterer)

	deps, err := api.InitDependencies(cfg, metricsReg)
	if err != nil {
		logging.Fatal("Failed to initialize dependencies", "error", err)
	}
	defer deps.Close()

	// A schedule that cannot be read is fatal before serving anything
	if _, err := deps.Services.Schedule.Load(context.Background()); err != nil {
		var dle *schedule.DataLoadError
		if errors.As(err, &dle) {
			logging.Fatal("Failed to load flight schedule", "code", dle.Code, "source", dle.Source, "error", err)
		}
		logging.Fatal("Failed to load flight schedule", "error", err)
	}

	upSince := time.Now()
	router := routes.RegisterRoutes(deps, upSince)

	// Setup metrics endpoint outside of Chi router
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/", router)
	logging.Info("Prometheus metrics endpoint registered at /metrics")

	server := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return deps.Worker.Start(gctx)
	})

	g.Go(func() error {
		reloadJob := jobs.NewScheduleReloadJob(deps.Services.Schedule, metricsReg)
		return reloadJob.RunScheduled(gctx, cfg.Schedule.ReloadInterval)
	})

	g.Go(func() error {
		logging.Info("Server starting", "addr", cfg.Server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logging.Info("Shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		deps.Worker.Stop()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logging.Error("Server exited with error", "error", err)
		os.Exit(1)
	}
	logging.Info("Server stopped")
}
