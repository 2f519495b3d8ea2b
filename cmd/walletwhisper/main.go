package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"walletwhisper/internal/backend"
	"walletwhisper/internal/cache"
	"walletwhisper/internal/cli"
	apphttp "walletwhisper/internal/http"
	"walletwhisper/internal/log"
	"walletwhisper/internal/metrics"
	"walletwhisper/internal/services"
)

func main() {
	cli.LoadEnvFile()
	cfg := cli.LoadAndValidateConfig()
	logger := cli.SetupLogger(cfg, log.ComponentApp)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	recorder := metrics.NewPrometheus("walletwhisper")
	if err := recorder.Register(registry); err != nil {
		cli.Fatal(logger, "Failed to register metrics", err)
	}

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		cli.Fatal(logger, "Invalid backend configuration", err)
	}
	res, err := backend.NewFactory(logger, recorder).CreateBackend(context.Background(), backendCfg)
	if err != nil {
		cli.Fatal(logger, "Failed to initialize backend", err, "backend", cfg.DataBackend)
	}

	caches := cache.NewManager()
	snapshots := cache.NewLRUCache[services.AnalyticsSnapshot](32, 10*time.Minute)
	caches.Register(snapshots)

	wallet := services.NewWallet(services.Deps{
		Store:        res.Store,
		Publisher:    res.Publisher,
		Metrics:      recorder,
		Logger:       logger,
		WeeklyBudget: cfg.Budget(),
		Snapshots:    snapshots,
	})

	srv, err := apphttp.NewServer(":"+cfg.Port, apphttp.Options{
		Wallet:       wallet,
		Store:        res.Store,
		Metrics:      recorder,
		Gatherer:     registry,
		Logger:       logger,
		RateLimitRPM: cfg.RateLimitRPM,
		Caches:       caches,
	})
	if err != nil {
		cli.Fatal(logger, "Failed to build HTTP server", err)
	}
	caches.StartCleanup(time.Minute)

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err)
		}
		caches.Stop()
		if err := res.Cleanup(); err != nil {
			logger.Error("Backend cleanup error", log.FieldError, err)
		}
	})

	logger.Info("Starting walletwhisper server",
		"port", cfg.Port,
		"backend", cfg.DataBackend,
		log.FieldOperation, log.OpStartup)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		cli.Fatal(logger, "Server error", err, "port", cfg.Port)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}
