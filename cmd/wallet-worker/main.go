package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"walletwhisper/internal/backend"
	"walletwhisper/internal/cache"
	"walletwhisper/internal/cli"
	"walletwhisper/internal/core"
	"walletwhisper/internal/log"
	"walletwhisper/internal/metrics"
	"walletwhisper/internal/services"
	"walletwhisper/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	cfg := cli.LoadAndValidateConfig()
	logger := cli.SetupLogger(cfg, log.ComponentWorker)
	logger.Info("Starting wallet-worker", log.FieldOperation, log.OpStartup)

	registry := prometheus.NewRegistry()
	recorder := metrics.NewPrometheus("walletwhisper_worker")
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
	defer res.Cleanup()

	var alerts services.EventPublisher = services.LogPublisher{Logger: logger.Logger}
	if res.Broker != nil {
		alerts = res.Broker
	}
	scanner := services.NewReminderScanner(res.Store, services.DefaultAlertPolicy(cfg.ReminderLeadDays), alerts, recorder)

	caches := cache.NewManager()
	if c, ok := scanner.Sent().(cache.Cleaner); ok {
		caches.Register(c)
	}
	caches.StartCleanup(time.Hour)
	defer caches.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	shutdownCtx, done := cli.GracefulShutdown(logger, 30*time.Second, func(context.Context) {
		cancel()
	})

	metricsSrv := &http.Server{
		Addr:              ":" + cfg.WorkerMetricsPort,
		Handler:           promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		err := scanner.Run(gctx, cfg.ReminderScanInterval, core.SystemClock{})
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})

	// The processor sweeps the store for entries whose event never reached
	// the broker, so it runs in both modes.
	processor := services.NewSyncProcessor(res.Store, res.Exporter, recorder, services.SyncProcessorConfig{
		PollInterval: cfg.SyncInterval,
		BatchSize:    cfg.SyncBatchSize,
		MaxRetries:   cfg.SyncMaxRetries,
	})
	g.Go(func() error {
		if res.Broker == nil {
			logger.Info("No broker configured, polling the store for exports")
		}
		if err := processor.Start(gctx); err != nil {
			return err
		}
		<-gctx.Done()
		stopCtx, stop := context.WithTimeout(context.Background(), 10*time.Second)
		defer stop()
		return processor.Stop(stopCtx)
	})

	if res.Broker != nil {
		handler := worker.NewExportWorker(res.Exporter, res.Store, recorder, cfg.SyncMaxRetries)
		g.Go(func() error {
			logger.Info("Consuming wallet events", "queue", cfg.AMQPQueue)
			err := res.Broker.Consume(gctx, handler.Handle)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		})
	}

	g.Go(func() error {
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		stopCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
		defer stop()
		return metricsSrv.Shutdown(stopCtx)
	})

	if err := g.Wait(); err != nil {
		caches.Stop()
		res.Cleanup()
		cli.Fatal(logger, "Worker stopped with error", err)
	}
	cli.WaitForShutdown(shutdownCtx, done)
	logger.Info("Worker stopped gracefully")
}
