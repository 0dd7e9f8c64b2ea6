package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"catalog/internal/app"
	"catalog/internal/config"
	"catalog/internal/logger"
	"catalog/internal/worker"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	// Initialize logger
	logger := logger.New(cfg.LogLevel, cfg.Env)

	// The worker publishes scheduled syncs to the same topic it consumes
	cfg.JobDispatch = "kafka"
	a, err := app.New(context.Background(), cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize application: %v", err)
	}
	defer a.Close()

	scheduler := worker.NewSyncScheduler(cfg.SyncCron, a.Services.Dispatcher, cfg.SyncLimit, logger)
	if err := scheduler.Start(); err != nil {
		logger.Fatal("Failed to start sync scheduler: %v", err)
	}
	defer scheduler.Stop()

	// Initialize worker
	w := worker.New(cfg, logger, a.Services.Processor)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Start worker
	logger.Info("Starting worker on topic %s...", cfg.KafkaTopic)
	go w.Start(ctx)

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down worker...")
	cancel()
	w.Stop()
}
