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

	"catalog/internal/api"
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

	// Initialize database and services
	a, err := app.New(context.Background(), cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize application: %v", err)
	}
	defer a.Close()

	// Periodic sync runs in the API process when jobs are local
	scheduler := worker.NewSyncScheduler(cfg.SyncCron, a.Services.Dispatcher, cfg.SyncLimit, logger)
	if cfg.JobDispatch != "kafka" {
		if err := scheduler.Start(); err != nil {
			logger.Fatal("Failed to start sync scheduler: %v", err)
		}
		defer scheduler.Stop()
	}

	// Initialize API server
	server := api.New(cfg, logger, a.APIDeps())

	go func() {
		logger.Info("Starting API server on port " + cfg.APIPort)
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Stop(ctx); err != nil {
		logger.Error("Server shutdown failed: %v", err)
	}
}
