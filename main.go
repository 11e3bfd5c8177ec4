package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"habitTrackerAPI/internal/app"
	"habitTrackerAPI/internal/config"
	"habitTrackerAPI/internal/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("failed to load configuration", "error", err)
	}

	if err := logger.Init(logger.Config{Debug: cfg.Log.Debug, Dir: cfg.Log.Dir}); err != nil {
		logger.Fatal("failed to initialize logger", "error", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	application, err := app.New(ctx, cfg)
	cancel()
	if err != nil {
		logger.Fatal("failed to initialize application", "error", err)
	}

	if err := application.Start(); err != nil {
		logger.Fatal("failed to start application", "error", err)
	}

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	sig := <-sigChan
	logger.Info("got signal", "signal", sig.String())

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := application.Stop(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
	}

	logger.Info("server shutdown complete")
}
