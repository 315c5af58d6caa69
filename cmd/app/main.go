package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"weatherbot.app/internal/adapters/infrastructure"
	"weatherbot.app/internal/app"
	"weatherbot.app/internal/config"
	"weatherbot.app/pkg/logger"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found or error loading it")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	base := logger.Install(cfg.Mode.LogLevel)
	appLogger := infrastructure.NewSlogLoggerAdapter(base.Logger)

	application, err := app.NewApplication(cfg, appLogger)
	if err != nil {
		slog.Error("Failed to initialize application", "error", err)
		os.Exit(1)
	}

	slog.Info("Configuration loaded successfully",
		"port", cfg.Server.Port,
		"cycle_spec", cfg.Scheduler.CycleSpec,
		"test_mode", cfg.Mode.TestMode)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	setupGracefulShutdown(cancel, application)

	if err := application.Start(ctx); err != nil {
		slog.Error("Failed to start application", "error", err)
		os.Exit(1)
	}
	select {}
}

func setupGracefulShutdown(cancel context.CancelFunc, app *app.Application) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		slog.Info("Received shutdown signal...")

		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := app.Shutdown(shutdownCtx); err != nil {
			slog.Error("Error during graceful shutdown", "error", err)
			os.Exit(1)
		}

		os.Exit(0)
	}()
}
