// Package main implements the kw-api sync daemon, which keeps local
// vocabulary reviews aligned with each user's WaniKani account and runs
// the periodic review scheduling maintenance.
package main

import (
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/kaniwani/kw-api/internal/config"
	"github.com/kaniwani/kw-api/internal/platform/logger"
	"github.com/kaniwani/kw-api/internal/redact"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	appLogger, err := logger.Setup(cfg.Server)
	if err != nil {
		log.Fatalf("failed to set up logger: %v", err)
	}

	app, err := newApp(cfg, appLogger)
	if err != nil {
		appLogger.Error("failed to initialize application",
			slog.String("error", redact.Error(err)))
		os.Exit(1)
	}

	if err := app.Start(); err != nil {
		appLogger.Error("failed to start application",
			slog.String("error", redact.Error(err)))
		os.Exit(1)
	}

	// Block until asked to shut down.
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	sig := <-stop

	appLogger.Info("shutting down", slog.String("signal", sig.String()))
	app.Stop()
}
