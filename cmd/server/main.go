// Package main implements the entry point for the Relay API server: it
// loads configuration, wires storage, authentication, and the request
// pipeline together, and runs the HTTP server until shutdown.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/mhutton/relay-api/internal/config"
	"github.com/mhutton/relay-api/internal/platform/logger"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server exited with error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	log, err := logger.Setup(cfg.Server)
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}

	log.Info("configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel,
		"storage", storageMode(cfg),
		"rate_limit_backend", cfg.RateLimit.Backend)

	ctx := context.Background()

	app, err := newApplication(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	defer app.cleanup()

	return app.Run(ctx)
}

func storageMode(cfg *config.Config) string {
	if cfg.Database.URL == "" {
		return "memory"
	}
	return "postgres"
}
