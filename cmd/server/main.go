// Package main implements the entry point for the deckgen API server,
// which turns uploaded documents into summarized slide decks through an
// asynchronous processing pipeline.
package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"

	"github.com/deckgen/deckgen-api/internal/config"
	"github.com/deckgen/deckgen-api/internal/platform/logger"
)

func main() {
	ctx := context.Background()

	cfg, appLogger, err := initializeApp()
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	app, err := newApplication(ctx, cfg, appLogger)
	if err != nil {
		log.Fatalf("Failed to build application: %v", err)
	}

	if err := app.Run(ctx); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

// initializeApp loads configuration and sets up logging.
func initializeApp() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	appLogger, err := logger.Setup(cfg.Server)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to set up logger: %w", err)
	}

	appLogger.Info("server configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel,
		"upload_dir", cfg.Storage.UploadDir,
		"output_dir", cfg.Storage.OutputDir,
		"summarizer_provider", cfg.Summarizer.Provider,
		"worker_count", cfg.Task.WorkerCount)

	return cfg, appLogger, nil
}
