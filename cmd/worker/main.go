// Package main implements the menupick worker: the queue consumer that
// drives menu analysis jobs through the processing pipeline and publishes
// their records to the shared store.
package main

import (
	"context"
	"fmt"
	"log"
	"os/signal"
	"syscall"

	"github.com/menupick/menupick/internal/config"
	"github.com/menupick/menupick/internal/events"
	"github.com/menupick/menupick/internal/pipeline"
	"github.com/menupick/menupick/internal/platform/gemini"
	"github.com/menupick/menupick/internal/platform/logger"
	"github.com/menupick/menupick/internal/platform/redis"
	"github.com/menupick/menupick/internal/store"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("worker failed: %v", err)
	}
}

// run wires the worker's dependencies explicitly (no package-level
// singletons) and consumes the queue until SIGINT/SIGTERM.
func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	appLogger := logger.Setup(cfg.Server)
	appLogger.Info("worker configuration loaded",
		"redis_addr", cfg.Redis.Addr,
		"model", cfg.LLM.ModelName,
		"concurrency", cfg.Worker.Concurrency,
		"poll_interval_seconds", cfg.Worker.PollIntervalSeconds,
		"preferences_timeout_minutes", cfg.Worker.PreferencesTimeoutMinutes)

	redisStore, err := redis.NewFromConfig(ctx, cfg.Redis)
	if err != nil {
		return err
	}

	client, err := gemini.NewClient(ctx, appLogger, cfg.LLM)
	if err != nil {
		return fmt.Errorf("failed to create completion client: %w", err)
	}

	emitter := events.NewInMemoryEmitter(appLogger)
	emitter.RegisterHandler(events.NewLoggingHandler(appLogger))

	pipe, err := pipeline.New(store.NewRecordStore(redisStore), client, emitter, appLogger, cfg.Worker)
	if err != nil {
		return fmt.Errorf("failed to create pipeline: %w", err)
	}

	dispatcher, err := pipeline.NewDispatcher(redisStore, pipe, appLogger, cfg.Worker.Concurrency)
	if err != nil {
		return fmt.Errorf("failed to create dispatcher: %w", err)
	}

	appLogger.Info("worker started")
	if err := dispatcher.Run(ctx); err != nil {
		return fmt.Errorf("dispatcher stopped with error: %w", err)
	}

	appLogger.Info("worker shutdown completed")
	return nil
}
