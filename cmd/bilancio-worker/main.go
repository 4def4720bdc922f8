package main

import (
	"context"
	"errors"
	"os"

	"bilancio/internal/backend"
	"bilancio/internal/cli"
	"bilancio/internal/config"
	"bilancio/internal/export"
	"bilancio/internal/log"
	"bilancio/internal/remote"
	"bilancio/internal/worker"
)

func main() {
	cfg, logger := cli.LoadConfig(log.ComponentWorker, (*config.Config).ValidateWorker)
	logger.Info("Starting bilancio-worker", log.FieldOperation, log.OpStartup)

	factory := backend.NewFactory(cfg, logger)
	lazy := factory.Mirrors()
	mirrors := make([]remote.Mirror, 0, len(lazy))
	for _, m := range lazy {
		logger.Info("Mirror configured", "mirror", m.Name())
		mirrors = append(mirrors, m)
	}
	syncWorker := worker.NewSyncWorker(mirrors...)
	defer func() {
		if err := syncWorker.Close(); err != nil {
			logger.Error("Failed to close mirrors", "error", err)
		}
	}()

	client, err := factory.Consumer()
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer client.Close()

	ctx, stop := cli.SignalContext(logger)
	defer stop()

	if cfg.BackfillFile != "" {
		if err := backfill(ctx, syncWorker, cfg.BackfillFile); err != nil {
			// Live events still flow; the next backfill can catch up.
			logger.Error("Startup backfill failed", "error", err, "path", cfg.BackfillFile)
		}
	}

	logger.Info("Consuming transaction events", "queue", cfg.AMQPQueue)
	if err := client.Consume(ctx, syncWorker.HandleEvent); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Message consumption failed", "error", err)
		os.Exit(1)
	}
	logger.Info("Worker stopped gracefully")
}

// backfill pushes a JSON export snapshot into every mirror.
func backfill(ctx context.Context, w *worker.SyncWorker, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	ts, err := export.ParseJSON(data)
	if err != nil {
		return err
	}
	log.FromContext(ctx).Info("Backfilling mirrors", log.FieldOperation, log.OpSync, "transactions", len(ts))
	return w.Backfill(ctx, ts)
}
