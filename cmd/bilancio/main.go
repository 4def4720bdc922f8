package main

import (
	"context"
	"errors"
	"net/http"
	"os"

	"golang.org/x/sync/errgroup"

	"bilancio/internal/backend"
	"bilancio/internal/cli"
	"bilancio/internal/config"
	apphttp "bilancio/internal/http"
	"bilancio/internal/ledger/memory"
	"bilancio/internal/log"
	"bilancio/internal/services"
	"bilancio/internal/workflow"
)

func main() {
	cfg, logger := cli.LoadConfig(log.ComponentApp, (*config.Config).Validate)
	logger.Info("Starting bilancio", log.FieldOperation, log.OpStartup, "port", cfg.Port)

	store, err := memory.NewFromFile(cfg.SeedFile)
	if err != nil {
		logger.Error("Failed to load seed data", "error", err, "path", cfg.SeedFile)
		os.Exit(1)
	}
	logger.Info("Ledger ready", "transactions", store.Len())

	publisher, closePublisher := backend.NewFactory(cfg, logger).Publisher()
	defer func() {
		if err := closePublisher(); err != nil {
			logger.Error("Failed to close publisher", "error", err)
		}
	}()

	svc := services.NewTransactionService(store, publisher)
	srv := apphttp.NewServer(":"+cfg.Port, svc, workflow.NewComposer(), apphttp.Options{
		Logger:             logger.WithComponent(log.ComponentHTTP),
		RateLimitPerMinute: cfg.RateLimitPerMinute,
	})

	ctx, stop := cli.SignalContext(logger)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("HTTP server listening", "addr", srv.Addr, "events", publisher != nil)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		logger.Info("Shutting down HTTP server", log.FieldOperation, log.OpShutdown, "requests_served", srv.TotalRequests())
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server stopped with error", "error", err)
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}
