// Package backend builds the optional integrations from configuration: the
// event publisher used by the server and the remote mirrors fed by the worker.
package backend

import (
	"context"
	"fmt"

	"bilancio/internal/amqp"
	"bilancio/internal/config"
	"bilancio/internal/log"
	"bilancio/internal/remote"
	"bilancio/internal/services"
	gsheet "bilancio/internal/sheets/google"
	"bilancio/internal/storage"
)

const (
	MirrorSQLite = "sqlite"
	MirrorSheets = "sheets"
)

// CleanupFunc releases a resource built by the factory.
type CleanupFunc func() error

func noCleanup() error { return nil }

type Factory struct {
	cfg    *config.Config
	logger *log.Logger

	// newSheets is swapped in tests to avoid real credentials.
	newSheets func(ctx context.Context, spreadsheetID, sheetName string) (remote.Mirror, error)
}

func NewFactory(cfg *config.Config, logger *log.Logger) *Factory {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &Factory{
		cfg:    cfg,
		logger: logger.WithComponent(log.ComponentApp),
		newSheets: func(ctx context.Context, id, name string) (remote.Mirror, error) {
			return gsheet.New(ctx, id, name)
		},
	}
}

// Publisher connects to the broker when events are enabled. An unreachable
// broker is logged and the server runs without events, so the returned
// publisher may be nil.
func (f *Factory) Publisher() (services.Publisher, CleanupFunc) {
	if !f.cfg.EventsEnabled() {
		f.logger.Info("Transaction events disabled, AMQP_URL not set")
		return nil, noCleanup
	}
	client, err := amqp.NewClient(f.cfg.AMQPURL, f.cfg.AMQPExchange, f.cfg.AMQPQueue)
	if err != nil {
		f.logger.Warn("Failed to initialize AMQP client, continuing without events", "error", err)
		return nil, noCleanup
	}
	f.logger.Info("Initialized AMQP publisher", "exchange", f.cfg.AMQPExchange, "queue", f.cfg.AMQPQueue)
	return client, client.Close
}

// Consumer connects to the broker for the worker. Unlike Publisher a failure
// is fatal to the caller.
func (f *Factory) Consumer() (*amqp.Client, error) {
	client, err := amqp.NewClient(f.cfg.AMQPURL, f.cfg.AMQPExchange, f.cfg.AMQPQueue)
	if err != nil {
		return nil, fmt.Errorf("connect to broker: %w", err)
	}
	return client, nil
}

// Mirrors returns one lazily built mirror per configured remote store.
// Nothing is opened until the first event reaches it.
func (f *Factory) Mirrors() []*remote.Lazy {
	var mirrors []*remote.Lazy
	if path := f.cfg.RemoteSQLitePath; path != "" {
		mirrors = append(mirrors, remote.NewLazy(MirrorSQLite, func(ctx context.Context) (remote.Mirror, error) {
			f.logger.Info("Opening SQLite mirror", "path", path)
			return storage.NewSQLiteMirror(path)
		}))
	}
	if id := f.cfg.GoogleSpreadsheetID; id != "" {
		name := f.cfg.GoogleSheetName
		mirrors = append(mirrors, remote.NewLazy(MirrorSheets, func(ctx context.Context) (remote.Mirror, error) {
			f.logger.Info("Opening Google Sheets mirror", "spreadsheet_id", id, "sheet", name)
			return f.newSheets(ctx, id, name)
		}))
	}
	return mirrors
}
