// Package worker applies transaction events to the remote mirrors.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"bilancio/internal/amqp"
	"bilancio/internal/core"
	"bilancio/internal/remote"
)

// SyncWorker fans every event out to all configured mirrors.
type SyncWorker struct {
	mirrors []remote.Mirror
}

func NewSyncWorker(mirrors ...remote.Mirror) *SyncWorker {
	return &SyncWorker{mirrors: mirrors}
}

// HandleEvent applies e to each mirror. Every mirror is attempted; the
// returned error joins the individual failures so the delivery is requeued.
func (w *SyncWorker) HandleEvent(ctx context.Context, e *amqp.TransactionEvent) error {
	if len(w.mirrors) == 0 {
		slog.WarnContext(ctx, "No mirrors configured, dropping event", "op", e.Op, "id", e.ID)
		return nil
	}

	var errs []error
	for _, m := range w.mirrors {
		if err := apply(ctx, m, e); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", mirrorName(m), err))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("sync %s %d: %w", e.Op, e.ID, err)
	}

	slog.InfoContext(ctx, "Successfully synced transaction event", "op", e.Op, "id", e.ID, "mirrors", len(w.mirrors))
	return nil
}

// Backfill upserts a full snapshot into every mirror. Used at startup to
// recover from events missed while the worker was down.
func (w *SyncWorker) Backfill(ctx context.Context, ts []core.Transaction) error {
	if len(ts) == 0 {
		slog.InfoContext(ctx, "Nothing to backfill")
		return nil
	}
	synced, failed := 0, 0
	for _, t := range ts {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := w.HandleEvent(ctx, amqp.NewCreatedEvent(t)); err != nil {
			slog.ErrorContext(ctx, "Failed to backfill transaction", "id", t.ID, "error", err)
			failed++
			continue
		}
		synced++
	}
	slog.InfoContext(ctx, "Backfill completed", "total", len(ts), "synced", synced, "errors", failed)
	if failed > 0 {
		return fmt.Errorf("backfill: %d of %d transactions failed", failed, len(ts))
	}
	return nil
}

// Close releases every mirror.
func (w *SyncWorker) Close() error {
	var errs []error
	for _, m := range w.mirrors {
		if err := m.Close(); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", mirrorName(m), err))
		}
	}
	return errors.Join(errs...)
}

func apply(ctx context.Context, m remote.Mirror, e *amqp.TransactionEvent) error {
	switch e.Op {
	case amqp.OpCreated, amqp.OpUpdated:
		return m.Upsert(ctx, *e.Transaction)
	case amqp.OpDeleted:
		return m.Delete(ctx, e.ID)
	default:
		return fmt.Errorf("%w: unknown op %q", amqp.ErrInvalidEvent, e.Op)
	}
}

func mirrorName(m remote.Mirror) string {
	if n, ok := m.(interface{ Name() string }); ok {
		return n.Name()
	}
	return fmt.Sprintf("%T", m)
}
