package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"bilancio/internal/amqp"
	"bilancio/internal/core"
	"bilancio/internal/ledger"
)

// Publisher sends committed mutations to whoever mirrors them.
type Publisher interface {
	Publish(ctx context.Context, e *amqp.TransactionEvent) error
}

// TransactionService orchestrates store mutations and event publishing.
// A nil publisher disables events.
type TransactionService struct {
	store     ledger.Store
	publisher Publisher
}

func NewTransactionService(store ledger.Store, publisher Publisher) *TransactionService {
	return &TransactionService{store: store, publisher: publisher}
}

// Create validates the draft and adds it to the store.
func (s *TransactionService) Create(ctx context.Context, d core.Draft) (core.Transaction, error) {
	t, err := d.Transaction()
	if err != nil {
		return core.Transaction{}, err
	}
	return s.Add(ctx, t)
}

func (s *TransactionService) Add(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	saved, err := s.store.Add(ctx, t)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("add transaction: %w", err)
	}
	s.publish(ctx, amqp.NewCreatedEvent(saved))
	return saved, nil
}

// Edit applies the fields present in the draft to transaction id.
func (s *TransactionService) Edit(ctx context.Context, id int64, d core.Draft) (core.Transaction, error) {
	p, err := d.Patch()
	if err != nil {
		return core.Transaction{}, err
	}
	return s.Update(ctx, id, p)
}

func (s *TransactionService) Update(ctx context.Context, id int64, p core.Patch) (core.Transaction, error) {
	saved, err := s.store.Update(ctx, id, p)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("update transaction: %w", err)
	}
	s.publish(ctx, amqp.NewUpdatedEvent(saved))
	return saved, nil
}

func (s *TransactionService) Delete(ctx context.Context, id int64) (core.Transaction, error) {
	removed, err := s.store.Remove(ctx, id)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("delete transaction: %w", err)
	}
	s.publish(ctx, amqp.NewDeletedEvent(id))
	return removed, nil
}

func (s *TransactionService) List(ctx context.Context) ([]core.Transaction, error) {
	return s.store.List(ctx)
}

func (s *TransactionService) Get(ctx context.Context, id int64) (core.Transaction, error) {
	return s.store.Get(ctx, id)
}

// Overview is the derived view of the store: the filtered list and the
// balance of the full list.
type Overview struct {
	Transactions []core.Transaction `json:"transactions"`
	Count        int                `json:"count"`
	Balance      core.Money         `json:"balance"`
	Filter       core.Criteria      `json:"filter"`
}

func (s *TransactionService) Overview(ctx context.Context, c core.Criteria) (Overview, error) {
	all, err := s.store.List(ctx)
	if err != nil {
		return Overview{}, err
	}
	filtered := core.Apply(all, c)
	return Overview{
		Transactions: filtered,
		Count:        len(filtered),
		Balance:      core.Balance(all),
		Filter:       c,
	}, nil
}

func (s *TransactionService) Balance(ctx context.Context) (core.Money, error) {
	all, err := s.store.List(ctx)
	if err != nil {
		return core.Money{}, err
	}
	return core.Balance(all), nil
}

// publish never fails the caller: the store already holds the change.
func (s *TransactionService) publish(ctx context.Context, e *amqp.TransactionEvent) {
	if s.publisher == nil {
		slog.DebugContext(ctx, "No publisher configured, skipping event", "op", e.Op, "id", e.ID)
		return
	}
	if err := s.publisher.Publish(ctx, e); err != nil {
		slog.ErrorContext(ctx, "Failed to publish transaction event", "op", e.Op, "id", e.ID, "error", err)
	}
}

// Close releases the publisher when it holds a connection.
func (s *TransactionService) Close() error {
	closer, ok := s.publisher.(io.Closer)
	if !ok {
		return nil
	}
	if err := closer.Close(); err != nil {
		return fmt.Errorf("close publisher: %w", err)
	}
	return nil
}
