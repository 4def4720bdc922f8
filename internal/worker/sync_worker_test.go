package worker

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bilancio/internal/amqp"
	"bilancio/internal/core"
	"bilancio/internal/remote"
)

type memMirror struct {
	rows    map[int64]core.Transaction
	failing bool
	closed  bool
}

func newMemMirror() *memMirror { return &memMirror{rows: map[int64]core.Transaction{}} }

func (m *memMirror) Upsert(_ context.Context, t core.Transaction) error {
	if m.failing {
		return errors.New("unavailable")
	}
	m.rows[t.ID] = t
	return nil
}

func (m *memMirror) Delete(_ context.Context, id int64) error {
	if m.failing {
		return errors.New("unavailable")
	}
	delete(m.rows, id)
	return nil
}

func (m *memMirror) Close() error {
	m.closed = true
	return nil
}

var salary = core.Transaction{ID: 1, Date: core.NewDate(2023, 4, 1), Amount: core.MustAmount("500"), Type: core.Income, Category: "Salary"}

func TestHandleEvent(t *testing.T) {
	ctx := context.Background()
	a, b := newMemMirror(), newMemMirror()
	w := NewSyncWorker(a, b)

	require.NoError(t, w.HandleEvent(ctx, amqp.NewCreatedEvent(salary)))
	assert.Equal(t, salary, a.rows[1])
	assert.Equal(t, salary, b.rows[1])

	updated := salary
	updated.Amount = core.MustAmount("600")
	require.NoError(t, w.HandleEvent(ctx, amqp.NewUpdatedEvent(updated)))
	assert.Equal(t, updated, a.rows[1])

	require.NoError(t, w.HandleEvent(ctx, amqp.NewDeletedEvent(1)))
	require.NoError(t, w.HandleEvent(ctx, amqp.NewDeletedEvent(1)))
	assert.Empty(t, a.rows)
	assert.Empty(t, b.rows)
}

func TestHandleEventAttemptsEveryMirror(t *testing.T) {
	ctx := context.Background()
	bad, good := newMemMirror(), newMemMirror()
	bad.failing = true
	w := NewSyncWorker(bad, good)

	err := w.HandleEvent(ctx, amqp.NewCreatedEvent(salary))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unavailable")
	assert.Contains(t, good.rows, int64(1))
}

func TestHandleEventNoMirrors(t *testing.T) {
	assert.NoError(t, NewSyncWorker().HandleEvent(context.Background(), amqp.NewDeletedEvent(1)))
}

func TestHandleEventLazyMirror(t *testing.T) {
	ctx := context.Background()
	built := 0
	inner := newMemMirror()
	lazy := remote.NewLazy("mem", func(context.Context) (remote.Mirror, error) {
		built++
		return inner, nil
	})
	w := NewSyncWorker(lazy)
	assert.False(t, lazy.Built())

	require.NoError(t, w.HandleEvent(ctx, amqp.NewCreatedEvent(salary)))
	require.NoError(t, w.HandleEvent(ctx, amqp.NewDeletedEvent(1)))
	assert.Equal(t, 1, built)

	require.NoError(t, w.Close())
	assert.True(t, inner.closed)
}

func TestBackfill(t *testing.T) {
	ctx := context.Background()
	m := newMemMirror()
	w := NewSyncWorker(m)

	groceries := core.Transaction{ID: 2, Date: core.NewDate(2023, 4, 3), Amount: core.MustAmount("50"), Type: core.Expense, Category: "Groceries"}
	require.NoError(t, w.Backfill(ctx, []core.Transaction{salary, groceries}))
	assert.Len(t, m.rows, 2)

	m.failing = true
	assert.Error(t, w.Backfill(ctx, []core.Transaction{salary}))
	assert.NoError(t, w.Backfill(ctx, nil))
}
