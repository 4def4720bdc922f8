package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bilancio/internal/core"
)

func newMirror(t *testing.T) *SQLiteMirror {
	t.Helper()
	m, err := NewSQLiteMirror(filepath.Join(t.TempDir(), "nested", "mirror.db"))
	require.NoError(t, err)
	t.Cleanup(func() { m.Close() })
	return m
}

func TestUpsertInsertAndReplace(t *testing.T) {
	ctx := context.Background()
	m := newMirror(t)

	tx := core.Transaction{ID: 1, Date: core.NewDate(2023, 4, 1), Amount: core.MustAmount("500"), Type: core.Income, Category: "Salary"}
	require.NoError(t, m.Upsert(ctx, tx))

	got, err := m.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, tx, got)

	tx.Amount = core.MustAmount("650.25")
	tx.Category = "Salary + bonus"
	require.NoError(t, m.Upsert(ctx, tx))

	got, err = m.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, tx, got)

	list, err := m.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestUpsertRejectsInvalid(t *testing.T) {
	m := newMirror(t)
	err := m.Upsert(context.Background(), core.Transaction{ID: 1, Date: core.NewDate(2023, 4, 1), Type: "gift"})
	assert.ErrorIs(t, err, core.ErrInvalidType)
}

func TestDeleteIsIdempotent(t *testing.T) {
	ctx := context.Background()
	m := newMirror(t)

	tx := core.Transaction{ID: 2, Date: core.NewDate(2023, 4, 3), Amount: core.MustAmount("50"), Type: core.Expense, Category: "Groceries"}
	require.NoError(t, m.Upsert(ctx, tx))

	require.NoError(t, m.Delete(ctx, 2))
	require.NoError(t, m.Delete(ctx, 2))

	_, err := m.Get(ctx, 2)
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestListOrder(t *testing.T) {
	ctx := context.Background()
	m := newMirror(t)

	for _, tx := range []core.Transaction{
		{ID: 1, Date: core.NewDate(2023, 4, 1), Type: core.Income},
		{ID: 3, Date: core.NewDate(2023, 4, 3), Type: core.Expense},
		{ID: 2, Date: core.NewDate(2023, 4, 3), Type: core.Expense},
	} {
		require.NoError(t, m.Upsert(ctx, tx))
	}

	list, err := m.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []int64{3, 2, 1}, []int64{list[0].ID, list[1].ID, list[2].ID})
}

func TestMigrationsReapply(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mirror.db")
	m, err := NewSQLiteMirror(path)
	require.NoError(t, err)
	require.NoError(t, m.Close())

	m, err = NewSQLiteMirror(path)
	require.NoError(t, err)
	require.NoError(t, m.Close())
}
