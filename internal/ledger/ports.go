package ledger

import (
	"context"

	"bilancio/internal/core"
)

// Ports for the transaction store.
type (
	TransactionWriter interface {
		// Add stores t, assigning a fresh ID when t.ID is zero.
		Add(ctx context.Context, t core.Transaction) (core.Transaction, error)
		// Update merges the patch into the transaction with the given ID.
		Update(ctx context.Context, id int64, p core.Patch) (core.Transaction, error)
		// Remove deletes the transaction with the given ID.
		Remove(ctx context.Context, id int64) (core.Transaction, error)
	}

	// TransactionReader returns stored transactions, newest first.
	TransactionReader interface {
		List(ctx context.Context) ([]core.Transaction, error)
		Get(ctx context.Context, id int64) (core.Transaction, error)
	}

	Store interface {
		TransactionWriter
		TransactionReader
	}
)
