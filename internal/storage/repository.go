// Package storage keeps a SQLite copy of the transaction list for the worker.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"bilancio/internal/core"
)

type SQLiteMirror struct {
	db *sql.DB
}

// NewSQLiteMirror opens (creating if needed) the database at dbPath and
// applies pending migrations.
func NewSQLiteMirror(dbPath string) (*SQLiteMirror, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// modernc sqlite serializes writers; one connection avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, err
	}
	return &SQLiteMirror{db: db}, nil
}

func (r *SQLiteMirror) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Upsert inserts t or replaces the row with the same id.
func (r *SQLiteMirror) Upsert(ctx context.Context, t core.Transaction) error {
	if err := t.Validate(); err != nil {
		return fmt.Errorf("upsert %d: %w", t.ID, err)
	}
	const q = `INSERT INTO transactions (id, date, amount_cents, type, category)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
    date = excluded.date,
    amount_cents = excluded.amount_cents,
    type = excluded.type,
    category = excluded.category,
    synced_at = strftime('%Y-%m-%dT%H:%M:%fZ', 'now')`
	if _, err := r.db.ExecContext(ctx, q, t.ID, t.Date.String(), t.Amount.Cents, string(t.Type), t.Category); err != nil {
		return fmt.Errorf("upsert %d: %w", t.ID, err)
	}
	slog.InfoContext(ctx, "Transaction mirrored to SQLite", "id", t.ID, "amount_cents", t.Amount.Cents, "type", t.Type)
	return nil
}

// Delete removes the row with id. A missing row is not an error so that
// redelivered events stay harmless.
func (r *SQLiteMirror) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete %d: %w", id, err)
	}
	n, _ := res.RowsAffected()
	slog.InfoContext(ctx, "Transaction removed from SQLite mirror", "id", id, "rows", n)
	return nil
}

func (r *SQLiteMirror) Get(ctx context.Context, id int64) (core.Transaction, error) {
	row := r.db.QueryRowContext(ctx, `SELECT id, date, amount_cents, type, category FROM transactions WHERE id = ?`, id)
	t, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, fmt.Errorf("get %d: %w", id, core.ErrNotFound)
	}
	return t, err
}

// List returns the mirrored transactions, newest date first.
func (r *SQLiteMirror) List(ctx context.Context) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, date, amount_cents, type, category FROM transactions ORDER BY date DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	out := []core.Transaction{}
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTransaction(s scanner) (core.Transaction, error) {
	var (
		t     core.Transaction
		date  string
		cents int64
		typ   string
	)
	if err := s.Scan(&t.ID, &date, &cents, &typ, &t.Category); err != nil {
		return core.Transaction{}, err
	}
	d, err := core.ParseDate(date)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("row %d: %w", t.ID, err)
	}
	t.Date = d
	t.Amount = core.Money{Cents: cents}
	t.Type = core.TransactionType(typ)
	return t, nil
}
