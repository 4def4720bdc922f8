package memory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"bilancio/internal/core"
	"bilancio/internal/ledger"
)

var _ ledger.Store = (*Store)(nil)

// Store keeps transactions in insertion order, newest first.
type Store struct {
	mu    sync.Mutex
	ids   *ledger.IDGenerator
	items []core.Transaction
}

// New returns a store holding items in the given order. Items must carry
// unique IDs.
func New(items []core.Transaction) (*Store, error) {
	s := &Store{ids: ledger.NewIDGenerator()}
	seen := make(map[int64]struct{}, len(items))
	for _, t := range items {
		if err := t.Validate(); err != nil {
			return nil, fmt.Errorf("seed transaction %d: %w", t.ID, err)
		}
		if t.ID == 0 {
			continue
		}
		if _, ok := seen[t.ID]; ok {
			return nil, fmt.Errorf("seed transaction %d: %w", t.ID, core.ErrDuplicateID)
		}
		seen[t.ID] = struct{}{}
		s.ids.Observe(t.ID)
	}
	// Generated IDs come after every explicit one.
	s.items = make([]core.Transaction, 0, len(items))
	for _, t := range items {
		if t.ID == 0 {
			t.ID = s.ids.Next()
		}
		s.items = append(s.items, t)
	}
	return s, nil
}

// DefaultSeed is the data set a fresh tracker starts with.
func DefaultSeed() []core.Transaction {
	return []core.Transaction{
		{ID: 1, Date: core.NewDate(2023, 4, 1), Amount: core.Money{Cents: 50000}, Type: core.Income, Category: "Salary"},
		{ID: 2, Date: core.NewDate(2023, 4, 3), Amount: core.Money{Cents: 5000}, Type: core.Expense, Category: "Groceries"},
	}
}

// NewFromFile seeds the store from a YAML or JSON file. A missing file falls
// back to DefaultSeed.
func NewFromFile(path string) (*Store, error) {
	items, err := readSeed(path)
	if errors.Is(err, os.ErrNotExist) || path == "" {
		slog.Info("Seed file not found, using default seed", "path", path)
		return New(DefaultSeed())
	}
	if err != nil {
		return nil, err
	}
	return New(items)
}

// Add stores t at the front of the list.
func (s *Store) Add(_ context.Context, t core.Transaction) (core.Transaction, error) {
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if t.ID == 0 {
		t.ID = s.ids.Next()
	} else {
		if s.indexOf(t.ID) >= 0 {
			return core.Transaction{}, fmt.Errorf("add %d: %w", t.ID, core.ErrDuplicateID)
		}
		s.ids.Observe(t.ID)
	}
	s.items = append([]core.Transaction{t}, s.items...)
	return t, nil
}

// Update replaces the matching transaction with the merged record, keeping
// its position.
func (s *Store) Update(_ context.Context, id int64, p core.Patch) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		return core.Transaction{}, fmt.Errorf("update %d: %w", id, core.ErrNotFound)
	}
	merged := p.Apply(s.items[i])
	if err := merged.Validate(); err != nil {
		return core.Transaction{}, err
	}
	s.items[i] = merged
	return merged, nil
}

// Remove deletes the matching transaction and returns it.
func (s *Store) Remove(_ context.Context, id int64) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		return core.Transaction{}, fmt.Errorf("remove %d: %w", id, core.ErrNotFound)
	}
	removed := s.items[i]
	s.items = append(s.items[:i:i], s.items[i+1:]...)
	return removed, nil
}

// List returns a copy of the transactions, newest first.
func (s *Store) List(_ context.Context) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Transaction{}, s.items...), nil
}

func (s *Store) Get(_ context.Context, id int64) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		return core.Transaction{}, fmt.Errorf("get %d: %w", id, core.ErrNotFound)
	}
	return s.items[i], nil
}

// Len returns the number of stored transactions.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

func (s *Store) indexOf(id int64) int {
	for i, t := range s.items {
		if t.ID == id {
			return i
		}
	}
	return -1
}

type seedFile struct {
	Transactions []seedRecord `yaml:"transactions"`
}

type seedRecord struct {
	ID       int64  `yaml:"id"`
	Date     string `yaml:"date"`
	Amount   string `yaml:"amount"`
	Type     string `yaml:"type"`
	Category string `yaml:"category"`
}

func readSeed(path string) ([]core.Transaction, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		var items []core.Transaction
		if err := json.Unmarshal(data, &items); err != nil {
			return nil, fmt.Errorf("parse seed %s: %w", path, err)
		}
		return items, nil
	case ".yaml", ".yml":
		var f seedFile
		if err := yaml.Unmarshal(data, &f); err != nil {
			return nil, fmt.Errorf("parse seed %s: %w", path, err)
		}
		items := make([]core.Transaction, 0, len(f.Transactions))
		for i, r := range f.Transactions {
			t, err := core.Draft{ID: r.ID, Date: r.Date, Amount: r.Amount, Type: r.Type, Category: &r.Category}.Transaction()
			if err != nil {
				return nil, fmt.Errorf("seed %s entry %d: %w", path, i, err)
			}
			items = append(items, t)
		}
		return items, nil
	default:
		return nil, fmt.Errorf("unsupported seed format %q", filepath.Ext(path))
	}
}
