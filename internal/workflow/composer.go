// Package workflow holds the add/edit form state machine.
//
// A Composer is either Idle or Composing. While composing it carries a draft
// and remembers whether the draft is a new transaction or an edit of an
// existing one. Submitting commits the draft through a Committer and returns
// to Idle; a failed submit keeps the draft so the user can fix it.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"bilancio/internal/core"
)

var ErrInvalidTransition = errors.New("invalid workflow transition")

type Mode string

const (
	Idle      Mode = "idle"
	Composing Mode = "composing"
)

// State is a snapshot of the composer. EditingID is zero for a new draft.
type State struct {
	Mode      Mode       `json:"mode"`
	EditingID int64      `json:"editingId,omitempty"`
	Draft     core.Draft `json:"draft"`
}

// IsEditing reports whether the draft targets an existing transaction.
func (s State) IsEditing() bool {
	return s.Mode == Composing && s.EditingID != 0
}

// Committer persists a submitted draft.
type Committer interface {
	Create(ctx context.Context, d core.Draft) (core.Transaction, error)
	Edit(ctx context.Context, id int64, d core.Draft) (core.Transaction, error)
}

type Composer struct {
	mu    sync.Mutex
	state State
}

func NewComposer() *Composer {
	return &Composer{state: State{Mode: Idle}}
}

func (c *Composer) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// BeginAdd opens an empty draft. Only valid from Idle.
func (c *Composer) BeginAdd() (State, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state.Mode != Idle {
		return c.state, fmt.Errorf("begin add while %s: %w", c.state.Mode, ErrInvalidTransition)
	}
	c.state = State{Mode: Composing}
	return c.state, nil
}

// BeginEdit opens a draft pre-populated from t, replacing any draft in progress.
func (c *Composer) BeginEdit(t core.Transaction) State {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = State{Mode: Composing, EditingID: t.ID, Draft: core.DraftOf(t)}
	return c.state
}

// Change merges the given fields of d into the current draft.
func (c *Composer) Change(d core.Draft) (State, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state.Mode != Composing {
		return c.state, fmt.Errorf("change while %s: %w", c.state.Mode, ErrInvalidTransition)
	}
	d.ID = 0
	c.state.Draft = c.state.Draft.Merge(d)
	return c.state, nil
}

// Cancel discards the draft. It does nothing when already Idle.
func (c *Composer) Cancel() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = State{Mode: Idle}
	return c.state
}

// Submit commits the draft and returns the committed transaction together
// with the state it was committed from. The lock is held across the commit so
// a concurrent Change or BeginEdit cannot slip in between.
func (c *Composer) Submit(ctx context.Context, committer Committer) (core.Transaction, State, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	from := c.state
	if from.Mode != Composing {
		return core.Transaction{}, from, fmt.Errorf("submit while %s: %w", from.Mode, ErrInvalidTransition)
	}

	var (
		t   core.Transaction
		err error
	)
	if from.EditingID != 0 {
		t, err = committer.Edit(ctx, from.EditingID, from.Draft)
	} else {
		t, err = committer.Create(ctx, from.Draft)
	}
	if err != nil {
		return core.Transaction{}, from, err
	}
	c.state = State{Mode: Idle}
	return t, from, nil
}
