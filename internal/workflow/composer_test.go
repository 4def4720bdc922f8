package workflow

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bilancio/internal/core"
)

type fakeCommitter struct {
	created []core.Draft
	edited  map[int64]core.Draft
	err     error
}

func (f *fakeCommitter) Create(_ context.Context, d core.Draft) (core.Transaction, error) {
	if f.err != nil {
		return core.Transaction{}, f.err
	}
	f.created = append(f.created, d)
	t, err := d.Transaction()
	if err != nil {
		return core.Transaction{}, err
	}
	t.ID = 100
	return t, nil
}

func (f *fakeCommitter) Edit(_ context.Context, id int64, d core.Draft) (core.Transaction, error) {
	if f.err != nil {
		return core.Transaction{}, f.err
	}
	if f.edited == nil {
		f.edited = map[int64]core.Draft{}
	}
	f.edited[id] = d
	return core.Transaction{ID: id}, nil
}

var salary = core.Transaction{ID: 1, Date: core.NewDate(2023, 4, 1), Amount: core.MustAmount("500"), Type: core.Income, Category: "Salary"}

func TestBeginAdd(t *testing.T) {
	c := NewComposer()
	assert.Equal(t, Idle, c.State().Mode)

	s, err := c.BeginAdd()
	require.NoError(t, err)
	assert.Equal(t, Composing, s.Mode)
	assert.False(t, s.IsEditing())
	assert.Equal(t, core.Draft{}, s.Draft)

	_, err = c.BeginAdd()
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestBeginEditFromAnyState(t *testing.T) {
	c := NewComposer()
	s := c.BeginEdit(salary)
	assert.True(t, s.IsEditing())
	assert.Equal(t, int64(1), s.EditingID)
	assert.Equal(t, "500", s.Draft.Amount)
	assert.Equal(t, "2023-04-01", s.Draft.Date)

	other := salary
	other.ID = 2
	s = c.BeginEdit(other)
	assert.Equal(t, int64(2), s.EditingID)

	c.Cancel()
	_, err := c.BeginAdd()
	require.NoError(t, err)
	s = c.BeginEdit(salary)
	assert.Equal(t, int64(1), s.EditingID)
}

func TestChange(t *testing.T) {
	c := NewComposer()
	_, err := c.Change(core.Draft{Amount: "1"})
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = c.BeginAdd()
	require.NoError(t, err)
	_, err = c.Change(core.Draft{Date: "2023-05-01", Amount: "10"})
	require.NoError(t, err)
	s, err := c.Change(core.Draft{Type: "expense", ID: 55})
	require.NoError(t, err)
	assert.Equal(t, core.Draft{Date: "2023-05-01", Amount: "10", Type: "expense"}, s.Draft)
}

func TestCancel(t *testing.T) {
	c := NewComposer()
	assert.Equal(t, State{Mode: Idle}, c.Cancel())

	c.BeginEdit(salary)
	assert.Equal(t, State{Mode: Idle}, c.Cancel())
}

func TestSubmitNew(t *testing.T) {
	ctx := context.Background()
	c := NewComposer()
	f := &fakeCommitter{}

	_, _, err := c.Submit(ctx, f)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = c.BeginAdd()
	require.NoError(t, err)
	_, err = c.Change(core.Draft{Date: "2023-05-01", Amount: "10", Type: "expense", Category: core.StringPtr("Books")})
	require.NoError(t, err)

	got, from, err := c.Submit(ctx, f)
	require.NoError(t, err)
	assert.False(t, from.IsEditing())
	assert.Equal(t, "Books", from.Draft.CategoryValue())
	assert.Equal(t, int64(100), got.ID)
	assert.Equal(t, "Books", got.Category)
	assert.Len(t, f.created, 1)
	assert.Equal(t, State{Mode: Idle}, c.State())
}

func TestSubmitEdit(t *testing.T) {
	ctx := context.Background()
	c := NewComposer()
	f := &fakeCommitter{}

	c.BeginEdit(salary)
	_, err := c.Change(core.Draft{Amount: "600"})
	require.NoError(t, err)

	_, from, err := c.Submit(ctx, f)
	require.NoError(t, err)
	assert.True(t, from.IsEditing())
	assert.Equal(t, int64(1), from.EditingID)
	assert.Equal(t, "600", f.edited[1].Amount)
	assert.Equal(t, Idle, c.State().Mode)
}

func TestSubmitFailureKeepsDraft(t *testing.T) {
	ctx := context.Background()
	c := NewComposer()

	_, err := c.BeginAdd()
	require.NoError(t, err)
	_, err = c.Change(core.Draft{Date: "2023-05-01", Amount: "10"})
	require.NoError(t, err)

	_, _, err = c.Submit(ctx, &fakeCommitter{})
	assert.ErrorIs(t, err, core.ErrMissingType)
	s := c.State()
	assert.Equal(t, Composing, s.Mode)
	assert.Equal(t, "10", s.Draft.Amount)

	boom := errors.New("boom")
	c.BeginEdit(salary)
	_, _, err = c.Submit(ctx, &fakeCommitter{err: boom})
	assert.ErrorIs(t, err, boom)
	assert.True(t, c.State().IsEditing())
}

func TestChangeClearsCategory(t *testing.T) {
	c := NewComposer()
	f := &fakeCommitter{}
	c.BeginEdit(salary)

	s, err := c.Change(core.Draft{Amount: "600"})
	require.NoError(t, err)
	assert.Equal(t, "Salary", s.Draft.CategoryValue())

	s, err = c.Change(core.Draft{Category: core.StringPtr("")})
	require.NoError(t, err)
	require.NotNil(t, s.Draft.Category)
	assert.Equal(t, "", *s.Draft.Category)

	_, _, err = c.Submit(context.Background(), f)
	require.NoError(t, err)
	require.NotNil(t, f.edited[1].Category)
	assert.Equal(t, "", *f.edited[1].Category)
}

func TestSubmitReportsCommittedState(t *testing.T) {
	c := NewComposer()
	blocking := &blockingCommitter{entered: make(chan struct{}), release: make(chan struct{})}
	c.BeginEdit(salary)

	type result struct {
		from State
		err  error
	}
	done := make(chan result)
	go func() {
		_, from, err := c.Submit(context.Background(), blocking)
		done <- result{from, err}
	}()

	<-blocking.entered
	began := make(chan State)
	go func() { began <- c.BeginEdit(core.Transaction{ID: 2, Date: salary.Date, Amount: salary.Amount, Type: core.Expense}) }()
	close(blocking.release)

	r := <-done
	require.NoError(t, r.err)
	assert.Equal(t, int64(1), r.from.EditingID)
	assert.Equal(t, int64(2), (<-began).EditingID)
	assert.Equal(t, int64(2), c.State().EditingID)
}

// blockingCommitter holds Edit until released.
type blockingCommitter struct {
	entered chan struct{}
	release chan struct{}
}

func (b *blockingCommitter) Create(ctx context.Context, d core.Draft) (core.Transaction, error) {
	return b.Edit(ctx, 0, d)
}

func (b *blockingCommitter) Edit(_ context.Context, id int64, _ core.Draft) (core.Transaction, error) {
	close(b.entered)
	<-b.release
	return core.Transaction{ID: id}, nil
}
