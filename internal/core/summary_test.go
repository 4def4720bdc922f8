package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarize(t *testing.T) {
	ts := []Transaction{
		{ID: 1, Date: NewDate(2023, 4, 1), Amount: MustAmount("500"), Type: Income, Category: "Salary"},
		{ID: 2, Date: NewDate(2023, 4, 3), Amount: MustAmount("50"), Type: Expense, Category: "Groceries"},
		{ID: 3, Date: NewDate(2023, 4, 4), Amount: MustAmount("20.5"), Type: Expense, Category: "Groceries"},
		{ID: 4, Date: NewDate(2023, 4, 5), Amount: MustAmount("9"), Type: "gift", Category: "Other"},
	}

	s := Summarize(ts)
	assert.Equal(t, 4, s.Count)
	assert.Equal(t, int64(50000), s.Income.Cents)
	assert.Equal(t, int64(7050), s.Expense.Cents)
	assert.Equal(t, int64(42950), s.Balance.Cents)

	require.Len(t, s.ByCategory, 3)
	assert.Equal(t, "Groceries", s.ByCategory[0].Name)
	assert.Equal(t, int64(7050), s.ByCategory[0].Expense.Cents)
	assert.Equal(t, "Other", s.ByCategory[1].Name)
	assert.Zero(t, s.ByCategory[1].Income.Cents+s.ByCategory[1].Expense.Cents)
	assert.Equal(t, "Salary", s.ByCategory[2].Name)
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil)
	assert.Zero(t, s.Count)
	assert.NotNil(t, s.ByCategory)
}
