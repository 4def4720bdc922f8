package report

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bilancio/internal/core"
)

func seed() []core.Transaction {
	return []core.Transaction{
		{ID: 1, Date: core.NewDate(2023, 4, 1), Amount: core.MustAmount("500"), Type: core.Income, Category: "Salary"},
		{ID: 2, Date: core.NewDate(2023, 4, 3), Amount: core.MustAmount("50"), Type: core.Expense, Category: "Groceries"},
	}
}

func TestBuildKeepsFullBalance(t *testing.T) {
	out := Build(seed(), core.Criteria{Type: core.Expense})

	require.Len(t, out.Transactions, 1)
	assert.Equal(t, int64(2), out.Transactions[0].ID)
	assert.Equal(t, int64(-5000), out.Summary.Balance.Cents)
	assert.Equal(t, int64(45000), out.Balance.Cents)
}

func TestBuildNoMatches(t *testing.T) {
	out := Build(seed(), core.Criteria{Category: "Travel"})
	assert.NotNil(t, out.Transactions)
	assert.Empty(t, out.Transactions)
}

func TestRenderTable(t *testing.T) {
	text.DisableColors()
	defer text.EnableColors()

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, seed(), Options{ByCategory: true}))

	got := buf.String()
	assert.Contains(t, got, "Showing 2 transactions")
	assert.Contains(t, got, "Salary")
	assert.Contains(t, got, "-50")
	assert.Contains(t, got, "450")
	assert.Contains(t, got, "Groceries")
	assert.NotContains(t, got, "Filter:")
}

func TestRenderTableWithFilter(t *testing.T) {
	text.DisableColors()
	defer text.EnableColors()

	var buf bytes.Buffer
	c := core.Criteria{Type: core.Income, DateFrom: core.NewDate(2023, 1, 1)}
	require.NoError(t, Render(&buf, seed(), Options{Criteria: c}))

	got := buf.String()
	assert.Contains(t, got, "Filter: type=income, from=2023-01-01")
	assert.Contains(t, got, "Showing 1 transactions")
	assert.NotContains(t, got, "Groceries")
}

func TestRenderJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, seed(), Options{Format: FormatJSON}))

	var out struct {
		Transactions []core.Transaction `json:"transactions"`
		Balance      json.Number        `json:"balance"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	assert.Len(t, out.Transactions, 2)
	assert.Equal(t, "450", out.Balance.String())
}

func TestRenderUnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, Render(&buf, seed(), Options{Format: "csv"}))
}
