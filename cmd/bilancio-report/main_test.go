package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bilancio/internal/core"
	"bilancio/internal/export"
)

func sample() []core.Transaction {
	return []core.Transaction{
		{ID: 1, Date: core.NewDate(2023, 4, 1), Amount: core.MustAmount("500"), Type: core.Income, Category: "Salary"},
		{ID: 2, Date: core.NewDate(2023, 4, 3), Amount: core.MustAmount("50"), Type: core.Expense, Category: "Groceries"},
	}
}

func TestLoadJSONAndXLSX(t *testing.T) {
	dir := t.TempDir()

	js, err := export.JSON(sample())
	require.NoError(t, err)
	jsonPath := filepath.Join(dir, js.Filename)
	require.NoError(t, os.WriteFile(jsonPath, js.Data, 0o600))

	xl, err := export.XLSX(sample())
	require.NoError(t, err)
	xlsxPath := filepath.Join(dir, xl.Filename)
	require.NoError(t, os.WriteFile(xlsxPath, xl.Data, 0o600))

	for _, path := range []string{jsonPath, xlsxPath} {
		ts, err := load(path)
		require.NoError(t, err, path)
		assert.Equal(t, sample(), ts)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := load(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}

func TestCriteria(t *testing.T) {
	c, err := criteria(&Params{Type: "income", Category: "Salary", From: "2023-01-01", To: "2023-12-31"})
	require.NoError(t, err)
	assert.Equal(t, core.Income, c.Type)
	assert.Equal(t, "Salary", c.Category)
	assert.Equal(t, core.NewDate(2023, 1, 1), c.DateFrom)
	assert.Equal(t, core.NewDate(2023, 12, 31), c.DateTo)

	_, err = criteria(&Params{Type: "gift"})
	assert.Error(t, err)
	_, err = criteria(&Params{From: "01/01/2023"})
	assert.Error(t, err)

	c, err = criteria(&Params{})
	require.NoError(t, err)
	assert.True(t, c.IsEmpty())
}
