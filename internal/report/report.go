// Package report prints a transaction list for the terminal.
package report

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"bilancio/internal/core"
)

const (
	FormatTable = "table"
	FormatJSON  = "json"
)

type Options struct {
	Criteria core.Criteria
	Format   string
	// ByCategory adds a per-category totals table.
	ByCategory bool
}

// Output is the JSON form of a report.
type Output struct {
	Filter       core.Criteria      `json:"filter"`
	Transactions []core.Transaction `json:"transactions"`
	Summary      core.Summary       `json:"summary"`
	// Balance covers every transaction, not just the filtered ones.
	Balance core.Money `json:"balance"`
}

func Build(ts []core.Transaction, c core.Criteria) Output {
	filtered := core.Apply(ts, c)
	if filtered == nil {
		filtered = []core.Transaction{}
	}
	return Output{
		Filter:       c,
		Transactions: filtered,
		Summary:      core.Summarize(filtered),
		Balance:      core.Balance(ts),
	}
}

func Render(w io.Writer, ts []core.Transaction, opts Options) error {
	out := Build(ts, opts.Criteria)
	switch opts.Format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	case "", FormatTable:
		printTable(w, out)
		if opts.ByCategory {
			fmt.Fprintln(w)
			printCategories(w, out.Summary)
		}
		return nil
	default:
		return fmt.Errorf("unknown format %q", opts.Format)
	}
}

func printTable(w io.Writer, out Output) {
	if !out.Filter.IsEmpty() {
		fmt.Fprintf(w, "Filter: %s\n", describe(out.Filter))
	}
	fmt.Fprintf(w, "Showing %d transactions\n\n", out.Summary.Count)

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"ID", "Date", "Type", "Category", "Amount"})
	for _, tx := range out.Transactions {
		t.AppendRow(table.Row{tx.ID, tx.Date.String(), typeLabel(tx.Type), tx.Category, signed(tx)})
	}
	t.AppendSeparator()
	t.AppendFooter(table.Row{"", "", "", "Shown", colorMoney(out.Summary.Balance)})
	t.AppendFooter(table.Row{"", "", "", text.Bold.Sprint("Balance"), text.Bold.Sprint(colorMoney(out.Balance))})

	t.SetStyle(table.StyleRounded)
	t.Style().Format.Header = text.FormatDefault
	t.Style().Format.Footer = text.FormatDefault
	t.SetColumnConfigs([]table.ColumnConfig{{Number: 5, Align: text.AlignRight, AlignFooter: text.AlignRight}})
	t.Render()
}

func printCategories(w io.Writer, s core.Summary) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"Category", "Income", "Expense"})
	for _, c := range s.ByCategory {
		name := c.Name
		if name == "" {
			name = text.FgHiBlack.Sprint("(none)")
		}
		t.AppendRow(table.Row{name, c.Income.String(), c.Expense.String()})
	}
	t.AppendSeparator()
	t.AppendFooter(table.Row{"Total", s.Income.String(), s.Expense.String()})
	t.SetStyle(table.StyleRounded)
	t.Style().Format.Header = text.FormatDefault
	t.Style().Format.Footer = text.FormatDefault
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight, AlignFooter: text.AlignRight},
		{Number: 3, Align: text.AlignRight, AlignFooter: text.AlignRight},
	})
	t.Render()
}

func typeLabel(t core.TransactionType) string {
	switch t {
	case core.Income:
		return text.FgGreen.Sprint(string(t))
	case core.Expense:
		return text.FgRed.Sprint(string(t))
	default:
		return string(t)
	}
}

// signed shows expenses with a leading minus.
func signed(t core.Transaction) string {
	if t.Type == core.Expense && t.Amount.Cents != 0 {
		return "-" + t.Amount.String()
	}
	return t.Amount.String()
}

func colorMoney(m core.Money) string {
	if m.Cents < 0 {
		return text.FgRed.Sprint(m.String())
	}
	return text.FgGreen.Sprint(m.String())
}

func describe(c core.Criteria) string {
	var s string
	add := func(k, v string) {
		if v == "" {
			return
		}
		if s != "" {
			s += ", "
		}
		s += k + "=" + v
	}
	add("type", string(c.Type))
	add("category", c.Category)
	add("from", c.DateFrom.String())
	add("to", c.DateTo.String())
	return s
}
