package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/GiGurra/boa/pkg/boa"

	"bilancio/internal/core"
	"bilancio/internal/export"
	"bilancio/internal/report"
)

type Params struct {
	File       string `descr:"Path to a transactions.json or .xlsx export" positional:"true"`
	Type       string `descr:"Only show this transaction type" alts:"income,expense" optional:"true"`
	Category   string `descr:"Only show this category" optional:"true"`
	From       string `descr:"Earliest date, YYYY-MM-DD" optional:"true"`
	To         string `descr:"Latest date, YYYY-MM-DD" optional:"true"`
	Format     string `descr:"Output format" alts:"table,json" strict:"true" default:"table"`
	Categories bool   `descr:"Also print totals per category" optional:"true"`
}

func main() {
	boa.NewCmdT[Params]("bilancio-report").
		WithShort("Print a bilancio export as a table").
		WithLong("Reads a JSON or XLSX export, applies the given filter and prints the matching transactions with the overall balance.").
		WithRunFunc(func(params *Params) {
			if err := run(params); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
		}).
		Run()
}

func run(p *Params) error {
	ts, err := load(p.File)
	if err != nil {
		return fmt.Errorf("read %s: %w", p.File, err)
	}
	c, err := criteria(p)
	if err != nil {
		return err
	}
	return report.Render(os.Stdout, ts, report.Options{Criteria: c, Format: p.Format, ByCategory: p.Categories})
}

func load(path string) ([]core.Transaction, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return export.ParseXLSX(bytes.NewReader(data))
	}
	return export.ParseJSON(data)
}

func criteria(p *Params) (core.Criteria, error) {
	var c core.Criteria
	var err error
	if p.Type != "" {
		if c.Type, err = core.ParseTransactionType(p.Type); err != nil {
			return c, err
		}
	}
	c.Category = p.Category
	if p.From != "" {
		if c.DateFrom, err = core.ParseDate(p.From); err != nil {
			return c, err
		}
	}
	if p.To != "" {
		if c.DateTo, err = core.ParseDate(p.To); err != nil {
			return c, err
		}
	}
	return c, nil
}
