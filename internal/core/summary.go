package core

import "sort"

// CategoryAmount represents an amount aggregated by category name.
type CategoryAmount struct {
	Name    string `json:"name"`
	Income  Money  `json:"income"`
	Expense Money  `json:"expense"`
}

// Summary totals a transaction list by type and category.
type Summary struct {
	Count      int              `json:"count"`
	Income     Money            `json:"income"`
	Expense    Money            `json:"expense"`
	Balance    Money            `json:"balance"`
	ByCategory []CategoryAmount `json:"byCategory"`
}

// Summarize totals ts. Categories are sorted by name.
func Summarize(ts []Transaction) Summary {
	s := Summary{Count: len(ts), ByCategory: []CategoryAmount{}}
	idx := map[string]int{}
	for _, t := range ts {
		i, ok := idx[t.Category]
		if !ok {
			i = len(s.ByCategory)
			idx[t.Category] = i
			s.ByCategory = append(s.ByCategory, CategoryAmount{Name: t.Category})
		}
		switch t.Type {
		case Income:
			s.Income = s.Income.Add(t.Amount)
			s.ByCategory[i].Income = s.ByCategory[i].Income.Add(t.Amount)
		case Expense:
			s.Expense = s.Expense.Add(t.Amount)
			s.ByCategory[i].Expense = s.ByCategory[i].Expense.Add(t.Amount)
		}
	}
	s.Balance = Balance(ts)
	sort.Slice(s.ByCategory, func(i, j int) bool { return s.ByCategory[i].Name < s.ByCategory[j].Name })
	return s
}
