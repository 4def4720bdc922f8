package core

import (
	"iter"
	"net/url"
	"slices"
	"strings"
)

// Criteria narrows a transaction list. A zero field puts no constraint on it.
type Criteria struct {
	Type     TransactionType `json:"type,omitempty"`
	Category string          `json:"category,omitempty"`
	DateFrom Date            `json:"dateFrom,omitzero"`
	DateTo   Date            `json:"dateTo,omitzero"`
}

// IsEmpty reports whether no criterion is set.
func (c Criteria) IsEmpty() bool {
	return c.Type == "" && c.Category == "" && c.DateFrom.IsZero() && c.DateTo.IsZero()
}

// Matches reports whether t satisfies every set criterion.
func (c Criteria) Matches(t Transaction) bool {
	if c.Type != "" && t.Type != c.Type {
		return false
	}
	if c.Category != "" && t.Category != c.Category {
		return false
	}
	if !c.DateFrom.IsZero() && t.Date.Before(c.DateFrom) {
		return false
	}
	if !c.DateTo.IsZero() && t.Date.After(c.DateTo) {
		return false
	}
	return true
}

// Seq yields the matching transactions lazily, in input order.
func (c Criteria) Seq(ts []Transaction) iter.Seq[Transaction] {
	return func(yield func(Transaction) bool) {
		for _, t := range ts {
			if c.Matches(t) && !yield(t) {
				return
			}
		}
	}
}

// Override returns c with the set fields of o taking precedence.
func (c Criteria) Override(o Criteria) Criteria {
	if o.Type != "" {
		c.Type = o.Type
	}
	if o.Category != "" {
		c.Category = o.Category
	}
	if !o.DateFrom.IsZero() {
		c.DateFrom = o.DateFrom
	}
	if !o.DateTo.IsZero() {
		c.DateTo = o.DateTo
	}
	return c
}

// Apply returns the subsequence of ts matching c. With no criteria set the
// input is returned unchanged.
func Apply(ts []Transaction, c Criteria) []Transaction {
	if c.IsEmpty() {
		return ts
	}
	out := slices.Collect(c.Seq(ts))
	if out == nil {
		out = []Transaction{}
	}
	return out
}

// ParseCriteria reads type, category, dateFrom and dateTo from query values.
// Empty values are treated as unset.
func ParseCriteria(q url.Values) (Criteria, error) {
	var c Criteria
	if v := strings.TrimSpace(q.Get("type")); v != "" {
		t, err := ParseTransactionType(v)
		if err != nil {
			return Criteria{}, err
		}
		c.Type = t
	}
	c.Category = q.Get("category")
	if v := strings.TrimSpace(q.Get("dateFrom")); v != "" {
		d, err := ParseDate(v)
		if err != nil {
			return Criteria{}, err
		}
		c.DateFrom = d
	}
	if v := strings.TrimSpace(q.Get("dateTo")); v != "" {
		d, err := ParseDate(v)
		if err != nil {
			return Criteria{}, err
		}
		c.DateTo = d
	}
	return c, nil
}
