package core

// Draft is the form record of the add/edit workflow. Every field is kept as
// entered; conversion to a Transaction or Patch validates it.
//
// Category is a pointer so that a sent empty category, which clears it, can be
// told apart from one that was not sent at all.
type Draft struct {
	ID       int64   `json:"id,omitempty"`
	Date     string  `json:"date,omitempty"`
	Amount   string  `json:"amount,omitempty"`
	Type     string  `json:"type,omitempty"`
	Category *string `json:"category,omitempty"`
}

// StringPtr returns a pointer to s, for building drafts from literals.
func StringPtr(s string) *string { return &s }

// DraftOf pre-populates a draft from a stored transaction.
func DraftOf(t Transaction) Draft {
	return Draft{
		ID:       t.ID,
		Date:     t.Date.String(),
		Amount:   t.Amount.String(),
		Type:     string(t.Type),
		Category: StringPtr(t.Category),
	}
}

// CategoryValue returns the category, or "" when none was given.
func (d Draft) CategoryValue() string {
	if d.Category == nil {
		return ""
	}
	return *d.Category
}

// Merge overlays the fields of o onto d. Date, amount and type count as given
// when non-empty; category counts as given when set, even to "".
func (d Draft) Merge(o Draft) Draft {
	if o.ID != 0 {
		d.ID = o.ID
	}
	if o.Date != "" {
		d.Date = o.Date
	}
	if o.Amount != "" {
		d.Amount = o.Amount
	}
	if o.Type != "" {
		d.Type = o.Type
	}
	if o.Category != nil {
		d.Category = StringPtr(*o.Category)
	}
	return d
}

// Transaction converts a complete draft into a validated transaction. The
// category is stored exactly as given.
func (d Draft) Transaction() (Transaction, error) {
	date, err := ParseDate(d.Date)
	if err != nil {
		return Transaction{}, err
	}
	amount, err := ParseAmount(d.Amount)
	if err != nil {
		return Transaction{}, err
	}
	typ, err := ParseTransactionType(d.Type)
	if err != nil {
		return Transaction{}, err
	}
	t := Transaction{
		ID:       d.ID,
		Date:     date,
		Amount:   amount,
		Type:     typ,
		Category: d.CategoryValue(),
	}
	return t, t.Validate()
}

// Patch converts the fields present in the draft into a patch.
func (d Draft) Patch() (Patch, error) {
	var p Patch
	if d.Date != "" {
		date, err := ParseDate(d.Date)
		if err != nil {
			return Patch{}, err
		}
		p.Date = &date
	}
	if d.Amount != "" {
		amount, err := ParseAmount(d.Amount)
		if err != nil {
			return Patch{}, err
		}
		p.Amount = &amount
	}
	if d.Type != "" {
		typ, err := ParseTransactionType(d.Type)
		if err != nil {
			return Patch{}, err
		}
		p.Type = &typ
	}
	if d.Category != nil {
		p.Category = StringPtr(*d.Category)
	}
	return p, nil
}
