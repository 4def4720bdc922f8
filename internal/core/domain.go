package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"
)

// DateLayout is the wire format of a calendar date.
const DateLayout = "2006-01-02"

type (
	TransactionType string

	// Date is a calendar date; the time-of-day part is always midnight UTC.
	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	Transaction struct {
		ID       int64           `json:"id"`
		Date     Date            `json:"date"`
		Amount   Money           `json:"amount"`
		Type     TransactionType `json:"type"`
		Category string          `json:"category"`
	}

	// Patch carries the fields of an edit. Nil fields keep their current value.
	Patch struct {
		Date     *Date
		Amount   *Money
		Type     *TransactionType
		Category *string
	}
)

var (
	ErrNotFound      = errors.New("transaction not found")
	ErrDuplicateID   = errors.New("duplicate transaction id")
	ErrInvalidAmount = errors.New("invalid amount")
	ErrMissingType   = errors.New("missing transaction type")
	ErrInvalidType   = errors.New("invalid transaction type")
	ErrMissingDate   = errors.New("missing date")
	ErrInvalidDate   = errors.New("invalid date")
)

// IsValidation reports whether err is caused by malformed transaction data.
func IsValidation(err error) bool {
	for _, target := range []error{ErrInvalidAmount, ErrMissingType, ErrInvalidType, ErrMissingDate, ErrInvalidDate} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func (t TransactionType) Validate() error {
	switch t {
	case Income, Expense:
		return nil
	case "":
		return ErrMissingType
	default:
		return fmt.Errorf("%w: %q", ErrInvalidType, string(t))
	}
}

// ParseTransactionType normalizes surrounding whitespace only; matching stays exact.
func ParseTransactionType(s string) (TransactionType, error) {
	t := TransactionType(strings.TrimSpace(s))
	if err := t.Validate(); err != nil {
		return "", err
	}
	return t, nil
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}, ErrMissingDate
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return Date{Time: t}, nil
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

// Before and After compare calendar days.
func (d Date) Before(o Date) bool { return d.Time.Before(o.Time) }
func (d Date) After(o Date) bool  { return d.Time.After(o.Time) }

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrMissingDate
	}
	return nil
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (m Money) Validate() error {
	if m.Cents < 0 || m.Cents > MaxCents {
		return ErrInvalidAmount
	}
	return nil
}

func (t Transaction) Validate() error {
	if err := t.Date.Validate(); err != nil {
		return err
	}
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	return t.Type.Validate()
}

// Apply returns t with the patch fields overriding the current ones.
func (p Patch) Apply(t Transaction) Transaction {
	if p.Date != nil {
		t.Date = *p.Date
	}
	if p.Amount != nil {
		t.Amount = *p.Amount
	}
	if p.Type != nil {
		t.Type = *p.Type
	}
	if p.Category != nil {
		t.Category = *p.Category
	}
	return t
}

// IsEmpty reports whether the patch changes nothing.
func (p Patch) IsEmpty() bool {
	return p.Date == nil && p.Amount == nil && p.Type == nil && p.Category == nil
}
