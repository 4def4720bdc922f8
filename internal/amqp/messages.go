package amqp

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"bilancio/internal/core"
)

// Op names the store mutation an event reports.
type Op string

const (
	OpCreated Op = "created"
	OpUpdated Op = "updated"
	OpDeleted Op = "deleted"
)

var ErrInvalidEvent = errors.New("invalid transaction event")

// TransactionEvent reports a committed mutation. Created and updated events
// carry the full record so consumers never read back from the store.
type TransactionEvent struct {
	Op          Op                `json:"op"`
	ID          int64             `json:"id"`
	Transaction *core.Transaction `json:"transaction,omitempty"`
	Timestamp   time.Time         `json:"timestamp"`
}

func NewCreatedEvent(t core.Transaction) *TransactionEvent {
	return &TransactionEvent{Op: OpCreated, ID: t.ID, Transaction: &t, Timestamp: time.Now()}
}

func NewUpdatedEvent(t core.Transaction) *TransactionEvent {
	return &TransactionEvent{Op: OpUpdated, ID: t.ID, Transaction: &t, Timestamp: time.Now()}
}

func NewDeletedEvent(id int64) *TransactionEvent {
	return &TransactionEvent{Op: OpDeleted, ID: id, Timestamp: time.Now()}
}

func (e *TransactionEvent) Validate() error {
	if e.ID == 0 {
		return fmt.Errorf("%w: missing id", ErrInvalidEvent)
	}
	switch e.Op {
	case OpCreated, OpUpdated:
		if e.Transaction == nil {
			return fmt.Errorf("%w: %s event without transaction", ErrInvalidEvent, e.Op)
		}
		if e.Transaction.ID != e.ID {
			return fmt.Errorf("%w: id %d does not match transaction %d", ErrInvalidEvent, e.ID, e.Transaction.ID)
		}
		return e.Transaction.Validate()
	case OpDeleted:
		return nil
	default:
		return fmt.Errorf("%w: unknown op %q", ErrInvalidEvent, e.Op)
	}
}

func (e *TransactionEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// EventFromJSON decodes and validates an event body.
func EventFromJSON(data []byte) (*TransactionEvent, error) {
	var e TransactionEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	if err := e.Validate(); err != nil {
		return nil, err
	}
	return &e, nil
}
