// Package event defines the typed events exchanged between services and
// the wire codec for the broker message body.
package event

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Event types carried in the envelope's event_type field.
const (
	TypeUserRegistered = "user.registered"
	TypeUserUpdated    = "user.updated"
	TypeExpenseCreated = "expense.created"
	TypeExpenseUpdated = "expense.updated"
	TypeExpenseDeleted = "expense.deleted"
)

// Queue names shared by producers and consumers. Both sides declare the
// queue as durable so startup order does not matter.
const (
	QueueUserEvents    = "user_events"
	QueueExpenseEvents = "expense_events"
)

// Event is the closed set of messages that travel through the broker.
// Each concrete kind carries its own strongly-typed field set; consumers
// type-switch over the five kinds.
type Event interface {
	// EventType returns the wire identifier, e.g. "expense.created"
	EventType() string
}

// UserRegistered is published by the identity service after a successful
// registration commit.
type UserRegistered struct {
	UserID   string `json:"user_id"`
	Email    string `json:"email"`
	Username string `json:"username"`
}

// EventType implements Event
func (UserRegistered) EventType() string { return TypeUserRegistered }

// UserUpdated is published by the identity service after a profile update.
type UserUpdated struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}

// EventType implements Event
func (UserUpdated) EventType() string { return TypeUserUpdated }

// ExpenseCreated is published by the expense service after an expense row
// has been committed.
type ExpenseCreated struct {
	ExpenseID  int64
	UserID     string
	Amount     decimal.Decimal
	CategoryID int64
	Date       time.Time
}

// EventType implements Event
func (ExpenseCreated) EventType() string { return TypeExpenseCreated }

// MarshalJSON encodes the payload with the amount as a bare JSON number
// and the date as an ISO-8601 string.
func (e ExpenseCreated) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		ExpenseID  int64           `json:"expense_id"`
		UserID     string          `json:"user_id"`
		Amount     json.RawMessage `json:"amount"`
		CategoryID int64           `json:"category_id"`
		Date       string          `json:"date"`
	}{
		ExpenseID:  e.ExpenseID,
		UserID:     e.UserID,
		Amount:     json.RawMessage(e.Amount.String()),
		CategoryID: e.CategoryID,
		Date:       e.Date.Format(time.RFC3339),
	})
}

// UnmarshalJSON decodes the payload, accepting dates with or without a
// timezone offset.
func (e *ExpenseCreated) UnmarshalJSON(b []byte) error {
	var raw struct {
		ExpenseID  int64           `json:"expense_id"`
		UserID     string          `json:"user_id"`
		Amount     decimal.Decimal `json:"amount"`
		CategoryID int64           `json:"category_id"`
		Date       string          `json:"date"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	date, err := parseEventTime(raw.Date)
	if err != nil {
		return err
	}
	e.ExpenseID = raw.ExpenseID
	e.UserID = raw.UserID
	e.Amount = raw.Amount
	e.CategoryID = raw.CategoryID
	e.Date = date
	return nil
}

// ExpenseUpdated is published by the expense service after an expense row
// has been modified. The date of the expense is immutable and therefore
// not part of the payload.
type ExpenseUpdated struct {
	ExpenseID  int64
	UserID     string
	Amount     decimal.Decimal
	CategoryID int64
}

// EventType implements Event
func (ExpenseUpdated) EventType() string { return TypeExpenseUpdated }

// MarshalJSON encodes the payload with the amount as a bare JSON number.
func (e ExpenseUpdated) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		ExpenseID  int64           `json:"expense_id"`
		UserID     string          `json:"user_id"`
		Amount     json.RawMessage `json:"amount"`
		CategoryID int64           `json:"category_id"`
	}{
		ExpenseID:  e.ExpenseID,
		UserID:     e.UserID,
		Amount:     json.RawMessage(e.Amount.String()),
		CategoryID: e.CategoryID,
	})
}

// UnmarshalJSON decodes the payload.
func (e *ExpenseUpdated) UnmarshalJSON(b []byte) error {
	var raw struct {
		ExpenseID  int64           `json:"expense_id"`
		UserID     string          `json:"user_id"`
		Amount     decimal.Decimal `json:"amount"`
		CategoryID int64           `json:"category_id"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	e.ExpenseID = raw.ExpenseID
	e.UserID = raw.UserID
	e.Amount = raw.Amount
	e.CategoryID = raw.CategoryID
	return nil
}

// ExpenseDeleted is published by the expense service after an expense row
// has been removed.
type ExpenseDeleted struct {
	ExpenseID int64  `json:"expense_id"`
	UserID    string `json:"user_id"`
}

// EventType implements Event
func (ExpenseDeleted) EventType() string { return TypeExpenseDeleted }

// QueueFor returns the queue an event is published to: user events travel
// on user_events, expense events on expense_events.
func QueueFor(ev Event) string {
	switch ev.(type) {
	case *UserRegistered, *UserUpdated, UserRegistered, UserUpdated:
		return QueueUserEvents
	default:
		return QueueExpenseEvents
	}
}

// isoTimeLayouts are the accepted date formats, most specific first.
// Producers emit RFC 3339; historical payloads carried naive local
// timestamps without an offset.
var isoTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

func parseEventTime(s string) (time.Time, error) {
	for _, layout := range isoTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid ISO-8601 date: %q", s)
}
