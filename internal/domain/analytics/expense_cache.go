// Package analytics holds the analytics service's domain model: the
// projected expense cache and user budgets.
package analytics

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// CachedExpense is the projection of an upstream expense, keyed by the
// origin expense ID. It is a derived, disposable copy: the table can be
// dropped and rebuilt by replaying the event history.
type CachedExpense struct {
	ExpenseID  int64
	UserID     string
	Amount     decimal.Decimal
	CategoryID int64
	Date       time.Time
}

// ExpenseCacheRepository persists cached expense projections.
//
// Upsert and Delete are idempotent: re-applying the same event any number
// of times yields the same final state. UpdateAmount and Delete treat a
// missing target as a no-op so that re-ordered deliveries (an update or
// delete arriving before its create) never fail.
type ExpenseCacheRepository interface {
	// Upsert inserts the projection or, when a row with the same
	// expense ID already exists, overwrites its fields.
	Upsert(ctx context.Context, expense *CachedExpense) error

	// UpdateAmount overwrites amount and category of an existing
	// projection. Missing rows are ignored.
	UpdateAmount(ctx context.Context, expenseID int64, amount decimal.Decimal, categoryID int64) error

	// Delete removes the projection. Missing rows are ignored.
	Delete(ctx context.Context, expenseID int64) error

	// FindByUserAndRange returns all projections for a user with a date
	// inside [start, end].
	FindByUserAndRange(ctx context.Context, userID string, start, end time.Time) ([]CachedExpense, error)

	// SumByUserAndRange returns the amount total for a user inside
	// [start, end], optionally restricted to one category.
	SumByUserAndRange(ctx context.Context, userID string, start, end time.Time, categoryID *int64) (decimal.Decimal, error)
}
