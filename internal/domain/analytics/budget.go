package analytics

import (
	"context"
	"time"

	"github.com/expensetracker/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BudgetPeriod represents the recurrence of a budget
type BudgetPeriod string

const (
	BudgetPeriodMonthly BudgetPeriod = "monthly"
	BudgetPeriodYearly  BudgetPeriod = "yearly"
)

// IsValid checks if the period is a valid BudgetPeriod
func (p BudgetPeriod) IsValid() bool {
	switch p {
	case BudgetPeriodMonthly, BudgetPeriodYearly:
		return true
	}
	return false
}

// String returns the string representation of BudgetPeriod
func (p BudgetPeriod) String() string {
	return string(p)
}

// Budget is a spending limit a user sets for a date range. A nil
// CategoryID means the budget applies across all categories. The spent
// figure is never stored; it is computed from the expense cache on read.
type Budget struct {
	ID         uuid.UUID
	UserID     string
	CategoryID *int64
	Amount     decimal.Decimal
	Period     BudgetPeriod
	StartDate  time.Time
	EndDate    time.Time
	CreatedAt  time.Time
}

// NewBudget creates a budget, validating its invariants: a positive
// amount, a known period, and start_date <= end_date.
func NewBudget(userID string, categoryID *int64, amount decimal.Decimal, period BudgetPeriod, start, end time.Time) (*Budget, error) {
	if userID == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "user ID is required")
	}
	if !amount.IsPositive() {
		return nil, shared.NewDomainError("INVALID_INPUT", "budget amount must be positive")
	}
	if !period.IsValid() {
		return nil, shared.NewDomainError("INVALID_INPUT", "budget period must be monthly or yearly")
	}
	if end.Before(start) {
		return nil, shared.NewDomainError("INVALID_INPUT", "budget start date must not be after end date")
	}
	return &Budget{
		ID:         uuid.New(),
		UserID:     userID,
		CategoryID: categoryID,
		Amount:     amount,
		Period:     period,
		StartDate:  start,
		EndDate:    end,
		CreatedAt:  time.Now(),
	}, nil
}

// BudgetRepository persists budgets
type BudgetRepository interface {
	// Save stores a new budget
	Save(ctx context.Context, budget *Budget) error

	// FindByUser returns all budgets owned by a user
	FindByUser(ctx context.Context, userID string) ([]Budget, error)
}
