package analytics

import (
	"time"

	domain "github.com/expensetracker/backend/internal/domain/analytics"
	"github.com/shopspring/decimal"
)

// SpendingSummary aggregates a user's spending over a period
type SpendingSummary struct {
	TotalExpenses  float64   `json:"total_expenses"`
	ExpenseCount   int       `json:"expense_count"`
	AverageExpense float64   `json:"average_expense"`
	PeriodStart    time.Time `json:"period_start"`
	PeriodEnd      time.Time `json:"period_end"`
}

// CategoryBreakdown is one category's share of spending over a period
type CategoryBreakdown struct {
	CategoryID   int64   `json:"category_id"`
	CategoryName string  `json:"category_name"`
	TotalAmount  float64 `json:"total_amount"`
	ExpenseCount int     `json:"expense_count"`
	Percentage   float64 `json:"percentage"`
}

// TrendPoint is one bucket of the spending trend series
type TrendPoint struct {
	Date   string  `json:"date"`
	Amount float64 `json:"amount"`
}

// SpendingTrends is the bucketed spending series for a period
type SpendingTrends struct {
	Period string       `json:"period"`
	Data   []TrendPoint `json:"data"`
}

// BudgetStatus compares one budget against actual spending
type BudgetStatus struct {
	BudgetID        string  `json:"budget_id"`
	BudgetAmount    float64 `json:"budget_amount"`
	SpentAmount     float64 `json:"spent_amount"`
	RemainingAmount float64 `json:"remaining_amount"`
	PercentageUsed  float64 `json:"percentage_used"`
	IsExceeded      bool    `json:"is_exceeded"`
	CategoryID      *int64  `json:"category_id"`
	Period          string  `json:"period"`
}

// CreateBudgetRequest is the payload for creating a budget
type CreateBudgetRequest struct {
	CategoryID *int64          `json:"category_id"`
	Amount     decimal.Decimal `json:"amount" binding:"required"`
	Period     string          `json:"period" binding:"required"`
	StartDate  time.Time       `json:"start_date" binding:"required"`
	EndDate    time.Time       `json:"end_date" binding:"required"`
}

// BudgetResponse is the outward representation of a budget
type BudgetResponse struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	CategoryID *int64    `json:"category_id"`
	Amount     float64   `json:"amount"`
	Period     string    `json:"period"`
	StartDate  time.Time `json:"start_date"`
	EndDate    time.Time `json:"end_date"`
	CreatedAt  time.Time `json:"created_at"`
}

// budgetToResponse converts a domain budget to its response shape
func budgetToResponse(b *domain.Budget) *BudgetResponse {
	return &BudgetResponse{
		ID:         b.ID.String(),
		UserID:     b.UserID,
		CategoryID: b.CategoryID,
		Amount:     round2(b.Amount),
		Period:     b.Period.String(),
		StartDate:  b.StartDate,
		EndDate:    b.EndDate,
		CreatedAt:  b.CreatedAt,
	}
}

// round2 converts a decimal to a float rounded to 2 places. All internal
// math stays decimal; this runs only at the response boundary.
func round2(d decimal.Decimal) float64 {
	f, _ := d.Round(2).Float64()
	return f
}
