package models

import (
	"time"

	"github.com/expensetracker/backend/internal/domain/analytics"
	"github.com/shopspring/decimal"
)

// ExpenseCacheModel is the GORM model for the local expense read model.
// Rows are keyed by the upstream expense ID so replayed events land on
// the same row instead of creating duplicates.
type ExpenseCacheModel struct {
	ID         uint            `gorm:"primaryKey;autoIncrement"`
	ExpenseID  int64           `gorm:"uniqueIndex;not null"`
	UserID     string          `gorm:"size:64;index:idx_expense_cache_user_date;not null"`
	Amount     decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	CategoryID int64           `gorm:"not null"`
	Date       time.Time       `gorm:"index:idx_expense_cache_user_date;not null"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// TableName specifies the table name for ExpenseCacheModel
func (ExpenseCacheModel) TableName() string {
	return "expense_cache"
}

// ToDomain converts the model to a domain entity
func (m *ExpenseCacheModel) ToDomain() *analytics.CachedExpense {
	return &analytics.CachedExpense{
		ExpenseID:  m.ExpenseID,
		UserID:     m.UserID,
		Amount:     m.Amount,
		CategoryID: m.CategoryID,
		Date:       m.Date,
	}
}

// ExpenseCacheFromDomain converts a domain entity to the model
func ExpenseCacheFromDomain(e *analytics.CachedExpense) *ExpenseCacheModel {
	return &ExpenseCacheModel{
		ExpenseID:  e.ExpenseID,
		UserID:     e.UserID,
		Amount:     e.Amount,
		CategoryID: e.CategoryID,
		Date:       e.Date,
	}
}
