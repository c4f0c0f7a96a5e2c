package models

import (
	"time"

	"github.com/expensetracker/backend/internal/domain/analytics"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BudgetModel is the GORM model for spending budgets
type BudgetModel struct {
	ID         string          `gorm:"primaryKey;size:36"`
	UserID     string          `gorm:"size:64;index;not null"`
	CategoryID *int64          `gorm:"index"`
	Amount     decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	Period     string          `gorm:"size:16;not null"`
	StartDate  time.Time       `gorm:"not null"`
	EndDate    time.Time       `gorm:"not null"`
	CreatedAt  time.Time
}

// TableName specifies the table name for BudgetModel
func (BudgetModel) TableName() string {
	return "budgets"
}

// ToDomain converts the model to a domain entity
func (m *BudgetModel) ToDomain() (*analytics.Budget, error) {
	id, err := uuid.Parse(m.ID)
	if err != nil {
		return nil, err
	}
	return &analytics.Budget{
		ID:         id,
		UserID:     m.UserID,
		CategoryID: m.CategoryID,
		Amount:     m.Amount,
		Period:     analytics.BudgetPeriod(m.Period),
		StartDate:  m.StartDate,
		EndDate:    m.EndDate,
		CreatedAt:  m.CreatedAt,
	}, nil
}

// BudgetFromDomain converts a domain entity to the model
func BudgetFromDomain(b *analytics.Budget) *BudgetModel {
	return &BudgetModel{
		ID:         b.ID.String(),
		UserID:     b.UserID,
		CategoryID: b.CategoryID,
		Amount:     b.Amount,
		Period:     string(b.Period),
		StartDate:  b.StartDate,
		EndDate:    b.EndDate,
		CreatedAt:  b.CreatedAt,
	}
}
