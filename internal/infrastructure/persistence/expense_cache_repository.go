package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/expensetracker/backend/internal/domain/analytics"
	"github.com/expensetracker/backend/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormExpenseCacheRepository implements analytics.ExpenseCacheRepository using GORM
type GormExpenseCacheRepository struct {
	db *gorm.DB
}

// NewGormExpenseCacheRepository creates a new GORM expense cache repository
func NewGormExpenseCacheRepository(db *gorm.DB) *GormExpenseCacheRepository {
	return &GormExpenseCacheRepository{db: db}
}

// Upsert inserts the projection or overwrites the row sharing its expense ID
func (r *GormExpenseCacheRepository) Upsert(ctx context.Context, expense *analytics.CachedExpense) error {
	model := models.ExpenseCacheFromDomain(expense)
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "expense_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"user_id", "amount", "category_id", "date", "updated_at"}),
	}).Create(model).Error
	if err != nil {
		return fmt.Errorf("failed to upsert cached expense %d: %w", expense.ExpenseID, err)
	}
	return nil
}

// UpdateAmount overwrites amount and category of an existing projection.
// A missing row is not an error.
func (r *GormExpenseCacheRepository) UpdateAmount(ctx context.Context, expenseID int64, amount decimal.Decimal, categoryID int64) error {
	err := r.db.WithContext(ctx).
		Model(&models.ExpenseCacheModel{}).
		Where("expense_id = ?", expenseID).
		Updates(map[string]interface{}{
			"amount":      amount,
			"category_id": categoryID,
		}).Error
	if err != nil {
		return fmt.Errorf("failed to update cached expense %d: %w", expenseID, err)
	}
	return nil
}

// Delete removes the projection. A missing row is not an error.
func (r *GormExpenseCacheRepository) Delete(ctx context.Context, expenseID int64) error {
	err := r.db.WithContext(ctx).
		Where("expense_id = ?", expenseID).
		Delete(&models.ExpenseCacheModel{}).Error
	if err != nil {
		return fmt.Errorf("failed to delete cached expense %d: %w", expenseID, err)
	}
	return nil
}

// FindByUserAndRange returns all projections for a user dated inside [start, end]
func (r *GormExpenseCacheRepository) FindByUserAndRange(ctx context.Context, userID string, start, end time.Time) ([]analytics.CachedExpense, error) {
	var rows []models.ExpenseCacheModel
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND date >= ? AND date <= ?", userID, start, end).
		Order("date ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query cached expenses for user %s: %w", userID, err)
	}

	expenses := make([]analytics.CachedExpense, 0, len(rows))
	for i := range rows {
		expenses = append(expenses, *rows[i].ToDomain())
	}
	return expenses, nil
}

// SumByUserAndRange returns the amount total for a user inside [start, end],
// optionally restricted to one category
func (r *GormExpenseCacheRepository) SumByUserAndRange(ctx context.Context, userID string, start, end time.Time, categoryID *int64) (decimal.Decimal, error) {
	query := r.db.WithContext(ctx).
		Model(&models.ExpenseCacheModel{}).
		Where("user_id = ? AND date >= ? AND date <= ?", userID, start, end)
	if categoryID != nil {
		query = query.Where("category_id = ?", *categoryID)
	}

	var total decimal.Decimal
	row := query.Select("COALESCE(SUM(amount), 0)").Row()
	if err := row.Scan(&total); err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum cached expenses for user %s: %w", userID, err)
	}
	return total, nil
}
