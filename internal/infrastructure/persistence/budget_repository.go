package persistence

import (
	"context"
	"fmt"

	"github.com/expensetracker/backend/internal/domain/analytics"
	"github.com/expensetracker/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormBudgetRepository implements analytics.BudgetRepository using GORM
type GormBudgetRepository struct {
	db *gorm.DB
}

// NewGormBudgetRepository creates a new GORM budget repository
func NewGormBudgetRepository(db *gorm.DB) *GormBudgetRepository {
	return &GormBudgetRepository{db: db}
}

// Save stores a new budget
func (r *GormBudgetRepository) Save(ctx context.Context, budget *analytics.Budget) error {
	model := models.BudgetFromDomain(budget)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to save budget %s: %w", budget.ID, err)
	}
	return nil
}

// FindByUser returns all budgets owned by a user, newest first
func (r *GormBudgetRepository) FindByUser(ctx context.Context, userID string) ([]analytics.Budget, error) {
	var rows []models.BudgetModel
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query budgets for user %s: %w", userID, err)
	}

	budgets := make([]analytics.Budget, 0, len(rows))
	for i := range rows {
		budget, err := rows[i].ToDomain()
		if err != nil {
			return nil, fmt.Errorf("failed to map budget %s: %w", rows[i].ID, err)
		}
		budgets = append(budgets, *budget)
	}
	return budgets, nil
}
