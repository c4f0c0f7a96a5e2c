package analytics

import (
	"context"

	domain "github.com/expensetracker/backend/internal/domain/analytics"
	"go.uber.org/zap"
)

// BudgetService handles budget creation and listing
type BudgetService struct {
	budgets domain.BudgetRepository
	log     *zap.Logger
}

// NewBudgetService creates a new BudgetService
func NewBudgetService(budgets domain.BudgetRepository, log *zap.Logger) *BudgetService {
	return &BudgetService{budgets: budgets, log: log}
}

// CreateBudget validates and stores a new budget for the user
func (s *BudgetService) CreateBudget(ctx context.Context, userID string, req CreateBudgetRequest) (*BudgetResponse, error) {
	budget, err := domain.NewBudget(userID, req.CategoryID, req.Amount,
		domain.BudgetPeriod(req.Period), req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}

	if err := s.budgets.Save(ctx, budget); err != nil {
		return nil, err
	}

	s.log.Info("budget created",
		zap.String("budget_id", budget.ID.String()),
		zap.String("user_id", userID),
		zap.String("period", budget.Period.String()),
	)

	return budgetToResponse(budget), nil
}

// ListBudgets returns all budgets owned by the user
func (s *BudgetService) ListBudgets(ctx context.Context, userID string) ([]BudgetResponse, error) {
	budgets, err := s.budgets.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	result := make([]BudgetResponse, 0, len(budgets))
	for i := range budgets {
		result = append(result, *budgetToResponse(&budgets[i]))
	}
	return result, nil
}
