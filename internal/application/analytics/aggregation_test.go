package analytics

import (
	"context"
	"testing"
	"time"

	domain "github.com/expensetracker/backend/internal/domain/analytics"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memExpenseRepo is an in-memory ExpenseCacheRepository with real
// filtering, so aggregation tests exercise window and category logic
// against actual data instead of canned return values.
type memExpenseRepo struct {
	expenses []domain.CachedExpense
}

func (r *memExpenseRepo) Upsert(ctx context.Context, expense *domain.CachedExpense) error {
	for i := range r.expenses {
		if r.expenses[i].ExpenseID == expense.ExpenseID {
			r.expenses[i] = *expense
			return nil
		}
	}
	r.expenses = append(r.expenses, *expense)
	return nil
}

func (r *memExpenseRepo) UpdateAmount(ctx context.Context, expenseID int64, amount decimal.Decimal, categoryID int64) error {
	for i := range r.expenses {
		if r.expenses[i].ExpenseID == expenseID {
			r.expenses[i].Amount = amount
			r.expenses[i].CategoryID = categoryID
		}
	}
	return nil
}

func (r *memExpenseRepo) Delete(ctx context.Context, expenseID int64) error {
	kept := r.expenses[:0]
	for i := range r.expenses {
		if r.expenses[i].ExpenseID != expenseID {
			kept = append(kept, r.expenses[i])
		}
	}
	r.expenses = kept
	return nil
}

func (r *memExpenseRepo) FindByUserAndRange(ctx context.Context, userID string, start, end time.Time) ([]domain.CachedExpense, error) {
	var found []domain.CachedExpense
	for i := range r.expenses {
		e := r.expenses[i]
		if e.UserID == userID && !e.Date.Before(start) && !e.Date.After(end) {
			found = append(found, e)
		}
	}
	return found, nil
}

func (r *memExpenseRepo) SumByUserAndRange(ctx context.Context, userID string, start, end time.Time, categoryID *int64) (decimal.Decimal, error) {
	total := decimal.Zero
	for i := range r.expenses {
		e := r.expenses[i]
		if e.UserID != userID || e.Date.Before(start) || e.Date.After(end) {
			continue
		}
		if categoryID != nil && e.CategoryID != *categoryID {
			continue
		}
		total = total.Add(e.Amount)
	}
	return total, nil
}

// memBudgetRepo is an in-memory BudgetRepository
type memBudgetRepo struct {
	budgets []domain.Budget
}

func (r *memBudgetRepo) Save(ctx context.Context, budget *domain.Budget) error {
	r.budgets = append(r.budgets, *budget)
	return nil
}

func (r *memBudgetRepo) FindByUser(ctx context.Context, userID string) ([]domain.Budget, error) {
	var found []domain.Budget
	for i := range r.budgets {
		if r.budgets[i].UserID == userID {
			found = append(found, r.budgets[i])
		}
	}
	return found, nil
}

var aggNow = time.Date(2025, 7, 20, 12, 0, 0, 0, time.UTC)

func newAggService(expenses *memExpenseRepo, budgets *memBudgetRepo) *AggregationService {
	s := NewAggregationService(expenses, budgets)
	s.now = func() time.Time { return aggNow }
	return s
}

func expenseOn(id int64, user, amount string, category int64, date string) domain.CachedExpense {
	d, err := time.Parse("2006-01-02", date)
	if err != nil {
		panic(err)
	}
	return domain.CachedExpense{
		ExpenseID:  id,
		UserID:     user,
		Amount:     decimal.RequireFromString(amount),
		CategoryID: category,
		Date:       d,
	}
}

func TestAggregationService_Summary(t *testing.T) {
	ctx := context.Background()

	t.Run("computes total, count and mean", func(t *testing.T) {
		repo := &memExpenseRepo{expenses: []domain.CachedExpense{
			expenseOn(1, "u1", "10.00", 1, "2025-07-01"),
			expenseOn(2, "u1", "20.00", 2, "2025-07-02"),
			expenseOn(3, "u1", "15.00", 1, "2025-07-03"),
		}}
		s := newAggService(repo, &memBudgetRepo{})

		summary, err := s.Summary(ctx, "u1", mustDate("2025-07-01"), mustDate("2025-07-31"))
		require.NoError(t, err)

		assert.Equal(t, 45.0, summary.TotalExpenses)
		assert.Equal(t, 3, summary.ExpenseCount)
		assert.Equal(t, 15.0, summary.AverageExpense)
	})

	t.Run("zero bounds default to the last 30 days", func(t *testing.T) {
		repo := &memExpenseRepo{expenses: []domain.CachedExpense{
			expenseOn(1, "u1", "10.00", 1, "2025-07-10"),
			// outside the default window
			expenseOn(2, "u1", "99.00", 1, "2025-05-01"),
		}}
		s := newAggService(repo, &memBudgetRepo{})

		summary, err := s.Summary(ctx, "u1", time.Time{}, time.Time{})
		require.NoError(t, err)

		assert.Equal(t, 10.0, summary.TotalExpenses)
		assert.Equal(t, aggNow, summary.PeriodEnd)
		assert.Equal(t, aggNow.AddDate(0, 0, -30), summary.PeriodStart)
	})

	t.Run("empty window yields zeros", func(t *testing.T) {
		s := newAggService(&memExpenseRepo{}, &memBudgetRepo{})

		summary, err := s.Summary(ctx, "u1", time.Time{}, time.Time{})
		require.NoError(t, err)

		assert.Zero(t, summary.TotalExpenses)
		assert.Zero(t, summary.ExpenseCount)
		assert.Zero(t, summary.AverageExpense)
	})

	t.Run("mean avoids binary float drift", func(t *testing.T) {
		repo := &memExpenseRepo{expenses: []domain.CachedExpense{
			expenseOn(1, "u1", "0.10", 1, "2025-07-01"),
			expenseOn(2, "u1", "0.20", 1, "2025-07-02"),
		}}
		s := newAggService(repo, &memBudgetRepo{})

		summary, err := s.Summary(ctx, "u1", mustDate("2025-07-01"), mustDate("2025-07-31"))
		require.NoError(t, err)

		assert.Equal(t, 0.3, summary.TotalExpenses)
		assert.Equal(t, 0.15, summary.AverageExpense)
	})
}

func TestAggregationService_CategoryBreakdown(t *testing.T) {
	ctx := context.Background()

	t.Run("orders by sum descending with ties by category ascending", func(t *testing.T) {
		repo := &memExpenseRepo{expenses: []domain.CachedExpense{
			expenseOn(1, "u1", "10.00", 3, "2025-07-01"),
			expenseOn(2, "u1", "30.00", 1, "2025-07-02"),
			expenseOn(3, "u1", "10.00", 2, "2025-07-03"),
		}}
		s := newAggService(repo, &memBudgetRepo{})

		breakdown, err := s.CategoryBreakdown(ctx, "u1", mustDate("2025-07-01"), mustDate("2025-07-31"))
		require.NoError(t, err)
		require.Len(t, breakdown, 3)

		assert.Equal(t, int64(1), breakdown[0].CategoryID)
		assert.Equal(t, int64(2), breakdown[1].CategoryID)
		assert.Equal(t, int64(3), breakdown[2].CategoryID)
	})

	t.Run("percentages are of the window total", func(t *testing.T) {
		repo := &memExpenseRepo{expenses: []domain.CachedExpense{
			expenseOn(1, "u1", "75.00", 1, "2025-07-01"),
			expenseOn(2, "u1", "25.00", 2, "2025-07-02"),
		}}
		s := newAggService(repo, &memBudgetRepo{})

		breakdown, err := s.CategoryBreakdown(ctx, "u1", mustDate("2025-07-01"), mustDate("2025-07-31"))
		require.NoError(t, err)
		require.Len(t, breakdown, 2)

		assert.Equal(t, 75.0, breakdown[0].Percentage)
		assert.Equal(t, 25.0, breakdown[1].Percentage)
		assert.Equal(t, 2, breakdown[0].ExpenseCount+breakdown[1].ExpenseCount)
	})

	t.Run("ordering uses exact sums, not the rounded figures", func(t *testing.T) {
		// Both sums round to 5.00; the larger exact sum must rank first
		// even though its category ID is higher.
		repo := &memExpenseRepo{expenses: []domain.CachedExpense{
			expenseOn(1, "u1", "5.001", 1, "2025-07-01"),
			expenseOn(2, "u1", "5.004", 2, "2025-07-02"),
		}}
		s := newAggService(repo, &memBudgetRepo{})

		breakdown, err := s.CategoryBreakdown(ctx, "u1", mustDate("2025-07-01"), mustDate("2025-07-31"))
		require.NoError(t, err)
		require.Len(t, breakdown, 2)

		assert.Equal(t, int64(2), breakdown[0].CategoryID)
		assert.Equal(t, int64(1), breakdown[1].CategoryID)
		assert.Equal(t, 5.0, breakdown[0].TotalAmount)
		assert.Equal(t, 5.0, breakdown[1].TotalAmount)
	})

	t.Run("empty window yields an empty slice", func(t *testing.T) {
		s := newAggService(&memExpenseRepo{}, &memBudgetRepo{})

		breakdown, err := s.CategoryBreakdown(ctx, "u1", time.Time{}, time.Time{})
		require.NoError(t, err)
		assert.Empty(t, breakdown)
	})
}

func TestAggregationService_Trends(t *testing.T) {
	ctx := context.Background()

	repo := &memExpenseRepo{expenses: []domain.CachedExpense{
		// 2025-07-14 is a Monday
		expenseOn(1, "u1", "10.00", 1, "2025-07-14"),
		expenseOn(2, "u1", "5.00", 1, "2025-07-16"),
		expenseOn(3, "u1", "20.00", 2, "2025-07-08"),
		expenseOn(4, "u1", "1.00", 1, "2025-06-28"),
	}}

	t.Run("daily buckets, ascending, no zero-fill", func(t *testing.T) {
		s := newAggService(repo, &memBudgetRepo{})

		trends, err := s.Trends(ctx, "u1", TrendPeriodDaily, 30)
		require.NoError(t, err)
		require.Len(t, trends.Data, 4)

		assert.Equal(t, "2025-06-28", trends.Data[0].Date)
		assert.Equal(t, "2025-07-08", trends.Data[1].Date)
		assert.Equal(t, "2025-07-14", trends.Data[2].Date)
		assert.Equal(t, "2025-07-16", trends.Data[3].Date)
	})

	t.Run("weekly buckets start on Monday", func(t *testing.T) {
		s := newAggService(repo, &memBudgetRepo{})

		trends, err := s.Trends(ctx, "u1", TrendPeriodWeekly, 30)
		require.NoError(t, err)
		require.Len(t, trends.Data, 3)

		// 2025-06-28 is a Saturday in the week of Monday 2025-06-23
		assert.Equal(t, "2025-06-23", trends.Data[0].Date)
		assert.Equal(t, "2025-07-07", trends.Data[1].Date)
		assert.Equal(t, "2025-07-14", trends.Data[2].Date)
		assert.Equal(t, 15.0, trends.Data[2].Amount)
	})

	t.Run("monthly buckets start on the 1st", func(t *testing.T) {
		s := newAggService(repo, &memBudgetRepo{})

		trends, err := s.Trends(ctx, "u1", TrendPeriodMonthly, 30)
		require.NoError(t, err)
		require.Len(t, trends.Data, 2)

		assert.Equal(t, "2025-06-01", trends.Data[0].Date)
		assert.Equal(t, 1.0, trends.Data[0].Amount)
		assert.Equal(t, "2025-07-01", trends.Data[1].Date)
		assert.Equal(t, 35.0, trends.Data[1].Amount)
	})

	t.Run("empty period defaults to monthly", func(t *testing.T) {
		s := newAggService(repo, &memBudgetRepo{})

		trends, err := s.Trends(ctx, "u1", "", 30)
		require.NoError(t, err)
		assert.Equal(t, TrendPeriodMonthly, trends.Period)
	})

	t.Run("unknown period is rejected", func(t *testing.T) {
		s := newAggService(repo, &memBudgetRepo{})

		_, err := s.Trends(ctx, "u1", "hourly", 30)
		assert.Error(t, err)
	})

	t.Run("no expenses yields an empty series", func(t *testing.T) {
		s := newAggService(&memExpenseRepo{}, &memBudgetRepo{})

		trends, err := s.Trends(ctx, "u1", TrendPeriodDaily, 30)
		require.NoError(t, err)
		assert.Empty(t, trends.Data)
	})
}

func TestAggregationService_BudgetStatus(t *testing.T) {
	ctx := context.Background()

	budget := func(user string, category *int64, amount string, start, end string) domain.Budget {
		return domain.Budget{
			ID:         uuid.New(),
			UserID:     user,
			CategoryID: category,
			Amount:     decimal.RequireFromString(amount),
			Period:     domain.BudgetPeriodMonthly,
			StartDate:  mustDate(start),
			EndDate:    mustDate(end),
		}
	}

	t.Run("reports spending against the budget window", func(t *testing.T) {
		expenses := &memExpenseRepo{expenses: []domain.CachedExpense{
			expenseOn(1, "u1", "80.00", 1, "2025-07-05"),
			expenseOn(2, "u1", "40.00", 2, "2025-07-06"),
			// outside the budget range
			expenseOn(3, "u1", "500.00", 1, "2025-08-10"),
		}}
		budgets := &memBudgetRepo{budgets: []domain.Budget{
			budget("u1", nil, "200.00", "2025-07-01", "2025-07-31"),
		}}
		s := newAggService(expenses, budgets)

		statuses, err := s.BudgetStatus(ctx, "u1")
		require.NoError(t, err)
		require.Len(t, statuses, 1)

		assert.Equal(t, 120.0, statuses[0].SpentAmount)
		assert.Equal(t, 80.0, statuses[0].RemainingAmount)
		assert.Equal(t, 60.0, statuses[0].PercentageUsed)
		assert.False(t, statuses[0].IsExceeded)
	})

	t.Run("category budgets only count their category", func(t *testing.T) {
		category := int64(1)
		expenses := &memExpenseRepo{expenses: []domain.CachedExpense{
			expenseOn(1, "u1", "30.00", 1, "2025-07-05"),
			expenseOn(2, "u1", "70.00", 2, "2025-07-06"),
		}}
		budgets := &memBudgetRepo{budgets: []domain.Budget{
			budget("u1", &category, "50.00", "2025-07-01", "2025-07-31"),
		}}
		s := newAggService(expenses, budgets)

		statuses, err := s.BudgetStatus(ctx, "u1")
		require.NoError(t, err)
		require.Len(t, statuses, 1)
		assert.Equal(t, 30.0, statuses[0].SpentAmount)
	})

	t.Run("exceeded budget goes negative", func(t *testing.T) {
		expenses := &memExpenseRepo{expenses: []domain.CachedExpense{
			expenseOn(1, "u1", "250.00", 1, "2025-07-05"),
		}}
		budgets := &memBudgetRepo{budgets: []domain.Budget{
			budget("u1", nil, "200.00", "2025-07-01", "2025-07-31"),
		}}
		s := newAggService(expenses, budgets)

		statuses, err := s.BudgetStatus(ctx, "u1")
		require.NoError(t, err)
		require.Len(t, statuses, 1)

		assert.True(t, statuses[0].IsExceeded)
		assert.Equal(t, -50.0, statuses[0].RemainingAmount)
		assert.Equal(t, 125.0, statuses[0].PercentageUsed)
	})

	t.Run("zero-amount budget reports zero percent", func(t *testing.T) {
		expenses := &memExpenseRepo{expenses: []domain.CachedExpense{
			expenseOn(1, "u1", "10.00", 1, "2025-07-05"),
		}}
		budgets := &memBudgetRepo{budgets: []domain.Budget{
			budget("u1", nil, "0", "2025-07-01", "2025-07-31"),
		}}
		s := newAggService(expenses, budgets)

		statuses, err := s.BudgetStatus(ctx, "u1")
		require.NoError(t, err)
		require.Len(t, statuses, 1)
		assert.Zero(t, statuses[0].PercentageUsed)
		assert.True(t, statuses[0].IsExceeded)
	})

	t.Run("no budgets yields an empty slice", func(t *testing.T) {
		s := newAggService(&memExpenseRepo{}, &memBudgetRepo{})

		statuses, err := s.BudgetStatus(ctx, "u1")
		require.NoError(t, err)
		assert.Empty(t, statuses)
	})
}

func mustDate(s string) time.Time {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return d
}
