package analytics

import (
	"context"
	"fmt"
	"sort"
	"time"

	domain "github.com/expensetracker/backend/internal/domain/analytics"
	"github.com/expensetracker/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Trend periods accepted by Trends
const (
	TrendPeriodDaily   = "daily"
	TrendPeriodWeekly  = "weekly"
	TrendPeriodMonthly = "monthly"
)

// defaultWindowDays is the lookback applied when a range is not given
const defaultWindowDays = 30

// AggregationService computes read-side analytics over the expense cache
// and budgets. It never mutates state and performs no network I/O; every
// figure is derived from the local tables at call time.
type AggregationService struct {
	expenses domain.ExpenseCacheRepository
	budgets  domain.BudgetRepository
	now      func() time.Time
}

// NewAggregationService creates an aggregation service
func NewAggregationService(expenses domain.ExpenseCacheRepository, budgets domain.BudgetRepository) *AggregationService {
	return &AggregationService{
		expenses: expenses,
		budgets:  budgets,
		now:      time.Now,
	}
}

// Summary returns total, count and mean spending inside [start, end].
// Zero-valued bounds default to the last 30 days ending now. An empty
// window yields all-zero figures.
func (s *AggregationService) Summary(ctx context.Context, userID string, start, end time.Time) (*SpendingSummary, error) {
	start, end = s.window(start, end)

	expenses, err := s.expenses.FindByUserAndRange(ctx, userID, start, end)
	if err != nil {
		return nil, err
	}

	total := decimal.Zero
	for i := range expenses {
		total = total.Add(expenses[i].Amount)
	}

	average := decimal.Zero
	if len(expenses) > 0 {
		average = total.Div(decimal.NewFromInt(int64(len(expenses))))
	}

	return &SpendingSummary{
		TotalExpenses:  round2(total),
		ExpenseCount:   len(expenses),
		AverageExpense: round2(average),
		PeriodStart:    start,
		PeriodEnd:      end,
	}, nil
}

// CategoryBreakdown returns per-category totals inside [start, end],
// ordered by total descending with ties broken by category ID ascending.
// Percentages are of the window total and 0 when the total is 0.
func (s *AggregationService) CategoryBreakdown(ctx context.Context, userID string, start, end time.Time) ([]CategoryBreakdown, error) {
	start, end = s.window(start, end)

	expenses, err := s.expenses.FindByUserAndRange(ctx, userID, start, end)
	if err != nil {
		return nil, err
	}

	type bucket struct {
		sum   decimal.Decimal
		count int
	}
	buckets := make(map[int64]*bucket)
	total := decimal.Zero

	for i := range expenses {
		e := &expenses[i]
		b, ok := buckets[e.CategoryID]
		if !ok {
			b = &bucket{sum: decimal.Zero}
			buckets[e.CategoryID] = b
		}
		b.sum = b.sum.Add(e.Amount)
		b.count++
		total = total.Add(e.Amount)
	}

	type categoryTotal struct {
		categoryID int64
		sum        decimal.Decimal
		count      int
	}
	totals := make([]categoryTotal, 0, len(buckets))
	for categoryID, b := range buckets {
		totals = append(totals, categoryTotal{categoryID: categoryID, sum: b.sum, count: b.count})
	}

	// Order on the exact sums; rounding happens only at the DTO boundary
	// and must not decide ranking.
	sort.Slice(totals, func(i, j int) bool {
		if !totals[i].sum.Equal(totals[j].sum) {
			return totals[i].sum.GreaterThan(totals[j].sum)
		}
		return totals[i].categoryID < totals[j].categoryID
	})

	hundred := decimal.NewFromInt(100)
	result := make([]CategoryBreakdown, 0, len(totals))
	for _, ct := range totals {
		percentage := decimal.Zero
		if total.IsPositive() {
			percentage = ct.sum.Div(total).Mul(hundred)
		}
		result = append(result, CategoryBreakdown{
			CategoryID:   ct.categoryID,
			CategoryName: fmt.Sprintf("Category %d", ct.categoryID),
			TotalAmount:  round2(ct.sum),
			ExpenseCount: ct.count,
			Percentage:   round2(percentage),
		})
	}

	return result, nil
}

// Trends returns the spending series over the last `days` days bucketed
// by the given period. Weekly buckets start on Monday, monthly buckets on
// the 1st. Only non-empty buckets appear, in ascending date order.
func (s *AggregationService) Trends(ctx context.Context, userID, period string, days int) (*SpendingTrends, error) {
	switch period {
	case TrendPeriodDaily, TrendPeriodWeekly, TrendPeriodMonthly:
	case "":
		period = TrendPeriodMonthly
	default:
		return nil, shared.NewDomainError("INVALID_INPUT", "period must be daily, weekly or monthly")
	}
	if days <= 0 {
		days = defaultWindowDays
	}

	end := s.now()
	start := end.AddDate(0, 0, -days)

	expenses, err := s.expenses.FindByUserAndRange(ctx, userID, start, end)
	if err != nil {
		return nil, err
	}

	sums := make(map[string]decimal.Decimal)
	for i := range expenses {
		key := bucketKey(expenses[i].Date, period)
		sums[key] = sums[key].Add(expenses[i].Amount)
	}

	data := make([]TrendPoint, 0, len(sums))
	for key, sum := range sums {
		data = append(data, TrendPoint{Date: key, Amount: round2(sum)})
	}
	sort.Slice(data, func(i, j int) bool { return data[i].Date < data[j].Date })

	return &SpendingTrends{Period: period, Data: data}, nil
}

// BudgetStatus compares each of the user's budgets against the spending
// recorded inside the budget's own date range, restricted to the budget's
// category when one is set. Remaining may go negative; a zero budget
// amount reports 0% used.
func (s *AggregationService) BudgetStatus(ctx context.Context, userID string) ([]BudgetStatus, error) {
	budgets, err := s.budgets.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	hundred := decimal.NewFromInt(100)
	result := make([]BudgetStatus, 0, len(budgets))
	for i := range budgets {
		b := &budgets[i]

		spent, err := s.expenses.SumByUserAndRange(ctx, userID, b.StartDate, b.EndDate, b.CategoryID)
		if err != nil {
			return nil, err
		}

		percentage := decimal.Zero
		if b.Amount.IsPositive() {
			percentage = spent.Div(b.Amount).Mul(hundred)
		}

		result = append(result, BudgetStatus{
			BudgetID:        b.ID.String(),
			BudgetAmount:    round2(b.Amount),
			SpentAmount:     round2(spent),
			RemainingAmount: round2(b.Amount.Sub(spent)),
			PercentageUsed:  round2(percentage),
			IsExceeded:      spent.GreaterThan(b.Amount),
			CategoryID:      b.CategoryID,
			Period:          b.Period.String(),
		})
	}

	return result, nil
}

// window fills in the default lookback for zero-valued bounds
func (s *AggregationService) window(start, end time.Time) (time.Time, time.Time) {
	if end.IsZero() {
		end = s.now()
	}
	if start.IsZero() {
		start = end.AddDate(0, 0, -defaultWindowDays)
	}
	return start, end
}

// bucketKey maps a date to its trend bucket label
func bucketKey(date time.Time, period string) string {
	switch period {
	case TrendPeriodDaily:
		return date.Format("2006-01-02")
	case TrendPeriodWeekly:
		// back up to Monday
		offset := (int(date.Weekday()) + 6) % 7
		return date.AddDate(0, 0, -offset).Format("2006-01-02")
	default:
		return time.Date(date.Year(), date.Month(), 1, 0, 0, 0, 0, date.Location()).Format("2006-01-02")
	}
}
