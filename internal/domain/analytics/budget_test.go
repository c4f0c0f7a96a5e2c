package analytics

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/expensetracker/backend/internal/domain/shared"
)

func TestBudgetPeriod_IsValid(t *testing.T) {
	assert.True(t, BudgetPeriodMonthly.IsValid())
	assert.True(t, BudgetPeriodYearly.IsValid())
	assert.False(t, BudgetPeriod("weekly").IsValid())
	assert.False(t, BudgetPeriod("").IsValid())
}

func TestNewBudget(t *testing.T) {
	start := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 7, 31, 0, 0, 0, 0, time.UTC)
	categoryID := int64(3)

	t.Run("creates a valid budget", func(t *testing.T) {
		budget, err := NewBudget("user-1", &categoryID, decimal.NewFromInt(500), BudgetPeriodMonthly, start, end)
		require.NoError(t, err)

		assert.NotEqual(t, uuid.Nil, budget.ID)
		assert.Equal(t, "user-1", budget.UserID)
		require.NotNil(t, budget.CategoryID)
		assert.Equal(t, int64(3), *budget.CategoryID)
		assert.True(t, budget.Amount.Equal(decimal.NewFromInt(500)))
		assert.Equal(t, BudgetPeriodMonthly, budget.Period)
		assert.False(t, budget.CreatedAt.IsZero())
	})

	t.Run("allows nil category for an overall budget", func(t *testing.T) {
		budget, err := NewBudget("user-1", nil, decimal.NewFromInt(1000), BudgetPeriodYearly, start, end)
		require.NoError(t, err)
		assert.Nil(t, budget.CategoryID)
	})

	tests := []struct {
		name   string
		userID string
		amount decimal.Decimal
		period BudgetPeriod
		start  time.Time
		end    time.Time
	}{
		{
			name:   "rejects empty user ID",
			userID: "",
			amount: decimal.NewFromInt(100),
			period: BudgetPeriodMonthly,
			start:  start,
			end:    end,
		},
		{
			name:   "rejects zero amount",
			userID: "user-1",
			amount: decimal.Zero,
			period: BudgetPeriodMonthly,
			start:  start,
			end:    end,
		},
		{
			name:   "rejects negative amount",
			userID: "user-1",
			amount: decimal.NewFromInt(-50),
			period: BudgetPeriodMonthly,
			start:  start,
			end:    end,
		},
		{
			name:   "rejects unknown period",
			userID: "user-1",
			amount: decimal.NewFromInt(100),
			period: BudgetPeriod("weekly"),
			start:  start,
			end:    end,
		},
		{
			name:   "rejects start after end",
			userID: "user-1",
			amount: decimal.NewFromInt(100),
			period: BudgetPeriodMonthly,
			start:  end,
			end:    start,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewBudget(tt.userID, nil, tt.amount, tt.period, tt.start, tt.end)
			require.Error(t, err)

			var domainErr *shared.DomainError
			require.ErrorAs(t, err, &domainErr)
			assert.Equal(t, "INVALID_INPUT", domainErr.Code)
		})
	}
}
