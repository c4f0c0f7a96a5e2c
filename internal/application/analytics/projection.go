// Package analytics contains the analytics service's application layer:
// the event projection that maintains the local expense cache and the
// read-side aggregation services built on top of it.
package analytics

import (
	"context"

	domain "github.com/expensetracker/backend/internal/domain/analytics"
	"github.com/expensetracker/backend/internal/event"
	"go.uber.org/zap"
)

// Projector applies expense events to the local cache. Every apply is
// idempotent, so redelivered or replayed events converge on the same
// final state. The consumer runtime acks a delivery only after Apply
// returns nil.
type Projector struct {
	expenses domain.ExpenseCacheRepository
	log      *zap.Logger
}

// NewProjector creates a projector over the expense cache repository
func NewProjector(expenses domain.ExpenseCacheRepository, log *zap.Logger) *Projector {
	return &Projector{expenses: expenses, log: log}
}

// Apply projects one event into the cache.
//
// expense.created upserts the row keyed by the origin expense ID, so a
// duplicate delivery overwrites instead of erroring. expense.updated and
// expense.deleted treat a missing row as a no-op, which keeps re-ordered
// deliveries harmless. Event kinds that are not the analytics service's
// concern are ignored with a log line.
func (p *Projector) Apply(ctx context.Context, ev event.Event) error {
	switch e := ev.(type) {
	case *event.ExpenseCreated:
		err := p.expenses.Upsert(ctx, &domain.CachedExpense{
			ExpenseID:  e.ExpenseID,
			UserID:     e.UserID,
			Amount:     e.Amount,
			CategoryID: e.CategoryID,
			Date:       e.Date,
		})
		if err != nil {
			return err
		}
		p.log.Info("expense cached",
			zap.Int64("expense_id", e.ExpenseID),
			zap.String("user_id", e.UserID),
		)
		return nil

	case *event.ExpenseUpdated:
		if err := p.expenses.UpdateAmount(ctx, e.ExpenseID, e.Amount, e.CategoryID); err != nil {
			return err
		}
		p.log.Info("expense cache updated", zap.Int64("expense_id", e.ExpenseID))
		return nil

	case *event.ExpenseDeleted:
		if err := p.expenses.Delete(ctx, e.ExpenseID); err != nil {
			return err
		}
		p.log.Info("expense cache entry deleted", zap.Int64("expense_id", e.ExpenseID))
		return nil

	default:
		p.log.Debug("ignoring event outside the projection's concern",
			zap.String("event_type", ev.EventType()),
		)
		return nil
	}
}
