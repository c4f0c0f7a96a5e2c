// Package notification reacts to user and expense events with outbound
// notifications. Today that is the post-registration welcome mail; the
// remaining event kinds are observed and logged only.
package notification

import (
	"context"
	"time"

	"github.com/expensetracker/backend/internal/domain/shared"
	"github.com/expensetracker/backend/internal/event"
	"github.com/expensetracker/backend/internal/infrastructure/email"
	"go.uber.org/zap"
)

// welcomeTTL bounds how long a sent welcome mail is remembered. The
// queue redelivers within seconds, so a day of dedup memory is ample.
const welcomeTTL = 24 * time.Hour

// Service handles notification side effects for consumed events.
//
// Mail delivery is best-effort: a failed send is logged and the event is
// still acked, because redelivering the event would not fix a broken
// SMTP relay and blocks the queue behind it.
type Service struct {
	mailer email.Mailer
	dedupe shared.IdempotencyStore
	log    *zap.Logger
}

// NewService creates a notification service
func NewService(mailer email.Mailer, dedupe shared.IdempotencyStore, log *zap.Logger) *Service {
	return &Service{mailer: mailer, dedupe: dedupe, log: log}
}

// HandleUserEvent processes one event from the user_events queue
func (s *Service) HandleUserEvent(ctx context.Context, ev event.Event) error {
	switch e := ev.(type) {
	case *event.UserRegistered:
		return s.sendWelcome(ctx, e)
	case *event.UserUpdated:
		s.log.Info("user profile updated",
			zap.String("user_id", e.UserID),
			zap.String("email", e.Email),
		)
		return nil
	default:
		s.log.Info("user event observed", zap.String("event_type", ev.EventType()))
		return nil
	}
}

// HandleExpenseEvent processes one event from the expense_events queue.
// Expense notifications depend on per-user preferences that live in the
// identity service; until that integration exists the events are only
// logged.
func (s *Service) HandleExpenseEvent(ctx context.Context, ev event.Event) error {
	s.log.Info("expense event observed", zap.String("event_type", ev.EventType()))
	return nil
}

func (s *Service) sendWelcome(ctx context.Context, e *event.UserRegistered) error {
	if e.Email == "" {
		s.log.Warn("no email address on registration event",
			zap.String("user_id", e.UserID),
		)
		return nil
	}

	fresh, err := s.dedupe.MarkProcessed(ctx, "welcome:"+e.UserID, welcomeTTL)
	if err != nil {
		// dedup is best-effort: a broken store must not stop the mail
		s.log.Warn("idempotency store unavailable, sending anyway", zap.Error(err))
		fresh = true
	}
	if !fresh {
		s.log.Info("welcome email already sent, skipping",
			zap.String("user_id", e.UserID),
		)
		return nil
	}

	msg := email.Message{
		To:       e.Email,
		Subject:  email.WelcomeSubject,
		HTMLBody: email.WelcomeBody(e.Username),
	}
	if err := s.mailer.Send(ctx, msg); err != nil {
		s.log.Error("failed to send welcome email",
			zap.String("user_id", e.UserID),
			zap.String("email", e.Email),
			zap.Error(err),
		)
		return nil
	}

	s.log.Info("welcome email sent",
		zap.String("user_id", e.UserID),
		zap.String("email", e.Email),
	)
	return nil
}
