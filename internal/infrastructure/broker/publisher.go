package broker

import (
	"context"
	"errors"
	"time"

	"github.com/expensetracker/backend/internal/event"
	"github.com/expensetracker/backend/internal/infrastructure/config"
	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// PublishResult describes the outcome of one publish attempt. Failures
// never reach the caller of Publish; they are delivered here so tests and
// monitoring can observe them without parsing log output.
type PublishResult struct {
	Queue     string
	EventType string
	Confirmed bool
	Err       error
}

// PublishObserver receives the result of every publish attempt.
type PublishObserver interface {
	ObservePublish(result PublishResult)
}

type nopObserver struct{}

func (nopObserver) ObservePublish(PublishResult) {}

// Publisher publishes events to the broker with best-effort semantics:
// the owning write transaction has already committed when Publish runs,
// so broker errors are logged and observed but never propagated. Each
// call opens a short-lived connection; publish frequency is low relative
// to request volume, so a pool is not worth its complexity.
type Publisher struct {
	url      string
	log      *zap.Logger
	dial     dialFunc
	observer PublishObserver
}

// PublisherOption configures a Publisher
type PublisherOption func(*Publisher)

// WithPublishObserver sets the observer notified of publish outcomes
func WithPublishObserver(observer PublishObserver) PublisherOption {
	return func(p *Publisher) {
		p.observer = observer
	}
}

func withPublisherDialer(dial dialFunc) PublisherOption {
	return func(p *Publisher) {
		p.dial = dial
	}
}

// NewPublisher creates a Publisher for the configured broker
func NewPublisher(cfg *config.BrokerConfig, log *zap.Logger, opts ...PublisherOption) *Publisher {
	p := &Publisher{
		url:      cfg.URL(),
		log:      log.Named("publisher"),
		dial:     amqpDial,
		observer: nopObserver{},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Publish sends an event to its queue. It never returns an error: broker
// failures must not roll back or fail the write path that triggered the
// event. The outcome is logged and handed to the observer.
func (p *Publisher) Publish(ctx context.Context, ev event.Event) {
	result := p.publish(ctx, ev)

	if result.Err != nil {
		publishTotal.WithLabelValues(result.Queue, outcomeFailed).Inc()
		p.log.Warn("failed to publish event",
			zap.String("queue", result.Queue),
			zap.String("event_type", result.EventType),
			zap.Error(result.Err),
		)
	} else {
		publishTotal.WithLabelValues(result.Queue, outcomeConfirmed).Inc()
		p.log.Debug("event published",
			zap.String("queue", result.Queue),
			zap.String("event_type", result.EventType),
		)
	}

	p.observer.ObservePublish(result)
}

func (p *Publisher) publish(ctx context.Context, ev event.Event) PublishResult {
	result := PublishResult{
		Queue:     event.QueueFor(ev),
		EventType: ev.EventType(),
	}

	body, err := event.Encode(ev)
	if err != nil {
		result.Err = err
		return result
	}

	conn, err := p.dial(p.url)
	if err != nil {
		result.Err = err
		return result
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		result.Err = err
		return result
	}
	defer ch.Close()

	// Confirm mode lets us detect broker-side rejection, though a
	// rejection still only surfaces through the observer.
	if err := ch.Confirm(false); err != nil {
		result.Err = err
		return result
	}

	if err := declareQueue(ch, result.Queue); err != nil {
		result.Err = err
		return result
	}

	conf, err := ch.PublishWithDeferredConfirmWithContext(ctx, "", result.Queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent, // survive a broker restart
		MessageId:    uuid.NewString(),
		Timestamp:    time.Now(),
		Body:         body,
	})
	if err != nil {
		result.Err = err
		return result
	}

	acked, err := conf.WaitContext(ctx)
	if err != nil {
		result.Err = err
		return result
	}
	if !acked {
		result.Err = errors.New("broker rejected the message")
		return result
	}

	result.Confirmed = true
	return result
}
