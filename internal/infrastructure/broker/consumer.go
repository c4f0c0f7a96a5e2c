package broker

import (
	"context"
	"errors"

	"github.com/expensetracker/backend/internal/event"
	"github.com/expensetracker/backend/internal/infrastructure/config"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// HandlerFunc applies a decoded event. The consumer acknowledges the
// delivery only after the handler has returned nil, so a handler must
// commit its local mutation before returning (ack-after-persist).
type HandlerFunc func(ctx context.Context, ev event.Event) error

// Consumer is the per-queue worker. Processing within one queue is
// strictly sequential: prefetch is one, so at most a single
// unacknowledged message is outstanding at any time. That is what makes
// read-modify-write projection handlers safe without row locking.
type Consumer struct {
	queue   string
	url     string
	handler HandlerFunc
	log     *zap.Logger
	dial    dialFunc
}

// ConsumerOption configures a Consumer
type ConsumerOption func(*Consumer)

func withConsumerDialer(dial dialFunc) ConsumerOption {
	return func(c *Consumer) {
		c.dial = dial
	}
}

// NewConsumer creates a consumer for one queue
func NewConsumer(cfg *config.BrokerConfig, queue string, handler HandlerFunc, log *zap.Logger, opts ...ConsumerOption) *Consumer {
	c := &Consumer{
		queue:   queue,
		url:     cfg.URL(),
		handler: handler,
		log:     log.Named("consumer").With(zap.String("queue", queue)),
		dial:    amqpDial,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Queue returns the queue this consumer reads from
func (c *Consumer) Queue() string {
	return c.queue
}

// Run executes one connect-and-consume cycle and blocks until the
// connection drops or the context is cancelled. Cancellation closes the
// connection, which unblocks the delivery loop; that is a clean stop and
// returns nil. A connection-level failure returns an error so the
// supervisor can restart the cycle.
func (c *Consumer) Run(ctx context.Context) error {
	conn, err := c.dial(c.url)
	if err != nil {
		return &BrokerUnavailableError{Attempts: 1, Last: err}
	}
	defer conn.Close()

	// Close the connection when the context ends so the blocking
	// receive below unblocks with a closed channel.
	stopped := make(chan struct{})
	defer close(stopped)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.Close()
		case <-stopped:
		}
	}()

	ch, err := conn.Channel()
	if err != nil {
		return &BrokerUnavailableError{Attempts: 1, Last: err}
	}

	if err := declareQueue(ch, c.queue); err != nil {
		return err
	}

	// Prefetch 1: exactly one undelivered message outstanding per
	// worker, bounding memory and forcing sequential processing.
	if err := ch.Qos(1, 0, false); err != nil {
		return err
	}

	deliveries, err := ch.Consume(c.queue, "", false, false, false, false, nil)
	if err != nil {
		return err
	}

	c.log.Info("consumer started, waiting for messages")

	for delivery := range deliveries {
		c.dispatch(ctx, delivery)
	}

	if ctx.Err() != nil {
		c.log.Info("consumer stopped")
		return nil
	}
	return &BrokerUnavailableError{Attempts: 1, Last: errors.New("delivery channel closed")}
}

// dispatch decodes and applies one delivery. Undecodable bodies and
// handler failures are negatively acknowledged without requeue: dropping
// one cache update is the accepted cost of never deadlocking the queue
// on a poison message.
func (c *Consumer) dispatch(ctx context.Context, delivery amqp.Delivery) {
	ev, err := event.Decode(delivery.Body)
	if err != nil {
		consumeTotal.WithLabelValues(c.queue, outcomeMalformed).Inc()
		// Keep the raw body in the log for forensic replay.
		c.log.Error("discarding undecodable message",
			zap.ByteString("body", delivery.Body),
			zap.Error(err),
		)
		c.nack(delivery)
		return
	}

	if err := c.handler(ctx, ev); err != nil {
		consumeTotal.WithLabelValues(c.queue, outcomeDiscarded).Inc()
		c.log.Error("handler failed, discarding event",
			zap.String("event_type", ev.EventType()),
			zap.Error(err),
		)
		c.nack(delivery)
		return
	}

	if err := delivery.Ack(false); err != nil {
		c.log.Warn("failed to ack delivery", zap.Error(err))
		return
	}
	consumeTotal.WithLabelValues(c.queue, outcomeProcessed).Inc()
	c.log.Debug("event processed", zap.String("event_type", ev.EventType()))
}

func (c *Consumer) nack(delivery amqp.Delivery) {
	if err := delivery.Nack(false, false); err != nil {
		c.log.Warn("failed to nack delivery", zap.Error(err))
	}
}
