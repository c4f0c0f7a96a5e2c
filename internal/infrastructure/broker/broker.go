// Package broker implements the RabbitMQ side of the event pipeline: the
// best-effort publisher used on producer write paths, the per-queue
// consumer runtime, and the supervisor that keeps consumers alive across
// broker restarts.
package broker

import (
	"context"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

// BrokerUnavailableError reports that the broker could not be reached.
// At startup it is returned after the bounded probe exhausts its
// attempts; it is non-fatal to the owning process, which keeps serving
// its synchronous endpoints without the event pipeline.
type BrokerUnavailableError struct {
	Attempts int
	Last     error
}

// Error implements the error interface
func (e *BrokerUnavailableError) Error() string {
	return fmt.Sprintf("broker unavailable after %d attempts: %v", e.Attempts, e.Last)
}

// Unwrap returns the last connection error
func (e *BrokerUnavailableError) Unwrap() error {
	return e.Last
}

// dialFunc opens a broker connection. Injected so tests can substitute
// fakes; the default dials AMQP.
type dialFunc func(url string) (brokerConnection, error)

// brokerConnection is the slice of amqp.Connection the package uses.
type brokerConnection interface {
	Channel() (brokerChannel, error)
	Close() error
}

// brokerChannel is the slice of amqp.Channel the package uses.
type brokerChannel interface {
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	Qos(prefetchCount, prefetchSize int, global bool) error
	Confirm(noWait bool) error
	Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error)
	PublishWithDeferredConfirmWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) (confirmation, error)
	Close() error
}

// confirmation abstracts the broker's publish acknowledgement.
type confirmation interface {
	WaitContext(ctx context.Context) (bool, error)
}

func amqpDial(url string) (brokerConnection, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}
	return &amqpConnection{conn: conn}, nil
}

type amqpConnection struct {
	conn *amqp.Connection
}

func (c *amqpConnection) Channel() (brokerChannel, error) {
	ch, err := c.conn.Channel()
	if err != nil {
		return nil, err
	}
	return &amqpChannel{Channel: ch}, nil
}

func (c *amqpConnection) Close() error {
	return c.conn.Close()
}

// amqpChannel adapts *amqp.Channel to brokerChannel. The publish method
// is redeclared so its confirmation comes back as the package interface.
type amqpChannel struct {
	*amqp.Channel
}

func (c *amqpChannel) PublishWithDeferredConfirmWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) (confirmation, error) {
	return c.Channel.PublishWithDeferredConfirmWithContext(ctx, exchange, key, mandatory, immediate, msg)
}

// declareQueue declares a queue as durable. The declare is idempotent and
// issued by producers and consumers alike, so startup order between the
// two never matters.
func declareQueue(ch brokerChannel, queue string) error {
	_, err := ch.QueueDeclare(
		queue,
		true,  // durable
		false, // autoDelete
		false, // exclusive
		false, // noWait
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to declare queue %s: %w", queue, err)
	}
	return nil
}
