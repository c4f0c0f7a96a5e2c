package broker

import (
	"context"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
)

// fakeConfirmation implements confirmation for tests
type fakeConfirmation struct {
	acked bool
	err   error
}

func (f fakeConfirmation) WaitContext(ctx context.Context) (bool, error) {
	return f.acked, f.err
}

// fakeChannel implements brokerChannel for tests
type fakeChannel struct {
	mu sync.Mutex

	declaredQueues  []string
	declaredDurable bool
	declareErr      error

	confirmEnabled bool
	confirmErr     error

	prefetchCount int
	qosErr        error

	published  []amqp.Publishing
	publishErr error
	acked      bool

	deliveries chan amqp.Delivery
	consumeErr error

	closed bool
}

func newFakeChannel() *fakeChannel {
	return &fakeChannel{
		acked:      true,
		deliveries: make(chan amqp.Delivery, 16),
	}
}

func (c *fakeChannel) QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.declareErr != nil {
		return amqp.Queue{}, c.declareErr
	}
	c.declaredQueues = append(c.declaredQueues, name)
	c.declaredDurable = durable
	return amqp.Queue{Name: name}, nil
}

func (c *fakeChannel) Qos(prefetchCount, prefetchSize int, global bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.prefetchCount = prefetchCount
	return c.qosErr
}

func (c *fakeChannel) Confirm(noWait bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.confirmErr != nil {
		return c.confirmErr
	}
	c.confirmEnabled = true
	return nil
}

func (c *fakeChannel) Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error) {
	if c.consumeErr != nil {
		return nil, c.consumeErr
	}
	return c.deliveries, nil
}

func (c *fakeChannel) PublishWithDeferredConfirmWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) (confirmation, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.publishErr != nil {
		return nil, c.publishErr
	}
	c.published = append(c.published, msg)
	return fakeConfirmation{acked: c.acked}, nil
}

func (c *fakeChannel) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *fakeChannel) lastPublished() amqp.Publishing {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.published[len(c.published)-1]
}

// fakeConnection implements brokerConnection for tests. Closing the
// connection closes the delivery channel, mirroring how a real AMQP
// connection unblocks a pending consume.
type fakeConnection struct {
	ch        *fakeChannel
	channelEr error
	closeOnce sync.Once
	closed    bool
}

func newFakeConnection(ch *fakeChannel) *fakeConnection {
	return &fakeConnection{ch: ch}
}

func (c *fakeConnection) Channel() (brokerChannel, error) {
	if c.channelEr != nil {
		return nil, c.channelEr
	}
	return c.ch, nil
}

func (c *fakeConnection) Close() error {
	c.closeOnce.Do(func() {
		c.closed = true
		close(c.ch.deliveries)
	})
	return nil
}

// fakeAcknowledger records acks and nacks issued for a delivery
type fakeAcknowledger struct {
	mu      sync.Mutex
	acks    int
	nacks   int
	requeue []bool
}

func (a *fakeAcknowledger) Ack(tag uint64, multiple bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.acks++
	return nil
}

func (a *fakeAcknowledger) Nack(tag uint64, multiple, requeue bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.nacks++
	a.requeue = append(a.requeue, requeue)
	return nil
}

func (a *fakeAcknowledger) Reject(tag uint64, requeue bool) error {
	return a.Nack(tag, false, requeue)
}

func (a *fakeAcknowledger) counts() (acks, nacks int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.acks, a.nacks
}

// recordingObserver captures publish results
type recordingObserver struct {
	mu      sync.Mutex
	results []PublishResult
}

func (o *recordingObserver) ObservePublish(result PublishResult) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.results = append(o.results, result)
}

func (o *recordingObserver) last() PublishResult {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.results[len(o.results)-1]
}
