package broker

import (
	"context"
	"sync"
	"time"

	"github.com/expensetracker/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// Supervisor owns the consumer lifecycle. It probes the broker before
// starting anything (the consumer process commonly starts before the
// broker container is ready), runs each consumer on its own goroutine so
// independent queues progress concurrently, and restarts a consumer
// cycle after a connection-level failure. Stop cancels the workers and
// waits for them, so shutdown is deterministic in tests.
type Supervisor struct {
	url            string
	log            *zap.Logger
	dial           dialFunc
	probeAttempts  int
	probeBackoff   time.Duration
	restartBackoff time.Duration
	consumers      []*Consumer

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// SupervisorOption configures a Supervisor
type SupervisorOption func(*Supervisor)

func withSupervisorDialer(dial dialFunc) SupervisorOption {
	return func(s *Supervisor) {
		s.dial = dial
	}
}

// NewSupervisor creates a supervisor for the given consumers
func NewSupervisor(cfg *config.BrokerConfig, log *zap.Logger, consumers []*Consumer, opts ...SupervisorOption) *Supervisor {
	s := &Supervisor{
		url:            cfg.URL(),
		log:            log.Named("supervisor"),
		dial:           amqpDial,
		probeAttempts:  cfg.ProbeAttempts,
		probeBackoff:   cfg.ProbeBackoff,
		restartBackoff: cfg.RestartBackoff,
		consumers:      consumers,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Probe attempts to open and immediately close a broker connection, up
// to the configured number of attempts with exponential backoff. It
// returns *BrokerUnavailableError once the attempts are exhausted.
func (s *Supervisor) Probe(ctx context.Context) error {
	var last error
	delay := s.probeBackoff

	for attempt := 1; attempt <= s.probeAttempts; attempt++ {
		conn, err := s.dial(s.url)
		if err == nil {
			_ = conn.Close()
			s.log.Info("broker connection verified", zap.Int("attempt", attempt))
			return nil
		}
		last = err
		s.log.Warn("broker not ready",
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", s.probeAttempts),
			zap.Error(err),
		)

		if attempt == s.probeAttempts {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		delay *= 2
	}

	return &BrokerUnavailableError{Attempts: s.probeAttempts, Last: last}
}

// Start probes the broker and then launches every consumer. A failed
// probe means no consumers start; the caller decides whether to continue
// degraded (analytics keeps serving reads) or abort.
func (s *Supervisor) Start(ctx context.Context) error {
	if err := s.Probe(ctx); err != nil {
		return err
	}

	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	for _, consumer := range s.consumers {
		s.wg.Add(1)
		go s.supervise(runCtx, consumer)
	}
	return nil
}

// Stop cancels all consumers and waits for them to exit
func (s *Supervisor) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
	s.log.Info("all consumers stopped")
}

// supervise runs one consumer's connect-consume cycle in a loop,
// restarting after connection failures until the context ends.
func (s *Supervisor) supervise(ctx context.Context, consumer *Consumer) {
	defer s.wg.Done()

	for {
		err := consumer.Run(ctx)
		if ctx.Err() != nil || err == nil {
			return
		}

		consumerRestarts.WithLabelValues(consumer.Queue()).Inc()
		s.log.Warn("consumer lost connection, restarting",
			zap.String("queue", consumer.Queue()),
			zap.Duration("backoff", s.restartBackoff),
			zap.Error(err),
		)

		select {
		case <-time.After(s.restartBackoff):
		case <-ctx.Done():
			return
		}
	}
}
