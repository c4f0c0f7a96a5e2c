package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/expensetracker/backend/internal/application/notification"
	"github.com/expensetracker/backend/internal/event"
	"github.com/expensetracker/backend/internal/infrastructure/broker"
	"github.com/expensetracker/backend/internal/infrastructure/cache"
	"github.com/expensetracker/backend/internal/infrastructure/config"
	"github.com/expensetracker/backend/internal/infrastructure/email"
	"github.com/expensetracker/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting Notification Service", zap.String("env", cfg.App.Env))

	// Welcome-mail dedup store, Redis when available
	store, err := cache.NewIdempotencyStore(cfg.Redis, log)
	if err != nil {
		log.Fatal("Failed to create idempotency store", zap.Error(err))
	}
	defer func() {
		_ = store.Close()
	}()

	mailer := email.NewMailer(&cfg.SMTP, log)
	service := notification.NewService(mailer, store, log)

	// One consumer per queue, both supervised; the notifier is useless
	// without the broker, so a failed probe is fatal here.
	rootCtx, rootCancel := context.WithCancel(context.Background())
	defer rootCancel()

	consumers := []*broker.Consumer{
		broker.NewConsumer(&cfg.Broker, event.QueueUserEvents, service.HandleUserEvent, log),
		broker.NewConsumer(&cfg.Broker, event.QueueExpenseEvents, service.HandleExpenseEvent, log),
	}
	supervisor := broker.NewSupervisor(&cfg.Broker, log, consumers)

	if err := supervisor.Start(rootCtx); err != nil {
		log.Fatal("Broker unavailable", zap.Error(err))
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down...")
	rootCancel()
	supervisor.Stop()

	log.Info("Notification Service stopped")
}
