package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	analyticsapp "github.com/expensetracker/backend/internal/application/analytics"
	"github.com/expensetracker/backend/internal/event"
	"github.com/expensetracker/backend/internal/infrastructure/broker"
	"github.com/expensetracker/backend/internal/infrastructure/config"
	"github.com/expensetracker/backend/internal/infrastructure/logger"
	"github.com/expensetracker/backend/internal/infrastructure/persistence"
	"github.com/expensetracker/backend/internal/interfaces/http/handler"
	"github.com/expensetracker/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
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

	log.Info("Starting Analytics Service",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Database connection with a zap-backed GORM logger
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Repositories and application services
	expenseRepo := persistence.NewGormExpenseCacheRepository(db.DB)
	budgetRepo := persistence.NewGormBudgetRepository(db.DB)

	projector := analyticsapp.NewProjector(expenseRepo, log)
	aggregation := analyticsapp.NewAggregationService(expenseRepo, budgetRepo)
	budgetService := analyticsapp.NewBudgetService(budgetRepo, log)

	// Consumer runtime: the projector feeds off expense_events. A failed
	// probe degrades the service to HTTP-only; the read models then serve
	// whatever was projected before.
	rootCtx, rootCancel := context.WithCancel(context.Background())
	defer rootCancel()

	consumer := broker.NewConsumer(&cfg.Broker, event.QueueExpenseEvents, projector.Apply, log)
	supervisor := broker.NewSupervisor(&cfg.Broker, log, []*broker.Consumer{consumer})

	if err := supervisor.Start(rootCtx); err != nil {
		log.Warn("Broker unavailable, continuing without event consumption", zap.Error(err))
	} else {
		defer supervisor.Stop()
	}

	// HTTP server
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(gin.Recovery())

	r := router.NewRouter(engine)
	r.RegisterRoot(handler.NewHealthHandler("Analytics Service", db))
	r.Register(handler.NewAnalyticsHandler(aggregation))
	r.Register(handler.NewBudgetHandler(budgetService))
	r.Setup()

	srv := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      engine,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	go func() {
		log.Info("HTTP server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	// Graceful shutdown: stop consuming first, then drain HTTP
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down...")
	rootCancel()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("HTTP server shutdown error", zap.Error(err))
	}

	log.Info("Analytics Service stopped")
}
