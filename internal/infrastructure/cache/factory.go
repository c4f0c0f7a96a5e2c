package cache

import (
	"fmt"

	"github.com/expensetracker/backend/internal/domain/shared"
	"github.com/expensetracker/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// NewIdempotencyStore creates the idempotency store the notifier uses to
// deduplicate side effects. When Redis is enabled it is tried first; on
// failure the store falls back to the in-memory implementation, which only
// deduplicates within a single process. With cfg.Required set, an
// unreachable Redis is an error instead of a fallback.
func NewIdempotencyStore(cfg config.RedisConfig, logger *zap.Logger) (shared.IdempotencyStore, error) {
	if !cfg.Enabled {
		logger.Info("redis disabled, using in-memory idempotency store")
		return NewInMemoryIdempotencyStore(), nil
	}

	store, err := NewRedisIdempotencyStore(cfg)
	if err == nil {
		logger.Info("using Redis idempotency store", zap.String("addr", cfg.Addr()))
		return store, nil
	}

	if cfg.Required {
		return nil, fmt.Errorf("redis required for idempotency but unavailable: %w", err)
	}

	logger.Warn("Redis unavailable, falling back to in-memory idempotency store",
		zap.Error(err),
	)
	return NewInMemoryIdempotencyStore(), nil
}
