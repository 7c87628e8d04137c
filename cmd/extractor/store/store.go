// Package store builds the extractor's storage backend.
//
//   - memory: in-process, lost on restart. Suitable for a single instance.
//   - redis: shared between instances and readable by other services.
//
// Initialization fails fast: an unreachable backend exits the process.
package store

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/HatiCode/fdynamics/cmd/extractor/config"
	"github.com/HatiCode/fdynamics/pkg/storage"
)

// New returns the configured store and calls os.Exit(1) when it cannot be
// initialized.
func New(cfg *config.Config, logger *slog.Logger) storage.Store {
	s, err := Open(context.Background(), cfg, logger)
	if err != nil {
		logger.Error("failed to initialize storage", "storage", cfg.Storage, "error", err)
		os.Exit(1)
	}
	return s
}

// Open returns the configured store. A Redis store is pinged before it is
// returned.
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger) (storage.Store, error) {
	switch cfg.Storage {
	case "redis":
		logger.Info("initializing redis storage",
			"addr", cfg.RedisAddr,
			"db", cfg.RedisDB,
			"ttl", cfg.RedisTTL,
		)
		redisStore, err := storage.NewRedisStore(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.RedisTTL)
		if err != nil {
			return nil, fmt.Errorf("connect to redis: %w", err)
		}

		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := redisStore.Ping(pingCtx); err != nil {
			_ = redisStore.Close()
			return nil, fmt.Errorf("redis health check: %w", err)
		}
		logger.Info("redis storage initialized successfully")
		return redisStore, nil

	case "memory":
		logger.Info("initializing in-memory storage")
		return storage.NewMemoryStore(), nil

	default:
		return nil, fmt.Errorf("invalid storage type %q", cfg.Storage)
	}
}
