// Package bootstrap wires the process-level dependencies shared by the
// server and command-line tools.
package bootstrap

import (
	"fmt"

	"yatube/internal/cache"
	"yatube/internal/config"
	"yatube/internal/database"
	"yatube/internal/middleware"
	"yatube/internal/seed"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Options control runtime initialization behavior.
type Options struct {
	SeedBuiltIns bool
}

// InitRuntime connects to the database and Redis and optionally upserts the
// built-in groups. The returned Redis client is nil when Redis is
// unreachable.
func InitRuntime(cfg *config.Config, opts Options) (*gorm.DB, *redis.Client, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}

	rdb, err := cache.NewClient(cfg.RedisURL)
	if err != nil {
		middleware.Logger.Warn("redis unavailable, continuing without it", "error", err)
		rdb = nil
	}

	if err := EnsureBuiltIns(db, opts); err != nil {
		return nil, nil, err
	}

	return db, rdb, nil
}

// EnsureBuiltIns upserts the built-in groups when opts asks for it.
func EnsureBuiltIns(db *gorm.DB, opts Options) error {
	if !opts.SeedBuiltIns {
		return nil
	}
	groups, err := seed.Groups(db)
	if err != nil {
		return fmt.Errorf("failed to seed built-in groups: %w", err)
	}
	middleware.Logger.Info("built-in groups ensured", "count", len(groups))
	return nil
}
