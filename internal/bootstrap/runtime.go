// Package bootstrap wires the process-wide dependencies shared by the server
// and the command-line tools.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"craftnexus/internal/cache"
	"craftnexus/internal/config"
	"craftnexus/internal/database"
	"craftnexus/internal/seed"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Options control runtime initialization behavior.
type Options struct {
	// SeedBuiltIns applies the bundled forum categories and ticker lines.
	SeedBuiltIns bool
}

// InitRuntime connects to DB and Redis and optionally applies the built-in fixtures.
// The Redis client is nil when Redis is unreachable.
func InitRuntime(ctx context.Context, cfg *config.Config, opts Options) (*gorm.DB, *redis.Client, error) {
	db, err := database.Connect(ctx, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)
	r := cache.GetClient()
	if r == nil {
		slog.Warn("redis unavailable, realtime notifications disabled", slog.String("addr", cfg.RedisURL))
	}

	if opts.SeedBuiltIns {
		fx, err := seed.DefaultFixtures()
		if err != nil {
			return nil, nil, err
		}
		if err := seed.ApplyFixtures(db, fx); err != nil {
			return nil, nil, fmt.Errorf("failed to seed built-in fixtures: %w", err)
		}
	}

	return db, r, nil
}
