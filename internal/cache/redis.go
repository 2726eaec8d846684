// Package cache holds the process-wide Redis client and the cache-aside
// helpers the services read through.
package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"craftnexus/internal/middleware"
	"craftnexus/internal/observability"

	"github.com/redis/go-redis/v9"
)

const pingTimeout = 5 * time.Second

var client *redis.Client

// errorCounter feeds RedisErrorRate. Cache misses are not errors.
type errorCounter struct{}

func countFailure(op string, err error) {
	if err != nil && !errors.Is(err, redis.Nil) {
		observability.RedisErrorRate.WithLabelValues(op).Inc()
	}
}

func (errorCounter) DialHook(next redis.DialHook) redis.DialHook { return next }

func (errorCounter) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		err := next(ctx, cmd)
		countFailure(cmd.Name(), err)
		return err
	}
}

func (errorCounter) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []redis.Cmder) error {
		err := next(ctx, cmds)
		countFailure("pipeline", err)
		return err
	}
}

func options(addr string) (*redis.Options, error) {
	if !strings.Contains(addr, "://") {
		return &redis.Options{Addr: addr}, nil
	}
	opts, err := redis.ParseURL(addr)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	return opts, nil
}

// Open dials addr (host:port or redis:// URL) and pings it.
func Open(ctx context.Context, addr string) (*redis.Client, error) {
	opts, err := options(addr)
	if err != nil {
		return nil, err
	}
	c := redis.NewClient(opts)
	c.AddHook(errorCounter{})

	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := c.Ping(ctx).Err(); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return c, nil
}

// InitRedis installs the package client. When Redis cannot be reached the
// client stays nil and every cache helper falls through to the loader.
func InitRedis(addr string) {
	c, err := Open(context.Background(), addr)
	if err != nil {
		middleware.Logger.Warn("running without redis cache", slog.String("error", err.Error()))
		client = nil
		return
	}
	middleware.Logger.Info("redis connected", slog.String("addr", c.Options().Addr))
	client = c
}

// SetClient swaps the package client, e.g. for a miniredis instance in tests.
func SetClient(c *redis.Client) {
	if c != nil {
		c.AddHook(errorCounter{})
	}
	client = c
}

// GetClient returns nil when running without Redis.
func GetClient() *redis.Client { return client }
