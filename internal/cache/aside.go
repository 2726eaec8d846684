package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"craftnexus/internal/observability"

	"github.com/redis/go-redis/v9"
)

// GetJSON reads key and unmarshals it into dest.
// It returns (true, nil) on a hit and (false, nil) on a miss or when Redis is disabled.
func GetJSON(ctx context.Context, key string, dest any) (bool, error) {
	if client == nil {
		return false, nil
	}
	s, err := client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal([]byte(s), dest); err != nil {
		return false, err
	}
	return true, nil
}

// SetJSON marshals v and stores it under key with ttl.
func SetJSON(ctx context.Context, key string, v any, ttl time.Duration) error {
	if client == nil {
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return client.Set(ctx, key, b, ttl).Err()
}

// Aside serves dest from Redis when possible, otherwise calls fetch to fill dest
// and stores the result. Redis failures degrade to a plain fetch.
func Aside(ctx context.Context, key string, dest any, ttl time.Duration, fetch func() error) error {
	family := keyFamily(key)

	found, err := GetJSON(ctx, key, dest)
	if err == nil && found {
		observability.CacheLookups.WithLabelValues(family, "hit").Inc()
		return nil
	}
	observability.CacheLookups.WithLabelValues(family, "miss").Inc()

	if err := fetch(); err != nil {
		return err
	}

	_ = SetJSON(ctx, key, dest, ttl)
	return nil
}

// Invalidate deletes the given keys, ignoring errors.
func Invalidate(ctx context.Context, keys ...string) {
	if client == nil || len(keys) == 0 {
		return
	}
	client.Del(ctx, keys...)
}
