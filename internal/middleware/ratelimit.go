package middleware

import (
	"context"
	"errors"
	"math"
	"strconv"
	"time"

	"craftnexus/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// Quota is a named per-caller request budget kept in Redis.
type Quota struct {
	Name   string
	Max    int
	Window time.Duration
	// FailClosed answers 503 when Redis is unavailable instead of letting the request through.
	FailClosed bool
}

// Write quotas for user-generated content.
var (
	QuotaComment     = Quota{Name: "create_comment", Max: 5, Window: time.Minute}
	QuotaThread      = Quota{Name: "create_thread", Max: 3, Window: 5 * time.Minute}
	QuotaForumReply  = Quota{Name: "forum_reply", Max: 10, Window: time.Minute}
	QuotaReport      = Quota{Name: "report", Max: 10, Window: 10 * time.Minute}
	QuotaWeaponScans = Quota{Name: "weapon_analysis", Max: 10, Window: 10 * time.Minute, FailClosed: true}
)

var errNoRedis = errors.New("rate limit store not configured")

// quotasEnforced is false in test and development, where no Redis is assumed.
func quotasEnforced(env string) bool {
	switch env {
	case "", "test", "development":
		return false
	}
	return true
}

// Take consumes one request from caller's budget. It returns whether the
// request fits, how many remain and when the window resets.
func (q Quota) Take(ctx context.Context, rdb *redis.Client, caller string) (allowed bool, remaining int, reset time.Duration, err error) {
	if rdb == nil {
		return false, 0, 0, errNoRedis
	}
	key := "rl:" + q.Name + ":" + caller

	var count *redis.IntCmd
	var ttl *redis.DurationCmd
	_, err = rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.SetNX(ctx, key, 0, q.Window)
		count = pipe.Incr(ctx, key)
		ttl = pipe.PTTL(ctx, key)
		return nil
	})
	if err != nil {
		return false, 0, 0, err
	}

	used := int(count.Val())
	reset = ttl.Val()
	if reset < 0 {
		reset = q.Window
	}
	return used <= q.Max, max(q.Max-used, 0), reset, nil
}

// RateLimit enforces q per authenticated user, or per IP for anonymous callers,
// when env is a deployed environment. Must run after the auth middleware for
// per-user keys.
func RateLimit(rdb *redis.Client, q Quota, env string) fiber.Handler {
	enforced := quotasEnforced(env)
	return func(c *fiber.Ctx) error {
		if !enforced {
			return c.Next()
		}

		caller := "ip:" + c.IP()
		if uid, ok := c.Locals("userID").(interface{ String() string }); ok {
			caller = "user:" + uid.String()
		}

		allowed, remaining, reset, err := q.Take(c.UserContext(), rdb, caller)
		if err != nil {
			if q.FailClosed {
				Logger.WarnContext(c.UserContext(), "rate limit store unavailable, failing closed",
					"quota", q.Name, "error", err)
				return c.Status(fiber.StatusServiceUnavailable).JSON(models.ErrorResponse{
					Error: "Service temporarily unavailable",
					Code:  models.CodeInternal,
				})
			}
			return c.Next()
		}

		c.Set("X-RateLimit-Limit", strconv.Itoa(q.Max))
		c.Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
		if !allowed {
			c.Set(fiber.HeaderRetryAfter, strconv.Itoa(int(math.Ceil(reset.Seconds()))))
			return models.RespondWithError(c, fiber.StatusTooManyRequests,
				models.NewRateLimitedError("Too many requests, please slow down"))
		}
		return c.Next()
	}
}
