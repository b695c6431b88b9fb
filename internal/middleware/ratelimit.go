package middleware

import (
	"context"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// RateLimiter enforces fixed-window request limits backed by Redis counters.
// It is disabled in development and test environments and fails open when Redis is unavailable.
type RateLimiter struct {
	rdb     *redis.Client
	enabled bool
}

// NewRateLimiter creates a limiter for the given environment. A nil client disables limiting.
func NewRateLimiter(rdb *redis.Client, env string) *RateLimiter {
	enabled := rdb != nil
	switch env {
	case "", "test", "development":
		enabled = false
	}
	return &RateLimiter{rdb: rdb, enabled: enabled}
}

// Allow increments the counter for resource and id and reports whether the request fits in the window.
func (l *RateLimiter) Allow(ctx context.Context, resource, id string, limit int, window time.Duration) (bool, error) {
	if !l.enabled {
		return true, nil
	}

	key := fmt.Sprintf("rl:%s:%s", resource, id)

	cnt, err := l.rdb.Incr(ctx, key).Result()
	if err != nil {
		return false, err
	}
	if cnt == 1 {
		if err := l.rdb.Expire(ctx, key, window).Err(); err != nil {
			return false, err
		}
	}
	return cnt <= int64(limit), nil
}

// Limit returns a Fiber middleware enforcing limit requests per window.
// Requests are keyed by the authenticated user when known, otherwise by remote IP.
func (l *RateLimiter) Limit(limit int, window time.Duration, name string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var id string
		if uid, ok := c.Locals("userID").(uint); ok {
			id = fmt.Sprintf("user:%d", uid)
		} else {
			id = "ip:" + c.IP()
		}

		allowed, err := l.Allow(c.UserContext(), name, id, limit, window)
		if err != nil {
			Logger.WarnContext(c.UserContext(), "rate limit store unavailable, allowing request",
				"resource", name, "error", err)
			return c.Next()
		}
		if !allowed {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "rate limit exceeded",
				"code":  "RATE_LIMITED",
			})
		}
		return c.Next()
	}
}
