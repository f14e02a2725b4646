package http

import (
	"context"
	"math"
	"strconv"
	"time"

	redis_rate "github.com/go-redis/redis_rate/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/config"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

type allowFunc func(ctx context.Context, key string, limit redis_rate.Limit) (*redis_rate.Result, error)

// RateLimiter throttles requests per client IP using a shared redis bucket.
// Limiter failures let the request through.
type RateLimiter struct {
	allow  allowFunc
	limit  redis_rate.Limit
	prefix string
	logger *zap.Logger
}

// NewAuthRateLimiter limits the unauthenticated auth endpoints. A nil client
// or a non-positive rate disables limiting.
func NewAuthRateLimiter(client *redis.Client, cfg config.RateLimitConfig, logger *zap.Logger) *RateLimiter {
	rl := &RateLimiter{
		limit:  authLimit(cfg),
		prefix: "ratelimit:auth:",
		logger: logger,
	}
	if client != nil && cfg.AuthPerMinute > 0 {
		rl.allow = redis_rate.NewLimiter(client).Allow
	}
	return rl
}

func authLimit(cfg config.RateLimitConfig) redis_rate.Limit {
	burst := cfg.AuthBurst
	if burst <= 0 {
		burst = cfg.AuthPerMinute
	}
	return redis_rate.Limit{Rate: cfg.AuthPerMinute, Burst: burst, Period: time.Minute}
}

// Handle is the fiber middleware.
func (rl *RateLimiter) Handle(c *fiber.Ctx) error {
	if rl == nil || rl.allow == nil {
		return c.Next()
	}

	key := rl.prefix + c.IP()
	res, err := rl.allow(c.UserContext(), key, rl.limit)
	if err != nil {
		if rl.logger != nil {
			rl.logger.Warn("rate limiter error, failing open", zap.String("key", key), zap.Error(err))
		}
		return c.Next()
	}

	c.Set("X-RateLimit-Limit", strconv.Itoa(rl.limit.Rate))
	c.Set("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))
	c.Set("X-RateLimit-Reset", strconv.FormatInt(time.Now().Add(res.ResetAfter).Unix(), 10))

	if res.Allowed == 0 {
		retryAfter := int(math.Ceil(res.RetryAfter.Seconds()))
		if retryAfter < 1 {
			retryAfter = 1
		}
		c.Set(fiber.HeaderRetryAfter, strconv.Itoa(retryAfter))
		return apperrors.NewRateLimited("too many requests", map[string]any{"retry_after": retryAfter})
	}
	return c.Next()
}
