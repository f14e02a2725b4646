package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"testing"
	"time"

	redis_rate "github.com/go-redis/redis_rate/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/config"
	"github.com/spec-kit/helpdesk-service/internal/domain"
)

func TestUnknownRoute_MapsToNotFoundEnvelope(t *testing.T) {
	s := newTestServer(t)

	resp := s.do(t, http.MethodGet, "/nope", "", nil)

	assert.Equal(t, http.StatusNotFound, resp.status)
	assert.Equal(t, "NOT_FOUND", resp.errorCode(t))
	assert.NotEmpty(t, s.metrics.Snapshot().Errors)
}

func TestHealthRoutes(t *testing.T) {
	s := newTestServer(t)

	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/health", "", nil).status)
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/health/live", "", nil).status)

	resp := s.do(t, http.MethodGet, "/health/ready", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, resp.status)
	assert.Equal(t, "DEPENDENCY_UNAVAILABLE", resp.errorCode(t))

	resp = s.do(t, http.MethodGet, "/health/metrics", "", nil)
	require.Equal(t, http.StatusOK, resp.status)
	assert.Greater(t, resp.object(t)["total_requests"], float64(0))
}

func TestRateLimiter_RejectsWhenExhausted(t *testing.T) {
	calls := 0
	limiter := &RateLimiter{
		limit:  redis_rate.Limit{Rate: 2, Burst: 2, Period: time.Minute},
		prefix: "ratelimit:auth:",
		logger: zap.NewNop(),
		allow: func(_ context.Context, key string, limit redis_rate.Limit) (*redis_rate.Result, error) {
			calls++
			assert.Contains(t, key, "ratelimit:auth:")
			if calls > 2 {
				return &redis_rate.Result{Limit: limit, Allowed: 0, Remaining: 0, RetryAfter: 1500 * time.Millisecond, ResetAfter: time.Minute}, nil
			}
			return &redis_rate.Result{Limit: limit, Allowed: 1, Remaining: 2 - calls, ResetAfter: time.Minute}, nil
		},
	}
	s := newTestServerWithLimiter(t, limiter)
	body := map[string]any{"email": "ghost@example.com", "password": "whatever"}

	resp := s.do(t, http.MethodPost, "/auth/login", "", body)
	assert.Equal(t, http.StatusUnauthorized, resp.status)
	assert.Equal(t, "1", resp.header["X-Ratelimit-Remaining"])
	assert.Equal(t, "2", resp.header["X-Ratelimit-Limit"])

	s.do(t, http.MethodPost, "/auth/login", "", body)

	resp = s.do(t, http.MethodPost, "/auth/login", "", body)
	assert.Equal(t, http.StatusTooManyRequests, resp.status)
	assert.Equal(t, "RATE_LIMITED", resp.errorCode(t))
	assert.Equal(t, "2", resp.header["Retry-After"])
}

func TestRateLimiter_FailsOpen(t *testing.T) {
	limiter := &RateLimiter{
		limit:  redis_rate.PerMinute(1),
		prefix: "ratelimit:auth:",
		logger: zap.NewNop(),
		allow: func(context.Context, string, redis_rate.Limit) (*redis_rate.Result, error) {
			return nil, errors.New("redis down")
		},
	}
	s := newTestServerWithLimiter(t, limiter)

	resp := s.do(t, http.MethodPost, "/auth/login", "", map[string]any{"email": "a@b.c", "password": "x"})
	assert.Equal(t, http.StatusUnauthorized, resp.status)
	assert.NotContains(t, resp.header, "X-Ratelimit-Limit")
}

func TestNewAuthRateLimiter_DisabledWithoutClient(t *testing.T) {
	rl := NewAuthRateLimiter(nil, config.RateLimitConfig{AuthPerMinute: 5}, zap.NewNop())
	assert.Nil(t, rl.allow)
	assert.Equal(t, 5, rl.limit.Burst)
}

func TestMetrics_LabelsBoundedByRouteTable(t *testing.T) {
	s := newTestServer(t)
	support := s.user(t, "sam", domain.RoleSupport, nil)

	for i := 0; i < 50; i++ {
		n := strconv.Itoa(i)
		assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, "/x/"+n, "", nil).status)
		assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, "/tickets/not-a-uuid-"+n, support.token, nil).status)
	}

	snap := s.metrics.Snapshot()
	assert.Equal(t, map[string]int64{
		"unmatched|GET|NOT_FOUND":    50,
		"/tickets/:id|GET|NOT_FOUND": 50,
	}, snap.Errors)
	assert.Len(t, snap.Requests, 2)
}
