package middleware

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/migestion/migestion/internal/common/errorx"
)

// RateLimiter implements a fixed-window counter over Redis for the anonymous
// auth endpoints. A nil limiter allows everything.
type RateLimiter struct {
	client   *redis.Client
	requests int
	window   time.Duration
	logger   *zap.Logger
}

// NewRateLimiter creates a limiter allowing requests per window per client.
func NewRateLimiter(client *redis.Client, requests int, window time.Duration, logger *zap.Logger) *RateLimiter {
	if client == nil {
		return nil
	}
	return &RateLimiter{
		client:   client,
		requests: requests,
		window:   window,
		logger:   logger,
	}
}

// Limit returns a middleware counting requests per client IP under the given
// scope key. Redis outages fail open: an unavailable limiter must not take
// login down with it.
func (rl *RateLimiter) Limit(scope string, errHandler *errorx.ErrorHandler) gin.HandlerFunc {
	if rl == nil {
		return func(c *gin.Context) { c.Next() }
	}

	return func(c *gin.Context) {
		key := fmt.Sprintf("ratelimit:%s:%s", scope, c.ClientIP())

		count, err := rl.client.Incr(c.Request.Context(), key).Result()
		if err != nil {
			if rl.logger != nil {
				rl.logger.Warn("rate limiter unavailable", zap.Error(err))
			}
			c.Next()
			return
		}
		if count == 1 {
			rl.client.Expire(c.Request.Context(), key, rl.window)
		}

		if count > int64(rl.requests) {
			errHandler.Handle(c, errorx.ErrRateLimited)
			return
		}
		c.Next()
	}
}
