package middlewares

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

const rateLimitKeyPrefix = "RateLimit:"

// RateLimiter is a fixed-window request counter per client IP, kept in redis.
type RateLimiter struct {
	client *redis.Client
	limit  int64
	window time.Duration
}

func NewRateLimiter(client *redis.Client, limit int64, window time.Duration) *RateLimiter {
	return &RateLimiter{
		client: client,
		limit:  limit,
		window: window,
	}
}

// RateLimitMiddleware rejects a client with 429 once it exceeds the limit in the current window.
// Redis failures let the request through.
func (rl *RateLimiter) RateLimitMiddleware(c *gin.Context) {
	key := rateLimitKeyPrefix + c.ClientIP()
	ctx := c.Request.Context()

	count, err := rl.hit(ctx, key)
	if err != nil {
		_ = c.Error(fmt.Errorf("rate limiter: %w", err))
		c.Next()
		return
	}

	if count > rl.limit {
		AbortWithMessage(c, http.StatusTooManyRequests,
			fmt.Sprintf("Rate limit exceeded. Try again in %d seconds", int(rl.window.Seconds())))
		return
	}
	c.Next()
}

// hit counts one request and starts the window in the same round trip.
// EXPIRE NX only sets a TTL on a key that has none, so a key left without
// one by an earlier failure still gets it on the next request.
func (rl *RateLimiter) hit(ctx context.Context, key string) (int64, error) {
	var incr *redis.IntCmd
	_, err := rl.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, key)
		pipe.ExpireNX(ctx, key, rl.window)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return incr.Val(), nil
}
