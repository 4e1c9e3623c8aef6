// Package ratelimit implements a fixed-window per-client request limit on redis.
package ratelimit

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

const Message = "Too many requests, please try again later."

// Counter is the subset of the redis client used for the window counters.
type Counter interface {
	Incr(ctx context.Context, key string) *redis.IntCmd
	Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
}

type Result struct {
	Allowed   bool
	Remaining int64
	Reset     time.Time
}

type Limiter struct {
	rdb    Counter
	limit  int64
	window time.Duration
	now    func() time.Time
	log    *slog.Logger
}

func New(rdb Counter, limit int, window time.Duration, logger *slog.Logger) *Limiter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Limiter{
		rdb:    rdb,
		limit:  int64(limit),
		window: window,
		now:    time.Now,
		log:    logger.With("component", "ratelimit"),
	}
}

// Key returns the counter key for client in the window containing t.
func (l *Limiter) Key(client string, t time.Time) string {
	start := t.Truncate(l.window).Unix()
	return fmt.Sprintf("ratelimit:%s:%d", client, start)
}

// Allow counts one request for client. On redis errors the request is
// allowed and the error returned for logging.
func (l *Limiter) Allow(ctx context.Context, client string) (Result, error) {
	now := l.now()
	key := l.Key(client, now)
	reset := now.Truncate(l.window).Add(l.window)

	n, err := l.rdb.Incr(ctx, key).Result()
	if err != nil {
		return Result{Allowed: true, Remaining: l.limit, Reset: reset}, fmt.Errorf("incr %s: %w", key, err)
	}
	if n == 1 {
		if err := l.rdb.Expire(ctx, key, l.window).Err(); err != nil {
			l.log.Warn("failed to set window expiry", "key", key, "error", err)
		}
	}

	remaining := l.limit - n
	if remaining < 0 {
		remaining = 0
	}
	return Result{Allowed: n <= l.limit, Remaining: remaining, Reset: reset}, nil
}

// Middleware limits requests by client IP and answers 429 once the window is spent.
func (l *Limiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		res, err := l.Allow(c.Request.Context(), c.ClientIP())
		if err != nil {
			l.log.Error("rate limiter unavailable, allowing request", "error", err)
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.FormatInt(l.limit, 10))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(res.Remaining, 10))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(res.Reset.Unix(), 10))

		if !res.Allowed {
			retry := int(res.Reset.Sub(l.now()).Seconds())
			if retry < 1 {
				retry = 1
			}
			c.Header("Retry-After", strconv.Itoa(retry))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"success": false,
				"message": Message,
			})
			return
		}
		c.Next()
	}
}
