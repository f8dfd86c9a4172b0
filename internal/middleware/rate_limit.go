package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Counter increments a fixed-window counter and reports the new value.
type Counter interface {
	Incr(ctx context.Context, key string, window time.Duration) (int64, error)
}

// RedisCounter keeps counters in Redis with the window as expiry.
type RedisCounter struct {
	client *redis.Client
}

func NewRedisCounter(client *redis.Client) *RedisCounter {
	return &RedisCounter{client: client}
}

func (r *RedisCounter) Incr(ctx context.Context, key string, window time.Duration) (int64, error) {
	pipe := r.client.Pipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}
	return incr.Val(), nil
}

// RateLimitConfig defines configuration for rate limiting
type RateLimitConfig struct {
	// Window is the time window for rate limiting
	Window time.Duration
	// Limit is the maximum number of requests allowed in the window
	Limit int
	// Key prefix for Redis keys
	KeyPrefix string
}

// RateLimiter enforces a fixed-window limit. A limiter without a counter
// lets everything through.
type RateLimiter struct {
	counter Counter
	config  RateLimitConfig
	log     *zap.SugaredLogger
	now     func() time.Time
}

// NewRateLimiter creates a new rate limiter instance. counter may be nil.
func NewRateLimiter(counter Counter, config RateLimitConfig, log *zap.SugaredLogger) *RateLimiter {
	return &RateLimiter{counter: counter, config: config, log: log, now: time.Now}
}

// NewRecipeCreationRateLimiter limits recipe creation per user.
func NewRecipeCreationRateLimiter(counter Counter, limit int, window time.Duration, log *zap.SugaredLogger) *RateLimiter {
	return NewRateLimiter(counter, RateLimitConfig{
		Window:    window,
		Limit:     limit,
		KeyPrefix: "rate_limit:recipe_creation",
	}, log)
}

// NewRecipeModificationRateLimiter limits modifications per user and recipe.
func NewRecipeModificationRateLimiter(counter Counter, limit int, window time.Duration, log *zap.SugaredLogger) *RateLimiter {
	return NewRateLimiter(counter, RateLimitConfig{
		Window:    window,
		Limit:     limit,
		KeyPrefix: "rate_limit:recipe_modification",
	}, log)
}

// IsAllowed counts one request for subject.
// Returns: allowed, remaining requests, reset time, error
func (rl *RateLimiter) IsAllowed(ctx context.Context, subject string) (bool, int, time.Time, error) {
	windowStart := rl.now().Truncate(rl.config.Window)
	key := fmt.Sprintf("%s:%s:%d", rl.config.KeyPrefix, subject, windowStart.Unix())

	count, err := rl.counter.Incr(ctx, key, rl.config.Window)
	if err != nil {
		return false, 0, time.Time{}, err
	}

	remaining := rl.config.Limit - int(count)
	if remaining < 0 {
		remaining = 0
	}
	return int(count) <= rl.config.Limit, remaining, windowStart.Add(rl.config.Window), nil
}

// PerUser limits the authenticated caller.
func (rl *RateLimiter) PerUser() gin.HandlerFunc {
	return rl.handler(func(c *gin.Context) string {
		if id := UserID(c); id != nil {
			return id.String()
		}
		return ""
	})
}

// PerRecipe limits the authenticated caller per recipe in the :id param.
func (rl *RateLimiter) PerRecipe() gin.HandlerFunc {
	return rl.handler(func(c *gin.Context) string {
		id := UserID(c)
		if id == nil || c.Param("id") == "" {
			return ""
		}
		return id.String() + ":" + c.Param("id")
	})
}

func (rl *RateLimiter) handler(subject func(*gin.Context) string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if rl == nil || rl.counter == nil {
			c.Next()
			return
		}
		key := subject(c)
		if key == "" {
			c.Next()
			return
		}

		allowed, remaining, resetTime, err := rl.IsAllowed(c.Request.Context(), key)
		if err != nil {
			rl.log.Warnw("rate limit check failed", "prefix", rl.config.KeyPrefix, "error", err)
			c.Header("X-RateLimit-Error", "rate limit check failed")
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(rl.config.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(resetTime.Unix(), 10))

		if !allowed {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       "rate limit exceeded",
				"message":     fmt.Sprintf("You have exceeded the rate limit of %d requests per %v", rl.config.Limit, rl.config.Window),
				"retry_after": int(time.Until(resetTime).Seconds()),
			})
			return
		}
		c.Next()
	}
}
