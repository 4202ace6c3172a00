package middleware

import (
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"todoapi/internal/adapter/http/helper"
	"todoapi/internal/core/model/response"
	"todoapi/internal/core/telemetry"
	"todoapi/pkg"
)

type RateLimitConfig struct {
	Requests int
	Window   time.Duration
	KeyFunc  func(*gin.Context) string
}

// RateLimiter is a fixed-window counter per client, kept in process memory.
type RateLimiter struct {
	cache   *cache.Cache
	config  RateLimitConfig
	logger  *zap.Logger
	metrics *telemetry.AppMetrics
	mutex   sync.Mutex
}

type rateLimitEntry struct {
	Count     int
	ResetTime time.Time
}

func NewRateLimiter(config RateLimitConfig, logger *zap.Logger, metrics *telemetry.AppMetrics) *RateLimiter {
	if config.KeyFunc == nil {
		config.KeyFunc = pkg.GetClientIP
	}

	return &RateLimiter{
		cache:   cache.New(config.Window, 2*config.Window),
		config:  config,
		logger:  logger,
		metrics: metrics,
	}
}

func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}

		key := fmt.Sprintf("rate_limit:%s", rl.config.KeyFunc(c))

		allowed, remaining, resetTime := rl.check(key)

		c.Header("X-RateLimit-Limit", strconv.Itoa(rl.config.Requests))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(resetTime.Unix(), 10))

		if !allowed {
			if rl.metrics != nil {
				rl.metrics.RecordRateLimitHit(c.Request.Context(), path)
			}

			rl.logger.Warn("Rate limit exceeded",
				zap.String("key", key),
				zap.String("path", path),
				zap.Int("limit", rl.config.Requests),
				zap.Duration("window", rl.config.Window))

			c.Header("Retry-After", strconv.Itoa(int(time.Until(resetTime).Seconds())+1))
			helper.SendError(c, http.StatusTooManyRequests, "RATE_LIMITED", []response.ValidationError{{
				Field:   "request",
				Message: fmt.Sprintf("Too many requests. Limit: %d per %v", rl.config.Requests, rl.config.Window),
			}})
			return
		}

		if rl.metrics != nil {
			rl.metrics.RecordRateLimitAllowed(c.Request.Context(), path)
		}

		c.Next()
	}
}

func (rl *RateLimiter) check(key string) (bool, int, time.Time) {
	now := time.Now()

	rl.mutex.Lock()
	defer rl.mutex.Unlock()

	if item, found := rl.cache.Get(key); found {
		entry := item.(rateLimitEntry)

		if now.Before(entry.ResetTime) {
			if entry.Count >= rl.config.Requests {
				return false, 0, entry.ResetTime
			}

			entry.Count++
			rl.cache.Set(key, entry, time.Until(entry.ResetTime))

			return true, rl.config.Requests - entry.Count, entry.ResetTime
		}
	}

	resetTime := now.Add(rl.config.Window)
	rl.cache.Set(key, rateLimitEntry{Count: 1, ResetTime: resetTime}, rl.config.Window)

	return true, rl.config.Requests - 1, resetTime
}

func (rl *RateLimiter) activeEntries() int {
	return rl.cache.ItemCount()
}
