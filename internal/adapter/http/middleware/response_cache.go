package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"todoapi/internal/core/port"
	"todoapi/internal/core/telemetry"
	"todoapi/pkg/tracing"
)

const cacheKeyPrefix = "response:"

type cachedResponse struct {
	StatusCode  int       `json:"status_code"`
	ContentType string    `json:"content_type"`
	Body        []byte    `json:"body"`
	Timestamp   time.Time `json:"timestamp"`
}

// ResponseCache serves repeated GETs under prefix from a CacheRepository.
// Any successful write under the same prefix drops every cached entry for it.
type ResponseCache struct {
	store   port.CacheRepository
	prefix  string
	ttl     time.Duration
	logger  *zap.Logger
	metrics *telemetry.AppMetrics
}

func NewResponseCache(store port.CacheRepository, prefix string, ttl time.Duration, logger *zap.Logger, metrics *telemetry.AppMetrics) *ResponseCache {
	return &ResponseCache{
		store:   store,
		prefix:  prefix,
		ttl:     ttl,
		logger:  logger,
		metrics: metrics,
	}
}

func (rc *ResponseCache) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !strings.HasPrefix(c.Request.URL.Path, rc.prefix) {
			c.Next()
			return
		}

		if c.Request.Method != http.MethodGet {
			c.Next()
			rc.invalidateOnSuccess(c)
			return
		}

		ctx := c.Request.Context()
		path := c.FullPath()
		key := rc.cacheKey(c)

		if raw, err := rc.store.Get(ctx, key); err == nil {
			var cached cachedResponse

			if err := json.Unmarshal(raw, &cached); err == nil {
				_, span := tracing.CreateChildSpan(ctx, "cache.response.hit", []attribute.KeyValue{
					attribute.String("cache.key", key),
					attribute.Int("cache.body_size", len(cached.Body)),
				})
				span.End()

				if rc.metrics != nil {
					rc.metrics.RecordCacheHit(ctx, path)
				}

				c.Header("X-Cache", "HIT")
				c.Data(cached.StatusCode, cached.ContentType, cached.Body)
				c.Abort()
				return
			}
		} else if !errors.Is(err, port.ErrCacheMiss) {
			rc.logger.Warn("Response cache read failed", zap.String("cache_key", key), zap.Error(err))
		}

		if rc.metrics != nil {
			rc.metrics.RecordCacheMiss(ctx, path)
		}

		writer := &bodyRecorder{ResponseWriter: c.Writer, body: &bytes.Buffer{}}
		c.Writer = writer
		c.Header("X-Cache", "MISS")

		c.Next()

		if writer.Status() != http.StatusOK {
			return
		}

		raw, err := json.Marshal(cachedResponse{
			StatusCode:  writer.Status(),
			ContentType: writer.Header().Get("Content-Type"),
			Body:        writer.body.Bytes(),
			Timestamp:   time.Now(),
		})

		if err != nil {
			return
		}

		if err := rc.store.Set(ctx, key, raw, rc.ttl); err != nil {
			rc.logger.Warn("Response cache write failed", zap.String("cache_key", key), zap.Error(err))
		}
	}
}

func (rc *ResponseCache) invalidateOnSuccess(c *gin.Context) {
	status := c.Writer.Status()

	if status < 200 || status >= 300 {
		return
	}

	if err := rc.Invalidate(c.Request.Context()); err != nil {
		rc.logger.Warn("Response cache invalidation failed", zap.Error(err))
	}
}

func (rc *ResponseCache) Invalidate(ctx context.Context) error {
	return rc.store.DeleteByPrefix(ctx, cacheKeyPrefix+rc.prefix)
}

func (rc *ResponseCache) cacheKey(c *gin.Context) string {
	key := cacheKeyPrefix + c.Request.URL.Path

	if c.Request.URL.RawQuery != "" {
		key += "?" + c.Request.URL.RawQuery
	}

	return key
}

type bodyRecorder struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w *bodyRecorder) Write(data []byte) (int, error) {
	w.body.Write(data)
	return w.ResponseWriter.Write(data)
}

func (w *bodyRecorder) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}
