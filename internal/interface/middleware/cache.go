package middleware

import (
	"bytes"
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"travel-booking-service/internal/infrastructure/cache"
	"travel-booking-service/pkg/logger"
	"travel-booking-service/pkg/metrics"
)

// CacheHeader reports HIT or MISS on cacheable responses
const CacheHeader = "X-Cache"

// cacheTimeout bounds cache round trips so a slow cache never stalls a request
const cacheTimeout = 500 * time.Millisecond

type bodyRecorder struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w *bodyRecorder) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *bodyRecorder) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// ResponseCache serves GET responses from store under prefix+URL. Only 200 JSON
// responses are stored; cache failures fall through to the handler.
func ResponseCache(store cache.Store, prefix string, ttl time.Duration, m *metrics.Metrics, log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodGet {
			c.Next()
			return
		}
		key := prefix + c.Request.URL.RequestURI()

		ctx, cancel := context.WithTimeout(c.Request.Context(), cacheTimeout)
		cached, ok, err := store.Get(ctx, key)
		cancel()
		if err != nil {
			log.Warn("Response cache read failed", "key", key, "error", err)
		}
		m.RecordCacheLookup(ok)
		if ok {
			c.Header(CacheHeader, "HIT")
			c.Data(http.StatusOK, "application/json; charset=utf-8", cached)
			c.Abort()
			return
		}

		c.Header(CacheHeader, "MISS")
		rec := &bodyRecorder{ResponseWriter: c.Writer, body: &bytes.Buffer{}}
		c.Writer = rec
		c.Next()

		if rec.Status() != http.StatusOK || rec.body.Len() == 0 {
			return
		}
		ctx, cancel = context.WithTimeout(context.Background(), cacheTimeout)
		defer cancel()
		if err := store.Set(ctx, key, rec.body.Bytes(), ttl); err != nil {
			log.Warn("Response cache write failed", "key", key, "error", err)
		}
	}
}

// InvalidateCache drops every cached response under prefixes after a successful write
func InvalidateCache(store cache.Store, log logger.Logger, prefixes ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Status() >= http.StatusBadRequest {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), cacheTimeout)
		defer cancel()
		for _, prefix := range prefixes {
			if err := store.DeletePrefix(ctx, prefix); err != nil {
				log.Warn("Response cache invalidation failed", "prefix", prefix, "error", err)
			}
		}
	}
}
