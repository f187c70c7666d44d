package middleware

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"travel-booking-service/internal/infrastructure/cache"
	"travel-booking-service/pkg/logger"
	"travel-booking-service/pkg/metrics"
)

type failingCache struct{}

func (failingCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return nil, false, errors.New("cache down")
}

func (failingCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return errors.New("cache down")
}

func (failingCache) DeletePrefix(ctx context.Context, prefix string) error {
	return errors.New("cache down")
}

func cachedRouter(store cache.Store, m *metrics.Metrics, calls *int, status *int) *gin.Engine {
	log := logger.NewNopLogger()
	r := gin.New()
	r.GET("/offers", ResponseCache(store, "offers:", time.Minute, m, log), func(c *gin.Context) {
		*calls++
		c.JSON(*status, gin.H{"calls": *calls})
	})
	r.POST("/offers", InvalidateCache(store, log, "offers:"), func(c *gin.Context) {
		c.JSON(*status, gin.H{"ok": true})
	})
	return r
}

func TestResponseCache_HitAfterMiss(t *testing.T) {
	store := cache.NewMemoryCache()
	m := metrics.NewMetricsWithRegistry("test", prometheus.NewRegistry())
	calls, status := 0, http.StatusOK
	r := cachedRouter(store, m, &calls, &status)

	first := perform(r, http.MethodGet, "/offers?category=beach", "", nil)
	require.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, "MISS", first.Header().Get(CacheHeader))

	second := perform(r, http.MethodGet, "/offers?category=beach", "", nil)
	require.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, "HIT", second.Header().Get(CacheHeader))
	assert.JSONEq(t, first.Body.String(), second.Body.String())
	assert.Equal(t, 1, calls)

	other := perform(r, http.MethodGet, "/offers?category=city", "", nil)
	assert.Equal(t, "MISS", other.Header().Get(CacheHeader))
	assert.Equal(t, 2, calls)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheLookups.WithLabelValues("hit")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.CacheLookups.WithLabelValues("miss")))
}

func TestResponseCache_SkipsErrors(t *testing.T) {
	store := cache.NewMemoryCache()
	calls, status := 0, http.StatusServiceUnavailable
	r := cachedRouter(store, metrics.NewNopMetrics(), &calls, &status)

	perform(r, http.MethodGet, "/offers", "", nil)
	perform(r, http.MethodGet, "/offers", "", nil)
	assert.Equal(t, 2, calls)
	assert.Equal(t, 0, store.Len())
}

func TestInvalidateCache(t *testing.T) {
	store := cache.NewMemoryCache()
	require.NoError(t, store.Set(context.Background(), "deals:/deals", []byte(`{}`), 0))
	calls, status := 0, http.StatusOK
	r := cachedRouter(store, metrics.NewNopMetrics(), &calls, &status)

	perform(r, http.MethodGet, "/offers", "", nil)
	require.Equal(t, 2, store.Len())

	status = http.StatusBadRequest
	perform(r, http.MethodPost, "/offers", `{}`, nil)
	assert.Equal(t, 2, store.Len(), "failed writes keep the cache")

	status = http.StatusCreated
	perform(r, http.MethodPost, "/offers", `{}`, nil)
	assert.Equal(t, 1, store.Len())

	status = http.StatusOK
	w := perform(r, http.MethodGet, "/offers", "", nil)
	assert.Equal(t, "MISS", w.Header().Get(CacheHeader))
}

func TestResponseCache_FailingStoreFallsThrough(t *testing.T) {
	calls, status := 0, http.StatusOK
	r := cachedRouter(failingCache{}, metrics.NewNopMetrics(), &calls, &status)

	w := perform(r, http.MethodGet, "/offers", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = perform(r, http.MethodPost, "/offers", `{}`, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, calls)
}
