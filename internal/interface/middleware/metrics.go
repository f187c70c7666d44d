package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"travel-booking-service/pkg/metrics"
)

var skipMetrics = map[string]struct{}{
	"/metrics": {},
	"/health":  {},
	"/ready":   {},
}

// Metrics records request counts and latency by route pattern
func Metrics(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, skip := skipMetrics[c.Request.URL.Path]; skip {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		m.RecordHTTPRequest(c.Request.Method, path, c.Writer.Status(), time.Since(start))
	}
}
