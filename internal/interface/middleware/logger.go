package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"travel-booking-service/pkg/logger"
)

// Logger logs every request at a level chosen by its status
func Logger(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		status := c.Writer.Status()
		fields := []interface{}{
			"method", c.Request.Method,
			"path", path,
			"query", query,
			"status", status,
			"duration", time.Since(start),
			"client_ip", c.ClientIP(),
			"user_agent", c.Request.UserAgent(),
		}
		if id := CurrentIdentity(c); id != nil {
			fields = append(fields, "user_id", id.UserID)
		}

		switch {
		case status >= 500:
			log.Error("Server error", fields...)
		case status >= 400:
			log.Warn("Client error", fields...)
		default:
			log.Info("Request completed", fields...)
		}
	}
}
