package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"travel-booking-service/internal/interface/response"
	"travel-booking-service/pkg/logger"
)

// Recovery turns a panic into a 500 envelope
func Recovery(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				log.Error("Panic recovered",
					"error", fmt.Sprintf("%v", err),
					"error_type", fmt.Sprintf("%T", err),
					"path", c.Request.URL.Path,
					"method", c.Request.Method,
					"stacktrace", string(debug.Stack()),
				)
				response.Fail(c, http.StatusInternalServerError, "Internal server error", nil)
			}
		}()

		c.Next()
	}
}
