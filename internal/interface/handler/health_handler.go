package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Pinger is a dependency checked by the readiness endpoint
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapts a function to Pinger
type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error {
	return f(ctx)
}

type HealthHandler struct {
	service string
	checks  map[string]Pinger
}

// NewHealthHandler takes the dependencies to check by name; nil entries are reported
// as not configured
func NewHealthHandler(service string, checks map[string]Pinger) *HealthHandler {
	return &HealthHandler{service: service, checks: checks}
}

func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": h.service,
	})
}

func (h *HealthHandler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	connections := make(map[string]string, len(h.checks))
	hasError := false
	for name, check := range h.checks {
		if check == nil {
			connections[name] = "not configured"
			continue
		}
		if err := check.Ping(ctx); err != nil {
			connections[name] = "error: " + err.Error()
			hasError = true
			continue
		}
		connections[name] = "connected"
	}

	status := http.StatusOK
	statusText := "ready"
	if hasError {
		status = http.StatusServiceUnavailable
		statusText = "not ready"
	}
	c.JSON(status, gin.H{
		"status":      statusText,
		"connections": connections,
	})
}
