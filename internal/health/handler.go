// Package health provides health check endpoint handler.
package health

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const checkTimeout = 5 * time.Second

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler handles health check requests.
type Handler struct {
	forge  Pinger
	logger *zap.SugaredLogger
}

// New creates a new health handler instance.
func New(forge Pinger, logger *zap.SugaredLogger) *Handler {
	return &Handler{
		forge:  forge,
		logger: logger,
	}
}

// Response represents health check response.
type Response struct {
	Status string `json:"status"`
}

// Check handles GET /health request.
func (h *Handler) Check(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), checkTimeout)
	defer cancel()

	if err := h.forge.Ping(ctx); err != nil {
		h.logger.Warnw("health check failed", "error", err)
		c.JSON(http.StatusServiceUnavailable, Response{
			Status: "unhealthy",
		})
		return
	}

	c.JSON(http.StatusOK, Response{
		Status: "ok",
	})
}

// RegisterRoutes registers the health endpoint.
func RegisterRoutes(r *gin.Engine, forge Pinger, logger *zap.SugaredLogger) {
	r.GET("/health", New(forge, logger).Check)
}
