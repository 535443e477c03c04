// Package router provides webhook module routes registration.
package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/festy23/stagebot/internal/webhook/handler"
	"github.com/festy23/stagebot/internal/webhook/service"
)

// RegisterRoutes registers the webhook endpoint at path.
func RegisterRoutes(r *gin.Engine, path string, svc service.Service, logger *zap.SugaredLogger) {
	h := handler.New(svc, logger)

	r.POST(path, h.Receive)
}
