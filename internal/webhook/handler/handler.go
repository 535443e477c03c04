// Package handler provides the HTTP endpoint receiving forge webhooks.
package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	membershipModel "github.com/festy23/stagebot/internal/membership/model"
	"github.com/festy23/stagebot/internal/middleware"
	"github.com/festy23/stagebot/internal/webhook/model"
	"github.com/festy23/stagebot/internal/webhook/service"
)

// Handler handles webhook deliveries.
type Handler struct {
	service service.Service
	logger  *zap.SugaredLogger
}

// New creates a new webhook handler instance.
func New(svc service.Service, logger *zap.SugaredLogger) *Handler {
	return &Handler{
		service: svc,
		logger:  logger,
	}
}

// Receive handles POST /webhook.
//
// A non-2xx answer makes the forge redeliver the event later, so every
// failure that a retry may fix is reported as such.
func (h *Handler) Receive(c *gin.Context) {
	kind := c.GetHeader(model.HeaderEvent)
	delivery := c.GetHeader(model.HeaderDelivery)
	if delivery == "" {
		delivery = uuid.NewString()
	}
	c.Set(middleware.DeliveryIDKey, delivery)
	c.Set(middleware.EventKindKey, kind)

	if kind == "" {
		errorResponse(c, "INVALID_PAYLOAD", model.HeaderEvent+" header is required", http.StatusBadRequest)
		return
	}
	if kind == model.KindPing {
		c.JSON(http.StatusOK, Response{Status: "pong", DeliveryID: delivery})
		return
	}

	var payload model.Payload
	if err := c.ShouldBindJSON(&payload); err != nil {
		errorResponse(c, "INVALID_PAYLOAD", "invalid request body", http.StatusBadRequest)
		return
	}

	event := &model.Event{
		Kind:       kind,
		DeliveryID: delivery,
		Payload:    &payload,
	}

	result, err := h.service.Dispatch(c.Request.Context(), event)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrMalformedPayload), errors.Is(err, model.ErrMissingEventKind):
			errorResponse(c, "INVALID_PAYLOAD", err.Error(), http.StatusBadRequest)
		case errors.Is(err, membershipModel.ErrTeamNotFound):
			h.logger.Errorw("core team is misconfigured", "delivery", delivery, "error", err)
			errorResponse(c, "CONFIGURATION_ERROR", "core team not found", http.StatusInternalServerError)
		default:
			h.logger.Warnw("forge request failed", "delivery", delivery, "error", err)
			errorResponse(c, "FORGE_ERROR", "forge request failed", http.StatusBadGateway)
		}
		return
	}

	c.JSON(http.StatusOK, Response{Status: string(result), DeliveryID: delivery})
}
