package handler

import (
	"github.com/gin-gonic/gin"
)

// ErrorResponse is the body returned for a failed delivery.
type ErrorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Response is the body returned for an accepted delivery.
type Response struct {
	Status     string `json:"status"`
	DeliveryID string `json:"delivery_id,omitempty"`
}

func errorResponse(c *gin.Context, code string, message string, statusCode int) {
	resp := ErrorResponse{}
	resp.Error.Code = code
	resp.Error.Message = message
	c.JSON(statusCode, resp)
}
