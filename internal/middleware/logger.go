// Package middleware provides HTTP middleware functions.
package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Context keys under which handlers publish webhook metadata for request logging.
const (
	DeliveryIDKey = "delivery_id"
	EventKindKey  = "event"
)

// Logger returns a middleware that logs HTTP requests.
func Logger(logger *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		// Process request
		c.Next()

		latency := time.Since(start)

		fields := []interface{}{
			"status", c.Writer.Status(),
			"method", c.Request.Method,
			"path", path,
			"latency_ms", latency.Milliseconds(),
			"client_ip", c.ClientIP(),
			"user_agent", c.Request.UserAgent(),
		}

		if raw != "" {
			fields = append(fields, "query", raw)
		}

		fields = appendWebhookFields(c, fields)

		if len(c.Errors) > 0 {
			fields = append(fields, "errors", c.Errors.String())
		}

		status := c.Writer.Status()
		switch {
		case status >= 500:
			logger.Errorw("HTTP request", fields...)
		case status >= 400:
			logger.Warnw("HTTP request", fields...)
		default:
			logger.Infow("HTTP request", fields...)
		}
	}
}

// appendWebhookFields adds the delivery ID and event kind when a handler recorded them.
func appendWebhookFields(c *gin.Context, fields []interface{}) []interface{} {
	if delivery := c.GetString(DeliveryIDKey); delivery != "" {
		fields = append(fields, "delivery", delivery)
	}
	if kind := c.GetString(EventKindKey); kind != "" {
		fields = append(fields, "event", kind)
	}
	return fields
}
