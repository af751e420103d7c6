package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/denisAlshanov/streamgrab/internal/utils"
)

func CorrelationIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Check if correlation ID exists in header
		correlationID := c.GetHeader("X-Correlation-ID")
		if correlationID == "" {
			correlationID = utils.GenerateCorrelationID()
		}

		// Generate request ID
		requestID := utils.GenerateRequestID()

		// Store in context
		c.Set("correlation_id", correlationID)
		c.Set("request_id", requestID)

		// Add to response headers
		c.Header("X-Correlation-ID", correlationID)
		c.Header("X-Request-ID", requestID)

		// Create context with IDs for logging
		ctx := c.Request.Context()
		ctx = utils.WithCorrelationID(ctx, correlationID)
		ctx = utils.WithRequestID(ctx, requestID)
		c.Request = c.Request.WithContext(ctx)

		start := time.Now()
		c.Next()

		fields := utils.Fields{
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     c.Writer.Status(),
			"ip":         c.ClientIP(),
			"latency_ms": time.Since(start).Milliseconds(),
		}

		switch status := c.Writer.Status(); {
		case status >= 500 && len(c.Errors) > 0:
			utils.LogError(ctx, "Request failed", c.Errors.Last().Err, fields)
		case status >= 500:
			utils.LogWarn(ctx, "Request failed", fields)
		case status >= 400:
			utils.LogWarn(ctx, "Request rejected", fields)
		default:
			utils.LogInfo(ctx, "Request completed", fields)
		}
	}
}
