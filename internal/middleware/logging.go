package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/arjunmalik/editcore/internal/logging"
	"github.com/arjunmalik/editcore/internal/metrics"
)

const RequestIDHeader = "X-Request-ID"

// RequestLogger logs request details and records HTTP metrics
func RequestLogger(logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Header(RequestIDHeader, requestID)

		c.Next()

		duration := time.Since(start)
		status := c.Writer.Status()

		logger.WithRequestID(requestID).LogHTTPRequest(
			c.Request.Method, path, c.ClientIP(), status, duration,
		)
		metrics.RecordHTTPRequest(
			c.Request.Method, c.FullPath(), strconv.Itoa(status), duration.Seconds(),
		)
	}
}
