package api

import (
	"time"

	"dev-ticker-server/internal/metrics"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RequestIDHeader carries the per-request id back to the caller
const RequestIDHeader = "X-Request-ID"

// unmatchedRoute labels requests that did not hit a registered route
const unmatchedRoute = "unmatched"

// RequestLogger logs every request with a generated request id
func RequestLogger(logger *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		requestID := uuid.New().String()
		c.Set("request_id", requestID)
		c.Header(RequestIDHeader, requestID)

		c.Next()

		logger.Infow("Request completed",
			"request_id", requestID,
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"query", c.Request.URL.RawQuery,
			"status", c.Writer.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
			"remote_addr", c.ClientIP(),
		)
	}
}

// Metrics records request counts, latencies and in-flight requests
func Metrics(m *metrics.MetricsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		m.IncInFlight()
		defer m.DecInFlight()

		c.Next()

		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = unmatchedRoute
		}
		m.RecordAPIRequest(endpoint, c.Writer.Status())
		m.ObserveAPIRequestDuration(endpoint, time.Since(start))
	}
}
