package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/hostwatch/hostwatch/internal/logger"
)

// RequestLogger emits one structured line per request after the handler
// chain finishes. Health and Prometheus scrape endpoints are skipped to
// keep the log free of poll noise.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		if path == "/health" || path == "/metrics" {
			return
		}

		status := c.Writer.Status()
		fields := map[string]interface{}{
			"status":     status,
			"method":     c.Request.Method,
			"path":       path,
			"latency_ms": time.Since(start).Milliseconds(),
			"bytes":      c.Writer.Size(),
			"ip":         c.ClientIP(),
		}
		if query := c.Request.URL.RawQuery; query != "" {
			fields["query"] = query
		}
		if id := RequestIDFrom(c); id != "" {
			fields[requestIDKey] = id
		}
		if len(c.Errors) > 0 {
			fields["errors"] = c.Errors.String()
		}

		entry := logger.WithFields(fields)
		switch {
		case status >= 500:
			entry.Error("server error")
		case status >= 400:
			entry.Warn("client error")
		default:
			entry.Info("request completed")
		}
	}
}
