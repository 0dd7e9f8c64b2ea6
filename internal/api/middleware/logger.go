package middleware

import (
	"time"

	"catalog/internal/logger"

	"github.com/gin-gonic/gin"
)

// Logger writes one access log line per request through the app logger.
func Logger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		if raw := c.Request.URL.RawQuery; raw != "" {
			path = path + "?" + raw
		}

		c.Next()

		status := c.Writer.Status()
		reqLog := log.With(
			"request_id", c.GetString(RequestIDKey),
			"status", status,
			"latency", time.Since(start).String(),
			"ip", c.ClientIP(),
		)
		switch {
		case status >= 500:
			reqLog.Error("%s %s %s", c.Request.Method, path, c.Errors.String())
		case status >= 400:
			reqLog.Warn("%s %s", c.Request.Method, path)
		default:
			reqLog.Info("%s %s", c.Request.Method, path)
		}
	}
}
