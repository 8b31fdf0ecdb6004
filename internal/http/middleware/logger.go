package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Logger emits one structured line per request; server errors log at error
// level so they stand out from routine traffic.
func Logger(log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)

		requestID, _ := c.Get(RequestIDHeader)
		requestIDStr, _ := requestID.(string)

		attrs := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency", latency,
			"request_id", requestIDStr,
			"ip", c.ClientIP(),
		}

		if c.Writer.Status() >= http.StatusInternalServerError {
			log.Error("request failed", attrs...)
			return
		}
		log.Info("request completed", attrs...)
	}
}
