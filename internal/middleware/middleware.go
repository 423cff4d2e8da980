package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yigit/parishscheduler/internal/pkg/logger"
)

// RequestLogger logs one structured line per request
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		status := c.Writer.Status()
		event := logger.Info()
		switch {
		case status >= 500:
			event = logger.Error()
		case status >= 400:
			event = logger.Warn()
		}

		event = event.
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Str("clientIP", c.ClientIP())
		if identity, ok := CurrentIdentity(c); ok {
			event = event.Str("userID", identity.UserID)
		}
		event.Msg("Request handled")
	}
}
