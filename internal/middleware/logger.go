package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Logger logs every request after it is served. The request context carries
// a logger tagged with the request id, available through zerolog.Ctx.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		if raw := c.Request.URL.RawQuery; raw != "" {
			path = path + "?" + raw
		}

		reqLogger := log.With().
			Str("request_id", c.GetString(ContextRequestID)).
			Logger()
		c.Request = c.Request.WithContext(reqLogger.WithContext(c.Request.Context()))

		c.Next()

		status := c.Writer.Status()
		var event *zerolog.Event
		var msg string
		switch {
		case status >= 500:
			event, msg = reqLogger.Error(), "Server error"
		case status >= 400:
			event, msg = reqLogger.Warn(), "Client error"
		default:
			event, msg = reqLogger.Info(), "Request processed"
		}

		event.
			Str("method", c.Request.Method).
			Str("path", path).
			Str("ip", c.ClientIP()).
			Int("status", status).
			Dur("duration", time.Since(start)).
			Str("user_agent", c.Request.UserAgent()).
			Msg(msg)
	}
}
