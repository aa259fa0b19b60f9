package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// Logger logs one line per request, at a level chosen by the status class
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		if raw := c.Request.URL.RawQuery; raw != "" {
			path = path + "?" + raw
		}

		c.Next()

		status := c.Writer.Status()
		l := requestLogger(c)
		var evt *zerolog.Event
		msg := "Request processed"
		switch {
		case status >= 500:
			evt, msg = l.Error(), "Server error"
		case status >= 400:
			evt, msg = l.Warn(), "Client error"
		default:
			evt = l.Info()
		}

		evt = evt.
			Str("method", c.Request.Method).
			Str("path", path).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Str("client_ip", c.ClientIP())
		if id, ok := UserID(c); ok {
			evt = evt.Int64("user_id", id)
		}
		if len(c.Errors) > 0 {
			evt = evt.Str("errors", c.Errors.String())
		}
		evt.Msg(msg)
	}
}
