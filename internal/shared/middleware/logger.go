package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"library-client/pkg/logger"
)

// Logger writes one line per request. Server errors log at error, client
// errors at warn, everything else at debug so test runs stay quiet.
func Logger() gin.HandlerFunc {
	l := logger.Component("mockapi")
	return func(c *gin.Context) {
		start := time.Now()
		path, query := c.Request.URL.Path, c.Request.URL.RawQuery

		c.Next()

		status := c.Writer.Status()
		var ev *zerolog.Event
		switch {
		case status >= 500:
			ev = l.Error()
		case status >= 400:
			ev = l.Warn()
		default:
			ev = l.Debug()
		}
		if len(c.Errors) > 0 {
			ev = ev.Str("errors", c.Errors.String())
		}
		ev.Str("request_id", c.GetString(KeyRequestID)).
			Str("method", c.Request.Method).
			Str("path", path).
			Str("query", query).
			Str("username", c.GetString(KeyUsername)).
			Int("status", status).
			Int("bytes", c.Writer.Size()).
			Dur("latency_ms", time.Since(start)).
			Msg("HTTP Request")
	}
}
