package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"library-client/internal/shared/response"
)

// Recovery turns a handler panic into the 500 envelope the client expects.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				log.Error().
					Str("request_id", c.GetString(KeyRequestID)).
					Str("route", c.FullPath()).
					Interface("panic", err).
					Msg("handler panicked")

				response.InternalServerError(c, "Internal server error")
			}
		}()

		c.Next()
	}
}
