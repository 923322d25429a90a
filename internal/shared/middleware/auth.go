package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"library-client/internal/shared/response"
	"library-client/pkg/jwt"
)

// Context keys set by the middleware in this package.
const (
	KeyRequestID = "request_id"
	KeyUsername  = "username"
	KeyScope     = "scope"
	KeyToken     = "token"
)

// Revoked reports tokens invalidated before their expiry.
type Revoked interface {
	IsRevoked(token string) bool
}

// AuthMiddleware validates the Bearer access token and stores its claims.
// When the caller sends X-Username it must match the token subject.
func AuthMiddleware(tokens *jwt.Manager, revoked Revoked) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Unauthorized(c, "missing authorization header")
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			response.Unauthorized(c, "invalid authorization header format")
			return
		}
		token := parts[1]

		claims, err := tokens.ValidateAccessToken(token)
		if err != nil || (revoked != nil && revoked.IsRevoked(token)) {
			response.Unauthorized(c, "invalid token")
			return
		}

		if username := c.GetHeader("X-Username"); username != "" && username != claims.Username {
			response.Unauthorized(c, "username does not match token")
			return
		}

		c.Set(KeyUsername, claims.Username)
		c.Set(KeyScope, claims.Scope)
		c.Set(KeyToken, token)
		c.Next()
	}
}

// RequireScope rejects callers whose token lacks the scope token.
func RequireScope(scope string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !HasScope(c, scope) {
			response.Forbidden(c, "requires scope "+scope)
			return
		}
		c.Next()
	}
}

func HasScope(c *gin.Context, scope string) bool {
	for _, s := range strings.Fields(c.GetString(KeyScope)) {
		if s == scope {
			return true
		}
	}
	return false
}
