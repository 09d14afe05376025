package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"magazine-catalog/internal/shared/response"
	"magazine-catalog/pkg/jwt"
)

// Context keys set by AuthMiddleware.
const (
	ContextSubject = "subject"
	ContextRole    = "role"
)

// AuthMiddleware requires a valid "Bearer <token>" access token and puts
// its subject and role on the context.
func AuthMiddleware(tokens *jwt.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Unauthorized(c, "missing authorization header")
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			response.Unauthorized(c, "invalid authorization header format")
			return
		}

		claims, err := tokens.ValidateAccessToken(parts[1])
		if err != nil {
			response.Unauthorized(c, "invalid token")
			return
		}

		c.Set(ContextSubject, claims.Subject)
		c.Set(ContextRole, claims.Role)
		c.Next()
	}
}

// RequireRole lets the request through only when AuthMiddleware stored role.
func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if got := c.GetString(ContextRole); got != role {
			response.Forbidden(c, "access denied: "+role+" role required")
			return
		}
		c.Next()
	}
}
