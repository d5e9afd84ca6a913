// Package middleware holds the gin middleware shared across routes.
package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/glimpse-social/backend/internal/auth"
	"github.com/glimpse-social/backend/internal/util"
)

// RequireAuth validates the bearer token and stores the authenticated
// user on the request context under "user_id" and "user".
func RequireAuth(authService *auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			util.RespondUnauthorized(c, "no token provided")
			c.Abort()
			return
		}

		tokenString := strings.TrimPrefix(header, "Bearer ")
		if tokenString == header {
			util.RespondUnauthorized(c, "malformed authorization header")
			c.Abort()
			return
		}

		user, err := authService.ValidateToken(tokenString)
		if err != nil {
			util.RespondUnauthorized(c, "invalid or expired token")
			c.Abort()
			return
		}

		c.Set("user_id", user.ID)
		c.Set("user", user)
		c.Next()
	}
}
