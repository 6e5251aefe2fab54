package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/hucha-app/hucha-api/utils"
)

const (
	contextUsername = "username"
	contextRole     = "role"
)

// AuthMiddleware validates the bearer token and stores its claims on the
// context.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Missing token"})
			c.Abort()
			return
		}

		claims, err := utils.ParseAccessToken(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			c.Abort()
			return
		}

		c.Set(contextUsername, claims.Username)
		c.Set(contextRole, claims.Role)
		c.Next()
	}
}

// RequireRole gates a route group to one role.
func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if GetRole(c) != role {
			c.JSON(http.StatusForbidden, gin.H{"error": "Insufficient permissions"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// GetUsername returns the authenticated username, or "".
func GetUsername(c *gin.Context) string {
	return c.GetString(contextUsername)
}

// GetRole returns the authenticated role, or "".
func GetRole(c *gin.Context) string {
	return c.GetString(contextRole)
}
