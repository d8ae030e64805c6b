package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	UserContextKey = "userID"
	RoleContextKey = "role"
)

// AuthMiddleware trusts the identity headers set by the edge proxy.
// Authentication itself happens upstream; this service only needs who
// the caller is and whether they are an admin.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetHeader("X-User-ID")
		if userID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		c.Set(UserContextKey, userID)
		c.Set(RoleContextKey, c.GetHeader("X-User-Role"))
		c.Next()
	}
}

// RequireAdmin rejects non-admin callers.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get(RoleContextKey)
		if !exists {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Access denied"})
			return
		}
		if roleStr, ok := role.(string); !ok || roleStr != "admin" {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Admin access required"})
			return
		}
		c.Next()
	}
}

func GetUserID(c *gin.Context) (string, error) {
	if val, ok := c.Get(UserContextKey); ok {
		if id, ok := val.(string); ok && id != "" {
			return id, nil
		}
	}
	return "", errors.New("user ID not found in context")
}
