package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/DhavalSuthar-24/fantasy/pkg/token"
)

const (
	AuthManagerIDKey = "auth_manager_id"
	AuthRoleKey      = "auth_role"
)

// AuthMiddleware requires a valid bearer token and stores the manager id and role.
func AuthMiddleware(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header is required"})
			return
		}

		bearerToken := strings.Split(authHeader, " ")
		if len(bearerToken) != 2 || strings.ToLower(bearerToken[0]) != "bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid Authorization header format. Expected: Bearer <token>"})
			return
		}

		claims, err := token.ValidateJWT(bearerToken[1], jwtSecret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token: " + err.Error()})
			return
		}

		c.Set(AuthManagerIDKey, claims.ManagerID)
		c.Set(AuthRoleKey, claims.Role)
		c.Next()
	}
}

// GetManagerIDFromContext extracts the manager ID from the context
func GetManagerIDFromContext(c *gin.Context) (uint, error) {
	managerID, exists := c.Get(AuthManagerIDKey)
	if !exists {
		return 0, errors.New("manager ID not found in context")
	}

	id, ok := managerID.(uint)
	if !ok {
		return 0, fmt.Errorf("manager ID has unexpected type: %T", managerID)
	}

	return id, nil
}

// GetRoleFromContext returns the role set by AuthMiddleware, or "".
func GetRoleFromContext(c *gin.Context) string {
	return c.GetString(AuthRoleKey)
}
