package rmiddleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/DhavalSuthar-24/fantasy/internal/middleware"
	"github.com/DhavalSuthar-24/fantasy/pkg/token"
)

// RoleMiddleware admits callers whose token role matches one of requiredRoles.
// It must run after middleware.AuthMiddleware.
func RoleMiddleware(requiredRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, err := middleware.GetManagerIDFromContext(c); err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized: " + err.Error()})
			return
		}

		role := middleware.GetRoleFromContext(c)
		for _, requiredRole := range requiredRoles {
			if strings.EqualFold(role, requiredRole) {
				c.Next()
				return
			}
		}

		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
			"error":     "Forbidden",
			"message":   "You don't have permission to access this resource",
			"required":  requiredRoles,
			"user_role": role,
		})
	}
}

// AdminMiddleware is a convenience middleware for admin-only access
func AdminMiddleware() gin.HandlerFunc {
	return RoleMiddleware(token.RoleAdmin)
}

// ManagerOrAdminMiddleware admits any signed-in participant.
func ManagerOrAdminMiddleware() gin.HandlerFunc {
	return RoleMiddleware(token.RoleManager, token.RoleAdmin)
}
