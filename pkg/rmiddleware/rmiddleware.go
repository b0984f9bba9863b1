package rmiddleware

import (
	"net/http"
	"strings"

	"github.com/DhavalSuthar-24/huddle/internal/middleware"
	"gorm.io/gorm"

	"github.com/gin-gonic/gin"
)

// RoleMiddleware admits the request only when the authenticated user holds one of requiredRoles.
// It must run after middleware.AuthMiddleware.
func RoleMiddleware(db *gorm.DB, requiredRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := middleware.GetUserIDFromContext(c)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized: " + err.Error()})
			return
		}

		var roles []string
		if err := db.WithContext(c.Request.Context()).Table("users").Where("id = ?", userID).Pluck("role", &roles).Error; err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to get user roles"})
			return
		}
		if len(roles) == 0 {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "User roles not found"})
			return
		}

		hasRequiredRole := false
		for _, requiredRole := range requiredRoles {
			if strings.EqualFold(roles[0], requiredRole) {
				hasRequiredRole = true
				break
			}
		}

		if !hasRequiredRole {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error":     "Forbidden",
				"message":   "You don't have permission to access this resource",
				"required":  requiredRoles,
				"user_role": roles[0],
			})
			return
		}

		c.Set("user_role", roles[0])
		c.Next()
	}
}

// AdminMiddleware is a convenience middleware for admin-only access
func AdminMiddleware(db *gorm.DB) gin.HandlerFunc {
	return RoleMiddleware(db, "admin")
}
