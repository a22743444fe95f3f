package middleware

import (
	"growth_hub/internal/domain" // Importing domain models
	"net/http"                   // HTTP status codes
	"slices"                     // Role membership
	"strings"                    // Error message

	"github.com/gin-gonic/gin" // Gin web framework
	"gorm.io/gorm"             // GORM ORM library
)

// RequireRoles lets through users whose stored role is one of roles.
// Admins always pass.
func RequireRoles(db *gorm.DB, roles ...string) gin.HandlerFunc {
	return requireRoles(db, "Requires role: "+strings.Join(roles, " or "), roles)
}

// AdminOnlyMiddleware checks the user's role from the database on each request
func AdminOnlyMiddleware(db *gorm.DB) gin.HandlerFunc {
	return requireRoles(db, "Admin access required", nil)
}

func requireRoles(db *gorm.DB, denied string, roles []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := c.Get("userID") // Get userID from context
		if !exists {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		var user domain.User // Fetch user from database
		if err := db.Select("id", "role").First(&user, userID).Error; err != nil {
			// If user not found or any error, abort with forbidden status
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": denied})
			return
		}
		// The token role may be stale, the database is authoritative
		if user.Role != domain.RoleAdmin && !slices.Contains(roles, user.Role) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": denied})
			return
		}
		c.Set("role", user.Role) // Refresh the role for handlers
		c.Next()
	}
}
