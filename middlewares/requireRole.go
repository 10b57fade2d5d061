package middlewares

import (
	"net/http"

	"civicpulse-be/models"

	"github.com/gin-gonic/gin"
)

// RequireRoles rejects requests whose authenticated role is outside the
// allow list. An empty list admits any authenticated role.
func RequireRoles(roles ...models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		roleVal, exists := c.Get("role")
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
			c.Abort()
			return
		}

		role := models.UserRole(roleVal.(string))
		if len(roles) == 0 {
			roles = models.AllRoles
		}
		for _, allowed := range roles {
			if role == allowed {
				c.Next()
				return
			}
		}

		c.JSON(http.StatusForbidden, gin.H{"error": "Insufficient permissions"})
		c.Abort()
	}
}
