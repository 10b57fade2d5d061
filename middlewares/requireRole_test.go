package middlewares

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"civicpulse-be/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func performWithRole(role models.UserRole, hasRole bool, allowed ...models.UserRole) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/protected", func(c *gin.Context) {
		if hasRole {
			c.Set("user_id", "u1")
			c.Set("role", string(role))
		}
		c.Next()
	}, RequireRoles(allowed...), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "ok"})
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	r.ServeHTTP(w, req)
	return w
}

func TestRequireRolesAllowsListedRole(t *testing.T) {
	w := performWithRole(models.RoleStaff, true, models.RoleStaff, models.RoleAdmin)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequireRolesRejectsUnlistedRole(t *testing.T) {
	w := performWithRole(models.RoleCitizen, true, models.RoleStaff, models.RoleAdmin)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRequireRolesRejectsMissingRole(t *testing.T) {
	w := performWithRole("", false, models.RoleAdmin)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireRolesEmptyListOnlyNeedsAuth(t *testing.T) {
	w := performWithRole(models.RoleCitizen, true)
	assert.Equal(t, http.StatusOK, w.Code)
}
