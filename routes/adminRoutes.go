package routes

import (
	"civicpulse-be/controllers"
	"civicpulse-be/middlewares"
	"civicpulse-be/models"

	"github.com/gin-gonic/gin"
)

// AdminRoutes sets up the admin-only routes
func AdminRoutes(r *gin.Engine) {
	admin := r.Group("/api/admin")
	admin.Use(middlewares.AuthMiddleware(), middlewares.RequireRoles(models.RoleAdmin))
	{
		admin.GET("/stats", controllers.GetSystemStats)
		admin.GET("/stats/departments", controllers.GetDepartmentStats)
		admin.GET("/users", controllers.ListUsers)
		admin.PUT("/users/:id/role", controllers.SetUserRole)

		admin.POST("/department", controllers.CreateDepartment)
		admin.PUT("/department/:id", controllers.UpdateDepartment)
	}

	department := r.Group("/api/department")
	department.Use(middlewares.AuthMiddleware())
	{
		department.GET("/", controllers.ListDepartments)
	}
}
