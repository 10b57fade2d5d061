package routes

import (
	"civicpulse-be/controllers"
	"civicpulse-be/middlewares"

	"github.com/gin-gonic/gin"
)

// UserRoutes sets up profile, follow and notification routes
func UserRoutes(r *gin.Engine) {
	user := r.Group("/api/user")
	user.Use(middlewares.AuthMiddleware())
	{
		user.GET("/leaderboard", controllers.GetLeaderboard)
		user.GET("/:id", controllers.GetPublicProfile)
		user.POST("/:id/follow", controllers.FollowUser)
		user.DELETE("/:id/follow", controllers.UnfollowUser)
	}

	notification := r.Group("/api/notification")
	notification.Use(middlewares.AuthMiddleware())
	{
		notification.GET("/", controllers.GetNotifications)
		notification.PUT("/:id/read", controllers.MarkNotificationRead)
	}
}
