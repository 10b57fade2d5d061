package routes

import (
	"civicpulse-be/controllers"
	"civicpulse-be/middlewares"
	"civicpulse-be/models"

	"github.com/gin-gonic/gin"
)

// IssueRoutes sets up the citizen-facing issue routes
func IssueRoutes(r *gin.Engine) {
	issue := r.Group("/api/issue")
	issue.Use(middlewares.AuthMiddleware())
	{
		issue.POST("/create", middlewares.ReportRateLimiter(10), controllers.CreateIssue)
		issue.POST("/dictate", controllers.AssembleDictation)
		issue.GET("/feed", controllers.GetFeed)
		issue.GET("/mine", controllers.GetMyIssues)
		issue.GET("/nearby", controllers.GetNearbyIssues)
		issue.GET("/:id", controllers.GetIssue)
		issue.PUT("/:id", controllers.UpdateIssue)

		issue.POST("/:id/like", controllers.ToggleLike)
		issue.POST("/:id/comment", controllers.AddComment)
		issue.GET("/:id/comments", controllers.GetComments)
		issue.POST("/:id/share", controllers.ShareIssue)
		issue.POST("/:id/reopen-request", controllers.RequestReopen)
	}

	staff := r.Group("/api/staff")
	staff.Use(middlewares.AuthMiddleware(), middlewares.RequireRoles(models.RoleStaff, models.RoleAdmin))
	{
		staff.GET("/queue", controllers.GetStaffQueue)
		staff.POST("/issue/:id/transition", controllers.TransitionIssueStatus)
		staff.PUT("/issue/:id/priority", controllers.SetIssuePriority)
		staff.PUT("/issue/:id/priority-score", controllers.OverridePriorityScore)
		staff.POST("/issue/:id/duplicate", controllers.MarkIssueDuplicate)
	}
}
