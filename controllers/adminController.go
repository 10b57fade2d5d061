package controllers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"civicpulse-be/models"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// GetSystemStats returns the platform-wide counters for the admin dashboard
func GetSystemStats(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	totalIssues, err := issueCollection.CountDocuments(ctx, bson.M{})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute stats"})
		return
	}

	totalUsers, err := profileCollection.CountDocuments(ctx, bson.M{})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute stats"})
		return
	}

	openIssues, err := issueCollection.CountDocuments(ctx, bson.M{
		"status": bson.M{"$in": bson.A{models.Submitted, models.Assigned, models.InProgress, models.Reopened}},
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute stats"})
		return
	}

	resolvedIssues, err := issueCollection.CountDocuments(ctx, bson.M{
		"status": bson.M{"$in": bson.A{models.Resolved, models.Closed}},
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute stats"})
		return
	}

	weekAgo := time.Now().AddDate(0, 0, -7)
	last7Days, err := issueCollection.CountDocuments(ctx, bson.M{
		"createdAt": bson.M{"$gte": weekAgo},
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute stats"})
		return
	}

	categoryPipeline := bson.A{
		bson.M{"$group": bson.M{"_id": "$category", "count": bson.M{"$sum": 1}}},
		bson.M{"$sort": bson.M{"count": -1}},
	}
	cursor, err := issueCollection.Aggregate(ctx, categoryPipeline)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute stats"})
		return
	}
	var byCategory []bson.M
	if err := cursor.All(ctx, &byCategory); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute stats"})
		return
	}

	topOptions := options.Find().
		SetSort(bson.D{{Key: "upvotes", Value: -1}}).
		SetLimit(5).
		SetProjection(bson.M{"title": 1, "category": 1, "status": 1, "upvotes": 1})
	topCursor, err := issueCollection.Find(ctx, bson.M{}, topOptions)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute stats"})
		return
	}
	var topUpvoted []bson.M
	if err := topCursor.All(ctx, &topUpvoted); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute stats"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"totalIssues":      totalIssues,
		"totalUsers":       totalUsers,
		"openIssues":       openIssues,
		"resolvedIssues":   resolvedIssues,
		"issuesLast7Days":  last7Days,
		"issuesByCategory": byCategory,
		"topUpvoted":       topUpvoted,
	})
}

// GetDepartmentStats reports per-department load and an efficiency score,
// the share of assigned issues that reached resolved or closed.
func GetDepartmentStats(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cursor, err := departmentCollection.Find(ctx, bson.M{})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve departments"})
		return
	}
	defer cursor.Close(ctx)

	var departments []models.Department
	if err := cursor.All(ctx, &departments); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode departments"})
		return
	}

	stats := make([]gin.H, 0, len(departments))
	for _, department := range departments {
		issues, err := issueCollection.CountDocuments(ctx, bson.M{"departmentId": department.ID})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute stats"})
			return
		}
		resolved, err := issueCollection.CountDocuments(ctx, bson.M{
			"departmentId": department.ID,
			"status":       bson.M{"$in": bson.A{models.Resolved, models.Closed}},
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute stats"})
			return
		}
		stats = append(stats, gin.H{
			"departmentId": department.ID,
			"name":         department.Name,
			"issues":       issues,
			"resolved":     resolved,
			"efficiency":   models.Efficiency(issues, resolved),
		})
	}

	c.JSON(http.StatusOK, gin.H{"departments": stats})
}

// SetUserRole changes a user's role. This is the only mutation path for
// roles; profile edits never touch them.
func SetUserRole(c *gin.Context) {
	targetID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	var input struct {
		Role models.UserRole `json:"role" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !input.Role.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown role"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	result, err := profileCollection.UpdateOne(ctx,
		bson.M{"userId": targetID},
		bson.M{"$set": bson.M{"role": input.Role, "updatedAt": time.Now()}})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update role"})
		return
	}
	if result.MatchedCount == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Profile not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Role updated"})
}

// ListUsers pages through all profiles for the admin user table
func ListUsers(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	filter := bson.M{}
	if role := c.Query("role"); role != "" && role != "all" {
		filter["role"] = role
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	total, err := profileCollection.CountDocuments(ctx, filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count users"})
		return
	}

	findOptions := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit))

	cursor, err := profileCollection.Find(ctx, filter, findOptions)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve users"})
		return
	}
	defer cursor.Close(ctx)

	var profiles []models.Profile
	if err := cursor.All(ctx, &profiles); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode users"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"users": profiles,
		"page":  page,
		"limit": limit,
		"total": total,
	})
}
