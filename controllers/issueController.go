package controllers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"civicpulse-be/config"
	"civicpulse-be/models"
	"civicpulse-be/services"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var issueCollection = config.GetCollection("issues")
var interactionCollection = config.GetCollection("issue_interactions")

var geocoder = services.NewGeocoder("")

// currentUser extracts the authenticated identity and role set by the auth
// middleware.
func currentUser(c *gin.Context) (primitive.ObjectID, models.UserRole, bool) {
	userIDVal, exists := c.Get("user_id")
	if !exists {
		return primitive.NilObjectID, "", false
	}
	userID, err := primitive.ObjectIDFromHex(userIDVal.(string))
	if err != nil {
		return primitive.NilObjectID, "", false
	}
	roleVal, _ := c.Get("role")
	role, _ := roleVal.(string)
	return userID, models.UserRole(role), true
}

// issueView shapes an issue for the given viewer. Assignee and resolution
// notes are staff-only fields until the issue reaches resolution.
func issueView(issue models.Issue, viewerRole models.UserRole) gin.H {
	view := gin.H{
		"id":              issue.ID,
		"title":           issue.Title,
		"description":     issue.Description,
		"category":        issue.Category,
		"status":          issue.Status,
		"priority":        issue.Priority,
		"locationLat":     issue.LocationLat,
		"locationLng":     issue.LocationLng,
		"locationAddress": issue.LocationAddress,
		"mediaUrls":       issue.MediaURLs,
		"reporterId":      issue.ReporterID,
		"upvotes":         issue.Upvotes,
		"isDuplicate":     issue.IsDuplicate,
		"createdAt":       issue.CreatedAt,
		"updatedAt":       issue.UpdatedAt,
	}

	resolvedOrLater := issue.Status == models.Resolved || issue.Status == models.Closed
	if viewerRole.Elevated() || resolvedOrLater {
		view["assignedTo"] = issue.AssignedTo
		view["departmentId"] = issue.DepartmentID
		view["resolutionNotes"] = issue.ResolutionNotes
		view["resolutionMediaUrls"] = issue.ResolutionMediaURLs
		view["resolvedAt"] = issue.ResolvedAt
	}
	if viewerRole.Elevated() {
		view["priorityScore"] = issue.PriorityScore
		view["previousPriorityScore"] = issue.PreviousPriorityScore
		view["aiCategoryConfidence"] = issue.AICategoryConfidence
		view["parentIssueId"] = issue.ParentIssueID
	}

	return view
}

// CreateIssue handles report submission by a citizen. Every report carries a
// location; a missing address is backfilled by reverse geocoding with a
// coordinate-pair fallback.
func CreateIssue(c *gin.Context) {
	reporterID, _, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var input struct {
		Title           string   `json:"title" binding:"required,max=200"`
		Description     string   `json:"description" binding:"required,max=2000"`
		Category        string   `json:"category" binding:"required"`
		LocationLat     *float64 `json:"locationLat" binding:"required"`
		LocationLng     *float64 `json:"locationLng" binding:"required"`
		LocationAddress string   `json:"locationAddress,omitempty"`
		MediaURLs       []string `json:"mediaUrls,omitempty"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	category := models.IssueCategory(input.Category)
	if !category.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid category"})
		return
	}

	issue := models.NewIssue(input.Title, input.Description, category, reporterID, *input.LocationLat, *input.LocationLng)
	issue.MediaURLs = input.MediaURLs
	issue.LocationAddress = input.LocationAddress
	if issue.LocationAddress == "" {
		issue.LocationAddress = geocoder.ReverseGeocode(c.Request.Context(), issue.LocationLat, issue.LocationLng)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := issueCollection.InsertOne(ctx, issue); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create issue"})
		return
	}

	if _, err := profileCollection.UpdateOne(ctx,
		bson.M{"userId": reporterID},
		bson.M{"$inc": bson.M{"issuesReported": 1}}); err != nil {
		logrus.Warnf("Failed to bump issuesReported for %s: %v", reporterID.Hex(), err)
	}

	c.JSON(http.StatusCreated, issue)
}

// GetFeed returns the public citizen feed: newest first with identifier as
// the tiebreaker, duplicates excluded.
func GetFeed(c *gin.Context) {
	_, viewerRole, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 10
	}

	filter := bson.M{"isDuplicate": bson.M{"$ne": true}}
	if category := c.Query("category"); category != "" && category != "all" {
		filter["category"] = category
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	totalCount, err := issueCollection.CountDocuments(ctx, filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count issues"})
		return
	}

	findOptions := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}).
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit))

	cursor, err := issueCollection.Find(ctx, filter, findOptions)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve issues"})
		return
	}
	defer cursor.Close(ctx)

	var issues []models.Issue
	if err := cursor.All(ctx, &issues); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode issues"})
		return
	}

	feed := make([]gin.H, 0, len(issues))
	for _, issue := range issues {
		view := issueView(issue, viewerRole)
		attachInteractionSummary(ctx, c, view, issue)
		feed = append(feed, view)
	}

	totalPages := int((totalCount + int64(limit) - 1) / int64(limit))

	c.JSON(http.StatusOK, gin.H{
		"issues":      feed,
		"totalIssues": totalCount,
		"totalPages":  totalPages,
		"currentPage": page,
	})
}

// attachInteractionSummary enriches an issue view with comment count,
// whether the viewer liked it, and reporter info.
func attachInteractionSummary(ctx context.Context, c *gin.Context, view gin.H, issue models.Issue) {
	commentCount, err := interactionCollection.CountDocuments(ctx, bson.M{
		"issueId":         issue.ID,
		"interactionType": models.Comment,
	})
	if err != nil {
		commentCount = 0
	}
	view["comments"] = commentCount

	if viewerID, _, ok := currentUser(c); ok {
		likeCount, err := interactionCollection.CountDocuments(ctx, bson.M{
			"issueId":         issue.ID,
			"userId":          viewerID,
			"interactionType": models.Like,
		})
		view["userHasLiked"] = err == nil && likeCount > 0
	}

	var reporter models.Profile
	reporterMap := gin.H{"id": issue.ReporterID}
	if err := profileCollection.FindOne(ctx, bson.M{"userId": issue.ReporterID}).Decode(&reporter); err == nil {
		reporterMap["username"] = reporter.Username
		reporterMap["fullName"] = reporter.FullName
		reporterMap["avatarUrl"] = reporter.AvatarURL
	}
	view["reporter"] = reporterMap
}

// GetIssue retrieves a single issue shaped for the viewer's role
func GetIssue(c *gin.Context) {
	_, viewerRole, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	issueID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid issue ID"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var issue models.Issue
	err = issueCollection.FindOne(ctx, bson.M{"_id": issueID}).Decode(&issue)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "Issue not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve issue"})
		}
		return
	}

	view := issueView(issue, viewerRole)
	attachInteractionSummary(ctx, c, view, issue)

	c.JSON(http.StatusOK, view)
}

// GetMyIssues retrieves all issues reported by the authenticated user
func GetMyIssues(c *gin.Context) {
	userID, viewerRole, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	findOptions := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}})

	cursor, err := issueCollection.Find(ctx, bson.M{"reporterId": userID}, findOptions)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve issues"})
		return
	}
	defer cursor.Close(ctx)

	var issues []models.Issue
	if err := cursor.All(ctx, &issues); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode issues"})
		return
	}

	views := make([]gin.H, 0, len(issues))
	for _, issue := range issues {
		view := issueView(issue, viewerRole)
		attachInteractionSummary(ctx, c, view, issue)
		views = append(views, view)
	}

	c.JSON(http.StatusOK, views)
}

// GetNearbyIssues returns recent issues inside a simple bounding box around
// the given coordinates.
func GetNearbyIssues(c *gin.Context) {
	lat, errLat := strconv.ParseFloat(c.Query("lat"), 64)
	lng, errLng := strconv.ParseFloat(c.Query("lng"), 64)
	if errLat != nil || errLng != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "lat and lng query parameters are required"})
		return
	}

	radius, err := strconv.ParseFloat(c.DefaultQuery("radius", "0.05"), 64)
	if err != nil || radius <= 0 {
		radius = 0.05
	}

	filter := bson.M{
		"isDuplicate": bson.M{"$ne": true},
		"locationLat": bson.M{"$gte": lat - radius, "$lte": lat + radius},
		"locationLng": bson.M{"$gte": lng - radius, "$lte": lng + radius},
	}

	projection := bson.M{
		"_id":             1,
		"title":           1,
		"category":        1,
		"status":          1,
		"locationLat":     1,
		"locationLng":     1,
		"locationAddress": 1,
		"upvotes":         1,
		"createdAt":       1,
	}

	findOptions := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}).
		SetLimit(50).
		SetProjection(projection)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cursor, err := issueCollection.Find(ctx, filter, findOptions)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve nearby issues"})
		return
	}
	defer cursor.Close(ctx)

	var issues []models.Issue
	if err := cursor.All(ctx, &issues); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode nearby issues"})
		return
	}

	c.JSON(http.StatusOK, issues)
}

// UpdateIssue lets the reporter edit descriptive fields while the issue is
// still in the submitted state.
func UpdateIssue(c *gin.Context) {
	userID, _, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	issueID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid issue ID"})
		return
	}

	var input struct {
		Title       *string  `json:"title,omitempty"`
		Description *string  `json:"description,omitempty"`
		Category    *string  `json:"category,omitempty"`
		MediaURLs   []string `json:"mediaUrls,omitempty"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var issue models.Issue
	err = issueCollection.FindOne(ctx, bson.M{"_id": issueID}).Decode(&issue)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "Issue not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve issue"})
		}
		return
	}

	if issue.ReporterID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "You are not authorized to update this issue"})
		return
	}
	if issue.Status != models.Submitted {
		c.JSON(http.StatusConflict, gin.H{"error": "Only submitted issues can be edited"})
		return
	}

	update := bson.M{"updatedAt": time.Now()}
	if input.Title != nil {
		update["title"] = *input.Title
	}
	if input.Description != nil {
		update["description"] = *input.Description
	}
	if input.Category != nil {
		if !models.IssueCategory(*input.Category).Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid category"})
			return
		}
		update["category"] = *input.Category
	}
	if input.MediaURLs != nil {
		update["mediaUrls"] = input.MediaURLs
	}

	if _, err := issueCollection.UpdateOne(ctx, bson.M{"_id": issueID}, bson.M{"$set": update}); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update issue"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Issue updated successfully"})
}
