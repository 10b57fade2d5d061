package controllers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"civicpulse-be/models"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// GetStaffQueue lists issues for the staff view. The queue defaults to
// issues assigned to the caller; status and category filters combine with
// AND semantics and "all" lifts the constraint on that dimension.
func GetStaffQueue(c *gin.Context) {
	userID, role, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	filter := bson.M{}

	assignee := c.DefaultQuery("assignee", "me")
	switch assignee {
	case "me":
		filter["assignedTo"] = userID
	case "all":
		// Admins see the whole queue; staff stay scoped to themselves.
		if role != models.RoleAdmin {
			filter["assignedTo"] = userID
		}
	default:
		assigneeID, err := primitive.ObjectIDFromHex(assignee)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid assignee"})
			return
		}
		filter["assignedTo"] = assigneeID
	}

	if status := c.DefaultQuery("status", "all"); status != "all" {
		if !models.IssueStatus(status).Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status"})
			return
		}
		filter["status"] = status
	}

	if category := c.DefaultQuery("category", "all"); category != "all" {
		if !models.IssueCategory(category).Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid category"})
			return
		}
		filter["category"] = category
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	findOptions := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}})

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

	c.JSON(http.StatusOK, gin.H{"issues": issues, "total": len(issues)})
}

// TransitionIssueStatus advances an issue through its lifecycle. Only staff
// and admin reach this handler; the state machine itself decides whether the
// step is legal and which side effects apply.
func TransitionIssueStatus(c *gin.Context) {
	issueID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid issue ID"})
		return
	}

	var input struct {
		Status              string   `json:"status" binding:"required"`
		AssignedTo          *string  `json:"assignedTo,omitempty"`
		DepartmentID        *string  `json:"departmentId,omitempty"`
		ResolutionNotes     string   `json:"resolutionNotes,omitempty"`
		ResolutionMediaURLs []string `json:"resolutionMediaUrls,omitempty"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	next := models.IssueStatus(input.Status)
	if !next.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status"})
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

	transition := models.TransitionInput{
		ResolutionNotes:     input.ResolutionNotes,
		ResolutionMediaURLs: input.ResolutionMediaURLs,
	}

	if input.AssignedTo != nil {
		assigneeID, err := primitive.ObjectIDFromHex(*input.AssignedTo)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid assignee"})
			return
		}
		var assignee models.Profile
		if err := profileCollection.FindOne(ctx, bson.M{"userId": assigneeID}).Decode(&assignee); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Assignee not found"})
			return
		}
		if !assignee.Role.Elevated() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Assignee must be a staff member"})
			return
		}
		transition.AssignedTo = &assigneeID
	}

	if input.DepartmentID != nil {
		departmentID, err := primitive.ObjectIDFromHex(*input.DepartmentID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid department"})
			return
		}
		count, err := departmentCollection.CountDocuments(ctx, bson.M{"_id": departmentID})
		if err != nil || count == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Department not found"})
			return
		}
		transition.DepartmentID = &departmentID
	}

	if err := issue.ApplyTransition(next, transition, time.Now()); err != nil {
		status := http.StatusUnprocessableEntity
		if errors.Is(err, models.ErrInvalidTransition) {
			status = http.StatusConflict
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	update := bson.M{"$set": bson.M{
		"status":    issue.Status,
		"updatedAt": issue.UpdatedAt,
	}}
	set := update["$set"].(bson.M)

	switch next {
	case models.Assigned:
		set["assignedTo"] = issue.AssignedTo
		set["departmentId"] = issue.DepartmentID
	case models.Resolved:
		set["resolutionNotes"] = issue.ResolutionNotes
		set["resolutionMediaUrls"] = issue.ResolutionMediaURLs
		set["resolvedAt"] = issue.ResolvedAt
	case models.Reopened:
		update["$unset"] = bson.M{"resolvedAt": ""}
	}

	if _, err := issueCollection.UpdateOne(ctx, bson.M{"_id": issueID}, update); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update issue"})
		return
	}

	pushNotification(ctx, issue.ReporterID, &issue.ID,
		"Issue status updated",
		"Your issue \""+issue.Title+"\" is now "+string(issue.Status),
		models.PushNotification)

	c.JSON(http.StatusOK, gin.H{"message": "Status updated successfully", "status": issue.Status})
}

// SetIssuePriority sets or changes priority, which is independent of status
func SetIssuePriority(c *gin.Context) {
	issueID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid issue ID"})
		return
	}

	var input struct {
		Priority string `json:"priority" binding:"required"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	priority := models.IssuePriority(input.Priority)
	if !priority.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid priority"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	result, err := issueCollection.UpdateOne(ctx,
		bson.M{"_id": issueID},
		bson.M{"$set": bson.M{"priority": priority, "updatedAt": time.Now()}})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update priority"})
		return
	}
	if result.MatchedCount == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Issue not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Priority updated successfully"})
}

// OverridePriorityScore replaces a machine-assigned priority score. The
// caller must opt in explicitly and the prior value is preserved.
func OverridePriorityScore(c *gin.Context) {
	issueID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid issue ID"})
		return
	}

	var input struct {
		PriorityScore *float64 `json:"priorityScore" binding:"required"`
		Override      bool     `json:"override"`
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

	if issue.PriorityScore != nil && !input.Override {
		c.JSON(http.StatusConflict, gin.H{"error": "Priority score is system-assigned; pass override=true to replace it"})
		return
	}

	set := bson.M{"priorityScore": *input.PriorityScore, "updatedAt": time.Now()}
	if issue.PriorityScore != nil {
		set["previousPriorityScore"] = *issue.PriorityScore
	}

	if _, err := issueCollection.UpdateOne(ctx, bson.M{"_id": issueID}, bson.M{"$set": set}); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update priority score"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Priority score updated successfully"})
}

// MarkIssueDuplicate links an issue to an existing, non-duplicate parent.
// The duplicate drops out of public feeds but stays in department stats.
func MarkIssueDuplicate(c *gin.Context) {
	issueID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid issue ID"})
		return
	}

	var input struct {
		ParentIssueID string `json:"parentIssueId" binding:"required"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	parentID, err := primitive.ObjectIDFromHex(input.ParentIssueID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid parent issue ID"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var issue models.Issue
	if err := issueCollection.FindOne(ctx, bson.M{"_id": issueID}).Decode(&issue); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Issue not found"})
		return
	}

	var parent models.Issue
	if err := issueCollection.FindOne(ctx, bson.M{"_id": parentID}).Decode(&parent); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Parent issue not found"})
		return
	}

	if err := issue.MarkDuplicate(&parent); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	_, err = issueCollection.UpdateOne(ctx,
		bson.M{"_id": issueID},
		bson.M{"$set": bson.M{
			"isDuplicate":   true,
			"parentIssueId": issue.ParentIssueID,
			"updatedAt":     time.Now(),
		}})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to mark issue as duplicate"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Issue marked as duplicate", "parentIssueId": parent.ID})
}
