package controllers

import (
	"context"
	"net/http"
	"time"

	"civicpulse-be/models"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ToggleLike flips the caller's like on an issue. The stored upvote counter
// is the authority; the response always reports it so optimistic client
// deltas reconcile on the next fetch.
func ToggleLike(c *gin.Context) {
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

	like := models.IssueInteraction{
		ID:        primitive.NewObjectID(),
		IssueID:   issueID,
		UserID:    userID,
		Type:      models.Like,
		CreatedAt: time.Now(),
	}

	// The unique partial index arbitrates: a duplicate key means the like
	// already exists, so this toggle is an unlike.
	liked := true
	if _, err := interactionCollection.InsertOne(ctx, like); err != nil {
		if !mongo.IsDuplicateKeyError(err) {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record like"})
			return
		}
		liked = false
		if _, err := interactionCollection.DeleteOne(ctx, bson.M{
			"issueId":         issueID,
			"userId":          userID,
			"interactionType": models.Like,
		}); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remove like"})
			return
		}
	}

	delta := int64(1)
	if !liked {
		delta = -1
	}

	// The counter bump happens only after the interaction write succeeded.
	var updated models.Issue
	err = issueCollection.FindOneAndUpdate(ctx,
		bson.M{"_id": issueID},
		bson.M{"$inc": bson.M{"upvotes": delta}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&updated)
	if err != nil {
		logrus.Warnf("Upvote counter for issue %s is out of sync with like records: %v", issueID.Hex(), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update upvote count"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"liked":   liked,
		"upvotes": updated.Upvotes,
	})
}

// AddComment attaches a free-text comment to an issue
func AddComment(c *gin.Context) {
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
		Content string `json:"content" binding:"required,max=1000"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var issue models.Issue
	if err := issueCollection.FindOne(ctx, bson.M{"_id": issueID}).Decode(&issue); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Issue not found"})
		return
	}

	comment := models.IssueInteraction{
		ID:        primitive.NewObjectID(),
		IssueID:   issueID,
		UserID:    userID,
		Type:      models.Comment,
		Content:   input.Content,
		CreatedAt: time.Now(),
	}

	if _, err := interactionCollection.InsertOne(ctx, comment); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add comment"})
		return
	}

	if issue.ReporterID != userID {
		pushNotification(ctx, issue.ReporterID, &issueID,
			"New comment",
			"Someone commented on your issue \""+issue.Title+"\"",
			models.PushNotification)
	}

	c.JSON(http.StatusCreated, comment)
}

// GetComments lists an issue's comments, oldest first
func GetComments(c *gin.Context) {
	issueID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid issue ID"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})

	cursor, err := interactionCollection.Find(ctx, bson.M{
		"issueId":         issueID,
		"interactionType": models.Comment,
	}, findOptions)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve comments"})
		return
	}
	defer cursor.Close(ctx)

	var comments []models.IssueInteraction
	if err := cursor.All(ctx, &comments); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode comments"})
		return
	}

	c.JSON(http.StatusOK, comments)
}

// ShareIssue records a share event and returns the shareable link
func ShareIssue(c *gin.Context) {
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

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	count, err := issueCollection.CountDocuments(ctx, bson.M{"_id": issueID})
	if err != nil || count == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Issue not found"})
		return
	}

	share := models.IssueInteraction{
		ID:        primitive.NewObjectID(),
		IssueID:   issueID,
		UserID:    userID,
		Type:      models.Share,
		CreatedAt: time.Now(),
	}

	if _, err := interactionCollection.InsertOne(ctx, share); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record share"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"shareUrl": "/issue/" + issueID.Hex()})
}

// RequestReopen files a citizen's request to reopen a resolved or closed
// issue. The request is an interaction subject to staff moderation; it never
// writes status directly.
func RequestReopen(c *gin.Context) {
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
		Reason string `json:"reason" binding:"required,max=1000"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var issue models.Issue
	if err := issueCollection.FindOne(ctx, bson.M{"_id": issueID}).Decode(&issue); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Issue not found"})
		return
	}

	if issue.Status != models.Resolved && issue.Status != models.Closed {
		c.JSON(http.StatusConflict, gin.H{"error": "Only resolved or closed issues can be reopened"})
		return
	}

	request := models.IssueInteraction{
		ID:        primitive.NewObjectID(),
		IssueID:   issueID,
		UserID:    userID,
		Type:      models.ReopenRequest,
		Content:   input.Reason,
		CreatedAt: time.Now(),
	}

	if _, err := interactionCollection.InsertOne(ctx, request); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to file reopen request"})
		return
	}

	if issue.AssignedTo != nil {
		pushNotification(ctx, *issue.AssignedTo, &issueID,
			"Reopen requested",
			"A citizen requested reopening \""+issue.Title+"\"",
			models.PushNotification)
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Reopen request filed", "requestId": request.ID})
}
