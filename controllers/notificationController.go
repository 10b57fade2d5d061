package controllers

import (
	"context"
	"net/http"
	"time"

	"civicpulse-be/config"
	"civicpulse-be/models"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var notificationCollection = config.GetCollection("notifications")

// pushNotification records a notification for a user. Delivery failures are
// logged and swallowed; notifying is never allowed to fail the caller.
func pushNotification(ctx context.Context, userID primitive.ObjectID, issueID *primitive.ObjectID, title, message string, ntype models.NotificationType) {
	notification := models.Notification{
		ID:        primitive.NewObjectID(),
		UserID:    userID,
		IssueID:   issueID,
		Title:     title,
		Message:   message,
		Type:      ntype,
		CreatedAt: time.Now(),
	}

	if _, err := notificationCollection.InsertOne(ctx, notification); err != nil {
		logrus.Warnf("Failed to record notification for %s: %v", userID.Hex(), err)
	}
}

// GetNotifications lists the caller's notifications, newest first
func GetNotifications(c *gin.Context) {
	userID, _, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	findOptions := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(50)

	cursor, err := notificationCollection.Find(ctx, bson.M{"userId": userID}, findOptions)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve notifications"})
		return
	}
	defer cursor.Close(ctx)

	var notifications []models.Notification
	if err := cursor.All(ctx, &notifications); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode notifications"})
		return
	}

	c.JSON(http.StatusOK, notifications)
}

// MarkNotificationRead flags one of the caller's notifications as read
func MarkNotificationRead(c *gin.Context) {
	userID, _, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	notificationID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid notification ID"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	result, err := notificationCollection.UpdateOne(ctx,
		bson.M{"_id": notificationID, "userId": userID},
		bson.M{"$set": bson.M{"isRead": true}})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update notification"})
		return
	}
	if result.MatchedCount == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Notification not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Notification marked as read"})
}
