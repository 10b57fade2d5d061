package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"civicpulse-be/config"
	"civicpulse-be/models"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var followCollection = config.GetCollection("user_follows")

const leaderboardCacheKey = "leaderboard:top"

// GetPublicProfile returns another user's profile. Sensitive fields are
// excluded in the query projection itself unless the viewer is the owner or
// holds an elevated role, so they never leave the data-access boundary.
func GetPublicProfile(c *gin.Context) {
	viewerID, viewerRole, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	targetID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	findOptions := options.FindOne()
	if targetID != viewerID && !viewerRole.Elevated() {
		findOptions.SetProjection(bson.M{"phone": 0})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var profile models.Profile
	err = profileCollection.FindOne(ctx, bson.M{"userId": targetID}, findOptions).Decode(&profile)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "Profile not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve profile"})
		}
		return
	}

	c.JSON(http.StatusOK, profile.VisibleTo(viewerID, viewerRole))
}

// FollowUser creates a follow edge and bumps both denormalized counters
func FollowUser(c *gin.Context) {
	followerID, _, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	followingID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	if followingID == followerID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "You cannot follow yourself"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	count, err := profileCollection.CountDocuments(ctx, bson.M{"userId": followingID})
	if err != nil || count == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Profile not found"})
		return
	}

	follow := models.UserFollow{
		ID:          primitive.NewObjectID(),
		FollowerID:  followerID,
		FollowingID: followingID,
		CreatedAt:   time.Now(),
	}

	if _, err := followCollection.InsertOne(ctx, follow); err != nil {
		// The unique index turns a double-follow into a duplicate key error.
		c.JSON(http.StatusConflict, gin.H{"error": "Already following this user"})
		return
	}

	if _, err := profileCollection.UpdateOne(ctx, bson.M{"userId": followingID},
		bson.M{"$inc": bson.M{"followersCount": 1}}); err != nil {
		logrus.Warnf("Failed to bump followersCount for %s: %v", followingID.Hex(), err)
	}
	if _, err := profileCollection.UpdateOne(ctx, bson.M{"userId": followerID},
		bson.M{"$inc": bson.M{"followingCount": 1}}); err != nil {
		logrus.Warnf("Failed to bump followingCount for %s: %v", followerID.Hex(), err)
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Now following user"})
}

// UnfollowUser removes a follow edge and decrements both counters
func UnfollowUser(c *gin.Context) {
	followerID, _, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	followingID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	result, err := followCollection.DeleteOne(ctx, bson.M{
		"followerId":  followerID,
		"followingId": followingID,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to unfollow"})
		return
	}
	if result.DeletedCount == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not following this user"})
		return
	}

	if _, err := profileCollection.UpdateOne(ctx, bson.M{"userId": followingID},
		bson.M{"$inc": bson.M{"followersCount": -1}}); err != nil {
		logrus.Warnf("Failed to drop followersCount for %s: %v", followingID.Hex(), err)
	}
	if _, err := profileCollection.UpdateOne(ctx, bson.M{"userId": followerID},
		bson.M{"$inc": bson.M{"followingCount": -1}}); err != nil {
		logrus.Warnf("Failed to drop followingCount for %s: %v", followerID.Hex(), err)
	}

	c.JSON(http.StatusOK, gin.H{"message": "Unfollowed user"})
}

// GetLeaderboard returns the top contributors ranked by reports filed. The
// list is public data, so phone never enters the projection, and the result
// is cached in redis for a minute.
func GetLeaderboard(c *gin.Context) {
	if cached, err := config.RedisClient.Get(config.Ctx, leaderboardCacheKey).Result(); err == nil {
		var entries []models.Profile
		if err := json.Unmarshal([]byte(cached), &entries); err == nil {
			c.JSON(http.StatusOK, gin.H{"leaderboard": entries, "cached": true})
			return
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	findOptions := options.Find().
		SetSort(bson.D{{Key: "issuesReported", Value: -1}, {Key: "_id", Value: 1}}).
		SetLimit(100).
		SetProjection(bson.M{"phone": 0})

	cursor, err := profileCollection.Find(ctx, bson.M{}, findOptions)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve leaderboard"})
		return
	}
	defer cursor.Close(ctx)

	var entries []models.Profile
	if err := cursor.All(ctx, &entries); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode leaderboard"})
		return
	}

	if payload, err := json.Marshal(entries); err == nil {
		if err := config.RedisClient.Set(config.Ctx, leaderboardCacheKey, payload, time.Minute).Err(); err != nil {
			logrus.Warnf("Failed to cache leaderboard: %v", err)
		}
	}

	c.JSON(http.StatusOK, gin.H{"leaderboard": entries, "cached": false})
}
