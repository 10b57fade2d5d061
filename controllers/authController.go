package controllers

import (
	"context"
	"net/http"
	"os"
	"time"

	"civicpulse-be/config"
	"civicpulse-be/models"
	"civicpulse-be/services"
	authUtils "civicpulse-be/utils"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var userCollection = config.GetCollection("users")
var profileCollection = config.GetCollection("profiles")

var mailer = services.NewMailerFromEnv()

// RegisterUser handles account registration. The role is fixed at signup;
// the account stays unverified until the emailed token is redeemed.
func RegisterUser(c *gin.Context) {
	var input struct {
		Username string  `json:"username" binding:"required,max=30"`
		FullName string  `json:"fullName" binding:"omitempty,max=100"`
		Email    string  `json:"email" binding:"required,email"`
		Password string  `json:"password" binding:"required,min=6"`
		Phone    string  `json:"phone" binding:"omitempty,max=20"`
		Role     *string `json:"role,omitempty"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	role := models.RoleCitizen
	if input.Role != nil {
		role = models.UserRole(*input.Role)
		if !role.Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid role"})
			return
		}
	}

	email := models.NormalizeEmail(input.Email)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	count, err := userCollection.CountDocuments(ctx, bson.M{"email": email})
	if err != nil {
		logrus.Errorf("Error checking existing user: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong"})
		return
	}
	if count > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "User with this email already exists"})
		return
	}

	user := models.User{
		ID:        primitive.NewObjectID(),
		Email:     email,
		Password:  input.Password,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	if err := user.HashPassword(); err != nil {
		logrus.Errorf("Error hashing password: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong"})
		return
	}

	if _, err := userCollection.InsertOne(ctx, user); err != nil {
		logrus.Errorf("Error inserting user: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong"})
		return
	}

	profile := models.Profile{
		ID:        primitive.NewObjectID(),
		UserID:    user.ID,
		Username:  input.Username,
		FullName:  input.FullName,
		Phone:     input.Phone,
		Role:      role,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	if _, err := profileCollection.InsertOne(ctx, profile); err != nil {
		logrus.Errorf("Error inserting profile: %v", err)
		// Roll back the credential row so the email can register again;
		// leaving it would block re-registration with no way to log in.
		if _, delErr := userCollection.DeleteOne(ctx, bson.M{"_id": user.ID}); delErr != nil {
			logrus.Errorf("Error removing orphaned user %s: %v", user.ID.Hex(), delErr)
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong"})
		return
	}

	// Verification token lives in redis for 24 hours; the email itself is
	// best-effort and never blocks registration.
	token := primitive.NewObjectID().Hex()
	if err := config.RedisClient.Set(config.Ctx, "verify:"+token, user.ID.Hex(), 24*time.Hour).Err(); err != nil {
		logrus.Errorf("Error storing verification token: %v", err)
	} else if err := mailer.SendVerification(email, token); err != nil {
		logrus.Warnf("Error sending verification email: %v", err)
	}

	c.JSON(http.StatusCreated, gin.H{
		"id":        user.ID,
		"username":  profile.Username,
		"email":     user.Email,
		"role":      profile.Role,
		"message":   "Registration successful. Please check your email to verify your account.",
		"createdAt": user.CreatedAt,
	})
}

// VerifyEmail redeems an emailed verification token and marks the profile
// verified
func VerifyEmail(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing verification token"})
		return
	}

	userIDHex, err := config.RedisClient.Get(config.Ctx, "verify:"+token).Result()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid or expired verification token"})
		return
	}

	userID, err := primitive.ObjectIDFromHex(userIDHex)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid verification token"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	result, err := profileCollection.UpdateOne(ctx,
		bson.M{"userId": userID},
		bson.M{"$set": bson.M{"isVerified": true, "updatedAt": time.Now()}})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong"})
		return
	}
	if result.MatchedCount == 0 {
		// The token stays live so a late-created profile can still redeem it.
		c.JSON(http.StatusNotFound, gin.H{"error": "Profile not found"})
		return
	}

	config.RedisClient.Del(config.Ctx, "verify:"+token)

	c.JSON(http.StatusOK, gin.H{"message": "Email verified successfully"})
}

// LoginUser handles user login
func LoginUser(c *gin.Context) {
	var input struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var user models.User
	err := userCollection.FindOne(ctx, bson.M{"email": models.NormalizeEmail(input.Email)}).Decode(&user)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	if !user.ComparePassword(input.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	var profile models.Profile
	err = profileCollection.FindOne(ctx, bson.M{"userId": user.ID}).Decode(&profile)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	if !profile.IsVerified {
		c.JSON(http.StatusForbidden, gin.H{"error": "Email not verified. Please check your inbox."})
		return
	}

	token, err := authUtils.GenerateToken(user.ID.Hex(), profile.Role)
	if err != nil {
		logrus.Errorf("Error generating token: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong"})
		return
	}

	environment := os.Getenv("GO_ENV")
	domain := os.Getenv("DOMAIN")

	// For production, don't set domain to allow cross-origin cookies
	if environment == "production" {
		domain = ""
	}

	cookie := &http.Cookie{
		Name:     "auth_token",
		Value:    token,
		MaxAge:   3600 * 72,
		Path:     "/",
		Domain:   domain,
		Secure:   environment == "production",
		HttpOnly: true,
		SameSite: http.SameSiteNoneMode,
	}
	http.SetCookie(c.Writer, cookie)

	c.JSON(http.StatusOK, gin.H{
		"id":       user.ID,
		"email":    user.Email,
		"username": profile.Username,
		"role":     profile.Role,
		"token":    token,
		"profile":  profile,
	})
}

// GetMe retrieves the authenticated user's own profile with every field
func GetMe(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	objectID, err := primitive.ObjectIDFromHex(userID.(string))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var profile models.Profile
	err = profileCollection.FindOne(ctx, bson.M{"userId": objectID}).Decode(&profile)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Profile not found"})
		return
	}

	c.JSON(http.StatusOK, profile)
}

// UpdateMyProfile merges a partial edit into the caller's profile. The role
// field is not accepted here; role changes go through admin role assignment.
func UpdateMyProfile(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	objectID, err := primitive.ObjectIDFromHex(userID.(string))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	var input models.ProfileUpdate
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	update := bson.M{"updatedAt": time.Now()}
	if input.Username != nil {
		update["username"] = *input.Username
	}
	if input.FullName != nil {
		update["fullName"] = *input.FullName
	}
	if input.Phone != nil {
		update["phone"] = *input.Phone
	}
	if input.AvatarURL != nil {
		update["avatarUrl"] = *input.AvatarURL
	}
	if input.LocationLat != nil {
		update["locationLat"] = *input.LocationLat
	}
	if input.LocationLng != nil {
		update["locationLng"] = *input.LocationLng
	}
	if input.LocationAddress != nil {
		update["locationAddress"] = *input.LocationAddress
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	result, err := profileCollection.UpdateOne(ctx, bson.M{"userId": objectID}, bson.M{"$set": update})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update profile"})
		return
	}
	if result.MatchedCount == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Profile not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Profile updated successfully"})
}

// LogoutUser handles user logout by clearing the auth_token cookie
func LogoutUser(c *gin.Context) {
	environment := os.Getenv("GO_ENV")
	domain := os.Getenv("DOMAIN")

	c.SetCookie("auth_token", "", -1, "/", domain, environment == "production", true)
	c.JSON(http.StatusOK, gin.H{
		"message": "Logged out successfully",
	})
}
