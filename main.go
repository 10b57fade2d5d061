package main

import (
	"net/http"
	"os"

	"civicpulse-be/config"
	"civicpulse-be/models"
	"civicpulse-be/routes"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

func main() {
	if err := godotenv.Load(); err != nil {
		logrus.Info("No .env file found")
	}
	config.InitLogger()

	db := config.ConnectDB()
	if db == nil {
		logrus.Fatal("Failed to connect to MongoDB")
	}
	logrus.Info("MongoDB connection established successfully!")

	config.ConnectRedis()

	if err := models.EnsureLikeIndex(config.GetCollection("issue_interactions")); err != nil {
		logrus.Fatalf("Failed to create like index: %v", err)
	}
	if err := models.EnsureFollowIndex(config.GetCollection("user_follows")); err != nil {
		logrus.Fatalf("Failed to create follow index: %v", err)
	}

	r := gin.Default()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	routes.AuthRoutes(r)
	routes.IssueRoutes(r)
	routes.UserRoutes(r)
	routes.AdminRoutes(r)

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	if err := r.Run(":" + port); err != nil {
		logrus.Fatalf("Failed to start server: %v", err)
	}
}
