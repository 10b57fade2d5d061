package controllers

import (
	"context"
	"net/http"
	"time"

	"civicpulse-be/config"
	"civicpulse-be/models"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var departmentCollection = config.GetCollection("departments")

// CreateDepartment registers a new municipal department
func CreateDepartment(c *gin.Context) {
	var input struct {
		Name         string   `json:"name" binding:"required"`
		Description  string   `json:"description"`
		Categories   []string `json:"categories"`
		ContactEmail string   `json:"contactEmail"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	categories := make([]models.IssueCategory, 0, len(input.Categories))
	for _, raw := range input.Categories {
		category := models.IssueCategory(raw)
		if !category.Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid category: " + raw})
			return
		}
		categories = append(categories, category)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	count, err := departmentCollection.CountDocuments(ctx, bson.M{"name": input.Name})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong"})
		return
	}
	if count > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "Department already exists"})
		return
	}

	department := models.Department{
		ID:           primitive.NewObjectID(),
		Name:         input.Name,
		Description:  input.Description,
		Categories:   categories,
		ContactEmail: input.ContactEmail,
		IsActive:     true,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}

	if _, err := departmentCollection.InsertOne(ctx, department); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create department"})
		return
	}

	c.JSON(http.StatusCreated, department)
}

// ListDepartments returns every department, for assignment pickers
func ListDepartments(c *gin.Context) {
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

	c.JSON(http.StatusOK, departments)
}

// UpdateDepartment edits a department's metadata
func UpdateDepartment(c *gin.Context) {
	departmentID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid department ID"})
		return
	}

	var input struct {
		Name         *string  `json:"name"`
		Description  *string  `json:"description"`
		Categories   []string `json:"categories"`
		ContactEmail *string  `json:"contactEmail"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updates := bson.M{}
	if input.Name != nil {
		updates["name"] = *input.Name
	}
	if input.Description != nil {
		updates["description"] = *input.Description
	}
	if input.ContactEmail != nil {
		updates["contactEmail"] = *input.ContactEmail
	}
	if input.Categories != nil {
		categories := make([]models.IssueCategory, 0, len(input.Categories))
		for _, raw := range input.Categories {
			category := models.IssueCategory(raw)
			if !category.Valid() {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid category: " + raw})
				return
			}
			categories = append(categories, category)
		}
		updates["categories"] = categories
	}
	if len(updates) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No fields to update"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	result, err := departmentCollection.UpdateOne(ctx, bson.M{"_id": departmentID}, bson.M{"$set": updates})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update department"})
		return
	}
	if result.MatchedCount == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Department not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Department updated"})
}
