package controllers

import (
	"net/http"

	"civicpulse-be/services"

	"github.com/gin-gonic/gin"
)

// AssembleDictation joins final speech-transcript chunks into a single issue
// description. Clients stream chunks locally and post the batch when the user
// stops recording.
func AssembleDictation(c *gin.Context) {
	var input struct {
		Chunks []string `json:"chunks" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	text, err := services.AssembleChunks(c.Request.Context(), input.Chunks)
	if err != nil {
		c.JSON(http.StatusRequestTimeout, gin.H{"error": "Dictation aborted", "partial": text})
		return
	}

	c.JSON(http.StatusOK, gin.H{"description": text})
}
