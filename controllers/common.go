package controllers

import (
	"errors"
	"net/http"

	"backend/models"
	"backend/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func currentUser(c *gin.Context) *models.User {
	return c.MustGet("user").(*models.User)
}

// respondError maps service errors onto status codes: unresolved foods are
// a recoverable 422, missing rows a 404, everything else a 500.
func respondError(c *gin.Context, err error) {
	var unresolved *services.UnresolvedFoodError
	switch {
	case errors.As(err, &unresolved):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":     unresolved.Error(),
			"food_name": unresolved.Name,
			"hint":      "ask the user for a more specific food name",
		})
	case errors.Is(err, gorm.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
