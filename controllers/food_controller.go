package controllers

import (
	"net/http"
	"strconv"

	"backend/services"

	"github.com/gin-gonic/gin"
)

type FoodController struct {
	usda      *services.USDAService
	nutrition *services.NutritionService
}

func NewFoodController(usda *services.USDAService, nutrition *services.NutritionService) *FoodController {
	return &FoodController{usda: usda, nutrition: nutrition}
}

// Search passes a free-text query through to the food database and
// returns the raw candidates.
func (fc *FoodController) Search(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing 'q' query param"})
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	foods, err := fc.usda.SearchFoods(c.Request.Context(), query, limit)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"foods": foods})
}

// Resolve runs the full resolution chain (cache → USDA → estimate) for a
// single food query. This is the endpoint backing the assistant's
// nutrition tool calls.
func (fc *FoodController) Resolve(c *gin.Context) {
	var body services.FoodQuery
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	food, err := fc.nutrition.Resolve(c.Request.Context(), body)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, food)
}
