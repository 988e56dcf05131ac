package controllers

import (
	"net/http"
	"strconv"
	"time"

	"backend/services"

	"github.com/gin-gonic/gin"
)

type MealController struct {
	meals *services.MealService
}

func NewMealController(meals *services.MealService) *MealController {
	return &MealController{meals: meals}
}

// Preview resolves nutrition for the request body without persisting,
// echoing back the normalized meal for confirmation.
func (mc *MealController) Preview(c *gin.Context) {
	var body services.MealRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	meal, err := mc.meals.Preview(c.Request.Context(), &body)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, meal)
}

func (mc *MealController) Create(c *gin.Context) {
	var body services.MealRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user := currentUser(c)
	meal, err := mc.meals.Create(c.Request.Context(), user.ID, &body, services.UserLocation(user))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, meal)
}

func (mc *MealController) List(c *gin.Context) {
	meals, err := mc.meals.List(c.Request.Context(), currentUser(c).ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, meals)
}

func (mc *MealController) ListRecent(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "3"))
	meals, err := mc.meals.ListRecent(c.Request.Context(), currentUser(c).ID, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, meals)
}

// ListByDate returns meals whose timestamps fall in an inclusive local
// date range, defaulting to today.
func (mc *MealController) ListByDate(c *gin.Context) {
	user := currentUser(c)
	loc := services.UserLocation(user)

	now := time.Now().In(loc)
	fromStr := c.DefaultQuery("from", services.LocalDateString(now, loc))
	toStr := c.DefaultQuery("to", fromStr)

	from, err := time.ParseInLocation("2006-01-02", fromStr, loc)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid from date, expected YYYY-MM-DD"})
		return
	}
	to, err := time.ParseInLocation("2006-01-02", toStr, loc)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid to date, expected YYYY-MM-DD"})
		return
	}

	meals, err := mc.meals.ListByDateRange(c.Request.Context(), user.ID, from, to.AddDate(0, 0, 1))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, meals)
}

func (mc *MealController) Get(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid meal id"})
		return
	}

	meal, err := mc.meals.Get(c.Request.Context(), currentUser(c).ID, uint(id))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, meal)
}

func (mc *MealController) Update(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid meal id"})
		return
	}

	var body services.MealRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user := currentUser(c)
	meal, err := mc.meals.Update(c.Request.Context(), user.ID, uint(id), &body, services.UserLocation(user))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, meal)
}

func (mc *MealController) Delete(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid meal id"})
		return
	}

	user := currentUser(c)
	if err := mc.meals.Delete(c.Request.Context(), user.ID, uint(id), services.UserLocation(user)); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
