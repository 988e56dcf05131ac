package controllers

import (
	"net/http"
	"time"

	"backend/services"

	"github.com/gin-gonic/gin"
)

type GoalController struct {
	goals *services.GoalService
}

func NewGoalController(goals *services.GoalService) *GoalController {
	return &GoalController{goals: goals}
}

func (gc *GoalController) Get(c *gin.Context) {
	user := currentUser(c)

	goal, err := gc.goals.Get(c.Request.Context(), user.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, goal)
}

func (gc *GoalController) Upsert(c *gin.Context) {
	user := currentUser(c)

	var body services.GoalInput
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := gc.goals.Upsert(c.Request.Context(), user.ID, body); err != nil {
		respondError(c, err)
		return
	}

	goal, err := gc.goals.Get(c.Request.Context(), user.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, goal)
}

// Progress reports today's totals against the user's goals. An optional
// ?date=YYYY-MM-DD picks a different day.
func (gc *GoalController) Progress(c *gin.Context) {
	user := currentUser(c)
	loc := services.UserLocation(user)

	day := time.Now().In(loc)
	if dateStr := c.Query("date"); dateStr != "" {
		parsed, err := time.ParseInLocation("2006-01-02", dateStr, loc)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date, expected YYYY-MM-DD"})
			return
		}
		day = parsed
	}

	goal, progress, err := gc.goals.Progress(c.Request.Context(), user.ID, day, loc)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"date":     services.LocalDateString(day, loc),
		"goal":     goal,
		"progress": progress,
	})
}
