package controllers

import (
	"net/http"
	"strconv"

	"backend/services"

	"github.com/gin-gonic/gin"
)

type WorkoutController struct {
	workouts *services.WorkoutService
}

func NewWorkoutController(workouts *services.WorkoutService) *WorkoutController {
	return &WorkoutController{workouts: workouts}
}

func (wc *WorkoutController) Preview(c *gin.Context) {
	var body services.WorkoutRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	w, err := wc.workouts.Preview(&body)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, w)
}

func (wc *WorkoutController) Create(c *gin.Context) {
	var body services.WorkoutRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user := currentUser(c)
	w, err := wc.workouts.Create(c.Request.Context(), user.ID, &body, services.UserLocation(user))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, w)
}

func (wc *WorkoutController) List(c *gin.Context) {
	ws, err := wc.workouts.List(c.Request.Context(), currentUser(c).ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ws)
}

func (wc *WorkoutController) Get(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid workout id"})
		return
	}

	w, err := wc.workouts.Get(c.Request.Context(), currentUser(c).ID, uint(id))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, w)
}

func (wc *WorkoutController) Update(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid workout id"})
		return
	}

	var body services.WorkoutRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user := currentUser(c)
	w, err := wc.workouts.Update(c.Request.Context(), user.ID, uint(id), &body, services.UserLocation(user))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, w)
}

func (wc *WorkoutController) Delete(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid workout id"})
		return
	}

	user := currentUser(c)
	if err := wc.workouts.Delete(c.Request.Context(), user.ID, uint(id), services.UserLocation(user)); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Streak derives current/longest consecutive-day streaks in the user's
// local calendar.
func (wc *WorkoutController) Streak(c *gin.Context) {
	user := currentUser(c)
	streaks, err := wc.workouts.Streaks(c.Request.Context(), user.ID, services.UserLocation(user))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, streaks)
}
