package controllers

import (
	"net/http"
	"time"

	"backend/services"

	"github.com/gin-gonic/gin"
)

type SummaryController struct {
	summaries *services.SummaryService
}

func NewSummaryController(summaries *services.SummaryService) *SummaryController {
	return &SummaryController{summaries: summaries}
}

// Today returns the summary for the user's current local date.
func (sc *SummaryController) Today(c *gin.Context) {
	user := currentUser(c)
	loc := services.UserLocation(user)

	summary, err := sc.summaries.ByDate(c.Request.Context(), user.ID, services.LocalDateString(time.Now(), loc))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// ByDate returns the summary for one YYYY-MM-DD local date.
func (sc *SummaryController) ByDate(c *gin.Context) {
	user := currentUser(c)

	dateStr := c.Param("date")
	if _, err := time.Parse("2006-01-02", dateStr); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date, expected YYYY-MM-DD"})
		return
	}

	summary, err := sc.summaries.ByDate(c.Request.Context(), user.ID, dateStr)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// History returns summaries for a date range, defaulting to the last week.
func (sc *SummaryController) History(c *gin.Context) {
	user := currentUser(c)
	loc := services.UserLocation(user)

	now := time.Now().In(loc)
	from := c.DefaultQuery("from", services.LocalDateString(now.AddDate(0, 0, -6), loc))
	to := c.DefaultQuery("to", services.LocalDateString(now, loc))

	for _, d := range []string{from, to} {
		if _, err := time.Parse("2006-01-02", d); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date, expected YYYY-MM-DD"})
			return
		}
	}

	rows, err := sc.summaries.Range(c.Request.Context(), user.ID, from, to)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"from": from, "to": to, "summaries": rows})
}

// Rebuild forces a recompute of one local date's summary. Summaries are
// normally refreshed by meal and workout writes; this covers manual
// backfills.
func (sc *SummaryController) Rebuild(c *gin.Context) {
	user := currentUser(c)
	loc := services.UserLocation(user)

	dateStr := c.Param("date")
	day, err := time.ParseInLocation("2006-01-02", dateStr, loc)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date, expected YYYY-MM-DD"})
		return
	}

	summary, err := sc.summaries.Rebuild(c.Request.Context(), user.ID, day, loc)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}
