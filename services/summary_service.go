package services

import (
	"context"
	"time"

	"backend/models"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const localDateLayout = "2006-01-02"

// LocalDateString formats an instant as the wall-clock date in loc.
func LocalDateString(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(localDateLayout)
}

// SummaryService maintains calorie_tracking rows as derived projections of
// meal and workout logs for one (user, local calendar date).
type SummaryService struct {
	db  *gorm.DB
	hub *RealtimeHub
	log *logrus.Logger
}

func NewSummaryService(db *gorm.DB, hub *RealtimeHub, log *logrus.Logger) *SummaryService {
	return &SummaryService{db: db, hub: hub, log: log}
}

// Rebuild recomputes the summary row for (userID, the local date of `day`
// in loc) from scratch and upserts it. Idempotent: re-running against an
// unchanged set of logs yields an identical row.
//
// Stored timestamps are UTC while the summary buckets by the viewer's
// local day, so the fetch uses a generous 48-hour window around the target
// date and the exact membership test happens in application code by
// recomputing each row's local date. Do not replace this with a plain UTC
// date-range query: that misattributes events logged near midnight for
// any user outside UTC.
func (s *SummaryService) Rebuild(ctx context.Context, userID uint, day time.Time, loc *time.Location) (*models.DailySummary, error) {
	dateStr := LocalDateString(day, loc)
	dayStart, err := time.ParseInLocation(localDateLayout, dateStr, loc)
	if err != nil {
		return nil, err
	}
	// 48h window centered on local noon of the target date.
	windowStart := dayStart.Add(-12 * time.Hour)
	windowEnd := dayStart.Add(36 * time.Hour)

	var meals []models.MealLog
	if err := s.db.WithContext(ctx).
		Where("user_id = ? AND ate_at >= ? AND ate_at < ?", userID, windowStart, windowEnd).
		Find(&meals).Error; err != nil {
		return nil, err
	}

	var workouts []models.WorkoutLog
	if err := s.db.WithContext(ctx).
		Where("user_id = ? AND performed_at >= ? AND performed_at < ?", userID, windowStart, windowEnd).
		Find(&workouts).Error; err != nil {
		return nil, err
	}

	summary := buildSummary(userID, dateStr, meals, workouts, loc)

	// Assign with a map, not the struct: struct assigns skip zero-value
	// fields, which would leave stale totals behind when a day's last log
	// is deleted or a macro sums to 0.
	if err := s.db.WithContext(ctx).
		Where("user_id = ? AND date = ?", userID, dateStr).
		Assign(map[string]interface{}{
			"calories_consumed": summary.CaloriesConsumed,
			"protein":           summary.Protein,
			"carbs":             summary.Carbs,
			"fats":              summary.Fats,
			"calories_burned":   summary.CaloriesBurned,
		}).
		FirstOrCreate(summary).Error; err != nil {
		return nil, err
	}

	if s.hub != nil {
		s.hub.Broadcast(userID, map[string]any{
			"kind":    "summary.updated",
			"summary": summary,
		})
	}
	s.log.WithFields(logrus.Fields{
		"user_id": userID,
		"date":    dateStr,
	}).Debug("daily summary rebuilt")
	return summary, nil
}

// buildSummary is the pure aggregation step: precise local-date filter,
// then sums.
func buildSummary(userID uint, dateStr string, meals []models.MealLog, workouts []models.WorkoutLog, loc *time.Location) *models.DailySummary {
	summary := &models.DailySummary{UserID: userID, Date: dateStr}

	for _, m := range meals {
		if LocalDateString(m.AteAt, loc) != dateStr {
			continue
		}
		summary.CaloriesConsumed += m.TotalCalories
		summary.Protein += m.TotalProtein
		summary.Carbs += m.TotalCarbs
		summary.Fats += m.TotalFats
	}
	for _, w := range workouts {
		if LocalDateString(w.PerformedAt, loc) != dateStr {
			continue
		}
		summary.CaloriesBurned += w.TotalCaloriesBurned
	}
	return summary
}

// ByDate returns the stored summary for one local date, zero-valued when
// no row exists yet.
func (s *SummaryService) ByDate(ctx context.Context, userID uint, dateStr string) (*models.DailySummary, error) {
	var summary models.DailySummary
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND date = ?", userID, dateStr).
		First(&summary).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return &models.DailySummary{UserID: userID, Date: dateStr}, nil
		}
		return nil, err
	}
	return &summary, nil
}

// Range returns stored summaries between two local dates inclusive,
// ordered ascending. Dates are YYYY-MM-DD strings so lexical order is
// chronological order.
func (s *SummaryService) Range(ctx context.Context, userID uint, from, to string) ([]models.DailySummary, error) {
	var rows []models.DailySummary
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND date BETWEEN ? AND ?", userID, from, to).
		Order("date ASC").
		Find(&rows).Error
	return rows, err
}
