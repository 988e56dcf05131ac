package services

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// newTestDB opens a per-test in-memory sqlite database with the full
// schema migrated.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.ReplaceAll(t.Name(), "/", "_")
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name)), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.MealLog{},
		&models.MealItem{},
		&models.WorkoutLog{},
		&models.WorkoutExercise{},
		&models.NutritionCacheEntry{},
		&models.DailySummary{},
		&models.DailyGoal{},
	))
	return db
}

func TestLocalDateString(t *testing.T) {
	tokyo, err := time.LoadLocation("Asia/Tokyo")
	require.NoError(t, err)
	la, err := time.LoadLocation("America/Los_Angeles")
	require.NoError(t, err)

	// 2025-06-09 23:30 UTC.
	instant := time.Date(2025, 6, 9, 23, 30, 0, 0, time.UTC)

	assert.Equal(t, "2025-06-09", LocalDateString(instant, time.UTC))
	assert.Equal(t, "2025-06-10", LocalDateString(instant, tokyo), "already next day in Tokyo")
	assert.Equal(t, "2025-06-09", LocalDateString(instant, la))
}

func TestBuildSummarySumsOnlyTargetLocalDate(t *testing.T) {
	tokyo, err := time.LoadLocation("Asia/Tokyo")
	require.NoError(t, err)

	meal := func(utcHour int, day int, cal, protein float64) models.MealLog {
		return models.MealLog{
			UserID:        1,
			AteAt:         time.Date(2025, 6, day, utcHour, 0, 0, 0, time.UTC),
			TotalCalories: cal,
			TotalProtein:  protein,
		}
	}

	meals := []models.MealLog{
		// 22:00 UTC June 9 = 07:00 June 10 in Tokyo: belongs to the 10th.
		meal(22, 9, 400, 20),
		// 03:00 UTC June 10 = 12:00 June 10 in Tokyo: belongs to the 10th.
		meal(3, 10, 600, 35),
		// 16:00 UTC June 10 = 01:00 June 11 in Tokyo: NOT the 10th.
		meal(16, 10, 999, 99),
	}
	workouts := []models.WorkoutLog{
		{UserID: 1, PerformedAt: time.Date(2025, 6, 10, 3, 0, 0, 0, time.UTC), TotalCaloriesBurned: 250},
		{UserID: 1, PerformedAt: time.Date(2025, 6, 10, 16, 0, 0, 0, time.UTC), TotalCaloriesBurned: 500},
	}

	summary := buildSummary(1, "2025-06-10", meals, workouts, tokyo)

	assert.Equal(t, uint(1), summary.UserID)
	assert.Equal(t, "2025-06-10", summary.Date)
	assert.Equal(t, 1000.0, summary.CaloriesConsumed, "UTC-next-day meal must land on local date 10")
	assert.Equal(t, 55.0, summary.Protein)
	assert.Equal(t, 250.0, summary.CaloriesBurned, "late workout belongs to the 11th locally")
}

func TestBuildSummaryEmptyDay(t *testing.T) {
	summary := buildSummary(3, "2025-06-10", nil, nil, time.UTC)
	assert.Equal(t, 0.0, summary.CaloriesConsumed)
	assert.Equal(t, 0.0, summary.Protein)
	assert.Equal(t, 0.0, summary.Carbs)
	assert.Equal(t, 0.0, summary.Fats)
	assert.Equal(t, 0.0, summary.CaloriesBurned)
}

func TestRebuildOverwritesStaleTotalsAfterDelete(t *testing.T) {
	db := newTestDB(t)
	svc := NewSummaryService(db, nil, testLogger())
	ctx := context.Background()

	ateAt := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	meal := &models.MealLog{
		UserID:        1,
		Type:          "lunch",
		AteAt:         ateAt,
		TotalCalories: 500,
		TotalProtein:  30,
		TotalCarbs:    50,
		TotalFats:     20,
	}
	require.NoError(t, db.Create(meal).Error)
	workout := &models.WorkoutLog{UserID: 1, Type: "cardio", PerformedAt: ateAt, TotalCaloriesBurned: 250}
	require.NoError(t, db.Create(workout).Error)

	first, err := svc.Rebuild(ctx, 1, ateAt, time.UTC)
	require.NoError(t, err)
	assert.Equal(t, 500.0, first.CaloriesConsumed)
	assert.Equal(t, 250.0, first.CaloriesBurned)

	// Removing the day's only logs must drive every total back to zero,
	// not leave the previous row's values behind.
	require.NoError(t, db.Delete(meal).Error)
	require.NoError(t, db.Delete(workout).Error)

	_, err = svc.Rebuild(ctx, 1, ateAt, time.UTC)
	require.NoError(t, err)

	var row models.DailySummary
	require.NoError(t, db.Where("user_id = ? AND date = ?", 1, "2025-06-10").First(&row).Error)
	assert.Equal(t, 0.0, row.CaloriesConsumed, "summary must equal the now-empty log set")
	assert.Equal(t, 0.0, row.Protein)
	assert.Equal(t, 0.0, row.Carbs)
	assert.Equal(t, 0.0, row.Fats)
	assert.Equal(t, 0.0, row.CaloriesBurned)
}

func TestBuildSummaryDeterministic(t *testing.T) {
	meals := []models.MealLog{
		{UserID: 2, AteAt: time.Date(2025, 6, 10, 8, 0, 0, 0, time.UTC), TotalCalories: 350, TotalCarbs: 40},
		{UserID: 2, AteAt: time.Date(2025, 6, 10, 13, 0, 0, 0, time.UTC), TotalCalories: 650, TotalCarbs: 70},
	}

	first := buildSummary(2, "2025-06-10", meals, nil, time.UTC)
	second := buildSummary(2, "2025-06-10", meals, nil, time.UTC)
	assert.Equal(t, first, second, "rebuilding from the same logs must yield an identical row")
	assert.Equal(t, 1000.0, first.CaloriesConsumed)
	assert.Equal(t, 110.0, first.Carbs)
}
