package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"backend/models"

	"gorm.io/gorm"
)

// WorkoutService owns workout-log CRUD and streak derivation.
type WorkoutService struct {
	db        *gorm.DB
	summaries *SummaryService
}

func NewWorkoutService(db *gorm.DB, summaries *SummaryService) *WorkoutService {
	return &WorkoutService{db: db, summaries: summaries}
}

type ExerciseRequest struct {
	Name           string  `json:"name" binding:"required"`
	Sets           int     `json:"sets"`
	Reps           int     `json:"reps"`
	DurationMin    float64 `json:"duration_min"`
	CaloriesBurned float64 `json:"calories_burned"`
}

// WorkoutRequest is the shared create/update/preview body.
type WorkoutRequest struct {
	Type        string            `json:"type" binding:"required"`
	PerformedAt time.Time         `json:"performed_at" binding:"required"`
	DurationMin float64           `json:"duration_min"`
	Exercises   []ExerciseRequest `json:"exercises" binding:"required,min=1,dive"`
}

func ValidateWorkoutRequest(req *WorkoutRequest) error {
	if len(req.Exercises) == 0 {
		return fmt.Errorf("a workout needs at least one exercise")
	}
	for _, ex := range req.Exercises {
		if ex.Name == "" {
			return fmt.Errorf("every exercise needs a name")
		}
		if ex.CaloriesBurned < 0 {
			return fmt.Errorf("calories burned for %q cannot be negative", ex.Name)
		}
	}
	return nil
}

func buildWorkout(userID uint, req *WorkoutRequest) *models.WorkoutLog {
	w := &models.WorkoutLog{
		UserID:      userID,
		Type:        req.Type,
		PerformedAt: req.PerformedAt,
		DurationMin: req.DurationMin,
	}
	for _, ex := range req.Exercises {
		w.Exercises = append(w.Exercises, models.WorkoutExercise{
			Name:           ex.Name,
			Sets:           ex.Sets,
			Reps:           ex.Reps,
			DurationMin:    ex.DurationMin,
			CaloriesBurned: ex.CaloriesBurned,
		})
	}
	w.RecomputeTotals()
	return w
}

// Preview echoes back the normalized workout with derived totals, without
// persisting.
func (s *WorkoutService) Preview(req *WorkoutRequest) (*models.WorkoutLog, error) {
	if err := ValidateWorkoutRequest(req); err != nil {
		return nil, err
	}
	return buildWorkout(0, req), nil
}

func (s *WorkoutService) Create(ctx context.Context, userID uint, req *WorkoutRequest, loc *time.Location) (*models.WorkoutLog, error) {
	if err := ValidateWorkoutRequest(req); err != nil {
		return nil, err
	}
	w := buildWorkout(userID, req)
	if err := s.db.WithContext(ctx).Create(w).Error; err != nil {
		return nil, err
	}
	if _, err := s.summaries.Rebuild(ctx, userID, req.PerformedAt, loc); err != nil {
		return nil, err
	}
	return w, nil
}

func (s *WorkoutService) Get(ctx context.Context, userID, workoutID uint) (*models.WorkoutLog, error) {
	var w models.WorkoutLog
	err := s.db.WithContext(ctx).
		Preload("Exercises").
		Where("id = ? AND user_id = ?", workoutID, userID).
		First(&w).Error
	if err != nil {
		return nil, err
	}
	return &w, nil
}

func (s *WorkoutService) List(ctx context.Context, userID uint) ([]models.WorkoutLog, error) {
	var ws []models.WorkoutLog
	err := s.db.WithContext(ctx).
		Preload("Exercises").
		Where("user_id = ?", userID).
		Order("performed_at DESC").
		Find(&ws).Error
	return ws, err
}

func (s *WorkoutService) Update(ctx context.Context, userID, workoutID uint, req *WorkoutRequest, loc *time.Location) (*models.WorkoutLog, error) {
	if err := ValidateWorkoutRequest(req); err != nil {
		return nil, err
	}

	var w models.WorkoutLog
	if err := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", workoutID, userID).
		First(&w).Error; err != nil {
		return nil, err
	}
	oldPerformedAt := w.PerformedAt

	if err := s.db.WithContext(ctx).
		Where("workout_log_id = ?", w.ID).
		Delete(&models.WorkoutExercise{}).Error; err != nil {
		return nil, err
	}

	fresh := buildWorkout(userID, req)
	w.Type = fresh.Type
	w.PerformedAt = fresh.PerformedAt
	w.DurationMin = fresh.DurationMin
	w.Exercises = fresh.Exercises
	w.TotalCaloriesBurned = fresh.TotalCaloriesBurned
	if err := s.db.WithContext(ctx).Save(&w).Error; err != nil {
		return nil, err
	}

	if _, err := s.summaries.Rebuild(ctx, userID, oldPerformedAt, loc); err != nil {
		return nil, err
	}
	if LocalDateString(oldPerformedAt, loc) != LocalDateString(req.PerformedAt, loc) {
		if _, err := s.summaries.Rebuild(ctx, userID, req.PerformedAt, loc); err != nil {
			return nil, err
		}
	}

	var updated models.WorkoutLog
	if err := s.db.WithContext(ctx).
		Preload("Exercises").
		First(&updated, w.ID).Error; err != nil {
		return nil, err
	}
	return &updated, nil
}

func (s *WorkoutService) Delete(ctx context.Context, userID, workoutID uint, loc *time.Location) error {
	var w models.WorkoutLog
	if err := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", workoutID, userID).
		First(&w).Error; err != nil {
		return err
	}

	if err := s.db.WithContext(ctx).
		Where("workout_log_id = ?", w.ID).
		Delete(&models.WorkoutExercise{}).Error; err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Delete(&w).Error; err != nil {
		return err
	}

	_, err := s.summaries.Rebuild(ctx, userID, w.PerformedAt, loc)
	return err
}

// StreakResult pairs the two derived streak values.
type StreakResult struct {
	CurrentStreak int `json:"current_streak"`
	LongestStreak int `json:"longest_streak"`
}

// Streaks derives the current and longest consecutive-day streaks from the
// user's full workout history. Nothing is persisted; both values are
// recomputed from the date set on every call, so correctness never depends
// on update ordering.
func (s *WorkoutService) Streaks(ctx context.Context, userID uint, loc *time.Location) (*StreakResult, error) {
	var times []time.Time
	err := s.db.WithContext(ctx).
		Model(&models.WorkoutLog{}).
		Where("user_id = ?", userID).
		Pluck("performed_at", &times).Error
	if err != nil {
		return nil, err
	}
	current, longest := computeStreaks(times, time.Now(), loc)
	return &StreakResult{CurrentStreak: current, LongestStreak: longest}, nil
}

// computeStreaks collapses timestamps into distinct local-calendar dates,
// then walks back from today for the current streak and pairwise through
// the ascending dates for the longest.
func computeStreaks(times []time.Time, now time.Time, loc *time.Location) (current, longest int) {
	if len(times) == 0 {
		return 0, 0
	}

	seen := make(map[string]struct{}, len(times))
	for _, t := range times {
		seen[LocalDateString(t, loc)] = struct{}{}
	}

	day := now.In(loc)
	for {
		if _, ok := seen[day.Format(localDateLayout)]; !ok {
			break
		}
		current++
		day = day.AddDate(0, 0, -1)
	}

	dates := make([]time.Time, 0, len(seen))
	for key := range seen {
		d, err := time.ParseInLocation(localDateLayout, key, loc)
		if err != nil {
			continue
		}
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	run := 1
	longest = 1
	for i := 1; i < len(dates); i++ {
		if dates[i-1].AddDate(0, 0, 1).Equal(dates[i]) {
			run++
		} else {
			run = 1
		}
		if run > longest {
			longest = run
		}
	}
	return current, longest
}
