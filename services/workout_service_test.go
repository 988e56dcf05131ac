package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeStreaks(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	// Fixed "now": 2025-06-10 14:00 local.
	now := time.Date(2025, 6, 10, 14, 0, 0, 0, loc)
	day := func(offset int, hour int) time.Time {
		return time.Date(2025, 6, 10+offset, hour, 0, 0, 0, loc)
	}

	tests := []struct {
		name        string
		times       []time.Time
		wantCurrent int
		wantLongest int
	}{
		{
			name:        "no workouts",
			times:       nil,
			wantCurrent: 0,
			wantLongest: 0,
		},
		{
			name:        "single workout today",
			times:       []time.Time{day(0, 8)},
			wantCurrent: 1,
			wantLongest: 1,
		},
		{
			name:        "single workout two days ago breaks current",
			times:       []time.Time{day(-2, 8)},
			wantCurrent: 0,
			wantLongest: 1,
		},
		{
			name:        "three consecutive days ending today",
			times:       []time.Time{day(0, 7), day(-1, 18), day(-2, 12)},
			wantCurrent: 3,
			wantLongest: 3,
		},
		{
			name:        "gap splits runs, longest is the historical run",
			times:       []time.Time{day(0, 7), day(-3, 9), day(-4, 9), day(-5, 9), day(-6, 9)},
			wantCurrent: 1,
			wantLongest: 4,
		},
		{
			name:        "multiple workouts on one day count once",
			times:       []time.Time{day(0, 6), day(0, 19), day(-1, 12)},
			wantCurrent: 2,
			wantLongest: 2,
		},
		{
			name:        "streak ending yesterday does not count toward current",
			times:       []time.Time{day(-1, 10), day(-2, 10)},
			wantCurrent: 0,
			wantLongest: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			current, longest := computeStreaks(tt.times, now, loc)
			assert.Equal(t, tt.wantCurrent, current, "current streak")
			assert.Equal(t, tt.wantLongest, longest, "longest streak")
		})
	}
}

func TestComputeStreaksUsesLocalDates(t *testing.T) {
	tokyo, err := time.LoadLocation("Asia/Tokyo")
	require.NoError(t, err)

	// 23:30 UTC on June 9 is already June 10 in Tokyo.
	lateUTC := time.Date(2025, 6, 9, 23, 30, 0, 0, time.UTC)
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, tokyo)

	current, longest := computeStreaks([]time.Time{lateUTC}, now, tokyo)
	assert.Equal(t, 1, current)
	assert.Equal(t, 1, longest)
}

func TestValidateWorkoutRequest(t *testing.T) {
	base := WorkoutRequest{
		Type:        "strength",
		PerformedAt: time.Now(),
		Exercises:   []ExerciseRequest{{Name: "squat", Sets: 3, Reps: 5, CaloriesBurned: 120}},
	}

	t.Run("valid", func(t *testing.T) {
		req := base
		assert.NoError(t, ValidateWorkoutRequest(&req))
	})

	t.Run("no exercises", func(t *testing.T) {
		req := base
		req.Exercises = nil
		assert.Error(t, ValidateWorkoutRequest(&req))
	})

	t.Run("unnamed exercise", func(t *testing.T) {
		req := base
		req.Exercises = []ExerciseRequest{{Name: "", CaloriesBurned: 50}}
		assert.Error(t, ValidateWorkoutRequest(&req))
	})

	t.Run("negative calories", func(t *testing.T) {
		req := base
		req.Exercises = []ExerciseRequest{{Name: "run", CaloriesBurned: -10}}
		assert.Error(t, ValidateWorkoutRequest(&req))
	})
}

func TestBuildWorkoutTotals(t *testing.T) {
	req := WorkoutRequest{
		Type:        "cardio",
		PerformedAt: time.Now(),
		DurationMin: 45,
		Exercises: []ExerciseRequest{
			{Name: "run", DurationMin: 30, CaloriesBurned: 300},
			{Name: "row", DurationMin: 15, CaloriesBurned: 150},
		},
	}
	w := buildWorkout(7, &req)
	assert.Equal(t, uint(7), w.UserID)
	assert.Len(t, w.Exercises, 2)
	assert.Equal(t, 450.0, w.TotalCaloriesBurned)
}
