package models

import (
    "time"

    "gorm.io/gorm"
)

// One completed workout session.
type WorkoutLog struct {
    gorm.Model
    UserID      uint      `gorm:"index;not null" json:"user_id"`
    Type        string    `gorm:"size:64" json:"type"` // "strength" | "cardio" | ...
    PerformedAt time.Time `gorm:"index;not null" json:"performed_at"`
    DurationMin float64   `json:"duration_min"`
    Exercises   []WorkoutExercise `json:"exercises"`

    // Cached projection of Exercises, same rule as MealLog totals.
    TotalCaloriesBurned float64 `json:"total_calories_burned"`
}

type WorkoutExercise struct {
    gorm.Model
    WorkoutLogID uint `gorm:"index" json:"workout_log_id"`

    Name           string  `gorm:"size:255;not null" json:"name"`
    Sets           int     `json:"sets,omitempty"`
    Reps           int     `json:"reps,omitempty"`
    DurationMin    float64 `json:"duration_min,omitempty"`
    CaloriesBurned float64 `json:"calories_burned"`
}

func (w *WorkoutLog) RecomputeTotals() {
    w.TotalCaloriesBurned = 0
    for _, ex := range w.Exercises {
        w.TotalCaloriesBurned += ex.CaloriesBurned
    }
}
