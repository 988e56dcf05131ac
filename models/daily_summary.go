package models

import "gorm.io/gorm"

// DailySummary is one derived row per (user, local calendar date).
// It is rebuilt by re-scanning that date's meal and workout logs and must
// always equal their sums; staleness is tolerated only between a log
// mutation and the aggregation pass it triggers.
type DailySummary struct {
    gorm.Model
    UserID uint   `gorm:"index:idx_summary_user_date,unique;not null" json:"user_id"`
    Date   string `gorm:"index:idx_summary_user_date,unique;size:10;not null" json:"date"` // YYYY-MM-DD, local

    CaloriesConsumed float64 `json:"calories_consumed"`
    Protein          float64 `json:"protein"`
    Carbs            float64 `json:"carbs"`
    Fats             float64 `json:"fats"`
    CaloriesBurned   float64 `json:"calories_burned"`
}

func (DailySummary) TableName() string { return "calorie_tracking" }
