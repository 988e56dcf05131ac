package models

import (
    "time"

    "gorm.io/gorm"
)

// One logged meal (breakfast/lunch/…) with its resolved food items.
type MealLog struct {
    gorm.Model
    UserID uint      `gorm:"index;not null" json:"user_id"`
    Type   string    `json:"type"`   // "breakfast" | "lunch" | "dinner" | "snack"
    AteAt  time.Time `gorm:"index;not null" json:"ate_at"`
    Items  []MealItem `json:"items"`

    // Cached projection of Items; recomputed on every item mutation,
    // never written independently.
    TotalCalories float64 `json:"total_calories"`
    TotalProtein  float64 `json:"total_protein"`
    TotalCarbs    float64 `json:"total_carbs"`
    TotalFats     float64 `json:"total_fats"`
}

// MealItem is the immutable nutrition snapshot for one consumed quantity.
type MealItem struct {
    gorm.Model
    MealLogID uint `gorm:"index" json:"meal_log_id"`

    FoodName string  `gorm:"size:255;not null" json:"food_name"`
    Quantity float64 `json:"quantity"`
    Unit     string  `gorm:"size:32" json:"unit"`

    Calories float64  `json:"calories"`
    Protein  float64  `json:"protein"`
    Carbs    float64  `json:"carbs"`
    Fats     float64  `json:"fats"`
    Fiber    *float64 `json:"fiber,omitempty"`
    Sugar    *float64 `json:"sugar,omitempty"`
    Sodium   *float64 `json:"sodium,omitempty"`

    // Provenance: "usda" | "manual" | "ai_estimate". Estimates must stay
    // distinguishable from authoritative data downstream.
    DataSource string `gorm:"size:16" json:"data_source"`
}

// RecomputeTotals re-derives the cached totals from Items.
func (m *MealLog) RecomputeTotals() {
    m.TotalCalories, m.TotalProtein, m.TotalCarbs, m.TotalFats = 0, 0, 0, 0
    for _, it := range m.Items {
        m.TotalCalories += it.Calories
        m.TotalProtein += it.Protein
        m.TotalCarbs += it.Carbs
        m.TotalFats += it.Fats
    }
}
