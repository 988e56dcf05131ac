package models

import "gorm.io/gorm"

// Provenance tags for resolved nutrition values.
const (
    SourceUSDA       = "usda"
    SourceManual     = "manual"
    SourceAIEstimate = "ai_estimate"
)

// NutritionCacheEntry memoizes one per-serving nutrition record keyed by
// normalized (lowercased, trimmed) food name. Read before any external
// lookup; overwritten on each successful authoritative resolution.
// AI estimates are never written here.
type NutritionCacheEntry struct {
    gorm.Model
    NormalizedName string `gorm:"size:255;uniqueIndex;not null" json:"normalized_name"`

    ServingSize float64 `json:"serving_size"`
    ServingUnit string  `gorm:"size:32" json:"serving_unit"`

    Calories float64  `json:"calories"`
    Protein  float64  `json:"protein"`
    Carbs    float64  `json:"carbs"`
    Fats     float64  `json:"fats"`
    Fiber    *float64 `json:"fiber,omitempty"`
    Sugar    *float64 `json:"sugar,omitempty"`
    Sodium   *float64 `json:"sodium,omitempty"`
    Potassium *float64 `json:"potassium,omitempty"`
    Calcium   *float64 `json:"calcium,omitempty"`
    Iron      *float64 `json:"iron,omitempty"`
    VitaminC  *float64 `json:"vitamin_c,omitempty"`
    VitaminA  *float64 `json:"vitamin_a,omitempty"`

    DataSource string `gorm:"size:16;not null" json:"data_source"`
}

func (NutritionCacheEntry) TableName() string { return "nutrition_cache" }
