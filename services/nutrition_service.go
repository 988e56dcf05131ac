package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"backend/models"
	"backend/utils"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Authoritative cache entries older than this are eligible for pruning.
const nutritionCacheTTL = 90 * 24 * time.Hour

// UnresolvedFoodError means neither the USDA database nor the generative
// fallback produced usable data. Recoverable: the caller should ask the
// user for a more specific food name.
type UnresolvedFoodError struct {
	Name string
}

func (e *UnresolvedFoodError) Error() string {
	return fmt.Sprintf("nutrition for %q could not be resolved; try a more specific food name", e.Name)
}

// ResolvedFood is one nutrition record scaled to a consumed quantity,
// annotated with provenance. Optional nutrients are nil when the source
// did not report them; core macros default to zero.
type ResolvedFood struct {
	FoodName string  `json:"food_name"`
	Quantity float64 `json:"quantity,omitempty"`
	Unit     string  `json:"unit,omitempty"`

	Calories  float64  `json:"calories"`
	Protein   float64  `json:"protein"`
	Carbs     float64  `json:"carbs"`
	Fats      float64  `json:"fats"`
	Fiber     *float64 `json:"fiber,omitempty"`
	Sugar     *float64 `json:"sugar,omitempty"`
	Sodium    *float64 `json:"sodium,omitempty"`
	Potassium *float64 `json:"potassium,omitempty"`
	Calcium   *float64 `json:"calcium,omitempty"`
	Iron      *float64 `json:"iron,omitempty"`
	VitaminC  *float64 `json:"vitamin_c,omitempty"`
	VitaminA  *float64 `json:"vitamin_a,omitempty"`

	ServingSize float64 `json:"serving_size"`
	ServingUnit string  `json:"serving_unit"`

	DataSource string `json:"data_source"` // "usda" | "manual" | "ai_estimate"
	Confidence string `json:"confidence,omitempty"`
	Rationale  string `json:"rationale,omitempty"`
}

// FoodQuery is the resolution input: a food name plus the consumed
// quantity and unit to scale to.
type FoodQuery struct {
	FoodName string  `json:"food_name" binding:"required"`
	Quantity float64 `json:"quantity" binding:"required,gt=0"`
	Unit     string  `json:"unit" binding:"required"`
}

type nutrientSearcher interface {
	LookupFood(ctx context.Context, name string) (*ResolvedFood, error)
}

type nutritionEstimator interface {
	EstimateNutrition(ctx context.Context, foodName string, quantity float64, unit string) (*ResolvedFood, error)
}

type nutritionCache interface {
	Lookup(ctx context.Context, normalizedName string) (*models.NutritionCacheEntry, error)
	Store(ctx context.Context, entry *models.NutritionCacheEntry) error
	PruneStale(ctx context.Context, olderThan time.Duration) (int64, error)
}

// NutritionService resolves a food name + quantity into nutrient values:
// cache first, then USDA, then a generative estimate. Dependencies are
// injected so tests can substitute fakes.
type NutritionService struct {
	cache     nutritionCache
	usda      nutrientSearcher
	estimator nutritionEstimator
	log       *logrus.Logger
}

func NewNutritionService(cache nutritionCache, usda nutrientSearcher, estimator nutritionEstimator, log *logrus.Logger) *NutritionService {
	return &NutritionService{cache: cache, usda: usda, estimator: estimator, log: log}
}

// NormalizeFoodName produces the cache key for a food name.
func NormalizeFoodName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Resolve runs the resolution chain for one food query. External-database
// trouble (network, HTTP, malformed JSON) downgrades to a miss and
// advances to the next tier; only full exhaustion returns
// *UnresolvedFoodError.
func (s *NutritionService) Resolve(ctx context.Context, q FoodQuery) (*ResolvedFood, error) {
	name := NormalizeFoodName(q.FoodName)

	entry, err := s.cache.Lookup(ctx, name)
	if err != nil {
		s.log.WithError(err).WithField("food", name).Warn("nutrition cache read failed; continuing to external lookup")
	}
	if entry != nil {
		return s.scaleToRequest(entryToResolved(entry), q), nil
	}

	food, err := s.usda.LookupFood(ctx, q.FoodName)
	if err != nil {
		s.log.WithError(err).WithField("food", name).Warn("USDA lookup failed; treating as a miss")
		food = nil
	}
	if food != nil {
		if err := s.cache.Store(ctx, resolvedToEntry(name, food)); err != nil {
			s.log.WithError(err).WithField("food", name).Warn("failed to cache nutrition record")
		}
		return s.scaleToRequest(food, q), nil
	}

	// Generative fallback. Estimates are never written to the cache so a
	// guess cannot be re-served as authoritative data later.
	if s.estimator != nil {
		est, err := s.estimator.EstimateNutrition(ctx, q.FoodName, q.Quantity, q.Unit)
		if err == nil {
			return s.scaleToRequest(est, q), nil
		}
		s.log.WithError(err).WithField("food", name).Warn("nutrition estimate failed")
	}

	return nil, &UnresolvedFoodError{Name: q.FoodName}
}

// PruneStaleCache removes authoritative cache entries past the staleness
// window. Manual entries are operator-curated and kept.
func (s *NutritionService) PruneStaleCache(ctx context.Context) (int64, error) {
	return s.cache.PruneStale(ctx, nutritionCacheTTL)
}

// scaleToRequest linearly scales a per-serving record to the requested
// quantity/unit. When the requested unit is cross-category with the
// serving unit and no density bridges them, the per-serving record is
// returned unchanged with a logged warning — never an error.
func (s *NutritionService) scaleToRequest(food *ResolvedFood, q FoodQuery) *ResolvedFood {
	out := *food
	ratio, ok := servingRatio(food, q.Quantity, q.Unit)
	if !ok {
		s.log.WithFields(logrus.Fields{
			"food":         food.FoodName,
			"requested":    q.Unit,
			"serving_unit": food.ServingUnit,
		}).Warn("no conversion between requested unit and serving unit; returning per-serving values")
		out.Quantity = food.ServingSize
		out.Unit = utils.NormalizeUnit(food.ServingUnit)
		return &out
	}

	out.Quantity = q.Quantity
	out.Unit = utils.NormalizeUnit(q.Unit)
	out.Calories = food.Calories * ratio
	out.Protein = food.Protein * ratio
	out.Carbs = food.Carbs * ratio
	out.Fats = food.Fats * ratio
	out.Fiber = mulPtr(food.Fiber, ratio)
	out.Sugar = mulPtr(food.Sugar, ratio)
	out.Sodium = mulPtr(food.Sodium, ratio)
	out.Potassium = mulPtr(food.Potassium, ratio)
	out.Calcium = mulPtr(food.Calcium, ratio)
	out.Iron = mulPtr(food.Iron, ratio)
	out.VitaminC = mulPtr(food.VitaminC, ratio)
	out.VitaminA = mulPtr(food.VitaminA, ratio)
	return &out
}

// servingRatio computes requested-quantity / serving-size with both sides
// in the serving unit. Falls back to the density table for volume→weight
// requests.
func servingRatio(food *ResolvedFood, quantity float64, unit string) (float64, bool) {
	if food.ServingSize <= 0 {
		return 0, false
	}
	ru := utils.NormalizeUnit(unit)
	su := utils.NormalizeUnit(food.ServingUnit)

	if converted, ok := utils.ConvertUnit(quantity, ru, su); ok {
		return converted / food.ServingSize, true
	}
	if utils.IsVolumeUnit(ru) && utils.IsWeightUnit(su) {
		if grams, ok := utils.VolumeToWeight(food.FoodName, quantity, ru); ok {
			return utils.ConvertWeight(grams, "g", su) / food.ServingSize, true
		}
	}
	return 0, false
}

func mulPtr(p *float64, k float64) *float64 {
	if p == nil {
		return nil
	}
	v := *p * k
	return &v
}

func entryToResolved(e *models.NutritionCacheEntry) *ResolvedFood {
	return &ResolvedFood{
		FoodName:    e.NormalizedName,
		Calories:    e.Calories,
		Protein:     e.Protein,
		Carbs:       e.Carbs,
		Fats:        e.Fats,
		Fiber:       e.Fiber,
		Sugar:       e.Sugar,
		Sodium:      e.Sodium,
		Potassium:   e.Potassium,
		Calcium:     e.Calcium,
		Iron:        e.Iron,
		VitaminC:    e.VitaminC,
		VitaminA:    e.VitaminA,
		ServingSize: e.ServingSize,
		ServingUnit: e.ServingUnit,
		DataSource:  e.DataSource,
	}
}

func resolvedToEntry(normalizedName string, f *ResolvedFood) *models.NutritionCacheEntry {
	return &models.NutritionCacheEntry{
		NormalizedName: normalizedName,
		ServingSize:    f.ServingSize,
		ServingUnit:    utils.NormalizeUnit(f.ServingUnit),
		Calories:       f.Calories,
		Protein:        f.Protein,
		Carbs:          f.Carbs,
		Fats:           f.Fats,
		Fiber:          f.Fiber,
		Sugar:          f.Sugar,
		Sodium:         f.Sodium,
		Potassium:      f.Potassium,
		Calcium:        f.Calcium,
		Iron:           f.Iron,
		VitaminC:       f.VitaminC,
		VitaminA:       f.VitaminA,
		DataSource:     f.DataSource,
	}
}

// GormNutritionCache is the Postgres-backed cache store.
type GormNutritionCache struct {
	db *gorm.DB
}

func NewGormNutritionCache(db *gorm.DB) *GormNutritionCache {
	return &GormNutritionCache{db: db}
}

func (c *GormNutritionCache) Lookup(ctx context.Context, normalizedName string) (*models.NutritionCacheEntry, error) {
	var entry models.NutritionCacheEntry
	err := c.db.WithContext(ctx).
		Where("normalized_name = ?", normalizedName).
		First(&entry).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &entry, nil
}

func (c *GormNutritionCache) Store(ctx context.Context, entry *models.NutritionCacheEntry) error {
	// Map assign so legitimate zeroes (carbs 0 for meats) and cleared
	// optional nutrients overwrite whatever the row held before.
	return c.db.WithContext(ctx).
		Where("normalized_name = ?", entry.NormalizedName).
		Assign(map[string]interface{}{
			"serving_size": entry.ServingSize,
			"serving_unit": entry.ServingUnit,
			"calories":     entry.Calories,
			"protein":      entry.Protein,
			"carbs":        entry.Carbs,
			"fats":         entry.Fats,
			"fiber":        entry.Fiber,
			"sugar":        entry.Sugar,
			"sodium":       entry.Sodium,
			"potassium":    entry.Potassium,
			"calcium":      entry.Calcium,
			"iron":         entry.Iron,
			"vitamin_c":    entry.VitaminC,
			"vitamin_a":    entry.VitaminA,
			"data_source":  entry.DataSource,
		}).
		FirstOrCreate(entry).Error
}

func (c *GormNutritionCache) PruneStale(ctx context.Context, olderThan time.Duration) (int64, error) {
	cutoff := time.Now().Add(-olderThan)
	res := c.db.WithContext(ctx).
		Where("updated_at < ? AND data_source = ?", cutoff, models.SourceUSDA).
		Delete(&models.NutritionCacheEntry{})
	return res.RowsAffected, res.Error
}
