package services

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"backend/models"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCache struct {
	entries   map[string]*models.NutritionCacheEntry
	stored    []*models.NutritionCacheEntry
	lookupErr error
}

func (f *fakeCache) Lookup(_ context.Context, name string) (*models.NutritionCacheEntry, error) {
	if f.lookupErr != nil {
		return nil, f.lookupErr
	}
	return f.entries[name], nil
}

func (f *fakeCache) Store(_ context.Context, entry *models.NutritionCacheEntry) error {
	f.stored = append(f.stored, entry)
	return nil
}

func (f *fakeCache) PruneStale(_ context.Context, _ time.Duration) (int64, error) {
	return 0, nil
}

type fakeSearcher struct {
	food  *ResolvedFood
	err   error
	calls int
}

func (f *fakeSearcher) LookupFood(_ context.Context, _ string) (*ResolvedFood, error) {
	f.calls++
	return f.food, f.err
}

type fakeEstimator struct {
	food  *ResolvedFood
	err   error
	calls int
}

func (f *fakeEstimator) EstimateNutrition(_ context.Context, foodName string, quantity float64, unit string) (*ResolvedFood, error) {
	f.calls++
	if f.food == nil {
		return nil, f.err
	}
	out := *f.food
	out.FoodName = foodName
	out.ServingSize = quantity
	out.ServingUnit = unit
	return &out, f.err
}

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func TestResolveCacheHitScalesWithoutExternalLookup(t *testing.T) {
	cache := &fakeCache{entries: map[string]*models.NutritionCacheEntry{
		"apple": {
			NormalizedName: "apple",
			ServingSize:    1,
			ServingUnit:    "piece",
			Calories:       95,
			Protein:        0.5,
			Carbs:          25,
			Fats:           0.3,
			DataSource:     models.SourceUSDA,
		},
	}}
	usda := &fakeSearcher{}
	est := &fakeEstimator{}
	svc := NewNutritionService(cache, usda, est, testLogger())

	food, err := svc.Resolve(context.Background(), FoodQuery{FoodName: " Apple ", Quantity: 2, Unit: "pieces"})
	require.NoError(t, err)

	assert.Equal(t, 190.0, food.Calories)
	assert.Equal(t, 1.0, food.Protein)
	assert.Equal(t, 50.0, food.Carbs)
	assert.Equal(t, 2.0, food.Quantity)
	assert.Equal(t, "piece", food.Unit)
	assert.Equal(t, models.SourceUSDA, food.DataSource)
	assert.Zero(t, usda.calls, "cache hit must not reach the external database")
	assert.Zero(t, est.calls)
}

func TestResolveUSDAHitScalesAndCaches(t *testing.T) {
	cache := &fakeCache{entries: map[string]*models.NutritionCacheEntry{}}
	usda := &fakeSearcher{food: &ResolvedFood{
		FoodName:    "chicken breast",
		Calories:    165,
		Protein:     31,
		Carbs:       0,
		Fats:        3.6,
		ServingSize: 100,
		ServingUnit: "g",
		DataSource:  models.SourceUSDA,
	}}
	svc := NewNutritionService(cache, usda, &fakeEstimator{}, testLogger())

	food, err := svc.Resolve(context.Background(), FoodQuery{FoodName: "Chicken Breast", Quantity: 150, Unit: "g"})
	require.NoError(t, err)

	assert.InDelta(t, 247.5, food.Calories, 0.001)
	assert.InDelta(t, 46.5, food.Protein, 0.001)
	assert.Equal(t, models.SourceUSDA, food.DataSource)

	require.Len(t, cache.stored, 1, "authoritative results must be cached")
	assert.Equal(t, "chicken breast", cache.stored[0].NormalizedName)
	assert.Equal(t, 165.0, cache.stored[0].Calories, "cache keeps per-serving values, not scaled ones")
}

func TestResolveWeightToWeightUnitConversion(t *testing.T) {
	usda := &fakeSearcher{food: &ResolvedFood{
		FoodName:    "ground beef",
		Calories:    250,
		ServingSize: 100,
		ServingUnit: "g",
		DataSource:  models.SourceUSDA,
	}}
	svc := NewNutritionService(&fakeCache{}, usda, &fakeEstimator{}, testLogger())

	// 0.5 lb = 226.796 g → ratio 2.26796.
	food, err := svc.Resolve(context.Background(), FoodQuery{FoodName: "ground beef", Quantity: 0.5, Unit: "lbs"})
	require.NoError(t, err)
	assert.InDelta(t, 566.99, food.Calories, 0.01)
	assert.Equal(t, "lb", food.Unit)
}

func TestResolveCrossCategoryFallsBackToPerServing(t *testing.T) {
	usda := &fakeSearcher{food: &ResolvedFood{
		FoodName:    "grilled salmon",
		Calories:    208,
		ServingSize: 100,
		ServingUnit: "g",
		DataSource:  models.SourceUSDA,
	}}
	svc := NewNutritionService(&fakeCache{}, usda, &fakeEstimator{}, testLogger())

	// No density entry for salmon, so cup→g cannot be bridged. Soft failure:
	// per-serving values come back unscaled.
	food, err := svc.Resolve(context.Background(), FoodQuery{FoodName: "grilled salmon", Quantity: 2, Unit: "cups"})
	require.NoError(t, err)
	assert.Equal(t, 208.0, food.Calories)
	assert.Equal(t, 100.0, food.Quantity)
	assert.Equal(t, "g", food.Unit)
}

func TestResolveDensityBridgesVolumeToWeight(t *testing.T) {
	usda := &fakeSearcher{food: &ResolvedFood{
		FoodName:    "whole milk",
		Calories:    61,
		ServingSize: 100,
		ServingUnit: "g",
		DataSource:  models.SourceUSDA,
	}}
	svc := NewNutritionService(&fakeCache{}, usda, &fakeEstimator{}, testLogger())

	// 1 cup = 240 ml, milk density 1.03 g/ml → 247.2 g → ratio 2.472.
	food, err := svc.Resolve(context.Background(), FoodQuery{FoodName: "whole milk", Quantity: 1, Unit: "cup"})
	require.NoError(t, err)
	assert.InDelta(t, 150.79, food.Calories, 0.01)
}

func TestResolveFallsBackToEstimateAndNeverCachesIt(t *testing.T) {
	cache := &fakeCache{}
	usda := &fakeSearcher{} // no match
	est := &fakeEstimator{food: &ResolvedFood{
		Calories:   540,
		Protein:    22,
		Carbs:      45,
		Fats:       30,
		DataSource: models.SourceAIEstimate,
		Confidence: "medium",
		Rationale:  "typical restaurant burrito with rice, beans and cheese",
	}}
	svc := NewNutritionService(cache, usda, est, testLogger())

	food, err := svc.Resolve(context.Background(), FoodQuery{FoodName: "abuela's burrito", Quantity: 1, Unit: "piece"})
	require.NoError(t, err)

	assert.Equal(t, models.SourceAIEstimate, food.DataSource)
	assert.NotEmpty(t, food.Rationale)
	assert.Equal(t, 540.0, food.Calories)
	assert.Equal(t, 1, usda.calls, "estimate runs only after the database misses")
	assert.Empty(t, cache.stored, "estimates must never be cached")
}

func TestResolveUnresolvedWhenAllTiersFail(t *testing.T) {
	cache := &fakeCache{}
	usda := &fakeSearcher{err: errors.New("fdc: 503")}
	est := &fakeEstimator{err: errors.New("gemini: quota exceeded")}
	svc := NewNutritionService(cache, usda, est, testLogger())

	_, err := svc.Resolve(context.Background(), FoodQuery{FoodName: "mystery stew", Quantity: 1, Unit: "bowl"})
	require.Error(t, err)

	var unresolved *UnresolvedFoodError
	require.ErrorAs(t, err, &unresolved)
	assert.Equal(t, "mystery stew", unresolved.Name)
}

func TestResolveWithoutEstimatorReturnsUnresolved(t *testing.T) {
	svc := NewNutritionService(&fakeCache{}, &fakeSearcher{}, nil, testLogger())

	_, err := svc.Resolve(context.Background(), FoodQuery{FoodName: "unknown", Quantity: 1, Unit: "g"})
	var unresolved *UnresolvedFoodError
	require.ErrorAs(t, err, &unresolved)
}

func TestResolveCacheReadErrorDowngradesToMiss(t *testing.T) {
	cache := &fakeCache{lookupErr: errors.New("pg: connection reset")}
	usda := &fakeSearcher{food: &ResolvedFood{
		FoodName:    "banana",
		Calories:    89,
		ServingSize: 100,
		ServingUnit: "g",
		DataSource:  models.SourceUSDA,
	}}
	svc := NewNutritionService(cache, usda, &fakeEstimator{}, testLogger())

	food, err := svc.Resolve(context.Background(), FoodQuery{FoodName: "banana", Quantity: 100, Unit: "g"})
	require.NoError(t, err)
	assert.Equal(t, 89.0, food.Calories)
	assert.Equal(t, 1, usda.calls)
}

func TestGormNutritionCacheStoreOverwritesWithZeroes(t *testing.T) {
	db := newTestDB(t)
	cache := NewGormNutritionCache(db)
	ctx := context.Background()

	fiber := 2.5
	require.NoError(t, cache.Store(ctx, &models.NutritionCacheEntry{
		NormalizedName: "chicken breast",
		ServingSize:    100,
		ServingUnit:    "g",
		Calories:       165,
		Protein:        31,
		Carbs:          9,
		Fats:           3.6,
		Fiber:          &fiber,
		DataSource:     models.SourceUSDA,
	}))

	// Fresh authoritative record: carbs legitimately 0, fiber unreported.
	// Both must replace the old values, not be skipped as zero fields.
	require.NoError(t, cache.Store(ctx, &models.NutritionCacheEntry{
		NormalizedName: "chicken breast",
		ServingSize:    100,
		ServingUnit:    "g",
		Calories:       120,
		Protein:        26,
		Carbs:          0,
		Fats:           2.6,
		DataSource:     models.SourceUSDA,
	}))

	got, err := cache.Lookup(ctx, "chicken breast")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 120.0, got.Calories)
	assert.Equal(t, 0.0, got.Carbs)
	assert.Nil(t, got.Fiber)
}

func TestNormalizeFoodName(t *testing.T) {
	assert.Equal(t, "chicken breast", NormalizeFoodName("  Chicken Breast "))
	assert.Equal(t, "apple", NormalizeFoodName("APPLE"))
}
