package services

import (
	"context"
	"fmt"
	"time"

	"backend/models"

	"gorm.io/gorm"
)

// MealService owns meal-log CRUD. Every item in a request goes through
// nutrition resolution; totals are recomputed from the item list on every
// mutation; the affected day's summary is rebuilt before the request
// returns.
type MealService struct {
	db        *gorm.DB
	nutrition *NutritionService
	summaries *SummaryService
}

func NewMealService(db *gorm.DB, nutrition *NutritionService, summaries *SummaryService) *MealService {
	return &MealService{db: db, nutrition: nutrition, summaries: summaries}
}

// MealRequest is the shared create/update/preview body. Preview and
// confirm validate it through the same routine; there is no persisted
// "pending meal" in between.
type MealRequest struct {
	Type  string      `json:"type" binding:"required"`
	AteAt time.Time   `json:"ate_at" binding:"required"`
	Items []FoodQuery `json:"items" binding:"required,min=1,dive"`
}

func ValidateMealRequest(req *MealRequest) error {
	if len(req.Items) == 0 {
		return fmt.Errorf("a meal needs at least one item")
	}
	for _, it := range req.Items {
		if it.FoodName == "" {
			return fmt.Errorf("every item needs a food_name")
		}
		if it.Quantity <= 0 {
			return fmt.Errorf("quantity for %q must be positive", it.FoodName)
		}
	}
	return nil
}

// resolveItems runs each requested item through the resolution chain and
// snapshots the results as meal items.
func (s *MealService) resolveItems(ctx context.Context, items []FoodQuery) ([]models.MealItem, error) {
	out := make([]models.MealItem, 0, len(items))
	for _, q := range items {
		food, err := s.nutrition.Resolve(ctx, q)
		if err != nil {
			return nil, err
		}
		out = append(out, models.MealItem{
			FoodName:   food.FoodName,
			Quantity:   food.Quantity,
			Unit:       food.Unit,
			Calories:   food.Calories,
			Protein:    food.Protein,
			Carbs:      food.Carbs,
			Fats:       food.Fats,
			Fiber:      food.Fiber,
			Sugar:      food.Sugar,
			Sodium:     food.Sodium,
			DataSource: food.DataSource,
		})
	}
	return out, nil
}

// Preview resolves the request without persisting anything: the same
// computation the confirm path runs, echoed back for confirmation.
func (s *MealService) Preview(ctx context.Context, req *MealRequest) (*models.MealLog, error) {
	if err := ValidateMealRequest(req); err != nil {
		return nil, err
	}
	items, err := s.resolveItems(ctx, req.Items)
	if err != nil {
		return nil, err
	}
	meal := &models.MealLog{Type: req.Type, AteAt: req.AteAt, Items: items}
	meal.RecomputeTotals()
	return meal, nil
}

// Create re-validates and commits, then rebuilds the affected day's
// summary eagerly.
func (s *MealService) Create(ctx context.Context, userID uint, req *MealRequest, loc *time.Location) (*models.MealLog, error) {
	if err := ValidateMealRequest(req); err != nil {
		return nil, err
	}
	items, err := s.resolveItems(ctx, req.Items)
	if err != nil {
		return nil, err
	}

	meal := &models.MealLog{UserID: userID, Type: req.Type, AteAt: req.AteAt, Items: items}
	meal.RecomputeTotals()
	if err := s.db.WithContext(ctx).Create(meal).Error; err != nil {
		return nil, err
	}

	if _, err := s.summaries.Rebuild(ctx, userID, req.AteAt, loc); err != nil {
		return nil, err
	}
	return meal, nil
}

func (s *MealService) Get(ctx context.Context, userID, mealID uint) (*models.MealLog, error) {
	var meal models.MealLog
	err := s.db.WithContext(ctx).
		Preload("Items").
		Where("id = ? AND user_id = ?", mealID, userID).
		First(&meal).Error
	if err != nil {
		return nil, err // may be gorm.ErrRecordNotFound
	}
	return &meal, nil
}

func (s *MealService) List(ctx context.Context, userID uint) ([]models.MealLog, error) {
	var meals []models.MealLog
	err := s.db.WithContext(ctx).
		Preload("Items").
		Where("user_id = ?", userID).
		Order("ate_at DESC").
		Find(&meals).Error
	return meals, err
}

func (s *MealService) ListByDateRange(ctx context.Context, userID uint, from, to time.Time) ([]models.MealLog, error) {
	var meals []models.MealLog
	err := s.db.WithContext(ctx).
		Preload("Items").
		Where("user_id = ? AND ate_at >= ? AND ate_at < ?", userID, from, to).
		Order("ate_at DESC").
		Find(&meals).Error
	return meals, err
}

func (s *MealService) ListRecent(ctx context.Context, userID uint, limit int) ([]models.MealLog, error) {
	if limit <= 0 {
		limit = 3
	}
	var meals []models.MealLog
	err := s.db.WithContext(ctx).
		Preload("Items").
		Where("user_id = ?", userID).
		Order("ate_at DESC").
		Limit(limit).
		Find(&meals).Error
	return meals, err
}

// Update replaces the meal's items wholesale and re-resolves nutrition.
// Both the old and new local dates get their summaries rebuilt in case the
// timestamp moved across a day boundary.
func (s *MealService) Update(ctx context.Context, userID, mealID uint, req *MealRequest, loc *time.Location) (*models.MealLog, error) {
	if err := ValidateMealRequest(req); err != nil {
		return nil, err
	}

	var meal models.MealLog
	if err := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", mealID, userID).
		First(&meal).Error; err != nil {
		return nil, err
	}
	oldAteAt := meal.AteAt

	items, err := s.resolveItems(ctx, req.Items)
	if err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).
		Where("meal_log_id = ?", meal.ID).
		Delete(&models.MealItem{}).Error; err != nil {
		return nil, err
	}

	meal.Type = req.Type
	meal.AteAt = req.AteAt
	meal.Items = items
	meal.RecomputeTotals()
	if err := s.db.WithContext(ctx).Save(&meal).Error; err != nil {
		return nil, err
	}

	if _, err := s.summaries.Rebuild(ctx, userID, oldAteAt, loc); err != nil {
		return nil, err
	}
	if LocalDateString(oldAteAt, loc) != LocalDateString(req.AteAt, loc) {
		if _, err := s.summaries.Rebuild(ctx, userID, req.AteAt, loc); err != nil {
			return nil, err
		}
	}

	var updated models.MealLog
	if err := s.db.WithContext(ctx).
		Preload("Items").
		First(&updated, meal.ID).Error; err != nil {
		return nil, err
	}
	return &updated, nil
}

func (s *MealService) Delete(ctx context.Context, userID, mealID uint, loc *time.Location) error {
	var meal models.MealLog
	if err := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", mealID, userID).
		First(&meal).Error; err != nil {
		return err
	}

	if err := s.db.WithContext(ctx).
		Where("meal_log_id = ?", meal.ID).
		Delete(&models.MealItem{}).Error; err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Delete(&meal).Error; err != nil {
		return err
	}

	_, err := s.summaries.Rebuild(ctx, userID, meal.AteAt, loc)
	return err
}
