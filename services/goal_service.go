package services

import (
	"context"
	"errors"
	"time"

	"backend/models"

	"gorm.io/gorm"
)

// GoalService owns each user's daily targets and computes progress against
// the derived daily summary.
type GoalService struct {
	db        *gorm.DB
	summaries *SummaryService
}

func NewGoalService(db *gorm.DB, summaries *SummaryService) *GoalService {
	return &GoalService{db: db, summaries: summaries}
}

type GoalInput struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fats     float64 `json:"fats"`
	BurnGoal float64 `json:"burn_goal"`
}

func (s *GoalService) Upsert(ctx context.Context, userID uint, in GoalInput) error {
	var goal models.DailyGoal
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&goal).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		goal = models.DailyGoal{
			UserID:   userID,
			Calories: in.Calories,
			Protein:  in.Protein,
			Carbs:    in.Carbs,
			Fats:     in.Fats,
			BurnGoal: in.BurnGoal,
		}
		return s.db.WithContext(ctx).Create(&goal).Error
	}
	if err != nil {
		return err
	}

	goal.Calories = in.Calories
	goal.Protein = in.Protein
	goal.Carbs = in.Carbs
	goal.Fats = in.Fats
	goal.BurnGoal = in.BurnGoal
	return s.db.WithContext(ctx).Save(&goal).Error
}

func (s *GoalService) Get(ctx context.Context, userID uint) (*models.DailyGoal, error) {
	var goal models.DailyGoal
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&goal).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &models.DailyGoal{UserID: userID}, nil
	}
	if err != nil {
		return nil, err
	}
	return &goal, nil
}

// Progress reports consumed vs goal for one local date, with percentages
// capped at 1.
func (s *GoalService) Progress(ctx context.Context, userID uint, day time.Time, loc *time.Location) (*models.DailyGoal, map[string]any, error) {
	goal, err := s.Get(ctx, userID)
	if err != nil {
		return nil, nil, err
	}

	summary, err := s.summaries.ByDate(ctx, userID, LocalDateString(day, loc))
	if err != nil {
		return goal, nil, err
	}

	pct := func(consumed, target float64) float64 {
		if target <= 0 {
			return 0
		}
		p := consumed / target
		if p > 1 {
			return 1
		}
		return p
	}

	progress := map[string]any{
		"calories": map[string]float64{"consumed": summary.CaloriesConsumed, "goal": goal.Calories, "percent": pct(summary.CaloriesConsumed, goal.Calories)},
		"protein":  map[string]float64{"consumed": summary.Protein, "goal": goal.Protein, "percent": pct(summary.Protein, goal.Protein)},
		"carbs":    map[string]float64{"consumed": summary.Carbs, "goal": goal.Carbs, "percent": pct(summary.Carbs, goal.Carbs)},
		"fats":     map[string]float64{"consumed": summary.Fats, "goal": goal.Fats, "percent": pct(summary.Fats, goal.Fats)},
		"burned":   map[string]float64{"consumed": summary.CaloriesBurned, "goal": goal.BurnGoal, "percent": pct(summary.CaloriesBurned, goal.BurnGoal)},
	}
	return goal, progress, nil
}
