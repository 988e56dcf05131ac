package main

import (
	"context"
	"os"

	"backend/config"
	"backend/controllers"
	"backend/routes"
	"backend/services"
	"backend/utils"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

func main() {
	_ = godotenv.Load()

	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})
	if lvl, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL")); err == nil {
		log.SetLevel(lvl)
	}

	db, err := config.InitDB()
	if err != nil {
		log.WithError(err).Fatal("database init failed")
	}

	ctx := context.Background()

	hub := services.NewRealtimeHub()
	usda := services.NewUSDAService()
	cache := services.NewGormNutritionCache(db)

	nutrition := services.NewNutritionService(cache, usda, nil, log)
	estimator, err := services.NewGeminiEstimator(ctx, os.Getenv("GEMINI_API_KEY"))
	if err != nil {
		log.WithError(err).Warn("Gemini estimator unavailable; unresolved foods will not fall back to estimates")
	} else {
		nutrition = services.NewNutritionService(cache, usda, estimator, log)
	}

	uploader, err := utils.NewS3Uploader(ctx)
	if err != nil {
		log.WithError(err).Warn("S3 uploader unavailable; profile picture uploads disabled")
		uploader = nil
	}

	summaries := services.NewSummaryService(db, hub, log)
	meals := services.NewMealService(db, nutrition, summaries)
	workouts := services.NewWorkoutService(db, summaries)
	goals := services.NewGoalService(db, summaries)
	auth := services.NewAuthService(db)
	users := services.NewUserService(db, uploader)

	if n, err := nutrition.PruneStaleCache(ctx); err != nil {
		log.WithError(err).Warn("nutrition cache prune failed")
	} else if n > 0 {
		log.WithField("pruned", n).Info("pruned stale nutrition cache entries")
	}

	r := routes.SetupRouter(db, log, routes.Controllers{
		Auth:     controllers.NewAuthController(auth),
		User:     controllers.NewUserController(users),
		Meal:     controllers.NewMealController(meals),
		Workout:  controllers.NewWorkoutController(workouts),
		Food:     controllers.NewFoodController(usda, nutrition),
		Goal:     controllers.NewGoalController(goals),
		Summary:  controllers.NewSummaryController(summaries),
		Realtime: controllers.NewRealtimeController(hub),
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	if err := r.Run(":" + port); err != nil {
		log.WithError(err).Fatal("server exited")
	}
}
