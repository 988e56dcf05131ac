package routes

import (
	"backend/controllers"
	"backend/middlewares"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Controllers bundles the handler set SetupRouter wires up.
type Controllers struct {
	Auth     *controllers.AuthController
	User     *controllers.UserController
	Meal     *controllers.MealController
	Workout  *controllers.WorkoutController
	Food     *controllers.FoodController
	Goal     *controllers.GoalController
	Summary  *controllers.SummaryController
	Realtime *controllers.RealtimeController
}

func SetupRouter(db *gorm.DB, log *logrus.Logger, ctrl Controllers) *gin.Engine {
	r := gin.Default()
	r.Use(middlewares.RequestID(log))

	// Public auth routes
	auth := r.Group("/auth")
	{
		auth.POST("/register", ctrl.Auth.Register)
		auth.POST("/login", ctrl.Auth.Login)
	}

	protected := r.Group("/")
	protected.Use(middlewares.AuthMiddleware(db))
	{
		user := protected.Group("/user")
		{
			user.GET("/profile", ctrl.User.GetProfile)
			user.PUT("/profile", ctrl.User.UpdateProfile)
			user.DELETE("/account", ctrl.User.DeleteAccount)
		}

		meals := protected.Group("/meals")
		{
			meals.POST("/preview", ctrl.Meal.Preview)
			meals.POST("", ctrl.Meal.Create)
			meals.GET("", ctrl.Meal.List)
			meals.GET("/recent", ctrl.Meal.ListRecent)
			meals.GET("/history", ctrl.Meal.ListByDate)
			meals.GET("/:id", ctrl.Meal.Get)
			meals.PUT("/:id", ctrl.Meal.Update)
			meals.DELETE("/:id", ctrl.Meal.Delete)
		}

		workouts := protected.Group("/workouts")
		{
			workouts.POST("/preview", ctrl.Workout.Preview)
			workouts.POST("", ctrl.Workout.Create)
			workouts.GET("", ctrl.Workout.List)
			workouts.GET("/streak", ctrl.Workout.Streak)
			workouts.GET("/:id", ctrl.Workout.Get)
			workouts.PUT("/:id", ctrl.Workout.Update)
			workouts.DELETE("/:id", ctrl.Workout.Delete)
		}

		foods := protected.Group("/foods")
		{
			foods.GET("/search", ctrl.Food.Search)
			foods.POST("/resolve", ctrl.Food.Resolve)
		}

		goals := protected.Group("/goals")
		{
			goals.GET("", ctrl.Goal.Get)
			goals.PUT("", ctrl.Goal.Upsert)
			goals.GET("/progress", ctrl.Goal.Progress)
		}

		summaries := protected.Group("/summaries")
		{
			summaries.GET("/today", ctrl.Summary.Today)
			summaries.GET("/history", ctrl.Summary.History)
			summaries.GET("/:date", ctrl.Summary.ByDate)
			summaries.POST("/:date/rebuild", ctrl.Summary.Rebuild)
		}

		protected.GET("/ws/updates", ctrl.Realtime.UpdatesWS)
	}

	return r
}
