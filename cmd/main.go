package main

import (
	"github.com/SzucsJuan/meals-fit-barreto-szucs-sub001/config"
	"github.com/SzucsJuan/meals-fit-barreto-szucs-sub001/controllers"
	"github.com/SzucsJuan/meals-fit-barreto-szucs-sub001/queue"
	"github.com/SzucsJuan/meals-fit-barreto-szucs-sub001/routes"
	"github.com/SzucsJuan/meals-fit-barreto-szucs-sub001/services"
	"github.com/SzucsJuan/meals-fit-barreto-szucs-sub001/utils"

	"go.uber.org/zap"
)

func main() {
	utils.InitLogger()
	defer utils.Logger.Sync()
	utils.InitMetrics()

	cfg := config.Load()

	db, err := config.InitDB(cfg)
	if err != nil {
		utils.Logger.Fatal("database connection failed", zap.Error(err))
	}

	bus := services.NewEventBus(utils.Logger)
	macros := services.NewRecipeMacroService(db, utils.Logger)

	// Recompute tasks run off the request path, at least once per task.
	var recomputeQueue queue.Queue
	if cfg.Queue.RedisAddr != "" {
		rq := queue.NewRedisQueue(cfg.Queue.RedisAddr, cfg.Queue.Workers, cfg.Queue.MaxRetries, macros.Recompute, utils.Logger)
		rq.Start()
		defer rq.Stop()
		recomputeQueue = rq
	} else {
		mq := queue.NewMemoryQueue(cfg.Queue.Workers, cfg.Queue.MaxRetries, macros.Recompute, utils.Logger)
		mq.Start()
		defer mq.Stop()
		recomputeQueue = mq
	}

	propagator := services.NewRecomputePropagator(db, recomputeQueue, utils.Logger)
	bus.SubscribeIngredientChanged(propagator.OnIngredientChanged)

	ingredients := services.NewIngredientService(db, bus, utils.Logger)
	achievements := services.NewAchievementService(db, utils.Logger)
	recipesSvc := services.NewRecipeService(db, achievements, utils.Logger)
	mealLogs := services.NewMealLogService(db, achievements, utils.Logger)
	aiClient := services.NewNutritionAIService(cfg.AI, utils.Logger)
	plans := services.NewGoalPlanService(db, aiClient, utils.Logger)

	router := routes.SetupRouter(routes.Controllers{
		Ingredients:  controllers.NewIngredientController(ingredients),
		Recipes:      controllers.NewRecipeController(recipesSvc, macros),
		Goals:        controllers.NewGoalController(plans),
		Achievements: controllers.NewAchievementController(achievements),
		MealLogs:     controllers.NewMealLogController(mealLogs),
	})

	utils.Logger.Info("server starting", zap.String("port", cfg.Port))
	if err := router.Run(":" + cfg.Port); err != nil {
		utils.Logger.Fatal("server stopped", zap.Error(err))
	}
}
