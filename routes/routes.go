package routes

import (
	"github.com/SzucsJuan/meals-fit-barreto-szucs-sub001/controllers"
	"github.com/SzucsJuan/meals-fit-barreto-szucs-sub001/middlewares"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Controllers struct {
	Ingredients  *controllers.IngredientController
	Recipes      *controllers.RecipeController
	Goals        *controllers.GoalController
	Achievements *controllers.AchievementController
	MealLogs     *controllers.MealLogController
}

func SetupRouter(ct Controllers) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middlewares.RequestLogger())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api/v1")
	{
		api.POST("/ingredients", ct.Ingredients.Create)
		api.GET("/ingredients", ct.Ingredients.List)
		api.GET("/ingredients/:id", ct.Ingredients.Get)
		api.PATCH("/ingredients/:id", ct.Ingredients.Update)

		api.POST("/recipes", ct.Recipes.Create)
		api.GET("/recipes/:id", ct.Recipes.Get)
		api.DELETE("/recipes/:id", ct.Recipes.Delete)
		api.PUT("/recipes/:id/ingredients", ct.Recipes.SyncIngredients)
		api.GET("/users/:id/recipes", ct.Recipes.ListForUser)

		api.POST("/plans", ct.Goals.GeneratePlan)
		api.GET("/users/:id/plans", ct.Goals.History)

		api.GET("/achievements", ct.Achievements.Catalog)
		api.GET("/users/:id/achievements", ct.Achievements.ListForUser)

		api.POST("/meal-logs", ct.MealLogs.Create)
		api.GET("/users/:id/meal-logs", ct.MealLogs.ListForUser)
	}

	return r
}
