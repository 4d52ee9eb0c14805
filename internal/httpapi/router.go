// Package httpapi exposes the meal planner over REST.
package httpapi

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"meal-planner/internal/catalog"
	"meal-planner/internal/metrics"
	"meal-planner/internal/planner"
	"meal-planner/internal/recipe"
	"meal-planner/internal/shopping"
)

// Deps are the services behind the API. Metrics and Recipes may be nil.
type Deps struct {
	Planner  *planner.Service
	Catalog  *catalog.Provider
	Recipes  *recipe.Repository
	Lists    *shopping.Repository
	Metrics  *metrics.Store
	DataPath string
}

type handler struct {
	Deps
	logger *zap.Logger
}

// NewRouter builds the gin engine with every route registered.
func NewRouter(deps Deps, logger *zap.Logger) *gin.Engine {
	router := gin.New()
	router.Use(recovery(logger))
	router.Use(requestid.New())
	router.Use(requestLogger(logger))
	router.Use(cors.New(cors.Config{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "X-Request-ID"},
		ExposeHeaders: []string{"Content-Length", "X-Request-ID"},
		MaxAge:        12 * time.Hour,
	}))

	h := &handler{Deps: deps, logger: logger}

	router.GET("/health", h.health)

	api := router.Group("/api/v1")
	{
		plan := api.Group("/plan")
		plan.GET("", h.getPlan)
		plan.POST("/week", h.generateWeek)
		plan.PUT("/settings", h.updateSettings)
		plan.DELETE("/error", h.clearError)

		day := plan.Group("/days/:date")
		day.POST("", h.generateDay)
		day.DELETE("", h.clearDay)
		day.POST("/snacks", h.addSnack)
		day.DELETE("/snacks/:index", h.removeSnack)

		meal := day.Group("/meals/:mealType")
		meal.POST("", h.generateMeal)
		meal.GET("/alternatives", h.alternatives)
		meal.PUT("/recipe", h.swapMeal)
		meal.PUT("/servings", h.updateServings)
		meal.PUT("/custom", h.assignCustom)

		api.GET("/recipes", h.listRecipes)
		api.GET("/recipes/:id/usage", h.recipeUsage)

		api.POST("/groceries", h.generateGroceries)
		api.GET("/groceries", h.getGroceries)
		api.GET("/groceries/latest", h.latestGroceries)
		api.PUT("/groceries/:id/items/:ingredient", h.checkItem)

		api.GET("/metrics/summary", h.metricsSummary)
	}
	return router
}
