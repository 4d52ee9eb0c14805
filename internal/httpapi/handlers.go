package httpapi

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"meal-planner/internal/mealplan"
	"meal-planner/internal/metrics"
	"meal-planner/internal/planner"
	"meal-planner/internal/recipe"
)

type rangeRequest struct {
	Start string `json:"start" binding:"required"`
	End   string `json:"end" binding:"required"`
}

type settingsRequest struct {
	UniquePerWeek *bool `json:"unique_per_week" binding:"required"`
}

type swapRequest struct {
	RecipeID string `json:"recipe_id" binding:"required"`
}

type servingsRequest struct {
	Servings int `json:"servings"`
}

type customMealRequest struct {
	Title       string                      `json:"title" binding:"required"`
	Calories    *float64                    `json:"calories"`
	Protein     *float64                    `json:"protein"`
	Carbs       *float64                    `json:"carbs"`
	Fat         *float64                    `json:"fat"`
	Servings    *int                        `json:"servings"`
	Ingredients []mealplan.CustomIngredient `json:"ingredients"`
}

func (r customMealRequest) meal() mealplan.CustomMeal {
	m := mealplan.NewCustomMeal(r.Title, r.Ingredients)
	m.Calories, m.Protein, m.Carbs, m.Fat = r.Calories, r.Protein, r.Carbs, r.Fat
	m.Servings = r.Servings
	return m
}

type snackRequest struct {
	RecipeID string             `json:"recipe_id"`
	Custom   *customMealRequest `json:"custom"`
}

type checkRequest struct {
	Checked bool `json:"checked"`
}

type healthResponse struct {
	Status        string            `json:"status"`
	Recipes       int               `json:"recipes"`
	StoredRecipes int               `json:"stored_recipes"`
	System        metrics.SysHealth `json:"system"`
}

func (h *handler) health(c *gin.Context) {
	resp := healthResponse{Status: "ok", System: metrics.GetSysHealth(h.DataPath)}
	if h.Catalog != nil {
		resp.Recipes = h.Catalog.Len()
	}
	if h.Recipes != nil {
		n, err := h.Recipes.Count(c.Request.Context())
		if err != nil {
			h.logger.Warn("failed to count stored recipes", zap.Error(err))
		}
		resp.StoredRecipes = n
	}
	c.JSON(http.StatusOK, resp)
}

func mealType(c *gin.Context) (recipe.MealType, bool) {
	mt, ok := recipe.ParseMealType(c.Param("mealType"))
	if !ok {
		c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{
			Code:    CodeUnknownMeal,
			Message: "unknown meal type " + strconv.Quote(c.Param("mealType")),
		})
	}
	return mt, ok
}

// respondGeneration answers 200 when at least one slot was filled and 422
// otherwise; the body is the GenerationResult either way.
func respondGeneration(c *gin.Context, res planner.GenerationResult) {
	status := http.StatusOK
	if !res.Success {
		status = http.StatusUnprocessableEntity
	}
	c.JSON(status, res)
}

func (h *handler) getPlan(c *gin.Context) {
	state, err := h.Planner.Snapshot(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	for _, d := range []string{c.Query("start"), c.Query("end")} {
		if d == "" {
			continue
		}
		if _, err := mealplan.ParseDate(d); err != nil {
			writeError(c, planner.ErrInvalidDate)
			return
		}
	}
	state.Plan = state.Plan.Range(c.Query("start"), c.Query("end"))
	c.JSON(http.StatusOK, state)
}

func (h *handler) generateWeek(c *gin.Context) {
	var req rangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	respondGeneration(c, h.Planner.GenerateWeeklyMealPlan(c.Request.Context(), req.Start, req.End))
}

func (h *handler) generateDay(c *gin.Context) {
	respondGeneration(c, h.Planner.GenerateAllMealsForDay(c.Request.Context(), c.Param("date"), nil))
}

func (h *handler) generateMeal(c *gin.Context) {
	mt, ok := mealType(c)
	if !ok {
		return
	}
	respondGeneration(c, h.Planner.GenerateMealPlan(c.Request.Context(), c.Param("date"), mt))
}

func (h *handler) clearDay(c *gin.Context) {
	if err := h.Planner.ClearDay(c.Request.Context(), c.Param("date")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handler) updateSettings(c *gin.Context) {
	var req settingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	if err := h.Planner.SetUniquePerWeek(c.Request.Context(), *req.UniquePerWeek); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"unique_per_week": *req.UniquePerWeek})
}

func (h *handler) clearError(c *gin.Context) {
	if err := h.Planner.ClearGenerationError(c.Request.Context()); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handler) alternatives(c *gin.Context) {
	mt, ok := mealType(c)
	if !ok {
		return
	}
	recs, err := h.Planner.GetAlternativeRecipes(c.Request.Context(), c.Param("date"), mt, c.Query("current"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, recs)
}

func (h *handler) swapMeal(c *gin.Context) {
	mt, ok := mealType(c)
	if !ok {
		return
	}
	var req swapRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	ctx := c.Request.Context()
	if !h.Planner.SwapMeal(ctx, c.Param("date"), mt, req.RecipeID) {
		msg := "swap rejected"
		if state, err := h.Planner.Snapshot(ctx); err == nil {
			msg = state.LastGenerationError
		}
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, ErrorResponse{Code: CodeSwapRejected, Message: msg})
		return
	}
	h.respondDay(c, http.StatusOK)
}

func (h *handler) updateServings(c *gin.Context) {
	mt, ok := mealType(c)
	if !ok {
		return
	}
	var req servingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	if err := h.Planner.UpdateMealServings(c.Request.Context(), c.Param("date"), mt, req.Servings); err != nil {
		writeError(c, err)
		return
	}
	h.respondDay(c, http.StatusOK)
}

func (h *handler) assignCustom(c *gin.Context) {
	mt, ok := mealType(c)
	if !ok {
		return
	}
	var req customMealRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	meal, err := h.Planner.AssignCustomMeal(c.Request.Context(), c.Param("date"), mt, req.meal())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, meal)
}

func (h *handler) addSnack(c *gin.Context) {
	var req snackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	var item mealplan.MealItem
	switch {
	case req.Custom != nil:
		item = req.Custom.meal()
	case req.RecipeID != "":
		r, ok := h.Planner.Resolver().Recipe(req.RecipeID)
		if !ok {
			writeError(c, planner.ErrRecipeNotFound)
			return
		}
		item = mealplan.NewRecipeMeal(r)
	default:
		badRequest(c, "recipe_id or custom is required")
		return
	}

	if err := h.Planner.AddSnack(c.Request.Context(), c.Param("date"), item); err != nil {
		writeError(c, err)
		return
	}
	h.respondDay(c, http.StatusCreated)
}

func (h *handler) removeSnack(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		badRequest(c, "snack index must be a number")
		return
	}
	if err := h.Planner.RemoveSnack(c.Request.Context(), c.Param("date"), index); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// respondDay writes the current DayPlan for the :date parameter.
func (h *handler) respondDay(c *gin.Context, status int) {
	state, err := h.Planner.Snapshot(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	day := state.Plan.Day(c.Param("date"))
	if day == nil {
		day = &mealplan.DayPlan{}
	}
	c.JSON(status, day)
}

func (h *handler) listRecipes(c *gin.Context) {
	recs := h.Catalog.All()
	if q := c.Query("meal_type"); q != "" {
		mt, ok := recipe.ParseMealType(q)
		if !ok {
			writeError(c, planner.ErrUnknownMealType)
			return
		}
		recs = recipe.ForMealType(recs, mt)
	}
	c.JSON(http.StatusOK, recs)
}

func (h *handler) recipeUsage(c *gin.Context) {
	id := c.Param("id")
	c.JSON(http.StatusOK, gin.H{
		"recipe_id": id,
		"used":      h.Planner.IsRecipeUsedInMealPlan(c.Request.Context(), id),
	})
}

func (h *handler) generateGroceries(c *gin.Context) {
	var req rangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	ctx := c.Request.Context()
	items, err := h.Planner.GenerateGroceryList(ctx, req.Start, req.End)
	if err != nil {
		writeError(c, err)
		return
	}
	list, err := h.Lists.Replace(ctx, req.Start, req.End, items)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *handler) getGroceries(c *gin.Context) {
	list, err := h.Lists.GetByRange(c.Request.Context(), c.Query("start"), c.Query("end"))
	if err != nil {
		writeError(c, err)
		return
	}
	if list == nil {
		c.AbortWithStatusJSON(http.StatusNotFound, ErrorResponse{Code: CodeNotFound, Message: "no shopping list for that range"})
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *handler) latestGroceries(c *gin.Context) {
	list, err := h.Lists.Latest(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	if list == nil {
		c.AbortWithStatusJSON(http.StatusNotFound, ErrorResponse{Code: CodeNotFound, Message: "no shopping list yet"})
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *handler) checkItem(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		badRequest(c, "list id must be a number")
		return
	}
	var req checkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	list, err := h.Lists.SetChecked(c.Request.Context(), id, c.Param("ingredient"), req.Checked)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *handler) metricsSummary(c *gin.Context) {
	if h.Metrics == nil {
		c.JSON(http.StatusOK, []metrics.DailySummary{})
		return
	}
	days, err := strconv.Atoi(c.DefaultQuery("days", "7"))
	if err != nil || days < 1 {
		badRequest(c, "days must be a positive number")
		return
	}
	summary, err := h.Metrics.GetDailySummary(c.Request.Context(), days)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}
