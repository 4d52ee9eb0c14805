package planner

import (
	"context"
	"fmt"

	"meal-planner/internal/mealplan"
	"meal-planner/internal/recipe"
)

// GetAlternativeRecipes lists recipes that could replace the one in a slot.
// An empty result is not an error.
func (e *Engine) GetAlternativeRecipes(ctx context.Context, state *PlanState, date string, mt recipe.MealType, currentRecipeID string) []recipe.Recipe {
	if _, ok := recipe.ParseMealType(string(mt)); !ok {
		return []recipe.Recipe{}
	}

	dietary := recipe.Filter(e.pool.Candidates(ctx, mt, nil), e.constraints)

	var used map[string]bool
	if state.UniquePerWeek {
		used = state.Plan.RecipeIDs()
	}

	out := make([]recipe.Recipe, 0, len(dietary))
	for _, r := range dietary {
		if r.ID == currentRecipeID || used[r.ID] {
			continue
		}
		out = append(out, r)
	}
	return out
}

// SwapMeal puts newRecipeID into a main slot of an existing day. On failure
// the plan is left untouched and the reason is stored as the plan-level
// error.
func (e *Engine) SwapMeal(state *PlanState, date string, mt recipe.MealType, newRecipeID string) bool {
	fail := func(format string, args ...any) bool {
		state.LastGenerationError = "Cannot swap meal: " + fmt.Sprintf(format, args...)
		return false
	}

	if _, ok := recipe.ParseMealType(string(mt)); !ok {
		return fail("%q is not a meal slot", mt)
	}
	r, ok := e.pool.Recipe(newRecipeID)
	if !ok {
		return fail("recipe %q not found", newRecipeID)
	}
	day := state.Plan[date]
	if day == nil {
		return fail("no meal plan for %s", date)
	}

	day.SetSlot(mt, mealplan.NewRecipeMeal(r))
	return true
}
