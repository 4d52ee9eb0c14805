package planner

import (
	"context"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"meal-planner/internal/database"
	"meal-planner/internal/mealplan"
	"meal-planner/internal/recipe"
)

func TestPlanRepository_RoundTrip(t *testing.T) {
	ctx := context.Background()
	db, err := database.NewDB(filepath.Join(t.TempDir(), "plan.db"), zap.NewNop())
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()
	repo := NewPlanRepository(db.SQL)

	state, err := repo.Load(ctx)
	if err != nil || state != nil {
		t.Fatalf("Expected nil state on a fresh database, got %+v (%v)", state, err)
	}

	servings := 3
	state = NewPlanState()
	state.UniquePerWeek = true
	state.LastGenerationError = "No lunch could be generated for 2024-03-04"
	state.Suggestions = []string{"No lunch recipes available for 2024-03-04; slot left empty"}
	dinner := mealplan.CustomMeal{
		ID:          "c1",
		Title:       "Takeaway",
		Servings:    &servings,
		Ingredients: []mealplan.CustomIngredient{{Quantity: 1, Name: "noodles"}},
	}
	state.Plan["2024-03-04"] = &mealplan.DayPlan{
		Breakfast: mealplan.NewRecipeMeal(recipe.Recipe{ID: "b1", Name: "Porridge", Servings: 2}),
		Dinner:    dinner,
		Snacks:    []mealplan.MealItem{mealplan.CustomMeal{ID: "c2", Title: "Apple"}},
	}
	state.Plan["2024-03-05"] = &mealplan.DayPlan{Lunch: mealplan.RecipeMeal{RecipeID: "l1", Title: "Soup"}}

	if err := repo.Save(ctx, state); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	got, err := repo.Load(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if !got.UniquePerWeek || got.LastGenerationError != state.LastGenerationError || len(got.Suggestions) != 1 {
		t.Errorf("Settings not restored: %+v", got)
	}
	if len(got.Plan) != 2 {
		t.Fatalf("Expected 2 days, got %d", len(got.Plan))
	}
	day := got.Plan["2024-03-04"]
	if mealplan.RecipeID(day.Breakfast) != "b1" {
		t.Errorf("Expected breakfast b1, got %q", mealplan.RecipeID(day.Breakfast))
	}
	custom, ok := day.Dinner.(mealplan.CustomMeal)
	if !ok || custom.Title != "Takeaway" || *custom.Servings != 3 {
		t.Errorf("Expected the custom dinner to survive, got %#v", day.Dinner)
	}
	if len(day.Snacks) != 1 {
		t.Errorf("Expected 1 snack, got %d", len(day.Snacks))
	}

	delete(state.Plan, "2024-03-05")
	if err := repo.Save(ctx, state); err != nil {
		t.Fatal(err)
	}
	got, _ = repo.Load(ctx)
	if _, ok := got.Plan["2024-03-05"]; ok {
		t.Error("Expected removed day to be deleted")
	}
}
