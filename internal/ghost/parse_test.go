package ghost

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"

	"meal-planner/internal/config"
	"meal-planner/internal/mealplan"
	"meal-planner/internal/recipe"
	"meal-planner/internal/shopping"
)

const recipeHTML = `<p><i>Imported from: <a href="https://example.com">example</a></i></p>
<h2>Ingredients</h2><ul><li>1 1/2 cups rolled oats</li><li>2  cups
 milk</li><li>1 banana, sliced</li></ul>
<h2>Instructions</h2><ol><li>Simmer the oats in milk.</li><li>Top with banana.</li></ol>
<hr><p><strong>Prep Time:</strong> 5 mins | <strong>Cook Time:</strong> 1 hr 10 min | <strong>Servings:</strong> 2 people</p>
<p>Calories: 350 kcal | Protein: 12 g | Fiber: 6 g</p>`

func TestParsePost(t *testing.T) {
	post := Post{
		ID:    "p1",
		Title: " Banana Oats ",
		HTML:  recipeHTML,
		Tags:  []Tag{{Name: "Breakfast", Slug: "breakfast"}, {Name: "Vegetarian", Slug: "vegetarian"}},
	}

	r, err := ParsePost(post)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if r.Name != "Banana Oats" || r.Source != "ghost" {
		t.Errorf("Unexpected identity: %q / %q", r.Name, r.Source)
	}
	if len(r.Ingredients) != 3 || r.Ingredients[1] != "2 cups milk" {
		t.Errorf("Unexpected ingredients: %q", r.Ingredients)
	}
	if len(r.Instructions) != 2 {
		t.Errorf("Expected 2 steps, got %d", len(r.Instructions))
	}
	if r.PrepTime != 5 || r.CookTime != 70 || r.Servings != 2 {
		t.Errorf("Expected 5/70 min and 2 servings, got %d/%d and %d", r.PrepTime, r.CookTime, r.Servings)
	}
	if r.Nutrition.Calories != 350 || r.Nutrition.Protein != 12 || r.Nutrition.Fiber == nil || *r.Nutrition.Fiber != 6 {
		t.Errorf("Unexpected nutrition: %+v", r.Nutrition)
	}
	if r.MealType != recipe.Breakfast {
		t.Errorf("Expected breakfast from tags, got %q", r.MealType)
	}
	if len(r.DietaryPreferences) != 1 || r.DietaryPreferences[0] != "vegetarian" {
		t.Errorf("Expected vegetarian preference, got %v", r.DietaryPreferences)
	}

	if _, err := ParsePost(Post{ID: "x", HTML: "<p>Announcement</p>"}); !errors.Is(err, ErrNoIngredients) {
		t.Errorf("Expected ErrNoIngredients, got %v", err)
	}
}

func TestRecipeSource_Fetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"posts": [
			{"id": "r1", "title": "Stew", "html": %q},
			{"id": "n1", "title": "News", "html": "<p>No recipe here</p>"}
		], "meta": {"pagination": {"next": null}}}`, "<h2>Ingredients</h2><ul><li>500 g beef</li></ul>")
	}))
	defer server.Close()

	src := NewRecipeSource(NewClient(&config.Config{GhostURL: server.URL, GhostContentKey: "k"}), zap.NewNop())
	recs, err := src.Fetch(context.Background(), recipe.Dinner)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(recs) != 1 || recs[0].ID != "r1" || recs[0].MealType != recipe.Dinner {
		t.Errorf("Expected only the recipe post pinned to dinner, got %+v", recs)
	}
}

func TestFormatPlanHTML(t *testing.T) {
	servings := 4
	plan := mealplan.MealPlan{
		"2024-03-04": {
			Dinner: mealplan.RecipeMeal{RecipeID: "r1", Title: "Fish & Chips", Servings: &servings},
			Snacks: []mealplan.MealItem{mealplan.CustomMeal{ID: "c1", Title: "Apple"}},
		},
	}
	groceries := []shopping.GroceryItem{{Name: "potato (1 kg)", Category: "Vegetables"}}

	out := FormatPlanHTML(plan, groceries)
	for _, want := range []string{
		"<h2>Monday, March 4</h2>",
		"<strong>Dinner:</strong> Fish &amp; Chips (4 servings)",
		"<strong>Snack:</strong> Apple",
		"<h3>Vegetables</h3><ul><li>potato (1 kg)</li></ul>",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected output to contain %q, got %s", want, out)
		}
	}
}
