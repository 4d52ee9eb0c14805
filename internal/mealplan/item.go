// Package mealplan holds the calendar data model shared by the plan
// generator and the grocery aggregator.
package mealplan

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"meal-planner/internal/recipe"
)

// Resolver looks up recipes by id.
type Resolver interface {
	Recipe(id string) (recipe.Recipe, bool)
}

// MealItem is what occupies a slot. It is implemented only by RecipeMeal and
// CustomMeal.
type MealItem interface {
	DisplayName() string
	AssignedServings() *int
	WithServings(n int) MealItem
	isMealItem()
}

// Item kinds used in the JSON encoding.
const (
	KindRecipe = "recipe"
	KindCustom = "custom"
)

// RecipeMeal is a slot backed by a catalog recipe.
type RecipeMeal struct {
	RecipeID string `json:"recipe_id"`
	Title    string `json:"title"`
	Servings *int   `json:"servings,omitempty"`
}

// NewRecipeMeal assigns r with its base servings.
func NewRecipeMeal(r recipe.Recipe) RecipeMeal {
	n := r.BaseServings()
	return RecipeMeal{RecipeID: r.ID, Title: r.Name, Servings: &n}
}

func (m RecipeMeal) DisplayName() string { return m.Title }
func (m RecipeMeal) AssignedServings() *int { return m.Servings }
func (RecipeMeal) isMealItem() {}
func (m RecipeMeal) WithServings(n int) MealItem {
	m.Servings = &n
	return m
}

// CustomIngredient is one structured line of a custom meal.
type CustomIngredient struct {
	Quantity float64 `json:"quantity"`
	Unit     string  `json:"unit,omitempty"`
	Name     string  `json:"name"`
}

// String renders the entry as an ingredient line.
func (c CustomIngredient) String() string {
	qty := strconv.FormatFloat(c.Quantity, 'f', -1, 64)
	return strings.Join(strings.Fields(qty+" "+c.Unit+" "+c.Name), " ")
}

// CustomMeal is a user-entered meal that is not in the catalog. ID addresses
// the item within the plan.
type CustomMeal struct {
	ID          string             `json:"id"`
	Title       string             `json:"title"`
	Calories    *float64           `json:"calories,omitempty"`
	Protein     *float64           `json:"protein,omitempty"`
	Carbs       *float64           `json:"carbs,omitempty"`
	Fat         *float64           `json:"fat,omitempty"`
	Ingredients []CustomIngredient `json:"ingredients,omitempty"`
	Servings    *int               `json:"servings,omitempty"`
}

// NewCustomMeal creates a custom meal with a fresh id.
func NewCustomMeal(title string, ingredients []CustomIngredient) CustomMeal {
	return CustomMeal{
		ID:          uuid.NewString(),
		Title:       strings.TrimSpace(title),
		Ingredients: ingredients,
	}
}

func (m CustomMeal) DisplayName() string { return m.Title }
func (m CustomMeal) AssignedServings() *int { return m.Servings }
func (CustomMeal) isMealItem() {}
func (m CustomMeal) WithServings(n int) MealItem {
	m.Servings = &n
	return m
}

// Kind returns the JSON kind tag of an item.
func Kind(item MealItem) string {
	switch item.(type) {
	case RecipeMeal:
		return KindRecipe
	case CustomMeal:
		return KindCustom
	default:
		return ""
	}
}

// RecipeID returns the backing recipe id, or "" for custom meals.
func RecipeID(item MealItem) string {
	if m, ok := item.(RecipeMeal); ok {
		return m.RecipeID
	}
	return ""
}

// Calories returns per-serving calories. Recipe-backed items resolve through
// r; the second result is false when the value is unknown.
func Calories(item MealItem, r Resolver) (float64, bool) {
	switch m := item.(type) {
	case RecipeMeal:
		rec, ok := r.Recipe(m.RecipeID)
		if !ok {
			return 0, false
		}
		return rec.Nutrition.Calories, true
	case CustomMeal:
		if m.Calories == nil {
			return 0, false
		}
		return *m.Calories, true
	default:
		return 0, false
	}
}

// IngredientLines returns the unscaled ingredient lines of an item.
func IngredientLines(item MealItem, r Resolver) []string {
	switch m := item.(type) {
	case RecipeMeal:
		rec, ok := r.Recipe(m.RecipeID)
		if !ok {
			return nil
		}
		return rec.Ingredients
	case CustomMeal:
		lines := make([]string, 0, len(m.Ingredients))
		for _, ing := range m.Ingredients {
			lines = append(lines, ing.String())
		}
		return lines
	default:
		return nil
	}
}

func cloneItem(item MealItem) MealItem {
	switch m := item.(type) {
	case RecipeMeal:
		m.Servings = cloneInt(m.Servings)
		return m
	case CustomMeal:
		m.Calories = cloneFloat(m.Calories)
		m.Protein = cloneFloat(m.Protein)
		m.Carbs = cloneFloat(m.Carbs)
		m.Fat = cloneFloat(m.Fat)
		m.Servings = cloneInt(m.Servings)
		m.Ingredients = append([]CustomIngredient(nil), m.Ingredients...)
		return m
	case nil:
		return nil
	default:
		panic(fmt.Sprintf("mealplan: unknown item type %T", item))
	}
}

func cloneInt(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneFloat(p *float64) *float64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
