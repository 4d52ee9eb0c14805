// Package shopping turns a meal plan into a consolidated grocery list and
// stores generated lists.
package shopping

import (
	"math"
	"sort"
	"strconv"

	"meal-planner/internal/ingredient"
	"meal-planner/internal/mealplan"
)

type tally struct {
	kind      ingredient.Kind
	quantity  float64 // base units for mass and volume
	unit      string  // count and unknown kinds only
	recipeIDs map[string]struct{}
}

func (t *tally) add(p ingredient.Parsed, recipeID string) {
	switch {
	case p.Kind != t.kind:
		// Incompatible kinds: keep the number, drop the unit.
		t.kind = ingredient.KindCount
		t.unit = ""
	case t.kind == ingredient.KindCount || t.kind == ingredient.KindUnknown:
		if p.Unit != t.unit {
			t.kind = ingredient.KindCount
			t.unit = ""
		}
	}
	t.quantity += p.BaseQuantity()
	if recipeID != "" {
		t.recipeIDs[recipeID] = struct{}{}
	}
}

// GenerateGroceryList aggregates every ingredient of the plan. Days are
// walked in date order and within a day breakfast, lunch, dinner and then
// snacks. Recipes the resolver does not know are skipped. The result is
// sorted by category and then name.
func GenerateGroceryList(plan mealplan.MealPlan, resolver mealplan.Resolver) []GroceryItem {
	tallies := make(map[string]*tally)

	add := func(p ingredient.Parsed, recipeID string) {
		key := ingredient.Normalize(p.Name)
		if key == "" {
			return
		}
		t, ok := tallies[key]
		if !ok {
			t = &tally{kind: p.Kind, unit: p.Unit, recipeIDs: make(map[string]struct{})}
			if p.Kind == ingredient.KindMass || p.Kind == ingredient.KindVolume {
				t.unit = ""
			}
			tallies[key] = t
			t.quantity = p.BaseQuantity()
			if recipeID != "" {
				t.recipeIDs[recipeID] = struct{}{}
			}
			return
		}
		t.add(p, recipeID)
	}

	for _, date := range plan.Dates() {
		for _, item := range plan[date].Items() {
			switch m := item.(type) {
			case mealplan.RecipeMeal:
				rec, ok := resolver.Recipe(m.RecipeID)
				if !ok {
					continue
				}
				factor := float64(servingsOrOne(m.Servings)) / float64(rec.BaseServings())
				for _, line := range rec.Ingredients {
					add(ingredient.Parse(line).Scale(factor), rec.ID)
				}
			case mealplan.CustomMeal:
				factor := float64(servingsOrOne(m.Servings))
				for _, ing := range m.Ingredients {
					add(ingredient.ParseStructured(ing.Quantity*factor, ing.Unit, ing.Name), "")
				}
			}
		}
	}

	items := make([]GroceryItem, 0, len(tallies))
	for key, t := range tallies {
		qty, unit := t.quantity, t.unit
		if t.kind == ingredient.KindMass || t.kind == ingredient.KindVolume {
			qty, unit = ingredient.FromBase(t.quantity, t.kind)
		}
		qty = round2(qty)

		ids := make([]string, 0, len(t.recipeIDs))
		for id := range t.recipeIDs {
			ids = append(ids, id)
		}
		sort.Strings(ids)

		items = append(items, GroceryItem{
			Name:       displayName(key, qty, unit),
			Ingredient: key,
			Quantity:   qty,
			Unit:       unit,
			Category:   ingredient.Classify(key),
			RecipeIDs:  ids,
		})
	}

	sort.Slice(items, func(i, j int) bool {
		if items[i].Category != items[j].Category {
			return items[i].Category < items[j].Category
		}
		return items[i].Name < items[j].Name
	})
	return items
}

// CarryChecked copies the checked flag from prev onto matching ingredients
// of next.
func CarryChecked(prev, next []GroceryItem) []GroceryItem {
	checked := make(map[string]bool, len(prev))
	for _, it := range prev {
		if it.Checked {
			checked[it.Ingredient] = true
		}
	}
	for i := range next {
		if checked[next[i].Ingredient] {
			next[i].Checked = true
		}
	}
	return next
}

// FormatQuantity renders a rounded quantity without trailing zeros.
func FormatQuantity(q float64) string {
	return strconv.FormatFloat(round2(q), 'f', -1, 64)
}

func displayName(name string, qty float64, unit string) string {
	if unit == "" {
		return name + " (" + FormatQuantity(qty) + ")"
	}
	return name + " (" + FormatQuantity(qty) + " " + unit + ")"
}

func round2(q float64) float64 {
	return math.Round(q*100) / 100
}

func servingsOrOne(n *int) int {
	if n == nil {
		return 1
	}
	return *n
}
