package planner

import (
	"fmt"

	"meal-planner/internal/recipe"
)

const (
	MinServings = 1
	MaxServings = 20
)

// ClampServings bounds n to [MinServings, MaxServings].
func ClampServings(n int) int {
	return min(max(n, MinServings), MaxServings)
}

// UpdateMealServings sets the servings of a filled main slot, clamped to
// the allowed range.
func UpdateMealServings(state *PlanState, date string, mt recipe.MealType, n int) error {
	if _, ok := recipe.ParseMealType(string(mt)); !ok {
		return fmt.Errorf("%w: %q", ErrUnknownMealType, mt)
	}
	day := state.Plan[date]
	if day == nil {
		return fmt.Errorf("%w: %s", ErrDayNotFound, date)
	}
	item := day.Slot(mt)
	if item == nil {
		return fmt.Errorf("%w: %s on %s", ErrSlotEmpty, mt, date)
	}
	day.SetSlot(mt, item.WithServings(ClampServings(n)))
	return nil
}
