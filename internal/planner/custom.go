package planner

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"meal-planner/internal/mealplan"
	"meal-planner/internal/recipe"
)

// AssignCustomMeal places a custom meal into a main slot, creating the day
// when needed. The stored meal is returned with its id.
func AssignCustomMeal(state *PlanState, date string, mt recipe.MealType, meal mealplan.CustomMeal) (mealplan.CustomMeal, error) {
	if _, ok := recipe.ParseMealType(string(mt)); !ok {
		return mealplan.CustomMeal{}, fmt.Errorf("%w: %q", ErrUnknownMealType, mt)
	}
	if _, err := mealplan.ParseDate(date); err != nil {
		return mealplan.CustomMeal{}, fmt.Errorf("%w: %q", ErrInvalidDate, date)
	}
	if meal.ID == "" {
		meal.ID = uuid.NewString()
	}
	if meal.Servings != nil {
		n := ClampServings(*meal.Servings)
		meal.Servings = &n
	}

	ensurePlan(state)
	day := state.Plan[date]
	if day == nil {
		day = &mealplan.DayPlan{}
		state.Plan[date] = day
	}
	day.SetSlot(mt, meal)
	return meal, nil
}

// AddSnack appends item to the snacks of date, creating the day when needed.
// Assigned servings are clamped to the allowed range.
func AddSnack(state *PlanState, date string, item mealplan.MealItem) error {
	if item == nil {
		return errors.New("snack is required")
	}
	if _, err := mealplan.ParseDate(date); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidDate, date)
	}
	if m, ok := item.(mealplan.CustomMeal); ok && m.ID == "" {
		m.ID = uuid.NewString()
		item = m
	}
	if n := item.AssignedServings(); n != nil {
		item = item.WithServings(ClampServings(*n))
	}

	ensurePlan(state)
	day := state.Plan[date]
	if day == nil {
		day = &mealplan.DayPlan{}
		state.Plan[date] = day
	}
	day.Snacks = append(day.Snacks, item)
	return nil
}

// RemoveSnack drops the snack at index from date.
func RemoveSnack(state *PlanState, date string, index int) error {
	day := state.Plan[date]
	if day == nil {
		return fmt.Errorf("%w: %s", ErrDayNotFound, date)
	}
	if index < 0 || index >= len(day.Snacks) {
		return fmt.Errorf("%w: snack %d on %s", ErrItemNotFound, index, date)
	}
	day.Snacks = append(day.Snacks[:index], day.Snacks[index+1:]...)
	if day.IsEmpty() {
		delete(state.Plan, date)
	}
	return nil
}

// ClearDay removes every meal of date.
func ClearDay(state *PlanState, date string) error {
	if state.Plan[date] == nil {
		return fmt.Errorf("%w: %s", ErrDayNotFound, date)
	}
	delete(state.Plan, date)
	return nil
}
