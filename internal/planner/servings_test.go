package planner

import (
	"errors"
	"testing"

	"meal-planner/internal/mealplan"
	"meal-planner/internal/recipe"
)

func TestClampServings(t *testing.T) {
	tests := map[int]int{100: 20, 0: 1, -3: 1, 1: 1, 20: 20, 4: 4}
	for in, want := range tests {
		if got := ClampServings(in); got != want {
			t.Errorf("ClampServings(%d): expected %d, got %d", in, want, got)
		}
	}
}

func TestUpdateMealServings(t *testing.T) {
	newState := func() *PlanState {
		state := NewPlanState()
		state.Plan["2024-03-04"] = &mealplan.DayPlan{
			Dinner: mealplan.NewRecipeMeal(recipe.Recipe{ID: "d1", Name: "Stew", Servings: 4}),
		}
		return state
	}

	t.Run("Clamped", func(t *testing.T) {
		state := newState()
		for _, tc := range []struct{ in, want int }{{100, 20}, {0, 1}, {6, 6}} {
			if err := UpdateMealServings(state, "2024-03-04", recipe.Dinner, tc.in); err != nil {
				t.Fatalf("Expected no error, got %v", err)
			}
			got := state.Plan["2024-03-04"].Dinner.AssignedServings()
			if got == nil || *got != tc.want {
				t.Errorf("Expected %d servings for input %d, got %v", tc.want, tc.in, got)
			}
		}
	})

	t.Run("Idempotent", func(t *testing.T) {
		state := newState()
		UpdateMealServings(state, "2024-03-04", recipe.Dinner, 3)
		once := state.Clone()
		UpdateMealServings(state, "2024-03-04", recipe.Dinner, 3)
		if *once.Plan["2024-03-04"].Dinner.AssignedServings() != *state.Plan["2024-03-04"].Dinner.AssignedServings() {
			t.Error("Expected repeated updates to give the same result")
		}
	})

	t.Run("Errors", func(t *testing.T) {
		state := newState()
		if err := UpdateMealServings(state, "2024-03-05", recipe.Dinner, 2); !errors.Is(err, ErrDayNotFound) {
			t.Errorf("Expected ErrDayNotFound, got %v", err)
		}
		if err := UpdateMealServings(state, "2024-03-04", recipe.Lunch, 2); !errors.Is(err, ErrSlotEmpty) {
			t.Errorf("Expected ErrSlotEmpty, got %v", err)
		}
		if err := UpdateMealServings(state, "2024-03-04", "snack", 2); !errors.Is(err, ErrUnknownMealType) {
			t.Errorf("Expected ErrUnknownMealType, got %v", err)
		}
	})
}

func TestCustomMealsAndSnacks(t *testing.T) {
	state := NewPlanState()

	over := 50
	meal := mealplan.NewCustomMeal("Leftover pizza", []mealplan.CustomIngredient{{Quantity: 2, Name: "pizza slices"}})
	meal.ID = ""
	meal.Servings = &over
	stored, err := AssignCustomMeal(state, "2024-03-04", recipe.Dinner, meal)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if stored.ID == "" {
		t.Error("Expected an id to be assigned")
	}
	if *stored.Servings != MaxServings {
		t.Errorf("Expected servings clamped to %d, got %d", MaxServings, *stored.Servings)
	}
	if state.Plan["2024-03-04"].Dinner.DisplayName() != "Leftover pizza" {
		t.Error("Expected the custom meal in the dinner slot")
	}

	if _, err := AssignCustomMeal(state, "bad", recipe.Dinner, meal); !errors.Is(err, ErrInvalidDate) {
		t.Errorf("Expected ErrInvalidDate, got %v", err)
	}

	if err := AddSnack(state, "2024-03-05", mealplan.NewCustomMeal("Apple", nil)); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if err := AddSnack(state, "2024-03-05", mealplan.RecipeMeal{RecipeID: "s1", Title: "Trail mix"}); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if n := len(state.Plan["2024-03-05"].Snacks); n != 2 {
		t.Fatalf("Expected 2 snacks, got %d", n)
	}

	big := 100
	snack := mealplan.NewCustomMeal("Popcorn", nil)
	snack.Servings = &big
	if err := AddSnack(state, "2024-03-06", snack); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if s := state.Plan["2024-03-06"].Snacks[0].AssignedServings(); s == nil || *s != MaxServings {
		t.Errorf("Expected snack servings clamped to %d, got %v", MaxServings, s)
	}

	if err := RemoveSnack(state, "2024-03-05", 5); !errors.Is(err, ErrItemNotFound) {
		t.Errorf("Expected ErrItemNotFound, got %v", err)
	}
	RemoveSnack(state, "2024-03-05", 0)
	RemoveSnack(state, "2024-03-05", 0)
	if _, ok := state.Plan["2024-03-05"]; ok {
		t.Error("Expected the empty day to be dropped")
	}

	if err := ClearDay(state, "2024-03-04"); err != nil {
		t.Errorf("Expected no error, got %v", err)
	}
	if err := ClearDay(state, "2024-03-04"); !errors.Is(err, ErrDayNotFound) {
		t.Errorf("Expected ErrDayNotFound, got %v", err)
	}
}
