package planner

import (
	"errors"

	"meal-planner/internal/mealplan"
)

var (
	ErrInvalidDate     = errors.New("invalid date")
	ErrUnknownMealType = errors.New("unknown meal type")
	ErrDayNotFound     = errors.New("no plan for date")
	ErrSlotEmpty       = errors.New("meal slot is empty")
	ErrRecipeNotFound  = errors.New("recipe not found")
	ErrItemNotFound    = errors.New("meal item not found")
)

// PlanState is the owned, persisted planning state.
type PlanState struct {
	Plan                mealplan.MealPlan `json:"plan"`
	UniquePerWeek       bool              `json:"unique_per_week"`
	LastGenerationError string            `json:"last_generation_error,omitempty"`
	Suggestions         []string          `json:"suggestions,omitempty"`
}

// NewPlanState returns an empty state.
func NewPlanState() *PlanState {
	return &PlanState{Plan: make(mealplan.MealPlan)}
}

// Clone returns a deep copy.
func (s *PlanState) Clone() *PlanState {
	return &PlanState{
		Plan:                s.Plan.Clone(),
		UniquePerWeek:       s.UniquePerWeek,
		LastGenerationError: s.LastGenerationError,
		Suggestions:         append([]string(nil), s.Suggestions...),
	}
}

// GenerationResult reports the outcome of a generation call. Scarcity is
// reported through Suggestions and Error, never as a Go error.
type GenerationResult struct {
	Success        bool     `json:"success"`
	GeneratedMeals []string `json:"generated_meals"`
	Suggestions    []string `json:"suggestions"`
	Error          string   `json:"error,omitempty"`
}

func newResult() GenerationResult {
	return GenerationResult{GeneratedMeals: []string{}, Suggestions: []string{}}
}

// SlotID identifies a filled slot in a GenerationResult.
func SlotID(date, slot string) string {
	return date + ":" + slot
}
