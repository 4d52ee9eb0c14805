// Package planner fills a calendar of meal slots from a recipe pool and
// keeps the resulting plan state.
package planner

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"meal-planner/internal/mealplan"
	"meal-planner/internal/metrics"
	"meal-planner/internal/recipe"
	"meal-planner/internal/shopping"
)

// RunRecorder receives one entry per generation call.
type RunRecorder interface {
	Record(ctx context.Context, run metrics.GenerationRun) error
}

// Service owns the PlanState. Every method is serialized; mutations are
// saved through the Store before returning.
type Service struct {
	mu     sync.Mutex
	state  *PlanState
	engine *Engine
	store  Store

	defaultUnique bool
	recorder      RunRecorder
	logger        *zap.Logger
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithRecorder records generation runs.
func WithRecorder(r RunRecorder) ServiceOption {
	return func(s *Service) { s.recorder = r }
}

// WithDefaultUniquePerWeek sets the uniqueness mode used when the store
// holds no state yet.
func WithDefaultUniquePerWeek(on bool) ServiceOption {
	return func(s *Service) { s.defaultUnique = on }
}

// NewService creates a Service. The state is loaded on first use.
func NewService(engine *Engine, store Store, logger *zap.Logger, opts ...ServiceOption) *Service {
	s := &Service{engine: engine, store: store, logger: logger}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) ensureLoaded(ctx context.Context) error {
	if s.state != nil {
		return nil
	}
	state, err := s.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load meal plan: %w", err)
	}
	if state == nil {
		state = NewPlanState()
		state.UniquePerWeek = s.defaultUnique
	}
	ensurePlan(state)
	s.state = state
	return nil
}

func (s *Service) persist(ctx context.Context) {
	if err := s.store.Save(ctx, s.state); err != nil {
		s.logger.Error("failed to save meal plan", zap.Error(err))
	}
}

// mutate runs fn on the loaded state and saves it.
func (s *Service) mutate(ctx context.Context, fn func(*PlanState) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoaded(ctx); err != nil {
		return err
	}
	if err := fn(s.state); err != nil {
		return err
	}
	s.persist(ctx)
	return nil
}

func (s *Service) generate(ctx context.Context, op string, fn func(*PlanState) GenerationResult) GenerationResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := time.Now()
	if err := s.ensureLoaded(ctx); err != nil {
		s.logger.Error("generation aborted", zap.String("operation", op), zap.Error(err))
		res := newResult()
		res.Error = err.Error()
		return res
	}

	res := fn(s.state)
	s.persist(ctx)

	latency := time.Since(start)
	s.logger.Info("meal plan generated",
		zap.String("operation", op),
		zap.Bool("success", res.Success),
		zap.Int("filled", len(res.GeneratedMeals)),
		zap.Int("suggestions", len(res.Suggestions)),
		zap.Duration("latency", latency),
	)
	if s.recorder != nil {
		run := metrics.GenerationRun{
			Operation:   op,
			SlotsFilled: len(res.GeneratedMeals),
			Suggestions: len(res.Suggestions),
			Success:     res.Success,
			Latency:     latency,
		}
		if err := s.recorder.Record(ctx, run); err != nil {
			s.logger.Warn("failed to record generation run", zap.Error(err))
		}
	}
	return res
}

// GenerateMealPlan fills one slot.
func (s *Service) GenerateMealPlan(ctx context.Context, date string, mt recipe.MealType) GenerationResult {
	return s.generate(ctx, "meal", func(st *PlanState) GenerationResult {
		return s.engine.GenerateMealPlan(ctx, st, date, mt)
	})
}

// GenerateAllMealsForDay fills the three main slots of date. A non-nil
// available slice replaces the cached pool for this call.
func (s *Service) GenerateAllMealsForDay(ctx context.Context, date string, available []recipe.Recipe) GenerationResult {
	return s.generate(ctx, "day", func(st *PlanState) GenerationResult {
		return s.engine.GenerateAllMealsForDay(ctx, st, date, available)
	})
}

// GenerateWeeklyMealPlan fills every date in [start, end].
func (s *Service) GenerateWeeklyMealPlan(ctx context.Context, start, end string) GenerationResult {
	return s.generate(ctx, "weekly", func(st *PlanState) GenerationResult {
		return s.engine.GenerateWeeklyMealPlan(ctx, st, start, end)
	})
}

// GetAlternativeRecipes lists replacement candidates for a slot.
func (s *Service) GetAlternativeRecipes(ctx context.Context, date string, mt recipe.MealType, currentRecipeID string) ([]recipe.Recipe, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	return s.engine.GetAlternativeRecipes(ctx, s.state, date, mt, currentRecipeID), nil
}

// SwapMeal replaces a slot's recipe. On false the reason is available as
// the plan-level error.
func (s *Service) SwapMeal(ctx context.Context, date string, mt recipe.MealType, newRecipeID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoaded(ctx); err != nil {
		s.logger.Error("swap aborted", zap.Error(err))
		return false
	}
	ok := s.engine.SwapMeal(s.state, date, mt, newRecipeID)
	s.persist(ctx)
	if !ok {
		s.logger.Warn("swap rejected",
			zap.String("date", date),
			zap.String("meal_type", string(mt)),
			zap.String("recipe_id", newRecipeID),
			zap.String("reason", s.state.LastGenerationError),
		)
	}
	return ok
}

// UpdateMealServings sets a slot's servings, clamped to [1, 20].
func (s *Service) UpdateMealServings(ctx context.Context, date string, mt recipe.MealType, n int) error {
	return s.mutate(ctx, func(st *PlanState) error {
		return UpdateMealServings(st, date, mt, n)
	})
}

// SetUniquePerWeek toggles weekly uniqueness.
func (s *Service) SetUniquePerWeek(ctx context.Context, on bool) error {
	return s.mutate(ctx, func(st *PlanState) error {
		st.UniquePerWeek = on
		return nil
	})
}

// ClearGenerationError resets the sticky plan-level error.
func (s *Service) ClearGenerationError(ctx context.Context) error {
	return s.mutate(ctx, func(st *PlanState) error {
		st.LastGenerationError = ""
		return nil
	})
}

// IsRecipeUsedInMealPlan reports whether any slot holds the recipe.
func (s *Service) IsRecipeUsedInMealPlan(ctx context.Context, recipeID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoaded(ctx); err != nil {
		s.logger.Error("failed to check recipe usage", zap.Error(err))
		return false
	}
	return s.state.Plan.RecipeIDs()[recipeID]
}

// GenerateGroceryList aggregates the plan's ingredients between start and
// end inclusive. Empty bounds are open.
func (s *Service) GenerateGroceryList(ctx context.Context, start, end string) ([]shopping.GroceryItem, error) {
	for _, d := range []string{start, end} {
		if d == "" {
			continue
		}
		if _, err := mealplan.ParseDate(d); err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidDate, d)
		}
	}

	s.mu.Lock()
	if err := s.ensureLoaded(ctx); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	plan := s.state.Plan.Range(start, end).Clone()
	s.mu.Unlock()

	return shopping.GenerateGroceryList(plan, s.engine.Resolver()), nil
}

// AssignCustomMeal places a custom meal into a main slot.
func (s *Service) AssignCustomMeal(ctx context.Context, date string, mt recipe.MealType, meal mealplan.CustomMeal) (mealplan.CustomMeal, error) {
	var stored mealplan.CustomMeal
	err := s.mutate(ctx, func(st *PlanState) error {
		var err error
		stored, err = AssignCustomMeal(st, date, mt, meal)
		return err
	})
	return stored, err
}

// AddSnack appends a snack to date.
func (s *Service) AddSnack(ctx context.Context, date string, item mealplan.MealItem) error {
	return s.mutate(ctx, func(st *PlanState) error {
		return AddSnack(st, date, item)
	})
}

// RemoveSnack drops a snack by position.
func (s *Service) RemoveSnack(ctx context.Context, date string, index int) error {
	return s.mutate(ctx, func(st *PlanState) error {
		return RemoveSnack(st, date, index)
	})
}

// ClearDay removes every meal of date.
func (s *Service) ClearDay(ctx context.Context, date string) error {
	return s.mutate(ctx, func(st *PlanState) error {
		return ClearDay(st, date)
	})
}

// Snapshot returns a deep copy of the current state.
func (s *Service) Snapshot(ctx context.Context) (*PlanState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	return s.state.Clone(), nil
}

// Resolver exposes recipe lookup for presentation layers.
func (s *Service) Resolver() mealplan.Resolver {
	return s.engine.Resolver()
}
