package planner

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"go.uber.org/zap"

	"meal-planner/internal/mealplan"
	"meal-planner/internal/recipe"
)

// MaxRangeDays caps a single weekly generation call.
const MaxRangeDays = 31

// Pool supplies candidate recipes and resolves recipe ids.
type Pool interface {
	Candidates(ctx context.Context, mt recipe.MealType, local []recipe.Recipe) []recipe.Recipe
	Recipe(id string) (recipe.Recipe, bool)
}

// SelectionPolicy decides which eligible recipe fills a slot.
type SelectionPolicy string

const (
	// PolicyFirst takes the first eligible recipe in pool order.
	PolicyFirst SelectionPolicy = "first"
	// PolicyRandom picks uniformly among eligible recipes.
	PolicyRandom SelectionPolicy = "random"
)

// ParseSelectionPolicy validates a policy name. Empty means random.
func ParseSelectionPolicy(s string) (SelectionPolicy, error) {
	switch SelectionPolicy(s) {
	case "", PolicyRandom:
		return PolicyRandom, nil
	case PolicyFirst:
		return PolicyFirst, nil
	default:
		return "", fmt.Errorf("unknown selection policy %q", s)
	}
}

// Engine fills meal slots. It does not own any state: every call works on
// the PlanState it is given.
type Engine struct {
	pool        Pool
	constraints recipe.Constraints
	policy      SelectionPolicy
	logger      *zap.Logger

	mu  sync.Mutex
	rng *rand.Rand
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithConstraints sets the user's dietary restrictions.
func WithConstraints(c recipe.Constraints) EngineOption {
	return func(e *Engine) { e.constraints = c }
}

// WithPolicy sets the selection policy.
func WithPolicy(p SelectionPolicy) EngineOption {
	return func(e *Engine) { e.policy = p }
}

// WithSeed makes random selection reproducible.
func WithSeed(seed uint64) EngineOption {
	return func(e *Engine) { e.rng = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)) }
}

// NewEngine creates an Engine drawing recipes from pool.
func NewEngine(pool Pool, logger *zap.Logger, opts ...EngineOption) *Engine {
	e := &Engine{
		pool:   pool,
		policy: PolicyRandom,
		logger: logger,
		rng:    rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Resolver exposes the engine's recipe lookup.
func (e *Engine) Resolver() mealplan.Resolver {
	return e.pool
}

// Constraints returns the dietary restrictions in effect.
func (e *Engine) Constraints() recipe.Constraints {
	return e.constraints
}

// usage tracks recipe ids already placed. week is nil when weekly
// uniqueness is off.
type usage struct {
	day  map[string]bool
	week map[string]bool
}

func (e *Engine) pick(pool []recipe.Recipe) recipe.Recipe {
	if e.policy == PolicyFirst || len(pool) == 1 {
		return pool[0]
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return pool[e.rng.IntN(len(pool))]
}

func exclude(pool []recipe.Recipe, sets ...map[string]bool) []recipe.Recipe {
	out := make([]recipe.Recipe, 0, len(pool))
next:
	for _, r := range pool {
		for _, set := range sets {
			if set[r.ID] {
				continue next
			}
		}
		out = append(out, r)
	}
	return out
}

// fillSlot chooses a recipe for one slot. Uniqueness is relaxed week first,
// then day; dietary constraints never are.
func (e *Engine) fillSlot(ctx context.Context, date string, mt recipe.MealType, available []recipe.Recipe, used usage, res *GenerationResult) (recipe.Recipe, bool) {
	pool := e.pool.Candidates(ctx, mt, available)
	if len(pool) == 0 {
		res.Suggestions = append(res.Suggestions,
			fmt.Sprintf("No %s recipes available for %s; slot left empty", mt, date))
		return recipe.Recipe{}, false
	}

	dietary := recipe.Filter(pool, e.constraints)
	if len(dietary) == 0 {
		res.Suggestions = append(res.Suggestions,
			fmt.Sprintf("No %s recipes match your dietary preferences (%s) for %s; slot left empty", mt, e.constraints, date))
		return recipe.Recipe{}, false
	}

	var chosen recipe.Recipe
	if eligible := exclude(dietary, used.day, used.week); len(eligible) > 0 {
		chosen = e.pick(eligible)
	} else {
		relaxed := exclude(dietary, used.day)
		if len(relaxed) == 0 {
			relaxed = dietary
		}
		chosen = e.pick(relaxed)
		res.Suggestions = append(res.Suggestions,
			fmt.Sprintf("Repeated \"%s\" for %s on %s to avoid an empty slot", chosen.Name, mt, date))
	}

	used.day[chosen.ID] = true
	if used.week != nil {
		used.week[chosen.ID] = true
	}
	res.GeneratedMeals = append(res.GeneratedMeals, SlotID(date, string(mt)))
	return chosen, true
}

// generateDay fills the three main slots of date. The day is written back
// only when at least one slot was filled. Slots that could not be filled
// keep their previous item, and snacks are kept.
func (e *Engine) generateDay(ctx context.Context, state *PlanState, date string, available []recipe.Recipe, week map[string]bool, res *GenerationResult) int {
	day := &mealplan.DayPlan{}
	if existing := state.Plan[date]; existing != nil {
		day = existing.Clone()
	}

	used := usage{day: make(map[string]bool), week: week}
	filled := 0
	for _, mt := range recipe.MealTypes {
		if r, ok := e.fillSlot(ctx, date, mt, available, used, res); ok {
			day.SetSlot(mt, mealplan.NewRecipeMeal(r))
			filled++
		}
	}
	if filled > 0 {
		state.Plan[date] = day
	}
	return filled
}

// GenerateAllMealsForDay fills breakfast, lunch and dinner for date. A
// non-nil available slice is used as the local recipe pool.
func (e *Engine) GenerateAllMealsForDay(ctx context.Context, state *PlanState, date string, available []recipe.Recipe) GenerationResult {
	res := newResult()
	t, err := mealplan.ParseDate(date)
	if err != nil {
		res.Error = fmt.Sprintf("invalid date %q", date)
		return res
	}
	ensurePlan(state)

	var week map[string]bool
	if state.UniquePerWeek {
		week = weekUsage(state.Plan, t, date, "")
	}
	e.generateDay(ctx, state, date, available, week, &res)

	e.finish(state, &res, fmt.Sprintf("No meals could be generated for %s", date))
	return res
}

// GenerateWeeklyMealPlan fills every date in [start, end]. One uniqueness
// set spans the whole call; a day that cannot be filled does not stop the
// others.
func (e *Engine) GenerateWeeklyMealPlan(ctx context.Context, state *PlanState, start, end string) GenerationResult {
	res := newResult()
	from, err1 := mealplan.ParseDate(start)
	to, err2 := mealplan.ParseDate(end)
	switch {
	case err1 != nil || err2 != nil:
		res.Error = fmt.Sprintf("invalid date range %q to %q", start, end)
		return res
	case to.Before(from):
		res.Error = fmt.Sprintf("end date %s is before start date %s", end, start)
		return res
	}
	if days := int(to.Sub(from).Hours()/24) + 1; days > MaxRangeDays {
		res.Error = fmt.Sprintf("date range of %d days exceeds the %d day limit", days, MaxRangeDays)
		return res
	}
	ensurePlan(state)

	var week map[string]bool
	if state.UniquePerWeek {
		week = make(map[string]bool)
	}
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		e.generateDay(ctx, state, mealplan.FormatDate(d), nil, week, &res)
	}

	e.finish(state, &res, fmt.Sprintf("No meals could be generated for %s to %s", start, end))
	return res
}

// GenerateMealPlan fills a single slot. With weekly uniqueness on, recipes
// used elsewhere in the ISO week of date are avoided.
func (e *Engine) GenerateMealPlan(ctx context.Context, state *PlanState, date string, mt recipe.MealType) GenerationResult {
	res := newResult()
	if _, ok := recipe.ParseMealType(string(mt)); !ok {
		res.Error = fmt.Sprintf("unknown meal type %q", mt)
		return res
	}
	t, err := mealplan.ParseDate(date)
	if err != nil {
		res.Error = fmt.Sprintf("invalid date %q", date)
		return res
	}
	ensurePlan(state)

	used := usage{day: make(map[string]bool)}
	if day := state.Plan[date]; day != nil {
		for _, other := range recipe.MealTypes {
			if other == mt {
				continue
			}
			if id := mealplan.RecipeID(day.Slot(other)); id != "" {
				used.day[id] = true
			}
		}
	}
	if state.UniquePerWeek {
		used.week = weekUsage(state.Plan, t, date, mt)
	}

	if r, ok := e.fillSlot(ctx, date, mt, nil, used, &res); ok {
		day := state.Plan[date]
		if day == nil {
			day = &mealplan.DayPlan{}
			state.Plan[date] = day
		}
		day.SetSlot(mt, mealplan.NewRecipeMeal(r))
	}

	e.finish(state, &res, fmt.Sprintf("No %s could be generated for %s", mt, date))
	return res
}

// finish derives success and records the sticky error. A successful call
// never clears an earlier error.
func (e *Engine) finish(state *PlanState, res *GenerationResult, failure string) {
	res.Success = len(res.GeneratedMeals) > 0
	if !res.Success {
		res.Error = failure
		state.LastGenerationError = failure
	}
	state.Suggestions = append([]string(nil), res.Suggestions...)

	e.logger.Debug("generation pass complete",
		zap.Bool("success", res.Success),
		zap.Int("filled", len(res.GeneratedMeals)),
		zap.Int("suggestions", len(res.Suggestions)),
	)
}

// weekUsage collects the recipe ids in the main slots of the ISO week
// around t, skipping skipSlot on skipDate (all slots when skipSlot is empty).
func weekUsage(plan mealplan.MealPlan, t time.Time, skipDate string, skipSlot recipe.MealType) map[string]bool {
	used := make(map[string]bool)
	monday, _ := mealplan.WeekBounds(t)
	for i := 0; i < 7; i++ {
		date := mealplan.FormatDate(monday.AddDate(0, 0, i))
		day := plan[date]
		if day == nil {
			continue
		}
		for _, mt := range recipe.MealTypes {
			if date == skipDate && (skipSlot == "" || skipSlot == mt) {
				continue
			}
			if id := mealplan.RecipeID(day.Slot(mt)); id != "" {
				used[id] = true
			}
		}
	}
	return used
}

func ensurePlan(state *PlanState) {
	if state.Plan == nil {
		state.Plan = make(mealplan.MealPlan)
	}
}
