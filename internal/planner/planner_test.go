package planner

import (
	"context"
	"sync"
	"testing"

	"go.uber.org/zap"

	"meal-planner/internal/metrics"
	"meal-planner/internal/recipe"
)

type fakeRecorder struct {
	mu   sync.Mutex
	runs []metrics.GenerationRun
}

func (f *fakeRecorder) Record(_ context.Context, run metrics.GenerationRun) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.runs = append(f.runs, run)
	return nil
}

func newTestService(t *testing.T, recipes []recipe.Recipe, opts ...ServiceOption) (*Service, *MemoryStore) {
	t.Helper()
	engine, _ := newTestEngine(recipes)
	store := NewMemoryStore()
	return NewService(engine, store, zap.NewNop(), opts...), store
}

func TestService_GenerateAndPersist(t *testing.T) {
	ctx := context.Background()
	recorder := &fakeRecorder{}
	svc, store := newTestService(t, fullPool(7), WithRecorder(recorder), WithDefaultUniquePerWeek(true))

	res := svc.GenerateWeeklyMealPlan(ctx, "2024-03-04", "2024-03-10")
	if !res.Success {
		t.Fatalf("Expected success, got %+v", res)
	}
	if store.Saves() != 1 {
		t.Errorf("Expected 1 save, got %d", store.Saves())
	}
	if len(recorder.runs) != 1 || recorder.runs[0].Operation != "weekly" || recorder.runs[0].SlotsFilled != 21 {
		t.Errorf("Unexpected recorded runs: %+v", recorder.runs)
	}

	saved, _ := store.Load(ctx)
	if !saved.UniquePerWeek || len(saved.Plan) != 7 {
		t.Errorf("Expected persisted unique plan of 7 days, got unique=%v days=%d", saved.UniquePerWeek, len(saved.Plan))
	}

	if !svc.IsRecipeUsedInMealPlan(ctx, "dinner-1") {
		t.Error("Expected dinner-1 to be used")
	}
	if svc.IsRecipeUsedInMealPlan(ctx, "unknown") {
		t.Error("Expected unknown recipe to be unused")
	}
}

func TestService_LoadsExistingState(t *testing.T) {
	ctx := context.Background()
	engine, _ := newTestEngine(fullPool(1))
	store := NewMemoryStore()
	prior := NewPlanState()
	prior.LastGenerationError = "earlier failure"
	store.Save(ctx, prior)

	svc := NewService(engine, store, zap.NewNop(), WithDefaultUniquePerWeek(true))
	snap, err := svc.Snapshot(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if snap.LastGenerationError != "earlier failure" {
		t.Errorf("Expected stored error, got %q", snap.LastGenerationError)
	}
	if snap.UniquePerWeek {
		t.Error("Expected stored settings to win over the default")
	}
}

func TestService_ErrorLifecycle(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, nil)

	res := svc.GenerateAllMealsForDay(ctx, "2024-03-04", nil)
	if res.Success {
		t.Fatal("Expected failure on an empty pool")
	}
	snap, _ := svc.Snapshot(ctx)
	if snap.LastGenerationError == "" {
		t.Fatal("Expected sticky error")
	}

	if err := svc.ClearGenerationError(ctx); err != nil {
		t.Fatal(err)
	}
	snap, _ = svc.Snapshot(ctx)
	if snap.LastGenerationError != "" {
		t.Errorf("Expected error cleared, got %q", snap.LastGenerationError)
	}
}

func TestService_SwapServingsAndGroceries(t *testing.T) {
	ctx := context.Background()
	pool := fullPool(2)
	pool[5].Ingredients = []string{"200 g rice", "1 cup stock"} // dinner-2
	svc, _ := newTestService(t, pool)

	svc.GenerateAllMealsForDay(ctx, "2024-03-04", nil)

	alts, err := svc.GetAlternativeRecipes(ctx, "2024-03-04", recipe.Dinner, "dinner-1")
	if err != nil || len(alts) != 1 || alts[0].ID != "dinner-2" {
		t.Fatalf("Expected dinner-2 as the only alternative, got %v (%v)", alts, err)
	}
	if !svc.SwapMeal(ctx, "2024-03-04", recipe.Dinner, "dinner-2") {
		t.Fatal("Expected swap to succeed")
	}
	if err := svc.UpdateMealServings(ctx, "2024-03-04", recipe.Dinner, 4); err != nil {
		t.Fatal(err)
	}

	items, err := svc.GenerateGroceryList(ctx, "2024-03-04", "2024-03-04")
	if err != nil {
		t.Fatal(err)
	}
	byKey := make(map[string]float64)
	for _, it := range items {
		byKey[it.Ingredient] = it.Quantity
	}
	// dinner-2 serves 2 at base, doubled to 4.
	if byKey["rice"] != 400 {
		t.Errorf("Expected 400 g rice, got %v", byKey["rice"])
	}
	// breakfast-1 and lunch-1 each need 1 cup flour.
	if byKey["flour"] != 480 {
		t.Errorf("Expected 480 ml flour, got %v", byKey["flour"])
	}

	if _, err := svc.GenerateGroceryList(ctx, "2024/03/04", ""); err == nil {
		t.Error("Expected invalid date error")
	}
	empty, err := svc.GenerateGroceryList(ctx, "2025-01-01", "2025-01-07")
	if err != nil || len(empty) != 0 {
		t.Errorf("Expected an empty list for a range without meals, got %v (%v)", empty, err)
	}
}

func TestService_ConcurrentCalls(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, fullPool(3))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			date := []string{"2024-03-04", "2024-03-05"}[i%2]
			svc.GenerateAllMealsForDay(ctx, date, nil)
			svc.SetUniquePerWeek(ctx, i%2 == 0)
		}(i)
	}
	wg.Wait()

	snap, _ := svc.Snapshot(ctx)
	if len(snap.Plan) != 2 {
		t.Errorf("Expected 2 days, got %d", len(snap.Plan))
	}
}

func TestService_AvailablePoolSupportsFollowUps(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, nil)
	available := append(append(makeRecipes(recipe.Breakfast, 1), makeRecipes(recipe.Lunch, 2)...), makeRecipes(recipe.Dinner, 1)...)

	res := svc.GenerateAllMealsForDay(ctx, "2024-03-04", available)
	if !res.Success || len(res.GeneratedMeals) != 3 {
		t.Fatalf("Expected all three slots filled, got %+v", res)
	}

	items, err := svc.GenerateGroceryList(ctx, "2024-03-04", "2024-03-04")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(items) == 0 {
		t.Error("Expected grocery items for the generated day")
	}

	alts, err := svc.GetAlternativeRecipes(ctx, "2024-03-04", recipe.Lunch, "lunch-1")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(alts) != 1 || alts[0].ID != "lunch-2" {
		t.Errorf("Expected lunch-2 as the only alternative, got %+v", alts)
	}

	if !svc.SwapMeal(ctx, "2024-03-04", recipe.Lunch, "lunch-2") {
		t.Error("Expected swap to a recipe from the given pool to succeed")
	}
}
