package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"meal-planner/internal/catalog"
	"meal-planner/internal/database"
	"meal-planner/internal/mealplan"
	"meal-planner/internal/metrics"
	"meal-planner/internal/planner"
	"meal-planner/internal/recipe"
	"meal-planner/internal/shopping"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	db, err := database.NewDB(filepath.Join(t.TempDir(), "api.db"), zap.NewNop())
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	provider := catalog.NewProvider(zap.NewNop())
	var recs []recipe.Recipe
	for _, mt := range recipe.MealTypes {
		for i := 1; i <= 3; i++ {
			recs = append(recs, recipe.Recipe{
				ID:          fmt.Sprintf("%s-%d", mt, i),
				Name:        fmt.Sprintf("%s %d", mt, i),
				MealType:    mt,
				Servings:    2,
				Ingredients: []string{"1 cup milk", "100 g oats"},
			})
		}
	}
	provider.Load(recs)
	recipes := recipe.NewRepository(db.SQL, zap.NewNop())
	if err := recipes.SaveAll(context.Background(), recs); err != nil {
		t.Fatalf("Failed to save recipes: %v", err)
	}

	engine := planner.NewEngine(provider, zap.NewNop(), planner.WithPolicy(planner.PolicyFirst))
	store := metrics.NewStore(db.SQL)
	svc := planner.NewService(engine, planner.NewMemoryStore(), zap.NewNop(), planner.WithRecorder(store))

	return NewRouter(Deps{
		Planner:  svc,
		Catalog:  provider,
		Recipes:  recipes,
		Lists:    shopping.NewRepository(db.SQL),
		Metrics:  store,
		DataPath: t.TempDir(),
	}, zap.NewNop())
}

func do(t *testing.T, router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("Failed to decode %q: %v", w.Body.String(), err)
	}
	return v
}

func TestHealth(t *testing.T) {
	router := newTestRouter(t)
	w := do(t, router, http.MethodGet, "/health", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	resp := decode[healthResponse](t, w)
	if resp.Status != "ok" || resp.Recipes != 9 {
		t.Errorf("Unexpected health response: %+v", resp)
	}
	if resp.StoredRecipes != 9 {
		t.Errorf("Expected 9 stored recipes, got %d", resp.StoredRecipes)
	}
	if w.Header().Get("X-Request-ID") == "" {
		t.Error("Expected a request id header")
	}
}

func TestPlanLifecycle(t *testing.T) {
	router := newTestRouter(t)

	w := do(t, router, http.MethodPost, "/api/v1/plan/week", rangeRequest{Start: "2024-03-04", End: "2024-03-06"})
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
	res := decode[planner.GenerationResult](t, w)
	if len(res.GeneratedMeals) != 9 {
		t.Errorf("Expected 9 generated meals, got %d", len(res.GeneratedMeals))
	}

	w = do(t, router, http.MethodGet, "/api/v1/plan?start=2024-03-05&end=2024-03-05", nil)
	state := decode[planner.PlanState](t, w)
	if len(state.Plan) != 1 || state.Plan["2024-03-05"] == nil {
		t.Errorf("Expected only 2024-03-05, got %v", state.Plan.Dates())
	}

	w = do(t, router, http.MethodPut, "/api/v1/plan/days/2024-03-04/meals/dinner/recipe", swapRequest{RecipeID: "dinner-3"})
	if w.Code != http.StatusOK {
		t.Fatalf("Expected swap to succeed, got %d: %s", w.Code, w.Body.String())
	}
	day := decode[mealplan.DayPlan](t, w)
	if mealplan.RecipeID(day.Dinner) != "dinner-3" {
		t.Errorf("Expected dinner-3, got %q", mealplan.RecipeID(day.Dinner))
	}

	w = do(t, router, http.MethodPut, "/api/v1/plan/days/2024-03-04/meals/dinner/servings", servingsRequest{Servings: 100})
	day = decode[mealplan.DayPlan](t, w)
	if s := day.Dinner.AssignedServings(); s == nil || *s != 20 {
		t.Errorf("Expected servings clamped to 20, got %v", s)
	}

	w = do(t, router, http.MethodGet, "/api/v1/recipes/dinner-3/usage", nil)
	if usage := decode[map[string]any](t, w); usage["used"] != true {
		t.Errorf("Expected dinner-3 to be used, got %v", usage)
	}

	w = do(t, router, http.MethodGet, "/api/v1/metrics/summary", nil)
	summary := decode[[]metrics.DailySummary](t, w)
	if len(summary) != 1 || summary[0].Runs != 1 {
		t.Errorf("Expected one recorded run, got %+v", summary)
	}
}

func TestSwapRejected(t *testing.T) {
	router := newTestRouter(t)
	do(t, router, http.MethodPost, "/api/v1/plan/days/2024-03-04", nil)

	w := do(t, router, http.MethodPut, "/api/v1/plan/days/2024-03-04/meals/lunch/recipe", swapRequest{RecipeID: "nope"})
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("Expected 422, got %d", w.Code)
	}
	resp := decode[ErrorResponse](t, w)
	if resp.Code != CodeSwapRejected || resp.Message == "" {
		t.Errorf("Unexpected error response: %+v", resp)
	}

	w = do(t, router, http.MethodDelete, "/api/v1/plan/error", nil)
	if w.Code != http.StatusNoContent {
		t.Errorf("Expected 204, got %d", w.Code)
	}
	w = do(t, router, http.MethodGet, "/api/v1/plan", nil)
	if state := decode[planner.PlanState](t, w); state.LastGenerationError != "" {
		t.Errorf("Expected error cleared, got %q", state.LastGenerationError)
	}
}

func TestErrorMapping(t *testing.T) {
	router := newTestRouter(t)

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		status int
		code   string
	}{
		{"UnknownMealType", http.MethodPost, "/api/v1/plan/days/2024-03-04/meals/brunch", nil, http.StatusBadRequest, CodeUnknownMeal},
		{"MissingDay", http.MethodPut, "/api/v1/plan/days/2024-03-04/meals/lunch/servings", servingsRequest{Servings: 2}, http.StatusNotFound, CodeNotFound},
		{"BadRange", http.MethodPost, "/api/v1/groceries", rangeRequest{Start: "03/04/2024", End: "2024-03-10"}, http.StatusBadRequest, CodeInvalidDate},
		{"MissingBody", http.MethodPost, "/api/v1/plan/week", nil, http.StatusBadRequest, CodeBadRequest},
		{"ClearMissingDay", http.MethodDelete, "/api/v1/plan/days/2024-03-04", nil, http.StatusNotFound, CodeNotFound},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := do(t, router, tc.method, tc.path, tc.body)
			if w.Code != tc.status {
				t.Fatalf("Expected %d, got %d: %s", tc.status, w.Code, w.Body.String())
			}
			if resp := decode[ErrorResponse](t, w); resp.Code != tc.code {
				t.Errorf("Expected code %s, got %s", tc.code, resp.Code)
			}
		})
	}
}

func TestGenerationFailureIs422(t *testing.T) {
	router := newTestRouter(t)
	w := do(t, router, http.MethodPost, "/api/v1/plan/week", rangeRequest{Start: "2024-03-10", End: "2024-03-04"})
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("Expected 422, got %d", w.Code)
	}
	if res := decode[planner.GenerationResult](t, w); res.Error == "" {
		t.Error("Expected an error message in the result")
	}
}

func TestGroceries(t *testing.T) {
	router := newTestRouter(t)
	do(t, router, http.MethodPost, "/api/v1/plan/days/2024-03-04", nil)

	w := do(t, router, http.MethodPost, "/api/v1/groceries", rangeRequest{Start: "2024-03-04", End: "2024-03-04"})
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
	list := decode[shopping.ShoppingList](t, w)
	if len(list.Items) != 2 {
		t.Fatalf("Expected milk and oats, got %+v", list.Items)
	}
	for _, it := range list.Items {
		if it.Ingredient == "milk" && it.Quantity != 720 {
			t.Errorf("Expected 720 ml milk, got %v %s", it.Quantity, it.Unit)
		}
		if it.Ingredient == "oats" && it.Quantity != 300 {
			t.Errorf("Expected 300 g oats, got %v %s", it.Quantity, it.Unit)
		}
	}

	w = do(t, router, http.MethodPut, fmt.Sprintf("/api/v1/groceries/%d/items/milk", list.ID), checkRequest{Checked: true})
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}

	// Regenerating keeps the check mark.
	do(t, router, http.MethodPost, "/api/v1/groceries", rangeRequest{Start: "2024-03-04", End: "2024-03-04"})
	w = do(t, router, http.MethodGet, "/api/v1/groceries/latest", nil)
	latest := decode[shopping.ShoppingList](t, w)
	if latest.Remaining() != 1 {
		t.Errorf("Expected 1 remaining item, got %d", latest.Remaining())
	}

	w = do(t, router, http.MethodGet, "/api/v1/groceries?start=2025-01-01&end=2025-01-07", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", w.Code)
	}
}

func TestSnacksAndCustomMeals(t *testing.T) {
	router := newTestRouter(t)

	w := do(t, router, http.MethodPut, "/api/v1/plan/days/2024-03-04/meals/lunch/custom", customMealRequest{
		Title:       "Leftovers",
		Ingredients: []mealplan.CustomIngredient{{Quantity: 1, Name: "rice"}},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if meal := decode[mealplan.CustomMeal](t, w); meal.ID == "" {
		t.Error("Expected an id on the custom meal")
	}

	w = do(t, router, http.MethodPost, "/api/v1/plan/days/2024-03-04/snacks", snackRequest{RecipeID: "breakfast-1"})
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
	}
	if day := decode[mealplan.DayPlan](t, w); len(day.Snacks) != 1 {
		t.Errorf("Expected 1 snack, got %d", len(day.Snacks))
	}

	w = do(t, router, http.MethodPost, "/api/v1/plan/days/2024-03-04/snacks", snackRequest{RecipeID: "ghost"})
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for an unknown recipe, got %d", w.Code)
	}

	w = do(t, router, http.MethodDelete, "/api/v1/plan/days/2024-03-04/snacks/0", nil)
	if w.Code != http.StatusNoContent {
		t.Errorf("Expected 204, got %d", w.Code)
	}

	w = do(t, router, http.MethodGet, "/api/v1/recipes?meal_type=lunch", nil)
	if recs := decode[[]recipe.Recipe](t, w); len(recs) != 3 {
		t.Errorf("Expected 3 lunch recipes, got %d", len(recs))
	}
}
