package acceptance_tests

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"meal-planner/internal/catalog"
	"meal-planner/internal/config"
	"meal-planner/internal/ghost"
	"meal-planner/internal/httpapi"
	"meal-planner/internal/planner"
)

// --- In-memory catalog cache ---
type memCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func (m *memCache) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return nil, catalog.ErrCacheMiss
	}
	return v, nil
}

func (m *memCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

// --- Mock Ghost server ---
var ingredientsByTag = map[string][]string{
	"breakfast": {"2 eggs", "100 g oats"},
	"lunch":     {"200 g rice"},
	"dinner":    {"1 cup milk"},
}

func recipeHTML(ingredients []string) string {
	var sb strings.Builder
	sb.WriteString("<h2>Ingredients</h2><ul>")
	for _, line := range ingredients {
		sb.WriteString("<li>" + line + "</li>")
	}
	sb.WriteString("</ul><p>Servings: 2</p>")
	return sb.String()
}

func newGhostServer(hits *atomic.Int32) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		tag := strings.TrimPrefix(r.URL.Query().Get("filter"), "tag:")
		html := recipeHTML(ingredientsByTag[tag])

		var posts []string
		for i := 1; i <= 3; i++ {
			posts = append(posts, fmt.Sprintf(`{"id": "%s-%d", "title": "%s %d", "html": %q}`, tag, i, tag, i, html))
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"posts": [%s], "meta": {"pagination": {"next": null}}}`, strings.Join(posts, ","))
	}))
}

func newRouter(serverURL string, cache catalog.Cache) (*gin.Engine, *planner.Service) {
	client := ghost.NewClient(&config.Config{GhostURL: serverURL, GhostContentKey: "key"})
	source := catalog.NewCachedSource(ghost.NewRecipeSource(client, zap.NewNop()), cache, time.Hour, zap.NewNop())
	provider := catalog.NewProvider(zap.NewNop(), catalog.WithSource(source))

	engine := planner.NewEngine(provider, zap.NewNop(), planner.WithPolicy(planner.PolicyFirst))
	svc := planner.NewService(engine, planner.NewMemoryStore(), zap.NewNop(), planner.WithDefaultUniquePerWeek(true))
	return httpapi.NewRouter(httpapi.Deps{Planner: svc, Catalog: provider}, zap.NewNop()), svc
}

func call(t *testing.T, router *gin.Engine, method, path string, body any, out any) int {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if out != nil {
		if err := json.Unmarshal(w.Body.Bytes(), out); err != nil {
			t.Fatalf("Failed to decode %s %s response %q: %v", method, path, w.Body.String(), err)
		}
	}
	return w.Code
}

// --- Acceptance Test ---
func TestFullWorkflow(t *testing.T) {
	gin.SetMode(gin.TestMode)

	var hits atomic.Int32
	server := newGhostServer(&hits)
	defer server.Close()
	cache := &memCache{data: map[string][]byte{}}

	// 1. Plan three days from an empty local pool: every meal type is
	// fetched from Ghost exactly once.
	router, svc := newRouter(server.URL, cache)
	week := map[string]string{"start": "2024-03-04", "end": "2024-03-06"}

	var res planner.GenerationResult
	if code := call(t, router, http.MethodPost, "/api/v1/plan/week", week, &res); code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %+v", code, res)
	}
	if len(res.GeneratedMeals) != 9 || len(res.Suggestions) != 0 {
		t.Errorf("Expected 9 meals without notes, got %+v", res)
	}
	if hits.Load() != 3 {
		t.Errorf("Expected 3 Ghost requests, got %d", hits.Load())
	}

	state, _ := svc.Snapshot(context.Background())
	if id := state.Plan.Day("2024-03-06").Breakfast.DisplayName(); id != "breakfast 3" {
		t.Errorf("Expected the third breakfast on day three, got %q", id)
	}

	// 2. Aggregate the groceries.
	items, err := svc.GenerateGroceryList(context.Background(), "2024-03-04", "2024-03-06")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	want := map[string]float64{"egg": 6, "oats": 300, "rice": 600, "milk": 720}
	if len(items) != len(want) {
		t.Fatalf("Expected %d grocery items, got %+v", len(want), items)
	}
	for _, it := range items {
		if it.Quantity != want[it.Ingredient] {
			t.Errorf("Expected %v %s, got %v %s", want[it.Ingredient], it.Ingredient, it.Quantity, it.Unit)
		}
	}

	// 3. A fresh process with the same cache plans without touching Ghost.
	router2, _ := newRouter(server.URL, cache)
	if code := call(t, router2, http.MethodPost, "/api/v1/plan/days/2024-03-11", nil, &res); code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %+v", code, res)
	}
	if len(res.GeneratedMeals) != 3 {
		t.Errorf("Expected 3 meals, got %+v", res)
	}
	if hits.Load() != 3 {
		t.Errorf("Expected cached catalog, Ghost saw %d requests", hits.Load())
	}
}

// A Ghost outage is reported through the generation result and the state,
// never as a server error.
func TestCatalogOutage(t *testing.T) {
	gin.SetMode(gin.TestMode)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	router, _ := newRouter(server.URL, &memCache{data: map[string][]byte{}})

	var res planner.GenerationResult
	code := call(t, router, http.MethodPost, "/api/v1/plan/week", map[string]string{"start": "2024-03-04", "end": "2024-03-05"}, &res)
	if code != http.StatusUnprocessableEntity {
		t.Errorf("Expected 422, got %d", code)
	}
	if res.Success || res.Error == "" {
		t.Errorf("Expected failed result with an error, got %+v", res)
	}

	var state planner.PlanState
	call(t, router, http.MethodGet, "/api/v1/plan", nil, &state)
	if state.LastGenerationError != res.Error {
		t.Errorf("Expected sticky error %q, got %q", res.Error, state.LastGenerationError)
	}
	if len(state.Plan) != 0 {
		t.Errorf("Expected no days written, got %v", state.Plan.Dates())
	}
}
