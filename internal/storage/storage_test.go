package storage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"meal-planner/internal/recipe"
)

func TestRecipeStore(t *testing.T) {
	tempDir := t.TempDir()

	store, err := NewRecipeStore(tempDir)
	if err != nil {
		t.Fatalf("Failed to create RecipeStore: %v", err)
	}

	recipeID := "test/recipe-123"
	rec := recipe.Recipe{
		ID:          recipeID,
		Name:        "Test Recipe",
		Ingredients: []string{"1 cup of testing"},
		MealType:    recipe.Dinner,
		Servings:    2,
	}

	t.Run("CheckExists-False", func(t *testing.T) {
		if store.Exists(recipeID) {
			t.Errorf("Expected recipe '%s' to not exist, but it does", recipeID)
		}
	})

	t.Run("Save", func(t *testing.T) {
		if err := store.Save(rec); err != nil {
			t.Fatalf("Failed to save recipe: %v", err)
		}

		filePath := filepath.Join(tempDir, "test-recipe-123.json")
		if _, err := os.Stat(filePath); os.IsNotExist(err) {
			t.Errorf("Expected file '%s' to be created, but it wasn't", filePath)
		}
		if !store.Exists(recipeID) {
			t.Errorf("Expected recipe '%s' to exist, but it doesn't", recipeID)
		}
	})

	t.Run("Load", func(t *testing.T) {
		loadedRec, err := store.Load(recipeID)
		if err != nil {
			t.Fatalf("Failed to load recipe: %v", err)
		}
		if loadedRec.Name != rec.Name || loadedRec.MealType != recipe.Dinner {
			t.Errorf("Expected '%s' for dinner, got '%s' for %s", rec.Name, loadedRec.Name, loadedRec.MealType)
		}
		if len(loadedRec.Ingredients) != 1 || loadedRec.Ingredients[0] != "1 cup of testing" {
			t.Errorf("Unexpected ingredients: %q", loadedRec.Ingredients)
		}
	})

	t.Run("Load-NotFound", func(t *testing.T) {
		if _, err := store.Load("non-existent-recipe"); err == nil {
			t.Fatal("Expected an error for loading non-existent recipe, got nil")
		}
	})

	t.Run("Save-NoID", func(t *testing.T) {
		if err := store.Save(recipe.Recipe{Name: "anonymous"}); !errors.Is(err, ErrNoID) {
			t.Errorf("Expected ErrNoID, got %v", err)
		}
	})
}

func TestRecipeStore_ListAll(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"a.json":     `[{"id": "b1", "name": "Porridge", "meal_type": "breakfast"}, {"id": "d1", "name": "Stew"}]`,
		"b.json":     `{"id": "l1", "name": "Salad", "meal_type": "lunch", "source": "manual"}`,
		"notes.txt":  `ignored`,
		"empty.json": `[]`,
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
	store, _ := NewRecipeStore(dir)

	if _, err := store.ListAll(); err == nil {
		t.Fatal("Expected an error for a file without recipes")
	}
	os.Remove(filepath.Join(dir, "empty.json"))

	recs, err := store.ListAll()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(recs) != 3 {
		t.Fatalf("Expected 3 recipes, got %d", len(recs))
	}
	if recs[0].ID != "b1" || recs[2].ID != "l1" {
		t.Errorf("Expected file name order, got %s, %s", recs[0].ID, recs[2].ID)
	}
	if recs[0].Source != "file" || recs[2].Source != "manual" {
		t.Errorf("Expected default source only when missing, got %q and %q", recs[0].Source, recs[2].Source)
	}

	os.WriteFile(filepath.Join(dir, "c.json"), []byte(`{"name": "no id"}`), 0644)
	if _, err := store.ListAll(); !errors.Is(err, ErrNoID) {
		t.Errorf("Expected ErrNoID, got %v", err)
	}
}
