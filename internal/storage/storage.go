// Package storage keeps recipes as one JSON file per recipe, for importing
// hand-written catalogs and exporting the stored one.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"meal-planner/internal/recipe"
)

// ErrNoID is returned for a recipe file without an id.
var ErrNoID = errors.New("recipe has no id")

// RecipeStore provides a file-based storage for recipes.
type RecipeStore struct {
	basePath string
}

// NewRecipeStore creates a new RecipeStore and ensures the base directory exists.
func NewRecipeStore(basePath string) (*RecipeStore, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory %s: %w", basePath, err)
	}
	return &RecipeStore{basePath: basePath}, nil
}

// sanitizeID makes the id safe for filenames.
func sanitizeID(id string) string {
	return strings.NewReplacer("/", "-", "\\", "-", ":", "-").Replace(id)
}

func (s *RecipeStore) path(recipeID string) string {
	return filepath.Join(s.basePath, sanitizeID(recipeID)+".json")
}

// Save stores a recipe in <id>.json, replacing an earlier version.
func (s *RecipeStore) Save(rec recipe.Recipe) error {
	if rec.ID == "" {
		return ErrNoID
	}
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal recipe: %w", err)
	}
	if err := os.WriteFile(s.path(rec.ID), data, 0644); err != nil {
		return fmt.Errorf("failed to write recipe file: %w", err)
	}
	return nil
}

// Load retrieves one recipe by id.
func (s *RecipeStore) Load(recipeID string) (*recipe.Recipe, error) {
	recs, err := readFile(s.path(recipeID))
	if err != nil {
		return nil, err
	}
	return &recs[0], nil
}

// Exists checks if a recipe file exists.
func (s *RecipeStore) Exists(recipeID string) bool {
	_, err := os.Stat(s.path(recipeID))
	return !os.IsNotExist(err)
}

// ListAll reads every *.json file in the directory, in file name order. A
// file may hold one recipe or an array of them.
func (s *RecipeStore) ListAll() ([]recipe.Recipe, error) {
	matches, err := filepath.Glob(filepath.Join(s.basePath, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("failed to list recipe files: %w", err)
	}
	sort.Strings(matches)

	var all []recipe.Recipe
	for _, match := range matches {
		recs, err := readFile(match)
		if err != nil {
			return nil, err
		}
		all = append(all, recs...)
	}
	return all, nil
}

func readFile(path string) ([]recipe.Recipe, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read recipe file: %w", err)
	}

	var recs []recipe.Recipe
	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, "[") {
		err = json.Unmarshal(data, &recs)
	} else {
		var rec recipe.Recipe
		err = json.Unmarshal(data, &rec)
		recs = []recipe.Recipe{rec}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal %s: %w", filepath.Base(path), err)
	}

	for i := range recs {
		if recs[i].ID == "" {
			return nil, fmt.Errorf("%s entry %d: %w", filepath.Base(path), i, ErrNoID)
		}
		if recs[i].Source == "" {
			recs[i].Source = "file"
		}
	}
	if len(recs) == 0 {
		return nil, fmt.Errorf("%s holds no recipes", filepath.Base(path))
	}
	return recs, nil
}
