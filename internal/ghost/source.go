package ghost

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"meal-planner/internal/recipe"
)

// RecipeSource serves recipe posts tagged with a meal type as a remote
// catalog.
type RecipeSource struct {
	client *Client
	logger *zap.Logger
}

// NewRecipeSource wraps client as a recipe catalog.
func NewRecipeSource(client *Client, logger *zap.Logger) *RecipeSource {
	return &RecipeSource{client: client, logger: logger}
}

// Fetch returns the recipes tagged with mt. Posts that are not recipes are
// skipped.
func (s *RecipeSource) Fetch(ctx context.Context, mt recipe.MealType) ([]recipe.Recipe, error) {
	posts, err := s.client.FetchPosts(ctx, string(mt))
	if err != nil {
		return nil, err
	}

	recipes := make([]recipe.Recipe, 0, len(posts))
	for _, p := range posts {
		r, err := ParsePost(p)
		if err != nil {
			if !errors.Is(err, ErrNoIngredients) {
				s.logger.Warn("failed to parse recipe post", zap.String("post_id", p.ID), zap.Error(err))
			}
			continue
		}
		if r.MealType == "" {
			r.MealType = mt
		}
		recipes = append(recipes, r)
	}

	s.logger.Debug("fetched recipes from ghost",
		zap.String("meal_type", string(mt)),
		zap.Int("posts", len(posts)),
		zap.Int("recipes", len(recipes)),
	)
	return recipes, nil
}
