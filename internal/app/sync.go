package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"meal-planner/internal/ghost"
	"meal-planner/internal/shopping"
	"meal-planner/internal/storage"
)

// ErrNoCatalog is returned by operations that need Ghost when it is not
// configured.
var ErrNoCatalog = errors.New("ghost catalog not configured")

// SyncRecipes pulls every meal type from Ghost into the catalog and the
// recipe table. Meal types that fail are reported after the others finish.
func (a *App) SyncRecipes(ctx context.Context) (int, error) {
	if a.Ghost == nil {
		return 0, ErrNoCatalog
	}
	start := time.Now()
	n, err := a.Catalog.Refresh(ctx)
	a.Logger.Info("recipe sync finished",
		zap.Int("recipes", n),
		zap.Duration("latency", time.Since(start)),
		zap.Error(err),
	)
	return n, err
}

// GroceryList rebuilds and stores the shopping list for [start, end],
// keeping items already checked off.
func (a *App) GroceryList(ctx context.Context, start, end string) (*shopping.ShoppingList, error) {
	items, err := a.Planner.GenerateGroceryList(ctx, start, end)
	if err != nil {
		return nil, err
	}
	return a.Lists.Replace(ctx, start, end, items)
}

// PublishPlan posts the plan and shopping list for [start, end] to Ghost as
// a draft.
func (a *App) PublishPlan(ctx context.Context, start, end string) (*ghost.Post, error) {
	if a.Ghost == nil {
		return nil, ErrNoCatalog
	}
	state, err := a.Planner.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	plan := state.Plan.Range(start, end)
	if len(plan) == 0 {
		return nil, fmt.Errorf("nothing planned between %s and %s", start, end)
	}
	list, err := a.GroceryList(ctx, start, end)
	if err != nil {
		return nil, err
	}

	post, err := a.Ghost.PublishPlan(ctx, start, end, plan, list.Items)
	if err != nil {
		return nil, fmt.Errorf("failed to publish plan: %w", err)
	}
	a.Logger.Info("plan published", zap.String("post_id", post.ID), zap.String("start", start), zap.String("end", end))
	return post, nil
}

// CleanupMetrics drops generation runs older than days.
func (a *App) CleanupMetrics(ctx context.Context, days int) (int64, error) {
	n, err := a.Metrics.Cleanup(ctx, days)
	if err != nil {
		return 0, fmt.Errorf("failed to clean up metrics: %w", err)
	}
	a.Logger.Info("metrics cleaned up", zap.Int64("deleted", n), zap.Int("older_than_days", days))
	return n, nil
}

// ImportRecipes loads every recipe file in dir into the recipe table and the
// catalog. Existing recipes with the same id are replaced.
func (a *App) ImportRecipes(ctx context.Context, dir string) (int, error) {
	store, err := storage.NewRecipeStore(dir)
	if err != nil {
		return 0, err
	}
	recs, err := store.ListAll()
	if err != nil {
		return 0, err
	}
	if err := a.Recipes.SaveAll(ctx, recs); err != nil {
		return 0, fmt.Errorf("failed to save imported recipes: %w", err)
	}
	a.Catalog.Load(recs)
	a.Logger.Info("recipes imported", zap.String("dir", dir), zap.Int("count", len(recs)))
	return len(recs), nil
}

// ExportRecipes writes every stored recipe to dir, one file per recipe.
func (a *App) ExportRecipes(ctx context.Context, dir string) (int, error) {
	store, err := storage.NewRecipeStore(dir)
	if err != nil {
		return 0, err
	}
	recs, err := a.Recipes.List(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to list recipes: %w", err)
	}
	for _, r := range recs {
		if err := store.Save(r); err != nil {
			return 0, err
		}
	}
	return len(recs), nil
}
