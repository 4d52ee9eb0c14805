// Package app wires configuration, storage, the recipe catalog and the
// planner into one set of dependencies shared by the binaries.
package app

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"meal-planner/internal/catalog"
	"meal-planner/internal/config"
	"meal-planner/internal/database"
	"meal-planner/internal/ghost"
	"meal-planner/internal/metrics"
	"meal-planner/internal/planner"
	"meal-planner/internal/recipe"
	"meal-planner/internal/shopping"
)

// App holds the application's dependencies.
type App struct {
	Config  *config.Config
	Logger  *zap.Logger
	DB      *database.DB
	Recipes *recipe.Repository
	Plans   *planner.PlanRepository
	Lists   *shopping.Repository
	Metrics *metrics.Store
	Catalog *catalog.Provider
	Planner *planner.Service

	// Ghost is nil when no remote catalog is configured.
	Ghost *ghost.Client

	cache *catalog.RedisCache
}

// New opens the database, loads the stored recipes into the catalog and
// builds the planner on top of them.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	policy, err := planner.ParseSelectionPolicy(cfg.SelectionPolicy)
	if err != nil {
		return nil, err
	}

	db, err := database.NewDB(cfg.DatabasePath, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	a := &App{
		Config:  cfg,
		Logger:  logger,
		DB:      db,
		Recipes: recipe.NewRepository(db.SQL, logger),
		Plans:   planner.NewPlanRepository(db.SQL),
		Lists:   shopping.NewRepository(db.SQL),
		Metrics: metrics.NewStore(db.SQL),
	}

	opts := []catalog.Option{
		catalog.WithPersister(a.Recipes),
		catalog.WithLookup(a.Recipes),
		catalog.WithTimeout(cfg.CatalogTimeout),
	}
	if cfg.HasCatalog() {
		a.Ghost = ghost.NewClient(cfg)
		var source catalog.Source = ghost.NewRecipeSource(a.Ghost, logger)
		if cfg.CacheEnabled {
			cache, err := catalog.NewRedisCache(ctx, cfg.RedisAddr)
			if err != nil {
				// The catalog still works uncached.
				logger.Warn("recipe cache disabled", zap.String("addr", cfg.RedisAddr), zap.Error(err))
			} else {
				a.cache = cache
				source = catalog.NewCachedSource(source, cache, cfg.CacheTTL, logger)
			}
		}
		opts = append(opts, catalog.WithSource(source))
	}
	a.Catalog = catalog.NewProvider(logger, opts...)

	stored, err := a.Recipes.List(ctx, nil)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to load recipes: %w", err)
	}
	a.Catalog.Load(stored)
	logger.Info("recipe catalog loaded",
		zap.Int("recipes", len(stored)),
		zap.Bool("remote", cfg.HasCatalog()),
	)

	engine := planner.NewEngine(a.Catalog, logger,
		planner.WithPolicy(policy),
		planner.WithConstraints(recipe.Constraints{
			Allergens:   cfg.Allergens,
			DietaryTags: cfg.DietaryTags,
		}),
	)
	a.Planner = planner.NewService(engine, a.Plans, logger,
		planner.WithRecorder(a.Metrics),
		planner.WithDefaultUniquePerWeek(cfg.UniquePerWeek),
	)
	return a, nil
}

// Close releases the database and cache connections.
func (a *App) Close() error {
	var errs []error
	if a.cache != nil {
		errs = append(errs, a.cache.Close())
	}
	errs = append(errs, a.DB.Close())
	return errors.Join(errs...)
}
