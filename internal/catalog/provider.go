// Package catalog supplies candidate recipes per meal type, preferring the
// locally loaded pool and falling back to a remote Source.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"meal-planner/internal/recipe"
)

// DefaultTimeout bounds a single remote fetch.
const DefaultTimeout = 10 * time.Second

// Source is a remote recipe catalog.
type Source interface {
	Fetch(ctx context.Context, mt recipe.MealType) ([]recipe.Recipe, error)
}

// Persister stores recipes obtained from the remote catalog.
type Persister interface {
	SaveAll(ctx context.Context, recs []recipe.Recipe) error
}

// Lookup resolves a single recipe that is not in the cache. A nil recipe with
// a nil error means the id is unknown.
type Lookup interface {
	Get(ctx context.Context, id string) (*recipe.Recipe, error)
}

// Provider is the recipe pool. The cache is safe for concurrent use.
type Provider struct {
	mu    sync.RWMutex
	byID  map[string]recipe.Recipe
	order []string

	source    Source
	persister Persister
	lookup    Lookup
	timeout   time.Duration
	logger    *zap.Logger
}

// Option configures a Provider.
type Option func(*Provider)

// WithSource sets the remote catalog consulted when the local pool is empty.
func WithSource(s Source) Option {
	return func(p *Provider) { p.source = s }
}

// WithPersister sets where remote results are stored.
func WithPersister(ps Persister) Option {
	return func(p *Provider) { p.persister = ps }
}

// WithLookup sets the store consulted when Recipe misses the cache.
func WithLookup(l Lookup) Option {
	return func(p *Provider) { p.lookup = l }
}

// WithTimeout bounds each remote fetch. Non-positive values keep the default.
func WithTimeout(d time.Duration) Option {
	return func(p *Provider) {
		if d > 0 {
			p.timeout = d
		}
	}
}

// NewProvider creates an empty Provider.
func NewProvider(logger *zap.Logger, opts ...Option) *Provider {
	p := &Provider{
		byID:    make(map[string]recipe.Recipe),
		timeout: DefaultTimeout,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Load merges recipes into the cache. Later entries replace earlier ones
// with the same id but keep their original position.
func (p *Provider) Load(recipes []recipe.Recipe) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, r := range recipes {
		if r.ID == "" {
			continue
		}
		if _, ok := p.byID[r.ID]; !ok {
			p.order = append(p.order, r.ID)
		}
		p.byID[r.ID] = r
	}
}

// Recipe resolves a recipe by id, falling back to the lookup store on a
// cache miss. Found recipes are cached.
func (p *Provider) Recipe(id string) (recipe.Recipe, bool) {
	p.mu.RLock()
	r, ok := p.byID[id]
	p.mu.RUnlock()
	if ok || p.lookup == nil || id == "" {
		return r, ok
	}

	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()
	found, err := p.lookup.Get(ctx, id)
	if err != nil {
		p.logger.Warn("recipe lookup failed", zap.String("recipe_id", id), zap.Error(err))
		return recipe.Recipe{}, false
	}
	if found == nil {
		return recipe.Recipe{}, false
	}
	p.Load([]recipe.Recipe{*found})
	return *found, true
}

// All returns the cached recipes in load order.
func (p *Provider) All() []recipe.Recipe {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]recipe.Recipe, 0, len(p.order))
	for _, id := range p.order {
		out = append(out, p.byID[id])
	}
	return out
}

// Len returns the number of cached recipes.
func (p *Provider) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.byID)
}

// Candidates returns the pool for a meal type. A non-nil local slice replaces
// the cache as the local pool for this call, and the recipes picked from it
// are cached so later lookups resolve them. The remote source is consulted
// only when the local pool has nothing for the meal type; its failures are
// logged and read as an empty result.
func (p *Provider) Candidates(ctx context.Context, mt recipe.MealType, local []recipe.Recipe) []recipe.Recipe {
	explicit := local != nil
	if local == nil {
		local = p.All()
	}
	if pool := recipe.ForMealType(local, mt); len(pool) > 0 {
		if explicit {
			p.Load(pool)
		}
		return pool
	}
	if p.source == nil {
		return []recipe.Recipe{}
	}

	remote, err := p.fetch(ctx, mt)
	if err != nil {
		p.logger.Warn("remote catalog unavailable, continuing with empty pool",
			zap.String("meal_type", string(mt)),
			zap.Error(err),
		)
		return []recipe.Recipe{}
	}

	pool := recipe.ForMealType(remote, mt)
	if len(pool) == 0 {
		return []recipe.Recipe{}
	}
	p.Load(pool)
	p.persist(ctx, pool)

	p.logger.Info("loaded recipes from remote catalog",
		zap.String("meal_type", string(mt)),
		zap.Int("count", len(pool)),
	)
	return pool
}

// Refresh pulls every meal type from the remote source into the cache,
// regardless of what is already loaded. Unlike Candidates it reports errors.
func (p *Provider) Refresh(ctx context.Context) (int, error) {
	if p.source == nil {
		return 0, errors.New("no remote catalog configured")
	}

	total := 0
	var errs []error
	for _, mt := range recipe.MealTypes {
		remote, err := p.fetch(ctx, mt)
		if err != nil {
			errs = append(errs, fmt.Errorf("fetch %s: %w", mt, err))
			continue
		}
		pool := recipe.ForMealType(remote, mt)
		p.Load(pool)
		p.persist(ctx, pool)
		total += len(pool)
	}
	return total, errors.Join(errs...)
}

func (p *Provider) fetch(ctx context.Context, mt recipe.MealType) ([]recipe.Recipe, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	recs, err := p.source.Fetch(ctx, mt)
	if err != nil {
		return nil, err
	}
	// Remote entries selected by tag are pinned to the meal type they were
	// fetched for.
	for i := range recs {
		if recs[i].MealType == "" {
			recs[i].MealType = mt
		}
	}
	return recs, nil
}

func (p *Provider) persist(ctx context.Context, recs []recipe.Recipe) {
	if p.persister == nil || len(recs) == 0 {
		return
	}
	if err := p.persister.SaveAll(ctx, recs); err != nil {
		p.logger.Error("failed to persist remote recipes", zap.Int("count", len(recs)), zap.Error(err))
	}
}
