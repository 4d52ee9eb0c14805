package recipe

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"meal-planner/internal/database"
)

// Repository is a database-backed repository for recipes.
type Repository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewRepository creates a new Repository.
func NewRepository(d *sql.DB, logger *zap.Logger) *Repository {
	return &Repository{db: d, logger: logger}
}

const upsertRecipe = `
INSERT INTO recipes (id, data, meal_type, updated_at)
VALUES (?, ?, ?, ?)
ON CONFLICT (id) DO UPDATE SET
    data = excluded.data,
    meal_type = excluded.meal_type,
    updated_at = excluded.updated_at`

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Save inserts or updates a recipe in the database.
func (r *Repository) Save(ctx context.Context, rec Recipe) error {
	return r.save(ctx, r.db, rec)
}

// SaveAll upserts every recipe in a single transaction.
func (r *Repository) SaveAll(ctx context.Context, recs []Recipe) error {
	if len(recs) == 0 {
		return nil
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, rec := range recs {
		if err := r.save(ctx, tx, rec); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit recipes: %w", err)
	}
	return nil
}

func (r *Repository) save(ctx context.Context, ex execer, rec Recipe) error {
	if rec.ID == "" {
		return errors.New("recipe id is required")
	}
	recipeJSON, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal recipe to JSON: %w", err)
	}

	updatedAt := time.Now()
	if rec.UpdatedAt != "" {
		parsed, err := time.Parse(time.RFC3339, rec.UpdatedAt)
		if err != nil {
			r.logger.Warn("unparseable recipe timestamp, using current time",
				zap.String("recipe_id", rec.ID),
				zap.String("updated_at", rec.UpdatedAt),
				zap.Error(err),
			)
		} else {
			updatedAt = parsed
		}
	}

	_, err = ex.ExecContext(ctx, upsertRecipe, rec.ID, string(recipeJSON), string(rec.MealType), database.FormatTime(updatedAt))
	if err != nil {
		return fmt.Errorf("failed to save recipe %s: %w", rec.ID, err)
	}
	return nil
}

// Get retrieves a recipe by its ID. A missing recipe yields nil, nil.
func (r *Repository) Get(ctx context.Context, id string) (*Recipe, error) {
	var data string
	err := r.db.QueryRowContext(ctx, `SELECT data FROM recipes WHERE id = ?`, id).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get recipe by ID: %w", err)
	}

	var rec Recipe
	if err := json.Unmarshal([]byte(data), &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal recipe JSON: %w", err)
	}
	return &rec, nil
}

// List retrieves all recipes ordered by id, optionally excluding specified IDs.
func (r *Repository) List(ctx context.Context, excludeIDs []string) ([]Recipe, error) {
	if len(excludeIDs) == 0 {
		return r.query(ctx, `SELECT id, data FROM recipes ORDER BY id`)
	}
	query := `SELECT id, data FROM recipes WHERE id NOT IN (` + placeholders(len(excludeIDs)) + `) ORDER BY id`
	return r.query(ctx, query, toArgs(excludeIDs)...)
}

// Count returns the number of recipes in the database.
func (r *Repository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM recipes`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count recipes: %w", err)
	}
	return count, nil
}

func (r *Repository) query(ctx context.Context, query string, args ...any) ([]Recipe, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list recipes: %w", err)
	}
	defer rows.Close()

	var recipes []Recipe
	for rows.Next() {
		var id, data string
		if err := rows.Scan(&id, &data); err != nil {
			return nil, fmt.Errorf("failed to scan recipe row: %w", err)
		}
		var rec Recipe
		if err := json.Unmarshal([]byte(data), &rec); err != nil {
			// Skip corrupted rows rather than failing the whole listing.
			r.logger.Warn("failed to unmarshal recipe JSON", zap.String("recipe_id", id), zap.Error(err))
			continue
		}
		recipes = append(recipes, rec)
	}
	return recipes, rows.Err()
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

func toArgs(ids []string) []any {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return args
}
