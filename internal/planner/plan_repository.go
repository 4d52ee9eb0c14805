package planner

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"meal-planner/internal/database"
	"meal-planner/internal/mealplan"
)

// Store persists the PlanState. Load returns nil when nothing was saved yet.
type Store interface {
	Load(ctx context.Context) (*PlanState, error)
	Save(ctx context.Context, state *PlanState) error
}

// PlanRepository is a database-backed Store.
type PlanRepository struct {
	db *sql.DB
}

// NewPlanRepository creates a new PlanRepository.
func NewPlanRepository(d *sql.DB) *PlanRepository {
	return &PlanRepository{db: d}
}

// Load reads the settings row and every stored day.
func (r *PlanRepository) Load(ctx context.Context) (*PlanState, error) {
	state := NewPlanState()
	found := false

	var (
		unique      bool
		suggestions string
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT unique_per_week, last_generation_error, suggestions FROM plan_settings WHERE id = 1`,
	).Scan(&unique, &state.LastGenerationError, &suggestions)
	switch {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		return nil, fmt.Errorf("failed to load plan settings: %w", err)
	default:
		found = true
		state.UniquePerWeek = unique
		if err := json.Unmarshal([]byte(suggestions), &state.Suggestions); err != nil {
			return nil, fmt.Errorf("failed to unmarshal suggestions: %w", err)
		}
	}

	rows, err := r.db.QueryContext(ctx, `SELECT date, data FROM meal_plan_days ORDER BY date`)
	if err != nil {
		return nil, fmt.Errorf("failed to list meal plan days: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var date, data string
		if err := rows.Scan(&date, &data); err != nil {
			return nil, fmt.Errorf("failed to scan meal plan day: %w", err)
		}
		var day mealplan.DayPlan
		if err := json.Unmarshal([]byte(data), &day); err != nil {
			return nil, fmt.Errorf("failed to unmarshal meal plan for %s: %w", date, err)
		}
		state.Plan[date] = &day
		found = true
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if !found {
		return nil, nil
	}
	return state, nil
}

// Save replaces the stored plan with state in one transaction.
func (r *PlanRepository) Save(ctx context.Context, state *PlanState) error {
	suggestions, err := json.Marshal(nonNil(state.Suggestions))
	if err != nil {
		return fmt.Errorf("failed to marshal suggestions: %w", err)
	}
	now := database.FormatTime(time.Now())

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
INSERT INTO plan_settings (id, unique_per_week, last_generation_error, suggestions, updated_at)
VALUES (1, ?, ?, ?, ?)
ON CONFLICT (id) DO UPDATE SET
    unique_per_week = excluded.unique_per_week,
    last_generation_error = excluded.last_generation_error,
    suggestions = excluded.suggestions,
    updated_at = excluded.updated_at`,
		state.UniquePerWeek, state.LastGenerationError, string(suggestions), now,
	)
	if err != nil {
		return fmt.Errorf("failed to save plan settings: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM meal_plan_days`); err != nil {
		return fmt.Errorf("failed to clear meal plan days: %w", err)
	}
	for _, date := range state.Plan.Dates() {
		data, err := json.Marshal(state.Plan[date])
		if err != nil {
			return fmt.Errorf("failed to marshal meal plan for %s: %w", date, err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO meal_plan_days (date, data, updated_at) VALUES (?, ?, ?)`,
			date, string(data), now,
		); err != nil {
			return fmt.Errorf("failed to save meal plan for %s: %w", date, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit meal plan: %w", err)
	}
	return nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
