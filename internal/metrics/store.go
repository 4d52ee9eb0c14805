package metrics

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"meal-planner/internal/database"
)

// GenerationRun records one plan generation call.
type GenerationRun struct {
	Operation   string
	SlotsFilled int
	Suggestions int
	Success     bool
	Latency     time.Duration
	Timestamp   time.Time
}

// Store handles persistence of metrics to SQLite.
type Store struct {
	db *sql.DB
}

// NewStore initializes the Store with an existing database connection.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Record saves a run to the database.
func (s *Store) Record(ctx context.Context, run GenerationRun) error {
	ts := run.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
INSERT INTO generation_runs (operation, slots_filled, suggestions, success, latency_ms, created_at)
VALUES (?, ?, ?, ?, ?, ?)`,
		run.Operation, run.SlotsFilled, run.Suggestions, run.Success, run.Latency.Milliseconds(), database.FormatTime(ts),
	)
	if err != nil {
		return fmt.Errorf("failed to record generation run: %w", err)
	}
	return nil
}

// DailySummary aggregates the runs of a single day.
type DailySummary struct {
	Date         string `json:"date"`
	Runs         int    `json:"runs"`
	Failures     int    `json:"failures"`
	SlotsFilled  int    `json:"slots_filled"`
	Suggestions  int    `json:"suggestions"`
	AvgLatencyMS int64  `json:"avg_latency_ms"`
}

// GetDailySummary retrieves per-day totals for the last N days, newest first.
func (s *Store) GetDailySummary(ctx context.Context, days int) ([]DailySummary, error) {
	since := database.FormatTime(time.Now().AddDate(0, 0, -days))
	rows, err := s.db.QueryContext(ctx, `
SELECT substr(created_at, 1, 10) AS day,
       COUNT(*),
       COALESCE(SUM(CASE WHEN success THEN 0 ELSE 1 END), 0),
       COALESCE(SUM(slots_filled), 0),
       COALESCE(SUM(suggestions), 0),
       CAST(COALESCE(AVG(latency_ms), 0) AS INTEGER)
FROM generation_runs
WHERE created_at >= ?
GROUP BY day
ORDER BY day DESC`, since)
	if err != nil {
		return nil, fmt.Errorf("failed to query daily summary: %w", err)
	}
	defer rows.Close()

	var results []DailySummary
	for rows.Next() {
		var d DailySummary
		if err := rows.Scan(&d.Date, &d.Runs, &d.Failures, &d.SlotsFilled, &d.Suggestions, &d.AvgLatencyMS); err != nil {
			return nil, fmt.Errorf("failed to scan daily summary: %w", err)
		}
		results = append(results, d)
	}
	return results, rows.Err()
}

// Cleanup removes records older than the specified number of days and
// returns how many were deleted.
func (s *Store) Cleanup(ctx context.Context, olderThanDays int) (int64, error) {
	threshold := database.FormatTime(time.Now().AddDate(0, 0, -olderThanDays))
	res, err := s.db.ExecContext(ctx, `DELETE FROM generation_runs WHERE created_at < ?`, threshold)
	if err != nil {
		return 0, fmt.Errorf("failed to clean up generation runs: %w", err)
	}
	return res.RowsAffected()
}
