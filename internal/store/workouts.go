package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/liftlog/liftlog-mcp/internal/model"
)

// UpsertWorkout writes one synced workout, replacing any prior copy.
// Exercises and sets are stored as a JSON document; the analytical
// queries all run in memory over the decoded log.
func (s *Store) UpsertWorkout(ctx context.Context, w model.WorkoutRecord) error {
	exercises, err := json.Marshal(w.Exercises)
	if err != nil {
		return fmt.Errorf("encoding exercises for workout %s: %w", w.ID, err)
	}

	var totalVolume sql.NullFloat64
	if w.TotalVolume != nil {
		totalVolume = sql.NullFloat64{Float64: *w.TotalVolume, Valid: true}
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO workouts (id, status, started_at, completed_at, duration_sec, total_volume, exercises_json)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			status = excluded.status,
			started_at = excluded.started_at,
			completed_at = excluded.completed_at,
			duration_sec = excluded.duration_sec,
			total_volume = excluded.total_volume,
			exercises_json = excluded.exercises_json`,
		w.ID, string(w.Status), w.StartedAt, w.CompletedAt, w.DurationSec, totalVolume, string(exercises))
	if err != nil {
		return fmt.Errorf("upserting workout %s: %w", w.ID, err)
	}
	return nil
}

// ListWorkouts returns the full synced log in completed_at order.
func (s *Store) ListWorkouts(ctx context.Context) ([]model.WorkoutRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, status, started_at, completed_at, duration_sec, total_volume, exercises_json
		FROM workouts
		ORDER BY completed_at, id`)
	if err != nil {
		return nil, fmt.Errorf("listing workouts: %w", err)
	}
	defer rows.Close()

	var workouts []model.WorkoutRecord
	for rows.Next() {
		var (
			w           model.WorkoutRecord
			status      string
			totalVolume sql.NullFloat64
			exercises   string
		)
		if err := rows.Scan(&w.ID, &status, &w.StartedAt, &w.CompletedAt, &w.DurationSec, &totalVolume, &exercises); err != nil {
			return nil, fmt.Errorf("scanning workout: %w", err)
		}
		w.Status = model.WorkoutStatus(status)
		if totalVolume.Valid {
			w.TotalVolume = &totalVolume.Float64
		}
		if err := json.Unmarshal([]byte(exercises), &w.Exercises); err != nil {
			return nil, fmt.Errorf("decoding exercises for workout %s: %w", w.ID, err)
		}
		workouts = append(workouts, w)
	}
	return workouts, rows.Err()
}

// LatestCompletedAt returns the newest completed_at timestamp among
// completed workouts, or "" when the log is empty. Drives delta sync.
func (s *Store) LatestCompletedAt(ctx context.Context) (string, error) {
	var latest sql.NullString
	err := s.db.QueryRowContext(ctx, `
		SELECT MAX(completed_at) FROM workouts
		WHERE status = ? AND completed_at != ''`,
		string(model.StatusCompleted)).Scan(&latest)
	if err != nil {
		return "", fmt.Errorf("querying latest completion: %w", err)
	}
	return latest.String, nil
}

// CountWorkouts returns the number of synced workouts.
func (s *Store) CountWorkouts(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM workouts`).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting workouts: %w", err)
	}
	return count, nil
}

// CountCompletedWorkouts returns the number of completed workouts.
func (s *Store) CountCompletedWorkouts(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM workouts WHERE status = ?`,
		string(model.StatusCompleted)).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting completed workouts: %w", err)
	}
	return count, nil
}
