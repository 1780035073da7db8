package store

import (
	"context"
	"fmt"

	"github.com/liftlog/liftlog-mcp/internal/model"
)

// ReplaceCatalog swaps the exercise catalog for a freshly synced copy in
// one transaction.
func (s *Store) ReplaceCatalog(ctx context.Context, catalog []model.ExerciseCatalogEntry) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting catalog transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM exercises`); err != nil {
		return fmt.Errorf("clearing catalog: %w", err)
	}
	for _, e := range catalog {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO exercises (id, name, muscle_group) VALUES (?, ?, ?)`,
			e.ID, e.Name, e.MuscleGroup)
		if err != nil {
			return fmt.Errorf("inserting exercise %s: %w", e.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing catalog: %w", err)
	}
	return nil
}

// ListExercises returns the synced exercise catalog.
func (s *Store) ListExercises(ctx context.Context) ([]model.ExerciseCatalogEntry, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, muscle_group FROM exercises ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("listing exercises: %w", err)
	}
	defer rows.Close()

	var catalog []model.ExerciseCatalogEntry
	for rows.Next() {
		var e model.ExerciseCatalogEntry
		if err := rows.Scan(&e.ID, &e.Name, &e.MuscleGroup); err != nil {
			return nil, fmt.Errorf("scanning exercise: %w", err)
		}
		catalog = append(catalog, e)
	}
	return catalog, rows.Err()
}

// CountExercises returns the catalog size.
func (s *Store) CountExercises(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM exercises`).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting exercises: %w", err)
	}
	return count, nil
}
