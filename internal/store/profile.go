package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/liftlog/liftlog-mcp/internal/model"
)

// ErrNoProfile means no user profile has been synced yet.
var ErrNoProfile = errors.New("no profile synced")

// SaveProfile writes the synced user profile, replacing any prior copy.
func (s *Store) SaveProfile(ctx context.Context, p model.UserProfile) error {
	var bodyWeight sql.NullFloat64
	if p.BodyWeightKg != nil {
		bodyWeight = sql.NullFloat64{Float64: *p.BodyWeightKg, Valid: true}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO profile (user_id, display_name, body_weight_kg)
		VALUES (?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			display_name = excluded.display_name,
			body_weight_kg = excluded.body_weight_kg`,
		p.UserID, p.DisplayName, bodyWeight)
	if err != nil {
		return fmt.Errorf("saving profile: %w", err)
	}
	return nil
}

// GetProfile returns the synced user profile.
func (s *Store) GetProfile(ctx context.Context) (model.UserProfile, error) {
	var (
		p          model.UserProfile
		bodyWeight sql.NullFloat64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT user_id, display_name, body_weight_kg FROM profile LIMIT 1`).
		Scan(&p.UserID, &p.DisplayName, &bodyWeight)
	if err == sql.ErrNoRows {
		return model.UserProfile{}, ErrNoProfile
	}
	if err != nil {
		return model.UserProfile{}, fmt.Errorf("loading profile: %w", err)
	}
	if bodyWeight.Valid {
		p.BodyWeightKg = &bodyWeight.Float64
	}
	return p, nil
}
