package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// ErrNotConfigured means no API credentials have been stored yet.
var ErrNotConfigured = errors.New("client not configured")

// AuthConfig is the stored API client configuration plus tokens. Token
// fields are empty until the first OAuth flow completes.
type AuthConfig struct {
	ClientID     string
	ClientSecret string
	AccessToken  string
	RefreshToken string
	ExpiresAt    int64
}

// SaveAuthConfig stores client credentials and tokens, replacing any
// prior row. There is only ever one.
func (s *Store) SaveAuthConfig(ctx context.Context, cfg AuthConfig) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO auth_config (id, client_id, client_secret, access_token, refresh_token, expires_at)
		VALUES (1, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			client_id = excluded.client_id,
			client_secret = excluded.client_secret,
			access_token = excluded.access_token,
			refresh_token = excluded.refresh_token,
			expires_at = excluded.expires_at`,
		cfg.ClientID, cfg.ClientSecret,
		nullString(cfg.AccessToken), nullString(cfg.RefreshToken), nullInt64(cfg.ExpiresAt))
	if err != nil {
		return fmt.Errorf("saving auth config: %w", err)
	}
	return nil
}

// UpdateTokens replaces just the token fields, preserving credentials.
func (s *Store) UpdateTokens(ctx context.Context, accessToken, refreshToken string, expiresAt int64) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE auth_config SET access_token = ?, refresh_token = ?, expires_at = ? WHERE id = 1`,
		accessToken, refreshToken, expiresAt)
	if err != nil {
		return fmt.Errorf("updating tokens: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotConfigured
	}
	return nil
}

// GetAuthConfig loads the stored credentials and tokens.
func (s *Store) GetAuthConfig(ctx context.Context) (AuthConfig, error) {
	var (
		cfg          AuthConfig
		accessToken  sql.NullString
		refreshToken sql.NullString
		expiresAt    sql.NullInt64
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT client_id, client_secret, access_token, refresh_token, expires_at
		FROM auth_config WHERE id = 1`).
		Scan(&cfg.ClientID, &cfg.ClientSecret, &accessToken, &refreshToken, &expiresAt)
	if err == sql.ErrNoRows {
		return AuthConfig{}, ErrNotConfigured
	}
	if err != nil {
		return AuthConfig{}, fmt.Errorf("loading auth config: %w", err)
	}
	cfg.AccessToken = accessToken.String
	cfg.RefreshToken = refreshToken.String
	cfg.ExpiresAt = expiresAt.Int64
	return cfg, nil
}

// DeleteAuthConfig removes stored credentials and tokens.
func (s *Store) DeleteAuthConfig(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM auth_config`); err != nil {
		return fmt.Errorf("deleting auth config: %w", err)
	}
	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullInt64(v int64) sql.NullInt64 {
	return sql.NullInt64{Int64: v, Valid: v != 0}
}
