package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/liftlog/liftlog-mcp/internal/store"
)

// ErrNotAuthenticated means no tokens are stored yet; the OAuth flow
// must run first.
var ErrNotAuthenticated = errors.New("not authenticated")

// ConfigStore is the subset of the store the auth layer persists
// through.
type ConfigStore interface {
	GetAuthConfig(ctx context.Context) (store.AuthConfig, error)
	SaveAuthConfig(ctx context.Context, cfg store.AuthConfig) error
	UpdateTokens(ctx context.Context, accessToken, refreshToken string, expiresAt int64) error
	DeleteAuthConfig(ctx context.Context) error
}

// Storage handles auth persistence over the local database.
type Storage struct {
	db  ConfigStore
	ctx context.Context

	// refresh is swapped out by tests; production uses the OAuth
	// endpoint.
	refresh func(clientID, clientSecret, refreshToken string) (*TokenResponse, error)
}

// StoredTokens is the token set as stored in the database.
type StoredTokens struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    int64
}

// ClientConfig is the stored API client credentials.
type ClientConfig struct {
	ClientID     string
	ClientSecret string
}

// NewStorage creates a Storage over the given store.
func NewStorage(db ConfigStore) *Storage {
	return &Storage{
		db:      db,
		ctx:     context.Background(),
		refresh: RefreshAccessToken,
	}
}

// SaveTokens updates the stored tokens, preserving client credentials.
func (s *Storage) SaveTokens(tokens *TokenResponse) error {
	err := s.db.UpdateTokens(s.ctx, tokens.AccessToken, tokens.RefreshToken, tokens.ExpiresAt)
	if errors.Is(err, store.ErrNotConfigured) {
		return fmt.Errorf("no client config found: %w", ErrNotAuthenticated)
	}
	return err
}

// LoadTokens loads the stored tokens.
func (s *Storage) LoadTokens() (*StoredTokens, error) {
	cfg, err := s.db.GetAuthConfig(s.ctx)
	if errors.Is(err, store.ErrNotConfigured) {
		return nil, ErrNotAuthenticated
	}
	if err != nil {
		return nil, fmt.Errorf("loading auth config: %w", err)
	}
	if cfg.AccessToken == "" {
		return nil, ErrNotAuthenticated
	}
	return &StoredTokens{
		AccessToken:  cfg.AccessToken,
		RefreshToken: cfg.RefreshToken,
		ExpiresAt:    cfg.ExpiresAt,
	}, nil
}

// SaveFullConfig stores client credentials and tokens together.
func (s *Storage) SaveFullConfig(clientID, clientSecret string, tokens *TokenResponse) error {
	return s.db.SaveAuthConfig(s.ctx, store.AuthConfig{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
		ExpiresAt:    tokens.ExpiresAt,
	})
}

// SaveClientConfig stores just the client credentials.
func (s *Storage) SaveClientConfig(clientID, clientSecret string) error {
	return s.db.SaveAuthConfig(s.ctx, store.AuthConfig{
		ClientID:     clientID,
		ClientSecret: clientSecret,
	})
}

// LoadClientConfig loads the stored client credentials.
func (s *Storage) LoadClientConfig() (*ClientConfig, error) {
	cfg, err := s.db.GetAuthConfig(s.ctx)
	if errors.Is(err, store.ErrNotConfigured) {
		return nil, fmt.Errorf("client not configured: %w", ErrNotAuthenticated)
	}
	if err != nil {
		return nil, fmt.Errorf("loading auth config: %w", err)
	}
	return &ClientConfig{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
	}, nil
}

// DeleteTokens removes the stored auth config.
func (s *Storage) DeleteTokens() error {
	return s.db.DeleteAuthConfig(s.ctx)
}

// GetValidAccessToken returns a usable access token, refreshing it first
// when it is expired or about to expire.
func (s *Storage) GetValidAccessToken() (string, error) {
	tokens, err := s.LoadTokens()
	if err != nil {
		return "", err
	}

	if !IsTokenExpired(tokens.ExpiresAt) {
		return tokens.AccessToken, nil
	}

	cfg, err := s.LoadClientConfig()
	if err != nil {
		return "", fmt.Errorf("loading client config for refresh: %w", err)
	}

	newTokens, err := s.refresh(cfg.ClientID, cfg.ClientSecret, tokens.RefreshToken)
	if err != nil {
		return "", fmt.Errorf("refreshing token: %w", err)
	}

	if err := s.SaveTokens(newTokens); err != nil {
		return "", fmt.Errorf("saving refreshed tokens: %w", err)
	}

	return newTokens.AccessToken, nil
}
