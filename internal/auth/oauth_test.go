package auth

import (
	"testing"
	"time"

	"golang.org/x/oauth2"
)

func TestIsTokenExpired(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		expiresAt int64
		want      bool
	}{
		{"expired an hour ago", time.Now().Add(-time.Hour).Unix(), true},
		{"expires in one minute", time.Now().Add(time.Minute).Unix(), true},
		{"expires in an hour", time.Now().Add(time.Hour).Unix(), false},
		{"zero value", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := IsTokenExpired(tt.expiresAt); got != tt.want {
				t.Errorf("IsTokenExpired(%d) = %v, want %v", tt.expiresAt, got, tt.want)
			}
		})
	}
}

func TestTokenConversionRoundTrip(t *testing.T) {
	t.Parallel()

	expiry := time.Now().Add(6 * time.Hour).Truncate(time.Second)
	src := &oauth2.Token{
		AccessToken:  "access",
		RefreshToken: "refresh",
		Expiry:       expiry,
		TokenType:    "Bearer",
	}

	tr := TokenFromOAuth2(src)
	if tr.AccessToken != "access" || tr.RefreshToken != "refresh" {
		t.Errorf("converted = %+v", tr)
	}
	if tr.ExpiresAt != expiry.Unix() {
		t.Errorf("expires_at = %d, want %d", tr.ExpiresAt, expiry.Unix())
	}

	back := tr.ToOAuth2Token()
	if back.AccessToken != "access" || !back.Expiry.Equal(expiry) || back.TokenType != "Bearer" {
		t.Errorf("round trip = %+v", back)
	}
}

func TestOAuthConfig(t *testing.T) {
	t.Parallel()

	cfg := OAuthConfig("id", "secret")
	if cfg.ClientID != "id" || cfg.ClientSecret != "secret" {
		t.Errorf("config = %+v", cfg)
	}
	if cfg.RedirectURL != redirectURI {
		t.Errorf("redirect = %s", cfg.RedirectURL)
	}
	if len(cfg.Scopes) == 0 {
		t.Error("scopes must be set")
	}
}
