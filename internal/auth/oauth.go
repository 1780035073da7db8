package auth

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/pkg/browser"
	"golang.org/x/oauth2"
)

const (
	authURL     = "https://auth.liftlog.app/oauth/authorize"
	tokenURL    = "https://auth.liftlog.app/oauth/token"
	redirectURI = "http://localhost:8089/callback"
	scopes      = "workouts:read profile:read"
)

// OAuthConfig returns the OAuth2 config for the hosted LiftLog API.
func OAuthConfig(clientID, clientSecret string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Endpoint: oauth2.Endpoint{
			AuthURL:  authURL,
			TokenURL: tokenURL,
		},
		RedirectURL: redirectURI,
		Scopes:      []string{scopes},
	}
}

// TokenResponse is the OAuth token set in the shape the storage layer
// persists.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresAt    int64  `json:"expires_at"`
	TokenType    string `json:"token_type"`
}

// TokenFromOAuth2 converts an oauth2.Token to a TokenResponse.
func TokenFromOAuth2(token *oauth2.Token) *TokenResponse {
	return &TokenResponse{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		ExpiresAt:    token.Expiry.Unix(),
		TokenType:    token.TokenType,
	}
}

// ToOAuth2Token converts a TokenResponse back to an oauth2.Token.
func (t *TokenResponse) ToOAuth2Token() *oauth2.Token {
	return &oauth2.Token{
		AccessToken:  t.AccessToken,
		RefreshToken: t.RefreshToken,
		Expiry:       time.Unix(t.ExpiresAt, 0),
		TokenType:    t.TokenType,
	}
}

// Authenticate runs the browser OAuth flow via a loopback callback
// server and returns the exchanged tokens.
func Authenticate(ctx context.Context, clientID, clientSecret string) (*TokenResponse, error) {
	config := OAuthConfig(clientID, clientSecret)

	codeChan := make(chan string, 1)
	errChan := make(chan error, 1)

	mux := http.NewServeMux()
	server := &http.Server{
		Addr:    ":8089",
		Handler: mux,
	}

	mux.HandleFunc("/callback", func(w http.ResponseWriter, r *http.Request) {
		code := r.URL.Query().Get("code")
		if code == "" {
			errMsg := r.URL.Query().Get("error")
			if errMsg == "" {
				errMsg = "no authorization code received"
			}
			http.Error(w, errMsg, http.StatusBadRequest)
			errChan <- fmt.Errorf("authorization failed: %s", errMsg)
			return
		}

		w.Header().Set("Content-Type", "text/html")
		fmt.Fprintf(w, `<html><body><h1>Authorization successful!</h1><p>You can close this window.</p></body></html>`)
		codeChan <- code
	})

	go func() {
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			errChan <- fmt.Errorf("callback server error: %w", err)
		}
	}()

	state := "liftlog-mcp-auth"
	authorizeURL := config.AuthCodeURL(state, oauth2.AccessTypeOffline)

	fmt.Println("Opening browser for LiftLog authorization...")
	fmt.Printf("If browser doesn't open, visit: %s\n\n", authorizeURL)

	if err := browser.OpenURL(authorizeURL); err != nil {
		fmt.Printf("Could not open browser automatically: %v\n", err)
	}

	var code string
	select {
	case code = <-codeChan:
	case err := <-errChan:
		server.Shutdown(ctx)
		return nil, err
	case <-ctx.Done():
		server.Shutdown(ctx)
		return nil, ctx.Err()
	case <-time.After(5 * time.Minute):
		server.Shutdown(ctx)
		return nil, fmt.Errorf("authorization timeout")
	}

	server.Shutdown(ctx)

	token, err := config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("token exchange failed: %w", err)
	}

	return TokenFromOAuth2(token), nil
}

// RefreshAccessToken exchanges a refresh token for a new token set.
func RefreshAccessToken(clientID, clientSecret, refreshToken string) (*TokenResponse, error) {
	config := OAuthConfig(clientID, clientSecret)

	// An already-expired token forces the source to refresh.
	oldToken := &oauth2.Token{
		RefreshToken: refreshToken,
		Expiry:       time.Now().Add(-time.Hour),
	}

	tokenSource := config.TokenSource(context.Background(), oldToken)
	newToken, err := tokenSource.Token()
	if err != nil {
		return nil, fmt.Errorf("token refresh failed: %w", err)
	}

	return TokenFromOAuth2(newToken), nil
}

// IsTokenExpired reports whether the token is expired or expires within
// five minutes.
func IsTokenExpired(expiresAt int64) bool {
	return time.Now().Unix() > (expiresAt - 300)
}
