package cmd

import (
	"bufio"
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"golang.org/x/sync/errgroup"

	"github.com/liftlog/liftlog-mcp/internal/analytics"
	"github.com/liftlog/liftlog-mcp/internal/auth"
	"github.com/liftlog/liftlog-mcp/internal/backend"
	"github.com/liftlog/liftlog-mcp/internal/logging"
	"github.com/liftlog/liftlog-mcp/internal/profilecache"
	"github.com/liftlog/liftlog-mcp/internal/server"
	"github.com/liftlog/liftlog-mcp/internal/store"
	"github.com/liftlog/liftlog-mcp/internal/workers"
)

// RuntimeConfig holds all runtime configuration from CLI flags
type RuntimeConfig struct {
	DBPath               string
	MCPPort              int
	SyncInterval         time.Duration
	TokenRefreshInterval time.Duration
	CatalogSyncInterval  time.Duration
	DefaultPeriod        string
	PRTierKg             float64
	Timezone             string
	NoSync               bool
	ForceReauth          bool
}

// Run is the main entry point for the unified run mode
func Run(cfg *RuntimeConfig) error {
	log := logging.Logger

	log.Info().
		Str("db_path", cfg.DBPath).
		Int("mcp_port", cfg.MCPPort).
		Bool("no_sync", cfg.NoSync).
		Dur("sync_interval", cfg.SyncInterval).
		Dur("token_refresh_interval", cfg.TokenRefreshInterval).
		Str("period", cfg.DefaultPeriod).
		Msg("starting liftlog-mcp")

	// Set up context for shutdown handling
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		log.Info().Str("signal", sig.String()).Msg("received shutdown signal")
		cancel()
	}()

	// Open database with SQLite concurrency settings and lock check
	log.Info().Str("path", cfg.DBPath).Msg("opening database")
	st, err := store.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer st.Close()

	if err := st.Migrate(ctx); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	// Log database statistics
	workers.LogDatabaseStats(ctx, st)

	// Resolve the calendar timezone
	loc := time.Local
	if cfg.Timezone != "" {
		loc, err = time.LoadLocation(cfg.Timezone)
		if err != nil {
			return fmt.Errorf("loading timezone %q: %w", cfg.Timezone, err)
		}
	}

	// Build the analytics engine and MCP server
	engine := analytics.NewEngine(analytics.Config{
		PRTierKg: cfg.PRTierKg,
		Location: loc,
		Logger:   logging.Logger,
	})
	engine.SetPeriod(cfg.DefaultPeriod)

	profiles, err := profilecache.New(0)
	if err != nil {
		return fmt.Errorf("creating profile cache: %w", err)
	}

	srv := server.New(st, engine, profiles)

	// Start background workers with errgroup for graceful shutdown
	g, gCtx := errgroup.WithContext(ctx)

	if !cfg.NoSync {
		storage := auth.NewStorage(st)

		// Check and handle authentication
		accessToken, err := ensureAuthenticated(ctx, storage, cfg)
		if err != nil {
			return fmt.Errorf("authentication: %w", err)
		}

		// Use default retry config (rate limiting is handled by waiting for window resets)
		retryConfig := backend.DefaultRetryConfig()

		// Perform initial sync
		if err := workers.SyncOnce(ctx, st, accessToken, retryConfig); err != nil {
			log.Warn().Err(err).Msg("initial sync failed")
			// Continue anyway - background worker will retry
		}

		// Log database statistics after initial sync
		workers.LogDatabaseStats(ctx, st)

		log.Info().Msg("starting background workers")

		// Token refresh worker
		tokenRefresher := workers.NewTokenRefresher(
			storage,
			cfg.TokenRefreshInterval,
		)
		g.Go(func() error {
			tokenRefresher.Run(gCtx)
			return nil
		})

		// Workout sync worker; invalidates the analytics snapshot when new
		// workouts land
		workoutSyncer := workers.NewWorkoutSyncer(
			st,
			storage,
			cfg.SyncInterval,
			retryConfig,
			srv.Invalidate,
		)
		g.Go(func() error {
			workoutSyncer.Run(gCtx)
			return nil
		})

		// Exercise catalog and profile sync worker
		catalogSyncer := workers.NewCatalogSyncer(
			st,
			storage,
			cfg.CatalogSyncInterval,
			retryConfig,
			srv.Invalidate,
		)
		g.Go(func() error {
			catalogSyncer.Run(gCtx)
			return nil
		})
	} else {
		log.Info().Msg("running in offline mode (--no-sync), serving analytics from the local copy")
	}

	var serverErr error
	if cfg.MCPPort > 0 {
		serverErr = runHTTPServer(ctx, srv.MCPServer(), cfg.MCPPort)
	} else {
		log.Info().Msg("MCP server running via stdio")
		serverErr = srv.Run(ctx)
	}

	// Wait for workers to finish (only if workers were started)
	if !cfg.NoSync {
		log.Info().Msg("waiting for workers to shut down")
		if err := g.Wait(); err != nil {
			log.Warn().Err(err).Msg("worker error during shutdown")
		} else {
			log.Info().Msg("all workers shut down gracefully")
		}
	}

	return serverErr
}

// ensureAuthenticated checks if we have valid auth tokens, and if not, runs the OAuth flow
func ensureAuthenticated(ctx context.Context, storage *auth.Storage, cfg *RuntimeConfig) (string, error) {
	log := logging.Logger

	// If force reauth is requested, clear existing tokens and credentials, then re-prompt
	if cfg.ForceReauth {
		log.Info().Msg("force re-authentication requested, clearing existing credentials and tokens")
		if err := storage.DeleteTokens(); err != nil {
			log.Debug().Err(err).Msg("failed to delete existing auth config (may not exist)")
		}
	}

	// Check if we have credentials in the database
	clientConfig, err := storage.LoadClientConfig()
	if err != nil || cfg.ForceReauth {
		// Need to prompt for credentials
		clientConfig, err = promptForCredentials()
		if err != nil {
			return "", fmt.Errorf("getting credentials: %w", err)
		}
	}

	// Try to get existing valid token (only if not force reauth)
	if !cfg.ForceReauth {
		accessToken, err := storage.GetValidAccessToken()
		if err == nil {
			log.Info().Msg("using existing authentication")
			return accessToken, nil
		}

		// Check if this was a refresh failure (token exists but refresh failed)
		if strings.Contains(err.Error(), "refreshing token") {
			log.Warn().Err(err).Msg("token refresh failed, re-authentication required")
			fmt.Println("\n=== Token Refresh Failed ===")
			fmt.Println("Your LiftLog authentication has expired or been revoked.")
			fmt.Println("Re-authentication is required.")
		} else {
			log.Info().Msg("no valid authentication found, starting OAuth flow")
		}
	}

	return runOAuthFlow(ctx, storage, clientConfig)
}

// promptForCredentials prompts the user to enter their LiftLog API credentials
func promptForCredentials() (*auth.ClientConfig, error) {
	reader := bufio.NewReader(os.Stdin)

	fmt.Println("\n=== LiftLog API Credentials Required ===")
	fmt.Println("Get your API credentials from your LiftLog account's developer settings.")
	fmt.Println()

	fmt.Print("Enter your Client ID: ")
	clientID, err := reader.ReadString('\n')
	if err != nil {
		return nil, fmt.Errorf("reading client ID: %w", err)
	}
	clientID = strings.TrimSpace(clientID)

	if clientID == "" {
		return nil, fmt.Errorf("client ID is required")
	}

	fmt.Print("Enter your Client Secret: ")
	clientSecret, err := reader.ReadString('\n')
	if err != nil {
		return nil, fmt.Errorf("reading client secret: %w", err)
	}
	clientSecret = strings.TrimSpace(clientSecret)

	if clientSecret == "" {
		return nil, fmt.Errorf("client secret is required")
	}

	return &auth.ClientConfig{
		ClientID:     clientID,
		ClientSecret: clientSecret,
	}, nil
}

// runOAuthFlow performs the OAuth authentication flow with the backend
func runOAuthFlow(ctx context.Context, storage *auth.Storage, clientConfig *auth.ClientConfig) (string, error) {
	log := logging.Logger

	fmt.Println("\n=== LiftLog Authentication Required ===")
	fmt.Println("A browser window will open for you to authorize this application.")
	fmt.Println("Press Enter to continue...")

	reader := bufio.NewReader(os.Stdin)
	reader.ReadString('\n')

	tokens, err := auth.Authenticate(ctx, clientConfig.ClientID, clientConfig.ClientSecret)
	if err != nil {
		return "", fmt.Errorf("OAuth flow failed: %w", err)
	}

	log.Info().
		Str("expires_at", time.Unix(tokens.ExpiresAt, 0).Format(time.RFC3339)).
		Msg("OAuth authentication successful")

	// Save tokens with client config
	if err := storage.SaveFullConfig(clientConfig.ClientID, clientConfig.ClientSecret, tokens); err != nil {
		return "", fmt.Errorf("saving tokens: %w", err)
	}

	fmt.Printf("\nAuthentication successful! Token expires: %s\n\n",
		time.Unix(tokens.ExpiresAt, 0).Format(time.RFC1123))

	return tokens.AccessToken, nil
}

// runHTTPServer runs the MCP server over HTTP/SSE
func runHTTPServer(ctx context.Context, mcpServer *mcp.Server, port int) error {
	log := logging.Logger

	handler := mcp.NewSSEHandler(func(r *http.Request) *mcp.Server {
		return mcpServer
	}, nil)

	addr := fmt.Sprintf(":%d", port)
	httpServer := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	errChan := make(chan error, 1)
	go func() {
		log.Info().
			Str("address", addr).
			Str("endpoint", fmt.Sprintf("http://localhost%s", addr)).
			Msg("MCP server running via HTTP/SSE")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("shutting down HTTP server")
		return httpServer.Shutdown(context.Background())
	case err := <-errChan:
		return err
	}
}
