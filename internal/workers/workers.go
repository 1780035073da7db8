package workers

import (
	"context"
	"time"

	"github.com/liftlog/liftlog-mcp/internal/backend"
	"github.com/liftlog/liftlog-mcp/internal/logging"
	"github.com/liftlog/liftlog-mcp/internal/model"
)

// TokenSource provides a valid access token, refreshing as needed.
type TokenSource interface {
	GetValidAccessToken() (string, error)
}

// SyncClient is the backend API surface the sync workers use.
type SyncClient interface {
	FetchAllWorkouts(ctx context.Context, progress backend.ProgressCallback) ([]model.WorkoutRecord, error)
	FetchWorkoutsSince(ctx context.Context, since string, progress backend.ProgressCallback) ([]model.WorkoutRecord, error)
	FetchExercises(ctx context.Context) ([]model.ExerciseCatalogEntry, error)
	FetchProfile(ctx context.Context) (model.UserProfile, error)
	WaitForRateLimit(ctx context.Context) error
}

// SyncStore is the local persistence surface the sync workers write to.
type SyncStore interface {
	UpsertWorkout(ctx context.Context, w model.WorkoutRecord) error
	LatestCompletedAt(ctx context.Context) (string, error)
	ReplaceCatalog(ctx context.Context, catalog []model.ExerciseCatalogEntry) error
	SaveProfile(ctx context.Context, p model.UserProfile) error
}

// StatsStore is the read surface for database statistics logging.
type StatsStore interface {
	CountWorkouts(ctx context.Context) (int64, error)
	CountCompletedWorkouts(ctx context.Context) (int64, error)
	CountExercises(ctx context.Context) (int64, error)
	LatestCompletedAt(ctx context.Context) (string, error)
}

// newSyncClient builds an API client for an access token. Swapped out by
// tests.
var newSyncClient = func(accessToken string, cfg backend.RetryConfig) SyncClient {
	return backend.NewClientWithRetryConfig(accessToken, cfg)
}

// TokenRefresher keeps the stored access token fresh so sync workers
// never start with an expired one.
type TokenRefresher struct {
	tokens   TokenSource
	interval time.Duration
}

// NewTokenRefresher creates a token refresh worker.
func NewTokenRefresher(tokens TokenSource, interval time.Duration) *TokenRefresher {
	return &TokenRefresher{tokens: tokens, interval: interval}
}

// Run starts the token refresh loop.
func (t *TokenRefresher) Run(ctx context.Context) {
	log := logging.Logger
	log.Info().Dur("interval", t.interval).Msg("token refresher started")

	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	t.check()

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("token refresher stopped")
			return
		case <-ticker.C:
			t.check()
		}
	}
}

func (t *TokenRefresher) check() {
	log := logging.Logger
	log.Debug().Msg("checking token validity")

	// GetValidAccessToken refreshes and persists when the token is
	// expired or close to it.
	if _, err := t.tokens.GetValidAccessToken(); err != nil {
		log.Error().Err(err).Msg("token refresh check failed")
		return
	}
	log.Debug().Msg("token valid")
}

// WorkoutSyncer periodically pulls the workout log from the hosted
// backend into the local database.
type WorkoutSyncer struct {
	store       SyncStore
	tokens      TokenSource
	interval    time.Duration
	retryConfig backend.RetryConfig

	// onSync runs after a sync that saved at least one workout, so the
	// analytics snapshot can be invalidated.
	onSync func()
}

// NewWorkoutSyncer creates a workout sync worker. onSync may be nil.
func NewWorkoutSyncer(store SyncStore, tokens TokenSource, interval time.Duration, retryConfig backend.RetryConfig, onSync func()) *WorkoutSyncer {
	return &WorkoutSyncer{
		store:       store,
		tokens:      tokens,
		interval:    interval,
		retryConfig: retryConfig,
		onSync:      onSync,
	}
}

// Run starts the workout sync loop.
func (w *WorkoutSyncer) Run(ctx context.Context) {
	log := logging.Logger
	log.Info().Dur("interval", w.interval).Msg("workout syncer started")

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.sync(ctx)

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("workout syncer stopped")
			return
		case <-ticker.C:
			w.sync(ctx)
		}
	}
}

func (w *WorkoutSyncer) sync(ctx context.Context) {
	log := logging.Logger
	log.Info().Msg("starting workout sync")

	accessToken, err := w.tokens.GetValidAccessToken()
	if err != nil {
		log.Error().Err(err).Msg("failed to get access token for sync")
		return
	}

	client := newSyncClient(accessToken, w.retryConfig)
	if err := client.WaitForRateLimit(ctx); err != nil {
		log.Info().Err(err).Msg("workout sync cancelled while waiting for rate limit")
		return
	}

	saved, err := syncWorkouts(ctx, w.store, client)
	if err != nil {
		log.Error().Err(err).Msg("workout sync failed")
		return
	}
	if saved > 0 && w.onSync != nil {
		w.onSync()
	}
}

// SyncOnce performs a single workout sync (used on startup).
func SyncOnce(ctx context.Context, store SyncStore, accessToken string, retryConfig backend.RetryConfig) error {
	logging.Logger.Info().Msg("performing initial sync")
	client := newSyncClient(accessToken, retryConfig)
	_, err := syncWorkouts(ctx, store, client)
	return err
}

func syncWorkouts(ctx context.Context, store SyncStore, client SyncClient) (int, error) {
	log := logging.Logger

	since, err := store.LatestCompletedAt(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("failed to get latest completion, doing full sync")
		since = ""
	}

	progress := func(result backend.FetchResult) {
		evt := log.Debug()
		if result.IsRetrying || result.RateLimit.IsRateLimited {
			evt = log.Info()
		}
		evt.
			Int("page", result.Page).
			Int("workouts_on_page", len(result.Workouts)).
			Int("total_fetched", result.TotalFetched).
			Int("rate_remaining", result.RateLimit.Remaining).
			Bool("rate_limited", result.RateLimit.IsRateLimited).
			Msg("workout sync progress")
	}

	var workouts []model.WorkoutRecord
	if since != "" {
		log.Info().Str("since", since).Msg("performing delta sync")
		workouts, err = client.FetchWorkoutsSince(ctx, since, progress)
	} else {
		log.Info().Msg("performing full sync")
		workouts, err = client.FetchAllWorkouts(ctx, progress)
	}
	if err != nil {
		return 0, err
	}

	if len(workouts) == 0 {
		log.Info().Msg("no new workouts to sync")
		return 0, nil
	}

	saved := 0
	for _, workout := range workouts {
		select {
		case <-ctx.Done():
			log.Info().Int("fetched", len(workouts)).Int("saved", saved).Msg("sync interrupted")
			return saved, ctx.Err()
		default:
		}

		if err := store.UpsertWorkout(ctx, workout); err != nil {
			log.Error().
				Str("workout_id", workout.ID).
				Err(err).
				Msg("failed to save workout")
			continue
		}
		saved++
		log.Debug().
			Str("workout_id", workout.ID).
			Str("status", string(workout.Status)).
			Msg("saved workout")
	}

	log.Info().Int("fetched", len(workouts)).Int("saved", saved).Msg("workout sync completed")
	return saved, nil
}

// CatalogSyncer periodically refreshes the exercise catalog and the
// user profile. Both change rarely; one worker covers them.
type CatalogSyncer struct {
	store       SyncStore
	tokens      TokenSource
	interval    time.Duration
	retryConfig backend.RetryConfig
	onSync      func()
}

// NewCatalogSyncer creates a catalog sync worker. onSync may be nil.
func NewCatalogSyncer(store SyncStore, tokens TokenSource, interval time.Duration, retryConfig backend.RetryConfig, onSync func()) *CatalogSyncer {
	return &CatalogSyncer{
		store:       store,
		tokens:      tokens,
		interval:    interval,
		retryConfig: retryConfig,
		onSync:      onSync,
	}
}

// Run starts the catalog sync loop.
func (c *CatalogSyncer) Run(ctx context.Context) {
	log := logging.Logger
	log.Info().Dur("interval", c.interval).Msg("catalog syncer started")

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	c.sync(ctx)

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("catalog syncer stopped")
			return
		case <-ticker.C:
			c.sync(ctx)
		}
	}
}

func (c *CatalogSyncer) sync(ctx context.Context) {
	log := logging.Logger
	log.Debug().Msg("starting catalog sync")

	accessToken, err := c.tokens.GetValidAccessToken()
	if err != nil {
		log.Error().Err(err).Msg("failed to get access token for catalog sync")
		return
	}

	client := newSyncClient(accessToken, c.retryConfig)

	catalog, err := client.FetchExercises(ctx)
	if err != nil {
		log.Error().Err(err).Msg("failed to fetch exercise catalog")
		return
	}
	if len(catalog) > 0 {
		if err := c.store.ReplaceCatalog(ctx, catalog); err != nil {
			log.Error().Err(err).Msg("failed to save exercise catalog")
			return
		}
		log.Info().Int("exercises", len(catalog)).Msg("exercise catalog synced")
		if c.onSync != nil {
			c.onSync()
		}
	}

	profile, err := client.FetchProfile(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("failed to fetch profile")
		return
	}
	if err := c.store.SaveProfile(ctx, profile); err != nil {
		log.Error().Err(err).Msg("failed to save profile")
		return
	}
	log.Debug().Str("user_id", profile.UserID).Msg("profile synced")
}

// LogDatabaseStats logs the current local database statistics.
func LogDatabaseStats(ctx context.Context, store StatsStore) {
	log := logging.Logger

	total, err := store.CountWorkouts(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("failed to count workouts")
		return
	}

	if total == 0 {
		log.Info().Int64("total_workouts", 0).Msg("database statistics")
		return
	}

	completed, _ := store.CountCompletedWorkouts(ctx)
	exercises, _ := store.CountExercises(ctx)
	latest, _ := store.LatestCompletedAt(ctx)
	if latest == "" {
		latest = "unknown"
	}

	log.Info().
		Int64("total_workouts", total).
		Int64("completed_workouts", completed).
		Int64("catalog_exercises", exercises).
		Str("latest_completion", latest).
		Msg("database statistics")
}
