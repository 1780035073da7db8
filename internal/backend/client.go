package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/liftlog/liftlog-mcp/internal/logging"
	"github.com/liftlog/liftlog-mcp/internal/model"
)

const (
	baseURL        = "https://api.liftlog.app/v1"
	perPage        = 200
	requestTimeout = 30 * time.Second
)

const (
	defaultMaxRetries     = 5
	defaultInitialBackoff = 1 * time.Second
	defaultMaxBackoff     = 5 * time.Minute
)

// ErrRateLimited indicates the API returned 429 after retries were
// exhausted.
var ErrRateLimited = fmt.Errorf("rate limited")

// ErrUnauthorized indicates the access token was rejected.
var ErrUnauthorized = fmt.Errorf("unauthorized")

// RateLimitInfo is the request-budget state reported by the API via
// X-RateLimit-* headers.
type RateLimitInfo struct {
	Limit         int
	Remaining     int
	ResetAt       time.Time
	IsRateLimited bool
}

// TimeUntilReset returns how long until the current window resets.
func (info *RateLimitInfo) TimeUntilReset(now time.Time) time.Duration {
	if info.ResetAt.IsZero() || !info.ResetAt.After(now) {
		return 0
	}
	return info.ResetAt.Sub(now)
}

// FetchResult is the progress report after each page fetch.
type FetchResult struct {
	Workouts     []model.WorkoutRecord
	RateLimit    RateLimitInfo
	Page         int
	TotalFetched int
	IsRetrying   bool
}

// ProgressCallback is called after each page is fetched.
type ProgressCallback func(result FetchResult)

// RetryConfig holds retry/backoff settings
type RetryConfig struct {
	MaxRetries int
	MinWait    time.Duration
	MaxWait    time.Duration
}

// DefaultRetryConfig returns the default retry configuration
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries: defaultMaxRetries,
		MinWait:    defaultInitialBackoff,
		MaxWait:    defaultMaxBackoff,
	}
}

// Client talks to the hosted LiftLog API with automatic retry and
// backoff.
type Client struct {
	httpClient  *retryablehttp.Client
	accessToken string
	baseURL     string
	rateMu      sync.RWMutex
	rateLimit   RateLimitInfo
}

// NewClient creates an API client with default retry settings.
func NewClient(accessToken string) *Client {
	return newClientWithConfig(accessToken, baseURL, DefaultRetryConfig())
}

// NewClientWithRetryConfig creates an API client with custom retry
// settings.
func NewClientWithRetryConfig(accessToken string, cfg RetryConfig) *Client {
	return newClientWithConfig(accessToken, baseURL, cfg)
}

// NewClientWithBaseURL creates an API client against a custom base URL
// (for testing).
func NewClientWithBaseURL(accessToken, customBaseURL string) *Client {
	return newClientWithConfig(accessToken, customBaseURL, RetryConfig{
		MaxRetries: 2,
		MinWait:    10 * time.Millisecond,
		MaxWait:    50 * time.Millisecond,
	})
}

func newClientWithConfig(accessToken, baseURL string, cfg RetryConfig) *Client {
	log := logging.Logger
	client := retryablehttp.NewClient()
	client.RetryMax = cfg.MaxRetries
	client.RetryWaitMin = cfg.MinWait
	client.RetryWaitMax = cfg.MaxWait
	client.HTTPClient.Timeout = requestTimeout
	client.Logger = &logging.LeveledLogger{}

	// Retry on connection errors, 429, and 5xx. Auth failures are
	// terminal; re-authentication handles them, not retries.
	client.CheckRetry = func(ctx context.Context, resp *http.Response, err error) (bool, error) {
		if ctx.Err() != nil {
			return false, ctx.Err()
		}
		if err != nil {
			return true, nil
		}
		switch {
		case resp.StatusCode == http.StatusUnauthorized,
			resp.StatusCode == http.StatusForbidden,
			resp.StatusCode == http.StatusNotFound:
			return false, nil
		case resp.StatusCode == http.StatusTooManyRequests:
			return true, nil
		case resp.StatusCode >= 500:
			return true, nil
		}
		return false, nil
	}

	// Rate-limited responses wait for the window reset; everything else
	// backs off exponentially.
	client.Backoff = func(min, max time.Duration, attemptNum int, resp *http.Response) time.Duration {
		if resp != nil && resp.StatusCode == http.StatusTooManyRequests {
			if retryAfter := resp.Header.Get("Retry-After"); retryAfter != "" {
				if seconds, err := strconv.Atoi(retryAfter); err == nil {
					wait := time.Duration(seconds) * time.Second
					log.Info().Dur("wait", wait).Int("attempt", attemptNum).
						Msg("rate limited, waiting for Retry-After header")
					return wait
				}
			}
			info := parseRateLimitHeaders(resp.Header)
			if wait := info.TimeUntilReset(time.Now()); wait > 0 {
				log.Info().Dur("wait", wait).Int("attempt", attemptNum).
					Msg("rate limited, waiting for window reset")
				return wait + 2*time.Second
			}
		}

		wait := min * time.Duration(1<<uint(attemptNum))
		if wait > max {
			wait = max
		}
		log.Info().Dur("wait", wait).Int("attempt", attemptNum).Dur("max_wait", max).
			Msg("backing off before retry")
		return wait
	}

	client.RequestLogHook = func(logger retryablehttp.Logger, req *http.Request, retry int) {
		if retry > 0 {
			log.Info().Str("url", req.URL.Path).Int("attempt", retry+1).Msg("retrying request")
		}
		if logging.IsTraceEnabled() {
			log.Debug().
				Str("method", req.Method).
				Str("url", req.URL.String()).
				Str("headers", formatHeaders(req.Header)).
				Msg("request headers")
		}
	}

	client.ResponseLogHook = func(logger retryablehttp.Logger, resp *http.Response) {
		if logging.IsTraceEnabled() {
			log.Debug().
				Int("status", resp.StatusCode).
				Str("url", resp.Request.URL.Path).
				Str("headers", formatHeaders(resp.Header)).
				Msg("response headers")
		}
		if resp.StatusCode == http.StatusTooManyRequests {
			info := parseRateLimitHeaders(resp.Header)
			log.Warn().
				Int("status", resp.StatusCode).
				Str("url", resp.Request.URL.Path).
				Int("remaining", info.Remaining).
				Int("limit", info.Limit).
				Msg("rate limited by API")
		}
	}

	return &Client{
		httpClient:  client,
		accessToken: accessToken,
		baseURL:     baseURL,
	}
}

// GetRateLimit returns the rate limit state from the last response.
func (c *Client) GetRateLimit() RateLimitInfo {
	c.rateMu.RLock()
	defer c.rateMu.RUnlock()
	return c.rateLimit
}

// WaitForRateLimit blocks until the request budget allows more calls, or
// the context is cancelled.
func (c *Client) WaitForRateLimit(ctx context.Context) error {
	log := logging.Logger
	info := c.GetRateLimit()
	if !info.IsRateLimited {
		return nil
	}

	wait := info.TimeUntilReset(time.Now())
	if wait <= 0 {
		return nil
	}

	log.Info().
		Dur("wait", wait).
		Int("remaining", info.Remaining).
		Int("limit", info.Limit).
		Msg("waiting for rate limit window to reset")

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(wait):
		log.Info().Msg("rate limit window reset, resuming")
		return nil
	}
}

func (c *Client) updateRateLimit(resp *http.Response) RateLimitInfo {
	info := parseRateLimitHeaders(resp.Header)
	if resp.StatusCode == http.StatusTooManyRequests {
		info.IsRateLimited = true
	}
	c.rateMu.Lock()
	c.rateLimit = info
	c.rateMu.Unlock()
	return info
}

// FetchAllWorkouts pages through the full workout log.
func (c *Client) FetchAllWorkouts(ctx context.Context, progress ProgressCallback) ([]model.WorkoutRecord, error) {
	return c.fetchWorkouts(ctx, "", progress)
}

// FetchWorkoutsSince pages through workouts updated after the given
// timestamp (delta sync). The since value is the raw backend timestamp
// stored locally.
func (c *Client) FetchWorkoutsSince(ctx context.Context, since string, progress ProgressCallback) ([]model.WorkoutRecord, error) {
	return c.fetchWorkouts(ctx, since, progress)
}

func (c *Client) fetchWorkouts(ctx context.Context, since string, progress ProgressCallback) ([]model.WorkoutRecord, error) {
	var all []model.WorkoutRecord
	page := 1

	for {
		workouts, rateLimit, err := c.fetchWorkoutsPage(ctx, page, since)

		result := FetchResult{
			Workouts:     workouts,
			RateLimit:    rateLimit,
			Page:         page,
			TotalFetched: len(all) + len(workouts),
		}
		if progress != nil {
			progress(result)
		}

		if err != nil {
			return all, err
		}
		if len(workouts) == 0 {
			break
		}

		all = append(all, workouts...)
		page++
	}

	return all, nil
}

func (c *Client) fetchWorkoutsPage(ctx context.Context, page int, since string) ([]model.WorkoutRecord, RateLimitInfo, error) {
	url := fmt.Sprintf("%s/workouts?page=%d&per_page=%d", c.baseURL, page, perPage)
	if since != "" {
		url += "&updated_after=" + since
	}

	resp, err := c.get(ctx, url)
	if err != nil {
		return nil, RateLimitInfo{}, err
	}
	defer resp.Body.Close()

	rateLimit := c.updateRateLimit(resp)

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, rateLimit, ErrUnauthorized
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, rateLimit, ErrRateLimited
	case resp.StatusCode != http.StatusOK:
		return nil, rateLimit, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var workouts []model.WorkoutRecord
	if err := json.NewDecoder(resp.Body).Decode(&workouts); err != nil {
		return nil, rateLimit, fmt.Errorf("decoding response: %w", err)
	}
	return workouts, rateLimit, nil
}

// FetchExercises fetches the full exercise catalog.
func (c *Client) FetchExercises(ctx context.Context) ([]model.ExerciseCatalogEntry, error) {
	resp, err := c.get(ctx, c.baseURL+"/exercises")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	c.updateRateLimit(resp)

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, ErrUnauthorized
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, ErrRateLimited
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var catalog []model.ExerciseCatalogEntry
	if err := json.NewDecoder(resp.Body).Decode(&catalog); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	return catalog, nil
}

// FetchProfile fetches the authenticated user's profile.
func (c *Client) FetchProfile(ctx context.Context) (model.UserProfile, error) {
	resp, err := c.get(ctx, c.baseURL+"/me")
	if err != nil {
		return model.UserProfile{}, err
	}
	defer resp.Body.Close()

	c.updateRateLimit(resp)

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return model.UserProfile{}, ErrUnauthorized
	case resp.StatusCode == http.StatusTooManyRequests:
		return model.UserProfile{}, ErrRateLimited
	case resp.StatusCode != http.StatusOK:
		return model.UserProfile{}, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var profile model.UserProfile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return model.UserProfile{}, fmt.Errorf("decoding response: %w", err)
	}
	return profile, nil
}

func (c *Client) get(ctx context.Context, url string) (*http.Response, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	return resp, nil
}

func parseRateLimitHeaders(headers http.Header) RateLimitInfo {
	var info RateLimitInfo
	if v := headers.Get("X-RateLimit-Limit"); v != "" {
		info.Limit, _ = strconv.Atoi(v)
	}
	if v := headers.Get("X-RateLimit-Remaining"); v != "" {
		info.Remaining, _ = strconv.Atoi(v)
	}
	if v := headers.Get("X-RateLimit-Reset"); v != "" {
		if epoch, err := strconv.ParseInt(v, 10, 64); err == nil {
			info.ResetAt = time.Unix(epoch, 0)
		}
	}
	if info.Limit > 0 && info.Remaining <= 0 {
		info.IsRateLimited = true
	}
	return info
}

// formatHeaders formats HTTP headers for trace logging, redacting
// credentials.
func formatHeaders(headers http.Header) string {
	if len(headers) == 0 {
		return "{}"
	}

	keys := make([]string, 0, len(headers))
	for k := range headers {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	sb.WriteString("{")
	for i, k := range keys {
		if i > 0 {
			sb.WriteString(", ")
		}
		value := strings.Join(headers[k], ", ")
		switch strings.ToLower(k) {
		case "authorization", "cookie", "set-cookie":
			value = "[REDACTED]"
		}
		sb.WriteString(fmt.Sprintf("%s: %q", k, value))
	}
	sb.WriteString("}")
	return sb.String()
}
