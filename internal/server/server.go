package server

import (
	"context"
	"fmt"
	"sync"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/liftlog/liftlog-mcp/internal/analytics"
	"github.com/liftlog/liftlog-mcp/internal/logging"
	"github.com/liftlog/liftlog-mcp/internal/model"
	"github.com/liftlog/liftlog-mcp/internal/profilecache"
)

// ptr returns a pointer to the given value - useful for optional fields in structs
func ptr[T any](v T) *T {
	return &v
}

// Querier defines the interface for local database reads
type Querier interface {
	ListWorkouts(ctx context.Context) ([]model.WorkoutRecord, error)
	ListExercises(ctx context.Context) ([]model.ExerciseCatalogEntry, error)
	GetProfile(ctx context.Context) (model.UserProfile, error)
	CountWorkouts(ctx context.Context) (int64, error)
	CountCompletedWorkouts(ctx context.Context) (int64, error)
	CountExercises(ctx context.Context) (int64, error)
	LatestCompletedAt(ctx context.Context) (string, error)
}

// Server wraps the MCP server, the local database, and the analytics engine
type Server struct {
	mcp      *mcp.Server
	queries  Querier
	engine   *analytics.Engine
	profiles *profilecache.Cache

	mu     sync.Mutex
	stale  bool
	userID string
}

// MCPServer returns the underlying MCP server (for use with HTTP/SSE transport)
func (s *Server) MCPServer() *mcp.Server {
	return s.mcp
}

// New creates a new MCP server with training analytics tools
func New(queries Querier, engine *analytics.Engine, profiles *profilecache.Cache) *Server {
	logging.Info("MCP server initializing", "name", "liftlog-mcp", "version", "1.0.0")

	mcpServer := mcp.NewServer(&mcp.Implementation{
		Name:    "liftlog-mcp",
		Version: "1.0.0",
	}, nil)

	s := &Server{
		mcp:      mcpServer,
		queries:  queries,
		engine:   engine,
		profiles: profiles,
		stale:    true,
	}

	logging.Debug("Registering MCP tools")
	s.registerStatsTools()
	s.registerVolumeTools()
	s.registerRecordsTools()
	s.registerCompareTools()

	logging.Debug("Registering MCP resources")
	s.registerResources()

	logging.Debug("Registering MCP prompts")
	s.registerPrompts()

	logging.Info("MCP server initialized", "tools_registered", 4, "resources_registered", 2, "prompts_registered", 2)
	return s
}

// Run starts the MCP server over stdio transport
func (s *Server) Run(ctx context.Context) error {
	logging.Info("MCP server starting")
	defer logging.Info("MCP server stopped")
	return s.mcp.Run(ctx, &mcp.StdioTransport{})
}

// Invalidate marks the engine's inputs stale. Called by the sync workers
// after new data lands in the database.
func (s *Server) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stale = true
	logging.Debug("analytics inputs marked stale")
}

// ensureLoaded reloads the engine's inputs from the database when stale.
func (s *Server) ensureLoaded(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.stale {
		return nil
	}

	workouts, err := s.queries.ListWorkouts(ctx)
	if err != nil {
		return NewDatabaseErrorWithContext("workout load", err)
	}
	catalog, err := s.queries.ListExercises(ctx)
	if err != nil {
		return NewDatabaseErrorWithContext("catalog load", err)
	}

	s.engine.SetWorkouts(workouts)
	s.engine.SetCatalog(catalog)

	// Profile is optional: analytics works without one.
	if profile, err := s.queries.GetProfile(ctx); err == nil {
		s.profiles.Put(profile)
		s.userID = profile.UserID
	} else {
		s.userID = ""
	}

	s.stale = false
	logging.Debug("analytics inputs loaded", "workouts", len(workouts), "catalog", len(catalog))
	return nil
}

// currentProfile returns the synced profile, nil when none exists.
func (s *Server) currentProfile() *model.UserProfile {
	s.mu.Lock()
	userID := s.userID
	s.mu.Unlock()
	if userID == "" {
		return nil
	}
	if p, ok := s.profiles.Get(userID); ok {
		return &p
	}
	return nil
}

// stats resolves the requested period and returns the engine snapshot.
func (s *Server) stats(ctx context.Context, period string) (*analytics.Stats, error) {
	if err := s.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	if period != "" {
		s.engine.SetPeriod(period)
	}
	return s.engine.Stats(), nil
}

// formatVolume renders a kilogram volume for humans.
func formatVolume(kg float64) string {
	if kg <= 0 {
		return "0 kg"
	}
	if kg >= 10000 {
		return fmt.Sprintf("%.1ft", kg/1000)
	}
	return fmt.Sprintf("%.0f kg", kg)
}

// formatDurationHuman renders seconds as "Xh Ym" / "Ym Zs".
func formatDurationHuman(seconds int64) string {
	if seconds <= 0 {
		return "-"
	}
	hours := seconds / 3600
	minutes := (seconds % 3600) / 60
	secs := seconds % 60
	if hours > 0 {
		return fmt.Sprintf("%dh %dm", hours, minutes)
	}
	if minutes > 0 {
		return fmt.Sprintf("%dm %ds", minutes, secs)
	}
	return fmt.Sprintf("%ds", secs)
}
