package server

import (
	"context"
	"encoding/json"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/liftlog/liftlog-mcp/internal/analytics"
	"github.com/liftlog/liftlog-mcp/internal/logging"
)

// registerResources registers all MCP resources for the server
func (s *Server) registerResources() {
	// Static resource: the closed period enumeration
	s.mcp.AddResource(&mcp.Resource{
		URI:         "liftlog://periods",
		Name:        "analysis_periods",
		Description: "The closed set of analysis period identifiers with their semantics and the default",
		MIMEType:    "application/json",
	}, s.readPeriods)

	// Static resource: local data freshness
	s.mcp.AddResource(&mcp.Resource{
		URI:         "liftlog://stats",
		Name:        "database_stats",
		Description: "Local database counts and the latest synced workout completion time",
		MIMEType:    "application/json",
	}, s.readDatabaseStats)

	logging.Debug("MCP resources registered", "count", 2)
}

// PeriodInfo describes one analysis period identifier
type PeriodInfo struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	Default     bool   `json:"default,omitempty"`
}

var periodDescriptions = map[analytics.Period]string{
	analytics.PeriodLast7Days:  "Rolling window covering today and the 6 preceding days",
	analytics.PeriodLast30Days: "Rolling window covering today and the 29 preceding days",
	analytics.PeriodLast90Days: "Rolling window covering today and the 89 preceding days",
	analytics.PeriodThisMonth:  "Calendar month containing today",
	analytics.PeriodLastMonth:  "Previous calendar month",
	analytics.PeriodThisYear:   "Calendar year containing today",
	analytics.PeriodLastYear:   "Previous calendar year",
	analytics.PeriodAllTime:    "From the earliest completed workout through today",
}

// readPeriods returns the period enumeration
func (s *Server) readPeriods(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	logging.Info("MCP resource read", "resource", "analysis_periods")

	periods := make([]PeriodInfo, 0, len(periodDescriptions))
	for _, p := range analytics.Periods() {
		periods = append(periods, PeriodInfo{
			ID:          string(p),
			Description: periodDescriptions[p],
			Default:     p == analytics.DefaultPeriod,
		})
	}

	jsonData, err := json.MarshalIndent(periods, "", "  ")
	if err != nil {
		return nil, NewInternalErrorWithCause("failed to marshal periods", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{
			{
				URI:      "liftlog://periods",
				MIMEType: "application/json",
				Text:     string(jsonData),
			},
		},
	}, nil
}

// DatabaseStatsOutput reports local data freshness
type DatabaseStatsOutput struct {
	TotalWorkouts     int64  `json:"total_workouts"`
	CompletedWorkouts int64  `json:"completed_workouts"`
	CatalogExercises  int64  `json:"catalog_exercises"`
	LatestCompletion  string `json:"latest_completion,omitempty"`
	ActivePeriod      string `json:"active_period"`
}

// readDatabaseStats returns local database counts and sync freshness
func (s *Server) readDatabaseStats(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	logging.Info("MCP resource read", "resource", "database_stats")

	total, err := s.queries.CountWorkouts(ctx)
	if err != nil {
		logging.Error("readDatabaseStats failed", "error", err)
		return nil, NewDatabaseErrorWithContext("workout count", err)
	}
	completed, err := s.queries.CountCompletedWorkouts(ctx)
	if err != nil {
		return nil, NewDatabaseErrorWithContext("completed count", err)
	}
	exercises, err := s.queries.CountExercises(ctx)
	if err != nil {
		return nil, NewDatabaseErrorWithContext("exercise count", err)
	}
	latest, err := s.queries.LatestCompletedAt(ctx)
	if err != nil {
		return nil, NewDatabaseErrorWithContext("latest completion", err)
	}

	output := DatabaseStatsOutput{
		TotalWorkouts:     total,
		CompletedWorkouts: completed,
		CatalogExercises:  exercises,
		LatestCompletion:  latest,
		ActivePeriod:      string(s.engine.Period()),
	}

	jsonData, err := json.MarshalIndent(output, "", "  ")
	if err != nil {
		return nil, NewInternalErrorWithCause("failed to marshal database stats", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{
			{
				URI:      "liftlog://stats",
				MIMEType: "application/json",
				Text:     string(jsonData),
			},
		},
	}, nil
}
