package server

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/liftlog/liftlog-mcp/internal/analytics"
	"github.com/liftlog/liftlog-mcp/internal/logging"
)

// TrainingStatsInput - input for the headline training statistics tool
type TrainingStatsInput struct {
	Period string `json:"period,omitempty" jsonschema:"Analysis period. One of: last7Days, last30Days, last90Days, thisMonth, lastMonth, thisYear, lastYear, allTime. Unknown values fall back to last30Days. Leave empty to keep the currently selected period."`
}

// TrainingStatsOutput is the headline training view for one period
type TrainingStatsOutput struct {
	Period      string `json:"period"`
	PeriodStart string `json:"period_start"`
	PeriodEnd   string `json:"period_end"`

	TotalWorkouts       int     `json:"total_workouts"`
	VolumeLoad          float64 `json:"volume_load"`
	VolumeLoadHuman     string  `json:"volume_load_human"`
	AvgVolumePerWorkout float64 `json:"avg_volume_per_workout"`
	TotalSets           int     `json:"total_sets"`

	RestDays           int    `json:"rest_days"`
	CurrentStreak      int    `json:"current_streak"`
	LongestStreak      int    `json:"longest_streak"`
	LongestStreakStart string `json:"longest_streak_start,omitempty"`
	LongestStreakEnd   string `json:"longest_streak_end,omitempty"`

	BestWorkout *analytics.BestWorkout `json:"best_workout,omitempty"`

	DurationStats DurationStatsOutput `json:"duration_stats"`

	BodyWeightKg *float64 `json:"body_weight_kg,omitempty"`

	Insights []analytics.Insight `json:"insights"`
}

// DurationStatsOutput carries session duration aggregates with human labels
type DurationStatsOutput struct {
	TotalSec   int64  `json:"total_sec"`
	Total      string `json:"total"`
	AvgSec     int64  `json:"avg_sec"`
	Average    string `json:"average"`
	LongestSec int64  `json:"longest_sec"`
	Shortest   string `json:"shortest"`
	Longest    string `json:"longest"`
}

// registerStatsTools registers the training statistics tool
func (s *Server) registerStatsTools() {
	logging.Debug("Registering tool", "name", "get_training_stats")
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name: "get_training_stats",
		Description: `Get headline training statistics for a period: workout counts, volume load, streaks, rest days, best workout, and session durations.

Use when:
- User asks "How is my training going?" or "Show my stats for this month"
- User wants workout counts, total volume, or streak information
- User needs an overall picture before drilling into breakdowns

Parameters:
- period (string): One of "last7Days", "last30Days", "last90Days", "thisMonth", "lastMonth", "thisYear", "lastYear", "allTime". Default: "last30Days". Unknown values fall back to the default.

Returns: Period boundaries, total workouts, volume load in kg, average volume per workout, total sets, rest days since last session, current and longest training streaks, best (highest volume) workout, duration aggregates, body weight when synced, and qualitative insights.

Example: {"period": "last30Days"} or {"period": "thisYear"}`,
		Annotations: &mcp.ToolAnnotations{
			Title:           "Get Training Stats",
			ReadOnlyHint:    true,
			IdempotentHint:  true,
			OpenWorldHint:   ptr(false),
			DestructiveHint: ptr(false),
		},
	}, s.getTrainingStats)
}

func (s *Server) getTrainingStats(ctx context.Context, req *mcp.CallToolRequest, input TrainingStatsInput) (*mcp.CallToolResult, TrainingStatsOutput, error) {
	logging.Info("MCP tool call", "tool", "get_training_stats", "period", input.Period)
	if logging.IsVerbose() {
		logging.Debug("MCP request params", "tool", "get_training_stats", "input", logging.ToJSON(input))
	}

	stats, err := s.stats(ctx, input.Period)
	if err != nil {
		logging.Error("getTrainingStats failed", "error", err)
		return nil, TrainingStatsOutput{}, err
	}

	output := TrainingStatsOutput{
		Period:      string(stats.Period),
		PeriodStart: stats.PeriodStart,
		PeriodEnd:   stats.PeriodEnd,

		TotalWorkouts:       stats.TotalWorkouts,
		VolumeLoad:          stats.VolumeLoad,
		VolumeLoadHuman:     formatVolume(stats.VolumeLoad),
		AvgVolumePerWorkout: stats.AvgVolumePerWorkout,
		TotalSets:           stats.TotalSets,

		RestDays:           stats.RestDays,
		CurrentStreak:      stats.CurrentStreak,
		LongestStreak:      stats.LongestStreak,
		LongestStreakStart: stats.LongestStreakStart,
		LongestStreakEnd:   stats.LongestStreakEnd,

		BestWorkout: stats.BestWorkout,

		DurationStats: DurationStatsOutput{
			TotalSec:   stats.DurationStats.TotalSec,
			Total:      formatDurationHuman(stats.DurationStats.TotalSec),
			AvgSec:     stats.DurationStats.AvgSec,
			Average:    formatDurationHuman(stats.DurationStats.AvgSec),
			LongestSec: stats.DurationStats.LongestSec,
			Shortest:   formatDurationHuman(stats.DurationStats.ShortestSec),
			Longest:    formatDurationHuman(stats.DurationStats.LongestSec),
		},

		Insights: stats.Insights,
	}

	if profile := s.currentProfile(); profile != nil {
		output.BodyWeightKg = profile.BodyWeightKg
	}

	return nil, output, nil
}
