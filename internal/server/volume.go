package server

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/liftlog/liftlog-mcp/internal/analytics"
	"github.com/liftlog/liftlog-mcp/internal/logging"
)

// VolumeBreakdownInput - input for the volume breakdown tool
type VolumeBreakdownInput struct {
	Period string `json:"period,omitempty" jsonschema:"Analysis period. One of: last7Days, last30Days, last90Days, thisMonth, lastMonth, thisYear, lastYear, allTime. Unknown values fall back to last30Days. Leave empty to keep the currently selected period."`
}

// VolumeBreakdownOutput carries the per-day, per-muscle, and per-week
// volume views for one period
type VolumeBreakdownOutput struct {
	Period      string `json:"period"`
	PeriodStart string `json:"period_start"`
	PeriodEnd   string `json:"period_end"`

	VolumeLoad      float64 `json:"volume_load"`
	VolumeLoadHuman string  `json:"volume_load_human"`

	VolumeByDay                []analytics.DayVolume       `json:"volume_by_day"`
	MuscleDistributionBySets   []analytics.MuscleShare     `json:"muscle_distribution_by_sets"`
	MuscleDistributionByVolume []analytics.MuscleShare     `json:"muscle_distribution_by_volume"`
	MuscleVolumeByDay          []analytics.MuscleDayVolume `json:"muscle_volume_by_day"`

	WeeklyVolumeProgression []analytics.WeekVolume             `json:"weekly_volume_progression"`
	ProgressiveOverload     analytics.ProgressiveOverloadStats `json:"progressive_overload"`
}

// registerVolumeTools registers the volume breakdown tool
func (s *Server) registerVolumeTools() {
	logging.Debug("Registering tool", "name", "get_volume_breakdown")
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name: "get_volume_breakdown",
		Description: `Get detailed training volume breakdowns: per-day volume, muscle group distribution, per-muscle daily volume, and weekly progression.

Use when:
- User asks "Which muscles am I training most?" or "Show my volume over time"
- User wants to check training balance across muscle groups
- User needs weekly volume trends or progressive overload analysis

Parameters:
- period (string): One of "last7Days", "last30Days", "last90Days", "thisMonth", "lastMonth", "thisYear", "lastYear", "allTime". Default: "last30Days". Unknown values fall back to the default.

Returns: Daily volume buckets (every day in the period present, zeros included), muscle distribution by set count and by volume with percentages, per-day per-muscle volume rows, Monday-start weekly volume buckets, and a progressive overload classification (increasing/decreasing/stable).

Example: {"period": "last90Days"}`,
		Annotations: &mcp.ToolAnnotations{
			Title:           "Get Volume Breakdown",
			ReadOnlyHint:    true,
			IdempotentHint:  true,
			OpenWorldHint:   ptr(false),
			DestructiveHint: ptr(false),
		},
	}, s.getVolumeBreakdown)
}

func (s *Server) getVolumeBreakdown(ctx context.Context, req *mcp.CallToolRequest, input VolumeBreakdownInput) (*mcp.CallToolResult, VolumeBreakdownOutput, error) {
	logging.Info("MCP tool call", "tool", "get_volume_breakdown", "period", input.Period)
	if logging.IsVerbose() {
		logging.Debug("MCP request params", "tool", "get_volume_breakdown", "input", logging.ToJSON(input))
	}

	stats, err := s.stats(ctx, input.Period)
	if err != nil {
		logging.Error("getVolumeBreakdown failed", "error", err)
		return nil, VolumeBreakdownOutput{}, err
	}

	output := VolumeBreakdownOutput{
		Period:      string(stats.Period),
		PeriodStart: stats.PeriodStart,
		PeriodEnd:   stats.PeriodEnd,

		VolumeLoad:      stats.VolumeLoad,
		VolumeLoadHuman: formatVolume(stats.VolumeLoad),

		VolumeByDay:                stats.VolumeByDay,
		MuscleDistributionBySets:   stats.MuscleDistribution,
		MuscleDistributionByVolume: stats.MuscleDistributionByVol,
		MuscleVolumeByDay:          stats.MuscleVolumeByDay,

		WeeklyVolumeProgression: stats.WeeklyVolumeProgression,
		ProgressiveOverload:     stats.ProgressiveOverload,
	}
	return nil, output, nil
}
