package server

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/liftlog/liftlog-mcp/internal/analytics"
	"github.com/liftlog/liftlog-mcp/internal/logging"
)

// ComparePeriodsInput - input for the period comparison tool
type ComparePeriodsInput struct {
	Period string `json:"period,omitempty" jsonschema:"Period whose window is compared against the preceding window of equal length (or previous calendar unit). One of: last7Days, last30Days, last90Days, thisMonth, lastMonth, thisYear, lastYear. allTime has no comparison window. Default: last30Days."`
}

// ComparePeriodsOutput is the current-versus-previous view for one period
type ComparePeriodsOutput struct {
	Period      string `json:"period"`
	PeriodStart string `json:"period_start"`
	PeriodEnd   string `json:"period_end"`

	Workouts analytics.Comparison `json:"workouts"`
	Volume   analytics.Comparison `json:"volume"`
	Sets     analytics.Comparison `json:"sets"`
	Duration analytics.Comparison `json:"duration"`

	VolumeChangeHuman   string `json:"volume_change_human,omitempty"`
	DurationChangeHuman string `json:"duration_change_human,omitempty"`

	Insights []analytics.Insight `json:"insights"`
}

// registerCompareTools registers the period comparison tool
func (s *Server) registerCompareTools() {
	logging.Debug("Registering tool", "name", "compare_periods")
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name: "compare_periods",
		Description: `Compare training metrics for a period against the immediately preceding window with absolute and percentage changes.

Use when:
- User asks "Am I training more than last month?" or "How does this week compare?"
- User wants to track whether volume or frequency has increased
- User needs period-over-period progress numbers

Parameters:
- period (string): One of "last7Days", "last30Days", "last90Days", "thisMonth", "lastMonth", "thisYear", "lastYear". Rolling windows compare against the preceding window of equal length, calendar periods against the previous calendar unit. "allTime" has no comparison window and returns an error. Default: "last30Days".

Returns: For workouts, volume, sets, and duration - the current value, the previous value, the absolute change, and the percentage change (0 when the previous value is 0), plus qualitative insights.

Example: {"period": "thisMonth"} or {"period": "last7Days"}`,
		Annotations: &mcp.ToolAnnotations{
			Title:           "Compare Periods",
			ReadOnlyHint:    true,
			IdempotentHint:  true,
			OpenWorldHint:   ptr(false),
			DestructiveHint: ptr(false),
		},
	}, s.comparePeriods)
}

func (s *Server) comparePeriods(ctx context.Context, req *mcp.CallToolRequest, input ComparePeriodsInput) (*mcp.CallToolResult, ComparePeriodsOutput, error) {
	logging.Info("MCP tool call", "tool", "compare_periods", "period", input.Period)
	if logging.IsVerbose() {
		logging.Debug("MCP request params", "tool", "compare_periods", "input", logging.ToJSON(input))
	}

	stats, err := s.stats(ctx, input.Period)
	if err != nil {
		logging.Error("comparePeriods failed", "error", err)
		return nil, ComparePeriodsOutput{}, err
	}

	if stats.PeriodComparison == nil {
		return nil, ComparePeriodsOutput{}, NewInvalidInputError("period " + string(stats.Period) + " has no comparison window")
	}

	cmp := stats.PeriodComparison
	output := ComparePeriodsOutput{
		Period:      string(stats.Period),
		PeriodStart: stats.PeriodStart,
		PeriodEnd:   stats.PeriodEnd,

		Workouts: cmp.Workouts,
		Volume:   cmp.Volume,
		Sets:     cmp.Sets,
		Duration: cmp.Duration,

		VolumeChangeHuman:   formatVolume(cmp.Volume.Current) + " vs " + formatVolume(cmp.Volume.Previous),
		DurationChangeHuman: formatDurationHuman(int64(cmp.Duration.Current)) + " vs " + formatDurationHuman(int64(cmp.Duration.Previous)),

		Insights: stats.Insights,
	}
	return nil, output, nil
}
