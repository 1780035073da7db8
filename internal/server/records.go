package server

import (
	"context"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/liftlog/liftlog-mcp/internal/analytics"
	"github.com/liftlog/liftlog-mcp/internal/logging"
)

const (
	defaultPRLimit = 20
	maxPRLimit     = 100
)

// GetPersonalRecordsInput - input for retrieving personal records
type GetPersonalRecordsInput struct {
	Exercise string `json:"exercise,omitempty" jsonschema:"Filter records to a single exercise by catalog ID or name (case-insensitive substring match on the name). Leave empty for all exercises."`
	Limit    int    `json:"limit,omitempty" jsonschema:"Maximum number of PR events to return, most recent first. Default: 20, Max: 100."`
}

// GetPersonalRecordsOutput is the PR history plus the per-exercise
// progress table
type GetPersonalRecordsOutput struct {
	Records          []analytics.PREvent          `json:"records"`
	ExerciseProgress []analytics.ExerciseProgress `json:"exercise_progress"`
	TotalRecords     int                          `json:"total_records"`
	Filter           string                       `json:"filter,omitempty"`
}

// registerRecordsTools registers the personal records tool
func (s *Server) registerRecordsTools() {
	logging.Debug("Registering tool", "name", "get_personal_records")
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name: "get_personal_records",
		Description: `Get personal records (weight PRs and rep PRs) and per-exercise strength progression.

Use when:
- User asks "What are my PRs?" or "When did I last PR my bench?"
- User wants to see strength progress for a specific exercise
- User needs estimated one-rep-max history

Parameters:
- exercise (string): Filter by exercise catalog ID or name (case-insensitive substring). Leave empty for all exercises.
- limit (integer): Number of PR events to return, most recent first. Default: 20, Max: 100.

Returns: PR events with exercise, type (weight or reps), weight, reps, date, estimated 1RM (Epley), and improvement over the previous best. Also a per-exercise table with latest 1RM, best 1RM, PR count, last PR date, and trend direction.

Example: {} or {"exercise": "bench", "limit": 10}`,
		Annotations: &mcp.ToolAnnotations{
			Title:           "Get Personal Records",
			ReadOnlyHint:    true,
			IdempotentHint:  true,
			OpenWorldHint:   ptr(false),
			DestructiveHint: ptr(false),
		},
	}, s.getPersonalRecords)
}

func (s *Server) getPersonalRecords(ctx context.Context, req *mcp.CallToolRequest, input GetPersonalRecordsInput) (*mcp.CallToolResult, GetPersonalRecordsOutput, error) {
	logging.Info("MCP tool call", "tool", "get_personal_records", "exercise", input.Exercise, "limit", input.Limit)
	if logging.IsVerbose() {
		logging.Debug("MCP request params", "tool", "get_personal_records", "input", logging.ToJSON(input))
	}

	stats, err := s.stats(ctx, "")
	if err != nil {
		logging.Error("getPersonalRecords failed", "error", err)
		return nil, GetPersonalRecordsOutput{}, err
	}

	records := stats.AllPRs
	progress := stats.ExerciseProgress
	filter := ""

	if input.Exercise != "" {
		filter = "exercise=" + input.Exercise
		records = filterPRs(records, input.Exercise)
		progress = filterProgress(progress, input.Exercise)
		if len(records) == 0 && len(progress) == 0 {
			return nil, GetPersonalRecordsOutput{}, NewNotFoundError("exercise " + input.Exercise)
		}
	}

	total := len(records)
	limit := input.Limit
	if limit <= 0 {
		limit = defaultPRLimit
	}
	if limit > maxPRLimit {
		limit = maxPRLimit
	}
	if len(records) > limit {
		records = records[:limit]
	}

	output := GetPersonalRecordsOutput{
		Records:          records,
		ExerciseProgress: progress,
		TotalRecords:     total,
		Filter:           filter,
	}
	return nil, output, nil
}

// filterPRs keeps events matching an exercise ID exactly or an exercise
// name by case-insensitive substring.
func filterPRs(events []analytics.PREvent, exercise string) []analytics.PREvent {
	needle := strings.ToLower(exercise)
	out := make([]analytics.PREvent, 0, len(events))
	for _, e := range events {
		if e.ExerciseID == exercise || strings.Contains(strings.ToLower(e.ExerciseName), needle) {
			out = append(out, e)
		}
	}
	return out
}

func filterProgress(rows []analytics.ExerciseProgress, exercise string) []analytics.ExerciseProgress {
	needle := strings.ToLower(exercise)
	out := make([]analytics.ExerciseProgress, 0, len(rows))
	for _, r := range rows {
		if r.ExerciseID == exercise || strings.Contains(strings.ToLower(r.Name), needle) {
			out = append(out, r)
		}
	}
	return out
}
