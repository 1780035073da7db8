package server

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/liftlog/liftlog-mcp/internal/logging"
)

// registerPrompts registers all MCP prompts for the server
func (s *Server) registerPrompts() {
	// Training review prompt
	s.mcp.AddPrompt(&mcp.Prompt{
		Name:        "training_review",
		Description: "Generate a comprehensive training review for a period with insights and recommendations",
		Arguments: []*mcp.PromptArgument{
			{
				Name:        "period",
				Description: "Analysis period: 'last7Days', 'last30Days', 'last90Days', 'thisMonth', 'lastMonth', 'thisYear', 'lastYear', or 'allTime'",
				Required:    false,
			},
		},
	}, s.trainingReviewPrompt)

	// PR check prompt
	s.mcp.AddPrompt(&mcp.Prompt{
		Name:        "pr_check",
		Description: "Review personal records and strength progression",
		Arguments: []*mcp.PromptArgument{
			{
				Name:        "exercise",
				Description: "Exercise to focus on (catalog ID or name). Leave empty for all exercises.",
				Required:    false,
			},
		},
	}, s.prCheckPrompt)

	logging.Debug("MCP prompts registered", "count", 2)
}

// trainingReviewPrompt generates a prompt for a period training review
func (s *Server) trainingReviewPrompt(ctx context.Context, req *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	period := "last30Days"
	if req.Params.Arguments != nil {
		if p, ok := req.Params.Arguments["period"]; ok && p != "" {
			period = p
		}
	}

	logging.Info("MCP prompt requested", "prompt", "training_review", "period", period)

	promptText := fmt.Sprintf(`Please provide a comprehensive review of my training over the %s period.

Use the following tools to gather data:
1. **get_training_stats** with period="%s" for workout counts, volume, streaks, and durations
2. **get_volume_breakdown** with period="%s" for muscle group balance and weekly progression
3. **compare_periods** with period="%s" to see how this period compares to the previous one

Then provide:
- **Summary**: Workouts completed, total volume load, sets, and training time
- **Consistency**: Current streak, longest streak, and rest day pattern
- **Balance**: Which muscle groups are getting the most and least work
- **Progression**: Is weekly volume building, holding, or declining?
- **Recommendations**: Specific suggestions for the coming weeks based on the data

Please be specific with numbers and use the actual data from the tools.`, period, period, period, period)

	return &mcp.GetPromptResult{
		Description: "Training review prompt",
		Messages: []*mcp.PromptMessage{
			{
				Role:    "user",
				Content: &mcp.TextContent{Text: promptText},
			},
		},
	}, nil
}

// prCheckPrompt generates a prompt for personal records review
func (s *Server) prCheckPrompt(ctx context.Context, req *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	exercise := ""
	focus := "all exercises"

	if req.Params.Arguments != nil {
		if e, ok := req.Params.Arguments["exercise"]; ok && e != "" {
			exercise = e
			focus = e
		}
	}

	logging.Info("MCP prompt requested", "prompt", "pr_check", "exercise", exercise)

	exerciseParam := ""
	if exercise != "" {
		exerciseParam = fmt.Sprintf(` with exercise="%s"`, exercise)
	}

	promptText := fmt.Sprintf(`Please review my personal records and strength progression for %s.

Use the following tools to gather data:
1. **get_personal_records**%s for the PR history and per-exercise progress table
2. **get_training_stats** for overall training context

Then provide:
- **Recent PRs**: The latest weight and rep records with dates and estimated 1RMs
- **Strength Trends**: Which lifts are trending up, flat, or down
- **Standouts**: The biggest improvements (largest estimated-1RM jumps)
- **Stalls**: Exercises without a PR for a long stretch
- **PR Strategy**: Recommendations for targeting the next records

Celebrate achievements and provide motivation for chasing new PRs!`, focus, exerciseParam)

	return &mcp.GetPromptResult{
		Description: "Personal records review prompt",
		Messages: []*mcp.PromptMessage{
			{
				Role:    "user",
				Content: &mcp.TextContent{Text: promptText},
			},
		},
	}, nil
}
