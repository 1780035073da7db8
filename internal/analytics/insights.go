package analytics

import (
	"fmt"
	"math"

	"github.com/liftlog/liftlog-mcp/internal/model"
)

// Insight is a single qualitative observation about the training data.
type Insight struct {
	Type    string `json:"type"` // "trend", "achievement", "warning", "suggestion"
	Message string `json:"message"`
}

// Rest-day thresholds: within restDaysOnTrack the lifter is resting
// normally; past restDaysOverdue they are overdue for a session.
const (
	restDaysOnTrack = 2
	restDaysOverdue = 4
)

// muscleImbalancePct is the single-group share past which the split
// looks lopsided.
const muscleImbalancePct = 40.0

// restDayInsight classifies time off since the last session.
func restDayInsight(restDays int) Insight {
	switch {
	case restDays <= restDaysOnTrack:
		return Insight{
			Type:    "trend",
			Message: fmt.Sprintf("On track: %d rest day(s) since your last session", restDays),
		}
	case restDays <= restDaysOverdue:
		return Insight{
			Type:    "suggestion",
			Message: fmt.Sprintf("%d rest days since your last session - time to train?", restDays),
		}
	default:
		return Insight{
			Type:    "warning",
			Message: fmt.Sprintf("Overdue: %d rest days since your last session", restDays),
		}
	}
}

// streakInsight celebrates or nudges based on the current streak.
func streakInsight(current, longest int) []Insight {
	var insights []Insight
	if current >= 3 {
		insights = append(insights, Insight{
			Type:    "achievement",
			Message: fmt.Sprintf("You're on a %d-day training streak", current),
		})
	}
	if current > 0 && longest > current && longest-current <= 2 {
		insights = append(insights, Insight{
			Type:    "suggestion",
			Message: fmt.Sprintf("%d more day(s) to match your longest streak of %d", longest-current, longest),
		})
	}
	return insights
}

// volumeInsight classifies the period-over-period volume change.
func volumeInsight(c Comparison) []Insight {
	if c.Previous == 0 {
		return nil
	}
	abs := math.Abs(c.ChangePercentage)
	switch {
	case abs < 5:
		return []Insight{{
			Type:    "trend",
			Message: fmt.Sprintf("Training volume is stable (%.1f%% change)", c.ChangePercentage),
		}}
	case c.ChangePercentage >= 30:
		return []Insight{{
			Type:    "warning",
			Message: fmt.Sprintf("Training volume jumped %.0f%% - consider recovery", c.ChangePercentage),
		}}
	case c.ChangePercentage > 0:
		return []Insight{{
			Type:    "achievement",
			Message: fmt.Sprintf("Training volume is up %.0f%% on the previous period", c.ChangePercentage),
		}}
	default:
		return []Insight{{
			Type:    "trend",
			Message: fmt.Sprintf("Training volume is down %.0f%% on the previous period", abs),
		}}
	}
}

// muscleBalanceInsight flags a lopsided split. Shares must be sorted
// descending; the unknown group is skipped.
func muscleBalanceInsight(shares []MuscleShare) []Insight {
	for _, s := range shares {
		if s.Muscle == model.MuscleGroupUnknown {
			continue
		}
		if s.Percentage > muscleImbalancePct {
			return []Insight{{
				Type:    "suggestion",
				Message: fmt.Sprintf("%.0f%% of your sets target %s - consider balancing your split", s.Percentage, s.Muscle),
			}}
		}
		break
	}
	return nil
}

// prInsight surfaces recent record activity.
func prInsight(recent []PREvent) []Insight {
	if len(recent) == 0 {
		return nil
	}
	latest := recent[0]
	return []Insight{{
		Type: "achievement",
		Message: fmt.Sprintf("Latest PR: %s %.1f kg x %d on %s",
			latest.ExerciseName, latest.Weight, latest.Reps, latest.Date),
	}}
}

// generateInsights assembles the full insight list for a stats snapshot.
func generateInsights(s *Stats) []Insight {
	insights := []Insight{restDayInsight(s.RestDays)}
	insights = append(insights, streakInsight(s.CurrentStreak, s.LongestStreak)...)
	if s.PeriodComparison != nil {
		insights = append(insights, volumeInsight(s.PeriodComparison.Volume)...)
	}
	insights = append(insights, muscleBalanceInsight(s.MuscleDistribution)...)
	insights = append(insights, prInsight(s.AllPRs)...)
	return insights
}
