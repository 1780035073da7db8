package analytics

import (
	"sort"
	"time"

	"github.com/liftlog/liftlog-mcp/internal/model"
)

// completedWorkout pairs a workout with its parsed completion time so the
// timestamp is parsed once per snapshot rather than once per calculator.
type completedWorkout struct {
	model.WorkoutRecord
	completedAt time.Time
}

// selectCompleted filters the raw log to completed sessions with a
// parsable completion timestamp. Sessions in any other status, or with a
// missing/garbled completed_at, contribute to no metric. Log order is
// preserved so chronological sorts can break timestamp ties in log order.
func selectCompleted(log []model.WorkoutRecord) []completedWorkout {
	out := make([]completedWorkout, 0, len(log))
	for _, w := range log {
		if w.Status != model.StatusCompleted {
			continue
		}
		t, ok := w.CompletedTime()
		if !ok {
			continue
		}
		out = append(out, completedWorkout{WorkoutRecord: w, completedAt: t})
	}
	return out
}

// selectInRange restricts completed sessions to a date range, inclusive on
// both ends.
func selectInRange(completed []completedWorkout, r Range) []completedWorkout {
	out := make([]completedWorkout, 0, len(completed))
	for _, w := range completed {
		if r.Contains(w.completedAt) {
			out = append(out, w)
		}
	}
	return out
}

// sortChronological orders sessions by ascending completion time. The sort
// is stable: sessions completing at the same instant keep log order, which
// the PR scan relies on.
func sortChronological(completed []completedWorkout) []completedWorkout {
	out := make([]completedWorkout, len(completed))
	copy(out, completed)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].completedAt.Before(out[j].completedAt)
	})
	return out
}

// earliestCompletion returns the completion time of the oldest completed
// session, or nil when none exists. Used to anchor the allTime period.
func earliestCompletion(completed []completedWorkout) *time.Time {
	var earliest *time.Time
	for i := range completed {
		t := completed[i].completedAt
		if earliest == nil || t.Before(*earliest) {
			earliest = &t
		}
	}
	return earliest
}
