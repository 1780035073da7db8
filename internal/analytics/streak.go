package analytics

import (
	"sort"
	"time"
)

// StreakStats summarizes training consistency over the full completed log.
// Streaks count consecutive local calendar days with at least one
// completed session; time of day is discarded and multiple sessions on
// the same day count once.
type StreakStats struct {
	Current      int    `json:"current"`
	Longest      int    `json:"longest"`
	LongestStart string `json:"longest_start,omitempty"`
	LongestEnd   string `json:"longest_end,omitempty"`
	// RestDays is the number of days since the most recent session's
	// local calendar day, floored at 0. This is the window-independent
	// definition: it means the same thing under every period selection.
	RestDays int `json:"rest_days"`
}

// uniqueTrainingDays reduces sessions to their distinct local calendar
// days, sorted ascending.
func uniqueTrainingDays(workouts []completedWorkout, loc *time.Location) []time.Time {
	seen := make(map[string]struct{}, len(workouts))
	days := make([]time.Time, 0, len(workouts))
	for _, w := range workouts {
		d := startOfDay(w.completedAt.In(loc))
		key := d.Format(dayLayout)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })
	return days
}

// computeStreaks derives streak statistics from the completed log. The
// current streak starts counting only if the most recent session is today
// or yesterday; an older last session means the streak is already broken
// and reports 0.
func computeStreaks(workouts []completedWorkout, now time.Time, loc *time.Location) StreakStats {
	days := uniqueTrainingDays(workouts, loc)
	if len(days) == 0 {
		return StreakStats{}
	}

	today := startOfDay(now.In(loc))
	latest := days[len(days)-1]

	stats := StreakStats{
		RestDays: maxInt(0, daysBetween(latest, today)),
	}

	// Current streak: walk backward one day at a time from the most
	// recent session day; the first gap terminates the scan.
	if daysBetween(latest, today) <= 1 {
		daySet := make(map[string]struct{}, len(days))
		for _, d := range days {
			daySet[d.Format(dayLayout)] = struct{}{}
		}
		expected := latest
		for {
			if _, ok := daySet[expected.Format(dayLayout)]; !ok {
				break
			}
			stats.Current++
			expected = expected.AddDate(0, 0, -1)
		}
	}

	// Longest streak: single ascending scan, reset on any gap != 1 day.
	run := 1
	runStart := days[0]
	best := 1
	bestStart, bestEnd := days[0], days[0]
	for i := 1; i < len(days); i++ {
		if daysBetween(days[i-1], days[i]) == 1 {
			run++
		} else {
			run = 1
			runStart = days[i]
		}
		if run > best {
			best = run
			bestStart = runStart
			bestEnd = days[i]
		}
	}
	stats.Longest = best
	stats.LongestStart = bestStart.Format(dayLayout)
	stats.LongestEnd = bestEnd.Format(dayLayout)

	return stats
}

// daysBetween returns whole calendar days from a to b. The difference is
// taken over date components re-anchored in UTC, so DST transitions
// (23h or 25h local days) never shift the count.
func daysBetween(a, b time.Time) int {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	ua := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	ub := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(ub.Sub(ua).Hours() / 24)
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
