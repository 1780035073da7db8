package analytics

import (
	"testing"
	"time"
	_ "time/tzdata" // DST cases must resolve zones without system tzdata

	"github.com/liftlog/liftlog-mcp/internal/model"
)

func sessionsOn(offsets ...int) []model.WorkoutRecord {
	log := make([]model.WorkoutRecord, 0, len(offsets))
	for i, off := range offsets {
		log = append(log, benchWorkout(
			"w"+string(rune('a'+i)),
			testNow.AddDate(0, 0, off),
			model.SetEntry{WeightKg: 100, Reps: 5},
		))
	}
	return log
}

func streaksFor(offsets ...int) StreakStats {
	return computeStreaks(selectCompleted(sessionsOn(offsets...)), testNow, time.UTC)
}

func TestCurrentStreak(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		offsets []int
		want    int
	}{
		{"today yesterday and before", []int{0, -1, -2}, 3},
		{"gap at day two", []int{0, -1, -3}, 2},
		{"starts yesterday", []int{-1, -2, -3}, 3},
		{"last session two days ago", []int{-2, -3, -4}, 0},
		{"single session today", []int{0}, 1},
		{"no sessions", nil, 0},
		{"same day counted once", []int{0, 0, -1}, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := streaksFor(tt.offsets...).Current; got != tt.want {
				t.Errorf("current streak = %d, want %d", got, tt.want)
			}
		})
	}
}

// The current streak never grows as the most recent session recedes
// further into the past.
func TestCurrentStreakMonotoneInRecency(t *testing.T) {
	t.Parallel()

	prev := streaksFor(0, -1, -2).Current
	for shift := 1; shift <= 4; shift++ {
		cur := streaksFor(-shift, -shift-1, -shift-2).Current
		if cur > prev {
			t.Errorf("streak grew from %d to %d as sessions receded (shift %d)", prev, cur, shift)
		}
		prev = cur
	}
}

func TestLongestStreak(t *testing.T) {
	t.Parallel()

	// Runs: [-10..-8] (3 days), [-5..-4] (2 days), [0] (1 day).
	s := streaksFor(0, -4, -5, -8, -9, -10)
	if s.Longest != 3 {
		t.Errorf("longest = %d, want 3", s.Longest)
	}
	wantStart := testNow.AddDate(0, 0, -10).Format(dayLayout)
	wantEnd := testNow.AddDate(0, 0, -8).Format(dayLayout)
	if s.LongestStart != wantStart || s.LongestEnd != wantEnd {
		t.Errorf("longest run %s..%s, want %s..%s", s.LongestStart, s.LongestEnd, wantStart, wantEnd)
	}
}

func TestLongestStreakSingleDay(t *testing.T) {
	t.Parallel()

	s := streaksFor(-3)
	if s.Longest != 1 {
		t.Errorf("longest = %d, want 1", s.Longest)
	}
	if s.LongestStart != s.LongestEnd {
		t.Errorf("single-day run should have equal bounds, got %s..%s", s.LongestStart, s.LongestEnd)
	}
}

func TestRestDays(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		offsets []int
		want    int
	}{
		{"session today", []int{0}, 0},
		{"session yesterday", []int{-1}, 1},
		{"session five days ago", []int{-5}, 5},
		{"most recent wins", []int{-5, -1}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := streaksFor(tt.offsets...).RestDays
			if got != tt.want {
				t.Errorf("rest days = %d, want %d", got, tt.want)
			}
			if got < 0 {
				t.Error("rest days must never be negative")
			}
		})
	}
}

// Eastern time springs forward on 2025-03-09, making it a 23-hour local
// day. Consecutive sessions across the transition must still count as a
// one-day gap.
func TestStreaksAcrossSpringForward(t *testing.T) {
	t.Parallel()

	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Fatalf("loading zone: %v", err)
	}
	day := func(d int) time.Time {
		return time.Date(2025, 3, d, 12, 0, 0, 0, loc)
	}
	set := model.SetEntry{WeightKg: 100, Reps: 5}

	log := selectCompleted([]model.WorkoutRecord{
		benchWorkout("wa", day(8), set),
		benchWorkout("wb", day(9), set),
		benchWorkout("wc", day(10), set),
	})
	s := computeStreaks(log, day(10), loc)
	if s.Current != 3 {
		t.Errorf("current streak = %d, want 3", s.Current)
	}
	if s.Longest != 3 {
		t.Errorf("longest streak = %d, want 3", s.Longest)
	}
	if s.RestDays != 0 {
		t.Errorf("rest days = %d, want 0", s.RestDays)
	}

	solo := selectCompleted([]model.WorkoutRecord{benchWorkout("wa", day(8), set)})
	s = computeStreaks(solo, day(11), loc)
	if s.RestDays != 3 {
		t.Errorf("rest days across transition = %d, want 3", s.RestDays)
	}
	if s.Current != 0 {
		t.Errorf("current streak = %d, want 0", s.Current)
	}
}

func TestStreaksEmptyLog(t *testing.T) {
	t.Parallel()

	s := computeStreaks(nil, testNow, time.UTC)
	if s.Current != 0 || s.Longest != 0 || s.RestDays != 0 {
		t.Errorf("empty log streaks = %+v, want zeros", s)
	}
}
