package analytics

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/liftlog/liftlog-mcp/internal/model"
)

// Config tunes the engine. Zero values fall back to sensible defaults.
type Config struct {
	// PRTierKg is the rep-PR weight tier size. Non-positive means
	// DefaultPRTierKg.
	PRTierKg float64
	// Location is the timezone used for calendar bucketing. Nil means
	// time.Local.
	Location *time.Location
	// Now overrides the clock. Nil means time.Now.
	Now func() time.Time

	Logger zerolog.Logger
}

// BestWorkout identifies the highest-volume session of the period.
type BestWorkout struct {
	ID     string  `json:"id"`
	Date   string  `json:"date"`
	Volume float64 `json:"volume"`
}

// WeekVolume is one ISO week's (Monday-start, local) volume bucket.
type WeekVolume struct {
	WeekStart string  `json:"week_start"`
	Volume    float64 `json:"volume"`
	Workouts  int     `json:"workouts"`
}

// ProgressiveOverloadStats classifies whether weekly volume is building.
type ProgressiveOverloadStats struct {
	Trend            TrendDirection `json:"trend"`
	FirstHalfAvg     float64        `json:"first_half_avg"`
	SecondHalfAvg    float64        `json:"second_half_avg"`
	ChangePercentage float64        `json:"change_percentage"`
}

// DurationStats aggregates session durations over the period. Sessions
// with no recorded duration are excluded.
type DurationStats struct {
	TotalSec    int64 `json:"total_sec"`
	AvgSec      int64 `json:"avg_sec"`
	LongestSec  int64 `json:"longest_sec"`
	ShortestSec int64 `json:"shortest_sec"`
}

// PeriodComparison holds current-versus-previous deltas for the headline
// aggregates. Absent for periods with no comparison window.
type PeriodComparison struct {
	Workouts Comparison `json:"workouts"`
	Volume   Comparison `json:"volume"`
	Sets     Comparison `json:"sets"`
	Duration Comparison `json:"duration"`
}

// Stats is the full derived view of the training log for one period.
// Streak and PR figures scan the entire log; everything else is scoped
// to the period window.
type Stats struct {
	Period      Period `json:"period"`
	PeriodStart string `json:"period_start"`
	PeriodEnd   string `json:"period_end"`

	TotalWorkouts       int     `json:"total_workouts"`
	VolumeLoad          float64 `json:"volume_load"`
	AvgVolumePerWorkout float64 `json:"avg_volume_per_workout"`
	TotalSets           int     `json:"total_sets"`

	RestDays           int    `json:"rest_days"`
	CurrentStreak      int    `json:"current_streak"`
	LongestStreak      int    `json:"longest_streak"`
	LongestStreakStart string `json:"longest_streak_start,omitempty"`
	LongestStreakEnd   string `json:"longest_streak_end,omitempty"`

	BestWorkout *BestWorkout `json:"best_workout,omitempty"`

	VolumeByDay             []DayVolume              `json:"volume_by_day"`
	MuscleDistribution      []MuscleShare            `json:"muscle_distribution"`
	MuscleDistributionByVol []MuscleShare            `json:"muscle_distribution_by_volume"`
	MuscleVolumeByDay       []MuscleDayVolume        `json:"muscle_volume_by_day"`
	WeeklyVolumeProgression []WeekVolume             `json:"weekly_volume_progression"`
	ProgressiveOverload     ProgressiveOverloadStats `json:"progressive_overload"`
	DurationStats           DurationStats            `json:"duration_stats"`
	PeriodComparison        *PeriodComparison        `json:"period_comparison,omitempty"`

	ExerciseProgress []ExerciseProgress `json:"exercise_progress"`
	AllPRs           []PREvent          `json:"all_prs"`
	Insights         []Insight          `json:"insights"`
}

// Engine computes Stats snapshots from an in-memory training log. The
// snapshot is memoized and recomputed only after an input changes. Safe
// for concurrent use.
type Engine struct {
	cfg Config
	log zerolog.Logger

	mu       sync.Mutex
	workouts []model.WorkoutRecord
	catalog  []model.ExerciseCatalogEntry
	period   Period
	cached   *Stats
}

// NewEngine returns an engine with no data and the default period.
func NewEngine(cfg Config) *Engine {
	if cfg.PRTierKg <= 0 {
		cfg.PRTierKg = DefaultPRTierKg
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Engine{
		cfg:    cfg,
		log:    cfg.Logger,
		period: DefaultPeriod,
	}
}

// SetWorkouts replaces the training log and invalidates the snapshot.
func (e *Engine) SetWorkouts(workouts []model.WorkoutRecord) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.workouts = workouts
	e.cached = nil
}

// SetCatalog replaces the exercise catalog and invalidates the snapshot.
func (e *Engine) SetCatalog(catalog []model.ExerciseCatalogEntry) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.catalog = catalog
	e.cached = nil
}

// SetPeriod switches the active period. An unknown identifier falls back
// to the default period rather than failing; the period actually
// selected is returned.
func (e *Engine) SetPeriod(id string) Period {
	p, err := ParsePeriod(id)
	if err != nil {
		e.log.Warn().Str("period", id).Str("fallback", string(p)).
			Msg("unknown period identifier, using default")
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if p != e.period {
		e.period = p
		e.cached = nil
	}
	return p
}

// Period returns the active period.
func (e *Engine) Period() Period {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.period
}

// Stats returns the derived view for the active period, computing it on
// first call and after any input change.
func (e *Engine) Stats() *Stats {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.cached == nil {
		e.cached = e.compute()
	}
	return e.cached
}

func (e *Engine) compute() *Stats {
	loc := e.cfg.Location
	// Resolve derives calendar boundaries from now's location, which must
	// be the configured calendar zone, not the clock's.
	now := e.cfg.Now().In(loc)
	idx := BuildExerciseIndex(e.catalog)

	completed := selectCompleted(e.workouts)
	r, cmpRange := Resolve(e.period, now, earliestCompletion(completed))
	inRange := selectInRange(completed, r)

	s := &Stats{
		Period:      e.period,
		PeriodStart: r.Start.In(loc).Format(dayLayout),
		PeriodEnd:   r.End.In(loc).Format(dayLayout),

		TotalWorkouts: len(inRange),
		VolumeLoad:    periodVolume(inRange),
		TotalSets:     countSets(inRange),

		VolumeByDay:             volumeByDay(inRange, r, loc),
		MuscleDistribution:      muscleDistribution(inRange, idx),
		MuscleDistributionByVol: muscleDistributionByVolume(inRange, idx),
		MuscleVolumeByDay:       muscleVolumeByDay(inRange, idx, r, loc),
		DurationStats:           durationStats(inRange),
	}
	if s.TotalWorkouts > 0 {
		s.AvgVolumePerWorkout = s.VolumeLoad / float64(s.TotalWorkouts)
	}

	streaks := computeStreaks(completed, now, loc)
	s.RestDays = streaks.RestDays
	s.CurrentStreak = streaks.Current
	s.LongestStreak = streaks.Longest
	s.LongestStreakStart = streaks.LongestStart
	s.LongestStreakEnd = streaks.LongestEnd

	s.BestWorkout = bestWorkout(inRange, loc)
	s.WeeklyVolumeProgression = weeklyVolume(inRange, r, loc)
	s.ProgressiveOverload = progressiveOverload(s.WeeklyVolumeProgression)

	events, states := detectPRs(completed, idx, e.cfg.PRTierKg)
	s.AllPRs = allPRs(events)
	s.ExerciseProgress = exerciseProgressTable(states)

	if cmpRange != nil {
		prev := selectInRange(completed, *cmpRange)
		s.PeriodComparison = &PeriodComparison{
			Workouts: compareValues(float64(len(inRange)), float64(len(prev))),
			Volume:   compareValues(periodVolume(inRange), periodVolume(prev)),
			Sets:     compareValues(float64(countSets(inRange)), float64(countSets(prev))),
			Duration: compareValues(float64(totalDuration(inRange)), float64(totalDuration(prev))),
		}
	}

	s.Insights = generateInsights(s)

	e.log.Debug().
		Str("period", string(e.period)).
		Int("workouts", s.TotalWorkouts).
		Float64("volume", s.VolumeLoad).
		Int("prs", len(s.AllPRs)).
		Msg("computed stats snapshot")

	return s
}

// bestWorkout picks the period's highest-volume session, nil when the
// period is empty or every session has zero volume.
func bestWorkout(workouts []completedWorkout, loc *time.Location) *BestWorkout {
	var best *BestWorkout
	for _, w := range workouts {
		v := WorkoutVolume(w.WorkoutRecord)
		if v <= 0 {
			continue
		}
		if best == nil || v > best.Volume {
			best = &BestWorkout{
				ID:     w.ID,
				Date:   localDay(w.completedAt, loc),
				Volume: v,
			}
		}
	}
	return best
}

// weekStart returns the Monday beginning t's local week.
func weekStart(t time.Time, loc *time.Location) time.Time {
	d := startOfDay(t.In(loc))
	offset := (int(d.Weekday()) + 6) % 7
	return d.AddDate(0, 0, -offset)
}

// weeklyVolume buckets period workouts into Monday-start local weeks.
// Every week overlapping the range is present, zero-initialized.
func weeklyVolume(workouts []completedWorkout, r Range, loc *time.Location) []WeekVolume {
	weeks := make([]WeekVolume, 0, r.Days()/7+1)
	byStart := make(map[string]*WeekVolume)

	for w := weekStart(r.Start, loc); !w.After(r.End.In(loc)); w = w.AddDate(0, 0, 7) {
		weeks = append(weeks, WeekVolume{WeekStart: w.Format(dayLayout)})
	}
	for i := range weeks {
		byStart[weeks[i].WeekStart] = &weeks[i]
	}

	for _, w := range workouts {
		b, ok := byStart[weekStart(w.completedAt, loc).Format(dayLayout)]
		if !ok {
			continue
		}
		b.Volume += WorkoutVolume(w.WorkoutRecord)
		b.Workouts++
	}
	return weeks
}

// progressiveOverload classifies the weekly volume series.
func progressiveOverload(weeks []WeekVolume) ProgressiveOverloadStats {
	series := make([]float64, len(weeks))
	for i, w := range weeks {
		series[i] = w.Volume
	}

	stats := ProgressiveOverloadStats{
		Trend: calculateTrend(series, defaultTrendThresholdPct),
	}
	if len(series) >= 2 {
		mid := len(series) / 2
		stats.FirstHalfAvg = mean(series[:mid])
		stats.SecondHalfAvg = mean(series[mid:])
		stats.ChangePercentage = compareValues(stats.SecondHalfAvg, stats.FirstHalfAvg).ChangePercentage
	}
	return stats
}

// durationStats aggregates recorded session durations.
func durationStats(workouts []completedWorkout) DurationStats {
	var stats DurationStats
	var n int64
	for _, w := range workouts {
		d := w.DurationSec
		if d <= 0 {
			continue
		}
		stats.TotalSec += d
		if d > stats.LongestSec {
			stats.LongestSec = d
		}
		if stats.ShortestSec == 0 || d < stats.ShortestSec {
			stats.ShortestSec = d
		}
		n++
	}
	if n > 0 {
		stats.AvgSec = stats.TotalSec / n
	}
	return stats
}

// totalDuration sums recorded session durations in seconds.
func totalDuration(workouts []completedWorkout) int64 {
	var total int64
	for _, w := range workouts {
		if w.DurationSec > 0 {
			total += w.DurationSec
		}
	}
	return total
}
