package analytics

import (
	"math"
	"sort"
)

// DefaultPRTierKg is the rep-PR weight tier size used when the
// configured value is missing or non-positive.
const DefaultPRTierKg = 2.5

// defaultTrendThresholdPct is the relative-change magnitude below which
// a 1RM series counts as stable.
const defaultTrendThresholdPct = 5.0

// PRType distinguishes the two record categories.
type PRType string

const (
	PRWeight PRType = "weight"
	PRReps   PRType = "reps"
)

// PREvent is one personal record: a set that beat every prior set for
// its exercise in its category.
type PREvent struct {
	ExerciseID   string  `json:"exercise_id"`
	ExerciseName string  `json:"exercise_name"`
	Type         PRType  `json:"type"`
	Weight       float64 `json:"weight"`
	Reps         int     `json:"reps"`
	Date         string  `json:"date"`
	Estimated1RM float64 `json:"estimated_1rm"`
	Improvement  float64 `json:"improvement"`
}

// ExerciseProgress is one row of the per-exercise progress table.
type ExerciseProgress struct {
	ExerciseID string         `json:"exercise_id"`
	Name       string         `json:"name"`
	Latest1RM  float64        `json:"latest_1rm"`
	Best1RM    float64        `json:"best_1rm"`
	PRCount    int            `json:"pr_count"`
	LastPRDate string         `json:"last_pr_date,omitempty"`
	Trend      TrendDirection `json:"trend"`
}

// epley1RM estimates a one-rep max from a working set. A single at a
// given weight is its own 1RM.
func epley1RM(weight float64, reps int) float64 {
	if reps <= 1 {
		return weight
	}
	return weight * (1 + float64(reps)/30)
}

// weightTier rounds a weight to the nearest multiple of tierKg so rep
// PRs compare like-for-like loads instead of exact floats.
func weightTier(weight, tierKg float64) float64 {
	if tierKg <= 0 {
		tierKg = DefaultPRTierKg
	}
	return math.Round(weight/tierKg) * tierKg
}

// prState is the running per-exercise scan state.
type prState struct {
	maxWeight float64
	repMax    map[float64]int
	best1RM   float64
	seeded    bool

	// per-session best 1RM series, chronological, for the trend
	// classification. latest1RM is the last session's entry.
	sessionBest []float64
	latest1RM   float64
	prCount     int
	lastPRDate  string
	lastName    string
}

// detectPRs scans the completed log in ascending chronological order and
// emits the PR event stream. The first observed set of an exercise seeds
// its baselines without emitting; after that, a set beating the weight
// maximum or its tier's rep maximum emits a record, additionally gated on
// the estimated 1RM exceeding every prior estimate so the emitted series
// is strictly increasing per exercise.
func detectPRs(completed []completedWorkout, idx *ExerciseIndex, tierKg float64) ([]PREvent, map[string]*prState) {
	if tierKg <= 0 {
		tierKg = DefaultPRTierKg
	}

	states := make(map[string]*prState)
	var events []PREvent

	for _, w := range sortChronological(completed) {
		date := w.completedAt.Format(dayLayout)
		sessionSeen := make(map[string]float64)

		for _, ex := range w.Exercises {
			st := states[ex.ExerciseID]
			if st == nil {
				st = &prState{repMax: make(map[float64]int)}
				states[ex.ExerciseID] = st
			}
			name := ex.ExerciseName
			if name == "" {
				name = idx.Name(ex.ExerciseID)
			}
			st.lastName = name

			for _, s := range ex.Sets {
				if s.WeightKg <= 0 || s.Reps <= 0 {
					continue
				}
				e1rm := epley1RM(s.WeightKg, s.Reps)
				tier := weightTier(s.WeightKg, tierKg)

				if e1rm > sessionSeen[ex.ExerciseID] {
					sessionSeen[ex.ExerciseID] = e1rm
				}

				if !st.seeded {
					st.seeded = true
					st.maxWeight = s.WeightKg
					st.repMax[tier] = s.Reps
					st.best1RM = e1rm
					continue
				}

				var kind PRType
				var isPR bool
				if s.WeightKg > st.maxWeight {
					kind, isPR = PRWeight, true
				} else if s.Reps > st.repMax[tier] {
					kind, isPR = PRReps, true
				}

				if s.WeightKg > st.maxWeight {
					st.maxWeight = s.WeightKg
				}
				if s.Reps > st.repMax[tier] {
					st.repMax[tier] = s.Reps
				}

				if isPR && e1rm > st.best1RM {
					events = append(events, PREvent{
						ExerciseID:   ex.ExerciseID,
						ExerciseName: name,
						Type:         kind,
						Weight:       s.WeightKg,
						Reps:         s.Reps,
						Date:         date,
						Estimated1RM: e1rm,
						Improvement:  e1rm - st.best1RM,
					})
					st.prCount++
					st.lastPRDate = date
				}
				if e1rm > st.best1RM {
					st.best1RM = e1rm
				}
			}
		}

		for id, best := range sessionSeen {
			st := states[id]
			st.sessionBest = append(st.sessionBest, best)
			st.latest1RM = best
		}
	}

	return events, states
}

// allPRs returns the emitted event stream most recent first.
func allPRs(events []PREvent) []PREvent {
	out := make([]PREvent, len(events))
	for i, e := range events {
		out[len(events)-1-i] = e
	}
	return out
}

// exerciseProgressTable summarizes the scan state per exercise, sorted by
// best estimated 1RM descending.
func exerciseProgressTable(states map[string]*prState) []ExerciseProgress {
	rows := make([]ExerciseProgress, 0, len(states))
	for id, st := range states {
		rows = append(rows, ExerciseProgress{
			ExerciseID: id,
			Name:       st.lastName,
			Latest1RM:  st.latest1RM,
			Best1RM:    st.best1RM,
			PRCount:    st.prCount,
			LastPRDate: st.lastPRDate,
			Trend:      calculateTrend(st.sessionBest, defaultTrendThresholdPct),
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Best1RM != rows[j].Best1RM {
			return rows[i].Best1RM > rows[j].Best1RM
		}
		return rows[i].ExerciseID < rows[j].ExerciseID
	})
	return rows
}
