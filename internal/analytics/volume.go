package analytics

import (
	"sort"
	"time"

	"github.com/liftlog/liftlog-mcp/internal/model"
)

const dayLayout = "2006-01-02"

// DayVolume is one calendar day's training volume bucket.
type DayVolume struct {
	Date      string  `json:"date"`
	Volume    float64 `json:"volume"`
	Workouts  int     `json:"workouts"`
	Exercises int     `json:"exercises"`
}

// MuscleShare is one muscle group's share of a distribution.
type MuscleShare struct {
	Muscle     string  `json:"muscle"`
	Value      float64 `json:"value"`
	Percentage float64 `json:"percentage"`
}

// MuscleDayVolume is one calendar day's volume split by muscle group.
type MuscleDayVolume struct {
	Date    string             `json:"date"`
	Volumes map[string]float64 `json:"volumes"`
}

// WorkoutVolume returns a workout's training volume in kilograms. The
// backend's denormalized total is authoritative when present and positive;
// otherwise the volume is recomputed as weight times reps summed over
// every set of every exercise, warmups and dropsets included.
func WorkoutVolume(w model.WorkoutRecord) float64 {
	if w.TotalVolume != nil && *w.TotalVolume > 0 {
		return *w.TotalVolume
	}
	var total float64
	for _, ex := range w.Exercises {
		for _, s := range ex.Sets {
			if s.WeightKg > 0 && s.Reps > 0 {
				total += s.WeightKg * float64(s.Reps)
			}
		}
	}
	return total
}

// localDay converts a completion instant to its local calendar day key.
// Bucketing uses the local date, not UTC, so late-evening sessions do not
// drift into the next day.
func localDay(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(dayLayout)
}

// volumeByDay buckets period workouts into local calendar days. Every day
// in the range is present, zero-initialized, so sparse weeks chart as
// flat lines instead of gaps.
func volumeByDay(workouts []completedWorkout, r Range, loc *time.Location) []DayVolume {
	buckets := make(map[string]*DayVolume)
	days := make([]DayVolume, 0, r.Days())

	for d := startOfDay(r.Start.In(loc)); !d.After(r.End.In(loc)); d = d.AddDate(0, 0, 1) {
		days = append(days, DayVolume{Date: d.Format(dayLayout)})
	}
	for i := range days {
		buckets[days[i].Date] = &days[i]
	}

	for _, w := range workouts {
		b, ok := buckets[localDay(w.completedAt, loc)]
		if !ok {
			continue
		}
		b.Volume += WorkoutVolume(w.WorkoutRecord)
		b.Workouts++
		b.Exercises += len(w.Exercises)
	}
	return days
}

// muscleDistribution accumulates set counts per muscle group across the
// period workouts. Percentages are of the total set count, 0 when the
// total is 0; the result is sorted descending by value. An empty period
// yields an empty slice.
func muscleDistribution(workouts []completedWorkout, idx *ExerciseIndex) []MuscleShare {
	return accumulateMuscles(workouts, idx, func(s model.SetEntry) float64 { return 1 })
}

// muscleDistributionByVolume is muscleDistribution weighted by set volume
// (weight times reps) instead of set count.
func muscleDistributionByVolume(workouts []completedWorkout, idx *ExerciseIndex) []MuscleShare {
	return accumulateMuscles(workouts, idx, func(s model.SetEntry) float64 {
		if s.WeightKg <= 0 || s.Reps <= 0 {
			return 0
		}
		return s.WeightKg * float64(s.Reps)
	})
}

func accumulateMuscles(workouts []completedWorkout, idx *ExerciseIndex, weight func(model.SetEntry) float64) []MuscleShare {
	totals := make(map[string]float64)
	var grand float64

	for _, w := range workouts {
		for _, ex := range w.Exercises {
			muscle := idx.MuscleGroup(ex.ExerciseID)
			for _, s := range ex.Sets {
				v := weight(s)
				totals[muscle] += v
				grand += v
			}
		}
	}

	shares := make([]MuscleShare, 0, len(totals))
	for muscle, v := range totals {
		share := MuscleShare{Muscle: muscle, Value: v}
		if grand > 0 {
			share.Percentage = v / grand * 100
		}
		shares = append(shares, share)
	}
	sort.Slice(shares, func(i, j int) bool {
		if shares[i].Value != shares[j].Value {
			return shares[i].Value > shares[j].Value
		}
		return shares[i].Muscle < shares[j].Muscle
	})
	return shares
}

// muscleVolumeByDay produces one row per calendar day in the range with
// one column per muscle group trained that period. Days are bucketed by
// local date, identical to volumeByDay.
func muscleVolumeByDay(workouts []completedWorkout, idx *ExerciseIndex, r Range, loc *time.Location) []MuscleDayVolume {
	rows := make([]MuscleDayVolume, 0, r.Days())
	byDate := make(map[string]*MuscleDayVolume)

	for d := startOfDay(r.Start.In(loc)); !d.After(r.End.In(loc)); d = d.AddDate(0, 0, 1) {
		rows = append(rows, MuscleDayVolume{
			Date:    d.Format(dayLayout),
			Volumes: make(map[string]float64),
		})
	}
	for i := range rows {
		byDate[rows[i].Date] = &rows[i]
	}

	for _, w := range workouts {
		row, ok := byDate[localDay(w.completedAt, loc)]
		if !ok {
			continue
		}
		for _, ex := range w.Exercises {
			muscle := idx.MuscleGroup(ex.ExerciseID)
			for _, s := range ex.Sets {
				if s.WeightKg > 0 && s.Reps > 0 {
					row.Volumes[muscle] += s.WeightKg * float64(s.Reps)
				}
			}
		}
	}
	return rows
}

// countSets returns the total number of sets across the given workouts.
func countSets(workouts []completedWorkout) int {
	var n int
	for _, w := range workouts {
		for _, ex := range w.Exercises {
			n += len(ex.Sets)
		}
	}
	return n
}

// periodVolume sums workout volume across the given workouts.
func periodVolume(workouts []completedWorkout) float64 {
	var total float64
	for _, w := range workouts {
		total += WorkoutVolume(w.WorkoutRecord)
	}
	return total
}
