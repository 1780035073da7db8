// Package model defines the workout log, exercise catalog, and profile
// snapshot types shared by the sync, storage, and analytics layers.
package model

import "time"

// WorkoutStatus is the lifecycle state of a logged workout session.
type WorkoutStatus string

const (
	StatusActive    WorkoutStatus = "active"
	StatusCompleted WorkoutStatus = "completed"
	StatusCancelled WorkoutStatus = "cancelled"
)

// MuscleGroupUnknown is the sentinel muscle group for exercises missing
// from the catalog or catalog entries without a muscle group tag.
const MuscleGroupUnknown = "unknown"

// WorkoutRecord is a single logged workout session as stored by the hosted
// backend. Timestamps are carried as raw strings because the backend has
// historically emitted several formats (and occasionally garbage); use
// CompletedTime to get a parsed value.
type WorkoutRecord struct {
	ID          string          `json:"id"`
	Status      WorkoutStatus   `json:"status"`
	StartedAt   string          `json:"started_at,omitempty"`
	CompletedAt string          `json:"completed_at,omitempty"`
	Exercises   []ExerciseEntry `json:"exercises"`
	DurationSec int64           `json:"duration_sec"`
	// TotalVolume is a denormalized cache maintained by the backend.
	// When present and positive it is authoritative; otherwise volume is
	// recomputed from the sets.
	TotalVolume *float64 `json:"total_volume,omitempty"`
}

// ExerciseEntry is one exercise performed within a workout, in order.
type ExerciseEntry struct {
	ExerciseID   string     `json:"exercise_id"`
	ExerciseName string     `json:"exercise_name"`
	Sets         []SetEntry `json:"sets"`
}

// SetType tags how a set was performed. All set types count toward
// aggregate calculations.
type SetType string

const (
	SetNormal  SetType = "normal"
	SetWarmup  SetType = "warmup"
	SetDropset SetType = "dropset"
)

// SetEntry is a single set: weight in kilograms and repetitions, with an
// optional RPE. RPE values outside 1-10 are ignored, not clamped.
type SetEntry struct {
	WeightKg float64  `json:"weight_kg"`
	Reps     int      `json:"reps"`
	RPE      *float64 `json:"rpe,omitempty"`
	Type     SetType  `json:"type,omitempty"`
}

// ValidRPE reports whether the set carries an RPE in the expected 1-10
// range.
func (s SetEntry) ValidRPE() bool {
	return s.RPE != nil && *s.RPE >= 1 && *s.RPE <= 10
}

// ExerciseCatalogEntry is one exercise definition from the catalog.
type ExerciseCatalogEntry struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	MuscleGroup string `json:"muscle_group,omitempty"`
}

// UserProfile carries the profile fields surfaced alongside analytics.
// The engine never transforms these.
type UserProfile struct {
	UserID       string   `json:"user_id"`
	DisplayName  string   `json:"display_name,omitempty"`
	BodyWeightKg *float64 `json:"body_weight_kg,omitempty"`
}

// timestampLayouts are tried in order when parsing backend timestamps.
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseTimestamp parses a backend timestamp string. The second return is
// false for empty or unparsable input.
func ParseTimestamp(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// CompletedTime returns the parsed completion timestamp. Workouts without
// a parsable completion time are excluded from every date-bucketed
// computation downstream.
func (w WorkoutRecord) CompletedTime() (time.Time, bool) {
	return ParseTimestamp(w.CompletedAt)
}

// StartedTime returns the parsed start timestamp.
func (w WorkoutRecord) StartedTime() (time.Time, bool) {
	return ParseTimestamp(w.StartedAt)
}
