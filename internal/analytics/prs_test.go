package analytics

import (
	"math"
	"testing"
	"time"

	"github.com/liftlog/liftlog-mcp/internal/model"
)

func workoutWith(id string, done time.Time, exerciseID string, sets ...model.SetEntry) model.WorkoutRecord {
	return model.WorkoutRecord{
		ID:          id,
		Status:      model.StatusCompleted,
		CompletedAt: completedAt(done),
		Exercises: []model.ExerciseEntry{
			{ExerciseID: exerciseID, Sets: sets},
		},
	}
}

func TestEpley1RM(t *testing.T) {
	t.Parallel()

	tests := []struct {
		weight float64
		reps   int
		want   float64
	}{
		{100, 1, 100},
		{100, 10, 100 * (1 + 10.0/30)},
		{60, 30, 120},
		{80, 5, 80 * (1 + 5.0/30)},
	}

	for _, tt := range tests {
		if got := epley1RM(tt.weight, tt.reps); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("epley1RM(%v, %d) = %v, want %v", tt.weight, tt.reps, got, tt.want)
		}
	}
}

func TestWeightTier(t *testing.T) {
	t.Parallel()

	tests := []struct {
		weight float64
		tier   float64
		want   float64
	}{
		{101, 2.5, 100},
		{101.3, 2.5, 102.5},
		{100, 2.5, 100},
		{47, 5, 45},
		{101, 0, 100}, // non-positive tier uses the default
	}

	for _, tt := range tests {
		if got := weightTier(tt.weight, tt.tier); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("weightTier(%v, %v) = %v, want %v", tt.weight, tt.tier, got, tt.want)
		}
	}
}

func TestDetectPRsFirstSetSeedsSilently(t *testing.T) {
	t.Parallel()

	log := []model.WorkoutRecord{
		workoutWith("w1", testNow.AddDate(0, 0, -7), "bench", model.SetEntry{WeightKg: 100, Reps: 10}),
		workoutWith("w2", testNow.AddDate(0, 0, -1), "bench", model.SetEntry{WeightKg: 110, Reps: 10}),
	}

	events, _ := detectPRs(selectCompleted(log), BuildExerciseIndex(testCatalog), DefaultPRTierKg)
	if len(events) != 1 {
		t.Fatalf("expected exactly one PR event, got %d: %+v", len(events), events)
	}
	e := events[0]
	if e.Type != PRWeight || e.Weight != 110 || e.Reps != 10 {
		t.Errorf("event = %+v, want weight PR at 110x10", e)
	}
	if e.Improvement <= 0 {
		t.Errorf("improvement = %v, want > 0", e.Improvement)
	}
	wantImp := epley1RM(110, 10) - epley1RM(100, 10)
	if math.Abs(e.Improvement-wantImp) > 1e-9 {
		t.Errorf("improvement = %v, want %v", e.Improvement, wantImp)
	}
}

func TestDetectPRsRepRecord(t *testing.T) {
	t.Parallel()

	log := []model.WorkoutRecord{
		workoutWith("w1", testNow.AddDate(0, 0, -7), "bench", model.SetEntry{WeightKg: 100, Reps: 10}),
		workoutWith("w2", testNow.AddDate(0, 0, -1), "bench", model.SetEntry{WeightKg: 100, Reps: 12}),
	}

	events, _ := detectPRs(selectCompleted(log), BuildExerciseIndex(testCatalog), DefaultPRTierKg)
	if len(events) != 1 {
		t.Fatalf("expected one event, got %d: %+v", len(events), events)
	}
	if events[0].Type != PRReps || events[0].Reps != 12 {
		t.Errorf("event = %+v, want rep PR at 12 reps", events[0])
	}
}

func TestDetectPRsNoEventWhenWeaker(t *testing.T) {
	t.Parallel()

	log := []model.WorkoutRecord{
		workoutWith("w1", testNow.AddDate(0, 0, -7), "bench", model.SetEntry{WeightKg: 100, Reps: 10}),
		workoutWith("w2", testNow.AddDate(0, 0, -1), "bench", model.SetEntry{WeightKg: 90, Reps: 8}),
	}

	events, _ := detectPRs(selectCompleted(log), BuildExerciseIndex(testCatalog), DefaultPRTierKg)
	if len(events) != 0 {
		t.Fatalf("expected no events, got %+v", events)
	}
}

// A heavier single that still estimates below the standing 1RM updates
// the weight maximum but emits nothing, keeping the emitted series
// strictly increasing.
func TestDetectPRsGatedOnEstimated1RM(t *testing.T) {
	t.Parallel()

	log := []model.WorkoutRecord{
		workoutWith("w1", testNow.AddDate(0, 0, -10), "bench", model.SetEntry{WeightKg: 100, Reps: 12}), // e1RM 140
		workoutWith("w2", testNow.AddDate(0, 0, -5), "bench", model.SetEntry{WeightKg: 105, Reps: 3}),   // e1RM 115.5
		workoutWith("w3", testNow.AddDate(0, 0, -1), "bench", model.SetEntry{WeightKg: 110, Reps: 10}),  // e1RM ~146.7
	}

	events, _ := detectPRs(selectCompleted(log), BuildExerciseIndex(testCatalog), DefaultPRTierKg)
	if len(events) != 1 {
		t.Fatalf("expected one event, got %d: %+v", len(events), events)
	}
	e := events[0]
	if e.Weight != 110 {
		t.Errorf("event weight = %v, want 110", e.Weight)
	}
	wantImp := epley1RM(110, 10) - epley1RM(100, 12)
	if math.Abs(e.Improvement-wantImp) > 1e-9 {
		t.Errorf("improvement = %v, want %v", e.Improvement, wantImp)
	}
}

func TestDetectPRsStrictlyIncreasingPerExercise(t *testing.T) {
	t.Parallel()

	log := []model.WorkoutRecord{
		workoutWith("w1", testNow.AddDate(0, 0, -30), "squat", model.SetEntry{WeightKg: 100, Reps: 5}),
		workoutWith("w2", testNow.AddDate(0, 0, -25), "squat",
			model.SetEntry{WeightKg: 110, Reps: 5},
			model.SetEntry{WeightKg: 105, Reps: 8}),
		workoutWith("w3", testNow.AddDate(0, 0, -20), "squat", model.SetEntry{WeightKg: 95, Reps: 12}),
		workoutWith("w4", testNow.AddDate(0, 0, -10), "squat", model.SetEntry{WeightKg: 120, Reps: 5}),
		workoutWith("w5", testNow.AddDate(0, 0, -2), "squat", model.SetEntry{WeightKg: 120, Reps: 8}),
	}

	events, _ := detectPRs(selectCompleted(log), BuildExerciseIndex(testCatalog), DefaultPRTierKg)
	if len(events) == 0 {
		t.Fatal("expected PR events")
	}

	last := make(map[string]float64)
	for _, e := range events {
		if prev, ok := last[e.ExerciseID]; ok && e.Estimated1RM <= prev {
			t.Errorf("estimated 1RM not strictly increasing: %v after %v", e.Estimated1RM, prev)
		}
		last[e.ExerciseID] = e.Estimated1RM
	}
}

func TestDetectPRsTiesProcessedInLogOrder(t *testing.T) {
	t.Parallel()

	done := testNow.AddDate(0, 0, -1)
	log := []model.WorkoutRecord{
		workoutWith("w1", done, "bench", model.SetEntry{WeightKg: 100, Reps: 10}),
		workoutWith("w2", done, "bench", model.SetEntry{WeightKg: 110, Reps: 10}),
	}

	events, _ := detectPRs(selectCompleted(log), BuildExerciseIndex(testCatalog), DefaultPRTierKg)
	if len(events) != 1 || events[0].Weight != 110 {
		t.Fatalf("expected the later log entry to record against the earlier one, got %+v", events)
	}
}

func TestAllPRsReverseChronological(t *testing.T) {
	t.Parallel()

	log := []model.WorkoutRecord{
		workoutWith("w1", testNow.AddDate(0, 0, -20), "bench", model.SetEntry{WeightKg: 100, Reps: 10}),
		workoutWith("w2", testNow.AddDate(0, 0, -10), "bench", model.SetEntry{WeightKg: 110, Reps: 10}),
		workoutWith("w3", testNow.AddDate(0, 0, -1), "bench", model.SetEntry{WeightKg: 120, Reps: 10}),
	}

	events, _ := detectPRs(selectCompleted(log), BuildExerciseIndex(testCatalog), DefaultPRTierKg)
	recent := allPRs(events)
	if len(recent) != 2 {
		t.Fatalf("expected 2 events, got %d", len(recent))
	}
	if recent[0].Weight != 120 || recent[1].Weight != 110 {
		t.Errorf("order = %v then %v, want 120 then 110", recent[0].Weight, recent[1].Weight)
	}
}

func TestExerciseProgressTable(t *testing.T) {
	t.Parallel()

	log := []model.WorkoutRecord{
		workoutWith("w1", testNow.AddDate(0, 0, -30), "bench", model.SetEntry{WeightKg: 100, Reps: 10}),
		workoutWith("w2", testNow.AddDate(0, 0, -20), "bench", model.SetEntry{WeightKg: 105, Reps: 10}),
		workoutWith("w3", testNow.AddDate(0, 0, -10), "bench", model.SetEntry{WeightKg: 110, Reps: 10}),
		workoutWith("w4", testNow.AddDate(0, 0, -1), "bench", model.SetEntry{WeightKg: 115, Reps: 10}),
		workoutWith("w5", testNow.AddDate(0, 0, -1), "squat", model.SetEntry{WeightKg: 140, Reps: 5}),
	}

	_, states := detectPRs(selectCompleted(log), BuildExerciseIndex(testCatalog), DefaultPRTierKg)
	rows := exerciseProgressTable(states)
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}

	// Squat's lone 140x5 estimates higher than bench's best, so it sorts
	// first.
	if rows[0].ExerciseID != "squat" {
		t.Errorf("first row = %s, want squat", rows[0].ExerciseID)
	}
	if rows[0].Trend != TrendInsufficientData {
		t.Errorf("single-session trend = %s, want insufficient_data", rows[0].Trend)
	}

	bench := rows[1]
	if bench.ExerciseID != "bench" {
		t.Fatalf("second row = %s, want bench", bench.ExerciseID)
	}
	if want := epley1RM(115, 10); math.Abs(bench.Best1RM-want) > 1e-9 || math.Abs(bench.Latest1RM-want) > 1e-9 {
		t.Errorf("bench best/latest = %v/%v, want %v", bench.Best1RM, bench.Latest1RM, want)
	}
	if bench.PRCount != 3 {
		t.Errorf("bench PR count = %d, want 3", bench.PRCount)
	}
	if bench.Trend != TrendIncreasing {
		t.Errorf("bench trend = %s, want increasing", bench.Trend)
	}
	if bench.Name != "Bench Press" {
		t.Errorf("bench name = %q, want catalog name", bench.Name)
	}
}
