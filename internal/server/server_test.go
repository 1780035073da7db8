package server

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog"

	"github.com/liftlog/liftlog-mcp/internal/analytics"
	"github.com/liftlog/liftlog-mcp/internal/model"
	"github.com/liftlog/liftlog-mcp/internal/profilecache"
)

var testNow = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

// mockQuerier is an in-memory Querier.
type mockQuerier struct {
	workouts []model.WorkoutRecord
	catalog  []model.ExerciseCatalogEntry
	profile  *model.UserProfile
	listErr  error
}

func (m *mockQuerier) ListWorkouts(ctx context.Context) ([]model.WorkoutRecord, error) {
	return m.workouts, m.listErr
}

func (m *mockQuerier) ListExercises(ctx context.Context) ([]model.ExerciseCatalogEntry, error) {
	return m.catalog, nil
}

func (m *mockQuerier) GetProfile(ctx context.Context) (model.UserProfile, error) {
	if m.profile == nil {
		return model.UserProfile{}, errors.New("no profile")
	}
	return *m.profile, nil
}

func (m *mockQuerier) CountWorkouts(ctx context.Context) (int64, error) {
	return int64(len(m.workouts)), nil
}

func (m *mockQuerier) CountCompletedWorkouts(ctx context.Context) (int64, error) {
	var n int64
	for _, w := range m.workouts {
		if w.Status == model.StatusCompleted {
			n++
		}
	}
	return n, nil
}

func (m *mockQuerier) CountExercises(ctx context.Context) (int64, error) {
	return int64(len(m.catalog)), nil
}

func (m *mockQuerier) LatestCompletedAt(ctx context.Context) (string, error) {
	latest := ""
	for _, w := range m.workouts {
		if w.Status == model.StatusCompleted && w.CompletedAt > latest {
			latest = w.CompletedAt
		}
	}
	return latest, nil
}

func testWorkout(id string, daysAgo int, exerciseID string, weight float64, reps int) model.WorkoutRecord {
	done := testNow.AddDate(0, 0, -daysAgo)
	return model.WorkoutRecord{
		ID:          id,
		Status:      model.StatusCompleted,
		CompletedAt: done.Format(time.RFC3339),
		DurationSec: 3600,
		Exercises: []model.ExerciseEntry{
			{
				ExerciseID: exerciseID,
				Sets:       []model.SetEntry{{WeightKg: weight, Reps: reps}},
			},
		},
	}
}

func newTestServer(t *testing.T, queries *mockQuerier) *Server {
	t.Helper()

	engine := analytics.NewEngine(analytics.Config{
		Location: time.UTC,
		Now:      func() time.Time { return testNow },
		Logger:   zerolog.Nop(),
	})
	profiles, err := profilecache.New(4)
	if err != nil {
		t.Fatalf("creating profile cache: %v", err)
	}
	return New(queries, engine, profiles)
}

func TestGetTrainingStats(t *testing.T) {
	t.Parallel()

	weight := 80.0
	queries := &mockQuerier{
		workouts: []model.WorkoutRecord{
			testWorkout("w1", 1, "bench-press", 100, 10),
			testWorkout("w2", 3, "bench-press", 100, 10),
		},
		catalog: []model.ExerciseCatalogEntry{
			{ID: "bench-press", Name: "Bench Press", MuscleGroup: "chest"},
		},
		profile: &model.UserProfile{UserID: "u1", BodyWeightKg: &weight},
	}
	s := newTestServer(t, queries)

	_, output, err := s.getTrainingStats(t.Context(), &mcp.CallToolRequest{}, TrainingStatsInput{Period: "last30Days"})
	if err != nil {
		t.Fatalf("tool call: %v", err)
	}

	if output.Period != "last30Days" {
		t.Errorf("period = %q", output.Period)
	}
	if output.TotalWorkouts != 2 {
		t.Errorf("total workouts = %d, want 2", output.TotalWorkouts)
	}
	if output.VolumeLoad != 2000 {
		t.Errorf("volume = %f, want 2000", output.VolumeLoad)
	}
	if output.AvgVolumePerWorkout != 1000 {
		t.Errorf("avg volume = %f, want 1000", output.AvgVolumePerWorkout)
	}
	if output.BodyWeightKg == nil || *output.BodyWeightKg != 80 {
		t.Errorf("body weight = %v, want 80", output.BodyWeightKg)
	}
	if output.DurationStats.Average != "1h 0m" {
		t.Errorf("avg duration = %q", output.DurationStats.Average)
	}
}

func TestGetTrainingStatsUnknownPeriodFallsBack(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, &mockQuerier{})

	_, output, err := s.getTrainingStats(t.Context(), &mcp.CallToolRequest{}, TrainingStatsInput{Period: "lastFortnight"})
	if err != nil {
		t.Fatalf("tool call: %v", err)
	}
	if output.Period != string(analytics.DefaultPeriod) {
		t.Errorf("period = %q, want default", output.Period)
	}
}

func TestGetTrainingStatsDatabaseError(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, &mockQuerier{listErr: errors.New("locked")})

	_, _, err := s.getTrainingStats(t.Context(), &mcp.CallToolRequest{}, TrainingStatsInput{})
	var toolErr *ToolError
	if !errors.As(err, &toolErr) || toolErr.Code != ErrDatabaseError {
		t.Errorf("err = %v, want DATABASE_ERROR", err)
	}
}

func TestGetVolumeBreakdown(t *testing.T) {
	t.Parallel()

	queries := &mockQuerier{
		workouts: []model.WorkoutRecord{
			testWorkout("w1", 1, "bench-press", 100, 10),
			testWorkout("w2", 2, "squat", 120, 5),
		},
		catalog: []model.ExerciseCatalogEntry{
			{ID: "bench-press", Name: "Bench Press", MuscleGroup: "chest"},
			{ID: "squat", Name: "Squat", MuscleGroup: "legs"},
		},
	}
	s := newTestServer(t, queries)

	_, output, err := s.getVolumeBreakdown(t.Context(), &mcp.CallToolRequest{}, VolumeBreakdownInput{Period: "last7Days"})
	if err != nil {
		t.Fatalf("tool call: %v", err)
	}

	if len(output.VolumeByDay) != 7 {
		t.Errorf("volume_by_day rows = %d, want 7", len(output.VolumeByDay))
	}
	if len(output.MuscleDistributionBySets) != 2 {
		t.Errorf("set distribution groups = %d, want 2", len(output.MuscleDistributionBySets))
	}
	// By volume, chest (1000) outranks legs (600).
	if output.MuscleDistributionByVolume[0].Muscle != "chest" {
		t.Errorf("top volume muscle = %q, want chest", output.MuscleDistributionByVolume[0].Muscle)
	}
	if len(output.WeeklyVolumeProgression) == 0 {
		t.Error("weekly progression must not be empty")
	}
}

func TestGetPersonalRecords(t *testing.T) {
	t.Parallel()

	queries := &mockQuerier{
		workouts: []model.WorkoutRecord{
			testWorkout("w1", 20, "bench-press", 100, 10),
			testWorkout("w2", 10, "bench-press", 110, 10),
			testWorkout("w3", 5, "squat", 140, 5),
		},
		catalog: []model.ExerciseCatalogEntry{
			{ID: "bench-press", Name: "Bench Press", MuscleGroup: "chest"},
			{ID: "squat", Name: "Squat", MuscleGroup: "legs"},
		},
	}
	s := newTestServer(t, queries)

	_, output, err := s.getPersonalRecords(t.Context(), &mcp.CallToolRequest{}, GetPersonalRecordsInput{})
	if err != nil {
		t.Fatalf("tool call: %v", err)
	}
	// First sets seed silently; only the bench improvement emits.
	if output.TotalRecords != 1 {
		t.Fatalf("total records = %d, want 1", output.TotalRecords)
	}
	if output.Records[0].ExerciseID != "bench-press" || output.Records[0].Weight != 110 {
		t.Errorf("record = %+v", output.Records[0])
	}
	if len(output.ExerciseProgress) != 2 {
		t.Errorf("progress rows = %d, want 2", len(output.ExerciseProgress))
	}

	// Name filter.
	_, filtered, err := s.getPersonalRecords(t.Context(), &mcp.CallToolRequest{}, GetPersonalRecordsInput{Exercise: "bench"})
	if err != nil {
		t.Fatalf("filtered call: %v", err)
	}
	if filtered.Filter != "exercise=bench" || len(filtered.ExerciseProgress) != 1 {
		t.Errorf("filtered = %+v", filtered)
	}

	// Unknown exercise.
	_, _, err = s.getPersonalRecords(t.Context(), &mcp.CallToolRequest{}, GetPersonalRecordsInput{Exercise: "deadlift"})
	var toolErr *ToolError
	if !errors.As(err, &toolErr) || toolErr.Code != ErrNotFound {
		t.Errorf("err = %v, want NOT_FOUND", err)
	}
}

func TestComparePeriods(t *testing.T) {
	t.Parallel()

	queries := &mockQuerier{
		workouts: []model.WorkoutRecord{
			testWorkout("w1", 2, "bench-press", 100, 10),  // current window
			testWorkout("w2", 10, "bench-press", 100, 10), // previous window
			testWorkout("w3", 12, "bench-press", 100, 10),
		},
	}
	s := newTestServer(t, queries)

	_, output, err := s.comparePeriods(t.Context(), &mcp.CallToolRequest{}, ComparePeriodsInput{Period: "last7Days"})
	if err != nil {
		t.Fatalf("tool call: %v", err)
	}
	if output.Workouts.Current != 1 || output.Workouts.Previous != 2 {
		t.Errorf("workouts comparison = %+v", output.Workouts)
	}
	if output.Workouts.ChangePercentage != -50 {
		t.Errorf("change pct = %f, want -50", output.Workouts.ChangePercentage)
	}
}

func TestComparePeriodsAllTimeRejected(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, &mockQuerier{})

	_, _, err := s.comparePeriods(t.Context(), &mcp.CallToolRequest{}, ComparePeriodsInput{Period: "allTime"})
	var toolErr *ToolError
	if !errors.As(err, &toolErr) || toolErr.Code != ErrInvalidInput {
		t.Errorf("err = %v, want INVALID_INPUT", err)
	}
}

func TestInvalidateReloads(t *testing.T) {
	t.Parallel()

	queries := &mockQuerier{
		workouts: []model.WorkoutRecord{testWorkout("w1", 1, "bench-press", 100, 10)},
	}
	s := newTestServer(t, queries)

	_, output, err := s.getTrainingStats(t.Context(), &mcp.CallToolRequest{}, TrainingStatsInput{})
	if err != nil {
		t.Fatalf("first call: %v", err)
	}
	if output.TotalWorkouts != 1 {
		t.Fatalf("total workouts = %d, want 1", output.TotalWorkouts)
	}

	// New data lands without an Invalidate: the loaded snapshot is reused.
	queries.workouts = append(queries.workouts, testWorkout("w2", 2, "bench-press", 100, 10))
	_, output, _ = s.getTrainingStats(t.Context(), &mcp.CallToolRequest{}, TrainingStatsInput{})
	if output.TotalWorkouts != 1 {
		t.Errorf("stale read total = %d, want 1", output.TotalWorkouts)
	}

	s.Invalidate()
	_, output, _ = s.getTrainingStats(t.Context(), &mcp.CallToolRequest{}, TrainingStatsInput{})
	if output.TotalWorkouts != 2 {
		t.Errorf("reloaded total = %d, want 2", output.TotalWorkouts)
	}
}

func TestReadPeriodsResource(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, &mockQuerier{})

	result, err := s.readPeriods(t.Context(), &mcp.ReadResourceRequest{})
	if err != nil {
		t.Fatalf("reading resource: %v", err)
	}
	text := result.Contents[0].Text
	for _, id := range []string{"last7Days", "last30Days", "allTime"} {
		if !strings.Contains(text, id) {
			t.Errorf("periods resource missing %q", id)
		}
	}
}

func TestReadDatabaseStatsResource(t *testing.T) {
	t.Parallel()

	queries := &mockQuerier{
		workouts: []model.WorkoutRecord{testWorkout("w1", 1, "bench-press", 100, 10)},
		catalog:  []model.ExerciseCatalogEntry{{ID: "bench-press", Name: "Bench Press"}},
	}
	s := newTestServer(t, queries)

	result, err := s.readDatabaseStats(t.Context(), &mcp.ReadResourceRequest{})
	if err != nil {
		t.Fatalf("reading resource: %v", err)
	}
	text := result.Contents[0].Text
	if !strings.Contains(text, `"total_workouts": 1`) {
		t.Errorf("stats resource = %s", text)
	}
}

func TestFormatVolume(t *testing.T) {
	t.Parallel()

	tests := []struct {
		kg   float64
		want string
	}{
		{0, "0 kg"},
		{-5, "0 kg"},
		{999, "999 kg"},
		{2500, "2500 kg"},
		{12500, "12.5t"},
	}

	for _, tt := range tests {
		if got := formatVolume(tt.kg); got != tt.want {
			t.Errorf("formatVolume(%f) = %q, want %q", tt.kg, got, tt.want)
		}
	}
}

func TestFormatDurationHuman(t *testing.T) {
	t.Parallel()

	tests := []struct {
		seconds int64
		want    string
	}{
		{0, "-"},
		{45, "45s"},
		{125, "2m 5s"},
		{3660, "1h 1m"},
		{7200, "2h 0m"},
	}

	for _, tt := range tests {
		if got := formatDurationHuman(tt.seconds); got != tt.want {
			t.Errorf("formatDurationHuman(%d) = %q, want %q", tt.seconds, got, tt.want)
		}
	}
}
