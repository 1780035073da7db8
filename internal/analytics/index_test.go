package analytics

import (
	"testing"

	"github.com/liftlog/liftlog-mcp/internal/model"
)

func TestExerciseIndex(t *testing.T) {
	t.Parallel()

	idx := BuildExerciseIndex(testCatalog)
	if idx.Len() != len(testCatalog) {
		t.Fatalf("Len() = %d, want %d", idx.Len(), len(testCatalog))
	}

	if got := idx.MuscleGroup("bench"); got != "chest" {
		t.Errorf("MuscleGroup(bench) = %s, want chest", got)
	}
	if got := idx.MuscleGroup("shrug"); got != model.MuscleGroupUnknown {
		t.Errorf("untagged entry = %s, want %s", got, model.MuscleGroupUnknown)
	}
	if got := idx.MuscleGroup("nope"); got != model.MuscleGroupUnknown {
		t.Errorf("missing entry = %s, want %s", got, model.MuscleGroupUnknown)
	}
	if got := idx.Name("squat"); got != "Back Squat" {
		t.Errorf("Name(squat) = %s, want Back Squat", got)
	}
	if got := idx.Name("nope"); got != "" {
		t.Errorf("Name(missing) = %q, want empty", got)
	}
}
