package analytics

import "github.com/liftlog/liftlog-mcp/internal/model"

// ExerciseIndex maps exercise identifiers to their muscle group for O(1)
// lookup inside aggregation loops. Build one per catalog snapshot.
type ExerciseIndex struct {
	muscles map[string]string
	names   map[string]string
}

// BuildExerciseIndex indexes a catalog snapshot. Entries without a muscle
// group tag resolve to the unknown sentinel.
func BuildExerciseIndex(catalog []model.ExerciseCatalogEntry) *ExerciseIndex {
	idx := &ExerciseIndex{
		muscles: make(map[string]string, len(catalog)),
		names:   make(map[string]string, len(catalog)),
	}
	for _, e := range catalog {
		muscle := e.MuscleGroup
		if muscle == "" {
			muscle = model.MuscleGroupUnknown
		}
		idx.muscles[e.ID] = muscle
		idx.names[e.ID] = e.Name
	}
	return idx
}

// MuscleGroup returns the muscle group for an exercise identifier.
// Identifiers missing from the catalog resolve to the unknown sentinel
// rather than failing.
func (idx *ExerciseIndex) MuscleGroup(exerciseID string) string {
	if m, ok := idx.muscles[exerciseID]; ok {
		return m
	}
	return model.MuscleGroupUnknown
}

// Name returns the catalog name for an exercise identifier, or "" when
// the identifier is not in the catalog.
func (idx *ExerciseIndex) Name(exerciseID string) string {
	return idx.names[exerciseID]
}

// Len returns the number of indexed exercises.
func (idx *ExerciseIndex) Len() int {
	return len(idx.muscles)
}
