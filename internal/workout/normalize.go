package workout

import (
	"fmt"
	"strings"

	"github.com/claude/liftlog/internal/models"
)

const (
	// MaxNameLength bounds generated workout and exercise names.
	MaxNameLength = 80
	// MaxSets caps the planned set count of one exercise.
	MaxSets = 50
)

// Normalize validates a submitted template. Only a blank workout name is
// rejected; unparseable or negative numbers fall back to 0 (sets, reps) or
// absent (rest, weight), and set counts above MaxSets are cut to MaxSets.
// A rest of 0 is kept and means no rest.
func Normalize(in models.WorkoutInput) (models.NewWorkout, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return models.NewWorkout{}, &ValidationError{Field: "name", Message: "is required"}
	}
	nw := models.NewWorkout{
		Name:      name,
		Exercises: make([]models.ExerciseSpec, 0, len(in.Exercises)),
	}
	if in.Description != nil {
		if d := strings.TrimSpace(*in.Description); d != "" {
			nw.Description = &d
		}
	}
	for i, ex := range in.Exercises {
		nw.Exercises = append(nw.Exercises, normalizeExercise(i, ex))
	}
	return nw, nil
}

func normalizeExercise(idx int, ex models.ExerciseInput) models.ExerciseSpec {
	name := strings.TrimSpace(ex.Name)
	if name == "" {
		name = fmt.Sprintf("Exercise %d", idx+1)
	}
	spec := models.ExerciseSpec{
		Name: truncate(name, MaxNameLength),
		Sets: min(nonNegative(ex.Sets), MaxSets),
		Reps: nonNegative(ex.Reps),
	}
	if rest, ok := ex.Rest.Int(); ok && rest >= 0 {
		spec.RestSeconds = &rest
	}
	if w, ok := ex.Weight.Float(); ok && w >= 0 {
		spec.TargetWeightKg = &w
	}
	return spec
}

func nonNegative(n models.Number) int {
	v, ok := n.Int()
	if !ok || v < 0 {
		return 0
	}
	return v
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
