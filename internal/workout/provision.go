package workout

import "github.com/claude/liftlog/internal/models"

// MissingSets returns the set rows ex lacks to reach its planned count. Set
// numbers already present are skipped, so applying the result twice adds nothing.
// New rows carry the exercise target weight when it is positive.
func MissingSets(ex models.Exercise) []models.Set {
	if ex.Sets <= 0 {
		return nil
	}
	have := make(map[int]bool, len(ex.SetRows))
	for _, s := range ex.SetRows {
		have[s.SetNumber] = true
	}
	var missing []models.Set
	for n := 1; n <= ex.Sets; n++ {
		if have[n] {
			continue
		}
		missing = append(missing, models.Set{
			ExerciseID: ex.ID,
			WorkoutID:  ex.WorkoutID,
			SetNumber:  n,
			WeightKg:   initialWeight(ex.TargetWeightKg),
		})
	}
	return missing
}

func initialWeight(target *float64) *float64 {
	if target == nil || *target <= 0 {
		return nil
	}
	w := *target
	return &w
}

// InitialSets builds the set rows created together with a new exercise.
func InitialSets(spec models.ExerciseSpec) []models.Set {
	return MissingSets(models.Exercise{Sets: spec.Sets, TargetWeightKg: spec.TargetWeightKg})
}
