package workout

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/claude/liftlog/internal/metrics"
	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/observability"
)

// Import stores a session performed elsewhere as a complete workout with every
// set logged. A workout with the same name and start time is returned with
// imported=false instead of being stored twice.
//
// The workout row is completed before its sets are written, so a failure part
// way leaves a complete workout that a retry will skip.
func (s *Service) Import(ctx context.Context, owner int, in models.ImportedWorkout) (w *models.Workout, imported bool, err error) {
	name := truncate(strings.TrimSpace(in.Name), MaxNameLength)
	if name == "" {
		return nil, false, &ValidationError{Field: "name", Message: "is required"}
	}
	if in.StartedAt.IsZero() {
		return nil, false, &ValidationError{Field: "started_at", Message: "is required"}
	}
	started := in.StartedAt.UTC()

	existing, err := s.store.ListWorkouts(ctx, owner)
	if err != nil {
		return nil, false, persistErr("listing workouts", err)
	}
	for i := range existing {
		if e := existing[i]; e.Name == name && e.StartedAt != nil && e.StartedAt.Equal(started) {
			return &e, false, nil
		}
	}

	nw := models.NewWorkout{Name: name, Exercises: make([]models.ExerciseSpec, 0, len(in.Exercises))}
	for i, ex := range in.Exercises {
		nw.Exercises = append(nw.Exercises, importedSpec(i, ex))
	}
	w, err = s.store.CreateWorkout(ctx, owner, nw)
	if err != nil {
		return nil, false, persistErr("importing workout", err)
	}

	// Fill the logged values in memory first so the summary sees them.
	var updates []setWrite
	for i := range w.Exercises {
		rows := w.Exercises[i].SetRows
		for j := range rows {
			if j >= len(in.Exercises[i].Sets) {
				break
			}
			set := in.Exercises[i].Sets[j]
			kg, reps := max(0, set.WeightKg), max(0, set.Reps)
			rows[j].WeightKg, rows[j].RepsCompleted, rows[j].Completed = &kg, &reps, true
			updates = append(updates, setWrite{id: rows[j].ID, u: models.SetUpdate{WeightKg: &kg, RepsCompleted: &reps, Completed: true}})
		}
	}
	secs := max(0, int(in.Duration/time.Second))
	sum := metrics.Summarize(w, secs)
	mins, cal, total := sum.DurationMinutes, sum.CaloriesBurned, sum.TotalKgLifted
	completed := started.Add(time.Duration(secs) * time.Second)

	err = s.store.UpdateWorkout(ctx, owner, w.ID, func(row *models.Workout) error {
		if err := Complete(row, completed, models.Completion{
			DurationMinutes: &mins, CaloriesBurned: &cal, TotalKgLifted: &total,
		}, false); err != nil {
			return err
		}
		row.StartedAt = &started
		return nil
	})
	if err != nil {
		return nil, false, persistErr("completing imported workout", err)
	}
	for _, up := range updates {
		if err := s.store.UpdateSet(ctx, owner, w.ID, up.id, up.u); err != nil {
			return nil, false, persistErr("importing set", err)
		}
	}

	observability.RecordWorkoutCreated("import")
	s.log.Info("workout imported", "workout_id", w.ID, "owner", owner, "sets", len(updates))
	w, err = s.afterWrite(ctx, owner, w.ID, models.EventWorkoutCompleted, 0)
	if err != nil {
		return nil, false, err
	}
	return w, true, nil
}

type setWrite struct {
	id int64
	u  models.SetUpdate
}

// importedSpec plans one set row per logged set, up to MaxSets. The target
// weight is the heaviest logged set.
func importedSpec(idx int, ex models.ImportedExercise) models.ExerciseSpec {
	name := strings.TrimSpace(ex.Name)
	if name == "" {
		name = fmt.Sprintf("Exercise %d", idx+1)
	}
	spec := models.ExerciseSpec{
		Name: truncate(name, MaxNameLength),
		Sets: min(len(ex.Sets), MaxSets),
		Reps: max(0, ex.TargetReps),
	}
	if spec.Reps == 0 && len(ex.Sets) > 0 {
		spec.Reps = max(0, ex.Sets[0].Reps)
	}
	if len(ex.Sets) > 0 {
		heaviest := 0.0
		for _, set := range ex.Sets {
			heaviest = max(heaviest, set.WeightKg)
		}
		spec.TargetWeightKg = &heaviest
	}
	return spec
}
