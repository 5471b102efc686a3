package workout_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/workout"
	"github.com/stretchr/testify/require"
)

func pushSession() models.ImportedWorkout {
	return models.ImportedWorkout{
		Name:      "  Push  ",
		StartedAt: time.Date(2026, 2, 17, 5, 4, 0, 0, time.UTC),
		Duration:  72 * time.Minute,
		Exercises: []models.ImportedExercise{
			{Name: "Bench Press", TargetReps: 6, Sets: []models.ImportedSet{
				{WeightKg: 102.5, Reps: 6}, {WeightKg: 102.5, Reps: 6}, {WeightKg: 100, Reps: 5},
			}},
			{Name: "", Sets: []models.ImportedSet{{WeightKg: 20, Reps: 12}}},
		},
	}
}

func TestImportStoresCompletedWorkout(t *testing.T) {
	f := newFixture(t, nil, workout.Options{})
	ctx := context.Background()

	w, imported, err := f.svc.Import(ctx, 1, pushSession())
	require.NoError(t, err)
	require.True(t, imported)
	require.Equal(t, "Push", w.Name)
	require.Equal(t, models.StatusComplete, w.Status)
	require.True(t, w.StartedAt.Equal(pushSession().StartedAt))
	require.True(t, w.CompletedAt.Equal(pushSession().StartedAt.Add(72*time.Minute)))
	require.Equal(t, 72, *w.DurationMinutes)
	require.Equal(t, 325.0, *w.TotalKgLifted)
	// 72 min * 6 + 325 kg * 0.015 = 436.875
	require.Equal(t, 437, *w.CaloriesBurned)

	bench := w.Exercises[0]
	require.Equal(t, 3, bench.Sets)
	require.Equal(t, 6, bench.Reps)
	require.Equal(t, 102.5, *bench.TargetWeightKg)
	require.Equal(t, 5, *bench.SetRows[2].RepsCompleted)
	for _, set := range bench.SetRows {
		require.True(t, set.Completed)
	}

	second := w.Exercises[1]
	require.Equal(t, "Exercise 2", second.Name)
	require.Equal(t, 12, second.Reps, "reps fall back to the first logged set")

	require.Equal(t, []models.EventType{models.EventWorkoutCompleted}, f.pub.types())
}

func TestImportSkipsSameNameAndStart(t *testing.T) {
	f := newFixture(t, nil, workout.Options{})
	ctx := context.Background()

	first, imported, err := f.svc.Import(ctx, 1, pushSession())
	require.NoError(t, err)
	require.True(t, imported)

	again, imported, err := f.svc.Import(ctx, 1, pushSession())
	require.NoError(t, err)
	require.False(t, imported)
	require.Equal(t, first.ID, again.ID)

	later := pushSession()
	later.StartedAt = later.StartedAt.Add(24 * time.Hour)
	_, imported, err = f.svc.Import(ctx, 1, later)
	require.NoError(t, err)
	require.True(t, imported)

	list, err := f.svc.List(ctx, 1)
	require.NoError(t, err)
	require.Len(t, list, 2)
}

func TestImportValidation(t *testing.T) {
	f := newFixture(t, nil, workout.Options{})
	ctx := context.Background()

	blank := pushSession()
	blank.Name = " "
	_, _, err := f.svc.Import(ctx, 1, blank)
	var ve *workout.ValidationError
	require.True(t, errors.As(err, &ve))
	require.Equal(t, "name", ve.Field)

	undated := pushSession()
	undated.StartedAt = time.Time{}
	_, _, err = f.svc.Import(ctx, 1, undated)
	require.True(t, errors.As(err, &ve))
	require.Equal(t, "started_at", ve.Field)
}

func TestImportCapsSetRows(t *testing.T) {
	f := newFixture(t, nil, workout.Options{})
	in := pushSession()
	in.Exercises = in.Exercises[:1]
	for range workout.MaxSets {
		in.Exercises[0].Sets = append(in.Exercises[0].Sets, models.ImportedSet{WeightKg: 40, Reps: 10})
	}

	w, imported, err := f.svc.Import(context.Background(), 1, in)
	require.NoError(t, err)
	require.True(t, imported)
	require.Equal(t, workout.MaxSets, w.Exercises[0].Sets)
	require.Len(t, w.Exercises[0].SetRows, workout.MaxSets)
	for _, set := range w.Exercises[0].SetRows {
		require.True(t, set.Completed)
	}
}
