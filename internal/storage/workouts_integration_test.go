//go:build integration

package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	postgrescontainer "github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/workout"
)

// newTestDB starts a throwaway Postgres, applies the migrations and returns
// a DB with two users.
func newTestDB(t *testing.T) (*DB, int, int) {
	t.Helper()
	ctx := context.Background()

	pg, err := postgrescontainer.Run(ctx, "postgres:16-alpine",
		postgrescontainer.WithDatabase("liftlog"),
		postgrescontainer.WithUsername("liftlog"),
		postgrescontainer.WithPassword("liftlog"),
		postgrescontainer.BasicWaitStrategies(),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pg.Terminate(ctx) })

	dsn, err := pg.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	migrations, err := filepath.Abs("../../migrations")
	require.NoError(t, err)
	require.NoError(t, RunMigrations(dsn, migrations))
	// Applying twice is a no-op.
	require.NoError(t, RunMigrations(dsn, migrations))

	db, err := New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(db.Close)

	alice, err := db.GetOrCreateUser(ctx, "alice@example.com", "Alice")
	require.NoError(t, err)
	bob, err := db.GetOrCreateUser(ctx, "bob@example.com", "Bob")
	require.NoError(t, err)
	return db, alice, bob
}

func legDay() models.NewWorkout {
	rest, weight := 90, 100.0
	return models.NewWorkout{
		Name: "Leg day",
		Exercises: []models.ExerciseSpec{
			{Name: "Squat", Sets: 3, Reps: 5, RestSeconds: &rest, TargetWeightKg: &weight},
			{Name: "Lunge", Sets: 2, Reps: 10},
		},
	}
}

func TestPostgresWorkoutLifecycle(t *testing.T) {
	db, alice, _ := newTestDB(t)
	ctx := context.Background()

	w, err := db.CreateWorkout(ctx, alice, legDay())
	require.NoError(t, err)
	require.Equal(t, models.StatusReady, w.Status)
	require.Len(t, w.Exercises, 2)
	require.Len(t, w.Exercises[0].SetRows, 3)
	require.Len(t, w.Exercises[1].SetRows, 2)
	for i, set := range w.Exercises[0].SetRows {
		require.Equal(t, i+1, set.SetNumber)
		require.NotNil(t, set.WeightKg)
		require.Equal(t, 100.0, *set.WeightKg)
	}

	started := time.Date(2025, 6, 1, 7, 0, 0, 0, time.UTC)
	require.NoError(t, db.UpdateWorkout(ctx, alice, w.ID, func(w *models.Workout) error {
		return workout.Start(w, started, false)
	}))

	setID := w.Exercises[0].SetRows[0].ID
	kg, reps := 102.5, 5
	require.NoError(t, db.UpdateSet(ctx, alice, w.ID, setID, models.SetUpdate{WeightKg: &kg, RepsCompleted: &reps, Completed: true}))

	mins, cal, total := 30, 205, 102.5
	require.NoError(t, db.UpdateWorkout(ctx, alice, w.ID, func(w *models.Workout) error {
		return workout.Complete(w, started.Add(30*time.Minute), models.Completion{
			DurationMinutes: &mins, CaloriesBurned: &cal, TotalKgLifted: &total,
		}, false)
	}))

	got, err := db.GetWorkout(ctx, alice, w.ID)
	require.NoError(t, err)
	require.Equal(t, models.StatusComplete, got.Status)
	require.NotNil(t, got.StartedAt)
	require.True(t, got.StartedAt.Equal(started))
	require.NotNil(t, got.DurationMinutes)
	require.Equal(t, 30, *got.DurationMinutes)
	require.NotNil(t, got.TotalKgLifted)
	require.Equal(t, 102.5, *got.TotalKgLifted)
	first := got.Exercises[0].SetRows[0]
	require.True(t, first.Completed)
	require.Equal(t, 102.5, *first.WeightKg)
	require.Equal(t, 5, *first.RepsCompleted)
}

func TestPostgresOwnerIsolation(t *testing.T) {
	db, alice, bob := newTestDB(t)
	ctx := context.Background()

	w, err := db.CreateWorkout(ctx, alice, legDay())
	require.NoError(t, err)

	_, err = db.GetWorkout(ctx, bob, w.ID)
	require.True(t, errors.Is(err, workout.ErrNotFound), "got %v", err)

	err = db.UpdateWorkout(ctx, bob, w.ID, func(*models.Workout) error { return nil })
	require.True(t, errors.Is(err, workout.ErrNotFound), "got %v", err)

	kg, reps := 1.0, 1
	err = db.UpdateSet(ctx, bob, w.ID, w.Exercises[0].SetRows[0].ID, models.SetUpdate{WeightKg: &kg, RepsCompleted: &reps, Completed: true})
	require.True(t, errors.Is(err, workout.ErrNotFound), "got %v", err)

	list, err := db.ListWorkouts(ctx, bob)
	require.NoError(t, err)
	require.Empty(t, list)

	list, err = db.ListWorkouts(ctx, alice)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Len(t, list[0].Exercises, 2)
}

func TestPostgresProvisionsMissingSets(t *testing.T) {
	db, alice, _ := newTestDB(t)
	ctx := context.Background()

	id := uuid.New()
	_, err := db.Pool.Exec(ctx, `INSERT INTO workouts (id, user_id, name) VALUES ($1, $2, 'Legacy')`, id, alice)
	require.NoError(t, err)
	_, err = db.Pool.Exec(ctx,
		`INSERT INTO workout_exercises (workout_id, name, sets, reps) VALUES ($1, 'Row', 4, 8)`, id)
	require.NoError(t, err)

	w, err := db.GetWorkout(ctx, alice, id)
	require.NoError(t, err)
	require.Len(t, w.Exercises[0].SetRows, 4)

	// A second read must not add rows.
	w, err = db.GetWorkout(ctx, alice, id)
	require.NoError(t, err)
	require.Len(t, w.Exercises[0].SetRows, 4)
}

func TestPostgresMutateErrorRollsBack(t *testing.T) {
	db, alice, _ := newTestDB(t)
	ctx := context.Background()

	w, err := db.CreateWorkout(ctx, alice, legDay())
	require.NoError(t, err)

	boom := errors.New("boom")
	err = db.UpdateWorkout(ctx, alice, w.ID, func(w *models.Workout) error {
		w.Status = models.StatusComplete
		return boom
	})
	require.ErrorIs(t, err, boom)

	got, err := db.GetWorkout(ctx, alice, w.ID)
	require.NoError(t, err)
	require.Equal(t, models.StatusReady, got.Status)
}

func TestPostgresInsertSetsBatches(t *testing.T) {
	db, alice, _ := newTestDB(t)
	ctx := context.Background()

	id := uuid.New()
	_, err := db.Pool.Exec(ctx, `INSERT INTO workouts (id, user_id, name) VALUES ($1, $2, 'Legacy')`, id, alice)
	require.NoError(t, err)
	// More rows than fit in a single statement's bind parameters.
	const planned = 20000
	_, err = db.Pool.Exec(ctx,
		`INSERT INTO workout_exercises (workout_id, name, sets, reps) VALUES ($1, 'Row', $2, 8)`, id, planned)
	require.NoError(t, err)

	w, err := db.GetWorkout(ctx, alice, id)
	require.NoError(t, err)
	require.Len(t, w.Exercises[0].SetRows, planned)
	require.Equal(t, planned, w.Exercises[0].SetRows[planned-1].SetNumber)
}
