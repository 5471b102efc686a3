package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/workout"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// setBatchSize keeps one INSERT well below the 65535 bind parameter limit.
const setBatchSize = 1000

// insertSets batch-inserts set rows. Rows whose set number already exists for
// the exercise are skipped.
func insertSets(ctx context.Context, q querier, rows []models.Set) error {
	for len(rows) > 0 {
		n := min(len(rows), setBatchSize)
		if err := insertSetBatch(ctx, q, rows[:n]); err != nil {
			return err
		}
		rows = rows[n:]
	}
	return nil
}

func insertSetBatch(ctx context.Context, q querier, rows []models.Set) error {
	query := `INSERT INTO workout_sets (workout_id, exercise_id, set_number, weight_kg, reps_completed, completed) VALUES `
	args := make([]any, 0, len(rows)*4)
	valueStrings := make([]string, 0, len(rows))

	for i, r := range rows {
		base := i * 4
		valueStrings = append(valueStrings, fmt.Sprintf(
			"($%d,$%d,$%d,$%d,NULL,FALSE)",
			base+1, base+2, base+3, base+4,
		))
		args = append(args, r.WorkoutID, r.ExerciseID, r.SetNumber, r.WeightKg)
	}

	query += strings.Join(valueStrings, ",") + " ON CONFLICT (exercise_id, set_number) DO NOTHING"

	if _, err := q.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("inserting workout sets: %w", err)
	}
	return nil
}

// attachSets loads the set rows of w and hangs them off their exercises.
func attachSets(ctx context.Context, q querier, w *models.Workout) error {
	rows, err := q.Query(ctx,
		`SELECT id, exercise_id, workout_id, set_number, weight_kg, reps_completed, completed
		 FROM workout_sets
		 WHERE workout_id = $1
		 ORDER BY exercise_id ASC, set_number ASC`, w.ID)
	if err != nil {
		return fmt.Errorf("querying workout sets: %w", err)
	}
	sets, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Set, error) {
		var s models.Set
		err := row.Scan(&s.ID, &s.ExerciseID, &s.WorkoutID, &s.SetNumber, &s.WeightKg, &s.RepsCompleted, &s.Completed)
		return s, err
	})
	if err != nil {
		return fmt.Errorf("scanning workout sets: %w", err)
	}

	byExercise := make(map[int64][]models.Set, len(w.Exercises))
	for _, s := range sets {
		byExercise[s.ExerciseID] = append(byExercise[s.ExerciseID], s)
	}
	for i := range w.Exercises {
		w.Exercises[i].SetRows = byExercise[w.Exercises[i].ID]
		if w.Exercises[i].SetRows == nil {
			w.Exercises[i].SetRows = []models.Set{}
		}
	}
	return nil
}

// UpdateSet writes a set after resolving the set -> workout -> owner chain.
// A chain that does not resolve for owner is reported as not found.
func (db *DB) UpdateSet(ctx context.Context, owner int, workoutID uuid.UUID, setID int64, u models.SetUpdate) error {
	return db.inTx(ctx, func(tx pgx.Tx) error {
		var found int64
		err := tx.QueryRow(ctx, `
			SELECT ws.id
			FROM workout_sets ws
			JOIN workout_exercises we ON ws.exercise_id = we.id
			JOIN workouts w ON ws.workout_id = w.id
			WHERE ws.id = $1 AND ws.workout_id = $2 AND w.user_id = $3
			LIMIT 1
			FOR UPDATE OF ws`, setID, workoutID, owner).Scan(&found)
		if err == pgx.ErrNoRows {
			return &workout.NotFoundError{Resource: "set"}
		}
		if err != nil {
			return fmt.Errorf("checking set ownership: %w", err)
		}

		if _, err := tx.Exec(ctx, `
			UPDATE workout_sets
			SET weight_kg = $1, reps_completed = $2, completed = $3, updated_at = NOW()
			WHERE id = $4`, u.WeightKg, u.RepsCompleted, u.Completed, setID); err != nil {
			return fmt.Errorf("updating set: %w", err)
		}
		if _, err := tx.Exec(ctx,
			`UPDATE workouts SET updated_at = NOW() WHERE id = $1 AND user_id = $2`, workoutID, owner); err != nil {
			return fmt.Errorf("touching workout: %w", err)
		}
		return nil
	})
}
