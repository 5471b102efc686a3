package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/workout"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var _ workout.Store = (*DB)(nil)

const workoutColumns = `id, user_id, name, description, status, started_at, completed_at,
	duration_minutes, calories_burned, total_kg_lifted, created_at, updated_at`

// CreateWorkout inserts a workout with its exercises and initial set rows.
func (db *DB) CreateWorkout(ctx context.Context, owner int, nw models.NewWorkout) (*models.Workout, error) {
	id := uuid.New()
	err := db.inTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx,
			`INSERT INTO workouts (id, user_id, name, description) VALUES ($1, $2, $3, $4)`,
			id, owner, nw.Name, nw.Description); err != nil {
			return fmt.Errorf("inserting workout: %w", err)
		}
		for _, spec := range nw.Exercises {
			var exID int64
			err := tx.QueryRow(ctx,
				`INSERT INTO workout_exercises (workout_id, name, sets, reps, rest_seconds, target_weight_kg)
				 VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`,
				id, spec.Name, spec.Sets, spec.Reps, spec.RestSeconds, spec.TargetWeightKg).Scan(&exID)
			if err != nil {
				return fmt.Errorf("inserting exercise: %w", err)
			}
			rows := workout.InitialSets(spec)
			for i := range rows {
				rows[i].ExerciseID, rows[i].WorkoutID = exID, id
			}
			if err := insertSets(ctx, tx, rows); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return db.GetWorkout(ctx, owner, id)
}

// GetWorkout returns the full workout tree. Exercises missing set rows are
// provisioned inside the same transaction before the tree is returned.
func (db *DB) GetWorkout(ctx context.Context, owner int, id uuid.UUID) (*models.Workout, error) {
	var w *models.Workout
	err := db.inTx(ctx, func(tx pgx.Tx) error {
		var err error
		w, err = loadWorkout(ctx, tx, owner, id, false)
		if err != nil {
			return err
		}
		var missing []models.Set
		for _, ex := range w.Exercises {
			missing = append(missing, workout.MissingSets(ex)...)
		}
		if len(missing) == 0 {
			return nil
		}
		if err := insertSets(ctx, tx, missing); err != nil {
			return err
		}
		return attachSets(ctx, tx, w)
	})
	if err != nil {
		return nil, err
	}
	return w, nil
}

// ListWorkouts returns the owner's workouts newest first with exercises but no set rows.
func (db *DB) ListWorkouts(ctx context.Context, owner int) ([]models.Workout, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT `+workoutColumns+` FROM workouts WHERE user_id = $1 ORDER BY created_at DESC, id`, owner)
	if err != nil {
		return nil, fmt.Errorf("querying workouts: %w", err)
	}
	result, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Workout, error) {
		w, err := scanWorkout(row)
		if err != nil {
			return models.Workout{}, err
		}
		return *w, nil
	})
	if err != nil {
		return nil, fmt.Errorf("scanning workouts: %w", err)
	}

	exRows, err := db.Pool.Query(ctx,
		`SELECT e.id, e.workout_id, e.name, e.sets, e.reps, e.rest_seconds, e.target_weight_kg
		 FROM workout_exercises e
		 JOIN workouts w ON w.id = e.workout_id
		 WHERE w.user_id = $1
		 ORDER BY e.id ASC`, owner)
	if err != nil {
		return nil, fmt.Errorf("querying exercises: %w", err)
	}
	exercises, err := pgx.CollectRows(exRows, scanExercise)
	if err != nil {
		return nil, fmt.Errorf("scanning exercises: %w", err)
	}

	byWorkout := make(map[uuid.UUID][]models.Exercise)
	for _, ex := range exercises {
		byWorkout[ex.WorkoutID] = append(byWorkout[ex.WorkoutID], ex)
	}
	for i := range result {
		result[i].Exercises = byWorkout[result[i].ID]
		if result[i].Exercises == nil {
			result[i].Exercises = []models.Exercise{}
		}
	}
	if result == nil {
		result = []models.Workout{}
	}
	return result, nil
}

// UpdateWorkout loads the workout row locked for update, applies mutate and
// writes back its lifecycle columns.
func (db *DB) UpdateWorkout(ctx context.Context, owner int, id uuid.UUID, mutate func(*models.Workout) error) error {
	return db.inTx(ctx, func(tx pgx.Tx) error {
		w, err := loadWorkout(ctx, tx, owner, id, true)
		if err != nil {
			return err
		}
		if err := mutate(w); err != nil {
			return err
		}
		_, err = tx.Exec(ctx,
			`UPDATE workouts
			 SET status = $1, started_at = $2, completed_at = $3,
			     duration_minutes = $4, calories_burned = $5, total_kg_lifted = $6,
			     updated_at = NOW()
			 WHERE id = $7 AND user_id = $8`,
			string(w.Status), w.StartedAt, w.CompletedAt,
			w.DurationMinutes, w.CaloriesBurned, w.TotalKgLifted, id, owner)
		if err != nil {
			return fmt.Errorf("updating workout: %w", err)
		}
		return nil
	})
}

func loadWorkout(ctx context.Context, q querier, owner int, id uuid.UUID, forUpdate bool) (*models.Workout, error) {
	query := `SELECT ` + workoutColumns + ` FROM workouts WHERE id = $1 AND user_id = $2`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	w, err := scanWorkout(q.QueryRow(ctx, query, id, owner))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, &workout.NotFoundError{Resource: "workout"}
	}
	if err != nil {
		return nil, fmt.Errorf("querying workout: %w", err)
	}

	rows, err := q.Query(ctx,
		`SELECT id, workout_id, name, sets, reps, rest_seconds, target_weight_kg
		 FROM workout_exercises WHERE workout_id = $1 ORDER BY id ASC`, id)
	if err != nil {
		return nil, fmt.Errorf("querying exercises: %w", err)
	}
	w.Exercises, err = pgx.CollectRows(rows, scanExercise)
	if err != nil {
		return nil, fmt.Errorf("scanning exercises: %w", err)
	}
	if w.Exercises == nil {
		w.Exercises = []models.Exercise{}
	}
	return w, attachSets(ctx, q, w)
}

func scanWorkout(row pgx.Row) (*models.Workout, error) {
	var w models.Workout
	var status string
	err := row.Scan(&w.ID, &w.UserID, &w.Name, &w.Description, &status, &w.StartedAt, &w.CompletedAt,
		&w.DurationMinutes, &w.CaloriesBurned, &w.TotalKgLifted, &w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		return nil, err
	}
	w.Status = models.ParseStatus(status)
	return &w, nil
}

func scanExercise(row pgx.CollectableRow) (models.Exercise, error) {
	var ex models.Exercise
	err := row.Scan(&ex.ID, &ex.WorkoutID, &ex.Name, &ex.Sets, &ex.Reps, &ex.RestSeconds, &ex.TargetWeightKg)
	return ex, err
}
