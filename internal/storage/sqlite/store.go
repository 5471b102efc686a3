// Package sqlite is a single-file workout store for local sessions and tests.
// It mirrors the Postgres schema on modernc.org/sqlite.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/workout"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

var _ workout.Store = (*Store)(nil)

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	login        TEXT NOT NULL UNIQUE,
	display_name TEXT NOT NULL DEFAULT '',
	created_at   TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	last_seen    TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);
CREATE TABLE IF NOT EXISTS workouts (
	id               TEXT PRIMARY KEY,
	user_id          INTEGER NOT NULL,
	name             TEXT NOT NULL,
	description      TEXT,
	status           TEXT NOT NULL DEFAULT 'ready' CHECK (status IN ('ready', 'in_progress', 'complete')),
	started_at       TIMESTAMP,
	completed_at     TIMESTAMP,
	duration_minutes INTEGER,
	calories_burned  INTEGER,
	total_kg_lifted  REAL,
	created_at       TIMESTAMP NOT NULL,
	updated_at       TIMESTAMP NOT NULL
);
CREATE TABLE IF NOT EXISTS workout_exercises (
	id               INTEGER PRIMARY KEY AUTOINCREMENT,
	workout_id       TEXT NOT NULL REFERENCES workouts(id) ON DELETE CASCADE,
	name             TEXT NOT NULL,
	sets             INTEGER NOT NULL DEFAULT 0,
	reps             INTEGER NOT NULL DEFAULT 0,
	rest_seconds     INTEGER,
	target_weight_kg REAL
);
CREATE TABLE IF NOT EXISTS workout_sets (
	id             INTEGER PRIMARY KEY AUTOINCREMENT,
	workout_id     TEXT NOT NULL REFERENCES workouts(id) ON DELETE CASCADE,
	exercise_id    INTEGER NOT NULL REFERENCES workout_exercises(id) ON DELETE CASCADE,
	set_number     INTEGER NOT NULL,
	weight_kg      REAL,
	reps_completed INTEGER,
	completed      INTEGER NOT NULL DEFAULT 0,
	UNIQUE (exercise_id, set_number)
);
`

// Store is a workout.Store backed by a SQLite file.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens (or creates) the database at path. Use ":memory:" for a private
// in-memory database.
func Open(path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("creating database dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite database: %w", err)
	}
	// One connection keeps ":memory:" a single database and serializes writers.
	db.SetMaxOpenConns(1)

	for _, stmt := range []string{`PRAGMA foreign_keys = ON`, schema} {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("creating schema: %w", err)
		}
	}
	return &Store{db: db, now: func() time.Time { return time.Now().UTC() }}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB exposes the handle for tests that need to simulate legacy rows.
func (s *Store) DB() *sql.DB {
	return s.db
}

// GetOrCreateUser returns the id for login, creating the user when needed.
func (s *Store) GetOrCreateUser(ctx context.Context, login, displayName string) (int, error) {
	var id int
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO users (login, display_name) VALUES (?, ?)
		ON CONFLICT (login) DO UPDATE
			SET last_seen = CURRENT_TIMESTAMP,
			    display_name = COALESCE(NULLIF(excluded.display_name, ''), users.display_name)
		RETURNING id`, login, displayName).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("upserting user: %w", err)
	}
	return id, nil
}

type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *Store) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// CreateWorkout inserts a workout with its exercises and initial set rows.
func (s *Store) CreateWorkout(ctx context.Context, owner int, nw models.NewWorkout) (*models.Workout, error) {
	id := uuid.New()
	now := s.now()
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO workouts (id, user_id, name, description, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
			id.String(), owner, nw.Name, nw.Description, now, now); err != nil {
			return fmt.Errorf("inserting workout: %w", err)
		}
		for _, spec := range nw.Exercises {
			res, err := tx.ExecContext(ctx,
				`INSERT INTO workout_exercises (workout_id, name, sets, reps, rest_seconds, target_weight_kg)
				 VALUES (?, ?, ?, ?, ?, ?)`,
				id.String(), spec.Name, spec.Sets, spec.Reps, spec.RestSeconds, spec.TargetWeightKg)
			if err != nil {
				return fmt.Errorf("inserting exercise: %w", err)
			}
			exID, err := res.LastInsertId()
			if err != nil {
				return fmt.Errorf("reading exercise id: %w", err)
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
	return s.GetWorkout(ctx, owner, id)
}

// GetWorkout returns the full tree, provisioning missing set rows first.
func (s *Store) GetWorkout(ctx context.Context, owner int, id uuid.UUID) (*models.Workout, error) {
	var w *models.Workout
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		var err error
		if w, err = loadWorkout(ctx, tx, owner, id); err != nil {
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

// ListWorkouts returns the owner's workouts newest first with exercises only.
func (s *Store) ListWorkouts(ctx context.Context, owner int) ([]models.Workout, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+workoutColumns+` FROM workouts WHERE user_id = ? ORDER BY created_at DESC, rowid DESC`, owner)
	if err != nil {
		return nil, fmt.Errorf("querying workouts: %w", err)
	}
	result := []models.Workout{}
	for rows.Next() {
		w, err := scanWorkout(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scanning workout: %w", err)
		}
		result = append(result, *w)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	exRows, err := s.db.QueryContext(ctx,
		`SELECT e.id, e.workout_id, e.name, e.sets, e.reps, e.rest_seconds, e.target_weight_kg
		 FROM workout_exercises e JOIN workouts w ON w.id = e.workout_id
		 WHERE w.user_id = ? ORDER BY e.id ASC`, owner)
	if err != nil {
		return nil, fmt.Errorf("querying exercises: %w", err)
	}
	exercises, err := scanExercises(exRows)
	if err != nil {
		return nil, err
	}
	byWorkout := make(map[uuid.UUID][]models.Exercise)
	for _, ex := range exercises {
		byWorkout[ex.WorkoutID] = append(byWorkout[ex.WorkoutID], ex)
	}
	for i := range result {
		if exs, ok := byWorkout[result[i].ID]; ok {
			result[i].Exercises = exs
		} else {
			result[i].Exercises = []models.Exercise{}
		}
	}
	return result, nil
}

// UpdateWorkout applies mutate to the stored workout inside a transaction.
func (s *Store) UpdateWorkout(ctx context.Context, owner int, id uuid.UUID, mutate func(*models.Workout) error) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		w, err := loadWorkout(ctx, tx, owner, id)
		if err != nil {
			return err
		}
		if err := mutate(w); err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx,
			`UPDATE workouts
			 SET status = ?, started_at = ?, completed_at = ?,
			     duration_minutes = ?, calories_burned = ?, total_kg_lifted = ?, updated_at = ?
			 WHERE id = ? AND user_id = ?`,
			string(w.Status), nullTime(w.StartedAt), nullTime(w.CompletedAt),
			w.DurationMinutes, w.CaloriesBurned, w.TotalKgLifted, s.now(), id.String(), owner)
		if err != nil {
			return fmt.Errorf("updating workout: %w", err)
		}
		return nil
	})
}

// UpdateSet writes a set after resolving the set -> workout -> owner chain.
func (s *Store) UpdateSet(ctx context.Context, owner int, workoutID uuid.UUID, setID int64, u models.SetUpdate) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		var found int64
		err := tx.QueryRowContext(ctx, `
			SELECT ws.id
			FROM workout_sets ws
			JOIN workout_exercises we ON ws.exercise_id = we.id
			JOIN workouts w ON ws.workout_id = w.id
			WHERE ws.id = ? AND ws.workout_id = ? AND w.user_id = ?
			LIMIT 1`, setID, workoutID.String(), owner).Scan(&found)
		if errors.Is(err, sql.ErrNoRows) {
			return &workout.NotFoundError{Resource: "set"}
		}
		if err != nil {
			return fmt.Errorf("checking set ownership: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE workout_sets SET weight_kg = ?, reps_completed = ?, completed = ? WHERE id = ?`,
			u.WeightKg, u.RepsCompleted, u.Completed, setID); err != nil {
			return fmt.Errorf("updating set: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE workouts SET updated_at = ? WHERE id = ? AND user_id = ?`,
			s.now(), workoutID.String(), owner); err != nil {
			return fmt.Errorf("touching workout: %w", err)
		}
		return nil
	})
}

const workoutColumns = `id, user_id, name, description, status, started_at, completed_at,
	duration_minutes, calories_burned, total_kg_lifted, created_at, updated_at`

func loadWorkout(ctx context.Context, q queryer, owner int, id uuid.UUID) (*models.Workout, error) {
	w, err := scanWorkout(q.QueryRowContext(ctx,
		`SELECT `+workoutColumns+` FROM workouts WHERE id = ? AND user_id = ?`, id.String(), owner))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &workout.NotFoundError{Resource: "workout"}
	}
	if err != nil {
		return nil, fmt.Errorf("querying workout: %w", err)
	}
	rows, err := q.QueryContext(ctx,
		`SELECT id, workout_id, name, sets, reps, rest_seconds, target_weight_kg
		 FROM workout_exercises WHERE workout_id = ? ORDER BY id ASC`, id.String())
	if err != nil {
		return nil, fmt.Errorf("querying exercises: %w", err)
	}
	if w.Exercises, err = scanExercises(rows); err != nil {
		return nil, err
	}
	return w, attachSets(ctx, q, w)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanWorkout(row scanner) (*models.Workout, error) {
	var (
		w                      models.Workout
		id, status             string
		description            sql.NullString
		startedAt, completedAt sql.NullTime
		duration, calories     sql.NullInt64
		total                  sql.NullFloat64
	)
	err := row.Scan(&id, &w.UserID, &w.Name, &description, &status, &startedAt, &completedAt,
		&duration, &calories, &total, &w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if w.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("parsing workout id: %w", err)
	}
	w.Status = models.ParseStatus(status)
	if description.Valid {
		w.Description = &description.String
	}
	w.StartedAt = timePtr(startedAt)
	w.CompletedAt = timePtr(completedAt)
	w.DurationMinutes = intPtr(duration)
	w.CaloriesBurned = intPtr(calories)
	if total.Valid {
		w.TotalKgLifted = &total.Float64
	}
	return &w, nil
}

func scanExercises(rows *sql.Rows) ([]models.Exercise, error) {
	defer rows.Close()
	result := []models.Exercise{}
	for rows.Next() {
		var (
			ex     models.Exercise
			wid    string
			rest   sql.NullInt64
			target sql.NullFloat64
		)
		if err := rows.Scan(&ex.ID, &wid, &ex.Name, &ex.Sets, &ex.Reps, &rest, &target); err != nil {
			return nil, fmt.Errorf("scanning exercise: %w", err)
		}
		var err error
		if ex.WorkoutID, err = uuid.Parse(wid); err != nil {
			return nil, fmt.Errorf("parsing exercise %d workout id: %w", ex.ID, err)
		}
		ex.RestSeconds = intPtr(rest)
		if target.Valid {
			ex.TargetWeightKg = &target.Float64
		}
		result = append(result, ex)
	}
	return result, rows.Err()
}

func attachSets(ctx context.Context, q queryer, w *models.Workout) error {
	rows, err := q.QueryContext(ctx,
		`SELECT id, exercise_id, set_number, weight_kg, reps_completed, completed
		 FROM workout_sets WHERE workout_id = ? ORDER BY exercise_id ASC, set_number ASC`, w.ID.String())
	if err != nil {
		return fmt.Errorf("querying workout sets: %w", err)
	}
	defer rows.Close()

	byExercise := make(map[int64][]models.Set, len(w.Exercises))
	for rows.Next() {
		var (
			set    models.Set
			weight sql.NullFloat64
			reps   sql.NullInt64
		)
		if err := rows.Scan(&set.ID, &set.ExerciseID, &set.SetNumber, &weight, &reps, &set.Completed); err != nil {
			return fmt.Errorf("scanning workout set: %w", err)
		}
		set.WorkoutID = w.ID
		if weight.Valid {
			set.WeightKg = &weight.Float64
		}
		set.RepsCompleted = intPtr(reps)
		byExercise[set.ExerciseID] = append(byExercise[set.ExerciseID], set)
	}
	if err := rows.Err(); err != nil {
		return err
	}
	for i := range w.Exercises {
		if sets, ok := byExercise[w.Exercises[i].ID]; ok {
			w.Exercises[i].SetRows = sets
		} else {
			w.Exercises[i].SetRows = []models.Set{}
		}
	}
	return nil
}

func insertSets(ctx context.Context, q queryer, rows []models.Set) error {
	for _, r := range rows {
		if _, err := q.ExecContext(ctx,
			`INSERT INTO workout_sets (workout_id, exercise_id, set_number, weight_kg, reps_completed, completed)
			 VALUES (?, ?, ?, ?, NULL, 0)
			 ON CONFLICT (exercise_id, set_number) DO NOTHING`,
			r.WorkoutID.String(), r.ExerciseID, r.SetNumber, r.WeightKg); err != nil {
			return fmt.Errorf("inserting workout set: %w", err)
		}
	}
	return nil
}

func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC()
}

func timePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time.UTC()
	return &v
}

func intPtr(n sql.NullInt64) *int {
	if !n.Valid {
		return nil
	}
	v := int(n.Int64)
	return &v
}
