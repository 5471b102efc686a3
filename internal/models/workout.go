package models

import (
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle state of a workout.
type Status string

const (
	StatusReady      Status = "ready"
	StatusInProgress Status = "in_progress"
	StatusComplete   Status = "complete"
)

// ParseStatus maps a stored status literal to a Status. Unknown and empty
// values map to StatusReady, the column default.
func ParseStatus(s string) Status {
	switch Status(s) {
	case StatusInProgress:
		return StatusInProgress
	case StatusComplete:
		return StatusComplete
	default:
		return StatusReady
	}
}

// Valid reports whether s is one of the three known states.
func (s Status) Valid() bool {
	return s == StatusReady || s == StatusInProgress || s == StatusComplete
}

// Workout is one training session owned by a user.
type Workout struct {
	ID              uuid.UUID  `json:"id"`
	UserID          int        `json:"user_id"`
	Name            string     `json:"name"`
	Description     *string    `json:"description"`
	Status          Status     `json:"status"`
	StartedAt       *time.Time `json:"started_at"`
	CompletedAt     *time.Time `json:"completed_at"`
	DurationMinutes *int       `json:"duration_minutes"`
	CaloriesBurned  *int       `json:"calories_burned"`
	TotalKgLifted   *float64   `json:"total_kg_lifted"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
	Exercises       []Exercise `json:"exercises"`
}

// Exercise is a planned movement within a workout. Sets is the planned
// count; SetRows holds the persisted set rows.
type Exercise struct {
	ID             int64     `json:"id"`
	WorkoutID      uuid.UUID `json:"workout_id"`
	Name           string    `json:"name"`
	Sets           int       `json:"sets"`
	Reps           int       `json:"reps"`
	RestSeconds    *int      `json:"rest_seconds"`
	TargetWeightKg *float64  `json:"target_weight_kg"`
	SetRows        []Set     `json:"set_rows"`
}

// Set is one logged attempt at an exercise.
type Set struct {
	ID            int64     `json:"id"`
	ExerciseID    int64     `json:"exercise_id"`
	WorkoutID     uuid.UUID `json:"workout_id"`
	SetNumber     int       `json:"set_number"`
	WeightKg      *float64  `json:"weight_kg"`
	RepsCompleted *int      `json:"reps_completed"`
	Completed     bool      `json:"completed"`
}

// SetUpdate carries the mutable fields of a set.
type SetUpdate struct {
	WeightKg      *float64 `json:"weight_kg"`
	RepsCompleted *int     `json:"reps_completed"`
	Completed     bool     `json:"completed"`
}

// Completion carries the metrics persisted by the complete transition.
type Completion struct {
	DurationMinutes *int     `json:"duration"`
	CaloriesBurned  *int     `json:"calories_burned"`
	TotalKgLifted   *float64 `json:"total_kg_lifted"`
}

// ExerciseSpec is a normalized exercise ready for insertion.
type ExerciseSpec struct {
	Name           string   `json:"name"`
	Sets           int      `json:"sets"`
	Reps           int      `json:"reps"`
	RestSeconds    *int     `json:"rest"`
	TargetWeightKg *float64 `json:"weight"`
}

// NewWorkout is the validated input for creating a workout.
type NewWorkout struct {
	Name        string
	Description *string
	Exercises   []ExerciseSpec
}
