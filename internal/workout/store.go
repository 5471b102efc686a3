package workout

import (
	"context"

	"github.com/claude/liftlog/internal/models"
	"github.com/google/uuid"
)

// Store persists workouts. Every method is scoped by owner; rows belonging to
// another owner behave exactly like missing rows.
type Store interface {
	// CreateWorkout inserts the workout, its exercises and one set row per
	// planned set in a single transaction.
	CreateWorkout(ctx context.Context, owner int, nw models.NewWorkout) (*models.Workout, error)
	// GetWorkout returns the full tree, provisioning missing set rows first.
	GetWorkout(ctx context.Context, owner int, id uuid.UUID) (*models.Workout, error)
	// ListWorkouts returns the owner's workouts newest first, exercises
	// included and set rows omitted.
	ListWorkouts(ctx context.Context, owner int) ([]models.Workout, error)
	// UpdateSet checks the set -> workout -> owner chain and writes the set.
	UpdateSet(ctx context.Context, owner int, workoutID uuid.UUID, setID int64, u models.SetUpdate) error
	// UpdateWorkout loads the workout inside a transaction, applies mutate and
	// writes back status, timestamps and metrics. A mutate error rolls back.
	UpdateWorkout(ctx context.Context, owner int, id uuid.UUID, mutate func(*models.Workout) error) error
}

// Publisher emits lifecycle events after a mutation commits.
type Publisher interface {
	Publish(ctx context.Context, ev models.Event) error
}

// NopPublisher drops every event.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, models.Event) error { return nil }
