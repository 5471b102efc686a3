package models

import (
	"time"

	"github.com/google/uuid"
)

// EventType names a workout lifecycle event.
type EventType string

const (
	EventWorkoutCreated   EventType = "workout.created"
	EventWorkoutStarted   EventType = "workout.started"
	EventWorkoutCompleted EventType = "workout.completed"
	EventSetUpdated       EventType = "workout.set_updated"
)

// Event is published after a workout mutation commits.
type Event struct {
	Type            EventType `json:"type"`
	WorkoutID       uuid.UUID `json:"workout_id"`
	OwnerID         int       `json:"owner_id"`
	Status          Status    `json:"status"`
	OccurredAt      time.Time `json:"occurred_at"`
	SetID           int64     `json:"set_id,omitempty"`
	DurationMinutes *int      `json:"duration_minutes,omitempty"`
	CaloriesBurned  *int      `json:"calories_burned,omitempty"`
	TotalKgLifted   *float64  `json:"total_kg_lifted,omitempty"`
}
