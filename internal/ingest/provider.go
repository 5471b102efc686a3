// Package ingest holds what every history importer shares.
package ingest

import (
	"context"

	"github.com/claude/liftlog/internal/models"
)

// Importer stores one finished session for owner. *workout.Service
// implements it.
type Importer interface {
	Import(ctx context.Context, owner int, in models.ImportedWorkout) (*models.Workout, bool, error)
}

// Result holds the outcome of an import.
type Result struct {
	SessionsReceived int `json:"sessions_received"`
	WorkoutsImported int `json:"workouts_imported"`
	WorkoutsSkipped  int `json:"workouts_skipped"`
	SetsImported     int `json:"sets_imported"`
	WarmupsIgnored   int `json:"warmups_ignored"`

	Message string `json:"message,omitempty"`
}
