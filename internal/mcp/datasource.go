package mcp

import (
	"context"

	"github.com/claude/liftlog/internal/client"
	"github.com/claude/liftlog/internal/metrics"
	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/workout"
	"github.com/google/uuid"
)

// DataSource abstracts the data layer for MCP tools. A source is already
// scoped to one owner: *workout.OwnerService reads a local database and
// *client.Client reads the REST API as the token's user.
type DataSource interface {
	ListWorkouts(ctx context.Context) ([]models.Workout, error)
	GetWorkout(ctx context.Context, id uuid.UUID) (*models.Workout, error)
	WorkoutSummary(ctx context.Context, id uuid.UUID) (*models.Workout, metrics.Summary, error)
}

var (
	_ DataSource = (*workout.OwnerService)(nil)
	_ DataSource = (*client.Client)(nil)
)
