package workout

import (
	"context"

	"github.com/claude/liftlog/internal/metrics"
	"github.com/claude/liftlog/internal/models"
	"github.com/google/uuid"
)

// OwnerService is a Service bound to one owner. It has the same method set as
// the REST client so local tools can run without a server.
type OwnerService struct {
	svc   *Service
	owner int
}

// For binds s to owner.
func (s *Service) For(owner int) *OwnerService {
	return &OwnerService{svc: s, owner: owner}
}

// Owner returns the bound owner id.
func (o *OwnerService) Owner() int { return o.owner }

func (o *OwnerService) ListWorkouts(ctx context.Context) ([]models.Workout, error) {
	return o.svc.List(ctx, o.owner)
}

func (o *OwnerService) CreateWorkout(ctx context.Context, in models.WorkoutInput) (*models.Workout, error) {
	return o.svc.Create(ctx, o.owner, in)
}

func (o *OwnerService) GenerateWorkout(ctx context.Context, prompt string) (*models.Workout, error) {
	return o.svc.CreateGenerated(ctx, o.owner, prompt)
}

func (o *OwnerService) GetWorkout(ctx context.Context, id uuid.UUID) (*models.Workout, error) {
	return o.svc.Get(ctx, o.owner, id)
}

func (o *OwnerService) WorkoutSummary(ctx context.Context, id uuid.UUID) (*models.Workout, metrics.Summary, error) {
	return o.svc.Summary(ctx, o.owner, id)
}

func (o *OwnerService) StartWorkout(ctx context.Context, id uuid.UUID) (*models.Workout, error) {
	return o.svc.Start(ctx, o.owner, id)
}

func (o *OwnerService) CompleteWorkout(ctx context.Context, id uuid.UUID, c models.Completion) (*models.Workout, error) {
	return o.svc.Complete(ctx, o.owner, id, c)
}

func (o *OwnerService) UpdateSet(ctx context.Context, workoutID uuid.UUID, setID int64, u models.SetUpdate) (*models.Workout, error) {
	return o.svc.UpdateSet(ctx, o.owner, workoutID, setID, u)
}

func (o *OwnerService) Import(ctx context.Context, in models.ImportedWorkout) (*models.Workout, bool, error) {
	return o.svc.Import(ctx, o.owner, in)
}
