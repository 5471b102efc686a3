// Package workout implements the workout session engine: template
// normalization, the ready -> in_progress -> complete state machine, set
// updates and set provisioning rules. Persistence is behind Store.
package workout

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/claude/liftlog/internal/metrics"
	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/observability"
	"github.com/google/uuid"
)

// Options tune the transition policy.
type Options struct {
	// StrictTransitions refuses start on a completed workout and complete on
	// anything but an in_progress workout.
	StrictTransitions bool
	// RecomputeMetrics derives total weight and calories from stored sets at
	// completion instead of trusting the caller.
	RecomputeMetrics bool
	// Now defaults to time.Now.
	Now func() time.Time
}

// Service orchestrates workout operations for authenticated owners.
type Service struct {
	store     Store
	generator Generator
	publisher Publisher
	opts      Options
	log       *slog.Logger
}

// NewService creates a Service. generator and publisher may be nil.
func NewService(store Store, generator Generator, publisher Publisher, opts Options, log *slog.Logger) *Service {
	if publisher == nil {
		publisher = NopPublisher{}
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if log == nil {
		log = slog.Default()
	}
	return &Service{store: store, generator: generator, publisher: publisher, opts: opts, log: log}
}

func (s *Service) now() time.Time {
	return s.opts.Now().UTC()
}

// Create validates in and persists a new ready workout.
func (s *Service) Create(ctx context.Context, owner int, in models.WorkoutInput) (*models.Workout, error) {
	return s.create(ctx, owner, in, "manual")
}

func (s *Service) create(ctx context.Context, owner int, in models.WorkoutInput, source string) (*models.Workout, error) {
	nw, err := Normalize(in)
	if err != nil {
		return nil, err
	}
	w, err := s.store.CreateWorkout(ctx, owner, nw)
	if err != nil {
		return nil, persistErr("creating workout", err)
	}
	observability.RecordWorkoutCreated(source)
	s.publish(ctx, models.EventWorkoutCreated, w, 0)
	return w, nil
}

// CreateGenerated asks the generator for a plan and persists it. Generator
// failures never fail the request; the fixed fallback list is used instead.
func (s *Service) CreateGenerated(ctx context.Context, owner int, prompt string) (*models.Workout, error) {
	var plan *Plan
	if s.generator != nil {
		p, err := s.generator.Generate(ctx, prompt)
		switch {
		case err != nil:
			s.log.Warn("exercise generation failed, using fallback", "error", &UpstreamGenerationError{Err: err})
		case p == nil || len(p.Exercises) == 0:
			s.log.Warn("exercise generation failed, using fallback", "error", &UpstreamGenerationError{})
		default:
			plan = p
		}
	} else {
		s.log.Warn("no exercise generator configured, using fallback")
	}
	if plan == nil {
		observability.RecordGeneratorFallback()
	}
	return s.create(ctx, owner, planInput(prompt, plan), "ai")
}

// Get returns the full workout tree.
func (s *Service) Get(ctx context.Context, owner int, id uuid.UUID) (*models.Workout, error) {
	w, err := s.store.GetWorkout(ctx, owner, id)
	if err != nil {
		return nil, persistErr("reading workout", err)
	}
	return w, nil
}

// List returns the owner's workouts newest first.
func (s *Service) List(ctx context.Context, owner int) ([]models.Workout, error) {
	ws, err := s.store.ListWorkouts(ctx, owner)
	if err != nil {
		return nil, persistErr("listing workouts", err)
	}
	return ws, nil
}

// Summary derives the metrics for a stored workout. In-progress workouts use
// the live elapsed time.
func (s *Service) Summary(ctx context.Context, owner int, id uuid.UUID) (*models.Workout, metrics.Summary, error) {
	w, err := s.Get(ctx, owner, id)
	if err != nil {
		return nil, metrics.Summary{}, err
	}
	secs := metrics.DurationSeconds(w, metrics.ElapsedSeconds(w, s.now()))
	return w, metrics.Summarize(w, secs), nil
}

// Start transitions the workout to in_progress.
func (s *Service) Start(ctx context.Context, owner int, id uuid.UUID) (*models.Workout, error) {
	now := s.now()
	err := s.store.UpdateWorkout(ctx, owner, id, func(w *models.Workout) error {
		return Start(w, now, s.opts.StrictTransitions)
	})
	if err != nil {
		return nil, persistErr("starting workout", err)
	}
	observability.RecordTransition("start")
	return s.afterWrite(ctx, owner, id, models.EventWorkoutStarted, 0)
}

// Complete transitions the workout to complete with the given metrics.
func (s *Service) Complete(ctx context.Context, owner int, id uuid.UUID, c models.Completion) (*models.Workout, error) {
	now := s.now()
	err := s.store.UpdateWorkout(ctx, owner, id, func(w *models.Workout) error {
		if s.opts.RecomputeMetrics {
			c = recompute(w, c, now)
		}
		return Complete(w, now, c, s.opts.StrictTransitions)
	})
	if err != nil {
		return nil, persistErr("completing workout", err)
	}
	observability.RecordTransition("complete")
	w, err := s.afterWrite(ctx, owner, id, models.EventWorkoutCompleted, 0)
	if err == nil {
		observability.RecordCompletedDuration(w.DurationMinutes)
	}
	return w, err
}

// recompute replaces caller totals with values derived from stored sets. The
// caller duration is kept when present.
func recompute(w *models.Workout, c models.Completion, now time.Time) models.Completion {
	secs := metrics.ElapsedSeconds(w, now)
	if c.DurationMinutes != nil {
		secs = *c.DurationMinutes * 60
	}
	sum := metrics.Summarize(w, secs)
	total, cal, mins := sum.TotalKgLifted, sum.CaloriesBurned, sum.DurationMinutes
	if c.DurationMinutes != nil {
		mins = *c.DurationMinutes
	}
	return models.Completion{DurationMinutes: &mins, CaloriesBurned: &cal, TotalKgLifted: &total}
}

// UpdateSet writes a set after verifying the caller owns it.
func (s *Service) UpdateSet(ctx context.Context, owner int, workoutID uuid.UUID, setID int64, u models.SetUpdate) (*models.Workout, error) {
	if u.RepsCompleted != nil && *u.RepsCompleted < 0 {
		return nil, &ValidationError{Field: "reps_completed", Message: "must not be negative"}
	}
	if u.WeightKg != nil && *u.WeightKg < 0 {
		return nil, &ValidationError{Field: "weight_kg", Message: "must not be negative"}
	}
	if err := s.store.UpdateSet(ctx, owner, workoutID, setID, u); err != nil {
		return nil, persistErr("updating set", err)
	}
	observability.RecordSetUpdate(u.Completed)
	return s.afterWrite(ctx, owner, workoutID, models.EventSetUpdated, setID)
}

func (s *Service) afterWrite(ctx context.Context, owner int, id uuid.UUID, typ models.EventType, setID int64) (*models.Workout, error) {
	w, err := s.Get(ctx, owner, id)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, typ, w, setID)
	return w, nil
}

func (s *Service) publish(ctx context.Context, typ models.EventType, w *models.Workout, setID int64) {
	ev := models.Event{
		Type:            typ,
		WorkoutID:       w.ID,
		OwnerID:         w.UserID,
		Status:          w.Status,
		OccurredAt:      s.now(),
		SetID:           setID,
		DurationMinutes: w.DurationMinutes,
		CaloriesBurned:  w.CaloriesBurned,
		TotalKgLifted:   w.TotalKgLifted,
	}
	if err := s.publisher.Publish(ctx, ev); err != nil {
		s.log.Warn("publishing workout event failed", "type", typ, "workout_id", w.ID, "error", err)
	}
}

// LogError logs err at a level matching its kind.
func LogError(log *slog.Logger, msg string, err error) {
	var pe *PersistenceError
	switch {
	case IsClientError(err):
		log.Info(msg, "error", err)
	case errors.As(err, &pe):
		log.Error(msg, "op", pe.Op, "error", pe.Err)
	default:
		log.Error(msg, "error", err)
	}
}
