package workout_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/storage/sqlite"
	"github.com/claude/liftlog/internal/workout"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []models.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, ev models.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return p.err
}

func (p *recordingPublisher) types() []models.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []models.EventType
	for _, ev := range p.events {
		out = append(out, ev.Type)
	}
	return out
}

type stubGenerator struct {
	plan *workout.Plan
	err  error
}

func (g stubGenerator) Generate(context.Context, string) (*workout.Plan, error) {
	return g.plan, g.err
}

type fixture struct {
	svc   *workout.Service
	store *sqlite.Store
	pub   *recordingPublisher
	clock *time.Time
}

func newFixture(t *testing.T, gen workout.Generator, opts workout.Options) *fixture {
	t.Helper()
	store, err := sqlite.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	now := time.Date(2025, 6, 1, 7, 0, 0, 0, time.UTC)
	f := &fixture{store: store, pub: &recordingPublisher{}, clock: &now}
	opts.Now = func() time.Time { return *f.clock }
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	f.svc = workout.NewService(store, gen, f.pub, opts, log)
	return f
}

func (f *fixture) advance(d time.Duration) {
	*f.clock = f.clock.Add(d)
}

func num(v float64) models.Number { return models.NumberOf(v) }

func squatInput() models.WorkoutInput {
	return models.WorkoutInput{
		Name:      "Squat session",
		Exercises: []models.ExerciseInput{{Name: "Squat", Sets: num(3), Reps: num(10), Rest: num(60)}},
	}
}

func ptr[T any](v T) *T { return &v }

func TestService_CreateRejectsBlankName(t *testing.T) {
	f := newFixture(t, nil, workout.Options{})
	_, err := f.svc.Create(context.Background(), 1, models.WorkoutInput{Name: " "})
	var ve *workout.ValidationError
	require.ErrorAs(t, err, &ve)
	require.Equal(t, "name", ve.Field)
	require.Empty(t, f.pub.types())
}

func TestService_CreateRoundTrip(t *testing.T) {
	f := newFixture(t, nil, workout.Options{})
	ctx := context.Background()

	in := models.WorkoutInput{Name: "Legs", Exercises: []models.ExerciseInput{
		{Name: "Squat", Sets: num(4), Reps: num(10), Rest: num(75)},
	}}
	created, err := f.svc.Create(ctx, 1, in)
	require.NoError(t, err)

	got, err := f.svc.Get(ctx, 1, created.ID)
	require.NoError(t, err)
	require.Equal(t, models.StatusReady, got.Status)
	sets := got.Exercises[0].SetRows
	require.Len(t, sets, 4)
	for i, s := range sets {
		require.Equal(t, i+1, s.SetNumber)
		require.False(t, s.Completed)
		require.Nil(t, s.WeightKg)
	}
	require.Equal(t, []models.EventType{models.EventWorkoutCreated}, f.pub.types())
}

// Walks the single-exercise scenario end to end through the service.
func TestService_SessionScenario(t *testing.T) {
	f := newFixture(t, nil, workout.Options{})
	ctx := context.Background()

	w, err := f.svc.Create(ctx, 1, squatInput())
	require.NoError(t, err)
	w, err = f.svc.Start(ctx, 1, w.ID)
	require.NoError(t, err)
	require.Equal(t, models.StatusInProgress, w.Status)

	for _, set := range w.Exercises[0].SetRows {
		w, err = f.svc.UpdateSet(ctx, 1, w.ID, set.ID, models.SetUpdate{WeightKg: ptr(50.0), RepsCompleted: ptr(10), Completed: true})
		require.NoError(t, err)
	}
	f.advance(5 * time.Minute)

	w, err = f.svc.Complete(ctx, 1, w.ID, models.Completion{DurationMinutes: ptr(5), CaloriesBurned: ptr(32), TotalKgLifted: ptr(150.0)})
	require.NoError(t, err)
	require.Equal(t, models.StatusComplete, w.Status)
	require.Equal(t, 5, *w.DurationMinutes)
	require.Equal(t, 32, *w.CaloriesBurned)
	require.InDelta(t, 150.0, *w.TotalKgLifted, 1e-9)
	require.NotNil(t, w.CompletedAt)

	_, sum, err := f.svc.Summary(ctx, 1, w.ID)
	require.NoError(t, err)
	require.Equal(t, 300, sum.DurationSeconds)
	require.Equal(t, 3, sum.TotalSets)
	require.InDelta(t, 150.0, sum.TotalKgLifted, 1e-9)

	require.Equal(t, []models.EventType{
		models.EventWorkoutCreated,
		models.EventWorkoutStarted,
		models.EventSetUpdated, models.EventSetUpdated, models.EventSetUpdated,
		models.EventWorkoutCompleted,
	}, f.pub.types())
}

func TestService_RestartFromComplete(t *testing.T) {
	f := newFixture(t, nil, workout.Options{})
	ctx := context.Background()

	w, err := f.svc.Create(ctx, 1, squatInput())
	require.NoError(t, err)
	_, err = f.svc.Start(ctx, 1, w.ID)
	require.NoError(t, err)
	_, err = f.svc.Complete(ctx, 1, w.ID, models.Completion{DurationMinutes: ptr(12), CaloriesBurned: ptr(80)})
	require.NoError(t, err)

	f.advance(time.Hour)
	w, err = f.svc.Start(ctx, 1, w.ID)
	require.NoError(t, err)
	require.Equal(t, models.StatusInProgress, w.Status)
	require.Nil(t, w.CompletedAt)
	require.Nil(t, w.DurationMinutes)
	require.Nil(t, w.CaloriesBurned)
	require.Nil(t, w.TotalKgLifted)
	require.True(t, w.StartedAt.Equal(*f.clock))
}

func TestService_StrictTransitions(t *testing.T) {
	f := newFixture(t, nil, workout.Options{StrictTransitions: true})
	ctx := context.Background()

	w, err := f.svc.Create(ctx, 1, squatInput())
	require.NoError(t, err)

	_, err = f.svc.Complete(ctx, 1, w.ID, models.Completion{})
	require.ErrorIs(t, err, workout.ErrInvalidTransition)

	_, err = f.svc.Start(ctx, 1, w.ID)
	require.NoError(t, err)
	_, err = f.svc.Complete(ctx, 1, w.ID, models.Completion{})
	require.NoError(t, err)

	_, err = f.svc.Start(ctx, 1, w.ID)
	require.ErrorIs(t, err, workout.ErrInvalidTransition)

	got, err := f.svc.Get(ctx, 1, w.ID)
	require.NoError(t, err)
	require.Equal(t, models.StatusComplete, got.Status)
}

func TestService_RecomputeMetrics(t *testing.T) {
	f := newFixture(t, nil, workout.Options{RecomputeMetrics: true})
	ctx := context.Background()

	w, err := f.svc.Create(ctx, 1, squatInput())
	require.NoError(t, err)
	w, err = f.svc.Start(ctx, 1, w.ID)
	require.NoError(t, err)
	_, err = f.svc.UpdateSet(ctx, 1, w.ID, w.Exercises[0].SetRows[0].ID,
		models.SetUpdate{WeightKg: ptr(100.0), RepsCompleted: ptr(5), Completed: true})
	require.NoError(t, err)
	f.advance(10 * time.Minute)

	w, err = f.svc.Complete(ctx, 1, w.ID, models.Completion{CaloriesBurned: ptr(9999), TotalKgLifted: ptr(9999.0)})
	require.NoError(t, err)
	require.Equal(t, 10, *w.DurationMinutes)
	require.InDelta(t, 100.0, *w.TotalKgLifted, 1e-9)
	require.Equal(t, 62, *w.CaloriesBurned)
}

func TestService_UpdateSetOtherOwner(t *testing.T) {
	f := newFixture(t, nil, workout.Options{})
	ctx := context.Background()

	w, err := f.svc.Create(ctx, 1, squatInput())
	require.NoError(t, err)
	setID := w.Exercises[0].SetRows[0].ID

	_, err = f.svc.UpdateSet(ctx, 2, w.ID, setID, models.SetUpdate{Completed: true})
	require.ErrorIs(t, err, workout.ErrNotFound)
	require.True(t, workout.IsClientError(err))

	got, err := f.svc.Get(ctx, 1, w.ID)
	require.NoError(t, err)
	require.False(t, got.Exercises[0].SetRows[0].Completed)
	require.Equal(t, models.StatusReady, got.Status)
}

func TestService_UpdateSetRejectsNegative(t *testing.T) {
	f := newFixture(t, nil, workout.Options{})
	_, err := f.svc.UpdateSet(context.Background(), 1, uuid.New(), 1, models.SetUpdate{RepsCompleted: ptr(-1)})
	var ve *workout.ValidationError
	require.ErrorAs(t, err, &ve)
	require.Equal(t, "reps_completed", ve.Field)
}

func TestService_GetMissing(t *testing.T) {
	f := newFixture(t, nil, workout.Options{})
	_, err := f.svc.Get(context.Background(), 1, uuid.New())
	require.ErrorIs(t, err, workout.ErrNotFound)
}

func TestService_PublishFailureDoesNotFailRequest(t *testing.T) {
	f := newFixture(t, nil, workout.Options{})
	f.pub.err = errors.New("broker down")
	_, err := f.svc.Create(context.Background(), 1, squatInput())
	require.NoError(t, err)
}

func TestService_CreateGeneratedUsesPlan(t *testing.T) {
	gen := stubGenerator{plan: &workout.Plan{
		Name:        "AI: arms",
		Description: "AI generated via test-model",
		Exercises:   []models.ExerciseInput{{Name: "Curl", Sets: num(3), Reps: num(12), Rest: num(45), Weight: num(12.5)}},
	}}
	f := newFixture(t, gen, workout.Options{})

	w, err := f.svc.CreateGenerated(context.Background(), 1, "arms")
	require.NoError(t, err)
	require.Equal(t, "AI: arms", w.Name)
	require.Equal(t, "AI generated via test-model", *w.Description)
	require.Len(t, w.Exercises, 1)
	require.Len(t, w.Exercises[0].SetRows, 3)
	require.InDelta(t, 12.5, *w.Exercises[0].SetRows[0].WeightKg, 1e-9)
}

func TestService_CreateGeneratedFallback(t *testing.T) {
	cases := map[string]workout.Generator{
		"error":    stubGenerator{err: errors.New("503")},
		"empty":    stubGenerator{plan: &workout.Plan{}},
		"disabled": nil,
	}
	for name, gen := range cases {
		t.Run(name, func(t *testing.T) {
			f := newFixture(t, gen, workout.Options{})
			w, err := f.svc.CreateGenerated(context.Background(), 1, "hotel gym")
			require.NoError(t, err)
			require.Equal(t, "AI: hotel gym", w.Name)
			require.Equal(t, "hotel gym", *w.Description)
			require.Len(t, w.Exercises, 3)

			var names []string
			var total int
			for _, ex := range w.Exercises {
				names = append(names, ex.Name)
				total += len(ex.SetRows)
			}
			require.Equal(t, []string{"Push-ups", "Squats", "Plank"}, names)
			require.Equal(t, 10, total)
			require.Equal(t, 75, *w.Exercises[1].RestSeconds)
		})
	}
}

func TestService_List(t *testing.T) {
	f := newFixture(t, nil, workout.Options{})
	ctx := context.Background()
	_, err := f.svc.Create(ctx, 1, squatInput())
	require.NoError(t, err)
	_, err = f.svc.Create(ctx, 2, squatInput())
	require.NoError(t, err)

	list, err := f.svc.List(ctx, 1)
	require.NoError(t, err)
	require.Len(t, list, 1)
}
