// Package session drives one interactive workout: it keeps the workout
// snapshot, the exercise cursor, the rest countdown and the elapsed ticker,
// and talks to a Backend for every write.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/claude/liftlog/internal/metrics"
	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/workout"
	"github.com/google/uuid"
)

// DefaultRestSeconds applies to exercises stored without a rest interval.
const DefaultRestSeconds = 90

var (
	ErrNotLoaded       = errors.New("workout not loaded")
	ErrAlreadyComplete = errors.New("workout already completed")
	ErrNotStarted      = errors.New("workout not started")
	ErrSetsIncomplete  = errors.New("not every set is completed")
	ErrNotLastExercise = errors.New("finish from the last exercise")
	ErrUnknownSet      = errors.New("set is not part of this workout")
	ErrSaving          = errors.New("a set is already being saved")
)

// Backend is the server side of a session. *client.Client and
// *workout.OwnerService both implement it.
type Backend interface {
	GetWorkout(ctx context.Context, id uuid.UUID) (*models.Workout, error)
	StartWorkout(ctx context.Context, id uuid.UUID) (*models.Workout, error)
	UpdateSet(ctx context.Context, workoutID uuid.UUID, setID int64, u models.SetUpdate) (*models.Workout, error)
	CompleteWorkout(ctx context.Context, id uuid.UUID, c models.Completion) (*models.Workout, error)
}

// Options configure a Controller.
type Options struct {
	// Now defaults to time.Now.
	Now func() time.Time
	// Tick is the timer resolution, one second unless overridden.
	Tick time.Duration
	// OnChange receives a snapshot after every state change. Timer updates
	// call it from their own goroutines.
	OnChange func(Snapshot)
}

// Snapshot is a point-in-time view of the session. Workout must be treated
// as read-only.
type Snapshot struct {
	Workout        *models.Workout
	Started        bool
	Cursor         int
	ElapsedSeconds int
	Resting        bool
	RestRemaining  int
	SavingSetID    int64
	// CanAdvance reports whether a next exercise exists.
	CanAdvance bool
	// CanFinish is true on the last exercise once every set is completed.
	CanFinish bool
}

// Result is what a finished session reports.
type Result struct {
	Workout *models.Workout
	Summary metrics.Summary
}

// Controller owns the state of one workout session. It is safe for
// concurrent use; timers run on their own goroutines until Close.
type Controller struct {
	backend Backend
	id      uuid.UUID
	opts    Options
	log     *slog.Logger

	mu            sync.Mutex
	workout       *models.Workout
	started       bool
	cursor        int
	elapsed       int
	resting       bool
	restRemaining int
	savingSetID   int64
	restStop      chan struct{}
	elapsedStop   chan struct{}

	wg sync.WaitGroup
}

// New creates a Controller for workout id. Call Load before anything else.
func New(backend Backend, id uuid.UUID, opts Options, log *slog.Logger) *Controller {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Tick <= 0 {
		opts.Tick = time.Second
	}
	if log == nil {
		log = slog.Default()
	}
	return &Controller{backend: backend, id: id, opts: opts, log: log}
}

// Load fetches the workout and derives the timer state from its status.
func (c *Controller) Load(ctx context.Context) error {
	w, err := c.backend.GetWorkout(ctx, c.id)
	if err != nil {
		return fmt.Errorf("loading workout: %w", err)
	}

	c.mu.Lock()
	c.workout = w
	c.cursor = metrics.NextPendingExercise(w)
	c.stopRestLocked()
	c.stopElapsedLocked()
	switch w.Status {
	case models.StatusInProgress:
		c.started = true
		c.elapsed = metrics.ElapsedSeconds(w, c.opts.Now())
		c.startElapsedLocked()
	case models.StatusComplete:
		c.started = false
		c.elapsed = metrics.DurationSeconds(w, 0)
	default:
		c.started = false
		c.elapsed = 0
	}
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.notify(snap)
	return nil
}

// Start begins the session. A completed workout cannot be restarted here.
func (c *Controller) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.workout == nil {
		c.mu.Unlock()
		return ErrNotLoaded
	}
	if c.workout.Status == models.StatusComplete {
		c.mu.Unlock()
		return ErrAlreadyComplete
	}
	c.mu.Unlock()

	w, err := c.backend.StartWorkout(ctx, c.id)
	if err != nil {
		return fmt.Errorf("starting workout: %w", err)
	}

	c.mu.Lock()
	c.workout = w
	c.started = true
	c.elapsed = 0
	c.startElapsedLocked()
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.notify(snap)
	return nil
}

// MarkSet records a set. Marking it done requires numeric weight and reps;
// undoing it sends whatever was entered, with blank or unreadable fields as
// null. On failure the snapshot is left as it was.
func (c *Controller) MarkSet(ctx context.Context, setID int64, weight, reps string, done bool) error {
	c.mu.Lock()
	if c.workout == nil {
		c.mu.Unlock()
		return ErrNotLoaded
	}
	if c.savingSetID != 0 {
		c.mu.Unlock()
		return ErrSaving
	}
	ex, _, ok := findSet(c.workout, setID)
	if !ok {
		c.mu.Unlock()
		return ErrUnknownSet
	}
	u, err := setUpdate(weight, reps, done)
	if err != nil {
		c.mu.Unlock()
		return err
	}
	rest := RestSeconds(ex)
	c.savingSetID = setID
	snap := c.snapshotLocked()
	c.mu.Unlock()
	c.notify(snap)

	w, err := c.backend.UpdateSet(ctx, c.id, setID, u)

	c.mu.Lock()
	c.savingSetID = 0
	if err != nil {
		snap = c.snapshotLocked()
		c.mu.Unlock()
		c.notify(snap)
		return fmt.Errorf("updating set %d: %w", setID, err)
	}
	c.workout = w
	c.cursor = metrics.NextPendingExercise(w)
	if done && rest > 0 {
		c.startRestLocked(rest)
	}
	snap = c.snapshotLocked()
	c.mu.Unlock()

	c.notify(snap)
	return nil
}

func setUpdate(weight, reps string, done bool) (models.SetUpdate, error) {
	weight, reps = strings.TrimSpace(weight), strings.TrimSpace(reps)
	u := models.SetUpdate{Completed: done}
	if !done {
		if kg, err := strconv.ParseFloat(weight, 64); err == nil {
			u.WeightKg = &kg
		}
		if n, err := strconv.Atoi(reps); err == nil {
			u.RepsCompleted = &n
		}
		return u, nil
	}
	if weight == "" {
		return u, &workout.ValidationError{Field: "weight_kg", Message: "is required"}
	}
	if reps == "" {
		return u, &workout.ValidationError{Field: "reps_completed", Message: "is required"}
	}
	kg, err := strconv.ParseFloat(weight, 64)
	if err != nil {
		return u, &workout.ValidationError{Field: "weight_kg", Message: "must be a number"}
	}
	n, err := strconv.Atoi(reps)
	if err != nil {
		return u, &workout.ValidationError{Field: "reps_completed", Message: "must be a whole number"}
	}
	u.WeightKg, u.RepsCompleted = &kg, &n
	return u, nil
}

// SkipRest ends the rest countdown now.
func (c *Controller) SkipRest() {
	c.mu.Lock()
	c.stopRestLocked()
	snap := c.snapshotLocked()
	c.mu.Unlock()
	c.notify(snap)
}

// Next moves the cursor forward, stopping at the last exercise.
func (c *Controller) Next() int {
	return c.move(1)
}

// Prev moves the cursor back, stopping at the first exercise.
func (c *Controller) Prev() int {
	return c.move(-1)
}

func (c *Controller) move(delta int) int {
	c.mu.Lock()
	last := 0
	if c.workout != nil && len(c.workout.Exercises) > 0 {
		last = len(c.workout.Exercises) - 1
	}
	c.cursor = min(max(c.cursor+delta, 0), last)
	cursor := c.cursor
	snap := c.snapshotLocked()
	c.mu.Unlock()
	c.notify(snap)
	return cursor
}

// Finish completes the workout with metrics derived from the logged sets.
func (c *Controller) Finish(ctx context.Context) (*Result, error) {
	c.mu.Lock()
	switch {
	case c.workout == nil:
		c.mu.Unlock()
		return nil, ErrNotLoaded
	case c.workout.Status == models.StatusComplete:
		c.mu.Unlock()
		return nil, ErrAlreadyComplete
	case !c.started:
		c.mu.Unlock()
		return nil, ErrNotStarted
	case !metrics.AllSetsCompleted(c.workout):
		c.mu.Unlock()
		return nil, ErrSetsIncomplete
	case !c.onLastExerciseLocked():
		c.mu.Unlock()
		return nil, ErrNotLastExercise
	}
	secs := c.elapsed
	if secs <= 0 {
		secs = metrics.ElapsedSeconds(c.workout, c.opts.Now())
	}
	sum := metrics.Summarize(c.workout, secs)
	c.mu.Unlock()

	mins, cal, kg := sum.DurationMinutes, sum.CaloriesBurned, sum.TotalKgLifted
	w, err := c.backend.CompleteWorkout(ctx, c.id, models.Completion{
		DurationMinutes: &mins,
		CaloriesBurned:  &cal,
		TotalKgLifted:   &kg,
	})
	if err != nil {
		return nil, fmt.Errorf("completing workout: %w", err)
	}

	c.mu.Lock()
	c.workout = w
	c.started = false
	c.stopElapsedLocked()
	c.stopRestLocked()
	c.elapsed = metrics.DurationSeconds(w, secs)
	res := &Result{Workout: w, Summary: metrics.Summarize(w, c.elapsed)}
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.notify(snap)
	return res, nil
}

// Snapshot returns the current state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Close stops both timers and waits for them to exit.
func (c *Controller) Close() {
	c.mu.Lock()
	c.stopRestLocked()
	c.stopElapsedLocked()
	c.mu.Unlock()
	c.wg.Wait()
}

func (c *Controller) snapshotLocked() Snapshot {
	s := Snapshot{
		Workout:        c.workout,
		Started:        c.started,
		Cursor:         c.cursor,
		ElapsedSeconds: c.elapsed,
		Resting:        c.resting,
		RestRemaining:  c.restRemaining,
		SavingSetID:    c.savingSetID,
	}
	if c.workout != nil {
		s.CanAdvance = c.cursor < len(c.workout.Exercises)-1
		s.CanFinish = c.onLastExerciseLocked() && c.started &&
			c.workout.Status != models.StatusComplete && metrics.AllSetsCompleted(c.workout)
	}
	return s
}

func (c *Controller) onLastExerciseLocked() bool {
	n := len(c.workout.Exercises)
	return n > 0 && c.cursor == n-1
}

func (c *Controller) notify(s Snapshot) {
	if c.opts.OnChange != nil {
		c.opts.OnChange(s)
	}
}

// RestSeconds is the rest interval after a set of ex. Exercises stored
// without one rest for DefaultRestSeconds.
func RestSeconds(ex models.Exercise) int {
	if ex.RestSeconds == nil {
		return DefaultRestSeconds
	}
	return max(0, *ex.RestSeconds)
}

// DefaultEntry returns the weight and reps to prefill for a set: the logged
// values, else the exercise targets.
func DefaultEntry(ex models.Exercise, set models.Set) (weight, reps string) {
	switch {
	case set.WeightKg != nil:
		weight = strconv.FormatFloat(*set.WeightKg, 'f', -1, 64)
	case ex.TargetWeightKg != nil:
		weight = strconv.FormatFloat(*ex.TargetWeightKg, 'f', -1, 64)
	}
	switch {
	case set.RepsCompleted != nil:
		reps = strconv.Itoa(*set.RepsCompleted)
	case ex.Reps > 0:
		reps = strconv.Itoa(ex.Reps)
	}
	return weight, reps
}

func findSet(w *models.Workout, setID int64) (models.Exercise, models.Set, bool) {
	for _, ex := range w.Exercises {
		for _, s := range ex.SetRows {
			if s.ID == setID {
				return ex, s, true
			}
		}
	}
	return models.Exercise{}, models.Set{}, false
}
