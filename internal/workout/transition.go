package workout

import (
	"fmt"
	"time"

	"github.com/claude/liftlog/internal/models"
)

// Start moves w to in_progress and discards any earlier completion. With strict
// set, restarting a completed workout is refused.
func Start(w *models.Workout, now time.Time, strict bool) error {
	if strict && w.Status == models.StatusComplete {
		return fmt.Errorf("start from %s: %w", w.Status, ErrInvalidTransition)
	}
	w.Status = models.StatusInProgress
	w.StartedAt = &now
	w.CompletedAt = nil
	w.DurationMinutes = nil
	w.CaloriesBurned = nil
	w.TotalKgLifted = nil
	return nil
}

// Complete moves w to complete and stores the supplied metrics. With strict
// set, only an in_progress workout may complete.
func Complete(w *models.Workout, now time.Time, c models.Completion, strict bool) error {
	if strict && w.Status != models.StatusInProgress {
		return fmt.Errorf("complete from %s: %w", w.Status, ErrInvalidTransition)
	}
	w.Status = models.StatusComplete
	w.CompletedAt = &now
	w.DurationMinutes = c.DurationMinutes
	w.CaloriesBurned = c.CaloriesBurned
	w.TotalKgLifted = c.TotalKgLifted
	return nil
}
