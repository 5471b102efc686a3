// Package metrics derives session numbers from a workout's set rows: per-exercise
// breakdowns, session totals, the calorie estimate and the human duration strings.
//
// Only completed sets count toward lifted weight. A completed set without a logged
// weight falls back to the exercise target, then to zero.
package metrics

import (
	"fmt"
	"math"
	"time"

	"github.com/claude/liftlog/internal/models"
)

const (
	// CalorieFloor is the smallest estimate ever reported.
	CalorieFloor = 25

	caloriesPerMinute = 6.0
	caloriesPerKg     = 0.015
)

// ExerciseSummary is the per-exercise breakdown shown after a session.
type ExerciseSummary struct {
	ExerciseID    int64   `json:"id"`
	Name          string  `json:"name"`
	CompletedSets int     `json:"completed_sets"`
	PlannedSets   int     `json:"planned_sets"`
	RepsPerSet    int     `json:"reps_per_set"`
	TotalWeightKg float64 `json:"total_weight_kg"`
	AvgWeightKg   float64 `json:"avg_weight_kg"`
}

// Summary holds the session totals.
type Summary struct {
	DurationSeconds int               `json:"duration_seconds"`
	DurationMinutes int               `json:"duration_minutes"`
	Duration        string            `json:"duration"`
	TotalSets       int               `json:"total_sets"`
	TotalKgLifted   float64           `json:"total_kg_lifted"`
	CaloriesBurned  int               `json:"calories_burned"`
	Exercises       []ExerciseSummary `json:"exercises"`
}

// SummarizeExercise computes the breakdown for one exercise.
func SummarizeExercise(ex models.Exercise) ExerciseSummary {
	s := ExerciseSummary{
		ExerciseID:  ex.ID,
		Name:        ex.Name,
		PlannedSets: ex.Sets,
		RepsPerSet:  ex.Reps,
	}
	if len(ex.SetRows) > 0 {
		s.PlannedSets = len(ex.SetRows)
	}
	for _, set := range ex.SetRows {
		if !set.Completed {
			continue
		}
		s.CompletedSets++
		s.TotalWeightKg += setWeight(ex, set)
	}
	if s.CompletedSets > 0 {
		s.AvgWeightKg = s.TotalWeightKg / float64(s.CompletedSets)
	}
	return s
}

func setWeight(ex models.Exercise, set models.Set) float64 {
	switch {
	case set.WeightKg != nil:
		return *set.WeightKg
	case ex.TargetWeightKg != nil:
		return *ex.TargetWeightKg
	default:
		return 0
	}
}

// Summarize derives the full session summary for w given an elapsed duration.
func Summarize(w *models.Workout, durationSeconds int) Summary {
	if durationSeconds < 0 {
		durationSeconds = 0
	}
	s := Summary{
		DurationSeconds: durationSeconds,
		DurationMinutes: DurationMinutes(durationSeconds),
		Duration:        FormatDuration(durationSeconds),
		Exercises:       []ExerciseSummary{},
	}
	if w == nil {
		s.CaloriesBurned = Calories(s.DurationMinutes, 0)
		return s
	}
	for _, ex := range w.Exercises {
		es := SummarizeExercise(ex)
		s.TotalKgLifted += es.TotalWeightKg
		s.TotalSets += es.CompletedSets
		s.Exercises = append(s.Exercises, es)
	}
	s.CaloriesBurned = Calories(s.DurationMinutes, s.TotalKgLifted)
	return s
}

// Calories estimates energy burned. The result grows with both inputs and
// never drops below CalorieFloor.
func Calories(durationMinutes int, totalKg float64) int {
	if durationMinutes < 0 {
		durationMinutes = 0
	}
	if totalKg < 0 || math.IsNaN(totalKg) {
		totalKg = 0
	}
	est := int(math.Round(float64(durationMinutes)*caloriesPerMinute + totalKg*caloriesPerKg))
	return max(CalorieFloor, est)
}

// DurationMinutes rounds seconds to whole minutes with a minimum of one.
func DurationMinutes(seconds int) int {
	if seconds < 0 {
		seconds = 0
	}
	return max(1, int(math.Round(float64(seconds)/60)))
}

// FormatDuration renders seconds as "1h 5m", "2h" or "12m". Anything under a
// minute shows as "1m".
func FormatDuration(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	totalMinutes := seconds / 60
	hours, minutes := totalMinutes/60, totalMinutes%60
	if hours > 0 {
		if minutes > 0 {
			return fmt.Sprintf("%dh %dm", hours, minutes)
		}
		return fmt.Sprintf("%dh", hours)
	}
	return fmt.Sprintf("%dm", max(1, minutes))
}

// FormatTimer renders a countdown as m:ss.
func FormatTimer(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}

// NextPendingExercise returns the index of the first exercise that still has an
// incomplete set, or 0 when every set is done.
func NextPendingExercise(w *models.Workout) int {
	if w == nil {
		return 0
	}
	for i, ex := range w.Exercises {
		for _, set := range ex.SetRows {
			if !set.Completed {
				return i
			}
		}
	}
	return 0
}

// AllSetsCompleted reports whether every set of every exercise is completed.
// A workout without sets is not considered finished.
func AllSetsCompleted(w *models.Workout) bool {
	if w == nil {
		return false
	}
	n := 0
	for _, ex := range w.Exercises {
		for _, set := range ex.SetRows {
			if !set.Completed {
				return false
			}
			n++
		}
	}
	return n > 0
}

// DurationSeconds resolves the stored duration of w: duration_minutes when set,
// otherwise the started/completed difference, otherwise fallback.
func DurationSeconds(w *models.Workout, fallback int) int {
	fallback = max(0, fallback)
	if w == nil {
		return fallback
	}
	if w.DurationMinutes != nil {
		return max(0, *w.DurationMinutes*60)
	}
	if w.StartedAt != nil && w.CompletedAt != nil {
		return max(0, int(w.CompletedAt.Sub(*w.StartedAt)/time.Second))
	}
	return fallback
}

// ElapsedSeconds is the live session time since started_at.
func ElapsedSeconds(w *models.Workout, now time.Time) int {
	if w == nil || w.StartedAt == nil {
		return 0
	}
	return max(0, int(now.Sub(*w.StartedAt)/time.Second))
}
