package alpha

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/claude/liftlog/internal/ingest"
	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/workout"
)

// Provider imports Alpha Progression CSV exports as completed workouts.
type Provider struct {
	workouts ingest.Importer
	log      *slog.Logger
}

// NewProvider creates a new Alpha Progression import provider.
func NewProvider(workouts ingest.Importer, log *slog.Logger) *Provider {
	return &Provider{workouts: workouts, log: log}
}

// Ingest parses an export and stores every session for owner. Sessions that
// were imported before are counted as skipped.
func (p *Provider) Ingest(ctx context.Context, r io.Reader, owner int) (*ingest.Result, error) {
	sessions, err := Parse(r)
	if err != nil {
		return nil, &workout.ValidationError{Field: "file", Message: "is not an Alpha Progression export: " + err.Error()}
	}

	result := &ingest.Result{SessionsReceived: len(sessions)}
	for _, s := range sessions {
		in := toImported(s)
		for _, ex := range s.Exercises {
			result.WarmupsIgnored += len(ex.Warmups)
		}
		w, imported, err := p.workouts.Import(ctx, owner, in)
		if err != nil {
			return result, fmt.Errorf("importing session %q (%s): %w", s.Name, s.StartedAt.Format("2006-01-02"), err)
		}
		if !imported {
			result.WorkoutsSkipped++
			continue
		}
		result.WorkoutsImported++
		for _, ex := range w.Exercises {
			result.SetsImported += len(ex.SetRows)
		}
	}

	p.log.Info("alpha import finished",
		"owner", owner,
		"sessions", result.SessionsReceived,
		"imported", result.WorkoutsImported,
		"skipped", result.WorkoutsSkipped,
	)
	return result, nil
}

// toImported keeps working sets only. Equipment is folded into the exercise
// name so "Squats" on a machine and with a barbell stay apart.
func toImported(s Session) models.ImportedWorkout {
	in := models.ImportedWorkout{
		Name:      s.Name,
		StartedAt: s.StartedAt,
		Duration:  s.Duration,
		Exercises: make([]models.ImportedExercise, 0, len(s.Exercises)),
	}
	for _, ex := range s.Exercises {
		name := ex.Name
		if ex.Equipment != "" {
			name = fmt.Sprintf("%s (%s)", ex.Name, ex.Equipment)
		}
		out := models.ImportedExercise{Name: name, TargetReps: ex.TargetReps}
		for _, set := range ex.Sets {
			out.Sets = append(out.Sets, models.ImportedSet{WeightKg: set.WeightKg, Reps: set.Reps})
		}
		in.Exercises = append(in.Exercises, out)
	}
	return in
}
