package mcp

import (
	"context"
	"encoding/json"
	"time"

	"github.com/claude/liftlog/internal/metrics"
	"github.com/mark3labs/mcp-go/mcp"
)

type recentWorkout struct {
	workoutRow
	Summary metrics.Summary `json:"summary"`
}

func (h *handlers) recentWorkouts(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	since := time.Now().AddDate(0, 0, -14)

	workouts, err := h.ds.ListWorkouts(ctx)
	if err != nil {
		return nil, err
	}

	recent := []recentWorkout{}
	for _, w := range workouts {
		if w.CreatedAt.Before(since) {
			continue
		}
		// The listing carries no sets, so per-set totals come from the full tree.
		full, sum, err := h.ds.WorkoutSummary(ctx, w.ID)
		if err != nil {
			return nil, err
		}
		recent = append(recent, recentWorkout{workoutRow: toRow(*full), Summary: sum})
	}

	data, err := json.Marshal(recent)
	if err != nil {
		return nil, err
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
