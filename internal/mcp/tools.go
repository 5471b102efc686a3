package mcp

import (
	"context"
	"errors"
	"time"

	"github.com/claude/liftlog/internal/metrics"
	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/workout"
	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
)

// defaultTimeRange returns start/end defaulting to the last 7 days.
func defaultTimeRange(startStr, endStr string) (time.Time, time.Time, error) {
	var start, end time.Time
	var err error

	if endStr != "" {
		end, err = parseFlexTime(endStr)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
	} else {
		end = time.Now()
	}

	if startStr != "" {
		start, err = parseFlexTime(startStr)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
	} else {
		start = end.AddDate(0, 0, -7)
	}

	return start, end, nil
}

func parseFlexTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err == nil {
		return t, nil
	}
	t, err = time.Parse("2006-01-02", s)
	if err == nil {
		return t, nil
	}
	return time.Time{}, err
}

// --- Tool definitions ---

var toolListWorkouts = mcp.NewTool("list_workouts",
	mcp.WithDescription("List workouts newest first with status, timing and totals. Without start/end all workouts are returned."),
	mcp.WithString("status", mcp.Description("Only workouts in this state."), mcp.Enum("ready", "in_progress", "complete")),
	mcp.WithString("start", mcp.Description("Created on or after this date (ISO 8601 or YYYY-MM-DD). Defaults to 7 days before end when end is set.")),
	mcp.WithString("end", mcp.Description("Created before this date. Defaults to now when start is set.")),
)

var toolGetWorkout = mcp.NewTool("get_workout",
	mcp.WithDescription("Get one workout with its exercises and every logged set (weight, reps, completed)."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Workout ID (UUID)")),
)

var toolGetWorkoutSummary = mcp.NewTool("get_workout_summary",
	mcp.WithDescription("Summarize a workout: duration, completed sets, lifted kilograms per exercise and in total, and the calorie estimate."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Workout ID (UUID)")),
)

// workoutRow is the compact listing shape.
type workoutRow struct {
	ID              uuid.UUID     `json:"id"`
	Name            string        `json:"name"`
	Status          models.Status `json:"status"`
	CreatedAt       time.Time     `json:"created_at"`
	StartedAt       *time.Time    `json:"started_at,omitempty"`
	CompletedAt     *time.Time    `json:"completed_at,omitempty"`
	DurationMinutes *int          `json:"duration_minutes,omitempty"`
	CaloriesBurned  *int          `json:"calories_burned,omitempty"`
	TotalKgLifted   *float64      `json:"total_kg_lifted,omitempty"`
	Exercises       []string      `json:"exercises"`
}

func toRow(w models.Workout) workoutRow {
	row := workoutRow{
		ID:              w.ID,
		Name:            w.Name,
		Status:          w.Status,
		CreatedAt:       w.CreatedAt,
		StartedAt:       w.StartedAt,
		CompletedAt:     w.CompletedAt,
		DurationMinutes: w.DurationMinutes,
		CaloriesBurned:  w.CaloriesBurned,
		TotalKgLifted:   w.TotalKgLifted,
		Exercises:       make([]string, 0, len(w.Exercises)),
	}
	for _, ex := range w.Exercises {
		row.Exercises = append(row.Exercises, ex.Name)
	}
	return row
}

// --- Tool handlers ---

func (h *handlers) listWorkouts(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	status := req.GetString("status", "")
	if status != "" && !models.Status(status).Valid() {
		return mcp.NewToolResultError("invalid status: " + status), nil
	}

	var start, end time.Time
	startStr, endStr := req.GetString("start", ""), req.GetString("end", "")
	filterDates := startStr != "" || endStr != ""
	if filterDates {
		var err error
		start, end, err = defaultTimeRange(startStr, endStr)
		if err != nil {
			return mcp.NewToolResultError("invalid date format: " + err.Error()), nil
		}
	}

	workouts, err := h.ds.ListWorkouts(ctx)
	if err != nil {
		h.log.Error("mcp list_workouts", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	rows := []workoutRow{}
	for _, w := range workouts {
		if status != "" && w.Status != models.Status(status) {
			continue
		}
		if filterDates && (w.CreatedAt.Before(start) || !w.CreatedAt.Before(end)) {
			continue
		}
		rows = append(rows, toRow(w))
	}

	result, err := mcp.NewToolResultJSON(rows)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getWorkout(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, errResult := workoutIDArg(req)
	if errResult != nil {
		return errResult, nil
	}

	w, err := h.ds.GetWorkout(ctx, id)
	if err != nil {
		return h.queryError("get_workout", err), nil
	}

	result, err := mcp.NewToolResultJSON(w)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getWorkoutSummary(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, errResult := workoutIDArg(req)
	if errResult != nil {
		return errResult, nil
	}

	w, sum, err := h.ds.WorkoutSummary(ctx, id)
	if err != nil {
		return h.queryError("get_workout_summary", err), nil
	}

	result, err := mcp.NewToolResultJSON(struct {
		Workout workoutRow      `json:"workout"`
		Summary metrics.Summary `json:"summary"`
	}{toRow(*w), sum})
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func workoutIDArg(req mcp.CallToolRequest) (uuid.UUID, *mcp.CallToolResult) {
	raw, err := req.RequireString("id")
	if err != nil {
		return uuid.Nil, mcp.NewToolResultError("id parameter required")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, mcp.NewToolResultError("invalid workout ID: " + raw)
	}
	return id, nil
}

func (h *handlers) queryError(tool string, err error) *mcp.CallToolResult {
	if errors.Is(err, workout.ErrNotFound) {
		return mcp.NewToolResultError("workout not found")
	}
	h.log.Error("mcp "+tool, "error", err)
	return mcp.NewToolResultError("query failed: " + err.Error())
}
