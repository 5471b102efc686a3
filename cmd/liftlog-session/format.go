package main

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"text/tabwriter"

	"github.com/claude/liftlog/internal/metrics"
	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/session"
)

func printWorkoutList(out io.Writer, ws []models.Workout) {
	if len(ws) == 0 {
		fmt.Fprintln(out, "No workouts yet.")
		return
	}
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tSTATUS\tEXERCISES\tCREATED")
	for _, w := range ws {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n",
			w.ID, w.Name, w.Status, len(w.Exercises), w.CreatedAt.Local().Format("2006-01-02 15:04"))
	}
	tw.Flush()
}

// printWorkout renders every exercise with its sets. The exercise at cursor
// is marked; pass -1 for none.
func printWorkout(out io.Writer, w *models.Workout, cursor int) {
	fmt.Fprintf(out, "%s  [%s]  %s\n", w.Name, w.Status, w.ID)
	if w.Description != nil {
		fmt.Fprintf(out, "  %s\n", *w.Description)
	}
	for i, ex := range w.Exercises {
		mark := " "
		if i == cursor {
			mark = ">"
		}
		fmt.Fprintf(out, "%s %d. %s  %dx%d", mark, i+1, ex.Name, ex.Sets, ex.Reps)
		if ex.TargetWeightKg != nil {
			fmt.Fprintf(out, " @ %skg", formatKg(*ex.TargetWeightKg))
		}
		fmt.Fprintf(out, "  rest %s\n", metrics.FormatTimer(session.RestSeconds(ex)))
		for _, set := range ex.SetRows {
			printSet(out, ex, set)
		}
	}
}

func printSet(out io.Writer, ex models.Exercise, set models.Set) {
	box := "[ ]"
	if set.Completed {
		box = "[x]"
	}
	weight, reps := session.DefaultEntry(ex, set)
	if weight == "" {
		weight = "-"
	}
	if reps == "" {
		reps = "-"
	}
	fmt.Fprintf(out, "      %s set %d  %skg x %s\n", box, set.SetNumber, weight, reps)
}

func printSummary(out io.Writer, sum metrics.Summary) {
	fmt.Fprintf(out, "Duration %s  Sets %d  Lifted %skg  Calories %d\n",
		sum.Duration, sum.TotalSets, formatKg(sum.TotalKgLifted), sum.CaloriesBurned)
	for _, ex := range sum.Exercises {
		fmt.Fprintf(out, "  %s: %d/%d sets, %skg total, %skg avg\n",
			ex.Name, ex.CompletedSets, ex.PlannedSets, formatKg(ex.TotalWeightKg), formatKg(ex.AvgWeightKg))
	}
}

func printStatus(out io.Writer, s session.Snapshot) {
	if s.Workout == nil {
		fmt.Fprintln(out, "No workout loaded.")
		return
	}
	switch {
	case s.Workout.Status == models.StatusComplete:
		fmt.Fprintf(out, "Complete in %s.\n", metrics.FormatDuration(s.ElapsedSeconds))
	case s.Started:
		fmt.Fprintf(out, "Elapsed %s", metrics.FormatTimer(s.ElapsedSeconds))
		if s.Resting {
			fmt.Fprintf(out, "  resting %s", metrics.FormatTimer(s.RestRemaining))
		}
		fmt.Fprintln(out)
	default:
		fmt.Fprintln(out, "Not started. Type \"start\" to begin.")
	}
	printWorkout(out, s.Workout, s.Cursor)
	if s.CanFinish {
		fmt.Fprintln(out, "All sets done. Type \"finish\" to complete the workout.")
	}
}

// formatKg drops trailing zeros and keeps one decimal.
func formatKg(kg float64) string {
	return strconv.FormatFloat(math.Round(kg*10)/10, 'f', -1, 64)
}
