package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/claude/liftlog/internal/models"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List your workouts, newest first",
	Args:  cobra.NoArgs,
	RunE: withBackend(func(ctx context.Context, cmd *cobra.Command, b backend, _ []string) error {
		ws, err := b.ListWorkouts(ctx)
		if err != nil {
			return err
		}
		printWorkoutList(cmd.OutOrStdout(), ws)
		return nil
	}),
}

var showCmd = &cobra.Command{
	Use:   "show <workout-id>",
	Short: "Show a workout with its sets, and its summary once complete",
	Args:  cobra.ExactArgs(1),
	RunE: withBackend(func(ctx context.Context, cmd *cobra.Command, b backend, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		w, sum, err := b.WorkoutSummary(ctx, id)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		printWorkout(out, w, -1)
		if w.Status == models.StatusComplete {
			printSummary(out, sum)
		}
		return nil
	}),
}

var (
	createName        string
	createDescription string
	createExercises   []string
)

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a workout from exercise templates",
	Long: `Create a workout. Each --exercise is name:sets:reps[:rest[:weight]],
where rest is in seconds and weight in kg. Missing sets and reps are
stored as 0; a missing rest means the default 90 seconds during a session.

Examples:
  liftlog-session create --name "Push" -e "Bench Press:4:8:120:60" -e "Dips:3:12"`,
	Args: cobra.NoArgs,
	RunE: withBackend(func(ctx context.Context, cmd *cobra.Command, b backend, _ []string) error {
		in := models.WorkoutInput{Name: createName}
		if cmd.Flags().Changed("description") {
			d := createDescription
			in.Description = &d
		}
		for _, raw := range createExercises {
			ex, err := parseExerciseFlag(raw)
			if err != nil {
				return err
			}
			in.Exercises = append(in.Exercises, ex)
		}
		w, err := b.CreateWorkout(ctx, in)
		if err != nil {
			return err
		}
		printWorkout(cmd.OutOrStdout(), w, -1)
		return nil
	}),
}

var generateCmd = &cobra.Command{
	Use:   "generate <prompt>",
	Short: "Have the generator plan a workout from a description",
	Args:  cobra.MinimumNArgs(1),
	RunE: withBackend(func(ctx context.Context, cmd *cobra.Command, b backend, args []string) error {
		w, err := b.GenerateWorkout(ctx, strings.Join(args, " "))
		if err != nil {
			return err
		}
		printWorkout(cmd.OutOrStdout(), w, -1)
		return nil
	}),
}

var importCmd = &cobra.Command{
	Use:   "import <alpha-export.csv>",
	Short: "Import finished sessions from an Alpha Progression CSV export",
	Long: `Import an Alpha Progression CSV export. Every session becomes a
completed workout with its working sets logged; warmups are ignored.
Sessions imported before are skipped, so re-running on a newer export
only adds what is new.`,
	Args: cobra.ExactArgs(1),
	RunE: withBackend(func(ctx context.Context, cmd *cobra.Command, b backend, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()
		res, err := b.ImportAlpha(ctx, f)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d sessions: %d imported, %d already present, %d sets, %d warmups ignored\n",
			res.SessionsReceived, res.WorkoutsImported, res.WorkoutsSkipped, res.SetsImported, res.WarmupsIgnored)
		return nil
	}),
}

func init() {
	createCmd.Flags().StringVarP(&createName, "name", "n", "", "workout name (required)")
	createCmd.Flags().StringVarP(&createDescription, "description", "d", "", "optional description")
	createCmd.Flags().StringArrayVarP(&createExercises, "exercise", "e", nil, "exercise as name:sets:reps[:rest[:weight]] (repeatable)")

	rootCmd.AddCommand(listCmd, showCmd, createCmd, generateCmd, importCmd)
}

// parseExerciseFlag splits name:sets:reps[:rest[:weight]]. Numbers are passed
// through as typed and normalized by the service.
func parseExerciseFlag(raw string) (models.ExerciseInput, error) {
	parts := strings.Split(raw, ":")
	if len(parts) > 5 {
		return models.ExerciseInput{}, fmt.Errorf("exercise %q: too many fields, want name:sets:reps[:rest[:weight]]", raw)
	}
	ex := models.ExerciseInput{Name: strings.TrimSpace(parts[0])}
	if ex.Name == "" {
		return models.ExerciseInput{}, fmt.Errorf("exercise %q: name is required", raw)
	}
	fields := []*models.Number{&ex.Sets, &ex.Reps, &ex.Rest, &ex.Weight}
	for i, p := range parts[1:] {
		*fields[i] = models.ParseNumber(p)
	}
	return ex, nil
}

func parseID(s string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(s))
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid workout id %q", s)
	}
	return id, nil
}
