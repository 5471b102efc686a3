package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/claude/liftlog/internal/metrics"
	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/session"
	"github.com/claude/liftlog/internal/workout"
)

var runCmd = &cobra.Command{
	Use:   "run <workout-id>",
	Short: "Run a workout interactively",
	Long: `Run a workout set by set. Commands at the prompt:

  start                     start the workout clock
  done <set> [kg] [reps]    complete a set of the current exercise
  undo <set>                mark a set of the current exercise not done
  next, prev                move between exercises
  skip                      end the rest countdown
  status                    show the clock and the workout
  finish                    complete the workout and show the summary
  quit                      leave without finishing`,
	Args: cobra.ExactArgs(1),
	RunE: withBackend(func(ctx context.Context, cmd *cobra.Command, b backend, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		return runSession(ctx, b, id, cmd.InOrStdin(), cmd.OutOrStdout(), session.Options{}, newLogger())
	}),
}

func init() {
	rootCmd.AddCommand(runCmd)
}

// console serializes output between the prompt loop and timer callbacks.
type console struct {
	mu      sync.Mutex
	out     io.Writer
	resting bool
}

func (c *console) printf(format string, args ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.out, format, args...)
}

func (c *console) with(fn func(io.Writer)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fn(c.out)
}

// onChange announces the end of a rest countdown.
func (c *console) onChange(s session.Snapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.resting && !s.Resting {
		fmt.Fprintln(c.out, "Rest over.")
	}
	c.resting = s.Resting
}

func runSession(ctx context.Context, b session.Backend, id uuid.UUID, in io.Reader, out io.Writer, opts session.Options, log *slog.Logger) error {
	con := &console{out: out}
	opts.OnChange = con.onChange
	ctl := session.New(b, id, opts, log)
	defer ctl.Close()

	if err := ctl.Load(ctx); err != nil {
		return err
	}
	con.with(func(w io.Writer) { printStatus(w, ctl.Snapshot()) })

	scanner := bufio.NewScanner(in)
	for {
		con.printf("> ")
		if !scanner.Scan() {
			con.printf("\n")
			return scanner.Err()
		}
		quit, err := execLine(ctx, ctl, con, scanner.Text())
		if err != nil {
			con.printf("error: %s\n", describe(err))
		}
		if quit {
			return nil
		}
	}
}

// execLine runs one prompt command. It never holds the console lock while
// calling the controller, whose callbacks take it.
func execLine(ctx context.Context, ctl *session.Controller, con *console, line string) (bool, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false, nil
	}
	switch cmd, args := strings.ToLower(fields[0]), fields[1:]; cmd {
	case "start":
		if err := ctl.Start(ctx); err != nil {
			return false, err
		}
		con.printf("Started.\n")
	case "done", "undo":
		return false, markSet(ctx, ctl, con, cmd == "done", args)
	case "next":
		ctl.Next()
		con.with(func(w io.Writer) { printCurrent(w, ctl.Snapshot()) })
	case "prev":
		ctl.Prev()
		con.with(func(w io.Writer) { printCurrent(w, ctl.Snapshot()) })
	case "skip":
		ctl.SkipRest()
	case "status":
		con.with(func(w io.Writer) { printStatus(w, ctl.Snapshot()) })
	case "finish":
		res, err := ctl.Finish(ctx)
		if err != nil {
			return false, err
		}
		con.with(func(w io.Writer) {
			fmt.Fprintf(w, "Workout complete: %s\n", res.Workout.Name)
			printSummary(w, res.Summary)
		})
		return true, nil
	case "quit", "exit":
		return true, nil
	default:
		return false, fmt.Errorf("unknown command %q (try status, done, undo, next, prev, skip, finish, quit)", cmd)
	}
	return false, nil
}

// markSet resolves a set number of the current exercise. Blank weight or reps
// fall back to the logged values, then the targets.
func markSet(ctx context.Context, ctl *session.Controller, con *console, done bool, args []string) error {
	if len(args) == 0 {
		return errors.New("which set? e.g. \"done 1 60 8\"")
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("set %q is not a number", args[0])
	}
	snap := ctl.Snapshot()
	ex, set, ok := currentSet(snap, n)
	if !ok {
		return fmt.Errorf("no set %d in the current exercise", n)
	}
	weight, reps := session.DefaultEntry(ex, set)
	if len(args) > 1 {
		weight = args[1]
	}
	if len(args) > 2 {
		reps = args[2]
	}
	if err := ctl.MarkSet(ctx, set.ID, weight, reps, done); err != nil {
		return err
	}

	after := ctl.Snapshot()
	if !done {
		con.printf("%s set %d reopened.\n", ex.Name, n)
		return nil
	}
	con.printf("%s set %d: %skg x %s.", ex.Name, n, weight, reps)
	if after.Resting {
		con.printf(" Rest %s.", metrics.FormatTimer(after.RestRemaining))
	}
	con.printf("\n")
	if after.CanFinish {
		con.printf("All sets done. Type \"finish\" to complete the workout.\n")
	}
	return nil
}

func currentSet(s session.Snapshot, n int) (models.Exercise, models.Set, bool) {
	if s.Workout == nil || s.Cursor >= len(s.Workout.Exercises) {
		return models.Exercise{}, models.Set{}, false
	}
	ex := s.Workout.Exercises[s.Cursor]
	for _, set := range ex.SetRows {
		if set.SetNumber == n {
			return ex, set, true
		}
	}
	return models.Exercise{}, models.Set{}, false
}

func printCurrent(out io.Writer, s session.Snapshot) {
	if s.Workout == nil || len(s.Workout.Exercises) == 0 {
		fmt.Fprintln(out, "This workout has no exercises.")
		return
	}
	ex := s.Workout.Exercises[s.Cursor]
	fmt.Fprintf(out, "Exercise %d of %d: %s\n", s.Cursor+1, len(s.Workout.Exercises), ex.Name)
	for _, set := range ex.SetRows {
		printSet(out, ex, set)
	}
}

// describe turns validation failures into the field-level message a user
// can act on.
func describe(err error) string {
	var verr *workout.ValidationError
	if errors.As(err, &verr) {
		return verr.Field + " " + verr.Message
	}
	return err.Error()
}
