// Command liftlog-session lists, creates and runs workouts from a terminal,
// against a liftlog server or directly on a local SQLite database.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/claude/liftlog/internal/client"
	"github.com/claude/liftlog/internal/ingest"
	"github.com/claude/liftlog/internal/ingest/alpha"
	"github.com/claude/liftlog/internal/metrics"
	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/session"
	"github.com/claude/liftlog/internal/storage/sqlite"
	"github.com/claude/liftlog/internal/workout"
)

// Version is set at build time via -ldflags.
var Version = "dev"

var (
	serverURL string
	token     string
	localPath string
	login     string
	verbose   bool
)

// backend is everything the commands need. *client.Client and localBackend
// both satisfy it.
type backend interface {
	session.Backend
	ListWorkouts(ctx context.Context) ([]models.Workout, error)
	CreateWorkout(ctx context.Context, in models.WorkoutInput) (*models.Workout, error)
	GenerateWorkout(ctx context.Context, prompt string) (*models.Workout, error)
	WorkoutSummary(ctx context.Context, id uuid.UUID) (*models.Workout, metrics.Summary, error)
	ImportAlpha(ctx context.Context, r io.Reader) (*ingest.Result, error)
}

var (
	_ backend = (*client.Client)(nil)
	_ backend = localBackend{}
)

// localBackend runs the service in process against a SQLite file.
type localBackend struct {
	*workout.OwnerService
	alpha *alpha.Provider
}

func newLocalBackend(svc *workout.Service, owner int, log *slog.Logger) localBackend {
	return localBackend{OwnerService: svc.For(owner), alpha: alpha.NewProvider(svc, log)}
}

func (b localBackend) ImportAlpha(ctx context.Context, r io.Reader) (*ingest.Result, error) {
	return b.alpha.Ingest(ctx, r, b.Owner())
}

var rootCmd = &cobra.Command{
	Use:   "liftlog-session",
	Short: "Plan and run liftlog workouts from the terminal",
	Long: `liftlog-session talks to a liftlog server, or with --local to a SQLite
database file, and lets you plan workouts and log them set by set.

Examples:
  liftlog-session --server http://localhost:8080 list
  liftlog-session --local ./liftlog.db create --name "Leg day" -e "Squat:3:5:120:100"
  liftlog-session --local ./liftlog.db run 6f1c...`,
	Version:      Version,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&serverURL, "server", "s", os.Getenv("LIFTLOG_SERVER"), "liftlog server URL")
	rootCmd.PersistentFlags().StringVar(&token, "token", os.Getenv("LIFTLOG_TOKEN"), "bearer token for jwt deployments")
	rootCmd.PersistentFlags().StringVar(&localPath, "local", "", "use a local SQLite database instead of a server")
	rootCmd.PersistentFlags().StringVar(&login, "login", "local", "user login for --local mode")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log debug output to stderr")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger() *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// openBackend resolves the persistent flags into a backend. The returned
// close func is never nil.
func openBackend(ctx context.Context, log *slog.Logger) (backend, func(), error) {
	switch {
	case localPath != "":
		store, err := sqlite.Open(localPath)
		if err != nil {
			return nil, nil, fmt.Errorf("opening %s: %w", localPath, err)
		}
		owner, err := store.GetOrCreateUser(ctx, login, "")
		if err != nil {
			store.Close()
			return nil, nil, fmt.Errorf("resolving user %q: %w", login, err)
		}
		svc := workout.NewService(store, nil, nil, workout.Options{}, log)
		return newLocalBackend(svc, owner, log), func() { store.Close() }, nil
	case serverURL != "":
		return client.New(serverURL, token), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("either --server or --local is required")
	}
}

// withBackend wraps a command body with backend setup and teardown.
func withBackend(fn func(ctx context.Context, cmd *cobra.Command, b backend, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		b, closeFn, err := openBackend(ctx, newLogger())
		if err != nil {
			return err
		}
		defer closeFn()
		return fn(ctx, cmd, b, args)
	}
}
