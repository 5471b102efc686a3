package server

import (
	"log/slog"
	"net/http"

	"github.com/claude/liftlog/internal/ingest/alpha"
	"github.com/claude/liftlog/internal/observability"
	"github.com/claude/liftlog/internal/workout"
	"github.com/go-chi/chi/v5"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	workouts *workout.Service
	alpha    *alpha.Provider
	identity func(http.Handler) http.Handler
	log      *slog.Logger
	router   chi.Router
}

// New creates a new Server with all routes configured. identity resolves the
// caller to an owner id; nil falls back to DevIdentity.
func New(svc *workout.Service, identity func(http.Handler) http.Handler, log *slog.Logger) *Server {
	if identity == nil {
		identity = DevIdentity
	}
	s := &Server{
		workouts: svc,
		alpha:    alpha.NewProvider(svc, log),
		identity: identity,
		log:      log,
		router:   chi.NewRouter(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(RequestLogging(s.log))
	s.router.Use(CORS)

	s.router.Get("/healthz", s.handleHealth)
	s.router.Handle("/metrics", observability.Handler())

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Use(s.identity)
		r.Get("/me", s.handleMe)

		r.Get("/workouts", s.handleListWorkouts)
		r.Post("/workouts", s.handleCreateWorkout)
		r.Post("/workouts/ai", s.handleGenerateWorkout)
		r.Post("/workouts/import/alpha", s.handleAlphaImport)
		r.Get("/workouts/{id}", s.handleGetWorkout)
		r.Put("/workouts/{id}", s.handleWorkoutAction)
		r.Get("/workouts/{id}/summary", s.handleWorkoutSummary)
		r.Put("/workouts/{id}/sets/{setId}", s.handleUpdateSet)
	})
}
