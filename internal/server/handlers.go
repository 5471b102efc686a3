package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/workout"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, userInfoFromContext(r))
}

func (s *Server) handleListWorkouts(w http.ResponseWriter, r *http.Request) {
	uid, ok := mustUserID(w, r)
	if !ok {
		return
	}
	workouts, err := s.workouts.List(r.Context(), uid)
	if err != nil {
		s.writeError(w, "listing workouts", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"workouts": nonNil(workouts)})
}

func (s *Server) handleCreateWorkout(w http.ResponseWriter, r *http.Request) {
	uid, ok := mustUserID(w, r)
	if !ok {
		return
	}
	var in models.WorkoutInput
	if err := decodeBody(r, &in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	created, err := s.workouts.Create(r.Context(), uid, in)
	if err != nil {
		s.writeError(w, "creating workout", err)
		return
	}
	s.writeCreated(w, r, uid, created)
}

type generateRequest struct {
	Prompt string `json:"prompt"`
}

func (s *Server) handleGenerateWorkout(w http.ResponseWriter, r *http.Request) {
	uid, ok := mustUserID(w, r)
	if !ok {
		return
	}
	var req generateRequest
	if err := decodeBody(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	created, err := s.workouts.CreateGenerated(r.Context(), uid, req.Prompt)
	if err != nil {
		s.writeError(w, "creating generated workout", err)
		return
	}
	s.writeCreated(w, r, uid, created)
}

// writeCreated answers a create with the new workout and the refreshed list.
func (s *Server) writeCreated(w http.ResponseWriter, r *http.Request, uid int, created *models.Workout) {
	workouts, err := s.workouts.List(r.Context(), uid)
	if err != nil {
		s.writeError(w, "listing workouts", err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"workout":  created,
		"workouts": nonNil(workouts),
	})
}

func (s *Server) handleGetWorkout(w http.ResponseWriter, r *http.Request) {
	uid, ok := mustUserID(w, r)
	if !ok {
		return
	}
	id, ok := workoutID(w, r)
	if !ok {
		return
	}
	detail, err := s.workouts.Get(r.Context(), uid, id)
	if err != nil {
		s.writeError(w, "reading workout", err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

func (s *Server) handleWorkoutSummary(w http.ResponseWriter, r *http.Request) {
	uid, ok := mustUserID(w, r)
	if !ok {
		return
	}
	id, ok := workoutID(w, r)
	if !ok {
		return
	}
	detail, summary, err := s.workouts.Summary(r.Context(), uid, id)
	if err != nil {
		s.writeError(w, "summarizing workout", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"workout": detail,
		"summary": summary,
	})
}

type actionRequest struct {
	Action         string        `json:"action"`
	Duration       models.Number `json:"duration"`
	CaloriesBurned models.Number `json:"calories_burned"`
	TotalKgLifted  models.Number `json:"total_kg_lifted"`
}

// completion converts the request metrics. Zero calories or weight are
// stored as unknown.
func (a actionRequest) completion() models.Completion {
	var c models.Completion
	if n, ok := a.Duration.Int(); ok {
		c.DurationMinutes = &n
	}
	if n, ok := a.CaloriesBurned.Int(); ok && n != 0 {
		c.CaloriesBurned = &n
	}
	if f, ok := a.TotalKgLifted.Float(); ok && f != 0 {
		c.TotalKgLifted = &f
	}
	return c
}

func (s *Server) handleWorkoutAction(w http.ResponseWriter, r *http.Request) {
	uid, ok := mustUserID(w, r)
	if !ok {
		return
	}
	id, ok := workoutID(w, r)
	if !ok {
		return
	}
	var req actionRequest
	if err := decodeBody(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}

	var (
		updated *models.Workout
		err     error
	)
	switch req.Action {
	case "start":
		updated, err = s.workouts.Start(r.Context(), uid, id)
	case "complete":
		updated, err = s.workouts.Complete(r.Context(), uid, id, req.completion())
	default:
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid action", "field": "action"})
		return
	}
	if err != nil {
		s.writeError(w, req.Action+" workout", err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

type setRequest struct {
	WeightKg      models.Number `json:"weight_kg"`
	RepsCompleted models.Number `json:"reps_completed"`
	Completed     *bool         `json:"completed"`
}

// update converts the request. completed defaults to true unless sent as false.
func (req setRequest) update() models.SetUpdate {
	u := models.SetUpdate{Completed: req.Completed == nil || *req.Completed}
	if f, ok := req.WeightKg.Float(); ok {
		u.WeightKg = &f
	}
	if n, ok := req.RepsCompleted.Int(); ok {
		u.RepsCompleted = &n
	}
	return u
}

func (s *Server) handleUpdateSet(w http.ResponseWriter, r *http.Request) {
	uid, ok := mustUserID(w, r)
	if !ok {
		return
	}
	id, ok := workoutID(w, r)
	if !ok {
		return
	}
	setID, err := strconv.ParseInt(chi.URLParam(r, "setId"), 10, 64)
	if err != nil || setID <= 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid set ID"})
		return
	}
	var req setRequest
	if err := decodeBody(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	updated, err := s.workouts.UpdateSet(r.Context(), uid, id, setID, req.update())
	if err != nil {
		s.writeError(w, "updating set", err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// writeError maps domain errors to status codes. Storage details stay in the log.
func (s *Server) writeError(w http.ResponseWriter, msg string, err error) {
	workout.LogError(s.log, msg, err)

	var ve *workout.ValidationError
	switch {
	case errors.As(err, &ve):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": ve.Error(), "field": ve.Field})
	case errors.Is(err, workout.ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	case errors.Is(err, workout.ErrInvalidTransition):
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
	default:
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}

func workoutID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid workout ID"})
		return uuid.Nil, false
	}
	return id, true
}

// decodeBody decodes a JSON body. An empty body decodes as the zero value.
func decodeBody(r *http.Request, v any) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

func nonNil(ws []models.Workout) []models.Workout {
	if ws == nil {
		return []models.Workout{}
	}
	return ws
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
