// Package client talks to the liftlog REST API. It backs the session CLI and
// the remote mode of the MCP server.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/claude/liftlog/internal/ingest"
	"github.com/claude/liftlog/internal/metrics"
	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/workout"
	"github.com/google/uuid"
)

// Client calls the liftlog API as one authenticated user.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// New creates a Client targeting baseURL. token is sent as a bearer token
// when non-empty; tailnet and dev deployments need none.
func New(baseURL, token string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// APIError is a non-2xx answer from the server.
type APIError struct {
	Status  int
	Message string
	Field   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.Status, e.Message)
}

// Is maps status codes back onto the workout error sentinels.
func (e *APIError) Is(target error) bool {
	switch target {
	case workout.ErrNotFound:
		return e.Status == http.StatusNotFound
	case workout.ErrInvalidTransition:
		return e.Status == http.StatusConflict
	}
	return false
}

// Unwrap exposes field errors as *workout.ValidationError.
func (e *APIError) Unwrap() error {
	if e.Status == http.StatusBadRequest && e.Field != "" {
		return &workout.ValidationError{Field: e.Field, Message: strings.TrimPrefix(e.Message, e.Field+" ")}
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	if in == nil {
		return c.send(ctx, method, path, "", nil, out)
	}
	data, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("client: encode %s: %w", path, err)
	}
	return c.send(ctx, method, path, "application/json", bytes.NewReader(data), out)
}

// send issues a request with a raw body and decodes a JSON response into out.
func (c *Client) send(ctx context.Context, method, path, contentType string, body io.Reader, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("client: create request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("client: %s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("client: read body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var apiErr struct {
			Error string `json:"error"`
			Field string `json:"field"`
		}
		if json.Unmarshal(data, &apiErr) != nil || apiErr.Error == "" {
			apiErr.Error = strings.TrimSpace(string(data))
		}
		return &APIError{Status: resp.StatusCode, Message: apiErr.Error, Field: apiErr.Field}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("client: decode %s: %w", path, err)
	}
	return nil
}

// UserInfo is the caller identity reported by the server.
type UserInfo struct {
	Login       string `json:"login"`
	DisplayName string `json:"display_name"`
}

// Me returns the identity the server resolved for this client.
func (c *Client) Me(ctx context.Context) (*UserInfo, error) {
	var info UserInfo
	if err := c.do(ctx, http.MethodGet, "/api/v1/me", nil, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// ListWorkouts returns the caller's workouts newest first.
func (c *Client) ListWorkouts(ctx context.Context) ([]models.Workout, error) {
	var out struct {
		Workouts []models.Workout `json:"workouts"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/v1/workouts", nil, &out); err != nil {
		return nil, err
	}
	return out.Workouts, nil
}

type createResponse struct {
	Workout models.Workout `json:"workout"`
}

// CreateWorkout submits a workout template.
func (c *Client) CreateWorkout(ctx context.Context, in models.WorkoutInput) (*models.Workout, error) {
	var out createResponse
	if err := c.do(ctx, http.MethodPost, "/api/v1/workouts", in, &out); err != nil {
		return nil, err
	}
	return &out.Workout, nil
}

// GenerateWorkout asks the server to build a workout from a prompt.
func (c *Client) GenerateWorkout(ctx context.Context, prompt string) (*models.Workout, error) {
	var out createResponse
	if err := c.do(ctx, http.MethodPost, "/api/v1/workouts/ai", map[string]string{"prompt": prompt}, &out); err != nil {
		return nil, err
	}
	return &out.Workout, nil
}

// GetWorkout returns the full workout tree.
func (c *Client) GetWorkout(ctx context.Context, id uuid.UUID) (*models.Workout, error) {
	var w models.Workout
	if err := c.do(ctx, http.MethodGet, workoutPath(id), nil, &w); err != nil {
		return nil, err
	}
	return &w, nil
}

// WorkoutSummary returns the workout with its derived metrics.
func (c *Client) WorkoutSummary(ctx context.Context, id uuid.UUID) (*models.Workout, metrics.Summary, error) {
	var out struct {
		Workout models.Workout  `json:"workout"`
		Summary metrics.Summary `json:"summary"`
	}
	if err := c.do(ctx, http.MethodGet, workoutPath(id)+"/summary", nil, &out); err != nil {
		return nil, metrics.Summary{}, err
	}
	return &out.Workout, out.Summary, nil
}

type actionRequest struct {
	Action string `json:"action"`
	models.Completion
}

// StartWorkout sends the start action.
func (c *Client) StartWorkout(ctx context.Context, id uuid.UUID) (*models.Workout, error) {
	var w models.Workout
	if err := c.do(ctx, http.MethodPut, workoutPath(id), actionRequest{Action: "start"}, &w); err != nil {
		return nil, err
	}
	return &w, nil
}

// CompleteWorkout sends the complete action with the session metrics.
func (c *Client) CompleteWorkout(ctx context.Context, id uuid.UUID, done models.Completion) (*models.Workout, error) {
	var w models.Workout
	if err := c.do(ctx, http.MethodPut, workoutPath(id), actionRequest{Action: "complete", Completion: done}, &w); err != nil {
		return nil, err
	}
	return &w, nil
}

// UpdateSet writes one set and returns the refreshed workout.
func (c *Client) UpdateSet(ctx context.Context, workoutID uuid.UUID, setID int64, u models.SetUpdate) (*models.Workout, error) {
	var w models.Workout
	path := workoutPath(workoutID) + "/sets/" + strconv.FormatInt(setID, 10)
	if err := c.do(ctx, http.MethodPut, path, u, &w); err != nil {
		return nil, err
	}
	return &w, nil
}

// ImportAlpha uploads an Alpha Progression CSV export.
func (c *Client) ImportAlpha(ctx context.Context, r io.Reader) (*ingest.Result, error) {
	var res ingest.Result
	if err := c.send(ctx, http.MethodPost, "/api/v1/workouts/import/alpha", "text/csv", r, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func workoutPath(id uuid.UUID) string {
	return "/api/v1/workouts/" + id.String()
}
