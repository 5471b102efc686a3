// Package generate asks a hosted text-generation model for an exercise plan.
package generate

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/claude/liftlog/internal/workout"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "meta-llama/Meta-Llama-3-8B-Instruct"

const promptTemplate = `You are an expert strength coach. Create a workout based on the user's request.
Return ONLY a JSON array (no prose) where each item has:
  - name (string)
  - sets (number)
  - reps (number)
  - rest (seconds, number)
  - weight_kg (number or null)

User request: %s`

// ErrNoToken is returned when the client has no API token.
var ErrNoToken = errors.New("generator token not configured")

// Client calls a Hugging Face style inference endpoint.
type Client struct {
	apiURL     string
	model      string
	token      string
	httpClient *http.Client
}

// Compile-time check: Client satisfies workout.Generator.
var _ workout.Generator = (*Client)(nil)

// NewClient creates a Client. An empty apiURL targets the hosted inference API for model.
func NewClient(apiURL, model, token string, timeout time.Duration) *Client {
	if model == "" {
		model = DefaultModel
	}
	if apiURL == "" {
		apiURL = "https://api-inference.huggingface.co/models/" + model
	}
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &Client{
		apiURL:     apiURL,
		model:      model,
		token:      token,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type inferenceRequest struct {
	Inputs     string              `json:"inputs"`
	Parameters inferenceParameters `json:"parameters"`
}

type inferenceParameters struct {
	MaxNewTokens   int     `json:"max_new_tokens"`
	Temperature    float64 `json:"temperature"`
	ReturnFullText bool    `json:"return_full_text"`
}

type generation struct {
	GeneratedText string `json:"generated_text"`
}

// Generate returns the parsed plan. An empty result is returned as a plan
// with no exercises; the caller decides on the fallback.
func (c *Client) Generate(ctx context.Context, prompt string) (*workout.Plan, error) {
	if c.token == "" {
		return nil, ErrNoToken
	}
	userPrompt := strings.TrimSpace(prompt)
	if userPrompt == "" {
		userPrompt = workout.DefaultPrompt
	}

	body, err := json.Marshal(inferenceRequest{
		Inputs: fmt.Sprintf(promptTemplate, userPrompt),
		Parameters: inferenceParameters{
			MaxNewTokens:   220,
			Temperature:    0.7,
			ReturnFullText: false,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling generator: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading generator response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("generator returned %d: %s", resp.StatusCode, data)
	}

	text, err := generatedText(data)
	if err != nil {
		return nil, err
	}
	return &workout.Plan{
		Name:        workout.GeneratedName(userPrompt),
		Description: "AI generated via " + c.model,
		Exercises:   ParseExercises(text),
	}, nil
}

// generatedText accepts both the list and the single-object response shapes.
func generatedText(data []byte) (string, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var gens []generation
		if err := json.Unmarshal(trimmed, &gens); err != nil {
			return "", fmt.Errorf("decoding generator response: %w", err)
		}
		if len(gens) == 0 {
			return "", nil
		}
		return gens[0].GeneratedText, nil
	}
	var gen generation
	if err := json.Unmarshal(trimmed, &gen); err != nil {
		return "", fmt.Errorf("decoding generator response: %w", err)
	}
	return gen.GeneratedText, nil
}
