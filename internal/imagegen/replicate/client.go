package replicate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const (
	DefaultBaseURL      = "https://api.replicate.com/v1"
	DefaultPollInterval = 500 * time.Millisecond
)

// Prediction statuses
const (
	StatusSucceeded = "succeeded"
	StatusFailed    = "failed"
	StatusCanceled  = "canceled"
)

// Model is the subset of a Replicate model we need
type Model struct {
	Owner         string        `json:"owner"`
	Name          string        `json:"name"`
	LatestVersion *ModelVersion `json:"latest_version"`
}

// ModelVersion identifies one published version of a model
type ModelVersion struct {
	ID        string `json:"id"`
	CreatedAt string `json:"created_at,omitempty"`
}

// Prediction is one image generation job
type Prediction struct {
	ID      string          `json:"id"`
	Version string          `json:"version"`
	Status  string          `json:"status"`
	Input   map[string]any  `json:"input,omitempty"`
	Output  json.RawMessage `json:"output,omitempty"`
	Error   any             `json:"error,omitempty"`
	URLs    struct {
		Get    string `json:"get"`
		Cancel string `json:"cancel"`
	} `json:"urls"`
}

// Terminal reports whether the prediction reached a final status
func (p *Prediction) Terminal() bool {
	switch p.Status {
	case StatusSucceeded, StatusFailed, StatusCanceled:
		return true
	}
	return false
}

// OutputURL returns the image URL, or the first one when output is an array
func (p *Prediction) OutputURL() (string, error) {
	if len(p.Output) == 0 || string(p.Output) == "null" {
		return "", fmt.Errorf("prediction %s has no output", p.ID)
	}

	var single string
	if err := json.Unmarshal(p.Output, &single); err == nil {
		return single, nil
	}

	var many []string
	if err := json.Unmarshal(p.Output, &many); err != nil {
		return "", fmt.Errorf("unexpected prediction output: %w", err)
	}
	if len(many) == 0 || many[0] == "" {
		return "", fmt.Errorf("prediction %s returned an empty output list", p.ID)
	}
	return many[0], nil
}

// Client wraps HTTP communication with the Replicate API
type Client struct {
	baseURL      string
	token        string
	pollInterval time.Duration
	client       *http.Client
}

// NewClient creates a new Replicate client
func NewClient(token, baseURL string, pollInterval time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if pollInterval <= 0 {
		pollInterval = DefaultPollInterval
	}
	return &Client{
		baseURL:      baseURL,
		token:        token,
		pollInterval: pollInterval,
		client: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// IsConfigured checks if the client has an API token
func (c *Client) IsConfigured() bool {
	return c.token != ""
}

// GetModel fetches a model and its latest version
func (c *Client) GetModel(ctx context.Context, owner, name string) (*Model, error) {
	var model Model
	path := fmt.Sprintf("/models/%s/%s", url.PathEscape(owner), url.PathEscape(name))
	if err := c.do(ctx, http.MethodGet, path, nil, &model); err != nil {
		return nil, fmt.Errorf("failed to get model %s/%s: %w", owner, name, err)
	}
	return &model, nil
}

// CreatePrediction submits a new prediction for a model version
func (c *Client) CreatePrediction(ctx context.Context, version string, input map[string]any) (*Prediction, error) {
	body := map[string]any{
		"version": version,
		"input":   input,
	}
	var prediction Prediction
	if err := c.do(ctx, http.MethodPost, "/predictions", body, &prediction); err != nil {
		return nil, fmt.Errorf("failed to create prediction: %w", err)
	}
	return &prediction, nil
}

// GetPrediction fetches the current state of a prediction
func (c *Client) GetPrediction(ctx context.Context, id string) (*Prediction, error) {
	var prediction Prediction
	if err := c.do(ctx, http.MethodGet, "/predictions/"+url.PathEscape(id), nil, &prediction); err != nil {
		return nil, fmt.Errorf("failed to get prediction %s: %w", id, err)
	}
	return &prediction, nil
}

// Wait blocks until the prediction reaches a terminal status or ctx is done.
// A failed or canceled prediction is returned as an error.
func (c *Client) Wait(ctx context.Context, prediction *Prediction) (*Prediction, error) {
	current := prediction
	for !current.Terminal() {
		timer := time.NewTimer(c.pollInterval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}

		next, err := c.GetPrediction(ctx, current.ID)
		if err != nil {
			return nil, err
		}
		current = next
	}

	if current.Status != StatusSucceeded {
		return current, fmt.Errorf("prediction %s %s: %v", current.ID, current.Status, current.Error)
	}
	return current, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("replicate error (HTTP %d): %s", resp.StatusCode, string(data))
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
