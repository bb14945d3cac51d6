// Package ai talks to the Ollama backend and dispatches completion
// jobs into chat rooms.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// StatusError marks a response with a non-success status code.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("ai backend returned status %d", e.Code)
}

// Client is a thin HTTP client for the Ollama API.
type Client struct {
	baseURL string
	model   string
	http    *http.Client
	log     *zerolog.Logger
}

// NewClient builds a client for the given base URL and model. The
// timeout bounds a single generation call.
func NewClient(baseURL, model string, timeout time.Duration, logger *zerolog.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		model:   model,
		http:    &http.Client{Timeout: timeout},
		log:     logger,
	}
}

// Model returns the configured model name.
func (c *Client) Model() string {
	return c.model
}

type generateRequest struct {
	Model   string           `json:"model"`
	Prompt  string           `json:"prompt"`
	Stream  bool             `json:"stream"`
	Options *generateOptions `json:"options,omitempty"`
}

type generateOptions struct {
	Temperature float64 `json:"temperature,omitempty"`
	NumPredict  int     `json:"num_predict,omitempty"`
}

type generateResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

type tagsResponse struct {
	Models []ModelInfo `json:"models"`
}

// ModelInfo describes one model known to the backend.
type ModelInfo struct {
	Name string `json:"name"`
}

// Generate runs a synchronous completion for prompt.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	payload, err := json.Marshal(generateRequest{
		Model:  c.model,
		Prompt: prompt,
		Stream: false,
		Options: &generateOptions{
			Temperature: 0.7,
			NumPredict:  500,
		},
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/generate", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("generate request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", &StatusError{Code: resp.StatusCode}
	}

	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	return out.Response, nil
}

// Models lists the models available on the backend. Doubles as the
// health check for the status endpoint.
func (c *Client) Models(ctx context.Context) ([]ModelInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/tags", nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tags request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{Code: resp.StatusCode}
	}

	var out tagsResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return out.Models, nil
}

// WaitReady polls the backend until it answers or attempts run out.
// Returns false when the backend never came up; the server then starts
// degraded, with AI requests answered by the fallback message.
func (c *Client) WaitReady(ctx context.Context, attempts int, interval time.Duration) bool {
	for i := 0; i < attempts; i++ {
		if _, err := c.Models(ctx); err == nil {
			c.log.Info().Str("url", c.baseURL).Msg("ai backend is ready")
			return true
		} else {
			c.log.Info().Err(err).Int("attempt", i+1).Int("max", attempts).Msg("waiting for ai backend")
		}

		select {
		case <-ctx.Done():
			return false
		case <-time.After(interval):
		}
	}
	return false
}

// EnsureModel pulls the configured model unless the backend already
// has it. Pull failures are retried a bounded number of times.
func (c *Client) EnsureModel(ctx context.Context, attempts int) error {
	models, err := c.Models(ctx)
	if err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	for _, m := range models {
		if m.Name == c.model || m.Name == c.model+":latest" {
			c.log.Info().Str("model", c.model).Msg("model already available")
			return nil
		}
	}

	var lastErr error
	for i := 0; i < attempts; i++ {
		c.log.Info().Str("model", c.model).Int("attempt", i+1).Msg("pulling model")
		if err := c.pull(ctx); err != nil {
			lastErr = err
			c.log.Warn().Err(err).Int("attempt", i+1).Msg("model pull failed")
			continue
		}
		c.log.Info().Str("model", c.model).Msg("model pulled")
		return nil
	}
	return fmt.Errorf("pull model %s: %w", c.model, lastErr)
}

func (c *Client) pull(ctx context.Context) error {
	payload, err := json.Marshal(map[string]string{"name": c.model})
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/pull", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	// Model pulls stream progress lines and can take far longer than a
	// generation call, so they bypass the per-call client timeout.
	pullClient := &http.Client{}
	resp, err := pullClient.Do(req)
	if err != nil {
		return fmt.Errorf("pull request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &StatusError{Code: resp.StatusCode}
	}

	// Drain the progress stream without decoding it.
	if _, err := io.Copy(io.Discard, resp.Body); err != nil {
		return fmt.Errorf("drain pull stream: %w", err)
	}
	return nil
}
