// Package completion talks to an Ollama-style /api/generate endpoint.
package completion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultURL is a local Ollama instance.
const DefaultURL = "http://localhost:11434/api/generate"

// Generator is the part of Client the rest of the module depends on.
type Generator interface {
	GenerateRaw(ctx context.Context, model, prompt string) (string, error)
	Generate(ctx context.Context, model, prompt string) (string, error)
}

type Client struct {
	URL    string
	Client *http.Client
}

func NewClient(url string, timeout time.Duration) *Client {
	if url == "" {
		url = DefaultURL
	}
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &Client{
		URL:    url,
		Client: &http.Client{Timeout: timeout},
	}
}

type generateRequest struct {
	Model  string `json:"model"`
	Stream bool   `json:"stream"`
	Prompt string `json:"prompt"`
}

// GenerateResponse is the non-streaming reply. Every field may be absent.
type GenerateResponse struct {
	Model    *string `json:"model"`
	Response *string `json:"response"`
	Done     *bool   `json:"done"`
}

// GenerateRaw sends the prompt and returns the undecoded response body.
func (c *Client) GenerateRaw(ctx context.Context, model, prompt string) (string, error) {
	body, err := json.Marshal(generateRequest{Model: model, Stream: false, Prompt: prompt})
	if err != nil {
		return "", fmt.Errorf("completion: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.URL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("completion: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("completion: request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("completion: read body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("completion: status %d: %s", resp.StatusCode, truncate(string(raw), 300))
	}
	return string(raw), nil
}

// Generate sends the prompt and returns the decoded "response" field.
func (c *Client) Generate(ctx context.Context, model, prompt string) (string, error) {
	raw, err := c.GenerateRaw(ctx, model, prompt)
	if err != nil {
		return "", err
	}

	var out GenerateResponse
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return "", fmt.Errorf("completion: decode: %w", err)
	}
	if out.Response == nil {
		return "", fmt.Errorf("completion: response field missing")
	}
	return *out.Response, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
