// Package llm provides the generative-text oracle client. The oracle is an
// OpenAI-compatible chat-completions endpoint reached over HTTP, in plain
// request/response mode or as a server-sent-event token stream.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client handles communication with the chat-completions API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	model      string
	timeout    time.Duration
}

// Config holds oracle client configuration.
type Config struct {
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
}

// NewClient creates a new oracle client.
func NewClient(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("oracle base URL is required")
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("oracle model is required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}

	return &Client{
		httpClient: &http.Client{},
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
		timeout:    timeout,
	}, nil
}

// Message represents a chat message.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request represents the API request structure.
type Request struct {
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`
	Stream   bool      `json:"stream"`
}

// Response represents the API response structure.
type Response struct {
	ID      string   `json:"id"`
	Choices []Choice `json:"choices"`
	Error   *APIErr  `json:"error,omitempty"`
}

// Choice represents a single completion choice.
type Choice struct {
	Delta        Delta  `json:"delta"`
	Message      Delta  `json:"message"`
	FinishReason string `json:"finish_reason"`
}

// Delta represents message content in plain and streaming responses.
type Delta struct {
	Content string `json:"content"`
	Role    string `json:"role"`
}

// APIErr represents an API-level error payload.
type APIErr struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

// Complete sends a system prompt and user message and returns the full reply.
func (c *Client) Complete(ctx context.Context, system, user string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.send(ctx, system, user, false)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	var apiResp Response
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return "", fmt.Errorf("unmarshal response: %w", err)
	}
	if apiResp.Error != nil {
		return "", fmt.Errorf("oracle error: %s", apiResp.Error.Message)
	}
	if len(apiResp.Choices) == 0 {
		return "", fmt.Errorf("oracle returned no choices")
	}

	content := apiResp.Choices[0].Message.Content
	if content == "" {
		content = apiResp.Choices[0].Delta.Content
	}
	return content, nil
}

// CompleteStream sends a system prompt and user message and returns a lazy,
// single-pass token stream. The caller owns the stream and must drain or
// Close it; closing early discards unread oracle output.
func (c *Client) CompleteStream(ctx context.Context, system, user string) (Stream, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)

	resp, err := c.send(ctx, system, user, true)
	if err != nil {
		cancel()
		return nil, err
	}

	return newSSEStream(resp.Body, cancel), nil
}

// send issues one chat-completions request.
func (c *Client) send(ctx context.Context, system, user string, stream bool) (*http.Response, error) {
	reqBody := Request{
		Model: c.model,
		Messages: []Message{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Stream: stream,
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		bodyBytes, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("oracle returned status %d: %s", resp.StatusCode, string(bodyBytes))
	}

	return resp, nil
}

// Model returns the model being used.
func (c *Client) Model() string {
	return c.model
}
