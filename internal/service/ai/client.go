package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/ojpb2000/voice-chatbot-backend/internal/config"
	"github.com/ojpb2000/voice-chatbot-backend/internal/logger"
	"github.com/ojpb2000/voice-chatbot-backend/internal/model/chat"
)

var ErrEmptyCompletion = errors.New("empty response from model")

// APIError carries the provider's HTTP failure payload so handlers can attach
// it to their own error responses for diagnostics.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("provider request failed: status %d: %s", e.StatusCode, e.Body)
}

// Client talks to an OpenAI-compatible completions provider over REST.
type Client struct {
	cfg        config.AIConfig
	httpClient *http.Client
}

// NewClient builds a provider client from configuration. The configured
// timeout applies to single-shot calls only; streaming requests rely on the
// request context instead, so long replies are not cut off mid-stream.
func NewClient(cfg config.AIConfig) *Client {
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{},
	}
}

type completionRequest struct {
	Model       string      `json:"model"`
	Messages    []chat.Turn `json:"messages"`
	Temperature float64     `json:"temperature"`
	MaxTokens   int         `json:"max_tokens"`
	Stream      bool        `json:"stream,omitempty"`
}

type completionResponse struct {
	Choices []struct {
		Message chat.Turn `json:"message"`
	} `json:"choices"`
}

// Complete performs a synchronous completion and returns the first choice's
// text, trimmed.
func (c *Client) Complete(ctx context.Context, turns []chat.Turn) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	resp, err := c.postCompletion(ctx, turns, false)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var decoded completionResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("failed to decode completion response: %w", err)
	}

	if len(decoded.Choices) == 0 {
		return "", ErrEmptyCompletion
	}

	reply := strings.TrimSpace(decoded.Choices[0].Message.Content)
	if reply == "" {
		return "", ErrEmptyCompletion
	}

	return reply, nil
}

// StreamCompletion opens a streamed completion and hands back the provider's
// event stream. The caller owns the returned body and must close it; closing
// it (or cancelling ctx) aborts the upstream read.
func (c *Client) StreamCompletion(ctx context.Context, turns []chat.Turn) (io.ReadCloser, error) {
	resp, err := c.postCompletion(ctx, turns, true)
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}

func (c *Client) postCompletion(ctx context.Context, turns []chat.Turn, stream bool) (*http.Response, error) {
	if c.cfg.APIKey == "" {
		return nil, errors.New("provider api key is not configured")
	}

	payload := completionRequest{
		Model:       c.cfg.Model,
		Messages:    turns,
		Temperature: c.cfg.Temperature,
		MaxTokens:   c.cfg.MaxTokens,
		Stream:      stream,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal completion request: %w", err)
	}

	url := c.cfg.BaseURL + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build completion request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("completion request failed: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer resp.Body.Close()
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4*1024))
		apiErr := &APIError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(raw))}
		logger.Log.Printf("[ai] provider error: %v", apiErr)
		return nil, apiErr
	}

	return resp, nil
}
