package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/ojpb2000/voice-chatbot-backend/internal/config"
	"github.com/ojpb2000/voice-chatbot-backend/internal/logger"
)

// RealtimeSession is the ephemeral credential minted for one realtime voice
// connection. It is scoped to a single socket pair and never persisted.
type RealtimeSession struct {
	ClientSecret string
	SessionID    string
}

type realtimeSessionRequest struct {
	Instructions            string   `json:"instructions"`
	Voice                   string   `json:"voice"`
	Model                   string   `json:"model"`
	Tools                   []any    `json:"tools"`
	ToolChoice              string   `json:"tool_choice"`
	Temperature             float64  `json:"temperature"`
	MaxResponseOutputTokens int      `json:"max_response_output_tokens"`
}

type realtimeSessionResponse struct {
	ID           string          `json:"id"`
	ClientSecret json.RawMessage `json:"client_secret"`
}

// MintRealtimeSession asks the provider for a short-lived voice session token
// so the long-lived API key never reaches the browser.
func (c *Client) MintRealtimeSession(ctx context.Context, rt config.RealtimeConfig) (*RealtimeSession, error) {
	if c.cfg.APIKey == "" {
		return nil, fmt.Errorf("provider api key is not configured")
	}

	payload := realtimeSessionRequest{
		Instructions:            RealtimeInstructions,
		Voice:                   rt.Voice,
		Model:                   rt.Model,
		Tools:                   []any{},
		ToolChoice:              "auto",
		Temperature:             c.cfg.Temperature,
		MaxResponseOutputTokens: c.cfg.MaxTokens,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal realtime session request: %w", err)
	}

	url := c.cfg.BaseURL + "/realtime/sessions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build realtime session request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("realtime session request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4*1024))
		apiErr := &APIError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(raw))}
		logger.Log.Printf("[ai] realtime session creation failed: %v", apiErr)
		return nil, apiErr
	}

	var decoded realtimeSessionResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("failed to decode realtime session response: %w", err)
	}

	secret := decodeClientSecret(decoded.ClientSecret)
	if secret == "" {
		return nil, ErrEmptyCompletion
	}

	return &RealtimeSession{ClientSecret: secret, SessionID: decoded.ID}, nil
}

// RealtimeSocketURL builds the provider websocket endpoint for a minted
// session, translating the configured HTTP base URL to its ws(s) equivalent.
func (c *Client) RealtimeSocketURL(rt config.RealtimeConfig, clientSecret string) string {
	base := c.cfg.BaseURL
	switch {
	case strings.HasPrefix(base, "https://"):
		base = "wss://" + strings.TrimPrefix(base, "https://")
	case strings.HasPrefix(base, "http://"):
		base = "ws://" + strings.TrimPrefix(base, "http://")
	}

	query := url.Values{}
	query.Set("model", rt.Model)
	query.Set("client_secret", clientSecret)
	return base + "/realtime?" + query.Encode()
}

// decodeClientSecret accepts both wire shapes the provider has used: a bare
// string and an object carrying the secret under "value".
func decodeClientSecret(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}

	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil {
		return asString
	}

	var asObject struct {
		Value string `json:"value"`
	}
	if err := json.Unmarshal(raw, &asObject); err == nil {
		return asObject.Value
	}

	return ""
}
