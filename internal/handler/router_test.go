package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ojpb2000/voice-chatbot-backend/internal/config"
	authService "github.com/ojpb2000/voice-chatbot-backend/internal/service/auth"
)

func setupRouter() http.Handler {
	cfg := &config.Config{
		Auth: config.AuthConfig{Username: "gato", Password: "gato123"},
		CORS: config.CORSConfig{AllowedOrigins: []string{"http://localhost:3000"}},
		Realtime: config.RealtimeConfig{
			Model: "gpt-4o-realtime-preview-2024-10-01",
			Voice: "alloy",
		},
	}
	authSvc := authService.NewService(cfg.Auth, authService.NewMemoryStore())
	return NewRouter(cfg, authSvc, nil)
}

func TestHealthEndpoint(t *testing.T) {
	r := setupRouter()

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	var body struct {
		OK      bool   `json:"ok"`
		Service string `json:"service"`
		Time    string `json:"time"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if !body.OK || body.Service != "voice-chatbot-backend" || body.Time == "" {
		t.Fatalf("unexpected body: %+v", body)
	}
}

func TestRoutesAreMounted(t *testing.T) {
	r := setupRouter()

	cases := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/auth"},
		{http.MethodPost, "/api/chat"},
		{http.MethodGet, "/api/chat/stream"},
		{http.MethodPost, "/api/realtime/session"},
	}

	for _, tc := range cases {
		req := httptest.NewRequest(tc.method, tc.path, nil)
		resp := httptest.NewRecorder()
		r.ServeHTTP(resp, req)

		if resp.Code == http.StatusNotFound || resp.Code == http.StatusMethodNotAllowed {
			t.Fatalf("%s %s not mounted: %d", tc.method, tc.path, resp.Code)
		}
	}
}

func TestUnknownRoute(t *testing.T) {
	r := setupRouter()

	req := httptest.NewRequest(http.MethodGet, "/api/nope", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
}

func TestCORSAppliedAtRouter(t *testing.T) {
	r := setupRouter()

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if got := resp.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Fatalf("expected CORS header, got %q", got)
	}
}
