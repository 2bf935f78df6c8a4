package stream

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ojpb2000/voice-chatbot-backend/internal/config"
	chatmodel "github.com/ojpb2000/voice-chatbot-backend/internal/model/chat"
	"github.com/ojpb2000/voice-chatbot-backend/internal/service/ai"
)

func providerConfig(baseURL string) config.AIConfig {
	return config.AIConfig{
		APIKey:      "sk-test",
		Model:       "gpt-4o-mini",
		BaseURL:     baseURL,
		Temperature: 0.7,
		MaxTokens:   300,
		Timeout:     5 * time.Second,
	}
}

func setupRouter(client *ai.Client) *chi.Mux {
	r := chi.NewRouter()
	New(client).RegisterRoutes(r)
	return r
}

// streamingProvider emits one delta frame per word, then the sentinel.
func streamingProvider(t *testing.T, words []string) *httptest.Server {
	t.Helper()

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Stream bool `json:"stream"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode provider request: %v", err)
		}
		if !req.Stream {
			t.Error("expected stream=true")
		}

		w.Header().Set("Content-Type", "text/event-stream")
		for _, word := range words {
			chunk, _ := json.Marshal(map[string]any{
				"choices": []map[string]any{{"delta": map[string]string{"content": word}}},
			})
			fmt.Fprintf(w, "data: %s\n\n", chunk)
		}
		fmt.Fprint(w, "data: [DONE]\n\n")
	}))
}

// parseSSE splits a recorded SSE body into data payloads, dropping comments.
func parseSSE(t *testing.T, body io.Reader) []string {
	t.Helper()

	var payloads []string
	sc := bufio.NewScanner(body)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if strings.HasPrefix(line, "data:") {
			payloads = append(payloads, strings.TrimSpace(strings.TrimPrefix(line, "data:")))
		}
	}
	if err := sc.Err(); err != nil {
		t.Fatalf("scan sse body: %v", err)
	}
	return payloads
}

func TestStreamRelaysTokensInOrder(t *testing.T) {
	words := []string{"My ", "CGM ", "beeps ", "a lot."}
	srv := streamingProvider(t, words)
	defer srv.Close()

	r := setupRouter(ai.NewClient(providerConfig(srv.URL)))

	req := httptest.NewRequest(http.MethodGet, "/chat/stream?message=tell+me", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if ct := resp.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("unexpected content type: %s", ct)
	}

	payloads := parseSSE(t, resp.Body)
	if len(payloads) == 0 {
		t.Fatal("expected sse payloads")
	}
	if payloads[len(payloads)-1] != "[DONE]" {
		t.Fatalf("expected terminal sentinel, got %q", payloads[len(payloads)-1])
	}

	var text strings.Builder
	for _, payload := range payloads[:len(payloads)-1] {
		var frame struct {
			Token string `json:"token"`
		}
		if err := json.Unmarshal([]byte(payload), &frame); err != nil {
			t.Fatalf("unmarshal frame %q: %v", payload, err)
		}
		text.WriteString(frame.Token)
	}
	if text.String() != "My CGM beeps a lot." {
		t.Fatalf("unexpected concatenation: %q", text.String())
	}
}

// The streamed tokens must concatenate to exactly what the synchronous
// endpoint would return for the same mocked provider output.
func TestStreamMatchesSingleShotReply(t *testing.T) {
	const full = "Honestly, alarm fatigue is real."
	words := strings.SplitAfter(full, " ")

	streamSrv := streamingProvider(t, words)
	defer streamSrv.Close()

	syncSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"role": "assistant", "content": full}},
			},
		})
	}))
	defer syncSrv.Close()

	r := setupRouter(ai.NewClient(providerConfig(streamSrv.URL)))
	req := httptest.NewRequest(http.MethodGet, "/chat/stream?message=hi", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	var streamed strings.Builder
	for _, payload := range parseSSE(t, resp.Body) {
		if payload == "[DONE]" {
			continue
		}
		var frame struct {
			Token string `json:"token"`
		}
		if err := json.Unmarshal([]byte(payload), &frame); err != nil {
			t.Fatalf("unmarshal frame: %v", err)
		}
		streamed.WriteString(frame.Token)
	}

	syncClient := ai.NewClient(providerConfig(syncSrv.URL))
	reply, err := syncClient.Complete(context.Background(), []chatmodel.Turn{chatmodel.UserTurn("hi")})
	if err != nil {
		t.Fatalf("Complete err: %v", err)
	}

	if streamed.String() != reply {
		t.Fatalf("stream %q != single-shot %q", streamed.String(), reply)
	}
}

func TestStreamUpstreamFailureEndsWithSentinel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	r := setupRouter(ai.NewClient(providerConfig(srv.URL)))
	req := httptest.NewRequest(http.MethodGet, "/chat/stream?message=hi", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	payloads := parseSSE(t, resp.Body)
	if len(payloads) != 2 {
		t.Fatalf("expected error event + sentinel, got %v", payloads)
	}

	var frame struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal([]byte(payloads[0]), &frame); err != nil {
		t.Fatalf("unmarshal error frame: %v", err)
	}
	if frame.Error == "" {
		t.Fatal("expected error event first")
	}
	if payloads[1] != "[DONE]" {
		t.Fatalf("expected terminal sentinel, got %q", payloads[1])
	}
}

func TestStreamTruncatedUpstreamStillTerminates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Stream ends without a [DONE] sentinel.
		fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{\"content\":\"cut \"}}]}\n\n")
	}))
	defer srv.Close()

	r := setupRouter(ai.NewClient(providerConfig(srv.URL)))
	req := httptest.NewRequest(http.MethodGet, "/chat/stream?message=hi", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	payloads := parseSSE(t, resp.Body)
	if payloads[len(payloads)-1] != "[DONE]" {
		t.Fatalf("expected terminal sentinel, got %v", payloads)
	}
}

func TestStreamMissingMessage(t *testing.T) {
	r := setupRouter(ai.NewClient(providerConfig("http://localhost:0")))

	req := httptest.NewRequest(http.MethodGet, "/chat/stream", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestStreamMissingAPIKey(t *testing.T) {
	r := setupRouter(nil)

	req := httptest.NewRequest(http.MethodGet, "/chat/stream?message=hi", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", resp.Code)
	}
	if ct := resp.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("expected plain json error, got %s", ct)
	}
}
