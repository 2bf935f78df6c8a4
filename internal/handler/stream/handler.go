package stream

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ojpb2000/voice-chatbot-backend/internal/logger"
	chatmodel "github.com/ojpb2000/voice-chatbot-backend/internal/model/chat"
	"github.com/ojpb2000/voice-chatbot-backend/internal/service/ai"
	"github.com/ojpb2000/voice-chatbot-backend/pkg/utils"
)

// heartbeatInterval keeps intermediaries from timing out idle stream
// connections while the model thinks.
const heartbeatInterval = 15 * time.Second

// Handler relays a streamed completion to the client as Server-Sent Events.
type Handler struct {
	aiClient *ai.Client
}

// New creates the stream handler. A nil client reports a configuration error.
func New(aiClient *ai.Client) *Handler {
	return &Handler{aiClient: aiClient}
}

// RegisterRoutes mounts the streaming endpoint.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/chat/stream", h.handleStream)
}

func (h *Handler) handleStream(w http.ResponseWriter, r *http.Request) {
	if h.aiClient == nil {
		utils.RespondError(w, http.StatusInternalServerError, "Missing OPENAI_API_KEY")
		return
	}

	message := r.URL.Query().Get("message")
	if message == "" {
		utils.RespondError(w, http.StatusBadRequest, "Missing message")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		utils.RespondError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	utils.SetupSSEHeaders(w)

	turns := []chatmodel.Turn{
		chatmodel.SystemTurn(ai.StreamPersonaPrompt),
		chatmodel.UserTurn(message),
	}

	// The upstream request inherits the request context, so a client
	// disconnect aborts the provider read as well.
	body, err := h.aiClient.StreamCompletion(r.Context(), turns)
	if err != nil {
		logger.Log.Printf("[stream] upstream request failed: %v", err)
		utils.SendSSEChunk(w, flusher, map[string]string{"error": "Upstream error"})
		utils.SendSSEDone(w, flusher)
		return
	}
	defer body.Close()

	h.relay(r.Context(), w, flusher, body)
}

// relay forwards decoded token deltas until the terminal sentinel, the end of
// the upstream stream, or client disconnect. The terminal sentinel is always
// emitted unless the client itself is gone.
func (h *Handler) relay(ctx context.Context, w http.ResponseWriter, flusher http.Flusher, body io.Reader) {
	events := make(chan ai.DeltaEvent, 16)
	go readEvents(ctx, body, events)

	ticker := time.NewTicker(heartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Log.Printf("[stream] client disconnected")
			return
		case <-ticker.C:
			utils.SendSSEComment(w, flusher, "ping")
		case ev, ok := <-events:
			if !ok || ev.Done {
				utils.SendSSEDone(w, flusher)
				return
			}
			utils.SendSSEChunk(w, flusher, map[string]string{"token": ev.Token})
		}
	}
}

// readEvents pumps scanner output into the channel, closing it when the
// upstream stream ends for any reason.
func readEvents(ctx context.Context, body io.Reader, events chan<- ai.DeltaEvent) {
	defer close(events)

	sc := ai.NewStreamScanner(body)
	for {
		ev, err := sc.Next()
		if err != nil {
			if !errors.Is(err, io.EOF) && ctx.Err() == nil {
				logger.Log.Printf("[stream] upstream read failed: %v", err)
			}
			return
		}

		select {
		case events <- ev:
		case <-ctx.Done():
			return
		}

		if ev.Done {
			return
		}
	}
}
