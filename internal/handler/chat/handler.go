package chat

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/ojpb2000/voice-chatbot-backend/internal/logger"
	chatmodel "github.com/ojpb2000/voice-chatbot-backend/internal/model/chat"
	"github.com/ojpb2000/voice-chatbot-backend/internal/service/ai"
	"github.com/ojpb2000/voice-chatbot-backend/pkg/utils"
)

// Handler relays single-shot chat requests to the completions provider.
type Handler struct {
	aiClient *ai.Client
}

// New creates the chat handler. A nil client means the provider credential is
// missing; the endpoint then answers with a configuration error instead of
// calling out.
func New(aiClient *ai.Client) *Handler {
	return &Handler{aiClient: aiClient}
}

// RegisterRoutes mounts the chat endpoint.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/chat", h.handleChat)
}

func (h *Handler) handleChat(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Message string           `json:"message"`
		History []chatmodel.Turn `json:"history"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "Invalid message")
		return
	}

	if strings.TrimSpace(payload.Message) == "" {
		utils.RespondError(w, http.StatusBadRequest, "Invalid message")
		return
	}

	if h.aiClient == nil {
		utils.RespondError(w, http.StatusInternalServerError, "Missing OPENAI_API_KEY")
		return
	}

	turns := buildTurns(payload.History, payload.Message)

	reply, err := h.aiClient.Complete(r.Context(), turns)
	if err != nil {
		h.respondCompletionError(w, err)
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]string{"reply": reply})
}

// buildTurns assembles [system persona] + prior turns + the new user message.
// History entries with unknown roles or empty content are dropped.
func buildTurns(history []chatmodel.Turn, message string) []chatmodel.Turn {
	turns := make([]chatmodel.Turn, 0, len(history)+2)
	turns = append(turns, chatmodel.SystemTurn(ai.PersonaPrompt))

	for _, turn := range history {
		if turn.Content == "" {
			continue
		}
		switch turn.Role {
		case chatmodel.RoleUser:
			turns = append(turns, chatmodel.UserTurn(turn.Content))
		case chatmodel.RoleAssistant:
			turns = append(turns, chatmodel.AssistantTurn(turn.Content))
		}
	}

	return append(turns, chatmodel.UserTurn(message))
}

func (h *Handler) respondCompletionError(w http.ResponseWriter, err error) {
	logger.Log.Printf("[chat] completion failed: %v", err)

	if errors.Is(err, ai.ErrEmptyCompletion) {
		utils.RespondError(w, http.StatusBadGateway, "Empty response from model")
		return
	}

	var apiErr *ai.APIError
	if errors.As(err, &apiErr) {
		utils.RespondJSON(w, http.StatusInternalServerError, map[string]string{
			"error":   "Chat failed",
			"details": apiErr.Body,
		})
		return
	}

	utils.RespondJSON(w, http.StatusInternalServerError, map[string]string{
		"error":   "Chat failed",
		"details": err.Error(),
	})
}
