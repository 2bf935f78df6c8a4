package utils

import (
	"encoding/json"
	"net/http"

	"github.com/ojpb2000/voice-chatbot-backend/internal/logger"
)

// RespondJSON writes a JSON response with the given status.
func RespondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Log.Printf("failed to encode response: %v", err)
	}
}

// RespondError writes an error response.
func RespondError(w http.ResponseWriter, status int, message string) {
	RespondJSON(w, status, map[string]string{"error": message})
}
