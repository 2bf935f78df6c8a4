package utils

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/ojpb2000/voice-chatbot-backend/internal/logger"
)

// SetupSSEHeaders marks the response as a long-lived event stream.
func SetupSSEHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
}

// SendSSEChunk marshals the payload into a single data frame and flushes it.
func SendSSEChunk(w http.ResponseWriter, flusher http.Flusher, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		logger.Log.Printf("failed to marshal sse payload: %v", err)
		return
	}

	fmt.Fprintf(w, "data: %s\n\n", data)
	flusher.Flush()
}

// SendSSEComment emits a comment frame. Intermediaries see traffic on the
// connection without clients receiving an event; used for heartbeats.
func SendSSEComment(w http.ResponseWriter, flusher http.Flusher, comment string) {
	fmt.Fprintf(w, ": %s\n\n", comment)
	flusher.Flush()
}

// SendSSEDone emits the terminal sentinel clients watch for.
func SendSSEDone(w http.ResponseWriter, flusher http.Flusher) {
	fmt.Fprint(w, "data: [DONE]\n\n")
	flusher.Flush()
}
