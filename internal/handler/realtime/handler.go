package realtime

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/ojpb2000/voice-chatbot-backend/internal/config"
	"github.com/ojpb2000/voice-chatbot-backend/internal/logger"
	"github.com/ojpb2000/voice-chatbot-backend/internal/service/ai"
	"github.com/ojpb2000/voice-chatbot-backend/pkg/utils"
)

// Handler mints ephemeral realtime credentials and proxies the browser's
// websocket to the provider's realtime endpoint. The proxy never inspects
// voice frames; it exists to keep the long-lived API key off the browser.
type Handler struct {
	aiClient *ai.Client
	rtCfg    config.RealtimeConfig
	upgrader websocket.Upgrader
	dialer   *websocket.Dialer
}

// New creates the realtime handler. A nil client reports a configuration
// error on both routes.
func New(aiClient *ai.Client, rtCfg config.RealtimeConfig) *Handler {
	return &Handler{
		aiClient: aiClient,
		rtCfg:    rtCfg,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		dialer: websocket.DefaultDialer,
	}
}

// RegisterRoutes mounts the credential and proxy endpoints.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/realtime/session", h.handleCreateSession)
	r.Get("/realtime/ws", h.handleProxy)
}

// handleCreateSession mints an ephemeral credential for clients that connect
// to the provider directly.
func (h *Handler) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	if h.aiClient == nil {
		utils.RespondError(w, http.StatusInternalServerError, "Missing OPENAI_API_KEY")
		return
	}

	session, err := h.aiClient.MintRealtimeSession(r.Context(), h.rtCfg)
	if err != nil {
		logger.Log.Printf("[realtime] session creation failed: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, "Failed to create realtime session")
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]string{
		"client_secret": session.ClientSecret,
		"session_id":    session.SessionID,
	})
}

type clientSignal struct {
	Type string `json:"type"`
}

// handleProxy upgrades the browser connection and, once the client sends a
// connect signal, bridges it to the provider's realtime socket.
func (h *Handler) handleProxy(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Log.Printf("[realtime] upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	connID := uuid.NewString()
	logger.Log.Printf("[realtime] client connected conn=%s", connID)

	// Wait for the connect signal before touching the provider.
	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return
		}

		var signal clientSignal
		if err := json.Unmarshal(raw, &signal); err != nil {
			sendErrorFrame(conn, "invalid message")
			continue
		}
		if signal.Type == "connect" {
			break
		}
		// Nothing to forward to yet; drop the frame.
	}

	if h.aiClient == nil {
		sendErrorFrame(conn, "Missing OPENAI_API_KEY")
		return
	}

	session, err := h.aiClient.MintRealtimeSession(r.Context(), h.rtCfg)
	if err != nil {
		logger.Log.Printf("[realtime] mint failed conn=%s: %v", connID, err)
		sendErrorFrame(conn, "Failed to create realtime session")
		return
	}

	upstream, resp, err := h.dialer.DialContext(r.Context(), h.aiClient.RealtimeSocketURL(h.rtCfg, session.ClientSecret), nil)
	if err != nil {
		status := 0
		if resp != nil {
			status = resp.StatusCode
		}
		logger.Log.Printf("[realtime] upstream dial failed conn=%s status=%d: %v", connID, status, err)
		sendErrorFrame(conn, "Failed to connect upstream")
		return
	}
	defer upstream.Close()

	if err := conn.WriteJSON(map[string]string{"type": "connected"}); err != nil {
		return
	}

	logger.Log.Printf("[realtime] relay established conn=%s session=%s", connID, session.SessionID)
	runRelay(conn, upstream, connID)
}

// pingInterval paces keepalive pings on the client socket during relay.
// A variable so tests can shorten it.
var pingInterval = 30 * time.Second

const pingWriteWait = 10 * time.Second

// relayResult records which side of the bridge a forwarder error came from.
// Client-side errors mean the browser went away; upstream-side errors are
// relay failures the client should hear about.
type relayResult struct {
	upstreamSide bool
	err          error
}

// runRelay forwards frames verbatim in both directions until either socket
// terminates. The first failure closes both sides; once both forwarders have
// exited, an upstream-side failure is reported to the client before teardown.
func runRelay(client, upstream *websocket.Conn, connID string) {
	results := make(chan relayResult, 2)

	go func() { results <- relayResult{upstreamSide: true, err: forward(client, upstream)} }()
	go func() { results <- relayResult{upstreamSide: false, err: forward(upstream, client)} }()

	stopPings := make(chan struct{})
	go pingClient(client, stopPings)

	first := <-results

	// Unblock whichever forwarder is still reading: close the upstream, and
	// expire any pending read on the client without closing it so an error
	// frame can still be written. After both forwarders have exited this
	// goroutine is the sole message writer on the client socket.
	upstream.Close()
	client.SetReadDeadline(time.Now())
	<-results
	close(stopPings)

	if first.upstreamSide && !isExpectedClose(first.err) {
		logger.Log.Printf("[realtime] relay error conn=%s: %v", connID, first.err)
		sendErrorFrame(client, first.err.Error())
	} else {
		logger.Log.Printf("[realtime] relay closed conn=%s", connID)
	}
}

// forward copies frames from src to dst preserving the message type.
func forward(dst, src *websocket.Conn) error {
	for {
		messageType, payload, err := src.ReadMessage()
		if err != nil {
			return err
		}
		if err := dst.WriteMessage(messageType, payload); err != nil {
			return err
		}
	}
}

// pingClient sends keepalive pings until the relay stops. WriteControl is
// safe to call concurrently with the forwarders' message writes.
func pingClient(client *websocket.Conn, stop <-chan struct{}) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if err := client.WriteControl(websocket.PingMessage, nil, time.Now().Add(pingWriteWait)); err != nil {
				return
			}
		}
	}
}

// isExpectedClose reports whether the error is an ordinary close handshake
// rather than a relay failure. Anything else on the upstream side, including
// abruptly dropped connections and failed writes, gets reported.
func isExpectedClose(err error) bool {
	return err == nil || websocket.IsCloseError(err,
		websocket.CloseNormalClosure,
		websocket.CloseGoingAway,
	)
}

func sendErrorFrame(conn *websocket.Conn, message string) {
	payload := map[string]string{"type": "error", "error": message}
	if err := conn.WriteJSON(payload); err != nil {
		logger.Log.Printf("[realtime] write error frame failed: %v", err)
	}
}
