package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/ojpb2000/voice-chatbot-backend/internal/config"
	authHandler "github.com/ojpb2000/voice-chatbot-backend/internal/handler/auth"
	chatHandler "github.com/ojpb2000/voice-chatbot-backend/internal/handler/chat"
	realtimeHandler "github.com/ojpb2000/voice-chatbot-backend/internal/handler/realtime"
	streamHandler "github.com/ojpb2000/voice-chatbot-backend/internal/handler/stream"
	middlewarePkg "github.com/ojpb2000/voice-chatbot-backend/internal/middleware"
	aiService "github.com/ojpb2000/voice-chatbot-backend/internal/service/ai"
	authService "github.com/ojpb2000/voice-chatbot-backend/internal/service/auth"
	"github.com/ojpb2000/voice-chatbot-backend/pkg/utils"
)

// NewRouter wires HTTP routes to core services. aiClient may be nil when the
// provider credential is unset; affected endpoints then answer with a
// configuration error instead of crashing the process.
func NewRouter(cfg *config.Config, authSvc *authService.Service, aiClient *aiService.Client) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS(cfg.CORS.AllowedOrigins))

	r.Route("/api", func(api chi.Router) {
		api.Get("/health", handleHealth)

		authHandler.New(authSvc).RegisterRoutes(api)
		chatHandler.New(aiClient).RegisterRoutes(api)
		streamHandler.New(aiClient).RegisterRoutes(api)
		realtimeHandler.New(aiClient, cfg.Realtime).RegisterRoutes(api)
	})

	return r
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"ok":      true,
		"service": "voice-chatbot-backend",
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}
