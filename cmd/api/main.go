package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/ojpb2000/voice-chatbot-backend/internal/config"
	"github.com/ojpb2000/voice-chatbot-backend/internal/handler"
	"github.com/ojpb2000/voice-chatbot-backend/internal/logger"
	aiService "github.com/ojpb2000/voice-chatbot-backend/internal/service/ai"
	authService "github.com/ojpb2000/voice-chatbot-backend/internal/service/auth"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := godotenv.Load(); err != nil {
		logger.Log.Printf("warning: failed to load .env file: %v", err)
		logger.Log.Println("continuing with system environment variables only")
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Log.Fatalf("failed to load configuration: %v", err)
	}

	authSvc := authService.NewService(cfg.Auth, authService.NewMemoryStore())

	var aiClient *aiService.Client
	if cfg.AI.Enabled() {
		aiClient = aiService.NewClient(cfg.AI)
		logger.Log.Println("AI client initialized successfully")
	} else {
		logger.Log.Println("OPENAI_API_KEY not configured; chat and realtime endpoints will report a configuration error")
	}

	router := handler.NewRouter(cfg, authSvc, aiClient)

	startServer(ctx, cfg.Server, router)
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) {
	srv := &http.Server{
		Addr:              serverCfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	logger.Log.Printf("voice chatbot backend listening on %s", serverCfg.Addr)
	if err := runServer(ctx, srv); err != nil {
		logger.Log.Fatalf("server error: %v", err)
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
