package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config aggregates every configuration section for the service.
type Config struct {
	Server   ServerConfig
	AI       AIConfig
	Realtime RealtimeConfig
	Auth     AuthConfig
	CORS     CORSConfig
}

// Load reads all configuration from environment variables.
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	ai, err := loadAIConfig()
	if err != nil {
		return nil, err
	}

	return &Config{
		Server:   server,
		AI:       ai,
		Realtime: loadRealtimeConfig(),
		Auth:     loadAuthConfig(),
		CORS:     loadCORSConfig(),
	}, nil
}

// ServerConfig describes the HTTP listener.
type ServerConfig struct {
	Addr string
}

func loadServerConfig() (ServerConfig, error) {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "3000"
	}

	if strings.Contains(port, ":") {
		// Accept ":3000" or "127.0.0.1:3000" directly.
		return ServerConfig{Addr: port}, nil
	}

	if strings.Contains(port, " ") {
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	}

	return ServerConfig{Addr: ":" + port}, nil
}

// AIConfig describes the chat completions provider.
type AIConfig struct {
	APIKey      string
	Model       string
	BaseURL     string
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
}

// Enabled reports whether a provider credential is configured. Endpoints stay
// registered either way; without a key they answer with a configuration error.
func (c AIConfig) Enabled() bool {
	return c.APIKey != ""
}

func loadAIConfig() (AIConfig, error) {
	temperature := 0.7
	if override, err := parseOptionalFloatEnv("OPENAI_TEMPERATURE"); err != nil {
		return AIConfig{}, err
	} else if override != nil {
		temperature = *override
	}

	maxTokens := 300
	if override, err := parseOptionalIntEnv("OPENAI_MAX_TOKENS"); err != nil {
		return AIConfig{}, err
	} else if override != nil {
		maxTokens = *override
	}

	timeoutSeconds := 20
	if override, err := parseOptionalIntEnv("OPENAI_TIMEOUT_SECONDS"); err != nil {
		return AIConfig{}, err
	} else if override != nil {
		timeoutSeconds = *override
	}

	return AIConfig{
		APIKey:      strings.TrimSpace(os.Getenv("OPENAI_API_KEY")),
		Model:       getEnvOrDefault("OPENAI_MODEL", "gpt-4o-mini"),
		BaseURL:     strings.TrimRight(getEnvOrDefault("OPENAI_BASE_URL", "https://api.openai.com/v1"), "/"),
		Temperature: temperature,
		MaxTokens:   maxTokens,
		Timeout:     time.Duration(timeoutSeconds) * time.Second,
	}, nil
}

// RealtimeConfig describes the provider's realtime voice endpoint.
type RealtimeConfig struct {
	Model string
	Voice string
}

func loadRealtimeConfig() RealtimeConfig {
	return RealtimeConfig{
		Model: getEnvOrDefault("REALTIME_MODEL", "gpt-4o-realtime-preview-2024-10-01"),
		Voice: getEnvOrDefault("REALTIME_VOICE", "alloy"),
	}
}

// AuthConfig holds the single demo credential. The defaults are the demo
// login pair; deployments may override them via environment.
type AuthConfig struct {
	Username string
	Password string
}

func loadAuthConfig() AuthConfig {
	return AuthConfig{
		Username: getEnvOrDefault("AUTH_USERNAME", "gato"),
		Password: getEnvOrDefault("AUTH_PASSWORD", "gato123"),
	}
}

// CORSConfig lists origins allowed to call the API from a browser.
type CORSConfig struct {
	AllowedOrigins []string
}

// defaultOrigins covers the GitHub Pages deployment and local dev servers.
var defaultOrigins = []string{
	"https://ojpb2000.github.io",
	"http://localhost:3000",
	"http://127.0.0.1:3000",
	"http://localhost:5500",
	"http://127.0.0.1:5500",
}

func loadCORSConfig() CORSConfig {
	origins := append([]string(nil), defaultOrigins...)
	seen := make(map[string]bool, len(origins))
	for _, origin := range origins {
		seen[origin] = true
	}

	for _, origin := range strings.Split(os.Getenv("ALLOWED_ORIGINS"), ",") {
		origin = strings.TrimSpace(origin)
		if origin == "" || seen[origin] {
			continue
		}
		origins = append(origins, origin)
		seen[origin] = true
	}

	return CORSConfig{AllowedOrigins: origins}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func parseOptionalFloatEnv(key string) (*float64, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}

func parseOptionalIntEnv(key string) (*int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}
