// Package config reads the bridge configuration from the environment.
// Credentials and endpoints for the provider backends live here too; the
// front end loads a .env file first (godotenv autoload) so local development
// needs no exported variables.
package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/casualjim/courier/monitor"
	"github.com/casualjim/courier/relay"
	"github.com/casualjim/courier/thread"
)

// Config is the full configuration surface of the bridge.
type Config struct {
	// Provider selects the backend by registry name: openai, openrouter, ollama
	Provider string
	// Model is the backend model identifier for generation requests
	Model string

	OpenAIKey         string
	OpenRouterKey     string
	OpenRouterBaseURL string
	OllamaBaseURL     string

	// PersonaDir points at a directory of principle sections; empty means
	// the built-in persona
	PersonaDir string

	// NATSPrefix is the subject prefix for NATS-delivered updates and alerts
	NATSPrefix string

	SlowThreshold  time.Duration
	MaxHistory     int
	MaxTurns       int
	MaxUpdateBytes int
	UpdateInterval time.Duration
}

// FromEnv builds a Config from the environment, falling back to defaults for
// anything unset or unparsable.
func FromEnv() Config {
	return Config{
		Provider:          envString("COURIER_PROVIDER", "openai"),
		Model:             envString("COURIER_MODEL", "gpt-4o-mini"),
		OpenAIKey:         os.Getenv("OPENAI_API_KEY"),
		OpenRouterKey:     os.Getenv("OPENROUTER_API_KEY"),
		OpenRouterBaseURL: os.Getenv("OPENROUTER_BASE_URL"),
		OllamaBaseURL:     os.Getenv("OLLAMA_BASE_URL"),
		PersonaDir:        os.Getenv("COURIER_PERSONA_DIR"),
		NATSPrefix:        envString("COURIER_NATS_PREFIX", "courier"),
		SlowThreshold:     envDuration("COURIER_SLOW_THRESHOLD", monitor.DefaultSlowThreshold),
		MaxHistory:        envInt("COURIER_MAX_HISTORY", monitor.DefaultMaxHistory),
		MaxTurns:          envInt("COURIER_MAX_TURNS", thread.DefaultMaxTurns),
		MaxUpdateBytes:    envInt("COURIER_MAX_UPDATE_BYTES", relay.DefaultMaxUpdateBytes),
		UpdateInterval:    envDuration("COURIER_UPDATE_INTERVAL", relay.DefaultUpdateInterval),
	}
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		slog.Warn("ignoring unparsable integer", slog.String("key", key), slog.String("value", v))
		return fallback
	}
	return n
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		slog.Warn("ignoring unparsable duration", slog.String("key", key), slog.String("value", v))
		return fallback
	}
	return d
}
