// Package config loads environment-driven runtime configuration: LLM
// backend credentials, optional archive/enrichment integrations, and
// zerolog's global logging setup.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Config is every environment-sourced setting the CLI and swarm need.
type Config struct {
	// LLM backend selection.
	Backend       string // "openai", "openrouter", or "anthropic"
	Model         string
	OpenAIKey     string
	OpenRouterKey string
	AnthropicKey  string

	// Optional integrations.
	DatabaseURL     string
	GitHubToken     string
	BraveAPIKey     string
	EtherscanAPIKey string

	// Dashboard API.
	APIAuthToken   string
	AllowedOrigins string
	Port           string
}

// Load reads a .env file if present (missing is not an error — real
// environment variables alone are enough), then fills in defaults for
// everything not security-sensitive.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return Config{}, fmt.Errorf("loading .env: %w", err)
	}

	cfg := Config{
		Backend:         getEnvOrDefault("LLM_BACKEND", "openai"),
		Model:           getEnvOrDefault("LLM_MODEL", "gpt-4o-mini"),
		OpenAIKey:       os.Getenv("OPENAI_API_KEY"),
		OpenRouterKey:   os.Getenv("OPENROUTER_API_KEY"),
		AnthropicKey:    os.Getenv("ANTHROPIC_API_KEY"),
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		GitHubToken:     os.Getenv("GITHUB_TOKEN"),
		BraveAPIKey:     os.Getenv("BRAVE_API_KEY"),
		EtherscanAPIKey: os.Getenv("ETHERSCAN_API_KEY"),
		APIAuthToken:    os.Getenv("API_AUTH_TOKEN"),
		AllowedOrigins:  os.Getenv("ALLOWED_ORIGINS"),
		Port:            getEnvOrDefault("PORT", "5339"),
	}
	return cfg, nil
}

// RequireEnv reads a required environment variable and exits if it is not
// set. Used for security-sensitive values that have no safe default.
func RequireEnv(key string) string {
	val := os.Getenv(key)
	if val == "" {
		log.Fatal().Str("var", key).Msg("required environment variable is not set")
	}
	return val
}

// getEnvOrDefault returns the env var value or a safe default for
// non-secret settings.
func getEnvOrDefault(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

// getEnvDuration parses a duration env var (e.g. "500ms"), falling back to
// fallback on unset or malformed input.
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return fallback
	}
	return d
}

// getEnvBool parses a boolean env var, falling back to fallback on unset or
// malformed input.
func getEnvBool(key string, fallback bool) bool {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return fallback
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return b
}

// SetupLogging configures zerolog's global logger: human-readable console
// output for a terminal session. Verbosity 0 logs warnings and above, 1 adds
// info, 2 adds debug, and 3 and up traces everything.
func SetupLogging(verbosity int) {
	var level zerolog.Level
	switch {
	case verbosity <= 0:
		level = zerolog.WarnLevel
	case verbosity == 1:
		level = zerolog.InfoLevel
	case verbosity == 2:
		level = zerolog.DebugLevel
	default:
		level = zerolog.TraceLevel
	}
	zerolog.SetGlobalLevel(level)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
}
