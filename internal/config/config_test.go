package config

import (
	"os"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	os.Unsetenv("LLM_BACKEND")
	os.Unsetenv("LLM_MODEL")
	os.Unsetenv("PORT")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Backend != "openai" {
		t.Fatalf("expected default backend openai, got %q", cfg.Backend)
	}
	if cfg.Port != "5339" {
		t.Fatalf("expected default port 5339, got %q", cfg.Port)
	}
}

func TestGetEnvDuration(t *testing.T) {
	os.Setenv("TEST_DURATION", "250ms")
	defer os.Unsetenv("TEST_DURATION")

	if got := getEnvDuration("TEST_DURATION", time.Second); got != 250*time.Millisecond {
		t.Fatalf("expected 250ms, got %v", got)
	}
	if got := getEnvDuration("TEST_DURATION_MISSING", time.Second); got != time.Second {
		t.Fatalf("expected fallback 1s, got %v", got)
	}
}

func TestGetEnvBool(t *testing.T) {
	os.Setenv("TEST_BOOL", "true")
	defer os.Unsetenv("TEST_BOOL")

	if !getEnvBool("TEST_BOOL", false) {
		t.Fatalf("expected true")
	}
	if getEnvBool("TEST_BOOL_MISSING", false) {
		t.Fatalf("expected fallback false")
	}
}
