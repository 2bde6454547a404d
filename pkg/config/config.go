// Package config loads all runtime configuration from environment variables
// into typed structs. Nothing else in the repo reads the environment: API
// keys, model names and temperatures travel as explicit values so the rule
// engine's behaviour never depends on ambient process state.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config is the root configuration for the application.
type Config struct {
	LLM      LLMConfig
	OCR      OCRConfig
	Parse    ParseConfig
	Store    StoreConfig
	Pipeline PipelineConfig
}

// Load reads the full configuration from the environment.
func Load() *Config {
	return &Config{
		LLM:      loadLLMConfig(),
		OCR:      loadOCRConfig(),
		Parse:    loadParseConfig(),
		Store:    loadStoreConfig(),
		Pipeline: loadPipelineConfig(),
	}
}

// ---------------------------------------------------------------------------
// env helpers
// ---------------------------------------------------------------------------

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		return strings.EqualFold(v, "true") || v == "1"
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
		// Bare integers are treated as seconds
		if n, err := strconv.Atoi(v); err == nil {
			return time.Duration(n) * time.Second
		}
	}
	return fallback
}
