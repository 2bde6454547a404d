package config

import "time"

// LLM provider identifiers.
const (
	LLMProviderGemini    = "gemini"
	LLMProviderOpenAI    = "openai"
	LLMProviderAnthropic = "anthropic"
)

// LLMConfig configures the text-generation provider used for entity
// extraction and rule inference.
type LLMConfig struct {
	Provider        string
	APIKey          string
	Model           string
	Temperature     float64
	MaxOutputTokens int
	Timeout         time.Duration
	MaxRetries      int
}

func loadLLMConfig() LLMConfig {
	provider := getEnv("LLM_PROVIDER", LLMProviderGemini)

	cfg := LLMConfig{
		Provider:        provider,
		Temperature:     getEnvFloat("LLM_TEMPERATURE", 0.1),
		MaxOutputTokens: getEnvInt("LLM_MAX_OUTPUT_TOKENS", 2048),
		Timeout:         getEnvDuration("LLM_TIMEOUT", 60*time.Second),
		MaxRetries:      getEnvInt("LLM_MAX_RETRIES", 3),
	}

	switch provider {
	case LLMProviderOpenAI:
		cfg.APIKey = getEnv("OPENAI_API_KEY", "")
		cfg.Model = getEnv("LLM_MODEL", "gpt-4o")
	case LLMProviderAnthropic:
		cfg.APIKey = getEnv("ANTHROPIC_API_KEY", "")
		cfg.Model = getEnv("LLM_MODEL", "claude-sonnet-4-20250514")
	default:
		cfg.APIKey = getEnv("GEMINI_API_KEY", "")
		cfg.Model = getEnv("LLM_MODEL", getEnv("GEMINI_MODEL", "gemini-2.0-flash"))
	}

	return cfg
}
