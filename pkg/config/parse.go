package config

import "time"

// ParseConfig configures the LlamaParse document-parsing provider.
type ParseConfig struct {
	APIKey       string
	BaseURL      string
	Timeout      time.Duration
	PollInterval time.Duration
	MaxPolls     int
}

func loadParseConfig() ParseConfig {
	return ParseConfig{
		APIKey:       getEnv("LLAMAPARSE_API_KEY", ""),
		BaseURL:      getEnv("LLAMAPARSE_API_BASE_URL", "https://api.cloud.llamaindex.ai/api/parsing"),
		Timeout:      getEnvDuration("LLAMAPARSE_TIMEOUT", 5*time.Minute),
		PollInterval: getEnvDuration("LLAMAPARSE_POLL_INTERVAL", 5*time.Second),
		MaxPolls:     getEnvInt("LLAMAPARSE_MAX_POLL_ATTEMPTS", 60),
	}
}
