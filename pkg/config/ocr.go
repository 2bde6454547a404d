package config

import "time"

// OCRConfig configures the Mistral OCR provider.
type OCRConfig struct {
	APIKey     string
	BaseURL    string
	Model      string
	Timeout    time.Duration
	MaxRetries int
}

func loadOCRConfig() OCRConfig {
	return OCRConfig{
		APIKey:     getEnv("MISTRAL_API_KEY", ""),
		BaseURL:    getEnv("MISTRAL_API_BASE_URL", "https://api.mistral.ai/v1"),
		Model:      getEnv("MISTRAL_MODEL", "mistral-ocr-latest"),
		Timeout:    getEnvDuration("MISTRAL_TIMEOUT", 5*time.Minute),
		MaxRetries: getEnvInt("MISTRAL_MAX_RETRIES", 3),
	}
}
