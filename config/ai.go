package config

import (
	"os"
	"strconv"
	"time"
)

// AIConfig is the explicit configuration for the AI assist adapter. It is
// read once at startup and passed to the adapter factory; nothing looks up
// settings mid-operation.
type AIConfig struct {
	Provider string // "openai", "ollama", "http", or empty to disable
	BaseURL  string
	APIKey   string
	Model    string
	Timeout  time.Duration
}

// LoadAIConfig reads the AI assist settings from the environment.
func LoadAIConfig() AIConfig {
	timeout := 60 * time.Second
	if raw := os.Getenv("AI_TIMEOUT_SECONDS"); raw != "" {
		if secs, err := strconv.Atoi(raw); err == nil && secs > 0 {
			timeout = time.Duration(secs) * time.Second
		}
	}
	return AIConfig{
		Provider: os.Getenv("AI_PROVIDER"),
		BaseURL:  os.Getenv("AI_BASE_URL"),
		APIKey:   os.Getenv("AI_API_KEY"),
		Model:    os.Getenv("AI_MODEL"),
		Timeout:  timeout,
	}
}
