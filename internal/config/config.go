package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/avvvet/coursebuddy/internal/llm"
)

const (
	ProviderGemini    = "gemini"
	ProviderAnthropic = "anthropic"
)

type Config struct {
	// Service configuration
	ServiceName string
	LogMode     string
	HTTPAddr    string
	CORSOrigins []string

	// NATS configuration, disabled when NatsURL is empty
	NatsURL             string
	NatsChatSubject     string
	NatsSubjectsSubject string
	NatsTimeout         time.Duration

	// Generative provider configuration
	LLMProvider     string
	GeminiAPIKey    string
	GeminiModel     string
	AnthropicAPIKey string
	AnthropicModel  string
	LLMTimeout      time.Duration
	LLMTemperature  float64
	LLMMaxTokens    int

	// Prediction service configuration
	PredictionURL     string
	PredictionTimeout time.Duration

	// Session configuration, in-process store when RedisURL is empty
	RedisURL          string
	SessionTTL        time.Duration
	HistoryTurns      int
	SessionArchiveDir string
}

func Load() (*Config, error) {
	cfg := &Config{
		// Service settings
		ServiceName: getEnv("SERVICE_NAME", "coursebuddy"),
		LogMode:     getEnv("LOG_MODE", "development"),
		HTTPAddr:    getEnv("HTTP_ADDR", ":3002"),
		CORSOrigins: getListEnv("CORS_ORIGINS", []string{"http://localhost:3000", "http://localhost:5173"}),

		// NATS settings
		NatsURL:             getEnv("NATS_URL", ""),
		NatsChatSubject:     getEnv("NATS_CHAT_SUBJECT", "coursebuddy.chat.respond"),
		NatsSubjectsSubject: getEnv("NATS_SUBJECTS_SUBJECT", "coursebuddy.subjects.rank"),
		NatsTimeout:         getDurationEnv("NATS_TIMEOUT", 30*time.Second),

		// LLM settings
		LLMProvider:     strings.ToLower(getEnv("LLM_PROVIDER", ProviderGemini)),
		GeminiAPIKey:    getEnv("GEMINI_API_KEY", ""),
		GeminiModel:     getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
		AnthropicAPIKey: getEnv("ANTHROPIC_API_KEY", ""),
		AnthropicModel:  getEnv("ANTHROPIC_MODEL", "claude-3-5-sonnet-20241022"),
		LLMTimeout:      getDurationEnv("LLM_TIMEOUT", 30*time.Second),
		LLMTemperature:  getFloatEnv("LLM_TEMPERATURE", 0.4),
		LLMMaxTokens:    getIntEnv("LLM_MAX_TOKENS", 2048),

		// Prediction settings
		PredictionURL:     getEnv("PREDICTION_URL", "https://api-course-recommender.onrender.com/predict"),
		PredictionTimeout: getDurationEnv("PREDICTION_TIMEOUT", 20*time.Second),

		// Session settings
		RedisURL:          getEnv("REDIS_URL", ""),
		SessionTTL:        getDurationEnv("SESSION_TTL", 30*time.Minute),
		HistoryTurns:      getIntEnv("HISTORY_TURNS", 6),
		SessionArchiveDir: getEnv("SESSION_ARCHIVE_DIR", "sessionHistory"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the settings the assistant cannot start without.
func (c *Config) Validate() error {
	switch c.LLMProvider {
	case ProviderGemini:
		if c.GeminiAPIKey == "" || c.GeminiAPIKey == "your-api-key-here" {
			return llm.NewConfigurationError(c.LLMProvider, "GEMINI_API_KEY environment variable is required")
		}
	case ProviderAnthropic:
		if c.AnthropicAPIKey == "" {
			return llm.NewConfigurationError(c.LLMProvider, "ANTHROPIC_API_KEY environment variable is required")
		}
	default:
		return llm.NewConfigurationError(c.LLMProvider, fmt.Sprintf("unknown LLM_PROVIDER %q", c.LLMProvider))
	}
	if c.PredictionURL == "" {
		return llm.NewConfigurationError("prediction", "PREDICTION_URL must not be empty")
	}
	return nil
}

// APIKey returns the key of the selected provider.
func (c *Config) APIKey() string {
	if c.LLMProvider == ProviderAnthropic {
		return c.AnthropicAPIKey
	}
	return c.GeminiAPIKey
}

// Model returns the model of the selected provider.
func (c *Config) Model() string {
	if c.LLMProvider == ProviderAnthropic {
		return c.AnthropicModel
	}
	return c.GeminiModel
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getListEnv(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	if len(items) == 0 {
		return defaultValue
	}
	return items
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}
