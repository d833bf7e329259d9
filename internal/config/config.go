package config

import (
	"os"
	"strconv"
)

// Config holds all application configuration, loaded from environment
// variables with working local defaults. Only MongoURI is required for
// the server to be useful; everything else degrades a feature when
// absent.
type Config struct {
	Port        string
	Environment string // development | production

	MongoURI string

	// Redis is optional; without it entry events are simply not
	// published.
	RedisURL     string
	RedisChannel string

	// Completion service. An empty API key disables the LLM fallback
	// and AI mode; the rule cascade still works.
	GeminiAPIKey string
	GeminiModel  string
	LLMRateLimit float64 // requests per second
	LLMBurst     int

	// Stock price feed. Empty URL disables ticker lookups.
	StockFeedURL string
}

// Load loads configuration from environment variables with defaults.
func Load() *Config {
	return &Config{
		Port:        getEnv("PORT", "3001"),
		Environment: getEnv("ENVIRONMENT", "development"),

		MongoURI: getEnv("MONGODB_URI", "mongodb://localhost:27017/moneytalk"),

		RedisURL:     getEnv("REDIS_URL", ""),
		RedisChannel: getEnv("REDIS_CHANNEL", "moneytalk:events"),

		GeminiAPIKey: getEnv("GEMINI_API_KEY", ""),
		GeminiModel:  getEnv("GEMINI_MODEL", ""),
		LLMRateLimit: getFloatEnv("LLM_RATE_LIMIT", 1),
		LLMBurst:     getIntEnv("LLM_BURST", 3),

		StockFeedURL: getEnv("STOCK_FEED_URL", ""),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.Atoi(value)
		if err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.ParseFloat(value, 64)
		if err == nil && parsed > 0 {
			return parsed
		}
	}
	return defaultValue
}
