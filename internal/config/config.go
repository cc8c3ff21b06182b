package config

import (
	"errors"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/stockkrub-a11y/Lontuktak-new/internal/logging"
)

const (
	DefaultAPIBaseURL         = "http://localhost:8000"
	DefaultAPITimeout         = 10 * time.Second
	DefaultSuggestionDebounce = 250 * time.Millisecond
	DefaultLowStockThreshold  = 50
	DefaultAdminAPIKeys       = "demo"
)

// Config holds all configuration for the dashboard gateway
type Config struct {
	Port        string
	LogLevel    string
	Environment string

	// Remote stock-management API
	APIBaseURL         string
	APITimeout         time.Duration
	SuggestionDebounce time.Duration
	LowStockThreshold  int

	// View change feed
	MaxEvents int

	// Comma-separated keys accepted on /v1/admin routes
	AdminAPIKeys string

	// Rate limiting of gateway requests, parsed by middleware.ParseRateLimitConfig
	RateLimitEnabled                 string
	RateLimitType                    string
	RateLimitRequestsPerMinute       string
	RateLimitActionRequestsPerMinute string
	RateLimitWindowMinutes           string
}

// LoadConfig loads configuration from .env file and environment variables
func LoadConfig() *Config {
	// Load .env file if it exists
	// This will not override existing environment variables
	err := godotenv.Load()
	if err != nil {
		slog.Warn("Could not load .env file, continuing with system environment variables only", "error", err)
	} else {
		slog.Info("Successfully loaded .env file")
	}

	config := FromEnv()

	// Configure slog based on log level
	logging.SetupLogging(config.LogLevel)

	slog.Info("Configuration loaded",
		"port", config.Port,
		"environment", config.Environment,
		"logLevel", config.LogLevel,
		"apiBaseURL", config.APIBaseURL,
		"apiTimeout", config.APITimeout,
		"suggestionDebounce", config.SuggestionDebounce,
		"lowStockThreshold", config.LowStockThreshold,
		"maxEvents", config.MaxEvents,
		"rateLimitEnabled", config.RateLimitEnabled)

	return config
}

// FromEnv builds the configuration from the process environment only
func FromEnv() *Config {
	baseURL := getEnvWithDefault("API_BASE_URL", getEnvWithDefault("NEXT_PUBLIC_API_URL", DefaultAPIBaseURL))

	return &Config{
		Port:                             getEnvWithDefault("PORT", "8090"),
		LogLevel:                         getEnvWithDefault("LOG_LEVEL", "info"),
		Environment:                      getEnvWithDefault("ENVIRONMENT", "development"),
		APIBaseURL:                       strings.TrimRight(baseURL, "/"),
		APITimeout:                       getEnvAsDuration("API_TIMEOUT", DefaultAPITimeout),
		SuggestionDebounce:               getEnvAsDuration("SUGGESTION_DEBOUNCE", DefaultSuggestionDebounce),
		LowStockThreshold:                getEnvAsInt("LOW_STOCK_THRESHOLD", DefaultLowStockThreshold),
		MaxEvents:                        getEnvAsInt("EVENTS_MAX", 1000),
		AdminAPIKeys:                     getEnvWithDefault("ADMIN_API_KEYS", DefaultAdminAPIKeys),
		RateLimitEnabled:                 getEnvWithDefault("RATE_LIMIT_ENABLED", "true"),
		RateLimitType:                    getEnvWithDefault("RATE_LIMIT_TYPE", "ip"),
		RateLimitRequestsPerMinute:       getEnvWithDefault("RATE_LIMIT_REQUESTS_PER_MINUTE", "300"),
		RateLimitActionRequestsPerMinute: getEnvWithDefault("RATE_LIMIT_ACTION_REQUESTS_PER_MINUTE", "120"),
		RateLimitWindowMinutes:           getEnvWithDefault("RATE_LIMIT_WINDOW_MINUTES", "1"),
	}
}

// getEnvWithDefault gets an environment variable with a default fallback
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt gets an environment variable as a positive integer with a default value
func getEnvAsInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil || parsed <= 0 {
		slog.Warn("Invalid integer value, using default", "key", key, "value", value, "default", defaultValue)
		return defaultValue
	}
	return parsed
}

// getEnvAsDuration gets an environment variable as a duration with a default value
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := time.ParseDuration(value)
	if err != nil || parsed < 0 {
		slog.Warn("Invalid duration value, using default", "key", key, "value", value, "default", defaultValue)
		return defaultValue
	}
	return parsed
}

// IsProduction returns true if running in production environment
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// Validate rejects settings that are only acceptable outside production
func (c *Config) Validate() error {
	if c.IsProduction() && c.AdminAPIKeys == DefaultAdminAPIKeys {
		return errors.New("ADMIN_API_KEYS must be set in production")
	}
	return nil
}
