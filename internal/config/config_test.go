package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFromEnv_Defaults(t *testing.T) {
	t.Setenv("API_BASE_URL", "")
	t.Setenv("NEXT_PUBLIC_API_URL", "")
	t.Setenv("API_TIMEOUT", "")
	t.Setenv("SUGGESTION_DEBOUNCE", "")
	t.Setenv("LOW_STOCK_THRESHOLD", "")
	t.Setenv("PORT", "")
	t.Setenv("ENVIRONMENT", "")

	cfg := FromEnv()

	assert.Equal(t, DefaultAPIBaseURL, cfg.APIBaseURL)
	assert.Equal(t, DefaultAPITimeout, cfg.APITimeout)
	assert.Equal(t, DefaultSuggestionDebounce, cfg.SuggestionDebounce)
	assert.Equal(t, DefaultLowStockThreshold, cfg.LowStockThreshold)
	assert.Equal(t, "8090", cfg.Port)
	assert.Equal(t, "development", cfg.Environment)
	assert.False(t, cfg.IsProduction())
	assert.NoError(t, cfg.Validate())
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("API_BASE_URL", "http://stock-api:9000/")
	t.Setenv("API_TIMEOUT", "3s")
	t.Setenv("SUGGESTION_DEBOUNCE", "100ms")
	t.Setenv("LOW_STOCK_THRESHOLD", "20")
	t.Setenv("ENVIRONMENT", "production")

	cfg := FromEnv()

	assert.Equal(t, "http://stock-api:9000", cfg.APIBaseURL)
	assert.Equal(t, 3*time.Second, cfg.APITimeout)
	assert.Equal(t, 100*time.Millisecond, cfg.SuggestionDebounce)
	assert.Equal(t, 20, cfg.LowStockThreshold)
	assert.True(t, cfg.IsProduction())
}

func TestValidate_ProductionNeedsAdminKeys(t *testing.T) {
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("ADMIN_API_KEYS", "")

	cfg := FromEnv()
	assert.Error(t, cfg.Validate())

	t.Setenv("ADMIN_API_KEYS", "ops-key")
	cfg = FromEnv()
	assert.NoError(t, cfg.Validate())
}

func TestFromEnv_LegacyBaseURLName(t *testing.T) {
	t.Setenv("API_BASE_URL", "")
	t.Setenv("NEXT_PUBLIC_API_URL", "http://legacy:8000")

	assert.Equal(t, "http://legacy:8000", FromEnv().APIBaseURL)
}

func TestFromEnv_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("API_TIMEOUT", "soon")
	t.Setenv("LOW_STOCK_THRESHOLD", "-4")
	t.Setenv("EVENTS_MAX", "many")

	cfg := FromEnv()

	assert.Equal(t, DefaultAPITimeout, cfg.APITimeout)
	assert.Equal(t, DefaultLowStockThreshold, cfg.LowStockThreshold)
	assert.Equal(t, 1000, cfg.MaxEvents)
}
