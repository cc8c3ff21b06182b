package middleware

import (
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/stockkrub-a11y/Lontuktak-new/internal/config"
)

// ParseRateLimitConfig parses rate limiting configuration from the config struct
func ParseRateLimitConfig(cfg *config.Config) RateLimitConfig {
	rateLimitConfig := RateLimitConfig{
		Enabled:                 parseBool(cfg.RateLimitEnabled, true),
		Type:                    parseRateLimitType(cfg.RateLimitType),
		RequestsPerMinute:       parseInt(cfg.RateLimitRequestsPerMinute, 300),
		WindowMinutes:           parseInt(cfg.RateLimitWindowMinutes, 1),
		ActionRequestsPerMinute: parseInt(cfg.RateLimitActionRequestsPerMinute, 120),
	}

	// Validate configuration
	if rateLimitConfig.RequestsPerMinute <= 0 {
		slog.Warn("Invalid rate limit requests per minute, using default",
			"configured", cfg.RateLimitRequestsPerMinute, "default", 300)
		rateLimitConfig.RequestsPerMinute = 300
	}

	if rateLimitConfig.WindowMinutes <= 0 {
		slog.Warn("Invalid rate limit window minutes, using default",
			"configured", cfg.RateLimitWindowMinutes, "default", 1)
		rateLimitConfig.WindowMinutes = 1
	}

	if rateLimitConfig.ActionRequestsPerMinute <= 0 {
		slog.Warn("Invalid action rate limit requests per minute, using default",
			"configured", cfg.RateLimitActionRequestsPerMinute, "default", 120)
		rateLimitConfig.ActionRequestsPerMinute = 120
	}

	slog.Info("Rate limiting configuration parsed",
		"enabled", rateLimitConfig.Enabled,
		"type", rateLimitConfig.Type,
		"requests_per_minute", rateLimitConfig.RequestsPerMinute,
		"window_minutes", rateLimitConfig.WindowMinutes,
		"action_requests_per_minute", rateLimitConfig.ActionRequestsPerMinute)

	return rateLimitConfig
}

// parseBool parses a string to bool with a default value
func parseBool(value string, defaultValue bool) bool {
	if value == "" {
		return defaultValue
	}

	switch strings.ToLower(value) {
	case "true", "1", "yes", "on", "enabled":
		return true
	case "false", "0", "no", "off", "disabled":
		return false
	default:
		slog.Warn("Invalid boolean value, using default",
			"value", value, "default", defaultValue)
		return defaultValue
	}
}

// parseInt parses a string to int with a default value
func parseInt(value string, defaultValue int) int {
	if value == "" {
		return defaultValue
	}

	parsed, err := strconv.Atoi(value)
	if err != nil {
		slog.Warn("Invalid integer value, using default",
			"value", value, "default", defaultValue, "error", err)
		return defaultValue
	}

	return parsed
}

// parseRateLimitType parses the rate limit type with validation
func parseRateLimitType(value string) RateLimitType {
	if value == "" {
		return RateLimitTypeIP
	}

	switch strings.ToLower(value) {
	case "ip":
		return RateLimitTypeIP
	case "global":
		return RateLimitTypeGlobal
	case "both":
		return RateLimitTypeBoth
	default:
		slog.Warn("Invalid rate limit type, using default",
			"value", value, "default", "ip")
		return RateLimitTypeIP
	}
}

// GetRateLimitStats returns current rate limiting statistics
func (rl *RateLimiter) GetRateLimitStats() map[string]interface{} {
	rl.mutex.RLock()
	activeIPLimits := len(rl.ipLimits)
	rl.mutex.RUnlock()

	stats := map[string]interface{}{
		"enabled":                    rl.config.Enabled,
		"type":                       string(rl.config.Type),
		"requests_per_minute":        rl.config.RequestsPerMinute,
		"window_minutes":             rl.config.WindowMinutes,
		"action_requests_per_minute": rl.config.ActionRequestsPerMinute,
		"active_ip_limits":           activeIPLimits,
	}

	if rl.config.Type == RateLimitTypeGlobal || rl.config.Type == RateLimitTypeBoth {
		for isAction, prefix := range map[bool]string{false: "global", true: "global_action"} {
			entry := rl.globalLimits[isAction]
			entry.mutex.RLock()
			stats[prefix+"_count"] = entry.Count
			stats[prefix+"_reset_time"] = entry.ResetTime.Format(time.RFC3339)
			entry.mutex.RUnlock()
		}
	}

	return stats
}

// ResetRateLimits resets all rate limiting counters
func (rl *RateLimiter) ResetRateLimits() {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()

	rl.ipLimits = make(map[string]*RateLimitEntry)

	for _, entry := range rl.globalLimits {
		entry.mutex.Lock()
		entry.Count = 0
		entry.ResetTime = time.Time{}
		entry.mutex.Unlock()
	}

	slog.Info("Rate limits reset")
}
