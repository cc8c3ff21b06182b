package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/stockkrub-a11y/Lontuktak-new/internal/middleware"
)

// RateLimitStatusHandler handles rate limiting status requests
type RateLimitStatusHandler struct {
	rateLimiter *middleware.RateLimiter
}

// NewRateLimitStatusHandler creates a new rate limit status handler
func NewRateLimitStatusHandler(rateLimiter *middleware.RateLimiter) *RateLimitStatusHandler {
	return &RateLimitStatusHandler{
		rateLimiter: rateLimiter,
	}
}

// GetRateLimitStatus handles GET /v1/admin/rate-limit/status
func (h *RateLimitStatusHandler) GetRateLimitStatus(w http.ResponseWriter, r *http.Request) {
	if h.rateLimiter == nil {
		writeErrorResponse(w, http.StatusServiceUnavailable, "rate_limiter_unavailable", "Rate limiter not available", nil)
		return
	}

	stats := h.rateLimiter.GetRateLimitStats()
	writeJSONResponse(w, http.StatusOK, stats)

	slog.Debug("Rate limit status retrieved", "active_ip_limits", stats["active_ip_limits"])
}

// ResetRateLimits handles POST /v1/admin/rate-limit/reset
func (h *RateLimitStatusHandler) ResetRateLimits(w http.ResponseWriter, r *http.Request) {
	slog.Info("Resetting rate limits", "remote_addr", r.RemoteAddr)

	if h.rateLimiter == nil {
		writeErrorResponse(w, http.StatusServiceUnavailable, "rate_limiter_unavailable", "Rate limiter not available", nil)
		return
	}

	h.rateLimiter.ResetRateLimits()

	writeJSONResponse(w, http.StatusOK, map[string]interface{}{
		"message":   "Rate limits reset successfully",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
