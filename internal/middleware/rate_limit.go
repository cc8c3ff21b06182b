package middleware

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/stockkrub-a11y/Lontuktak-new/internal/models"
)

// RateLimitType defines the type of rate limiting
type RateLimitType string

const (
	RateLimitTypeIP     RateLimitType = "ip"
	RateLimitTypeGlobal RateLimitType = "global"
	RateLimitTypeBoth   RateLimitType = "both"
)

// RateLimitConfig holds rate limiting configuration. Actions are the
// POST/PUT/DELETE requests that make the gateway call the remote API;
// they get their own, usually lower, limit.
type RateLimitConfig struct {
	Enabled                 bool
	Type                    RateLimitType
	RequestsPerMinute       int
	WindowMinutes           int
	ActionRequestsPerMinute int
}

// RateLimitEntry represents a rate limit entry
type RateLimitEntry struct {
	Count     int
	ResetTime time.Time
	mutex     sync.RWMutex
}

// RateLimiter keeps fixed-window counters per client IP and globally,
// separately for reads and actions
type RateLimiter struct {
	config        RateLimitConfig
	ipLimits      map[string]*RateLimitEntry
	globalLimits  map[bool]*RateLimitEntry
	mutex         sync.RWMutex
	cleanupTicker *time.Ticker
	stopCleanup   chan struct{}
	stopOnce      sync.Once
}

// NewRateLimiter creates a new rate limiter
func NewRateLimiter(config RateLimitConfig) *RateLimiter {
	rl := &RateLimiter{
		config:   config,
		ipLimits: make(map[string]*RateLimitEntry),
		globalLimits: map[bool]*RateLimitEntry{
			false: {},
			true:  {},
		},
		stopCleanup: make(chan struct{}),
	}

	// Start cleanup goroutine to remove expired entries
	rl.cleanupTicker = time.NewTicker(time.Minute)
	go rl.cleanupExpiredEntries()

	slog.Info("Rate limiter initialized",
		"enabled", config.Enabled,
		"type", config.Type,
		"requests_per_minute", config.RequestsPerMinute,
		"window_minutes", config.WindowMinutes,
		"action_requests_per_minute", config.ActionRequestsPerMinute)

	return rl
}

// Stop stops the rate limiter and cleanup goroutine
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() {
		rl.cleanupTicker.Stop()
		close(rl.stopCleanup)
	})
}

// cleanupExpiredEntries removes expired rate limit entries
func (rl *RateLimiter) cleanupExpiredEntries() {
	for {
		select {
		case <-rl.cleanupTicker.C:
			rl.removeExpired(time.Now())
		case <-rl.stopCleanup:
			return
		}
	}
}

func (rl *RateLimiter) removeExpired(now time.Time) {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()

	for key, entry := range rl.ipLimits {
		entry.mutex.RLock()
		expired := now.After(entry.ResetTime)
		entry.mutex.RUnlock()

		if expired {
			delete(rl.ipLimits, key)
		}
	}

	for _, global := range rl.globalLimits {
		global.mutex.Lock()
		if now.After(global.ResetTime) {
			global.Count = 0
			global.ResetTime = time.Time{}
		}
		global.mutex.Unlock()
	}
}

// IsAllowed checks if a request is allowed based on rate limiting rules
func (rl *RateLimiter) IsAllowed(clientIP string, isAction bool) (bool, *RateLimitInfo) {
	if !rl.config.Enabled {
		return true, &RateLimitInfo{
			Limit:     -1, // Unlimited
			Remaining: -1,
			ResetTime: time.Time{},
		}
	}

	now := time.Now()
	windowDuration := time.Duration(rl.config.WindowMinutes) * time.Minute

	limit := rl.config.RequestsPerMinute
	if isAction && rl.config.ActionRequestsPerMinute > 0 {
		limit = rl.config.ActionRequestsPerMinute
	}

	var ipAllowed, globalAllowed bool = true, true
	var ipInfo, globalInfo *RateLimitInfo

	if rl.config.Type == RateLimitTypeIP || rl.config.Type == RateLimitTypeBoth {
		ipAllowed, ipInfo = rl.checkIPLimit(clientIP, isAction, limit, windowDuration, now)
	}

	if rl.config.Type == RateLimitTypeGlobal || rl.config.Type == RateLimitTypeBoth {
		globalAllowed, globalInfo = rl.checkGlobalLimit(isAction, limit, windowDuration, now)
	}

	// For "both" type, use the most restrictive limit
	if rl.config.Type == RateLimitTypeBoth {
		info := ipInfo
		if globalInfo != nil && (ipInfo == nil || globalInfo.Remaining < ipInfo.Remaining) {
			info = globalInfo
		}
		return ipAllowed && globalAllowed, info
	}

	if rl.config.Type == RateLimitTypeGlobal {
		return globalAllowed, globalInfo
	}
	return ipAllowed, ipInfo
}

// checkIPLimit checks IP-based rate limiting
func (rl *RateLimiter) checkIPLimit(clientIP string, isAction bool, limit int, windowDuration time.Duration, now time.Time) (bool, *RateLimitInfo) {
	key := clientIP
	if isAction {
		key = "action:" + clientIP
	}

	rl.mutex.Lock()
	entry, exists := rl.ipLimits[key]
	if !exists {
		entry = &RateLimitEntry{}
		rl.ipLimits[key] = entry
	}
	rl.mutex.Unlock()

	return entry.take(limit, windowDuration, now)
}

// checkGlobalLimit checks global rate limiting
func (rl *RateLimiter) checkGlobalLimit(isAction bool, limit int, windowDuration time.Duration, now time.Time) (bool, *RateLimitInfo) {
	return rl.globalLimits[isAction].take(limit, windowDuration, now)
}

// take counts one request against the entry's window
func (e *RateLimitEntry) take(limit int, windowDuration time.Duration, now time.Time) (bool, *RateLimitInfo) {
	e.mutex.Lock()
	defer e.mutex.Unlock()

	// Reset if window has expired
	if now.After(e.ResetTime) {
		e.Count = 0
		e.ResetTime = now.Add(windowDuration)
	}

	info := &RateLimitInfo{
		Limit:     limit,
		Remaining: 0,
		ResetTime: e.ResetTime,
	}

	if e.Count >= limit {
		return false, info
	}

	e.Count++
	info.Remaining = limit - e.Count
	return true, info
}

// RateLimitInfo contains rate limit information for response headers
type RateLimitInfo struct {
	Limit     int
	Remaining int
	ResetTime time.Time
}

// IsAction reports whether r triggers a remote API call
func IsAction(r *http.Request) bool {
	switch r.Method {
	case http.MethodPost, http.MethodPut, http.MethodDelete:
		return true
	default:
		return false
	}
}

// RateLimitMiddleware creates a rate limiting middleware using an existing rate limiter
func RateLimitMiddleware(rateLimiter *RateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Skip rate limiting for health check
			if r.URL.Path == "/health" {
				next.ServeHTTP(w, r)
				return
			}

			clientIP := getClientIP(r)
			isAction := IsAction(r)

			allowed, info := rateLimiter.IsAllowed(clientIP, isAction)

			setRateLimitHeaders(w, info)

			if !allowed {
				slog.Warn("Rate limit exceeded",
					"client_ip", clientIP,
					"path", r.URL.Path,
					"method", r.Method,
					"is_action", isAction,
					"limit", info.Limit,
					"reset_time", info.ResetTime.Format(time.RFC3339))

				writeRateLimitErrorResponse(w, info)
				return
			}

			slog.Debug("Rate limit check passed",
				"client_ip", clientIP,
				"path", r.URL.Path,
				"remaining", info.Remaining)

			next.ServeHTTP(w, r)
		})
	}
}

// getClientIP extracts the client IP address from the request
func getClientIP(r *http.Request) string {
	// Check X-Forwarded-For header first (for load balancers/proxies)
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		// X-Forwarded-For can contain multiple IPs, take the first one
		ip := strings.TrimSpace(strings.Split(xff, ",")[0])
		if net.ParseIP(ip) != nil {
			return ip
		}
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		if net.ParseIP(xri) != nil {
			return xri
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// setRateLimitHeaders sets rate limit headers in the response
func setRateLimitHeaders(w http.ResponseWriter, info *RateLimitInfo) {
	if info.Limit >= 0 {
		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(info.Limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(info.Remaining))

		if !info.ResetTime.IsZero() {
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(info.ResetTime.Unix(), 10))
		}
	}
}

// writeRateLimitErrorResponse writes a rate limit exceeded error response
func writeRateLimitErrorResponse(w http.ResponseWriter, info *RateLimitInfo) {
	retryAfter := "0"
	if !info.ResetTime.IsZero() {
		retryAfter = fmt.Sprintf("%.0f", max(time.Until(info.ResetTime).Seconds(), 0))
	}
	w.Header().Set("Retry-After", retryAfter)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusTooManyRequests)

	errorResp := models.ErrorResponse{
		Code:    "rate_limit_exceeded",
		Message: "Rate limit exceeded. Please try again later.",
		Details: []models.ErrorDetail{
			{
				Field: "rate_limit",
				Issue: fmt.Sprintf("Exceeded %d requests per window.", info.Limit),
			},
			{
				Field: "retry_after",
				Issue: fmt.Sprintf("Retry after %s seconds", retryAfter),
			},
		},
	}

	json.NewEncoder(w).Encode(errorResp)
}
