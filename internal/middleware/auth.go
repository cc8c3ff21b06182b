package middleware

import (
	"crypto/subtle"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/stockkrub-a11y/Lontuktak-new/internal/models"
)

// APIKeyHeader carries the admin key
const APIKeyHeader = "X-API-Key"

// AdminKeyMiddleware admits only requests carrying one of the comma-separated
// keys. With no keys configured every request is refused.
func AdminKeyMiddleware(keys string) func(http.Handler) http.Handler {
	validKeys := parseKeys(keys)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			apiKey := r.Header.Get(APIKeyHeader)
			if apiKey == "" {
				slog.Warn("Authentication failed: missing API key", "remote_addr", r.RemoteAddr, "path", r.URL.Path)
				writeErrorResponse(w, http.StatusUnauthorized, "unauthorized", "API key required", nil)
				return
			}

			if !isValidAPIKey(validKeys, apiKey) {
				slog.Warn("Authentication failed: invalid API key", "remote_addr", r.RemoteAddr, "path", r.URL.Path)
				writeErrorResponse(w, http.StatusUnauthorized, "unauthorized", "Invalid API key", nil)
				return
			}

			slog.Debug("Authentication successful", "remote_addr", r.RemoteAddr)
			next.ServeHTTP(w, r)
		})
	}
}

func parseKeys(keys string) []string {
	var out []string
	for _, key := range strings.Split(keys, ",") {
		if key = strings.TrimSpace(key); key != "" {
			out = append(out, key)
		}
	}
	return out
}

// isValidAPIKey checks if the provided API key is valid
func isValidAPIKey(validKeys []string, apiKey string) bool {
	for _, validKey := range validKeys {
		if subtle.ConstantTimeCompare([]byte(validKey), []byte(apiKey)) == 1 {
			return true
		}
	}
	return false
}

// writeErrorResponse is a helper function to write error responses
func writeErrorResponse(w http.ResponseWriter, statusCode int, code, message string, details []models.ErrorDetail) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(models.ErrorResponse{
		Code:    code,
		Message: message,
		Details: details,
	})
}
