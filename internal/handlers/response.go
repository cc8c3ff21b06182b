package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/stockkrub-a11y/Lontuktak-new/internal/models"
	"github.com/stockkrub-a11y/Lontuktak-new/internal/views"
)

// maxJSONBody bounds action request bodies
const maxJSONBody = 1 << 20

// writeJSONResponse is a helper function to write JSON responses
func writeJSONResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

// writeErrorResponse is a helper function to write error responses
func writeErrorResponse(w http.ResponseWriter, statusCode int, code, message string, details []models.ErrorDetail) {
	writeJSONResponse(w, statusCode, models.ErrorResponse{
		Code:    code,
		Message: message,
		Details: details,
	})
}

// writeActionResponse answers a view action with its snapshot. Rejected
// input is 422 and unknown names are 400; both carry the snapshot.
func writeActionResponse(w http.ResponseWriter, r *http.Request, snapshot any, err error) {
	if err == nil {
		writeJSONResponse(w, http.StatusOK, snapshot)
		return
	}

	if errors.Is(err, context.Canceled) && r.Context().Err() != nil {
		slog.Debug("Client went away before the action finished", "path", r.URL.Path)
		return
	}

	statusCode, code := classifyActionError(err)
	if statusCode >= http.StatusInternalServerError {
		slog.Error("View action failed", "path", r.URL.Path, "error", err)
	} else {
		slog.Debug("View action rejected", "path", r.URL.Path, "code", code, "error", err)
	}

	writeJSONResponse(w, statusCode, models.ActionErrorResponse{
		ErrorResponse: models.ErrorResponse{Code: code, Message: err.Error()},
		Snapshot:      snapshot,
	})
}

func classifyActionError(err error) (int, string) {
	switch {
	case errors.Is(err, views.ErrInputRequired):
		return http.StatusUnprocessableEntity, "input_required"
	case errors.Is(err, views.ErrInvalidInput):
		return http.StatusUnprocessableEntity, "invalid_input"
	case errors.Is(err, views.ErrUnknownTab),
		errors.Is(err, views.ErrUnknownFileKind),
		errors.Is(err, views.ErrUnknownAlertStatus):
		return http.StatusBadRequest, "bad_request"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

// decodeJSON decodes an optional JSON body into v; an empty body leaves v
// untouched
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody)).Decode(v)
	if err == nil || errors.Is(err, io.EOF) {
		return true
	}

	slog.Warn("Invalid JSON in request", "error", err, "path", r.URL.Path, "remote_addr", r.RemoteAddr)
	writeErrorResponse(w, http.StatusBadRequest, "bad_request", "Invalid JSON", []models.ErrorDetail{
		{Field: "body", Issue: err.Error()},
	})
	return false
}
