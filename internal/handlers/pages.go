package handlers

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/stockkrub-a11y/Lontuktak-new/internal/export"
	"github.com/stockkrub-a11y/Lontuktak-new/internal/models"
	"github.com/stockkrub-a11y/Lontuktak-new/internal/views"
)

// maxUploadSize bounds a staged training file
const maxUploadSize = 32 << 20

// DashboardHandler serves the home page
type DashboardHandler struct {
	dashboard *views.Dashboard
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(dashboard *views.Dashboard) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard}
}

// Get handles GET /v1/dashboard
func (h *DashboardHandler) Get(w http.ResponseWriter, r *http.Request) {
	writeJSONResponse(w, http.StatusOK, h.dashboard.Snapshot())
}

// Load handles POST /v1/dashboard/load
func (h *DashboardHandler) Load(w http.ResponseWriter, r *http.Request) {
	writeJSONResponse(w, http.StatusOK, h.dashboard.Load(r.Context()))
}

// SessionHandler serves every page at once
type SessionHandler struct {
	session *views.Session
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(session *views.Session) *SessionHandler {
	return &SessionHandler{session: session}
}

// Get handles GET /v1/session
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	writeJSONResponse(w, http.StatusOK, h.session.Snapshot())
}

// LoadAll handles POST /v1/session/load
func (h *SessionHandler) LoadAll(w http.ResponseWriter, r *http.Request) {
	writeJSONResponse(w, http.StatusOK, h.session.LoadAll(r.Context()))
}

// Reset handles DELETE /v1/session
func (h *SessionHandler) Reset(w http.ResponseWriter, r *http.Request) {
	h.session.Reset()
	writeJSONResponse(w, http.StatusOK, h.session.Snapshot())
}

// StocksHandler serves the stock page and its upload flow
type StocksHandler struct {
	stocks *views.Stocks
}

// NewStocksHandler creates a new stocks handler
func NewStocksHandler(stocks *views.Stocks) *StocksHandler {
	return &StocksHandler{stocks: stocks}
}

// Get handles GET /v1/stocks
func (h *StocksHandler) Get(w http.ResponseWriter, r *http.Request) {
	writeJSONResponse(w, http.StatusOK, h.stocks.Snapshot())
}

// Load handles POST /v1/stocks/load
func (h *StocksHandler) Load(w http.ResponseWriter, r *http.Request) {
	writeJSONResponse(w, http.StatusOK, h.stocks.Load(r.Context()))
}

// StageFile handles POST /v1/stocks/files/{kind} with a multipart "file"
func (h *StocksHandler) StageFile(w http.ResponseWriter, r *http.Request) {
	kind, err := views.ParseFileKind(mux.Vars(r)["kind"])
	if err != nil {
		writeActionResponse(w, r, h.stocks.Snapshot(), err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	var (
		filename string
		content  []byte
	)
	file, header, err := r.FormFile("file")
	switch {
	case err == nil:
		defer file.Close()
		filename = header.Filename
		content, err = io.ReadAll(file)
		if err != nil {
			slog.Warn("Failed to read uploaded file", "kind", kind, "error", err)
			writeErrorResponse(w, http.StatusBadRequest, "bad_request", "Could not read uploaded file", nil)
			return
		}
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
		// StageFile rejects the empty file as missing input
	default:
		slog.Warn("Invalid multipart upload", "kind", kind, "error", err)
		writeErrorResponse(w, http.StatusBadRequest, "bad_request", "Invalid multipart form", []models.ErrorDetail{
			{Field: "file", Issue: err.Error()},
		})
		return
	}

	err = h.stocks.StageFile(kind, filename, content)
	if err == nil {
		slog.Info("Training file staged", "kind", kind, "filename", filename, "size", len(content))
	}
	writeActionResponse(w, r, h.stocks.Snapshot(), err)
}

// Upload handles POST /v1/stocks/upload/{kind}
func (h *StocksHandler) Upload(w http.ResponseWriter, r *http.Request) {
	kind, err := views.ParseFileKind(mux.Vars(r)["kind"])
	if err != nil {
		writeActionResponse(w, r, h.stocks.Snapshot(), err)
		return
	}

	snapshot, err := h.stocks.Upload(r.Context(), kind)
	writeActionResponse(w, r, snapshot, err)
}

// NotificationsHandler serves the alert page
type NotificationsHandler struct {
	notifications *views.Notifications
}

// NewNotificationsHandler creates a new notifications handler
func NewNotificationsHandler(notifications *views.Notifications) *NotificationsHandler {
	return &NotificationsHandler{notifications: notifications}
}

// Get handles GET /v1/notifications
func (h *NotificationsHandler) Get(w http.ResponseWriter, r *http.Request) {
	writeJSONResponse(w, http.StatusOK, h.notifications.Snapshot())
}

// Load handles POST /v1/notifications/load
func (h *NotificationsHandler) Load(w http.ResponseWriter, r *http.Request) {
	writeJSONResponse(w, http.StatusOK, h.notifications.Load(r.Context()))
}

type filterRequest struct {
	Statuses []string `json:"statuses"`
}

// SetFilter handles PUT /v1/notifications/filter
func (h *NotificationsHandler) SetFilter(w http.ResponseWriter, r *http.Request) {
	var req filterRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	err := h.notifications.SetFilter(req.Statuses)
	writeActionResponse(w, r, h.notifications.Snapshot(), err)
}

// ToggleStatus handles POST /v1/notifications/filter/{status}
func (h *NotificationsHandler) ToggleStatus(w http.ResponseWriter, r *http.Request) {
	err := h.notifications.ToggleStatus(mux.Vars(r)["status"])
	writeActionResponse(w, r, h.notifications.Snapshot(), err)
}

// ClearFilter handles DELETE /v1/notifications/filter
func (h *NotificationsHandler) ClearFilter(w http.ResponseWriter, r *http.Request) {
	h.notifications.ClearFilter()
	writeJSONResponse(w, http.StatusOK, h.notifications.Snapshot())
}

// Select handles POST /v1/notifications/select/{product}
func (h *NotificationsHandler) Select(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.notifications.Select(r.Context(), mux.Vars(r)["product"])
	writeActionResponse(w, r, snapshot, err)
}

// ExportCSV handles GET /v1/notifications/export.csv
func (h *NotificationsHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+export.NotificationsFilename+`"`)
	if err := h.notifications.ExportCSV(w); err != nil {
		slog.Error("Failed to export notifications", "error", err)
	}
}

// PredictHandler serves the forecast page
type PredictHandler struct {
	predict *views.Predict
}

// NewPredictHandler creates a new predict handler
func NewPredictHandler(predict *views.Predict) *PredictHandler {
	return &PredictHandler{predict: predict}
}

// Get handles GET /v1/predict
func (h *PredictHandler) Get(w http.ResponseWriter, r *http.Request) {
	writeJSONResponse(w, http.StatusOK, h.predict.Snapshot())
}

// Forecast handles POST /v1/predict/forecast {"n_forecast"}. The horizon
// may also come as ?n_forecast=.
func (h *PredictHandler) Forecast(w http.ResponseWriter, r *http.Request) {
	var req views.ForecastInput
	if !decodeJSON(w, r, &req) {
		return
	}
	if raw := r.URL.Query().Get("n_forecast"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeErrorResponse(w, http.StatusBadRequest, "bad_request", "invalid n_forecast parameter", nil)
			return
		}
		req.NForecast = n
	}

	snapshot, err := h.predict.Forecast(r.Context(), req.NForecast)
	writeActionResponse(w, r, snapshot, err)
}

// LoadExisting handles POST /v1/predict/existing
func (h *PredictHandler) LoadExisting(w http.ResponseWriter, r *http.Request) {
	writeJSONResponse(w, http.StatusOK, h.predict.LoadExisting(r.Context()))
}

// Clear handles DELETE /v1/predict
func (h *PredictHandler) Clear(w http.ResponseWriter, r *http.Request) {
	writeJSONResponse(w, http.StatusOK, h.predict.Clear(r.Context()))
}
