package handlers

import (
	"log/slog"
	"net/http"

	"github.com/stockkrub-a11y/Lontuktak-new/internal/connectivity"
	"github.com/stockkrub-a11y/Lontuktak-new/internal/events"
	"github.com/stockkrub-a11y/Lontuktak-new/internal/models"
	"github.com/stockkrub-a11y/Lontuktak-new/internal/views"
)

// HealthHandler handles health check requests
type HealthHandler struct {
	tracker    *connectivity.Tracker
	feed       *events.Feed
	apiBaseURL string
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(tracker *connectivity.Tracker, feed *events.Feed, apiBaseURL string) *HealthHandler {
	return &HealthHandler{
		tracker:    tracker,
		feed:       feed,
		apiBaseURL: apiBaseURL,
	}
}

// Health handles GET /health. The gateway is healthy even when the stock
// API is not; the body says which.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	conn := h.tracker.Snapshot()

	health := models.GatewayHealth{
		Status:           "healthy",
		APIBaseURL:       h.apiBaseURL,
		BackendState:     string(conn.State),
		BackendConnected: conn.BackendConnected,
	}
	if h.feed != nil {
		health.EventOffset = h.feed.CurrentOffset()
	}

	writeJSONResponse(w, http.StatusOK, health)
}

// ConnectivityHandler exposes the shared connectivity tracker
type ConnectivityHandler struct {
	tracker   *connectivity.Tracker
	dashboard *views.Dashboard
}

// NewConnectivityHandler creates a new connectivity handler
func NewConnectivityHandler(tracker *connectivity.Tracker, dashboard *views.Dashboard) *ConnectivityHandler {
	return &ConnectivityHandler{
		tracker:   tracker,
		dashboard: dashboard,
	}
}

// Get handles GET /v1/connectivity
func (h *ConnectivityHandler) Get(w http.ResponseWriter, r *http.Request) {
	writeJSONResponse(w, http.StatusOK, h.tracker.Snapshot())
}

// Dismiss handles POST /v1/connectivity/dismiss
func (h *ConnectivityHandler) Dismiss(w http.ResponseWriter, r *http.Request) {
	h.tracker.DismissBanner()
	writeJSONResponse(w, http.StatusOK, h.tracker.Snapshot())
}

// probeResponse is the body of POST /v1/connectivity/probe
type probeResponse struct {
	Connectivity connectivity.Snapshot `json:"connectivity"`
	Health       models.HealthStatus   `json:"health,omitempty"`
}

// Probe handles POST /v1/connectivity/probe. A failed probe is still a 200:
// the outcome is in the connectivity snapshot.
func (h *ConnectivityHandler) Probe(w http.ResponseWriter, r *http.Request) {
	health, err := h.dashboard.Probe(r.Context())
	if err != nil {
		slog.Info("Health probe failed", "error", err)
	}

	writeJSONResponse(w, http.StatusOK, probeResponse{
		Connectivity: h.tracker.Snapshot(),
		Health:       health,
	})
}
