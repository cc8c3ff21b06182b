package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/stockkrub-a11y/Lontuktak-new/internal/events"
	"github.com/stockkrub-a11y/Lontuktak-new/internal/middleware"
	"github.com/stockkrub-a11y/Lontuktak-new/internal/telemetry"
	"github.com/stockkrub-a11y/Lontuktak-new/internal/views"
)

// RouterConfig holds what the gateway routes need
type RouterConfig struct {
	Session      *views.Session
	Feed         *events.Feed
	APIBaseURL   string
	AdminAPIKeys string
	// RateLimiter is optional; nil disables rate limiting
	RateLimiter *middleware.RateLimiter
	// Telemetry is optional
	Telemetry *telemetry.GatewayTelemetry
	Logger    *slog.Logger
}

// NewRouter builds the gateway's HTTP surface
func NewRouter(cfg RouterConfig) *mux.Router {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	session := cfg.Session

	r := mux.NewRouter()
	r.Use(middleware.RequestIDMiddleware)
	if cfg.Telemetry != nil {
		r.Use(telemetry.NewTelemetryMiddleware(cfg.Telemetry).Middleware)
	}
	if cfg.RateLimiter != nil {
		r.Use(middleware.RateLimitMiddleware(cfg.RateLimiter))
	}

	healthHandler := NewHealthHandler(session.Tracker, cfg.Feed, cfg.APIBaseURL)
	connectivityHandler := NewConnectivityHandler(session.Tracker, session.Dashboard)
	sessionHandler := NewSessionHandler(session)
	dashboardHandler := NewDashboardHandler(session.Dashboard)
	stocksHandler := NewStocksHandler(session.Stocks)
	notificationsHandler := NewNotificationsHandler(session.Notifications)
	analysisHandler := NewAnalysisHandler(session.Analysis)
	predictHandler := NewPredictHandler(session.Predict)
	eventsHandler := NewEventsHandler(cfg.Feed, logger)
	rateLimitStatusHandler := NewRateLimitStatusHandler(cfg.RateLimiter)

	// Health check endpoint (no auth required)
	r.HandleFunc("/health", healthHandler.Health).Methods(http.MethodGet)

	// Admin routes require an admin key
	adminV1 := r.PathPrefix("/v1/admin").Subrouter()
	adminV1.Use(middleware.AdminKeyMiddleware(cfg.AdminAPIKeys))
	adminV1.HandleFunc("/rate-limit/status", rateLimitStatusHandler.GetRateLimitStatus).Methods(http.MethodGet)
	adminV1.HandleFunc("/rate-limit/reset", rateLimitStatusHandler.ResetRateLimits).Methods(http.MethodPost)

	v1 := r.PathPrefix("/v1").Subrouter()

	v1.HandleFunc("/connectivity", connectivityHandler.Get).Methods(http.MethodGet)
	v1.HandleFunc("/connectivity/dismiss", connectivityHandler.Dismiss).Methods(http.MethodPost)
	v1.HandleFunc("/connectivity/probe", connectivityHandler.Probe).Methods(http.MethodPost)

	v1.HandleFunc("/session", sessionHandler.Get).Methods(http.MethodGet)
	v1.HandleFunc("/session/load", sessionHandler.LoadAll).Methods(http.MethodPost)
	v1.HandleFunc("/session", sessionHandler.Reset).Methods(http.MethodDelete)

	v1.HandleFunc("/dashboard", dashboardHandler.Get).Methods(http.MethodGet)
	v1.HandleFunc("/dashboard/load", dashboardHandler.Load).Methods(http.MethodPost)

	v1.HandleFunc("/stocks", stocksHandler.Get).Methods(http.MethodGet)
	v1.HandleFunc("/stocks/load", stocksHandler.Load).Methods(http.MethodPost)
	v1.HandleFunc("/stocks/files/{kind}", stocksHandler.StageFile).Methods(http.MethodPost)
	v1.HandleFunc("/stocks/upload/{kind}", stocksHandler.Upload).Methods(http.MethodPost)

	v1.HandleFunc("/notifications", notificationsHandler.Get).Methods(http.MethodGet)
	v1.HandleFunc("/notifications/load", notificationsHandler.Load).Methods(http.MethodPost)
	v1.HandleFunc("/notifications/filter", notificationsHandler.SetFilter).Methods(http.MethodPut)
	v1.HandleFunc("/notifications/filter", notificationsHandler.ClearFilter).Methods(http.MethodDelete)
	v1.HandleFunc("/notifications/filter/{status}", notificationsHandler.ToggleStatus).Methods(http.MethodPost)
	v1.HandleFunc("/notifications/export.csv", notificationsHandler.ExportCSV).Methods(http.MethodGet)
	v1.HandleFunc("/notifications/select/{product}", notificationsHandler.Select).Methods(http.MethodPost)

	// Specific analysis routes first; {view}/chart.svg is last
	v1.HandleFunc("/analysis", analysisHandler.Get).Methods(http.MethodGet)
	v1.HandleFunc("/analysis/tabs/{tab}", analysisHandler.Activate).Methods(http.MethodPost)
	v1.HandleFunc("/analysis/historical/query", analysisHandler.Query).Methods(http.MethodPost)
	v1.HandleFunc("/analysis/historical/search", analysisHandler.Search).Methods(http.MethodPost)
	v1.HandleFunc("/analysis/historical/choose", analysisHandler.Choose).Methods(http.MethodPost)
	v1.HandleFunc("/analysis/historical/base-skus", analysisHandler.BaseSKUs).Methods(http.MethodGet)
	v1.HandleFunc("/analysis/performance/selection/reset", analysisHandler.ResetSelection).Methods(http.MethodPost)
	v1.HandleFunc("/analysis/performance/selection/{sku}", analysisHandler.AddSelection).Methods(http.MethodPost)
	v1.HandleFunc("/analysis/performance/selection/{sku}", analysisHandler.RemoveSelection).Methods(http.MethodDelete)
	v1.HandleFunc("/analysis/performance/apply", analysisHandler.Apply).Methods(http.MethodPost)
	v1.HandleFunc("/analysis/performance/compare", analysisHandler.Compare).Methods(http.MethodPost)
	v1.HandleFunc("/analysis/performance/catalog", analysisHandler.Catalog).Methods(http.MethodPost)
	v1.HandleFunc("/analysis/bestsellers/load", analysisHandler.BestSellers).Methods(http.MethodPost)
	v1.HandleFunc("/analysis/income/load", analysisHandler.Income).Methods(http.MethodPost)
	v1.HandleFunc("/analysis/{view}/chart.svg", analysisHandler.Chart).Methods(http.MethodGet)

	v1.HandleFunc("/predict", predictHandler.Get).Methods(http.MethodGet)
	v1.HandleFunc("/predict/forecast", predictHandler.Forecast).Methods(http.MethodPost)
	v1.HandleFunc("/predict/existing", predictHandler.LoadExisting).Methods(http.MethodPost)
	v1.HandleFunc("/predict", predictHandler.Clear).Methods(http.MethodDelete)

	v1.HandleFunc("/events", eventsHandler.GetEvents).Methods(http.MethodGet)

	return r
}
