package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/stockkrub-a11y/Lontuktak-new/internal/apiclient"
	"github.com/stockkrub-a11y/Lontuktak-new/internal/config"
	"github.com/stockkrub-a11y/Lontuktak-new/internal/connectivity"
	"github.com/stockkrub-a11y/Lontuktak-new/internal/events"
	"github.com/stockkrub-a11y/Lontuktak-new/internal/fetch"
	"github.com/stockkrub-a11y/Lontuktak-new/internal/handlers"
	"github.com/stockkrub-a11y/Lontuktak-new/internal/middleware"
	"github.com/stockkrub-a11y/Lontuktak-new/internal/models"
	"github.com/stockkrub-a11y/Lontuktak-new/internal/telemetry"
	"github.com/stockkrub-a11y/Lontuktak-new/internal/views"
)

func main() {
	// Load configuration from .env file and environment variables
	cfg := config.LoadConfig()
	if err := cfg.Validate(); err != nil {
		slog.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("Starting stock dashboard gateway", "version", "1.0.0")

	// Initialize OpenTelemetry
	ctx := context.Background()
	otelTelemetry := telemetry.InitMetrics(ctx)

	gatewayTelemetry := telemetry.NewGatewayTelemetry()
	if err := gatewayTelemetry.InitializeTelemetry(ctx); err != nil {
		slog.Error("Failed to initialize gateway telemetry", "error", err)
		return
	}

	feed := events.NewFeed(events.FeedConfig{
		MaxEvents: cfg.MaxEvents,
		Logger:    slog.Default(),
	})

	client := apiclient.New(apiclient.Config{
		BaseURL:  cfg.APIBaseURL,
		Timeout:  cfg.APITimeout,
		Recorder: gatewayTelemetry,
		Logger:   slog.Default(),
	})
	slog.Info("Stock API client initialized", "base_url", client.BaseURL(), "timeout", client.Timeout())

	tracker := connectivity.NewTracker(slog.Default())
	tracker.OnChange(func(s connectivity.Snapshot) {
		gatewayTelemetry.RecordConnectivityChange(context.Background(), string(s.State))
		feed.Publish(models.SourceConnectivity, "api", string(s.State), 0, s.LastError)
	})

	session := views.NewSession(views.Deps{
		API:     client,
		Tracker: tracker,
		Timeout: cfg.APITimeout,
		Notify: func(c fetch.Change) {
			feed.Publish(models.SourceView, c.Query, string(c.Status), c.Seq, c.Message)
		},
		Logger: slog.Default(),
	}, views.SessionConfig{
		LowStockThreshold:  cfg.LowStockThreshold,
		SuggestionDebounce: cfg.SuggestionDebounce,
	})

	// Setup rate limiting
	rateLimitConfig := middleware.ParseRateLimitConfig(cfg)
	var rateLimiter *middleware.RateLimiter
	if rateLimitConfig.Enabled {
		rateLimiter = middleware.NewRateLimiter(rateLimitConfig)
		slog.Info("Rate limiting middleware enabled")
	} else {
		slog.Info("Rate limiting middleware disabled")
	}

	router := handlers.NewRouter(handlers.RouterConfig{
		Session:      session,
		Feed:         feed,
		APIBaseURL:   cfg.APIBaseURL,
		AdminAPIKeys: cfg.AdminAPIKeys,
		RateLimiter:  rateLimiter,
		Telemetry:    gatewayTelemetry,
		Logger:       slog.Default(),
	})

	// Probe the API once so the first page shows the right banner
	go func() {
		probeCtx, cancel := context.WithTimeout(context.Background(), client.Timeout())
		defer cancel()
		if _, err := session.Dashboard.Probe(probeCtx); err != nil {
			slog.Warn("Stock API not available at startup", "base_url", cfg.APIBaseURL, "error", err)
		}
	}()

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	slog.Info("Starting HTTP server",
		"port", cfg.Port,
		"environment", cfg.Environment)

	go func() {
		slog.Info("Server ready to accept connections", "address", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("Shutting down server...")

	// Give outstanding requests a deadline for completion
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
	}

	session.Close()
	if rateLimiter != nil {
		rateLimiter.Stop()
	}

	otelTelemetry.Close(shutdownCtx)
	slog.Info("Telemetry shutdown completed")

	slog.Info("Server exited")
}
