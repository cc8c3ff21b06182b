package telemetry

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"sync"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/sdk/metric"
)

// MeterName names the gateway's meter
const MeterName = "dashboard-gateway"

// ScrapeAddr is where the "scraper" exporter serves /metrics
const ScrapeAddr = ":9080"

// Telemetry owns the meter provider and, for the scraper exporter, the
// metrics HTTP server
type Telemetry struct {
	server   *http.Server          // If type of metrics collection == "scraper".
	Provider *metric.MeterProvider // If not scraper use gRPC.
}

var (
	once     sync.Once
	instance *Telemetry
)

// InitMetrics installs the global meter provider once per process, picking
// the exporter from METRICS_EXPORTER
func InitMetrics(ctx context.Context) *Telemetry {
	metricsExporter := getEnvWithDefault("METRICS_EXPORTER", "")

	once.Do(func() {
		instance = &Telemetry{}
		if metricsExporter == "scraper" {
			slog.Info("Starting metrics with scraper exporter")
			instance.initScrapeMetrics() // Serves a page on http://localhost:9080/metrics .
		} else {
			slog.Info("Starting metrics with grpc exporter")
			instance.initGRPCMetrics(ctx) // Sends data to localhost:4317 or whatever OTEL_EXPORTER_OTLP_METRICS_ENDPOINT is set to.
		}
	})
	return instance
}

// getEnvWithDefault gets an environment variable with a default fallback
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// Close flushes pending metrics and stops the scrape server
func (t *Telemetry) Close(ctx context.Context) {
	if t == nil {
		return
	}
	t.shutdownScraperMetrics(ctx)
	if t.Provider != nil {
		if err := t.Provider.Shutdown(ctx); err != nil {
			slog.Warn("Shutting down meter provider", "error", err)
		}
	}
}

// Initialize GRPC metrics exporter. https://opentelemetry.io/docs/languages/go/exporters/#otlp-metrics-over-grpc.
func (t *Telemetry) initGRPCMetrics(ctx context.Context) {
	// The URL to export is set via environment variable
	// OTEL_EXPORTER_OTLP_METRICS_ENDPOINT and if not set it is "localhost:4317"
	exporter, err := otlpmetricgrpc.New(ctx)
	if err != nil {
		slog.Error("Creating GRPC exporter", "error", err)
		return
	}

	t.Provider = metric.NewMeterProvider(metric.WithReader(metric.NewPeriodicReader(exporter)))
	otel.SetMeterProvider(t.Provider)
}

// Initialize scrape metrics exporter. https://github.com/open-telemetry/opentelemetry-go/blob/main/example/prometheus/main.go.
func (t *Telemetry) initScrapeMetrics() {
	// The exporter embeds a default OpenTelemetry Reader and
	// implements prometheus.Collector, allowing it to be used as
	// both a Reader and Collector.
	exporter, err := prometheus.New()
	if err != nil {
		slog.Error("Creating HTML scrape exporter", "error", err)
		return
	}

	t.Provider = metric.NewMeterProvider(metric.WithReader(exporter))
	otel.SetMeterProvider(t.Provider)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	t.server = &http.Server{
		Addr:    ScrapeAddr,
		Handler: mux,
	}

	go t.serveMetrics()
}

// Run metrics server for "scraper" open telemetry collector
func (t *Telemetry) serveMetrics() {
	slog.Info("Serving metrics", "addr", ScrapeAddr+"/metrics")

	err := t.server.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("ListenAndServe exited with", "error", err)
		return
	}
	slog.Info("Metrics server stopped")
}

// Shutdown HTTP server used for "scraper" metrics collection.
func (t *Telemetry) shutdownScraperMetrics(ctx context.Context) {
	if t.server != nil {
		_ = t.server.Shutdown(ctx)
		slog.Info("Shutting down metrics server")
	}
}
