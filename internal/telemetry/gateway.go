package telemetry

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/stockkrub-a11y/Lontuktak-new/internal/apiclient"
)

// GatewayTelemetry provides the gateway's instruments: inbound requests,
// outbound calls to the stock API and connectivity transitions
type GatewayTelemetry struct {
	meter metric.Meter

	// Inbound gateway requests
	requestCounter    metric.Int64Counter
	errorCounter      metric.Int64Counter
	durationHistogram metric.Float64Histogram

	// Outbound stock API calls
	remoteCallCounter       metric.Int64Counter
	remoteDurationHistogram metric.Float64Histogram

	connectivityCounter metric.Int64Counter
}

// RequestMetrics contains the telemetry data for one gateway request
type RequestMetrics struct {
	Method       string
	Endpoint     string
	StatusCode   int
	Duration     time.Duration
	ErrorMessage string
	// Client information with controlled cardinality
	ClientIP     string // Raw IP for logging only
	ClientIPType string // "internal", "external", "localhost", "invalid" or "unknown"
}

// NewGatewayTelemetry creates a new instance of GatewayTelemetry
func NewGatewayTelemetry() *GatewayTelemetry {
	return &GatewayTelemetry{}
}

// InitializeTelemetry sets up the instruments on the global meter provider
func (t *GatewayTelemetry) InitializeTelemetry(ctx context.Context) error {
	return t.InitializeWithMeter(otel.Meter(MeterName))
}

// InitializeWithMeter sets up the instruments on the given meter
func (t *GatewayTelemetry) InitializeWithMeter(meter metric.Meter) error {
	slog.Info("Initializing gateway telemetry")
	t.meter = meter

	var err error

	t.requestCounter, err = t.meter.Int64Counter(
		"gateway_requests_total",
		metric.WithDescription("Total number of gateway requests"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("failed to create request counter: %w", err)
	}

	t.errorCounter, err = t.meter.Int64Counter(
		"gateway_errors_total",
		metric.WithDescription("Total number of gateway requests answered with an error status"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("failed to create error counter: %w", err)
	}

	t.durationHistogram, err = t.meter.Float64Histogram(
		"gateway_request_duration_seconds",
		metric.WithDescription("Duration of gateway requests"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return fmt.Errorf("failed to create duration histogram: %w", err)
	}

	t.remoteCallCounter, err = t.meter.Int64Counter(
		"stock_api_calls_total",
		metric.WithDescription("Total number of calls to the stock-management API"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("failed to create remote call counter: %w", err)
	}

	t.remoteDurationHistogram, err = t.meter.Float64Histogram(
		"stock_api_call_duration_seconds",
		metric.WithDescription("Duration of calls to the stock-management API"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return fmt.Errorf("failed to create remote duration histogram: %w", err)
	}

	t.connectivityCounter, err = t.meter.Int64Counter(
		"stock_api_connectivity_changes_total",
		metric.WithDescription("Connectivity state changes of the stock-management API"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("failed to create connectivity counter: %w", err)
	}

	slog.Info("Gateway telemetry initialized successfully")
	return nil
}

// RegisterRequestReceived records a successful gateway request
func (t *GatewayTelemetry) RegisterRequestReceived(ctx context.Context, metrics RequestMetrics) {
	if t.requestCounter == nil {
		slog.Warn("Request counter not initialized")
		return
	}

	t.requestCounter.Add(ctx, 1, metric.WithAttributes(requestAttributes(metrics)...))

	slog.Debug("Recorded gateway request",
		"method", metrics.Method,
		"endpoint", metrics.Endpoint,
		"status_code", metrics.StatusCode,
		"client_ip", metrics.ClientIP,
		"duration_ms", metrics.Duration.Milliseconds(),
	)
}

// RegisterRequestError records a gateway request answered with status >= 400
func (t *GatewayTelemetry) RegisterRequestError(ctx context.Context, metrics RequestMetrics) {
	if t.errorCounter == nil {
		slog.Warn("Error counter not initialized")
		return
	}

	attrs := append(requestAttributes(metrics), attribute.String("error_type", categorizeError(metrics.ErrorMessage)))
	t.errorCounter.Add(ctx, 1, metric.WithAttributes(attrs...))

	slog.Debug("Recorded gateway request error",
		"method", metrics.Method,
		"endpoint", metrics.Endpoint,
		"status_code", metrics.StatusCode,
		"client_ip", metrics.ClientIP,
		"error", metrics.ErrorMessage,
	)
}

// RegisterRequestDuration records the duration of a gateway request
func (t *GatewayTelemetry) RegisterRequestDuration(ctx context.Context, metrics RequestMetrics) {
	if t.durationHistogram == nil {
		slog.Warn("Duration histogram not initialized")
		return
	}

	t.durationHistogram.Record(ctx, metrics.Duration.Seconds(), metric.WithAttributes(requestAttributes(metrics)...))
}

// RecordCall implements apiclient.Recorder
func (t *GatewayTelemetry) RecordCall(ctx context.Context, call apiclient.Call) {
	if t.remoteCallCounter == nil || t.remoteDurationHistogram == nil {
		return
	}

	outcome := string(call.Outcome)
	if outcome == "" {
		outcome = "ok"
	}

	attrs := metric.WithAttributes(
		attribute.String("method", call.Method),
		attribute.String("endpoint", call.Endpoint),
		attribute.Int("status_code", call.StatusCode),
		attribute.String("outcome", outcome),
	)
	t.remoteCallCounter.Add(ctx, 1, attrs)
	t.remoteDurationHistogram.Record(ctx, call.Duration.Seconds(), attrs)
}

// RecordConnectivityChange counts a transition of the remote API's state
func (t *GatewayTelemetry) RecordConnectivityChange(ctx context.Context, state string) {
	if t.connectivityCounter == nil {
		return
	}
	t.connectivityCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("state", state)))
}

// requestAttributes keeps only low-cardinality attributes
func requestAttributes(metrics RequestMetrics) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.String("method", metrics.Method),
		attribute.String("endpoint", metrics.Endpoint),
		attribute.Int("status_code", metrics.StatusCode),
	}
	if metrics.ClientIPType != "" {
		attrs = append(attrs, attribute.String("client_ip_type", metrics.ClientIPType))
	}
	return attrs
}

// categorizeError groups similar errors to prevent high cardinality
func categorizeError(errorMessage string) string {
	if errorMessage == "" {
		return "unknown"
	}

	msg := strings.ToLower(errorMessage)
	switch {
	case strings.Contains(msg, "not found"):
		return "not_found"
	case strings.Contains(msg, "unprocessable"):
		return "input_required"
	case strings.Contains(msg, "too many"):
		return "rate_limited"
	case strings.Contains(msg, "unauthorized"):
		return "unauthorized"
	case strings.Contains(msg, "timeout"):
		return "timeout"
	case strings.Contains(msg, "bad gateway"), strings.Contains(msg, "unavailable"):
		return "upstream"
	case strings.Contains(msg, "internal"):
		return "internal_error"
	case strings.Contains(msg, "bad request"):
		return "bad_request"
	default:
		return "other"
	}
}

// NormalizeClientIP categorizes client IPs to control cardinality
func NormalizeClientIP(clientIP string) string {
	if clientIP == "" {
		return "unknown"
	}

	ip := net.ParseIP(clientIP)
	if ip == nil {
		return "invalid"
	}

	if ip.IsLoopback() {
		return "localhost"
	}

	if ip.IsPrivate() || ip.IsLinkLocalUnicast() {
		return "internal"
	}

	return "external"
}
