package telemetry

import (
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
)

// TelemetryMiddleware wraps HTTP handlers to automatically collect telemetry
type TelemetryMiddleware struct {
	telemetry *GatewayTelemetry
}

// NewTelemetryMiddleware creates a new telemetry middleware
func NewTelemetryMiddleware(telemetry *GatewayTelemetry) *TelemetryMiddleware {
	return &TelemetryMiddleware{
		telemetry: telemetry,
	}
}

// Middleware returns the HTTP middleware function
func (tm *TelemetryMiddleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		wrapper := &responseWriterWrapper{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		clientIP := getClientIP(r)
		metrics := RequestMetrics{
			Method:       r.Method,
			Endpoint:     EndpointFromRequest(r),
			ClientIP:     clientIP,
			ClientIPType: NormalizeClientIP(clientIP),
		}

		next.ServeHTTP(wrapper, r)

		metrics.StatusCode = wrapper.statusCode
		metrics.Duration = time.Since(start)

		ctx := r.Context()
		if wrapper.statusCode >= 400 {
			metrics.ErrorMessage = errorMessage(wrapper.statusCode)
			tm.telemetry.RegisterRequestError(ctx, metrics)
		} else {
			tm.telemetry.RegisterRequestReceived(ctx, metrics)
		}

		tm.telemetry.RegisterRequestDuration(ctx, metrics)
	})
}

// EndpointFromRequest returns the matched route template, so
// /v1/analysis/performance/selection/ABC and .../XYZ share one series
func EndpointFromRequest(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if tpl, err := route.GetPathTemplate(); err == nil {
			return tpl
		}
	}
	return "unmatched"
}

// responseWriterWrapper wraps http.ResponseWriter to capture status code
type responseWriterWrapper struct {
	http.ResponseWriter
	statusCode  int
	wroteHeader bool
}

func (w *responseWriterWrapper) WriteHeader(statusCode int) {
	if !w.wroteHeader {
		w.statusCode = statusCode
		w.wroteHeader = true
	}
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *responseWriterWrapper) Write(data []byte) (int, error) {
	w.wroteHeader = true
	return w.ResponseWriter.Write(data)
}

// getClientIP extracts the client IP address from the request
func getClientIP(r *http.Request) string {
	// Check X-Forwarded-For header first (for load balancers/proxies)
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
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

// errorMessage returns a human-readable error message for the status code
func errorMessage(statusCode int) string {
	switch statusCode {
	case http.StatusBadRequest:
		return "Bad Request"
	case http.StatusUnauthorized:
		return "Unauthorized"
	case http.StatusNotFound:
		return "Not Found"
	case http.StatusMethodNotAllowed:
		return "Method Not Allowed"
	case http.StatusUnprocessableEntity:
		return "Unprocessable Entity"
	case http.StatusTooManyRequests:
		return "Too Many Requests"
	case http.StatusInternalServerError:
		return "Internal Server Error"
	case http.StatusBadGateway:
		return "Bad Gateway"
	case http.StatusServiceUnavailable:
		return "Service Unavailable"
	case http.StatusGatewayTimeout:
		return "Gateway Timeout"
	default:
		return "HTTP Error " + strconv.Itoa(statusCode)
	}
}
