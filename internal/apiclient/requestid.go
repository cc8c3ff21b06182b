package apiclient

import (
	"context"

	"github.com/google/uuid"
)

// RequestIDHeader carries the correlation id to the remote API
const RequestIDHeader = "X-Request-ID"

type requestIDKey struct{}

// WithRequestID stores a correlation id that outbound calls will forward
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestIDFromContext returns the stored correlation id, or a fresh one
func RequestIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey{}).(string); ok && id != "" {
		return id
	}
	return uuid.NewString()
}
