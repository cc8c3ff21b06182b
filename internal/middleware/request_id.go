package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/stockkrub-a11y/Lontuktak-new/internal/apiclient"
)

// RequestIDMiddleware reuses the caller's X-Request-ID or assigns a new one,
// echoes it on the response and hands it to the API client through the
// request context so remote calls carry the same ID
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(apiclient.RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}

		w.Header().Set(apiclient.RequestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(apiclient.WithRequestID(r.Context(), id)))
	})
}
