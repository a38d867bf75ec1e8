package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/workpulse/workpulse/pkg/logger"
)

// RequestID tags every request with an id, honoring one supplied by the
// caller, and threads it through the context logger and the response.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}

		ctx := logger.With(r.Context(), "request_id", requestID)
		w.Header().Set("X-Request-ID", requestID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
