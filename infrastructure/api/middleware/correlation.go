package middleware

import (
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/helixml/newsbrief/internal/log"
)

// CorrelationIDHeader lets callers propagate their own correlation ID.
const CorrelationIDHeader = "X-Correlation-ID"

// CorrelationID stores the request and correlation IDs in the request
// context so every log line of the request carries them. The correlation ID
// is echoed back in the response.
func CorrelationID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		requestID := middleware.GetReqID(ctx)

		correlationID := r.Header.Get(CorrelationIDHeader)
		if correlationID == "" {
			correlationID = requestID
		}

		if requestID != "" {
			ctx = log.WithRequestID(ctx, requestID)
		}
		if correlationID != "" {
			ctx = log.WithCorrelationID(ctx, correlationID)
			w.Header().Set(CorrelationIDHeader, correlationID)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
