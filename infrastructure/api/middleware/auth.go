package middleware

import (
	"crypto/subtle"
	"log/slog"
	"net/http"
)

// TriggerSecretHeader carries the shared secret for trigger endpoints.
const TriggerSecretHeader = "X-Trigger-Secret"

// RequireSecret rejects requests whose header does not match secret with 403.
// An empty secret rejects every request.
func RequireSecret(header, secret string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !secretMatches(r.Header.Get(header), secret) {
				WriteError(w, r, ErrForbidden, logger)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func secretMatches(given, secret string) bool {
	if secret == "" || given == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(given), []byte(secret)) == 1
}
