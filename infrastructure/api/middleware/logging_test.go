package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestRequestLevel(t *testing.T) {
	tests := []struct {
		path   string
		status int
		want   slog.Level
	}{
		{"/api/articles", http.StatusOK, slog.LevelInfo},
		{"/healthz", http.StatusOK, slog.LevelDebug},
		{"/api/articles", http.StatusBadRequest, slog.LevelWarn},
		{"/run-analysis", http.StatusForbidden, slog.LevelWarn},
		{"/api/summary", http.StatusInternalServerError, slog.LevelError},
	}
	for _, tt := range tests {
		if got := requestLevel(tt.path, tt.status); got != tt.want {
			t.Errorf("requestLevel(%q, %d) = %v, want %v", tt.path, tt.status, got, tt.want)
		}
	}
}

func TestLogging(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	handler := Logging(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/articles", nil))

	out := buf.String()
	for _, want := range []string{"request completed", "status=418", "level=WARN", "path=/api/articles"} {
		if !strings.Contains(out, want) {
			t.Errorf("log %q missing %q", out, want)
		}
	}
}
