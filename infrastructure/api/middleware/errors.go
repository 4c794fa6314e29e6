package middleware

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/helixml/newsbrief/application/service"
	"github.com/helixml/newsbrief/infrastructure/api/jsonapi"
)

// ErrForbidden indicates the request lacked valid credentials.
var ErrForbidden = errors.New("forbidden")

// APIError is an error with an HTTP status code and a client-facing message.
type APIError struct {
	code    int
	message string
	cause   error
}

// NewAPIError creates a new APIError.
func NewAPIError(code int, message string, cause error) *APIError {
	return &APIError{code: code, message: message, cause: cause}
}

// Code returns the HTTP status code.
func (e *APIError) Code() int { return e.code }

// Message returns the client-facing message.
func (e *APIError) Message() string { return e.message }

// Error implements error.
func (e *APIError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("api error %d: %s: %v", e.code, e.message, e.cause)
	}
	return fmt.Sprintf("api error %d: %s", e.code, e.message)
}

// Unwrap returns the cause.
func (e *APIError) Unwrap() error { return e.cause }

// WriteError maps err to a status code and writes a JSON:API error body.
// Validation errors keep their message; storage and other failures are
// logged and reported with a generic message.
func WriteError(w http.ResponseWriter, r *http.Request, err error, logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}

	status := http.StatusInternalServerError
	code := jsonapi.CodeInternal
	detail := "internal server error"

	var apiErr *APIError
	switch {
	case errors.As(err, &apiErr):
		status = apiErr.Code()
		code = jsonapi.CodeRequestFailed
		detail = apiErr.Message()
	case errors.Is(err, service.ErrValidation):
		status = http.StatusBadRequest
		code = jsonapi.CodeInvalidParameter
		detail = err.Error()
	case errors.Is(err, ErrForbidden):
		status = http.StatusForbidden
		code = jsonapi.CodeForbidden
		detail = "forbidden"
	}

	if status >= http.StatusInternalServerError {
		logger.ErrorContext(r.Context(), "request failed",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()),
		)
	}

	WriteJSONContentType(w, status, jsonapi.NewDocument(jsonapi.NewError(status, code, detail)), jsonapi.MediaType)
}

// WriteJSON writes v as a JSON response.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	WriteJSONContentType(w, status, v, "application/json")
}

// WriteJSONContentType writes v as JSON with the given content type.
func WriteJSONContentType(w http.ResponseWriter, status int, v any, contentType string) {
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
