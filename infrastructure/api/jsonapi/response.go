// Package jsonapi builds JSON:API error documents.
package jsonapi

import (
	"net/http"
	"strconv"
)

// MediaType is the content type for JSON:API documents.
const MediaType = "application/vnd.api+json"

// Error codes reported in the code member of an error object.
const (
	CodeInvalidParameter = "invalid_parameter"
	CodeForbidden        = "forbidden"
	CodeInternal         = "internal_error"
	CodeRequestFailed    = "request_failed"
)

// Document is the top-level body of an error response.
// See: https://jsonapi.org/format/#document-structure
type Document struct {
	Errors []Error `json:"errors"`
}

// Error is a single JSON:API error object.
// See: https://jsonapi.org/format/#error-objects
type Error struct {
	Status string `json:"status"`
	Code   string `json:"code,omitempty"`
	Title  string `json:"title,omitempty"`
	Detail string `json:"detail,omitempty"`
}

// NewDocument wraps errs in a document.
func NewDocument(errs ...Error) Document {
	return Document{Errors: errs}
}

// NewError builds an error object for an HTTP status. The title is the
// status text.
func NewError(status int, code, detail string) Error {
	return Error{
		Status: strconv.Itoa(status),
		Code:   code,
		Title:  http.StatusText(status),
		Detail: detail,
	}
}
