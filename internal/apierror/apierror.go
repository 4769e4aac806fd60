// Package apierror defines the JSON error envelope returned by every endpoint.
package apierror

import (
	"encoding/json"
	"net/http"
)

const (
	CodeBadRequest      = "BAD_REQUEST"
	CodeUnauthorized    = "UNAUTHORIZED"
	CodeForbidden       = "FORBIDDEN"
	CodeNotFound        = "NOT_FOUND"
	CodeTooManyRequests = "TOO_MANY_REQUESTS"
	CodeInternal        = "INTERNAL_ERROR"
)

// FieldError describes one failed validation rule.
type FieldError struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

type Error struct {
	Code    string       `json:"code"`
	Status  int          `json:"status"`
	Message string       `json:"message"`
	Errors  []FieldError `json:"errors,omitempty"`
}

func (e *Error) Error() string { return e.Message }

func New(status int, message string) *Error {
	return &Error{Code: codeFor(status), Status: status, Message: message}
}

func BadRequest(message string) *Error { return New(http.StatusBadRequest, message) }

func Conflict(message string) *Error { return New(http.StatusConflict, message) }

func Unprocessable(message string, fields ...FieldError) *Error {
	e := New(http.StatusUnprocessableEntity, message)
	e.Errors = fields
	return e
}

func Unauthorized(message string) *Error { return New(http.StatusUnauthorized, message) }

func Forbidden(message string) *Error { return New(http.StatusForbidden, message) }

func NotFound(message string) *Error { return New(http.StatusNotFound, message) }

func TooManyRequests() *Error { return New(http.StatusTooManyRequests, "too many requests") }

func Internal() *Error { return New(http.StatusInternalServerError, "internal error") }

// codeFor maps a status onto its envelope code. Client errors without a more
// specific code, conflicts and validation failures included, are BAD_REQUEST.
func codeFor(status int) string {
	switch status {
	case http.StatusUnauthorized:
		return CodeUnauthorized
	case http.StatusForbidden:
		return CodeForbidden
	case http.StatusNotFound:
		return CodeNotFound
	case http.StatusTooManyRequests:
		return CodeTooManyRequests
	}
	if status >= 500 {
		return CodeInternal
	}
	return CodeBadRequest
}

func WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func Write(w http.ResponseWriter, e *Error) {
	WriteJSON(w, e.Status, e)
}
