package handler

import (
	"net/http"

	"github.com/mcoot/gemtofu/internal/api/apierr"
)

// Re-export from apierr for convenience
type APIError = apierr.APIError
type ErrorResponse = apierr.ErrorResponse

// Re-export error codes
const (
	CodeInvalidRequest   = apierr.CodeInvalidRequest
	CodeGameNotFound     = apierr.CodeGameNotFound
	CodeIdentityNotFound = apierr.CodeIdentityNotFound
	CodeUnavailable      = apierr.CodeUnavailable
	CodeMethodNotAllowed = apierr.CodeMethodNotAllowed
	CodeInternalError    = apierr.CodeInternalError
)

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	apierr.WriteError(w, err)
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return apierr.NewInvalidRequestError(message)
}

// MethodNotAllowed answers 405 for routes that exist under another method
func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Allow", http.MethodGet)
	apierr.WriteError(w, apierr.NewMethodNotAllowedError())
}
