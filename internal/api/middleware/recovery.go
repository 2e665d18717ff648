package middleware

import (
	"log/slog"
	"net/http"

	"github.com/mcoot/gemtofu/internal/api/apierr"
	"github.com/mcoot/gemtofu/internal/middleware"
)

// Recovery creates panic recovery middleware for the admin API.
// Panics become JSON INTERNAL_ERROR responses.
func Recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return middleware.Recovery(logger, func(w http.ResponseWriter, _ *http.Request, _ any) {
		apierr.WriteError(w, apierr.NewInternalError())
	})
}

// Logging logs every admin API request
func Logging(logger *slog.Logger) func(http.Handler) http.Handler {
	return middleware.Logging(logger.With(slog.String("component", "admin")))
}
