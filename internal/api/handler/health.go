package handler

import (
	"context"
	"net/http"

	"github.com/mcoot/gemtofu/internal/api/apierr"
	"github.com/mcoot/gemtofu/internal/api/response"
)

// Pinger is implemented by storage backends that can report connectivity
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler reports whether the server and its storage are reachable
type HealthHandler struct {
	pinger Pinger
}

// NewHealthHandler creates a health handler. pinger may be nil.
func NewHealthHandler(pinger Pinger) *HealthHandler {
	return &HealthHandler{pinger: pinger}
}

// Get handles GET /api/v1/health
func (h *HealthHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h.pinger != nil {
		if err := h.pinger.Ping(r.Context()); err != nil {
			WriteError(w, apierr.NewUnavailableError("storage unreachable"))
			return
		}
	}

	response.JSON(w, http.StatusOK, response.Health{Status: "ok"})
}
