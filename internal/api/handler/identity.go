package handler

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/mcoot/gemtofu/internal/api/response"
	"github.com/mcoot/gemtofu/internal/model"
	"github.com/mcoot/gemtofu/internal/services/ledger"
)

// IdentityHandler exposes the trust ledger
type IdentityHandler struct {
	ledger *ledger.Service
}

// NewIdentityHandler creates a new identity handler
func NewIdentityHandler(ledger *ledger.Service) *IdentityHandler {
	return &IdentityHandler{ledger: ledger}
}

// Get handles GET /api/v1/identities/{identity}
func (h *IdentityHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := model.Identity(strings.ToLower(mux.Vars(r)["identity"]))

	entry, err := h.ledger.Lookup(r.Context(), id)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.IdentityFromModel(entry))
}

// Count handles GET /api/v1/identities
func (h *IdentityHandler) Count(w http.ResponseWriter, r *http.Request) {
	n, err := h.ledger.Count(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.IdentityCount{Count: n})
}
