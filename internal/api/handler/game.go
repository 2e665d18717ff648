package handler

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/mcoot/gemtofu/internal/api/response"
	"github.com/mcoot/gemtofu/internal/model"
	"github.com/mcoot/gemtofu/internal/services/game"
)

// MaxListLimit caps the limit query parameter of game listings
const MaxListLimit = 100

// GameHandler exposes read-only game state
type GameHandler struct {
	controller *game.Controller
}

// NewGameHandler creates a new game handler
func NewGameHandler(controller *game.Controller) *GameHandler {
	return &GameHandler{controller: controller}
}

// List handles GET /api/v1/games
func (h *GameHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := game.MenuLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > MaxListLimit {
			WriteError(w, NewInvalidRequestError("limit must be between 1 and "+strconv.Itoa(MaxListLimit)))
			return
		}
		limit = n
	}

	summaries, err := h.controller.ListRecent(r.Context(), limit)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.GameListFromModel(summaries))
}

// Get handles GET /api/v1/games/{id}
func (h *GameHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := model.GameID(mux.Vars(r)["id"])

	g, err := h.controller.GetGame(r.Context(), id)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.GameFromModel(g))
}
