package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/gemtofu/internal/api/handler"
	"github.com/mcoot/gemtofu/internal/api/middleware"
	"github.com/mcoot/gemtofu/internal/services/game"
	"github.com/mcoot/gemtofu/internal/services/ledger"
)

// RouterConfig holds configuration for the admin API router
type RouterConfig struct {
	Logger         *slog.Logger
	GameController *game.Controller
	LedgerService  *ledger.Service
	// Pinger is checked by the health endpoint (optional)
	Pinger handler.Pinger
}

// NewRouter creates the read-only admin API router
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	gameHandler := handler.NewGameHandler(cfg.GameController)
	identityHandler := handler.NewIdentityHandler(cfg.LedgerService)
	healthHandler := handler.NewHealthHandler(cfg.Pinger)

	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(middleware.Recovery(cfg.Logger))
	api.Use(middleware.Logging(cfg.Logger))

	get(api, "/health", healthHandler.Get)

	get(api, "/games", gameHandler.List)
	get(api, "/games/{id}", gameHandler.Get)

	get(api, "/identities", identityHandler.Count)
	get(api, "/identities/{identity}", identityHandler.Get)

	return r
}

// get registers a GET route plus a catch-all on the same path answering 405.
// Subrouters report method mismatches as 404 on their own.
func get(r *mux.Router, path string, h http.HandlerFunc) {
	r.HandleFunc(path, h).Methods(http.MethodGet)
	r.HandleFunc(path, handler.MethodNotAllowed)
}
