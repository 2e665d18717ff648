package server

import (
	"context"

	"github.com/mcoot/gemtofu/internal/gemini"
	"github.com/mcoot/gemtofu/internal/identity"
)

// Router sends game routes to the game handler and everything else to the
// static handler. Game routes always require a client certificate; static
// resources never do.
type Router struct {
	games  gemini.Handler
	static gemini.Handler
}

// NewRouter creates a new Router
func NewRouter(games, static gemini.Handler) *Router {
	return &Router{games: games, static: static}
}

func (rt *Router) ServeGemini(ctx context.Context, req *gemini.Request) (*gemini.Response, error) {
	if gemini.IsGameRoute(req.Path) {
		if !req.HasIdentity() {
			return nil, identity.ErrIdentityMissing
		}
		return rt.games.ServeGemini(ctx, req)
	}
	return rt.static.ServeGemini(ctx, req)
}
