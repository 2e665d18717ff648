package server

import (
	"context"
	"fmt"
	"strconv"

	"github.com/mcoot/gemtofu/internal/gemini"
	"github.com/mcoot/gemtofu/internal/model"
	"github.com/mcoot/gemtofu/internal/services/game"
)

// GameHandler serves the routes under game/
type GameHandler struct {
	controller *game.Controller
	links      game.Links
}

// NewGameHandler creates a new GameHandler
func NewGameHandler(controller *game.Controller, links game.Links) *GameHandler {
	return &GameHandler{controller: controller, links: links}
}

func (h *GameHandler) ServeGemini(ctx context.Context, req *gemini.Request) (*gemini.Response, error) {
	parts := gemini.SplitPath(req.Path)
	if len(parts) == 0 || parts[0] != gemini.GameRoute {
		return nil, errRouteNotFound
	}

	switch {
	case len(parts) == 1:
		return h.menu(ctx)
	case len(parts) == 2 && parts[1] == "new":
		return h.create(ctx, req)
	case len(parts) == 2:
		return h.view(ctx, req, model.GameID(parts[1]))
	case len(parts) == 4 && parts[2] == "move":
		return h.move(ctx, req, model.GameID(parts[1]), parts[3])
	default:
		return nil, errRouteNotFound
	}
}

func (h *GameHandler) menu(ctx context.Context) (*gemini.Response, error) {
	summaries, err := h.controller.ListRecent(ctx, game.MenuLimit)
	if err != nil {
		return nil, err
	}
	return gemini.Gemtext(game.RenderMenu(summaries)), nil
}

func (h *GameHandler) create(ctx context.Context, req *gemini.Request) (*gemini.Response, error) {
	g, err := h.controller.CreateGame(ctx, req.Identity)
	if err != nil {
		return nil, err
	}
	return gemini.Gemtext(game.RenderCreated(g, h.links)), nil
}

func (h *GameHandler) view(ctx context.Context, req *gemini.Request, id model.GameID) (*gemini.Response, error) {
	g, err := h.controller.JoinIfNeeded(ctx, id, req.Identity)
	if err != nil {
		return nil, err
	}
	return gemini.Gemtext(game.RenderGame(g, req.Identity, h.links)), nil
}

func (h *GameHandler) move(ctx context.Context, req *gemini.Request, id model.GameID, rawCell string) (*gemini.Response, error) {
	cell, err := strconv.Atoi(rawCell)
	if err != nil {
		return nil, fmt.Errorf("%w: cell %q is not a number", gemini.ErrBadRequest, rawCell)
	}

	g, err := h.controller.PlayMove(ctx, id, req.Identity, cell)
	if err != nil && !model.IsInvalidMove(err) {
		return nil, err
	}
	// Rejected moves are answered with the board as it stands
	return gemini.Gemtext(game.RenderMoveResult(g, req.Identity, err, h.links)), nil
}
