package game

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mcoot/gemtofu/internal/dependencies/clock"
	"github.com/mcoot/gemtofu/internal/dependencies/random"
	"github.com/mcoot/gemtofu/internal/model"
	"github.com/mcoot/gemtofu/internal/storage"
)

const (
	// GameIDLength is the number of hex characters in a new game id
	GameIDLength = 8

	// MenuLimit is how many games the menu lists
	MenuLimit = 20
	// maxConflictRetries bounds reloads after a concurrent commit
	maxConflictRetries = 3

	// createAttempts bounds retries when a generated id is already taken
	createAttempts = 5
)

// Controller owns every game record. All mutations go through it, one at a
// time per game.
type Controller struct {
	storage storage.GameStore
	clock   clock.Clock
	random  random.Random
	logger  *slog.Logger
	locks   *gameLocks
}

// NewController creates a new game Controller
func NewController(
	storage storage.GameStore,
	clock clock.Clock,
	random random.Random,
	logger *slog.Logger,
) *Controller {
	return &Controller{
		storage: storage,
		clock:   clock,
		random:  random,
		logger:  logger,
		locks:   newGameLocks(),
	}
}

// CreateGame starts a new game with creator as X
func (c *Controller) CreateGame(ctx context.Context, creator model.Identity) (*model.Game, error) {
	if creator == "" {
		return nil, errors.New("create game: creator identity required")
	}

	for range createAttempts {
		id := model.GameID(c.random.ShortID(GameIDLength))
		game := model.NewGame(id, creator, c.clock.Now())

		err := c.storage.CreateGame(ctx, game)
		if errors.Is(err, model.ErrGameExists) {
			c.logger.Debug("game id collision",
				slog.String("game_id", string(id)),
			)
			continue
		}
		if err != nil {
			c.logger.Error("failed to create game",
				slog.String("game_id", string(id)),
				slog.String("error", err.Error()),
			)
			return nil, err
		}

		c.logger.Info("game created",
			slog.String("game_id", string(id)),
			slog.String("player_x", creator.Short()),
		)
		return game, nil
	}

	return nil, fmt.Errorf("create game: no free id after %d attempts", createAttempts)
}

// GetGame retrieves a game by ID
func (c *Controller) GetGame(ctx context.Context, id model.GameID) (*model.Game, error) {
	if !id.Valid() {
		return nil, model.ErrGameNotFound
	}
	return c.storage.GetGame(ctx, id)
}

// JoinIfNeeded seats viewer as O when the seat is free and viewer is not X,
// then returns the current game
func (c *Controller) JoinIfNeeded(ctx context.Context, id model.GameID, viewer model.Identity) (*model.Game, error) {
	if !id.Valid() {
		return nil, model.ErrGameNotFound
	}

	unlock := c.locks.lock(id)
	defer unlock()

	return c.retryConflicts(id, func() (*model.Game, error) {
		game, err := c.storage.GetGame(ctx, id)
		if err != nil {
			return nil, err
		}
		if c.join(game, viewer) {
			if err := c.save(ctx, game); err != nil {
				return nil, err
			}
		}
		return game, nil
	})
}

// PlayMove joins viewer if needed and then plays cell for them. A rejected
// move returns the current game together with the rejection error, one of the
// errors matched by model.IsInvalidMove. Any other error means nothing was
// committed.
func (c *Controller) PlayMove(ctx context.Context, id model.GameID, viewer model.Identity, cell int) (*model.Game, error) {
	if !id.Valid() {
		return nil, model.ErrGameNotFound
	}

	unlock := c.locks.lock(id)
	defer unlock()

	return c.retryConflicts(id, func() (*model.Game, error) {
		return c.playMove(ctx, id, viewer, cell)
	})
}

func (c *Controller) playMove(ctx context.Context, id model.GameID, viewer model.Identity, cell int) (*model.Game, error) {
	game, err := c.storage.GetGame(ctx, id)
	if err != nil {
		return nil, err
	}

	joined := c.join(game, viewer)

	moveErr := game.ApplyMove(viewer, cell, c.clock.Now())
	if moveErr != nil && !joined {
		c.logger.Debug("move rejected",
			slog.String("game_id", string(id)),
			slog.String("player", viewer.Short()),
			slog.Int("cell", cell),
			slog.String("reason", moveErr.Error()),
		)
		return game, moveErr
	}

	if err := c.save(ctx, game); err != nil {
		return nil, err
	}
	if moveErr != nil {
		return game, moveErr
	}

	c.logger.Info("move played",
		slog.String("game_id", string(id)),
		slog.String("player", viewer.Short()),
		slog.Int("cell", cell),
		slog.String("status", string(game.Status)),
	)
	return game, nil
}

// retryConflicts reruns a load-modify-save step when another process sharing
// the storage committed the same game first
func (c *Controller) retryConflicts(id model.GameID, step func() (*model.Game, error)) (*model.Game, error) {
	for attempt := 1; ; attempt++ {
		game, err := step()
		if !errors.Is(err, model.ErrGameConflict) || attempt >= maxConflictRetries {
			return game, err
		}
		c.logger.Debug("game changed concurrently, reloading",
			slog.String("game_id", string(id)),
			slog.Int("attempt", attempt),
		)
	}
}

// ListRecent returns summaries of up to limit games, most recently updated
// first. It takes no game locks.
func (c *Controller) ListRecent(ctx context.Context, limit int) ([]model.GameSummary, error) {
	games, err := c.storage.ListGames(ctx, limit)
	if err != nil {
		return nil, err
	}

	summaries := make([]model.GameSummary, len(games))
	for i, game := range games {
		summaries[i] = game.Summary()
	}
	return summaries, nil
}

func (c *Controller) join(game *model.Game, viewer model.Identity) bool {
	if !game.Join(viewer) {
		return false
	}
	game.UpdatedAt = c.clock.Now()
	c.logger.Info("player joined",
		slog.String("game_id", string(game.ID)),
		slog.String("player_o", viewer.Short()),
	)
	return true
}

func (c *Controller) save(ctx context.Context, game *model.Game) error {
	if err := c.storage.SaveGame(ctx, game); err != nil {
		c.logger.Error("failed to save game",
			slog.String("game_id", string(game.ID)),
			slog.String("error", err.Error()),
		)
		return err
	}
	return nil
}
