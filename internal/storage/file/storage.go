package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/mcoot/gemtofu/internal/model"
	"github.com/mcoot/gemtofu/internal/storage"
)

const gameExt = ".json"

// Storage keeps games as JSON files and the trust ledger as a text file
type Storage struct {
	cfg    Config
	logger *slog.Logger

	// createMu serialises the exists-check and first write of new games
	createMu sync.Mutex

	ledgerMu sync.Mutex
	ledger   map[model.Identity]model.LedgerEntry // nil until first load
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// New creates the directories of cfg if needed and returns a file store
func New(cfg Config, logger *slog.Logger) (*Storage, error) {
	if err := os.MkdirAll(cfg.GamesDir, 0o755); err != nil {
		return nil, fmt.Errorf("create games dir: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(cfg.LedgerPath), 0o755); err != nil {
		return nil, fmt.Errorf("create ledger dir: %w", err)
	}
	return &Storage{cfg: cfg, logger: logger}, nil
}

// Close is a no-op; every write is flushed before returning
func (s *Storage) Close() error {
	return nil
}

func (s *Storage) gamePath(id model.GameID) string {
	return filepath.Join(s.cfg.GamesDir, string(id)+gameExt)
}

// Game operations

func (s *Storage) CreateGame(ctx context.Context, game *model.Game) error {
	if !game.ID.Valid() {
		return fmt.Errorf("create game %q: invalid id", game.ID)
	}

	s.createMu.Lock()
	defer s.createMu.Unlock()

	if _, err := os.Stat(s.gamePath(game.ID)); err == nil {
		return model.ErrGameExists
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("stat game: %w", err)
	}
	return s.writeGame(game)
}

func (s *Storage) GetGame(ctx context.Context, id model.GameID) (*model.Game, error) {
	if !id.Valid() {
		return nil, model.ErrGameNotFound
	}
	return s.readGame(s.gamePath(id))
}

func (s *Storage) SaveGame(ctx context.Context, game *model.Game) error {
	if !game.ID.Valid() {
		return fmt.Errorf("save game %q: invalid id", game.ID)
	}
	return s.writeGame(game)
}

func (s *Storage) ListGames(ctx context.Context, limit int) ([]*model.Game, error) {
	dirEntries, err := os.ReadDir(s.cfg.GamesDir)
	if err != nil {
		return nil, fmt.Errorf("list games: %w", err)
	}

	games := make([]*model.Game, 0, len(dirEntries))
	for _, de := range dirEntries {
		name := de.Name()
		if de.IsDir() || !strings.HasSuffix(name, gameExt) {
			continue
		}
		game, err := s.readGame(filepath.Join(s.cfg.GamesDir, name))
		if err != nil {
			// A game may be replaced or be unreadable mid-listing; skip it
			s.logger.Debug("skipping game file",
				slog.String("file", name),
				slog.String("error", err.Error()),
			)
			continue
		}
		games = append(games, game)
	}

	storage.SortByRecency(games)
	return storage.Limit(games, limit), nil
}

func (s *Storage) readGame(path string) (*model.Game, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, model.ErrGameNotFound
		}
		return nil, fmt.Errorf("read game: %w", err)
	}

	var game model.Game
	if err := json.Unmarshal(data, &game); err != nil {
		return nil, fmt.Errorf("decode game %s: %w", filepath.Base(path), err)
	}
	return &game, nil
}

// writeGame writes to a temporary file in the same directory and renames it
// over the committed record, so readers see either the old or the new game
func (s *Storage) writeGame(game *model.Game) error {
	data, err := json.MarshalIndent(game, "", "  ")
	if err != nil {
		return fmt.Errorf("encode game: %w", err)
	}

	tmp, err := os.CreateTemp(s.cfg.GamesDir, string(game.ID)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp game file: %w", err)
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("write game: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("sync game: %w", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("close game: %w", err)
	}
	if err := os.Rename(tmpName, s.gamePath(game.ID)); err != nil {
		cleanup()
		return fmt.Errorf("commit game: %w", err)
	}
	return nil
}
