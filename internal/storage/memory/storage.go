package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/mcoot/gemtofu/internal/model"
	"github.com/mcoot/gemtofu/internal/storage"
)

// Storage is an in-memory implementation of the storage interface
type Storage struct {
	mu sync.RWMutex

	games  map[model.GameID]*model.Game
	ledger map[model.Identity]model.LedgerEntry
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		games:  make(map[model.GameID]*model.Game),
		ledger: make(map[model.Identity]model.LedgerEntry),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Close is a no-op
func (s *Storage) Close() error {
	return nil
}

// Game operations

func (s *Storage) CreateGame(ctx context.Context, game *model.Game) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.games[game.ID]; ok {
		return model.ErrGameExists
	}
	s.games[game.ID] = game.Clone()
	return nil
}

func (s *Storage) GetGame(ctx context.Context, id model.GameID) (*model.Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	game, ok := s.games[id]
	if !ok {
		return nil, model.ErrGameNotFound
	}
	return game.Clone(), nil
}

func (s *Storage) SaveGame(ctx context.Context, game *model.Game) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.games[game.ID] = game.Clone()
	return nil
}

func (s *Storage) ListGames(ctx context.Context, limit int) ([]*model.Game, error) {
	s.mu.RLock()
	games := make([]*model.Game, 0, len(s.games))
	for _, game := range s.games {
		games = append(games, game.Clone())
	}
	s.mu.RUnlock()

	storage.SortByRecency(games)
	return storage.Limit(games, limit), nil
}

// Ledger operations

func (s *Storage) RecordIdentity(ctx context.Context, id model.Identity, seenAt time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.ledger[id]; ok {
		return false, nil
	}
	s.ledger[id] = model.LedgerEntry{Identity: id, FirstSeen: seenAt}
	return true, nil
}

func (s *Storage) GetIdentity(ctx context.Context, id model.Identity) (*model.LedgerEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.ledger[id]
	if !ok {
		return nil, model.ErrIdentityNotFound
	}
	return &entry, nil
}

func (s *Storage) CountIdentities(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.ledger), nil
}

// Entries returns all ledger entries ordered by first sighting, for tests and
// diagnostics
func (s *Storage) Entries() []model.LedgerEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entries := make([]model.LedgerEntry, 0, len(s.ledger))
	for _, e := range s.ledger {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].FirstSeen.Equal(entries[j].FirstSeen) {
			return entries[i].Identity < entries[j].Identity
		}
		return entries[i].FirstSeen.Before(entries[j].FirstSeen)
	})
	return entries
}
