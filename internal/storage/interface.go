package storage

import (
	"context"
	"time"

	"github.com/mcoot/gemtofu/internal/model"
)

// GameStore persists game records. Implementations return copies: mutating a
// returned game never changes stored state until SaveGame is called.
type GameStore interface {
	// CreateGame stores a new game, failing with model.ErrGameExists if the
	// id is taken
	CreateGame(ctx context.Context, game *model.Game) error
	// GetGame returns model.ErrGameNotFound for unknown ids
	GetGame(ctx context.Context, id model.GameID) (*model.Game, error)
	// SaveGame atomically replaces the committed record. A failed save
	// leaves the previous record intact. Backends shared between processes
	// return model.ErrGameConflict when the record no longer supersedes the
	// stored one.
	SaveGame(ctx context.Context, game *model.Game) error
	// ListGames returns up to limit games, most recently updated first
	ListGames(ctx context.Context, limit int) ([]*model.Game, error)
}

// Ledger is the append-only record of every identity seen
type Ledger interface {
	// RecordIdentity appends an entry if the identity is absent and reports
	// whether it did. At most one entry per identity exists even under
	// concurrent calls.
	RecordIdentity(ctx context.Context, id model.Identity, seenAt time.Time) (bool, error)
	// GetIdentity returns model.ErrIdentityNotFound for unknown identities
	GetIdentity(ctx context.Context, id model.Identity) (*model.LedgerEntry, error)
	// CountIdentities returns the number of distinct identities recorded
	CountIdentities(ctx context.Context) (int, error)
}

// Storage defines the interface for data persistence
type Storage interface {
	GameStore
	Ledger
	Close() error
}
