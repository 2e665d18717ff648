package ledger

import (
	"context"
	"log/slog"

	"github.com/mcoot/gemtofu/internal/dependencies/clock"
	"github.com/mcoot/gemtofu/internal/model"
	"github.com/mcoot/gemtofu/internal/storage"
)

// Service records every client identity the server sees
type Service struct {
	store  storage.Ledger
	clock  clock.Clock
	logger *slog.Logger
}

// New creates a new ledger service
func New(store storage.Ledger, clock clock.Clock, logger *slog.Logger) *Service {
	return &Service{
		store:  store,
		clock:  clock,
		logger: logger,
	}
}

// Record notes id as seen now if it has never been seen before. Storage
// failures are logged and otherwise ignored: a ledger outage must not take
// the request down with it.
func (s *Service) Record(ctx context.Context, id model.Identity) {
	if id == "" {
		return
	}

	added, err := s.store.RecordIdentity(ctx, id, s.clock.Now())
	if err != nil {
		s.logger.Warn("failed to record identity",
			slog.String("identity", id.Short()),
			slog.String("error", err.Error()),
		)
		return
	}

	if added {
		s.logger.Info("new identity trusted",
			slog.String("identity", string(id)),
		)
	}
}

// Lookup returns the ledger entry for id, or model.ErrIdentityNotFound
func (s *Service) Lookup(ctx context.Context, id model.Identity) (*model.LedgerEntry, error) {
	return s.store.GetIdentity(ctx, id)
}

// Count returns the number of identities recorded
func (s *Service) Count(ctx context.Context) (int, error) {
	return s.store.CountIdentities(ctx)
}
