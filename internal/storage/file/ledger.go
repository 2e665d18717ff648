package file

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/mcoot/gemtofu/internal/model"
)

// RecordIdentity appends an entry for id unless the ledger already has one.
// The index and the append share one mutex, so concurrent first contact from
// the same identity yields a single line.
func (s *Storage) RecordIdentity(ctx context.Context, id model.Identity, seenAt time.Time) (bool, error) {
	s.ledgerMu.Lock()
	defer s.ledgerMu.Unlock()

	if err := s.loadLedgerLocked(); err != nil {
		return false, err
	}
	if _, ok := s.ledger[id]; ok {
		return false, nil
	}

	f, err := os.OpenFile(s.cfg.LedgerPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return false, fmt.Errorf("open ledger: %w", err)
	}
	seenAt = seenAt.UTC()
	line := fmt.Sprintf("%s %s\n", id, seenAt.Format(time.RFC3339))
	if _, err := f.WriteString(line); err != nil {
		_ = f.Close()
		return false, fmt.Errorf("append ledger: %w", err)
	}
	if err := f.Close(); err != nil {
		return false, fmt.Errorf("close ledger: %w", err)
	}

	s.ledger[id] = model.LedgerEntry{Identity: id, FirstSeen: seenAt}
	return true, nil
}

func (s *Storage) GetIdentity(ctx context.Context, id model.Identity) (*model.LedgerEntry, error) {
	s.ledgerMu.Lock()
	defer s.ledgerMu.Unlock()

	if err := s.loadLedgerLocked(); err != nil {
		return nil, err
	}
	entry, ok := s.ledger[id]
	if !ok {
		return nil, model.ErrIdentityNotFound
	}
	return &entry, nil
}

func (s *Storage) CountIdentities(ctx context.Context) (int, error) {
	s.ledgerMu.Lock()
	defer s.ledgerMu.Unlock()

	if err := s.loadLedgerLocked(); err != nil {
		return 0, err
	}
	return len(s.ledger), nil
}

// loadLedgerLocked reads the ledger file into the index on first use.
// Callers must hold ledgerMu.
func (s *Storage) loadLedgerLocked() error {
	if s.ledger != nil {
		return nil
	}

	f, err := os.Open(s.cfg.LedgerPath)
	if errors.Is(err, os.ErrNotExist) {
		s.ledger = make(map[model.Identity]model.LedgerEntry)
		return nil
	}
	if err != nil {
		return fmt.Errorf("open ledger: %w", err)
	}
	defer func() { _ = f.Close() }()

	entries, err := parseLedger(f)
	if err != nil {
		return fmt.Errorf("read ledger: %w", err)
	}
	s.ledger = entries
	return nil
}

// parseLedger reads ledger lines, skipping blanks and '#' comments. The first
// occurrence of an identity wins; timestamps that do not parse are kept as
// the zero time rather than dropping the identity.
func parseLedger(r io.Reader) (map[model.Identity]model.LedgerEntry, error) {
	entries := make(map[model.Identity]model.LedgerEntry)
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		id := model.Identity(strings.ToLower(fields[0]))
		if _, seen := entries[id]; seen {
			continue
		}
		entry := model.LedgerEntry{Identity: id}
		if len(fields) > 1 {
			if ts, err := time.Parse(time.RFC3339, fields[1]); err == nil {
				entry.FirstSeen = ts
			}
		}
		entries[id] = entry
	}
	return entries, scanner.Err()
}
