package file

import "path/filepath"

// Config holds the on-disk layout of the file store
type Config struct {
	// GamesDir holds one JSON document per game, named <id>.json
	GamesDir string

	// LedgerPath is the append-only trust ledger, one
	// "<identity> <RFC3339 timestamp>" entry per line
	LedgerPath string
}

// DefaultConfig returns the layout rooted at dataDir
func DefaultConfig(dataDir string) Config {
	return Config{
		GamesDir:   filepath.Join(dataDir, "games"),
		LedgerPath: filepath.Join(dataDir, "trusted_clients.txt"),
	}
}
