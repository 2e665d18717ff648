package model

import "errors"

// Common errors used across the application
var (
	// Game errors
	ErrGameNotFound  = errors.New("game not found")
	ErrGameExists    = errors.New("game already exists")
	ErrGameOver      = errors.New("game is already over")
	ErrInvalidCell   = errors.New("invalid cell")
	ErrNotPlayerTurn = errors.New("not this player's turn")
	ErrCellOccupied  = errors.New("cell is already occupied")
	ErrGameConflict  = errors.New("game was changed concurrently")

	// Ledger errors
	ErrIdentityNotFound = errors.New("identity not found")
)

// IsInvalidMove reports whether err is a rejected move rather than a fault
func IsInvalidMove(err error) bool {
	return errors.Is(err, ErrGameOver) ||
		errors.Is(err, ErrInvalidCell) ||
		errors.Is(err, ErrNotPlayerTurn) ||
		errors.Is(err, ErrCellOccupied)
}
