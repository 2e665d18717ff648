package response

import (
	"time"

	"github.com/mcoot/gemtofu/internal/model"
)

// Health is the response of the health endpoint
type Health struct {
	Status string `json:"status"`
}

// GameSummary represents a game in listings
type GameSummary struct {
	ID        string    `json:"id"`
	Status    string    `json:"status"`
	PlayerX   string    `json:"player_x"`
	PlayerO   string    `json:"player_o"`
	UpdatedAt time.Time `json:"updated_at"`
}

// GameSummaryFromModel converts model.GameSummary
func GameSummaryFromModel(s model.GameSummary) GameSummary {
	return GameSummary{
		ID:        string(s.ID),
		Status:    string(s.Status),
		PlayerX:   s.PlayerX,
		PlayerO:   s.PlayerO,
		UpdatedAt: s.UpdatedAt,
	}
}

// GameList is the response for game listings
type GameList struct {
	Games []GameSummary `json:"games"`
}

// GameListFromModel converts a slice of model.GameSummary
func GameListFromModel(summaries []model.GameSummary) GameList {
	games := make([]GameSummary, len(summaries))
	for i, s := range summaries {
		games[i] = GameSummaryFromModel(s)
	}
	return GameList{Games: games}
}

// Game represents the full state of a game
type Game struct {
	ID         string     `json:"id"`
	Status     string     `json:"status"`
	Turn       string     `json:"turn"`
	PlayerX    string     `json:"player_x"`
	PlayerO    *string    `json:"player_o"`
	Board      []string   `json:"board"`
	Winner     *string    `json:"winner"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
	LastMoveAt *time.Time `json:"last_move_at"`
}

// GameFromModel converts model.Game. Empty cells are empty strings.
func GameFromModel(g *model.Game) Game {
	board := make([]string, len(g.Board))
	for i, cell := range g.Board {
		board[i] = string(cell)
	}

	var playerO *string
	if g.Players.O != "" {
		o := string(g.Players.O)
		playerO = &o
	}

	var winner *string
	if w := g.Winner(); w != model.MarkEmpty {
		s := string(w)
		winner = &s
	}

	return Game{
		ID:         string(g.ID),
		Status:     string(g.Status),
		Turn:       string(g.Turn),
		PlayerX:    string(g.Players.X),
		PlayerO:    playerO,
		Board:      board,
		Winner:     winner,
		CreatedAt:  g.CreatedAt,
		UpdatedAt:  g.UpdatedAt,
		LastMoveAt: g.LastMoveAt,
	}
}

// Identity represents a trust ledger entry
type Identity struct {
	Identity  string    `json:"identity"`
	FirstSeen time.Time `json:"first_seen"`
}

// IdentityFromModel converts model.LedgerEntry
func IdentityFromModel(e *model.LedgerEntry) Identity {
	return Identity{
		Identity:  string(e.Identity),
		FirstSeen: e.FirstSeen,
	}
}

// IdentityCount is the size of the trust ledger
type IdentityCount struct {
	Count int `json:"count"`
}
