package model

import "time"

// GameID uniquely identifies a game
type GameID string

// maxGameIDLen bounds ids accepted from requests
const maxGameIDLen = 64

// Valid reports whether the id is non-empty and made only of ASCII letters,
// digits, '-' and '_'. Ids double as file names, so anything else is refused.
func (id GameID) Valid() bool {
	if id == "" || len(id) > maxGameIDLen {
		return false
	}
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
		default:
			return false
		}
	}
	return true
}

// GameStatus represents the outcome state of a game
type GameStatus string

const (
	GameStatusPlaying GameStatus = "playing"
	GameStatusXWon    GameStatus = "X_won"
	GameStatusOWon    GameStatus = "O_won"
	GameStatusDraw    GameStatus = "draw"
)

// IsTerminal returns true once no further moves are accepted
func (s GameStatus) IsTerminal() bool {
	return s != GameStatusPlaying
}

// Players maps the two roles to identities. O stays empty until a second
// identity joins.
type Players struct {
	X Identity `json:"X"`
	O Identity `json:"O"`
}

// Game represents a single tic-tac-toe match between two identities
type Game struct {
	ID      GameID     `json:"id"`
	Players Players    `json:"players"`
	Board   Board      `json:"board"`
	Turn    Mark       `json:"turn"`
	Status  GameStatus `json:"status"`

	CreatedAt  time.Time  `json:"created"`
	UpdatedAt  time.Time  `json:"updated"`
	LastMoveAt *time.Time `json:"last_move_ts"`
}

// NewGame creates a game owned by creator, who plays X and moves first
func NewGame(id GameID, creator Identity, now time.Time) *Game {
	return &Game{
		ID:        id,
		Players:   Players{X: creator},
		Turn:      MarkX,
		Status:    GameStatusPlaying,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Clone returns a deep copy of the game
func (g *Game) Clone() *Game {
	c := *g
	if g.LastMoveAt != nil {
		t := *g.LastMoveAt
		c.LastMoveAt = &t
	}
	return &c
}

// Player returns the identity holding the given role
func (g *Game) Player(role Mark) Identity {
	switch role {
	case MarkX:
		return g.Players.X
	case MarkO:
		return g.Players.O
	default:
		return ""
	}
}

// RoleOf returns the role held by id, or MarkEmpty for spectators
func (g *Game) RoleOf(id Identity) Mark {
	switch {
	case id == "":
		return MarkEmpty
	case g.Players.X == id:
		return MarkX
	case g.Players.O == id:
		return MarkO
	default:
		return MarkEmpty
	}
}

// IsWaiting returns true while the game has no second player
func (g *Game) IsWaiting() bool {
	return g.Status == GameStatusPlaying && g.Players.O == ""
}

// Join seats id as O if the seat is free and id is not already X.
// It reports whether the game changed.
func (g *Game) Join(id Identity) bool {
	if id == "" || g.Players.O != "" || id == g.Players.X {
		return false
	}
	g.Players.O = id
	return true
}

// CanPlay returns true if id may move right now
func (g *Game) CanPlay(id Identity) bool {
	return g.Status == GameStatusPlaying &&
		g.Players.O != "" &&
		id != "" &&
		g.Player(g.Turn) == id
}

// ApplyMove validates and plays a move for id at cell. On error the game is
// left untouched.
func (g *Game) ApplyMove(id Identity, cell int, now time.Time) error {
	if g.Status.IsTerminal() {
		return ErrGameOver
	}
	if !IsValidCell(cell) {
		return ErrInvalidCell
	}
	if !g.CanPlay(id) {
		return ErrNotPlayerTurn
	}
	if !g.Board.IsEmpty(cell) {
		return ErrCellOccupied
	}

	g.Board[cell] = g.Turn
	moveAt := now
	g.LastMoveAt = &moveAt
	g.UpdatedAt = now

	switch g.Board.Winner() {
	case MarkX:
		g.Status = GameStatusXWon
	case MarkO:
		g.Status = GameStatusOWon
	default:
		if g.Board.IsFull() {
			g.Status = GameStatusDraw
		} else {
			g.Turn = g.Turn.Opponent()
		}
	}
	return nil
}

// Supersedes reports whether g can replace prev as the stored record. A
// successor keeps every placed mark and seat of prev, and a finished game
// only supersedes an identical board.
func (g *Game) Supersedes(prev *Game) bool {
	if g.ID != prev.ID || g.Players.X != prev.Players.X {
		return false
	}
	if prev.Players.O != "" && g.Players.O != prev.Players.O {
		return false
	}
	for c, mark := range prev.Board {
		if mark != MarkEmpty && g.Board[c] != mark {
			return false
		}
	}
	if prev.Status.IsTerminal() {
		return g.Status == prev.Status && g.Board == prev.Board
	}
	return true
}

// Winner returns the winning role, or MarkEmpty for draws and open games
func (g *Game) Winner() Mark {
	switch g.Status {
	case GameStatusXWon:
		return MarkX
	case GameStatusOWon:
		return MarkO
	default:
		return MarkEmpty
	}
}

// Summary returns the lightweight listing view of the game
func (g *Game) Summary() GameSummary {
	return GameSummary{
		ID:        g.ID,
		Status:    g.Status,
		PlayerX:   g.Players.X.Short(),
		PlayerO:   g.Players.O.Short(),
		UpdatedAt: g.UpdatedAt,
	}
}

// GameSummary is a lightweight record of a game for menus and listings
type GameSummary struct {
	ID        GameID     `json:"id"`
	Status    GameStatus `json:"status"`
	PlayerX   string     `json:"player_x"`
	PlayerO   string     `json:"player_o"`
	UpdatedAt time.Time  `json:"updated_at"`
}
