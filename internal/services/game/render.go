package game

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mcoot/gemtofu/internal/gemtext"
	"github.com/mcoot/gemtofu/internal/model"
)

// Paths of the game routes, as rendered into links
const (
	MenuPath    = "/game"
	NewGamePath = "/game/new"
	HomePath    = "/index.gmi"
)

// Links builds links to game resources. Host is the public "host[:port]"
// used in absolute, shareable links.
type Links struct {
	Host string
}

// GameURL is the canonical absolute link to a game
func (l Links) GameURL(id model.GameID) string {
	return "gemini://" + l.Host + GamePath(id)
}

// GamePath is the relative link to a game
func GamePath(id model.GameID) string {
	return MenuPath + "/" + string(id)
}

// MovePath is the relative link playing cell in a game
func MovePath(id model.GameID, cell int) string {
	return fmt.Sprintf("%s/move/%d", GamePath(id), cell)
}

// RenderBoard draws the board as text, with a dot for empty cells
func RenderBoard(b model.Board) string {
	cell := func(i int) string {
		if b[i] == model.MarkEmpty {
			return "·"
		}
		return string(b[i])
	}

	rows := make([]string, 0, 5)
	for r := range 3 {
		if r > 0 {
			rows = append(rows, "--+---+--")
		}
		rows = append(rows, fmt.Sprintf("%s | %s | %s", cell(3*r), cell(3*r+1), cell(3*r+2)))
	}
	return strings.Join(rows, "\n")
}

func roleLabel(role model.Mark) string {
	if role == model.MarkEmpty {
		return "spectator"
	}
	return string(role)
}

// RenderGame renders a game as seen by viewer
func RenderGame(game *model.Game, viewer model.Identity, links Links) *gemtext.Document {
	doc := &gemtext.Document{}
	role := game.RoleOf(viewer)

	doc.Heading(1, "Tic-tac-toe").
		Blank().
		Text("Game: " + string(game.ID)).
		Text("You are: " + roleLabel(role)).
		Text("Turn: " + string(game.Turn)).
		Text("Status: " + string(game.Status)).
		Blank()

	if game.IsWaiting() {
		doc.Text("Waiting for a second player...").
			Blank().
			Text("Share this link:").
			Link(links.GameURL(game.ID), "Join the game").
			Blank()
	}

	doc.Heading(2, "Board").
		Preformatted("board", RenderBoard(game.Board)).
		Blank()

	switch {
	case game.Status.IsTerminal():
		doc.Heading(2, resultLine(game, role)).
			Blank().
			Link(NewGamePath, "Play again (new game)")
	case game.CanPlay(viewer):
		doc.Heading(2, "Your move").
			Text("Choose a cell:")
		for _, cell := range game.Board.EmptyCells() {
			doc.Link(MovePath(game.ID, cell), fmt.Sprintf("Cell %d", cell+1))
		}
	case game.IsWaiting():
		doc.Heading(2, "Waiting").
			Text("The game starts when O joins.")
	default:
		doc.Heading(2, "Waiting").
			Text(fmt.Sprintf("It is %s's turn.", game.Turn))
	}

	doc.Blank().
		Link(MenuPath, "Back to the game menu").
		Link(HomePath, "Home")
	return doc
}

// resultLine describes a finished game relative to the viewer's role
func resultLine(game *model.Game, role model.Mark) string {
	winner := game.Winner()
	switch {
	case winner == model.MarkEmpty:
		return "Draw"
	case role == model.MarkEmpty:
		return fmt.Sprintf("%s wins", winner)
	case role == winner:
		return fmt.Sprintf("You win (%s)", winner)
	default:
		return fmt.Sprintf("You lose, %s wins", winner)
	}
}

// RenderMenu renders the list of recent games
func RenderMenu(summaries []model.GameSummary) *gemtext.Document {
	doc := &gemtext.Document{}
	doc.Heading(1, "Tic-tac-toe (2 players)").
		Blank().
		Text("The server uses your client certificate to identify you.").
		Blank().
		Link(NewGamePath, "New game (you will be X)").
		Blank()

	if len(summaries) == 0 {
		doc.Text("No games yet.")
	}
	for _, s := range summaries {
		doc.Link(GamePath(s.ID), fmt.Sprintf("Game %s - %s - X:%s O:%s", s.ID, s.Status, s.PlayerX, s.PlayerO))
	}

	doc.Blank().
		Link(HomePath, "Home")
	return doc
}

// RenderCreated renders the confirmation page for a new game
func RenderCreated(game *model.Game, links Links) *gemtext.Document {
	doc := &gemtext.Document{}
	doc.Heading(1, "New game created").
		Blank().
		Text("ID: " + string(game.ID)).
		Blank().
		Text("Share this link with a friend:").
		Link(links.GameURL(game.ID), "Open the game").
		Blank().
		Link(MenuPath, "Back")
	return doc
}

// MoveMessage describes the outcome of a move attempt. Every rejection
// reason gets its own message.
func MoveMessage(err error, game *model.Game, links Links) string {
	switch {
	case err == nil:
		return "Move played. " + links.GameURL(game.ID)
	case errors.Is(err, model.ErrGameOver):
		return "The game is already over."
	case errors.Is(err, model.ErrInvalidCell):
		return "Invalid cell, choose 0 to 8."
	case errors.Is(err, model.ErrNotPlayerTurn):
		return "It is not your turn."
	case errors.Is(err, model.ErrCellOccupied):
		return "That cell is already taken."
	default:
		return "Move failed."
	}
}

// RenderMoveResult renders the game followed by the quoted move outcome
func RenderMoveResult(game *model.Game, viewer model.Identity, moveErr error, links Links) *gemtext.Document {
	doc := RenderGame(game, viewer, links)
	doc.Blank().Quote(MoveMessage(moveErr, game, links))
	return doc
}
