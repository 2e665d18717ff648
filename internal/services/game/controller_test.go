package game

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/gemtofu/internal/dependencies/mocks"
	"github.com/mcoot/gemtofu/internal/model"
	"github.com/mcoot/gemtofu/internal/storage/memory"
	"github.com/mcoot/gemtofu/internal/testutil"
)

const (
	alice model.Identity = "a1a1a1a1a1a1a1a1a1a1a1a1a1a1a1a1a1a1a1a1a1a1a1a1a1a1a1a1a1a1a1a1"
	bob   model.Identity = "b2b2b2b2b2b2b2b2b2b2b2b2b2b2b2b2b2b2b2b2b2b2b2b2b2b2b2b2b2b2b2b2"
	carol model.Identity = "c3c3c3c3c3c3c3c3c3c3c3c3c3c3c3c3c3c3c3c3c3c3c3c3c3c3c3c3c3c3c3c3"
)

type ControllerSuite struct {
	suite.Suite
	storage    *memory.Storage
	clock      *mocks.MockClock
	random     *mocks.MockRandom
	controller *Controller
	ctx        context.Context
}

func TestControllerSuite(t *testing.T) {
	suite.Run(t, new(ControllerSuite))
}

func (s *ControllerSuite) SetupTest() {
	s.storage = memory.New()
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.random = mocks.NewMockRandom()
	s.controller = NewController(s.storage, s.clock, s.random, testutil.NopLogger())
	s.ctx = context.Background()
}

// startedGame creates a game by alice joined by bob
func (s *ControllerSuite) startedGame() model.GameID {
	game, err := s.controller.CreateGame(s.ctx, alice)
	s.Require().NoError(err)
	_, err = s.controller.JoinIfNeeded(s.ctx, game.ID, bob)
	s.Require().NoError(err)
	return game.ID
}

func (s *ControllerSuite) play(id model.GameID, player model.Identity, cell int) *model.Game {
	s.clock.Advance(time.Second)
	game, err := s.controller.PlayMove(s.ctx, id, player, cell)
	s.Require().NoError(err)
	return game
}

// CreateGame tests

func (s *ControllerSuite) TestCreateGameSucceeds() {
	s.random.QueueID("abcd1234")

	game, err := s.controller.CreateGame(s.ctx, alice)
	s.Require().NoError(err)

	s.Equal(model.GameID("abcd1234"), game.ID)
	s.Equal(alice, game.Players.X)
	s.True(game.IsWaiting())
	s.Equal(s.clock.Now(), game.CreatedAt)

	stored, err := s.storage.GetGame(s.ctx, "abcd1234")
	s.Require().NoError(err)
	s.Equal(game, stored)
}

func (s *ControllerSuite) TestCreateGameRetriesOnCollision() {
	s.random.QueueID("taken001", "taken001", "fresh001")

	_, err := s.controller.CreateGame(s.ctx, alice)
	s.Require().NoError(err)

	game, err := s.controller.CreateGame(s.ctx, bob)
	s.Require().NoError(err)
	s.Equal(model.GameID("fresh001"), game.ID)
}

func (s *ControllerSuite) TestCreateGameRequiresIdentity() {
	_, err := s.controller.CreateGame(s.ctx, "")
	s.Error(err)
}

// GetGame tests

func (s *ControllerSuite) TestGetGameUnknownOrInvalidID() {
	_, err := s.controller.GetGame(s.ctx, "nope0000")
	s.ErrorIs(err, model.ErrGameNotFound)

	_, err = s.controller.GetGame(s.ctx, "../etc")
	s.ErrorIs(err, model.ErrGameNotFound)
}

// JoinIfNeeded tests

func (s *ControllerSuite) TestSecondIdentityJoinsAsO() {
	game, err := s.controller.CreateGame(s.ctx, alice)
	s.Require().NoError(err)
	s.True(game.IsWaiting())

	s.clock.Advance(time.Minute)
	joined, err := s.controller.JoinIfNeeded(s.ctx, game.ID, bob)
	s.Require().NoError(err)
	s.Equal(bob, joined.Players.O)
	s.Equal(model.GameStatusPlaying, joined.Status)
	s.Equal(model.MarkX, joined.Turn)
	s.Equal(s.clock.Now(), joined.UpdatedAt)

	stored, err := s.storage.GetGame(s.ctx, game.ID)
	s.Require().NoError(err)
	s.Equal(bob, stored.Players.O)
}

func (s *ControllerSuite) TestCreatorDoesNotJoinOwnGame() {
	game, err := s.controller.CreateGame(s.ctx, alice)
	s.Require().NoError(err)

	viewed, err := s.controller.JoinIfNeeded(s.ctx, game.ID, alice)
	s.Require().NoError(err)
	s.True(viewed.IsWaiting())
}

func (s *ControllerSuite) TestJoinIsIdempotent() {
	id := s.startedGame()

	for _, viewer := range []model.Identity{bob, carol, alice, ""} {
		game, err := s.controller.JoinIfNeeded(s.ctx, id, viewer)
		s.Require().NoError(err)
		s.Equal(model.Players{X: alice, O: bob}, game.Players)
	}
}

func (s *ControllerSuite) TestJoinUnknownGame() {
	_, err := s.controller.JoinIfNeeded(s.ctx, "missing1", bob)
	s.ErrorIs(err, model.ErrGameNotFound)
}

func (s *ControllerSuite) TestConcurrentJoinSeatsExactlyOne() {
	game, err := s.controller.CreateGame(s.ctx, alice)
	s.Require().NoError(err)

	var wg sync.WaitGroup
	for _, viewer := range []model.Identity{bob, carol, bob, carol} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = s.controller.JoinIfNeeded(s.ctx, game.ID, viewer)
		}()
	}
	wg.Wait()

	stored, err := s.storage.GetGame(s.ctx, game.ID)
	s.Require().NoError(err)
	s.Contains([]model.Identity{bob, carol}, stored.Players.O)
	s.NotEqual(stored.Players.X, stored.Players.O)
}

// PlayMove tests

func (s *ControllerSuite) TestPlayMovePersists() {
	id := s.startedGame()

	game := s.play(id, alice, 4)
	s.Equal(model.MarkX, game.Board[4])
	s.Equal(model.MarkO, game.Turn)

	stored, err := s.storage.GetGame(s.ctx, id)
	s.Require().NoError(err)
	s.Equal(model.MarkX, stored.Board[4])
	s.Require().NotNil(stored.LastMoveAt)
	s.Equal(s.clock.Now(), *stored.LastMoveAt)
}

func (s *ControllerSuite) TestPlayMoveJoinsFirst() {
	game, err := s.controller.CreateGame(s.ctx, alice)
	s.Require().NoError(err)

	// bob's move seats him as O, but it is X's turn
	got, err := s.controller.PlayMove(s.ctx, game.ID, bob, 0)
	s.ErrorIs(err, model.ErrNotPlayerTurn)
	s.Equal(bob, got.Players.O)

	stored, err := s.storage.GetGame(s.ctx, game.ID)
	s.Require().NoError(err)
	s.Equal(bob, stored.Players.O)
	s.Equal(model.MarkEmpty, stored.Board[0])
}

func (s *ControllerSuite) TestRejectedMoveReturnsGame() {
	id := s.startedGame()
	s.play(id, alice, 0)

	game, err := s.controller.PlayMove(s.ctx, id, bob, 0)
	s.ErrorIs(err, model.ErrCellOccupied)
	s.True(model.IsInvalidMove(err))
	s.Require().NotNil(game)
	s.Equal(model.MarkO, game.Turn)

	_, err = s.controller.PlayMove(s.ctx, id, carol, 1)
	s.ErrorIs(err, model.ErrNotPlayerTurn)

	_, err = s.controller.PlayMove(s.ctx, id, bob, 9)
	s.ErrorIs(err, model.ErrInvalidCell)
}

func (s *ControllerSuite) TestPlayMoveUnknownGame() {
	_, err := s.controller.PlayMove(s.ctx, "missing1", alice, 0)
	s.ErrorIs(err, model.ErrGameNotFound)
}

func (s *ControllerSuite) TestConcurrentMovesOnlyOneSucceeds() {
	id := s.startedGame()

	const attempts = 8
	var wg sync.WaitGroup
	errs := make(chan error, attempts)
	for i := range attempts {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.controller.PlayMove(s.ctx, id, alice, i)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	succeeded := 0
	for err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		s.ErrorIs(err, model.ErrNotPlayerTurn)
	}
	s.Equal(1, succeeded)

	stored, err := s.storage.GetGame(s.ctx, id)
	s.Require().NoError(err)
	s.Len(stored.Board.EmptyCells(), model.BoardSize-1)
	s.Equal(model.MarkO, stored.Turn)
	s.Equal(0, s.controller.locks.size())
}

// Scenario: alice creates, bob joins, alice wins on the top row
func (s *ControllerSuite) TestTopRowWinScenario() {
	game, err := s.controller.CreateGame(s.ctx, alice)
	s.Require().NoError(err)
	s.True(game.IsWaiting())

	joined, err := s.controller.JoinIfNeeded(s.ctx, game.ID, bob)
	s.Require().NoError(err)
	s.Equal(bob, joined.Players.O)
	s.Equal(model.MarkX, joined.Turn)

	s.play(game.ID, alice, 0)
	s.play(game.ID, bob, 4)
	s.play(game.ID, alice, 1)
	s.play(game.ID, bob, 3)
	final := s.play(game.ID, alice, 2)
	s.Equal(model.GameStatusXWon, final.Status)

	_, err = s.controller.PlayMove(s.ctx, game.ID, bob, 5)
	s.ErrorIs(err, model.ErrGameOver)
	_, err = s.controller.PlayMove(s.ctx, game.ID, alice, 5)
	s.ErrorIs(err, model.ErrGameOver)
}

// ListRecent tests

func (s *ControllerSuite) TestListRecent() {
	s.random.QueueID("first001", "second01")
	_, err := s.controller.CreateGame(s.ctx, alice)
	s.Require().NoError(err)
	s.clock.Advance(time.Minute)
	_, err = s.controller.CreateGame(s.ctx, bob)
	s.Require().NoError(err)

	summaries, err := s.controller.ListRecent(s.ctx, MenuLimit)
	s.Require().NoError(err)
	s.Require().Len(summaries, 2)
	s.Equal(model.GameID("second01"), summaries[0].ID)
	s.Equal("b2b2b2", summaries[0].PlayerX)
	s.Equal("...", summaries[0].PlayerO)

	limited, err := s.controller.ListRecent(s.ctx, 1)
	s.Require().NoError(err)
	s.Len(limited, 1)
}

// Persistence failure tests

// failingSaves wraps memory storage and fails every SaveGame
type failingSaves struct {
	*memory.Storage
}

func (failingSaves) SaveGame(context.Context, *model.Game) error {
	return errors.New("disk full")
}

func (s *ControllerSuite) TestSaveFailureLeavesRecordUntouched() {
	store := failingSaves{memory.New()}
	controller := NewController(store, s.clock, s.random, testutil.NopLogger())

	game, err := controller.CreateGame(s.ctx, alice)
	s.Require().NoError(err)
	original := game.Clone()
	original.Players.O = bob
	s.Require().NoError(store.Storage.SaveGame(s.ctx, original))

	got, err := controller.PlayMove(s.ctx, game.ID, alice, 0)
	s.Require().Error(err)
	s.False(model.IsInvalidMove(err))
	s.Nil(got)

	stored, err := store.GetGame(s.ctx, game.ID)
	s.Require().NoError(err)
	s.Equal(original, stored)
}

// rivalWriter wraps memory storage and lets another writer commit a move
// just before the first SaveGame, which then reports a conflict
type rivalWriter struct {
	*memory.Storage
	rivalCell int
	fired     bool
}

func (r *rivalWriter) SaveGame(ctx context.Context, game *model.Game) error {
	if r.fired {
		return r.Storage.SaveGame(ctx, game)
	}
	r.fired = true
	stored, err := r.Storage.GetGame(ctx, game.ID)
	if err != nil {
		return err
	}
	if err := stored.ApplyMove(stored.Player(stored.Turn), r.rivalCell, stored.UpdatedAt); err != nil {
		return err
	}
	if err := r.Storage.SaveGame(ctx, stored); err != nil {
		return err
	}
	return model.ErrGameConflict
}

func (s *ControllerSuite) TestConcurrentCommitElsewhereIsReloaded() {
	id := s.startedGame()
	store := &rivalWriter{Storage: s.storage, rivalCell: 4}
	controller := NewController(store, s.clock, s.random, testutil.NopLogger())

	// The rival already played X's turn, so alice's move is now out of turn
	game, err := controller.PlayMove(s.ctx, id, alice, 0)
	s.ErrorIs(err, model.ErrNotPlayerTurn)
	s.Require().NotNil(game)
	s.Equal(model.MarkX, game.Board[4])
	s.Equal(model.MarkEmpty, game.Board[0])

	stored, err := s.storage.GetGame(s.ctx, id)
	s.Require().NoError(err)
	s.Equal(model.MarkEmpty, stored.Board[0])
	s.Equal(model.MarkO, stored.Turn)
}

func (s *ControllerSuite) TestConflictsGiveUpAfterRetries() {
	id := s.startedGame()
	store := conflictingSaves{s.storage}
	controller := NewController(store, s.clock, s.random, testutil.NopLogger())

	game, err := controller.PlayMove(s.ctx, id, alice, 0)
	s.ErrorIs(err, model.ErrGameConflict)
	s.False(model.IsInvalidMove(err))
	s.Nil(game)
}

// conflictingSaves reports a conflict on every SaveGame
type conflictingSaves struct {
	*memory.Storage
}

func (conflictingSaves) SaveGame(context.Context, *model.Game) error {
	return model.ErrGameConflict
}
