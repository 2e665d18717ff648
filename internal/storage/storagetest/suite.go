// Package storagetest holds the behaviour every storage backend must share.
// Backend packages run it from their own tests.
package storagetest

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/gemtofu/internal/model"
	"github.com/mcoot/gemtofu/internal/storage"
)

const (
	alice model.Identity = "a1a1a1a1a1a1a1a1a1a1a1a1a1a1a1a1a1a1a1a1a1a1a1a1a1a1a1a1a1a1a1a1"
	bob   model.Identity = "b2b2b2b2b2b2b2b2b2b2b2b2b2b2b2b2b2b2b2b2b2b2b2b2b2b2b2b2b2b2b2b2"
)

// Factory returns a fresh, empty store for one test
type Factory func(t *testing.T) storage.Storage

// Run executes the conformance suite against stores built by newStorage
func Run(t *testing.T, newStorage Factory) {
	suite.Run(t, &Suite{newStorage: newStorage})
}

// Suite is the shared storage conformance suite
type Suite struct {
	suite.Suite
	newStorage Factory
	storage    storage.Storage
	ctx        context.Context
	now        time.Time
}

func (s *Suite) SetupTest() {
	s.storage = s.newStorage(s.T())
	s.ctx = context.Background()
	s.now = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
}

func (s *Suite) TearDownTest() {
	if s.storage != nil {
		_ = s.storage.Close()
	}
}

func (s *Suite) newGame(id model.GameID) *model.Game {
	s.now = s.now.Add(time.Minute)
	return model.NewGame(id, alice, s.now)
}

// Game tests

func (s *Suite) TestCreateAndGetGame() {
	game := s.newGame("game0001")
	s.Require().NoError(s.storage.CreateGame(s.ctx, game))

	got, err := s.storage.GetGame(s.ctx, "game0001")
	s.Require().NoError(err)
	s.Equal(game.ID, got.ID)
	s.Equal(alice, got.Players.X)
	s.Equal(model.MarkX, got.Turn)
	s.Equal(model.GameStatusPlaying, got.Status)
	s.True(game.CreatedAt.Equal(got.CreatedAt))
	s.Nil(got.LastMoveAt)
}

func (s *Suite) TestCreateGameRejectsDuplicateID() {
	s.Require().NoError(s.storage.CreateGame(s.ctx, s.newGame("dup00001")))

	err := s.storage.CreateGame(s.ctx, s.newGame("dup00001"))
	s.ErrorIs(err, model.ErrGameExists)
}

func (s *Suite) TestGetGameNotFound() {
	_, err := s.storage.GetGame(s.ctx, "missing1")
	s.ErrorIs(err, model.ErrGameNotFound)
}

func (s *Suite) TestSaveGameReplacesRecord() {
	game := s.newGame("save0001")
	s.Require().NoError(s.storage.CreateGame(s.ctx, game))

	game.Join(bob)
	s.Require().NoError(game.ApplyMove(alice, 4, s.now.Add(time.Second)))
	s.Require().NoError(s.storage.SaveGame(s.ctx, game))

	got, err := s.storage.GetGame(s.ctx, "save0001")
	s.Require().NoError(err)
	s.Equal(bob, got.Players.O)
	s.Equal(model.MarkX, got.Board[4])
	s.Equal(model.MarkO, got.Turn)
	s.Require().NotNil(got.LastMoveAt)
	s.True(got.LastMoveAt.Equal(*game.LastMoveAt))
}

func (s *Suite) TestReturnedGamesAreCopies() {
	game := s.newGame("copy0001")
	s.Require().NoError(s.storage.CreateGame(s.ctx, game))

	got, err := s.storage.GetGame(s.ctx, "copy0001")
	s.Require().NoError(err)
	got.Board[0] = model.MarkO
	game.Board[1] = model.MarkX

	again, err := s.storage.GetGame(s.ctx, "copy0001")
	s.Require().NoError(err)
	s.Equal(model.MarkEmpty, again.Board[0])
	s.Equal(model.MarkEmpty, again.Board[1])
}

func (s *Suite) TestListGamesMostRecentFirst() {
	for i := range 5 {
		s.Require().NoError(s.storage.CreateGame(s.ctx, s.newGame(model.GameID(fmt.Sprintf("list%04d", i)))))
	}

	// Touch the oldest game so it becomes the most recent
	oldest, err := s.storage.GetGame(s.ctx, "list0000")
	s.Require().NoError(err)
	oldest.Join(bob)
	oldest.UpdatedAt = s.now.Add(time.Hour)
	s.Require().NoError(s.storage.SaveGame(s.ctx, oldest))

	games, err := s.storage.ListGames(s.ctx, 3)
	s.Require().NoError(err)
	s.Require().Len(games, 3)
	s.Equal(model.GameID("list0000"), games[0].ID)
	s.Equal(model.GameID("list0004"), games[1].ID)
	s.Equal(model.GameID("list0003"), games[2].ID)

	all, err := s.storage.ListGames(s.ctx, 0)
	s.Require().NoError(err)
	s.Len(all, 5)
}

func (s *Suite) TestListGamesEmpty() {
	games, err := s.storage.ListGames(s.ctx, 20)
	s.Require().NoError(err)
	s.Empty(games)
}

// Ledger tests

func (s *Suite) TestRecordIdentityOnce() {
	first := s.now
	added, err := s.storage.RecordIdentity(s.ctx, alice, first)
	s.Require().NoError(err)
	s.True(added)

	added, err = s.storage.RecordIdentity(s.ctx, alice, first.Add(time.Hour))
	s.Require().NoError(err)
	s.False(added)

	entry, err := s.storage.GetIdentity(s.ctx, alice)
	s.Require().NoError(err)
	s.Equal(alice, entry.Identity)
	s.True(first.Equal(entry.FirstSeen), "first sighting must be kept")

	count, err := s.storage.CountIdentities(s.ctx)
	s.Require().NoError(err)
	s.Equal(1, count)
}

func (s *Suite) TestGetIdentityNotFound() {
	_, err := s.storage.GetIdentity(s.ctx, bob)
	s.ErrorIs(err, model.ErrIdentityNotFound)
}

func (s *Suite) TestConcurrentRecordIdentityAddsOneEntry() {
	const workers = 16

	var wg sync.WaitGroup
	results := make(chan bool, workers)
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			added, err := s.storage.RecordIdentity(s.ctx, bob, s.now)
			if err == nil {
				results <- added
			}
		}()
	}
	wg.Wait()
	close(results)

	addedCount := 0
	total := 0
	for added := range results {
		total++
		if added {
			addedCount++
		}
	}
	s.Equal(workers, total)
	s.Equal(1, addedCount)

	count, err := s.storage.CountIdentities(s.ctx)
	s.Require().NoError(err)
	s.Equal(1, count)
}
