package factory

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/gemtofu/internal/gemini"
	"github.com/mcoot/gemtofu/internal/model"
	"github.com/mcoot/gemtofu/internal/services/game"
	"github.com/mcoot/gemtofu/internal/static"
	filestorage "github.com/mcoot/gemtofu/internal/storage/file"
	"github.com/mcoot/gemtofu/internal/storage/memory"
	redisstorage "github.com/mcoot/gemtofu/internal/storage/redis"
)

var (
	alice = model.Identity(strings.Repeat("a", 64))
	bob   = model.Identity(strings.Repeat("b", 64))
)

func TestNewDefaultsToMemory(t *testing.T) {
	app, err := New(Config{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close() })

	assert.IsType(t, &memory.Storage{}, app.Storage)
	assert.NotNil(t, app.GameController)
	assert.NotNil(t, app.LedgerService)
}

func TestNewFileStorage(t *testing.T) {
	cfg := filestorage.DefaultConfig(t.TempDir())
	app, err := New(Config{StorageType: StorageTypeFile, FileConfig: &cfg})
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close() })

	app.LedgerService.Record(t.Context(), alice)

	data, err := os.ReadFile(cfg.LedgerPath)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), string(alice)+" "))
}

func TestNewRedisStorage(t *testing.T) {
	mini := miniredis.RunT(t)
	cfg := redisstorage.DefaultConfig()
	cfg.URL = "redis://" + mini.Addr()

	app, err := New(Config{StorageType: StorageTypeRedis, RedisConfig: &cfg})
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close() })

	g, err := app.GameController.CreateGame(t.Context(), alice)
	require.NoError(t, err)
	assert.True(t, mini.Exists("gemtofu:game:"+string(g.ID)))

	rr := httptest.NewRecorder()
	app.AdminRouter().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))
	assert.Equal(t, http.StatusOK, rr.Code)

	mini.SetError("ERR down")
	rr = httptest.NewRecorder()
	app.AdminRouter().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
}

func TestNewRejectsBadConfig(t *testing.T) {
	_, err := New(Config{StorageType: StorageTypeFile})
	require.Error(t, err)

	_, err = New(Config{StorageType: StorageTypeRedis})
	require.Error(t, err)

	_, err = New(Config{StorageType: "sqlite"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sqlite")
}

// IntegrationSuite drives the wired Gemini handler directly, bypassing TLS
type IntegrationSuite struct {
	suite.Suite
	app     *TestApp
	handler gemini.Handler
	ctx     context.Context
}

func TestIntegrationSuite(t *testing.T) {
	suite.Run(t, new(IntegrationSuite))
}

func (s *IntegrationSuite) SetupTest() {
	s.app = NewTestApp()
	s.ctx = context.Background()

	root := s.T().TempDir()
	s.Require().NoError(os.WriteFile(filepath.Join(root, "index.gmi"), []byte("# Home\n"), 0o644))
	dir, err := static.NewDir(root)
	s.Require().NoError(err)
	s.T().Cleanup(func() { _ = dir.Close() })

	s.handler = s.app.GeminiHandler(dir, game.Links{Host: "localhost"})
}

func (s *IntegrationSuite) get(id model.Identity, path string) *gemini.Response {
	raw := "gemini://localhost" + path
	req := gemini.NewRequest(raw, id, "127.0.0.1:5000")
	resp, err := s.handler.ServeGemini(s.ctx, req)
	s.Require().NoError(err, raw)
	return resp
}

func (s *IntegrationSuite) TestCompleteGameFlow() {
	s.app.MockRandom.QueueID("flow0001")

	resp := s.get(alice, "/game/new")
	s.Equal(gemini.StatusSuccess, resp.Status)
	s.Contains(string(resp.Body), "gemini://localhost/game/flow0001")

	// bob joins by viewing
	resp = s.get(bob, "/game/flow0001")
	s.Contains(string(resp.Body), "You are: O")

	moves := []struct {
		id   model.Identity
		cell string
	}{
		{alice, "0"}, {bob, "4"}, {alice, "1"}, {bob, "3"}, {alice, "2"},
	}
	for _, m := range moves {
		resp = s.get(m.id, "/game/flow0001/move/"+m.cell)
		s.Equal(gemini.StatusSuccess, resp.Status)
	}

	g, err := s.app.GameController.GetGame(s.ctx, "flow0001")
	s.Require().NoError(err)
	s.Equal(model.GameStatusXWon, g.Status)

	resp = s.get(bob, "/game/flow0001")
	s.Contains(string(resp.Body), "You lose, X wins")
}

func (s *IntegrationSuite) TestStaticBannerUsesLedger() {
	s.app.LedgerService.Record(s.ctx, alice)

	resp := s.get(alice, "/")
	s.Equal(gemini.StatusSuccess, resp.Status)
	s.Contains(string(resp.Body), "SHA-256 fingerprint: "+string(alice))
	s.Contains(string(resp.Body), "# Home")

	resp = s.get("", "/")
	s.NotContains(string(resp.Body), "fingerprint")
}
