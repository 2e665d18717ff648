package e2e_test

import (
	"context"
	"crypto/tls"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/gemtofu/internal/factory"
	"github.com/mcoot/gemtofu/internal/gemini"
	"github.com/mcoot/gemtofu/internal/identity"
	"github.com/mcoot/gemtofu/internal/model"
	"github.com/mcoot/gemtofu/internal/server"
	"github.com/mcoot/gemtofu/internal/services/game"
	"github.com/mcoot/gemtofu/internal/static"
	filestorage "github.com/mcoot/gemtofu/internal/storage/file"
	redisstorage "github.com/mcoot/gemtofu/internal/storage/redis"
	"github.com/mcoot/gemtofu/internal/testutil"
)

const ioTimeout = 300 * time.Millisecond

// testServer manages a real Gemini server for e2e tests
type testServer struct {
	app      *factory.App
	srv      *server.Server
	addr     string
	shutdown func()
}

// backend returns the factory storage settings for a storage type, rooted
// at dataDir
type backend func(t *testing.T, dataDir string) factory.Config

func memoryBackend(*testing.T, string) factory.Config {
	return factory.Config{StorageType: factory.StorageTypeMemory}
}

func fileBackend(_ *testing.T, dataDir string) factory.Config {
	cfg := filestorage.DefaultConfig(dataDir)
	return factory.Config{StorageType: factory.StorageTypeFile, FileConfig: &cfg}
}

func redisBackend(t *testing.T, _ string) factory.Config {
	mini := miniredis.RunT(t)
	cfg := redisstorage.DefaultConfig()
	cfg.URL = "redis://" + mini.Addr()
	return factory.Config{StorageType: factory.StorageTypeRedis, RedisConfig: &cfg}
}

var backends = map[string]backend{
	"memory": memoryBackend,
	"file":   fileBackend,
	"redis":  redisBackend,
}

func startTestServer(t *testing.T, cfg factory.Config, docRoot string) *testServer {
	t.Helper()

	cfg.Logger = testutil.NopLogger()
	app, err := factory.New(cfg)
	require.NoError(t, err)

	require.NoError(t, static.EnsureDirs(docRoot))
	source, err := static.NewDir(docRoot)
	require.NoError(t, err)

	srvCfg := server.DefaultConfig()
	srvCfg.Addr = "127.0.0.1:0"
	srvCfg.IOTimeout = ioTimeout
	srvCfg.Limiter.Rate = 0

	tlsConfig := server.NewTLSConfig(testutil.GenerateCert(t, "localhost"))
	srv := app.GeminiServer(srvCfg, tlsConfig, source, game.Links{Host: "localhost"})
	require.NoError(t, srv.Listen())

	done := make(chan error, 1)
	go func() { done <- srv.Serve(context.Background()) }()

	ts := &testServer{app: app, srv: srv, addr: srv.Addr()}
	stopped := false
	ts.shutdown = func() {
		if stopped {
			return
		}
		stopped = true
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		assert.NoError(t, srv.Shutdown(ctx))
		assert.NoError(t, <-done)
		_ = source.Close()
		_ = app.Close()
	}
	t.Cleanup(ts.shutdown)
	return ts
}

// player is a client identity
type player struct {
	id     model.Identity
	client *gemini.Client
}

func newPlayer(t *testing.T, name string) *player {
	t.Helper()
	cert := testutil.GenerateCert(t, name)
	id, err := identity.FromCertificate(cert.Certificate[0])
	require.NoError(t, err)
	return &player{
		id:     id,
		client: &gemini.Client{Certificate: &cert, Timeout: 5 * time.Second},
	}
}

func (ts *testServer) get(t *testing.T, p *player, path string) *gemini.Response {
	t.Helper()
	c := &gemini.Client{Timeout: 5 * time.Second}
	if p != nil {
		c = p.client
	}
	resp, err := c.Do(t.Context(), ts.addr, "gemini://localhost"+path)
	require.NoError(t, err, path)
	return resp
}

func (ts *testServer) game(t *testing.T, id model.GameID) *model.Game {
	t.Helper()
	g, err := ts.app.GameController.GetGame(t.Context(), id)
	require.NoError(t, err)
	return g
}

// createGame has p create a game and returns its id, parsed from the
// absolute link on the confirmation page
func (ts *testServer) createGame(t *testing.T, p *player) model.GameID {
	t.Helper()
	resp := ts.get(t, p, "/game/new")
	require.Equal(t, gemini.StatusSuccess, resp.Status)

	const prefix = "=> gemini://localhost/game/"
	for line := range strings.SplitSeq(string(resp.Body), "\n") {
		if rest, ok := strings.CutPrefix(line, prefix); ok {
			id, _, _ := strings.Cut(rest, " ")
			return model.GameID(id)
		}
	}
	t.Fatalf("no game link in %q", resp.Body)
	return ""
}

func TestScenarios(t *testing.T) {
	for name, newBackend := range backends {
		t.Run(name, func(t *testing.T) {
			ts := startTestServer(t, newBackend(t, t.TempDir()), t.TempDir())
			alice := newPlayer(t, "alice")
			bob := newPlayer(t, "bob")

			t.Run("create and join", func(t *testing.T) {
				id := ts.createGame(t, alice)

				g := ts.game(t, id)
				assert.True(t, g.IsWaiting())
				assert.Equal(t, model.Identity(""), g.Players.O)

				resp := ts.get(t, bob, "/game/"+string(id))
				require.Equal(t, gemini.StatusSuccess, resp.Status)
				assert.Contains(t, string(resp.Body), "You are: O")

				g = ts.game(t, id)
				assert.Equal(t, bob.id, g.Players.O)
				assert.Equal(t, model.GameStatusPlaying, g.Status)
				assert.Equal(t, model.MarkX, g.Turn)
			})

			t.Run("top row win", func(t *testing.T) {
				id := ts.createGame(t, alice)
				ts.get(t, bob, "/game/"+string(id))

				moves := []struct {
					p    *player
					cell string
				}{
					{alice, "0"}, {bob, "4"}, {alice, "1"}, {bob, "3"}, {alice, "2"},
				}
				for _, m := range moves {
					resp := ts.get(t, m.p, "/game/"+string(id)+"/move/"+m.cell)
					require.Equal(t, gemini.StatusSuccess, resp.Status)
					assert.Contains(t, string(resp.Body), "Move played.")
				}

				g := ts.game(t, id)
				assert.Equal(t, model.GameStatusXWon, g.Status)
				assert.Equal(t, model.MarkX, g.Board[0])
				assert.Equal(t, model.MarkX, g.Board[1])
				assert.Equal(t, model.MarkX, g.Board[2])

				for _, p := range []*player{alice, bob} {
					resp := ts.get(t, p, "/game/"+string(id)+"/move/5")
					assert.Equal(t, gemini.StatusSuccess, resp.Status)
					assert.Contains(t, string(resp.Body), "The game is already over.")
				}
				assert.Equal(t, model.MarkEmpty, ts.game(t, id).Board[5])
			})

			t.Run("idle partial request", func(t *testing.T) {
				conn, err := tls.Dial("tcp", ts.addr, &tls.Config{InsecureSkipVerify: true}) //nolint:gosec // test server
				require.NoError(t, err)
				defer func() { _ = conn.Close() }()

				_, err = conn.Write([]byte("not-a-valid-uri"))
				require.NoError(t, err)

				require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
				data, err := io.ReadAll(conn)
				require.NoError(t, err)
				assert.Equal(t, "59 Bad request\r\n", string(data))
			})

			t.Run("no certificate", func(t *testing.T) {
				for _, path := range []string{"/game", "/game/new", "/game/abc", "/game/abc/move/0"} {
					resp := ts.get(t, nil, path)
					assert.Equal(t, gemini.StatusCertificateRequired, resp.Status, path)
					assert.Equal(t, "Client certificate required", resp.Meta, path)
				}

				// static resources are public
				resp := ts.get(t, nil, "/")
				assert.Equal(t, gemini.StatusSuccess, resp.Status)
				assert.NotContains(t, string(resp.Body), "fingerprint")
			})
		})
	}
}

func TestFileBackendSurvivesRestart(t *testing.T) {
	dataDir := t.TempDir()
	docRoot := t.TempDir()
	alice := newPlayer(t, "alice")
	bob := newPlayer(t, "bob")

	first := startTestServer(t, fileBackend(t, dataDir), docRoot)
	id := first.createGame(t, alice)
	first.get(t, bob, "/game/"+string(id)+"/move/4")
	first.get(t, alice, "/game/"+string(id)+"/move/0")
	first.shutdown()

	ledgerPath := filepath.Join(dataDir, "trusted_clients.txt")
	before, err := os.ReadFile(ledgerPath)
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(string(before), "\n"))

	second := startTestServer(t, fileBackend(t, dataDir), docRoot)
	g := second.game(t, id)
	assert.Equal(t, bob.id, g.Players.O)
	assert.Equal(t, model.MarkX, g.Board[0])
	assert.Equal(t, model.MarkO, g.Turn)

	resp := second.get(t, alice, "/")
	assert.Contains(t, string(resp.Body), "SHA-256 fingerprint: "+string(alice.id))

	after, err := os.ReadFile(ledgerPath)
	require.NoError(t, err)
	assert.Equal(t, string(before), string(after), "returning identities are not appended again")
}
