package factory

import (
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/mcoot/gemtofu/internal/api"
	"github.com/mcoot/gemtofu/internal/api/handler"
	"github.com/mcoot/gemtofu/internal/dependencies/clock"
	"github.com/mcoot/gemtofu/internal/dependencies/random"
	"github.com/mcoot/gemtofu/internal/gemini"
	"github.com/mcoot/gemtofu/internal/server"
	"github.com/mcoot/gemtofu/internal/services/game"
	"github.com/mcoot/gemtofu/internal/services/ledger"
	"github.com/mcoot/gemtofu/internal/static"
	"github.com/mcoot/gemtofu/internal/storage"
	filestorage "github.com/mcoot/gemtofu/internal/storage/file"
	"github.com/mcoot/gemtofu/internal/storage/memory"
	redisstorage "github.com/mcoot/gemtofu/internal/storage/redis"
)

// Storage type constants
const (
	StorageTypeMemory = "memory"
	StorageTypeFile   = "file"
	StorageTypeRedis  = "redis"
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage

	// External dependencies
	Clock  clock.Clock
	Random random.Random

	// Services
	GameController *game.Controller
	LedgerService  *ledger.Service

	Logger *slog.Logger
}

// Config holds configuration for the application factory
type Config struct {
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the backend: "memory", "file" or "redis"
	// Defaults to "memory" if empty
	StorageType string
	// FileConfig holds file storage paths (required if StorageType is "file")
	FileConfig *filestorage.Config
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	store, err := newStorage(cfg, logger)
	if err != nil {
		return nil, err
	}

	return newWithDependencies(store, clock.New(), random.New(), logger), nil
}

func newStorage(cfg Config, logger *slog.Logger) (storage.Storage, error) {
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		return memory.New(), nil
	case StorageTypeFile:
		if cfg.FileConfig == nil {
			return nil, errors.New("FileConfig required when StorageType is file")
		}
		return filestorage.New(*cfg.FileConfig, logger)
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		return redisstorage.New(*cfg.RedisConfig)
	default:
		return nil, fmt.Errorf("invalid StorageType %q: must be 'memory', 'file' or 'redis'", storageType)
	}
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(store storage.Storage, clk clock.Clock, rnd random.Random, logger *slog.Logger) *App {
	return &App{
		Storage:        store,
		Clock:          clk,
		Random:         rnd,
		GameController: game.NewController(store, clk, rnd, logger),
		LedgerService:  ledger.New(store, clk, logger),
		Logger:         logger,
	}
}

// GeminiHandler builds the request router for the Gemini server
func (a *App) GeminiHandler(source static.Source, links game.Links) gemini.Handler {
	return server.NewRouter(
		server.NewGameHandler(a.GameController, links),
		server.NewStaticHandler(source, a.LedgerService),
	)
}

// GeminiServer builds the Gemini server around GeminiHandler
func (a *App) GeminiServer(cfg server.Config, tlsConfig *tls.Config, source static.Source, links game.Links) *server.Server {
	return server.New(cfg, tlsConfig, a.GeminiHandler(source, links), a.LedgerService, a.Logger)
}

// AdminRouter builds the admin HTTP API. Storage backends that can be
// pinged are checked by its health endpoint.
func (a *App) AdminRouter() http.Handler {
	cfg := api.RouterConfig{
		Logger:         a.Logger,
		GameController: a.GameController,
		LedgerService:  a.LedgerService,
	}
	if p, ok := a.Storage.(handler.Pinger); ok {
		cfg.Pinger = p
	}
	return api.NewRouter(cfg)
}

// Close releases storage resources
func (a *App) Close() error {
	return a.Storage.Close()
}
