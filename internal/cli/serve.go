package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mcoot/gemtofu/internal/api"
	"github.com/mcoot/gemtofu/internal/factory"
	"github.com/mcoot/gemtofu/internal/server"
	"github.com/mcoot/gemtofu/internal/services/game"
	"github.com/mcoot/gemtofu/internal/static"
)

// shutdownTimeout bounds how long in-flight requests may take to drain
const shutdownTimeout = 10 * time.Second

func newServeCmd() *cobra.Command {
	d := DefaultConfig()

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the Gemini server",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := cfg.NewLogger(cmd.OutOrStdout())
			slog.SetDefault(logger)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return runServe(ctx, cfg, logger, nil)
		},
	}

	f := cmd.Flags()
	f.String("listen", d.Listen, "Gemini listen address (env: GEMTOFU_LISTEN)")
	f.String("host", d.Host, "Public host used in absolute links, gets the listen port unless it has one (env: GEMTOFU_HOST)")
	f.String("doc-root", d.DocRoot, "Directory of static resources (env: GEMTOFU_DOC_ROOT)")
	f.String("data-dir", d.DataDir, "Directory for games and the trust ledger (env: GEMTOFU_DATA_DIR)")
	f.String("cert-file", d.CertFile, "PEM server certificate (env: GEMTOFU_CERT_FILE)")
	f.String("key-file", d.KeyFile, "PEM server private key (env: GEMTOFU_KEY_FILE)")
	f.Duration("io-timeout", d.IOTimeout, "Per-phase handshake, read and write timeout (env: GEMTOFU_IO_TIMEOUT)")
	f.Int("max-request-bytes", d.MaxRequestBytes, "Maximum request line length (env: GEMTOFU_MAX_REQUEST_BYTES)")
	f.Float64("rate-limit", d.RateLimit, "Connections per second allowed per IP, 0 disables (env: GEMTOFU_RATE_LIMIT)")
	f.Int("rate-burst", d.RateBurst, "Connection burst allowed per IP (env: GEMTOFU_RATE_BURST)")
	f.String("storage", d.Storage, "Storage backend: memory, file, redis (env: GEMTOFU_STORAGE)")
	f.String("redis-url", d.RedisURL, "Redis URL for the redis backend (env: GEMTOFU_REDIS_URL)")
	f.Duration("game-ttl", d.GameTTL, "Opt-in: expire idle redis games, finished ones too. 0 keeps every game (env: GEMTOFU_GAME_TTL)")

	return cmd
}

// runServe starts the Gemini server and, if configured, the admin API, then
// blocks until ctx is done or a server fails. ready, if set, is called with
// the bound addresses once both are accepting connections.
func runServe(ctx context.Context, c *Config, logger *slog.Logger, ready func(geminiAddr, adminAddr string)) error {
	if err := static.EnsureDirs(c.DocRoot, c.DataDir); err != nil {
		return fmt.Errorf("failed to prepare directories: %w", err)
	}

	tlsConfig, err := server.LoadTLSConfig(c.CertFile, c.KeyFile)
	if err != nil {
		return err
	}

	app, err := factory.New(c.FactoryConfig(logger))
	if err != nil {
		return fmt.Errorf("failed to create application: %w", err)
	}
	defer func() {
		if err := app.Close(); err != nil {
			logger.Warn("failed to close storage", slog.String("error", err.Error()))
		}
	}()

	source, err := static.NewDir(c.DocRoot)
	if err != nil {
		return err
	}
	defer func() { _ = source.Close() }()

	gem := app.GeminiServer(c.ServerConfig(), tlsConfig, source, game.Links{Host: c.PublicHost()})
	if err := gem.Listen(); err != nil {
		return err
	}

	var admin *api.Server
	if c.AdminAddr != "" {
		admin = api.NewServer(app.AdminRouter(), c.AdminConfig(), logger)
		if err := admin.Listen(); err != nil {
			_ = gem.Shutdown(context.Background())
			return err
		}
	}

	// In-flight requests keep their context through shutdown
	serveCtx := context.WithoutCancel(ctx)

	errCh := make(chan error, 2)
	go func() { errCh <- gem.Serve(serveCtx) }()

	adminAddr := ""
	if admin != nil {
		adminAddr = admin.Addr()
		go func() { errCh <- admin.Start() }()
	}

	logger.Info("server started",
		slog.String("addr", gem.Addr()),
		slog.String("admin_addr", adminAddr),
		slog.String("storage", c.Storage),
	)
	if ready != nil {
		ready(gem.Addr(), adminAddr)
	}

	var runErr error
	select {
	case runErr = <-errCh:
		logger.Error("server exited", slog.Any("error", runErr))
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := gem.Shutdown(shutdownCtx); err != nil {
		runErr = errors.Join(runErr, err)
	}
	if admin != nil {
		if err := admin.Shutdown(shutdownCtx); err != nil {
			runErr = errors.Join(runErr, err)
		}
	}

	logger.Info("server stopped")
	return runErr
}
