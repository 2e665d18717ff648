package server

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"runtime/debug"
	"sync"
	"time"

	"github.com/mcoot/gemtofu/internal/gemini"
	"github.com/mcoot/gemtofu/internal/identity"
	"github.com/mcoot/gemtofu/internal/model"
)

// Config holds configuration for the Gemini server
type Config struct {
	// Addr is the TCP listen address
	Addr string
	// IOTimeout bounds the handshake, the request read and the response
	// write, each on its own
	IOTimeout time.Duration
	// MaxRequestBytes is the hard ceiling on a request line
	MaxRequestBytes int
	// Limiter configures per-IP connection rate limiting
	Limiter LimiterConfig
}

// DefaultConfig returns sensible defaults for server configuration
func DefaultConfig() Config {
	return Config{
		Addr:            ":1965",
		IOTimeout:       5 * time.Second,
		MaxRequestBytes: gemini.DefaultMaxRequestBytes,
		Limiter:         DefaultLimiterConfig(),
	}
}

// IdentityRecorder notes that an identity was seen
type IdentityRecorder interface {
	Record(ctx context.Context, id model.Identity)
}

// Server accepts TLS connections and answers exactly one Gemini request on
// each, in its own goroutine
type Server struct {
	cfg       Config
	tlsConfig *tls.Config
	handler   gemini.Handler
	ledger    IdentityRecorder
	limiter   *ipLimiter
	logger    *slog.Logger

	mu       sync.Mutex
	listener net.Listener
	closing  bool
	conns    sync.WaitGroup
}

// New creates a new Gemini server. The handler is wrapped with panic
// recovery.
func New(cfg Config, tlsConfig *tls.Config, handler gemini.Handler, ledger IdentityRecorder, logger *slog.Logger) *Server {
	if cfg.IOTimeout <= 0 {
		cfg.IOTimeout = DefaultConfig().IOTimeout
	}
	if cfg.MaxRequestBytes <= 0 {
		cfg.MaxRequestBytes = gemini.DefaultMaxRequestBytes
	}
	return &Server{
		cfg:       cfg,
		tlsConfig: tlsConfig,
		handler:   gemini.Chain(handler, Recovery(logger)),
		ledger:    ledger,
		limiter:   newIPLimiter(cfg.Limiter, time.Now),
		logger:    logger,
	}
}

// Listen binds the listen address without accepting connections yet
func (s *Server) Listen() error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.cfg.Addr, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		_ = ln.Close()
		return errors.New("server already listening")
	}
	s.listener = ln
	return nil
}

// Start listens and serves until Shutdown is called
func (s *Server) Start(ctx context.Context) error {
	if err := s.Listen(); err != nil {
		return err
	}
	return s.Serve(ctx)
}

// Serve accepts connections on the bound listener until Shutdown is called.
// Per-connection failures never stop the loop.
func (s *Server) Serve(ctx context.Context) error {
	s.mu.Lock()
	ln := s.listener
	s.mu.Unlock()
	if ln == nil {
		return errors.New("server is not listening")
	}

	s.logger.Info("starting Gemini server", slog.String("addr", ln.Addr().String()))

	consecutiveErrors := 0
	for {
		conn, err := ln.Accept()
		if err != nil {
			if s.isClosing() || errors.Is(err, net.ErrClosed) {
				return nil
			}
			consecutiveErrors++
			s.logger.Error("accept error",
				slog.String("error", err.Error()),
				slog.Int("consecutive", consecutiveErrors),
			)
			// Backoff: 50ms * consecutive error count, max 1s
			backoff := min(time.Duration(consecutiveErrors)*50*time.Millisecond, time.Second)
			time.Sleep(backoff)
			continue
		}
		consecutiveErrors = 0

		if !s.track() {
			_ = conn.Close()
			return nil
		}
		go s.handleConn(ctx, conn)
	}
}

// track registers a new connection unless the server is shutting down
func (s *Server) track() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closing {
		return false
	}
	s.conns.Add(1)
	return true
}

func (s *Server) isClosing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closing
}

// Shutdown stops accepting connections and waits for in-flight ones to
// finish, or for ctx to expire
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down Gemini server")

	s.mu.Lock()
	s.closing = true
	ln := s.listener
	s.mu.Unlock()

	if ln != nil {
		if err := ln.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
			return fmt.Errorf("close listener: %w", err)
		}
	}

	done := make(chan struct{})
	go func() {
		s.conns.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Gemini server stopped")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("shutdown error: %w", ctx.Err())
	}
}

// Addr returns the bound address once listening, else the configured one
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.cfg.Addr
}

// connLog collects what the per-request log line reports
type connLog struct {
	path     string
	identity model.Identity
	status   gemini.Status
	bytes    int
}

func (s *Server) handleConn(ctx context.Context, raw net.Conn) {
	defer s.conns.Done()

	start := time.Now()
	remote := raw.RemoteAddr().String()
	conn := tls.Server(raw, s.tlsConfig)
	defer func() { _ = conn.Close() }()

	entry := &connLog{}
	responded := false
	defer func() {
		if rec := recover(); rec != nil {
			s.logger.Error("panic recovered",
				slog.Any("error", rec),
				slog.String("stack", string(debug.Stack())),
				slog.String("remote", remote),
			)
			if !responded {
				_, _ = s.write(conn, errorResponse(fmt.Errorf("panic: %v", rec)))
			}
		}
	}()

	hsCtx, cancel := context.WithTimeout(ctx, s.cfg.IOTimeout)
	err := conn.HandshakeContext(hsCtx)
	cancel()
	if err != nil {
		s.logger.Debug("tls handshake failed",
			slog.String("remote", remote),
			slog.String("error", err.Error()),
		)
		return
	}

	var resp *gemini.Response
	if ok, wait := s.limiter.allow(raw.RemoteAddr()); !ok {
		resp = gemini.SlowDown(wait)
	} else {
		resp = s.serve(ctx, conn, remote, entry)
	}

	responded = true
	entry.status = resp.Status
	entry.bytes, err = s.write(conn, resp)
	if err != nil {
		s.logger.Warn("failed to write response",
			slog.String("remote", remote),
			slog.String("error", err.Error()),
		)
	}

	s.logger.Info("gemini request",
		slog.String("remote", remote),
		slog.String("path", entry.path),
		slog.Int("status", int(entry.status)),
		slog.Int("size", entry.bytes),
		slog.Duration("duration", time.Since(start)),
		slog.String("identity", entry.identity.Short()),
	)
}

// serve reads the request, records the identity and runs the handler
func (s *Server) serve(ctx context.Context, conn *tls.Conn, remote string, entry *connLog) *gemini.Response {
	line, err := gemini.ReadRequest(conn, s.cfg.IOTimeout, s.cfg.MaxRequestBytes)
	if err != nil {
		s.logger.Debug("bad request",
			slog.String("remote", remote),
			slog.String("error", err.Error()),
		)
		return errorResponse(err)
	}

	id, err := identity.FromConnectionState(conn.ConnectionState())
	if err != nil {
		id = ""
	}
	if id != "" && s.ledger != nil {
		s.ledger.Record(ctx, id)
	}

	req := gemini.NewRequest(line, id, remote)
	entry.path = req.Path
	entry.identity = id

	resp, err := s.handler.ServeGemini(ctx, req)
	if err != nil {
		resp = errorResponse(err)
		if resp.Status == gemini.StatusServerFailure {
			s.logger.Error("request failed",
				slog.String("path", req.Path),
				slog.String("error", err.Error()),
			)
		}
		return resp
	}
	if resp == nil {
		return errorResponse(errors.New("handler returned no response"))
	}
	return resp
}

func (s *Server) write(conn net.Conn, resp *gemini.Response) (int, error) {
	if err := conn.SetWriteDeadline(time.Now().Add(s.cfg.IOTimeout)); err != nil {
		return 0, fmt.Errorf("%w: %w", gemini.ErrIOFailure, err)
	}
	return gemini.WriteResponse(conn, resp)
}
