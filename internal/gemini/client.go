package gemini

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/url"
	"time"
)

// DefaultPort is the standard Gemini port
const DefaultPort = "1965"

// Client sends single Gemini requests. Server certificates are not verified
// against any CA, matching the trust-on-first-use convention of Gemini.
type Client struct {
	// Certificate is presented to the server when set
	Certificate *tls.Certificate
	// Timeout bounds the whole exchange; zero means 30 seconds
	Timeout time.Duration
}

// Fetch requests rawURL and returns the parsed response
func (c *Client) Fetch(ctx context.Context, rawURL string) (*Response, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse url: %w", err)
	}
	if u.Scheme != "gemini" {
		return nil, fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("url %q has no host", rawURL)
	}

	addr := u.Host
	if u.Port() == "" {
		addr = net.JoinHostPort(u.Hostname(), DefaultPort)
	}
	return c.Do(ctx, addr, u.String())
}

// Do sends line to the server at addr and returns the parsed response
func (c *Client) Do(ctx context.Context, addr, line string) (*Response, error) {
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return nil, fmt.Errorf("invalid address %q: %w", addr, err)
	}

	cfg := &tls.Config{
		ServerName:         host,
		MinVersion:         tls.VersionTLS12,
		InsecureSkipVerify: true, //nolint:gosec // Gemini servers are trusted on first use
	}
	if c.Certificate != nil {
		cfg.Certificates = []tls.Certificate{*c.Certificate}
	}

	dialer := &tls.Dialer{Config: cfg}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}
	defer func() { _ = conn.Close() }()

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	if _, err := conn.Write([]byte(line + "\r\n")); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIOFailure, err)
	}
	return ReadResponse(conn)
}
