package gemini

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net"
	"time"
	"unicode/utf8"

	"github.com/mcoot/gemtofu/internal/model"
)

const (
	// DefaultMaxRequestBytes is the hard ceiling on a request line
	DefaultMaxRequestBytes = 4096

	// readChunkSize is how much is read from the connection at a time
	readChunkSize = 2048
)

// Request is one parsed Gemini request. It lives for a single connection.
type Request struct {
	// Raw is the trimmed request line as sent by the client
	Raw string
	// Path is the resolved relative path, see ResolvePath
	Path string
	// Identity is the client certificate fingerprint, empty without one
	Identity model.Identity
	// RemoteAddr is the peer address
	RemoteAddr string
}

// NewRequest builds a request from a raw line
func NewRequest(raw string, id model.Identity, remoteAddr string) *Request {
	return &Request{
		Raw:        raw,
		Path:       ResolvePath(raw),
		Identity:   id,
		RemoteAddr: remoteAddr,
	}
}

// HasIdentity reports whether the client presented a certificate
func (r *Request) HasIdentity() bool {
	return r.Identity != ""
}

// ReadRequest reads a single request line from conn. It stops at the first
// newline, at maxBytes, or when timeout elapses. A peer that closes its side
// after a partial line gets that partial line. Empty, oversized, timed out and
// non UTF-8 lines return ErrBadRequest.
func ReadRequest(conn net.Conn, timeout time.Duration, maxBytes int) (string, error) {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxRequestBytes
	}
	if timeout > 0 {
		if err := conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
			return "", fmt.Errorf("set read deadline: %w", err)
		}
		defer func() { _ = conn.SetReadDeadline(time.Time{}) }()
	}

	data := make([]byte, 0, readChunkSize)
	chunk := make([]byte, readChunkSize)
	for bytes.IndexByte(data, '\n') < 0 && len(data) < maxBytes {
		n, err := conn.Read(chunk)
		data = append(data, chunk[:n]...)
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return "", fmt.Errorf("%w: %w", ErrBadRequest, err)
		}
	}

	line := data
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		line = data[:i]
	} else if len(data) >= maxBytes {
		return "", fmt.Errorf("%w: request exceeds %d bytes", ErrBadRequest, maxBytes)
	}
	if len(line) > maxBytes {
		return "", fmt.Errorf("%w: request exceeds %d bytes", ErrBadRequest, maxBytes)
	}

	line = bytes.TrimSpace(line)
	if len(line) == 0 {
		return "", fmt.Errorf("%w: empty request", ErrBadRequest)
	}
	if !utf8.Valid(line) {
		return "", fmt.Errorf("%w: request is not valid UTF-8", ErrBadRequest)
	}
	return string(line), nil
}
