package gemini

import "errors"

var (
	// ErrBadRequest covers empty, oversized, timed out and malformed
	// request lines
	ErrBadRequest = errors.New("bad request")

	// ErrIOFailure wraps transport failures while writing a response
	ErrIOFailure = errors.New("i/o failure")

	// ErrMalformedResponse is returned by clients for unparsable headers
	ErrMalformedResponse = errors.New("malformed response header")
)
