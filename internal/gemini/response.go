package gemini

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/mcoot/gemtofu/internal/gemtext"
)

// Response is a status line plus an optional body
type Response struct {
	Status Status
	Meta   string
	Body   []byte
}

// Header returns the "<code> <meta>\r\n" status line
func (r *Response) Header() string {
	return fmt.Sprintf("%d %s\r\n", r.Status, r.Meta)
}

// Success returns a 20 response with the given MIME type
func Success(mimeType string, body []byte) *Response {
	return &Response{Status: StatusSuccess, Meta: mimeType, Body: body}
}

// Gemtext returns a 20 response carrying a gemtext document
func Gemtext(doc *gemtext.Document) *Response {
	return Success(gemtext.MIMEType, doc.Bytes())
}

// Failure returns a response with no body
func Failure(status Status, meta string) *Response {
	return &Response{Status: status, Meta: meta}
}

// SlowDown tells the client to wait the given number of seconds
func SlowDown(seconds int) *Response {
	return Failure(StatusSlowDown, strconv.Itoa(max(seconds, 1)))
}

// WriteResponse writes the header and body in a single write and returns the
// number of bytes written. Transport errors are wrapped in ErrIOFailure.
func WriteResponse(w io.Writer, resp *Response) (int, error) {
	header := resp.Header()
	payload := make([]byte, 0, len(header)+len(resp.Body))
	payload = append(payload, header...)
	payload = append(payload, resp.Body...)

	n, err := w.Write(payload)
	if err != nil {
		return n, fmt.Errorf("%w: %w", ErrIOFailure, err)
	}
	return n, nil
}

// ReadResponse parses a response from r, reading the body to EOF
func ReadResponse(r io.Reader) (*Response, error) {
	br := bufio.NewReader(r)
	header, err := br.ReadString('\n')
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}
	header = strings.TrimRight(header, "\r\n")

	code, meta, _ := strings.Cut(header, " ")
	status, err := strconv.Atoi(code)
	if err != nil || len(code) != 2 {
		return nil, fmt.Errorf("%w: %q", ErrMalformedResponse, header)
	}

	body, err := io.ReadAll(br)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return &Response{Status: Status(status), Meta: meta, Body: body}, nil
}
