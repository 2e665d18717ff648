// Package static serves documents from a directory on disk.
package static

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/mcoot/gemtofu/internal/gemtext"
)

// ErrNotFound is returned for missing resources and for paths that are
// directories or leave the document root
var ErrNotFound = errors.New("resource not found")

// Resource is a document ready to be sent as a response body
type Resource struct {
	Path     string
	MIMEType string
	Body     []byte
}

// IsGemtext reports whether the resource is a gemtext document
func (r *Resource) IsGemtext() bool {
	return r.MIMEType == gemtext.MIMEType
}

// Source fetches resources by resolved request path
type Source interface {
	Fetch(ctx context.Context, path string) (*Resource, error)
}

// Dir is a Source reading from a document root. All access goes through an
// os.Root, so no path (symlinks included) can escape the root.
type Dir struct {
	root *os.Root
}

// Ensure Dir implements Source
var _ Source = (*Dir)(nil)

// NewDir opens the document root at dir
func NewDir(dir string) (*Dir, error) {
	root, err := os.OpenRoot(dir)
	if err != nil {
		return nil, fmt.Errorf("open document root: %w", err)
	}
	return &Dir{root: root}, nil
}

// Close releases the document root
func (d *Dir) Close() error {
	return d.root.Close()
}

func (d *Dir) Fetch(ctx context.Context, name string) (*Resource, error) {
	if !filepath.IsLocal(name) {
		return nil, ErrNotFound
	}

	f, err := d.root.Open(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotFound, err)
	}
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", name, err)
	}
	if info.IsDir() {
		return nil, ErrNotFound
	}

	body, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}

	return &Resource{
		Path:     name,
		MIMEType: MIMEType(name),
		Body:     body,
	}, nil
}

// MIMEType guesses the content type of a document from its extension
func MIMEType(name string) string {
	ext := strings.ToLower(path.Ext(name))
	switch ext {
	case ".gmi", ".gemini":
		return gemtext.MIMEType
	case "":
		return "text/plain"
	}
	if t := mime.TypeByExtension(ext); t != "" {
		return t
	}
	return "text/plain"
}

// defaultIndex is written to a fresh document root
const defaultIndex = `# Gemini capsule (TOFU)

Your client certificate is your identity here. It is recorded on your first visit.

=> /game Tic-tac-toe (2 players)
`

// EnsureDirs creates the document root and any extra directories, and writes
// a default index.gmi into the document root if there is none
func EnsureDirs(docRoot string, dirs ...string) error {
	for _, dir := range append([]string{docRoot}, dirs...) {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}

	index := filepath.Join(docRoot, "index.gmi")
	if _, err := os.Stat(index); err == nil {
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("stat index: %w", err)
	}
	if err := os.WriteFile(index, []byte(defaultIndex), 0o644); err != nil {
		return fmt.Errorf("write index: %w", err)
	}
	return nil
}
