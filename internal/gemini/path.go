package gemini

import (
	"net/url"
	"strings"
)

const (
	// DefaultDocument is served for empty and unsafe paths
	DefaultDocument = "index.gmi"

	// GameRoute is the first path segment of the game routes
	GameRoute = "game"
)

// ResolvePath extracts the relative path from a request line. It drops the
// query and the fragment, a leading "scheme://host[:port]" authority, and
// leading slashes, then decodes percent-escapes. Empty paths, undecodable
// paths and paths starting with ".." become DefaultDocument. It never
// touches the filesystem.
func ResolvePath(line string) string {
	path := line
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	if rest, ok := cutScheme(path); ok {
		if i := strings.IndexByte(rest, '/'); i >= 0 {
			path = rest[i+1:]
		} else {
			path = ""
		}
	}
	decoded, err := url.PathUnescape(path)
	if err != nil {
		return DefaultDocument
	}
	path = strings.TrimLeft(decoded, "/")
	if path == "" || strings.HasPrefix(path, "..") {
		return DefaultDocument
	}
	return path
}

// cutScheme strips a leading "scheme://" and reports whether one was found.
// The scheme follows RFC 3986: a letter, then letters, digits, '+', '-', '.'.
func cutScheme(s string) (string, bool) {
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
		case i > 0 && (c >= '0' && c <= '9' || c == '+' || c == '-' || c == '.'):
		case i > 0 && c == ':':
			if strings.HasPrefix(s[i:], "://") {
				return s[i+3:], true
			}
			return s, false
		default:
			return s, false
		}
	}
	return s, false
}

// IsGameRoute reports whether a resolved path belongs to the game routes
func IsGameRoute(path string) bool {
	return path == GameRoute || strings.HasPrefix(path, GameRoute+"/")
}

// SplitPath returns the non-empty segments of a resolved path
func SplitPath(path string) []string {
	return strings.FieldsFunc(path, func(r rune) bool { return r == '/' })
}
