package random

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShortIDIsLowercaseHex(t *testing.T) {
	r := New()
	id := r.ShortID(8)
	assert.Len(t, id, 8)
	assert.Regexp(t, regexp.MustCompile(`^[0-9a-f]{8}$`), id)
}

func TestShortIDClampsLength(t *testing.T) {
	r := New()
	assert.Len(t, r.ShortID(64), 32)
	assert.Empty(t, r.ShortID(0))
}

func TestShortIDIsUnique(t *testing.T) {
	r := New()
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id := r.ShortID(16)
		assert.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}
