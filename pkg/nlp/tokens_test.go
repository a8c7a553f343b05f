package nlp

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenCounterFallback(t *testing.T) {
	c := &TokenCounter{load: func() (func(string) int, error) { return nil, errors.New("offline") }}
	assert.Equal(t, 0, c.Count(""))
	assert.Equal(t, 1, c.Count("abc"))
	assert.Equal(t, 25, c.Count(strings.Repeat("a", 100)))
}

func TestTokenCounterUsesEncoder(t *testing.T) {
	loads := 0
	c := &TokenCounter{load: func() (func(string) int, error) {
		loads++
		return func(s string) int { return len(strings.Fields(s)) }, nil
	}}
	assert.Equal(t, 3, c.Count("one two three"))
	assert.Equal(t, 1, c.Count("four"))
	assert.Equal(t, 1, loads)
}

func TestSquashAndStrip(t *testing.T) {
	assert.Equal(t, "a b c", Squash("  a \t b\n\nc "))
	assert.Equal(t, " x  y", StripAll("pay x pay y", []string{"pay", ""}))
	assert.False(t, ContainsAny("anything", nil))
	assert.False(t, HasWord("?! ..."))
	assert.True(t, HasWord("c++"))
	assert.True(t, HasWord("врач"))
}
