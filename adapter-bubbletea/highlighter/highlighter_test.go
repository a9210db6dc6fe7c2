package highlighter

import (
	"strings"
	"testing"

	"github.com/alecthomas/chroma/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rowText(tokens []chroma.Token) string {
	var sb strings.Builder
	for _, t := range tokens {
		sb.WriteString(t.Value)
	}
	return sb.String()
}

func TestTokenizeSplitsRows(t *testing.T) {
	h := New("go", "monokai")
	content := "package main\n\n/* a\nb */\nfunc f() {}"
	h.Tokenize(1, content)

	for i, line := range strings.Split(content, "\n") {
		assert.Equal(t, line, rowText(h.Tokens(i)), "row %d", i)
	}
	assert.Nil(t, h.Tokens(5))
	assert.Nil(t, h.Tokens(-1))

	v, ok := h.Version()
	assert.True(t, ok)
	assert.Equal(t, uint64(1), v)
}

func TestTokenizeSkipsSameVersion(t *testing.T) {
	h := New("text", "monokai")
	h.Tokenize(3, "first")
	h.Tokenize(3, "second")
	assert.Equal(t, "first", rowText(h.Tokens(0)))

	h.Tokenize(4, "second")
	assert.Equal(t, "second", rowText(h.Tokens(0)))

	h.Invalidate()
	_, ok := h.Version()
	assert.False(t, ok)
	assert.Nil(t, h.Tokens(0))
}

func TestTokenizeEmpty(t *testing.T) {
	h := New("unknown-language", "monokai")
	h.Tokenize(0, "")
	assert.Empty(t, h.Tokens(0))
}

func TestTokenPositions(t *testing.T) {
	tokens := []chroma.Token{
		{Type: chroma.Keyword, Value: "fünc"},
		{Type: chroma.Text, Value: " "},
		{Type: chroma.NameFunction, Value: "f"},
	}
	positions := TokenPositions(tokens)
	require.Len(t, positions, 3)
	assert.Equal(t, 0, positions[0].StartCol)
	assert.Equal(t, 4, positions[0].EndCol)
	assert.Equal(t, 5, positions[2].StartCol)

	tok, ok := TokenAt(positions, 5)
	assert.True(t, ok)
	assert.Equal(t, chroma.NameFunction, tok.Type)

	_, ok = TokenAt(positions, 6)
	assert.False(t, ok)
}

func TestStyleForIsCached(t *testing.T) {
	h := New("go", "monokai")
	first := h.StyleFor(chroma.Keyword)
	assert.Equal(t, first.GetForeground(), h.StyleFor(chroma.Keyword).GetForeground())
	assert.Contains(t, h.styleCache, chroma.Keyword)
}
