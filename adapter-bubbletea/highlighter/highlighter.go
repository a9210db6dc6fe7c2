package highlighter

import (
	"strings"
	"sync"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/charmbracelet/lipgloss"
)

// Highlighter tokenizes a whole document snapshot and serves the tokens
// per row. A snapshot is identified by the buffer version it was taken at.
type Highlighter struct {
	lexer      chroma.Lexer
	style      *chroma.Style
	version    uint64
	valid      bool
	rows       [][]chroma.Token
	styleCache map[chroma.TokenType]lipgloss.Style
	mu         sync.RWMutex
}

// TokenPosition is a token with its rune span in the row.
type TokenPosition struct {
	Token    chroma.Token
	StartCol int
	EndCol   int
}

// New creates a highlighter for language using the named chroma style.
// Unknown languages fall back to plain text.
func New(language string, theme string) *Highlighter {
	lexer := lexers.Get(language)
	if lexer == nil {
		lexer = lexers.Fallback
	}

	return &Highlighter{
		lexer:      chroma.Coalesce(lexer),
		style:      styles.Get(theme),
		styleCache: make(map[chroma.TokenType]lipgloss.Style),
	}
}

// Invalidate drops the current snapshot.
func (h *Highlighter) Invalidate() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.valid = false
	h.rows = nil
}

// Version reports the version of the current snapshot and whether there is one.
func (h *Highlighter) Version() (uint64, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.version, h.valid
}

// Tokenize replaces the snapshot with the tokens of content. It is a no-op
// when a snapshot for version already exists. The whole text is lexed at
// once so multi-line constructs such as block comments stay intact.
func (h *Highlighter) Tokenize(version uint64, content string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.valid && h.version == version {
		return
	}

	h.version = version
	h.valid = true
	h.rows = [][]chroma.Token{nil}

	if content == "" {
		return
	}

	iterator, err := h.lexer.Tokenise(nil, content)
	if err != nil {
		h.rows = make([][]chroma.Token, strings.Count(content, "\n")+1)
		return
	}

	row := 0
	for _, token := range iterator.Tokens() {
		value := token.Value
		for {
			before, after, found := strings.Cut(value, "\n")
			if before != "" {
				h.rows[row] = append(h.rows[row], chroma.Token{Type: token.Type, Value: before})
			}
			if !found {
				break
			}
			row++
			h.rows = append(h.rows, nil)
			value = after
		}
	}
}

// Tokens returns the tokens of row in the current snapshot.
func (h *Highlighter) Tokens(row int) []chroma.Token {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if row < 0 || row >= len(h.rows) {
		return nil
	}
	return h.rows[row]
}

// StyleFor converts a chroma token type to a lipgloss style.
func (h *Highlighter) StyleFor(tokenType chroma.TokenType) lipgloss.Style {
	h.mu.Lock()
	defer h.mu.Unlock()

	if style, ok := h.styleCache[tokenType]; ok {
		return style
	}

	entry := h.style.Get(tokenType)

	style := lipgloss.NewStyle()
	if entry.Colour.IsSet() {
		style = style.Foreground(lipgloss.Color(entry.Colour.String()))
	}
	if entry.Bold == chroma.Yes {
		style = style.Bold(true)
	}
	if entry.Italic == chroma.Yes {
		style = style.Italic(true)
	}
	if entry.Underline == chroma.Yes {
		style = style.Underline(true)
	}

	h.styleCache[tokenType] = style

	return style
}

// TokenPositions converts tokens to rune spans.
func TokenPositions(tokens []chroma.Token) []TokenPosition {
	positions := make([]TokenPosition, 0, len(tokens))
	col := 0

	for _, token := range tokens {
		n := len([]rune(token.Value))
		positions = append(positions, TokenPosition{
			Token:    token,
			StartCol: col,
			EndCol:   col + n,
		})
		col += n
	}

	return positions
}

// TokenAt finds the token covering col.
func TokenAt(positions []TokenPosition, col int) (chroma.Token, bool) {
	for _, pos := range positions {
		if col >= pos.StartCol && col < pos.EndCol {
			return pos.Token, true
		}
	}
	return chroma.Token{}, false
}
