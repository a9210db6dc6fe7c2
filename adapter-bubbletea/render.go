package adapter_bubbletea

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/ionut-t/textcore/adapter-bubbletea/highlighter"
	"github.com/ionut-t/textcore/core"
	"github.com/rivo/uniseg"
)

const tabDisplayWidth = 4

// lineNumberWidth computes the gutter width including the trailing space.
func (m *Model) lineNumberWidth() int {
	if !m.showLineNumbers {
		return 0
	}
	digits := len(strconv.Itoa(max(1, m.buffer.LineCount())))
	return min(max(4, digits)+1, 10)
}

// cellText is what a rune occupies on screen.
func cellText(r rune) string {
	if r == '\t' {
		return strings.Repeat(" ", tabDisplayWidth)
	}
	return string(r)
}

func cellWidth(r rune) int {
	return uniseg.StringWidth(cellText(r))
}

// scrollHorizontally keeps the cursor column inside the text area.
func (m *Model) scrollHorizontally(line []rune, col, textWidth int) {
	if textWidth <= 0 {
		m.leftCol = 0
		return
	}
	if col < m.leftCol {
		m.leftCol = col
	}
	for m.leftCol < col {
		used := 1
		for _, r := range line[m.leftCol:min(col, len(line))] {
			used += cellWidth(r)
		}
		if used <= textWidth {
			break
		}
		m.leftCol++
	}
}

// rowHighlights marks the columns of row covered by a search match.
func (m *Model) rowHighlights(row int) map[int]bool {
	results := m.buffer.SearchResults()
	if len(results) == 0 {
		return nil
	}
	n := len([]rune(m.buffer.SearchTerm()))
	cols := make(map[int]bool)
	for _, p := range results {
		if p.Row != row {
			continue
		}
		for c := p.Col; c < p.Col+n; c++ {
			cols[c] = true
		}
	}
	return cols
}

// renderVisibleSlice renders the rows from the buffer's top line into the viewport.
func (m *Model) renderVisibleSlice() {
	m.viewport.SetContent(m.renderContent())
}

func (m *Model) renderContent() string {
	if m.highlighter != nil {
		if v, ok := m.highlighter.Version(); !ok || v != m.buffer.Version() {
			m.highlighter.Tokenize(m.buffer.Version(), m.buffer.Content())
		}
	}

	gutter := m.lineNumberWidth()
	textWidth := m.width - gutter
	cursor := m.buffer.Cursor()
	m.scrollHorizontally(m.buffer.LineRunes(cursor.Row()), cursor.Col(), textWidth)

	if m.placeholder != "" && m.IsEmpty() {
		return m.renderPlaceholder(gutter)
	}

	top := m.buffer.TopLine()
	bottom := min(top+m.viewport.Height, m.buffer.LineCount())

	rows := make([]string, 0, m.viewport.Height)
	for row := top; row < bottom; row++ {
		rows = append(rows, m.renderGutter(row, gutter, cursor.Row())+m.renderRow(row, cursor, textWidth))
	}
	for len(rows) < m.viewport.Height {
		tilde := ""
		if m.showLineNumbers {
			tilde = m.theme.LineNumberStyle.Width(gutter-1).Render("~") + " "
		}
		rows = append(rows, tilde)
	}

	return strings.Join(rows, "\n")
}

func (m *Model) renderGutter(row, gutter, cursorRow int) string {
	if gutter == 0 {
		return ""
	}
	style := m.theme.LineNumberStyle
	if row == cursorRow {
		style = m.theme.CurrentLineNumberStyle
	}
	return style.Width(gutter-1).Render(strconv.Itoa(row+1)) + " "
}

// renderRow renders the visible part of row, one styled cell per rune plus
// a trailing cell for the line break.
func (m *Model) renderRow(row int, cursor core.Cursor, textWidth int) string {
	line := m.buffer.LineRunes(row)
	rowOffset := m.buffer.Offset(core.Position{Row: row})
	highlights := m.rowHighlights(row)
	showCursor := m.isFocused && m.buffer.CursorVisible()

	var tokens []highlighter.TokenPosition
	if m.highlighter != nil {
		tokens = highlighter.TokenPositions(m.highlighter.Tokens(row))
	}

	selectionStyle := m.theme.SelectionStyle
	if m.yanked {
		selectionStyle = m.theme.HighlightYankStyle
	}

	var sb strings.Builder
	used := 0
	for col := m.leftCol; col <= len(line); col++ {
		text := " "
		if col < len(line) {
			text = cellText(line[col])
		}
		w := uniseg.StringWidth(text)
		if used+w > textWidth {
			break
		}
		used += w

		style := lipgloss.NewStyle()
		if tok, ok := highlighter.TokenAt(tokens, col); ok {
			style = m.highlighter.StyleFor(tok.Type)
		}
		if highlights[col] {
			style = style.Background(m.theme.SearchHighlightStyle.GetBackground())
		}
		if m.buffer.IsCharSelected(row, col, rowOffset+col) {
			style = style.Inherit(selectionStyle).Background(selectionStyle.GetBackground())
		}
		if showCursor && row == cursor.Row() && col == cursor.Col() {
			style = m.theme.CursorStyle
		}

		if col == len(line) && style.GetBackground() == (lipgloss.NoColor{}) && !style.GetReverse() {
			break
		}
		sb.WriteString(style.Render(text))
	}

	return sb.String()
}

func (m *Model) renderPlaceholder(gutter int) string {
	var sb strings.Builder
	if gutter > 0 {
		sb.WriteString(m.theme.CurrentLineNumberStyle.Width(gutter-1).Render("1") + " ")
	}
	for i, r := range m.placeholder {
		style := m.theme.PlaceholderStyle
		if i == 0 && m.isFocused && m.buffer.CursorVisible() {
			style = m.theme.CursorStyle.Foreground(m.theme.PlaceholderStyle.GetForeground())
		}
		sb.WriteString(style.Render(string(r)))
	}
	return sb.String()
}
