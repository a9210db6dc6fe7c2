package core

// SelectionMode is the shape of the active selection.
type SelectionMode int

const (
	SelectionNone SelectionMode = iota
	SelectionNormal
	SelectionLine
	SelectionBlock
)

func (m SelectionMode) String() string {
	switch m {
	case SelectionNone:
		return "none"
	case SelectionNormal:
		return "normal"
	case SelectionLine:
		return "line"
	case SelectionBlock:
		return "block"
	}
	return "unknown"
}

// Selection spans from Anchor to the buffer cursor, both ends inclusive.
type Selection struct {
	Mode   SelectionMode
	Anchor Cursor
}

func (s Selection) IsActive() bool {
	return s.Mode != SelectionNone
}

// StartSelection anchors a selection at the cursor. With a selection
// already active only the mode changes.
func (b *Buffer) StartSelection(mode SelectionMode) {
	if mode == SelectionNone {
		b.CloseSelection()
		return
	}
	if !b.selection.IsActive() {
		b.selection.Anchor = b.cursor
	}
	b.selection.Mode = mode
}

func (b *Buffer) CloseSelection() {
	b.selection = Selection{}
}

func (b *Buffer) Selection() Selection {
	return b.selection
}

// IsCharSelected reports whether the character at row/col (whose flat
// offset is offset) is covered by the selection. Block selections never
// cover line breaks.
func (b *Buffer) IsCharSelected(row, col, offset int) bool {
	anchor := b.selection.Anchor
	switch b.selection.Mode {
	case SelectionNormal:
		lo, hi := minMax(anchor.offset, b.cursor.offset)
		return offset >= lo && offset <= hi
	case SelectionLine:
		lo, hi := minMax(anchor.pos.Row, b.cursor.pos.Row)
		return row >= lo && row <= hi
	case SelectionBlock:
		top, bottom := minMax(anchor.pos.Row, b.cursor.pos.Row)
		left, right := minMax(anchor.pos.Col, b.cursor.pos.Col)
		if row < top || row > bottom || col < left || col > right {
			return false
		}
		return col < b.doc.LineLen(row)
	}
	return false
}

// selectedRows returns the first and last row touched by the selection.
func (b *Buffer) selectedRows() (int, int) {
	return minMax(b.selection.Anchor.pos.Row, b.cursor.pos.Row)
}

func (b *Buffer) selectedCols() (int, int) {
	return minMax(b.selection.Anchor.pos.Col, b.cursor.pos.Col)
}

// selectionRange is the flat span of a Normal or Line selection.
func (b *Buffer) selectionRange() Range {
	switch b.selection.Mode {
	case SelectionLine:
		top, bottom := b.selectedRows()
		start := Position{Row: top}
		end := b.doc.EndPosition()
		if bottom+1 < b.doc.LineCount() {
			end = Position{Row: bottom + 1}
		} else if top > 0 {
			// The last line has no break; take the one before the selection.
			start = Position{Row: top - 1, Col: b.doc.LineLen(top - 1)}
		}
		return Range{Start: start, End: end}
	default:
		lo, hi := minMax(b.selection.Anchor.offset, b.cursor.offset)
		hi = min(hi+1, b.doc.TotalLen())
		return Range{Start: b.doc.PositionAt(lo), End: b.doc.PositionAt(hi)}
	}
}

// SelectedText returns the text covered by the selection. Block rows are
// each terminated by a line break.
func (b *Buffer) SelectedText() string {
	switch b.selection.Mode {
	case SelectionNone:
		return ""
	case SelectionLine:
		top, bottom := b.selectedRows()
		end := b.doc.EndPosition()
		if bottom+1 < b.doc.LineCount() {
			end = Position{Row: bottom + 1}
		}
		return b.doc.Get(Range{Start: Position{Row: top}, End: end})
	case SelectionBlock:
		var out []rune
		top, bottom := b.selectedRows()
		left, right := b.selectedCols()
		for row := top; row <= bottom; row++ {
			r := b.blockRowRange(row, left, right)
			out = append(out, []rune(b.doc.Get(r))...)
			out = append(out, '\n')
		}
		return string(out)
	default:
		return b.doc.Get(b.selectionRange())
	}
}

func (b *Buffer) blockRowRange(row, left, right int) Range {
	n := b.doc.LineLen(row)
	return Range{
		Start: Position{Row: row, Col: min(left, n)},
		End:   Position{Row: row, Col: min(right+1, n)},
	}
}

func minMax(a, b int) (int, int) {
	if a < b {
		return a, b
	}
	return b, a
}
