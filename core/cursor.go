package core

import "unicode"

// Cursor is a position paired with its flat offset. Only a Document can
// build one, so the two always agree.
type Cursor struct {
	pos    Position
	offset int
}

func (c Cursor) Position() Position {
	return c.pos
}

func (c Cursor) Row() int {
	return c.pos.Row
}

func (c Cursor) Col() int {
	return c.pos.Col
}

func (c Cursor) Offset() int {
	return c.offset
}

// Motion is a pending cursor movement command.
type Motion int

const (
	MotionNone Motion = iota
	MotionLeft
	MotionRight
	MotionUp
	MotionDown
	MotionLineBeginning
	MotionLineEnd
	MotionFirstChar
	MotionLastChar
	MotionWordBeginning
	MotionWordEnd
	MotionNextWord
	MotionPageUp
	MotionPageDown
)

var motionNames = [...]string{
	MotionNone:          "None",
	MotionLeft:          "Left",
	MotionRight:         "Right",
	MotionUp:            "Up",
	MotionDown:          "Down",
	MotionLineBeginning: "LineBeginning",
	MotionLineEnd:       "LineEnd",
	MotionFirstChar:     "FirstChar",
	MotionLastChar:      "LastChar",
	MotionWordBeginning: "WordBeginning",
	MotionWordEnd:       "WordEnd",
	MotionNextWord:      "NextWord",
	MotionPageUp:        "PageUp",
	MotionPageDown:      "PageDown",
}

func (m Motion) String() string {
	if m >= 0 && int(m) < len(motionNames) {
		return motionNames[m]
	}
	return "Unknown"
}

// --- Cursor Movement ---

// MoveLeft moves one column left without wrapping to the previous line.
func (c *Cursor) MoveLeft(doc *Document) error {
	if c.pos.Col <= 0 {
		return ErrStartOfLine
	}
	c.pos.Col--
	c.offset--
	return nil
}

// MoveRight moves one column right, at most onto the line break slot.
func (c *Cursor) MoveRight(doc *Document) error {
	if c.pos.Col >= doc.LineLen(c.pos.Row) {
		return ErrEndOfLine
	}
	c.pos.Col++
	c.offset++
	return nil
}

// MoveUp moves one row up, clamping the column to the new line.
// No preferred column is remembered across vertical moves.
func (c *Cursor) MoveUp(doc *Document) error {
	if c.pos.Row <= 0 {
		return ErrStartOfBuffer
	}
	row := c.pos.Row - 1
	*c = doc.CursorAt(Position{Row: row, Col: min(c.pos.Col, doc.LineLen(row))})
	return nil
}

// MoveDown moves one row down, clamping the column to the new line.
func (c *Cursor) MoveDown(doc *Document) error {
	if c.pos.Row >= doc.LineCount()-1 {
		return ErrEndOfBuffer
	}
	row := c.pos.Row + 1
	*c = doc.CursorAt(Position{Row: row, Col: min(c.pos.Col, doc.LineLen(row))})
	return nil
}

func (c *Cursor) MoveToLineStart() {
	c.offset -= c.pos.Col
	c.pos.Col = 0
}

func (c *Cursor) MoveToLineEnd(doc *Document) {
	end := doc.LineLen(c.pos.Row)
	c.offset += end - c.pos.Col
	c.pos.Col = end
}

func (c *Cursor) MoveToBufferStart() {
	*c = Cursor{}
}

func (c *Cursor) MoveToBufferEnd(doc *Document) {
	*c = doc.CursorAtOffset(doc.TotalLen())
}

// MovePageUp moves up by n rows, stopping at the first line.
func (c *Cursor) MovePageUp(doc *Document, n int) {
	for range n {
		if c.MoveUp(doc) != nil {
			return
		}
	}
}

// MovePageDown moves down by n rows, stopping at the last line.
func (c *Cursor) MovePageDown(doc *Document, n int) {
	for range n {
		if c.MoveDown(doc) != nil {
			return
		}
	}
}

// WORDs are runs of non-whitespace; line breaks count as whitespace.

// MoveWordEnd skips the whitespace that follows and stops on the last
// character of the next WORD.
func (c *Cursor) MoveWordEnd(doc *Document) error {
	total := doc.TotalLen()
	off := c.offset
	if off+1 >= total {
		return ErrEndOfBuffer
	}
	for off+1 < total && unicode.IsSpace(doc.CharAt(off+1)) {
		off++
	}
	for off+1 < total && !unicode.IsSpace(doc.CharAt(off+1)) {
		off++
	}
	*c = doc.CursorAtOffset(off)
	return nil
}

// MoveWordBeginning skips the whitespace before the cursor and stops on
// the first character of the WORD preceding it.
func (c *Cursor) MoveWordBeginning(doc *Document) error {
	off := c.offset
	if off == 0 {
		return ErrStartOfBuffer
	}
	for off > 0 && unicode.IsSpace(doc.CharAt(off-1)) {
		off--
	}
	for off > 0 && !unicode.IsSpace(doc.CharAt(off-1)) {
		off--
	}
	*c = doc.CursorAtOffset(off)
	return nil
}

// MoveNextWord leaves the current WORD, if any, then skips whitespace,
// stopping at the end of the document.
func (c *Cursor) MoveNextWord(doc *Document) error {
	total := doc.TotalLen()
	off := c.offset
	if off >= total {
		return ErrEndOfBuffer
	}
	for off < total && !unicode.IsSpace(doc.CharAt(off)) {
		off++
	}
	for off < total && unicode.IsSpace(doc.CharAt(off)) {
		off++
	}
	*c = doc.CursorAtOffset(off)
	return nil
}
