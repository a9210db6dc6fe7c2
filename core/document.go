package core

import (
	"slices"
	"sort"
	"strings"
	"time"
)

// Document stores text as lines of runes. Every line except the last ends
// with '\n' and the last line never does, so the document always holds at
// least one line and the empty text is a single empty line.
//
// All mutations go through Insert and Delete, which record a Change into
// the open history entry, or commit a single-change entry when none is open.
type Document struct {
	lines [][]rune

	// starts[i] is the flat offset of line i; starts[len(lines)] is the
	// total length. Rebuilt lazily after a mutation.
	starts []int
	stale  bool

	history *History
	entry   *Entry
	now     func() time.Time
}

func NewDocument() *Document {
	return &Document{
		lines:   [][]rune{{}},
		stale:   true,
		history: NewHistory(),
		now:     time.Now,
	}
}

func NewDocumentFromString(text string) *Document {
	d := NewDocument()
	d.SetContent(text)
	return d
}

// SetContent replaces the whole text. History is left untouched; call
// ClearHistory after a reload.
func (d *Document) SetContent(text string) {
	d.lines = splitLines([]rune(text))
	d.stale = true
}

func splitLines(runes []rune) [][]rune {
	lines := make([][]rune, 0, 1)
	start := 0
	for i, r := range runes {
		if r == '\n' {
			lines = append(lines, slices.Clone(runes[start:i+1]))
			start = i + 1
		}
	}
	return append(lines, slices.Clone(runes[start:]))
}

func (d *Document) History() *History {
	return d.history
}

func (d *Document) ClearHistory() {
	d.history.Clear()
	d.entry = nil
}

// --- Read access ---

func (d *Document) LineCount() int {
	return len(d.lines)
}

// LineLen returns the number of characters on row, not counting the line break.
func (d *Document) LineLen(row int) int {
	assertf(row >= 0 && row < len(d.lines), ErrInvalidPosition, "row %d out of bounds [0, %d)", row, len(d.lines))
	line := d.lines[row]
	if n := len(line); n > 0 && line[n-1] == '\n' {
		return n - 1
	}
	return len(line)
}

// Line returns row including its trailing line break, if any.
func (d *Document) Line(row int) string {
	assertf(row >= 0 && row < len(d.lines), ErrInvalidPosition, "row %d out of bounds [0, %d)", row, len(d.lines))
	return string(d.lines[row])
}

// LineRunes returns a copy of row without its line break.
func (d *Document) LineRunes(row int) []rune {
	return slices.Clone(d.lines[row][:d.LineLen(row)])
}

func (d *Document) Lines() []string {
	lines := make([]string, len(d.lines))
	for i, l := range d.lines {
		lines[i] = string(l)
	}
	return lines
}

func (d *Document) Content() string {
	var sb strings.Builder
	for _, l := range d.lines {
		for _, r := range l {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

func (d *Document) TotalLen() int {
	starts := d.index()
	return starts[len(d.lines)]
}

func (d *Document) IsEmpty() bool {
	return len(d.lines) == 1 && len(d.lines[0]) == 0
}

func (d *Document) EndPosition() Position {
	last := len(d.lines) - 1
	return Position{Row: last, Col: len(d.lines[last])}
}

func (d *Document) IsValidPosition(p Position) bool {
	if p.Row < 0 || p.Row >= len(d.lines) {
		return false
	}
	return p.Col >= 0 && p.Col <= d.LineLen(p.Row)
}

// Offset converts a position to a flat character offset.
func (d *Document) Offset(p Position) int {
	d.assertPosition(p)
	return d.index()[p.Row] + p.Col
}

// PositionAt converts a flat offset in [0, TotalLen] to a position.
func (d *Document) PositionAt(offset int) Position {
	starts := d.index()
	total := starts[len(d.lines)]
	assertf(offset >= 0 && offset <= total, ErrInvalidPosition, "offset %d out of bounds [0, %d]", offset, total)

	row := sort.Search(len(d.lines), func(i int) bool {
		return starts[i+1] > offset
	})
	if row == len(d.lines) {
		row--
	}
	return Position{Row: row, Col: offset - starts[row]}
}

// CharAt returns the character at a flat offset in [0, TotalLen).
func (d *Document) CharAt(offset int) rune {
	assertf(offset >= 0 && offset < d.TotalLen(), ErrInvalidPosition, "offset %d out of bounds [0, %d)", offset, d.TotalLen())
	p := d.PositionAt(offset)
	return d.lines[p.Row][p.Col]
}

// CursorAt builds a cursor for a valid position.
func (d *Document) CursorAt(p Position) Cursor {
	return Cursor{pos: p, offset: d.Offset(p)}
}

// CursorAtOffset builds a cursor for a flat offset in [0, TotalLen].
func (d *Document) CursorAtOffset(offset int) Cursor {
	return Cursor{pos: d.PositionAt(offset), offset: offset}
}

func (d *Document) index() []int {
	if !d.stale {
		return d.starts
	}
	d.starts = d.starts[:0]
	total := 0
	for _, l := range d.lines {
		d.starts = append(d.starts, total)
		total += len(l)
	}
	d.starts = append(d.starts, total)
	d.stale = false
	return d.starts
}

func (d *Document) assertPosition(p Position) {
	assertf(d.IsValidPosition(p), ErrInvalidPosition, "%s", p)
}

func (d *Document) assertRange(r Range) {
	d.assertPosition(r.Start)
	d.assertPosition(r.End)
	assertf(!r.End.Before(r.Start), ErrInvalidRange, "%s", r)
}

// lastIn returns the position of the last character of a non-empty range.
// An end at column 0 steps back onto the previous line's break.
func (d *Document) lastIn(r Range) Position {
	if r.End.Col == 0 {
		row := r.End.Row - 1
		return Position{Row: row, Col: len(d.lines[row]) - 1}
	}
	return Position{Row: r.End.Row, Col: r.End.Col - 1}
}

// Get returns the text covered by r.
func (d *Document) Get(r Range) string {
	d.assertRange(r)
	if r.IsEmpty() {
		return ""
	}

	var out []rune
	pos := d.lastIn(r)
	for {
		out = append(out, d.lines[pos.Row][pos.Col])
		if pos == r.Start {
			break
		}
		pos.Col--
		if pos.Col < 0 {
			pos.Row--
			pos.Col = len(d.lines[pos.Row]) - 1
		}
	}
	slices.Reverse(out)
	return string(out)
}

// --- Mutation ---

// Insert inserts text at p and returns the position just past it.
func (d *Document) Insert(p Position, text string) Position {
	d.assertPosition(p)
	if text == "" {
		return p
	}
	end := d.splice(p, []rune(text))
	d.record(Change{Kind: Insertion, Range: Range{Start: p, End: end}, Text: text})
	return end
}

// Delete removes the text covered by r and returns it with its length.
func (d *Document) Delete(r Range) (string, int) {
	d.assertRange(r)
	if r.IsEmpty() {
		return "", 0
	}
	removed := d.erase(r)
	text := string(removed)
	d.record(Change{Kind: Deletion, Range: r, Text: text})
	return text, len(removed)
}

func (d *Document) splice(p Position, runes []rune) Position {
	line := d.lines[p.Row]
	tail := slices.Clone(line[p.Col:])
	head := line[:p.Col]

	var parts [][]rune
	start := 0
	for i, r := range runes {
		if r == '\n' {
			parts = append(parts, runes[start:i+1])
			start = i + 1
		}
	}
	parts = append(parts, runes[start:])

	if len(parts) == 1 {
		d.lines[p.Row] = append(append(head, parts[0]...), tail...)
		d.stale = true
		return Position{Row: p.Row, Col: p.Col + len(parts[0])}
	}

	d.lines[p.Row] = append(head, parts[0]...)
	added := make([][]rune, 0, len(parts)-1)
	for _, part := range parts[1 : len(parts)-1] {
		added = append(added, slices.Clone(part))
	}
	last := parts[len(parts)-1]
	added = append(added, append(slices.Clone(last), tail...))
	d.lines = slices.Insert(d.lines, p.Row+1, added...)
	d.stale = true

	return Position{Row: p.Row + len(parts) - 1, Col: len(last)}
}

// erase walks backward from the last character of r to its start, removing
// each character. Emptied lines are dropped, except the final one. When the
// start line loses its break, the next line is joined onto it.
func (d *Document) erase(r Range) []rune {
	var removed []rune
	pos := d.lastIn(r)
	for {
		line := d.lines[pos.Row]
		removed = append(removed, line[pos.Col])
		d.lines[pos.Row] = append(line[:pos.Col], line[pos.Col+1:]...)
		if len(d.lines[pos.Row]) == 0 && pos.Row < len(d.lines)-1 {
			d.lines = slices.Delete(d.lines, pos.Row, pos.Row+1)
		}

		if pos == r.Start {
			if pos.Col != 0 && pos.Row+1 < len(d.lines) && !endsWithBreak(d.lines[pos.Row]) {
				d.lines[pos.Row] = append(d.lines[pos.Row], d.lines[pos.Row+1]...)
				d.lines = slices.Delete(d.lines, pos.Row+1, pos.Row+2)
			}
			break
		}

		pos.Col--
		if pos.Col < 0 {
			pos.Row--
			pos.Col = len(d.lines[pos.Row]) - 1
		}
	}
	d.stale = true
	slices.Reverse(removed)
	return removed
}

func endsWithBreak(line []rune) bool {
	return len(line) > 0 && line[len(line)-1] == '\n'
}

// --- History ---

// BeginEntry opens a history entry; changes are collected until EndEntry.
func (d *Document) BeginEntry(before Cursor) {
	assertf(d.entry == nil, ErrEntryOpen, "begin entry")
	d.entry = &Entry{Before: before}
}

// EndEntry closes the open entry and commits it if it holds any change.
func (d *Document) EndEntry(after Cursor) (Entry, bool) {
	assertf(d.entry != nil, ErrNoEntryOpen, "end entry")
	entry := *d.entry
	d.entry = nil
	if len(entry.Changes) == 0 {
		return Entry{}, false
	}
	entry.After = after
	entry.Timestamp = d.now()
	d.history.Record(entry)
	return entry, true
}

// InEntry reports whether a history entry is open.
func (d *Document) InEntry() bool {
	return d.entry != nil
}

func (d *Document) record(c Change) {
	if d.entry != nil {
		d.entry.Changes = append(d.entry.Changes, c)
		return
	}

	before := d.CursorAt(c.Range.Start)
	after := before
	if c.Kind == Insertion {
		after = d.CursorAt(c.Range.End)
	}
	d.history.Record(Entry{
		Changes:   []Change{c},
		Before:    before,
		After:     after,
		Timestamp: d.now(),
	})
}

// Undo reverts the most recent entry and returns it. Panics when there is
// nothing to undo; check History().CanGoBack first.
func (d *Document) Undo() Entry {
	assertf(d.entry == nil, ErrEntryOpen, "undo")
	entry := d.history.GoBack()
	for i := len(entry.Changes) - 1; i >= 0; i-- {
		d.replay(entry.Changes[i].Inverse())
	}
	return entry
}

// Redo reapplies the most recently undone entry and returns it.
func (d *Document) Redo() Entry {
	assertf(d.entry == nil, ErrEntryOpen, "redo")
	entry := d.history.GoForward()
	for _, c := range entry.Changes {
		d.replay(c)
	}
	return entry
}

func (d *Document) replay(c Change) {
	switch c.Kind {
	case Insertion:
		d.splice(c.Range.Start, []rune(c.Text))
	case Deletion:
		d.erase(c.Range)
	}
}
