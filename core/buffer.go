package core

import (
	"log"
	"slices"
	"strings"
	"unicode"
)

type Clipboard interface {
	Write(text string) error
	Read() (string, error)
}

// TextEdit replaces Range with NewText. Used for batches produced outside
// the buffer, such as formatting results.
type TextEdit struct {
	Range   Range
	NewText string
}

// Buffer owns a Document and everything needed to edit it interactively:
// the cursor, the pending motion, the selection and the version counter.
// Every mutation goes through a history transaction.
type Buffer struct {
	doc *Document
	cfg Config

	cursor        Cursor
	pending       Motion
	cursorVisible bool
	selection     Selection
	topLine       int

	version      uint64
	txDepth      int
	savedContent string

	search searchState

	clipboard    Clipboard
	updateSignal chan Signal
	logger       *log.Logger
}

// New creates an empty buffer. clipboard may be nil; copy and paste then
// report ErrNoClipboard.
func New(cfg Config, clipboard Clipboard) *Buffer {
	cfg = cfg.withDefaults()
	b := &Buffer{
		doc:           NewDocument(),
		cfg:           cfg,
		cursorVisible: true,
		clipboard:     clipboard,
		updateSignal:  make(chan Signal, cfg.SignalBufferSize),
		logger:        cfg.Logger,
	}
	b.doc.History().SetLogger(cfg.Logger)
	return b
}

// SetContent replaces the text, resets history and moves the cursor home.
// The version is kept so observers never see it go backwards.
func (b *Buffer) SetContent(text string) {
	b.doc.SetContent(text)
	b.doc.ClearHistory()
	b.txDepth = 0
	b.cursor = Cursor{}
	b.pending = MotionNone
	b.selection = Selection{}
	b.topLine = 0
	b.savedContent = text
	b.search.clear()
	b.logger.Printf("buffer: loaded %d lines", b.doc.LineCount())
	b.DispatchSignal(ReloadSignal{})
}

// --- Read access ---

func (b *Buffer) Lines() []string {
	return b.doc.Lines()
}

func (b *Buffer) Line(row int) string {
	return b.doc.Line(row)
}

// LineRunes returns row without its line break.
func (b *Buffer) LineRunes(row int) []rune {
	return b.doc.LineRunes(row)
}

func (b *Buffer) LineCount() int {
	return b.doc.LineCount()
}

func (b *Buffer) LineLen(row int) int {
	return b.doc.LineLen(row)
}

func (b *Buffer) Content() string {
	return b.doc.Content()
}

func (b *Buffer) TotalLen() int {
	return b.doc.TotalLen()
}

func (b *Buffer) Offset(p Position) int {
	return b.doc.Offset(p)
}

func (b *Buffer) Get(r Range) string {
	return b.doc.Get(r)
}

func (b *Buffer) Cursor() Cursor {
	return b.cursor
}

func (b *Buffer) Version() uint64 {
	return b.version
}

func (b *Buffer) CanUndo() bool {
	return b.doc.History().CanGoBack()
}

func (b *Buffer) CanRedo() bool {
	return b.doc.History().CanGoForward()
}

func (b *Buffer) IsReadOnly() bool {
	return b.cfg.ReadOnly
}

func (b *Buffer) SetReadOnly(readOnly bool) {
	b.cfg.ReadOnly = readOnly
}

func (b *Buffer) SetTabSpaceCount(n int) {
	if n >= 0 {
		b.cfg.TabSpaceCount = n
	}
}

func (b *Buffer) IsModified() bool {
	return b.doc.Content() != b.savedContent
}

// SaveContent marks the current text as saved and hands it to observers.
func (b *Buffer) SaveContent() {
	b.savedContent = b.doc.Content()
	b.DispatchSignal(SaveSignal{content: b.savedContent})
	b.DispatchMessage(ChangesSavedMessage)
}

func (b *Buffer) GetSavedContent() string {
	return b.savedContent
}

func (b *Buffer) CursorVisible() bool {
	return b.cursorVisible
}

func (b *Buffer) SetCursorVisible(visible bool) {
	b.cursorVisible = visible
}

func (b *Buffer) ToggleCursorVisibility() {
	b.cursorVisible = !b.cursorVisible
}

// --- Viewport ---

func (b *Buffer) TopLine() int {
	return b.topLine
}

func (b *Buffer) ViewportHeight() int {
	return b.cfg.ViewportHeight
}

func (b *Buffer) SetViewportHeight(height int) {
	if height > 0 {
		b.cfg.ViewportHeight = height
		b.ScrollViewport()
	}
}

// ScrollViewport adjusts the top line so the cursor row is visible.
func (b *Buffer) ScrollViewport() {
	row := b.cursor.pos.Row

	if row < b.topLine {
		b.topLine = row
	} else if row >= b.topLine+b.cfg.ViewportHeight {
		b.topLine = row - b.cfg.ViewportHeight + 1
	}

	if b.topLine < 0 {
		b.topLine = 0
	}
}

// --- Cursor ---

// MoveCursor sets the pending motion, replacing any previous one. It is
// applied by the next UpdateCursor.
func (b *Buffer) MoveCursor(m Motion) {
	b.pending = m
}

func (b *Buffer) PendingMotion() Motion {
	return b.pending
}

// UpdateCursor applies the pending motion once. It reports whether the
// motion was applied; one blocked at a line or buffer boundary leaves the
// cursor and viewport as they were.
func (b *Buffer) UpdateCursor() bool {
	m := b.pending
	if m == MotionNone {
		return false
	}
	b.pending = MotionNone

	c := b.cursor
	var err error
	switch m {
	case MotionLeft:
		err = c.MoveLeft(b.doc)
	case MotionRight:
		err = c.MoveRight(b.doc)
	case MotionUp:
		err = c.MoveUp(b.doc)
	case MotionDown:
		err = c.MoveDown(b.doc)
	case MotionLineBeginning:
		c.MoveToLineStart()
	case MotionLineEnd:
		c.MoveToLineEnd(b.doc)
	case MotionFirstChar:
		c.MoveToBufferStart()
	case MotionLastChar:
		c.MoveToBufferEnd(b.doc)
	case MotionWordBeginning:
		err = c.MoveWordBeginning(b.doc)
	case MotionWordEnd:
		err = c.MoveWordEnd(b.doc)
	case MotionNextWord:
		err = c.MoveNextWord(b.doc)
	case MotionPageUp:
		c.MovePageUp(b.doc, b.cfg.ViewportHeight)
	case MotionPageDown:
		c.MovePageDown(b.doc, b.cfg.ViewportHeight)
	}
	b.cursorVisible = true
	if err != nil {
		b.logger.Printf("buffer: %s: %v", m, err)
		return false
	}
	b.cursor = c
	b.ScrollViewport()
	return true
}

// MoveCursorTo places the cursor at p, clamped into the document.
func (b *Buffer) MoveCursorTo(p Position) {
	p.Row = max(0, min(p.Row, b.doc.LineCount()-1))
	p.Col = max(0, min(p.Col, b.doc.LineLen(p.Row)))
	b.cursor = b.doc.CursorAt(p)
	b.cursorVisible = true
	b.ScrollViewport()
}

// MoveCursorToOffset places the cursor at a flat offset, clamped into the document.
func (b *Buffer) MoveCursorToOffset(offset int) {
	offset = max(0, min(offset, b.doc.TotalLen()))
	b.cursor = b.doc.CursorAtOffset(offset)
	b.cursorVisible = true
	b.ScrollViewport()
}

// CursorWord returns the WORD under the cursor, or "" on whitespace.
func (b *Buffer) CursorWord() string {
	line := b.doc.LineRunes(b.cursor.pos.Row)
	col := b.cursor.pos.Col
	if col >= len(line) || unicode.IsSpace(line[col]) {
		return ""
	}
	start := col
	for start > 0 && !unicode.IsSpace(line[start-1]) {
		start--
	}
	end := col
	for end < len(line) && !unicode.IsSpace(line[end]) {
		end++
	}
	return string(line[start:end])
}

// --- Transactions ---

// BeginHistoryEntry opens a transaction. Transactions nest; only the
// outermost one commits.
func (b *Buffer) BeginHistoryEntry() {
	if b.txDepth == 0 {
		b.doc.BeginEntry(b.cursor)
	}
	b.txDepth++
}

// EndHistoryEntry closes a transaction. Closing the outermost one commits
// its changes as a single undoable entry and bumps the version, unless
// nothing changed.
func (b *Buffer) EndHistoryEntry() {
	assertf(b.txDepth > 0, ErrNoEntryOpen, "end history entry")
	b.txDepth--
	if b.txDepth > 0 {
		return
	}

	entry, ok := b.doc.EndEntry(b.cursor)
	if !ok {
		return
	}
	b.version++
	b.search.stale = true
	b.DispatchSignal(ChangeSignal{version: b.version, changes: entry.Changes})
}

// ApplyInsertion inserts text at pos and returns the position after it.
// The cursor and selection anchor follow the edit.
func (b *Buffer) ApplyInsertion(pos Position, text string) Position {
	if b.cfg.ReadOnly {
		return pos
	}
	b.BeginHistoryEntry()
	defer b.EndHistoryEntry()

	end := b.doc.Insert(pos, text)
	project := func(p Position) Position {
		if p.Before(pos) {
			return p
		}
		if p.Row == pos.Row {
			return Position{Row: end.Row, Col: end.Col + p.Col - pos.Col}
		}
		return Position{Row: p.Row + end.Row - pos.Row, Col: p.Col}
	}
	b.cursor = b.doc.CursorAt(project(b.cursor.pos))
	if b.selection.IsActive() {
		b.selection.Anchor = b.doc.CursorAt(project(b.selection.Anchor.pos))
	}
	return end
}

// ApplyDeletion removes r and returns the number of characters removed.
// A cursor inside the range moves to its start.
func (b *Buffer) ApplyDeletion(r Range) int {
	if b.cfg.ReadOnly {
		return 0
	}
	b.BeginHistoryEntry()
	defer b.EndHistoryEntry()

	_, n := b.doc.Delete(r)
	project := func(p Position) Position {
		switch {
		case !p.Before(r.End):
			if p.Row == r.End.Row {
				return Position{Row: r.Start.Row, Col: r.Start.Col + p.Col - r.End.Col}
			}
			return Position{Row: p.Row - (r.End.Row - r.Start.Row), Col: p.Col}
		case r.Contains(p):
			return r.Start
		}
		return p
	}
	b.cursor = b.doc.CursorAt(project(b.cursor.pos))
	if b.selection.IsActive() {
		b.selection.Anchor = b.doc.CursorAt(project(b.selection.Anchor.pos))
	}
	return n
}

// --- Character operations ---

// InsertCharAtCursor inserts r and advances the cursor past it.
func (b *Buffer) InsertCharAtCursor(r rune) {
	if b.cfg.ReadOnly {
		return
	}
	b.BeginHistoryEntry()
	b.ApplyInsertion(b.cursor.pos, string(r))
	b.EndHistoryEntry()
	b.ScrollViewport()
}

// InsertTabOrSpaces inserts one indent unit at the cursor.
func (b *Buffer) InsertTabOrSpaces() {
	if b.cfg.ReadOnly {
		return
	}
	b.BeginHistoryEntry()
	b.ApplyInsertion(b.cursor.pos, b.cfg.indentUnit())
	b.EndHistoryEntry()
}

// DeleteCharBackwards removes the character before the cursor, joining
// with the previous line at column 0.
func (b *Buffer) DeleteCharBackwards() {
	if b.cfg.ReadOnly || b.cursor.offset == 0 {
		return
	}
	p := b.cursor.pos
	var r Range
	if p.Col == 0 {
		prev := p.Row - 1
		r = Range{Start: Position{Row: prev, Col: b.doc.LineLen(prev)}, End: p}
	} else {
		r = Range{Start: Position{Row: p.Row, Col: p.Col - 1}, End: p}
	}
	b.BeginHistoryEntry()
	b.ApplyDeletion(r)
	b.EndHistoryEntry()
	b.ScrollViewport()
}

// DeleteCharForwardOrSelected removes the selection if there is one,
// otherwise the character under the cursor.
func (b *Buffer) DeleteCharForwardOrSelected() {
	if b.cfg.ReadOnly {
		return
	}
	if b.selection.IsActive() {
		b.DeleteSelectedChars()
		return
	}
	if b.cursor.offset >= b.doc.TotalLen() {
		return
	}
	p := b.cursor.pos
	end := Position{Row: p.Row, Col: p.Col + 1}
	if p.Col >= b.doc.LineLen(p.Row) {
		end = Position{Row: p.Row + 1}
	}
	b.BeginHistoryEntry()
	b.ApplyDeletion(Range{Start: p, End: end})
	b.EndHistoryEntry()
}

// ReplaceCharAtCursor overwrites the character under the cursor with r
// and leaves the cursor on it. Line breaks are never replaced.
func (b *Buffer) ReplaceCharAtCursor(r rune) error {
	if b.cfg.ReadOnly {
		return nil
	}
	if r == '\n' {
		return ErrInvalidChar
	}
	p := b.cursor.pos
	if p.Col >= b.doc.LineLen(p.Row) {
		return ErrEndOfLine
	}
	b.BeginHistoryEntry()
	b.ApplyDeletion(Range{Start: p, End: Position{Row: p.Row, Col: p.Col + 1}})
	b.ApplyInsertion(p, string(r))
	b.cursor = b.doc.CursorAt(p)
	b.EndHistoryEntry()
	return nil
}

// DeleteSelectedChars removes the selected text as one entry, closes the
// selection and returns the number of characters removed.
func (b *Buffer) DeleteSelectedChars() int {
	if b.cfg.ReadOnly || !b.selection.IsActive() {
		return 0
	}
	b.BeginHistoryEntry()
	n, target := b.deleteSelection()
	b.CloseSelection()
	b.cursor = b.doc.CursorAt(target)
	b.EndHistoryEntry()
	b.ScrollViewport()

	b.DispatchSignal(DeleteSignal{totalChars: n})
	return n
}

// deleteSelection must run inside a transaction.
func (b *Buffer) deleteSelection() (int, Position) {
	if b.selection.Mode == SelectionBlock {
		top, bottom := b.selectedRows()
		left, right := b.selectedCols()
		n := 0
		for row := bottom; row >= top; row-- {
			n += b.ApplyDeletion(b.blockRowRange(row, left, right))
		}
		return n, Position{Row: top, Col: min(left, b.doc.LineLen(top))}
	}
	r := b.selectionRange()
	return b.ApplyDeletion(r), r.Start
}

// IndentSelectedLines indents every selected line by one level.
func (b *Buffer) IndentSelectedLines() {
	if b.cfg.ReadOnly || !b.selection.IsActive() {
		return
	}
	top, bottom := b.selectedRows()
	unit := b.cfg.indentUnit()

	b.BeginHistoryEntry()
	for row := top; row <= bottom; row++ {
		b.ApplyInsertion(Position{Row: row}, unit)
	}
	b.cursorToSelectionStart()
	b.EndHistoryEntry()
	b.CloseSelection()
	b.ScrollViewport()
}

// UnindentSelectedLines removes up to one level of leading indentation
// from every selected line.
func (b *Buffer) UnindentSelectedLines() {
	if b.cfg.ReadOnly || !b.selection.IsActive() {
		return
	}
	top, bottom := b.selectedRows()

	b.BeginHistoryEntry()
	for row := top; row <= bottom; row++ {
		line := b.doc.LineRunes(row)
		n := 0
		if b.cfg.TabSpaceCount == 0 {
			if len(line) > 0 && line[0] == '\t' {
				n = 1
			}
		} else {
			for n < len(line) && n < b.cfg.TabSpaceCount && line[n] == ' ' {
				n++
			}
		}
		b.ApplyDeletion(Range{Start: Position{Row: row}, End: Position{Row: row, Col: n}})
	}
	b.cursorToSelectionStart()
	b.EndHistoryEntry()
	b.CloseSelection()
	b.ScrollViewport()
}

func (b *Buffer) cursorToSelectionStart() {
	if b.selection.Anchor.offset < b.cursor.offset {
		b.cursor = b.selection.Anchor
	}
}

// --- Clipboard ---

// CopySelection writes the selected text to the clipboard and closes the
// selection. It returns the number of characters copied.
func (b *Buffer) CopySelection() (int, error) {
	if !b.selection.IsActive() {
		b.DispatchMessage(NothingSelectedMessage)
		return 0, ErrNoSelection
	}
	if b.clipboard == nil {
		return 0, ErrNoClipboard
	}
	text := b.SelectedText()
	if err := b.clipboard.Write(text); err != nil {
		b.DispatchError(ErrCopyFailedId, err)
		return 0, err
	}
	n := len([]rune(text))
	top, bottom := b.selectedRows()
	b.DispatchSignal(YankSignal{totalLines: bottom - top + 1, mode: b.selection.Mode})
	b.DispatchMessage(copyMessage(n))
	b.CloseSelection()
	return n, nil
}

// CutSelection copies the selection and then deletes it.
func (b *Buffer) CutSelection() (int, error) {
	if b.cfg.ReadOnly {
		return 0, nil
	}
	if !b.selection.IsActive() {
		b.DispatchMessage(NothingSelectedMessage)
		return 0, ErrNoSelection
	}
	if b.clipboard == nil {
		return 0, ErrNoClipboard
	}
	text := b.SelectedText()
	if err := b.clipboard.Write(text); err != nil {
		b.DispatchError(ErrCutFailedId, err)
		return 0, err
	}
	n := b.DeleteSelectedChars()
	b.DispatchMessage(cutMessage(n))
	return n, nil
}

// Paste inserts the clipboard text at the cursor, replacing the selection
// if there is one. Both happen in one entry.
func (b *Buffer) Paste() (int, error) {
	if b.cfg.ReadOnly {
		return 0, nil
	}
	if b.clipboard == nil {
		return 0, ErrNoClipboard
	}
	text, err := b.clipboard.Read()
	if err != nil {
		b.DispatchError(ErrPasteFailedId, err)
		return 0, err
	}
	if text == "" {
		b.DispatchMessage(NothingToPasteMessage)
		return 0, ErrNothingToPaste
	}
	text = strings.ReplaceAll(text, "\r\n", "\n")

	b.BeginHistoryEntry()
	if b.selection.IsActive() {
		_, target := b.deleteSelection()
		b.CloseSelection()
		b.cursor = b.doc.CursorAt(target)
	}
	b.ApplyInsertion(b.cursor.pos, text)
	b.EndHistoryEntry()
	b.ScrollViewport()

	n := len([]rune(text))
	b.DispatchSignal(PasteSignal{totalChars: n})
	b.DispatchMessage(pasteMessage(n))
	return n, nil
}

// --- Batch edits ---

// ApplyEdit applies a single replacement as one entry.
func (b *Buffer) ApplyEdit(edit TextEdit) {
	b.ApplyEdits([]TextEdit{edit})
}

// ApplyEdits applies non-overlapping replacements as one entry. Edits are
// applied from the end of the document backwards so earlier ranges stay valid.
func (b *Buffer) ApplyEdits(edits []TextEdit) {
	if b.cfg.ReadOnly || len(edits) == 0 {
		return
	}
	sorted := slices.Clone(edits)
	slices.SortStableFunc(sorted, func(x, y TextEdit) int {
		return y.Range.Start.Compare(x.Range.Start)
	})

	b.BeginHistoryEntry()
	for _, e := range sorted {
		b.ApplyDeletion(e.Range)
		b.ApplyInsertion(e.Range.Start, e.NewText)
	}
	b.EndHistoryEntry()
	b.logger.Printf("buffer: applied %d edits", len(edits))
}

// --- Undo / Redo ---

// Undo reverts the most recent entry and restores the cursor it had
// before that edit.
func (b *Buffer) Undo() error {
	if b.cfg.ReadOnly {
		return nil
	}
	if !b.CanUndo() {
		b.DispatchError(ErrUndoFailedId, ErrNothingToUndo)
		return ErrNothingToUndo
	}
	entry := b.doc.Undo()
	b.afterReplay(entry.Before)

	inverse := make([]Change, len(entry.Changes))
	for i, c := range entry.Changes {
		inverse[len(inverse)-1-i] = c.Inverse()
	}
	b.DispatchSignal(ChangeSignal{version: b.version, changes: inverse})
	b.DispatchSignal(UndoSignal{version: b.version})
	b.DispatchMessage(undoMessage(entry.Age(b.doc.now())))
	b.logger.Printf("buffer: undo to version %d", b.version)
	return nil
}

// Redo reapplies the most recently undone entry and restores the cursor
// it had after that edit.
func (b *Buffer) Redo() error {
	if b.cfg.ReadOnly {
		return nil
	}
	if !b.CanRedo() {
		b.DispatchError(ErrRedoFailedId, ErrNothingToRedo)
		return ErrNothingToRedo
	}
	entry := b.doc.Redo()
	b.afterReplay(entry.After)

	b.DispatchSignal(ChangeSignal{version: b.version, changes: entry.Changes})
	b.DispatchSignal(RedoSignal{version: b.version})
	b.DispatchMessage(redoMessage(entry.Age(b.doc.now())))
	b.logger.Printf("buffer: redo to version %d", b.version)
	return nil
}

func (b *Buffer) afterReplay(c Cursor) {
	b.version++
	b.search.stale = true
	b.selection = Selection{}
	b.pending = MotionNone
	b.MoveCursorTo(c.pos)
}
