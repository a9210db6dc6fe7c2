package core

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

type fakeClipboard struct {
	text string
	err  error
}

func (f *fakeClipboard) Write(text string) error {
	if f.err != nil {
		return f.err
	}
	f.text = text
	return nil
}

func (f *fakeClipboard) Read() (string, error) {
	return f.text, f.err
}

func newTestBuffer(text string) *Buffer {
	b := New(DefaultConfig(), &fakeClipboard{})
	b.SetContent(text)
	b.doc.now = func() time.Time { return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC) }
	drain(b)
	return b
}

func drain(b *Buffer) []Signal {
	var signals []Signal
	for {
		select {
		case s := <-b.updateSignal:
			signals = append(signals, s)
		default:
			return signals
		}
	}
}

func messages(signals []Signal) []string {
	var out []string
	for _, s := range signals {
		if m, ok := s.(MessageSignal); ok {
			_, msg := m.Value()
			out = append(out, msg)
		}
	}
	return out
}

func TestInsertCharAtCursor(t *testing.T) {
	b := newTestBuffer("")

	b.InsertCharAtCursor('h')
	b.InsertCharAtCursor('i')
	b.InsertCharAtCursor('\n')

	assert.Equal(t, "hi\n", b.Content())
	assert.Equal(t, pos(1, 0), b.Cursor().Position())
	assert.Equal(t, 3, b.Cursor().Offset())
	assert.Equal(t, uint64(3), b.Version())
	assert.True(t, b.CanUndo())
}

func TestDeleteCharBackwards(t *testing.T) {
	b := newTestBuffer("ab\ncd")

	b.MoveCursorTo(pos(1, 0))
	b.DeleteCharBackwards()
	assert.Equal(t, "abcd", b.Content())
	assert.Equal(t, pos(0, 2), b.Cursor().Position())

	b.DeleteCharBackwards()
	assert.Equal(t, "acd", b.Content())
	assert.Equal(t, pos(0, 1), b.Cursor().Position())
	assert.Equal(t, uint64(2), b.Version())
}

func TestDeleteCharBackwardsAtStartIsNoop(t *testing.T) {
	b := newTestBuffer("abc")
	b.DeleteCharBackwards()
	assert.Equal(t, "abc", b.Content())
	assert.Zero(t, b.Version())
	assert.False(t, b.CanUndo())
}

func TestDeleteCharForward(t *testing.T) {
	b := newTestBuffer("ab\ncd")

	b.MoveCursorTo(pos(0, 2))
	b.DeleteCharForwardOrSelected()
	assert.Equal(t, "abcd", b.Content())
	assert.Equal(t, pos(0, 2), b.Cursor().Position())

	b.MoveCursor(MotionLastChar)
	b.UpdateCursor()
	b.DeleteCharForwardOrSelected()
	assert.Equal(t, "abcd", b.Content())
	assert.Equal(t, uint64(1), b.Version())
}

func TestDeleteCharForwardDeletesSelection(t *testing.T) {
	b := newTestBuffer("hello world")
	b.StartSelection(SelectionNormal)
	b.MoveCursorTo(pos(0, 5))

	b.DeleteCharForwardOrSelected()
	assert.Equal(t, "world", b.Content())
	assert.False(t, b.Selection().IsActive())
}

func TestReplaceCharAtCursor(t *testing.T) {
	b := newTestBuffer("abc\n")
	b.MoveCursorTo(pos(0, 1))

	require.NoError(t, b.ReplaceCharAtCursor('X'))
	assert.Equal(t, "aXc\n", b.Content())
	assert.Equal(t, pos(0, 1), b.Cursor().Position())
	assert.Equal(t, uint64(1), b.Version())

	assert.ErrorIs(t, b.ReplaceCharAtCursor('\n'), ErrInvalidChar)
	b.MoveCursorTo(pos(0, 3))
	assert.ErrorIs(t, b.ReplaceCharAtCursor('Y'), ErrEndOfLine)

	require.NoError(t, b.Undo())
	assert.Equal(t, "abc\n", b.Content())
}

func TestTransactionCommitsOnce(t *testing.T) {
	b := newTestBuffer("hello")

	b.BeginHistoryEntry()
	b.ApplyInsertion(pos(0, 5), " world")
	b.BeginHistoryEntry()
	b.ApplyDeletion(rng(0, 0, 0, 1))
	b.EndHistoryEntry()
	assert.Zero(t, b.Version())
	b.EndHistoryEntry()

	assert.Equal(t, "ello world", b.Content())
	assert.Equal(t, uint64(1), b.Version())

	signals := drain(b)
	require.Len(t, signals, 1)
	version, changes := signals[0].(ChangeSignal).Value()
	assert.Equal(t, uint64(1), version)
	assert.Len(t, changes, 2)

	require.NoError(t, b.Undo())
	assert.Equal(t, "hello", b.Content())
	assert.False(t, b.CanUndo())
}

func TestEmptyTransactionDoesNotBumpVersion(t *testing.T) {
	b := newTestBuffer("abc")
	b.BeginHistoryEntry()
	b.ApplyInsertion(pos(0, 0), "")
	b.ApplyDeletion(rng(0, 1, 0, 1))
	b.EndHistoryEntry()

	assert.Zero(t, b.Version())
	assert.False(t, b.CanUndo())
	assert.Empty(t, drain(b))
}

func TestEndWithoutBeginPanics(t *testing.T) {
	b := newTestBuffer("abc")
	assertPanicsWith(t, ErrNoEntryOpen, b.EndHistoryEntry)
}

func TestCursorFollowsEdits(t *testing.T) {
	b := newTestBuffer("ab\ncd")
	b.MoveCursorTo(pos(1, 1))

	b.ApplyInsertion(pos(0, 0), "x\n")
	assert.Equal(t, "x\nab\ncd", b.Content())
	assert.Equal(t, pos(2, 1), b.Cursor().Position())

	b.ApplyInsertion(pos(2, 0), "yy")
	assert.Equal(t, pos(2, 3), b.Cursor().Position())

	b.ApplyDeletion(rng(0, 0, 1, 0))
	assert.Equal(t, pos(1, 3), b.Cursor().Position())
	assert.Equal(t, b.Offset(pos(1, 3)), b.Cursor().Offset())

	b.ApplyDeletion(rng(0, 1, 1, 2))
	assert.Equal(t, "acd", b.Content())
	assert.Equal(t, pos(0, 2), b.Cursor().Position())

	b.ApplyDeletion(rng(0, 0, 0, 3))
	assert.Equal(t, pos(0, 0), b.Cursor().Position())
}

func TestUndoRedoRestoresCursor(t *testing.T) {
	b := newTestBuffer("")
	for _, r := range "abc" {
		b.InsertCharAtCursor(r)
	}

	require.NoError(t, b.Undo())
	assert.Equal(t, "ab", b.Content())
	assert.Equal(t, pos(0, 2), b.Cursor().Position())

	require.NoError(t, b.Redo())
	assert.Equal(t, "abc", b.Content())
	assert.Equal(t, pos(0, 3), b.Cursor().Position())
	assert.Equal(t, uint64(5), b.Version())
}

func TestUndoGuard(t *testing.T) {
	b := newTestBuffer("abc")

	assert.ErrorIs(t, b.Undo(), ErrNothingToUndo)
	assert.ErrorIs(t, b.Redo(), ErrNothingToRedo)
	assert.Zero(t, b.Version())

	signals := drain(b)
	require.Len(t, signals, 2)
	id, err := signals[0].(ErrorSignal).Value()
	assert.Equal(t, ErrUndoFailedId, id)
	assert.ErrorIs(t, err, ErrNothingToUndo)
	id, err = signals[1].(ErrorSignal).Value()
	assert.Equal(t, ErrRedoFailedId, id)
	assert.ErrorIs(t, err, ErrNothingToRedo)
}

func TestUndoMessages(t *testing.T) {
	b := newTestBuffer("")
	b.InsertCharAtCursor('a')
	drain(b)

	require.NoError(t, b.Undo())
	signals := drain(b)
	assert.Contains(t, messages(signals), "Undid change (0 seconds old)")

	var undone bool
	for _, s := range signals {
		switch s := s.(type) {
		case UndoSignal:
			undone = true
			assert.Equal(t, uint64(2), s.Value())
		case ChangeSignal:
			_, changes := s.Value()
			require.Len(t, changes, 1)
			assert.Equal(t, Deletion, changes[0].Kind)
		}
	}
	assert.True(t, undone)
}

func TestNewEditClearsRedo(t *testing.T) {
	b := newTestBuffer("")
	b.InsertCharAtCursor('a')
	b.InsertCharAtCursor('b')
	require.NoError(t, b.Undo())
	assert.True(t, b.CanRedo())

	b.InsertCharAtCursor('c')
	assert.False(t, b.CanRedo())
	assert.Equal(t, "ac", b.Content())
}

func TestReadOnlyIgnoresEdits(t *testing.T) {
	cb := &fakeClipboard{text: "pasted"}
	cfg := DefaultConfig()
	cfg.ReadOnly = true
	b := New(cfg, cb)
	b.SetContent("abc\ndef")
	b.MoveCursorTo(pos(0, 1))

	b.InsertCharAtCursor('x')
	b.DeleteCharBackwards()
	b.DeleteCharForwardOrSelected()
	b.InsertTabOrSpaces()
	b.ApplyEdits([]TextEdit{{Range: rng(0, 0, 0, 1), NewText: "z"}})
	_, err := b.Paste()
	require.NoError(t, err)
	b.StartSelection(SelectionLine)
	assert.Zero(t, b.DeleteSelectedChars())
	b.IndentSelectedLines()

	assert.Equal(t, "abc\ndef", b.Content())
	assert.Zero(t, b.Version())
	assert.False(t, b.CanUndo())
	assert.False(t, b.IsModified())

	b.MoveCursor(MotionDown)
	b.UpdateCursor()
	assert.Equal(t, pos(1, 1), b.Cursor().Position())
}

func TestSetContentResetsState(t *testing.T) {
	b := newTestBuffer("abc")
	b.InsertCharAtCursor('x')
	b.StartSelection(SelectionNormal)
	b.MoveCursor(MotionRight)

	b.SetContent("new\ntext")
	assert.Equal(t, []string{"new\n", "text"}, b.Lines())
	assert.Equal(t, pos(0, 0), b.Cursor().Position())
	assert.False(t, b.CanUndo())
	assert.False(t, b.Selection().IsActive())
	assert.Equal(t, MotionNone, b.PendingMotion())
	assert.Equal(t, uint64(1), b.Version())
	assert.False(t, b.IsModified())
}

func TestModifiedTracksSavedContent(t *testing.T) {
	b := newTestBuffer("abc")
	assert.False(t, b.IsModified())

	b.InsertCharAtCursor('x')
	assert.True(t, b.IsModified())

	b.SaveContent()
	assert.False(t, b.IsModified())
	assert.Equal(t, "xabc", b.GetSavedContent())

	var saved string
	for _, s := range drain(b) {
		if s, ok := s.(SaveSignal); ok {
			saved = s.Value()
		}
	}
	assert.Equal(t, "xabc", saved)

	require.NoError(t, b.Undo())
	assert.True(t, b.IsModified())
}

func TestIndentAndUnindent(t *testing.T) {
	b := newTestBuffer("a\nb\nc")
	b.StartSelection(SelectionLine)
	b.MoveCursorTo(pos(1, 0))

	b.IndentSelectedLines()
	assert.Equal(t, "    a\n    b\nc", b.Content())
	assert.False(t, b.Selection().IsActive())
	assert.Equal(t, uint64(1), b.Version())

	b.StartSelection(SelectionNormal)
	b.MoveCursorTo(pos(2, 0))
	b.UnindentSelectedLines()
	assert.Equal(t, "a\nb\nc", b.Content())

	require.NoError(t, b.Undo())
	assert.Equal(t, "    a\n    b\nc", b.Content())
}

func TestUnindentRemovesAtMostOneLevel(t *testing.T) {
	b := newTestBuffer("      a\n  b\nc")
	b.StartSelection(SelectionLine)
	b.MoveCursorTo(pos(2, 0))

	b.UnindentSelectedLines()
	assert.Equal(t, "  a\nb\nc", b.Content())
}

func TestIndentWithTabs(t *testing.T) {
	b := newTestBuffer("a")
	b.SetTabSpaceCount(0)

	b.InsertTabOrSpaces()
	assert.Equal(t, "\ta", b.Content())

	b.StartSelection(SelectionLine)
	b.UnindentSelectedLines()
	assert.Equal(t, "a", b.Content())
}

func TestCopyCutPaste(t *testing.T) {
	cb := &fakeClipboard{}
	b := New(DefaultConfig(), cb)
	b.SetContent("hello world")

	b.StartSelection(SelectionNormal)
	b.MoveCursorTo(pos(0, 4))
	n, err := b.CopySelection()
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.Equal(t, "hello", cb.text)
	assert.False(t, b.Selection().IsActive())
	assert.Zero(t, b.Version())

	b.MoveCursorTo(pos(0, 11))
	n, err = b.Paste()
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.Equal(t, "hello worldhello", b.Content())
	assert.Equal(t, pos(0, 16), b.Cursor().Position())

	b.MoveCursorTo(pos(0, 5))
	b.StartSelection(SelectionNormal)
	b.MoveCursorTo(pos(0, 10))
	n, err = b.CutSelection()
	require.NoError(t, err)
	assert.Equal(t, 6, n)
	assert.Equal(t, " world", cb.text)
	assert.Equal(t, "hellohello", b.Content())
	assert.Equal(t, pos(0, 5), b.Cursor().Position())
}

func TestPasteReplacesSelectionInOneEntry(t *testing.T) {
	cb := &fakeClipboard{text: "X\nY"}
	b := New(DefaultConfig(), cb)
	b.SetContent("abcdef")
	b.MoveCursorTo(pos(0, 1))
	b.StartSelection(SelectionNormal)
	b.MoveCursorTo(pos(0, 3))

	_, err := b.Paste()
	require.NoError(t, err)
	assert.Equal(t, "aX\nYef", b.Content())
	assert.Equal(t, pos(1, 1), b.Cursor().Position())
	assert.Equal(t, uint64(1), b.Version())

	require.NoError(t, b.Undo())
	assert.Equal(t, "abcdef", b.Content())
}

func TestClipboardErrors(t *testing.T) {
	b := newTestBuffer("abc")
	_, err := b.Paste()
	assert.ErrorIs(t, err, ErrNothingToPaste)

	_, err = b.CopySelection()
	assert.ErrorIs(t, err, ErrNoSelection)

	boom := errors.New("boom")
	b.clipboard = &fakeClipboard{err: boom}
	_, err = b.Paste()
	assert.ErrorIs(t, err, boom)

	b.clipboard = nil
	b.StartSelection(SelectionNormal)
	_, err = b.CopySelection()
	assert.ErrorIs(t, err, ErrNoClipboard)
}

func TestApplyEditsIsOneEntry(t *testing.T) {
	b := newTestBuffer("hello world\nbye")
	b.MoveCursorTo(pos(1, 3))

	b.ApplyEdits([]TextEdit{
		{Range: rng(0, 0, 0, 5), NewText: "goodbye"},
		{Range: rng(0, 6, 0, 11), NewText: "moon"},
		{Range: rng(1, 0, 1, 0), NewText: "> "},
	})

	assert.Equal(t, "goodbye moon\n> bye", b.Content())
	assert.Equal(t, pos(1, 5), b.Cursor().Position())
	assert.Equal(t, uint64(1), b.Version())

	require.NoError(t, b.Undo())
	assert.Equal(t, "hello world\nbye", b.Content())
	assert.Equal(t, pos(1, 3), b.Cursor().Position())
}

func TestCursorWord(t *testing.T) {
	b := newTestBuffer("foo bar.baz  qux")
	b.MoveCursorTo(pos(0, 6))
	assert.Equal(t, "bar.baz", b.CursorWord())

	b.MoveCursorTo(pos(0, 11))
	assert.Empty(t, b.CursorWord())
}

// --- Properties ---

func TestPropertyBufferUndoAllRestoresInitial(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		b := newTestBuffer(rapid.StringMatching(`[ab \n]{0,12}`).Draw(t, "text"))
		initial := b.Content()

		ops := rapid.IntRange(1, 15).Draw(t, "ops")
		for range ops {
			before := b.Version()
			beforeText := b.Content()
			switch rapid.IntRange(0, 4).Draw(t, "op") {
			case 0:
				b.InsertCharAtCursor(rapid.SampledFrom([]rune("xy\n")).Draw(t, "char"))
			case 1:
				b.DeleteCharBackwards()
			case 2:
				b.DeleteCharForwardOrSelected()
			case 3:
				b.MoveCursor(rapid.SampledFrom([]Motion{
					MotionLeft, MotionRight, MotionUp, MotionDown,
					MotionWordEnd, MotionNextWord, MotionWordBeginning, MotionLastChar,
				}).Draw(t, "motion"))
				b.UpdateCursor()
			case 4:
				if b.Selection().IsActive() {
					b.CloseSelection()
				} else {
					b.StartSelection(SelectionNormal)
				}
			}

			delta := b.Version() - before
			assert.LessOrEqual(t, delta, uint64(1))
			assert.Equal(t, beforeText != b.Content(), delta == 1)
			assert.Equal(t, b.Cursor(), b.doc.CursorAt(b.Cursor().Position()))
		}
		final := b.Content()

		for b.CanUndo() {
			require.NoError(t, b.Undo())
		}
		assert.Equal(t, initial, b.Content())
		assert.ErrorIs(t, b.Undo(), ErrNothingToUndo)

		for b.CanRedo() {
			require.NoError(t, b.Redo())
		}
		assert.Equal(t, final, b.Content())
	})
}
