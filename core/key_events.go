package core

import (
	"fmt"
	"strings"
)

// --- KeyCode, KeyModifiers, Key ---

// KeyCode represents non-character keys
type KeyCode int

const (
	KeyUnknown KeyCode = iota
	KeyEnter
	KeyTab
	KeyBackspace
	KeyEscape
	KeySpace

	// Arrow keys
	KeyUp
	KeyDown
	KeyLeft
	KeyRight

	// Navigation keys
	KeyHome
	KeyEnd
	KeyPageUp
	KeyPageDown

	// Editing keys
	KeyDelete
	KeyInsert
)

var keyNames = map[KeyCode]string{
	KeyUnknown:   "Unknown",
	KeyEnter:     "Enter",
	KeyTab:       "Tab",
	KeyBackspace: "Backspace",
	KeyEscape:    "Escape",
	KeySpace:     "Space",
	KeyUp:        "Up",
	KeyDown:      "Down",
	KeyLeft:      "Left",
	KeyRight:     "Right",
	KeyHome:      "Home",
	KeyEnd:       "End",
	KeyPageUp:    "PageUp",
	KeyPageDown:  "PageDown",
	KeyDelete:    "Delete",
	KeyInsert:    "Insert",
}

// KeyModifiers represents modifier keys held during a keystroke
type KeyModifiers uint8

const (
	ModNone KeyModifiers = 0
	ModCtrl KeyModifiers = 1 << iota
	ModAlt
	ModShift
)

// KeyEvent represents a keyboard input event
type KeyEvent struct {
	Rune      rune
	Key       KeyCode
	Modifiers KeyModifiers
}

func (k KeyEvent) has(mod KeyModifiers) bool {
	return k.Modifiers&mod != 0
}

// String returns a representation such as "Ctrl+Shift+Left".
func (k KeyEvent) String() string {
	var parts []string

	if k.has(ModCtrl) {
		parts = append(parts, "Ctrl")
	}
	if k.has(ModAlt) {
		parts = append(parts, "Alt")
	}
	if k.has(ModShift) {
		parts = append(parts, "Shift")
	}

	if k.Rune != 0 {
		parts = append(parts, string(k.Rune))
	} else if name, ok := keyNames[k.Key]; ok {
		parts = append(parts, name)
	} else {
		parts = append(parts, fmt.Sprintf("SpecialKey(%d)", k.Key))
	}

	return strings.Join(parts, "+")
}

var navigationMotions = map[KeyCode]Motion{
	KeyLeft:     MotionLeft,
	KeyRight:    MotionRight,
	KeyUp:       MotionUp,
	KeyDown:     MotionDown,
	KeyHome:     MotionLineBeginning,
	KeyEnd:      MotionLineEnd,
	KeyPageUp:   MotionPageUp,
	KeyPageDown: MotionPageDown,
}

var ctrlNavigationMotions = map[KeyCode]Motion{
	KeyLeft:  MotionWordBeginning,
	KeyRight: MotionNextWord,
	KeyHome:  MotionFirstChar,
	KeyEnd:   MotionLastChar,
}

// motionFor maps navigation keys to motions. Alt+Right jumps to the end of
// the WORD.
func motionFor(key KeyEvent) Motion {
	if key.has(ModAlt) && key.Key == KeyRight {
		return MotionWordEnd
	}
	if key.has(ModCtrl) {
		return ctrlNavigationMotions[key.Key]
	}
	return navigationMotions[key.Key]
}

// HandleKey applies one key press and then the resulting cursor update.
// Shift with a navigation key extends a normal selection; Alt+Shift
// extends a block selection.
func (b *Buffer) HandleKey(key KeyEvent) error {
	err := b.handleKey(key)
	b.UpdateCursor()
	return err
}

func (b *Buffer) handleKey(key KeyEvent) error {
	if m := motionFor(key); m != MotionNone {
		switch {
		case key.has(ModShift) && key.has(ModAlt):
			b.StartSelection(SelectionBlock)
		case key.has(ModShift):
			b.StartSelection(SelectionNormal)
		default:
			b.CloseSelection()
		}
		b.MoveCursor(m)
		return nil
	}

	if key.has(ModCtrl) && key.Rune != 0 {
		return b.handleCtrl(key.Rune)
	}

	switch key.Key {
	case KeyEscape:
		b.CloseSelection()
		b.FindClear()
	case KeyEnter:
		b.InsertCharAtCursor('\n')
	case KeyTab:
		switch {
		case b.selection.IsActive() && key.has(ModShift):
			b.UnindentSelectedLines()
		case b.selection.IsActive():
			b.IndentSelectedLines()
		case !key.has(ModShift):
			b.InsertTabOrSpaces()
		}
	case KeyBackspace:
		if b.selection.IsActive() {
			b.DeleteSelectedChars()
		} else {
			b.DeleteCharBackwards()
		}
	case KeyDelete:
		b.DeleteCharForwardOrSelected()
	case KeySpace:
		b.insertReplacingSelection(' ')
	default:
		if key.Rune != 0 {
			b.insertReplacingSelection(key.Rune)
		}
	}
	return nil
}

func (b *Buffer) handleCtrl(r rune) error {
	var err error
	switch r {
	case 'z':
		err = b.Undo()
	case 'y':
		err = b.Redo()
	case 'c':
		_, err = b.CopySelection()
	case 'x':
		_, err = b.CutSelection()
	case 'v':
		_, err = b.Paste()
	case 'a':
		b.CloseSelection()
		b.MoveCursorTo(Position{})
		b.StartSelection(SelectionNormal)
		b.MoveCursor(MotionLastChar)
	case 'l':
		b.CloseSelection()
		b.StartSelection(SelectionLine)
	case 'b':
		b.CloseSelection()
		b.StartSelection(SelectionBlock)
	case 'n':
		b.FindNext()
	case 'p':
		b.FindPrevious()
	case 's':
		b.SaveContent()
	}
	return err
}

// insertReplacingSelection deletes the selection and inserts r as one entry.
func (b *Buffer) insertReplacingSelection(r rune) {
	if b.cfg.ReadOnly {
		return
	}
	if !b.selection.IsActive() {
		b.InsertCharAtCursor(r)
		return
	}
	b.BeginHistoryEntry()
	_, target := b.deleteSelection()
	b.CloseSelection()
	b.cursor = b.doc.CursorAt(target)
	b.ApplyInsertion(b.cursor.pos, string(r))
	b.EndHistoryEntry()
	b.ScrollViewport()
}
