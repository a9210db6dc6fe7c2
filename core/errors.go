package core

import (
	"errors"
	"fmt"
	"log"
)

var (
	ErrEndOfBuffer     = errors.New("end of buffer")
	ErrStartOfBuffer   = errors.New("start of buffer")
	ErrEndOfLine       = errors.New("end of line")
	ErrStartOfLine     = errors.New("start of line")
	ErrInvalidPosition = errors.New("invalid position")
	ErrInvalidRange    = errors.New("invalid range")
	ErrEmptyEntry      = errors.New("history entry has no changes")
	ErrEmptyChange     = errors.New("change has no text and an empty range")
	ErrEmptyHistory    = errors.New("history stack is empty")
	ErrEntryOpen       = errors.New("history entry already open")
	ErrNoEntryOpen     = errors.New("no history entry open")
	ErrNothingToUndo   = errors.New("already at oldest change")
	ErrNothingToRedo   = errors.New("already at newest change")
	ErrNothingToPaste  = errors.New("nothing to paste")
	ErrNoSelection     = errors.New("no selection")
	ErrNoClipboard     = errors.New("clipboard unavailable")
	ErrInvalidChar     = errors.New("invalid character")
)

type ErrorId int

const (
	ErrUndoFailedId ErrorId = iota
	ErrRedoFailedId
	ErrCopyFailedId
	ErrPasteFailedId
	ErrCutFailedId
)

type Error struct {
	id  ErrorId
	err error
}

func (e Error) Error() string {
	return e.err.Error()
}

func (e Error) Unwrap() error {
	return e.err
}

// assertf panics with an error wrapping sentinel when cond does not hold.
// Contract violations are programming errors, not recoverable outcomes.
func assertf(cond bool, sentinel error, format string, args ...any) {
	if cond {
		return
	}
	panic(fmt.Errorf("%w: %s", sentinel, fmt.Sprintf(format, args...)))
}

func (b *Buffer) DispatchError(id ErrorId, err error) {
	select {
	case b.updateSignal <- ErrorSignal{id, err}:
	default:
		log.Println("Channel is full, unable to send error signal")
	}
}
