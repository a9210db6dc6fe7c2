package core

import "log"

type Signal any

// ChangeSignal is sent after every committed edit, undo or redo with the
// new version and the changes that were applied, in order.
type ChangeSignal struct {
	version uint64
	changes []Change
}

func (c ChangeSignal) Value() (version uint64, changes []Change) {
	return c.version, c.changes
}

type YankSignal struct {
	totalLines int
	mode       SelectionMode
}

func (y YankSignal) Value() (totalLines int, mode SelectionMode) {
	return y.totalLines, y.mode
}

type PasteSignal struct {
	totalChars int
}

func (p PasteSignal) Value() int {
	return p.totalChars
}

type DeleteSignal struct {
	totalChars int
}

func (d DeleteSignal) Value() int {
	return d.totalChars
}

type UndoSignal struct {
	version uint64
}

func (u UndoSignal) Value() uint64 {
	return u.version
}

type RedoSignal struct {
	version uint64
}

func (r RedoSignal) Value() uint64 {
	return r.version
}

// ReloadSignal is sent when the whole content is replaced and history reset.
type ReloadSignal struct{}

type MessageSignal struct {
	id    string
	value string
}

func (m MessageSignal) Value() (id, message string) {
	id = m.id
	message = m.value

	return id, message
}

type SaveSignal struct {
	content string
}

func (s SaveSignal) Value() string {
	return s.content
}

type ErrorSignal Error

func (e ErrorSignal) Value() (id ErrorId, err error) {
	id = e.id
	err = e.err

	return id, err
}

func (b *Buffer) DispatchSignal(signal Signal) {
	select {
	case b.updateSignal <- signal:
	default:
		log.Println("Channel is full, unable to send signal")
	}
}

func (b *Buffer) GetUpdateSignalChan() <-chan Signal {
	return b.updateSignal
}
