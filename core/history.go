package core

import (
	"io"
	"log"
)

// History is an append-only log of entries with a cursor into it.
// log[:index] can be undone, log[index:] can be redone.
type History struct {
	log    []Entry
	index  int
	logger *log.Logger
}

func NewHistory() *History {
	return &History{logger: log.New(io.Discard, "", 0)}
}

// SetLogger routes debug output; nil discards it.
func (h *History) SetLogger(logger *log.Logger) {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	h.logger = logger
}

// Record commits a new entry, dropping everything that could be redone.
func (h *History) Record(entry Entry) {
	assertf(len(entry.Changes) > 0, ErrEmptyEntry, "record")
	for i, c := range entry.Changes {
		assertf(!c.isEmpty(), ErrEmptyChange, "change %d", i)
	}

	if dropped := len(h.log) - h.index; dropped > 0 {
		h.logger.Printf("history: discarding %d redo entries", dropped)
	}
	clear(h.log[h.index:])
	h.log = append(h.log[:h.index], entry)
	h.index = len(h.log)
	h.logger.Printf("history: recorded entry with %d changes (depth %d)", len(entry.Changes), h.index)
}

func (h *History) CanGoBack() bool {
	return h.index > 0
}

func (h *History) CanGoForward() bool {
	return h.index < len(h.log)
}

// GoBack returns the entry to undo and moves it to the redo half.
func (h *History) GoBack() Entry {
	assertf(h.CanGoBack(), ErrEmptyHistory, "undo stack")
	h.index--
	return h.log[h.index]
}

// GoForward returns the entry to redo and moves it to the undo half.
func (h *History) GoForward() Entry {
	assertf(h.CanGoForward(), ErrEmptyHistory, "redo stack")
	entry := h.log[h.index]
	h.index++
	return entry
}

func (h *History) Clear() {
	h.log = nil
	h.index = 0
}

func (h *History) UndoLen() int {
	return h.index
}

func (h *History) RedoLen() int {
	return len(h.log) - h.index
}
