package core

import "time"

// ChangeKind tags a Change as an insertion or a deletion.
type ChangeKind uint8

const (
	Insertion ChangeKind = iota
	Deletion
)

func (k ChangeKind) String() string {
	switch k {
	case Insertion:
		return "insertion"
	case Deletion:
		return "deletion"
	}
	return "unknown"
}

// Change is one primitive edit. For an insertion Range spans the inserted
// text after the edit; for a deletion it spans the removed text before it.
type Change struct {
	Kind  ChangeKind
	Range Range
	Text  string
}

// Inverse returns the change that undoes c.
func (c Change) Inverse() Change {
	switch c.Kind {
	case Insertion:
		return Change{Kind: Deletion, Range: c.Range, Text: c.Text}
	case Deletion:
		return Change{Kind: Insertion, Range: c.Range, Text: c.Text}
	}
	panic("unknown change kind")
}

func (c Change) isEmpty() bool {
	return c.Text == "" && c.Range.IsEmpty()
}

// Entry groups the changes of one logical edit so they undo together.
type Entry struct {
	Changes   []Change
	Before    Cursor
	After     Cursor
	Timestamp time.Time
}

// Age reports how long ago the entry was committed.
func (e Entry) Age(now time.Time) time.Duration {
	return now.Sub(e.Timestamp)
}
