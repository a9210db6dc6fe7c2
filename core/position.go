package core

import "fmt"

// Position represents a location in the document
type Position struct {
	Row int // Zero-indexed row (line number)
	Col int // Zero-indexed column (character position in the line)
}

// Compare returns -1, 0 or 1 depending on whether p is before, equal to or after o.
func (p Position) Compare(o Position) int {
	switch {
	case p.Row < o.Row:
		return -1
	case p.Row > o.Row:
		return 1
	case p.Col < o.Col:
		return -1
	case p.Col > o.Col:
		return 1
	}
	return 0
}

func (p Position) Before(o Position) bool {
	return p.Compare(o) < 0
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Row, p.Col)
}

// Range is a half-open span [Start, End) of the document.
type Range struct {
	Start Position
	End   Position
}

func (r Range) IsEmpty() bool {
	return r.Start == r.End
}

// Contains reports whether p lies inside the half-open range.
func (r Range) Contains(p Position) bool {
	return r.Start.Compare(p) <= 0 && p.Before(r.End)
}

func (r Range) String() string {
	return fmt.Sprintf("[%s, %s)", r.Start, r.End)
}
