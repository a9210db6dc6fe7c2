package core

import (
	"fmt"
	"strings"
)

type searchState struct {
	term    []rune
	results []int // flat offsets of every match, ascending
	current int
	stale   bool
}

func (s *searchState) clear() {
	*s = searchState{}
}

// SearchResultsSignal carries the positions of all matches of the last search.
type SearchResultsSignal struct {
	positions []Position
}

func (s SearchResultsSignal) Value() []Position {
	return s.positions
}

// Find searches for term, moves the cursor to the first match at or after
// it and returns the number of matches. An empty term clears the search.
func (b *Buffer) Find(term string) int {
	b.search.clear()
	if term == "" {
		return 0
	}
	b.search.term = []rune(term)
	b.refreshSearch()

	if len(b.search.results) == 0 {
		b.DispatchMessage("search", fmt.Sprintf("Not found: %q", term))
		b.DispatchSignal(SearchResultsSignal{})
		return 0
	}

	b.search.current = 0
	for i, off := range b.search.results {
		if off >= b.cursor.offset {
			b.search.current = i
			break
		}
	}
	b.DispatchMessage("search", fmt.Sprintf("Found %d occurrences of %q", len(b.search.results), term))
	b.DispatchSignal(SearchResultsSignal{positions: b.SearchResults()})
	b.goToSearchResult()
	return len(b.search.results)
}

// FindNext moves to the next match, wrapping to the first one.
func (b *Buffer) FindNext() bool {
	if !b.prepareSearch() {
		return false
	}
	b.search.current++
	if b.search.current >= len(b.search.results) {
		b.search.current = 0
		b.DispatchMessage("search", "Starting search from beginning")
	}
	b.goToSearchResult()
	return true
}

// FindPrevious moves to the previous match, wrapping to the last one.
func (b *Buffer) FindPrevious() bool {
	if !b.prepareSearch() {
		return false
	}
	b.search.current--
	if b.search.current < 0 {
		b.search.current = len(b.search.results) - 1
		b.DispatchMessage("search", "Starting search from end")
	}
	b.goToSearchResult()
	return true
}

func (b *Buffer) FindClear() {
	b.search.clear()
}

func (b *Buffer) SearchTerm() string {
	return string(b.search.term)
}

// SearchResults returns the start position of every match.
func (b *Buffer) SearchResults() []Position {
	if b.search.stale {
		b.refreshSearch()
	}
	positions := make([]Position, len(b.search.results))
	for i, off := range b.search.results {
		positions[i] = b.doc.PositionAt(off)
	}
	return positions
}

func (b *Buffer) prepareSearch() bool {
	if len(b.search.term) == 0 {
		return false
	}
	if b.search.stale {
		b.refreshSearch()
	}
	return len(b.search.results) > 0
}

// refreshSearch scans line by line, so matches never span a line break.
func (b *Buffer) refreshSearch() {
	b.search.results = b.search.results[:0]
	b.search.stale = false
	term := string(b.search.term)
	if term == "" {
		return
	}

	offset := 0
	for row := range b.doc.LineCount() {
		line := b.doc.LineRunes(row)
		text := string(line)
		from := 0
		for {
			i := strings.Index(text[from:], term)
			if i < 0 {
				break
			}
			byteIdx := from + i
			b.search.results = append(b.search.results, offset+len([]rune(text[:byteIdx])))
			from = byteIdx + len(string(b.search.term[0]))
		}
		offset += len(b.doc.lines[row])
	}
	b.search.current = max(0, min(b.search.current, len(b.search.results)-1))
}

func (b *Buffer) goToSearchResult() {
	b.MoveCursorToOffset(b.search.results[b.search.current])
}
