package tokenize

import (
	"sort"
	"unicode/utf16"
	"unicode/utf8"
)

// Position is a zero-based line and UTF-16 code unit column, the addressing
// used by the editor protocol.
type Position struct {
	Line      int `json:"line" msgpack:"l"`
	Character int `json:"character" msgpack:"c"`
}

// Before reports whether p comes strictly before o.
func (p Position) Before(o Position) bool {
	if p.Line != o.Line {
		return p.Line < o.Line
	}
	return p.Character < o.Character
}

// Range is a half-open span between two positions.
type Range struct {
	Start Position `json:"start" msgpack:"s"`
	End   Position `json:"end" msgpack:"e"`
}

// Contains reports whether pos lies inside r, end inclusive so a cursor right
// after a word still hits it.
func (r Range) Contains(pos Position) bool {
	return !pos.Before(r.Start) && !r.End.Before(pos)
}

// Overlaps reports whether r and o share at least one position.
func (r Range) Overlaps(o Range) bool {
	return !r.End.Before(o.Start) && !o.End.Before(r.Start)
}

// LineIndex maps between byte offsets and protocol positions for one text.
type LineIndex struct {
	text   string
	starts []int
}

// NewLineIndex scans text once for line boundaries.
func NewLineIndex(text string) *LineIndex {
	starts := []int{0}
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			starts = append(starts, i+1)
		}
	}
	return &LineIndex{text: text, starts: starts}
}

// Lines returns the number of lines, counting a trailing empty line.
func (li *LineIndex) Lines() int {
	return len(li.starts)
}

// Position converts a byte offset to a protocol position.
func (li *LineIndex) Position(offset int) Position {
	offset = max(0, min(offset, len(li.text)))
	line := sort.Search(len(li.starts), func(i int) bool { return li.starts[i] > offset }) - 1
	return Position{Line: line, Character: unitsBetween(li.text, li.starts[line], offset)}
}

// Offset converts a protocol position to a byte offset. Positions past the end
// of a line clamp to the line end; lines past the end clamp to the text end.
func (li *LineIndex) Offset(pos Position) int {
	if pos.Line < 0 {
		return 0
	}
	if pos.Line >= len(li.starts) {
		return len(li.text)
	}
	i := li.starts[pos.Line]
	end := li.lineEnd(pos.Line)
	units := 0
	for i < end && units < pos.Character {
		r, size := utf8.DecodeRuneInString(li.text[i:])
		n := utf16.RuneLen(r)
		if n < 0 {
			n = 1
		}
		if units+n > pos.Character {
			break
		}
		units += n
		i += size
	}
	return i
}

// OutOfBounds reports whether pos addresses a line or column the text does not
// have. A client may ask for completions before its change notification lands.
func (li *LineIndex) OutOfBounds(pos Position) bool {
	if pos.Line < 0 || pos.Line >= len(li.starts) || pos.Character < 0 {
		return true
	}
	start := li.starts[pos.Line]
	return pos.Character > unitsBetween(li.text, start, li.lineEnd(pos.Line))
}

// lineEnd returns the offset of the newline ending line, or the text end.
func (li *LineIndex) lineEnd(line int) int {
	if line+1 < len(li.starts) {
		return li.starts[line+1] - 1
	}
	return len(li.text)
}

func unitsBetween(text string, from, to int) int {
	units := 0
	for _, r := range text[from:to] {
		n := utf16.RuneLen(r)
		if n < 0 {
			n = 1
		}
		units += n
	}
	return units
}
