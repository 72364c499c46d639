// Package tokenize splits document text into candidate words with positions in
// the editor protocol's UTF-16 addressing.
package tokenize

import (
	"strings"
	"unicode"
	"unicode/utf16"
	"unicode/utf8"
)

// MinTokenLength is the shortest word, in characters, that is ever checked.
const MinTokenLength = 3

// Diacritics are listed explicitly so the word class never depends on the
// Unicode tables alone.
const Diacritics = "ąćęłńóśźżĄĆĘŁŃÓŚŹŻ"

// Token is a maximal run of word characters.
type Token struct {
	Text      string
	Start     Position
	End       Position
	Offset    int // byte offset of the first character
	EndOffset int // byte offset just past the last character
	Length    int // length in UTF-16 code units
}

// Range returns the token span.
func (t Token) Range() Range {
	return Range{Start: t.Start, End: t.End}
}

// IsWordChar reports whether r can be part of a word.
func IsWordChar(r rune) bool {
	return unicode.IsLetter(r) || strings.ContainsRune(Diacritics, r)
}

// Tokenize returns every word of at least MinTokenLength characters in text,
// in document order.
func Tokenize(text string) []Token {
	var (
		tokens []Token
		line   int
		col    int
		inWord bool
		cur    Token
		runes  int
	)
	flush := func(end int) {
		if !inWord {
			return
		}
		inWord = false
		cur.EndOffset = end
		cur.End = Position{Line: line, Character: col}
		cur.Text = text[cur.Offset:end]
		cur.Length = cur.End.Character - cur.Start.Character
		if runes >= MinTokenLength && !isDigits(cur.Text) {
			tokens = append(tokens, cur)
		}
	}
	for i, r := range text {
		if IsWordChar(r) {
			if !inWord {
				inWord = true
				runes = 0
				cur = Token{Offset: i, Start: Position{Line: line, Character: col}}
			}
			runes++
			col += runeUnits(r)
			continue
		}
		flush(i)
		if r == '\n' {
			line++
			col = 0
			continue
		}
		col += runeUnits(r)
	}
	flush(len(text))
	return tokens
}

// isDigits guards against all-digit runs should the word class ever admit digits.
func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

func runeUnits(r rune) int {
	if n := utf16.RuneLen(r); n > 0 {
		return n
	}
	return 1
}

// PrefixAt returns the part of the word that ends at pos, and the position
// where it starts. The prefix is empty when pos does not follow a word character.
func PrefixAt(li *LineIndex, pos Position) (string, Position) {
	end := li.Offset(pos)
	start := scanBack(li.text, end)
	return li.text[start:end], li.Position(start)
}

// WordAt returns the whole word touching pos regardless of its length.
func WordAt(li *LineIndex, pos Position) (Token, bool) {
	at := li.Offset(pos)
	start := scanBack(li.text, at)
	end := at
	for end < len(li.text) {
		r, size := utf8.DecodeRuneInString(li.text[end:])
		if !IsWordChar(r) {
			break
		}
		end += size
	}
	if start == end {
		return Token{}, false
	}
	t := Token{
		Text:      li.text[start:end],
		Start:     li.Position(start),
		End:       li.Position(end),
		Offset:    start,
		EndOffset: end,
	}
	t.Length = t.End.Character - t.Start.Character
	return t, true
}

func scanBack(text string, from int) int {
	start := from
	for start > 0 {
		r, size := utf8.DecodeLastRuneInString(text[:start])
		if !IsWordChar(r) {
			break
		}
		start -= size
	}
	return start
}
