// Package document tracks the text of open documents and keeps their token
// lists current. Every open or change re-tokenizes the whole text.
package document

import (
	"errors"
	"fmt"

	"github.com/bastiangx/spellserve/pkg/tokenize"
)

// ErrNotOpen is returned for operations on a URI that was never opened.
var ErrNotOpen = errors.New("document not open")

// NotOpenError names the URI behind an ErrNotOpen failure.
type NotOpenError struct {
	URI string
}

func (e *NotOpenError) Error() string {
	return fmt.Sprintf("document not open: %s", e.URI)
}

func (e *NotOpenError) Unwrap() error { return ErrNotOpen }

// Document is an immutable snapshot of one open document.
type Document struct {
	URI     string
	Version int
	Text    string
	Tokens  []tokenize.Token
	Lines   *tokenize.LineIndex
}

func newDocument(uri string, version int, text string) *Document {
	return &Document{
		URI:     uri,
		Version: version,
		Text:    text,
		Tokens:  tokenize.Tokenize(text),
		Lines:   tokenize.NewLineIndex(text),
	}
}

// TokenAt returns the token whose range contains pos.
func (d Document) TokenAt(pos tokenize.Position) (tokenize.Token, bool) {
	for _, t := range d.Tokens {
		if t.Range().Contains(pos) {
			return t, true
		}
		if pos.Before(t.Start) {
			break
		}
	}
	return tokenize.Token{}, false
}

// Change is one edit. A nil Range replaces the whole text.
type Change struct {
	Range *tokenize.Range
	Text  string
}

// Apply returns text with changes applied in order. Ranges use UTF-16 columns
// and are clamped to the text.
func Apply(text string, changes ...Change) string {
	for _, ch := range changes {
		if ch.Range == nil {
			text = ch.Text
			continue
		}
		li := tokenize.NewLineIndex(text)
		start := li.Offset(ch.Range.Start)
		end := li.Offset(ch.Range.End)
		if end < start {
			end = start
		}
		text = text[:start] + ch.Text + text[end:]
	}
	return text
}
