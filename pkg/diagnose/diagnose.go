// Package diagnose turns unknown tokens into diagnostics.
package diagnose

import (
	"fmt"

	"github.com/bastiangx/spellserve/pkg/document"
	"github.com/bastiangx/spellserve/pkg/tokenize"
)

// Source labels every diagnostic produced here.
const Source = "spellserve"

// Severity follows the protocol numbering.
type Severity int

const (
	SeverityError Severity = iota + 1
	SeverityWarning
	SeverityInformation
	SeverityHint
)

// Checker reports dictionary membership.
type Checker interface {
	Contains(word string) bool
}

// Diagnostic flags one unknown word.
type Diagnostic struct {
	Range    tokenize.Range `json:"range" msgpack:"r"`
	Message  string         `json:"message" msgpack:"m"`
	Severity Severity       `json:"severity" msgpack:"s"`
	Word     string         `json:"word" msgpack:"w"`
	Source   string         `json:"source" msgpack:"src"`
}

// Message is the text shown for an unknown word.
func Message(word string) string {
	return fmt.Sprintf("Unknown word: %q", word)
}

// Diagnose returns one hint per token of doc that dict does not contain, in
// token order.
func Diagnose(doc document.Document, dict Checker) []Diagnostic {
	return Tokens(doc.Tokens, dict)
}

// Tokens is Diagnose over a bare token list.
func Tokens(tokens []tokenize.Token, dict Checker) []Diagnostic {
	var out []Diagnostic
	for _, t := range tokens {
		if dict.Contains(t.Text) {
			continue
		}
		out = append(out, Diagnostic{
			Range:    t.Range(),
			Message:  Message(t.Text),
			Severity: SeverityHint,
			Word:     t.Text,
			Source:   Source,
		})
	}
	return out
}
