// Package action builds corrective edits for spelling diagnostics.
package action

import (
	"fmt"

	"github.com/bastiangx/spellserve/pkg/diagnose"
	"github.com/bastiangx/spellserve/pkg/document"
	"github.com/bastiangx/spellserve/pkg/fuzzy"
	"github.com/bastiangx/spellserve/pkg/suggest"
	"github.com/bastiangx/spellserve/pkg/tokenize"
)

const (
	// KindQuickFix is the protocol kind of every action built here.
	KindQuickFix = "quickfix"
	// AddWordCommand adds a word to the user dictionary.
	AddWordCommand = "spellserve.addToDictionary"
)

// Matcher produces ranked corrections for a word.
type Matcher interface {
	Suggest(word string, limit int) []fuzzy.Suggestion
}

// TextEdit replaces Range with NewText.
type TextEdit struct {
	Range   tokenize.Range
	NewText string
}

// Command is run by the server when the client executes the action.
type Command struct {
	Title     string
	Command   string
	Arguments []any
}

// AddWordArgs is the single argument of AddWordCommand.
type AddWordArgs struct {
	Word string `json:"word"`
	URI  string `json:"uri"`
}

// CodeAction is either an edit of one document or a command.
type CodeAction struct {
	Title       string
	Kind        string
	URI         string
	Edit        *TextEdit
	Command     *Command
	Diagnostic  *diagnose.Diagnostic
	IsPreferred bool
}

// Build returns one replacement action per correction of the word flagged by
// diag, best first. The result is empty when nothing is close enough.
func Build(doc document.Document, diag diagnose.Diagnostic, m Matcher, limit int) []CodeAction {
	word := diag.Word
	if word == "" {
		start, end := doc.Lines.Offset(diag.Range.Start), doc.Lines.Offset(diag.Range.End)
		if start >= end {
			return nil
		}
		word = doc.Text[start:end]
	}

	suggestions := m.Suggest(word, limit)
	if len(suggestions) == 0 {
		return nil
	}
	actions := make([]CodeAction, 0, len(suggestions))
	for i, s := range suggestions {
		replacement := suggest.MatchCase(word, s.Word)
		actions = append(actions, CodeAction{
			Title:       replacement,
			Kind:        KindQuickFix,
			URI:         doc.URI,
			Edit:        &TextEdit{Range: diag.Range, NewText: replacement},
			Diagnostic:  &diag,
			IsPreferred: i == 0,
		})
	}
	return actions
}

// AddWordAction offers to add word to the user dictionary.
func AddWordAction(word, uri string) CodeAction {
	title := fmt.Sprintf("Add %q to dictionary", word)
	return CodeAction{
		Title: title,
		Kind:  KindQuickFix,
		URI:   uri,
		Command: &Command{
			Title:     title,
			Command:   AddWordCommand,
			Arguments: []any{AddWordArgs{Word: word, URI: uri}},
		},
	}
}
