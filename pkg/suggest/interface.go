// Package suggest ranks dictionary words for completion and correction requests.
package suggest

import "github.com/bastiangx/spellserve/pkg/fuzzy"

// ICompleter returns ranked completions for a typed prefix.
type ICompleter interface {
	Complete(prefix string, limit int) []Candidate
}

// ICorrector returns ranked corrections for a misspelled word.
type ICorrector interface {
	Suggest(word string, limit int) []fuzzy.Suggestion
}

// IChecker reports dictionary membership.
type IChecker interface {
	Contains(word string) bool
}
