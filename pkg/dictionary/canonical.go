package dictionary

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// Canonical folds a word to the form used for dictionary keys and matching.
// A Caser is not safe for concurrent use, so one is built per call.
func Canonical(word string) string {
	word = strings.TrimSpace(word)
	if word == "" {
		return ""
	}
	return cases.Lower(language.Polish).String(norm.NFC.String(word))
}
