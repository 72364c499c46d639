// Package fuzzy finds dictionary words within a bounded edit distance of a
// misspelled word and orders them as correction candidates.
package fuzzy

import (
	"cmp"
	"iter"
	"slices"

	"github.com/bastiangx/spellserve/pkg/dictionary"
)

// DefaultMaxDistance is the largest edit distance a correction may have.
const DefaultMaxDistance = 2

// Lexicon is the read side of a dictionary the matcher scans.
type Lexicon interface {
	All() iter.Seq[dictionary.Entry]
}

// Suggestion is a correction candidate.
type Suggestion struct {
	Word     string `msgpack:"w"`
	Distance int    `msgpack:"d"`
	Common   bool   `msgpack:"c,omitempty"`
}

// Compare orders suggestions by distance, then common words first, then word.
func Compare(a, b Suggestion) int {
	if c := cmp.Compare(a.Distance, b.Distance); c != 0 {
		return c
	}
	if a.Common != b.Common {
		if a.Common {
			return -1
		}
		return 1
	}
	return cmp.Compare(a.Word, b.Word)
}

// Suggest returns the lexicon entries within maxDistance of word, best first.
// maxResults <= 0 keeps every candidate. An empty result is valid.
func Suggest(word string, lex Lexicon, maxDistance, maxResults int) []Suggestion {
	target := []rune(dictionary.Canonical(word))
	if len(target) == 0 {
		return nil
	}
	var out []Suggestion
	for e := range lex.All() {
		d, ok := bounded(target, []rune(e.Word), maxDistance)
		if !ok {
			continue
		}
		out = append(out, Suggestion{Word: e.Word, Distance: d, Common: e.Common})
	}
	slices.SortFunc(out, Compare)
	if maxResults > 0 && len(out) > maxResults {
		out = out[:maxResults]
	}
	return out
}

// AdaptiveDistance tightens the limit for short words, where a distance of two
// matches too much of the dictionary to be useful.
func AdaptiveDistance(word string, maxDistance int) int {
	if len([]rune(word)) <= 3 {
		return min(1, maxDistance)
	}
	return maxDistance
}
