package suggest

import (
	"cmp"
	"slices"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/bastiangx/spellserve/pkg/dictionary"
	"github.com/bastiangx/spellserve/pkg/fuzzy"
)

// MinPrefixLength is the shortest prefix, in characters, that gets completions.
const MinPrefixLength = 2

// Scoring weights. A prefix match always outranks a fuzzy match, and the
// common-word boost can lift a word past one level of edit distance.
const (
	prefixScore     = 100.0
	fuzzyScore      = 60.0
	distancePenalty = 20.0
	commonBoost     = 35.0
)

// Candidate is a ranked completion.
type Candidate struct {
	Word     string  `msgpack:"w"`
	Score    float64 `msgpack:"s"`
	Distance int     `msgpack:"d"`
	Common   bool    `msgpack:"c,omitempty"`
}

// Completer ranks dictionary entries as completions of a typed prefix.
type Completer struct {
	dict        *dictionary.Store
	maxDistance int
	cache       *Cache[[]Candidate]
}

// NewCompleter creates a completer over dict. Entries within maxDistance of the
// prefix are offered after the prefix matches.
func NewCompleter(dict *dictionary.Store, maxDistance int) *Completer {
	return &Completer{
		dict:        dict,
		maxDistance: maxDistance,
	}
}

// SetCache enables memoization of results.
func (c *Completer) SetCache(cache *Cache[[]Candidate]) {
	c.cache = cache
}

// Complete returns at most limit candidates for prefix, best first. Prefixes
// shorter than MinPrefixLength yield nothing. limit <= 0 keeps every candidate.
func (c *Completer) Complete(prefix string, limit int) []Candidate {
	lowerPrefix := dictionary.Canonical(prefix)
	if utf8.RuneCountInString(lowerPrefix) < MinPrefixLength {
		return nil
	}

	key := lowerPrefix + "\x00" + strconv.Itoa(limit)
	if cached, ok := c.cache.Get(key); ok {
		return slices.Clone(cached)
	}

	var candidates []Candidate
	_ = c.dict.WalkPrefix(lowerPrefix, func(e dictionary.Entry) error {
		candidates = append(candidates, newCandidate(e, prefixScore, 0))
		return nil
	})

	for e := range c.dict.All() {
		if strings.HasPrefix(e.Word, lowerPrefix) {
			continue
		}
		d, ok := fuzzy.Bounded(lowerPrefix, e.Word, c.maxDistance)
		if !ok {
			continue
		}
		candidates = append(candidates, newCandidate(e, fuzzyScore-distancePenalty*float64(d), d))
	}

	slices.SortFunc(candidates, compareCandidates)
	if limit > 0 && len(candidates) > limit {
		candidates = candidates[:limit]
	}
	c.cache.Set(key, candidates, int64(len(candidates)))
	return slices.Clone(candidates)
}

func newCandidate(e dictionary.Entry, base float64, distance int) Candidate {
	score := base
	if e.Common {
		score += commonBoost
	}
	return Candidate{Word: e.Word, Score: score, Distance: distance, Common: e.Common}
}

// compareCandidates orders by score, then shorter words, then alphabetically.
func compareCandidates(a, b Candidate) int {
	if c := cmp.Compare(b.Score, a.Score); c != 0 {
		return c
	}
	if c := cmp.Compare(utf8.RuneCountInString(a.Word), utf8.RuneCountInString(b.Word)); c != 0 {
		return c
	}
	return cmp.Compare(a.Word, b.Word)
}

// MatchCase carries the capitalization of what the user typed over to a
// dictionary word: all caps stays all caps, a capital first letter stays capital.
func MatchCase(typed, word string) string {
	first, _ := utf8.DecodeRuneInString(typed)
	if first == utf8.RuneError || !unicode.IsUpper(first) {
		return word
	}
	if utf8.RuneCountInString(typed) > 1 && strings.ToUpper(typed) == typed {
		return strings.ToUpper(word)
	}
	w, size := utf8.DecodeRuneInString(word)
	if w == utf8.RuneError {
		return word
	}
	return string(unicode.ToUpper(w)) + word[size:]
}
