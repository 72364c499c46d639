package suggest

import (
	"slices"
	"strconv"

	"github.com/bastiangx/spellserve/pkg/dictionary"
	"github.com/bastiangx/spellserve/pkg/fuzzy"
)

// Corrector produces ranked corrections for unknown words.
type Corrector struct {
	dict        *dictionary.Store
	maxDistance int
	adaptive    bool
	cache       *Cache[[]fuzzy.Suggestion]
}

// NewCorrector creates a corrector over dict. With adaptive set, words of three
// characters or fewer are matched at distance one only.
func NewCorrector(dict *dictionary.Store, maxDistance int, adaptive bool) *Corrector {
	return &Corrector{
		dict:        dict,
		maxDistance: maxDistance,
		adaptive:    adaptive,
	}
}

// SetCache enables memoization of results.
func (c *Corrector) SetCache(cache *Cache[[]fuzzy.Suggestion]) {
	c.cache = cache
}

// Contains reports whether word is a known word.
func (c *Corrector) Contains(word string) bool {
	return c.dict.Contains(word)
}

// Suggest returns at most limit corrections for word.
func (c *Corrector) Suggest(word string, limit int) []fuzzy.Suggestion {
	lower := dictionary.Canonical(word)
	distance := c.maxDistance
	if c.adaptive {
		distance = fuzzy.AdaptiveDistance(lower, distance)
	}
	key := lower + "\x00" + strconv.Itoa(distance) + "\x00" + strconv.Itoa(limit)
	if cached, ok := c.cache.Get(key); ok {
		return slices.Clone(cached)
	}
	out := fuzzy.Suggest(lower, c.dict, distance, limit)
	c.cache.Set(key, out, int64(len(out)))
	return slices.Clone(out)
}
