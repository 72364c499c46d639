package suggest

import (
	"github.com/bastiangx/spellserve/pkg/dictionary"
	"github.com/bastiangx/spellserve/pkg/fuzzy"
)

// EngineOptions configures NewEngine.
type EngineOptions struct {
	// MaxDistance bounds corrections. Completions never go past
	// fuzzy.DefaultMaxDistance.
	MaxDistance int
	Adaptive    bool
	// CacheCost bounds each result cache; zero disables caching.
	CacheCost int64
}

// Engine bundles a dictionary with the completer and corrector built on it.
// An Engine is immutable; adding words yields a new one.
type Engine struct {
	Dict      *dictionary.Store
	Completer *Completer
	Corrector *Corrector

	opts        EngineOptions
	completions *Cache[[]Candidate]
	corrections *Cache[[]fuzzy.Suggestion]
}

// NewEngine builds an engine over dict.
func NewEngine(dict *dictionary.Store, opts EngineOptions) (*Engine, error) {
	e := &Engine{
		Dict:      dict,
		Completer: NewCompleter(dict, min(opts.MaxDistance, fuzzy.DefaultMaxDistance)),
		Corrector: NewCorrector(dict, opts.MaxDistance, opts.Adaptive),
		opts:      opts,
	}
	if opts.CacheCost > 0 {
		var err error
		if e.completions, err = NewCache[[]Candidate](opts.CacheCost); err != nil {
			return nil, err
		}
		if e.corrections, err = NewCache[[]fuzzy.Suggestion](opts.CacheCost); err != nil {
			e.completions.Close()
			return nil, err
		}
		e.Completer.SetCache(e.completions)
		e.Corrector.SetCache(e.corrections)
	}
	return e, nil
}

// With returns an engine whose dictionary also holds words.
func (e *Engine) With(words ...string) (*Engine, error) {
	return NewEngine(e.Dict.With(words...), e.opts)
}

// Contains reports whether word is in the dictionary.
func (e *Engine) Contains(word string) bool {
	return e.Dict.Contains(word)
}

// Complete delegates to the completer.
func (e *Engine) Complete(prefix string, limit int) []Candidate {
	return e.Completer.Complete(prefix, limit)
}

// Suggest delegates to the corrector.
func (e *Engine) Suggest(word string, limit int) []fuzzy.Suggestion {
	return e.Corrector.Suggest(word, limit)
}

// Close releases the caches. Lookups still work afterwards, uncached.
func (e *Engine) Close() {
	e.completions.Close()
	e.corrections.Close()
}

var (
	_ ICompleter = (*Engine)(nil)
	_ ICorrector = (*Engine)(nil)
	_ IChecker   = (*Engine)(nil)
)
