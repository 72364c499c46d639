package suggest

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bastiangx/spellserve/pkg/dictionary"
	"github.com/bastiangx/spellserve/pkg/fuzzy"
)

func store(lines string) *dictionary.Store {
	return dictionary.Load(dictionary.Source{Name: "test", Data: []byte(lines)})
}

func candidateWords(cs []Candidate) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.Word
	}
	return out
}

func TestCompletePrefixFloor(t *testing.T) {
	c := NewCompleter(store("*a\nab\nabc\nżaba\n"), 2)

	for _, prefix := range []string{"", "a", "A", "ż", " a "} {
		assert.Emptyf(t, c.Complete(prefix, 10), "prefix %q", prefix)
	}
	assert.NotEmpty(t, c.Complete("ab", 10))
	assert.NotEmpty(t, c.Complete("ża", 10))
}

func TestCompleteCommonExactFirst(t *testing.T) {
	c := NewCompleter(store("kotlet\nkotek\n*kot\n"), 2)

	got := c.Complete("kot", 10)
	require.Equal(t, []string{"kot", "kotek", "kotlet"}, candidateWords(got))
	assert.Equal(t, 135.0, got[0].Score)
	assert.Equal(t, got[1].Score, got[2].Score, "tie broken by length")
}

func TestCompletePrefixBeforeFuzzy(t *testing.T) {
	c := NewCompleter(store("kot\n*dom\ndym\ndomek\n"), 2)

	got := c.Complete("do", 0)
	require.Equal(t, []string{"dom", "domek", "dym", "kot"}, candidateWords(got))
	assert.Equal(t, 0, got[1].Distance)
	assert.Equal(t, 2, got[2].Distance)
	assert.Greater(t, got[1].Score, got[2].Score)
}

func TestCompleteFuzzyDistanceOrdering(t *testing.T) {
	c := NewCompleter(store("kasa\nkosz\n*kosa\n"), 2)

	got := c.Complete("kosy", 0)
	// kosa: d1 + common, kosz: d1, kasa: d2
	require.Equal(t, []string{"kosa", "kosz", "kasa"}, candidateWords(got))
	assert.Equal(t, 75.0, got[0].Score)
	assert.Equal(t, 40.0, got[1].Score)
	assert.Equal(t, 20.0, got[2].Score)
}

func TestCompleteLimitAndCase(t *testing.T) {
	c := NewCompleter(store("kot\nkotek\nkotlet\nkotka\n"), 2)

	got := c.Complete("KOT", 2)
	assert.Equal(t, []string{"kot", "kotek"}, candidateWords(got))
}

func TestCompleteCache(t *testing.T) {
	cache, err := NewCache[[]Candidate](1000)
	require.NoError(t, err)
	defer cache.Close()

	c := NewCompleter(store("*kot\nkotek\nkotlet\n"), 2)
	c.SetCache(cache)

	first := c.Complete("kot", 10)
	cache.Wait()
	first[0].Word = "mutated"

	second := c.Complete("kot", 10)
	assert.Equal(t, "kot", second[0].Word, "callers must not share the cached slice")
	assert.Equal(t, []string{"kot", "kotek", "kotlet"}, candidateWords(second))
}

func TestNilCacheIsDisabled(t *testing.T) {
	var cache *Cache[[]Candidate]
	cache.Set("k", nil, 1)
	cache.Wait()
	_, ok := cache.Get("k")
	assert.False(t, ok)
	cache.Clear()
	cache.Close()
}

func TestCorrector(t *testing.T) {
	dict := store("dom\n*kot\nkod\nkat\n")

	c := NewCorrector(dict, fuzzy.DefaultMaxDistance, false)
	assert.Equal(t, []fuzzy.Suggestion{{Word: "dom", Distance: 1}}, c.Suggest("dim", 5))
	assert.Empty(t, c.Suggest("xyz", 5))
	assert.True(t, c.Contains("KOT"))

	got := c.Suggest("kit", 2)
	require.Len(t, got, 2)
	assert.Equal(t, "kot", got[0].Word)
}

func TestCorrectorAdaptive(t *testing.T) {
	dict := store("dom\n")

	// three-letter words only tolerate a single edit
	strict := NewCorrector(dict, 2, true)
	assert.Len(t, strict.Suggest("dam", 5), 1)
	assert.Empty(t, strict.Suggest("dxx", 5))

	loose := NewCorrector(dict, 2, false)
	assert.Len(t, loose.Suggest("dxx", 5), 1)
}

func TestCorrectorCacheMatchesUncached(t *testing.T) {
	cache, err := NewCache[[]fuzzy.Suggestion](1000)
	require.NoError(t, err)
	defer cache.Close()

	dict := store("ala\n*ale\nali\nela\nola\n")
	plain := NewCorrector(dict, 2, false)
	cached := NewCorrector(dict, 2, false)
	cached.SetCache(cache)

	for _, w := range []string{"alx", "ola", "eli", "alx"} {
		want := plain.Suggest(w, 3)
		got := cached.Suggest(w, 3)
		cache.Wait()
		assert.Equal(t, want, got, w)
	}
}

func TestConcurrentReads(t *testing.T) {
	cache, err := NewCache[[]Candidate](10000)
	require.NoError(t, err)
	defer cache.Close()

	c := NewCompleter(store("*kot\nkotek\nkotlet\npies\npiesek\nrower\nrowerek\n"), 2)
	c.SetCache(cache)
	want := c.Complete("kot", 5)

	prefixes := []string{"kot", "pie", "row", "ko", "rowe"}
	var wg sync.WaitGroup
	for w := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range 200 {
				p := prefixes[(w+i)%len(prefixes)]
				got := c.Complete(p, 5)
				if p == "kot" && fmt.Sprint(got) != fmt.Sprint(want) {
					t.Errorf("worker %d: inconsistent result %v", w, got)
					return
				}
			}
		}()
	}
	wg.Wait()
}

func TestMatchCase(t *testing.T) {
	tests := []struct {
		typed, word, want string
	}{
		{"słodko", "słodki", "słodki"},
		{"Słodko", "słodki", "Słodki"},
		{"Żółty", "żółw", "Żółw"},
		{"ŻÓŁTY", "żółw", "ŻÓŁW"},
		{"", "test", "test"},
		{"K", "kot", "Kot"},
	}
	for _, tt := range tests {
		if got := MatchCase(tt.typed, tt.word); got != tt.want {
			t.Errorf("MatchCase(%q, %q) = %q, want %q", tt.typed, tt.word, got, tt.want)
		}
	}
}

func TestEngineWith(t *testing.T) {
	e, err := NewEngine(store("*kot\nkotek\n"), EngineOptions{MaxDistance: 2, CacheCost: 1000})
	require.NoError(t, err)
	defer e.Close()

	assert.False(t, e.Contains("kotka"))
	assert.Len(t, e.Complete("kot", 10), 2)

	next, err := e.With("kotka")
	require.NoError(t, err)
	defer next.Close()

	assert.True(t, next.Contains("kotka"))
	assert.False(t, e.Contains("kotka"))
	assert.Equal(t, []string{"kot", "kotek", "kotka"}, candidateWords(next.Complete("kot", 10)))
	assert.Len(t, e.Complete("kot", 10), 2, "old engine keeps its own results")
}

func TestEngineWithoutCache(t *testing.T) {
	e, err := NewEngine(store("dom\n"), EngineOptions{MaxDistance: 2})
	require.NoError(t, err)
	assert.Equal(t, "dom", e.Suggest("dim", 3)[0].Word)
	e.Close()
	assert.Equal(t, "dom", e.Suggest("dim", 3)[0].Word)
}

func TestEngineCompletionDistanceCapped(t *testing.T) {
	e, err := NewEngine(store("dom\n"), EngineOptions{MaxDistance: 4})
	require.NoError(t, err)
	defer e.Close()

	// "abc" is three edits from "dom"
	assert.Len(t, e.Suggest("abc", 5), 1, "corrections honor the configured distance")
	assert.Empty(t, e.Complete("abc", 5))
}

func TestCacheCountsOnlyGivenCost(t *testing.T) {
	cache, err := NewCache[[]Candidate](10)
	require.NoError(t, err)
	defer cache.Close()

	cache.Set("kot", []Candidate{{Word: "kot"}}, 5)
	cache.Wait()
	got, ok := cache.Get("kot")
	require.True(t, ok, "entry within budget was evicted")
	assert.Equal(t, "kot", got[0].Word)
}
