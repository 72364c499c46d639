package dictionary

import (
	"bytes"
	"iter"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/tchap/go-patricia/v2/patricia"
)

const (
	commentMarker = "#"
	commonMarker  = "*"

	// maxLineLength bounds a single line; longer ones are skipped.
	maxLineLength = 1 << 20
)

// Entry is a single dictionary word in canonical form.
type Entry struct {
	Word   string
	Common bool
}

// Source is one line-based word list, named for logging.
type Source struct {
	Name string
	Data []byte
}

// Store is the merged, read-only word set.
type Store struct {
	entries []Entry
	index   map[string]int
	trie    *patricia.Trie
	skipped int
}

// Load parses sources in the given order and merges them into a Store.
// Malformed lines are skipped and counted; loading itself never fails.
func Load(sources ...Source) *Store {
	s := newStore(0)
	for _, src := range sources {
		s.parse(src)
	}
	return s
}

func newStore(capacity int) *Store {
	return &Store{
		entries: make([]Entry, 0, capacity),
		index:   make(map[string]int, capacity),
		trie:    patricia.NewTrie(),
	}
}

func (s *Store) parse(src Source) {
	for raw := range bytes.Lines(src.Data) {
		if len(raw) > maxLineLength {
			s.skipped++
			log.Warn("skipping oversized dictionary line", "source", src.Name, "bytes", len(raw))
			continue
		}
		line := strings.TrimSpace(string(raw))
		if line == "" || strings.HasPrefix(line, commentMarker) {
			continue
		}
		common := false
		if rest, ok := strings.CutPrefix(line, commonMarker); ok {
			common = true
			line = rest
		}
		word := Canonical(line)
		if word == "" {
			s.skipped++
			continue
		}
		s.insert(Entry{Word: word, Common: common})
	}
}

// insert adds e unless its canonical form is already present.
func (s *Store) insert(e Entry) bool {
	if _, exists := s.index[e.Word]; exists {
		return false
	}
	pos := len(s.entries)
	s.entries = append(s.entries, e)
	s.index[e.Word] = pos
	s.trie.Insert(patricia.Prefix(e.Word), pos)
	return true
}

// Contains reports whether word, in any casing, is in the dictionary.
func (s *Store) Contains(word string) bool {
	_, ok := s.index[Canonical(word)]
	return ok
}

// IsCommon reports whether word is present and marked common.
func (s *Store) IsCommon(word string) bool {
	pos, ok := s.index[Canonical(word)]
	return ok && s.entries[pos].Common
}

// Lookup returns the entry for word.
func (s *Store) Lookup(word string) (Entry, bool) {
	pos, ok := s.index[Canonical(word)]
	if !ok {
		return Entry{}, false
	}
	return s.entries[pos], true
}

// All yields every entry in load order. The sequence may be ranged over repeatedly.
func (s *Store) All() iter.Seq[Entry] {
	return func(yield func(Entry) bool) {
		for _, e := range s.entries {
			if !yield(e) {
				return
			}
		}
	}
}

// WalkPrefix calls fn for each entry whose canonical form starts with the
// canonical form of prefix. Traversal stops at the first error fn returns.
func (s *Store) WalkPrefix(prefix string, fn func(Entry) error) error {
	return s.trie.VisitSubtree(patricia.Prefix(Canonical(prefix)), func(_ patricia.Prefix, item patricia.Item) error {
		return fn(s.entries[item.(int)])
	})
}

// Len returns the number of distinct words.
func (s *Store) Len() int {
	return len(s.entries)
}

// Skipped returns how many malformed lines were dropped while loading.
func (s *Store) Skipped() int {
	return s.skipped
}

// With returns a new Store holding every entry of s followed by words as plain
// entries. s is left untouched.
func (s *Store) With(words ...string) *Store {
	next := newStore(len(s.entries) + len(words))
	for _, e := range s.entries {
		next.insert(e)
	}
	next.skipped = s.skipped
	for _, w := range words {
		if c := Canonical(w); c != "" {
			next.insert(Entry{Word: c})
		}
	}
	return next
}
