package document

import (
	"slices"
	"sync"

	"github.com/bastiangx/spellserve/pkg/tokenize"
)

// Manager owns the open documents of one session.
type Manager struct {
	mu       sync.RWMutex
	docs     map[string]*Document
	onUpdate []func(Document)
}

// NewManager creates an empty manager.
func NewManager() *Manager {
	return &Manager{docs: make(map[string]*Document)}
}

// OnUpdate registers fn to be called with the new snapshot after every
// successful Open or ApplyChange.
func (m *Manager) OnUpdate(fn func(Document)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onUpdate = append(m.onUpdate, fn)
}

// Open starts tracking uri at version 0. Opening an open URI replaces it.
func (m *Manager) Open(uri, text string) (Document, error) {
	doc := newDocument(uri, 0, text)

	m.mu.Lock()
	m.docs[uri] = doc
	hooks := m.onUpdate
	m.mu.Unlock()

	m.notify(hooks, *doc)
	return *doc, nil
}

// ApplyChange applies changes to uri and bumps its version by one.
func (m *Manager) ApplyChange(uri string, changes ...Change) (Document, error) {
	m.mu.Lock()
	prev, ok := m.docs[uri]
	if !ok {
		m.mu.Unlock()
		return Document{}, &NotOpenError{URI: uri}
	}
	doc := newDocument(uri, prev.Version+1, Apply(prev.Text, changes...))
	m.docs[uri] = doc
	hooks := m.onUpdate
	m.mu.Unlock()

	m.notify(hooks, *doc)
	return *doc, nil
}

func (m *Manager) notify(hooks []func(Document), doc Document) {
	for _, fn := range hooks {
		fn(doc)
	}
}

// Snapshot returns the current state of uri.
func (m *Manager) Snapshot(uri string) (Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	doc, ok := m.docs[uri]
	if !ok {
		return Document{}, &NotOpenError{URI: uri}
	}
	return *doc, nil
}

// Tokens returns the current tokens of uri.
func (m *Manager) Tokens(uri string) ([]tokenize.Token, error) {
	doc, err := m.Snapshot(uri)
	if err != nil {
		return nil, err
	}
	return doc.Tokens, nil
}

// Version returns the current version of uri.
func (m *Manager) Version(uri string) (int, error) {
	doc, err := m.Snapshot(uri)
	if err != nil {
		return 0, err
	}
	return doc.Version, nil
}

// Close stops tracking uri.
func (m *Manager) Close(uri string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.docs[uri]; !ok {
		return &NotOpenError{URI: uri}
	}
	delete(m.docs, uri)
	return nil
}

// URIs lists the open documents in sorted order.
func (m *Manager) URIs() []string {
	m.mu.RLock()
	uris := make([]string, 0, len(m.docs))
	for uri := range m.docs {
		uris = append(uris, uri)
	}
	m.mu.RUnlock()
	slices.Sort(uris)
	return uris
}
