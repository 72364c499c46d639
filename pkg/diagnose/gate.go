package diagnose

import "sync"

// Ticket identifies one diagnostic computation.
type Ticket struct {
	URI     string
	Version int
	seq     uint64
}

// Gate decides which finished computations may be published. Only the newest
// computation started for a document gets through, and only once.
type Gate struct {
	mu        sync.Mutex
	seq       uint64
	requested map[string]Ticket
	published map[string]uint64
}

// NewGate creates an empty gate.
func NewGate() *Gate {
	return &Gate{
		requested: make(map[string]Ticket),
		published: make(map[string]uint64),
	}
}

// Begin records that version of uri is being computed. Starting the same
// version again supersedes the earlier ticket; starting an older version than
// the newest requested one yields a ticket that is already stale.
func (g *Gate) Begin(uri string, version int) Ticket {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.seq++
	t := Ticket{URI: uri, Version: version, seq: g.seq}
	if cur, ok := g.requested[uri]; ok && version < cur.Version {
		return t
	}
	g.requested[uri] = t
	return t
}

// Current reports whether t is still the newest request for its document.
func (g *Gate) Current(t Ticket) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.requested[t.URI] == t
}

// Commit claims the right to publish t. It returns false for superseded
// tickets, forgotten documents and tickets already committed.
func (g *Gate) Commit(t Ticket) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.requested[t.URI] != t || g.published[t.URI] >= t.seq {
		return false
	}
	g.published[t.URI] = t.seq
	return true
}

// Forget drops all state for uri. Tickets issued before are stale afterwards.
func (g *Gate) Forget(uri string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.requested, uri)
	delete(g.published, uri)
}
