// Package runtime provides the explicit process-wide handle the rest of
// the interpreter is built against: atom interning, the error/exception
// vocabulary, and the runner registry, which the source implementation
// keeps as file-scope globals. Tests construct an isolated *Runtime per
// case instead of sharing process state.
package runtime

import (
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Atom is an interned string identity. Two atoms are equal iff they were
// interned from equal strings; comparing atoms is a pointer/int compare,
// never a string compare.
type Atom uint64

// AtomTable interns strings into Atoms. It is the Go stand-in for the
// source implementation's global atom bucket, sized and cached with an
// LRU so that long-running runners with many short-lived dynamically
// named channels/exceptions don't grow the table without bound.
type AtomTable struct {
	mu      sync.RWMutex
	byID    *lru.Cache[Atom, string]
	byValue map[string]Atom
	next    Atom
}

// NewAtomTable creates an atom table that retains at most capacity
// recently-used string->atom mappings for the reverse (atom->string)
// direction; the forward (string->atom) direction never evicts, since a
// shrinking forward table would let the same string mint two different
// atoms.
func NewAtomTable(capacity int) *AtomTable {
	if capacity <= 0 {
		capacity = 4096
	}
	c, err := lru.New[Atom, string](capacity)
	if err != nil {
		// capacity is validated above to be > 0; New only errors on size <= 0.
		panic(err)
	}
	return &AtomTable{
		byID:    c,
		byValue: make(map[string]Atom, capacity),
	}
}

// Intern returns the Atom for s, minting a new one if s has not been
// seen by this table before.
func (t *AtomTable) Intern(s string) Atom {
	t.mu.RLock()
	if a, ok := t.byValue[s]; ok {
		t.mu.RUnlock()
		t.byID.Add(a, s)
		return a
	}
	t.mu.RUnlock()

	t.mu.Lock()
	defer t.mu.Unlock()
	if a, ok := t.byValue[s]; ok {
		t.byID.Add(a, s)
		return a
	}
	t.next++
	a := t.next
	t.byValue[s] = a
	t.byID.Add(a, s)
	return a
}

// String returns the interned string for a, or "" if a is not known to
// this table (or was evicted from the reverse cache — callers that need
// the string back should keep re-interning it rather than caching the
// Atom across table boundaries).
func (t *AtomTable) String(a Atom) string {
	if s, ok := t.byID.Get(a); ok {
		return s
	}
	return ""
}
