// Package scope implements the named-variable manager M from spec.md
// §3/§4.2: bindings live at frame, element, and document levels, and
// lookup walks outward through that chain (or is pinned by an "at"
// qualifier) until it finds a binding or reaches the document level.
package scope

import (
	"fmt"
	"strings"
	"sync"

	"github.com/hvml-run/hvmi/variant"
	"github.com/hvml-run/hvmi/vdom"
)

// Listener is notified when a binding's VCM evaluation fails; the
// manager dispatches exception names to listeners registered against
// the failing binding, per spec.md §4.2.
type Listener func(name string, exceptionName string)

// Manager is a single named-variable binding table, attached to one
// element (or the document root). Callers obtain a document's or
// element's Manager through a Registry, never construct one directly.
type Manager struct {
	mu        sync.RWMutex
	bindings  map[string]*variant.Value
	listeners map[string][]Listener

	// owner identifies the element (or nil for the document root) this
	// manager is attached to, so Registry.Walk can find the parent.
	owner *vdom.Element
}

// NewManager constructs a standalone Manager not owned by a Registry,
// used for a frame's frame-temporary (`!`, `locally`) bindings table.
func NewManager() *Manager {
	return newManager(nil)
}

func newManager(owner *vdom.Element) *Manager {
	return &Manager{
		bindings:  make(map[string]*variant.Value),
		listeners: make(map[string][]Listener),
		owner:     owner,
	}
}

// Bind sets name to val, replacing (and unref'ing) any previous value
// at this level — "binding a name at a level already holding that name
// replaces the value", per spec.md §4.2.
func (m *Manager) Bind(name string, val *variant.Value) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if old, ok := m.bindings[name]; ok {
		old.Unref()
	}
	m.bindings[name] = val.Ref()
}

// Unbind sets name's slot to undefined rather than removing the key,
// per spec.md §4.2 ("unbinding sets the slot to undefined").
func (m *Manager) Unbind(name string) {
	m.Bind(name, variant.NewUndefined())
}

// Lookup returns name's value at this level only (no walking).
func (m *Manager) Lookup(name string) (*variant.Value, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.bindings[name]
	return v, ok
}

// RegisterListener attaches l to name so that a failed VCM evaluation
// for that binding is reported to l.
func (m *Manager) RegisterListener(name string, l Listener) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listeners[name] = append(m.listeners[name], l)
}

// DispatchException notifies every listener registered against name
// that evaluating its VCM raised exceptionName.
func (m *Manager) DispatchException(name, exceptionName string) {
	m.mu.RLock()
	ls := append([]Listener(nil), m.listeners[name]...)
	m.mu.RUnlock()
	for _, l := range ls {
		l(name, exceptionName)
	}
}

// Registry owns one Manager per scope-bearing element plus the
// document-level manager, and implements the three-axis walk from
// spec.md §4.2.
type Registry struct {
	mu       sync.Mutex
	byOwner  map[*vdom.Element]*Manager
	document *Manager
	doc      *vdom.Document
}

// NewRegistry creates a Registry bound to doc's document-level manager.
func NewRegistry(doc *vdom.Document) *Registry {
	return &Registry{
		byOwner:  make(map[*vdom.Element]*Manager),
		document: newManager(nil),
		doc:      doc,
	}
}

// Document returns the document-level manager.
func (r *Registry) Document() *Manager { return r.document }

// Of returns (creating if necessary) the Manager attached to owner.
func (r *Registry) Of(owner *vdom.Element) *Manager {
	if owner == nil {
		return r.document
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.byOwner[owner]
	if !ok {
		m = newManager(owner)
		r.byOwner[owner] = m
	}
	return m
}

// ByID returns the Manager attached to the element whose id attribute
// equals id, used by the "at=#id" qualifier form. Walks the whole
// document since ids are not otherwise indexed.
func (r *Registry) ByID(id string) (*Manager, bool) {
	var found *vdom.Element
	var walk func(e *vdom.Element)
	walk = func(e *vdom.Element) {
		if found != nil || e == nil {
			return
		}
		if attr, ok := e.FindAttr("id"); ok && attr.Value == id {
			found = e
			return
		}
		for _, c := range e.Children() {
			if c.Kind == vdom.ElementNode {
				walk(c.Element)
			}
		}
	}
	walk(r.doc.Root)
	if found == nil {
		return nil, false
	}
	return r.Of(found), true
}

// Resolve implements the unqualified three-axis lookup from spec.md
// §4.2: frame temporary, then element scope walking up through
// declaring ancestors, then document. frameTemp may be nil when the
// current frame has no temporary bindings object.
func (r *Registry) Resolve(frameTemp *Manager, nearestScope *vdom.Element, name string) (*variant.Value, bool) {
	if frameTemp != nil {
		if v, ok := frameTemp.Lookup(name); ok {
			return v, true
		}
	}
	for e := nearestScope; e != nil; e = e.GetParent() {
		if v, ok := r.Of(e).Lookup(name); ok {
			return v, true
		}
	}
	return r.document.Lookup(name)
}

// ResolveAt implements the "at" qualifier forms from spec.md §4.2:
// integer levels ("climb N scopes"), sigils, or an "#id" selector.
func (r *Registry) ResolveAt(at string, nearestScope *vdom.Element, lastScopes []*vdom.Element) (*Manager, error) {
	switch {
	case at == "" || at == "_parent":
		if nearestScope == nil || nearestScope.GetParent() == nil {
			return nil, fmt.Errorf("scope: no parent scope above current element")
		}
		return r.Of(nearestScope.GetParent()), nil
	case at == "_grandparent":
		p := nearestScope
		for i := 0; i < 2 && p != nil; i++ {
			p = p.GetParent()
		}
		if p == nil {
			return nil, fmt.Errorf("scope: no grandparent scope")
		}
		return r.Of(p), nil
	case at == "_root":
		return r.document, nil
	case at == "_last":
		return r.nthFromEnd(lastScopes, 0)
	case at == "_nexttolast":
		return r.nthFromEnd(lastScopes, 1)
	case at == "_topmost":
		return r.nthFromEnd(lastScopes, len(lastScopes)-1)
	case strings.HasPrefix(at, "#"):
		m, ok := r.ByID(at[1:])
		if !ok {
			return nil, fmt.Errorf("scope: no element with id %q", at[1:])
		}
		return m, nil
	default:
		n, err := parseClimb(at)
		if err != nil {
			return nil, err
		}
		e := nearestScope
		for i := 0; i < n && e != nil; i++ {
			e = e.GetParent()
		}
		if e == nil {
			return nil, fmt.Errorf("scope: climbed past document root")
		}
		return r.Of(e), nil
	}
}

func (r *Registry) nthFromEnd(scopes []*vdom.Element, n int) (*Manager, error) {
	if n < 0 || n >= len(scopes) {
		return nil, fmt.Errorf("scope: no such frame-temporary level")
	}
	return r.Of(scopes[len(scopes)-1-n]), nil
}

func parseClimb(at string) (int, error) {
	n := 0
	for _, c := range at {
		if c < '0' || c > '9' {
			return 0, fmt.Errorf("scope: unrecognized at qualifier %q", at)
		}
		n = n*10 + int(c-'0')
	}
	return n, nil
}
