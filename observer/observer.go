// Package observer implements the (observed, event-pattern, handler)
// registration and matching rules from spec.md §3/§4.6.
package observer

import (
	"sync"

	"github.com/hvml-run/hvmi/variant"
	"github.com/hvml-run/hvmi/vdom"
)

// Source names where an observer's events originate, per spec.md §3.
type Source int

const (
	HVML Source = iota
	RuntimeSource
)

// Handle is opaque caller data threaded back through Handler, e.g. the
// <observe>'s with-subtree closure.
type Handle any

// Event is the (type, sub, element-value, data, request-id) tuple from
// spec.md §3 delivered to a matching observer.
type Event struct {
	Type        string // atom name
	Sub         string
	ElementValue *variant.Value
	Data        *variant.Value
	RequestID   string
}

// Handler runs when an Observer matches an incoming Event. Its error is
// the only thing it returns; whether the observer is revoked after the
// delivery is decided by the Observer's MatchAll flag, not by Handler.
type Handler func(ev Event, o *Observer) error

// MatchFunc is a custom matcher (e.g. CSS selector over eDOM element
// collections, or named-variable matches), overriding identity
// comparison against Observed.
type MatchFunc func(ev Event) bool

// Observer mirrors spec.md §3's Observer O.
type Observer struct {
	Source      Source
	StagesMask  int
	StatesMask  int
	Observed    *variant.Value // nil when IsMatch/Type-based matching is used instead
	Type        string
	SubType     string
	Pos         *vdom.Element
	Scope       *vdom.Element
	EDOMElement any
	OnRevoke    func()
	Listener    variant.PostListener // registered on Observed when it is a container/variant
	IsMatch     MatchFunc
	Handle      Handle
	MatchAll    bool

	handler Handler
	revoked bool
}

// Table holds one coroutine's observer records and implements
// registration, matching, and revocation per spec.md §4.6.
type Table struct {
	mu        sync.Mutex
	observers []*Observer
}

// NewTable creates an empty observer table, owned by one coroutine.
func NewTable() *Table { return &Table{} }

// Register adds o to the table. Per spec.md §4.6 this is invoked by
// <observe>'s after_pushed once the observed variant's on_observe (for
// natives) has approved the subscription.
func (t *Table) Register(o *Observer, handler Handler) *Observer {
	o.handler = handler
	t.mu.Lock()
	t.observers = append(t.observers, o)
	t.mu.Unlock()
	if o.Observed != nil {
		switch o.Observed.Kind() {
		case variant.Object, variant.Array, variant.Set, variant.Tuple:
			o.Observed.RegisterPostListener(func(op variant.MutationOp, args []*variant.Value) {
				var data *variant.Value
				if len(args) > 0 {
					data = args[len(args)-1]
				}
				t.Dispatch(Event{
					Type:         o.Type,
					Sub:          mutationSubName(op),
					ElementValue: o.Observed,
					Data:         data,
				})
			})
		}
	}
	return o
}

func mutationSubName(op variant.MutationOp) string {
	switch op {
	case variant.Grow:
		return "grow"
	case variant.Shrink:
		return "shrink"
	case variant.Change:
		return "change"
	default:
		return "unknown"
	}
}

// Revoke removes observers matching (observed, type, subType); a nil
// observed or empty type acts as a wildcard on that field, so
// <forget on="$timers" for="expired:tick"/> can target by pattern
// alone.
func (t *Table) Revoke(observed *variant.Value, eventType, subType string) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	kept := t.observers[:0]
	revokedCount := 0
	for _, o := range t.observers {
		if (observed == nil || o.Observed == observed) &&
			(eventType == "" || o.Type == eventType) &&
			(subType == "" || o.SubType == subType) {
			o.revoked = true
			if o.OnRevoke != nil {
				o.OnRevoke()
			}
			revokedCount++
			continue
		}
		kept = append(kept, o)
	}
	t.observers = kept
	return revokedCount
}

// RevokeAll revokes every observer in the table — used on coroutine
// exit, per spec.md §4.6's lifetime rule (b).
func (t *Table) RevokeAll() {
	t.Revoke(nil, "", "")
}

// Dispatch matches ev against every registered observer and invokes
// its handler, per spec.md §4.6's matching rule: the event's type/sub
// atoms must equal the observer's, and either Observed matches by
// identity or IsMatch approves.
func (t *Table) Dispatch(ev Event) {
	t.mu.Lock()
	candidates := append([]*Observer(nil), t.observers...)
	t.mu.Unlock()

	var toRevoke []*Observer
	for _, o := range candidates {
		if o.revoked {
			continue
		}
		if o.Type != ev.Type || o.SubType != ev.Sub {
			continue
		}
		matched := false
		if o.IsMatch != nil {
			matched = o.IsMatch(ev)
		} else if o.Observed != nil && o.Observed == ev.ElementValue {
			matched = true
		}
		if !matched {
			continue
		}
		if o.handler != nil {
			_ = o.handler(ev, o)
		}
		if !o.MatchAll {
			toRevoke = append(toRevoke, o)
		}
	}
	for _, o := range toRevoke {
		t.Revoke(o.Observed, o.Type, o.SubType)
	}
}

// Len reports the number of live (non-revoked) observers, used by the
// scheduler to decide OBSERVING vs EXITED transitions.
func (t *Table) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.observers)
}
