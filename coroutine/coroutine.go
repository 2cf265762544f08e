// Package coroutine implements the Coroutine C from spec.md §3: a
// stack of frames plus a message queue and lifecycle state, scheduled
// cooperatively by the scheduler package.
package coroutine

import (
	"sync"

	"github.com/hvml-run/hvmi/edom"
	"github.com/hvml-run/hvmi/fetch"
	"github.com/hvml-run/hvmi/frame"
	"github.com/hvml-run/hvmi/observer"
	"github.com/hvml-run/hvmi/reqid"
	"github.com/hvml-run/hvmi/runtime"
	"github.com/hvml-run/hvmi/scope"
	"github.com/hvml-run/hvmi/timer"
	"github.com/hvml-run/hvmi/variant"
	"github.com/hvml-run/hvmi/vdom"
)

// State is the coroutine lifecycle state from spec.md §3.
type State int

const (
	Ready State = iota
	Running
	Stopped
	Observing
	Exited
)

func (s State) String() string {
	switch s {
	case Ready:
		return "READY"
	case Running:
		return "RUNNING"
	case Stopped:
		return "STOPPED"
	case Observing:
		return "OBSERVING"
	case Exited:
		return "EXITED"
	default:
		return "UNKNOWN"
	}
}

// Stage distinguishes a coroutine's first descent through its vDOM
// from its post-drain observing stage, per spec.md §3.
type Stage int

const (
	FirstRun Stage = iota
	ObservingStage
)

// ReduceOpt controls how an incoming message is merged into a
// coroutine's queue when a duplicate (same type/sub/request-id)
// arrives while the coroutine is STOPPED, per spec.md §3/§5.
type ReduceOpt int

const (
	Keep ReduceOpt = iota
	Ignore
	Overlay
)

// Message is one entry in a coroutine's queue, per spec.md §3's
// Event/Message shape.
type Message struct {
	EventSource  string
	ElementValue *variant.Value
	EventName    string // atom
	SubName      string
	Data         *variant.Value
	RequestID    reqid.ID
	ReduceOpt    ReduceOpt
}

// EventHandler is an installed yield: the pattern a coroutine is
// blocked on, plus the callback that resumes it.
type EventHandler struct {
	RequestID reqid.ID
	Type      string
	SubType   string
	IsMatch   func(Message) bool
	Handle    func(msg Message) (frame.NextStep, error)
	MatchAll  bool
}

// Coroutine mirrors spec.md §3's Coroutine C.
type Coroutine struct {
	mu sync.Mutex

	Stack []*frame.Frame
	VDOM  *vdom.Document
	CID   runtime.Atom

	// Scope is this coroutine's named-variable registry, one per vDOM
	// document per spec.md §4.2. EDOM is the rendered-document target
	// this coroutine's <update>/element operations mutate.
	Scope *scope.Registry
	EDOM  *edom.Document

	// LastScopes records the chain of frame-temporary scope owners
	// pushed by `temporarily` bindings, consulted by the `at="_last"` /
	// `_nexttolast` / `_topmost` addressing forms from spec.md §4.2.
	LastScopes []*vdom.Element

	Curator *Coroutine

	state State
	Stage Stage

	queue    []Message
	Observers *observer.Table
	handlers []*EventHandler

	WaitRequestID reqid.ID

	Target         string
	BaseURLString  string
	TagPrefix      string

	Timers  *timer.Set
	Fetcher *fetch.Fetcher

	// RT and RunnerID let ops/call resolve "within=<runner>" targets
	// and spawn cross-runner child coroutines without this package
	// importing scheduler (which imports coroutine).
	RT       *runtime.Runtime
	RunnerID string

	// NotifyReady lets an async completion firing on another goroutine
	// (a timer callback, a fetch on_complete) hand a message back to
	// this coroutine's owning Runner without importing scheduler here;
	// the Runner installs it at Spawn time.
	NotifyReady func(Message)

	exited bool
	Result *variant.Value
}

// New constructs a coroutine bound to vd with the given identity,
// curated by curator (nil for a top-level/app coroutine).
func New(cid runtime.Atom, vd *vdom.Document, curator *Coroutine) *Coroutine {
	return &Coroutine{
		CID:       cid,
		VDOM:      vd,
		Scope:     scope.NewRegistry(vd),
		EDOM:      edom.NewDocument(),
		Curator:   curator,
		state:     Ready,
		Stage:     FirstRun,
		Observers: observer.NewTable(),
		Timers:    timer.NewSet(),
	}
}

// State returns the coroutine's current lifecycle state under lock.
func (c *Coroutine) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Coroutine) setState(s State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}

// Push installs a new frame for elem atop the stack and returns it;
// the caller (scheduler) is responsible for then invoking
// ops.AfterPushed.
func (c *Coroutine) Push(elem *vdom.Element, ops frame.Ops) *frame.Frame {
	var parent *frame.Frame
	if len(c.Stack) > 0 {
		parent = c.Stack[len(c.Stack)-1]
	}
	f := frame.New(elem, ops, parent)
	f.Host = c
	c.Stack = append(c.Stack, f)
	return f
}

// Pop removes and destroys the topmost frame, satisfying invariant 2
// (parent(F) = stack[d-1]) by construction since frames are only ever
// pushed/popped at the stack's tail.
func (c *Coroutine) Pop() {
	if len(c.Stack) == 0 {
		return
	}
	top := c.Stack[len(c.Stack)-1]
	top.Destroy()
	c.Stack = c.Stack[:len(c.Stack)-1]
}

// Top returns the currently executing (bottom-of-remaining-work) frame,
// i.e. the frame the scheduler's main step advances next.
func (c *Coroutine) Top() *frame.Frame {
	if len(c.Stack) == 0 {
		return nil
	}
	return c.Stack[len(c.Stack)-1]
}

// Enqueue appends msg to the coroutine's message queue, honoring
// reduce-opt when the coroutine is STOPPED and a duplicate
// (type, sub, request-id) is already queued, per spec.md §3/§5.
func (c *Coroutine) Enqueue(msg Message) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == Stopped {
		for i, existing := range c.queue {
			if existing.EventName == msg.EventName && existing.SubName == msg.SubName &&
				existing.RequestID.Equal(msg.RequestID) {
				switch msg.ReduceOpt {
				case Ignore:
					return
				case Overlay:
					c.queue[i] = msg
					return
				}
			}
		}
	}
	c.queue = append(c.queue, msg)
}

// Dequeue pops the next message: the oldest queued "exception" event
// if there is one, otherwise the oldest message (FIFO). It does no
// request-id routing; matching a message to a handler is left to the
// caller.
func (c *Coroutine) Dequeue() (Message, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.queue) == 0 {
		return Message{}, false
	}
	idx := -1
	for i, m := range c.queue {
		if m.EventName == "exception" {
			idx = i
			break
		}
	}
	if idx == -1 {
		idx = 0
	}
	msg := c.queue[idx]
	c.queue = append(c.queue[:idx], c.queue[idx+1:]...)
	return msg, true
}

// Yield installs h and transitions the coroutine to STOPPED, per
// spec.md §4.5's pcintr_yield.
func (c *Coroutine) Yield(h *EventHandler) {
	c.mu.Lock()
	c.handlers = append(c.handlers, h)
	c.WaitRequestID = h.RequestID
	c.state = Stopped
	c.mu.Unlock()
}

// Handlers returns the currently installed event handlers (yields
// awaiting a match).
func (c *Coroutine) Handlers() []*EventHandler {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]*EventHandler(nil), c.handlers...)
}

// RemoveHandler drops h once it has been consumed (MatchAll == false)
// or the coroutine resumes past it.
func (c *Coroutine) RemoveHandler(h *EventHandler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, e := range c.handlers {
		if e == h {
			c.handlers = append(c.handlers[:i], c.handlers[i+1:]...)
			return
		}
	}
}

// Resume transitions the coroutine back to RUNNING, clearing
// WaitRequestID — called by the scheduler once a matching message's
// handler has run.
func (c *Coroutine) Resume() {
	c.mu.Lock()
	c.state = Running
	c.WaitRequestID = reqid.ID{}
	c.mu.Unlock()
}

// MarkObserving transitions to OBSERVING: the stack is empty but
// observers remain live, per spec.md §3's stage enum.
func (c *Coroutine) MarkObserving() {
	c.mu.Lock()
	c.state = Observing
	c.Stage = ObservingStage
	c.mu.Unlock()
}

// Exit finalizes the coroutine with result, satisfying invariant 5 by
// revoking every observer exactly once on the way out.
func (c *Coroutine) Exit(result *variant.Value) {
	c.Observers.RevokeAll()
	c.mu.Lock()
	c.exited = true
	c.state = Exited
	c.Result = result
	c.mu.Unlock()
}

// Exited reports whether the coroutine has finalized.
func (c *Coroutine) Exited() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.exited
}

// PushLastScope records owner as the most-recently-pushed
// frame-temporary scope, consulted by the `_last`/`_nexttolast`/
// `_topmost` address forms.
func (c *Coroutine) PushLastScope(owner *vdom.Element) {
	c.mu.Lock()
	c.LastScopes = append(c.LastScopes, owner)
	c.mu.Unlock()
}

// PopLastScope removes the most-recently-pushed frame-temporary scope
// when its owning frame pops.
func (c *Coroutine) PopLastScope() {
	c.mu.Lock()
	if n := len(c.LastScopes); n > 0 {
		c.LastScopes = c.LastScopes[:n-1]
	}
	c.mu.Unlock()
}

// Runnable reports whether the scheduler should advance this
// coroutine's main step: it is READY or RUNNING and has frames left.
func (c *Coroutine) Runnable() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return (c.state == Ready || c.state == Running) && len(c.Stack) > 0
}
