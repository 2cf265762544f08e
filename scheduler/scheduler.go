// Package scheduler implements the cooperative, single-threaded-per-
// runner scheduler from spec.md §4.5/§5: a Runner owns a set of
// coroutines, advances one ready coroutine a step at a time, and
// routes inter-coroutine/inter-runner messages.
package scheduler

import (
	"fmt"
	"sync"

	"github.com/hvml-run/hvmi/coroutine"
	"github.com/hvml-run/hvmi/fetch"
	"github.com/hvml-run/hvmi/frame"
	"github.com/hvml-run/hvmi/observer"
	"github.com/hvml-run/hvmi/reqid"
	"github.com/hvml-run/hvmi/runtime"
	"github.com/hvml-run/hvmi/vdom"
)

// OpsTable resolves a vDOM element's tag atom to its operation quad.
// ops.Table implements this; kept as an interface here so scheduler
// does not import every verb package directly.
type OpsTable interface {
	Lookup(tagID runtime.Atom) (frame.Ops, error)
}

// MoveBuffer is the inter-runner message-passing abstraction from
// spec.md §5/§6; movebuffer/local and movebuffer/redis implement it.
type MoveBuffer interface {
	Move(endpoint runtime.Atom, msg coroutine.Message) error
}

// Runner hosts one scheduler loop and zero or more coroutines, per
// spec.md §5's "single-threaded per runner" invariant. Exactly one
// coroutine is RUNNING at a time within a Runner.
type Runner struct {
	mu      sync.Mutex
	id      string
	rt      *runtime.Runtime
	ops     OpsTable
	bus     MoveBuffer
	fetcher *fetch.Fetcher
	coros   map[runtime.Atom]*coroutine.Coroutine
}

// NewRunner constructs a Runner registered with rt under id. fetcher
// may be nil if this runner's program never issues <init from="...">/
// <load from="...">-style fetches.
func NewRunner(id string, rt *runtime.Runtime, ops OpsTable, bus MoveBuffer, fetcher *fetch.Fetcher) *Runner {
	r := &Runner{
		id:      id,
		rt:      rt,
		ops:     ops,
		bus:     bus,
		fetcher: fetcher,
		coros:   make(map[runtime.Atom]*coroutine.Coroutine),
	}
	rt.RegisterRunner(rt.Atoms.Intern(id), r)
	return r
}

// Spawn creates and registers a new coroutine executing vd, bound to
// curator (nil for a top-level coroutine), and pushes its root frame.
func (r *Runner) Spawn(vd *vdom.Document, curator *coroutine.Coroutine) (*coroutine.Coroutine, error) {
	cid := r.rt.NextCoroutineID()
	co := coroutine.New(cid, vd, curator)
	co.Fetcher = r.fetcher
	co.RT = r.rt
	co.RunnerID = r.id
	co.NotifyReady = func(msg coroutine.Message) {
		_ = r.Dispatch(cid, msg)
	}
	r.mu.Lock()
	r.coros[cid] = co
	r.mu.Unlock()

	ops, err := r.ops.Lookup(vd.Root.GetTagID())
	if err != nil {
		return nil, err
	}
	co.Push(vd.Root, ops)
	return co, nil
}

// Coroutine looks up a registered coroutine by identity atom.
func (r *Runner) Coroutine(cid runtime.Atom) (*coroutine.Coroutine, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	co, ok := r.coros[cid]
	return co, ok
}

// RunOne advances one ready coroutine by exactly one main step, per
// spec.md §4.5's pcintr_execute_one_step_for_ready_co. It returns
// false when there was no runnable coroutine to advance.
func (r *Runner) RunOne() (bool, error) {
	co := r.pickReady()
	if co == nil {
		return false, nil
	}
	if err := r.step(co); err != nil {
		return true, err
	}
	return true, nil
}

// Run drains the runner: repeatedly calls RunOne until no coroutine is
// runnable (everything is STOPPED awaiting an async event, OBSERVING,
// or EXITED).
func (r *Runner) Run() error {
	for {
		advanced, err := r.RunOne()
		if err != nil {
			return err
		}
		if !advanced {
			return nil
		}
	}
}

func (r *Runner) pickReady() *coroutine.Coroutine {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, co := range r.coros {
		if co.Runnable() {
			return co
		}
	}
	return nil
}

// step implements the main loop body from spec.md §4.5: pop the
// bottom (i.e. topmost pushed) frame's next_step, invoke the matching
// callback, update next_step.
func (r *Runner) step(co *coroutine.Coroutine) error {
	f := co.Top()
	if f == nil {
		r.finish(co)
		return nil
	}

	switch f.NextStep {
	case frame.AfterPushed:
		next, err := f.Ops.AfterPushed(f)
		if err != nil {
			return r.handleError(co, f, err)
		}
		// A verb (<exit>, <back>) may drain frames off the stack itself
		// rather than popping one at a time through on_popping; notice
		// that here the same way the on_popping case below does.
		if co.Top() == nil {
			r.finish(co)
			return nil
		}
		f.NextStep = next

	case frame.SelectChild:
		child, err := f.Ops.SelectChild(f)
		if err != nil {
			return r.handleError(co, f, err)
		}
		if child == nil {
			f.NextStep = frame.OnPopping
			return nil
		}
		if child.Kind == vdom.ElementNode {
			ops, err := r.ops.Lookup(child.Element.GetTagID())
			if err != nil {
				return r.handleError(co, f, err)
			}
			co.Push(child.Element, ops)
		}
		// content/comment nodes are consumed by select_child itself via
		// f.Ops; no frame is pushed for them.

	case frame.Rerun:
		next, err := f.Ops.Rerun(f)
		if err != nil {
			return r.handleError(co, f, err)
		}
		f.NextStep = next

	case frame.OnPopping:
		err := f.Ops.OnPopping(f)
		co.Pop()
		if err != nil {
			return r.handleError(co, f, err)
		}
		if co.Top() == nil {
			r.finish(co)
		}
	}
	return nil
}

func (r *Runner) finish(co *coroutine.Coroutine) {
	if co.Observers.Len() > 0 {
		co.MarkObserving()
		return
	}
	co.Exit(co.Result)
	r.notifyCurator(co)
}

// handleError implements the propagation policy from spec.md §7:
// "again" re-enters select_child; silently swallows and continues;
// otherwise it converts to an exception and unwinds toward a matching
// <except>/<catch>, or — if none is found all the way up — exits the
// coroutine with an exception result.
func (r *Runner) handleError(co *coroutine.Coroutine, f *frame.Frame, err error) error {
	rerr, ok := err.(*runtime.Error)
	if !ok {
		rerr = runtime.NewError(runtime.ErrInternalFailure, f.Pos.GetTagName(), err)
	}
	if rerr.Kind == runtime.ErrAgain {
		f.NextStep = frame.SelectChild
		return nil
	}
	if f.Silently {
		f.NextStep = frame.OnPopping
		return nil
	}
	exceptionName := runtime.ExceptionName(rerr.Kind)
	for cur := f; cur != nil; cur = cur.Parent() {
		tmpl, ok := cur.MatchExceptTemplate(exceptionName)
		if !ok {
			continue
		}
		// Unwind every frame pushed beneath cur, then run the matching
		// <except>/<catch> subtree as cur's new (and only) child, per
		// spec.md §4.4's "<catch> converts an exception to normal flow".
		for co.Top() != cur {
			co.Pop()
		}
		cur.Error = rerr
		ops, lookupErr := r.ops.Lookup(tmpl.Subtree.GetTagID())
		if lookupErr != nil {
			return lookupErr
		}
		co.Push(tmpl.Subtree, ops)
		return nil
	}
	// Uncaught: unwind every frame on this coroutine's stack.
	for co.Top() != nil {
		co.Pop()
	}
	co.Exit(nil)
	r.notifyCuratorExcept(co, exceptionName)
	return nil
}

// notifyCurator posts call-state:success to co's curator with co's
// result, per spec.md §4.5's child-exit protocol.
func (r *Runner) notifyCurator(co *coroutine.Coroutine) {
	if co.Curator == nil {
		return
	}
	co.Curator.Enqueue(coroutine.Message{
		EventName: "call-state",
		SubName:   "success",
		Data:      co.Result,
		RequestID: reqid.New(reqid.Crtn, r.id, fmt.Sprint(co.CID), ""),
	})
}

func (r *Runner) notifyCuratorExcept(co *coroutine.Coroutine, exceptionName string) {
	if co.Curator == nil {
		return
	}
	co.Curator.Enqueue(coroutine.Message{
		EventName: "call-state",
		SubName:   "except",
		EventSource: exceptionName,
		RequestID: reqid.New(reqid.Crtn, r.id, fmt.Sprint(co.CID), ""),
	})
}

// Dispatch delivers a message arriving from the fetcher, a timer, or a
// move-buffer handoff to the owning coroutine, matching it against
// installed event handlers per spec.md §4.5's yield/resume rule.
func (r *Runner) Dispatch(cid runtime.Atom, msg coroutine.Message) error {
	co, ok := r.Coroutine(cid)
	if !ok {
		return fmt.Errorf("scheduler: no coroutine %v on runner %s", cid, r.id)
	}
	co.Enqueue(msg)
	return r.tryResume(co)
}

func (r *Runner) tryResume(co *coroutine.Coroutine) error {
	if co.State() != coroutine.Stopped && co.State() != coroutine.Observing {
		return nil
	}
	for {
		msg, ok := co.Dequeue()
		if !ok {
			return nil
		}
		matched := false
		for _, h := range co.Handlers() {
			if h.Type == msg.EventName && h.SubType == msg.SubName &&
				(h.IsMatch == nil || h.IsMatch(msg)) {
				next, err := h.Handle(msg)
				if !h.MatchAll {
					co.RemoveHandler(h)
				}
				if err != nil {
					return err
				}
				co.Resume()
				if f := co.Top(); f != nil {
					f.NextStep = next
				}
				matched = true
				break
			}
		}
		if matched {
			return nil
		}
		// No yielded handler claimed this message; per spec.md §4.6 it may
		// still be claimed by a registered <observe>, e.g. a timer tick
		// delivered to a coroutine that is OBSERVING (stack already empty).
		co.Observers.Dispatch(observer.Event{
			Type:         msg.EventName,
			Sub:          msg.SubName,
			ElementValue: msg.ElementValue,
			Data:         msg.Data,
			RequestID:    msg.RequestID.String(),
		})
		if co.Top() != nil {
			co.Resume()
			return nil
		}
	}
}
