// Package observe implements <observe>'s operation quad from spec.md
// §4.4/§4.6: registers an observer pairing an observed variant (or
// named variable, via `against`) and an event pattern (`for="type:sub"`)
// with a handler that either re-evaluates a `with` VCM expression or
// runs the element's own child subtree, each time a matching event is
// dispatched.
package observe

import (
	"strings"

	"github.com/hvml-run/hvmi/frame"
	"github.com/hvml-run/hvmi/observer"
	"github.com/hvml-run/hvmi/ops/opsutil"
	"github.com/hvml-run/hvmi/runtime"
	"github.com/hvml-run/hvmi/variant"
	"github.com/hvml-run/hvmi/vcm"
	"github.com/hvml-run/hvmi/vdom"
)

// OpsTable resolves a tag atom to its operation quad. New stores it, but
// the firing path does not consult it: the scheduler looks up each
// pushed child's ops itself (see fireOps).
type OpsTable interface {
	Lookup(tagID runtime.Atom) (frame.Ops, error)
}

type ctxt struct {
	obs *observer.Observer
}

func (ctxt) Destroy() {}

type Ops struct {
	ops OpsTable
}

func New(ops OpsTable) *Ops { return &Ops{ops: ops} }

func splitFor(pattern string) (string, string) {
	typ, sub, ok := strings.Cut(pattern, ":")
	if !ok {
		return pattern, ""
	}
	return typ, sub
}

func (o *Ops) AfterPushed(f *frame.Frame) (frame.NextStep, error) {
	if err := opsutil.EvalAttrs(f); err != nil {
		return 0, err
	}
	co := opsutil.Co(f)

	pattern, _ := opsutil.AttrString(f, "for")
	typ, sub := splitFor(pattern)

	var observed *variant.Value
	if against, hasAgainst := opsutil.AttrString(f, "against"); hasAgainst {
		observed, _ = co.Scope.Resolve(f.FrameTemp, f.Scope, against)
	} else if onVal, hasOn := opsutil.Attr(f, "on"); hasOn {
		observed = onVal
	}

	if observed != nil && observed.Kind() == variant.Native {
		methods := observed.AsNative().Methods
		if methods.OnObserve != nil && !methods.OnObserve(observed.AsNative().Entity, typ, sub) {
			return 0, runtime.NewError(runtime.ErrNotSupported, "observe", nil)
		}
	}

	withExpr, hasWith := opsutil.AttrString(f, "with")

	var handler observer.Handler
	if hasWith {
		resolver := opsutil.Resolver(f)
		handler = func(ev observer.Event, ob *observer.Observer) error {
			_, err := vcm.Eval(resolver, withExpr)
			return err
		}
	} else {
		handler = func(ev observer.Event, ob *observer.Observer) error {
			callee := co.Push(f.Pos, &fireOps{})
			callee.Symbols.At = ev.ElementValue
			callee.Symbols.Question = ev.Data
			return nil
		}
	}

	obs := &observer.Observer{
		Source:   observer.HVML,
		Observed: observed,
		Type:     typ,
		SubType:  sub,
		Pos:      f.Pos,
		Scope:    f.Scope,
		MatchAll: true,
	}
	co.Observers.Register(obs, handler)
	f.Ctxt = &ctxt{obs: obs}

	name, hasName := opsutil.AttrString(f, "as")
	if hasName {
		at, _ := opsutil.AttrString(f, "at")
		_, locally := f.Pos.FindAttr("locally")
		_, uniquely := f.Pos.FindAttr("uniquely")
		handle := variant.NewNative(obs, variant.NativeMethods{})
		if err := opsutil.Bind(f, name, handle, at, locally, uniquely); err != nil {
			return 0, err
		}
	}

	// The observer outlives this frame; nothing left for the <observe>
	// element's own frame to execute, per spec.md §4.4.
	return frame.OnPopping, nil
}

func (o *Ops) SelectChild(f *frame.Frame) (*vdom.Node, error) { return nil, nil }

func (o *Ops) Rerun(f *frame.Frame) (frame.NextStep, error) { return frame.OnPopping, nil }

func (o *Ops) OnPopping(f *frame.Frame) error { return nil }

// fireOps re-dispatches <observe>'s own children each time the
// observer matches, without re-running AfterPushed (which would
// re-register the observer). A fresh frame is pushed per firing so
// Curr starts at 0 each time; the scheduler looks up each child's own
// verb ops via its normal SelectChild handling, so fireOps needs no
// dispatch table of its own.
type fireOps struct{}

func (fo *fireOps) AfterPushed(f *frame.Frame) (frame.NextStep, error) {
	f.Ctxt = opsutil.NoopCtxt{}
	return frame.SelectChild, nil
}

func (fo *fireOps) SelectChild(f *frame.Frame) (*vdom.Node, error) {
	return opsutil.NextChild(f, nil, nil)
}

func (fo *fireOps) Rerun(f *frame.Frame) (frame.NextStep, error) { return frame.SelectChild, nil }

func (fo *fireOps) OnPopping(f *frame.Frame) error { return nil }
