// Package frame implements the stack frame F from spec.md §3/§4.3: one
// record per active element, carrying its evaluation step, symbol
// variables, and the per-element context an operation quad installs.
package frame

import (
	"github.com/hvml-run/hvmi/runtime"
	"github.com/hvml-run/hvmi/scope"
	"github.com/hvml-run/hvmi/variant"
	"github.com/hvml-run/hvmi/vdom"
)

// NextStep is the action the scheduler's main loop honors after
// invoking an operation quad callback, per spec.md §4.3.
type NextStep int

const (
	AfterPushed NextStep = iota
	OnPopping
	Rerun
	SelectChild
)

func (s NextStep) String() string {
	switch s {
	case AfterPushed:
		return "after_pushed"
	case OnPopping:
		return "on_popping"
	case Rerun:
		return "rerun"
	case SelectChild:
		return "select_child"
	default:
		return "unknown"
	}
}

// EvalStep distinguishes attribute evaluation from content evaluation
// within a single frame, per spec.md §3.
type EvalStep int

const (
	EvalAttr EvalStep = iota
	EvalContent
)

// Ctxt is the opaque per-element-kind context an operation quad
// installs on `after_pushed` and tears down on pop. Each verb package
// defines its own concrete type satisfying this interface.
type Ctxt interface {
	Destroy()
}

// Ops is the element operation quad from spec.md §2/§4.3: every HVML
// verb implements these four callbacks. Implementations live under
// ops/<verb>; ops.Table maps a tag atom to one.
type Ops interface {
	AfterPushed(f *Frame) (NextStep, error)
	SelectChild(f *Frame) (*vdom.Node, error)
	Rerun(f *Frame) (NextStep, error)
	OnPopping(f *Frame) error
}

// Symbols holds the frame's fixed symbol-variable slots, refreshed on
// every frame entry per spec.md §4.3.
type Symbols struct {
	Input      *variant.Value // `<`
	Question   *variant.Value // `?`
	Exclaim    *variant.Value // `!` — anonymous object, shared down the frame chain for `temporarily` bindings
	At         *variant.Value // `@` — eDOM element binding or the `in=` selector result
	Percent    *variant.Value // `%` — iteration index
	Colon      *variant.Value // `:` — set by <call>/<inherit>
	Caret      *variant.Value // `^` — CDATA content
}

// ExceptTemplate pairs an exception pattern with the subtree template
// that handles it, inherited down the frame chain.
type ExceptTemplate struct {
	Pattern string // exception atom name, or "*" for catch-all
	Subtree *vdom.Element
}

// Frame is one stack entry, per spec.md §3's Stack frame F.
type Frame struct {
	Pos   *vdom.Element // element being executed
	Scope *vdom.Element // nearest element that owns a scope (may differ from Pos)

	Ctxt    Ctxt
	Ops     Ops
	NextStep NextStep
	EvalStep EvalStep

	Curr int // cursor into Pos's children, for select_child

	Symbols Symbols

	CtntVar  *variant.Value  // content variable produced by evaluating this element
	AttrVars *variant.Value  // object variant holding attribute name -> value

	ExceptTemplates []ExceptTemplate // inherited from enclosing frame, appended to locally

	Silently bool // inherits from element and parent

	EDOMElement any // opaque handle into the rendered document (edom.Handle)

	FrameTemp *scope.Manager // the `!` namespace's backing scope manager, when `locally` is used

	Error *runtime.Error // error/exception slot for this frame

	// Host is the owning coroutine, opaque here to avoid an import cycle
	// (coroutine imports frame); ops/<verb> packages type-assert this to
	// *coroutine.Coroutine to reach scope, eDOM, timers, and messaging.
	Host any

	parent *Frame
}

// Parent returns the frame directly beneath this one on the owning
// coroutine's stack, satisfying invariant 2 (parent(F) = stack[d-1]).
func (f *Frame) Parent() *Frame { return f.parent }

// New constructs a frame for pos, chained beneath parent. The caller
// (coroutine.Push) is responsible for calling ops.AfterPushed next.
func New(pos *vdom.Element, ops Ops, parent *Frame) *Frame {
	f := &Frame{
		Pos:      pos,
		Ops:      ops,
		NextStep: AfterPushed,
		EvalStep: EvalAttr,
		AttrVars: variant.NewObject(),
		parent:   parent,
	}
	if parent != nil {
		f.Scope = parent.Scope
		f.Silently = parent.Silently
		f.ExceptTemplates = append([]ExceptTemplate(nil), parent.ExceptTemplates...)
		f.Symbols.Exclaim = parent.Symbols.Exclaim
		f.Host = parent.Host
	} else {
		f.Symbols.Exclaim = variant.NewObject()
	}
	return f
}

// Destroy tears down the frame's context, per spec.md §3's
// ctxt_destroy field.
func (f *Frame) Destroy() {
	if f.Ctxt != nil {
		f.Ctxt.Destroy()
	}
}

// PushExceptTemplate registers an exception-pattern handler local to
// this frame, inherited by frames pushed beneath it.
func (f *Frame) PushExceptTemplate(pattern string, subtree *vdom.Element) {
	f.ExceptTemplates = append(f.ExceptTemplates, ExceptTemplate{Pattern: pattern, Subtree: subtree})
}

// MatchExceptTemplate finds the nearest-declared template matching
// exceptionName, walking this frame's own list from most to least
// recently pushed (nearest enclosing <except> wins).
func (f *Frame) MatchExceptTemplate(exceptionName string) (*ExceptTemplate, bool) {
	for i := len(f.ExceptTemplates) - 1; i >= 0; i-- {
		t := f.ExceptTemplates[i]
		if t.Pattern == exceptionName || t.Pattern == "*" {
			return &f.ExceptTemplates[i], true
		}
	}
	return nil, false
}
