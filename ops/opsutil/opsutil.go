// Package opsutil collects the plumbing every ops/<verb> package needs
// but that frame/scope/coroutine cannot expose directly without an
// import cycle (coroutine already imports frame): pulling the owning
// coroutine out of a frame's opaque Host, evaluating attribute VCMs
// via the vcm package, and the common attribute-then-scope-binding
// sequence spec.md §4.2-4.3 describes for `<init>`/`<bind>`/`<define>`.
package opsutil

import (
	"fmt"
	"strings"

	"github.com/hvml-run/hvmi/coroutine"
	"github.com/hvml-run/hvmi/frame"
	"github.com/hvml-run/hvmi/runtime"
	"github.com/hvml-run/hvmi/scope"
	"github.com/hvml-run/hvmi/variant"
	"github.com/hvml-run/hvmi/vcm"
	"github.com/hvml-run/hvmi/vdom"
)

// NoopCtxt satisfies frame.Ctxt for verbs with nothing to tear down.
type NoopCtxt struct{}

func (NoopCtxt) Destroy() {}

// Co recovers the owning coroutine from f.Host.
func Co(f *frame.Frame) *coroutine.Coroutine {
	co, _ := f.Host.(*coroutine.Coroutine)
	return co
}

// resolver adapts a frame's symbol variables and its coroutine's scope
// registry to vcm.Resolver.
type resolver struct {
	f  *frame.Frame
	co *coroutine.Coroutine
}

func Resolver(f *frame.Frame) vcm.Resolver {
	return &resolver{f: f, co: Co(f)}
}

func (r *resolver) Lookup(name string) (*variant.Value, bool) {
	if r.co == nil {
		return nil, false
	}
	var frameTemp *scope.Manager
	if r.f.FrameTemp != nil {
		frameTemp = r.f.FrameTemp
	}
	return r.co.Scope.Resolve(frameTemp, r.f.Scope, name)
}

func (r *resolver) Symbol(sigil byte) (*variant.Value, bool) {
	s := &r.f.Symbols
	switch sigil {
	case '<':
		return s.Input, s.Input != nil
	case '?':
		return s.Question, s.Question != nil
	case '!':
		return s.Exclaim, s.Exclaim != nil
	case '@':
		return s.At, s.At != nil
	case '%':
		return s.Percent, s.Percent != nil
	case ':':
		return s.Colon, s.Colon != nil
	case '^':
		return s.Caret, s.Caret != nil
	default:
		return nil, false
	}
}

// EvalAttrs implements spec.md §4.3's two-phase attribute evaluation's
// first phase: every attribute VCM is evaluated and the result stored
// into f.AttrVars, keyed by name. Only `=` is accepted: an attribute
// with a compound operator (+=, -=, ...) fails with ErrNotSupported for
// every element, <update> included.
func EvalAttrs(f *frame.Frame) error {
	r := Resolver(f)
	for _, a := range f.Pos.Attributes {
		if a.Op != vdom.OpAssign {
			return runtime.NewError(runtime.ErrNotSupported, f.Pos.GetTagName(),
				fmt.Errorf("compound operator on attribute %q not supported here", a.Key))
		}
		v, err := vcm.Eval(r, a.Value)
		if err != nil {
			return runtime.NewError(runtime.ErrInvalidValue, f.Pos.GetTagName(), err)
		}
		if serr := f.AttrVars.Set(a.Key, v); serr != nil {
			return runtime.NewError(runtime.ErrInternalFailure, f.Pos.GetTagName(), serr)
		}
	}
	return nil
}

// Attr returns the already-evaluated value of attribute key, or
// (undefined, false) if it was not present.
func Attr(f *frame.Frame, key string) (*variant.Value, bool) {
	if f.AttrVars == nil {
		return nil, false
	}
	v := f.AttrVars.Get(key)
	return v, v != nil
}

// AttrString is a convenience for attributes whose VCM is expected to
// evaluate to a scalar used as a keyword (e.g. `to="displace"`).
func AttrString(f *frame.Frame, key string) (string, bool) {
	v, ok := Attr(f, key)
	if !ok || v == nil {
		return "", false
	}
	return variant.Stringify(v), true
}

// EvalContent evaluates src (an element's inline text/CDATA content)
// against f's resolver, for elements whose content is itself a VCM
// (e.g. <init>'s inline content, <reduce>'s per-item `with`).
func EvalContent(f *frame.Frame, src string) (*variant.Value, error) {
	v, err := vcm.Eval(Resolver(f), src)
	if err != nil {
		return nil, runtime.NewError(runtime.ErrInvalidValue, f.Pos.GetTagName(), err)
	}
	return v, nil
}

// Bind performs the common "pick a target manager, store name"
// sequence shared by <init>/<bind>/<define>,
// per spec.md §4.2: `as`/`at` select the destination; `locally` directs
// it to the frame-temporary `!` object's backing manager instead of an
// element/document manager.
func Bind(f *frame.Frame, name string, val *variant.Value, at string, locally, uniquely bool) error {
	co := Co(f)
	if locally {
		if f.FrameTemp == nil {
			f.FrameTemp = scope.NewManager()
		}
		if uniquely {
			if _, exists := f.FrameTemp.Lookup(name); exists {
				return runtime.NewError(runtime.ErrDuplicated, f.Pos.GetTagName(), nil)
			}
		}
		f.FrameTemp.Bind(name, val)
		return nil
	}

	var mgr *scope.Manager
	var err error
	if at != "" {
		mgr, err = co.Scope.ResolveAt(at, f.Scope, co.LastScopes)
	} else {
		mgr = co.Scope.Of(f.Scope)
	}
	if err != nil {
		return runtime.NewError(runtime.ErrInvalidValue, f.Pos.GetTagName(), err)
	}
	if uniquely {
		if _, exists := mgr.Lookup(name); exists {
			return runtime.NewError(runtime.ErrDuplicated, f.Pos.GetTagName(), nil)
		}
	}
	mgr.Bind(name, val)
	return nil
}

// NextChild implements the common shape of spec.md §4.5's select_child:
// content nodes are handed to onContent and comment nodes to onComment
// as they are encountered, advancing f.Curr past them, until an element
// child is found (returned for the caller to push a frame for) or the
// child list is exhausted (nil, nil).
func NextChild(f *frame.Frame, onContent func(text string) error, onComment func(text string)) (*vdom.Node, error) {
	children := f.Pos.Children()
	for f.Curr < len(children) {
		n := children[f.Curr]
		f.Curr++
		switch n.Kind {
		case vdom.ContentNode:
			if onContent != nil {
				if err := onContent(n.Text); err != nil {
					return nil, err
				}
			}
		case vdom.CommentNode:
			if onComment != nil {
				onComment(n.Text)
			}
		default:
			return n, nil
		}
	}
	return nil, nil
}

// CollectExceptTemplates scans f.Pos's direct children for <except>/
// <catch> elements and registers each on f, per spec.md §4.4: "<except>
// in a template binds the template to a specific exception pattern in
// the enclosing frame." The pattern comes from the template's `for`
// attribute (a bare exception name, not a VCM); a <catch> with no
// `for` is the catch-all form. Verb packages that allow nested
// exception templates (call, include, body, hvml, init, iterate, ...)
// call this once from AfterPushed, then use NextExecutableChild rather
// than NextChild so the templates are not executed as ordinary content.
func CollectExceptTemplates(f *frame.Frame) {
	for _, n := range f.Pos.Children() {
		if n.Kind != vdom.ElementNode {
			continue
		}
		tag := n.Element.GetTagName()
		if tag != "except" && tag != "catch" {
			continue
		}
		pattern := "*"
		if a, ok := n.Element.FindAttr("for"); ok && a.Value != "" {
			pattern = a.Value
		}
		f.PushExceptTemplate(pattern, n.Element)
	}
}

// NextExecutableChild is NextChild, but additionally skips <except>/
// <catch> template children, which CollectExceptTemplates has already
// registered and which only run when the scheduler pushes them
// directly as an exception handler.
func NextExecutableChild(f *frame.Frame, onContent func(text string) error, onComment func(text string)) (*vdom.Node, error) {
	for {
		n, err := NextChild(f, onContent, onComment)
		if err != nil || n == nil {
			return n, err
		}
		if n.Kind == vdom.ElementNode {
			tag := n.Element.GetTagName()
			if tag == "except" || tag == "catch" {
				continue
			}
		}
		return n, nil
	}
}

// IsAtom reports whether s, lowercased, equals one of wants — a small
// helper for matching keyword attributes (`to="displace"`,
// `via="GET"`, ...) case-insensitively as PurC's attribute grammar does.
func IsAtom(s string, wants ...string) bool {
	ls := strings.ToLower(strings.TrimSpace(s))
	for _, w := range wants {
		if ls == strings.ToLower(w) {
			return true
		}
	}
	return false
}
