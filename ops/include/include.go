// Package include implements <include>'s operation quad from spec.md
// §4.4: unlike <call>, the referenced <define> subtree is spliced into
// the calling document's own scope rather than run as a nested call
// boundary — no `:` symbol is set up (`<` is set only when `with` is
// given), and the included
// subtree's named-variable bindings land in the enclosing scope chain
// rather than a fresh one.
package include

import (
	"fmt"

	"github.com/hvml-run/hvmi/frame"
	"github.com/hvml-run/hvmi/ops/define"
	"github.com/hvml-run/hvmi/ops/opsutil"
	"github.com/hvml-run/hvmi/runtime"
	"github.com/hvml-run/hvmi/variant"
	"github.com/hvml-run/hvmi/vdom"
)

// OpsTable resolves a tag atom to its operation quad, needed here so
// the included subtree's root runs under its own verb's semantics
// rather than <include>'s.
type OpsTable interface {
	Lookup(tagID runtime.Atom) (frame.Ops, error)
}

type ctxt struct {
	callee *frame.Frame
}

func (ctxt) Destroy() {}

type Ops struct {
	ops OpsTable
}

func New(ops OpsTable) *Ops { return &Ops{ops: ops} }

func (o *Ops) AfterPushed(f *frame.Frame) (frame.NextStep, error) {
	if err := opsutil.EvalAttrs(f); err != nil {
		return 0, err
	}
	co := opsutil.Co(f)

	onVal, ok := opsutil.Attr(f, "on")
	if !ok || onVal.Kind() != variant.Native {
		return 0, runtime.NewError(runtime.ErrInvalidValue, "include",
			fmt.Errorf("'on' must resolve to a <define>-bound variable"))
	}
	def, ok := onVal.AsNative().Entity.(*define.Definition)
	if !ok {
		return 0, runtime.NewError(runtime.ErrWrongDataType, "include", nil)
	}

	childOps, err := o.ops.Lookup(def.Subtree.GetTagID())
	if err != nil {
		return 0, err
	}
	// Pushed beneath this frame, not swapped in for it: the included
	// subtree still gets its own frame (so its own select_child/rerun
	// cycle runs under the right verb), but it inherits this frame's
	// Scope pointer by construction (frame.New copies parent.Scope),
	// so its bindings are visible to whatever declared *this* element's
	// enclosing scope rather than a private call frame.
	callee := co.Push(def.Subtree, childOps)
	if withVal, hasWith := opsutil.Attr(f, "with"); hasWith {
		callee.Symbols.Input = withVal
	}
	f.Ctxt = &ctxt{callee: callee}
	return frame.OnPopping, nil
}

func (o *Ops) SelectChild(f *frame.Frame) (*vdom.Node, error) { return nil, nil }

func (o *Ops) Rerun(f *frame.Frame) (frame.NextStep, error) { return frame.OnPopping, nil }

func (o *Ops) OnPopping(f *frame.Frame) error {
	c, ok := f.Ctxt.(*ctxt)
	if !ok || c.callee == nil {
		return nil
	}
	result := c.callee.Symbols.Question
	if result == nil {
		result = variant.NewUndefined()
	}
	f.Symbols.Question = result

	name, hasName := opsutil.AttrString(f, "as")
	if !hasName {
		return nil
	}
	at, _ := opsutil.AttrString(f, "at")
	_, locally := f.Pos.FindAttr("locally")
	return opsutil.Bind(f, name, result, at, locally, false)
}
