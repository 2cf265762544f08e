// Package define implements <define>'s operation quad from spec.md
// §4.4: binds the element's own subtree as a callable variable, later
// invoked by <call> (in-scope execution) or expanded by <include>
// (in-place expansion). The bound value is a Native variant whose
// entity is a *Definition wrapping the element subtree; ops/call and
// ops/include
// type-assert it back out directly rather than through a method
// table, since both packages live in the same module.
package define

import (
	"github.com/hvml-run/hvmi/frame"
	"github.com/hvml-run/hvmi/ops/opsutil"
	"github.com/hvml-run/hvmi/runtime"
	"github.com/hvml-run/hvmi/variant"
	"github.com/hvml-run/hvmi/vdom"
)

// Definition is the entity a <define>-bound Native variant carries.
type Definition struct {
	Subtree *vdom.Element
	Via     string // LOAD | GET | POST | DELETE, when `via` is given
}

type Ops struct{}

func New() *Ops { return &Ops{} }

func (o *Ops) AfterPushed(f *frame.Frame) (frame.NextStep, error) {
	if err := opsutil.EvalAttrs(f); err != nil {
		return 0, err
	}
	f.Ctxt = opsutil.NoopCtxt{}

	name, hasName := opsutil.AttrString(f, "as")
	if !hasName {
		return 0, runtime.NewError(runtime.ErrArgumentMissed, "define", nil)
	}
	at, _ := opsutil.AttrString(f, "at")
	_, locally := f.Pos.FindAttr("locally")
	_, uniquely := f.Pos.FindAttr("uniquely")
	via, _ := opsutil.AttrString(f, "via")

	def := &Definition{Subtree: f.Pos, Via: via}
	dv := variant.NewNative(def, variant.NativeMethods{})
	if err := opsutil.Bind(f, name, dv, at, locally, uniquely); err != nil {
		return 0, err
	}
	// A <define> subtree is not itself executed by the scheduler; it
	// only runs when <call>/<include> pushes its Subtree as a fresh
	// frame, so this frame has nothing left to select.
	return frame.OnPopping, nil
}

func (o *Ops) SelectChild(f *frame.Frame) (*vdom.Node, error) { return nil, nil }

func (o *Ops) Rerun(f *frame.Frame) (frame.NextStep, error) { return frame.OnPopping, nil }

func (o *Ops) OnPopping(f *frame.Frame) error { return nil }
