// Package choose implements <choose>'s operation quad: evaluates `on`
// once, then pushes each <match> child in document order as a regular
// child frame (per SPEC_FULL.md, no select_child skip-logic lives
// here); ops/match reads the shared State back off this frame's Ctxt
// to compare itself against `on` and to stop once one sibling has
// already matched.
package choose

import (
	"github.com/hvml-run/hvmi/frame"
	"github.com/hvml-run/hvmi/ops/opsutil"
	"github.com/hvml-run/hvmi/runtime"
	"github.com/hvml-run/hvmi/variant"
	"github.com/hvml-run/hvmi/vdom"
)

// State is the shared context a <choose> frame exposes to its <match>
// children: the value every <match> compares `for` against, and
// whether some earlier sibling has already matched.
type State struct {
	On      *variant.Value
	Matched bool
}

func (*State) Destroy() {}

type Ops struct{}

func New() *Ops { return &Ops{} }

func (o *Ops) AfterPushed(f *frame.Frame) (frame.NextStep, error) {
	if err := opsutil.EvalAttrs(f); err != nil {
		return 0, err
	}
	on, hasOn := opsutil.Attr(f, "on")
	if !hasOn {
		return 0, runtime.NewError(runtime.ErrArgumentMissed, "choose", nil)
	}
	f.Ctxt = &State{On: on}
	return frame.SelectChild, nil
}

func (o *Ops) SelectChild(f *frame.Frame) (*vdom.Node, error) {
	return opsutil.NextChild(f, nil, nil)
}

func (o *Ops) Rerun(f *frame.Frame) (frame.NextStep, error) { return frame.SelectChild, nil }

func (o *Ops) OnPopping(f *frame.Frame) error {
	st, _ := f.Ctxt.(*State)
	if st != nil {
		f.Symbols.Question = variant.NewBool(st.Matched)
	}
	return nil
}
