// Package head implements <head>'s operation quad from spec.md §4.4: a
// mode gate under which only <init>, <bind>, <define>, <load>,
// <archetype>, <archedata>, and <observe> are legal children.
package head

import (
	"fmt"

	"github.com/hvml-run/hvmi/frame"
	"github.com/hvml-run/hvmi/ops/opsutil"
	"github.com/hvml-run/hvmi/runtime"
	"github.com/hvml-run/hvmi/vdom"
)

var legalChildren = map[string]bool{
	"init": true, "bind": true, "define": true, "load": true,
	"archetype": true, "archedata": true, "observe": true,
}

type Ops struct{}

func New() *Ops { return &Ops{} }

func (o *Ops) AfterPushed(f *frame.Frame) (frame.NextStep, error) {
	if err := opsutil.EvalAttrs(f); err != nil {
		return 0, err
	}
	f.Ctxt = opsutil.NoopCtxt{}
	return frame.SelectChild, nil
}

func (o *Ops) SelectChild(f *frame.Frame) (*vdom.Node, error) {
	n, err := opsutil.NextChild(f, nil, nil)
	if err != nil || n == nil {
		return n, err
	}
	if n.Kind == vdom.ElementNode && !legalChildren[n.Element.GetTagName()] {
		return nil, runtime.NewError(runtime.ErrNotSupported, "head",
			fmt.Errorf("%q is not legal under <head>", n.Element.GetTagName()))
	}
	return n, nil
}

func (o *Ops) Rerun(f *frame.Frame) (frame.NextStep, error) {
	f.Curr = 0
	return frame.SelectChild, nil
}

func (o *Ops) OnPopping(f *frame.Frame) error { return nil }
