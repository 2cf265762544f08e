// Package hvml implements the <hvml> root element's operation quad
// from spec.md §4.4: applies the element's `target` attribute to the
// coroutine's eDOM root and Target field. No insertion mode (such as
// BEFORE_HEAD) is tracked; children run in document order.
package hvml

import (
	"github.com/hvml-run/hvmi/edom"
	"github.com/hvml-run/hvmi/frame"
	"github.com/hvml-run/hvmi/ops/opsutil"
	"github.com/hvml-run/hvmi/variant"
	"github.com/hvml-run/hvmi/vdom"
)

type Ops struct{}

func New() *Ops { return &Ops{} }

func (o *Ops) AfterPushed(f *frame.Frame) (frame.NextStep, error) {
	if err := opsutil.EvalAttrs(f); err != nil {
		return 0, err
	}
	co := opsutil.Co(f)
	if target, ok := opsutil.AttrString(f, "target"); ok {
		co.Target = target
		if serr := co.EDOM.SetAttribute(co.EDOM.Root(), edom.Update, "target", target); serr != nil {
			return 0, serr
		}
	}
	f.EDOMElement = co.EDOM.Root()
	f.Symbols.At = variant.NewNative(co.EDOM.Root(), variant.NativeMethods{})
	f.Ctxt = opsutil.NoopCtxt{}
	return frame.SelectChild, nil
}

func (o *Ops) SelectChild(f *frame.Frame) (*vdom.Node, error) {
	return opsutil.NextChild(f, nil, nil)
}

func (o *Ops) Rerun(f *frame.Frame) (frame.NextStep, error) {
	f.Curr = 0
	return frame.SelectChild, nil
}

func (o *Ops) OnPopping(f *frame.Frame) error {
	co := opsutil.Co(f)
	if co.Result == nil {
		co.Result = variant.NewUndefined()
	}
	return nil
}
