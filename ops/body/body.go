// Package body implements <body>'s operation quad from spec.md §4.4:
// the dispatch point for rendering elements, mirrored as the eDOM
// document's body element.
package body

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
	h, err := co.EDOM.NewElement(co.EDOM.Root(), edom.Append, "body", false)
	if err != nil {
		return 0, err
	}
	f.EDOMElement = h
	f.Symbols.At = variant.NewNative(h, variant.NativeMethods{})
	f.Ctxt = opsutil.NoopCtxt{}
	return frame.SelectChild, nil
}

func (o *Ops) SelectChild(f *frame.Frame) (*vdom.Node, error) {
	co := opsutil.Co(f)
	h := f.EDOMElement.(edom.Handle)
	return opsutil.NextChild(f,
		func(text string) error { return co.EDOM.NewTextContent(h, edom.Append, text) },
		nil)
}

func (o *Ops) Rerun(f *frame.Frame) (frame.NextStep, error) {
	f.Curr = 0
	return frame.SelectChild, nil
}

func (o *Ops) OnPopping(f *frame.Frame) error { return nil }
