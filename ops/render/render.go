// Package render implements the default operation quad used for plain
// rendering elements — tags with no control-flow semantics of their
// own (<p>, <div>, <span>, and the rest of the taxonomy spec.md §4.4
// explicitly leaves undefined beyond "body dispatches rendering
// elements"). It mirrors the element into the coroutine's eDOM target
// and recurses into its children; every verb package with genuine
// control flow (ops/body, ops/init, ...) replaces this for its own tag.
package render

import (
	"github.com/hvml-run/hvmi/edom"
	"github.com/hvml-run/hvmi/frame"
	"github.com/hvml-run/hvmi/ops/opsutil"
	"github.com/hvml-run/hvmi/variant"
	"github.com/hvml-run/hvmi/vdom"
)

type ctxt struct {
	handle edom.Handle
}

func (ctxt) Destroy() {}

// Ops is the default rendering quad; one shared instance is registered
// for every tag atom with no dedicated verb package.
type Ops struct{}

func New() *Ops { return &Ops{} }

func parentHandle(f *frame.Frame) edom.Handle {
	if f.Parent() == nil {
		return 0
	}
	if h, ok := f.Parent().EDOMElement.(edom.Handle); ok {
		return h
	}
	return 0
}

func (o *Ops) AfterPushed(f *frame.Frame) (frame.NextStep, error) {
	if err := opsutil.EvalAttrs(f); err != nil {
		return 0, err
	}
	co := opsutil.Co(f)
	parent := parentHandle(f)
	if parent == 0 {
		parent = co.EDOM.Root()
	}
	h, err := co.EDOM.NewElement(parent, edom.Append, f.Pos.GetTagName(), f.Pos.SelfClosing)
	if err != nil {
		return 0, err
	}
	for _, key := range f.AttrVars.Keys() {
		val := f.AttrVars.Get(key)
		if serr := co.EDOM.SetAttribute(h, edom.Update, key, variant.Stringify(val)); serr != nil {
			return 0, serr
		}
	}
	f.EDOMElement = h
	f.Ctxt = ctxt{handle: h}
	f.Symbols.At = variant.NewNative(h, variant.NativeMethods{})
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
