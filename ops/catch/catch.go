// Package catch implements <catch>'s operation quad from spec.md
// §4.4: "<catch> in execution position converts an exception to normal
// flow." Registration on the enclosing frame happens the same way
// <except> does (opsutil.CollectExceptTemplates, defaulting to the
// catch-all pattern when no `for` is given); this package runs the
// recovery body once the scheduler pushes it as the matched handler.
package catch

import (
	"github.com/hvml-run/hvmi/edom"
	"github.com/hvml-run/hvmi/frame"
	"github.com/hvml-run/hvmi/ops/opsutil"
	"github.com/hvml-run/hvmi/runtime"
	"github.com/hvml-run/hvmi/variant"
	"github.com/hvml-run/hvmi/vdom"
)

type Ops struct{}

func New() *Ops { return &Ops{} }

func (o *Ops) AfterPushed(f *frame.Frame) (frame.NextStep, error) {
	if err := opsutil.EvalAttrs(f); err != nil {
		return 0, err
	}
	if f.Error != nil {
		_ = f.Symbols.Exclaim.Set("exception", variant.NewException(runtime.ExceptionName(f.Error.Kind)))
		// Converting to normal flow: clear the frame's error slot so
		// nothing downstream re-raises the same exception.
		f.Error = nil
	}
	if f.Parent() != nil {
		if h, ok := f.Parent().EDOMElement.(edom.Handle); ok {
			f.EDOMElement = h
		}
	}
	f.Ctxt = opsutil.NoopCtxt{}
	return frame.SelectChild, nil
}

func (o *Ops) SelectChild(f *frame.Frame) (*vdom.Node, error) {
	return opsutil.NextExecutableChild(f, nil, nil)
}

func (o *Ops) Rerun(f *frame.Frame) (frame.NextStep, error) {
	f.Curr = 0
	return frame.SelectChild, nil
}

func (o *Ops) OnPopping(f *frame.Frame) error { return nil }
