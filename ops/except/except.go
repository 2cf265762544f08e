// Package except implements <except>'s operation quad from spec.md
// §4.4. Registration as an exception-pattern handler on the enclosing
// frame happens in the *parent* verb (opsutil.CollectExceptTemplates),
// per spec.md's "binds the template to a specific exception pattern in
// the enclosing frame"; this package only runs when the scheduler
// pushes the template directly as the handler for a caught exception
// (scheduler.handleError), at which point it behaves like an ordinary
// content element whose children are the recovery body.
package except

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
