// Package exit implements <exit>'s operation quad from spec.md §4.4:
// sets the coroutine's result to `with` (or `?` if `with` is absent)
// and unwinds the entire stack, ending the coroutine.
package exit

import (
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

	val, hasWith := opsutil.Attr(f, "with")
	if !hasWith {
		val = f.Symbols.Question
	}
	if val == nil {
		val = variant.NewUndefined()
	}
	co.Result = val

	for co.Top() != nil {
		co.Pop()
	}
	return frame.OnPopping, nil
}

func (o *Ops) SelectChild(f *frame.Frame) (*vdom.Node, error) { return nil, nil }

func (o *Ops) Rerun(f *frame.Frame) (frame.NextStep, error) { return frame.OnPopping, nil }

func (o *Ops) OnPopping(f *frame.Frame) error { return nil }
