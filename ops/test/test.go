// Package test implements <test>'s operation quad: evaluates `with` as
// a boolean and runs its content only when true. Per SPEC_FULL.md,
// scheduling treats this as a regular child frame of its parent; no
// select_child skip-logic lives in the scheduler — the unmatched
// content simply never gets pushed.
package test

import (
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
	f.Ctxt = opsutil.NoopCtxt{}

	with, hasWith := opsutil.Attr(f, "with")
	if !hasWith {
		return 0, runtime.NewError(runtime.ErrArgumentMissed, "test", nil)
	}
	passed := with.AsBool()
	f.Symbols.Question = variant.NewBool(passed)
	if !passed {
		return frame.OnPopping, nil
	}
	return frame.SelectChild, nil
}

func (o *Ops) SelectChild(f *frame.Frame) (*vdom.Node, error) {
	return opsutil.NextExecutableChild(f, nil, nil)
}

func (o *Ops) Rerun(f *frame.Frame) (frame.NextStep, error) { return frame.SelectChild, nil }

func (o *Ops) OnPopping(f *frame.Frame) error { return nil }
