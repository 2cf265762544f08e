// Package differ implements <differ>'s operation quad: structurally
// compares `with` against `against`, per spec.md §4.4's note that it
// mirrors elements/differ.c, and runs its content only when the two
// sides differ (or match, under `type="eq"`); a <test>-like content
// switch rather than its own verb family.
package differ

import (
	"github.com/hvml-run/hvmi/frame"
	"github.com/hvml-run/hvmi/ops/opsutil"
	"github.com/hvml-run/hvmi/runtime"
	"github.com/hvml-run/hvmi/variant"
	"github.com/hvml-run/hvmi/vdom"
)

type ctxt struct {
	passed bool
}

func (ctxt) Destroy() {}

type Ops struct{}

func New() *Ops { return &Ops{} }

func (o *Ops) AfterPushed(f *frame.Frame) (frame.NextStep, error) {
	if err := opsutil.EvalAttrs(f); err != nil {
		return 0, err
	}

	with, hasWith := opsutil.Attr(f, "with")
	against, hasAgainst := opsutil.Attr(f, "against")
	if !hasWith || !hasAgainst {
		return 0, runtime.NewError(runtime.ErrArgumentMissed, "differ", nil)
	}
	typ, _ := opsutil.AttrString(f, "type")

	equal := variant.IsEqual(with, against)
	passed := !equal
	if opsutil.IsAtom(typ, "eq", "equal", "same") {
		passed = equal
	}

	f.Symbols.Question = variant.NewBool(passed)
	f.Ctxt = &ctxt{passed: passed}
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
