// Package sort implements <sort>'s operation quad: the sort() builtin
// from spec.md §4.1/§8 exposed as an element, binding the sorted array
// to `?` (and to `as`/`at` if given) rather than mutating `on` in
// place.
package sort

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

	on, hasOn := opsutil.Attr(f, "on")
	if !hasOn {
		return 0, runtime.NewError(runtime.ErrArgumentMissed, "sort", nil)
	}
	dir, _ := opsutil.AttrString(f, "dir")
	caseness, _ := opsutil.AttrString(f, "caseness")

	sorted, err := variant.Sort(on, dir, caseness)
	if err != nil {
		return 0, runtime.NewError(runtime.ErrWrongDataType, "sort", err)
	}
	f.Symbols.Question = sorted

	if name, ok := opsutil.AttrString(f, "as"); ok {
		at, _ := opsutil.AttrString(f, "at")
		_, locally := f.Pos.FindAttr("locally")
		_, uniquely := f.Pos.FindAttr("uniquely")
		if err := opsutil.Bind(f, name, sorted, at, locally, uniquely); err != nil {
			return 0, err
		}
	}
	return frame.OnPopping, nil
}

func (o *Ops) SelectChild(f *frame.Frame) (*vdom.Node, error) { return nil, nil }

func (o *Ops) Rerun(f *frame.Frame) (frame.NextStep, error) { return frame.OnPopping, nil }

func (o *Ops) OnPopping(f *frame.Frame) error { return nil }
