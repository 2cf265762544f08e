// Package reduce implements <reduce>'s operation quad: folds `on`
// (an array) into a single value by re-evaluating `with` once per
// item. `with`'s raw VCM is evaluated fresh on each iteration (like
// ops/observe's re-evaluated `with`) rather than once up front, since
// it must see the running accumulator and the current item change
// every pass. <reduce> has no CDATA content of its own, so the
// running accumulator is carried in the otherwise-unused `^` symbol
// slot rather than introducing a new one.
package reduce

import (
	"github.com/hvml-run/hvmi/frame"
	"github.com/hvml-run/hvmi/ops/opsutil"
	"github.com/hvml-run/hvmi/runtime"
	"github.com/hvml-run/hvmi/variant"
	"github.com/hvml-run/hvmi/vdom"
)

type Ops struct{}

func New() *Ops { return &Ops{} }

func members(v *variant.Value) []*variant.Value {
	switch v.Kind() {
	case variant.Array, variant.Tuple:
		return v.Items()
	case variant.Set:
		return v.Members()
	case variant.Object:
		out := make([]*variant.Value, 0, len(v.Keys()))
		for _, k := range v.Keys() {
			out = append(out, v.Get(k))
		}
		return out
	default:
		return []*variant.Value{v}
	}
}

func (o *Ops) AfterPushed(f *frame.Frame) (frame.NextStep, error) {
	if err := opsutil.EvalAttrs(f); err != nil {
		return 0, err
	}
	f.Ctxt = opsutil.NoopCtxt{}

	on, hasOn := opsutil.Attr(f, "on")
	if !hasOn {
		return 0, runtime.NewError(runtime.ErrArgumentMissed, "reduce", nil)
	}
	withAttr, hasWith := f.Pos.FindAttr("with")
	if !hasWith {
		return 0, runtime.NewError(runtime.ErrArgumentMissed, "reduce", nil)
	}
	acc, hasStart := opsutil.Attr(f, "start")
	if !hasStart {
		acc = variant.NewLongInt(0)
	}

	items := members(on)
	for idx, item := range items {
		f.Symbols.Question = item
		f.Symbols.Percent = variant.NewLongInt(int64(idx))
		f.Symbols.Caret = acc
		next, err := opsutil.EvalContent(f, withAttr.Value)
		if err != nil {
			return 0, err
		}
		acc = next
	}

	f.Symbols.Question = acc
	if name, ok := opsutil.AttrString(f, "as"); ok {
		at, _ := opsutil.AttrString(f, "at")
		_, locally := f.Pos.FindAttr("locally")
		_, uniquely := f.Pos.FindAttr("uniquely")
		if err := opsutil.Bind(f, name, acc, at, locally, uniquely); err != nil {
			return 0, err
		}
	}
	return frame.OnPopping, nil
}

func (o *Ops) SelectChild(f *frame.Frame) (*vdom.Node, error) { return nil, nil }

func (o *Ops) Rerun(f *frame.Frame) (frame.NextStep, error) { return frame.OnPopping, nil }

func (o *Ops) OnPopping(f *frame.Frame) error { return nil }
