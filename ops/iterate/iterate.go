// Package iterate implements <iterate>'s operation quad from spec.md
// §4.4: walks `on` by index, setting `?` to each element and `%` to
// the index; children re-run once per item.
package iterate

import (
	"github.com/hvml-run/hvmi/frame"
	"github.com/hvml-run/hvmi/ops/opsutil"
	"github.com/hvml-run/hvmi/runtime"
	"github.com/hvml-run/hvmi/variant"
	"github.com/hvml-run/hvmi/vdom"
)

type Ops struct{}

func New() *Ops { return &Ops{} }

type ctxt struct {
	items []*variant.Value
	idx   int
}

func (ctxt) Destroy() {}

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
	onVal, ok := opsutil.Attr(f, "on")
	if !ok {
		return 0, runtime.NewError(runtime.ErrArgumentMissed, "iterate", nil)
	}
	c := &ctxt{items: members(onVal)}
	f.Ctxt = c
	if len(c.items) == 0 {
		return frame.OnPopping, nil
	}
	setCurrent(f, c)
	return frame.SelectChild, nil
}

func setCurrent(f *frame.Frame, c *ctxt) {
	f.Symbols.Question = c.items[c.idx]
	f.Symbols.Percent = variant.NewLongInt(int64(c.idx))
}

// SelectChild dispatches the current iteration's children; once they
// are exhausted it advances to the next item and restarts, rather than
// relying on the scheduler's rerun step, since the scheduler only
// invokes rerun when a frame's own next_step is explicitly set to it
// (e.g. by an observer-driven live-update, not sequential iteration).
func (o *Ops) SelectChild(f *frame.Frame) (*vdom.Node, error) {
	c, _ := f.Ctxt.(*ctxt)
	if c == nil {
		return nil, nil
	}
	n, err := opsutil.NextChild(f, nil, nil)
	if err != nil || n != nil {
		return n, err
	}
	c.idx++
	if c.idx >= len(c.items) {
		return nil, nil
	}
	f.Curr = 0
	setCurrent(f, c)
	return o.SelectChild(f)
}

func (o *Ops) Rerun(f *frame.Frame) (frame.NextStep, error) {
	f.Curr = 0
	return frame.SelectChild, nil
}

func (o *Ops) OnPopping(f *frame.Frame) error { return nil }
