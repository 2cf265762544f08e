// Package back implements <back>'s operation quad: like <exit> but
// unwinds only up to the nearest named <iterate>/<choose> ancestor,
// not the whole coroutine, per SPEC_FULL.md.
package back

import (
	"github.com/hvml-run/hvmi/frame"
	"github.com/hvml-run/hvmi/ops/opsutil"
	"github.com/hvml-run/hvmi/runtime"
	"github.com/hvml-run/hvmi/vdom"
)

type Ops struct{}

func New() *Ops { return &Ops{} }

func (o *Ops) AfterPushed(f *frame.Frame) (frame.NextStep, error) {
	if err := opsutil.EvalAttrs(f); err != nil {
		return 0, err
	}
	co := opsutil.Co(f)

	// `to` optionally names the target ancestor's own `as` binding;
	// absent that, the nearest <iterate>/<choose> ancestor of any name
	// is the target.
	to, hasTo := opsutil.AttrString(f, "to")

	var target *frame.Frame
	for cur := f.Parent(); cur != nil; cur = cur.Parent() {
		tag := cur.Pos.GetTagName()
		if tag != "iterate" && tag != "choose" {
			continue
		}
		if hasTo {
			if name, ok := cur.Pos.FindAttr("as"); !ok || name.Value != to {
				continue
			}
		}
		target = cur
		break
	}
	if target == nil {
		return 0, runtime.NewError(runtime.ErrEntityNotFound, "back", nil)
	}

	for co.Top() != target {
		co.Pop()
	}
	target.NextStep = frame.Rerun
	return frame.OnPopping, nil
}

func (o *Ops) SelectChild(f *frame.Frame) (*vdom.Node, error) { return nil, nil }

func (o *Ops) Rerun(f *frame.Frame) (frame.NextStep, error) { return frame.OnPopping, nil }

func (o *Ops) OnPopping(f *frame.Frame) error { return nil }
