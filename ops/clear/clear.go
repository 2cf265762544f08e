// Package clear implements <clear>'s operation quad: removes every
// child of an eDOM or variant target, per SPEC_FULL.md (folds into
// <update to="remove"> for variants; kept distinct for eDOM targets,
// where "clear" removes children but leaves the element itself).
package clear

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
	f.Ctxt = opsutil.NoopCtxt{}

	target, hasOn := opsutil.Attr(f, "on")
	if !hasOn {
		return 0, runtime.NewError(runtime.ErrArgumentMissed, "clear", nil)
	}

	if target.Kind() == variant.Native {
		if h, ok := target.AsNative().Entity.(edom.Handle); ok {
			co := opsutil.Co(f)
			if err := co.EDOM.ClearChildren(h); err != nil {
				return 0, runtime.NewError(runtime.ErrInvalidValue, "clear", err)
			}
			return frame.OnPopping, nil
		}
	}

	switch target.Kind() {
	case variant.Object:
		for _, k := range target.Keys() {
			_ = target.Delete(k)
		}
	case variant.Array:
		for target.Len() > 0 {
			_ = target.ArrayRemove(target.Len() - 1)
		}
	case variant.Set:
		for _, m := range target.Members() {
			_ = target.SetRemove(m)
		}
	}
	return frame.OnPopping, nil
}

func (o *Ops) SelectChild(f *frame.Frame) (*vdom.Node, error) { return nil, nil }

func (o *Ops) Rerun(f *frame.Frame) (frame.NextStep, error) { return frame.OnPopping, nil }

func (o *Ops) OnPopping(f *frame.Frame) error { return nil }
