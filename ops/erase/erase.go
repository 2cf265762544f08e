// Package erase implements <erase>'s operation quad: removes an eDOM
// element itself (not just its children) or, for a variant target,
// a single named key/index/member, per SPEC_FULL.md.
package erase

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
		return 0, runtime.NewError(runtime.ErrArgumentMissed, "erase", nil)
	}
	at, _ := opsutil.AttrString(f, "at")

	if target.Kind() == variant.Native {
		if h, ok := target.AsNative().Entity.(edom.Handle); ok {
			co := opsutil.Co(f)
			if err := co.EDOM.EraseElement(h); err != nil {
				return 0, runtime.NewError(runtime.ErrInvalidValue, "erase", err)
			}
			return frame.OnPopping, nil
		}
	}

	switch target.Kind() {
	case variant.Object:
		if at != "" {
			_ = target.Delete(at)
		}
	case variant.Array:
		idx := target.Len() - 1
		if at != "" {
			idx = parseIndex(at, target.Len())
		}
		_ = target.ArrayRemove(idx)
	case variant.Set:
		if with, ok := opsutil.Attr(f, "with"); ok {
			_ = target.SetRemove(with)
		}
	}
	return frame.OnPopping, nil
}

func parseIndex(at string, length int) int {
	n := 0
	neg := len(at) > 0 && at[0] == '-'
	s := at
	if neg {
		s = at[1:]
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return -1
		}
		n = n*10 + int(r-'0')
	}
	if neg {
		return length - n
	}
	return n
}

func (o *Ops) SelectChild(f *frame.Frame) (*vdom.Node, error) { return nil, nil }

func (o *Ops) Rerun(f *frame.Frame) (frame.NextStep, error) { return frame.OnPopping, nil }

func (o *Ops) OnPopping(f *frame.Frame) error { return nil }
