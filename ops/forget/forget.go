// Package forget implements <forget>'s operation quad from spec.md
// §4.4/§4.6: revokes observers matching (observed, type-atom,
// sub-type), addressed either by the observed variant (`on`) or by an
// observer handle previously bound via <observe as="...">  (`at`).
package forget

import (
	"strings"

	"github.com/hvml-run/hvmi/frame"
	"github.com/hvml-run/hvmi/observer"
	"github.com/hvml-run/hvmi/ops/opsutil"
	"github.com/hvml-run/hvmi/variant"
	"github.com/hvml-run/hvmi/vdom"
)

type Ops struct{}

func New() *Ops { return &Ops{} }

func splitFor(pattern string) (string, string) {
	typ, sub, ok := strings.Cut(pattern, ":")
	if !ok {
		return pattern, ""
	}
	return typ, sub
}

func (o *Ops) AfterPushed(f *frame.Frame) (frame.NextStep, error) {
	if err := opsutil.EvalAttrs(f); err != nil {
		return 0, err
	}
	f.Ctxt = opsutil.NoopCtxt{}
	co := opsutil.Co(f)

	pattern, _ := opsutil.AttrString(f, "for")
	typ, sub := splitFor(pattern)

	var observed *variant.Value
	if atVal, hasAt := opsutil.Attr(f, "at"); hasAt && atVal.Kind() == variant.Native {
		if obs, ok := atVal.AsNative().Entity.(*observer.Observer); ok {
			observed = obs.Observed
			if typ == "" {
				typ = obs.Type
			}
			if sub == "" {
				sub = obs.SubType
			}
		}
	} else if onVal, hasOn := opsutil.Attr(f, "on"); hasOn {
		observed = onVal
	}

	n := co.Observers.Revoke(observed, typ, sub)
	f.Symbols.Question = variant.NewLongInt(int64(n))
	return frame.OnPopping, nil
}

func (o *Ops) SelectChild(f *frame.Frame) (*vdom.Node, error) { return nil, nil }

func (o *Ops) Rerun(f *frame.Frame) (frame.NextStep, error) { return frame.OnPopping, nil }

func (o *Ops) OnPopping(f *frame.Frame) error { return nil }
