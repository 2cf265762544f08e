// Package request implements <request>'s operation quad: like <call>
// but always asynchronous and always on the runner named by the required
// `within` attribute. `on` must resolve to a <define>-bound variable;
// `hvml+run://` URI strings are not resolved here. Reuses ops/call's
// SpawnChild rather than duplicating the spawn/bind/yield sequence.
package request

import (
	"fmt"

	"github.com/hvml-run/hvmi/frame"
	"github.com/hvml-run/hvmi/ops/call"
	"github.com/hvml-run/hvmi/ops/define"
	"github.com/hvml-run/hvmi/ops/opsutil"
	"github.com/hvml-run/hvmi/runtime"
	"github.com/hvml-run/hvmi/variant"
	"github.com/hvml-run/hvmi/vdom"
)

// OpsTable is the same narrow lookup scheduler.OpsTable exposes.
type OpsTable interface {
	Lookup(tagID runtime.Atom) (frame.Ops, error)
}

type Ops struct {
	call *call.Ops
}

func New(ops OpsTable) *Ops { return &Ops{call: call.New(ops)} }

func (o *Ops) AfterPushed(f *frame.Frame) (frame.NextStep, error) {
	if err := opsutil.EvalAttrs(f); err != nil {
		return 0, err
	}
	co := opsutil.Co(f)

	onVal, ok := opsutil.Attr(f, "on")
	if !ok || onVal.Kind() != variant.Native {
		return 0, runtime.NewError(runtime.ErrInvalidValue, "request",
			fmt.Errorf("'on' must resolve to a <define>-bound variable"))
	}
	def, ok := onVal.AsNative().Entity.(*define.Definition)
	if !ok {
		return 0, runtime.NewError(runtime.ErrWrongDataType, "request", nil)
	}

	withVal, hasWith := opsutil.Attr(f, "with")
	if !hasWith {
		withVal = variant.NewUndefined()
	}
	within, _ := opsutil.AttrString(f, "within")
	if within == "" {
		return 0, runtime.NewError(runtime.ErrArgumentMissed, "request",
			fmt.Errorf("'within' (the target runner, per the hvml+run:// endpoint) is required"))
	}

	return o.call.SpawnChild(f, co, def, withVal, within, false)
}

func (o *Ops) SelectChild(f *frame.Frame) (*vdom.Node, error) { return nil, nil }

func (o *Ops) Rerun(f *frame.Frame) (frame.NextStep, error) { return frame.OnPopping, nil }

func (o *Ops) OnPopping(f *frame.Frame) error { return nil }
