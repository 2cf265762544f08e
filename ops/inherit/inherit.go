// Package inherit implements <inherit>'s operation quad: copies the
// nearest enclosing <call>/<include> frame's `:` (colon) variable into
// the current frame, since spec.md §4.3 only refreshes `:` on the
// frame <call> itself establishes, not on every descendant frame.
package inherit

import (
	"github.com/hvml-run/hvmi/frame"
	"github.com/hvml-run/hvmi/ops/opsutil"
	"github.com/hvml-run/hvmi/runtime"
	"github.com/hvml-run/hvmi/vdom"
)

type Ops struct{}

func New() *Ops { return &Ops{} }

func (o *Ops) AfterPushed(f *frame.Frame) (frame.NextStep, error) {
	f.Ctxt = opsutil.NoopCtxt{}

	for cur := f.Parent(); cur != nil; cur = cur.Parent() {
		if cur.Symbols.Colon != nil {
			f.Symbols.Colon = cur.Symbols.Colon
			return frame.OnPopping, nil
		}
	}
	return 0, runtime.NewError(runtime.ErrNoData, "inherit", nil)
}

func (o *Ops) SelectChild(f *frame.Frame) (*vdom.Node, error) { return nil, nil }

func (o *Ops) Rerun(f *frame.Frame) (frame.NextStep, error) { return frame.OnPopping, nil }

func (o *Ops) OnPopping(f *frame.Frame) error { return nil }
