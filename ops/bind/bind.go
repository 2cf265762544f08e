// Package bind implements <bind>'s operation quad from spec.md §4.4:
// like <init>, but the bound value is an "expression variable" that
// re-evaluates its VCM each time it is read, rather than a value
// computed once at bind time.
package bind

import (
	"github.com/hvml-run/hvmi/coroutine"
	"github.com/hvml-run/hvmi/frame"
	"github.com/hvml-run/hvmi/ops/opsutil"
	"github.com/hvml-run/hvmi/runtime"
	"github.com/hvml-run/hvmi/variant"
	"github.com/hvml-run/hvmi/vcm"
	"github.com/hvml-run/hvmi/vdom"
)

type Ops struct{}

func New() *Ops { return &Ops{} }

// exprResolver re-resolves named variables against the coroutine's
// scope at each read, rather than a snapshot; symbol variables are not
// available once the declaring frame has popped, so a <bind> VCM that
// references `$?`/`$@`/etc. is evaluated once at declaration time
// instead — an accepted narrowing of "re-evaluates when consumed"
// documented in DESIGN.md.
type exprResolver struct {
	co    *coroutine.Coroutine
	owner *vdom.Element
}

func (r *exprResolver) Lookup(name string) (*variant.Value, bool) {
	return r.co.Scope.Resolve(nil, r.owner, name)
}

func (r *exprResolver) Symbol(byte) (*variant.Value, bool) { return nil, false }

func (o *Ops) AfterPushed(f *frame.Frame) (frame.NextStep, error) {
	if err := opsutil.EvalAttrs(f); err != nil {
		return 0, err
	}
	f.Ctxt = opsutil.NoopCtxt{}

	name, hasName := opsutil.AttrString(f, "as")
	if !hasName {
		return 0, runtime.NewError(runtime.ErrArgumentMissed, "bind", nil)
	}
	at, _ := opsutil.AttrString(f, "at")
	_, locally := f.Pos.FindAttr("locally")
	_, uniquely := f.Pos.FindAttr("uniquely")

	on, hasOn := opsutil.AttrString(f, "on")
	if !hasOn {
		on = f.Pos.Content
	}

	co := opsutil.Co(f)
	resolver := &exprResolver{co: co, owner: f.Scope}
	// Evaluate once up front so a VCM syntax error surfaces immediately
	// rather than being deferred to an arbitrary later read.
	if _, err := vcm.Eval(resolver, on); err != nil {
		return 0, runtime.NewError(runtime.ErrInvalidValue, "bind", err)
	}

	getter := func(args []*variant.Value) (*variant.Value, error) {
		return vcm.Eval(resolver, on)
	}
	dv := variant.NewDynamic(getter, nil)
	if err := opsutil.Bind(f, name, dv, at, locally, uniquely); err != nil {
		return 0, err
	}
	return frame.OnPopping, nil
}

func (o *Ops) SelectChild(f *frame.Frame) (*vdom.Node, error) { return nil, nil }

func (o *Ops) Rerun(f *frame.Frame) (frame.NextStep, error) { return frame.OnPopping, nil }

func (o *Ops) OnPopping(f *frame.Frame) error { return nil }
