// Package archetype implements <archetype>'s operation quad from
// spec.md §4.4: binds a named content template for later use by
// <update at="content">.
package archetype

import (
	"github.com/hvml-run/hvmi/frame"
	"github.com/hvml-run/hvmi/ops/opsutil"
	"github.com/hvml-run/hvmi/runtime"
	"github.com/hvml-run/hvmi/variant"
	"github.com/hvml-run/hvmi/vdom"
)

// Template is the entity an <archetype>/<archedata>-bound Native
// variant carries: the subtree to splice in, plus the template kind
// (content markup vs. plain data) <update> needs to tell them apart.
type Template struct {
	Subtree *vdom.Element
	Type    string // "content" | "data"
}

type Ops struct {
	typ string
}

// New constructs the <archetype> operation quad, binding a content
// template. NewTyped lets archedata reuse this quad for its own kind.
func New() *Ops { return NewTyped("content") }

func NewTyped(typ string) *Ops { return &Ops{typ: typ} }

func (o *Ops) AfterPushed(f *frame.Frame) (frame.NextStep, error) {
	if err := opsutil.EvalAttrs(f); err != nil {
		return 0, err
	}
	f.Ctxt = opsutil.NoopCtxt{}

	name, hasName := opsutil.AttrString(f, "as")
	if !hasName {
		return 0, runtime.NewError(runtime.ErrArgumentMissed, f.Pos.GetTagName(), nil)
	}
	at, _ := opsutil.AttrString(f, "at")
	_, locally := f.Pos.FindAttr("locally")
	_, uniquely := f.Pos.FindAttr("uniquely")

	tmpl := &Template{Subtree: f.Pos, Type: o.typ}
	tv := variant.NewNative(tmpl, variant.NativeMethods{})
	if err := opsutil.Bind(f, name, tv, at, locally, uniquely); err != nil {
		return 0, err
	}
	return frame.OnPopping, nil
}

func (o *Ops) SelectChild(f *frame.Frame) (*vdom.Node, error) { return nil, nil }

func (o *Ops) Rerun(f *frame.Frame) (frame.NextStep, error) { return frame.OnPopping, nil }

func (o *Ops) OnPopping(f *frame.Frame) error { return nil }
