// Package match implements <match>'s operation quad: compares its
// parent <choose>'s `on` value against this element's own `for`
// (structural equality by default, or a regex match under
// `type="regex"`), and only pushes its own content when it is the
// first sibling to match.
package match

import (
	"github.com/dlclark/regexp2"

	"github.com/hvml-run/hvmi/frame"
	"github.com/hvml-run/hvmi/ops/choose"
	"github.com/hvml-run/hvmi/ops/opsutil"
	"github.com/hvml-run/hvmi/runtime"
	"github.com/hvml-run/hvmi/variant"
	"github.com/hvml-run/hvmi/vdom"
)

type ctxt struct {
	matched bool
}

func (ctxt) Destroy() {}

type Ops struct{}

func New() *Ops { return &Ops{} }

func (o *Ops) AfterPushed(f *frame.Frame) (frame.NextStep, error) {
	if err := opsutil.EvalAttrs(f); err != nil {
		return 0, err
	}

	st, _ := f.Parent().Ctxt.(*choose.State)
	matched := false
	if st != nil && !st.Matched {
		for_, hasFor := opsutil.Attr(f, "for")
		typ, _ := opsutil.AttrString(f, "type")
		switch {
		case !hasFor:
			matched = true // <match> with no `for` is the catch-all/default arm
		case opsutil.IsAtom(typ, "regex", "regexp"):
			re, err := regexp2.Compile(for_.AsString(), regexp2.None)
			if err != nil {
				return 0, runtime.NewError(runtime.ErrInvalidValue, "match", err)
			}
			ok, err := re.MatchString(st.On.AsString())
			if err != nil {
				return 0, runtime.NewError(runtime.ErrInvalidValue, "match", err)
			}
			matched = ok
		default:
			matched = variant.IsEqual(st.On, for_)
		}
		if matched {
			st.Matched = true
		}
	}

	f.Symbols.Question = variant.NewBool(matched)
	f.Ctxt = &ctxt{matched: matched}
	if !matched {
		return frame.OnPopping, nil
	}
	return frame.SelectChild, nil
}

func (o *Ops) SelectChild(f *frame.Frame) (*vdom.Node, error) {
	return opsutil.NextExecutableChild(f, nil, nil)
}

func (o *Ops) Rerun(f *frame.Frame) (frame.NextStep, error) { return frame.SelectChild, nil }

func (o *Ops) OnPopping(f *frame.Frame) error { return nil }
