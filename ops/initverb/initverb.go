// Package initverb implements <init>'s operation quad from spec.md
// §4.4: binding a name (or slot-by-path) from inline content, a `with`
// expression, or an asynchronous/synchronous fetch via `from`.
package initverb

import (
	"io"

	"github.com/hvml-run/hvmi/coroutine"
	"github.com/hvml-run/hvmi/fetch"
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

	name, hasName := opsutil.AttrString(f, "as")
	at, _ := opsutil.AttrString(f, "at")
	_, locally := f.Pos.FindAttr("locally")
	_, uniquely := f.Pos.FindAttr("uniquely")
	against, hasAgainst := opsutil.AttrString(f, "against")

	_, hasFrom := f.Pos.FindAttr("from")
	_, hasWith := f.Pos.FindAttr("with")

	switch {
	case hasFrom:
		return o.initFromFetch(f, name, hasName, at, locally, uniquely, against, hasAgainst)
	case hasWith:
		v, ok := opsutil.Attr(f, "with")
		if !ok {
			v = variant.NewUndefined()
		}
		return o.bindResult(f, v, name, hasName, at, locally, uniquely, against, hasAgainst)
	default:
		// Inline JSON/EJSON content, per spec.md §4.4: "Must be from XOR
		// with XOR inline JSON content."
		v, err := opsutil.EvalContent(f, f.Pos.Content)
		if err != nil {
			return 0, err
		}
		return o.bindResult(f, v, name, hasName, at, locally, uniquely, against, hasAgainst)
	}
}

func wrapAgainst(v *variant.Value, against string) *variant.Value {
	set := variant.NewSet(against)
	_ = set.SetAdd(v)
	return set
}

func (o *Ops) bindResult(f *frame.Frame, v *variant.Value, name string, hasName bool, at string, locally, uniquely bool, against string, hasAgainst bool) (frame.NextStep, error) {
	if hasAgainst {
		v = wrapAgainst(v, against)
	}
	if hasName {
		if err := opsutil.Bind(f, name, v, at, locally, uniquely); err != nil {
			return 0, err
		}
	}
	f.Symbols.Question = v
	return frame.OnPopping, nil
}

// initFromFetch launches an async load per spec.md §4.4: async (the
// default absent `sync`) binds undefined immediately and rebinds on
// completion; sync yields the frame until the fetch resolves.
func (o *Ops) initFromFetch(f *frame.Frame, name string, hasName bool, at string, locally, uniquely bool, against string, hasAgainst bool) (frame.NextStep, error) {
	co := opsutil.Co(f)
	if co.Fetcher == nil {
		return 0, runtime.NewError(runtime.ErrNotSupported, "init", nil)
	}
	uri, _ := opsutil.AttrString(f, "from")
	_, sync := f.Pos.FindAttr("sync")

	if hasName && !locally {
		// Bind undefined immediately so concurrent readers see a defined
		// (if empty) slot while the fetch is outstanding.
		if err := opsutil.Bind(f, name, variant.NewUndefined(), at, locally, uniquely); err != nil {
			return 0, err
		}
	}

	rebind := func(res fetch.Result, ferr error) {
		var v *variant.Value
		if ferr != nil {
			v = variant.NewException(runtime.ExceptionName(runtime.ErrRequestFailed))
		} else {
			v = parseFetched(res)
		}
		if hasAgainst {
			v = wrapAgainst(v, against)
		}
		if hasName {
			_ = opsutil.Bind(f, name, v, at, locally, uniquely)
		}
	}

	if !sync {
		_, err := co.Fetcher.LoadAsync(uri, fetch.MethodGet, nil, func(res fetch.Result, ferr error) {
			rebind(res, ferr)
		})
		return err2nextStep(err)
	}

	_, err := co.Fetcher.LoadAsync(uri, fetch.MethodGet, nil, func(res fetch.Result, ferr error) {
		rebind(res, ferr)
		co.NotifyReady(coroutine.Message{EventName: "fetch", SubName: "complete"})
	})
	if err != nil {
		return 0, err
	}
	co.Yield(&coroutine.EventHandler{
		Type:    "fetch",
		SubType: "complete",
		Handle: func(msg coroutine.Message) (frame.NextStep, error) {
			return frame.OnPopping, nil
		},
	})
	return frame.OnPopping, nil
}

func err2nextStep(err error) (frame.NextStep, error) {
	if err != nil {
		return 0, err
	}
	return frame.OnPopping, nil
}

func parseFetched(res fetch.Result) *variant.Value {
	defer res.Body.Close()
	data, err := io.ReadAll(res.Body)
	if err != nil {
		return variant.NewUndefined()
	}
	if v, perr := variant.Parse(string(data)); perr == nil {
		return v
	}
	return variant.NewString(string(data))
}

func (o *Ops) SelectChild(f *frame.Frame) (*vdom.Node, error) {
	return nil, nil
}

func (o *Ops) Rerun(f *frame.Frame) (frame.NextStep, error) {
	return frame.OnPopping, nil
}

func (o *Ops) OnPopping(f *frame.Frame) error { return nil }
