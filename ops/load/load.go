// Package load implements <load>'s operation quad from spec.md §4.4:
// loads an external HVML program — `on` as literal source, `from` as a
// URI fetched first — and schedules it as a new coroutine, optionally
// on a named runner (`within`). `with` seeds the child's initial `?`;
// `as`/`at` bind the spawn's request-id immediately; `onto` is bound
// once the child coroutine actually completes.
package load

import (
	"fmt"
	"io"

	"github.com/hvml-run/hvmi/coroutine"
	"github.com/hvml-run/hvmi/fetch"
	"github.com/hvml-run/hvmi/frame"
	"github.com/hvml-run/hvmi/ops/opsutil"
	"github.com/hvml-run/hvmi/reqid"
	"github.com/hvml-run/hvmi/runtime"
	"github.com/hvml-run/hvmi/scheduler"
	"github.com/hvml-run/hvmi/variant"
	"github.com/hvml-run/hvmi/vdom"
	"github.com/hvml-run/hvmi/vdom/loader"
)

type Ops struct{}

func New() *Ops { return &Ops{} }

func (o *Ops) AfterPushed(f *frame.Frame) (frame.NextStep, error) {
	if err := opsutil.EvalAttrs(f); err != nil {
		return 0, err
	}
	f.Ctxt = opsutil.NoopCtxt{}
	co := opsutil.Co(f)
	if co.RT == nil {
		return 0, runtime.NewError(runtime.ErrNotSupported, "load", nil)
	}

	src, err := o.resolveSource(f, co)
	if err != nil {
		return 0, err
	}
	childDoc, perr := loader.Load([]byte(src), co.RT.Atoms)
	if perr != nil {
		return 0, runtime.NewError(runtime.ErrInvalidValue, "load", perr)
	}

	within, _ := opsutil.AttrString(f, "within")
	runnerID := within
	if runnerID == "" || runnerID == "_self" {
		runnerID = co.RunnerID
	}
	runnerAny, ok := co.RT.Runner(co.RT.Atoms.Intern(runnerID))
	if !ok {
		return 0, runtime.NewError(runtime.ErrEntityNotFound, "load", nil)
	}
	runner, ok := runnerAny.(*scheduler.Runner)
	if !ok {
		return 0, runtime.NewError(runtime.ErrInternalFailure, "load", nil)
	}

	child, serr := runner.Spawn(childDoc, co)
	if serr != nil {
		return 0, serr
	}
	if withVal, hasWith := opsutil.Attr(f, "with"); hasWith {
		if top := child.Top(); top != nil {
			top.Symbols.Input = withVal
			top.Symbols.Question = withVal
		}
	}

	requestID := reqid.New(reqid.Crtn, runnerID, fmt.Sprint(child.CID), "")
	f.Symbols.Question = variant.NewString(requestID.String())

	if name, hasName := opsutil.AttrString(f, "as"); hasName {
		at, _ := opsutil.AttrString(f, "at")
		_, locally := f.Pos.FindAttr("locally")
		if err := opsutil.Bind(f, name, f.Symbols.Question, at, locally, false); err != nil {
			return 0, err
		}
	}

	if ontoName, hasOnto := opsutil.AttrString(f, "onto"); hasOnto {
		ontoAt, _ := opsutil.AttrString(f, "at")
		_, ontoLocally := f.Pos.FindAttr("locally")
		co.Yield(&coroutine.EventHandler{
			Type:    "call-state",
			SubType: "success",
			IsMatch: func(msg coroutine.Message) bool { return msg.RequestID.Equal(requestID) },
			Handle: func(msg coroutine.Message) (frame.NextStep, error) {
				_ = opsutil.Bind(f, ontoName, msg.Data, ontoAt, ontoLocally, false)
				return frame.OnPopping, nil
			},
		})
		return frame.OnPopping, nil
	}

	return frame.OnPopping, nil
}

// resolveSource reads the child program's text. The `from` fetch is
// deliberately synchronous here — unlike <init from=...>, <load>'s own
// async story is the *spawned coroutine*, not the source fetch, so
// there is no useful undefined-then-rebind state to expose while the
// program text itself is still in flight.
func (o *Ops) resolveSource(f *frame.Frame, co *coroutine.Coroutine) (string, error) {
	if uri, hasFrom := opsutil.AttrString(f, "from"); hasFrom {
		if co.Fetcher == nil {
			return "", runtime.NewError(runtime.ErrNotSupported, "load", nil)
		}
		type fetched struct {
			body []byte
			err  error
		}
		result := make(chan fetched, 1)
		_, err := co.Fetcher.LoadAsync(uri, fetch.MethodGet, nil, func(res fetch.Result, ferr error) {
			if ferr != nil {
				result <- fetched{err: ferr}
				return
			}
			defer res.Body.Close()
			data, rerr := io.ReadAll(res.Body)
			result <- fetched{body: data, err: rerr}
		})
		if err != nil {
			return "", err
		}
		r := <-result
		if r.err != nil {
			return "", runtime.NewError(runtime.ErrRequestFailed, "load", r.err)
		}
		return string(r.body), nil
	}
	if on, hasOn := opsutil.AttrString(f, "on"); hasOn {
		return on, nil
	}
	return f.Pos.Content, nil
}

func (o *Ops) SelectChild(f *frame.Frame) (*vdom.Node, error) { return nil, nil }

func (o *Ops) Rerun(f *frame.Frame) (frame.NextStep, error) { return frame.OnPopping, nil }

func (o *Ops) OnPopping(f *frame.Frame) error { return nil }
