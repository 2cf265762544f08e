// Package call implements <call>'s operation quad from spec.md §4.4.
// Two semantics, selected by `concurrently`/`within`:
//
//   - in-process, same runner, synchronous (the default): the callee's
//     subtree is pushed directly onto this coroutine's own stack,
//     beneath the call frame, and the call completes when it pops.
//   - concurrent or cross-runner: a new coroutine is spawned (on this
//     runner or the one named by `within`), the call binds its
//     request-id as the result, and — unless `asynchronously` is
//     given — yields until the child posts call-state:success|except.
package call

import (
	"fmt"

	"github.com/hvml-run/hvmi/coroutine"
	"github.com/hvml-run/hvmi/frame"
	"github.com/hvml-run/hvmi/ops/define"
	"github.com/hvml-run/hvmi/ops/opsutil"
	"github.com/hvml-run/hvmi/reqid"
	"github.com/hvml-run/hvmi/runtime"
	"github.com/hvml-run/hvmi/scheduler"
	"github.com/hvml-run/hvmi/variant"
	"github.com/hvml-run/hvmi/vdom"
)

// OpsTable is the same narrow lookup scheduler.OpsTable exposes,
// accepted here too so ops/call can push a callee's subtree with the
// right operation quad without importing the concrete ops.Table (which
// imports this package, and would otherwise cycle).
type OpsTable interface {
	Lookup(tagID runtime.Atom) (frame.Ops, error)
}

type ctxt struct {
	callee *frame.Frame // set for the in-process/same-stack path
	pend   bool
}

func (ctxt) Destroy() {}

// Ops needs the dispatch table to push a callee subtree with its own
// operation quad; New is called once per table build with that table.
type Ops struct {
	ops OpsTable
}

func New(ops OpsTable) *Ops { return &Ops{ops: ops} }

func (o *Ops) AfterPushed(f *frame.Frame) (frame.NextStep, error) {
	if err := opsutil.EvalAttrs(f); err != nil {
		return 0, err
	}
	co := opsutil.Co(f)

	onVal, ok := opsutil.Attr(f, "on")
	if !ok || onVal.Kind() != variant.Native {
		return 0, runtime.NewError(runtime.ErrInvalidValue, "call",
			fmt.Errorf("'on' must resolve to a <define>-bound variable"))
	}
	def, ok := onVal.AsNative().Entity.(*define.Definition)
	if !ok {
		return 0, runtime.NewError(runtime.ErrWrongDataType, "call", nil)
	}

	withVal, hasWith := opsutil.Attr(f, "with")
	if !hasWith {
		withVal = variant.NewUndefined()
	}
	within, _ := opsutil.AttrString(f, "within")
	_, concurrently := f.Pos.FindAttr("concurrently")
	_, async := f.Pos.FindAttr("asynchronously")
	if !async {
		_, async = f.Pos.FindAttr("async")
	}

	if !concurrently && (within == "" || within == "_self") {
		childOps, err := o.ops.Lookup(def.Subtree.GetTagID())
		if err != nil {
			return 0, err
		}
		callee := co.Push(def.Subtree, childOps)
		callee.Symbols.Input = withVal
		callee.Symbols.Colon = withVal
		f.Ctxt = &ctxt{callee: callee}
		return frame.OnPopping, nil
	}

	return o.SpawnChild(f, co, def, withVal, within, !async)
}

// SpawnChild carries the cross-runner/concurrent path: spawn def as a
// new coroutine, bind its request-id, and (if sync) yield for its
// call-state completion. Exported so ops/request — always cross-
// runner/async — can reuse it rather than duplicating the spawn/bind/
// yield sequence.
func (o *Ops) SpawnChild(f *frame.Frame, co *coroutine.Coroutine, def *define.Definition, withVal *variant.Value, within string, sync bool) (frame.NextStep, error) {
	if co.RT == nil {
		return 0, runtime.NewError(runtime.ErrNotSupported, "call", fmt.Errorf("no runtime bound to coroutine"))
	}
	runnerID := within
	if runnerID == "" || runnerID == "_self" {
		runnerID = co.RunnerID
	}
	runnerAny, ok := co.RT.Runner(co.RT.Atoms.Intern(runnerID))
	if !ok {
		return 0, runtime.NewError(runtime.ErrEntityNotFound, "call", fmt.Errorf("no runner %q", runnerID))
	}
	runner, ok := runnerAny.(*scheduler.Runner)
	if !ok {
		return 0, runtime.NewError(runtime.ErrInternalFailure, "call", nil)
	}

	childDoc := &vdom.Document{Root: def.Subtree}
	child, err := runner.Spawn(childDoc, co)
	if err != nil {
		return 0, err
	}
	if top := child.Top(); top != nil {
		top.Symbols.Input = withVal
		top.Symbols.Colon = withVal
	}

	requestID := reqid.New(reqid.Crtn, runnerID, fmt.Sprint(child.CID), "")
	f.Symbols.Question = variant.NewString(requestID.String())

	name, hasName := opsutil.AttrString(f, "as")
	at, _ := opsutil.AttrString(f, "at")
	_, locally := f.Pos.FindAttr("locally")
	if hasName {
		if berr := opsutil.Bind(f, name, f.Symbols.Question, at, locally, false); berr != nil {
			return 0, berr
		}
	}

	if !sync {
		return frame.OnPopping, nil
	}

	co.Yield(&coroutine.EventHandler{
		Type:    "call-state",
		SubType: "success",
		IsMatch: func(msg coroutine.Message) bool { return msg.RequestID.Equal(requestID) },
		Handle: func(msg coroutine.Message) (frame.NextStep, error) {
			f.Symbols.Question = msg.Data
			return frame.OnPopping, nil
		},
	})
	co.Yield(&coroutine.EventHandler{
		Type:    "call-state",
		SubType: "except",
		IsMatch: func(msg coroutine.Message) bool { return msg.RequestID.Equal(requestID) },
		Handle: func(msg coroutine.Message) (frame.NextStep, error) {
			return 0, runtime.NewError(runtime.ErrRequestFailed, "call", fmt.Errorf("callee raised %s", msg.EventSource))
		},
	})
	return frame.OnPopping, nil
}

func (o *Ops) SelectChild(f *frame.Frame) (*vdom.Node, error) { return nil, nil }

func (o *Ops) Rerun(f *frame.Frame) (frame.NextStep, error) { return frame.OnPopping, nil }

func (o *Ops) OnPopping(f *frame.Frame) error {
	c, ok := f.Ctxt.(*ctxt)
	if !ok || c.callee == nil {
		return nil
	}
	result := c.callee.Symbols.Question
	if result == nil {
		result = variant.NewUndefined()
	}
	f.Symbols.Question = result

	name, hasName := opsutil.AttrString(f, "as")
	if hasName {
		at, _ := opsutil.AttrString(f, "at")
		_, locally := f.Pos.FindAttr("locally")
		return opsutil.Bind(f, name, result, at, locally, false)
	}
	return nil
}
