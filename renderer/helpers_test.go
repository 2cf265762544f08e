package renderer

import (
	"context"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/hvml-run/hvmi/frame"
	"github.com/hvml-run/hvmi/runtime"
	"github.com/hvml-run/hvmi/scheduler"
	"github.com/hvml-run/hvmi/vdom"
)

// contextWithRouteCtx attaches a chi route context carrying URL params
// so handlers under test can be invoked directly, without going
// through the full chi router.
func contextWithRouteCtx(ctx context.Context, rctx *chi.Context) context.Context {
	return context.WithValue(ctx, chi.RouteCtxKey, rctx)
}

type stubOps struct{}

func (stubOps) AfterPushed(f *frame.Frame) (frame.NextStep, error) { return frame.AfterPushed, nil }
func (stubOps) SelectChild(f *frame.Frame) (*vdom.Node, error)     { return nil, nil }
func (stubOps) Rerun(f *frame.Frame) (frame.NextStep, error)       { return frame.AfterPushed, nil }
func (stubOps) OnPopping(f *frame.Frame) error                     { return nil }

type stubOpsTable struct{}

func (stubOpsTable) Lookup(tagID runtime.Atom) (frame.Ops, error) { return stubOps{}, nil }

// newTestServer wires one Runner hosting one spawned coroutine, so
// tests can drive the HTTP surface without a real HVML program loader.
func newTestServer(t *testing.T) (*Server, *scheduler.Runner, string) {
	t.Helper()
	rt := runtime.New()
	run := scheduler.NewRunner("main", rt, stubOpsTable{}, nil, nil)

	root := &vdom.Element{TagName: "hvml"}
	vd := &vdom.Document{Root: root}
	co, err := run.Spawn(vd, nil)
	if err != nil {
		t.Fatalf("spawn: %v", err)
	}

	srv := NewServer(nil, rt, nil, nil)
	srv.RegisterRunner("main", run)
	cidStr := rt.Atoms.String(co.CID)
	return srv, run, cidStr
}
