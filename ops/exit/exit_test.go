package exit_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hvml-run/hvmi/coroutine"
	"github.com/hvml-run/hvmi/frame"
	"github.com/hvml-run/hvmi/ops/exit"
	"github.com/hvml-run/hvmi/runtime"
	"github.com/hvml-run/hvmi/variant"
	"github.com/hvml-run/hvmi/vdom"
)

func newTestCoroutine(t *testing.T, root *vdom.Element) *coroutine.Coroutine {
	t.Helper()
	vd := &vdom.Document{Root: root}
	return coroutine.New(runtime.Atom(1), vd, nil)
}

func TestAfterPushedSetsResultFromWith(t *testing.T) {
	root := &vdom.Element{TagName: "exit", Attributes: []vdom.Attribute{
		{Key: "with", Op: vdom.OpAssign, Value: "42"},
	}}
	co := newTestCoroutine(t, root)
	f := co.Push(root, exit.New())

	next, err := f.Ops.AfterPushed(f)
	require.NoError(t, err)
	require.Equal(t, frame.OnPopping, next)

	require.NotNil(t, co.Result)
	require.Equal(t, float64(42), co.Result.AsNumber())
	require.Nil(t, co.Top())
}

func TestAfterPushedFallsBackToQuestionSymbol(t *testing.T) {
	root := &vdom.Element{TagName: "exit"}
	co := newTestCoroutine(t, root)
	f := co.Push(root, exit.New())
	f.Symbols.Question = variant.NewString("from-question")

	_, err := f.Ops.AfterPushed(f)
	require.NoError(t, err)
	require.Equal(t, "from-question", co.Result.AsString())
}

func TestAfterPushedDefaultsToUndefined(t *testing.T) {
	root := &vdom.Element{TagName: "exit"}
	co := newTestCoroutine(t, root)
	f := co.Push(root, exit.New())

	_, err := f.Ops.AfterPushed(f)
	require.NoError(t, err)
	require.Equal(t, "undefined", co.Result.Kind().String())
}

func TestAfterPushedUnwindsEntireStack(t *testing.T) {
	root := &vdom.Element{TagName: "hvml"}
	child := &vdom.Element{TagName: "exit", Parent: root}
	co := newTestCoroutine(t, root)
	co.Push(root, exit.New())
	f := co.Push(child, exit.New())
	require.NotNil(t, co.Top())

	_, err := f.Ops.AfterPushed(f)
	require.NoError(t, err)
	require.Nil(t, co.Top())
}
