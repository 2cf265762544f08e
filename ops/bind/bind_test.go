package bind_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hvml-run/hvmi/coroutine"
	"github.com/hvml-run/hvmi/frame"
	"github.com/hvml-run/hvmi/ops/bind"
	"github.com/hvml-run/hvmi/runtime"
	"github.com/hvml-run/hvmi/vdom"
)

func newTestCoroutine(t *testing.T, root *vdom.Element) *coroutine.Coroutine {
	t.Helper()
	vd := &vdom.Document{Root: root}
	return coroutine.New(runtime.Atom(1), vd, nil)
}

func TestAfterPushedBindsDocumentScopeByDefault(t *testing.T) {
	root := &vdom.Element{TagName: "hvml", Attributes: []vdom.Attribute{
		{Key: "as", Op: vdom.OpAssign, Value: "x"},
		{Key: "on", Op: vdom.OpAssign, Value: "7"},
	}}
	co := newTestCoroutine(t, root)
	f := co.Push(root, bind.New())

	next, err := f.Ops.AfterPushed(f)
	require.NoError(t, err)
	require.Equal(t, frame.OnPopping, next)

	v, ok := co.Scope.Document().Lookup("x")
	require.True(t, ok)
	require.Equal(t, float64(7), v.AsNumber())
}

func TestAfterPushedUsesElementContentWhenOnMissing(t *testing.T) {
	root := &vdom.Element{TagName: "hvml", Attributes: []vdom.Attribute{
		{Key: "as", Op: vdom.OpAssign, Value: "greeting"},
	}, Content: "\"hello\""}
	co := newTestCoroutine(t, root)
	f := co.Push(root, bind.New())

	_, err := f.Ops.AfterPushed(f)
	require.NoError(t, err)

	v, ok := co.Scope.Document().Lookup("greeting")
	require.True(t, ok)
	require.Equal(t, "hello", v.AsString())
}

func TestAfterPushedRequiresAsAttribute(t *testing.T) {
	root := &vdom.Element{TagName: "hvml", Attributes: []vdom.Attribute{
		{Key: "on", Op: vdom.OpAssign, Value: "1"},
	}}
	co := newTestCoroutine(t, root)
	f := co.Push(root, bind.New())

	_, err := f.Ops.AfterPushed(f)
	require.Error(t, err)
}

func TestAfterPushedLocallyBindsFrameTemp(t *testing.T) {
	root := &vdom.Element{TagName: "hvml", Attributes: []vdom.Attribute{
		{Key: "as", Op: vdom.OpAssign, Value: "tmp"},
		{Key: "on", Op: vdom.OpAssign, Value: "9"},
		{Key: "locally", Op: vdom.OpAssign, Value: "undefined"},
	}}
	co := newTestCoroutine(t, root)
	f := co.Push(root, bind.New())

	_, err := f.Ops.AfterPushed(f)
	require.NoError(t, err)

	require.NotNil(t, f.FrameTemp)
	v, ok := f.FrameTemp.Lookup("tmp")
	require.True(t, ok)
	require.Equal(t, float64(9), v.AsNumber())

	_, docHasIt := co.Scope.Document().Lookup("tmp")
	require.False(t, docHasIt)
}

func TestAfterPushedUniquelyRejectsDuplicate(t *testing.T) {
	root := &vdom.Element{TagName: "hvml", Attributes: []vdom.Attribute{
		{Key: "as", Op: vdom.OpAssign, Value: "dup"},
		{Key: "on", Op: vdom.OpAssign, Value: "1"},
		{Key: "uniquely", Op: vdom.OpAssign, Value: "undefined"},
	}}
	co := newTestCoroutine(t, root)

	f1 := co.Push(root, bind.New())
	_, err := f1.Ops.AfterPushed(f1)
	require.NoError(t, err)
	co.Pop()

	f2 := co.Push(root, bind.New())
	_, err = f2.Ops.AfterPushed(f2)
	require.Error(t, err)
}
