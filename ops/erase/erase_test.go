package erase_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hvml-run/hvmi/coroutine"
	"github.com/hvml-run/hvmi/edom"
	"github.com/hvml-run/hvmi/frame"
	"github.com/hvml-run/hvmi/ops/erase"
	"github.com/hvml-run/hvmi/runtime"
	"github.com/hvml-run/hvmi/variant"
	"github.com/hvml-run/hvmi/vdom"
)

func newTestCoroutine(t *testing.T, root *vdom.Element) *coroutine.Coroutine {
	t.Helper()
	vd := &vdom.Document{Root: root}
	return coroutine.New(runtime.Atom(1), vd, nil)
}

func TestAfterPushedErasesElementHandle(t *testing.T) {
	root := &vdom.Element{TagName: "hvml"}
	co := newTestCoroutine(t, root)

	h, err := co.EDOM.NewElement(co.EDOM.Root(), edom.Append, "div", false)
	require.NoError(t, err)
	co.Scope.Document().Bind("target", variant.NewNative(h, variant.NativeMethods{}))

	elem := &vdom.Element{TagName: "erase", Attributes: []vdom.Attribute{
		{Key: "on", Op: vdom.OpAssign, Value: "$target"},
	}}
	f := co.Push(elem, erase.New())

	next, err := f.Ops.AfterPushed(f)
	require.NoError(t, err)
	require.Equal(t, frame.OnPopping, next)

	require.Empty(t, co.EDOM.Children(co.EDOM.Root()))
}

func TestAfterPushedRemovesObjectKey(t *testing.T) {
	root := &vdom.Element{TagName: "hvml"}
	co := newTestCoroutine(t, root)

	obj := variant.NewObject()
	require.NoError(t, obj.Set("a", variant.NewNumber(1)))
	co.Scope.Document().Bind("obj", obj)

	elem := &vdom.Element{TagName: "erase", Attributes: []vdom.Attribute{
		{Key: "on", Op: vdom.OpAssign, Value: "$obj"},
		{Key: "at", Op: vdom.OpAssign, Value: "a"},
	}}
	f := co.Push(elem, erase.New())

	_, err := f.Ops.AfterPushed(f)
	require.NoError(t, err)
	require.Nil(t, obj.Get("a"))
}

func TestAfterPushedRequiresOnAttribute(t *testing.T) {
	root := &vdom.Element{TagName: "hvml"}
	co := newTestCoroutine(t, root)

	elem := &vdom.Element{TagName: "erase"}
	f := co.Push(elem, erase.New())

	_, err := f.Ops.AfterPushed(f)
	require.Error(t, err)
}
