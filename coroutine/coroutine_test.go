package coroutine

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hvml-run/hvmi/frame"
	"github.com/hvml-run/hvmi/reqid"
	"github.com/hvml-run/hvmi/vdom"
)

type noopOps struct{}

func (noopOps) AfterPushed(f *frame.Frame) (frame.NextStep, error) { return frame.AfterPushed, nil }
func (noopOps) SelectChild(f *frame.Frame) (*vdom.Node, error)     { return nil, nil }
func (noopOps) Rerun(f *frame.Frame) (frame.NextStep, error)       { return frame.AfterPushed, nil }
func (noopOps) OnPopping(f *frame.Frame) error                     { return nil }

func newTestCoroutine(t *testing.T) *Coroutine {
	t.Helper()
	root := &vdom.Element{TagName: "hvml"}
	doc := &vdom.Document{Root: root}
	return New(1, doc, nil)
}

func TestNewCoroutineStartsReady(t *testing.T) {
	c := newTestCoroutine(t)
	require.Equal(t, Ready, c.State())
	require.False(t, c.Exited())
	require.False(t, c.Runnable(), "no frames pushed yet")
}

func TestPushPopStack(t *testing.T) {
	c := newTestCoroutine(t)
	el := &vdom.Element{TagName: "init"}
	f := c.Push(el, noopOps{})
	require.Same(t, f, c.Top())
	require.True(t, c.Runnable())

	c.Pop()
	require.Nil(t, c.Top())
}

func TestEnqueueDequeueFIFO(t *testing.T) {
	c := newTestCoroutine(t)
	c.queue = append(c.queue, Message{EventName: "change", SubName: "a"})
	c.Enqueue(Message{EventName: "change", SubName: "b"})

	msg, ok := c.Dequeue()
	require.True(t, ok)
	require.Equal(t, "a", msg.SubName)

	msg, ok = c.Dequeue()
	require.True(t, ok)
	require.Equal(t, "b", msg.SubName)

	_, ok = c.Dequeue()
	require.False(t, ok)
}

func TestDequeuePrioritizesException(t *testing.T) {
	c := newTestCoroutine(t)
	c.Enqueue(Message{EventName: "change"})
	c.Enqueue(Message{EventName: "exception"})

	msg, ok := c.Dequeue()
	require.True(t, ok)
	require.Equal(t, "exception", msg.EventName)
}

func TestEnqueueReduceOptWhenStopped(t *testing.T) {
	c := newTestCoroutine(t)
	id := reqid.New(reqid.Elements, "r1", "1", "btn")
	c.Yield(&EventHandler{RequestID: id})
	require.Equal(t, Stopped, c.State())

	c.Enqueue(Message{EventName: "click", RequestID: id})
	c.Enqueue(Message{EventName: "click", RequestID: id, ReduceOpt: Ignore})
	require.Len(t, c.queue, 1, "duplicate with Ignore must not be queued again")

	c.Enqueue(Message{EventName: "click", RequestID: id, SubName: "overlaid", ReduceOpt: Overlay})
	require.Len(t, c.queue, 1)
	require.Equal(t, "overlaid", c.queue[0].SubName)
}

func TestYieldAndResumeLifecycle(t *testing.T) {
	c := newTestCoroutine(t)
	h := &EventHandler{RequestID: reqid.New(reqid.Elements, "", "", "x")}
	c.Yield(h)
	require.Equal(t, Stopped, c.State())
	require.Contains(t, c.Handlers(), h)
	require.Equal(t, h.RequestID, c.WaitRequestID)

	c.RemoveHandler(h)
	require.Empty(t, c.Handlers())

	c.Resume()
	require.Equal(t, Running, c.State())
	require.True(t, c.WaitRequestID.IsZero())
}

func TestMarkObservingAndExit(t *testing.T) {
	c := newTestCoroutine(t)
	c.MarkObserving()
	require.Equal(t, Observing, c.State())
	require.Equal(t, ObservingStage, c.Stage)

	c.Exit(nil)
	require.True(t, c.Exited())
	require.Equal(t, Exited, c.State())
}

func TestLastScopeStack(t *testing.T) {
	c := newTestCoroutine(t)
	a := &vdom.Element{TagName: "a"}
	b := &vdom.Element{TagName: "b"}
	c.PushLastScope(a)
	c.PushLastScope(b)
	require.Equal(t, []*vdom.Element{a, b}, c.LastScopes)

	c.PopLastScope()
	require.Equal(t, []*vdom.Element{a}, c.LastScopes)
}
