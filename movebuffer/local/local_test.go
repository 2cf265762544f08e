package local

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hvml-run/hvmi/coroutine"
	"github.com/hvml-run/hvmi/movebuffer"
	"github.com/hvml-run/hvmi/runtime"
)

func TestNewFallsBackToDefaultMax(t *testing.T) {
	b := New(0)
	require.Equal(t, movebuffer.DefaultMaxMovingMsgs, b.maxPerEndpt)

	b = New(-5)
	require.Equal(t, movebuffer.DefaultMaxMovingMsgs, b.maxPerEndpt)

	b = New(3)
	require.Equal(t, 3, b.maxPerEndpt)
}

func TestMoveDispatchesToSubscribers(t *testing.T) {
	b := New(4)
	endpoint := runtime.Atom(1)

	var got []coroutine.Message
	b.Subscribe(endpoint, func(msg coroutine.Message) { got = append(got, msg) })

	require.NoError(t, b.Move(endpoint, coroutine.Message{EventName: "hello"}))
	require.Len(t, got, 1)
	require.Equal(t, "hello", got[0].EventName)
}

func TestMoveFanOutToMultipleSubscribers(t *testing.T) {
	b := New(4)
	endpoint := runtime.Atom(2)

	var mu sync.Mutex
	count := 0
	for i := 0; i < 3; i++ {
		b.Subscribe(endpoint, func(coroutine.Message) {
			mu.Lock()
			count++
			mu.Unlock()
		})
	}

	require.NoError(t, b.Move(endpoint, coroutine.Message{}))
	require.Equal(t, 3, count)
}

func TestMoveTooManyWhenBufferSaturated(t *testing.T) {
	b := New(1)
	endpoint := runtime.Atom(3)

	release := make(chan struct{})
	started := make(chan struct{})
	b.Subscribe(endpoint, func(coroutine.Message) {
		close(started)
		<-release
	})

	done := make(chan error, 1)
	go func() { done <- b.Move(endpoint, coroutine.Message{}) }()
	<-started

	err := b.Move(endpoint, coroutine.Message{})
	require.ErrorIs(t, err, movebuffer.ErrTooMany)

	close(release)
	require.NoError(t, <-done)
}

func TestClose(t *testing.T) {
	b := New(1)
	require.NoError(t, b.Close())
}
