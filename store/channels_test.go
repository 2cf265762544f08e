package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hvml-run/hvmi/coroutine"
	"github.com/hvml-run/hvmi/variant"
)

func openTestStore(t *testing.T) *ChannelStore {
	t.Helper()
	path := filepath.Join(t.TempDir(), "channels.db")
	s, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestEnsureChannelIsIdempotent(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.EnsureChannel("inbox"))
	require.NoError(t, s.EnsureChannel("inbox"))

	names, err := s.Channels()
	require.NoError(t, err)
	require.Equal(t, []string{"inbox"}, names)
}

func TestPushPopFIFO(t *testing.T) {
	s := openTestStore(t)

	require.NoError(t, s.Push("inbox", coroutine.Message{EventName: "message", Data: variant.NewString("first")}))
	require.NoError(t, s.Push("inbox", coroutine.Message{EventName: "message", Data: variant.NewString("second")}))

	depth, err := s.Depth("inbox")
	require.NoError(t, err)
	require.Equal(t, 2, depth)

	msg, ok, err := s.Pop("inbox")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "message", msg.EventName)
	require.Equal(t, "first", msg.Data.AsString())

	msg, ok, err = s.Pop("inbox")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "second", msg.Data.AsString())

	_, ok, err = s.Pop("inbox")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestPushNilDataDefaultsToUndefined(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.Push("inbox", coroutine.Message{EventName: "ping"}))

	msg, ok, err := s.Pop("inbox")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, variant.Undefined, msg.Data.Kind())
}

func TestPersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "channels.db")
	s1, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s1.Push("inbox", coroutine.Message{EventName: "durable", Data: variant.NewString("still here")}))
	require.NoError(t, s1.Close())

	s2, err := Open(path)
	require.NoError(t, err)
	defer s2.Close()

	msg, ok, err := s2.Pop("inbox")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "still here", msg.Data.AsString())
}
