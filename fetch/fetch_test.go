package fetch

import (
	"context"
	"io"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/hvml-run/hvmi/runtime"
)

type stubTransport struct {
	result Result
	err    error
	delay  time.Duration
}

func (s stubTransport) Fetch(ctx context.Context, u *url.URL, method Method, params *runtime.Atom) (Result, error) {
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return Result{}, ctx.Err()
		}
	}
	return s.result, s.err
}

func TestIsInit(t *testing.T) {
	f := New()
	require.False(t, f.IsInit())
	f.Register("file", stubTransport{})
	require.True(t, f.IsInit())
}

func TestLoadAsyncUnknownScheme(t *testing.T) {
	f := New()
	_, err := f.LoadAsync("ftp://example.com/x", MethodGet, nil, func(Result, error) {})
	require.Error(t, err)
}

func TestLoadAsyncInvalidURI(t *testing.T) {
	f := New()
	_, err := f.LoadAsync("://bad", MethodGet, nil, func(Result, error) {})
	require.Error(t, err)
}

func TestLoadAsyncDeliversResult(t *testing.T) {
	f := New()
	f.Register("http", stubTransport{result: Result{RetCode: 200, MimeType: "text/plain", Body: io.NopCloser(strings.NewReader("hi"))}})

	var mu sync.Mutex
	var got Result
	var gotErr error
	done := make(chan struct{})
	_, err := f.LoadAsync("http://example.com/x", MethodGet, nil, func(res Result, ferr error) {
		mu.Lock()
		got, gotErr = res, ferr
		mu.Unlock()
		close(done)
	})
	require.NoError(t, err)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("on_complete never fired")
	}
	require.NoError(t, gotErr)
	require.Equal(t, 200, got.RetCode)
}

func TestLoadAsyncNonSuccessStatusBecomesError(t *testing.T) {
	f := New()
	f.Register("http", stubTransport{result: Result{RetCode: 404}})

	done := make(chan error, 1)
	_, err := f.LoadAsync("http://example.com/missing", MethodGet, nil, func(res Result, ferr error) {
		done <- ferr
	})
	require.NoError(t, err)

	select {
	case ferr := <-done:
		require.Error(t, ferr)
	case <-time.After(time.Second):
		t.Fatal("on_complete never fired")
	}
}

func TestCancelDropsLateCallback(t *testing.T) {
	f := New()
	f.Register("http", stubTransport{result: Result{RetCode: 200}, delay: 50 * time.Millisecond})

	called := make(chan struct{}, 1)
	id, err := f.LoadAsync("http://example.com/slow", MethodGet, nil, func(Result, error) {
		called <- struct{}{}
	})
	require.NoError(t, err)

	f.Cancel(id)

	select {
	case <-called:
		t.Fatal("on_complete fired after cancel")
	case <-time.After(150 * time.Millisecond):
	}
}
