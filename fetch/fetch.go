// Package fetch implements the Fetcher interface from spec.md §6/§4.7:
// load_async/cancel over a URI, converting completion into an event
// posted to the owning coroutine. SPEC_FULL.md §4.7 widens the
// original HTTP/file-only scope to the scheme table below, each
// backed by a real transport library from the example pack rather
// than a hand-rolled client.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"sync"
	"sync/atomic"

	"github.com/hvml-run/hvmi/runtime"
)

// Method mirrors spec.md §6's load_async method enum.
type Method int

const (
	MethodLoad Method = iota
	MethodGet
	MethodPost
	MethodDelete
)

// Result is delivered to on_complete per spec.md §6: (ret_code,
// mime_type, body-stream).
type Result struct {
	RetCode  int
	MimeType string
	Body     io.ReadCloser
}

// OnComplete is the fetcher's completion callback.
type OnComplete func(res Result, err error)

// Transport fetches one URI and scheme; Fetcher dispatches to the
// Transport registered for a URL's scheme.
type Transport interface {
	Fetch(ctx context.Context, u *url.URL, method Method, params *runtime.Atom) (Result, error)
}

// request tracks one outstanding fetch so Cancel can invalidate it,
// per spec.md §4.7's {coroutine, callback, sync_id} record and §5's
// "cooperative" cancel semantics.
type request struct {
	cancel    context.CancelFunc
	cancelled atomic.Bool
}

// Fetcher implements load_async/cancel/is_init, dispatching by URI
// scheme to a registered Transport.
type Fetcher struct {
	mu         sync.Mutex
	transports map[string]Transport
	requests   map[string]*request
	nextID     uint64
}

// New constructs a Fetcher with no transports registered; callers wire
// up scheme handlers with Register (see http.go, file.go, git.go,
// sftp.go, s3.go for the concrete ones SPEC_FULL.md §4.7 names).
func New() *Fetcher {
	return &Fetcher{
		transports: make(map[string]Transport),
		requests:   make(map[string]*request),
	}
}

// Register binds scheme (e.g. "http", "https", "file", "git", "sftp",
// "s3") to a Transport.
func (f *Fetcher) Register(scheme string, t Transport) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.transports[scheme] = t
}

// IsInit reports whether at least one transport is registered.
func (f *Fetcher) IsInit() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.transports) > 0
}

// LoadAsync implements spec.md §6's load_async(uri, method, params,
// on_complete, ctxt) -> request-id. The returned id can be passed to
// Cancel.
func (f *Fetcher) LoadAsync(uri string, method Method, params *runtime.Atom, onComplete OnComplete) (string, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return "", runtime.NewError(runtime.ErrInvalidValue, "", err)
	}
	f.mu.Lock()
	t, ok := f.transports[u.Scheme]
	if !ok {
		f.mu.Unlock()
		return "", runtime.NewError(runtime.ErrNotSupported, "", fmt.Errorf("fetch: no transport registered for scheme %q", u.Scheme))
	}
	f.nextID++
	id := fmt.Sprintf("fetch-%d", f.nextID)
	ctx, cancel := context.WithCancel(context.Background())
	req := &request{cancel: cancel}
	f.requests[id] = req
	f.mu.Unlock()

	go func() {
		res, ferr := t.Fetch(ctx, u, method, params)
		f.mu.Lock()
		_, stillLive := f.requests[id]
		delete(f.requests, id)
		f.mu.Unlock()
		if !stillLive || req.cancelled.Load() {
			// Late callback after cancel: spec.md §5 says cancel "ignores
			// late callbacks".
			return
		}
		if ferr == nil && res.RetCode != 0 && res.RetCode/100 != 2 {
			ferr = runtime.NewError(runtime.ErrRequestFailed, "", fmt.Errorf("fetch: %s returned status %d", uri, res.RetCode))
		}
		onComplete(res, ferr)
	}()
	return id, nil
}

// Cancel implements spec.md §6's cancel(request-id); cooperative per
// §5 — it invalidates the id and lets the in-flight goroutine's
// callback be dropped rather than interrupting I/O forcibly.
func (f *Fetcher) Cancel(id string) {
	f.mu.Lock()
	req, ok := f.requests[id]
	delete(f.requests, id)
	f.mu.Unlock()
	if ok {
		req.cancelled.Store(true)
		req.cancel()
	}
}
