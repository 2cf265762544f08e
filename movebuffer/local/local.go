// Package local implements movebuffer.Bus in process: Move calls each
// subscriber's handler synchronously on the caller's goroutine. It is
// used when every runner lives in the same OS process (the common case
// for the CLI's single-binary "run" mode).
package local

import (
	"sync"

	"github.com/hvml-run/hvmi/coroutine"
	"github.com/hvml-run/hvmi/movebuffer"
	"github.com/hvml-run/hvmi/runtime"
)

// Bus delivers each moved message to every subscriber registered for
// its endpoint, bounding the number of Move calls in flight per
// endpoint.
type Bus struct {
	mu          sync.Mutex
	maxPerEndpt int
	pending     map[runtime.Atom]int
	subscribers map[runtime.Atom][]func(coroutine.Message)
}

// New constructs a local bus bounding each endpoint's outstanding
// message count at max (movebuffer.DefaultMaxMovingMsgs if max <= 0).
func New(max int) *Bus {
	if max <= 0 {
		max = movebuffer.DefaultMaxMovingMsgs
	}
	return &Bus{
		maxPerEndpt: max,
		pending:     make(map[runtime.Atom]int),
		subscribers: make(map[runtime.Atom][]func(coroutine.Message)),
	}
}

func (b *Bus) Move(endpoint runtime.Atom, msg coroutine.Message) error {
	b.mu.Lock()
	if b.pending[endpoint] >= b.maxPerEndpt {
		b.mu.Unlock()
		return movebuffer.ErrTooMany
	}
	b.pending[endpoint]++
	handlers := append([]func(coroutine.Message){}, b.subscribers[endpoint]...)
	b.mu.Unlock()

	for _, h := range handlers {
		h(msg)
	}

	b.mu.Lock()
	b.pending[endpoint]--
	b.mu.Unlock()
	return nil
}

func (b *Bus) Subscribe(endpoint runtime.Atom, handler func(coroutine.Message)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers[endpoint] = append(b.subscribers[endpoint], handler)
}

func (b *Bus) Close() error { return nil }
