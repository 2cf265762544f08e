// Package movebuffer defines the inter-runner message-passing
// abstraction from spec.md §5/§6: payload variants are moved
// (serialized and reconstructed in the target runner's heap), not
// shared. movebuffer/local and movebuffer/redis provide the two
// backends SPEC_FULL.md §5 names.
package movebuffer

import (
	"fmt"

	"github.com/hvml-run/hvmi/coroutine"
	"github.com/hvml-run/hvmi/runtime"
)

// Bus is the move-buffer interface: thread_move_msg /
// thread_retrieve_msg / thread_take_away_msg from spec.md §6, folded
// into a push/subscribe shape idiomatic for Go.
type Bus interface {
	// Move enqueues msg for endpoint, bounded by MaxMovingMsgs;
	// returns ErrTooMany when the endpoint's buffer is full.
	Move(endpoint runtime.Atom, msg coroutine.Message) error
	// Subscribe registers handler to be invoked for every message
	// moved to endpoint from this point forward.
	Subscribe(endpoint runtime.Atom, handler func(coroutine.Message))
	// Close releases any resources the bus holds (connections,
	// goroutines).
	Close() error
}

// ErrTooMany is returned by Move when an endpoint's buffer is at
// MaxMovingMsgs, mirroring spec.md §6's PURC_ERROR_TOO_MANY.
var ErrTooMany = fmt.Errorf("movebuffer: %s", runtime.ErrTooMany)

// DefaultMaxMovingMsgs bounds a single endpoint's pending queue absent
// an explicit override, per spec.md §6's max_moving_msgs.
const DefaultMaxMovingMsgs = 1024
