// Package redis implements movebuffer.Bus over redis/go-redis pub/sub,
// used when runners are spread across OS processes or hosts. Grounded
// on the teacher's own use of redis/go-redis as a runtime backend for
// its distributed step executors.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	goredis "github.com/redis/go-redis/v9"

	"github.com/hvml-run/hvmi/coroutine"
	"github.com/hvml-run/hvmi/movebuffer"
	"github.com/hvml-run/hvmi/runtime"
	"github.com/hvml-run/hvmi/variant"
)

// wireMessage is the JSON envelope moved over a channel; coroutine.Message
// itself is not JSON-tagged, so the bus mirrors a subset of its fields.
// RequestID travels only in its String form and Subscribe does not
// restore it; ElementValue and ReduceOpt are not carried at all.
type wireMessage struct {
	EventSource  string `json:"event_source"`
	EventName    string `json:"event_name"`
	SubName      string `json:"sub_name"`
	DataEJSON    string `json:"data_ejson,omitempty"`
	RequestID    string `json:"request_id"`
}

// Bus publishes/subscribes on one Redis channel per endpoint atom,
// namespaced under a caller-supplied prefix so multiple HVMI
// deployments can share a Redis instance.
type Bus struct {
	client *goredis.Client
	prefix string

	mu     sync.Mutex
	cancel map[runtime.Atom]context.CancelFunc
	max    int
}

// New constructs a Bus against an already-configured *redis.Client.
// maxMovingMsgs is recorded but not enforced: Move publishes every
// message and never returns movebuffer.ErrTooMany.
func New(client *goredis.Client, channelPrefix string, maxMovingMsgs int) *Bus {
	if maxMovingMsgs <= 0 {
		maxMovingMsgs = movebuffer.DefaultMaxMovingMsgs
	}
	return &Bus{
		client: client,
		prefix: channelPrefix,
		cancel: make(map[runtime.Atom]context.CancelFunc),
		max:    maxMovingMsgs,
	}
}

func (b *Bus) channelName(endpoint runtime.Atom) string {
	return fmt.Sprintf("%s:%d", b.prefix, endpoint)
}

func (b *Bus) Move(endpoint runtime.Atom, msg coroutine.Message) error {
	wire := wireMessage{
		EventSource: msg.EventSource,
		EventName:   msg.EventName,
		SubName:     msg.SubName,
		RequestID:   msg.RequestID.String(),
	}
	if msg.Data != nil {
		// Payload variants are moved (re-serialized), never shared, per
		// spec.md §5 — EJSON is the wire form everywhere else in this
		// module, so it is used here too.
		ejson, serr := serializeForWire(msg.Data)
		if serr != nil {
			return serr
		}
		wire.DataEJSON = ejson
	}

	payload, err := json.Marshal(wire)
	if err != nil {
		return fmt.Errorf("movebuffer/redis: encode: %w", err)
	}
	return b.client.Publish(context.Background(), b.channelName(endpoint), payload).Err()
}

func (b *Bus) Subscribe(endpoint runtime.Atom, handler func(coroutine.Message)) {
	ctx, cancel := context.WithCancel(context.Background())
	b.mu.Lock()
	b.cancel[endpoint] = cancel
	b.mu.Unlock()

	sub := b.client.Subscribe(ctx, b.channelName(endpoint))
	ch := sub.Channel()
	go func() {
		defer sub.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case m, ok := <-ch:
				if !ok {
					return
				}
				var wire wireMessage
				if err := json.Unmarshal([]byte(m.Payload), &wire); err != nil {
					continue
				}
				msg := coroutine.Message{
					EventSource: wire.EventSource,
					EventName:   wire.EventName,
					SubName:     wire.SubName,
				}
				if wire.DataEJSON != "" {
					if v, err := variant.Parse(wire.DataEJSON); err == nil {
						msg.Data = v
					}
				}
				handler(msg)
			}
		}
	}()
}

func serializeForWire(v *variant.Value) (string, error) {
	return variant.Serialize(v, "real-ejson")
}

func (b *Bus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, cancel := range b.cancel {
		cancel()
	}
	return b.client.Close()
}
