package renderer

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/coder/websocket"

	"github.com/hvml-run/hvmi/coroutine"
)

// handleStream upgrades to a websocket carrying server-pushed eDOM
// snapshots (one per mutation, coalesced by edom.Document.OnChange)
// and accepting renderer-originated events in the other direction —
// the half request/response can't carry, per SPEC_FULL.md §6's note
// that unsolicited renderer events (a closed page, a user action) need
// a live channel rather than polling.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	co, ok := s.resolveCoroutine(w, r)
	if !ok {
		return
	}

	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		return
	}
	defer conn.CloseNow()

	ctx := r.Context()
	changed := make(chan struct{}, 1)
	co.EDOM.OnChange(func() {
		select {
		case changed <- struct{}{}:
		default:
		}
	})
	defer co.EDOM.OnChange(nil)

	push := func() bool {
		data, err := json.Marshal(Snapshot(co.EDOM))
		if err != nil {
			return false
		}
		return conn.Write(ctx, websocket.MessageText, data) == nil
	}
	if !push() {
		return
	}

	done := make(chan struct{})
	go s.readInbound(ctx, conn, co, done)

	for {
		select {
		case <-changed:
			if !push() {
				_ = conn.Close(websocket.StatusInternalError, "snapshot failed")
				return
			}
		case <-done:
			return
		case <-ctx.Done():
			_ = conn.Close(websocket.StatusNormalClosure, "context done")
			return
		}
	}
}

// readInbound decodes inboundEvent frames off the client side of the
// stream (e.g. a "page closed" cancellation) and feeds them into the
// coroutine's message queue, closing done when the connection ends.
func (s *Server) readInbound(ctx context.Context, conn *websocket.Conn, co *coroutine.Coroutine, done chan struct{}) {
	defer close(done)
	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			return
		}
		var ev inboundEvent
		if err := json.Unmarshal(data, &ev); err != nil {
			continue
		}
		msg := ev.toMessage()
		if co.NotifyReady != nil {
			co.NotifyReady(msg)
		} else {
			co.Enqueue(msg)
		}
	}
}
