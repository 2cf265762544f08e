package renderer

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
)

func TestJSONToVariantScalarsAndContainers(t *testing.T) {
	require.Equal(t, "null", jsonToVariant(nil).Kind().String())
	require.True(t, jsonToVariant(true).AsBool())
	require.Equal(t, 3.0, jsonToVariant(3.0).AsNumber())
	require.Equal(t, "x", jsonToVariant("x").AsString())

	arr := jsonToVariant([]any{"a", "b"})
	require.Len(t, arr.Items(), 2)
	require.Equal(t, "a", arr.Items()[0].AsString())

	obj := jsonToVariant(map[string]any{"k": "v"})
	require.Equal(t, "v", obj.Get("k").AsString())
}

func TestInboundEventToMessage(t *testing.T) {
	ev := inboundEvent{EventName: "click", SubName: "button", Data: []byte(`{"x":1}`)}
	msg := ev.toMessage()
	require.Equal(t, "renderer", msg.EventSource)
	require.Equal(t, "click", msg.EventName)
	require.Equal(t, "button", msg.SubName)
	require.Equal(t, 1.0, msg.Data.Get("x").AsNumber())
}

func TestInboundEventWithoutDataDefaultsUndefined(t *testing.T) {
	ev := inboundEvent{EventName: "ping"}
	msg := ev.toMessage()
	require.Equal(t, "undefined", msg.Data.Kind().String())
}

func TestHandleEventDispatchesToCoroutine(t *testing.T) {
	srv, _, cid := newTestServer(t)

	body := bytes.NewBufferString(`{"event":"click"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/runners/main/coroutines/"+cid+"/events", body)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("runner", "main")
	rctx.URLParams.Add("cid", cid)
	req = req.WithContext(contextWithRouteCtx(req.Context(), rctx))

	rec := httptest.NewRecorder()
	srv.handleEvent(rec, req)
	require.Equal(t, http.StatusAccepted, rec.Code)
}

func TestHandleEventBadBody(t *testing.T) {
	srv, _, cid := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/runners/main/coroutines/"+cid+"/events", bytes.NewBufferString("not json"))
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("runner", "main")
	rctx.URLParams.Add("cid", cid)
	req = req.WithContext(contextWithRouteCtx(req.Context(), rctx))

	rec := httptest.NewRecorder()
	srv.handleEvent(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}
