package renderer

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hvml-run/hvmi/coroutine"
	"github.com/hvml-run/hvmi/reqid"
	"github.com/hvml-run/hvmi/variant"
)

// inboundEvent is the JSON body a renderer UI posts (or sends over the
// websocket stream) to inject a message into a coroutine's queue: a
// user interaction, a "page closed" cancellation, or any other
// renderer-originated occurrence spec.md §5's Cancellation model needs
// observed from outside the process.
type inboundEvent struct {
	EventName string          `json:"event"`
	SubName   string          `json:"sub,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
}

func (e inboundEvent) toMessage() coroutine.Message {
	data := variant.NewUndefined()
	if len(e.Data) > 0 {
		var raw any
		if err := json.Unmarshal(e.Data, &raw); err == nil {
			data = jsonToVariant(raw)
		}
	}
	return coroutine.Message{
		EventSource: "renderer",
		EventName:   e.EventName,
		SubName:     e.SubName,
		Data:        data,
		RequestID:   reqid.New(reqid.Elements, "", "", ""),
	}
}

// jsonToVariant converts the result of json.Unmarshal(..., &any) into
// the matching variant.Value kind, so a renderer's plain-JSON payload
// can be bound into HVML scope the same way a fetched document's body
// would be.
func jsonToVariant(v any) *variant.Value {
	switch t := v.(type) {
	case nil:
		return variant.NewNull()
	case bool:
		return variant.NewBool(t)
	case float64:
		return variant.NewNumber(t)
	case string:
		return variant.NewString(t)
	case []any:
		items := make([]*variant.Value, len(t))
		for i, it := range t {
			items[i] = jsonToVariant(it)
		}
		return variant.NewArray(items...)
	case map[string]any:
		obj := variant.NewObject()
		for k, val := range t {
			_ = obj.Set(k, jsonToVariant(val))
		}
		return obj
	default:
		return variant.NewUndefined()
	}
}

func (s *Server) handleEvent(w http.ResponseWriter, r *http.Request) {
	runnerID := chi.URLParam(r, "runner")
	run, ok := s.runner(runnerID)
	if !ok {
		writeJSONError(w, http.StatusNotFound, "unknown runner "+runnerID)
		return
	}
	cidStr := chi.URLParam(r, "cid")

	var ev inboundEvent
	if err := json.NewDecoder(r.Body).Decode(&ev); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid event body: "+err.Error())
		return
	}

	if err := run.Dispatch(s.rt.Atoms.Intern(cidStr), ev.toMessage()); err != nil {
		writeJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusAccepted)
}
