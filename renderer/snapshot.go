package renderer

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hvml-run/hvmi/coroutine"
	"github.com/hvml-run/hvmi/edom"
)

// ElementSnapshot is the JSON shape an eDOM subtree renders to, walked
// from edom.Document's read accessors (TagName/Attrs/Text/Children).
type ElementSnapshot struct {
	Tag      string             `json:"tag"`
	Attrs    map[string]string  `json:"attrs,omitempty"`
	Text     string             `json:"text,omitempty"`
	Children []*ElementSnapshot `json:"children,omitempty"`
}

// Snapshot walks doc from its root and renders the whole tree.
func Snapshot(doc *edom.Document) *ElementSnapshot {
	return snapshotHandle(doc, doc.Root())
}

func snapshotHandle(doc *edom.Document, h edom.Handle) *ElementSnapshot {
	s := &ElementSnapshot{
		Tag:   doc.TagName(h),
		Attrs: doc.Attrs(h),
		Text:  doc.Text(h),
	}
	for _, c := range doc.Children(h) {
		s.Children = append(s.Children, snapshotHandle(doc, c))
	}
	return s
}

func (s *Server) resolveCoroutine(w http.ResponseWriter, r *http.Request) (*coroutine.Coroutine, bool) {
	runnerID := chi.URLParam(r, "runner")
	run, ok := s.runner(runnerID)
	if !ok {
		writeJSONError(w, http.StatusNotFound, "unknown runner "+runnerID)
		return nil, false
	}
	cidStr := chi.URLParam(r, "cid")
	co, ok := run.Coroutine(s.rt.Atoms.Intern(cidStr))
	if !ok {
		writeJSONError(w, http.StatusNotFound, "unknown coroutine "+cidStr)
		return nil, false
	}
	return co, true
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	co, ok := s.resolveCoroutine(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(Snapshot(co.EDOM))
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
