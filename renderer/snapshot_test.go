package renderer

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/hvml-run/hvmi/edom"
)

func TestSnapshotWalksTree(t *testing.T) {
	doc := edom.NewDocument()
	div, err := doc.NewElement(doc.Root(), edom.Append, "div", false)
	require.NoError(t, err)
	require.NoError(t, doc.SetAttribute(div, edom.Update, "class", "box"))
	require.NoError(t, doc.NewTextContent(div, edom.Append, "hi"))

	snap := Snapshot(doc)
	require.Equal(t, "html", snap.Tag)
	require.Len(t, snap.Children, 1)
	require.Equal(t, "div", snap.Children[0].Tag)
	require.Equal(t, "hi", snap.Children[0].Text)
	require.Equal(t, "box", snap.Children[0].Attrs["class"])
}

func TestHandleSnapshotUnknownRunner(t *testing.T) {
	srv, _, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/runners/ghost/coroutines/1/edom", nil)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("runner", "ghost")
	rctx.URLParams.Add("cid", "1")
	req = req.WithContext(contextWithRouteCtx(req.Context(), rctx))

	rec := httptest.NewRecorder()
	srv.handleSnapshot(rec, req)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleSnapshotKnownCoroutine(t *testing.T) {
	srv, _, cid := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/runners/main/coroutines/"+cid+"/edom", nil)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("runner", "main")
	rctx.URLParams.Add("cid", cid)
	req = req.WithContext(contextWithRouteCtx(req.Context(), rctx))

	rec := httptest.NewRecorder()
	srv.handleSnapshot(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"tag":"html"`)
}
