package renderer

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
)

func TestInitTracingNoopWithoutEndpoint(t *testing.T) {
	shutdown, err := InitTracing(context.Background(), "")
	require.NoError(t, err)
	require.NoError(t, shutdown(context.Background()))
}

func TestTracingMiddlewarePassesThrough(t *testing.T) {
	called := false
	h := tracingMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	}))

	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("runner", "main")
	rctx.URLParams.Add("cid", "1")
	req := httptest.NewRequest(http.MethodGet, "/edom", nil)
	req = req.WithContext(contextWithRouteCtx(req.Context(), rctx))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.True(t, called)
	require.Equal(t, http.StatusOK, rec.Code)
}
