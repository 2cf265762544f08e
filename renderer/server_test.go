package renderer

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hvml-run/hvmi/config"
)

func TestAddrDefaultsWithoutConfig(t *testing.T) {
	require.Equal(t, ":8080", addr(nil))
}

func TestAddrFromConfig(t *testing.T) {
	cfg := &config.Config{Host: "127.0.0.1", Port: 9090}
	require.Equal(t, "127.0.0.1:9090", addr(cfg))
}

func TestHandleHealthz(t *testing.T) {
	srv, _, _ := newTestServer(t)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "ok", rec.Body.String())
}

func TestUnknownRunnerRejectedAtRouteLevel(t *testing.T) {
	srv, _, _ := newTestServer(t)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/runners/ghost/coroutines/1/edom", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
}
