package renderer

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/stretchr/testify/require"

	"github.com/hvml-run/hvmi/edom"
)

func TestHandleStreamPushesInitialAndSubsequentSnapshots(t *testing.T) {
	srv, run, cid := newTestServer(t)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/v1/runners/main/coroutines/" + cid + "/stream"
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	require.NoError(t, err)
	defer conn.CloseNow()

	_, data, err := conn.Read(ctx)
	require.NoError(t, err)
	var first ElementSnapshot
	require.NoError(t, json.Unmarshal(data, &first))
	require.Equal(t, "html", first.Tag)

	co, ok := run.Coroutine(srv.rt.Atoms.Intern(cid))
	require.True(t, ok)
	_, err = co.EDOM.NewElement(co.EDOM.Root(), edom.Append, "div", false)
	require.NoError(t, err)

	_, data, err = conn.Read(ctx)
	require.NoError(t, err)
	var second ElementSnapshot
	require.NoError(t, json.Unmarshal(data, &second))
	require.Len(t, second.Children, 1)
	require.Equal(t, "div", second.Children[0].Tag)

	require.NoError(t, conn.Close(websocket.StatusNormalClosure, ""))
}
