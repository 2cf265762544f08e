package fetch

import (
	"context"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFileTransportFetch(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "hello.txt")
	require.NoError(t, os.WriteFile(path, []byte("hello"), 0o644))

	u := &url.URL{Scheme: "file", Path: path}
	res, err := (FileTransport{}).Fetch(context.Background(), u, MethodLoad, nil)
	require.NoError(t, err)
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	require.Equal(t, "hello", string(body))
	require.Equal(t, 200, res.RetCode)
}

func TestFileTransportFetchMissing(t *testing.T) {
	u := &url.URL{Scheme: "file", Path: filepath.Join(t.TempDir(), "missing.txt")}
	_, err := (FileTransport{}).Fetch(context.Background(), u, MethodLoad, nil)
	require.Error(t, err)
}
