package fetch

import (
	"context"
	"mime"
	"net/url"
	"os"
	"path/filepath"

	"github.com/hvml-run/hvmi/runtime"
)

// FileTransport fetches file:// URIs from the local filesystem.
type FileTransport struct{}

func (FileTransport) Fetch(ctx context.Context, u *url.URL, method Method, params *runtime.Atom) (Result, error) {
	path := u.Path
	if path == "" {
		path = u.Opaque
	}
	f, err := os.Open(path)
	if err != nil {
		return Result{}, runtime.NewError(runtime.ErrEntityNotFound, "", err)
	}
	mimeType := mime.TypeByExtension(filepath.Ext(path))
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	return Result{RetCode: 200, MimeType: mimeType, Body: f}, nil
}
