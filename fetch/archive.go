package fetch

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/mholt/archives"

	"github.com/hvml-run/hvmi/runtime"
)

// Unwrap inspects body for a recognized archive format (zip, tar,
// tar.gz, …) and, if innerPath is non-empty, returns the single member
// matching innerPath instead of the whole archive. Nothing in the
// fetcher or the verb packages calls it: <load from="..."> and
// <init from="..."> read a fetched body as it arrives, archive or not.
func Unwrap(ctx context.Context, body io.Reader, innerPath string) (io.ReadCloser, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, runtime.NewError(runtime.ErrInternalFailure, "", err)
	}

	format, reader, err := archives.Identify(ctx, "", bytes.NewReader(data))
	if err != nil {
		// Not a recognized archive: treat the fetched body as a plain file.
		return io.NopCloser(bytes.NewReader(data)), nil
	}

	extractor, ok := format.(archives.Extractor)
	if !ok {
		return nil, runtime.NewError(runtime.ErrNotSupported, "", fmt.Errorf("fetch: archive format %T does not support extraction", format))
	}

	var found []byte
	var foundErr error
	walkErr := extractor.Extract(ctx, reader, func(ctx context.Context, f archives.FileInfo) error {
		if innerPath != "" && f.NameInArchive != innerPath {
			return nil
		}
		rc, err := f.Open()
		if err != nil {
			foundErr = err
			return err
		}
		defer rc.Close()
		found, foundErr = io.ReadAll(rc)
		return archives.ErrStopWalk
	})
	if walkErr != nil && walkErr != archives.ErrStopWalk {
		return nil, runtime.NewError(runtime.ErrInternalFailure, "", walkErr)
	}
	if foundErr != nil {
		return nil, runtime.NewError(runtime.ErrInternalFailure, "", foundErr)
	}
	if found == nil {
		return nil, runtime.NewError(runtime.ErrEntityNotFound, "", fmt.Errorf("fetch: archive member %q not found", innerPath))
	}
	return io.NopCloser(bytes.NewReader(found)), nil
}
