package fetch

import (
	"bytes"
	"context"
	"io"
	"net/url"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/hvml-run/hvmi/runtime"
)

// S3Transport fetches s3://bucket/key URIs via minio-go, which speaks
// the S3 API against AWS or any S3-compatible store. Endpoint and
// credentials are passed to NewS3Transport at construction time, not
// taken from the URI.
type S3Transport struct {
	client *minio.Client
	useSSL bool
}

// NewS3Transport builds a transport against endpoint using static
// access/secret keys.
func NewS3Transport(endpoint, accessKey, secretKey string, useSSL bool) (*S3Transport, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, runtime.NewError(runtime.ErrInternalFailure, "", err)
	}
	return &S3Transport{client: client, useSSL: useSSL}, nil
}

func (s *S3Transport) Fetch(ctx context.Context, u *url.URL, method Method, params *runtime.Atom) (Result, error) {
	bucket := u.Host
	key := strings.TrimPrefix(u.Path, "/")

	obj, err := s.client.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return Result{}, runtime.NewError(runtime.ErrRequestFailed, "", err)
	}
	defer obj.Close()

	info, err := obj.Stat()
	if err != nil {
		return Result{}, runtime.NewError(runtime.ErrEntityNotFound, "", err)
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, obj); err != nil {
		return Result{}, runtime.NewError(runtime.ErrInternalFailure, "", err)
	}
	mimeType := info.ContentType
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	return Result{RetCode: 200, MimeType: mimeType, Body: io.NopCloser(&buf)}, nil
}
