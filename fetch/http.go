package fetch

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"

	"github.com/go-resty/resty/v2"

	"github.com/hvml-run/hvmi/runtime"
)

// HTTPTransport fetches http/https URIs with go-resty, retrying
// transient failures with the adapted backoff policy.
type HTTPTransport struct {
	client *resty.Client
	policy retryPolicy
}

// NewHTTPTransport builds an HTTPTransport with the fetcher's default
// retry policy.
func NewHTTPTransport() *HTTPTransport {
	return &HTTPTransport{
		client: resty.New(),
		policy: defaultRetryPolicy(),
	}
}

func (h *HTTPTransport) Fetch(ctx context.Context, u *url.URL, method Method, params *runtime.Atom) (Result, error) {
	var resp *resty.Response
	err := withRetry(ctx, h.policy, func() error {
		req := h.client.R().SetContext(ctx)
		var err error
		switch method {
		case MethodGet, MethodLoad:
			resp, err = req.Get(u.String())
		case MethodPost:
			resp, err = req.Post(u.String())
		case MethodDelete:
			resp, err = req.Delete(u.String())
		default:
			return fmt.Errorf("fetch: unsupported http method %d", method)
		}
		if err != nil {
			return err
		}
		if resp.StatusCode() >= 500 {
			return fmt.Errorf("fetch: %s: server error %d", u, resp.StatusCode())
		}
		return nil
	})
	if err != nil {
		return Result{}, err
	}
	return Result{
		RetCode:  resp.StatusCode(),
		MimeType: resp.Header().Get("Content-Type"),
		Body:     io.NopCloser(bytes.NewReader(resp.Body())),
	}, nil
}
