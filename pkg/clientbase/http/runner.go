package cbhttp

import (
	"bytes"
	"context"
	"io"
	"net/http"

	"github.com/pkg/errors"

	lhttp "github.com/schedyio/schedy/pkg/http"
)

// send performs a single attempt. The whole body is read before returning,
// so a connection lost mid-body is a transport error and gets retried.
// Responses outside 2xx become an HttpError carrying the body and headers.
func send(client *http.Client, r *Request) (*Response, *lhttp.HttpError) {
	ctx := r.Context
	if ctx == nil {
		ctx = context.Background()
	}
	request, err := http.NewRequestWithContext(ctx, r.Method, r.URI, r.Body)
	if err != nil {
		return nil, &lhttp.HttpError{Err: err}
	}
	if r.Header != nil {
		request.Header = r.Header.Clone()
	}
	if len(r.Query) > 0 {
		request.URL.RawQuery = r.Query.Encode()
	}

	resp, err := client.Do(request)
	if err != nil {
		return nil, &lhttp.HttpError{Err: err}
	}
	content, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return nil, &lhttp.HttpError{Err: errors.Wrapf(err, "reading %s %s response", r.Method, r.URI)}
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		resp.Body = io.NopCloser(bytes.NewReader(content))
		return &Response{*resp}, nil
	}
	return nil, &lhttp.HttpError{Code: resp.StatusCode, Message: string(content), Header: resp.Header}
}
