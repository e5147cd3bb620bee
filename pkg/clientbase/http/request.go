package cbhttp

import (
	"context"
	"io"
	"net/http"
	"net/url"

	retry "github.com/avast/retry-go"

	lhttp "github.com/schedyio/schedy/pkg/http"
)

type Request struct {
	Method       string
	URI          string
	Header       http.Header
	Query        url.Values
	Body         io.ReadCloser
	HErr         *lhttp.HttpError
	Context      context.Context
	retryOptions []retry.Option
}

type RequestOption func(*Request) *Request

func NewRequest(ctx context.Context, method, uri string, options ...RequestOption) *Request {
	r := &Request{
		Method:  method,
		URI:     uri,
		Context: ctx,
	}

	return r.Options(options...)
}

func (r *Request) Options(options ...RequestOption) *Request {
	return ComposeOptions(options...)(r)
}

// Clone copies everything but the body, which can only be read once.
func (r *Request) Clone() *Request {
	var newHeader http.Header
	if r.Header != nil {
		newHeader = r.Header.Clone()
	}
	var newQuery url.Values
	if r.Query != nil {
		newQuery = url.Values(http.Header(r.Query).Clone())
	}

	return &Request{
		Method:       r.Method,
		URI:          r.URI,
		Header:       newHeader,
		Query:        newQuery,
		HErr:         r.HErr.Clone(),
		Context:      r.Context,
		retryOptions: append([]retry.Option(nil), r.retryOptions...),
	}
}

func ComposeOptions(options ...RequestOption) RequestOption {
	return func(r *Request) *Request {
		for _, opt := range options {
			if opt != nil {
				r = opt(r)
			}
		}
		return r
	}
}
