package cbhttp

import (
	"fmt"
	"net/http"

	"github.com/go-http-utils/headers"
)

func AddHeader(key, value string) RequestOption {
	return func(r *Request) *Request {
		if r.Header == nil {
			r.Header = make(http.Header)
		}
		r.Header.Add(key, value)
		return r
	}
}

func SetHeader(key, value string) RequestOption {
	return func(r *Request) *Request {
		if r.Header == nil {
			r.Header = make(http.Header)
		}
		r.Header.Set(key, value)
		return r
	}
}

func Header(h http.Header) RequestOption {
	return func(r *Request) *Request {
		if h != nil {
			r.Header = h.Clone()
		}
		return r
	}
}

func BearerToken(token string) RequestOption {
	return SetHeader(headers.Authorization, fmt.Sprintf("Bearer %s", token))
}

func IfMatch(etag string) RequestOption {
	return SetHeader(headers.IfMatch, etag)
}

func IfNoneMatch(etag string) RequestOption {
	return SetHeader(headers.IfNoneMatch, etag)
}
