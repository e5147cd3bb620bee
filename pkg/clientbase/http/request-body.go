package cbhttp

import (
	"bytes"
	"encoding/json"
	"io"

	"github.com/go-http-utils/headers"

	lhttp "github.com/schedyio/schedy/pkg/http"
)

const ContentTypeJSON = "application/json"

func BodyObj(obj interface{}) RequestOption {
	return func(r *Request) *Request {
		content, err := json.Marshal(obj)
		if err != nil {
			r.HErr = &lhttp.HttpError{Err: err}
			return r
		}

		r.Body = io.NopCloser(bytes.NewReader(content))
		return SetHeader(headers.ContentType, ContentTypeJSON)(r)
	}
}

func Body(reader io.Reader) RequestOption {
	if readcloser, ok := reader.(io.ReadCloser); ok {
		return func(r *Request) *Request {
			r.Body = readcloser
			return r
		}
	}
	return func(r *Request) *Request {
		r.Body = io.NopCloser(reader)
		return r
	}
}
