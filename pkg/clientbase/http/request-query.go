package cbhttp

import (
	"net/url"

	"github.com/gorilla/schema"

	lhttp "github.com/schedyio/schedy/pkg/http"
)

var schemaEncoder = schema.NewEncoder()

func init() {
	schemaEncoder.SetAliasTag("json")
}

// QueryObj merges the fields of obj into the query string. Fields tagged
// omitempty are left out when zero.
func QueryObj(obj interface{}) RequestOption {
	return func(r *Request) *Request {
		query := url.Values{}
		if err := schemaEncoder.Encode(obj, query); err != nil {
			r.HErr = &lhttp.HttpError{Err: err}
			return r
		}
		if r.Query == nil {
			r.Query = url.Values{}
		}
		for k, vals := range query {
			r.Query[k] = vals
		}
		return r
	}
}

func Query(obj url.Values) RequestOption {
	return func(r *Request) *Request {
		r.Query = obj
		return r
	}
}
