package cbhttpmiddleware

import (
	"encoding/json"
	"errors"
	"fmt"

	cbhttp "github.com/schedyio/schedy/pkg/clientbase/http"
	lhttp "github.com/schedyio/schedy/pkg/http"
)

// ErrMalformedBody marks a 2xx response whose body was fully received but
// is not the expected JSON.
var ErrMalformedBody = errors.New("malformed response body")

// JsonDecoder decodes a successful response body into obj and consumes the
// response. The returned response keeps status and headers, its body is
// drained.
func JsonDecoder(obj interface{}) cbhttp.MiddlewareFunc {
	return func(next cbhttp.RunnerFunc) cbhttp.RunnerFunc {
		return func(r *cbhttp.Request) (*cbhttp.Response, *lhttp.HttpError) {
			resp, herr := next(r)
			if herr != nil {
				return nil, herr
			}
			defer resp.Close()

			if err := json.NewDecoder(resp.Body).Decode(obj); err != nil {
				return nil, &lhttp.HttpError{
					Code:   resp.StatusCode,
					Header: resp.Header,
					Err:    fmt.Errorf("%w: %v", ErrMalformedBody, err),
				}
			}

			return resp, nil
		}
	}
}
