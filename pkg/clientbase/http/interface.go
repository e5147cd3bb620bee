package cbhttp

import lhttp "github.com/schedyio/schedy/pkg/http"

type Client interface {
	Do(r *Request, m ...MiddlewareFunc) (*Response, *lhttp.HttpError)
}
