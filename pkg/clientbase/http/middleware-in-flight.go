package cbhttp

import (
	"context"

	"golang.org/x/sync/semaphore"

	lhttp "github.com/schedyio/schedy/pkg/http"
)

// InFlight bounds the number of attempts running at once across all users of
// the instance. Zero size lets everything through.
func InFlight(size uint64) MiddlewareFunc {
	if size == 0 {
		return nil
	}
	sem := semaphore.NewWeighted(int64(size))
	return func(next RunnerFunc) RunnerFunc {
		return func(r *Request) (*Response, *lhttp.HttpError) {
			ctx := r.Context
			if ctx == nil {
				ctx = context.Background()
			}
			if err := sem.Acquire(ctx, 1); err != nil {
				return nil, &lhttp.HttpError{Err: err}
			}
			defer sem.Release(1)
			return next(r)
		}
	}
}
