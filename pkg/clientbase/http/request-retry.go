package cbhttp

import (
	"time"

	"github.com/avast/retry-go"
	log "github.com/sirupsen/logrus"

	lhttp "github.com/schedyio/schedy/pkg/http"
)

// RetryPolicy is the instance-wide policy: exponential backoff starting at
// cfg.RetryDelay and capped at cfg.RetryMaxDelay, on transient failures
// only. Every method is eligible, writes included.
func RetryPolicy(cfg *Config) []retry.Option {
	return []retry.Option{
		retry.Attempts(cfg.RetryAttempts + 1),
		retry.Delay(cfg.RetryDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.MaxDelay(cfg.RetryMaxDelay),
		retry.RetryIf(func(err error) bool {
			return RetryIfTransient(lhttp.FromError(err))
		}),
		retry.OnRetry(func(n uint, err error) {
			log.Debugf("retrying request after attempt %d: %s", n+1, err)
		}),
	}
}

func RetryMaxDelay(dt time.Duration) RequestOption {
	return func(r *Request) *Request {
		r.retryOptions = append(r.retryOptions, retry.MaxDelay(dt))
		return r
	}
}

type RetryIfFunc func(httpError *lhttp.HttpError) bool

func RetryIf(fn RetryIfFunc) RequestOption {
	return func(r *Request) *Request {
		r.retryOptions = append(r.retryOptions, retry.RetryIf(func(err error) bool {
			return fn(lhttp.FromError(err))
		}))
		return r
	}
}

func RetryIfBaseError(httpError *lhttp.HttpError) bool {
	if httpError == nil {
		return false
	}
	return httpError.Err != nil
}

func RetryIfTransient(httpError *lhttp.HttpError) bool {
	return httpError.IsTransient()
}

type OnRetryFunc func(n uint, err *lhttp.HttpError)

func OnRetry(fn OnRetryFunc) RequestOption {
	return func(r *Request) *Request {
		r.retryOptions = append(r.retryOptions, retry.OnRetry(func(n uint, err error) {
			fn(n, lhttp.FromError(err))
		}))
		return r
	}
}

func RetryAttempts(attempts uint) RequestOption {
	return func(r *Request) *Request {
		r.retryOptions = append(r.retryOptions, retry.Attempts(attempts))
		return r
	}
}

// NoRetry sends the request exactly once.
func NoRetry() RequestOption {
	return RetryAttempts(1)
}

func RetryFixedDelay(d time.Duration) RequestOption {
	return func(r *Request) *Request {
		r.retryOptions = append(r.retryOptions, retry.Delay(d), retry.DelayType(retry.FixedDelay))
		return r
	}
}
