package cbhttp

import (
	"net/http"

	retry "github.com/avast/retry-go"
	"go.opentelemetry.io/otel"

	lhttp "github.com/schedyio/schedy/pkg/http"
)

type Instance struct {
	Client       *http.Client
	cfg          *Config
	retryOptions []retry.Option
	runner       RunnerFunc
	doNoRetry    RunnerFunc
}

var _ Client = &Instance{}

func NewInstance(cfg *Config) (*Instance, error) {
	var checkRedirect func(req *http.Request, via []*http.Request) error

	if cfg.AvoidRedirects {
		checkRedirect = func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		}
	}

	client := &http.Client{
		Timeout:       cfg.Timeout,
		CheckRedirect: checkRedirect,
	}

	instance := &Instance{
		Client:       client,
		cfg:          cfg,
		retryOptions: RetryPolicy(cfg),
	}

	// Attempt-level middlewares see every try, the outer ones see the request once.
	instance.doNoRetry = instance.composeMiddleware([]MiddlewareFunc{
		InFlight(cfg.MaxInFlight),
		LogIO(),
	}, func(r *Request) (*Response, *lhttp.HttpError) {
		return send(client, r)
	})
	instance.runner = instance.composeMiddleware([]MiddlewareFunc{
		Trace(otel.Tracer("cbhttp")),
	}, instance.do)

	return instance, nil
}

func (c *Instance) Config() *Config {
	return c.cfg
}
