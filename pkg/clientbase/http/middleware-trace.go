package cbhttp

import (
	"fmt"

	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.10.0"
	"go.opentelemetry.io/otel/trace"

	lhttp "github.com/schedyio/schedy/pkg/http"
)

// Trace opens one client span per request, retries included.
func Trace(tracer trace.Tracer) MiddlewareFunc {
	return func(next RunnerFunc) RunnerFunc {
		return func(r *Request) (*Response, *lhttp.HttpError) {
			if r.Context == nil {
				return next(r)
			}

			ctx, span := tracer.Start(r.Context, fmt.Sprintf("HTTP %s", r.Method),
				trace.WithSpanKind(trace.SpanKindClient),
				trace.WithAttributes(
					semconv.HTTPMethodKey.String(r.Method),
					semconv.HTTPURLKey.String(r.URI),
				))
			defer span.End()
			r.Context = ctx

			resp, herr := next(r)
			switch {
			case herr != nil:
				if herr.Code != 0 {
					span.SetAttributes(semconv.HTTPStatusCodeKey.Int(herr.Code))
				}
				span.SetStatus(codes.Error, herr.Error())
			case resp != nil:
				span.SetAttributes(semconv.HTTPStatusCodeKey.Int(resp.StatusCode))
			}
			return resp, herr
		}
	}
}
